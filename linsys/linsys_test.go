// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// buildPoisson7 assembles a diagonally-dominant structured 7-point
// system (center=6, neighbors=-1) over shape, matching the stencil
// levelset.Stencil7 and geo.LaplacianAtDataPoint both assume.
func buildPoisson7(shape Shape3) *StructuredSystem {
	s := NewStructuredSystem(shape)
	for p := range s.Center {
		s.Center[p] = 6
	}
	for k := 0; k < shape.Nz; k++ {
		for j := 0; j < shape.Ny; j++ {
			for i := 0; i < shape.Nx; i++ {
				p := shape.flat(i, j, k)
				if i+1 < shape.Nx {
					s.PlusX[p] = -1
				}
				if j+1 < shape.Ny {
					s.PlusY[p] = -1
				}
				if k+1 < shape.Nz {
					s.PlusZ[p] = -1
				}
			}
		}
	}
	return s
}

// manufacturedRHS sets s.B = A*xExact so the exact solution is known.
func manufacturedRHS(s *StructuredSystem, xExact []float64) {
	s.MulVec(s.B, xExact)
}

func maxAbsDiff(a, b []float64) float64 {
	m := 0.0
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > m {
			m = d
		}
	}
	return m
}

func Test_jacobi_recovers_manufactured_solution(tst *testing.T) {
	chk.PrintTitle("jacobi_recovers_manufactured_solution")
	shape := Shape3{6, 6, 6}
	s := buildPoisson7(shape)
	xExact := make([]float64, shape.size())
	for i := range xExact {
		xExact[i] = float64(i%7) * 0.1
	}
	manufacturedRHS(s, xExact)

	status := JacobiStructured(s, Config{MaxIterations: 500, Tolerance: 1e-9})
	if !status.Converged {
		tst.Fatalf("jacobi did not converge: iters=%d residual=%g", status.Iterations, status.Residual)
	}
	if d := maxAbsDiff(s.X, xExact); d > 1e-4 {
		tst.Fatalf("solution mismatch: max abs diff %g", d)
	}
}

func Test_gauss_seidel_redblack_converges_faster_than_jacobi(tst *testing.T) {
	chk.PrintTitle("gauss_seidel_redblack_converges_faster_than_jacobi")
	shape := Shape3{6, 6, 6}
	xExact := make([]float64, shape.size())
	for i := range xExact {
		xExact[i] = float64(i%5) * 0.2
	}

	sj := buildPoisson7(shape)
	manufacturedRHS(sj, xExact)
	sj2 := buildPoisson7(shape)
	manufacturedRHS(sj2, xExact)

	const iters = 30
	jacobiStatus := JacobiStructured(sj, Config{MaxIterations: iters, Tolerance: 1e-12})
	gsStatus := GaussSeidelRedBlack(sj2, Config{MaxIterations: iters, Tolerance: 1e-12})

	if gsStatus.Residual > jacobiStatus.Residual {
		tst.Fatalf("expected red-black Gauss-Seidel to converge at least as fast as Jacobi after %d iterations: gs=%g jacobi=%g",
			iters, gsStatus.Residual, jacobiStatus.Residual)
	}
}

func buildCSRPoisson(shape Shape3) (*CSRSystem, []int) {
	n := shape.size()
	b := NewCSRBuilder(n, n*7)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for k := 0; k < shape.Nz; k++ {
		for j := 0; j < shape.Ny; j++ {
			for i := 0; i < shape.Nx; i++ {
				p := shape.flat(i, j, k)
				b.Put(p, p, 6)
				if i+1 < shape.Nx {
					q := shape.flat(i+1, j, k)
					b.Put(p, q, -1)
					b.Put(q, p, -1)
				}
				if j+1 < shape.Ny {
					q := shape.flat(i, j+1, k)
					b.Put(p, q, -1)
					b.Put(q, p, -1)
				}
				if k+1 < shape.Nz {
					q := shape.flat(i, j, k+1)
					b.Put(p, q, -1)
					b.Put(q, p, -1)
				}
			}
		}
	}
	return b.Build(), idx
}

func Test_iccg_recovers_manufactured_solution(tst *testing.T) {
	chk.PrintTitle("iccg_recovers_manufactured_solution")
	shape := Shape3{5, 5, 5}
	sys, _ := buildCSRPoisson(shape)
	xExact := make([]float64, sys.N)
	for i := range xExact {
		xExact[i] = float64(i%6) * 0.1
	}
	sys.MulVec(sys.B, xExact)

	status := ICCG(sys, Config{MaxIterations: 200, Tolerance: 1e-9})
	if !status.Converged {
		tst.Fatalf("iccg did not converge: iters=%d residual=%g", status.Iterations, status.Residual)
	}
	if d := maxAbsDiff(sys.X, xExact); d > 1e-4 {
		tst.Fatalf("solution mismatch: max abs diff %g", d)
	}
}

func Test_multigrid_vcycle_reduces_residual(tst *testing.T) {
	chk.PrintTitle("multigrid_vcycle_reduces_residual")
	shape := Shape3{16, 16, 16}
	s := buildPoisson7(shape)
	xExact := make([]float64, shape.size())
	for i := range xExact {
		xExact[i] = float64(i%11) * 0.05
	}
	manufacturedRHS(s, xExact)

	r := make([]float64, shape.size())
	before := s.Residual(r)

	cfg := DefaultMultigridConfig()
	cfg.Tolerance = 1e-10
	MultigridVCycle(s, cfg)

	after := s.Residual(r)
	if after >= before {
		tst.Fatalf("expected V-cycle to reduce residual: before=%g after=%g", before, after)
	}
}

func Test_csr_matvec_matches_structured_matvec(tst *testing.T) {
	chk.PrintTitle("csr_matvec_matches_structured_matvec")
	shape := Shape3{4, 4, 4}
	structured := buildPoisson7(shape)
	csr, _ := buildCSRPoisson(shape)

	x := make([]float64, shape.size())
	for i := range x {
		x[i] = float64(i%3) - 1
	}
	wantStructured := make([]float64, shape.size())
	structured.MulVec(wantStructured, x)
	gotCSR := make([]float64, shape.size())
	csr.MulVec(gotCSR, x)

	if d := maxAbsDiff(wantStructured, gotCSR); d > 1e-10 {
		tst.Fatalf("structured and CSR matvec disagree: max abs diff %g", d)
	}
}
