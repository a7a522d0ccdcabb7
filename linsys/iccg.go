// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

import (
	"sort"

	"github.com/cpmech/gosl/la"
)

// micFactor is an IC(0) preconditioner factor: the lower-triangular part
// of an incomplete Cholesky factorization of a symmetric CSRSystem,
// computed only over A's existing sparsity pattern (no fill-in). Dropped
// fill-in is discarded; it is not added back to the diagonal (no
// modified-IC compensation). The diagonal is shifted up whenever a pivot
// would otherwise be
// non-positive so the factorization never fails on a slightly
// indefinite or singular (floating, all-Neumann) pressure system.
type micFactor struct {
	n    int
	rows []map[int]float64 // rows[i][j] = L[i][j] for j <= i
	diag []float64         // diag[i] = L[i][i]
}

const micDiagShift = 1e-8

func buildMIC0(s *CSRSystem) *micFactor {
	n := s.N
	f := &micFactor{n: n, rows: make([]map[int]float64, n), diag: make([]float64, n)}
	for i := range f.rows {
		f.rows[i] = make(map[int]float64)
	}

	for i := 0; i < n; i++ {
		aii := 0.0
		lower := map[int]float64{}
		for k := s.RowPtr[i]; k < s.RowPtr[i+1]; k++ {
			j := s.ColIdx[k]
			if j == i {
				aii = s.Values[k]
			} else if j < i {
				lower[j] = s.Values[k]
			}
		}
		cols := make([]int, 0, len(lower))
		for j := range lower {
			cols = append(cols, j)
		}
		sort.Ints(cols)
		for _, j := range cols {
			sum := lower[j]
			for k, lik := range f.rows[i] {
				if ljk, ok := f.rows[j][k]; ok && k < j {
					sum -= lik * ljk
				}
			}
			if f.diag[j] != 0 {
				f.rows[i][j] = sum / f.diag[j]
			}
		}
		diagSum := aii
		for _, lik := range f.rows[i] {
			diagSum -= lik * lik
		}
		if diagSum <= 0 {
			diagSum = micDiagShift
		}
		f.diag[i] = sqrt(diagSum)
	}
	return f
}

// solve applies (L L^T)^-1 to rhs via forward then backward substitution.
func (f *micFactor) solve(out, rhs []float64) {
	y := make([]float64, f.n)
	for i := 0; i < f.n; i++ {
		sum := rhs[i]
		for j, lij := range f.rows[i] {
			sum -= lij * y[j]
		}
		y[i] = sum / f.diag[i]
	}
	for i := f.n - 1; i >= 0; i-- {
		out[i] = y[i]
	}
	for i := f.n - 1; i >= 0; i-- {
		out[i] /= f.diag[i]
		for j, lij := range f.rows[i] {
			out[j] -= lij * out[i]
		}
	}
}

// ICCG solves s.X from s.B using IC(0)-preconditioned conjugate
// gradients over the compressed/CSR system.
func ICCG(s *CSRSystem, cfg Config) Status {
	n := s.N
	mic := buildMIC0(s)

	r := make([]float64, n)
	z := make([]float64, n)
	p := make([]float64, n)
	ap := make([]float64, n)

	res0 := s.Residual(r)
	if res0 < cfg.Tolerance {
		return Status{Converged: true, Iterations: 0, Residual: res0}
	}

	mic.solve(z, r)
	la.VecCopy(p, 1, z)
	rz := dot(r, z)

	for it := 0; it < cfg.MaxIterations; it++ {
		s.MulVec(ap, p)
		pap := dot(p, ap)
		if pap == 0 {
			return Status{Converged: false, Iterations: it, Residual: l2norm(r)}
		}
		alpha := rz / pap
		for i := 0; i < n; i++ {
			s.X[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}
		res := l2norm(r)
		if res < cfg.Tolerance {
			return Status{Converged: true, Iterations: it + 1, Residual: res}
		}
		mic.solve(z, r)
		rzNew := dot(r, z)
		beta := rzNew / rz
		for i := 0; i < n; i++ {
			p[i] = z[i] + beta*p[i]
		}
		rz = rzNew
	}
	return Status{Converged: false, Iterations: cfg.MaxIterations, Residual: l2norm(r)}
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func l2norm(a []float64) float64 { return la.VecNorm(a) }
