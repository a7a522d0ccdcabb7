// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

import "github.com/cpmech/gofluid/numerics"

// GaussSeidelRedBlack sweeps a StructuredSystem in two passes per
// iteration, one over cells with even (i+j+k) parity and one over odd,
// so that every update within a color only reads neighbors of the other
// color (already fixed this iteration) and each color's updates are
// mutually independent and safe under numerics.ParallelFor.
func GaussSeidelRedBlack(s *StructuredSystem, cfg Config) Status {
	sh := s.Shape
	n := sh.size()
	r := make([]float64, n)

	sweepColor := func(parity int) {
		numerics.ParallelFor(0, n, func(p int) {
			k := p / (sh.Nx * sh.Ny)
			j := (p / sh.Nx) % sh.Ny
			i := p % sh.Nx
			if (i+j+k)%2 != parity {
				return
			}
			if s.Center[p] == 0 {
				return
			}
			off := s.B[p]
			if i+1 < sh.Nx {
				off -= s.PlusX[p] * s.X[sh.flat(i+1, j, k)]
			}
			if i-1 >= 0 {
				q := sh.flat(i-1, j, k)
				off -= s.PlusX[q] * s.X[q]
			}
			if j+1 < sh.Ny {
				off -= s.PlusY[p] * s.X[sh.flat(i, j+1, k)]
			}
			if j-1 >= 0 {
				q := sh.flat(i, j-1, k)
				off -= s.PlusY[q] * s.X[q]
			}
			if k+1 < sh.Nz {
				off -= s.PlusZ[p] * s.X[sh.flat(i, j, k+1)]
			}
			if k-1 >= 0 {
				q := sh.flat(i, j, k-1)
				off -= s.PlusZ[q] * s.X[q]
			}
			s.X[p] = off / s.Center[p]
		})
	}

	for it := 0; it < cfg.MaxIterations; it++ {
		res := s.Residual(r)
		if res < cfg.Tolerance {
			return Status{Converged: true, Iterations: it, Residual: res}
		}
		sweepColor(0)
		sweepColor(1)
	}
	res := s.Residual(r)
	return Status{Converged: res < cfg.Tolerance, Iterations: cfg.MaxIterations, Residual: res}
}
