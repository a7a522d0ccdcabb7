// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

import "github.com/cpmech/gofluid/numerics"

// JacobiStructured runs weighted Jacobi (omega=1) on a StructuredSystem,
// sweeping all cells in parallel since every update reads only the
// previous iterate.
func JacobiStructured(s *StructuredSystem, cfg Config) Status {
	n := s.Shape.size()
	next := make([]float64, n)
	r := make([]float64, n)

	for it := 0; it < cfg.MaxIterations; it++ {
		res := s.Residual(r)
		if res < cfg.Tolerance {
			return Status{Converged: true, Iterations: it, Residual: res}
		}
		sh := s.Shape
		numerics.ParallelFor(0, n, func(p int) {
			k := p / (sh.Nx * sh.Ny)
			j := (p / sh.Nx) % sh.Ny
			i := p % sh.Nx
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
			if s.Center[p] != 0 {
				next[p] = off / s.Center[p]
			} else {
				next[p] = s.X[p]
			}
		})
		copy(s.X, next)
	}
	res := s.Residual(r)
	return Status{Converged: res < cfg.Tolerance, Iterations: cfg.MaxIterations, Residual: res}
}
