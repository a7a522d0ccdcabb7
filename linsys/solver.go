// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

// Status reports how a solver finished; a solver never panics on
// non-convergence, it returns Converged=false with the last
// residual norm and iteration count so the caller can decide whether to
// fall back to a smaller time step or a different solver.
type Status struct {
	Converged  bool
	Iterations int
	Residual   float64
}

// Config bounds a solve: an iteration cap paired with a residual
// tolerance.
type Config struct {
	MaxIterations int
	Tolerance     float64
}

// DefaultConfig is tight enough for pressure projection, loose enough
// to not stall on the coarsest multigrid level.
func DefaultConfig() Config {
	return Config{MaxIterations: 200, Tolerance: 1e-6}
}
