// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

// centeredRestrictionKernel and staggeredRestrictionKernel are the 1D
// four-tap restriction stencils used to halve a structured system's
// resolution along each axis: the centered kernel smooths as it
// coarsens (appropriate for pressure/scalar fields sampled at cell
// centers), the staggered kernel is direct injection (appropriate for
// face-sampled velocity components, where averaging across the
// staggered offset would smear the MAC layout).
var centeredRestrictionKernel = [4]float64{1.0 / 8, 3.0 / 8, 3.0 / 8, 1.0 / 8}
var staggeredRestrictionKernel = [4]float64{0, 1, 0, 0}

// MultigridConfig controls the V-cycle: levels bottoms out once any axis
// drops below minDim, PreSweeps/PostSweeps are red-black Gauss-Seidel
// relaxations, and the coarsest level is solved with a tight,
// bounded-iteration CG pass.
type MultigridConfig struct {
	Config
	PreSweeps   int
	PostSweeps  int
	MinDim      int
	Staggered   bool // selects the restriction kernel
}

// DefaultMultigridConfig matches the defaults used by GaussSeidelRedBlack
// for pre/post smoothing, with a small fixed coarsest-grid budget.
func DefaultMultigridConfig() MultigridConfig {
	return MultigridConfig{
		Config:     DefaultConfig(),
		PreSweeps:  2,
		PostSweeps: 2,
		MinDim:     4,
	}
}

func halfDim(n int) int {
	if n <= 1 {
		return 1
	}
	return (n + 1) / 2
}

func restrictionKernel(staggered bool) [4]float64 {
	if staggered {
		return staggeredRestrictionKernel
	}
	return centeredRestrictionKernel
}

// restrict halves a field defined over `from` into a field over the
// coarse shape, applying the kernel separably along each axis.
func restrictField(from []float64, shape Shape3, kernel [4]float64) ([]float64, Shape3) {
	coarse := Shape3{halfDim(shape.Nx), halfDim(shape.Ny), halfDim(shape.Nz)}
	out := make([]float64, coarse.size())
	tap := func(axisLen, ci int) (int, int) {
		lo := 2*ci - 1
		if lo < 0 {
			lo = 0
		}
		hi := lo + 3
		if hi >= axisLen {
			hi = axisLen - 1
			lo = hi - 3
			if lo < 0 {
				lo = 0
			}
		}
		return lo, hi
	}
	for ck := 0; ck < coarse.Nz; ck++ {
		kl, _ := tap(shape.Nz, ck)
		for cj := 0; cj < coarse.Ny; cj++ {
			jl, _ := tap(shape.Ny, cj)
			for ci := 0; ci < coarse.Nx; ci++ {
				il, _ := tap(shape.Nx, ci)
				sum := 0.0
				wsum := 0.0
				for dz := 0; dz < 4; dz++ {
					z := kl + dz
					if z >= shape.Nz {
						continue
					}
					for dy := 0; dy < 4; dy++ {
						y := jl + dy
						if y >= shape.Ny {
							continue
						}
						for dx := 0; dx < 4; dx++ {
							x := il + dx
							if x >= shape.Nx {
								continue
							}
							w := kernel[dx] * kernel[dy] * kernel[dz]
							sum += w * from[shape.flat(x, y, z)]
							wsum += w
						}
					}
				}
				if wsum > 0 {
					sum /= wsum
				}
				out[coarse.flat(ci, cj, ck)] = sum
			}
		}
	}
	return out, coarse
}

// prolongField maps a coarse correction back onto the fine shape via
// trilinear interpolation of the coarse cell centers.
func prolongField(coarse []float64, coarseShape, fineShape Shape3) []float64 {
	out := make([]float64, fineShape.size())
	sx := float64(coarseShape.Nx) / float64(fineShape.Nx)
	sy := float64(coarseShape.Ny) / float64(fineShape.Ny)
	sz := float64(coarseShape.Nz) / float64(fineShape.Nz)
	sample := func(fx, fy, fz float64) float64 {
		clampf := func(v, lo, hi float64) float64 {
			if v < lo {
				return lo
			}
			if v > hi {
				return hi
			}
			return v
		}
		fx = clampf(fx, 0, float64(coarseShape.Nx-1))
		fy = clampf(fy, 0, float64(coarseShape.Ny-1))
		fz = clampf(fz, 0, float64(coarseShape.Nz-1))
		x0, y0, z0 := int(fx), int(fy), int(fz)
		x1, y1, z1 := minInt(x0+1, coarseShape.Nx-1), minInt(y0+1, coarseShape.Ny-1), minInt(z0+1, coarseShape.Nz-1)
		tx, ty, tz := fx-float64(x0), fy-float64(y0), fz-float64(z0)
		at := func(x, y, z int) float64 { return coarse[coarseShape.flat(x, y, z)] }
		c00 := at(x0, y0, z0)*(1-tx) + at(x1, y0, z0)*tx
		c10 := at(x0, y1, z0)*(1-tx) + at(x1, y1, z0)*tx
		c01 := at(x0, y0, z1)*(1-tx) + at(x1, y0, z1)*tx
		c11 := at(x0, y1, z1)*(1-tx) + at(x1, y1, z1)*tx
		c0 := c00*(1-ty) + c10*ty
		c1 := c01*(1-ty) + c11*ty
		return c0*(1-tz) + c1*tz
	}
	for k := 0; k < fineShape.Nz; k++ {
		for j := 0; j < fineShape.Ny; j++ {
			for i := 0; i < fineShape.Nx; i++ {
				out[fineShape.flat(i, j, k)] = sample(
					(float64(i)+0.5)*sx-0.5,
					(float64(j)+0.5)*sy-0.5,
					(float64(k)+0.5)*sz-0.5,
				)
			}
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// coarsenSystem restricts a StructuredSystem's coefficients and current
// residual onto a half-resolution grid (an approximate re-discretization
// rather than an exact Galerkin triple product, adequate for the
// smoothly-varying coefficients a voxel Poisson/diffusion assembly
// produces away from solid boundaries).
func coarsenSystem(s *StructuredSystem, kernel [4]float64) *StructuredSystem {
	center, coarse := restrictField(s.Center, s.Shape, kernel)
	px, _ := restrictField(s.PlusX, s.Shape, kernel)
	py, _ := restrictField(s.PlusY, s.Shape, kernel)
	pz, _ := restrictField(s.PlusZ, s.Shape, kernel)
	out := &StructuredSystem{
		Shape:  coarse,
		Center: center,
		PlusX:  px,
		PlusY:  py,
		PlusZ:  pz,
		B:      make([]float64, coarse.size()),
		X:      make([]float64, coarse.size()),
	}
	return out
}

// MultigridVCycle runs a single V-cycle in place on s.X, recursing until
// any axis of the shape is below cfg.MinDim, where it falls back to a
// bounded, unpreconditioned CG pass (coarsestSolve) using the structured
// matvec directly.
func MultigridVCycle(s *StructuredSystem, cfg MultigridConfig) Status {
	return vcycle(s, cfg, 0)
}

func vcycle(s *StructuredSystem, cfg MultigridConfig, depth int) Status {
	sh := s.Shape
	if sh.Nx < cfg.MinDim || sh.Ny < cfg.MinDim || sh.Nz < cfg.MinDim || depth > 12 {
		return coarsestSolve(s, cfg.Config)
	}

	gsCfg := Config{MaxIterations: cfg.PreSweeps, Tolerance: 0}
	GaussSeidelRedBlack(s, gsCfg)

	r := make([]float64, sh.size())
	resNorm := s.Residual(r)
	if resNorm < cfg.Tolerance {
		return Status{Converged: true, Iterations: depth, Residual: resNorm}
	}

	kernel := restrictionKernel(cfg.Staggered)
	coarse := coarsenSystem(s, kernel)
	coarseR, coarseShape := restrictField(r, sh, kernel)
	copy(coarse.B, coarseR)

	vcycle(coarse, cfg, depth+1)

	correction := prolongField(coarse.X, coarseShape, sh)
	for i := range s.X {
		s.X[i] += correction[i]
	}

	GaussSeidelRedBlack(s, Config{MaxIterations: cfg.PostSweeps, Tolerance: 0})
	final := s.Residual(r)
	return Status{Converged: final < cfg.Tolerance, Iterations: depth, Residual: final}
}

// coarsestSolve runs a tight, bounded conjugate-gradient pass as the
// base case instead of relying on "enough smoother iterations": at
// MinDim resolution the system is tiny, so plain CG on the structured
// matvec converges to near machine precision in a few dozen iterations
// and cannot silently stall the whole V-cycle.
func coarsestSolve(s *StructuredSystem, cfg Config) Status {
	n := s.Shape.size()
	r := make([]float64, n)
	p := make([]float64, n)
	ap := make([]float64, n)

	res := s.Residual(r)
	if res < cfg.Tolerance {
		return Status{Converged: true, Iterations: 0, Residual: res}
	}
	copy(p, r)
	rr := dot(r, r)

	maxIt := 2 * n
	for it := 0; it < maxIt; it++ {
		s.MulVec(ap, p)
		pap := dot(p, ap)
		if pap == 0 {
			break
		}
		alpha := rr / pap
		for i := 0; i < n; i++ {
			s.X[i] += alpha * p[i]
			r[i] -= alpha * ap[i]
		}
		rrNew := dot(r, r)
		if sqrt(rrNew) < cfg.Tolerance {
			return Status{Converged: true, Iterations: it + 1, Residual: sqrt(rrNew)}
		}
		beta := rrNew / rr
		for i := 0; i < n; i++ {
			p[i] = r[i] + beta*p[i]
		}
		rr = rrNew
	}
	return Status{Converged: false, Iterations: maxIt, Residual: sqrt(rr)}
}
