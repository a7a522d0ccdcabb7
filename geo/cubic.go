// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import "github.com/go-gl/mathgl/mgl64"

// catmullRom1D evaluates the Catmull-Rom cubic through four control
// points at parameter t in [0,1], monotonicity-limited: the result is
// clamped to the range of the two inner control points so the scheme
// cannot overshoot past a domain edge where a one-sided stencil is used.
func catmullRom1D(f0, f1, f2, f3, t float64) float64 {
	d1 := (f2 - f0) * 0.5
	d2 := (f3 - f1) * 0.5
	t2 := t * t
	t3 := t2 * t
	v := f1*(2*t3-3*t2+1) + d1*(t3-2*t2+t) + f2*(-2*t3+3*t2) + d2*(t3-t2)
	lo, hi := f1, f2
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	return v
}

// SampleCubic performs a monotonicity-limited Catmull-Rom interpolation at
// world position p, used by the cubic semi-Lagrangian advection variant.
func (g *offsetGrid) SampleCubic(p mgl64.Vec3) float64 {
	c := g.continuousIndex(p)
	i0, fx := floorFrac(c.X(), g.nx)
	j0, fy := floorFrac(c.Y(), g.ny)
	k0, fz := floorFrac(c.Z(), g.nz)

	// interpolate along x for the 4x4 grid of (j,k) control lines, then
	// along y for the resulting 4 z-lines, then along z.
	var zLines [4]float64
	for dz := -1; dz <= 2; dz++ {
		var yLines [4]float64
		for dy := -1; dy <= 2; dy++ {
			var xs [4]float64
			for dx := -1; dx <= 2; dx++ {
				xs[dx+1] = g.At(i0+dx, j0+dy, k0+dz)
			}
			yLines[dy+1] = catmullRom1D(xs[0], xs[1], xs[2], xs[3], fx)
		}
		zLines[dz+1] = catmullRom1D(yLines[0], yLines[1], yLines[2], yLines[3], fy)
	}
	return catmullRom1D(zLines[0], zLines[1], zLines[2], zLines[3], fz)
}
