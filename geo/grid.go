// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package geo implements the structured-grid primitives of the solver:
// cell-centered, vertex-centered and face-centered sampling, clamped
// tri-linear interpolation, and the differential operators (gradient,
// divergence, curl, Laplacian) that every advection/diffusion/pressure
// stage is built on. A single offsetGrid type is parameterized by a
// per-axis sample offset so the three placements share one
// implementation instead of three parallel hierarchies.
package geo

import (
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/numerics"
)

// Config describes resolution, spacing and origin shared by every grid
// kind: defaulted fields, validated once by the constructor that
// consumes it.
type Config struct {
	Nx, Ny, Nz int        // resolution (unsigned in spirit; validated > 0)
	H          mgl64.Vec3 // grid spacing (hx,hy,hz), must be strictly positive
	Origin     mgl64.Vec3 // world-space origin of the grid bounding box
}

// validate panics via chk.Panic on invalid configuration; a structurally
// bad grid is fatal at construction.
func (c Config) validate() {
	if c.Nx <= 0 || c.Ny <= 0 || c.Nz <= 0 {
		chk.Panic("grid resolution must be positive: got (%d,%d,%d)", c.Nx, c.Ny, c.Nz)
	}
	if c.H.X() <= 0 || c.H.Y() <= 0 || c.H.Z() <= 0 {
		chk.Panic("grid spacing must be strictly positive: got %v", c.H)
	}
}

// offsetGrid is the shared representation for all three sample placements.
// Off is the fractional offset (0 or 0.5) applied per axis when mapping a
// world position to a continuous data-space index: vertex axes and a
// face's normal axis use 0, cell axes and a face's tangential axes use 0.5.
type offsetGrid struct {
	nx, ny, nz int
	h          mgl64.Vec3
	origin     mgl64.Vec3
	off        mgl64.Vec3
	data       []float64
}

func newOffsetGrid(cfg Config, nx, ny, nz int, off mgl64.Vec3) *offsetGrid {
	cfg.validate()
	return &offsetGrid{
		nx: nx, ny: ny, nz: nz,
		h:      cfg.H,
		origin: cfg.Origin,
		off:    off,
		data:   make([]float64, nx*ny*nz),
	}
}

// Resolution returns the data extents of the grid.
func (g *offsetGrid) Resolution() (nx, ny, nz int) { return g.nx, g.ny, g.nz }

// Spacing returns (hx,hy,hz).
func (g *offsetGrid) Spacing() mgl64.Vec3 { return g.h }

// Origin returns the grid's world-space origin.
func (g *offsetGrid) Origin() mgl64.Vec3 { return g.origin }

func (g *offsetGrid) flat(i, j, k int) int { return i + g.nx*(j+g.ny*k) }

func clampIdx(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// At returns the value at index (i,j,k), clamping out-of-range indices to
// the nearest valid index.
func (g *offsetGrid) At(i, j, k int) float64 {
	i, j, k = clampIdx(i, g.nx), clampIdx(j, g.ny), clampIdx(k, g.nz)
	return g.data[g.flat(i, j, k)]
}

// Set assigns the value at (i,j,k); indices must be in range.
func (g *offsetGrid) Set(i, j, k int, v float64) {
	g.data[g.flat(i, j, k)] = v
}

// DataPosition returns the world-space sample position of index (i,j,k).
func (g *offsetGrid) DataPosition(i, j, k int) mgl64.Vec3 {
	return mgl64.Vec3{
		g.origin.X() + (float64(i)+g.off.X())*g.h.X(),
		g.origin.Y() + (float64(j)+g.off.Y())*g.h.Y(),
		g.origin.Z() + (float64(k)+g.off.Z())*g.h.Z(),
	}
}

// continuousIndex maps a world position to the (possibly fractional,
// possibly out-of-range) data-space index.
func (g *offsetGrid) continuousIndex(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		(p.X()-g.origin.X())/g.h.X() - g.off.X(),
		(p.Y()-g.origin.Y())/g.h.Y() - g.off.Y(),
		(p.Z()-g.origin.Z())/g.h.Z() - g.off.Z(),
	}
}

// Sample performs clamped tri-linear interpolation at world position p.
func (g *offsetGrid) Sample(p mgl64.Vec3) float64 {
	c := g.continuousIndex(p)
	return g.sampleContinuous(c)
}

func (g *offsetGrid) sampleContinuous(c mgl64.Vec3) float64 {
	i0, fx := floorFrac(c.X(), g.nx)
	j0, fy := floorFrac(c.Y(), g.ny)
	k0, fz := floorFrac(c.Z(), g.nz)
	i1, j1, k1 := i0+1, j0+1, k0+1

	v000 := g.At(i0, j0, k0)
	v100 := g.At(i1, j0, k0)
	v010 := g.At(i0, j1, k0)
	v110 := g.At(i1, j1, k0)
	v001 := g.At(i0, j0, k1)
	v101 := g.At(i1, j0, k1)
	v011 := g.At(i0, j1, k1)
	v111 := g.At(i1, j1, k1)

	return lerp3(v000, v100, v010, v110, v001, v101, v011, v111, fx, fy, fz)
}

// floorFrac splits a continuous coordinate into a base index (clamped to
// [0,n-1]) and the fractional part in [0,1], so the caller can index
// i0 and i0+1 safely (both get clamped by At).
func floorFrac(c float64, n int) (int, float64) {
	i := int(c)
	if c < 0 {
		i--
	}
	f := c - float64(i)
	if i < 0 {
		i, f = 0, 0
	}
	if i >= n {
		i, f = n-1, 0
	}
	return i, f
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func lerp3(v000, v100, v010, v110, v001, v101, v011, v111, fx, fy, fz float64) float64 {
	x00 := lerp(v000, v100, fx)
	x10 := lerp(v010, v110, fx)
	x01 := lerp(v001, v101, fx)
	x11 := lerp(v011, v111, fx)
	y0 := lerp(x00, x10, fy)
	y1 := lerp(x01, x11, fy)
	return lerp(y0, y1, fz)
}

// ForEachDataPointIndex iterates all indices serially, x-fastest.
func (g *offsetGrid) ForEachDataPointIndex(f func(i, j, k int)) {
	for k := 0; k < g.nz; k++ {
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				f(i, j, k)
			}
		}
	}
}

// ParallelForEachDataPointIndex iterates all indices using the shared
// worker pool; there is no ordering guarantee between calls and the body
// must partition its writes by index.
func (g *offsetGrid) ParallelForEachDataPointIndex(f func(i, j, k int)) {
	numerics.ParallelForEachIndex(numerics.Shape3{Nx: g.nx, Ny: g.ny, Nz: g.nz}, f)
}

// GradientAtDataPoint returns the central-difference gradient at (i,j,k),
// falling back to a one-sided difference at the boundary.
func (g *offsetGrid) GradientAtDataPoint(i, j, k int) mgl64.Vec3 {
	return mgl64.Vec3{
		g.partialDeriv(i, j, k, 0),
		g.partialDeriv(i, j, k, 1),
		g.partialDeriv(i, j, k, 2),
	}
}

// partialDeriv computes d/dAxis at (i,j,k) with a central difference in
// the interior and a one-sided difference at the boundary.
func (g *offsetGrid) partialDeriv(i, j, k, axis int) float64 {
	var n int
	var h float64
	switch axis {
	case 0:
		n, h = g.nx, g.h.X()
	case 1:
		n, h = g.ny, g.h.Y()
	default:
		n, h = g.nz, g.h.Z()
	}
	idx := [3]int{i, j, k}
	lo, hi := idx, idx
	lo[axis]--
	hi[axis]++
	if idx[axis] == 0 {
		// forward difference
		return (g.at3(hi) - g.at3(idx)) / h
	}
	if idx[axis] == n-1 {
		// backward difference
		return (g.at3(idx) - g.at3(lo)) / h
	}
	return (g.at3(hi) - g.at3(lo)) / (2 * h)
}

func (g *offsetGrid) at3(idx [3]int) float64 { return g.At(idx[0], idx[1], idx[2]) }

// LaplacianAtDataPoint returns the 7-point discrete Laplacian at (i,j,k).
func (g *offsetGrid) LaplacianAtDataPoint(i, j, k int) float64 {
	c := g.At(i, j, k)
	hx2, hy2, hz2 := g.h.X()*g.h.X(), g.h.Y()*g.h.Y(), g.h.Z()*g.h.Z()
	lap := (g.At(i-1, j, k) - 2*c + g.At(i+1, j, k)) / hx2
	lap += (g.At(i, j-1, k) - 2*c + g.At(i, j+1, k)) / hy2
	lap += (g.At(i, j, k-1) - 2*c + g.At(i, j, k+1)) / hz2
	return lap
}

// Data returns the raw backing slice in x-fastest order (used by the
// serializer and by tests; callers must not change its length).
func (g *offsetGrid) Data() []float64 { return g.data }

// Fill sets every sample to v.
func (g *offsetGrid) Fill(v float64) {
	for i := range g.data {
		g.data[i] = v
	}
}
