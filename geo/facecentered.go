// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"io"

	"github.com/go-gl/mathgl/mgl64"
)

// FaceCenteredGrid is a staggered velocity field: U lives on x-normal
// faces (extent nx+1,ny,nz), V on y-normal faces (nx,ny+1,nz), W on
// z-normal faces (nx,ny,nz+1). This placement is what keeps the pressure
// projection free of odd-even decoupling.
type FaceCenteredGrid struct {
	nx, ny, nz int
	h          mgl64.Vec3
	origin     mgl64.Vec3
	U, V, W    *offsetGrid
}

// NewFaceCenteredGrid allocates a zero-initialized staggered velocity
// field over cfg.Nx x cfg.Ny x cfg.Nz cells.
func NewFaceCenteredGrid(cfg Config) *FaceCenteredGrid {
	return &FaceCenteredGrid{
		nx: cfg.Nx, ny: cfg.Ny, nz: cfg.Nz,
		h:      cfg.H,
		origin: cfg.Origin,
		U:      newOffsetGrid(cfg, cfg.Nx+1, cfg.Ny, cfg.Nz, mgl64.Vec3{0, 0.5, 0.5}),
		V:      newOffsetGrid(cfg, cfg.Nx, cfg.Ny+1, cfg.Nz, mgl64.Vec3{0.5, 0, 0.5}),
		W:      newOffsetGrid(cfg, cfg.Nx, cfg.Ny, cfg.Nz+1, mgl64.Vec3{0.5, 0.5, 0}),
	}
}

// Resolution returns the cell resolution (not the per-component data
// extents, which are each one larger along their own axis).
func (g *FaceCenteredGrid) Resolution() (nx, ny, nz int) { return g.nx, g.ny, g.nz }

// Spacing returns (hx,hy,hz).
func (g *FaceCenteredGrid) Spacing() mgl64.Vec3 { return g.h }

// Origin returns the grid's world-space origin.
func (g *FaceCenteredGrid) Origin() mgl64.Vec3 { return g.origin }

// Sample interpolates each component independently at world position p.
func (g *FaceCenteredGrid) Sample(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{g.U.Sample(p), g.V.Sample(p), g.W.Sample(p)}
}

// SampleCubic interpolates each component with the monotonicity-limited
// Catmull-Rom kernel, for the cubic semi-Lagrangian advection variant.
func (g *FaceCenteredGrid) SampleCubic(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{g.U.SampleCubic(p), g.V.SampleCubic(p), g.W.SampleCubic(p)}
}

// Fill sets every component of every face to v.
func (g *FaceCenteredGrid) Fill(v float64) {
	g.U.Fill(v)
	g.V.Fill(v)
	g.W.Fill(v)
}

// CopyFrom overwrites g's data with other's (same shape assumed).
func (g *FaceCenteredGrid) CopyFrom(other *FaceCenteredGrid) {
	copy(g.U.data, other.U.data)
	copy(g.V.data, other.V.data)
	copy(g.W.data, other.W.data)
}

// DivergenceAtCellCenter differences each pair of opposite bounding face
// values into the standard central-difference divergence at cell (i,j,k).
func (g *FaceCenteredGrid) DivergenceAtCellCenter(i, j, k int) float64 {
	dudx := (g.U.At(i+1, j, k) - g.U.At(i, j, k)) / g.h.X()
	dvdy := (g.V.At(i, j+1, k) - g.V.At(i, j, k)) / g.h.Y()
	dwdz := (g.W.At(i, j, k+1) - g.W.At(i, j, k)) / g.h.Z()
	return dudx + dvdy + dwdz
}

// CurlAtCellCenter returns the cell-centered curl, built from central
// differences of face values first averaged to the neighboring cell
// centers.
func (g *FaceCenteredGrid) CurlAtCellCenter(i, j, k int) mgl64.Vec3 {
	// average face values into a cell-centered vector sample, then take
	// central differences of those averaged components.
	uc := func(i, j, k int) float64 { return 0.5 * (g.U.At(i, j, k) + g.U.At(i+1, j, k)) }
	vc := func(i, j, k int) float64 { return 0.5 * (g.V.At(i, j, k) + g.V.At(i, j+1, k)) }
	wc := func(i, j, k int) float64 { return 0.5 * (g.W.At(i, j, k) + g.W.At(i, j, k+1)) }

	dwdy := (wc(i, j+1, k) - wc(i, j-1, k)) / (2 * g.h.Y())
	dvdz := (vc(i, j, k+1) - vc(i, j, k-1)) / (2 * g.h.Z())
	dudz := (uc(i, j, k+1) - uc(i, j, k-1)) / (2 * g.h.Z())
	dwdx := (wc(i+1, j, k) - wc(i-1, j, k)) / (2 * g.h.X())
	dvdx := (vc(i+1, j, k) - vc(i-1, j, k)) / (2 * g.h.X())
	dudy := (uc(i, j+1, k) - uc(i, j-1, k)) / (2 * g.h.Y())

	return mgl64.Vec3{dwdy - dvdz, dudz - dwdx, dvdx - dudy}
}

// WriteTo persists U, V, W as three consecutive scalar-grid blocks.
func (g *FaceCenteredGrid) WriteTo(w io.Writer) (n int64, err error) {
	for _, b := range []*offsetGrid{g.U, g.V, g.W} {
		m, e := b.WriteTo(w)
		n += m
		if e != nil {
			return n, e
		}
	}
	return n, nil
}

// ReadFrom reads U, V, W from three consecutive scalar-grid blocks and
// refreshes the cell resolution/spacing/origin bookkeeping from the
// component blocks (nx from V, ny and nz from U).
func (g *FaceCenteredGrid) ReadFrom(r io.Reader) (n int64, err error) {
	for _, b := range []*offsetGrid{g.U, g.V, g.W} {
		m, e := b.ReadFrom(r)
		n += m
		if e != nil {
			return n, e
		}
	}
	g.nx, g.ny, g.nz = g.V.nx, g.U.ny, g.U.nz
	g.h, g.origin = g.U.h, g.U.origin
	return n, nil
}

// ForEachCellIndex iterates the (nx,ny,nz) cell indices, x-fastest.
func (g *FaceCenteredGrid) ForEachCellIndex(f func(i, j, k int)) {
	for k := 0; k < g.nz; k++ {
		for j := 0; j < g.ny; j++ {
			for i := 0; i < g.nx; i++ {
				f(i, j, k)
			}
		}
	}
}
