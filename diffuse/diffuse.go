// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package diffuse implements forward- and backward-Euler diffusion of a
// cell-centered scalar field, with Dirichlet or Neumann boundary
// conditions derived from a boundary SDF: Dirichlet zeroes the value
// inside the solid, Neumann mirrors the nearest fluid value across the
// interface (zero normal derivative).
package diffuse

import (
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/linsys"
	"github.com/cpmech/gofluid/numerics"
)

// BoundaryKind selects how a solid neighbor couples into the diffusion
// stencil.
type BoundaryKind int

const (
	// Dirichlet treats the solid-side value as zero.
	Dirichlet BoundaryKind = iota
	// Neumann mirrors the fluid-side value (zero normal derivative).
	Neumann
)

// ForwardEuler advances out = in + dt*diffusivity*Laplacian(in). Stable
// only when dt*diffusivity <= h^2/(2*dimension); callers are expected to
// sub-step or prefer BackwardEuler when that bound is violated. A
// violation is logged, not fatal.
func ForwardEuler(in *geo.ScalarGrid, diffusivity, dt float64, out *geo.ScalarGrid) {
	h := in.Spacing()
	minH2 := h.X() * h.X()
	if hy2 := h.Y() * h.Y(); hy2 < minH2 {
		minH2 = hy2
	}
	if hz2 := h.Z() * h.Z(); hz2 < minH2 {
		minH2 = hz2
	}
	if dt*diffusivity > minH2/6 {
		io.Pfyel("warning: forward-Euler diffusion step unstable: dt*mu=%v > h^2/6=%v\n", dt*diffusivity, minH2/6)
	}
	nx, ny, nz := in.Resolution()
	numerics.ParallelForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		lap := in.LaplacianAtDataPoint(i, j, k)
		out.Set(i, j, k, in.At(i, j, k)+dt*diffusivity*lap)
	})
}

// BackwardEuler solves (I - dt*diffusivity*Laplacian) out = in via the
// linear-system core, with per-neighbor boundary coupling derived from
// sdf: a neighbor cell with sdf<=0 is solid. BoundarySDF may be nil, in
// which case the whole domain is treated as fluid (pure Neumann-free
// interior solve).
func BackwardEuler(in *geo.ScalarGrid, diffusivity, dt float64, sdf *geo.ScalarGrid, kind BoundaryKind, solverCfg linsys.Config) (*geo.ScalarGrid, linsys.Status) {
	nx, ny, nz := in.Resolution()
	h := in.Spacing()
	shape := linsys.Shape3{Nx: nx, Ny: ny, Nz: nz}
	sys := linsys.NewStructuredSystem(shape)

	isSolid := func(i, j, k int) bool {
		if sdf == nil {
			return false
		}
		if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
			return false
		}
		return sdf.At(i, j, k) <= 0
	}

	type axisNeighbor struct {
		di, dj, dk int
		hh         float64
	}
	axes := []axisNeighbor{
		{1, 0, 0, h.X() * h.X()}, {-1, 0, 0, h.X() * h.X()},
		{0, 1, 0, h.Y() * h.Y()}, {0, -1, 0, h.Y() * h.Y()},
		{0, 0, 1, h.Z() * h.Z()}, {0, 0, -1, h.Z() * h.Z()},
	}

	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		p := shape.Flat(i, j, k)
		center := 1.0
		for _, a := range axes {
			ni, nj, nk := i+a.di, j+a.dj, k+a.dk
			coef := dt * diffusivity / a.hh
			switch {
			case !shape.InRange(ni, nj, nk):
				// domain edge: natural zero-flux (Neumann) boundary, no term
			case isSolid(ni, nj, nk) && kind == Dirichlet:
				center += coef
			case isSolid(ni, nj, nk) && kind == Neumann:
				// mirrored value cancels: no diagonal or off-diagonal term
			default:
				center += coef
				// each symmetric link is stored once, by its lower cell; a
				// solid cell's row carries no off-diagonal coupling
				if isSolid(i, j, k) {
					break
				}
				switch {
				case a.di == 1:
					sys.PlusX[p] = -coef
				case a.dj == 1:
					sys.PlusY[p] = -coef
				case a.dk == 1:
					sys.PlusZ[p] = -coef
				}
			}
		}
		sys.Center[p] = center
		sys.B[p] = in.At(i, j, k)
		sys.X[p] = in.At(i, j, k)
	})

	status := linsys.GaussSeidelRedBlack(sys, solverCfg)
	out := geo.NewScalarGrid(geo.Config{Nx: nx, Ny: ny, Nz: nz, H: h, Origin: in.Origin()})
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		out.Set(i, j, k, sys.X[shape.Flat(i, j, k)])
	})
	return out, status
}
