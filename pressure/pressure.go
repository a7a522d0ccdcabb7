// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package pressure implements the single-phase (full-cell) and
// fractional (sub-cell) Poisson pressure-projection variants:
// given a face-centered velocity u*, solve for a cell-centered pressure
// p such that u = u* - dt*grad(p)/rho is divergence-free inside the
// fluid, then apply that gradient back to the face velocities. Both
// variants assemble a compacted CSR system over the active (fluid)
// cells and solve it with linsys.ICCG.
package pressure

import (
	"github.com/cpmech/gofluid/boundary"
	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/levelset"
	"github.com/cpmech/gofluid/linsys"
	"github.com/cpmech/gofluid/numerics"
)

// CellKind classifies a cell for the single-phase variant.
type CellKind int

const (
	Fluid CellKind = iota
	Air
	Solid
)

// Classifier returns the kind of cell (i,j,k).
type Classifier func(i, j, k int) CellKind

// thetaFloor is the minimum interface fraction kept by the fractional
// variant's ghost-pressure coefficient 1/theta; without the floor a
// vanishing theta blows up the system's conditioning.
const thetaFloor = 0.01

// enumeration maps active cells (by a caller-supplied predicate) to a
// compacted 0..N-1 row index, x-fastest.
type enumeration struct {
	nx, ny, nz int
	n          int
	id         []int // -1 for inactive cells
}

func (e *enumeration) at(i, j, k int) int {
	if i < 0 || j < 0 || k < 0 || i >= e.nx || j >= e.ny || k >= e.nz {
		return -1
	}
	return e.id[i+e.nx*(j+e.ny*k)]
}

// SolveSinglePhase assembles and solves the full-cell Poisson system:
// a fluid row gets the standard 7-point Laplacian; an air
// neighbor contributes the fluid-side diagonal coefficient with no
// off-diagonal entry (treated as an open, zero-pressure boundary); a
// solid neighbor drops both (its face velocity is assumed already set
// to the collider's normal velocity by boundary.ConstrainVelocity, so
// the cell's plain divergence already carries the solid flux into the
// right-hand side). The solved pressure is applied back to u in place.
func SolveSinglePhase(u *geo.FaceCenteredGrid, classify Classifier, dt, rho float64, cfg linsys.Config) (*geo.ScalarGrid, linsys.Status) {
	nx, ny, nz := u.Resolution()
	h := u.Spacing()

	enum := newEnumerationCounted(nx, ny, nz, func(i, j, k int) bool { return classify(i, j, k) == Fluid })

	builder := linsys.NewCSRBuilder(enum.n, enum.n*7)
	b := make([]float64, enum.n)

	invH2 := [3]float64{1 / (h.X() * h.X()), 1 / (h.Y() * h.Y()), 1 / (h.Z() * h.Z())}
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		row := enum.at(i, j, k)
		if row < 0 {
			return
		}
		center := 0.0
		neighbors := [6][4]int{
			{i + 1, j, k, 0}, {i - 1, j, k, 0},
			{i, j + 1, k, 1}, {i, j - 1, k, 1},
			{i, j, k + 1, 2}, {i, j, k - 1, 2},
		}
		for _, nb := range neighbors {
			ni, nj, nk, axis := nb[0], nb[1], nb[2], nb[3]
			kind := Air
			if ni >= 0 && nj >= 0 && nk >= 0 && ni < nx && nj < ny && nk < nz {
				kind = classify(ni, nj, nk)
			}
			switch kind {
			case Solid:
				// no coupling, no diagonal contribution
			case Fluid:
				center += invH2[axis]
				builder.Put(row, enum.at(ni, nj, nk), -invH2[axis])
			default: // Air / out-of-domain: open zero-pressure boundary
				center += invH2[axis]
			}
		}
		builder.Put(row, row, center)
		// the assembled matrix is -Laplacian (positive definite), so the
		// right-hand side carries the negated divergence
		b[row] = -rho / dt * u.DivergenceAtCellCenter(i, j, k)
	})

	sys := builder.Build()
	copy(sys.B, b)
	status := linsys.ICCG(sys, cfg)

	p := geo.NewScalarGrid(geo.Config{Nx: nx, Ny: ny, Nz: nz, H: h, Origin: u.Origin()})
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		if row := enum.at(i, j, k); row >= 0 {
			p.Set(i, j, k, sys.X[row])
		}
	})

	applyGradientSinglePhase(u, p, classify, dt, rho)
	return p, status
}

// applyGradientSinglePhase updates u -= dt*grad(p)/rho on every face not
// touching a solid cell. Domain-boundary faces update against the same
// zero-pressure ghost the matrix assembly assumed, so edge cells end up
// as divergence-free as interior ones.
func applyGradientSinglePhase(u *geo.FaceCenteredGrid, p *geo.ScalarGrid, classify Classifier, dt, rho float64) {
	nx, ny, nz := u.Resolution()
	h := u.Spacing()
	kindAt := func(i, j, k int) CellKind {
		if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
			return Air
		}
		return classify(i, j, k)
	}
	pAt := func(i, j, k int) float64 {
		if kindAt(i, j, k) != Fluid {
			return 0
		}
		return p.At(i, j, k)
	}
	scale := dt / rho
	numerics.ForEachIndex(numerics.Shape3{Nx: nx + 1, Ny: ny, Nz: nz}, func(i, j, k int) {
		if kindAt(i-1, j, k) == Solid || kindAt(i, j, k) == Solid {
			return
		}
		u.U.Set(i, j, k, u.U.At(i, j, k)-scale*(pAt(i, j, k)-pAt(i-1, j, k))/h.X())
	})
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny + 1, Nz: nz}, func(i, j, k int) {
		if kindAt(i, j-1, k) == Solid || kindAt(i, j, k) == Solid {
			return
		}
		u.V.Set(i, j, k, u.V.At(i, j, k)-scale*(pAt(i, j, k)-pAt(i, j-1, k))/h.Y())
	})
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz + 1}, func(i, j, k int) {
		if kindAt(i, j, k-1) == Solid || kindAt(i, j, k) == Solid {
			return
		}
		u.W.Set(i, j, k, u.W.At(i, j, k)-scale*(pAt(i, j, k)-pAt(i, j, k-1))/h.Z())
	})
}

// SolveFractional assembles the sub-cell variant: rows are the
// liquid cells (fluidSDF<=0); coupling to a liquid neighbor is scaled by
// the non-solid face weight from cond; coupling to an air neighbor
// (fluidSDF>0) is folded into the diagonal with the ghost-pressure
// coefficient 1/theta, theta from fraction-inside of the two cells'
// fluid SDF samples, floored at thetaFloor. After the solve, the
// pressure gradient is applied to u scaled by 1/theta on interface
// faces so the result stays divergence-free across the fractional
// interface.
func SolveFractional(u *geo.FaceCenteredGrid, cond *boundary.Conditions, fluidSDF *geo.ScalarGrid, dt, rho float64, cfg linsys.Config) (*geo.ScalarGrid, linsys.Status) {
	nx, ny, nz := u.Resolution()
	h := u.Spacing()

	isLiquid := func(i, j, k int) bool {
		if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
			return false
		}
		return fluidSDF.At(i, j, k) <= 0
	}
	enum := newEnumerationCounted(nx, ny, nz, isLiquid)

	builder := linsys.NewCSRBuilder(enum.n, enum.n*7)
	b := make([]float64, enum.n)
	invH2 := [3]float64{1 / (h.X() * h.X()), 1 / (h.Y() * h.Y()), 1 / (h.Z() * h.Z())}

	faceWeight := func(i, j, k, axis int) float64 {
		switch axis {
		case 0:
			return cond.UWeight(i, j, k)
		case 1:
			return cond.VWeight(i, j, k)
		default:
			return cond.WWeight(i, j, k)
		}
	}

	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		row := enum.at(i, j, k)
		if row < 0 {
			return
		}
		center := 0.0
		phiC := fluidSDF.At(i, j, k)
		type nb struct {
			di, dj, dk, axis, faceI, faceJ, faceK int
		}
		neighbors := [6]nb{
			{1, 0, 0, 0, i + 1, j, k},
			{-1, 0, 0, 0, i, j, k},
			{0, 1, 0, 1, i, j + 1, k},
			{0, -1, 0, 1, i, j, k},
			{0, 0, 1, 2, i, j, k + 1},
			{0, 0, -1, 2, i, j, k},
		}
		for _, n := range neighbors {
			ni, nj, nk := i+n.di, j+n.dj, k+n.dk
			w := faceWeight(n.faceI, n.faceJ, n.faceK, n.axis)
			if w <= 0 {
				continue
			}
			coef := w * invH2[n.axis]
			if ni < 0 || nj < 0 || nk < 0 || ni >= nx || nj >= ny || nk >= nz {
				// open domain edge: full-theta ghost at zero pressure
				center += coef
				continue
			}
			if isLiquid(ni, nj, nk) {
				center += coef
				builder.Put(row, enum.at(ni, nj, nk), -coef)
			} else {
				theta := levelset.FractionInsideEdge(phiC, fluidSDF.At(ni, nj, nk))
				if theta < thetaFloor {
					theta = thetaFloor
				}
				center += coef / theta
			}
		}
		builder.Put(row, row, center)
		// negated divergence: the matrix is -Laplacian, same sign
		// convention as the single-phase assembly
		b[row] = -rho / dt * u.DivergenceAtCellCenter(i, j, k)
	})

	sys := builder.Build()
	copy(sys.B, b)
	status := linsys.ICCG(sys, cfg)

	p := geo.NewScalarGrid(geo.Config{Nx: nx, Ny: ny, Nz: nz, H: h, Origin: u.Origin()})
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		if row := enum.at(i, j, k); row >= 0 {
			p.Set(i, j, k, sys.X[row])
		}
	})

	applyGradientFractional(u, p, cond, fluidSDF, dt, rho)
	return p, status
}

func applyGradientFractional(u *geo.FaceCenteredGrid, p *geo.ScalarGrid, cond *boundary.Conditions, fluidSDF *geo.ScalarGrid, dt, rho float64) {
	nx, ny, nz := u.Resolution()
	h := u.Spacing()
	scale := dt / rho

	pAt := func(i, j, k int) float64 {
		if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
			return 0
		}
		return p.At(i, j, k)
	}
	phiAt := func(i, j, k int) float64 {
		// out-of-domain reads as liquid so the open-boundary ghost keeps
		// theta=1, matching the assembly's full-coefficient edge term
		if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
			return -1
		}
		return fluidSDF.At(i, j, k)
	}
	interfaceScale := func(phiA, phiB float64) float64 {
		if phiA <= 0 && phiB <= 0 {
			return 1
		}
		var phiC, phiN float64
		if phiA <= 0 {
			phiC, phiN = phiA, phiB
		} else {
			phiC, phiN = phiB, phiA
		}
		theta := levelset.FractionInsideEdge(phiC, phiN)
		if theta < thetaFloor {
			theta = thetaFloor
		}
		return 1 / theta
	}

	numerics.ForEachIndex(numerics.Shape3{Nx: nx + 1, Ny: ny, Nz: nz}, func(i, j, k int) {
		w := cond.UWeight(i, j, k)
		if w <= 0 {
			return
		}
		s := interfaceScale(phiAt(i-1, j, k), phiAt(i, j, k))
		u.U.Set(i, j, k, u.U.At(i, j, k)-s*scale*(pAt(i, j, k)-pAt(i-1, j, k))/h.X())
	})
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny + 1, Nz: nz}, func(i, j, k int) {
		w := cond.VWeight(i, j, k)
		if w <= 0 {
			return
		}
		s := interfaceScale(phiAt(i, j-1, k), phiAt(i, j, k))
		u.V.Set(i, j, k, u.V.At(i, j, k)-s*scale*(pAt(i, j, k)-pAt(i, j-1, k))/h.Y())
	})
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz + 1}, func(i, j, k int) {
		w := cond.WWeight(i, j, k)
		if w <= 0 {
			return
		}
		s := interfaceScale(phiAt(i, j, k-1), phiAt(i, j, k))
		u.W.Set(i, j, k, u.W.At(i, j, k)-s*scale*(pAt(i, j, k)-pAt(i, j, k-1))/h.Z())
	})
}

func newEnumerationCounted(nx, ny, nz int, active func(i, j, k int) bool) *enumeration {
	e := &enumeration{nx: nx, ny: ny, nz: nz, id: make([]int, nx*ny*nz)}
	n := 0
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				p := i + nx*(j+ny*k)
				if active(i, j, k) {
					e.id[p] = n
					n++
				} else {
					e.id[p] = -1
				}
			}
		}
	}
	e.n = n
	return e
}
