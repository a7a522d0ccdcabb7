// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package boundary converts a scene collider into grid-aligned data: it
// samples a scene collider onto aligned grids each frame (a cell-centered
// SDF, a vertex-centered SDF used for face-weight reconstruction, and the
// collider's velocity field) and constrains face velocities against the
// resulting no-penetration/friction model.
package boundary

import (
	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/levelset"
	"github.com/cpmech/gofluid/numerics"
	"github.com/cpmech/gofluid/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Conditions holds the per-frame boundary-coupling products derived from
// a single collider: the cell-centered SDF used for solid/fluid
// classification, the vertex-centered SDF used to reconstruct face
// weights via fraction-inside, and the three face-centered weight
// fields consumed by the fractional pressure solver.
type Conditions struct {
	cellSDF   *geo.ScalarGrid
	vertexSDF *geo.VertexScalarGrid
	uWeights  []float64
	vWeights  []float64
	wWeights  []float64
	shape     struct{ nx, ny, nz int }
	cfg       geo.Config
}

// weightFloor is the minimum non-zero face weight kept by the
// fractional solver; anything smaller is clamped to zero to keep
// near-singular rows out of the pressure matrix.
const weightFloor = 1e-3

// NewConditions allocates the grids backing a boundary-condition solver
// over the domain described by cfg.
func NewConditions(cfg geo.Config) *Conditions {
	c := &Conditions{cfg: cfg}
	c.cellSDF = geo.NewScalarGrid(cfg)
	c.vertexSDF = geo.NewVertexScalarGrid(cfg)
	c.shape.nx, c.shape.ny, c.shape.nz = cfg.Nx, cfg.Ny, cfg.Nz
	c.uWeights = make([]float64, (cfg.Nx+1)*cfg.Ny*cfg.Nz)
	c.vWeights = make([]float64, cfg.Nx*(cfg.Ny+1)*cfg.Nz)
	c.wWeights = make([]float64, cfg.Nx*cfg.Ny*(cfg.Nz+1))
	return c
}

// ColliderSDF returns the cell-centered signed-distance-to-collider
// grid sampled by the last Update call.
func (c *Conditions) ColliderSDF() *geo.ScalarGrid { return c.cellSDF }

// Update samples collider onto the cell-centered and vertex-centered
// SDF grids, then reconstructs the three face weight fields (the
// non-solid fraction of each face) from the vertex SDF via
// levelset.FractionInsideFace over the face's four corner samples.
func (c *Conditions) Update(collider scene.Collider) {
	c.cellSDF.ForEachDataPointIndex(func(i, j, k int) {
		c.cellSDF.Set(i, j, k, collider.SignedDistance(c.cellSDF.DataPosition(i, j, k)))
	})
	c.vertexSDF.ForEachDataPointIndex(func(i, j, k int) {
		c.vertexSDF.Set(i, j, k, collider.SignedDistance(c.vertexSDF.DataPosition(i, j, k)))
	})

	nx, ny, nz := c.shape.nx, c.shape.ny, c.shape.nz
	vAt := func(i, j, k int) float64 { return c.vertexSDF.At(i, j, k) }

	// U faces: x-normal, indexed (nx+1,ny,nz); corners are the vertex
	// grid's (i,j,k),(i,j+1,k),(i,j,k+1),(i,j+1,k+1).
	numerics.ForEachIndex(numerics.Shape3{Nx: nx + 1, Ny: ny, Nz: nz}, func(i, j, k int) {
		w := 1 - levelset.FractionInsideFace(vAt(i, j, k), vAt(i, j, k+1), vAt(i, j+1, k), vAt(i, j+1, k+1))
		c.uWeights[i+(nx+1)*(j+ny*k)] = clampWeight(w)
	})
	// V faces: y-normal, indexed (nx,ny+1,nz).
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny + 1, Nz: nz}, func(i, j, k int) {
		w := 1 - levelset.FractionInsideFace(vAt(i, j, k), vAt(i, j, k+1), vAt(i+1, j, k), vAt(i+1, j, k+1))
		c.vWeights[i+nx*(j+(ny+1)*k)] = clampWeight(w)
	})
	// W faces: z-normal, indexed (nx,ny,nz+1).
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz + 1}, func(i, j, k int) {
		w := 1 - levelset.FractionInsideFace(vAt(i, j, k), vAt(i, j+1, k), vAt(i+1, j, k), vAt(i+1, j+1, k))
		c.wWeights[i+nx*(j+ny*k)] = clampWeight(w)
	})
}

func clampWeight(w float64) float64 {
	if w < weightFloor {
		return 0
	}
	return w
}

// UWeight, VWeight, WWeight return the non-solid face fraction at the
// given face index, for the fractional pressure solver.
func (c *Conditions) UWeight(i, j, k int) float64 {
	return c.uWeights[i+(c.shape.nx+1)*(j+c.shape.ny*k)]
}
func (c *Conditions) VWeight(i, j, k int) float64 {
	return c.vWeights[i+c.shape.nx*(j+(c.shape.ny+1)*k)]
}
func (c *Conditions) WWeight(i, j, k int) float64 {
	return c.wWeights[i+c.shape.nx*(j+c.shape.ny*k)]
}

// ConstrainVelocity enforces no-penetration on every face whose
// opposite-side cell is solid (cellSDF<=0), blends the tangential
// component toward the collider's tangential velocity according to its
// friction coefficient, then extrapolates velocity up to depth layers into
// the solid. Each layer takes the average of its already-filled axis
// neighbors on the same component grid; the SDF normal direction is not
// used.
func ConstrainVelocity(u *geo.FaceCenteredGrid, cond *Conditions, collider scene.Collider, depth int) {
	constrainFaceComponent(u, cond, collider, 0)
	constrainFaceComponent(u, cond, collider, 1)
	constrainFaceComponent(u, cond, collider, 2)
	extrapolateIntoCollider(u, cond, depth)
}

// isSolidCell reports whether cell (i,j,k) is inside the collider;
// out-of-domain cells are treated as fluid (open boundary).
func isSolidCell(cond *Conditions, i, j, k int) bool {
	nx, ny, nz := cond.shape.nx, cond.shape.ny, cond.shape.nz
	if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
		return false
	}
	return levelset.IsInside(cond.cellSDF.At(i, j, k))
}

// constrainFaceComponent applies no-penetration + friction blending to
// one axis (0=U,1=V,2=W) of the staggered velocity field.
func constrainFaceComponent(u *geo.FaceCenteredGrid, cond *Conditions, collider scene.Collider, axis int) {
	var comp faceComp
	var lo [3]int
	switch axis {
	case 0:
		comp = u.U
		lo = [3]int{-1, 0, 0}
	case 1:
		comp = u.V
		lo = [3]int{0, -1, 0}
	default:
		comp = u.W
		lo = [3]int{0, 0, -1}
	}
	nx, ny, nz := comp.Resolution()
	numerics.ParallelForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		negI, negJ, negK := i+lo[0], j+lo[1], k+lo[2]
		// solid along this component's own axis: the face IS the solid
		// boundary, so its value is exactly the collider's no-penetration
		// normal velocity.
		if isSolidCell(cond, negI, negJ, negK) || isSolidCell(cond, i, j, k) {
			p := comp.DataPosition(i, j, k)
			comp.Set(i, j, k, collider.Velocity(p)[axis])
			return
		}
		// solid along a perpendicular axis: this face runs tangent to the
		// solid surface, so blend toward the collider's velocity by its
		// friction coefficient (0=free-slip leaves the fluid value,
		// 1=no-slip fully adopts the collider's tangential velocity).
		if touchesSolidPerpendicular(cond, i, j, k, axis) {
			p := comp.DataPosition(i, j, k)
			friction := collider.Friction()
			target := collider.Velocity(p)[axis]
			cur := comp.At(i, j, k)
			comp.Set(i, j, k, (1-friction)*cur+friction*target)
		}
	})
}

// touchesSolidPerpendicular reports whether the face-centered sample at
// (i,j,k) of the given axis grid has a solid cell across either of the
// two axes other than its own, meaning the face runs tangent to (rather
// than across) the solid surface.
func touchesSolidPerpendicular(cond *Conditions, i, j, k, axis int) bool {
	for a := 0; a < 3; a++ {
		if a == axis {
			continue
		}
		lo := [3]int{i, j, k}
		lo[a]--
		hi := [3]int{i, j, k}
		hi[a]++
		if isSolidCell(cond, lo[0], lo[1], lo[2]) || isSolidCell(cond, hi[0], hi[1], hi[2]) {
			return true
		}
	}
	return false
}

// extrapolateIntoCollider performs depth passes of replacing a
// solid-adjacent face value with the average of its non-solid
// neighbors along the same component grid, a band extension of the
// fluid velocity into the solid.
func extrapolateIntoCollider(u *geo.FaceCenteredGrid, cond *Conditions, depth int) {
	extrapolateComponent(u.U, cond, depth, 0)
	extrapolateComponent(u.V, cond, depth, 1)
	extrapolateComponent(u.W, cond, depth, 2)
}

type faceComp interface {
	Resolution() (int, int, int)
	DataPosition(i, j, k int) mgl64.Vec3
	At(i, j, k int) float64
	Set(i, j, k int, v float64)
}

func extrapolateComponent(comp faceComp, cond *Conditions, depth int, axis int) {
	nx, ny, nz := comp.Resolution()
	// known marks samples holding fluid velocity: initially the non-solid
	// ones, then each pass adds the layer it filled.
	known := make([]bool, nx*ny*nz)
	numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		known[i+nx*(j+ny*k)] = !levelset.IsInside(colliderSample(cond, comp.DataPosition(i, j, k)))
	})
	for pass := 0; pass < depth; pass++ {
		next := make([]float64, nx*ny*nz)
		nextKnown := append([]bool(nil), known...)
		numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
			if known[i+nx*(j+ny*k)] {
				next[i+nx*(j+ny*k)] = comp.At(i, j, k)
				return
			}
			sum, count := 0.0, 0
			offsets := [6][3]int{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
			for _, o := range offsets {
				ni, nj, nk := i+o[0], j+o[1], k+o[2]
				if ni < 0 || nj < 0 || nk < 0 || ni >= nx || nj >= ny || nk >= nz {
					continue
				}
				if !known[ni+nx*(nj+ny*nk)] {
					continue
				}
				sum += comp.At(ni, nj, nk)
				count++
			}
			if count > 0 {
				next[i+nx*(j+ny*k)] = sum / float64(count)
				nextKnown[i+nx*(j+ny*k)] = true
			} else {
				next[i+nx*(j+ny*k)] = comp.At(i, j, k)
			}
		})
		known = nextKnown
		numerics.ForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
			comp.Set(i, j, k, next[i+nx*(j+ny*k)])
		})
	}
}

// colliderSample interpolates the cell-centered SDF at an arbitrary
// world position, used by extrapolation to classify a face sample.
func colliderSample(cond *Conditions, p mgl64.Vec3) float64 {
	return cond.cellSDF.Sample(p)
}
