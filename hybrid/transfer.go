// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hybrid

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// component is the subset of a staggered-velocity-component grid the
// transfer kernels and addConstant need; geo.FaceCenteredGrid.U/V/W (each
// a *offsetGrid) satisfy it directly.
type component interface {
	Resolution() (int, int, int)
	DataPosition(i, j, k int) mgl64.Vec3
	At(i, j, k int) float64
	Set(i, j, k int, v float64)
}

// transferToGrid scatters particle velocities onto
// the staggered grid with trilinear kernel weights. FLIP additionally
// snapshots the post-scatter grid into uBefore before projection so step
// 4 can recover the projection's delta; APIC folds each particle's
// affine matrix C_p into its contribution.
func (d *Driver) transferToGrid() {
	positions := d.sys.Positions
	velocities := d.sys.Velocities
	splatComponent(d.U.U, positions, velocities, d.cRow0, 0)
	splatComponent(d.U.V, positions, velocities, d.cRow1, 1)
	splatComponent(d.U.W, positions, velocities, d.cRow2, 2)
	if d.cfg.Scheme == FLIP {
		d.uBefore.CopyFrom(d.U)
	}
}

// splatComponent scatters the axis-th velocity component of every
// particle onto comp via trilinear weights, dividing by the accumulated
// weight per node (a weight of zero, meaning no particle reached that
// node, leaves the node at zero). When cRow is non-nil (APIC) each
// particle's contribution is corrected by its affine matrix C_p
// evaluated at the node offset from the particle.
func splatComponent(comp component, positions, velocities []mgl64.Vec3, cRow []mgl64.Vec3, axis int) {
	nx, ny, nz := comp.Resolution()
	n := nx * ny * nz
	accum := make([]float64, n)
	weight := make([]float64, n)
	origin := comp.DataPosition(0, 0, 0)
	h := cellSize(comp)
	for p, pos := range positions {
		vel := velocities[p][axis]
		ci := (pos.X() - origin.X()) / h.X()
		cj := (pos.Y() - origin.Y()) / h.Y()
		ck := (pos.Z() - origin.Z()) / h.Z()
		i0 := math.Floor(ci)
		j0 := math.Floor(cj)
		k0 := math.Floor(ck)
		fx, fy, fz := ci-i0, cj-j0, ck-k0
		for dk := 0; dk <= 1; dk++ {
			for dj := 0; dj <= 1; dj++ {
				for di := 0; di <= 1; di++ {
					i := int(i0) + di
					j := int(j0) + dj
					k := int(k0) + dk
					if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
						continue
					}
					w := lerpWeight(fx, di) * lerpWeight(fy, dj) * lerpWeight(fz, dk)
					if w <= 0 {
						continue
					}
					contribution := vel
					if cRow != nil {
						node := comp.DataPosition(i, j, k)
						r := node.Sub(pos)
						contribution += cRow[p].Dot(r)
					}
					idx := i + nx*(j+ny*k)
					accum[idx] += w * contribution
					weight[idx] += w
				}
			}
		}
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				idx := i + nx*(j+ny*k)
				if weight[idx] > 1e-12 {
					comp.Set(i, j, k, accum[idx]/weight[idx])
				} else {
					comp.Set(i, j, k, 0)
				}
			}
		}
	}
}

// addConstant adds v to every node of comp, matching
// gridfluid.addConstant's role for computeExternalForces.
func addConstant(comp component, v float64) {
	if v == 0 {
		return
	}
	nx, ny, nz := comp.Resolution()
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				comp.Set(i, j, k, comp.At(i, j, k)+v)
			}
		}
	}
}

func lerpWeight(f float64, d int) float64 {
	if d == 0 {
		return 1 - f
	}
	return f
}

// cellSize returns the component's own grid spacing, recovered from two
// adjacent data positions so this package stays independent of an
// exported component-level Spacing accessor.
func cellSize(comp component) mgl64.Vec3 {
	nx, ny, nz := comp.Resolution()
	p0 := comp.DataPosition(0, 0, 0)
	hx, hy, hz := 1.0, 1.0, 1.0
	if nx > 1 {
		hx = comp.DataPosition(1, 0, 0).X() - p0.X()
	}
	if ny > 1 {
		hy = comp.DataPosition(0, 1, 0).Y() - p0.Y()
	}
	if nz > 1 {
		hz = comp.DataPosition(0, 0, 1).Z() - p0.Z()
	}
	return mgl64.Vec3{hx, hy, hz}
}

// transferFromGrid gathers grid velocity back onto particles, per the
// configured scheme.
func (d *Driver) transferFromGrid() {
	switch d.cfg.Scheme {
	case PIC:
		for i, p := range d.sys.Positions {
			d.sys.Velocities[i] = d.U.Sample(p)
		}
	case FLIP:
		for i, p := range d.sys.Positions {
			picVel := d.U.Sample(p)
			flipVel := d.sys.Velocities[i].Add(picVel.Sub(d.uBefore.Sample(p)))
			d.sys.Velocities[i] = flipVel.Mul(1 - d.cfg.FlipBlend).Add(picVel.Mul(d.cfg.FlipBlend))
		}
	case APIC:
		for i, p := range d.sys.Positions {
			d.sys.Velocities[i] = d.U.Sample(p)
			d.rebuildAffineMatrix(i, p)
		}
	}
}

// rebuildAffineMatrix recomputes particle i's APIC affine matrix C_p
// from the grid velocity gradient around it: C_p = M * B^-1, where
// M = sum_i w_ip v_i (x_i-x_p)^T and B = sum_i w_ip (x_i-x_p)(x_i-x_p)^T
// is the weighted second-moment matrix of the stencil, inverted with
// gonum/mat.
func (d *Driver) rebuildAffineMatrix(p int, pos mgl64.Vec3) {
	var B, M [3][3]float64
	accumulateComponentStencil(d.U.U, pos, 0, &B, &M)
	accumulateComponentStencil(d.U.V, pos, 1, &B, &M)
	accumulateComponentStencil(d.U.W, pos, 2, &B, &M)
	binv := invert3x3(B)
	var c [3][3]float64
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			sum := 0.0
			for m := 0; m < 3; m++ {
				sum += M[r][m] * binv[m][col]
			}
			c[r][col] = sum
		}
	}
	d.cRow0[p] = mgl64.Vec3{c[0][0], c[0][1], c[0][2]}
	d.cRow1[p] = mgl64.Vec3{c[1][0], c[1][1], c[1][2]}
	d.cRow2[p] = mgl64.Vec3{c[2][0], c[2][1], c[2][2]}
}

// accumulateComponentStencil sums one component's contribution to the
// second-moment matrix B and the velocity-moment matrix M over the 8
// grid nodes surrounding pos.
func accumulateComponentStencil(comp component, pos mgl64.Vec3, axis int, B, M *[3][3]float64) {
	nx, ny, nz := comp.Resolution()
	origin := comp.DataPosition(0, 0, 0)
	h := cellSize(comp)
	ci := (pos.X() - origin.X()) / h.X()
	cj := (pos.Y() - origin.Y()) / h.Y()
	ck := (pos.Z() - origin.Z()) / h.Z()
	i0 := math.Floor(ci)
	j0 := math.Floor(cj)
	k0 := math.Floor(ck)
	fx, fy, fz := ci-i0, cj-j0, ck-k0
	for dk := 0; dk <= 1; dk++ {
		for dj := 0; dj <= 1; dj++ {
			for di := 0; di <= 1; di++ {
				i := int(i0) + di
				j := int(j0) + dj
				k := int(k0) + dk
				if i < 0 || j < 0 || k < 0 || i >= nx || j >= ny || k >= nz {
					continue
				}
				w := lerpWeight(fx, di) * lerpWeight(fy, dj) * lerpWeight(fz, dk)
				if w <= 0 {
					continue
				}
				node := comp.DataPosition(i, j, k)
				r := node.Sub(pos)
				v := comp.At(i, j, k)
				for a := 0; a < 3; a++ {
					for b := 0; b < 3; b++ {
						B[a][b] += w * r[a] * r[b]
					}
					M[axis][a] += w * v * r[a]
				}
			}
		}
	}
}

// invert3x3 inverts a 3x3 matrix via gonum/mat, falling back to the
// identity when it is singular.
func invert3x3(m [3][3]float64) [3][3]float64 {
	data := make([]float64, 9)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			data[r*3+c] = m[r][c]
		}
	}
	a := mat.NewDense(3, 3, data)
	var inv mat.Dense
	if err := inv.Inverse(a); err != nil {
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	var out [3][3]float64
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = inv.At(r, c)
		}
	}
	return out
}
