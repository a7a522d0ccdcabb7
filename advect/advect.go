// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package advect implements semi-Lagrangian advection: for each
// output sample position x, trace x_prev = x - dt*flow.Sample(x) and set
// output(x) = input.Sample(x_prev), with a Catmull-Rom cubic variant and
// optional boundary-SDF clamping of the back-traced position.
package advect

import (
	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/numerics"
	"github.com/go-gl/mathgl/mgl64"
)

// Method selects the interpolation kernel used to sample the input field
// at the back-traced position.
type Method int

const (
	Linear Method = iota
	Cubic
)

// Config bundles the advection knobs shared by the scalar and vector
// entry points.
type Config struct {
	Method      Method
	BoundarySDF *geo.ScalarGrid // optional; phi<0 means inside solid
}

// reader is the subset of a grid's sampling API advection needs from the
// field being carried.
type reader interface {
	Sample(p mgl64.Vec3) float64
	SampleCubic(p mgl64.Vec3) float64
}

// writer is the subset of a grid's API advection needs from the output
// field being written.
type writer interface {
	Resolution() (nx, ny, nz int)
	DataPosition(i, j, k int) mgl64.Vec3
	Set(i, j, k int, v float64)
}

func sampleWith(r reader, p mgl64.Vec3, m Method) float64 {
	if m == Cubic {
		return r.SampleCubic(p)
	}
	return r.Sample(p)
}

// backTrace returns x - dt*flow.Sample(x), falling back to x itself when
// the traced point lands inside the solid described by sdf; x is
// guaranteed fluid-side since it is the position of an output sample
// already subject to the driver's boundary conditions.
func backTrace(x mgl64.Vec3, flow *geo.FaceCenteredGrid, dt float64, sdf *geo.ScalarGrid) mgl64.Vec3 {
	v := flow.Sample(x)
	prev := x.Sub(v.Mul(dt))
	if sdf != nil && sdf.Sample(prev) < 0 {
		return x
	}
	return prev
}

func advectComponent(in reader, out writer, flow *geo.FaceCenteredGrid, dt float64, cfg Config) {
	nx, ny, nz := out.Resolution()
	numerics.ParallelForEachIndex(numerics.Shape3{Nx: nx, Ny: ny, Nz: nz}, func(i, j, k int) {
		p := out.DataPosition(i, j, k)
		prev := backTrace(p, flow, dt, cfg.BoundarySDF)
		out.Set(i, j, k, sampleWith(in, prev, cfg.Method))
	})
}

// Scalar advects a cell-centered or vertex-centered scalar field: in and
// out must share the same grid kind and shape, and out may alias in's
// storage only if the caller has already snapshotted in's data (the
// implementation reads in and writes out independently per sample, which
// is safe when out is a distinct buffer).
func Scalar(in *geo.ScalarGrid, flow *geo.FaceCenteredGrid, dt float64, out *geo.ScalarGrid, cfg Config) {
	advectComponent(in, out, flow, dt, cfg)
}

// Vector advects a face-centered velocity field component-by-component,
// each component sampled at its own staggered position and back-traced
// through the full (possibly different) flow field.
func Vector(in *geo.FaceCenteredGrid, flow *geo.FaceCenteredGrid, dt float64, out *geo.FaceCenteredGrid, cfg Config) {
	advectComponent(in.U, out.U, flow, dt, cfg)
	advectComponent(in.V, out.V, flow, dt, cfg)
	advectComponent(in.W, out.W, flow, dt, cfg)
}
