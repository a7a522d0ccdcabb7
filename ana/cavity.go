// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

// GhiaCavityRe100 bundles the Ghia, Ghia & Shin (1982) benchmark values
// for the lid-driven square cavity at Re=100: u along the vertical
// centerline (x=0.5), v along the horizontal centerline (y=0.5), and the
// primary-vortex stream-function extremum.
type GhiaCavityRe100 struct {
	Yu     []float64 // y stations of the u-velocity profile
	U      []float64 // u at (0.5, Yu[i]), lid velocity = 1
	Xv     []float64 // x stations of the v-velocity profile
	V      []float64 // v at (Xv[i], 0.5)
	PsiMin float64   // stream-function minimum (primary vortex strength)
	XPsi   float64   // x location of the primary vortex center
	YPsi   float64   // y location of the primary vortex center
}

// Init fills the published table values.
func (o *GhiaCavityRe100) Init() {
	o.Yu = []float64{0.0000, 0.0547, 0.0625, 0.0703, 0.1016, 0.1719, 0.2813, 0.4531, 0.5000, 0.6172, 0.7344, 0.8516, 0.9531, 0.9609, 0.9688, 0.9766, 1.0000}
	o.U = []float64{0.00000, -0.03717, -0.04192, -0.04775, -0.06434, -0.10150, -0.15662, -0.21090, -0.20581, -0.13641, 0.00332, 0.23151, 0.68717, 0.73722, 0.78871, 0.84123, 1.00000}
	o.Xv = []float64{0.0000, 0.0625, 0.0703, 0.0781, 0.0938, 0.1563, 0.2266, 0.2344, 0.5000, 0.8047, 0.8594, 0.9063, 0.9453, 0.9531, 0.9609, 0.9688, 1.0000}
	o.V = []float64{0.00000, 0.09233, 0.10091, 0.10890, 0.12317, 0.16077, 0.17507, 0.17527, 0.05454, -0.24533, -0.22445, -0.16914, -0.10313, -0.08864, -0.07391, -0.05906, 0.00000}
	o.PsiMin = -0.103423
	o.XPsi = 0.6172
	o.YPsi = 0.7344
}

// InterpU linearly interpolates the benchmark u profile at elevation y.
func (o GhiaCavityRe100) InterpU(y float64) float64 { return interpTable(o.Yu, o.U, y) }

// InterpV linearly interpolates the benchmark v profile at station x.
func (o GhiaCavityRe100) InterpV(x float64) float64 { return interpTable(o.Xv, o.V, x) }

// interpTable interpolates y(x) on a sorted table, clamping outside the
// tabulated range.
func interpTable(xs, ys []float64, x float64) float64 {
	n := len(xs)
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[n-1] {
		return ys[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= xs[i] {
			t := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + t*(ys[i]-ys[i-1])
		}
	}
	return ys[n-1]
}
