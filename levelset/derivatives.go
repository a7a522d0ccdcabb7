// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levelset

import "math"

// Stencil7 is a 1D stencil of 7 samples centered on the point of interest
// (index 3), spacing h apart: f[0..6] correspond to offsets -3..+3.
type Stencil7 [7]float64

// Upwind1 returns the first-order upwind (∂-, ∂+) derivatives.
func Upwind1(s Stencil7, h float64) (dm, dp float64) {
	dm = (s[3] - s[2]) / h
	dp = (s[4] - s[3]) / h
	return
}

// CD2 returns the second-order centered derivative, duplicated into both
// return slots since a centered scheme has no upwind bias.
func CD2(s Stencil7, h float64) (dm, dp float64) {
	d := (s[4] - s[2]) / (2 * h)
	return d, d
}

// ENO3 returns the third-order essentially-non-oscillatory (∂-, ∂+)
// derivatives, growing the stencil one level at a time toward the
// smoother (smaller divided-difference) side.
func ENO3(s Stencil7, h float64) (dm, dp float64) {
	// divided-difference table: d1[j] lives on interval [j,j+1], d2[j]
	// is centered at node j+1, d3[j] lives between the d2 centers.
	var d1 [6]float64
	for j := 0; j < 6; j++ {
		d1[j] = (s[j+1] - s[j]) / h
	}
	var d2 [5]float64
	for j := 0; j < 5; j++ {
		d2[j] = (d1[j+1] - d1[j]) / (2 * h)
	}
	var d3 [4]float64
	for j := 0; j < 4; j++ {
		d3[j] = (d2[j+1] - d2[j]) / (3 * h)
	}

	// eno evaluates the derivative at node i=3 starting from first-level
	// interval [k,k+1] (k=2 for ∂-, k=3 for ∂+).
	const i = 3
	eno := func(k int) float64 {
		q1 := d1[k]

		// second level: the candidates bracketing interval [k,k+1] are
		// the second differences at node k and node k+1
		c2 := d2[k]
		kstar := k
		if math.Abs(d2[k-1]) < math.Abs(d2[k]) {
			c2 = d2[k-1]
			kstar = k - 1
		}
		q2 := c2 * float64(2*(i-k)-1) * h

		// third level: candidates bracketing the chosen quadratic
		// stencil (leftmost node kstar)
		c3 := d3[kstar]
		if math.Abs(d3[kstar-1]) < math.Abs(d3[kstar]) {
			c3 = d3[kstar-1]
		}
		m := float64(i - kstar)
		q3 := c3 * (3*m*m - 6*m + 2) * h * h

		return q1 + q2 + q3
	}
	return eno(2), eno(3)
}

// WENO5 returns the fifth-order weighted-ENO (∂-, ∂+) derivatives using
// the standard Jiang-Shu smoothness indicators and nonlinear weights
// over the one-sided first differences.
func WENO5(s Stencil7, h float64) (dm, dp float64) {
	// ∂-: the five backward differences spanning s[0..5];
	// ∂+: the five forward differences spanning s[1..6], mirrored.
	dm = weno5One(
		(s[1]-s[0])/h, (s[2]-s[1])/h, (s[3]-s[2])/h, (s[4]-s[3])/h, (s[5]-s[4])/h)
	dp = weno5One(
		(s[6]-s[5])/h, (s[5]-s[4])/h, (s[4]-s[3])/h, (s[3]-s[2])/h, (s[2]-s[1])/h)
	return
}

// weno5One combines five upwind-ordered first differences v1..v5 (v3 is
// the difference touching the point of interest) into one derivative.
func weno5One(v1, v2, v3, v4, v5 float64) float64 {
	p0 := v1/3 - 7*v2/6 + 11*v3/6
	p1 := -v2/6 + 5*v3/6 + v4/3
	p2 := v3/3 + 5*v4/6 - v5/6

	beta0 := 13.0/12.0*sq(v1-2*v2+v3) + 0.25*sq(v1-4*v2+3*v3)
	beta1 := 13.0/12.0*sq(v2-2*v3+v4) + 0.25*sq(v2-v4)
	beta2 := 13.0/12.0*sq(v3-2*v4+v5) + 0.25*sq(3*v3-4*v4+v5)

	const eps = 1e-6
	g0, g1, g2 := 0.1, 0.6, 0.3
	w0 := g0 / sq(eps+beta0)
	w1 := g1 / sq(eps+beta1)
	w2 := g2 / sq(eps+beta2)
	sum := w0 + w1 + w2
	w0, w1, w2 = w0/sum, w1/sum, w2/sum

	return w0*p0 + w1*p1 + w2*p2
}

func sq(x float64) float64 { return x * x }
