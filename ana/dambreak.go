// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import "math"

// DamBreakFront provides the Martin & Moyce (1952) experimental front
// position of a collapsing water column of initial width a and height
// 2a. Positions and times are nondimensional: Z = x/a and
// T = t・sqrt(2g/a).
type DamBreakFront struct {
	T []float64 // nondimensional time stations
	Z []float64 // nondimensional front position x/a
}

// Init fills the experimental table.
func (o *DamBreakFront) Init() {
	o.T = []float64{0.00, 0.41, 0.71, 0.84, 1.00, 1.19, 1.43, 1.63, 1.83, 1.98, 2.20, 2.32, 2.51, 2.66, 2.83, 2.98, 3.11, 3.33}
	o.Z = []float64{1.00, 1.11, 1.22, 1.44, 1.56, 1.78, 2.11, 2.44, 2.78, 3.11, 3.44, 3.67, 4.11, 4.44, 4.78, 5.11, 5.44, 6.00}
}

// Front returns the nondimensional front position at nondimensional
// time T, linearly interpolated and clamped to the tabulated range.
func (o DamBreakFront) Front(T float64) float64 { return interpTable(o.T, o.Z, T) }

// Nondim converts a dimensional (t, x) pair to the table's (T, Z) for a
// column of initial width a under gravity g.
func (o DamBreakFront) Nondim(t, x, a, g float64) (T, Z float64) {
	return t * math.Sqrt(2*g/a), x / a
}
