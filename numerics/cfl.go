// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numerics

import "math"

// CFLTimeStep returns the maximum stable time step under the
// Courant-Friedrichs-Lewy condition:
//
//	dt_max = cflFactor * min(h) / (maxSpeed + eps)
//
// eps guards against a division blow-up when the flow is at rest.
func CFLTimeStep(cflFactor, minSpacing, maxSpeed float64) float64 {
	const eps = 1e-12
	if minSpacing <= 0 {
		return 0
	}
	return cflFactor * minSpacing / (maxSpeed + eps)
}

// MaxAbs returns max(|v|) over the slice, 0 for an empty slice.
func MaxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		a := math.Abs(x)
		if a > m {
			m = a
		}
	}
	return m
}
