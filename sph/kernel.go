// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sph

import "math"

// kernel bundles the Poly6 (density) and Spiky-gradient (pressure/
// viscosity force) smoothing kernels over a fixed support radius h, the
// standard SPH pair.
type kernel struct {
	h float64

	poly6Coeff       float64
	poly6GradCoeff   float64
	spikyGradCoeff   float64
	spikyLaplaceCoeff float64
}

func newKernel(h float64) kernel {
	h2 := h * h
	h3 := h2 * h
	h6 := h3 * h3
	h9 := h6 * h3
	return kernel{
		h:                 h,
		poly6Coeff:        315.0 / (64.0 * math.Pi * h9),
		poly6GradCoeff:     -945.0 / (32.0 * math.Pi * h9),
		spikyGradCoeff:     -45.0 / (math.Pi * h6),
		spikyLaplaceCoeff:  45.0 / (math.Pi * h6),
	}
}

// poly6 evaluates the Poly6 density kernel at separation distance r.
func (k kernel) poly6(r float64) float64 {
	if r >= k.h {
		return 0
	}
	d := k.h*k.h - r*r
	return k.poly6Coeff * d * d * d
}

// spikyGradMagnitude returns the scalar magnitude of the Spiky kernel's
// gradient at distance r (direction is the unit vector from neighbor to
// origin, applied by the caller).
func (k kernel) spikyGradMagnitude(r float64) float64 {
	if r >= k.h || r <= 0 {
		return 0
	}
	d := k.h - r
	return k.spikyGradCoeff * d * d
}

// spikyLaplacian returns the Spiky kernel's scalar Laplacian at distance
// r, used by the viscosity force.
func (k kernel) spikyLaplacian(r float64) float64 {
	if r >= k.h {
		return 0
	}
	return k.spikyLaplaceCoeff * (k.h - r)
}
