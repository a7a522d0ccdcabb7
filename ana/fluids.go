// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import "math"

// Water handles the properties of water in SI units. SpeedOfSound feeds
// the Tait equation of state used by the SPH drivers.
type Water struct {
	Θ   float64 // reference temperature; default = 25°C or 298.15K
	K   float64 // bulk modulus @ reference temperature [Pa]
	Rho float64 // intrinsic density @ reference temperature [kg/m³]
	C   float64 // compressibility @ reference temperature [kg/(m³・Pa)]
}

// DryAir handles the properties of dry air in SI units.
type DryAir struct {
	Θ    float64 // reference temperature; default = 25°C or 298.15K
	R    float64 // specific ideal gas constant [J/(kg・K)]
	Patm float64 // absolute atmospheric pressure [Pa]
	Rho  float64 // intrinsic density @ reference temperature [kg/m³]
	C    float64 // compressibility @ reference temperature [kg/(m³・Pa)]
}

// Init initialises data
func (o *Water) Init() {
	o.Θ = 298.15     // [K]       25°C
	o.K = 2.2e9      // [Pa]      25°C
	o.Rho = 997.0479 // [kg/m³]   25°C
	o.C = o.Rho / o.K
}

// SpeedOfSound returns sqrt(K/Rho)
func (o Water) SpeedOfSound() float64 { return math.Sqrt(o.K / o.Rho) }

// Init initialises data
func (o *DryAir) Init() {
	o.Θ = 298.15                 // [K]          25°C
	o.R = 287.058                // [J/(kg・K)]  25°C
	o.Patm = 101325.0            // [Pa]
	o.Rho = o.Patm / (o.R * o.Θ) // [kg/m³]      25°C
	o.C = 1.0 / (o.R * o.Θ)
}
