// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sph implements the standard and predictive-corrective SPH
// particle drivers: Poly6 density, Tait-equation-of-state
// pressure force with negative-pressure scaling, Spiky-gradient viscosity
// (no separate linear damping term), gravity, semi-implicit integration
// and a pseudo-viscosity smoothing pass.
package sph

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/particles"
)

// Config is the builder-style configuration for a Solver, mirroring the
// target-density/target-spacing naming of the SPH builders this is
// grounded on.
type Config struct {
	TargetDensity   float64 // rest density rho0 (defaults to 1000.0 if zero)
	EOSExponent     float64 // Tait EOS exponent (defaults to 7.0 if zero)
	SpeedOfSound    float64 // defaults to 10.0 if zero
	NegativePressureScale float64 // scales clamped negative pressure, in [0,1]; defaults to 0
	Viscosity             float64
	PseudoViscosityCoeff  float64 // 0 disables the smoothing pass
	Gravity               mgl64.Vec3
	Searcher              particles.Searcher // defaults to &particles.ListSearcher{}
}

func (c *Config) fillDefaults() {
	if c.TargetDensity == 0 {
		c.TargetDensity = 1000.0
	}
	if c.EOSExponent == 0 {
		c.EOSExponent = 7.0
	}
	if c.SpeedOfSound == 0 {
		c.SpeedOfSound = 10.0
	}
	if c.Searcher == nil {
		c.Searcher = &particles.ListSearcher{}
	}
}

func (c Config) validate() {
	if c.TargetDensity <= 0 {
		chk.Panic("sph: TargetDensity must be positive")
	}
	if c.NegativePressureScale < 0 || c.NegativePressureScale > 1 {
		chk.Panic("sph: NegativePressureScale must be in [0,1]")
	}
}

// Solver drives a particle system through one standard-SPH step per
// call to Step. Densities and pressures live in dedicated channels on
// the underlying system so callers can inspect them between steps.
type Solver struct {
	cfg Config
	sys *particles.System
	k   kernel

	density  []float64
	pressure []float64
}

// NewSolver attaches a standard SPH solver to sys, using sys.KernelRadius
// as the smoothing length.
func NewSolver(sys *particles.System, cfg Config) *Solver {
	cfg.fillDefaults()
	cfg.validate()
	return &Solver{
		cfg:      cfg,
		sys:      sys,
		k:        newKernel(sys.KernelRadius()),
		density:  sys.AddScalarChannel("sph_density"),
		pressure: sys.AddScalarChannel("sph_pressure"),
	}
}

// Step advances the system by dt: rebuild neighbor lists, compute
// density, pressure (Tait EOS), pressure+viscosity+gravity forces,
// semi-implicit integrate, then pseudo-viscosity smoothing.
func (s *Solver) Step(dt float64) {
	s.rebind()
	s.cfg.Searcher.Build(s.sys.Positions, s.sys.KernelRadius())
	s.updateDensities()
	s.updatePressures()
	s.computeForces()
	s.integrate(dt)
	if s.cfg.PseudoViscosityCoeff > 0 {
		s.smoothVelocities()
	}
}

// rebind re-fetches the density/pressure channel slices: AddScalarChannel
// is idempotent but the backing array can be reallocated by
// AddParticle/Resize between steps.
func (s *Solver) rebind() {
	s.density = s.sys.ScalarChannel("sph_density")
	s.pressure = s.sys.ScalarChannel("sph_pressure")
}

func (s *Solver) updateDensities() {
	n := s.sys.N()
	mass := s.sys.Mass()
	for i := 0; i < n; i++ {
		sum := 0.0
		origin := s.sys.Positions[i]
		s.cfg.Searcher.ForEachNearbyPoint(origin, s.sys.KernelRadius(), func(j int) {
			r := origin.Sub(s.sys.Positions[j]).Len()
			sum += mass * s.k.poly6(r)
		})
		s.density[i] = sum
	}
}

// tait evaluates the Tait equation of state with negative-pressure
// scaling: a sub-rest-density particle gets its pressure
// clamped toward (and optionally scaled below) zero rather than allowed
// to go negative, which otherwise produces an unphysical attractive
// force between isolated particles.
func (s *Solver) tait(density float64) float64 {
	rho0 := s.cfg.TargetDensity
	gamma := s.cfg.EOSExponent
	c := s.cfg.SpeedOfSound
	b := rho0 * c * c / gamma
	p := b * (math.Pow(density/rho0, gamma) - 1)
	if p < 0 {
		return p * s.cfg.NegativePressureScale
	}
	return p
}

func (s *Solver) updatePressures() {
	for i, rho := range s.density {
		s.pressure[i] = s.tait(rho)
	}
}

func (s *Solver) computeForces() {
	n := s.sys.N()
	mass := s.sys.Mass()
	for i := 0; i < n; i++ {
		origin := s.sys.Positions[i]
		var pressureForce, viscosityForce mgl64.Vec3
		rhoI := s.density[i]
		pI := s.pressure[i]
		vI := s.sys.Velocities[i]
		s.cfg.Searcher.ForEachNearbyPoint(origin, s.sys.KernelRadius(), func(j int) {
			if j == i {
				return
			}
			diff := origin.Sub(s.sys.Positions[j])
			r := diff.Len()
			if r <= 1e-12 {
				return
			}
			rhoJ := s.density[j]
			if rhoJ <= 0 {
				return
			}
			dir := diff.Mul(1 / r)
			grad := s.k.spikyGradMagnitude(r)
			pTerm := mass * (pI/(rhoI*rhoI) + s.pressure[j]/(rhoJ*rhoJ)) * grad
			pressureForce = pressureForce.Sub(dir.Mul(pTerm))

			lap := s.k.spikyLaplacian(r)
			relVel := s.sys.Velocities[j].Sub(vI)
			viscosityForce = viscosityForce.Add(relVel.Mul(mass / rhoJ * lap))
		})
		viscosityForce = viscosityForce.Mul(s.cfg.Viscosity)
		gravity := s.cfg.Gravity.Mul(mass)
		s.sys.Forces[i] = pressureForce.Mul(mass).Add(viscosityForce).Add(gravity)
	}
}

// integrate applies semi-implicit (symplectic) Euler: velocity updates
// from the current force, then position updates from the new velocity.
func (s *Solver) integrate(dt float64) {
	mass := s.sys.Mass()
	for i := 0; i < s.sys.N(); i++ {
		accel := s.sys.Forces[i].Mul(1 / mass)
		s.sys.Velocities[i] = s.sys.Velocities[i].Add(accel.Mul(dt))
		s.sys.Positions[i] = s.sys.Positions[i].Add(s.sys.Velocities[i].Mul(dt))
	}
}

// smoothVelocities runs the pseudo-viscosity (XSPH) smoothing pass:
// blend each particle's velocity toward the density-weighted
// average of its neighbors' velocities by PseudoViscosityCoeff.
func (s *Solver) smoothVelocities() {
	n := s.sys.N()
	mass := s.sys.Mass()
	smoothed := make([]mgl64.Vec3, n)
	for i := 0; i < n; i++ {
		origin := s.sys.Positions[i]
		var sum mgl64.Vec3
		weight := 0.0
		s.cfg.Searcher.ForEachNearbyPoint(origin, s.sys.KernelRadius(), func(j int) {
			rhoJ := s.density[j]
			if rhoJ <= 0 {
				return
			}
			r := origin.Sub(s.sys.Positions[j]).Len()
			w := mass / rhoJ * s.k.poly6(r)
			sum = sum.Add(s.sys.Velocities[j].Mul(w))
			weight += w
		})
		if weight > 0 {
			avg := sum.Mul(1 / weight)
			smoothed[i] = s.sys.Velocities[i].Add(avg.Sub(s.sys.Velocities[i]).Mul(s.cfg.PseudoViscosityCoeff))
		} else {
			smoothed[i] = s.sys.Velocities[i]
		}
	}
	copy(s.sys.Velocities, smoothed)
}

// Density returns the most recently computed density channel.
func (s *Solver) Density() []float64 { return s.density }

// Pressure returns the most recently computed pressure channel.
func (s *Solver) Pressure() []float64 { return s.pressure }
