// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sph

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/stat"

	"github.com/cpmech/gofluid/particles"
)

// PCIConfig extends Config with the predictive-corrective loop bounds:
// the correction iterates until the worst density error falls below
// MaxDensityErrorRatio*TargetDensity or MaxIterations is spent.
type PCIConfig struct {
	Config
	MaxDensityErrorRatio float64 // defaults to 0.01 (1% of rest density)
	MaxIterations        int     // defaults to 5
}

func (c *PCIConfig) fillDefaults() {
	c.Config.fillDefaults()
	if c.MaxDensityErrorRatio == 0 {
		c.MaxDensityErrorRatio = 0.01
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = 5
	}
}

func (c PCIConfig) validate() {
	c.Config.validate()
	if c.MaxDensityErrorRatio < 0 {
		chk.Panic("sph: MaxDensityErrorRatio must be non-negative")
	}
	if c.MaxIterations < 1 {
		chk.Panic("sph: MaxIterations must be at least 1")
	}
}

// PCISolver replaces the equation-of-state pressure force with an
// iterative correction that drives the predicted density error below a
// configured ratio of the rest density.
type PCISolver struct {
	base Solver
	pci  PCIConfig

	// per-iteration scratch, sized to N on demand
	predictedPos []mgl64.Vec3
	predictedVel []mgl64.Vec3
	pressureF    []mgl64.Vec3
	densityErr   []float64
}

// NewPCISolver attaches a predictive-corrective SPH solver to sys.
func NewPCISolver(sys *particles.System, cfg PCIConfig) *PCISolver {
	cfg.fillDefaults()
	cfg.validate()
	return &PCISolver{
		base: Solver{
			cfg:      cfg.Config,
			sys:      sys,
			k:        newKernel(sys.KernelRadius()),
			density:  sys.AddScalarChannel("sph_density"),
			pressure: sys.AddScalarChannel("sph_pressure"),
		},
		pci: cfg,
	}
}

// Step advances the system by dt: non-pressure forces first, then the
// predict-correct pressure loop, then integration and smoothing.
func (s *PCISolver) Step(dt float64) {
	b := &s.base
	b.rebind()
	b.cfg.Searcher.Build(b.sys.Positions, b.sys.KernelRadius())
	b.updateDensities()
	s.computeNonPressureForces()
	s.correctPressure(dt)
	b.integrate(dt)
	if b.cfg.PseudoViscosityCoeff > 0 {
		b.smoothVelocities()
	}
}

// computeNonPressureForces fills Forces with viscosity+gravity only; the
// pressure contribution is added by the correction loop.
func (s *PCISolver) computeNonPressureForces() {
	b := &s.base
	n := b.sys.N()
	mass := b.sys.Mass()
	for i := 0; i < n; i++ {
		origin := b.sys.Positions[i]
		vI := b.sys.Velocities[i]
		var viscosityForce mgl64.Vec3
		b.cfg.Searcher.ForEachNearbyPoint(origin, b.sys.KernelRadius(), func(j int) {
			if j == i {
				return
			}
			rhoJ := b.density[j]
			if rhoJ <= 0 {
				return
			}
			r := origin.Sub(b.sys.Positions[j]).Len()
			lap := b.k.spikyLaplacian(r)
			relVel := b.sys.Velocities[j].Sub(vI)
			viscosityForce = viscosityForce.Add(relVel.Mul(mass / rhoJ * lap))
		})
		viscosityForce = viscosityForce.Mul(b.cfg.Viscosity)
		b.sys.Forces[i] = viscosityForce.Add(b.cfg.Gravity.Mul(mass))
	}
}

// correctPressure runs the predictive-corrective loop: predict positions
// under the accumulated forces, measure the density error, scale it into
// a pressure increment by the precomputed delta, and accumulate the
// resulting pressure force. Stops early once the worst error ratio drops
// below the configured bound.
func (s *PCISolver) correctPressure(dt float64) {
	b := &s.base
	n := b.sys.N()
	mass := b.sys.Mass()
	rho0 := b.cfg.TargetDensity
	s.resize(n)

	for i := 0; i < n; i++ {
		b.pressure[i] = 0
		s.pressureF[i] = mgl64.Vec3{}
	}

	delta := s.deltaCoeff(dt)
	maxErr := rho0 * s.pci.MaxDensityErrorRatio

	for it := 0; it < s.pci.MaxIterations; it++ {
		// predict
		for i := 0; i < n; i++ {
			accel := b.sys.Forces[i].Add(s.pressureF[i]).Mul(1 / mass)
			s.predictedVel[i] = b.sys.Velocities[i].Add(accel.Mul(dt))
			s.predictedPos[i] = b.sys.Positions[i].Add(s.predictedVel[i].Mul(dt))
		}

		// measure density error at predicted positions; the searcher is
		// still bound to the pre-step positions, which stay within one
		// kernel radius of the prediction for CFL-bounded steps
		worst := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			origin := s.predictedPos[i]
			b.cfg.Searcher.ForEachNearbyPoint(b.sys.Positions[i], b.sys.KernelRadius(), func(j int) {
				r := origin.Sub(s.predictedPos[j]).Len()
				sum += mass * b.k.poly6(r)
			})
			err := sum - rho0
			if err < 0 {
				err *= b.cfg.NegativePressureScale
			}
			s.densityErr[i] = err
			if a := math.Abs(err); a > worst {
				worst = a
			}
			b.pressure[i] += delta * err
			if b.pressure[i] < 0 {
				b.pressure[i] *= b.cfg.NegativePressureScale
			}
		}

		// accumulate pressure forces from the corrected pressures
		for i := 0; i < n; i++ {
			origin := b.sys.Positions[i]
			rhoI := b.density[i]
			if rhoI <= 0 {
				continue
			}
			var f mgl64.Vec3
			b.cfg.Searcher.ForEachNearbyPoint(origin, b.sys.KernelRadius(), func(j int) {
				if j == i {
					return
				}
				diff := origin.Sub(b.sys.Positions[j])
				r := diff.Len()
				if r <= 1e-12 {
					return
				}
				rhoJ := b.density[j]
				if rhoJ <= 0 {
					return
				}
				dir := diff.Mul(1 / r)
				grad := b.k.spikyGradMagnitude(r)
				pTerm := mass * mass * (b.pressure[i]/(rhoI*rhoI) + b.pressure[j]/(rhoJ*rhoJ)) * grad
				f = f.Sub(dir.Mul(pTerm))
			})
			s.pressureF[i] = f
		}

		if worst < maxErr {
			break
		}
	}

	for i := 0; i < n; i++ {
		b.sys.Forces[i] = b.sys.Forces[i].Add(s.pressureF[i])
	}
}

// deltaCoeff precomputes the density-error-to-pressure scaling over a
// template dense-packed neighborhood of the kernel support, following
// Solenthaler & Pajarola. Depends only on dt, mass and the kernel, so it
// is cheap enough to rebuild every step instead of caching against dt.
func (s *PCISolver) deltaCoeff(dt float64) float64 {
	b := &s.base
	mass := b.sys.Mass()
	h := b.sys.KernelRadius()
	spacing := 0.5 * h

	var gradSum mgl64.Vec3
	dotSum := 0.0
	for x := -h; x <= h; x += spacing {
		for y := -h; y <= h; y += spacing {
			for z := -h; z <= h; z += spacing {
				p := mgl64.Vec3{x, y, z}
				r := p.Len()
				if r <= 1e-12 || r >= h {
					continue
				}
				dir := p.Mul(1 / r)
				grad := dir.Mul(b.k.spikyGradMagnitude(r))
				gradSum = gradSum.Add(grad)
				dotSum += grad.Dot(grad)
			}
		}
	}

	rho0 := b.cfg.TargetDensity
	beta := 2.0 * dt * dt * mass * mass / (rho0 * rho0)
	denom := -gradSum.Dot(gradSum) - dotSum
	if math.Abs(denom) < 1e-30 {
		return 0
	}
	return -1.0 / (beta * denom)
}

func (s *PCISolver) resize(n int) {
	if cap(s.predictedPos) < n {
		s.predictedPos = make([]mgl64.Vec3, n)
		s.predictedVel = make([]mgl64.Vec3, n)
		s.pressureF = make([]mgl64.Vec3, n)
		s.densityErr = make([]float64, n)
	}
	s.predictedPos = s.predictedPos[:n]
	s.predictedVel = s.predictedVel[:n]
	s.pressureF = s.pressureF[:n]
	s.densityErr = s.densityErr[:n]
}

// Density returns the most recently computed density channel.
func (s *PCISolver) Density() []float64 { return s.base.density }

// Pressure returns the most recently computed pressure channel.
func (s *PCISolver) Pressure() []float64 { return s.base.pressure }

// Stats summarizes the current density channel: mean, standard
// deviation, and the worst density error ratio of the last correction
// loop. Useful for judging whether MaxIterations is tight enough.
type Stats struct {
	MeanDensity   float64
	StdDevDensity float64
	WorstErrRatio float64
}

// Stats computes density statistics over the particle set.
func (s *PCISolver) Stats() Stats {
	mean, std := stat.MeanStdDev(s.base.density, nil)
	worst := 0.0
	for _, e := range s.densityErr {
		if a := math.Abs(e); a > worst {
			worst = a
		}
	}
	return Stats{
		MeanDensity:   mean,
		StdDevDensity: std,
		WorstErrRatio: worst / s.base.cfg.TargetDensity,
	}
}
