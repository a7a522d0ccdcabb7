// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hybrid

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/linsys"
	"github.com/cpmech/gofluid/particles"
	"github.com/cpmech/gofluid/scene"
)

func testGridConfig() geo.Config {
	return geo.Config{Nx: 6, Ny: 6, Nz: 6, H: mgl64.Vec3{0.1, 0.1, 0.1}}
}

func testDriverConfig(scheme Scheme) Config {
	return Config{
		Scheme:             scheme,
		FlipBlend:          0.97,
		Gravity:            mgl64.Vec3{0, -9.8, 0},
		Density:            1.0,
		CFLFactor:          0.9,
		ExtrapolationDepth: 2,
		SDFSearchRadius:    0.15,
		ReinitIterations:   2,
		SubSteps:           2,
		PressureSolver:     linsys.DefaultConfig(),
	}
}

// blockOfParticles fills a sys with a regular lattice of particles
// occupying the lower-left octant of the grid, at rest.
func blockOfParticles(sys *particles.System, n int, h float64) {
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				pos := mgl64.Vec3{
					(float64(i) + 0.5) * h,
					(float64(j) + 0.5) * h,
					(float64(k) + 0.5) * h,
				}
				sys.AddParticle(pos, mgl64.Vec3{})
			}
		}
	}
}

func Test_driver_step_pic_stays_finite_without_collider(tst *testing.T) {
	chk.PrintTitle("driver_step_pic_stays_finite_without_collider")
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.15})
	blockOfParticles(sys, 3, 0.1)
	d := NewDriver(testGridConfig(), sys, testDriverConfig(PIC))
	d.Step(1.0 / 60.0)
	if d.U.HasNaN() {
		tst.Fatalf("velocity field developed NaN after one step")
	}
	for _, p := range sys.Positions {
		if math.IsNaN(p.X()) || math.IsNaN(p.Y()) || math.IsNaN(p.Z()) {
			tst.Fatalf("particle position developed NaN: %v", p)
		}
	}
}

func Test_driver_step_flip_converges(tst *testing.T) {
	chk.PrintTitle("driver_step_flip_converges")
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.15})
	blockOfParticles(sys, 3, 0.1)
	d := NewDriver(testGridConfig(), sys, testDriverConfig(FLIP))
	d.Step(1.0 / 60.0)
	if !d.LastStatus().Converged {
		tst.Fatalf("pressure solve failed to converge: residual=%v", d.LastStatus().Residual)
	}
}

func Test_driver_step_apic_tracks_affine_matrix(tst *testing.T) {
	chk.PrintTitle("driver_step_apic_tracks_affine_matrix")
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.15})
	blockOfParticles(sys, 3, 0.1)
	d := NewDriver(testGridConfig(), sys, testDriverConfig(APIC))
	d.Step(1.0 / 60.0)
	if d.U.HasNaN() {
		tst.Fatalf("velocity field developed NaN after one APIC step")
	}
	if len(d.cRow0) != sys.N() {
		tst.Fatalf("expected one APIC affine row per particle, got %d for %d particles", len(d.cRow0), sys.N())
	}
}

func Test_driver_step_with_collider_keeps_particles_out(tst *testing.T) {
	chk.PrintTitle("driver_step_with_collider_keeps_particles_out")
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.15})
	blockOfParticles(sys, 3, 0.1)
	d := NewDriver(testGridConfig(), sys, testDriverConfig(FLIP))
	floor := scene.NewPlaneCollider(mgl64.Vec3{0, 0.05, 0}, mgl64.Vec3{0, 1, 0})
	floor.FrictionCoeff = 0.5
	d.SetCollider(floor)
	for i := 0; i < 5; i++ {
		d.Step(1.0 / 60.0)
	}
	for _, p := range sys.Positions {
		if floor.SignedDistance(p) < -1e-9 {
			tst.Fatalf("particle penetrated the floor collider: pos=%v phi=%v", p, floor.SignedDistance(p))
		}
	}
}

func Test_config_validate_rejects_bad_flip_blend(tst *testing.T) {
	chk.PrintTitle("config_validate_rejects_bad_flip_blend")
	defer func() {
		if recover() == nil {
			tst.Fatalf("expected panic on out-of-range FlipBlend")
		}
	}()
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.15})
	cfg := testDriverConfig(FLIP)
	cfg.FlipBlend = 1.5
	NewDriver(testGridConfig(), sys, cfg)
}

func Test_cfl_time_step_shrinks_with_particle_speed(tst *testing.T) {
	chk.PrintTitle("cfl_time_step_shrinks_with_particle_speed")
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.15})
	sys.AddParticle(mgl64.Vec3{0.3, 0.3, 0.3}, mgl64.Vec3{0, 0, 0})
	d := NewDriver(testGridConfig(), sys, testDriverConfig(PIC))
	dtSlow := d.CFLTimeStep()
	sys.Velocities[0] = mgl64.Vec3{10, 0, 0}
	dtFast := d.CFLTimeStep()
	if dtFast >= dtSlow {
		tst.Fatalf("expected CFL dt to shrink as particle speed grows: slow=%v fast=%v", dtSlow, dtFast)
	}
}
