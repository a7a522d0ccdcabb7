// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package hybrid implements the PIC/FLIP/APIC particle-fluid driver:
// transfer particle velocities to a face-centered grid, build a fluid
// SDF from the particles, run the grid pressure pipeline over it,
// transfer grid velocity back to the
// particles, then advect them with collision resolution against the
// scene collider. Structured after gridfluid.Driver's stage ordering and
// Config/validate convention, generalized to own a particle system
// instead of a standalone velocity field.
package hybrid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"

	"github.com/cpmech/gofluid/boundary"
	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/levelset"
	"github.com/cpmech/gofluid/linsys"
	"github.com/cpmech/gofluid/particles"
	"github.com/cpmech/gofluid/pressure"
	"github.com/cpmech/gofluid/scene"
)

// Scheme selects the particle<->grid transfer variant.
type Scheme int

const (
	PIC Scheme = iota
	FLIP
	APIC
)

// Config is the builder-style configuration for a Driver.
type Config struct {
	Scheme             Scheme
	FlipBlend          float64 // PIC fraction kept by FLIP (0 = pure FLIP, 1 = pure PIC); ignored by APIC
	Gravity            mgl64.Vec3
	Density            float64
	CFLFactor          float64
	ExtrapolationDepth int
	SDFSearchRadius    float64 // Zhu-Bridson kernel radius for the particle fluid SDF
	ReinitIterations   int
	SubSteps           int // RK/midpoint sub-steps per particle advection call (>=1)
	PressureSolver     linsys.Config
	Searcher           particles.Searcher // defaults to &particles.ListSearcher{}
}

func (c *Config) fillDefaults() {
	if c.Searcher == nil {
		c.Searcher = &particles.ListSearcher{}
	}
	if c.SubSteps <= 0 {
		c.SubSteps = 1
	}
	if c.ReinitIterations <= 0 {
		c.ReinitIterations = 2
	}
}

func (c Config) validate() {
	if c.Density <= 0 {
		chk.Panic("hybrid: Density must be positive")
	}
	if c.CFLFactor <= 0 {
		chk.Panic("hybrid: CFLFactor must be positive")
	}
	if c.FlipBlend < 0 || c.FlipBlend > 1 {
		chk.Panic("hybrid: FlipBlend must be in [0,1]")
	}
	if c.SDFSearchRadius <= 0 {
		chk.Panic("hybrid: SDFSearchRadius must be positive")
	}
}

// Driver owns the particle system, the staggered grid it transfers
// through, and the boundary-coupling products derived from the scene
// collider.
type Driver struct {
	cfg Config

	gridCfg geo.Config
	U       *geo.FaceCenteredGrid
	uBefore *geo.FaceCenteredGrid // FLIP's u_grid_before

	sys      *particles.System
	collider scene.Collider
	emitters []scene.Emitter
	cond     *boundary.Conditions

	cRow0, cRow1, cRow2 []mgl64.Vec3 // APIC's per-particle affine matrix C_p, stored row-wise

	currentTime float64
	lastStatus  linsys.Status
}

// NewDriver allocates a driver over gridCfg transferring through sys.
func NewDriver(gridCfg geo.Config, sys *particles.System, cfg Config) *Driver {
	cfg.fillDefaults()
	cfg.validate()
	d := &Driver{
		cfg:     cfg,
		gridCfg: gridCfg,
		U:       geo.NewFaceCenteredGrid(gridCfg),
		uBefore: geo.NewFaceCenteredGrid(gridCfg),
		sys:     sys,
		cond:    boundary.NewConditions(gridCfg),
	}
	if cfg.Scheme == APIC {
		d.cRow0 = sys.AddVectorChannel("apic_c_row0")
		d.cRow1 = sys.AddVectorChannel("apic_c_row1")
		d.cRow2 = sys.AddVectorChannel("apic_c_row2")
	}
	return d
}

// SetCollider installs the single collider this driver couples against.
func (d *Driver) SetCollider(c scene.Collider) { d.collider = c }

// AddEmitter registers a particle emitter updated once per sub-step.
func (d *Driver) AddEmitter(e scene.Emitter) { d.emitters = append(d.emitters, e) }

// LastStatus reports the most recent pressure solve's convergence status.
func (d *Driver) LastStatus() linsys.Status { return d.lastStatus }

// FluidSDF rebuilds and returns the current particle-derived fluid SDF,
// useful for surface extraction between steps (see mc.Extract).
func (d *Driver) FluidSDF() *geo.ScalarGrid {
	return d.buildFluidSDF()
}

// Step advances the particle system by dt through the five transfer,
// rebuild, project, gather and advect stages.
func (d *Driver) Step(dt float64) {
	for _, e := range d.emitters {
		e.Update(d.currentTime, d.sys)
	}
	if d.cfg.Scheme == APIC {
		// channel slices are reallocated when emitters grow the system
		d.cRow0 = d.sys.VectorChannel("apic_c_row0")
		d.cRow1 = d.sys.VectorChannel("apic_c_row1")
		d.cRow2 = d.sys.VectorChannel("apic_c_row2")
	}
	d.cfg.Searcher.Build(d.sys.Positions, d.sys.KernelRadius())

	d.transferToGrid()
	d.applyExternalForces(dt)

	fluidSDF := d.buildFluidSDF()

	if d.collider != nil {
		d.cond.Update(d.collider)
		boundary.ConstrainVelocity(d.U, d.cond, d.collider, d.cfg.ExtrapolationDepth)
	}
	d.runPressureProjection(fluidSDF, dt)
	if d.collider != nil {
		boundary.ConstrainVelocity(d.U, d.cond, d.collider, d.cfg.ExtrapolationDepth)
	}

	d.transferFromGrid()
	d.advectParticles(dt)
	d.currentTime += dt
}

// applyExternalForces adds dt*gravity to every staggered velocity
// component, the same "gravity, viscosity hooks" step gridfluid.Driver
// runs before pressure projection, applied here right after the
// particle velocities have been scattered onto the grid.
func (d *Driver) applyExternalForces(dt float64) {
	addConstant(d.U.U, d.cfg.Gravity.X()*dt)
	addConstant(d.U.V, d.cfg.Gravity.Y()*dt)
	addConstant(d.U.W, d.cfg.Gravity.Z()*dt)
}

// runPressureProjection solves the fractional variant when a collider is
// present, otherwise the single-phase variant classified purely by the
// particle-derived fluid SDF (air everywhere the SDF says so, no solid).
func (d *Driver) runPressureProjection(fluidSDF *geo.ScalarGrid, dt float64) {
	if d.collider != nil {
		_, status := pressure.SolveFractional(d.U, d.cond, fluidSDF, dt, d.cfg.Density, d.cfg.PressureSolver)
		d.lastStatus = status
		warnIfDiverged(status)
		return
	}
	classify := func(i, j, k int) pressure.CellKind {
		if levelset.IsInside(fluidSDF.At(i, j, k)) {
			return pressure.Fluid
		}
		return pressure.Air
	}
	_, status := pressure.SolveSinglePhase(d.U, classify, dt, d.cfg.Density, d.cfg.PressureSolver)
	d.lastStatus = status
	warnIfDiverged(status)
}

// CFLTimeStep estimates dt_max = cfl_factor*min(h)/(max particle speed +
// eps), the grid CFL formula applied to the particle velocities instead
// (particle speeds bound the grid's after transfer).
func (d *Driver) CFLTimeStep() float64 {
	h := d.gridCfg.H
	minH := math.Min(h.X(), math.Min(h.Y(), h.Z()))
	speeds := make([]float64, d.sys.N())
	for i, v := range d.sys.Velocities {
		speeds[i] = v.Len()
	}
	maxSpeed := 0.0
	if len(speeds) > 0 {
		maxSpeed = floats.Max(speeds)
	}
	const eps = 1e-12
	return d.cfg.CFLFactor * minH / (maxSpeed + eps)
}

func warnIfDiverged(status linsys.Status) {
	if !status.Converged {
		io.Pfyel("warning: hybrid pressure solve did not converge: residual=%v\n", status.Residual)
	}
}
