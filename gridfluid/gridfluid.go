// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package gridfluid implements the grid-fluid frame driver: a state
// machine that sub-steps a frame under a CFL time-step limit, running
// boundary conditions, external forces, optional viscosity, pressure
// projection and advection in a fixed stage order.
package gridfluid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/floats"

	"github.com/cpmech/gofluid/advect"
	"github.com/cpmech/gofluid/boundary"
	"github.com/cpmech/gofluid/diffuse"
	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/linsys"
	"github.com/cpmech/gofluid/pressure"
	"github.com/cpmech/gofluid/scene"
)

// Config bundles the driver's fixed parameters, validated once at
// construction.
type Config struct {
	FrameDuration      float64 // seconds per frame
	CFLFactor          float64 // scales the CFL-limited maximum sub-step
	Gravity            [3]float64
	Density            float64
	Viscosity          float64 // 0 disables the viscosity sub-stage
	ExtrapolationDepth int
	PressureSolver     linsys.Config
	ViscositySolver    linsys.Config
}

// validate panics (via chk.Panic) on a structurally invalid
// configuration.
func (c Config) validate() {
	if c.FrameDuration <= 0 {
		chk.Panic("gridfluid: FrameDuration must be positive")
	}
	if c.CFLFactor <= 0 {
		chk.Panic("gridfluid: CFLFactor must be positive")
	}
	if c.Density <= 0 {
		chk.Panic("gridfluid: Density must be positive")
	}
	if c.ExtrapolationDepth < 0 {
		chk.Panic("gridfluid: ExtrapolationDepth must be non-negative")
	}
}

// Driver owns the grid-fluid simulation state for its lifetime: the
// velocity field, the scene's single active collider/emitters, and the
// boundary-condition products derived from them each sub-step.
type Driver struct {
	cfg Config

	U *geo.FaceCenteredGrid

	collider scene.Collider
	emitters []scene.Emitter
	cond     *boundary.Conditions

	currentTime float64
	lastStatus  linsys.Status
}

// NewDriver allocates a driver over the grid described by gridCfg,
// validating cfg per the builder convention.
func NewDriver(gridCfg geo.Config, cfg Config) *Driver {
	cfg.validate()
	return &Driver{
		cfg:      cfg,
		U:        geo.NewFaceCenteredGrid(gridCfg),
		cond:     boundary.NewConditions(gridCfg),
		emitters: nil,
	}
}

// SetCollider installs the single collider this driver couples against;
// nil clears it (an open domain with no solid boundary).
func (d *Driver) SetCollider(c scene.Collider) { d.collider = c }

// AddEmitter registers an emitter to be updated once per sub-step.
func (d *Driver) AddEmitter(e scene.Emitter) { d.emitters = append(d.emitters, e) }

// LastStatus reports the most recent pressure solve's convergence status.
func (d *Driver) LastStatus() linsys.Status { return d.lastStatus }

// Update advances the simulation to the end of frame frameIndex, i.e. to
// time (frameIndex+1)*FrameDuration. The target is always derived from
// the frame index so callers never track elapsed time themselves.
func (d *Driver) Update(frameIndex int) {
	target := float64(frameIndex+1) * d.cfg.FrameDuration
	remaining := target - d.currentTime
	for remaining > 1e-12 {
		dt := math.Min(remaining, d.cflTimeStep())
		d.advanceSubStep(dt)
		remaining = target - d.currentTime
	}
}

// cflTimeStep computes dt_max = cfl_factor*min(h)/(||u||inf + eps),
// using gonum/floats for the infinity-norm reduction over each staggered
// component's backing slice.
func (d *Driver) cflTimeStep() float64 {
	h := d.U.Spacing()
	minH := h.X()
	if h.Y() < minH {
		minH = h.Y()
	}
	if h.Z() < minH {
		minH = h.Z()
	}
	maxSpeed := infNorm(d.U.U.Data())
	if v := infNorm(d.U.V.Data()); v > maxSpeed {
		maxSpeed = v
	}
	if v := infNorm(d.U.W.Data()); v > maxSpeed {
		maxSpeed = v
	}
	const eps = 1e-12
	return d.cfg.CFLFactor * minH / (maxSpeed + eps)
}

func infNorm(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return floats.Norm(v, math.Inf(1))
}

// advanceSubStep runs the fixed stage order for one sub-step of length
// dt; the caller loop in Update accounts the consumed time.
func (d *Driver) advanceSubStep(dt float64) {
	d.onBeginAdvance(dt)
	d.updateCollider(d.currentTime)
	d.updateEmitters(d.currentTime)
	d.applyBoundaryConditions()
	d.computeExternalForces(dt)
	d.applyBoundaryConditions()
	if d.cfg.Viscosity > 0 {
		d.computeViscosity(dt)
		d.applyBoundaryConditions()
	}
	d.computePressure(dt)
	d.applyBoundaryConditions()
	d.computeAdvection(dt)
	d.extrapolateIntoCollider()
	d.onEndAdvance(dt)
	d.currentTime += dt
}

// onBeginAdvance is a hook point kept separate from advanceSubStep's body
// so a future caller can intercept the boundary between sub-steps without
// reaching into the stage order.
func (d *Driver) onBeginAdvance(dt float64) {}

// onEndAdvance mirrors onBeginAdvance at the other end of the sub-step.
func (d *Driver) onEndAdvance(dt float64) {}

func (d *Driver) updateCollider(t float64) {
	if d.collider == nil {
		return
	}
	d.cond.Update(d.collider)
}

// updateEmitters drives registered emitters with a nil particle target: a
// grid-fluid driver has no particle system of its own, so only
// scene.SurfaceEmitter (which ignores its target and paints into its own
// Targets grids) belongs here. Particle emitters are for sph/hybrid.
func (d *Driver) updateEmitters(t float64) {
	for _, e := range d.emitters {
		e.Update(t, nil)
	}
}

func (d *Driver) applyBoundaryConditions() {
	if d.collider == nil {
		return
	}
	boundary.ConstrainVelocity(d.U, d.cond, d.collider, d.cfg.ExtrapolationDepth)
}

// computeExternalForces adds dt*gravity to every staggered velocity
// component.
func (d *Driver) computeExternalForces(dt float64) {
	addConstant(d.U.U, d.cfg.Gravity[0]*dt)
	addConstant(d.U.V, d.cfg.Gravity[1]*dt)
	addConstant(d.U.W, d.cfg.Gravity[2]*dt)
}

type component interface {
	Resolution() (int, int, int)
	At(i, j, k int) float64
	Set(i, j, k int, v float64)
}

func addConstant(c component, v float64) {
	if v == 0 {
		return
	}
	nx, ny, nz := c.Resolution()
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c.Set(i, j, k, c.At(i, j, k)+v)
			}
		}
	}
}

// computeViscosity diffuses each velocity component by backward Euler
// with Neumann boundary coupling against the collider SDF.
func (d *Driver) computeViscosity(dt float64) {
	var sdf *geo.ScalarGrid
	if d.collider != nil {
		sdf = d.cond.ColliderSDF()
	}
	h, o := d.U.Spacing(), d.U.Origin()
	diffuseComponent(d.U.U, h, o, d.cfg.Viscosity, dt, sdf, d.cfg.ViscositySolver)
	diffuseComponent(d.U.V, h, o, d.cfg.Viscosity, dt, sdf, d.cfg.ViscositySolver)
	diffuseComponent(d.U.W, h, o, d.cfg.Viscosity, dt, sdf, d.cfg.ViscositySolver)
}

// diffuseComponent round-trips a staggered velocity component through a
// cell-centered ScalarGrid of matching resolution to reuse
// diffuse.BackwardEuler, since that solver is written against
// geo.ScalarGrid rather than an arbitrary staggered component.
func diffuseComponent(c component, spacing, origin mgl64.Vec3, diffusivity, dt float64, sdf *geo.ScalarGrid, cfg linsys.Config) {
	nx, ny, nz := c.Resolution()
	tmp := geo.NewScalarGrid(geo.Config{Nx: nx, Ny: ny, Nz: nz, H: spacing, Origin: origin})
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				tmp.Set(i, j, k, c.At(i, j, k))
			}
		}
	}
	out, status := diffuse.BackwardEuler(tmp, diffusivity, dt, sdf, diffuse.Neumann, cfg)
	if !status.Converged {
		io.Pfyel("warning: viscosity solve did not converge: residual=%v\n", status.Residual)
	}
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				c.Set(i, j, k, out.At(i, j, k))
			}
		}
	}
}

// computePressure runs the fractional projection when a collider is
// present (so fractional face weights are meaningful), otherwise the
// single-phase variant over the whole domain. A grid-only driver has no
// liquid surface of its own, so the fluid region is simply everything
// outside the collider: the negated collider SDF.
func (d *Driver) computePressure(dt float64) {
	if d.collider != nil {
		colliderSDF := d.cond.ColliderSDF()
		nx, ny, nz := colliderSDF.Resolution()
		fluidSDF := geo.NewScalarGrid(geo.Config{Nx: nx, Ny: ny, Nz: nz, H: colliderSDF.Spacing(), Origin: colliderSDF.Origin()})
		fluidSDF.ForEachDataPointIndex(func(i, j, k int) {
			fluidSDF.Set(i, j, k, -colliderSDF.At(i, j, k))
		})
		_, status := pressure.SolveFractional(d.U, d.cond, fluidSDF, dt, d.cfg.Density, d.cfg.PressureSolver)
		d.lastStatus = status
		return
	}
	allFluid := func(i, j, k int) pressure.CellKind { return pressure.Fluid }
	_, status := pressure.SolveSinglePhase(d.U, allFluid, dt, d.cfg.Density, d.cfg.PressureSolver)
	d.lastStatus = status
}

// computeAdvection self-advects the velocity field by semi-Lagrangian
// backtracing, clamped against the collider SDF when present.
func (d *Driver) computeAdvection(dt float64) {
	var boundarySDF *geo.ScalarGrid
	if d.collider != nil {
		boundarySDF = d.cond.ColliderSDF()
	}
	acfg := advect.Config{Method: advect.Cubic, BoundarySDF: boundarySDF}
	nx, ny, nz := d.U.Resolution()
	next := geo.NewFaceCenteredGrid(geo.Config{Nx: nx, Ny: ny, Nz: nz, H: d.U.Spacing(), Origin: d.U.Origin()})
	advect.Vector(d.U, d.U, dt, next, acfg)
	d.U.CopyFrom(next)
}

// extrapolateIntoCollider re-runs the velocity constraint right after
// advection, keeping the solid-adjacent velocity band coherent for the
// next sub-step's boundary condition pass.
func (d *Driver) extrapolateIntoCollider() {
	if d.collider == nil {
		return
	}
	boundary.ConstrainVelocity(d.U, d.cond, d.collider, d.cfg.ExtrapolationDepth)
}
