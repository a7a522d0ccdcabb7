// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package scene implements the Collider and Emitter scene objects: a
// collider bundles an implicit surface with a linear+angular velocity
// field and a friction coefficient; an emitter produces new particles
// (volume/point/surface) or paints SDF into a target grid each frame.
// Scene objects are shared, reference-counted handles owned by the
// driver and read-only during a stage, so every concrete type here
// is safe to hand to more than one solver.
package scene

import (
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/rnd"
	"github.com/google/uuid"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/particles"
	"github.com/go-gl/mathgl/mgl64"
)

// Collider is the boundary-coupling source of truth: a signed
// distance, a velocity (linear + angular about a pivot), and a friction
// coefficient in [0,1] (0 = free-slip, 1 = no-slip).
type Collider interface {
	ID() uuid.UUID
	SignedDistance(p mgl64.Vec3) float64
	Velocity(p mgl64.Vec3) mgl64.Vec3
	Friction() float64
}

// SphereCollider is a rigid sphere translating at LinearVelocity and
// spinning at AngularVelocity about Center.
type SphereCollider struct {
	id              uuid.UUID
	Center          mgl64.Vec3
	Radius          float64
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	FrictionCoeff   float64
}

// NewSphereCollider validates radius>0 and assigns a stable id.
func NewSphereCollider(center mgl64.Vec3, radius float64) *SphereCollider {
	if radius <= 0 {
		panic("scene: sphere collider radius must be positive")
	}
	return &SphereCollider{id: uuid.New(), Center: center, Radius: radius}
}

func (s *SphereCollider) ID() uuid.UUID { return s.id }

func (s *SphereCollider) SignedDistance(p mgl64.Vec3) float64 {
	return p.Sub(s.Center).Len() - s.Radius
}

func (s *SphereCollider) Velocity(p mgl64.Vec3) mgl64.Vec3 {
	r := p.Sub(s.Center)
	return s.LinearVelocity.Add(s.AngularVelocity.Cross(r))
}

func (s *SphereCollider) Friction() float64 { return s.FrictionCoeff }

// PlaneCollider is an infinite half-space boundary, Normal pointing into
// the fluid (away from the solid side).
type PlaneCollider struct {
	id             uuid.UUID
	Point          mgl64.Vec3
	Normal         mgl64.Vec3
	LinearVelocity mgl64.Vec3
	FrictionCoeff  float64
}

// NewPlaneCollider normalizes Normal at construction.
func NewPlaneCollider(point, normal mgl64.Vec3) *PlaneCollider {
	n := normal.Normalize()
	return &PlaneCollider{id: uuid.New(), Point: point, Normal: n}
}

func (p *PlaneCollider) ID() uuid.UUID { return p.id }

func (p *PlaneCollider) SignedDistance(q mgl64.Vec3) float64 {
	return q.Sub(p.Point).Dot(p.Normal)
}

func (p *PlaneCollider) Velocity(mgl64.Vec3) mgl64.Vec3 { return p.LinearVelocity }

func (p *PlaneCollider) Friction() float64 { return p.FrictionCoeff }

// Emitter produces new particles or paints an SDF into target grids
// once per frame. Update is called by the driver before advancing
// physics; emitters are read-only shared handles otherwise.
type Emitter interface {
	ID() uuid.UUID
	Update(t float64, target *particles.System)
}

// VolumeEmitter seeds particles on a jittered regular lattice inside an
// axis-aligned box, capped by the target system's MaxParticles; hitting
// capacity silently caps emission.
type VolumeEmitter struct {
	id       uuid.UUID
	Min, Max mgl64.Vec3
	Spacing  float64
	Velocity mgl64.Vec3
	jitter   float64
	rngState uint64
	emitted  bool
}

// NewVolumeEmitter builds an emitter that fills [min,max] at the given
// particle spacing, jittered by up to ±0.125*spacing per axis to avoid a perfectly
// regular (and therefore resonant) SPH/PIC lattice.
func NewVolumeEmitter(min, max mgl64.Vec3, spacing float64, velocity mgl64.Vec3) *VolumeEmitter {
	if spacing <= 0 {
		panic("scene: volume emitter spacing must be positive")
	}
	return &VolumeEmitter{id: uuid.New(), Min: min, Max: max, Spacing: spacing, Velocity: velocity, jitter: 0.25 * spacing, rngState: 0x9E3779B97F4A7C15}
}

func (e *VolumeEmitter) ID() uuid.UUID { return e.id }

// next draws the next value of a small deterministic xorshift generator
// (the emitter's particle pattern must be repeatable across runs, unlike
// gosl/rnd's process-seeded generators used by surface emitters).
func (e *VolumeEmitter) next() float64 {
	x := e.rngState
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	e.rngState = x
	return float64(x%1000000) / 1000000.0
}

// Update emits once (volume emitters are a one-shot fill unless Reset is
// called); repeated calls are no-ops so the driver can call Update every
// frame unconditionally.
func (e *VolumeEmitter) Update(t float64, target *particles.System) {
	if e.emitted {
		return
	}
	e.emitted = true
	nx := int((e.Max.X()-e.Min.X())/e.Spacing) + 1
	ny := int((e.Max.Y()-e.Min.Y())/e.Spacing) + 1
	nz := int((e.Max.Z()-e.Min.Z())/e.Spacing) + 1
	for k := 0; k < nz; k++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				p := mgl64.Vec3{
					e.Min.X() + float64(i)*e.Spacing + (e.next()-0.5)*e.jitter,
					e.Min.Y() + float64(j)*e.Spacing + (e.next()-0.5)*e.jitter,
					e.Min.Z() + float64(k)*e.Spacing + (e.next()-0.5)*e.jitter,
				}
				if !target.AddParticle(p, e.Velocity) {
					return
				}
			}
		}
	}
}

// Reset allows a volume emitter to fire again on a later frame.
func (e *VolumeEmitter) Reset() { e.emitted = false }

// PointEmitter emits a fixed number of particles per second from a
// single location, accumulating fractional particles across frames.
type PointEmitter struct {
	id       uuid.UUID
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Rate     float64  // particles per second
	RateFun  fun.Func // optional rate multiplier evaluated at the current time
	lastT    float64
	carry    float64
}

// NewPointEmitter creates a point emitter producing rate particles/sec
// starting at position with the given initial velocity.
func NewPointEmitter(position, velocity mgl64.Vec3, rate float64) *PointEmitter {
	return &PointEmitter{id: uuid.New(), Position: position, Velocity: velocity, Rate: rate}
}

func (e *PointEmitter) ID() uuid.UUID { return e.id }

func (e *PointEmitter) Update(t float64, target *particles.System) {
	dt := t - e.lastT
	e.lastT = t
	if dt <= 0 {
		return
	}
	rate := e.Rate
	if e.RateFun != nil {
		rate *= e.RateFun.F(t, nil)
	}
	e.carry += rate * dt
	for e.carry >= 1 {
		if !target.AddParticle(e.Position, e.Velocity) {
			e.carry = 0
			return
		}
		e.carry--
	}
}

// SurfaceParticleEmitter scatters particles onto the zero isocontour of
// a collider's signed distance field: random points drawn inside Min/Max
// are projected onto the surface along the SDF gradient. Sampling uses
// gosl/rnd; call rnd.Init once at program start for a reproducible
// stream.
type SurfaceParticleEmitter struct {
	id            uuid.UUID
	Surface       Collider
	Min, Max      mgl64.Vec3
	PerUpdate     int     // particles attempted per Update call
	NormalSpeed   float64 // emission speed along the outward surface normal
	projectionEps float64
}

// NewSurfaceParticleEmitter builds an emitter scattering perUpdate
// particles per frame over the part of surface inside [min,max].
func NewSurfaceParticleEmitter(surface Collider, min, max mgl64.Vec3, perUpdate int, normalSpeed float64) *SurfaceParticleEmitter {
	if perUpdate <= 0 {
		panic("scene: surface particle emitter needs a positive per-update count")
	}
	return &SurfaceParticleEmitter{
		id: uuid.New(), Surface: surface, Min: min, Max: max,
		PerUpdate: perUpdate, NormalSpeed: normalSpeed,
		projectionEps: 1e-4 * max.Sub(min).Len(),
	}
}

func (e *SurfaceParticleEmitter) ID() uuid.UUID { return e.id }

// Update draws PerUpdate random points and emits each one that projects
// onto the surface within the box. A draw whose projection escapes the
// box is discarded rather than re-tried, so emission density follows the
// visible surface area.
func (e *SurfaceParticleEmitter) Update(t float64, target *particles.System) {
	for n := 0; n < e.PerUpdate; n++ {
		p := mgl64.Vec3{
			rnd.Float64(e.Min.X(), e.Max.X()),
			rnd.Float64(e.Min.Y(), e.Max.Y()),
			rnd.Float64(e.Min.Z(), e.Max.Z()),
		}
		p, ok := e.project(p)
		if !ok {
			continue
		}
		normal := e.gradient(p)
		vel := e.Surface.Velocity(p).Add(normal.Mul(e.NormalSpeed))
		if !target.AddParticle(p, vel) {
			return
		}
	}
}

// project walks p to the zero isocontour by a few Newton steps
// along the finite-difference SDF gradient.
func (e *SurfaceParticleEmitter) project(p mgl64.Vec3) (mgl64.Vec3, bool) {
	for it := 0; it < 5; it++ {
		phi := e.Surface.SignedDistance(p)
		if phi > -e.projectionEps && phi < e.projectionEps {
			break
		}
		p = p.Sub(e.gradient(p).Mul(phi))
	}
	for ax := 0; ax < 3; ax++ {
		if p[ax] < e.Min[ax] || p[ax] > e.Max[ax] {
			return p, false
		}
	}
	return p, true
}

// gradient estimates the (normalized) SDF gradient by central
// differences.
func (e *SurfaceParticleEmitter) gradient(p mgl64.Vec3) mgl64.Vec3 {
	h := e.projectionEps
	if h == 0 {
		h = 1e-6
	}
	var g mgl64.Vec3
	for ax := 0; ax < 3; ax++ {
		lo, hi := p, p
		lo[ax] -= h
		hi[ax] += h
		g[ax] = (e.Surface.SignedDistance(hi) - e.Surface.SignedDistance(lo)) / (2 * h)
	}
	if l := g.Len(); l > 1e-12 {
		return g.Mul(1 / l)
	}
	return mgl64.Vec3{0, 1, 0}
}

// SurfaceEmitter paints a collider's SDF into every scalar grid in
// Targets each frame, used to seed or refresh a fluid boundary SDF
// from a moving collider surface.
type SurfaceEmitter struct {
	id        uuid.UUID
	Collider  Collider
	Targets   []*geo.ScalarGrid
}

// NewSurfaceEmitter paints collider's signed distance into each of
// targets on every Update call.
func NewSurfaceEmitter(collider Collider, targets ...*geo.ScalarGrid) *SurfaceEmitter {
	return &SurfaceEmitter{id: uuid.New(), Collider: collider, Targets: targets}
}

func (e *SurfaceEmitter) ID() uuid.UUID { return e.id }

func (e *SurfaceEmitter) Update(t float64, target *particles.System) {
	for _, g := range e.Targets {
		g.ForEachDataPointIndex(func(i, j, k int) {
			g.Set(i, j, k, e.Collider.SignedDistance(g.DataPosition(i, j, k)))
		})
	}
}
