// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hybrid

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/geo"
)

// normalEps is the finite-difference step used to estimate a collider's
// surface normal from its SignedDistance function, since scene.Collider
// exposes no gradient directly.
const normalEps = 1e-4

// advectParticles moves every particle by dt*v_p,
// sub-stepped by midpoint integration over cfg.SubSteps, then resolves
// any collider penetration by snapping to the zero-isocontour and
// damping velocity by friction. Particles that end up outside the
// domain bounding box are dropped; leaving the domain is expected, not
// an error.
func (d *Driver) advectParticles(dt float64) {
	sub := dt / float64(d.cfg.SubSteps)
	for s := 0; s < d.cfg.SubSteps; s++ {
		for i := range d.sys.Positions {
			d.midpointStep(i, sub)
			d.resolveCollision(i)
		}
	}
	min, max := domainBounds(d.gridCfg)
	d.sys.RemoveByPredicate(func(i int) bool {
		return insideBox(d.sys.Positions[i], min, max)
	})
}

// domainBounds returns the world-space extent of the underlying grid,
// from Origin to Origin + N*H (the grid's bounding box), used to drop
// particles that have advected outside it.
func domainBounds(cfg geo.Config) (min, max mgl64.Vec3) {
	min = cfg.Origin
	max = mgl64.Vec3{
		cfg.Origin.X() + float64(cfg.Nx)*cfg.H.X(),
		cfg.Origin.Y() + float64(cfg.Ny)*cfg.H.Y(),
		cfg.Origin.Z() + float64(cfg.Nz)*cfg.H.Z(),
	}
	return min, max
}

// midpointStep advances particle i's position by one RK2 midpoint
// sub-step: the particle's own velocity (already updated by the G2P
// transfer) locates the half-step midpoint, and the grid velocity sampled
// there moves the particle over the full sub-step.
func (d *Driver) midpointStep(i int, dt float64) {
	v0 := d.sys.Velocities[i]
	mid := d.sys.Positions[i].Add(v0.Mul(0.5 * dt))
	vMid := d.U.Sample(mid)
	d.sys.Positions[i] = d.sys.Positions[i].Add(vMid.Mul(dt))
}

// resolveCollision snaps a penetrating particle back to the collider's
// zero-isocontour along its (finite-differenced) surface normal, then
// removes the inward normal velocity component and damps the tangential
// component toward the collider's tangential velocity by its friction
// coefficient, the same blend boundary.ConstrainVelocity uses for
// tangent faces.
func (d *Driver) resolveCollision(i int) {
	if d.collider == nil {
		return
	}
	p := d.sys.Positions[i]
	phi := d.collider.SignedDistance(p)
	if phi >= 0 {
		return
	}
	n := colliderNormal(d.collider, p)
	d.sys.Positions[i] = p.Sub(n.Mul(phi))

	v := d.sys.Velocities[i]
	colliderVel := d.collider.Velocity(p)
	relative := v.Sub(colliderVel)
	vn := relative.Dot(n)
	tangential := relative.Sub(n.Mul(vn))
	if vn < 0 {
		vn = 0
	}
	friction := d.collider.Friction()
	tangential = tangential.Mul(1 - friction)
	d.sys.Velocities[i] = colliderVel.Add(n.Mul(vn)).Add(tangential)
}

// colliderNormal estimates the outward surface normal at p via a
// central-difference gradient of SignedDistance.
func colliderNormal(c interface{ SignedDistance(mgl64.Vec3) float64 }, p mgl64.Vec3) mgl64.Vec3 {
	dx := mgl64.Vec3{normalEps, 0, 0}
	dy := mgl64.Vec3{0, normalEps, 0}
	dz := mgl64.Vec3{0, 0, normalEps}
	g := mgl64.Vec3{
		c.SignedDistance(p.Add(dx)) - c.SignedDistance(p.Sub(dx)),
		c.SignedDistance(p.Add(dy)) - c.SignedDistance(p.Sub(dy)),
		c.SignedDistance(p.Add(dz)) - c.SignedDistance(p.Sub(dz)),
	}
	if l := g.Len(); l > 1e-12 {
		return g.Mul(1 / l)
	}
	return mgl64.Vec3{0, 1, 0}
}

func insideBox(p, min, max mgl64.Vec3) bool {
	return p.X() >= min.X() && p.X() <= max.X() &&
		p.Y() >= min.Y() && p.Y() <= max.Y() &&
		p.Z() >= min.Z() && p.Z() <= max.Z()
}
