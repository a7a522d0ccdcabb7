package scene

import (
	"math"
	"testing"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/particles"
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/rnd"
	"github.com/go-gl/mathgl/mgl64"
)

func newTestGrid() *geo.ScalarGrid {
	return geo.NewScalarGrid(geo.Config{Nx: 8, Ny: 8, Nz: 8, H: mgl64.Vec3{0.125, 0.125, 0.125}})
}

func Test_sphere_collider_sdf_and_velocity(tst *testing.T) {
	chk.PrintTitle("sphere_collider_sdf_and_velocity")

	c := NewSphereCollider(mgl64.Vec3{0, 0, 0}, 0.5)
	chk.Float64(tst, "outside", 1e-15, c.SignedDistance(mgl64.Vec3{1, 0, 0}), 0.5)
	chk.Float64(tst, "inside", 1e-15, c.SignedDistance(mgl64.Vec3{0.25, 0, 0}), -0.25)

	// spin about y: a point on +x moves along +z for a negative-y spin
	c.AngularVelocity = mgl64.Vec3{0, -1, 0}
	v := c.Velocity(mgl64.Vec3{0.5, 0, 0})
	chk.Array(tst, "rim velocity", 1e-15, v[:], []float64{0, 0, 0.5})
}

func Test_plane_collider_sdf(tst *testing.T) {
	chk.PrintTitle("plane_collider_sdf")

	p := NewPlaneCollider(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0, 2, 0})
	chk.Float64(tst, "above", 1e-15, p.SignedDistance(mgl64.Vec3{3, 1, -2}), 1)
	chk.Float64(tst, "below", 1e-15, p.SignedDistance(mgl64.Vec3{0, -0.5, 0}), -0.5)
}

func Test_volume_emitter_fills_box_and_respects_cap(tst *testing.T) {
	chk.PrintTitle("volume_emitter_fills_box_and_respects_cap")

	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.1, MaxParticles: 10})
	e := NewVolumeEmitter(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, 0.25, mgl64.Vec3{})
	e.Update(0, sys)
	chk.IntAssert(sys.N(), 10)

	// one-shot: a second update emits nothing even after particles leave
	sys.Clear()
	e.Update(1, sys)
	chk.IntAssert(sys.N(), 0)

	e.Reset()
	e.Update(2, sys)
	chk.IntAssert(sys.N(), 10)
}

func Test_point_emitter_rate_accumulates(tst *testing.T) {
	chk.PrintTitle("point_emitter_rate_accumulates")

	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.1})
	e := NewPointEmitter(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{0, 1, 0}, 10)
	e.Update(0.05, sys) // 0.5 particles: carried, none emitted
	chk.IntAssert(sys.N(), 0)
	e.Update(0.1, sys) // carry reaches 1.0
	chk.IntAssert(sys.N(), 1)

	// doubling the rate through a constant modulation function
	e2 := NewPointEmitter(mgl64.Vec3{}, mgl64.Vec3{}, 10)
	e2.RateFun = &fun.Cte{C: 2}
	sys2 := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.1})
	e2.Update(0.5, sys2)
	chk.IntAssert(sys2.N(), 10)
}

func Test_surface_particle_emitter_lands_on_isocontour(tst *testing.T) {
	chk.PrintTitle("surface_particle_emitter_lands_on_isocontour")

	rnd.Init(1234)
	sphere := NewSphereCollider(mgl64.Vec3{0.5, 0.5, 0.5}, 0.3)
	e := NewSurfaceParticleEmitter(sphere, mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}, 200, 0.5)
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.1})
	e.Update(0, sys)

	if sys.N() == 0 {
		tst.Errorf("no particles emitted")
		return
	}
	for i := 0; i < sys.N(); i++ {
		phi := sphere.SignedDistance(sys.Positions[i])
		if math.Abs(phi) > 1e-2 {
			tst.Errorf("particle %d off the surface: phi=%v", i, phi)
		}
		// emission velocity points outward
		outward := sys.Positions[i].Sub(sphere.Center)
		if sys.Velocities[i].Dot(outward) <= 0 {
			tst.Errorf("particle %d not emitted outward", i)
		}
	}
}

func Test_surface_emitter_paints_sdf(tst *testing.T) {
	chk.PrintTitle("surface_emitter_paints_sdf")

	sphere := NewSphereCollider(mgl64.Vec3{0.5, 0.5, 0.5}, 0.25)
	g := newTestGrid()
	e := NewSurfaceEmitter(sphere, g)
	e.Update(0, nil)

	g.ForEachDataPointIndex(func(i, j, k int) {
		want := sphere.SignedDistance(g.DataPosition(i, j, k))
		chk.Float64(tst, "painted phi", 1e-15, g.At(i, j, k), want)
	})
}
