package boundary

import (
	"testing"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/scene"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func Test_no_penetration_on_solid_face(tst *testing.T) {
	chk.PrintTitle("no_penetration_on_solid_face")
	cfg := geo.Config{Nx: 8, Ny: 8, Nz: 8, H: mgl64.Vec3{0.1, 0.1, 0.1}}
	u := geo.NewFaceCenteredGrid(cfg)
	u.Fill(2.0)

	// a plane at x=0.3 with normal +x: everything with x<0.3 is solid.
	collider := scene.NewPlaneCollider(mgl64.Vec3{0.3, 0, 0}, mgl64.Vec3{1, 0, 0})
	collider.LinearVelocity = mgl64.Vec3{0.5, 0, 0}

	cond := NewConditions(cfg)
	cond.Update(collider)
	ConstrainVelocity(u, cond, collider, 2)

	nx, _, _ := u.U.Resolution()
	for i := 0; i < nx; i++ {
		p := u.U.DataPosition(i, 4, 4)
		if p.X() < 0.2 {
			v := u.U.At(i, 4, 4)
			chk.Float64(tst, "solid face matches collider normal velocity", 1e-9, v, 0.5)
		}
	}
}

func Test_face_weights_in_unit_interval(tst *testing.T) {
	chk.PrintTitle("face_weights_in_unit_interval")
	cfg := geo.Config{Nx: 8, Ny: 8, Nz: 8, H: mgl64.Vec3{0.1, 0.1, 0.1}}
	collider := scene.NewSphereCollider(mgl64.Vec3{0.4, 0.4, 0.4}, 0.2)
	cond := NewConditions(cfg)
	cond.Update(collider)
	for k := 0; k < 8; k++ {
		for j := 0; j < 8; j++ {
			for i := 0; i < 9; i++ {
				w := cond.UWeight(i, j, k)
				if w < 0 || w > 1 {
					tst.Fatalf("U weight out of [0,1]: %v at (%d,%d,%d)", w, i, j, k)
				}
			}
		}
	}
}
