package gridfluid

import (
	"testing"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/linsys"
	"github.com/cpmech/gofluid/scene"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func testGridConfig() geo.Config {
	return geo.Config{Nx: 6, Ny: 6, Nz: 6, H: mgl64.Vec3{0.1, 0.1, 0.1}}
}

func testDriverConfig() Config {
	return Config{
		FrameDuration:      1.0 / 60.0,
		CFLFactor:          0.9,
		Gravity:            [3]float64{0, -9.8, 0},
		Density:            1.0,
		ExtrapolationDepth: 2,
		PressureSolver:     linsys.DefaultConfig(),
		ViscositySolver:    linsys.DefaultConfig(),
	}
}

func Test_driver_update_advances_without_collider(tst *testing.T) {
	chk.PrintTitle("driver_update_advances_without_collider")
	d := NewDriver(testGridConfig(), testDriverConfig())
	d.Update(0)
	if !d.LastStatus().Converged {
		tst.Fatalf("pressure solve failed to converge: residual=%v", d.LastStatus().Residual)
	}
	if d.currentTime <= 0 {
		tst.Fatalf("expected driver time to advance, got %v", d.currentTime)
	}
}

func Test_driver_update_with_collider_stays_finite(tst *testing.T) {
	chk.PrintTitle("driver_update_with_collider_stays_finite")
	d := NewDriver(testGridConfig(), testDriverConfig())
	floor := scene.NewPlaneCollider(mgl64.Vec3{0, 0.1, 0}, mgl64.Vec3{0, 1, 0})
	floor.FrictionCoeff = 0.5
	d.SetCollider(floor)
	d.Update(0)
	if d.U.HasNaN() {
		tst.Fatalf("velocity field developed NaN after one frame")
	}
}

func Test_config_validate_rejects_bad_frame_duration(tst *testing.T) {
	chk.PrintTitle("config_validate_rejects_bad_frame_duration")
	defer func() {
		if recover() == nil {
			tst.Fatalf("expected panic on non-positive FrameDuration")
		}
	}()
	cfg := testDriverConfig()
	cfg.FrameDuration = 0
	NewDriver(testGridConfig(), cfg)
}
