package diffuse

import (
	"testing"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/linsys"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func testConfig() geo.Config {
	return geo.Config{Nx: 8, Ny: 8, Nz: 8, H: mgl64.Vec3{0.1, 0.1, 0.1}}
}

func Test_forward_euler_preserves_constant(tst *testing.T) {
	chk.PrintTitle("forward_euler_preserves_constant")
	cfg := testConfig()
	in := geo.NewScalarGrid(cfg)
	in.Fill(4.0)
	out := geo.NewScalarGrid(cfg)
	ForwardEuler(in, 0.001, 0.01, out)
	for _, v := range out.Data() {
		chk.Float64(tst, "uniform preserved", 1e-12, v, 4.0)
	}
}

func Test_backward_euler_preserves_constant(tst *testing.T) {
	chk.PrintTitle("backward_euler_preserves_constant")
	cfg := testConfig()
	in := geo.NewScalarGrid(cfg)
	in.Fill(2.5)
	out, status := BackwardEuler(in, 0.01, 0.05, nil, Neumann, linsys.DefaultConfig())
	if !status.Converged {
		tst.Fatalf("backward-Euler solve failed to converge: residual=%v", status.Residual)
	}
	for _, v := range out.Data() {
		chk.Float64(tst, "uniform preserved", 1e-6, v, 2.5)
	}
}

func Test_backward_euler_dirichlet_all_fluid_does_not_grow(tst *testing.T) {
	chk.PrintTitle("backward_euler_dirichlet_all_fluid_does_not_grow")
	cfg := testConfig()
	in := geo.NewScalarGrid(cfg)
	in.Fill(1.0)
	sdf := geo.NewScalarGrid(cfg)
	sdf.Fill(1) // all fluid: no solid neighbors, so this checks the plain solve path
	out, status := BackwardEuler(in, 0.02, 0.05, sdf, Dirichlet, linsys.DefaultConfig())
	if !status.Converged {
		tst.Fatalf("solve failed to converge: residual=%v", status.Residual)
	}
	for _, v := range out.Data() {
		if v > 1.0+1e-9 {
			tst.Fatalf("value grew beyond initial uniform field: %v", v)
		}
	}
}
