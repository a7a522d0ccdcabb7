package sph

import (
	"math"
	"testing"

	"github.com/cpmech/gofluid/particles"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func newTestSystem(mass float64) *particles.System {
	return particles.NewSystem(particles.Config{Mass: mass, KernelRadius: 0.1})
}

func Test_isolated_particle_free_falls(tst *testing.T) {
	chk.PrintTitle("isolated_particle_free_falls")

	sys := newTestSystem(1.0)
	sys.AddParticle(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{})

	s := NewSolver(sys, Config{Gravity: mgl64.Vec3{0, -9.8, 0}})
	dt := 0.01
	s.Step(dt)

	// no neighbors: the only force is gravity, so symplectic Euler gives
	// v = g*dt and x = x0 + v*dt exactly
	chk.Array(tst, "velocity", 1e-14, sys.Velocities[0][:], []float64{0, -9.8 * dt, 0})
	chk.Float64(tst, "y", 1e-14, sys.Positions[0].Y(), 0.5-9.8*dt*dt)
	if s.Density()[0] <= 0 {
		tst.Errorf("self-contribution density must be positive, got %v", s.Density()[0])
	}
}

func Test_pair_conserves_momentum(tst *testing.T) {
	chk.PrintTitle("pair_conserves_momentum")

	// particles closer than the kernel radius: both see a density above
	// rest, so pressures are positive and forces are purely pairwise
	// antisymmetric
	sys := newTestSystem(1.0)
	sys.AddParticle(mgl64.Vec3{0.50, 0.5, 0.5}, mgl64.Vec3{})
	sys.AddParticle(mgl64.Vec3{0.55, 0.5, 0.5}, mgl64.Vec3{})

	s := NewSolver(sys, Config{Viscosity: 0.1})
	s.Step(0.001)

	var momentum mgl64.Vec3
	for i := 0; i < sys.N(); i++ {
		momentum = momentum.Add(sys.Velocities[i].Mul(sys.Mass()))
	}
	chk.Array(tst, "momentum", 1e-9, momentum[:], []float64{0, 0, 0})

	// repulsion: the gap must open
	gap := sys.Positions[1].Sub(sys.Positions[0]).Len()
	if gap <= 0.05 {
		tst.Errorf("compressed pair must separate, gap=%v", gap)
	}
}

func Test_tait_negative_pressure_scaling(tst *testing.T) {
	chk.PrintTitle("tait_negative_pressure_scaling")

	sys := newTestSystem(1.0)
	s := NewSolver(sys, Config{NegativePressureScale: 0.0})
	if p := s.tait(0.5 * s.cfg.TargetDensity); p != 0 {
		tst.Errorf("sub-rest density with zero scale must give zero pressure, got %v", p)
	}
	s2 := NewSolver(sys, Config{NegativePressureScale: 0.5})
	if p := s2.tait(0.5 * s2.cfg.TargetDensity); p >= 0 {
		tst.Errorf("sub-rest density with nonzero scale must give negative pressure, got %v", p)
	}
	if p := s.tait(2 * s.cfg.TargetDensity); p <= 0 {
		tst.Errorf("super-rest density must give positive pressure, got %v", p)
	}
}

func Test_pci_pushes_compressed_pair_apart(tst *testing.T) {
	chk.PrintTitle("pci_pushes_compressed_pair_apart")

	sys := newTestSystem(1.0)
	sys.AddParticle(mgl64.Vec3{0.50, 0.5, 0.5}, mgl64.Vec3{})
	sys.AddParticle(mgl64.Vec3{0.54, 0.5, 0.5}, mgl64.Vec3{})
	gap0 := sys.Positions[1].Sub(sys.Positions[0]).Len()

	s := NewPCISolver(sys, PCIConfig{MaxIterations: 10})
	s.Step(0.001)

	gap := sys.Positions[1].Sub(sys.Positions[0]).Len()
	if gap <= gap0 {
		tst.Errorf("compressed pair must separate: gap %v -> %v", gap0, gap)
	}

	st := s.Stats()
	if st.MeanDensity <= 0 {
		tst.Errorf("mean density must be positive, got %v", st.MeanDensity)
	}
	if math.IsNaN(st.StdDevDensity) || math.IsNaN(st.WorstErrRatio) {
		tst.Errorf("stats must be finite: %+v", st)
	}
}

func Test_pci_config_validation(tst *testing.T) {
	chk.PrintTitle("pci_config_validation")

	defer func() {
		if recover() == nil {
			tst.Errorf("negative MaxDensityErrorRatio must panic")
		}
	}()
	sys := newTestSystem(1.0)
	NewPCISolver(sys, PCIConfig{MaxDensityErrorRatio: -1})
}
