// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package particles implements the structure-of-arrays particle store and
// its neighbor-search variants: a dense column per attribute
// indexed by particle id, an unbounded set of user scalar/vector
// channels, and pluggable spatial searchers that must be rebuilt whenever
// positions are mutated.
package particles

import (
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

// Config is the builder-style configuration for a new particle System.
type Config struct {
	Mass        float64 // per-particle mass (uniform across the system)
	KernelRadius float64 // interaction/kernel radius used by SPH-style drivers
	MaxParticles int     // 0 means unbounded
}

// System is a SoA particle store: positions/velocities/forces plus any
// number of user-added scalar and vector channels, each a dense array of
// length N. Mass and kernel radius are scalar properties of the system,
// not per-particle.
type System struct {
	cfg Config

	Positions  []mgl64.Vec3
	Velocities []mgl64.Vec3
	Forces     []mgl64.Vec3

	scalarChannels map[string][]float64
	vectorChannels map[string][]mgl64.Vec3
}

// NewSystem returns an empty particle system.
func NewSystem(cfg Config) *System {
	if cfg.Mass <= 0 {
		chk.Panic("particle system mass must be positive: got %v", cfg.Mass)
	}
	if cfg.KernelRadius <= 0 {
		chk.Panic("particle system kernel radius must be positive: got %v", cfg.KernelRadius)
	}
	return &System{
		cfg:            cfg,
		scalarChannels: make(map[string][]float64),
		vectorChannels: make(map[string][]mgl64.Vec3),
	}
}

// N returns the current particle count.
func (s *System) N() int { return len(s.Positions) }

// Mass returns the system's uniform per-particle mass.
func (s *System) Mass() float64 { return s.cfg.Mass }

// KernelRadius returns the system's interaction radius.
func (s *System) KernelRadius() float64 { return s.cfg.KernelRadius }

// AddParticle appends one particle at (pos,vel), zero force, and
// zero-valued extra channels, silently capping at MaxParticles if
// configured.
func (s *System) AddParticle(pos, vel mgl64.Vec3) (added bool) {
	if s.cfg.MaxParticles > 0 && s.N() >= s.cfg.MaxParticles {
		return false
	}
	s.Positions = append(s.Positions, pos)
	s.Velocities = append(s.Velocities, vel)
	s.Forces = append(s.Forces, mgl64.Vec3{})
	for name := range s.scalarChannels {
		s.scalarChannels[name] = append(s.scalarChannels[name], 0)
	}
	for name := range s.vectorChannels {
		s.vectorChannels[name] = append(s.vectorChannels[name], mgl64.Vec3{})
	}
	return true
}

// AddParticles appends a batch, stopping early (and reporting how many it
// actually added) once MaxParticles is reached.
func (s *System) AddParticles(positions, velocities []mgl64.Vec3) (added int) {
	for i := range positions {
		vel := mgl64.Vec3{}
		if i < len(velocities) {
			vel = velocities[i]
		}
		if !s.AddParticle(positions[i], vel) {
			break
		}
		added++
	}
	return added
}

// RemoveByPredicate compacts the system, dropping every particle for
// which keep(i) returns false. Particle ids are not stable across this
// call.
func (s *System) RemoveByPredicate(keep func(i int) bool) {
	w := 0
	for r := 0; r < s.N(); r++ {
		if !keep(r) {
			continue
		}
		s.swapInto(w, r)
		w++
	}
	s.truncate(w)
}

func (s *System) swapInto(w, r int) {
	if w == r {
		return
	}
	s.Positions[w] = s.Positions[r]
	s.Velocities[w] = s.Velocities[r]
	s.Forces[w] = s.Forces[r]
	for name := range s.scalarChannels {
		s.scalarChannels[name][w] = s.scalarChannels[name][r]
	}
	for name := range s.vectorChannels {
		s.vectorChannels[name][w] = s.vectorChannels[name][r]
	}
}

func (s *System) truncate(n int) {
	s.Positions = s.Positions[:n]
	s.Velocities = s.Velocities[:n]
	s.Forces = s.Forces[:n]
	for name := range s.scalarChannels {
		s.scalarChannels[name] = s.scalarChannels[name][:n]
	}
	for name := range s.vectorChannels {
		s.vectorChannels[name] = s.vectorChannels[name][:n]
	}
}

// Clear empties the system but keeps registered channels.
func (s *System) Clear() {
	s.truncate(0)
}

// Resize grows or shrinks every column to exactly n entries, zero-filling
// new entries.
func (s *System) Resize(n int) {
	s.Positions = resizeVec3(s.Positions, n)
	s.Velocities = resizeVec3(s.Velocities, n)
	s.Forces = resizeVec3(s.Forces, n)
	for name, col := range s.scalarChannels {
		s.scalarChannels[name] = resizeFloat(col, n)
	}
	for name, col := range s.vectorChannels {
		s.vectorChannels[name] = resizeVec3(col, n)
	}
}

func resizeVec3(col []mgl64.Vec3, n int) []mgl64.Vec3 {
	if n <= len(col) {
		return col[:n]
	}
	out := make([]mgl64.Vec3, n)
	copy(out, col)
	return out
}

func resizeFloat(col []float64, n int) []float64 {
	if n <= len(col) {
		return col[:n]
	}
	out := make([]float64, n)
	copy(out, col)
	return out
}

// AddScalarChannel registers a new dense scalar channel, zero-initialized
// across existing particles.
func (s *System) AddScalarChannel(name string) []float64 {
	if col, ok := s.scalarChannels[name]; ok {
		return col
	}
	col := make([]float64, s.N())
	s.scalarChannels[name] = col
	return col
}

// AddVectorChannel registers a new dense vector channel.
func (s *System) AddVectorChannel(name string) []mgl64.Vec3 {
	if col, ok := s.vectorChannels[name]; ok {
		return col
	}
	col := make([]mgl64.Vec3, s.N())
	s.vectorChannels[name] = col
	return col
}

// ScalarChannel returns a previously added scalar channel, or nil.
func (s *System) ScalarChannel(name string) []float64 { return s.scalarChannels[name] }

// VectorChannel returns a previously added vector channel, or nil.
func (s *System) VectorChannel(name string) []mgl64.Vec3 { return s.vectorChannels[name] }

// RemoveChannel drops a previously registered channel (no-op if absent).
func (s *System) RemoveChannel(name string) {
	delete(s.scalarChannels, name)
	delete(s.vectorChannels, name)
}

// ScalarChannelNames returns the registered scalar channel names, in
// unspecified order; used by serialize to enumerate what to persist.
func (s *System) ScalarChannelNames() []string {
	names := make([]string, 0, len(s.scalarChannels))
	for name := range s.scalarChannels {
		names = append(names, name)
	}
	return names
}

// VectorChannelNames returns the registered vector channel names, in
// unspecified order; used by serialize to enumerate what to persist.
func (s *System) VectorChannelNames() []string {
	names := make([]string, 0, len(s.vectorChannels))
	for name := range s.vectorChannels {
		names = append(names, name)
	}
	return names
}

// Mass and KernelRadius are exposed via cfg; Config returns a copy of
// the system's configuration for serialization round-trips.
func (s *System) Config() Config { return s.cfg }
