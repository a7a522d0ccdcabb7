// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package serialize

import (
	"bytes"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/particles"
)

func Test_system_round_trip_preserves_columns_and_channels(tst *testing.T) {
	chk.PrintTitle("system_round_trip_preserves_columns_and_channels")
	sys := particles.NewSystem(particles.Config{Mass: 2, KernelRadius: 0.05})
	sys.AddParticle(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0.1, 0.2, 0.3})
	sys.AddParticle(mgl64.Vec3{4, 5, 6}, mgl64.Vec3{0.4, 0.5, 0.6})
	density := sys.AddScalarChannel("density")
	density[0], density[1] = 1000, 998
	normals := sys.AddVectorChannel("normal")
	normals[0] = mgl64.Vec3{0, 1, 0}

	var buf bytes.Buffer
	if _, err := WriteSystem(&buf, sys, &particles.ListSearcher{}); err != nil {
		tst.Fatalf("WriteSystem failed: %v", err)
	}

	got, searcher, err := ReadSystem(&buf)
	if err != nil {
		tst.Fatalf("ReadSystem failed: %v", err)
	}
	if got.N() != 2 {
		tst.Fatalf("expected 2 particles, got %d", got.N())
	}
	if got.Mass() != 2 || got.KernelRadius() != 0.05 {
		tst.Fatalf("mass/kernel radius not preserved: mass=%v radius=%v", got.Mass(), got.KernelRadius())
	}
	if got.Positions[1] != (mgl64.Vec3{4, 5, 6}) {
		tst.Fatalf("position not preserved: got %v", got.Positions[1])
	}
	if d := got.ScalarChannel("density"); d == nil || d[0] != 1000 || d[1] != 998 {
		tst.Fatalf("scalar channel not preserved: got %v", d)
	}
	if v := got.VectorChannel("normal"); v == nil || v[0] != (mgl64.Vec3{0, 1, 0}) {
		tst.Fatalf("vector channel not preserved: got %v", v)
	}
	if _, ok := searcher.(*particles.ListSearcher); !ok {
		tst.Fatalf("expected a ListSearcher to be rehydrated, got %T", searcher)
	}
}

func Test_hash_grid_searcher_blob_preserves_resolution(tst *testing.T) {
	chk.PrintTitle("hash_grid_searcher_blob_preserves_resolution")
	sys := particles.NewSystem(particles.Config{Mass: 1, KernelRadius: 0.1})
	var buf bytes.Buffer
	if _, err := WriteSystem(&buf, sys, particles.NewHashGridSearcher([3]int{4, 5, 6})); err != nil {
		tst.Fatalf("WriteSystem failed: %v", err)
	}
	_, searcher, err := ReadSystem(&buf)
	if err != nil {
		tst.Fatalf("ReadSystem failed: %v", err)
	}
	hg, ok := searcher.(*particles.HashGridSearcher)
	if !ok {
		tst.Fatalf("expected a HashGridSearcher to be rehydrated, got %T", searcher)
	}
	if hg.Resolution() != [3]int{4, 5, 6} {
		tst.Fatalf("resolution not preserved: got %v", hg.Resolution())
	}
}

func Test_scalar_grid_round_trip(tst *testing.T) {
	chk.PrintTitle("scalar_grid_round_trip")
	cfg := geo.Config{Nx: 3, Ny: 3, Nz: 3, H: mgl64.Vec3{0.1, 0.1, 0.1}}
	g := geo.NewScalarGrid(cfg)
	g.Set(1, 1, 1, 42)

	var buf bytes.Buffer
	if _, err := WriteScalarGrid(&buf, g); err != nil {
		tst.Fatalf("WriteScalarGrid failed: %v", err)
	}
	kind, err := ReadGridKind(&buf)
	if err != nil {
		tst.Fatalf("ReadGridKind failed: %v", err)
	}
	if kind != GridKindScalar {
		tst.Fatalf("expected GridKindScalar, got %d", kind)
	}
	g2, err := ReadScalarGrid(&buf, cfg)
	if err != nil {
		tst.Fatalf("ReadScalarGrid failed: %v", err)
	}
	if g2.At(1, 1, 1) != 42 {
		tst.Fatalf("grid data not preserved: got %v", g2.At(1, 1, 1))
	}
}
