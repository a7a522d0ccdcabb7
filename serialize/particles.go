// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package serialize implements the binary persistence format: a
// particle system record is {radius, mass, count, positions, velocities,
// forces, extra_scalar_channels, extra_vector_channels,
// neighbor_searcher_blob}, length-prefixed and written in the same
// io.WriterTo/io.ReaderFrom idiom geo uses for grids.
package serialize

import (
	"encoding/binary"
	"io"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/particles"
)

// searcher kind tags for the neighbor searcher blob; the blob is opaque
// to everything but readParticleSystem, which re-hydrates the named
// searcher type.
const (
	searcherList uint8 = iota
	searcherKdTree
	searcherHashGrid
	searcherParallelHashGrid
)

func searcherKind(s particles.Searcher) uint8 {
	switch s.(type) {
	case *particles.ListSearcher:
		return searcherList
	case *particles.KdTreeSearcher:
		return searcherKdTree
	case *particles.HashGridSearcher:
		return searcherHashGrid
	case *particles.ParallelHashGridSearcher:
		return searcherParallelHashGrid
	default:
		chk.Panic("serialize: unrecognized searcher type %T", s)
		return 0
	}
}

// WriteSystem writes sys's full record, including the searcher that will
// rebuild its spatial index once positions are restored. A nil searcher
// defaults to the List kind, matching sph.Config's default searcher.
func WriteSystem(w io.Writer, sys *particles.System, searcher particles.Searcher) (int64, error) {
	cfg := sys.Config()
	var n int64
	if err := writeF64(w, cfg.KernelRadius); err != nil {
		return n, err
	}
	n += 8
	if err := writeF64(w, cfg.Mass); err != nil {
		return n, err
	}
	n += 8
	count := uint64(sys.N())
	if err := binary.Write(w, binary.LittleEndian, count); err != nil {
		return n, err
	}
	n += 8

	for _, col := range [][]mgl64.Vec3{sys.Positions, sys.Velocities, sys.Forces} {
		m, err := writeVec3Slice(w, col)
		n += m
		if err != nil {
			return n, err
		}
	}

	scalarNames := sys.ScalarChannelNames()
	if err := writeU32(w, uint32(len(scalarNames))); err != nil {
		return n, err
	}
	n += 4
	for _, name := range scalarNames {
		m, err := writeScalarChannel(w, name, sys.ScalarChannel(name))
		n += m
		if err != nil {
			return n, err
		}
	}

	vectorNames := sys.VectorChannelNames()
	if err := writeU32(w, uint32(len(vectorNames))); err != nil {
		return n, err
	}
	n += 4
	for _, name := range vectorNames {
		m, err := writeVectorChannel(w, name, sys.VectorChannel(name))
		n += m
		if err != nil {
			return n, err
		}
	}

	m, err := writeSearcherBlob(w, searcher)
	n += m
	return n, err
}

// ReadSystem reads a record written by WriteSystem, returning a freshly
// constructed System and the searcher kind's zero-value instance (not yet
// Build-ed; the caller is expected to call Build once, per
// particles.Searcher's contract).
func ReadSystem(r io.Reader) (*particles.System, particles.Searcher, error) {
	radius, err := readF64(r)
	if err != nil {
		return nil, nil, err
	}
	mass, err := readF64(r)
	if err != nil {
		return nil, nil, err
	}
	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, nil, err
	}
	sys := particles.NewSystem(particles.Config{Mass: mass, KernelRadius: radius})

	positions, err := readVec3Slice(r, int(count))
	if err != nil {
		return nil, nil, err
	}
	velocities, err := readVec3Slice(r, int(count))
	if err != nil {
		return nil, nil, err
	}
	forces, err := readVec3Slice(r, int(count))
	if err != nil {
		return nil, nil, err
	}
	sys.AddParticles(positions, velocities)
	copy(sys.Forces, forces)

	var nScalar uint32
	if err := binary.Read(r, binary.LittleEndian, &nScalar); err != nil {
		return nil, nil, err
	}
	for i := uint32(0); i < nScalar; i++ {
		name, data, err := readScalarChannel(r, int(count))
		if err != nil {
			return nil, nil, err
		}
		copy(sys.AddScalarChannel(name), data)
	}

	var nVector uint32
	if err := binary.Read(r, binary.LittleEndian, &nVector); err != nil {
		return nil, nil, err
	}
	for i := uint32(0); i < nVector; i++ {
		name, data, err := readVectorChannel(r, int(count))
		if err != nil {
			return nil, nil, err
		}
		copy(sys.AddVectorChannel(name), data)
	}

	searcher, err := readSearcherBlob(r)
	if err != nil {
		return nil, nil, err
	}
	return sys, searcher, nil
}

func writeSearcherBlob(w io.Writer, s particles.Searcher) (int64, error) {
	if s == nil {
		s = &particles.ListSearcher{}
	}
	kind := searcherKind(s)
	if err := binary.Write(w, binary.LittleEndian, kind); err != nil {
		return 0, err
	}
	var resolution [3]int
	switch v := s.(type) {
	case *particles.HashGridSearcher:
		resolution = v.Resolution()
	case *particles.ParallelHashGridSearcher:
		resolution = v.Resolution()
	}
	packed := [3]uint32{uint32(resolution[0]), uint32(resolution[1]), uint32(resolution[2])}
	if err := binary.Write(w, binary.LittleEndian, packed); err != nil {
		return 1, err
	}
	return 13, nil
}

func readSearcherBlob(r io.Reader) (particles.Searcher, error) {
	var kind uint8
	if err := binary.Read(r, binary.LittleEndian, &kind); err != nil {
		return nil, err
	}
	var resolution [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &resolution); err != nil {
		return nil, err
	}
	res := [3]int{int(resolution[0]), int(resolution[1]), int(resolution[2])}
	switch kind {
	case searcherList:
		return &particles.ListSearcher{}, nil
	case searcherKdTree:
		return &particles.KdTreeSearcher{}, nil
	case searcherHashGrid:
		return particles.NewHashGridSearcher(res), nil
	case searcherParallelHashGrid:
		return particles.NewParallelHashGridSearcher(res), nil
	default:
		chk.Panic("serialize: unrecognized searcher kind tag %d", kind)
		return nil, nil
	}
}
