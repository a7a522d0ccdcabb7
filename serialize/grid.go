// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package serialize

import (
	"encoding/binary"
	"io"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/gofluid/geo"
)

// grid kind tags, the leading {kind:u8} record field
// that distinguishes cell-centered, vertex-centered and face-centered
// placements so a reader knows which constructor to rehydrate into.
const (
	GridKindScalar       uint8 = iota // cell-centered
	GridKindVertexScalar              // vertex-centered
	GridKindFaceCentered              // three face-staggered components
)

// WriteScalarGrid writes a cell-centered grid record: {kind:u8} followed
// by the grid's own WriteTo block.
func WriteScalarGrid(w io.Writer, g *geo.ScalarGrid) (int64, error) {
	return writeKindedGrid(w, GridKindScalar, g)
}

// WriteVertexScalarGrid writes a vertex-centered grid record.
func WriteVertexScalarGrid(w io.Writer, g *geo.VertexScalarGrid) (int64, error) {
	return writeKindedGrid(w, GridKindVertexScalar, g)
}

// WriteFaceCenteredGrid writes a face-centered (U,V,W) grid record.
func WriteFaceCenteredGrid(w io.Writer, g *geo.FaceCenteredGrid) (int64, error) {
	return writeKindedGrid(w, GridKindFaceCentered, g)
}

type writerTo interface {
	WriteTo(w io.Writer) (int64, error)
}

func writeKindedGrid(w io.Writer, kind uint8, g writerTo) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, kind); err != nil {
		return 0, err
	}
	n, err := g.WriteTo(w)
	return n + 1, err
}

// ReadGridKind consumes the leading {kind:u8} tag so a caller can
// dispatch to the matching Read*Grid function, which then reads the rest
// of the record from r.
func ReadGridKind(r io.Reader) (uint8, error) {
	var kind uint8
	err := binary.Read(r, binary.LittleEndian, &kind)
	return kind, err
}

// ReadScalarGrid reads a record previously written by WriteScalarGrid,
// without re-reading the kind tag (the caller consumes it via
// ReadGridKind first when the kind is not already known).
func ReadScalarGrid(r io.Reader, cfg geo.Config) (*geo.ScalarGrid, error) {
	g := geo.NewScalarGrid(cfg)
	if _, err := g.ReadFrom(r); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadVertexScalarGrid reads a record previously written by
// WriteVertexScalarGrid.
func ReadVertexScalarGrid(r io.Reader, cfg geo.Config) (*geo.VertexScalarGrid, error) {
	g := geo.NewVertexScalarGrid(cfg)
	if _, err := g.ReadFrom(r); err != nil {
		return nil, err
	}
	return g, nil
}

// ReadFaceCenteredGrid reads a record previously written by
// WriteFaceCenteredGrid.
func ReadFaceCenteredGrid(r io.Reader, cfg geo.Config) (*geo.FaceCenteredGrid, error) {
	g := geo.NewFaceCenteredGrid(cfg)
	if _, err := g.ReadFrom(r); err != nil {
		return nil, err
	}
	return g, nil
}

// mustGridKind panics on an unrecognized kind tag, mirroring
// searcherKind's "invalid persisted data is fatal" stance.
func mustGridKind(kind uint8) {
	switch kind {
	case GridKindScalar, GridKindVertexScalar, GridKindFaceCentered:
		return
	default:
		chk.Panic("serialize: unrecognized grid kind tag %d", kind)
	}
}
