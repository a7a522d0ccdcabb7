// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// writeHeader writes resolution, spacing and origin as a
// {nx,ny,nz:u32, hx,hy,hz:f64, ox,oy,oz:f64} record.
func writeHeader(w io.Writer, nx, ny, nz int, h, origin mgl64.Vec3) error {
	u32 := func(v int) error { return binary.Write(w, binary.LittleEndian, uint32(v)) }
	f64 := func(v float64) error { return binary.Write(w, binary.LittleEndian, v) }
	for _, v := range []int{nx, ny, nz} {
		if err := u32(v); err != nil {
			return err
		}
	}
	for _, v := range []float64{h.X(), h.Y(), h.Z(), origin.X(), origin.Y(), origin.Z()} {
		if err := f64(v); err != nil {
			return err
		}
	}
	return nil
}

func readHeader(r io.Reader) (nx, ny, nz int, h, origin mgl64.Vec3, err error) {
	var n [3]uint32
	for i := range n {
		if err = binary.Read(r, binary.LittleEndian, &n[i]); err != nil {
			return
		}
	}
	var f [6]float64
	for i := range f {
		if err = binary.Read(r, binary.LittleEndian, &f[i]); err != nil {
			return
		}
	}
	nx, ny, nz = int(n[0]), int(n[1]), int(n[2])
	h = mgl64.Vec3{f[0], f[1], f[2]}
	origin = mgl64.Vec3{f[3], f[4], f[5]}
	return
}

// WriteTo writes {nx,ny,nz,hx,hy,hz,ox,oy,oz,data} in x-fastest order.
func (g *offsetGrid) WriteTo(w io.Writer) (int64, error) {
	if err := writeHeader(w, g.nx, g.ny, g.nz, g.h, g.origin); err != nil {
		return 0, err
	}
	if err := binary.Write(w, binary.LittleEndian, g.data); err != nil {
		return 0, err
	}
	return int64(3*4 + 6*8 + len(g.data)*8), nil
}

// ReadFrom resizes g to match the header and reads its data; the offset
// (cell/vertex/face placement) of the receiver is preserved since it is a
// property of the grid kind, not of the persisted record.
func (g *offsetGrid) ReadFrom(r io.Reader) (int64, error) {
	nx, ny, nz, h, origin, err := readHeader(r)
	if err != nil {
		return 0, err
	}
	g.nx, g.ny, g.nz = nx, ny, nz
	g.h, g.origin = h, origin
	g.data = make([]float64, nx*ny*nz)
	if err := binary.Read(r, binary.LittleEndian, g.data); err != nil {
		return 0, err
	}
	return int64(3*4 + 6*8 + len(g.data)*8), nil
}

// hasNaN reports whether any sample is NaN; it backs the exported HasNaN
// methods below.
func (g *offsetGrid) hasNaN() bool {
	for _, v := range g.data {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// HasNaN reports whether any sample of the scalar grid is NaN.
func (g *ScalarGrid) HasNaN() bool { return g.offsetGrid.hasNaN() }

// HasNaN reports whether any component of the velocity field is NaN.
func (g *FaceCenteredGrid) HasNaN() bool {
	return g.U.hasNaN() || g.V.hasNaN() || g.W.hasNaN()
}
