// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package serialize

import (
	"encoding/binary"
	"io"

	"github.com/go-gl/mathgl/mgl64"
)

func writeF64(w io.Writer, v float64) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readF64(r io.Reader) (float64, error) {
	var v float64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func writeU32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.LittleEndian, v)
}

func readU32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// writeString writes a u32-length-prefixed UTF-8 string, the {name:str}
// field shape of the channel records.
func writeString(w io.Writer, s string) (int64, error) {
	if err := writeU32(w, uint32(len(s))); err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, s)
	return int64(4 + n), err
}

func readString(r io.Reader) (string, error) {
	length, err := readU32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeVec3Slice writes a raw array of vec3d in x,y,z component
// order.
func writeVec3Slice(w io.Writer, col []mgl64.Vec3) (int64, error) {
	flat := make([]float64, 3*len(col))
	for i, v := range col {
		flat[3*i], flat[3*i+1], flat[3*i+2] = v.X(), v.Y(), v.Z()
	}
	if err := binary.Write(w, binary.LittleEndian, flat); err != nil {
		return 0, err
	}
	return int64(len(flat) * 8), nil
}

func readVec3Slice(r io.Reader, count int) ([]mgl64.Vec3, error) {
	flat := make([]float64, 3*count)
	if err := binary.Read(r, binary.LittleEndian, flat); err != nil {
		return nil, err
	}
	out := make([]mgl64.Vec3, count)
	for i := range out {
		out[i] = mgl64.Vec3{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return out, nil
}

func writeScalarChannel(w io.Writer, name string, data []float64) (int64, error) {
	n, err := writeString(w, name)
	if err != nil {
		return n, err
	}
	if err := binary.Write(w, binary.LittleEndian, data); err != nil {
		return n, err
	}
	return n + int64(len(data)*8), nil
}

// readScalarChannel reads one {name:str, data:[f64;count]} record; count
// is the particle count already established by the enclosing system
// record, not re-stored per channel.
func readScalarChannel(r io.Reader, count int) (string, []float64, error) {
	name, err := readString(r)
	if err != nil {
		return "", nil, err
	}
	data := make([]float64, count)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return "", nil, err
	}
	return name, data, nil
}

func writeVectorChannel(w io.Writer, name string, data []mgl64.Vec3) (int64, error) {
	n, err := writeString(w, name)
	if err != nil {
		return n, err
	}
	m, err := writeVec3Slice(w, data)
	return n + m, err
}

func readVectorChannel(r io.Reader, count int) (string, []mgl64.Vec3, error) {
	name, err := readString(r)
	if err != nil {
		return "", nil, err
	}
	data, err := readVec3Slice(r, count)
	if err != nil {
		return "", nil, err
	}
	return name, data, nil
}
