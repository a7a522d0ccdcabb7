// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package mc implements the marching-cubes surface extractor: a scalar
// field and an iso-value in, a triangle mesh with per-vertex normals and
// empty UVs out, with optional flat-capped closure of the requested
// domain faces.
package mc

import "github.com/go-gl/mathgl/mgl64"

// Mesh is an indexed triangle list: three consecutive Indices form one
// triangle. UVs are allocated but never filled; downstream exporters
// expect the field to exist.
type Mesh struct {
	Positions []mgl64.Vec3
	Normals   []mgl64.Vec3
	UVs       []mgl64.Vec2
	Indices   []int
}

// AddTriangle appends a triangle referencing three already-added vertex
// indices.
func (m *Mesh) addTriangle(a, b, c int) {
	m.Indices = append(m.Indices, a, b, c)
}

// Area sums the geometric area of every triangle, used by tests that
// check convergence toward an analytic surface area.
func (m *Mesh) Area() float64 {
	var total float64
	for t := 0; t+2 < len(m.Indices); t += 3 {
		a := m.Positions[m.Indices[t]]
		b := m.Positions[m.Indices[t+1]]
		c := m.Positions[m.Indices[t+2]]
		total += b.Sub(a).Cross(c.Sub(a)).Len() * 0.5
	}
	return total
}
