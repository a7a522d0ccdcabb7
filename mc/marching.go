// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mc

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/levelset"
)

// Field is the scalar-grid surface satisfied by both geo.ScalarGrid and
// geo.VertexScalarGrid; marching cubes only needs sampling at exact data
// points, not interpolation, so it depends on this minimal interface
// rather than the concrete grid types.
type Field interface {
	Resolution() (nx, ny, nz int)
	At(i, j, k int) float64
	DataPosition(i, j, k int) mgl64.Vec3
	GradientAtDataPoint(i, j, k int) mgl64.Vec3
}

// Face indices into Config.CloseBoundary/ConnectBoundary, one per domain
// face.
const (
	FaceXMinus = iota
	FaceXPlus
	FaceYMinus
	FaceYPlus
	FaceZMinus
	FaceZPlus
)

// Config carries the iso-value and the boundary-closure flags.
type Config struct {
	IsoValue float64

	// CloseBoundary[f] requests a flat triangulated cap on domain face
	// f, covering the part of that face where the field is inside.
	CloseBoundary [6]bool

	// ConnectBoundary[f] requests that the cap on face f reuse the 3D
	// edge-vertex hash (so cap and interior mesh share vertices exactly)
	// rather than generate independent cap vertices.
	ConnectBoundary [6]bool
}

// vertexKey is a doubled-vertex coordinate: twice the grid index of
// each endpoint of a crossed edge, summed, so the same physical edge
// hashes identically from whichever cube (or face) visits it first, so
// shared mesh vertices merge exactly.
type vertexKey [3]int

// builder accumulates the output mesh and the edge-vertex dedup table
// across every cube/face processed.
type builder struct {
	field     Field
	cfg       Config
	mesh      Mesh
	cache     map[vertexKey]int
	faceCache map[int]map[vertexKey]int
}

// Extract runs marching cubes (via a 6-tetrahedra-per-cube
// decomposition, see tables.go) over field at IsoValue, optionally
// capping the requested domain faces.
func Extract(field Field, cfg Config) *Mesh {
	b := &builder{field: field, cfg: cfg, cache: make(map[vertexKey]int), faceCache: make(map[int]map[vertexKey]int)}
	nx, ny, nz := field.Resolution()
	for k := 0; k < nz-1; k++ {
		for j := 0; j < ny-1; j++ {
			for i := 0; i < nx-1; i++ {
				b.processCube(i, j, k)
			}
		}
	}
	for f := 0; f < 6; f++ {
		if cfg.CloseBoundary[f] {
			b.processFace(f, nx, ny, nz)
		}
	}
	return &b.mesh
}

func (b *builder) corner(i, j, k int, off [3]int) (value float64, idx [3]int) {
	idx = [3]int{i + off[0], j + off[1], k + off[2]}
	return b.field.At(idx[0], idx[1], idx[2]), idx
}

// processCube triangulates one cube's interior via its 6-tetrahedra
// decomposition.
func (b *builder) processCube(i, j, k int) {
	var values [8]float64
	var idx [8][3]int
	for c := 0; c < 8; c++ {
		values[c], idx[c] = b.corner(i, j, k, cubeCorner[c])
	}
	for _, tet := range tetraDecomposition {
		b.processTetra(idx, values, tet)
	}
}

func (b *builder) processTetra(idx [8][3]int, values [8]float64, tet [4]int) {
	mask := 0
	var v [4]float64
	var p [4][3]int
	for local, corner := range tet {
		v[local] = values[corner]
		p[local] = idx[corner]
		if levelset.IsInside(v[local] - b.cfg.IsoValue) {
			mask |= 1 << uint(local)
		}
	}
	edges := tetraCaseTable[mask]
	verts := make([]int, 0, 4)
	for _, e := range edges {
		if e < 0 {
			break
		}
		a, bIdx := tetraEdge[e][0], tetraEdge[e][1]
		verts = append(verts, b.edgeVertex(p[a], v[a], p[bIdx], v[bIdx]))
	}
	b.emitFan(verts)
}

// emitFan triangulates a convex polygon (3 or 4 vertices, the only cases
// the case tables produce) as a fan from its first vertex.
func (b *builder) emitFan(verts []int) {
	for t := 1; t+1 < len(verts); t++ {
		b.mesh.addTriangle(verts[0], verts[t], verts[t+1])
	}
}

// edgeVertex returns the mesh-vertex index for the iso-crossing between
// grid points a and bIdx, reusing a prior visit via the doubled-coordinate
// hash or creating (position+normal) a new vertex otherwise.
func (b *builder) edgeVertex(a [3]int, va float64, bIdx [3]int, vb float64) int {
	key := vertexKey{a[0] + bIdx[0], a[1] + bIdx[1], a[2] + bIdx[2]}
	if id, ok := b.cache[key]; ok {
		return id
	}
	id := b.newVertex(a, va, bIdx, vb)
	b.cache[key] = id
	return id
}

// faceInfo describes one domain face: its fixed axis, fixed coordinate,
// and the two free axes that the 2D marching-squares sweep runs over.
type faceInfo struct {
	fixedAxis, fixedCoord int
	freeA, freeB          int
	freeCountA, freeCountB int
}

func (b *builder) faceInfo(f, nx, ny, nz int) faceInfo {
	switch f {
	case FaceXMinus:
		return faceInfo{0, 0, 1, 2, ny, nz}
	case FaceXPlus:
		return faceInfo{0, nx - 1, 1, 2, ny, nz}
	case FaceYMinus:
		return faceInfo{1, 0, 0, 2, nx, nz}
	case FaceYPlus:
		return faceInfo{1, ny - 1, 0, 2, nx, nz}
	case FaceZMinus:
		return faceInfo{2, 0, 0, 1, nx, ny}
	default: // FaceZPlus
		return faceInfo{2, nz - 1, 0, 1, nx, ny}
	}
}

func assembleIndex(fi faceInfo, a, b int) [3]int {
	var idx [3]int
	idx[fi.fixedAxis] = fi.fixedCoord
	idx[fi.freeA] = a
	idx[fi.freeB] = b
	return idx
}

// processFace runs 2D marching squares over domain face f, capping it
// with flat triangles; crossing vertices on the face's own edges reuse
// the 3D edge hash when ConnectBoundary[f] is set, matching the "reusing
// the 3D vertex hash iff the corresponding connectivity bit is set: a
// shared edge between the cap and the interior mesh must be
// bit-identical to merge, and an edge interior to the cap never collides
// with a 3D cube edge regardless, since it carries a doubled coordinate
// with both free-axis components varying, which no cube edge produces).
func (b *builder) processFace(f, nx, ny, nz int) {
	fi := b.faceInfo(f, nx, ny, nz)
	for j := 0; j < fi.freeCountB-1; j++ {
		for i := 0; i < fi.freeCountA-1; i++ {
			b.processSquare(f, fi, i, j)
		}
	}
}

func (b *builder) processSquare(f int, fi faceInfo, i, j int) {
	var values [4]float64
	var idx [4][3]int
	for c := 0; c < 4; c++ {
		a := i + squareCorner[c][0]
		bb := j + squareCorner[c][1]
		idx[c] = assembleIndex(fi, a, bb)
		values[c] = b.field.At(idx[c][0], idx[c][1], idx[c][2])
	}
	mask := 0
	for c := 0; c < 4; c++ {
		if levelset.IsInside(values[c]-b.cfg.IsoValue) {
			mask |= 1 << uint(c)
		}
	}
	tokens := capCaseTable[mask]
	verts := make([]int, 0, 6)
	for _, tok := range tokens {
		if tok < 0 {
			break
		}
		if tok < 4 {
			verts = append(verts, b.faceCornerVertex(f, idx[tok]))
		} else {
			e := tok - 4
			a, bIdx := squareEdge[e][0], squareEdge[e][1]
			verts = append(verts, b.faceEdgeVertex(f, idx[a], values[a], idx[bIdx], values[bIdx]))
		}
	}
	b.emitFan(verts)
}

// faceEdgeVertex places a cap-edge vertex. When ConnectBoundary[f] is
// set it goes through the same doubled-coordinate cache as the 3D
// interior, so a cap edge coinciding with a cube edge on the domain
// boundary merges exactly; otherwise it uses a cache private to face f,
// keeping the cap's vertices independent of the interior mesh.
func (b *builder) faceEdgeVertex(f int, a [3]int, va float64, bIdx [3]int, vb float64) int {
	if b.cfg.ConnectBoundary[f] {
		return b.edgeVertex(a, va, bIdx, vb)
	}
	cache := b.faceCache[f]
	if cache == nil {
		cache = make(map[vertexKey]int)
		b.faceCache[f] = cache
	}
	key := vertexKey{a[0] + bIdx[0], a[1] + bIdx[1], a[2] + bIdx[2]}
	if id, ok := cache[key]; ok {
		return id
	}
	id := b.newVertex(a, va, bIdx, vb)
	cache[key] = id
	return id
}

// faceCornerVertex places a cap vertex at an inside grid corner. Its
// doubled-coordinate key (2i,2j,2k) is all-even, which no edge crossing
// produces (edge keys always carry exactly one odd component), so
// corner and crossing vertices share the caches without collisions. The
// normal is the face's outward normal: the cap is flat.
func (b *builder) faceCornerVertex(f int, idx [3]int) int {
	key := vertexKey{2 * idx[0], 2 * idx[1], 2 * idx[2]}
	cache := b.cache
	if !b.cfg.ConnectBoundary[f] {
		cache = b.faceCache[f]
		if cache == nil {
			cache = make(map[vertexKey]int)
			b.faceCache[f] = cache
		}
	}
	if id, ok := cache[key]; ok {
		return id
	}
	id := len(b.mesh.Positions)
	b.mesh.Positions = append(b.mesh.Positions, b.field.DataPosition(idx[0], idx[1], idx[2]))
	b.mesh.Normals = append(b.mesh.Normals, outwardFaceNormal(f))
	cache[key] = id
	return id
}

func outwardFaceNormal(f int) mgl64.Vec3 {
	switch f {
	case FaceXMinus:
		return mgl64.Vec3{-1, 0, 0}
	case FaceXPlus:
		return mgl64.Vec3{1, 0, 0}
	case FaceYMinus:
		return mgl64.Vec3{0, -1, 0}
	case FaceYPlus:
		return mgl64.Vec3{0, 1, 0}
	case FaceZMinus:
		return mgl64.Vec3{0, 0, -1}
	default:
		return mgl64.Vec3{0, 0, 1}
	}
}

// newVertex computes position/normal for an edge crossing without
// touching the shared interior cache (factored out of edgeVertex so
// faceEdgeVertex's private-cache path can reuse the same math).
func (b *builder) newVertex(a [3]int, va float64, bIdx [3]int, vb float64) int {
	t := levelset.DistanceToZeroLevelSet(va-b.cfg.IsoValue, vb-b.cfg.IsoValue)
	pa := b.field.DataPosition(a[0], a[1], a[2])
	pb := b.field.DataPosition(bIdx[0], bIdx[1], bIdx[2])
	pos := pa.Add(pb.Sub(pa).Mul(t))
	ga := b.field.GradientAtDataPoint(a[0], a[1], a[2])
	gb := b.field.GradientAtDataPoint(bIdx[0], bIdx[1], bIdx[2])
	grad := ga.Add(gb.Sub(ga).Mul(t))
	normal := grad.Mul(-1)
	if l := normal.Len(); l > 1e-12 {
		normal = normal.Mul(1 / l)
	}
	id := len(b.mesh.Positions)
	b.mesh.Positions = append(b.mesh.Positions, pos)
	b.mesh.Normals = append(b.mesh.Normals, normal)
	return id
}
