// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mc

// cubeCorner lists the (dx,dy,dz) offsets of a cube's 8 corners.
var cubeCorner = [8][3]int{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// tetraDecomposition splits each cube into 6 tetrahedra sharing the main
// diagonal (corner 0 to corner 6), each a 4-tuple of cube-corner
// indices; decomposing into
// tetrahedra keeps the per-cell case table to 16 entries instead of the
// ambiguity-prone 256-entry cube table, at the cost of a finer
// triangulation — an accepted, equivalent marching-cubes variant).
var tetraDecomposition = [6][4]int{
	{0, 1, 2, 6},
	{0, 2, 3, 6},
	{0, 3, 7, 6},
	{0, 7, 4, 6},
	{0, 4, 5, 6},
	{0, 5, 1, 6},
}

// tetraEdge lists the 6 local-vertex pairs of a tetrahedron.
var tetraEdge = [6][2]int{
	{0, 1}, {1, 2}, {2, 0},
	{0, 3}, {1, 3}, {2, 3},
}

// tetraCaseTable[mask] lists, for each of the 16 inside/outside
// combinations of a tetrahedron's 4 corners (bit i set means corner i is
// inside), the tetraEdge indices forming a triangle (3 edges) or a quad
// (4 edges, fan-split into two triangles sharing the first listed
// edge's vertex), terminated by -1. mask 0 and 15 (all in/all out) are
// empty.
var tetraCaseTable = [16][7]int{
	{-1},             // 0000
	{0, 2, 3, -1},    // 0001 (v0 in)
	{0, 1, 4, -1},    // 0010 (v1 in)
	{1, 2, 3, 4, -1}, // 0011 (v0,v1 in)
	{1, 2, 5, -1},    // 0100 (v2 in)
	{0, 1, 5, 3, -1}, // 0101 (v0,v2 in)
	{0, 2, 5, 4, -1}, // 0110 (v1,v2 in)
	{3, 4, 5, -1},    // 0111 (v0,v1,v2 in)
	{3, 4, 5, -1},    // 1000 (v3 in)
	{0, 2, 5, 4, -1}, // 1001 (v0,v3 in)
	{0, 1, 5, 3, -1}, // 1010 (v1,v3 in)
	{1, 2, 5, -1},    // 1011 (v0,v1,v3 in)
	{1, 2, 3, 4, -1}, // 1100 (v2,v3 in)
	{0, 1, 4, -1},    // 1101 (v0,v2,v3 in)
	{0, 2, 3, -1},    // 1110 (v1,v2,v3 in)
	{-1},             // 1111
}

// squareCorner and squareEdge are the 2D marching-squares analogues used
// by boundary-face closure: 4 corners, 4 edges, with the 16-case
// capCaseTable keeping the same small-table approach as the 3D case.
var squareCorner = [4][2]int{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
var squareEdge = [4][2]int{{0, 1}, {1, 2}, {2, 3}, {3, 0}}

// capCaseTable[mask] lists, for each inside/outside combination of a
// square's 4 corners (bit c set means corner c is inside), the polygon
// covering the inside region in perimeter order, terminated by -1.
// Tokens 0-3 are the square's corners, tokens 4-7 are the crossing on
// squareEdge[token-4]. Fan-triangulating the polygon from its first
// vertex caps the inside area exactly; the two saddle cases (5, 10)
// resolve as connected, matching the tetrahedra decomposition's
// connected treatment of the 3D diagonal.
var capCaseTable = [16][7]int{
	{-1},                   // 0000
	{0, 4, 7, -1},          // 0001 (c0)
	{4, 1, 5, -1},          // 0010 (c1)
	{0, 1, 5, 7, -1},       // 0011 (c0,c1)
	{5, 2, 6, -1},          // 0100 (c2)
	{0, 4, 5, 2, 6, 7, -1}, // 0101 (c0,c2) saddle
	{4, 1, 2, 6, -1},       // 0110 (c1,c2)
	{0, 1, 2, 6, 7, -1},    // 0111 (c0,c1,c2)
	{6, 3, 7, -1},          // 1000 (c3)
	{0, 4, 6, 3, -1},       // 1001 (c0,c3)
	{4, 1, 5, 6, 3, 7, -1}, // 1010 (c1,c3) saddle
	{0, 1, 5, 6, 3, -1},    // 1011 (c0,c1,c3)
	{5, 2, 3, 7, -1},       // 1100 (c2,c3)
	{0, 4, 5, 2, 3, -1},    // 1101 (c0,c2,c3)
	{4, 1, 2, 3, 7, -1},    // 1110 (c1,c2,c3)
	{0, 1, 2, 3, -1},       // 1111
}
