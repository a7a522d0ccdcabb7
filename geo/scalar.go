// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geo

import "github.com/go-gl/mathgl/mgl64"

var cellCenterOffset = mgl64.Vec3{0.5, 0.5, 0.5}
var vertexOffset = mgl64.Vec3{0, 0, 0}

// ScalarGrid is a cell-centered scalar field: data extents (nx,ny,nz),
// sample of index (i,j,k) at origin + ((i+.5)hx,(j+.5)hy,(k+.5)hz).
type ScalarGrid struct{ *offsetGrid }

// NewScalarGrid allocates a cell-centered scalar grid of cfg.Nx x cfg.Ny x
// cfg.Nz cells, all zero-initialized.
func NewScalarGrid(cfg Config) *ScalarGrid {
	return &ScalarGrid{newOffsetGrid(cfg, cfg.Nx, cfg.Ny, cfg.Nz, cellCenterOffset)}
}

// VertexScalarGrid is a vertex-centered scalar field: data extents
// (nx+1,ny+1,nz+1), sample of index (i,j,k) at origin + (i*hx,j*hy,k*hz).
type VertexScalarGrid struct{ *offsetGrid }

// NewVertexScalarGrid allocates a vertex-centered scalar grid.
func NewVertexScalarGrid(cfg Config) *VertexScalarGrid {
	return &VertexScalarGrid{newOffsetGrid(cfg, cfg.Nx+1, cfg.Ny+1, cfg.Nz+1, vertexOffset)}
}
