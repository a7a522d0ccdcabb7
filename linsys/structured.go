// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package linsys implements the linear-system core of the solver:
// a structured 7-point stencil representation for full cell-centered
// grids, a compressed row-sparse (CSR) variant for domains where only a
// subset of cells are active (fluid cells), and the solver family
// (Jacobi, Gauss-Seidel red-black, ICCG, multigrid V-cycle) that consumes
// either one. Assembly follows la.Triplet's Init/Put idiom.
package linsys

import "math"

// Shape3 is the (nx,ny,nz) extent of a structured system's unknown grid.
type Shape3 struct{ Nx, Ny, Nz int }

func (s Shape3) size() int { return s.Nx * s.Ny * s.Nz }

func (s Shape3) flat(i, j, k int) int { return i + s.Nx*(j+s.Ny*k) }

func (s Shape3) inRange(i, j, k int) bool {
	return i >= 0 && i < s.Nx && j >= 0 && j < s.Ny && k >= 0 && k < s.Nz
}

// Size returns the total number of cells in the shape.
func (s Shape3) Size() int { return s.size() }

// Flat returns the x-fastest flat index of (i,j,k); callers outside the
// package use this to address StructuredSystem's per-cell slices.
func (s Shape3) Flat(i, j, k int) int { return s.flat(i, j, k) }

// InRange reports whether (i,j,k) is a valid cell index of the shape.
func (s Shape3) InRange(i, j, k int) bool { return s.inRange(i, j, k) }

// StructuredSystem is a 3D cell-centered unknown grid x, a right-hand
// side b of the same shape, and a matrix A whose row at (i,j,k) stores
// {center,+x,+y,+z} coefficients; the negative-direction coefficients
// are implicit by symmetry (A is always SPD for the Poisson systems this
// solver assembles).
type StructuredSystem struct {
	Shape  Shape3
	Center []float64 // [n] diagonal coefficient
	PlusX  []float64 // [n] coefficient linking (i,j,k) to (i+1,j,k); 0 at i=Nx-1
	PlusY  []float64
	PlusZ  []float64
	B      []float64 // [n] right-hand side
	X      []float64 // [n] unknown / initial guess
}

// NewStructuredSystem allocates a zero-filled system over shape.
func NewStructuredSystem(shape Shape3) *StructuredSystem {
	n := shape.size()
	return &StructuredSystem{
		Shape:  shape,
		Center: make([]float64, n),
		PlusX:  make([]float64, n),
		PlusY:  make([]float64, n),
		PlusZ:  make([]float64, n),
		B:      make([]float64, n),
		X:      make([]float64, n),
	}
}

// MulVec computes dst = A*x using the symmetric 7-point stencil.
func (s *StructuredSystem) MulVec(dst, x []float64) {
	sh := s.Shape
	for k := 0; k < sh.Nz; k++ {
		for j := 0; j < sh.Ny; j++ {
			for i := 0; i < sh.Nx; i++ {
				p := sh.flat(i, j, k)
				v := s.Center[p] * x[p]
				if i+1 < sh.Nx {
					v += s.PlusX[p] * x[sh.flat(i+1, j, k)]
				}
				if i-1 >= 0 {
					v += s.PlusX[sh.flat(i-1, j, k)] * x[sh.flat(i-1, j, k)]
				}
				if j+1 < sh.Ny {
					v += s.PlusY[p] * x[sh.flat(i, j+1, k)]
				}
				if j-1 >= 0 {
					v += s.PlusY[sh.flat(i, j-1, k)] * x[sh.flat(i, j-1, k)]
				}
				if k+1 < sh.Nz {
					v += s.PlusZ[p] * x[sh.flat(i, j, k+1)]
				}
				if k-1 >= 0 {
					v += s.PlusZ[sh.flat(i, j, k-1)] * x[sh.flat(i, j, k-1)]
				}
				dst[p] = v
			}
		}
	}
}

// Residual returns r = b - A*x and its L2 norm.
func (s *StructuredSystem) Residual(r []float64) float64 {
	s.MulVec(r, s.X)
	norm := 0.0
	for i := range r {
		r[i] = s.B[i] - r[i]
		norm += r[i] * r[i]
	}
	return sqrt(norm)
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return math.Sqrt(x)
}
