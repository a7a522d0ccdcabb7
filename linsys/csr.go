// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linsys

import "sort"

// CSRSystem is the compressed variant of a Poisson system restricted to
// a compacted enumeration of active (fluid) cells: row i holds the
// nonzero column indices and coefficients for unknown i, with B/X dense
// vectors over the same enumeration. Assembly follows la.Triplet's
// Init/Put idiom so the same builder shape used to assemble the
// FE Jacobian now assembles the pressure/diffusion Laplacian.
type CSRSystem struct {
	N       int
	RowPtr  []int
	ColIdx  []int
	Values  []float64
	B       []float64
	X       []float64
}

// CSRBuilder accumulates (row,col,val) triples with the same Init/Put
// calling convention as la.Triplet, then compacts them row-major into
// CSR (la.Triplet compacts column-major for the external sparse
// solvers, which is the wrong layout for the row sweeps the IC(0)
// preconditioner does).
type CSRBuilder struct {
	n    int
	rows []int
	cols []int
	vals []float64
}

// NewCSRBuilder starts a builder for an n x n system with an estimated
// maxNnz nonzero entries (duplicate Put calls at the same (row,col)
// accumulate, matching la.Triplet semantics).
func NewCSRBuilder(n, maxNnz int) *CSRBuilder {
	return &CSRBuilder{
		n:    n,
		rows: make([]int, 0, maxNnz),
		cols: make([]int, 0, maxNnz),
		vals: make([]float64, 0, maxNnz),
	}
}

// Put adds val to the (row,col) entry.
func (b *CSRBuilder) Put(row, col int, val float64) {
	b.rows = append(b.rows, row)
	b.cols = append(b.cols, col)
	b.vals = append(b.vals, val)
}

// Build compacts the accumulated triples into a CSRSystem, summing
// duplicate (row,col) contributions and sorting each row's columns.
func (b *CSRBuilder) Build() *CSRSystem {
	type entry struct {
		row, col int
		val      float64
	}
	merged := make(map[[2]int]float64, len(b.rows))
	order := make([][2]int, 0, len(b.rows))
	for i := range b.rows {
		key := [2]int{b.rows[i], b.cols[i]}
		if _, ok := merged[key]; !ok {
			order = append(order, key)
		}
		merged[key] += b.vals[i]
	}
	entries := make([]entry, 0, len(order))
	for _, key := range order {
		entries = append(entries, entry{key[0], key[1], merged[key]})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].row != entries[j].row {
			return entries[i].row < entries[j].row
		}
		return entries[i].col < entries[j].col
	})

	sys := &CSRSystem{
		N:      b.n,
		RowPtr: make([]int, b.n+1),
		ColIdx: make([]int, len(entries)),
		Values: make([]float64, len(entries)),
		B:      make([]float64, b.n),
		X:      make([]float64, b.n),
	}
	for _, e := range entries {
		sys.RowPtr[e.row+1]++
	}
	for i := 0; i < b.n; i++ {
		sys.RowPtr[i+1] += sys.RowPtr[i]
	}
	cursor := append([]int{}, sys.RowPtr[:b.n]...)
	for _, e := range entries {
		slot := cursor[e.row]
		sys.ColIdx[slot] = e.col
		sys.Values[slot] = e.val
		cursor[e.row]++
	}
	return sys
}

// MulVec computes dst = A*x.
func (s *CSRSystem) MulVec(dst, x []float64) {
	for row := 0; row < s.N; row++ {
		sum := 0.0
		for k := s.RowPtr[row]; k < s.RowPtr[row+1]; k++ {
			sum += s.Values[k] * x[s.ColIdx[k]]
		}
		dst[row] = sum
	}
}

// Residual returns r = b - A*x and its L2 norm.
func (s *CSRSystem) Residual(r []float64) float64 {
	s.MulVec(r, s.X)
	norm := 0.0
	for i := range r {
		r[i] = s.B[i] - r[i]
		norm += r[i] * r[i]
	}
	return sqrt(norm)
}

// diagIndex returns the column slot of the diagonal entry in row, or -1.
func (s *CSRSystem) diagIndex(row int) int {
	for k := s.RowPtr[row]; k < s.RowPtr[row+1]; k++ {
		if s.ColIdx[k] == row {
			return k
		}
	}
	return -1
}
