// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package numerics holds the data-parallel helpers shared by every solver
// stage: a chunked parallel-for over flat ranges and over 3D index
// shapes (the range is split evenly into one contiguous chunk per worker;
// idle workers do not steal work), plus small reduction helpers. No solver code is allowed to reach
// for goroutines/channels directly; everything funnels through here so the
// scheduling policy lives in one place.
package numerics

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Workers caps the number of goroutines used by ParallelFor and
// ParallelForEachIndex. Zero or negative means "use runtime.GOMAXPROCS".
var Workers = 0

func workerCount() int {
	if Workers > 0 {
		return Workers
	}
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	return n
}

// ParallelFor calls body(i) for every i in [lo, hi) using a pool of
// worker goroutines. There is no ordering guarantee between calls; callers
// must partition writes (distinct i => distinct memory) or use per-worker
// accumulators combined after the call returns.
func ParallelFor(lo, hi int, body func(i int)) {
	n := hi - lo
	if n <= 0 {
		return
	}
	workers := workerCount()
	if workers <= 1 || n < 2*workers {
		for i := lo; i < hi; i++ {
			body(i)
		}
		return
	}
	var g errgroup.Group
	chunk := (n + workers - 1) / workers
	for start := lo; start < hi; start += chunk {
		start := start
		end := start + chunk
		if end > hi {
			end = hi
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				body(i)
			}
			return nil
		})
	}
	g.Wait() // body never returns an error; Wait only waits
}

// Shape3 is the (nx,ny,nz) extent of a for_each_data_point_index loop.
type Shape3 struct{ Nx, Ny, Nz int }

// Size returns the total number of indices in the shape.
func (s Shape3) Size() int { return s.Nx * s.Ny * s.Nz }

// Index returns the (i,j,k) triple corresponding to flat index p, under
// x-fastest ordering (the same order the serializer writes).
func (s Shape3) Index(p int) (i, j, k int) {
	i = p % s.Nx
	p /= s.Nx
	j = p % s.Ny
	k = p / s.Ny
	return
}

// Flat returns the x-fastest flat index of (i,j,k).
func (s Shape3) Flat(i, j, k int) int {
	return i + s.Nx*(j+s.Ny*k)
}

// ForEachIndex iterates every (i,j,k) in shape serially, x-fastest.
func ForEachIndex(shape Shape3, body func(i, j, k int)) {
	for k := 0; k < shape.Nz; k++ {
		for j := 0; j < shape.Ny; j++ {
			for i := 0; i < shape.Nx; i++ {
				body(i, j, k)
			}
		}
	}
}

// ParallelForEachIndex iterates every (i,j,k) in shape using the worker
// pool. No ordering guarantee between calls.
func ParallelForEachIndex(shape Shape3, body func(i, j, k int)) {
	n := shape.Size()
	ParallelFor(0, n, func(p int) {
		i, j, k := shape.Index(p)
		body(i, j, k)
	})
}
