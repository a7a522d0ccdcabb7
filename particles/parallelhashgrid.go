// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package particles

import (
	"math"
	"sync/atomic"

	"github.com/cpmech/gofluid/numerics"
	"github.com/go-gl/mathgl/mgl64"
)

// ParallelHashGridSearcher uses the same modular hash as HashGridSearcher
// but builds its bucket table with a bucket-count pass, a prefix sum, and
// a single scatter into a contiguous id array, so Build is safe to run
// over large particle counts with numerics.ParallelFor instead of
// growing per-bucket slices one append at a time.
type ParallelHashGridSearcher struct {
	positions  []mgl64.Vec3
	cellSize   float64
	resolution [3]int

	startOffset []int32 // [numCells+1] prefix-summed bucket starts
	ids         []int32 // [N] contiguous particle ids, grouped by bucket
}

var _ Searcher = (*ParallelHashGridSearcher)(nil)

// NewParallelHashGridSearcher preallocates a searcher for the given grid
// resolution.
func NewParallelHashGridSearcher(resolution [3]int) *ParallelHashGridSearcher {
	return &ParallelHashGridSearcher{resolution: resolution}
}

// Resolution returns the searcher's fixed bucket-grid resolution, used by
// serialize to re-hydrate an equivalent searcher.
func (s *ParallelHashGridSearcher) Resolution() [3]int { return s.resolution }

func (s *ParallelHashGridSearcher) numCells() int {
	return s.resolution[0] * s.resolution[1] * s.resolution[2]
}

func (s *ParallelHashGridSearcher) cellIndex(p mgl64.Vec3) [3]int {
	return [3]int{
		wrapMod(int(math.Floor(p.X()/s.cellSize)), s.resolution[0]),
		wrapMod(int(math.Floor(p.Y()/s.cellSize)), s.resolution[1]),
		wrapMod(int(math.Floor(p.Z()/s.cellSize)), s.resolution[2]),
	}
}

func (s *ParallelHashGridSearcher) flatCell(p mgl64.Vec3) int {
	c := s.cellIndex(p)
	return c[0] + s.resolution[0]*(c[1]+s.resolution[1]*c[2])
}

// Build runs: (1) a parallel bucket-count pass with atomic increments,
// (2) a serial prefix sum over bucket counts, (3) a parallel scatter of
// particle ids into their bucket's slot using atomic per-bucket cursors.
func (s *ParallelHashGridSearcher) Build(positions []mgl64.Vec3, radius float64) {
	s.positions = positions
	s.cellSize = 2 * radius
	n := s.numCells()

	counts := make([]int32, n)
	numerics.ParallelFor(0, len(positions), func(i int) {
		cell := s.flatCell(positions[i])
		atomic.AddInt32(&counts[cell], 1)
	})

	offsets := make([]int32, n+1)
	for i := 0; i < n; i++ {
		offsets[i+1] = offsets[i] + counts[i]
	}
	s.startOffset = offsets

	cursors := make([]int32, n)
	copy(cursors, offsets[:n])
	ids := make([]int32, len(positions))
	numerics.ParallelFor(0, len(positions), func(i int) {
		cell := s.flatCell(positions[i])
		slot := atomic.AddInt32(&cursors[cell], 1) - 1
		ids[slot] = int32(i)
	})
	s.ids = ids
}

// ForEachNearbyPoint looks up at most 27 buckets via startOffset/ids,
// skipping buckets the modular wrap aliases (same dedup rule as
// HashGridSearcher).
func (s *ParallelHashGridSearcher) ForEachNearbyPoint(origin mgl64.Vec3, radius float64, f func(id int)) {
	r2 := radius * radius
	c := s.cellIndex(origin)
	var visited [27]int64
	nVisited := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				cx := wrapMod(c[0]+dx, s.resolution[0])
				cy := wrapMod(c[1]+dy, s.resolution[1])
				cz := wrapMod(c[2]+dz, s.resolution[2])
				cell := cx + s.resolution[0]*(cy+s.resolution[1]*cz)
				if seenKey(visited[:nVisited], int64(cell)) {
					continue
				}
				visited[nVisited] = int64(cell)
				nVisited++
				start, end := s.startOffset[cell], s.startOffset[cell+1]
				for _, id := range s.ids[start:end] {
					if s.positions[id].Sub(origin).LenSqr() < r2 {
						f(int(id))
					}
				}
			}
		}
	}
}
