// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package particles

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// HashGridSearcher is a uniform voxel grid with side 2*radius; each cell
// holds the ids of the particles that hash into it. Same binning idea
// as gm.Bins, generalized
// here to a 3D modular hash so the table stays a fixed size regardless of
// how far particles drift from the origin.
type HashGridSearcher struct {
	positions  []mgl64.Vec3
	cellSize   float64
	resolution [3]int
	buckets    map[int64][]int
}

var _ Searcher = (*HashGridSearcher)(nil)

// NewHashGridSearcher preallocates a searcher targeting the given grid
// resolution; Build still determines the actual cell size from radius.
func NewHashGridSearcher(resolution [3]int) *HashGridSearcher {
	return &HashGridSearcher{resolution: resolution}
}

// Resolution returns the searcher's fixed bucket-grid resolution, used by
// serialize to re-hydrate an equivalent searcher.
func (s *HashGridSearcher) Resolution() [3]int { return s.resolution }

// Build buckets every particle by floor(p/cellSize) mod resolution, with
// non-negative wrap; cellSize is 2*radius so a query touches at most 27
// buckets.
func (s *HashGridSearcher) Build(positions []mgl64.Vec3, radius float64) {
	s.positions = positions
	s.cellSize = 2 * radius
	s.buckets = make(map[int64][]int, len(positions))
	for i, p := range positions {
		key := s.hashKey(p)
		s.buckets[key] = append(s.buckets[key], i)
	}
}

func (s *HashGridSearcher) cellIndex(p mgl64.Vec3) [3]int {
	return [3]int{
		wrapMod(int(math.Floor(p.X()/s.cellSize)), s.resolution[0]),
		wrapMod(int(math.Floor(p.Y()/s.cellSize)), s.resolution[1]),
		wrapMod(int(math.Floor(p.Z()/s.cellSize)), s.resolution[2]),
	}
}

func (s *HashGridSearcher) hashKey(p mgl64.Vec3) int64 {
	c := s.cellIndex(p)
	return packKey(c, s.resolution)
}

func packKey(c [3]int, res [3]int) int64 {
	return int64(c[0]) + int64(res[0])*(int64(c[1])+int64(res[1])*int64(c[2]))
}

func wrapMod(i, n int) int {
	if n <= 0 {
		return 0
	}
	m := i % n
	if m < 0 {
		m += n
	}
	return m
}

// ForEachNearbyPoint looks up the 27 buckets around origin's cell and
// filters by the exact radius. The modular wrap can alias several of the
// 27 offsets onto one bucket when a resolution axis is below 3, so
// already-visited keys are skipped to keep the exactly-once contract.
func (s *HashGridSearcher) ForEachNearbyPoint(origin mgl64.Vec3, radius float64, f func(id int)) {
	r2 := radius * radius
	c := s.cellIndex(origin)
	var visited [27]int64
	nVisited := 0
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				cell := [3]int{
					wrapMod(c[0]+dx, s.resolution[0]),
					wrapMod(c[1]+dy, s.resolution[1]),
					wrapMod(c[2]+dz, s.resolution[2]),
				}
				key := packKey(cell, s.resolution)
				if seenKey(visited[:nVisited], key) {
					continue
				}
				visited[nVisited] = key
				nVisited++
				for _, id := range s.buckets[key] {
					if s.positions[id].Sub(origin).LenSqr() < r2 {
						f(id)
					}
				}
			}
		}
	}
}

func seenKey(keys []int64, key int64) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
