// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package particles

import "github.com/go-gl/mathgl/mgl64"

// Searcher maps a query point to the particle ids within a radius. All
// variants expose identical behavior: ForEachNearbyPoint must call f
// exactly once for every particle within radius, in unspecified order.
// Build must run to completion before any query.
// Queries with a radius larger than the one passed to Build are
// undefined.
type Searcher interface {
	Build(positions []mgl64.Vec3, radius float64)
	ForEachNearbyPoint(origin mgl64.Vec3, radius float64, f func(id int))
}

// BuildNeighborLists builds s over sys's current positions and collects,
// for every particle, the ids of its neighbors within radius (excluding
// itself). The lists snapshot the current positions; they are stale as
// soon as positions mutate, exactly like the searcher itself.
func BuildNeighborLists(sys *System, s Searcher, radius float64) [][]int {
	s.Build(sys.Positions, radius)
	lists := make([][]int, sys.N())
	for i := range lists {
		origin := sys.Positions[i]
		s.ForEachNearbyPoint(origin, radius, func(id int) {
			if id != i {
				lists[i] = append(lists[i], id)
			}
		})
	}
	return lists
}
