// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package particles

import "github.com/go-gl/mathgl/mgl64"

// ListSearcher is the reference-semantics neighbor searcher: a linear
// scan over every particle. Correct for any size, used as the ground
// truth the other variants are tested against.
type ListSearcher struct {
	positions []mgl64.Vec3
}

var _ Searcher = (*ListSearcher)(nil)

// Build stores the positions slice by reference; radius is unused by
// List since it scans everything regardless.
func (s *ListSearcher) Build(positions []mgl64.Vec3, radius float64) {
	s.positions = positions
}

// ForEachNearbyPoint visits every particle whose distance to origin is
// strictly less than radius.
func (s *ListSearcher) ForEachNearbyPoint(origin mgl64.Vec3, radius float64, f func(id int)) {
	r2 := radius * radius
	for i, p := range s.positions {
		if p.Sub(origin).LenSqr() < r2 {
			f(i)
		}
	}
}
