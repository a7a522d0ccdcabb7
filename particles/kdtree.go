// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package particles

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// kdLeafThreshold bounds the size of a leaf node, below which the
// recursive split stops and the leaf is scanned linearly.
const kdLeafThreshold = 8

type kdNode struct {
	// leaf
	ids []int

	// internal
	axis  int
	split float64
	left  *kdNode
	right *kdNode
}

// KdTreeSearcher is a median-split, longest-axis kd-tree with a
// small-leaf linear-scan threshold and a recursive bounded-radius query.
type KdTreeSearcher struct {
	positions []mgl64.Vec3
	root      *kdNode
}

var _ Searcher = (*KdTreeSearcher)(nil)

// Build constructs the tree over the given positions; radius is not
// needed by the kd-tree's structure (only by its queries).
func (s *KdTreeSearcher) Build(positions []mgl64.Vec3, radius float64) {
	s.positions = positions
	ids := make([]int, len(positions))
	for i := range ids {
		ids[i] = i
	}
	s.root = s.build(ids)
}

func (s *KdTreeSearcher) build(ids []int) *kdNode {
	if len(ids) <= kdLeafThreshold {
		return &kdNode{ids: ids}
	}
	axis := s.longestAxis(ids)
	sort.Slice(ids, func(a, b int) bool {
		return s.positions[ids[a]][axis] < s.positions[ids[b]][axis]
	})
	mid := len(ids) / 2
	split := s.positions[ids[mid]][axis]
	return &kdNode{
		axis:  axis,
		split: split,
		left:  s.build(append([]int{}, ids[:mid]...)),
		right: s.build(append([]int{}, ids[mid:]...)),
	}
}

func (s *KdTreeSearcher) longestAxis(ids []int) int {
	min := s.positions[ids[0]]
	max := s.positions[ids[0]]
	for _, id := range ids[1:] {
		p := s.positions[id]
		for a := 0; a < 3; a++ {
			if p[a] < min[a] {
				min[a] = p[a]
			}
			if p[a] > max[a] {
				max[a] = p[a]
			}
		}
	}
	extent := max.Sub(min)
	axis := 0
	if extent.Y() > extent[axis] {
		axis = 1
	}
	if extent.Z() > extent[axis] {
		axis = 2
	}
	return axis
}

// ForEachNearbyPoint runs a recursive bounded search, pruning subtrees
// whose splitting plane is farther than radius from origin.
func (s *KdTreeSearcher) ForEachNearbyPoint(origin mgl64.Vec3, radius float64, f func(id int)) {
	if s.root == nil {
		return
	}
	r2 := radius * radius
	s.query(s.root, origin, radius, r2, f)
}

func (s *KdTreeSearcher) query(n *kdNode, origin mgl64.Vec3, radius, r2 float64, f func(id int)) {
	if n.ids != nil {
		for _, id := range n.ids {
			if s.positions[id].Sub(origin).LenSqr() < r2 {
				f(id)
			}
		}
		return
	}
	d := origin[n.axis] - n.split
	if d <= radius {
		s.query(n.left, origin, radius, r2, f)
	}
	if -d <= radius {
		s.query(n.right, origin, radius, r2, f)
	}
}
