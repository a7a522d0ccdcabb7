// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package levelset

import (
	"container/heap"
	"math"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

// maxDouble is used as "not yet visited" in fast marching.
const maxDouble = math.MaxFloat64 / 4

// ReinitializeFastSweeping iterates the Godunov upwind eikonal update
// |∇φ|=1 over the grid in all 8 axis-sweep directions, `iterations`
// times, preserving the sign (and, to first order, the location) of the
// zero iso-surface while driving the field toward a true signed-distance
// field. It operates in place.
func ReinitializeFastSweeping(g *geo.ScalarGrid, iterations int) {
	nx, ny, nz := g.Resolution()
	h := g.Spacing()
	sign := make([]float64, nx*ny*nz)
	flat := func(i, j, k int) int { return i + nx*(j+ny*k) }
	g.ForEachDataPointIndex(func(i, j, k int) {
		sign[flat(i, j, k)] = sgn(g.At(i, j, k))
	})

	sweepDirs := [8][3]int{
		{1, 1, 1}, {-1, 1, 1}, {1, -1, 1}, {1, 1, -1},
		{-1, -1, 1}, {-1, 1, -1}, {1, -1, -1}, {-1, -1, -1},
	}

	for it := 0; it < iterations; it++ {
		for _, dir := range sweepDirs {
			sweepOnce(g, sign, dir, nx, ny, nz, h)
		}
	}
}

func sweepOnce(g *geo.ScalarGrid, sign []float64, dir [3]int, nx, ny, nz int, h mgl64.Vec3) {
	flat := func(i, j, k int) int { return i + nx*(j+ny*k) }
	for _, k := range axisRange(nz, dir[2]) {
		for _, j := range axisRange(ny, dir[1]) {
			for _, i := range axisRange(nx, dir[0]) {
				a := boundedNeighborMin(g, i-1, j, k, i+1, j, k, i, nx)
				b := boundedNeighborMin(g, i, j-1, k, i, j+1, k, j, ny)
				c := boundedNeighborMin(g, i, j, k-1, i, j, k+1, k, nz)
				updated := solveEikonal(a, b, c, h.X(), h.Y(), h.Z())
				s := sign[flat(i, j, k)]
				cur := math.Abs(g.At(i, j, k))
				if updated < cur {
					g.Set(i, j, k, s*updated)
				}
			}
		}
	}
}

// boundedNeighborMin returns the smaller |value| of the two axis
// neighbors given by (li,lj,lk) and (hi,hj,hk), skipping whichever falls
// outside [0,axisN) (where mid is the in-range coordinate along that
// axis).
func boundedNeighborMin(g *geo.ScalarGrid, li, lj, lk, hi, hj, hk, mid, axisN int) float64 {
	var a, b float64
	haveA := mid-1 >= 0
	haveB := mid+1 < axisN
	if haveA {
		a = math.Abs(g.At(li, lj, lk))
	}
	if haveB {
		b = math.Abs(g.At(hi, hj, hk))
	}
	switch {
	case haveA && haveB:
		return math.Min(a, b)
	case haveA:
		return a
	case haveB:
		return b
	default:
		return maxDouble
	}
}

// axisCoord returns the first of (i,j,k) that differs from mid, or k when
// none does.
func axisCoord(i, j, k, mid int) int {
	if i != mid {
		return i
	}
	if j != mid {
		return j
	}
	return k
}

func axisRange(n, dir int) []int {
	r := make([]int, n)
	if dir > 0 {
		for i := 0; i < n; i++ {
			r[i] = i
		}
	} else {
		for i := 0; i < n; i++ {
			r[i] = n - 1 - i
		}
	}
	return r
}

// solveEikonal solves the 3D Godunov upwind update for |∇φ|=1 given the
// three minimal axis-neighbor magnitudes a,b,c and spacings hx,hy,hz.
func solveEikonal(a, b, c, hx, hy, hz float64) float64 {
	p := [3]eikonalTerm{{a, hx}, {b, hy}, {c, hz}}
	if p[0].u > p[1].u {
		p[0], p[1] = p[1], p[0]
	}
	if p[1].u > p[2].u {
		p[1], p[2] = p[2], p[1]
	}
	if p[0].u > p[1].u {
		p[0], p[1] = p[1], p[0]
	}

	x := p[0].u + p[0].h
	if x <= p[1].u {
		return x
	}
	x = solveQuadratic(p[0], p[1])
	if x <= p[2].u {
		return x
	}
	return solveQuadratic(p[0], p[1], p[2])
}

type eikonalTerm struct{ u, h float64 }

// solveQuadratic solves the Godunov quadratic for 2 or 3 active axis
// terms: sum_i ((x - u_i)/h_i)^2 = 1, x >= max(u_i).
func solveQuadratic(terms ...eikonalTerm) float64 {
	var a, b, c float64
	for _, t := range terms {
		inv2 := 1 / (t.h * t.h)
		a += inv2
		b += -2 * t.u * inv2
		c += t.u * t.u * inv2
	}
	c -= 1
	disc := b*b - 4*a*c
	if disc < 0 {
		disc = 0
	}
	return (-b + math.Sqrt(disc)) / (2 * a)
}

func sgn(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// --- fast marching ---------------------------------------------------

type fmNode struct {
	i, j, k int
	value   float64
}

type fmHeap []fmNode

func (h fmHeap) Len() int            { return len(h) }
func (h fmHeap) Less(a, b int) bool  { return h[a].value < h[b].value }
func (h fmHeap) Swap(a, b int)       { h[a], h[b] = h[b], h[a] }
func (h *fmHeap) Push(x interface{}) { *h = append(*h, x.(fmNode)) }
func (h *fmHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// ReinitializeFastMarching rebuilds the SDF by marching outward from the
// narrow band adjacent to the zero iso-surface. Unlike fast sweeping it
// converges in a single pass, at the cost of an O(N log N) heap.
func ReinitializeFastMarching(g *geo.ScalarGrid) {
	nx, ny, nz := g.Resolution()
	if nx < 2 || ny < 2 || nz < 2 {
		chk.Panic("fast marching requires at least a 2x2x2 grid")
	}
	h := g.Spacing()
	n := nx * ny * nz
	flat := func(i, j, k int) int { return i + nx*(j+ny*k) }

	sign := make([]float64, n)
	dist := make([]float64, n)
	frozen := make([]bool, n)
	for i := range dist {
		dist[i] = maxDouble
	}
	g.ForEachDataPointIndex(func(i, j, k int) {
		sign[flat(i, j, k)] = sgn(g.At(i, j, k))
	})

	neighbors := [6][3]int{{-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0}, {0, 0, -1}, {0, 0, 1}}
	axisH := func(d [3]int) float64 {
		switch {
		case d[0] != 0:
			return h.X()
		case d[1] != 0:
			return h.Y()
		default:
			return h.Z()
		}
	}

	// seed the narrow band: cells adjacent to a sign change get an exact
	// linear-interface distance from the nearest such crossing.
	var pq fmHeap
	g.ForEachDataPointIndex(func(i, j, k int) {
		phi0 := g.At(i, j, k)
		best := maxDouble
		crossed := false
		for _, d := range neighbors {
			ni, nj, nk := i+d[0], j+d[1], k+d[2]
			if ni < 0 || ni >= nx || nj < 0 || nj >= ny || nk < 0 || nk >= nz {
				continue
			}
			phi1 := g.At(ni, nj, nk)
			if sgn(phi0) != sgn(phi1) {
				crossed = true
				// crossing fraction measured from this sample's end,
				// whichever side of the interface it is on
				frac := edgeCrossing(phi0, phi1)
				if frac <= 0 {
					frac = 1e-6
				}
				dd := frac * axisH(d)
				if dd < best {
					best = dd
				}
			}
		}
		if crossed {
			idx := flat(i, j, k)
			dist[idx] = best
			frozen[idx] = true
			heap.Push(&pq, fmNode{i, j, k, best})
		}
	})

	axisMin := func(i, j, k, axis int) float64 {
		var lo, hi, cur, axisN int
		switch axis {
		case 0:
			lo, hi, cur, axisN = i-1, i+1, i, nx
		case 1:
			lo, hi, cur, axisN = j-1, j+1, j, ny
		default:
			lo, hi, cur, axisN = k-1, k+1, k, nz
		}
		get := func(v int) (float64, bool) {
			if v < 0 || v >= axisN {
				return 0, false
			}
			switch axis {
			case 0:
				return dist[flat(v, j, k)], true
			case 1:
				return dist[flat(i, v, k)], true
			default:
				return dist[flat(i, j, v)], true
			}
		}
		a, okA := get(lo)
		b, okB := get(hi)
		_ = cur
		switch {
		case okA && okB:
			return math.Min(a, b)
		case okA:
			return a
		case okB:
			return b
		default:
			return maxDouble
		}
	}

	for pq.Len() > 0 {
		node := heap.Pop(&pq).(fmNode)
		idx := flat(node.i, node.j, node.k)
		if node.value > dist[idx] {
			continue
		}
		for _, d := range neighbors {
			ni, nj, nk := node.i+d[0], node.j+d[1], node.k+d[2]
			if ni < 0 || ni >= nx || nj < 0 || nj >= ny || nk < 0 || nk >= nz {
				continue
			}
			nidx := flat(ni, nj, nk)
			if frozen[nidx] {
				continue
			}
			val := solveEikonal(
				axisMin(ni, nj, nk, 0),
				axisMin(ni, nj, nk, 1),
				axisMin(ni, nj, nk, 2),
				h.X(), h.Y(), h.Z())
			if val < dist[nidx] {
				dist[nidx] = val
				heap.Push(&pq, fmNode{ni, nj, nk, val})
			}
		}
	}

	g.ForEachDataPointIndex(func(i, j, k int) {
		idx := flat(i, j, k)
		d := dist[idx]
		if d >= maxDouble {
			d = 0 // unreached (degenerate/disconnected grid)
		}
		g.Set(i, j, k, sign[idx]*d)
	})
}
