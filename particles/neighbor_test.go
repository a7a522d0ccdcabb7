package particles

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"
)

func randomPoints(n int, seed int64) []mgl64.Vec3 {
	rng := rand.New(rand.NewSource(seed))
	pts := make([]mgl64.Vec3, n)
	for i := range pts {
		pts[i] = mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
	}
	return pts
}

func collect(s Searcher, origin mgl64.Vec3, radius float64) []int {
	var ids []int
	s.ForEachNearbyPoint(origin, radius, func(id int) { ids = append(ids, id) })
	sort.Ints(ids)
	return ids
}

// Test_neighbor_searchers_equivalent: random N=10^4 points, 100 random
// queries at radius 0.05, every searcher variant must agree with the
// List reference as a set.
func Test_neighbor_searchers_equivalent(tst *testing.T) {
	chk.PrintTitle("neighbor_searchers_equivalent")
	const n = 10000
	const radius = 0.05
	pts := randomPoints(n, 7)

	list := &ListSearcher{}
	list.Build(pts, radius)

	kd := &KdTreeSearcher{}
	kd.Build(pts, radius)

	res := [3]int{20, 20, 20}
	hg := NewHashGridSearcher(res)
	hg.Build(pts, radius)

	phg := NewParallelHashGridSearcher(res)
	phg.Build(pts, radius)

	rng := rand.New(rand.NewSource(99))
	for q := 0; q < 100; q++ {
		origin := mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
		want := collect(list, origin, radius)
		for name, s := range map[string]Searcher{"kdtree": kd, "hashgrid": hg, "parallelhashgrid": phg} {
			got := collect(s, origin, radius)
			if !equalInts(want, got) {
				tst.Fatalf("%s disagrees with list at query %d: want %d ids, got %d ids", name, q, len(want), len(got))
			}
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func Test_system_add_remove(tst *testing.T) {
	chk.PrintTitle("system_add_remove")
	sys := NewSystem(Config{Mass: 1, KernelRadius: 0.1, MaxParticles: 3})
	sys.AddParticle(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{})
	sys.AddParticle(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{})
	sys.AddParticle(mgl64.Vec3{2, 0, 0}, mgl64.Vec3{})
	if sys.AddParticle(mgl64.Vec3{3, 0, 0}, mgl64.Vec3{}) {
		tst.Fatal("expected capacity cap to silently reject the 4th particle")
	}
	if sys.N() != 3 {
		tst.Fatalf("expected 3 particles, got %d", sys.N())
	}
	sys.RemoveByPredicate(func(i int) bool { return sys.Positions[i].X() < 1.5 })
	if sys.N() != 2 {
		tst.Fatalf("expected 2 particles after removal, got %d", sys.N())
	}
}

func Test_build_neighbor_lists_excludes_self(tst *testing.T) {
	chk.PrintTitle("build_neighbor_lists_excludes_self")
	sys := NewSystem(Config{Mass: 1, KernelRadius: 0.1})
	sys.AddParticle(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{})
	sys.AddParticle(mgl64.Vec3{0.05, 0, 0}, mgl64.Vec3{})
	sys.AddParticle(mgl64.Vec3{0.5, 0, 0}, mgl64.Vec3{})

	lists := BuildNeighborLists(sys, &ListSearcher{}, 0.1)
	if len(lists) != 3 {
		tst.Fatalf("expected 3 lists, got %d", len(lists))
	}
	if !equalInts(lists[0], []int{1}) {
		tst.Fatalf("particle 0 neighbors: got %v, want [1]", lists[0])
	}
	if !equalInts(lists[1], []int{0}) {
		tst.Fatalf("particle 1 neighbors: got %v, want [0]", lists[1])
	}
	if len(lists[2]) != 0 {
		tst.Fatalf("particle 2 should be isolated, got %v", lists[2])
	}
}
