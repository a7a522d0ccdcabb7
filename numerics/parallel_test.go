package numerics

import (
	"sync/atomic"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_parallel_for_covers_range_exactly_once(tst *testing.T) {
	chk.PrintTitle("parallel_for_covers_range_exactly_once")

	n := 10000
	hits := make([]int32, n)
	ParallelFor(0, n, func(i int) {
		atomic.AddInt32(&hits[i], 1)
	})
	for i, h := range hits {
		if h != 1 {
			tst.Fatalf("index %d visited %d times", i, h)
		}
	}
}

func Test_shape3_flat_index_roundtrip(tst *testing.T) {
	chk.PrintTitle("shape3_flat_index_roundtrip")

	s := Shape3{Nx: 5, Ny: 7, Nz: 3}
	for p := 0; p < s.Size(); p++ {
		i, j, k := s.Index(p)
		chk.IntAssert(s.Flat(i, j, k), p)
	}
}

func Test_parallel_for_each_index_matches_serial(tst *testing.T) {
	chk.PrintTitle("parallel_for_each_index_matches_serial")

	s := Shape3{Nx: 8, Ny: 8, Nz: 8}
	serial := make([]int32, s.Size())
	parallel := make([]int32, s.Size())
	ForEachIndex(s, func(i, j, k int) {
		serial[s.Flat(i, j, k)]++
	})
	ParallelForEachIndex(s, func(i, j, k int) {
		atomic.AddInt32(&parallel[s.Flat(i, j, k)], 1)
	})
	for p := range serial {
		chk.IntAssert(int(parallel[p]), int(serial[p]))
	}
}

func Test_cfl_time_step(tst *testing.T) {
	chk.PrintTitle("cfl_time_step")

	chk.Float64(tst, "dt", 1e-12, CFLTimeStep(0.5, 0.1, 1.0), 0.05/(1.0+1e-12))
	if dt := CFLTimeStep(0.5, 0.1, 0); dt <= 0 {
		tst.Errorf("at-rest flow must still give a positive dt, got %v", dt)
	}
	chk.Float64(tst, "max abs", 1e-15, MaxAbs([]float64{-3, 2, 0.5}), 3)
}
