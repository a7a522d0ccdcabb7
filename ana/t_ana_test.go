// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ana

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_colpresfluid01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("colpresfluid01. pressure along hydrostatic column")

	R0 := 1000.0
	p0 := 0.0
	C := 1e-6
	H := 10.0
	g := 9.8

	var col ColumnFluidPressure
	col.Init(R0, p0, C, g, H, true)

	tol := 1e-6
	np := 11
	dz := H / float64(np-1)
	for i := 0; i < np; i++ {
		z := H - float64(i)*dz
		pAna, _ := col.Calc(z)
		pNum, _ := col.CalcNum(z)
		errp := math.Abs(pAna - pNum)
		io.Pf("%8.4f%14.6f%14.6f%23.15e\n", z, pAna, pNum, errp)
		chk.AnaNum(tst, "p", tol, pAna, pNum, false)
	}

	// incompressible limit: p = rho*g*depth exactly
	col.Init(R0, p0, 0, g, H, false)
	p, R := col.Calc(0)
	chk.Float64(tst, "p bottom", 1e-12, p, R0*g*H)
	chk.Float64(tst, "R bottom", 1e-12, R, R0)
}

func Test_cavity01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("cavity01. Ghia Re=100 table sanity")

	var gb GhiaCavityRe100
	gb.Init()

	chk.IntAssert(len(gb.Yu), len(gb.U))
	chk.IntAssert(len(gb.Xv), len(gb.V))

	// endpoints: no-slip floor, unit lid
	chk.Float64(tst, "u(0.5,0)", 1e-15, gb.InterpU(0), 0)
	chk.Float64(tst, "u(0.5,1)", 1e-15, gb.InterpU(1), 1)

	// interpolation hits the tabulated stations exactly
	for i, y := range gb.Yu {
		chk.Float64(tst, "u station", 1e-15, gb.InterpU(y), gb.U[i])
	}
}

func Test_dambreak01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dambreak01. Martin-Moyce front curve")

	var db DamBreakFront
	db.Init()

	// the front only moves forward
	for i := 1; i < len(db.T); i++ {
		if db.Z[i] <= db.Z[i-1] {
			tst.Errorf("front position not monotonic at station %d", i)
		}
	}
	chk.Float64(tst, "Z(0)", 1e-15, db.Front(0), 1.0)

	T, Z := db.Nondim(1.0, 0.4, 0.2, 9.8)
	chk.Float64(tst, "T", 1e-12, T, math.Sqrt(2*9.8/0.2))
	chk.Float64(tst, "Z", 1e-12, Z, 2.0)
}
