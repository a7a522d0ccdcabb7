// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// gofluid runs one of the built-in demo scenes for a number of frames
// and writes per-frame surface meshes (Wavefront OBJ) and fluid SDF
// snapshots (binary grid records) into an output directory.
package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/rnd"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/geo"
	"github.com/cpmech/gofluid/hybrid"
	"github.com/cpmech/gofluid/mc"
	"github.com/cpmech/gofluid/particles"
	"github.com/cpmech/gofluid/scene"
	"github.com/cpmech/gofluid/serialize"
)

func main() {

	// input data
	nframes := flag.Int("nframes", 60, "number of frames to simulate")
	outdir := flag.String("outdir", "out", "output directory for meshes and grid snapshots")
	sceneName := flag.String("scene", "dambreak", "built-in scene: dambreak | droplet")
	fps := flag.Float64("fps", 60, "frames per second")
	res := flag.Int("res", 64, "grid resolution per axis")
	flag.Parse()

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := os.MkdirAll(*outdir, 0755); err != nil {
		chk.Panic("cannot create output directory %q: %v", *outdir, err)
	}
	rnd.Init(0)

	driver, sys := buildScene(*sceneName, *res)

	io.Pf("\n=== gofluid: scene=%q frames=%d res=%d out=%q ===\n", *sceneName, *nframes, *res, *outdir)

	frameDt := 1.0 / *fps
	for frame := 0; frame < *nframes; frame++ {
		remaining := frameDt
		for remaining > 1e-12 {
			dt := driver.CFLTimeStep()
			if dt > remaining {
				dt = remaining
			}
			driver.Step(dt)
			remaining -= dt
		}
		if st := driver.LastStatus(); !st.Converged {
			io.Pfyel("warning: frame %d pressure solve hit iteration cap (residual=%g)\n", frame, st.Residual)
		}

		sdf := driver.FluidSDF()
		mesh := mc.Extract(sdf, mc.Config{})
		writeFrame(*outdir, frame, sdf, mesh)
		io.Pf("frame %4d: particles=%d triangles=%d\n", frame, sys.N(), len(mesh.Indices)/3)
	}

	io.Pfgreen("done: %d frames written to %q\n", *nframes, *outdir)
}

// buildScene assembles one of the built-in demo scenes: a dam-break
// water column, or a falling droplet over a pool.
func buildScene(name string, res int) (*hybrid.Driver, *particles.System) {
	h := 1.0 / float64(res)
	gridCfg := geo.Config{Nx: res, Ny: res, Nz: res, H: mgl64.Vec3{h, h, h}}
	spacing := 0.5 * h

	sys := particles.NewSystem(particles.Config{
		Mass:         1.0,
		KernelRadius: 2 * h,
		MaxParticles: 4 * res * res * res,
	})

	cfg := hybrid.Config{
		Scheme:          hybrid.FLIP,
		FlipBlend:       0.05,
		Gravity:         mgl64.Vec3{0, -9.8, 0},
		Density:         1000,
		CFLFactor:       0.5,
		SDFSearchRadius: 2 * h,
		Searcher:        particles.NewParallelHashGridSearcher([3]int{res, res, res}),
	}
	d := hybrid.NewDriver(gridCfg, sys, cfg)

	switch name {
	case "dambreak":
		column := scene.NewVolumeEmitter(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{0.2, 0.8, 1}, spacing, mgl64.Vec3{})
		column.Update(0, sys)
	case "droplet":
		pool := scene.NewVolumeEmitter(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0.25, 1}, spacing, mgl64.Vec3{})
		pool.Update(0, sys)
		drop := scene.NewSphereCollider(mgl64.Vec3{0.5, 0.7, 0.5}, 0.1)
		e := scene.NewSurfaceParticleEmitter(drop, mgl64.Vec3{0.3, 0.5, 0.3}, mgl64.Vec3{0.7, 0.9, 0.7}, 2000, 0)
		e.Update(0, sys)
	default:
		chk.Panic("unknown scene %q (want dambreak or droplet)", name)
	}

	floor := scene.NewPlaneCollider(mgl64.Vec3{0, 0.5 * h, 0}, mgl64.Vec3{0, 1, 0})
	floor.FrictionCoeff = 0.1
	d.SetCollider(floor)
	return d, sys
}

// writeFrame persists one frame: the fluid SDF as a binary grid record
// and the extracted surface as a Wavefront OBJ.
func writeFrame(outdir string, frame int, sdf *geo.ScalarGrid, mesh *mc.Mesh) {
	gridPath := filepath.Join(outdir, io.Sf("fluid_%04d.bin", frame))
	gf, err := os.Create(gridPath)
	if err != nil {
		chk.Panic("cannot create %q: %v", gridPath, err)
	}
	defer gf.Close()
	if _, err := serialize.WriteScalarGrid(gf, sdf); err != nil {
		chk.Panic("cannot write grid snapshot: %v", err)
	}

	var buf bytes.Buffer
	for _, p := range mesh.Positions {
		io.Ff(&buf, "v %g %g %g\n", p.X(), p.Y(), p.Z())
	}
	for _, n := range mesh.Normals {
		io.Ff(&buf, "vn %g %g %g\n", n.X(), n.Y(), n.Z())
	}
	for t := 0; t+2 < len(mesh.Indices); t += 3 {
		a, b, c := mesh.Indices[t]+1, mesh.Indices[t+1]+1, mesh.Indices[t+2]+1
		io.Ff(&buf, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	io.WriteFileV(filepath.Join(outdir, io.Sf("surface_%04d.obj", frame)), &buf)
}
