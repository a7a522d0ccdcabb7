package mc

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/cpmech/gofluid/geo"
)

// sphereGrid fills a vertex-centered grid with the SDF of a sphere of
// radius r centered at the domain's midpoint.
func sphereGrid(n int, h float64, r float64) *geo.VertexScalarGrid {
	g := geo.NewVertexScalarGrid(geo.Config{Nx: n, Ny: n, Nz: n, H: mgl64.Vec3{h, h, h}})
	nx, ny, nz := g.Resolution()
	center := mgl64.Vec3{float64(nx-1) * h / 2, float64(ny-1) * h / 2, float64(nz-1) * h / 2}
	g.ForEachDataPointIndex(func(i, j, k int) {
		p := g.DataPosition(i, j, k)
		g.Set(i, j, k, p.Sub(center).Len()-r)
	})
	return g
}

func Test_extract_sphere_area_converges(tst *testing.T) {
	chk.PrintTitle("extract_sphere_area_converges")
	const r = 0.3
	n, h := 64, 1.0/64.0
	g := sphereGrid(n+1, h, r)
	mesh := Extract(g, Config{IsoValue: 0})
	area := mesh.Area()
	want := 4 * math.Pi * r * r
	if area < 0.97*want || area > 1.03*want {
		tst.Fatalf("sphere mesh area = %v, want within 3%% of %v", area, want)
	}
}

func Test_extract_empty_field_produces_no_triangles(tst *testing.T) {
	chk.PrintTitle("extract_empty_field_produces_no_triangles")
	g := geo.NewVertexScalarGrid(geo.Config{Nx: 4, Ny: 4, Nz: 4, H: mgl64.Vec3{0.1, 0.1, 0.1}})
	g.Fill(1) // everywhere outside (phi>0)
	mesh := Extract(g, Config{IsoValue: 0})
	if len(mesh.Indices) != 0 {
		tst.Fatalf("expected no triangles for an all-outside field, got %d indices", len(mesh.Indices))
	}
}

func Test_extract_boundary_closure_caps_a_half_filled_slab(tst *testing.T) {
	chk.PrintTitle("extract_boundary_closure_caps_a_half_filled_slab")
	fill := func() *geo.VertexScalarGrid {
		g := geo.NewVertexScalarGrid(geo.Config{Nx: 5, Ny: 5, Nz: 5, H: mgl64.Vec3{0.2, 0.2, 0.2}})
		// inside (phi<=0) for the lower half in z, outside above; the
		// z=0 domain face is fully submerged
		g.ForEachDataPointIndex(func(i, j, k int) {
			g.Set(i, j, k, float64(k)-2)
		})
		return g
	}

	open := Extract(fill(), Config{IsoValue: 0})
	if len(open.Indices) == 0 {
		tst.Fatalf("expected interior slab triangles")
	}

	var cfg Config
	cfg.IsoValue = 0
	cfg.CloseBoundary[FaceZMinus] = true
	cfg.ConnectBoundary[FaceZMinus] = true
	closed := Extract(fill(), cfg)

	// the cap must cover the fully-submerged z=0 face exactly: the
	// domain cross-section is 1x1, so closure adds area 1
	capArea := closed.Area() - open.Area()
	chk.Float64(tst, "cap area", 1e-9, capArea, 1.0)
}
