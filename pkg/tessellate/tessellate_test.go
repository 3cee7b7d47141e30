package tessellate_test

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/chazu/polycut/pkg/kernel"
	"github.com/chazu/polycut/pkg/kernel/exact"
	"github.com/chazu/polycut/pkg/kernel/sdfx"
	"github.com/chazu/polycut/pkg/planeset"
	"github.com/chazu/polycut/pkg/tessellate"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// newKernel returns a fresh exact kernel for testing.
func newKernel() kernel.Kernel {
	return exact.New(nil)
}

// makeBox creates a solid for the axis-aligned box [lo, hi].
func makeBox(name string, lo, hi v3.Vec, clip ...string) *planeset.Solid {
	return &planeset.Solid{
		Name: name,
		Clip: clip,
		Planes: []geom.Plane{
			{Normal: v3.Vec{X: 1}, Dist: hi.X},
			{Normal: v3.Vec{X: -1}, Dist: -lo.X},
			{Normal: v3.Vec{Y: 1}, Dist: hi.Y},
			{Normal: v3.Vec{Y: -1}, Dist: -lo.Y},
			{Normal: v3.Vec{Z: 1}, Dist: hi.Z},
			{Normal: v3.Vec{Z: -1}, Dist: -lo.Z},
		},
	}
}

func centroid(m *kernel.Mesh) v3.Vec {
	var c v3.Vec
	n := m.VertexCount()
	for i := 0; i < n; i++ {
		c.X += float64(m.Vertices[i*3])
		c.Y += float64(m.Vertices[i*3+1])
		c.Z += float64(m.Vertices[i*3+2])
	}
	return c.DivScalar(float64(n))
}

func TestSingleBox(t *testing.T) {
	k := newKernel()
	s := planeset.New()
	s.Add(makeBox("shelf", v3.Vec{}, v3.Vec{X: 600, Y: 300, Z: 18}))

	meshes, err := tessellate.Tessellate(s, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}

	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}
	if m.PartName != "shelf" {
		t.Errorf("expected PartName %q, got %q", "shelf", m.PartName)
	}
	if m.TriangleCount() != 12 {
		t.Errorf("box should have 12 triangles, got %d", m.TriangleCount())
	}
	if v := m.Volume(); math.Abs(v-600*300*18)/(600*300*18) > 1e-6 {
		t.Errorf("volume = %f, want %d", v, 600*300*18)
	}
}

func TestOrderPreserved(t *testing.T) {
	k := newKernel()
	s := planeset.New()
	for _, name := range []string{"side-panel", "top-panel", "back"} {
		s.Add(makeBox(name, v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}))
	}

	meshes, err := tessellate.Tessellate(s, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 3 {
		t.Fatalf("expected 3 meshes, got %d", len(meshes))
	}
	for i, want := range []string{"side-panel", "top-panel", "back"} {
		if meshes[i].PartName != want {
			t.Errorf("mesh %d = %q, want %q", i, meshes[i].PartName, want)
		}
	}
}

func TestClipReference(t *testing.T) {
	k := newKernel()
	s := planeset.New()
	s.Add(makeBox("a", v3.Vec{}, v3.Vec{X: 2, Y: 2, Z: 2}, "b"))
	s.Add(makeBox("b", v3.Vec{X: 1, Y: 1, Z: 1}, v3.Vec{X: 3, Y: 3, Z: 3}))

	meshes, err := tessellate.Tessellate(s, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	if v := meshes[0].Volume(); math.Abs(v-1) > 1e-6 {
		t.Errorf("clipped volume = %f, want 1", v)
	}
	// b keeps its full extent.
	if v := meshes[1].Volume(); math.Abs(v-8) > 1e-6 {
		t.Errorf("b volume = %f, want 8", v)
	}
	c := centroid(meshes[0])
	if c.Sub(v3.Vec{X: 1.5, Y: 1.5, Z: 1.5}).Length() > 1e-6 {
		t.Errorf("clipped centroid = %v, want (1.5, 1.5, 1.5)", c)
	}
}

func TestClipNotTransitive(t *testing.T) {
	k := newKernel()
	s := planeset.New()
	s.Add(makeBox("a", v3.Vec{}, v3.Vec{X: 4, Y: 4, Z: 4}, "b"))
	s.Add(makeBox("b", v3.Vec{}, v3.Vec{X: 2, Y: 4, Z: 4}, "c"))
	s.Add(makeBox("c", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}))

	solid, err := tessellate.Solid(s, k, "a")
	if err != nil {
		t.Fatalf("Solid failed: %v", err)
	}
	if v := exact.Polyhedron(solid).Volume(); math.Abs(v-32) > 1e-6 {
		t.Errorf("a volume = %f, want 32 (clipped by b only)", v)
	}
}

func TestEmptySolidSkipped(t *testing.T) {
	k := newKernel()
	s := planeset.New()
	s.Add(makeBox("a", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}, "far"))
	s.Add(makeBox("far", v3.Vec{X: 10, Y: 10, Z: 10}, v3.Vec{X: 11, Y: 11, Z: 11}))

	meshes, err := tessellate.Tessellate(s, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 || meshes[0].PartName != "far" {
		t.Fatalf("expected only the far mesh, got %d meshes", len(meshes))
	}
}

func TestUnknownClip(t *testing.T) {
	s := planeset.New()
	s.Add(makeBox("a", v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1}, "ghost"))

	_, err := tessellate.Tessellate(s, newKernel())
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected unknown clip error, got %v", err)
	}
	if _, err := tessellate.Solid(s, newKernel(), "nobody"); err == nil {
		t.Fatal("expected error for unknown solid name")
	}
}

func TestEmptyScene(t *testing.T) {
	meshes, err := tessellate.Tessellate(planeset.New(), newKernel())
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected 0 meshes, got %d", len(meshes))
	}
	if meshes, err := tessellate.Tessellate(nil, newKernel()); err != nil || meshes != nil {
		t.Fatalf("nil scene: meshes=%v err=%v", meshes, err)
	}
}

func TestSdfxKernel(t *testing.T) {
	k := sdfx.New(30)
	s := planeset.New()
	s.Add(makeBox("shelf", v3.Vec{X: 200, Y: 100, Z: 50}, v3.Vec{X: 300, Y: 150, Z: 60}))

	meshes, err := tessellate.Tessellate(s, k)
	if err != nil {
		t.Fatalf("Tessellate failed: %v", err)
	}
	if len(meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(meshes))
	}
	m := meshes[0]
	if m.IsEmpty() {
		t.Fatal("mesh should not be empty")
	}

	// Use a generous tolerance since marching cubes is approximate.
	c := centroid(m)
	const tol = 20.0
	if math.Abs(c.X-250) > tol || math.Abs(c.Y-125) > tol || math.Abs(c.Z-55) > tol {
		t.Errorf("centroid = %v, expected near (250, 125, 55)", c)
	}
}
