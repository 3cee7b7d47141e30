package kernel

import (
	"math"
	"testing"

	"github.com/chazu/polycut/pkg/geom"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshIsEmpty(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
	})
	t.Run("non-empty mesh", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{1, 2, 3}}
		if m.IsEmpty() {
			t.Error("IsEmpty() = true for non-empty mesh, want false")
		}
	})
}

func tetraMesh() *Mesh {
	return &Mesh{
		Vertices: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1},
		Indices:  []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}
}

func TestMeshVolume(t *testing.T) {
	m := tetraMesh()
	if got := m.Volume(); math.Abs(got-1.0/6) > 1e-9 {
		t.Errorf("Volume() = %g, want 1/6", got)
	}
	if got := (&Mesh{}).Volume(); got != 0 {
		t.Errorf("empty Volume() = %g, want 0", got)
	}
}

func TestMeshArea(t *testing.T) {
	want := 1.5 + math.Sqrt(3)/2
	if got := tetraMesh().Area(); math.Abs(got-want) > 1e-6 {
		t.Errorf("Area() = %g, want %g", got, want)
	}
}

// --- Compile-time interface check with a stub kernel ---

// stubSolid is a minimal Solid implementation for testing.
type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable. Convex reads axis-aligned planes only.
type stubKernel struct{}

func (k *stubKernel) Convex(planes []geom.Plane, _ float64) (Solid, error) {
	s := &stubSolid{}
	for _, p := range planes {
		switch {
		case p.Normal.X > 0:
			s.maxBB[0] = p.Dist
		case p.Normal.X < 0:
			s.minBB[0] = -p.Dist
		case p.Normal.Y > 0:
			s.maxBB[1] = p.Dist
		case p.Normal.Y < 0:
			s.minBB[1] = -p.Dist
		case p.Normal.Z > 0:
			s.maxBB[2] = p.Dist
		case p.Normal.Z < 0:
			s.minBB[2] = -p.Dist
		}
	}
	return s, nil
}

func (k *stubKernel) Intersection(a, _ Solid) (Solid, error) { return a, nil }

func (k *stubKernel) Translate(s Solid, _, _, _ float64) Solid { return s }

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

// Compile-time checks that the stubs implement the interfaces.
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelConvexBoundingBox(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, err := k.Convex([]geom.Plane{
		{Normal: v3.Vec{X: 1}, Dist: 10},
		{Normal: v3.Vec{X: -1}, Dist: 0},
		{Normal: v3.Vec{Y: 1}, Dist: 20},
		{Normal: v3.Vec{Y: -1}, Dist: 0},
		{Normal: v3.Vec{Z: 1}, Dist: 30},
		{Normal: v3.Vec{Z: -1}, Dist: 0},
	}, 0)
	if err != nil {
		t.Fatalf("Convex() error = %v", err)
	}
	min, max := s.BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("Convex min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 30} {
		t.Errorf("Convex max = %v, want [10 20 30]", max)
	}
}

func TestStubKernelToMesh(t *testing.T) {
	var k Kernel = &stubKernel{}
	s, _ := k.Convex(nil, 0)
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh() error = %v", err)
	}
	if m == nil {
		t.Fatal("ToMesh() returned nil mesh")
	}
	if !m.IsEmpty() {
		t.Error("stub ToMesh() should return empty mesh")
	}
}
