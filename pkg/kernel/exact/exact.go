// Package exact implements the kernel.Kernel interface on top of
// pkg/polyhedron. Solids are exact convex boundary representations, so
// meshes are produced by triangulating faces rather than by sampling.
package exact

import (
	"fmt"
	"log/slog"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/chazu/polycut/pkg/kernel"
	"github.com/chazu/polycut/pkg/polyhedron"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*ExactKernel)(nil)

// solid wraps a polyhedron to implement kernel.Solid.
type solid struct {
	p   *polyhedron.Polyhedron
	eps float64
}

// BoundingBox returns the axis-aligned bounding box.
func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.p.Bounds()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// Polyhedron returns the polyhedron behind a solid produced by this kernel,
// or nil for the empty solid.
func Polyhedron(s kernel.Solid) *polyhedron.Polyhedron {
	if s == nil {
		return nil
	}
	return s.(*solid).p
}

// ExactKernel implements kernel.Kernel with convex polyhedra.
type ExactKernel struct {
	logger *slog.Logger
}

// New returns a new ExactKernel. A nil logger discards cut traces.
func New(logger *slog.Logger) *ExactKernel {
	return &ExactKernel{logger: logger}
}

// Convex builds the polyhedron behind every plane.
func (k *ExactKernel) Convex(planes []geom.Plane, eps float64) (kernel.Solid, error) {
	p, err := polyhedron.Build(planes, polyhedron.Options{Epsilon: eps, Logger: k.logger})
	if err != nil {
		return nil, fmt.Errorf("exact: convex: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return &solid{p: p, eps: eps}, nil
}

// Intersection clips a against the face planes of b.
func (k *ExactKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	sa, sb := a.(*solid), b.(*solid)
	eps := max(sa.eps, sb.eps)
	p, err := polyhedron.Clip(sa.p, sb.p.Planes(), polyhedron.Options{Epsilon: eps, Logger: k.logger})
	if err != nil {
		return nil, fmt.Errorf("exact: intersection: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	return &solid{p: p, eps: eps}, nil
}

// Translate moves a solid by (x, y, z).
func (k *ExactKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	if s == nil {
		return nil
	}
	src := s.(*solid)
	return &solid{p: src.p.Translate(v3.Vec{X: x, Y: y, Z: z}), eps: src.eps}
}

// ToMesh fan-triangulates every face. Vertices are duplicated per face so
// each carries its face normal. Triangles wind counter-clockwise seen from
// outside.
func (k *ExactKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	m := &kernel.Mesh{}
	if s == nil {
		return m, nil
	}
	p := s.(*solid).p

	var corners, tris int
	for f := range p.Faces {
		corners += p.Faces[f].Count
		tris += p.Faces[f].Count - 2
	}
	m.Vertices = make([]float32, 0, corners*3)
	m.Normals = make([]float32, 0, corners*3)
	m.Indices = make([]uint32, 0, tris*3)

	for f, face := range p.Faces {
		if face.Count < 3 {
			return nil, fmt.Errorf("exact: face %d has %d corners", f, face.Count)
		}
		base := uint32(len(m.Vertices) / 3)
		for _, vi := range p.FaceLoop(f) {
			v := p.Vertices[vi]
			m.Vertices = append(m.Vertices, float32(v.X), float32(v.Y), float32(v.Z))
			m.Normals = append(m.Normals, float32(face.Normal.X), float32(face.Normal.Y), float32(face.Normal.Z))
		}
		// Face loops run clockwise from outside; reverse each fan triangle.
		for i := 1; i+1 < face.Count; i++ {
			m.Indices = append(m.Indices, base, base+uint32(i+1), base+uint32(i))
		}
	}
	return m, nil
}
