// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/chazu/polycut/pkg/kernel"
	"github.com/chazu/polycut/pkg/polyhedron"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// convexSDF3 is the signed distance bound of a convex region: the largest
// plane distance. It is exact on faces and an underestimate near edges.
type convexSDF3 struct {
	planes []geom.Plane
	bb     sdf.Box3
}

func (c *convexSDF3) Evaluate(p v3.Vec) float64 {
	d := math.Inf(-1)
	for _, pl := range c.planes {
		d = math.Max(d, pl.Distance(p))
	}
	return d
}

func (c *convexSDF3) BoundingBox() sdf.Box3 {
	return c.bb
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid. planes tracks the
// region in world coordinates so emptiness can be decided exactly.
type sdfxSolid struct {
	s      sdf.SDF3
	planes []geom.Plane
	eps    float64
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel rendering with the given number of marching
// cubes cells along the longest axis. cells <= 0 uses DefaultMeshCells.
func New(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// unwrap extracts the underlying solid from a kernel.Solid.
func unwrap(s kernel.Solid) *sdfxSolid {
	return s.(*sdfxSolid)
}

// bound builds the exact polyhedron of planes to decide emptiness and get a
// tight box. A nil box means the region is empty.
func bound(planes []geom.Plane, eps float64) (*sdf.Box3, error) {
	p, err := polyhedron.Build(planes, polyhedron.Options{Epsilon: eps})
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	bb := p.Bounds()
	return &bb, nil
}

// Convex returns the SDF of the region behind every plane.
func (k *SdfxKernel) Convex(planes []geom.Plane, eps float64) (kernel.Solid, error) {
	normalized := make([]geom.Plane, len(planes))
	for i, pl := range planes {
		normalized[i] = geom.NewPlane(pl.Normal, pl.Dist)
	}
	bb, err := bound(normalized, eps)
	if err != nil {
		return nil, fmt.Errorf("sdfx: convex: %w", err)
	}
	if bb == nil {
		return nil, nil
	}
	return &sdfxSolid{
		s:      &convexSDF3{planes: normalized, bb: *bb},
		planes: normalized,
		eps:    eps,
	}, nil
}

// Intersection returns the intersection of two solids.
func (k *SdfxKernel) Intersection(a, b kernel.Solid) (kernel.Solid, error) {
	if a == nil || b == nil {
		return nil, nil
	}
	sa, sb := unwrap(a), unwrap(b)
	planes := append(append([]geom.Plane(nil), sa.planes...), sb.planes...)
	eps := max(sa.eps, sb.eps)
	bb, err := bound(planes, eps)
	if err != nil {
		return nil, fmt.Errorf("sdfx: intersection: %w", err)
	}
	if bb == nil {
		return nil, nil
	}
	return &sdfxSolid{s: sdf.Intersect3D(sa.s, sb.s), planes: planes, eps: eps}, nil
}

// Translate moves a solid by (x, y, z).
func (k *SdfxKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	if s == nil {
		return nil
	}
	src := unwrap(s)
	offset := v3.Vec{X: x, Y: y, Z: z}
	planes := make([]geom.Plane, len(src.planes))
	for i, pl := range src.planes {
		planes[i] = pl.Translate(offset)
	}
	m := sdf.Translate3d(offset)
	return &sdfxSolid{s: sdf.Transform3D(src.s, m), planes: planes, eps: src.eps}
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	if s == nil {
		return &kernel.Mesh{}, nil
	}
	sdf3 := unwrap(s).s

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
