// Package polyhedron builds convex polyhedra from sets of outward-facing
// planes and clips existing polyhedra by further planes.
//
// Internally a polyhedron is a boundary graph of points, edges and faces held
// in index-addressed arenas. Each plane is applied as a single cut that
// produces a fresh graph from the previous one; the graph is flattened into
// a Polyhedron once every plane has been applied.
package polyhedron

import (
	"fmt"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Edge is an undirected edge between two vertex indices.
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// Endpoint returns A for k == 0 and B otherwise.
func (e Edge) Endpoint(k int) int {
	if k == 0 {
		return e.A
	}
	return e.B
}

// BoundaryRef is one entry of a face loop. End selects the endpoint of Edge
// (0 for A, 1 for B) that the loop reaches when it leaves this entry.
type BoundaryRef struct {
	Edge int `json:"edge"`
	End  int `json:"end"`
}

// Face is a planar convex face. Its loop is Boundary[First : First+Count],
// ordered clockwise as seen from outside the solid.
type Face struct {
	First  int    `json:"first"`
	Count  int    `json:"count"`
	Normal v3.Vec `json:"normal"`
}

// Polyhedron is the flat boundary representation of a convex polyhedron.
// Results built with an Arena borrow the arena's buffers until Release.
type Polyhedron struct {
	Vertices []v3.Vec      `json:"vertices"`
	Edges    []Edge        `json:"edges"`
	Boundary []BoundaryRef `json:"boundary"`
	Faces    []Face        `json:"faces"`

	arena    *Arena
	released bool
}

// VertexCount returns the number of vertices.
func (p *Polyhedron) VertexCount() int { return len(p.Vertices) }

// EdgeCount returns the number of edges.
func (p *Polyhedron) EdgeCount() int { return len(p.Edges) }

// FaceCount returns the number of faces.
func (p *Polyhedron) FaceCount() int { return len(p.Faces) }

// IsEmpty returns true if the polyhedron has no geometry, which is also the
// case after Release.
func (p *Polyhedron) IsEmpty() bool {
	return p == nil || len(p.Vertices) == 0
}

// Temporary reports whether the result borrows an Arena.
func (p *Polyhedron) Temporary() bool {
	return p.arena != nil
}

// Release gives the result's storage back. For arena-backed results the
// arena becomes available for the next build. Release is idempotent; the
// polyhedron is empty afterwards.
func (p *Polyhedron) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	if p.arena != nil {
		p.arena.reclaim(p)
		p.arena = nil
	}
	p.Vertices, p.Edges, p.Boundary, p.Faces = nil, nil, nil, nil
}

// Clone returns a heap-owned deep copy, safe to keep after the original is
// released.
func (p *Polyhedron) Clone() *Polyhedron {
	return &Polyhedron{
		Vertices: append([]v3.Vec(nil), p.Vertices...),
		Edges:    append([]Edge(nil), p.Edges...),
		Boundary: append([]BoundaryRef(nil), p.Boundary...),
		Faces:    append([]Face(nil), p.Faces...),
	}
}

// loopVertex returns the vertex the face loop reaches at boundary entry i.
func (p *Polyhedron) loopVertex(i int) int {
	ref := p.Boundary[i]
	return p.Edges[ref.Edge].Endpoint(ref.End)
}

// NextBoundary returns the boundary index following i within face f.
func (p *Polyhedron) NextBoundary(f, i int) int {
	face := p.Faces[f]
	if i+1 >= face.First+face.Count {
		return face.First
	}
	return i + 1
}

// FaceLoop returns the vertex indices around face f, starting at the vertex
// reached by the face's first boundary entry.
func (p *Polyhedron) FaceLoop(f int) []int {
	face := p.Faces[f]
	loop := make([]int, 0, face.Count)
	for i := face.First; i < face.First+face.Count; i++ {
		loop = append(loop, p.loopVertex(i))
	}
	return loop
}

// FacePlane returns the outward plane of face f. The distance is averaged
// over the face's vertices.
func (p *Polyhedron) FacePlane(f int) geom.Plane {
	face := p.Faces[f]
	var d float64
	for i := face.First; i < face.First+face.Count; i++ {
		d += face.Normal.Dot(p.Vertices[p.loopVertex(i)])
	}
	return geom.Plane{Normal: face.Normal, Dist: d / float64(face.Count)}
}

// Planes returns the outward plane of every face.
func (p *Polyhedron) Planes() []geom.Plane {
	planes := make([]geom.Plane, len(p.Faces))
	for f := range p.Faces {
		planes[f] = p.FacePlane(f)
	}
	return planes
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (p *Polyhedron) Bounds() sdf.Box3 {
	if len(p.Vertices) == 0 {
		return sdf.Box3{}
	}
	box := sdf.Box3{Min: p.Vertices[0], Max: p.Vertices[0]}
	for _, v := range p.Vertices[1:] {
		box.Min = box.Min.Min(v)
		box.Max = box.Max.Max(v)
	}
	return box
}

// Translate returns a heap-owned copy moved by offset.
func (p *Polyhedron) Translate(offset v3.Vec) *Polyhedron {
	q := p.Clone()
	for i := range q.Vertices {
		q.Vertices[i] = q.Vertices[i].Add(offset)
	}
	return q
}

func (p *Polyhedron) String() string {
	if p == nil {
		return "polyhedron(empty)"
	}
	return fmt.Sprintf("polyhedron(%d vertices, %d edges, %d faces)",
		p.VertexCount(), p.EdgeCount(), p.FaceCount())
}
