package polyhedron

import (
	"fmt"
)

// flatten writes the compacted graph g into dst.
func flatten(g *graph, dst *Polyhedron) *Polyhedron {
	for i := range g.points {
		dst.Vertices = append(dst.Vertices, g.points[i].pos)
	}
	for i := range g.edges {
		e := &g.edges[i]
		dst.Edges = append(dst.Edges, Edge{A: int(e.p[0]), B: int(e.p[1])})
	}
	for fi := range g.faces {
		f := &g.faces[fi]
		dst.Faces = append(dst.Faces, Face{
			First:  len(dst.Boundary),
			Count:  len(f.ring),
			Normal: f.normal,
		})
		for _, e := range f.ring {
			end := 0
			if g.side(e, int32(fi)) == right {
				end = 1
			}
			dst.Boundary = append(dst.Boundary, BoundaryRef{Edge: int(e), End: end})
		}
	}
	return dst
}

// graphOf rebuilds the boundary graph of p. An entry reaching the edge's B
// endpoint walks it from A to B, which puts the face on the edge's right.
func graphOf(p *Polyhedron) (*graph, error) {
	g := &graph{
		points: make([]point, 0, len(p.Vertices)),
		edges:  make([]edge, 0, len(p.Edges)),
		faces:  make([]face, 0, len(p.Faces)),
	}
	for _, v := range p.Vertices {
		g.addPoint(v, stateAlive)
	}
	nv := len(p.Vertices)
	for i, e := range p.Edges {
		if e.A < 0 || e.A >= nv || e.B < 0 || e.B >= nv || e.A == e.B {
			return nil, fmt.Errorf("edge %d has endpoints %d and %d: %w", i, e.A, e.B, ErrInvalidInput)
		}
		g.addEdge(int32(e.A), int32(e.B), none, none)
	}
	for fi, f := range p.Faces {
		if f.First < 0 || f.Count < 3 || f.First+f.Count > len(p.Boundary) {
			return nil, fmt.Errorf("face %d has boundary range [%d, +%d): %w", fi, f.First, f.Count, ErrInvalidInput)
		}
		ring := make([]int32, f.Count)
		for k, ref := range p.Boundary[f.First : f.First+f.Count] {
			if ref.Edge < 0 || ref.Edge >= len(p.Edges) || (ref.End != 0 && ref.End != 1) {
				return nil, fmt.Errorf("face %d boundary entry %d is malformed: %w", fi, k, ErrInvalidInput)
			}
			s := left
			if ref.End == 1 {
				s = right
			}
			e := &g.edges[ref.Edge]
			if e.f[s] != none {
				return nil, fmt.Errorf("edge %d is used twice on one side: %w", ref.Edge, ErrInvalidInput)
			}
			e.f[s] = int32(fi)
			ring[k] = int32(ref.Edge)
		}
		g.addFace(f.Normal, ring)
	}
	for i := range g.edges {
		if g.edges[i].f[left] == none || g.edges[i].f[right] == none {
			return nil, fmt.Errorf("edge %d borders fewer than two faces: %w", i, ErrInvalidInput)
		}
	}
	if err := g.link(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := g.check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return g, nil
}
