package polyhedron

import (
	"fmt"
	"math"
)

// Element names the part of a polyhedron a ValidationError refers to.
type Element string

const (
	ElementVertex Element = "vertex"
	ElementEdge   Element = "edge"
	ElementFace   Element = "face"
	ElementSolid  Element = "solid"
)

// ValidationError describes one way a Polyhedron fails to be a closed convex
// boundary.
type ValidationError struct {
	Element Element
	Index   int
	Message string
}

func (e ValidationError) Error() string {
	if e.Element == ElementSolid {
		return e.Message
	}
	return fmt.Sprintf("%s %d: %s", e.Element, e.Index, e.Message)
}

// Validate checks that p is a closed, consistently oriented convex boundary
// whose vertices lie on their faces within eps. It returns every problem
// found; an empty slice means p is valid.
func Validate(p *Polyhedron, eps float64) []ValidationError {
	var errs []ValidationError
	add := func(el Element, i int, format string, args ...any) {
		errs = append(errs, ValidationError{Element: el, Index: i, Message: fmt.Sprintf(format, args...)})
	}
	if p.IsEmpty() {
		add(ElementSolid, 0, "polyhedron is empty")
		return errs
	}

	nv, ne := len(p.Vertices), len(p.Edges)
	degree := make([]int, nv)
	for i, e := range p.Edges {
		if e.A < 0 || e.A >= nv || e.B < 0 || e.B >= nv {
			add(ElementEdge, i, "endpoint out of range")
			continue
		}
		if e.A == e.B {
			add(ElementEdge, i, "both endpoints are vertex %d", e.A)
		}
		degree[e.A]++
		degree[e.B]++
	}
	if len(errs) > 0 {
		return errs
	}

	uses := make([][2]int, ne)
	for f, face := range p.Faces {
		if face.Count < 3 || face.First < 0 || face.First+face.Count > len(p.Boundary) {
			add(ElementFace, f, "boundary range [%d, +%d) is invalid", face.First, face.Count)
			continue
		}
		if math.Abs(face.Normal.Length()-1) > 1e-6 {
			add(ElementFace, f, "normal is not unit length")
		}
		wellFormed := true
		for i := face.First; i < face.First+face.Count; i++ {
			ref := p.Boundary[i]
			if ref.Edge < 0 || ref.Edge >= ne || (ref.End != 0 && ref.End != 1) {
				add(ElementFace, f, "boundary entry %d is malformed", i)
				wellFormed = false
				continue
			}
			uses[ref.Edge][ref.End]++
			next := p.Boundary[p.NextBoundary(f, i)]
			if next.Edge < 0 || next.Edge >= ne || (next.End != 0 && next.End != 1) {
				continue
			}
			if p.Edges[next.Edge].Endpoint(1-next.End) != p.loopVertex(i) {
				add(ElementFace, f, "loop is open after boundary entry %d", i)
			}
		}
		if !wellFormed {
			continue
		}
		pl := p.FacePlane(f)
		for _, v := range p.FaceLoop(f) {
			if d := math.Abs(pl.Distance(p.Vertices[v])); d > eps {
				add(ElementFace, f, "vertex %d is %g off the face plane", v, d)
			}
		}
		for v := range p.Vertices {
			if d := pl.Distance(p.Vertices[v]); d > eps {
				add(ElementFace, f, "vertex %d is %g in front of the face", v, d)
			}
		}
	}
	for i, u := range uses {
		if u != [2]int{1, 1} {
			add(ElementEdge, i, "walked %d times forward and %d times backward", u[1], u[0])
		}
	}
	for v, d := range degree {
		if d < 3 {
			add(ElementVertex, v, "has %d edges", d)
		}
	}
	if chi := nv - ne + len(p.Faces); chi != 2 {
		add(ElementSolid, 0, "euler characteristic is %d", chi)
	}
	return errs
}
