package polyhedron

import (
	"fmt"
	"slices"

	"github.com/chazu/polycut/pkg/geom"
)

// closeFaces bridges the gap each shortened face has between its two
// on-plane points. The bridge runs from the end of the surviving chain back
// to its start, so the face keeps it on the right; the left side is left for
// the cap.
func closeFaces(g *graph) error {
	for fi := range g.faces {
		f := &g.faces[fi]
		if f.gone {
			continue
		}
		h := int32(fi)
		n := len(f.ring)
		gap := -1
		for i := 0; i < n; i++ {
			if g.loopEnd(f.ring[i], h) == g.loopStart(f.ring[(i+1)%n], h) {
				continue
			}
			if gap >= 0 {
				return fmt.Errorf("face %d is broken in more than one place: %w", fi, ErrContractViolation)
			}
			gap = i
		}
		if gap < 0 {
			continue
		}
		if !f.missing {
			return fmt.Errorf("face %d is open but was not touched by the cut: %w", fi, ErrContractViolation)
		}

		a := g.loopEnd(f.ring[gap], h)
		b := g.loopStart(f.ring[(gap+1)%n], h)
		if g.points[a].state != stateOnPlane || g.points[b].state != stateOnPlane {
			return fmt.Errorf("face %d gap ends at %v and %v points: %w",
				fi, g.points[a].state, g.points[b].state, ErrContractViolation)
		}
		e := g.addEdge(a, b, none, h)
		g.points[a].ring = append(g.points[a].ring, e)
		g.points[b].ring = append(g.points[b].ring, e)
		// addEdge may have grown other slices but never faces; f stays valid.
		f.ring = slices.Insert(f.ring, gap+1, e)
	}
	return nil
}

// capCut adds the face lying on pl. Every edge with an empty face slot is on
// the cap boundary; the cap walks each such edge in the direction that leaves
// the existing face on its other side. It returns the number of cap edges.
func capCut(g *graph, pl geom.Plane) (int, error) {
	var open []int32
	from := make(map[int32]int32)
	for i := range g.edges {
		e := &g.edges[i]
		if e.gone || (e.f[left] != none && e.f[right] != none) {
			continue
		}
		if e.f[left] == none && e.f[right] == none {
			return 0, fmt.Errorf("edge %d borders no face: %w", i, ErrContractViolation)
		}
		start, _ := capDirection(e)
		if _, ok := from[start]; ok {
			return 0, fmt.Errorf("cap boundary forks at point %d: %w", start, ErrContractViolation)
		}
		from[start] = int32(i)
		open = append(open, int32(i))
	}
	if len(open) < 3 {
		return 0, fmt.Errorf("cap boundary has %d edges: %w", len(open), ErrContractViolation)
	}

	ring := make([]int32, 0, len(open))
	cur := open[0]
	for {
		ring = append(ring, cur)
		_, end := capDirection(&g.edges[cur])
		next, ok := from[end]
		if !ok {
			return 0, fmt.Errorf("cap boundary stops at point %d: %w", end, ErrContractViolation)
		}
		if next == open[0] {
			break
		}
		if len(ring) == len(open) {
			return 0, fmt.Errorf("cap boundary does not close: %w", ErrContractViolation)
		}
		cur = next
	}
	if len(ring) != len(open) {
		return 0, fmt.Errorf("cap boundary splits into %d and %d edges: %w",
			len(ring), len(open)-len(ring), ErrContractViolation)
	}

	h := g.addFace(pl.Normal, ring)
	for _, e := range ring {
		ed := &g.edges[e]
		if ed.f[right] == none {
			ed.f[right] = h
		} else {
			ed.f[left] = h
		}
	}
	return len(ring), nil
}

// capDirection returns the cap loop's start and end point along e.
func capDirection(e *edge) (start, end int32) {
	if e.f[right] == none {
		return e.p[0], e.p[1]
	}
	return e.p[1], e.p[0]
}
