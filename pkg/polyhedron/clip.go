package polyhedron

import (
	"fmt"
	"log/slog"

	"github.com/chazu/polycut/pkg/geom"
)

// cutStats summarizes what a single cut did to the graph.
type cutStats struct {
	Dead       int
	OnPlane    int
	Downgraded int
	Removed    [3]int // points, edges, faces
	Split      int
	CapEdges   int
}

func (s cutStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("dead", s.Dead),
		slog.Int("on_plane", s.OnPlane),
		slog.Int("downgraded", s.Downgraded),
		slog.Int("removed_points", s.Removed[0]),
		slog.Int("removed_edges", s.Removed[1]),
		slog.Int("removed_faces", s.Removed[2]),
		slog.Int("split", s.Split),
		slog.Int("cap_edges", s.CapEdges),
	)
}

// cut intersects g with the half-space behind pl. It returns a new graph and
// leaves g untouched. A nil graph means nothing survives; g itself is
// returned when the plane removes nothing.
func cut(g *graph, pl geom.Plane, eps float64) (*graph, cutStats, error) {
	var st cutStats
	alive, dead := classify(g, pl, eps)
	if alive == 0 {
		return nil, st, nil
	}
	if dead == 0 {
		return g, st, nil
	}

	w := g.clone()
	markEdges(w)
	st.Downgraded = downgradeIsolated(w)
	if st.Downgraded > 0 {
		markEdges(w)
	}
	for i := range w.points {
		switch w.points[i].state {
		case stateDead:
			st.Dead++
		case stateOnPlane:
			st.OnPlane++
		}
	}

	var err error
	st.Removed[1] = removeDeadEdges(w)
	st.Removed[2] = removeDeadFaces(w)
	st.Removed[0] = removeDeadPoints(w)
	if st.Split, err = splitEdges(w); err != nil {
		return nil, st, err
	}

	if err = closeFaces(w); err != nil {
		return nil, st, err
	}
	n, err := capCut(w, pl)
	if err != nil {
		return nil, st, err
	}
	st.CapEdges = n

	out, err := w.compact()
	if err != nil {
		return nil, st, err
	}
	if err := out.check(); err != nil {
		return nil, st, err
	}
	return out, st, nil
}

// classify labels every point of g relative to pl and returns how many are
// alive and dead. Points within eps of the plane are on-plane.
func classify(g *graph, pl geom.Plane, eps float64) (alive, dead int) {
	for i := range g.points {
		p := &g.points[i]
		p.dist = pl.Distance(p.pos)
		switch {
		case p.dist > eps:
			p.state = stateDead
			dead++
		case p.dist < -eps:
			p.state = stateAlive
			alive++
		default:
			p.state = stateOnPlane
		}
	}
	return alive, dead
}

func markEdges(g *graph) {
	for i := range g.edges {
		e := &g.edges[i]
		s0, s1 := g.points[e.p[0]].state, g.points[e.p[1]].state
		e.alive = s0 == stateAlive || s1 == stateAlive
		e.cut = s0 == stateDead || s1 == stateDead
	}
}

// downgradeIsolated turns on-plane points that touch no alive edge and sit
// between two consecutive cut edges into dead points. The decision uses the
// states from before the pass, so one downgrade never triggers another.
func downgradeIsolated(g *graph) int {
	var marked []int32
	for i := range g.points {
		p := &g.points[i]
		if p.state != stateOnPlane {
			continue
		}
		if isolated(g, p.ring) {
			marked = append(marked, int32(i))
		}
	}
	for _, i := range marked {
		g.points[i].state = stateDead
	}
	return len(marked)
}

func isolated(g *graph, ring []int32) bool {
	bracketed := false
	for i, e := range ring {
		if g.edges[e].alive {
			return false
		}
		if g.edges[e].cut && g.edges[ring[(i+1)%len(ring)]].cut {
			bracketed = true
		}
	}
	return bracketed
}

// removeDeadEdges drops edges that touch a dead point but no alive one.
func removeDeadEdges(g *graph) int {
	n := 0
	for i := range g.edges {
		e := &g.edges[i]
		if !e.cut || e.alive {
			continue
		}
		h := int32(i)
		e.gone = true
		n++
		for _, f := range e.f {
			if f != none {
				g.faces[f].ring = removeHandle(g.faces[f].ring, h)
				g.faces[f].missing = true
			}
		}
		for _, p := range e.p {
			g.points[p].ring = removeHandle(g.points[p].ring, h)
		}
	}
	return n
}

// removeDeadFaces drops faces left with fewer than two edges or with no
// alive edge, then drops edges that no longer border any face.
func removeDeadFaces(g *graph) int {
	n := 0
	for fi := range g.faces {
		f := &g.faces[fi]
		if f.gone || (len(f.ring) >= 2 && hasAlive(g, f.ring)) {
			continue
		}
		f.gone = true
		n++
		h := int32(fi)
		for _, e := range f.ring {
			ed := &g.edges[e]
			for s := range ed.f {
				if ed.f[s] == h {
					ed.f[s] = none
				}
			}
		}
		f.ring = nil
	}
	for i := range g.edges {
		e := &g.edges[i]
		if e.gone || e.f[left] != none || e.f[right] != none {
			continue
		}
		e.gone = true
		for _, p := range e.p {
			g.points[p].ring = removeHandle(g.points[p].ring, int32(i))
		}
	}
	return n
}

func hasAlive(g *graph, ring []int32) bool {
	for _, e := range ring {
		if g.edges[e].alive {
			return true
		}
	}
	return false
}

// removeDeadPoints drops dead points and points left without edges.
func removeDeadPoints(g *graph) int {
	n := 0
	for i := range g.points {
		p := &g.points[i]
		if p.state == stateDead || len(p.ring) == 0 {
			p.gone = true
			n++
		}
	}
	return n
}

// splitEdges shortens every edge that runs from an alive point to a dead
// one. A new on-plane point at the crossing replaces the dead endpoint.
func splitEdges(g *graph) (int, error) {
	n := 0
	for i := range g.edges {
		if g.edges[i].gone || !g.edges[i].cut {
			continue
		}
		e := &g.edges[i]
		k := 0
		if g.points[e.p[1]].state == stateDead {
			k = 1
		}
		d, a := g.points[e.p[k]], g.points[e.p[1-k]]
		if d.state != stateDead || a.state != stateAlive {
			return n, fmt.Errorf("split edge %d joins %v and %v points: %w", i, d.state, a.state, ErrContractViolation)
		}
		t := d.dist / (d.dist - a.dist)
		pos := d.pos.Add(a.pos.Sub(d.pos).MulScalar(t))
		np := g.addPoint(pos, stateOnPlane)
		g.points[np].ring = []int32{int32(i)}

		e = &g.edges[i]
		e.p[k] = np
		e.cut = false
		for _, f := range e.f {
			if f != none {
				g.faces[f].missing = true
			}
		}
		n++
	}
	return n, nil
}
