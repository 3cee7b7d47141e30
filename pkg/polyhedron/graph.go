package polyhedron

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// none marks an absent point, edge or face handle.
const none int32 = -1

// Edge sides. The right face of an edge is the one whose loop runs from
// p[0] to p[1]; the left face runs the other way.
const (
	left  = 0
	right = 1
)

type planarity uint8

const (
	stateAlive planarity = iota
	stateOnPlane
	stateDead
)

func (s planarity) String() string {
	switch s {
	case stateAlive:
		return "alive"
	case stateOnPlane:
		return "on-plane"
	case stateDead:
		return "dead"
	}
	return "unknown"
}

type point struct {
	pos   v3.Vec
	ring  []int32 // incident edges, clockwise seen from outside
	state planarity
	dist  float64
	gone  bool
}

type edge struct {
	p     [2]int32
	f     [2]int32 // indexed by left and right
	alive bool     // has an alive endpoint
	cut   bool     // has a dead endpoint
	gone  bool
}

type face struct {
	normal  v3.Vec
	ring    []int32 // edges, clockwise seen from outside
	missing bool    // lost or had an edge shortened by the current cut
	gone    bool
}

// graph is an index-addressed boundary graph. Handles are positions in the
// three slices; removal only sets the gone flag until compact runs.
type graph struct {
	points []point
	edges  []edge
	faces  []face
}

func (g *graph) addPoint(pos v3.Vec, state planarity) int32 {
	g.points = append(g.points, point{pos: pos, state: state})
	return int32(len(g.points) - 1)
}

func (g *graph) addEdge(p0, p1, l, r int32) int32 {
	g.edges = append(g.edges, edge{p: [2]int32{p0, p1}, f: [2]int32{l, r}})
	return int32(len(g.edges) - 1)
}

func (g *graph) addFace(normal v3.Vec, ring []int32) int32 {
	g.faces = append(g.faces, face{normal: normal, ring: ring})
	return int32(len(g.faces) - 1)
}

// side returns which side of edge e face f lies on, or -1.
func (g *graph) side(e, f int32) int {
	ed := &g.edges[e]
	switch f {
	case ed.f[right]:
		return right
	case ed.f[left]:
		return left
	}
	return -1
}

// loopStart returns the point where face f's loop enters edge e.
func (g *graph) loopStart(e, f int32) int32 {
	switch g.side(e, f) {
	case right:
		return g.edges[e].p[0]
	case left:
		return g.edges[e].p[1]
	}
	return none
}

// loopEnd returns the point where face f's loop leaves edge e.
func (g *graph) loopEnd(e, f int32) int32 {
	switch g.side(e, f) {
	case right:
		return g.edges[e].p[1]
	case left:
		return g.edges[e].p[0]
	}
	return none
}

func (g *graph) clone() *graph {
	c := &graph{
		points: make([]point, len(g.points)),
		edges:  make([]edge, len(g.edges)),
		faces:  make([]face, len(g.faces)),
	}
	copy(c.edges, g.edges)
	for i, p := range g.points {
		p.ring = append([]int32(nil), p.ring...)
		c.points[i] = p
	}
	for i, f := range g.faces {
		f.ring = append([]int32(nil), f.ring...)
		c.faces[i] = f
	}
	return c
}

// live counts the entries that are not marked gone.
func (g *graph) live() (points, edges, faces int) {
	for i := range g.points {
		if !g.points[i].gone {
			points++
		}
	}
	for i := range g.edges {
		if !g.edges[i].gone {
			edges++
		}
	}
	for i := range g.faces {
		if !g.faces[i].gone {
			faces++
		}
	}
	return points, edges, faces
}

// compact returns a copy holding only the live entries under dense handles.
// Point rings are rebuilt by link.
func (g *graph) compact() (*graph, error) {
	pm := make([]int32, len(g.points))
	em := make([]int32, len(g.edges))
	fm := make([]int32, len(g.faces))
	np, ne, nf := g.live()
	out := &graph{
		points: make([]point, 0, np),
		edges:  make([]edge, 0, ne),
		faces:  make([]face, 0, nf),
	}

	for i := range g.points {
		pm[i] = none
		if !g.points[i].gone {
			pm[i] = int32(len(out.points))
			out.points = append(out.points, point{pos: g.points[i].pos})
		}
	}
	for i := range g.faces {
		fm[i] = none
		if !g.faces[i].gone {
			fm[i] = int32(len(out.faces))
			out.faces = append(out.faces, face{normal: g.faces[i].normal})
		}
	}
	for i := range g.edges {
		em[i] = none
		e := &g.edges[i]
		if e.gone {
			continue
		}
		c := edge{p: [2]int32{pm[e.p[0]], pm[e.p[1]]}, f: [2]int32{none, none}}
		if c.p[0] == none || c.p[1] == none {
			return nil, fmt.Errorf("edge %d references a removed point: %w", i, ErrContractViolation)
		}
		for s := range e.f {
			if e.f[s] != none {
				c.f[s] = fm[e.f[s]]
			}
		}
		em[i] = int32(len(out.edges))
		out.edges = append(out.edges, c)
	}
	for i := range g.faces {
		if g.faces[i].gone {
			continue
		}
		ring := make([]int32, len(g.faces[i].ring))
		for k, e := range g.faces[i].ring {
			if em[e] == none {
				return nil, fmt.Errorf("face %d references a removed edge: %w", i, ErrContractViolation)
			}
			ring[k] = em[e]
		}
		out.faces[fm[i]].ring = ring
	}

	if err := out.link(); err != nil {
		return nil, err
	}
	return out, nil
}

// link rebuilds every point ring from the face rings. Around a point, the
// face between two consecutive ring edges enters the point along the second
// edge and leaves it along the first.
func (g *graph) link() error {
	type turn struct{ out, in int32 }
	turns := make([][]turn, len(g.points))
	for fi := range g.faces {
		f := int32(fi)
		ring := g.faces[fi].ring
		for i, in := range ring {
			out := ring[(i+1)%len(ring)]
			p := g.loopEnd(in, f)
			if p == none || p != g.loopStart(out, f) {
				return fmt.Errorf("face %d loop is open after edge %d: %w", fi, in, ErrContractViolation)
			}
			turns[p] = append(turns[p], turn{out: out, in: in})
		}
	}

	for pi := range g.points {
		ts := turns[pi]
		if len(ts) < 3 {
			return fmt.Errorf("point %d touches %d faces: %w", pi, len(ts), ErrContractViolation)
		}
		ring := make([]int32, 0, len(ts))
		cur := ts[0].out
		for len(ring) < len(ts) {
			ring = append(ring, cur)
			next := none
			for _, t := range ts {
				if t.out == cur {
					next = t.in
					break
				}
			}
			if next == none {
				return fmt.Errorf("point %d ring breaks at edge %d: %w", pi, cur, ErrContractViolation)
			}
			if next == ring[0] && len(ring) < len(ts) {
				return fmt.Errorf("point %d is pinched between separate fans: %w", pi, ErrContractViolation)
			}
			cur = next
		}
		if cur != ring[0] {
			return fmt.Errorf("point %d ring does not close: %w", pi, ErrContractViolation)
		}
		g.points[pi].ring = ring
	}
	return nil
}

// check verifies that a compacted graph is a closed manifold of genus zero.
func (g *graph) check() error {
	seen := make([][2]int, len(g.edges))
	for fi := range g.faces {
		ring := g.faces[fi].ring
		if len(ring) < 3 {
			return fmt.Errorf("face %d has %d edges: %w", fi, len(ring), ErrContractViolation)
		}
		for _, e := range ring {
			s := g.side(e, int32(fi))
			if s < 0 {
				return fmt.Errorf("face %d lists edge %d which does not border it: %w", fi, e, ErrContractViolation)
			}
			seen[e][s]++
		}
	}
	for ei := range g.edges {
		e := &g.edges[ei]
		if e.p[0] == e.p[1] {
			return fmt.Errorf("edge %d is a loop: %w", ei, ErrContractViolation)
		}
		if e.f[left] == none || e.f[right] == none || e.f[left] == e.f[right] {
			return fmt.Errorf("edge %d does not separate two faces: %w", ei, ErrContractViolation)
		}
		if seen[ei] != [2]int{1, 1} {
			return fmt.Errorf("edge %d appears %v times in face loops: %w", ei, seen[ei], ErrContractViolation)
		}
	}
	for pi := range g.points {
		if len(g.points[pi].ring) < 3 {
			return fmt.Errorf("point %d has %d edges: %w", pi, len(g.points[pi].ring), ErrContractViolation)
		}
	}
	if chi := len(g.points) - len(g.edges) + len(g.faces); chi != 2 {
		return fmt.Errorf("euler characteristic is %d: %w", chi, ErrContractViolation)
	}
	return nil
}

func removeHandle(s []int32, h int32) []int32 {
	for i, x := range s {
		if x == h {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
