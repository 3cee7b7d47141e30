package polyhedron

import (
	"sync/atomic"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Arena is reusable scratch storage for short-lived results. A result built
// in an arena borrows its buffers; the arena cannot serve another build until
// that result is released. Passing a nil *Arena to a build produces a
// heap-owned result instead.
type Arena struct {
	busy atomic.Bool

	vertices []v3.Vec
	edges    []Edge
	boundary []BoundaryRef
	faces    []Face
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// Busy reports whether a result currently borrows the arena.
func (a *Arena) Busy() bool {
	return a.busy.Load()
}

func (a *Arena) acquire() error {
	if !a.busy.CompareAndSwap(false, true) {
		return ErrArenaBusy
	}
	return nil
}

// abandon frees the arena after a build that produced no result.
func (a *Arena) abandon() {
	if a == nil {
		return
	}
	a.busy.Store(false)
}

// reclaim keeps the (possibly grown) buffers of p for the next build.
func (a *Arena) reclaim(p *Polyhedron) {
	a.vertices = p.Vertices[:0]
	a.edges = p.Edges[:0]
	a.boundary = p.Boundary[:0]
	a.faces = p.Faces[:0]
	a.busy.Store(false)
}

// target returns an empty Polyhedron whose slices reuse the arena buffers.
// A nil arena yields a heap-owned target.
func (a *Arena) target() *Polyhedron {
	if a == nil {
		return &Polyhedron{}
	}
	return &Polyhedron{
		Vertices: a.vertices[:0],
		Edges:    a.edges[:0],
		Boundary: a.boundary[:0],
		Faces:    a.faces[:0],
		arena:    a,
	}
}
