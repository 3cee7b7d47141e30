// Package planeset holds named sets of half-space planes (solids) and the
// scene that collects them. A scene is produced by the Lisp engine or a
// config file and consumed by the tessellator.
package planeset

import (
	"fmt"

	"github.com/chazu/polycut/pkg/geom"
)

// DefaultEpsilon is the scene-wide on-plane tolerance.
const DefaultEpsilon = 1e-9

// Solid is a convex region described by the planes bounding it.
type Solid struct {
	Name    string       `json:"name" yaml:"name"`
	Planes  []geom.Plane `json:"planes" yaml:"planes"`
	Epsilon float64      `json:"epsilon,omitempty" yaml:"epsilon,omitempty"` // 0 = scene default
	Clip    []string     `json:"clip,omitempty" yaml:"clip,omitempty"`       // solids whose planes also bound this one
	Source  SourceRef    `json:"source" yaml:"-"`
}

// SourceRef points back to the expression that defined a solid.
type SourceRef struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
}

// Scene is the set of solids produced by one evaluation. It is never mutated
// after evaluation; each evaluation produces a new scene.
type Scene struct {
	Solids  map[string]*Solid `json:"solids"`
	Order   []string          `json:"order"`
	Epsilon float64           `json:"epsilon"`
}

// New creates an empty Scene with the default epsilon.
func New() *Scene {
	return &Scene{
		Solids:  make(map[string]*Solid),
		Epsilon: DefaultEpsilon,
	}
}

// Add registers a solid. A solid with an existing name replaces the earlier
// one but keeps its position in the order.
func (s *Scene) Add(sol *Solid) {
	if _, ok := s.Solids[sol.Name]; !ok {
		s.Order = append(s.Order, sol.Name)
	}
	s.Solids[sol.Name] = sol
}

// Merge appends every solid of other, in its order, after the solids of s.
// A name defined in both scenes is an error and leaves s unchanged.
func (s *Scene) Merge(other *Scene) error {
	for _, name := range other.Order {
		if s.Lookup(name) != nil {
			return fmt.Errorf("planeset: solid %q defined twice", name)
		}
	}
	other.Each(func(sol *Solid) bool {
		s.Add(sol)
		return true
	})
	return nil
}

// Lookup returns the solid with the given name, or nil.
func (s *Scene) Lookup(name string) *Solid {
	return s.Solids[name]
}

// MustLookup returns the solid with the given name, or panics.
func (s *Scene) MustLookup(name string) *Solid {
	sol := s.Lookup(name)
	if sol == nil {
		panic(fmt.Sprintf("planeset: no solid named %q", name))
	}
	return sol
}

// Get returns the i-th solid in insertion order.
func (s *Scene) Get(i int) *Solid {
	return s.Solids[s.Order[i]]
}

// Len returns the number of solids.
func (s *Scene) Len() int {
	return len(s.Order)
}

// Each calls fn for every solid in insertion order until fn returns false.
func (s *Scene) Each(fn func(*Solid) bool) {
	for _, name := range s.Order {
		if !fn(s.Solids[name]) {
			return
		}
	}
}

// SourceLine returns the definition line of the named solid, or 0.
func (s *Scene) SourceLine(name string) int {
	if sol := s.Lookup(name); sol != nil {
		return sol.Source.Line
	}
	return 0
}

// EpsilonFor returns the tolerance to use for sol.
func (s *Scene) EpsilonFor(sol *Solid) float64 {
	if sol.Epsilon > 0 {
		return sol.Epsilon
	}
	return s.Epsilon
}

// ClipPlanes returns the planes of sol followed by the planes of every solid
// it clips against, in reference order. Unknown references are skipped;
// Validate reports them.
func (s *Scene) ClipPlanes(sol *Solid) []geom.Plane {
	planes := append([]geom.Plane(nil), sol.Planes...)
	for _, name := range sol.Clip {
		if other := s.Lookup(name); other != nil && other != sol {
			planes = append(planes, other.Planes...)
		}
	}
	return planes
}
