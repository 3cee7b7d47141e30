package polyhedron

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/chazu/polycut/pkg/geom"
)

// DefaultEpsilon is the on-plane tolerance used when Options.Epsilon is zero
// and Options.ExactEpsilon is not set.
const DefaultEpsilon = 1e-9

// Options controls a build or clip.
type Options struct {
	// Epsilon is the distance within which a point counts as lying on a
	// plane. It must be tuned to the coordinate scale.
	Epsilon float64
	// ExactEpsilon uses Epsilon as given even when it is zero.
	ExactEpsilon bool
	// Arena, when set, receives the result. The result must be released
	// before the arena can be used again.
	Arena *Arena
	// Logger receives one debug record per cut. Nil discards them.
	Logger *slog.Logger
}

func (o Options) epsilon() (float64, error) {
	eps := o.Epsilon
	if eps == 0 && !o.ExactEpsilon {
		eps = DefaultEpsilon
	}
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		return 0, fmt.Errorf("polyhedron: epsilon %g: %w", eps, ErrInvalidInput)
	}
	return eps, nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// BuildFromPlanes returns the convex polyhedron bounded by planes, keeping the
// region behind every plane. A nil result with a nil error means the region
// is empty. Pass a nil arena for a heap-owned result.
func BuildFromPlanes(planes []geom.Plane, eps float64, arena *Arena) (*Polyhedron, error) {
	return Build(planes, Options{Epsilon: eps, ExactEpsilon: true, Arena: arena})
}

// ClipExisting returns p intersected with the half-spaces behind planes. p is
// not modified. A nil result with a nil error means nothing survives.
func ClipExisting(p *Polyhedron, planes []geom.Plane, eps float64, arena *Arena) (*Polyhedron, error) {
	return Clip(p, planes, Options{Epsilon: eps, ExactEpsilon: true, Arena: arena})
}

// Build is BuildFromPlanes with options.
func Build(planes []geom.Plane, opts Options) (*Polyhedron, error) {
	eps, err := opts.epsilon()
	if err != nil {
		return nil, err
	}
	planes, err = normalizePlanes(planes)
	if err != nil {
		return nil, err
	}
	if opts.Arena != nil && opts.Arena.Busy() {
		return nil, fmt.Errorf("polyhedron: %w", ErrArenaBusy)
	}
	log := opts.logger()

	box, ok := looseBounds(planes, eps)
	if !ok {
		log.Debug("no plane polygon survives", "planes", len(planes))
		return nil, nil
	}
	log.Debug("seed box", "min", box.Min, "max", box.Max)
	return run(newBoxGraph(box), planes, eps, opts.Arena, log)
}

// Clip is ClipExisting with options.
func Clip(p *Polyhedron, planes []geom.Plane, opts Options) (*Polyhedron, error) {
	if p == nil || p.released {
		return nil, fmt.Errorf("polyhedron: clip of a released or nil polyhedron: %w", ErrInvalidInput)
	}
	eps, err := opts.epsilon()
	if err != nil {
		return nil, err
	}
	planes, err = normalizePlanes(planes)
	if err != nil {
		return nil, err
	}
	g, err := graphOf(p)
	if err != nil {
		return nil, fmt.Errorf("polyhedron: clip input: %w", err)
	}
	return run(g, planes, eps, opts.Arena, opts.logger())
}

func run(g *graph, planes []geom.Plane, eps float64, arena *Arena, log *slog.Logger) (*Polyhedron, error) {
	if arena != nil {
		if err := arena.acquire(); err != nil {
			return nil, fmt.Errorf("polyhedron: %w", err)
		}
	}
	for i, pl := range planes {
		next, st, err := cut(g, pl, eps)
		if err != nil {
			arena.abandon()
			return nil, fmt.Errorf("polyhedron: cut %d by %v: %w", i, pl, err)
		}
		if next == nil {
			log.Debug("cut eliminates polyhedron", "plane", i)
			arena.abandon()
			return nil, nil
		}
		if next == g {
			log.Debug("cut removes nothing", "plane", i)
			continue
		}
		g = next
		np, ne, nf := g.live()
		log.Debug("cut", "plane", i, "stats", st, "points", np, "edges", ne, "faces", nf)
	}
	return flatten(g, arena.target()), nil
}

func normalizePlanes(planes []geom.Plane) ([]geom.Plane, error) {
	out := make([]geom.Plane, len(planes))
	for i, pl := range planes {
		if !pl.IsFinite() {
			return nil, fmt.Errorf("polyhedron: plane %d is not finite: %w", i, ErrInvalidInput)
		}
		if pl.Normal.Length() == 0 {
			return nil, fmt.Errorf("polyhedron: plane %d has a zero normal: %w", i, ErrInvalidInput)
		}
		out[i] = geom.NewPlane(pl.Normal, pl.Dist)
	}
	return out, nil
}
