package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/chazu/polycut/pkg/planeset"
	v3 "github.com/deadsy/sdfx/vec/v3"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector returned by vec3.
type sexpVec3 struct {
	vec v3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPlane wraps a single half-space.
type sexpPlane struct {
	plane geom.Plane
}

func (p *sexpPlane) SexpString(ps *zygo.PrintState) string {
	n := p.plane.Normal
	return fmt.Sprintf("(plane :normal (vec3 %g %g %g) :dist %g)", n.X, n.Y, n.Z, p.plane.Dist)
}
func (p *sexpPlane) Type() *zygo.RegisteredType { return nil }

// sexpPlanes wraps the plane set produced by a shape builtin.
type sexpPlanes struct {
	kind   string
	planes []geom.Plane
}

func (p *sexpPlanes) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %d planes)", p.kind, len(p.planes))
}
func (p *sexpPlanes) Type() *zygo.RegisteredType { return nil }

// sexpSolidRef names a solid registered in the scene.
type sexpSolidRef struct {
	name string
}

func (s *sexpSolidRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(solid %q)", s.name)
}
func (s *sexpSolidRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// floatArg reads an optional numeric keyword, returning def when absent.
func (a kwArgs) floatArg(fn, key string, def float64) (float64, error) {
	v, ok := a.kw[key]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return f, nil
}

// vecArg reads a vec3 keyword. The bool result reports whether it was given.
func (a kwArgs) vecArg(fn, key string) (v3.Vec, bool, error) {
	v, ok := a.kw[key]
	if !ok {
		return v3.Vec{}, false, nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return v3.Vec{}, true, fmt.Errorf("%s: %s: %w", fn, key, err)
	}
	return vec, true, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a vector from a sexpVec3.
func toVec3(s zygo.Sexp) (v3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return v3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toSolidName accepts a solid reference or a plain string.
func toSolidName(s zygo.Sexp) (string, error) {
	switch v := s.(type) {
	case *sexpSolidRef:
		return v.name, nil
	case *zygo.SexpStr:
		return v.S, nil
	}
	return "", fmt.Errorf("expected solid name, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// collectPlanes flattens planes, shape plane sets and (nested) lists of
// them into one slice.
func collectPlanes(s zygo.Sexp, dst []geom.Plane) ([]geom.Plane, error) {
	switch v := s.(type) {
	case *sexpPlane:
		return append(dst, v.plane), nil
	case *sexpPlanes:
		return append(dst, v.planes...), nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, fmt.Errorf("expected plane or list of planes, got %T (%s)", s, s.SexpString(nil))
	}
	for _, item := range items {
		if dst, err = collectPlanes(item, dst); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func planesResult(kind string, planes []geom.Plane) zygo.Sexp {
	return &sexpPlanes{kind: kind, planes: planes}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the polycut DSL builtins into a zygomys
// environment. Solids are registered in scene as they are evaluated.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, scene *planeset.Scene) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: v3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (plane :normal (vec3 0 0 1) :dist 5)
	// (plane :normal (vec3 0 0 1) :point (vec3 0 0 5))
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		normal, ok, err := pa.vecArg("plane", "normal")
		if err != nil {
			return zygo.SexpNull, err
		}
		if !ok {
			return zygo.SexpNull, fmt.Errorf("plane requires :normal")
		}
		if normal.Length() == 0 {
			return zygo.SexpNull, fmt.Errorf("plane: normal must be non-zero")
		}

		point, hasPoint, err := pa.vecArg("plane", "point")
		if err != nil {
			return zygo.SexpNull, err
		}
		_, hasDist := pa.kw["dist"]
		switch {
		case hasPoint && hasDist:
			return zygo.SexpNull, fmt.Errorf("plane: give either :dist or :point, not both")
		case hasPoint:
			return &sexpPlane{plane: geom.PlaneFromPoint(normal, point)}, nil
		}
		d, err := pa.floatArg("plane", "dist", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPlane{plane: geom.NewPlane(normal, d)}, nil
	})

	// -----------------------------------------------------------------------
	// (flip (plane ...))
	// -----------------------------------------------------------------------
	env.AddFunction("flip", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("flip requires exactly 1 argument, got %d", len(args))
		}
		p, ok := args[0].(*sexpPlane)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("flip: expected plane, got %T (%s)", args[0], args[0].SexpString(nil))
		}
		return &sexpPlane{plane: p.plane.Flip()}, nil
	})

	// -----------------------------------------------------------------------
	// (translate planes (vec3 dx dy dz))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate requires planes and an offset")
		}
		offset, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		if p, ok := args[0].(*sexpPlane); ok {
			return &sexpPlane{plane: p.plane.Translate(offset)}, nil
		}
		planes, err := collectPlanes(args[0], nil)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		for i := range planes {
			planes[i] = planes[i].Translate(offset)
		}
		return planesResult("translate", planes), nil
	})

	// -----------------------------------------------------------------------
	// (cuboid :min (vec3 -1 -1 -1) :max (vec3 1 1 1))
	// -----------------------------------------------------------------------
	env.AddFunction("cuboid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		lo, okLo, err := pa.vecArg("cuboid", "min")
		if err != nil {
			return zygo.SexpNull, err
		}
		hi, okHi, err := pa.vecArg("cuboid", "max")
		if err != nil {
			return zygo.SexpNull, err
		}
		if !okLo || !okHi {
			return zygo.SexpNull, fmt.Errorf("cuboid requires :min and :max")
		}
		if lo.X >= hi.X || lo.Y >= hi.Y || lo.Z >= hi.Z {
			return zygo.SexpNull, fmt.Errorf("cuboid: min %v must be below max %v on every axis", lo, hi)
		}
		return planesResult("cuboid", []geom.Plane{
			{Normal: v3.Vec{X: 1}, Dist: hi.X},
			{Normal: v3.Vec{X: -1}, Dist: -lo.X},
			{Normal: v3.Vec{Y: 1}, Dist: hi.Y},
			{Normal: v3.Vec{Y: -1}, Dist: -lo.Y},
			{Normal: v3.Vec{Z: 1}, Dist: hi.Z},
			{Normal: v3.Vec{Z: -1}, Dist: -lo.Z},
		}), nil
	})

	// -----------------------------------------------------------------------
	// (prism :sides 6 :radius 10 :height 5 :center (vec3 0 0 0))
	//
	// A right prism along Z whose side faces sit :radius from the axis.
	// -----------------------------------------------------------------------
	env.AddFunction("prism", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		sides, err := pa.floatArg("prism", "sides", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		if sides < 3 || sides != math.Trunc(sides) {
			return zygo.SexpNull, fmt.Errorf("prism: sides must be a whole number of at least 3, got %g", sides)
		}
		radius, err := pa.floatArg("prism", "radius", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		height, err := pa.floatArg("prism", "height", 0)
		if err != nil {
			return zygo.SexpNull, err
		}
		if radius <= 0 || height <= 0 {
			return zygo.SexpNull, fmt.Errorf("prism: radius and height must be positive")
		}
		center, _, err := pa.vecArg("prism", "center")
		if err != nil {
			return zygo.SexpNull, err
		}

		n := int(sides)
		planes := make([]geom.Plane, 0, n+2)
		for k := 0; k < n; k++ {
			a := 2 * math.Pi * float64(k) / float64(n)
			normal := v3.Vec{X: math.Cos(a), Y: math.Sin(a)}
			planes = append(planes, geom.PlaneFromPoint(normal, center.Add(normal.MulScalar(radius))))
		}
		planes = append(planes,
			geom.PlaneFromPoint(v3.Vec{Z: 1}, center.Add(v3.Vec{Z: height / 2})),
			geom.PlaneFromPoint(v3.Vec{Z: -1}, center.Sub(v3.Vec{Z: height / 2})),
		)
		return planesResult("prism", planes), nil
	})

	// -----------------------------------------------------------------------
	// (solid "name" :epsilon 1e-6 :clip (list "other") plane-or-list ...)
	// -----------------------------------------------------------------------
	env.AddFunction("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) < 1 {
			return zygo.SexpNull, fmt.Errorf("solid requires a name argument")
		}
		solidName, err := toString(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("solid: name: %w", err)
		}
		if solidName == "" {
			return zygo.SexpNull, fmt.Errorf("solid: name must not be empty")
		}
		if scene.Lookup(solidName) != nil {
			return zygo.SexpNull, fmt.Errorf("solid: %q already defined", solidName)
		}

		sol := &planeset.Solid{Name: solidName}
		if sol.Epsilon, err = pa.floatArg("solid", "epsilon", 0); err != nil {
			return zygo.SexpNull, err
		}
		if sol.Epsilon < 0 {
			return zygo.SexpNull, fmt.Errorf("solid: epsilon must not be negative")
		}
		if v, ok := pa.kw["clip"]; ok {
			items, err := sexpListToSlice(v)
			if err != nil {
				items = []zygo.Sexp{v}
			}
			for _, item := range items {
				ref, err := toSolidName(item)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("solid: clip: %w", err)
				}
				sol.Clip = append(sol.Clip, ref)
			}
		}
		for i, arg := range pa.positional[1:] {
			if sol.Planes, err = collectPlanes(arg, sol.Planes); err != nil {
				return zygo.SexpNull, fmt.Errorf("solid: argument %d: %w", i+1, err)
			}
		}
		if len(sol.Planes) == 0 {
			return zygo.SexpNull, fmt.Errorf("solid: %q has no planes", solidName)
		}

		scene.Add(sol)
		return &sexpSolidRef{name: solidName}, nil
	})

	// -----------------------------------------------------------------------
	// (planes-of "name")
	//
	// Registered as "planes_of"; the preprocessor rewrites the hyphen.
	// -----------------------------------------------------------------------
	env.AddFunction("planes_of", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("planes-of requires a solid name")
		}
		solidName, err := toSolidName(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("planes-of: %w", err)
		}
		sol := scene.Lookup(solidName)
		if sol == nil {
			return zygo.SexpNull, fmt.Errorf("planes-of: no solid named %q", solidName)
		}
		return planesResult("planes-of", append([]geom.Plane(nil), sol.Planes...)), nil
	})

	// -----------------------------------------------------------------------
	// (epsilon 1e-6)
	//
	// Sets the scene-wide on-plane tolerance.
	// -----------------------------------------------------------------------
	env.AddFunction("epsilon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("epsilon requires exactly 1 argument, got %d", len(args))
		}
		eps, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("epsilon: %w", err)
		}
		if eps < 0 {
			return zygo.SexpNull, fmt.Errorf("epsilon: must not be negative, got %g", eps)
		}
		scene.Epsilon = eps
		return &zygo.SexpFloat{Val: eps}, nil
	})
}
