package engine

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/chazu/polycut/pkg/planeset"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(plane :dist 5)`,
			expect: `(plane "__kw_dist" 5)`,
		},
		{
			name:   "multiple keywords",
			input:  `(prism :sides 6 :height 2)`,
			expect: `(prism "__kw_sides" 6 "__kw_height" 2)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "backtick string preserved",
			input:  "`raw :kw planes-of`",
			expect: "`raw :kw planes-of`",
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(planes-of :clip-by ref)`,
			expect: `(planes_of "__kw_clip-by" ref)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(vec3 -1 0 -2.5)`,
			expect: `(vec3 -1 0 -2.5)`,
		},
		{
			name:   "exponent preserved",
			input:  `(epsilon 1e-6)`,
			expect: `(epsilon 1e-6)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
		{
			name:   "escaped quote in string",
			input:  `"a \" :b" :c`,
			expect: `"a \" :b" "__kw_c"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q)\n  got:    %q\n  expect: %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Builtin evaluation helpers
// ---------------------------------------------------------------------------

func evalScene(t *testing.T, source string) *planeset.Scene {
	t.Helper()
	scene, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("unexpected eval errors: %v", evalErrs)
	}
	if scene == nil {
		t.Fatal("expected non-nil scene")
	}
	return scene
}

func evalFails(t *testing.T, source, want string) {
	t.Helper()
	scene, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected eval error, got fatal: %v", err)
	}
	if scene != nil {
		t.Fatal("expected nil scene on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if !strings.Contains(evalErrs[0].Message, want) {
		t.Errorf("error %q does not mention %q", evalErrs[0].Message, want)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func planeEq(p geom.Plane, n v3.Vec, d float64) bool {
	return approx(p.Normal.X, n.X) && approx(p.Normal.Y, n.Y) && approx(p.Normal.Z, n.Z) && approx(p.Dist, d)
}

// ---------------------------------------------------------------------------
// Builtins
// ---------------------------------------------------------------------------

func TestCuboidSolid(t *testing.T) {
	scene := evalScene(t, `
(solid "cube" (cuboid :min (vec3 -1 -1 -1) :max (vec3 1 1 1)))
`)
	sol := scene.Lookup("cube")
	if sol == nil {
		t.Fatal("solid \"cube\" not registered")
	}
	if len(sol.Planes) != 6 {
		t.Fatalf("expected 6 planes, got %d", len(sol.Planes))
	}
	for i, p := range sol.Planes {
		if !approx(p.Dist, 1) || !approx(p.Normal.Length(), 1) {
			t.Errorf("plane %d = %v, want unit normal at distance 1", i, p)
		}
	}
	if sol.Epsilon != 0 || len(sol.Clip) != 0 {
		t.Errorf("unexpected options on default solid: %+v", sol)
	}
}

func TestPlaneForms(t *testing.T) {
	scene := evalScene(t, `
(solid "p"
  (plane :normal (vec3 0 0 2) :dist 4)
  (plane :normal (vec3 1 0 0) :point (vec3 3 7 9))
  (flip (plane :normal (vec3 0 1 0) :dist 1)))
`)
	sol := scene.Lookup("p")
	if sol == nil || len(sol.Planes) != 3 {
		t.Fatalf("expected 3 planes, got %+v", sol)
	}
	if !planeEq(sol.Planes[0], v3.Vec{Z: 1}, 2) {
		t.Errorf("dist form not normalized: %v", sol.Planes[0])
	}
	if !planeEq(sol.Planes[1], v3.Vec{X: 1}, 3) {
		t.Errorf("point form = %v", sol.Planes[1])
	}
	if !planeEq(sol.Planes[2], v3.Vec{Y: -1}, -1) {
		t.Errorf("flip = %v", sol.Planes[2])
	}
}

func TestPrismPlanes(t *testing.T) {
	scene := evalScene(t, `
(solid "hex" (prism :sides 6 :radius 2 :height 4 :center (vec3 0 0 1)))
`)
	sol := scene.Lookup("hex")
	if sol == nil || len(sol.Planes) != 8 {
		t.Fatalf("expected 8 planes, got %+v", sol)
	}
	for i := 0; i < 6; i++ {
		p := sol.Planes[i]
		if !approx(p.Dist, 2) || !approx(p.Normal.Z, 0) {
			t.Errorf("side plane %d = %v", i, p)
		}
	}
	if !planeEq(sol.Planes[6], v3.Vec{Z: 1}, 3) {
		t.Errorf("top = %v", sol.Planes[6])
	}
	if !planeEq(sol.Planes[7], v3.Vec{Z: -1}, 1) {
		t.Errorf("bottom = %v", sol.Planes[7])
	}
}

func TestVariableReferenceAndTranslate(t *testing.T) {
	scene := evalScene(t, `
(def box (cuboid :min (vec3 0 0 0) :max (vec3 1 1 1)))
(solid "a" box)
(solid "b" (translate box (vec3 10 0 0)))
`)
	a := scene.Lookup("a")
	b := scene.Lookup("b")
	if a == nil || b == nil {
		t.Fatal("expected solids a and b")
	}
	// +X face moves out by 10, -X face moves in by 10.
	if !planeEq(b.Planes[0], v3.Vec{X: 1}, 11) {
		t.Errorf("translated +X = %v", b.Planes[0])
	}
	if !planeEq(b.Planes[1], v3.Vec{X: -1}, -10) {
		t.Errorf("translated -X = %v", b.Planes[1])
	}
	if !planeEq(a.Planes[0], v3.Vec{X: 1}, 1) {
		t.Errorf("source planes changed by translate: %v", a.Planes[0])
	}
}

func TestSolidOptionsAndClip(t *testing.T) {
	scene := evalScene(t, `
(epsilon 1e-6)
(def outer (solid "outer" (cuboid :min (vec3 -2 -2 -2) :max (vec3 2 2 2))))
(solid "inner" :epsilon 1e-3 :clip (list outer "outer")
  (planes-of "outer")
  (list (plane :normal (vec3 1 1 1) :dist 1)))
`)
	if !approx(scene.Epsilon, 1e-6) {
		t.Errorf("scene epsilon = %g", scene.Epsilon)
	}
	inner := scene.Lookup("inner")
	if inner == nil {
		t.Fatal("solid \"inner\" not registered")
	}
	if !approx(inner.Epsilon, 1e-3) {
		t.Errorf("solid epsilon = %g", inner.Epsilon)
	}
	if len(inner.Clip) != 2 || inner.Clip[0] != "outer" || inner.Clip[1] != "outer" {
		t.Errorf("clip = %v", inner.Clip)
	}
	if len(inner.Planes) != 7 {
		t.Errorf("expected 7 planes, got %d", len(inner.Planes))
	}
	if got := scene.Order; len(got) != 2 || got[0] != "outer" || got[1] != "inner" {
		t.Errorf("order = %v", got)
	}
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"vec3 non-number", `(vec3 1 "a" 2)`, "expected number"},
		{"plane missing normal", `(plane :dist 1)`, "requires :normal"},
		{"plane zero normal", `(plane :normal (vec3 0 0 0) :dist 1)`, "non-zero"},
		{"plane dist and point", `(plane :normal (vec3 0 0 1) :dist 1 :point (vec3 0 0 0))`, "not both"},
		{"cuboid inverted", `(cuboid :min (vec3 1 0 0) :max (vec3 0 1 1))`, "below max"},
		{"cuboid missing", `(cuboid :min (vec3 0 0 0))`, "requires :min and :max"},
		{"prism sides", `(prism :sides 2 :radius 1 :height 1)`, "at least 3"},
		{"prism radius", `(prism :sides 4 :radius 0 :height 1)`, "positive"},
		{"solid without planes", `(solid "x")`, "no planes"},
		{"solid duplicate", `(solid "x" (cuboid :min (vec3 0 0 0) :max (vec3 1 1 1)))
(solid "x" (cuboid :min (vec3 0 0 0) :max (vec3 1 1 1)))`, "already defined"},
		{"solid bad plane", `(solid "x" 5)`, "expected plane"},
		{"planes-of unknown", `(planes-of "ghost")`, "no solid named"},
		{"negative epsilon", `(epsilon -1)`, "must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evalFails(t, tt.source, tt.want)
		})
	}
}

func TestEmptySourceStillWorks(t *testing.T) {
	scene := evalScene(t, "")
	if scene.Len() != 0 {
		t.Errorf("expected empty scene, got %d solids", scene.Len())
	}
}

func TestArithmeticStillWorks(t *testing.T) {
	scene := evalScene(t, `
(def h (* 2 1.5))
(solid "c" (cuboid :min (vec3 0 0 0) :max (vec3 h h h)))
`)
	sol := scene.Lookup("c")
	if sol == nil {
		t.Fatal("solid \"c\" not registered")
	}
	if !planeEq(sol.Planes[0], v3.Vec{X: 1}, 3) {
		t.Errorf("+X plane = %v", sol.Planes[0])
	}
}
