package main

import (
	"log/slog"

	"github.com/chazu/polycut/pkg/engine"
	"github.com/chazu/polycut/pkg/kernel"
	"github.com/chazu/polycut/pkg/kernel/exact"
	"github.com/chazu/polycut/pkg/planeset"
	"github.com/chazu/polycut/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to solids.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the Lisp engine to a geometry kernel: source in, meshes out.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	log    *slog.Logger
}

// MeshData is the JSON-serializable mesh format written by -json.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error or warning.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Solid   string `json:"solid,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the exact kernel.
func NewApp() *App {
	return NewAppWith(exact.New(nil), nil)
}

// NewAppWith creates an App on the given kernel. A nil logger discards.
func NewAppWith(k kernel.Kernel, log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{
		engine: engine.NewEngine(),
		kernel: k,
		log:    log,
	}
}

// Evaluate takes Lisp source and returns mesh data + errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the Lisp source into a validated scene.
	res, err := a.engine.EvaluateAndValidate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Solid: w.Solid, Message: w.Message})
	}

	// Step 2: Convert eval errors to the output format.
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}
	return a.mesh(res.Scene, result)
}

// EvaluateScene meshes an already built scene, such as one read from a
// config file.
func (a *App) EvaluateScene(s *planeset.Scene) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
	vr := planeset.ValidateAll(s)
	for _, w := range vr.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{Solid: w.Solid, Message: w.Message})
	}
	if len(vr.Errors) > 0 {
		for _, e := range vr.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    s.SourceLine(e.Solid),
				Solid:   e.Solid,
				Message: e.Error(),
			})
		}
		return result
	}
	return a.mesh(s, result)
}

// mesh tessellates the scene and converts kernel meshes to MeshData.
func (a *App) mesh(s *planeset.Scene, result EvalResult) EvalResult {
	meshes, err := tessellate.Tessellate(s, a.kernel)
	if err != nil {
		a.log.Error("tessellate failed", "err", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		color := colorPalette[i%len(colorPalette)]
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.PartName,
			Color:    color,
		})
	}
	a.log.Debug("evaluated", "solids", s.Len(), "meshes", len(meshes))
	return result
}
