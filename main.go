// Command polycut builds convex polyhedra from half-space planes. Solids come
// from a YAML config file, a Lisp script, or both; each one is clipped to
// its planes, checked and summarized.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/chazu/polycut/pkg/config"
	"github.com/chazu/polycut/pkg/engine"
	"github.com/chazu/polycut/pkg/kernel"
	"github.com/chazu/polycut/pkg/kernel/exact"
	"github.com/chazu/polycut/pkg/kernel/sdfx"
	"github.com/chazu/polycut/pkg/planeset"
	"github.com/chazu/polycut/pkg/polyhedron"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "polycut:", err)
		}
		os.Exit(1)
	}
}

type options struct {
	config  string
	script  string
	kernel  string
	json    string
	verbose bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("polycut", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.config, "config", "", "YAML config file (default $"+config.EnvConfig+")")
	fs.StringVar(&o.script, "script", "", "Lisp script defining solids (overrides the config script)")
	fs.StringVar(&o.kernel, "kernel", "", "mesh kernel: exact or sdfx (default $"+config.EnvKernel+" or exact)")
	fs.StringVar(&o.json, "json", "", "write meshes as JSON to this file")
	fs.BoolVar(&o.verbose, "v", false, "log every cut at debug level")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	scene, err := cfg.ToScene()
	if err != nil {
		return err
	}

	script := opts.script
	if script == "" {
		script = cfg.ScriptPath()
	}
	if script != "" {
		if err := loadScript(scene, script, log); err != nil {
			return err
		}
	}
	if scene.Len() == 0 {
		return errors.New("nothing to build: give -config or -script")
	}

	kernelName := opts.kernel
	if kernelName == "" {
		kernelName = cfg.GetKernel()
	}
	k, err := newKernel(kernelName, cfg.GetMeshCells(), log)
	if err != nil {
		return err
	}

	result := NewAppWith(k, log).EvaluateScene(scene)
	for _, w := range result.Warnings {
		log.Warn(w.Message, "solid", w.Solid)
	}
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			log.Error(e.Message, "solid", e.Solid, "line", e.Line)
		}
		return fmt.Errorf("%d errors in scene", len(result.Errors))
	}

	polys, err := buildAll(ctx, scene, log)
	if err != nil {
		return err
	}
	triangles := make(map[string]int, len(result.Meshes))
	for _, m := range result.Meshes {
		triangles[m.PartName] = len(m.Indices) / 3
	}
	for i, p := range polys {
		name := scene.Order[i]
		if p == nil {
			fmt.Fprintf(stdout, "%s: empty\n", name)
			continue
		}
		fmt.Fprintf(stdout, "%s: %d vertices, %d edges, %d faces, volume %.6g, %d triangles\n",
			name, p.VertexCount(), p.EdgeCount(), p.FaceCount(), p.Volume(), triangles[name])
	}

	if opts.json != "" {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.json, data, 0o644); err != nil {
			return err
		}
	}
	return nil
}

// loadScript evaluates a Lisp script and appends its solids to scene. A
// script that sets epsilon overrides the scene default.
func loadScript(scene *planeset.Scene, path string, log *slog.Logger) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	s, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Error(e.Message, "file", path, "line", e.Line)
		}
		return fmt.Errorf("%s: %d evaluation errors", path, len(evalErrs))
	}
	if s.Epsilon != planeset.DefaultEpsilon {
		scene.Epsilon = s.Epsilon
	}
	s.Each(func(sol *planeset.Solid) bool {
		sol.Source.File = path
		return true
	})
	return scene.Merge(s)
}

func newKernel(name string, cells int, log *slog.Logger) (kernel.Kernel, error) {
	switch name {
	case config.KernelExact:
		return exact.New(log), nil
	case config.KernelSdfx:
		return sdfx.New(cells), nil
	}
	return nil, fmt.Errorf("unknown kernel %q", name)
}

// buildAll builds the polyhedron of every solid concurrently, in heap mode.
// The result is indexed like scene.Order; nil entries are empty solids.
func buildAll(ctx context.Context, scene *planeset.Scene, log *slog.Logger) ([]*polyhedron.Polyhedron, error) {
	out := make([]*polyhedron.Polyhedron, scene.Len())
	g, ctx := errgroup.WithContext(ctx)
	for i := range out {
		sol := scene.Get(i)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			eps := scene.EpsilonFor(sol)
			p, err := polyhedron.Build(planeset.Dedupe(scene.ClipPlanes(sol), eps), polyhedron.Options{
				Epsilon: eps,
				Logger:  log.With("solid", sol.Name),
			})
			if err != nil {
				return fmt.Errorf("solid %q: %w", sol.Name, err)
			}
			if p != nil {
				if problems := polyhedron.Validate(p, 1e3*eps); len(problems) > 0 {
					return fmt.Errorf("solid %q: %v", sol.Name, problems[0])
				}
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
