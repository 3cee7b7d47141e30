// Package config reads the polycut YAML configuration file. Every setting
// falls back to an environment variable and then to a default, so the file
// is optional.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/chazu/polycut/pkg/planeset"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load and the getters.
const (
	EnvConfig    = "POLYCUT_CONFIG"
	EnvEpsilon   = "POLYCUT_EPSILON"
	EnvKernel    = "POLYCUT_KERNEL"
	EnvMeshCells = "POLYCUT_MESH_CELLS"
)

// Kernel names accepted by the kernel setting.
const (
	KernelExact = "exact"
	KernelSdfx  = "sdfx"
)

// DefaultMeshCells is the marching cubes resolution used when neither the
// file nor the environment sets one.
const DefaultMeshCells = 64

// Config is the root of the configuration file.
type Config struct {
	Epsilon   float64       `yaml:"epsilon"`
	Kernel    string        `yaml:"kernel"`
	MeshCells int           `yaml:"mesh_cells"`
	Script    string        `yaml:"script"`
	Solids    []SolidConfig `yaml:"solids"`

	path  string
	lines []int
}

// SolidConfig describes one solid. Box is shorthand for the six planes of
// an axis-aligned box and is added before Planes.
type SolidConfig struct {
	Name    string        `yaml:"name"`
	Epsilon float64       `yaml:"epsilon"`
	Clip    []string      `yaml:"clip"`
	Box     *BoxConfig    `yaml:"box"`
	Planes  []PlaneConfig `yaml:"planes"`
}

// BoxConfig is an axis-aligned box given by its corners.
type BoxConfig struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

// PlaneConfig is a plane given by its outward normal and either its
// distance from the origin or a point on it.
type PlaneConfig struct {
	Normal [3]float64  `yaml:"normal"`
	Dist   *float64    `yaml:"dist"`
	Point  *[3]float64 `yaml:"point"`
}

func vec(a [3]float64) v3.Vec {
	return v3.Vec{X: a[0], Y: a[1], Z: a[2]}
}

// Plane converts the entry into a plane.
func (p PlaneConfig) Plane() (geom.Plane, error) {
	n := vec(p.Normal)
	if n.Length() == 0 {
		return geom.Plane{}, fmt.Errorf("normal must be non-zero")
	}
	switch {
	case p.Dist != nil && p.Point != nil:
		return geom.Plane{}, fmt.Errorf("give either dist or point, not both")
	case p.Point != nil:
		return geom.PlaneFromPoint(n, vec(*p.Point)), nil
	case p.Dist != nil:
		return geom.NewPlane(n, *p.Dist), nil
	}
	return geom.Plane{}, fmt.Errorf("plane needs dist or point")
}

// Planes returns the six planes of the box.
func (b BoxConfig) Planes() ([]geom.Plane, error) {
	lo, hi := vec(b.Min), vec(b.Max)
	if lo.X >= hi.X || lo.Y >= hi.Y || lo.Z >= hi.Z {
		return nil, fmt.Errorf("box min %v must be below max %v on every axis", b.Min, b.Max)
	}
	return []geom.Plane{
		{Normal: v3.Vec{X: 1}, Dist: hi.X},
		{Normal: v3.Vec{X: -1}, Dist: -lo.X},
		{Normal: v3.Vec{Y: 1}, Dist: hi.Y},
		{Normal: v3.Vec{Y: -1}, Dist: -lo.Y},
		{Normal: v3.Vec{Z: 1}, Dist: hi.Z},
		{Normal: v3.Vec{Z: -1}, Dist: -lo.Z},
	}, nil
}

// GetEpsilon returns the on-plane tolerance: config, then POLYCUT_EPSILON,
// then planeset.DefaultEpsilon.
func (c *Config) GetEpsilon() float64 {
	if c != nil && c.Epsilon > 0 {
		return c.Epsilon
	}
	if v := os.Getenv(EnvEpsilon); v != "" {
		if eps, err := strconv.ParseFloat(v, 64); err == nil && eps > 0 {
			return eps
		}
	}
	return planeset.DefaultEpsilon
}

// GetKernel returns the kernel backend name: config, then POLYCUT_KERNEL,
// then "exact".
func (c *Config) GetKernel() string {
	if c != nil && c.Kernel != "" {
		return c.Kernel
	}
	if v := os.Getenv(EnvKernel); v != "" {
		return v
	}
	return KernelExact
}

// GetMeshCells returns the sdfx marching cubes resolution: config, then
// POLYCUT_MESH_CELLS, then DefaultMeshCells.
func (c *Config) GetMeshCells() int {
	if c != nil && c.MeshCells > 0 {
		return c.MeshCells
	}
	if v := os.Getenv(EnvMeshCells); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultMeshCells
}

// ScriptPath returns the script path resolved against the config file's
// directory, or "" when no script is set.
func (c *Config) ScriptPath() string {
	if c == nil || c.Script == "" {
		return ""
	}
	if filepath.IsAbs(c.Script) || c.path == "" {
		return c.Script
	}
	return filepath.Join(filepath.Dir(c.path), c.Script)
}

// ToScene converts the configured solids into a scene. Solid names must be
// unique.
func (c *Config) ToScene() (*planeset.Scene, error) {
	s := planeset.New()
	s.Epsilon = c.GetEpsilon()
	if c == nil {
		return s, nil
	}
	for i, sc := range c.Solids {
		if sc.Name == "" {
			return nil, fmt.Errorf("config: solid %d: missing name", i)
		}
		if s.Lookup(sc.Name) != nil {
			return nil, fmt.Errorf("config: solid %q defined twice", sc.Name)
		}
		sol := &planeset.Solid{
			Name:    sc.Name,
			Epsilon: sc.Epsilon,
			Clip:    append([]string(nil), sc.Clip...),
			Source:  planeset.SourceRef{File: c.path},
		}
		if i < len(c.lines) {
			sol.Source.Line = c.lines[i]
		}
		if sc.Box != nil {
			planes, err := sc.Box.Planes()
			if err != nil {
				return nil, fmt.Errorf("config: solid %q: %w", sc.Name, err)
			}
			sol.Planes = planes
		}
		for j, pc := range sc.Planes {
			pl, err := pc.Plane()
			if err != nil {
				return nil, fmt.Errorf("config: solid %q plane %d: %w", sc.Name, j, err)
			}
			sol.Planes = append(sol.Planes, pl)
		}
		s.Add(sol)
	}
	return s, nil
}

// Load reads a YAML configuration file.
// If path == "", it falls back to POLYCUT_CONFIG and returns nil, nil when
// that is unset too.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfig)
		if path == "" {
			return nil, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	var cfg Config
	if len(root.Content) == 0 {
		return &cfg, nil
	}
	if err := root.Decode(&cfg); err != nil {
		return nil, err
	}
	cfg.lines = solidLines(root.Content[0])
	return &cfg, nil
}

// solidLines returns the source line of each entry of the solids sequence.
func solidLines(doc *yaml.Node) []int {
	if doc.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		if doc.Content[i].Value != "solids" {
			continue
		}
		seq := doc.Content[i+1]
		lines := make([]int, len(seq.Content))
		for j, n := range seq.Content {
			lines[j] = n.Line
		}
		return lines
	}
	return nil
}
