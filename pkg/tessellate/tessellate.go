// Package tessellate walks a plane-set scene and produces triangle meshes
// using a geometry kernel. One mesh is produced per non-empty solid.
package tessellate

import (
	"fmt"

	"github.com/chazu/polycut/pkg/kernel"
	"github.com/chazu/polycut/pkg/planeset"
)

// builder memoizes the unclipped convex solid of each scene solid, since a
// solid can be named in several clip lists.
type builder struct {
	scene  *planeset.Scene
	k      kernel.Kernel
	convex map[string]kernel.Solid
}

func newBuilder(s *planeset.Scene, k kernel.Kernel) *builder {
	return &builder{scene: s, k: k, convex: make(map[string]kernel.Solid)}
}

// convexOf returns the region behind sol's own planes.
func (b *builder) convexOf(sol *planeset.Solid) (kernel.Solid, error) {
	if s, ok := b.convex[sol.Name]; ok {
		return s, nil
	}
	s, err := b.k.Convex(sol.Planes, b.scene.EpsilonFor(sol))
	if err != nil {
		return nil, err
	}
	b.convex[sol.Name] = s
	return s, nil
}

// solid returns sol intersected with every solid it clips against. Clip
// references are not followed transitively.
func (b *builder) solid(sol *planeset.Solid) (kernel.Solid, error) {
	s, err := b.convexOf(sol)
	if err != nil {
		return nil, err
	}
	for _, name := range sol.Clip {
		if s == nil {
			return nil, nil
		}
		other := b.scene.Lookup(name)
		if other == nil {
			return nil, fmt.Errorf("clip references unknown solid %q", name)
		}
		if other == sol {
			continue
		}
		o, err := b.convexOf(other)
		if err != nil {
			return nil, fmt.Errorf("clip solid %q: %w", name, err)
		}
		if s, err = b.k.Intersection(s, o); err != nil {
			return nil, fmt.Errorf("clip by %q: %w", name, err)
		}
	}
	return s, nil
}

// Solid builds the kernel solid of the named scene solid with its clip
// references applied. A nil solid with a nil error means it is empty.
func Solid(s *planeset.Scene, k kernel.Kernel, name string) (kernel.Solid, error) {
	sol := s.Lookup(name)
	if sol == nil {
		return nil, fmt.Errorf("tessellate: no solid named %q", name)
	}
	out, err := newBuilder(s, k).solid(sol)
	if err != nil {
		return nil, fmt.Errorf("tessellate: solid %q: %w", name, err)
	}
	return out, nil
}

// Tessellate walks the scene in definition order and produces one triangle
// mesh per non-empty solid using the provided geometry kernel. The
// tessellator is read-only and never mutates the scene.
func Tessellate(s *planeset.Scene, k kernel.Kernel) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}

	b := newBuilder(s, k)
	var meshes []*kernel.Mesh
	var walkErr error
	s.Each(func(sol *planeset.Solid) bool {
		solid, err := b.solid(sol)
		if err != nil {
			walkErr = fmt.Errorf("tessellate: solid %q: %w", sol.Name, err)
			return false
		}
		if solid == nil {
			return true
		}
		mesh, err := k.ToMesh(solid)
		if err != nil {
			walkErr = fmt.Errorf("tessellate: ToMesh failed for solid %q: %w", sol.Name, err)
			return false
		}
		mesh.PartName = sol.Name
		meshes = append(meshes, mesh)
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return meshes, nil
}
