// Package kernel defines the abstract geometry kernel interface.
// Implementations (exact, sdfx) turn plane sets into solids, intersect and
// move them, and produce triangle meshes. The kernel abstraction allows
// swapping backends without changing the rest of the system.
package kernel

import "github.com/chazu/polycut/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation. A nil Solid is the
// empty region.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Convex returns the region behind every plane, or nil when it is empty.
	Convex(planes []geom.Plane, eps float64) (Solid, error)

	// Intersection returns a ∩ b. Either operand may be nil.
	Intersection(a, b Solid) (Solid, error)

	// Translate moves a solid by (x, y, z).
	Translate(s Solid, x, y, z float64) Solid

	// ToMesh triangulates a solid. A nil solid gives an empty mesh.
	ToMesh(s Solid) (*Mesh, error)
}
