package polyhedron

import "errors"

var (
	// ErrContractViolation is returned when a cut cannot keep the boundary
	// graph a closed convex manifold. The usual causes are a non-convex
	// input polyhedron, or duplicate or degenerate planes together with an
	// epsilon that is wrong for the coordinate scale.
	ErrContractViolation = errors.New("convex manifold contract violated")

	// ErrInvalidInput is returned for malformed arguments: nil or released
	// polyhedra, non-finite planes, zero normals, negative epsilon.
	ErrInvalidInput = errors.New("invalid input")

	// ErrArenaBusy is returned when an Arena is requested while a previous
	// result built in it has not been released.
	ErrArenaBusy = errors.New("arena already in use")
)
