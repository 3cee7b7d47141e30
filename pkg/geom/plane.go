// Package geom holds the plane type shared by the polycut packages.
// Vectors are sdfx v3.Vec values so results can be handed straight to the
// sdfx kernel backend.
package geom

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Plane is an outward-facing half-space boundary. A point p is retained
// (behind the plane) when Normal·p - Dist <= 0.
type Plane struct {
	Normal v3.Vec  `json:"normal" yaml:"normal"`
	Dist   float64 `json:"dist" yaml:"dist"`
}

// NewPlane returns the plane with the given normal and distance, rescaled so
// the normal has unit length. A zero normal is returned unchanged.
func NewPlane(normal v3.Vec, dist float64) Plane {
	l := normal.Length()
	if l == 0 {
		return Plane{Normal: normal, Dist: dist}
	}
	return Plane{Normal: normal.DivScalar(l), Dist: dist / l}
}

// PlaneFromPoint returns the plane through point with the given outward normal.
func PlaneFromPoint(normal, point v3.Vec) Plane {
	n := normal.Normalize()
	return Plane{Normal: n, Dist: n.Dot(point)}
}

// Distance returns the signed distance from p to the plane. Positive values
// are in front of (outside) the plane.
func (p Plane) Distance(pt v3.Vec) float64 {
	return p.Normal.Dot(pt) - p.Dist
}

// Contains reports whether pt is behind the plane within tolerance eps.
func (p Plane) Contains(pt v3.Vec, eps float64) bool {
	return p.Distance(pt) <= eps
}

// Flip returns the plane facing the opposite way.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Neg(), Dist: -p.Dist}
}

// Translate returns the plane moved by offset.
func (p Plane) Translate(offset v3.Vec) Plane {
	return Plane{Normal: p.Normal, Dist: p.Dist + p.Normal.Dot(offset)}
}

// Offset returns the plane pushed outward by d.
func (p Plane) Offset(d float64) Plane {
	return Plane{Normal: p.Normal, Dist: p.Dist + d}
}

// Point returns the point on the plane closest to the origin.
func (p Plane) Point() v3.Vec {
	return p.Normal.MulScalar(p.Dist)
}

// IsFinite reports whether every component is a finite number.
func (p Plane) IsFinite() bool {
	for _, f := range []float64{p.Normal.X, p.Normal.Y, p.Normal.Z, p.Dist} {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// IsUnit reports whether the normal has unit length within tol.
func (p Plane) IsUnit(tol float64) bool {
	return math.Abs(p.Normal.Length()-1) <= tol
}

// ApproxEqual reports whether p and q describe the same half-space within tol.
func (p Plane) ApproxEqual(q Plane, tol float64) bool {
	return math.Abs(p.Normal.X-q.Normal.X) <= tol &&
		math.Abs(p.Normal.Y-q.Normal.Y) <= tol &&
		math.Abs(p.Normal.Z-q.Normal.Z) <= tol &&
		math.Abs(p.Dist-q.Dist) <= tol
}

// Basis returns two unit vectors spanning the plane, orthogonal to each
// other and to the normal. The normal must be non-zero.
func (p Plane) Basis() (u, v v3.Vec) {
	n := p.Normal.Normalize()
	// Pick the world axis least aligned with n to avoid a degenerate cross.
	a := v3.Vec{X: 1}
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	if ay <= ax && ay <= az {
		a = v3.Vec{Y: 1}
	} else if az <= ax && az <= ay {
		a = v3.Vec{Z: 1}
	}
	u = n.Cross(a).Normalize()
	v = n.Cross(u)
	return u, v
}

func (p Plane) String() string {
	return fmt.Sprintf("plane(%g %g %g | %g)", p.Normal.X, p.Normal.Y, p.Normal.Z, p.Dist)
}
