package polyhedron

import (
	"math"

	"github.com/chazu/polycut/pkg/geom"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

const (
	// quadExtent is the minimum half-size of the square drawn on each plane.
	quadExtent = 1e4
	// boundsSlack pushes the clipping planes outward, relative to the quad
	// size, so polygons of the final faces survive rounding.
	boundsSlack = 1e-7
	// boundsMargin pads the box so its corners sit clear of every plane.
	boundsMargin = 1.0
)

// looseBounds returns a box that contains the intersection of the half-spaces.
// Each plane is represented by a large square that is clipped against every
// other plane; the surviving polygons are the candidate faces of the result,
// so their union bounds it. The second result is false when no polygon
// survives, which means the intersection is empty.
func looseBounds(planes []geom.Plane, eps float64) (sdf.Box3, bool) {
	extent := quadExtent
	for _, p := range planes {
		if d := 4 * math.Abs(p.Dist); d > extent {
			extent = d
		}
	}
	push := boundsSlack*extent + eps

	var box sdf.Box3
	found := false
	poly := make([]v3.Vec, 0, 16)
	scratch := make([]v3.Vec, 0, 16)
	for i, pi := range planes {
		poly = planeQuad(pi, extent, poly[:0])
		for j, pj := range planes {
			if i == j {
				continue
			}
			scratch = clipPolygon(poly, pj.Offset(push), scratch[:0])
			poly, scratch = scratch, poly
			if len(poly) < 3 {
				break
			}
		}
		if len(poly) < 3 {
			continue
		}
		for _, v := range poly {
			if !found {
				box = sdf.Box3{Min: v, Max: v}
				found = true
				continue
			}
			box.Min = box.Min.Min(v)
			box.Max = box.Max.Max(v)
		}
	}
	if !found {
		return sdf.Box3{}, false
	}
	m := boundsMargin + 10*eps
	pad := v3.Vec{X: m, Y: m, Z: m}
	return sdf.Box3{Min: box.Min.Sub(pad), Max: box.Max.Add(pad)}, true
}

// planeQuad appends the corners of a square of half-size extent lying on p.
func planeQuad(p geom.Plane, extent float64, dst []v3.Vec) []v3.Vec {
	c := p.Point()
	u, v := p.Basis()
	u = u.MulScalar(extent)
	v = v.MulScalar(extent)
	return append(dst,
		c.Sub(u).Sub(v),
		c.Add(u).Sub(v),
		c.Add(u).Add(v),
		c.Sub(u).Add(v),
	)
}

// clipPolygon appends the part of the convex polygon in that lies behind p.
func clipPolygon(in []v3.Vec, p geom.Plane, dst []v3.Vec) []v3.Vec {
	n := len(in)
	for i := 0; i < n; i++ {
		cur, next := in[i], in[(i+1)%n]
		dc, dn := p.Distance(cur), p.Distance(next)
		if dc <= 0 {
			dst = append(dst, cur)
		}
		if (dc < 0 && dn > 0) || (dc > 0 && dn < 0) {
			t := dc / (dc - dn)
			dst = append(dst, cur.Add(next.Sub(cur).MulScalar(t)))
		}
	}
	return dst
}
