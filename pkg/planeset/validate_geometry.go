package planeset

import (
	"fmt"

	"github.com/chazu/polycut/pkg/geom"
)

// ---------------------------------------------------------------------------
// Tier 2: geometric warnings
// ---------------------------------------------------------------------------

// planeTol is the tolerance used to compare planes for the advisory checks.
const planeTol = 1e-9

// validateGeometry runs all Tier 2 checks. None of them block building: the
// clipper copes with redundant planes and returns an empty result for empty
// regions, but the findings usually point at a typo in the input.
func validateGeometry(s *Scene) []ValidationWarning {
	var warnings []ValidationWarning
	s.Each(func(sol *Solid) bool {
		warnings = append(warnings, validateDuplicatePlanes(sol)...)
		warnings = append(warnings, validateEmptySlabs(sol)...)
		warnings = append(warnings, validateBounded(s, sol)...)
		return true
	})
	return warnings
}

// validateDuplicatePlanes warns about planes that repeat an earlier plane.
func validateDuplicatePlanes(sol *Solid) []ValidationWarning {
	var warnings []ValidationWarning
	planes := normalized(sol.Planes)
	for i := range planes {
		for j := 0; j < i; j++ {
			if planes[i].ApproxEqual(planes[j], planeTol) {
				warnings = append(warnings, ValidationWarning{
					Solid:   sol.Name,
					Message: fmt.Sprintf("plane %d duplicates plane %d", i, j),
				})
				break
			}
		}
	}
	return warnings
}

// validateEmptySlabs warns about pairs of opposite parallel planes whose
// half-spaces do not overlap, which makes the whole solid empty.
func validateEmptySlabs(sol *Solid) []ValidationWarning {
	var warnings []ValidationWarning
	planes := normalized(sol.Planes)
	for i := range planes {
		for j := 0; j < i; j++ {
			f := planes[j].Flip()
			if !approxEqualNormal(planes[i], f) {
				continue
			}
			// Behind i means n·x <= d_i, behind j means n·x >= -d_j.
			if width := planes[i].Dist + planes[j].Dist; width < 0 {
				warnings = append(warnings, ValidationWarning{
					Solid:   sol.Name,
					Message: fmt.Sprintf("planes %d and %d face apart with a gap of %.6g; the solid is empty", j, i, -width),
				})
			}
		}
	}
	return warnings
}

// validateBounded warns when a solid and its clip references have too few
// planes to enclose a finite region. The clipper then returns a large box
// shaped chunk instead.
func validateBounded(s *Scene, sol *Solid) []ValidationWarning {
	if n := len(s.ClipPlanes(sol)); n > 0 && n < 4 {
		return []ValidationWarning{{
			Solid:   sol.Name,
			Message: fmt.Sprintf("%d planes cannot bound a finite region", n),
		}}
	}
	return nil
}

func normalized(planes []geom.Plane) []geom.Plane {
	out := make([]geom.Plane, len(planes))
	for i, p := range planes {
		out[i] = geom.NewPlane(p.Normal, p.Dist)
	}
	return out
}

func approxEqualNormal(p, q geom.Plane) bool {
	return p.Normal.Sub(q.Normal).Length() <= planeTol
}

// Dedupe returns planes with repeats removed, keeping the first occurrence.
// Planes are compared after normalization, within tol.
func Dedupe(planes []geom.Plane, tol float64) []geom.Plane {
	norm := normalized(planes)
	out := make([]geom.Plane, 0, len(planes))
	kept := make([]geom.Plane, 0, len(planes))
outer:
	for i, p := range norm {
		for _, k := range kept {
			if p.ApproxEqual(k, tol) {
				continue outer
			}
		}
		kept = append(kept, p)
		out = append(out, planes[i])
	}
	return out
}
