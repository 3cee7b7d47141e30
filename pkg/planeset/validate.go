package planeset

import "fmt"

// ValidationSeverity indicates whether a validation finding blocks building
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks building
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Solid    string             // which solid has the problem (empty if scene-level)
	Plane    int                // plane index within the solid, or -1
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	switch {
	case e.Solid == "":
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	case e.Plane >= 0:
		return fmt.Sprintf("[%s] solid %q plane %d: %s", e.Severity, e.Solid, e.Plane, e.Message)
	default:
		return fmt.Sprintf("[%s] solid %q: %s", e.Severity, e.Solid, e.Message)
	}
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	Solid   string
	Message string
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from both validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// Validate runs the Tier 1 structural checks and returns the findings. An
// empty slice means every solid can be handed to the clipper. Validate never
// mutates the scene.
func Validate(s *Scene) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateScene(s)...)
	errs = append(errs, validateNames(s)...)
	errs = append(errs, validatePlanes(s)...)
	errs = append(errs, validateClipRefs(s)...)
	return errs
}

// ValidateAll runs both tiers and separates errors from warnings.
func ValidateAll(s *Scene) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(s) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{Solid: e.Solid, Message: e.Message})
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Warnings = append(result.Warnings, validateGeometry(s)...)
	return result
}

func validateScene(s *Scene) []ValidationError {
	var errs []ValidationError
	if s.Epsilon < 0 {
		errs = append(errs, ValidationError{
			Plane:    -1,
			Message:  fmt.Sprintf("scene epsilon is %g, must not be negative", s.Epsilon),
			Severity: SeverityError,
		})
	}
	if len(s.Order) != len(s.Solids) {
		errs = append(errs, ValidationError{
			Plane:    -1,
			Message:  fmt.Sprintf("scene order lists %d solids but %d are defined", len(s.Order), len(s.Solids)),
			Severity: SeverityError,
		})
	}
	return errs
}

func validateNames(s *Scene) []ValidationError {
	var errs []ValidationError
	for key, sol := range s.Solids {
		if sol.Name == "" {
			errs = append(errs, ValidationError{
				Plane:    -1,
				Message:  "solid has an empty name",
				Severity: SeverityError,
			})
			continue
		}
		if key != sol.Name {
			errs = append(errs, ValidationError{
				Solid:    sol.Name,
				Plane:    -1,
				Message:  fmt.Sprintf("registered under name %q", key),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validatePlanes(s *Scene) []ValidationError {
	var errs []ValidationError
	s.Each(func(sol *Solid) bool {
		if len(sol.Planes) == 0 {
			errs = append(errs, ValidationError{
				Solid:    sol.Name,
				Plane:    -1,
				Message:  "solid has no planes",
				Severity: SeverityError,
			})
		}
		if sol.Epsilon < 0 {
			errs = append(errs, ValidationError{
				Solid:    sol.Name,
				Plane:    -1,
				Message:  fmt.Sprintf("epsilon is %g, must not be negative", sol.Epsilon),
				Severity: SeverityError,
			})
		}
		for i, p := range sol.Planes {
			switch {
			case !p.IsFinite():
				errs = append(errs, ValidationError{
					Solid:    sol.Name,
					Plane:    i,
					Message:  "plane has a non-finite component",
					Severity: SeverityError,
				})
			case p.Normal.Length() == 0:
				errs = append(errs, ValidationError{
					Solid:    sol.Name,
					Plane:    i,
					Message:  "plane normal is zero",
					Severity: SeverityError,
				})
			case !p.IsUnit(1e-6):
				errs = append(errs, ValidationError{
					Solid:    sol.Name,
					Plane:    i,
					Message:  fmt.Sprintf("plane normal has length %.6g and will be normalized", p.Normal.Length()),
					Severity: SeverityWarning,
				})
			}
		}
		return true
	})
	return errs
}

func validateClipRefs(s *Scene) []ValidationError {
	var errs []ValidationError
	s.Each(func(sol *Solid) bool {
		for _, name := range sol.Clip {
			switch {
			case name == sol.Name:
				errs = append(errs, ValidationError{
					Solid:    sol.Name,
					Plane:    -1,
					Message:  "solid clips against itself",
					Severity: SeverityError,
				})
			case s.Lookup(name) == nil:
				errs = append(errs, ValidationError{
					Solid:    sol.Name,
					Plane:    -1,
					Message:  fmt.Sprintf("clip references unknown solid %q", name),
					Severity: SeverityError,
				})
			}
		}
		return true
	})
	return errs
}
