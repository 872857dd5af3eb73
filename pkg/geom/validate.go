package geom

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// Severity distinguishes blocking problems from advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// ValidationError describes a problem found in a path or layout.
// Segment is -1 when the problem is not tied to one segment.
type ValidationError struct {
	Path     string
	Segment  int
	Message  string
	Severity Severity
}

func (e ValidationError) Error() string {
	if e.Segment >= 0 {
		return fmt.Sprintf("%s: %s segment %d: %s", e.Severity, e.Path, e.Segment, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Severity, e.Path, e.Message)
}

// Errors returns only the blocking entries of vs.
func Errors(vs []ValidationError) []ValidationError {
	return lo.Filter(vs, func(v ValidationError, _ int) bool {
		return v.Severity == SeverityError
	})
}

// Validate checks the structure of p. name is used to label findings.
func Validate(name string, p Path) []ValidationError {
	if len(p.Segments) == 0 {
		return []ValidationError{{
			Path:     name,
			Segment:  -1,
			Message:  "path has no segments",
			Severity: SeverityError,
		}}
	}

	var errs []ValidationError
	if p.Segments[0].Kind != MoveTo {
		errs = append(errs, ValidationError{
			Path:     name,
			Segment:  0,
			Message:  fmt.Sprintf("path starts with %s, want move", p.Segments[0].Kind),
			Severity: SeverityError,
		})
	}

	for i, s := range p.Segments {
		if s.Kind != Close && !s.To.Finite() {
			errs = append(errs, ValidationError{
				Path:     name,
				Segment:  i,
				Message:  fmt.Sprintf("non-finite endpoint %v", s.To),
				Severity: SeverityError,
			})
		}
		if s.Kind == ArcTo {
			if !(s.Arc.RX > 0) || !(s.Arc.RY > 0) || math.IsInf(s.Arc.RX, 0) || math.IsInf(s.Arc.RY, 0) {
				errs = append(errs, ValidationError{
					Path:     name,
					Segment:  i,
					Message:  fmt.Sprintf("arc radii (%.4f, %.4f) must be positive and finite", s.Arc.RX, s.Arc.RY),
					Severity: SeverityError,
				})
			}
		}
	}

	if !p.Closed() {
		errs = append(errs, ValidationError{
			Path:     name,
			Segment:  -1,
			Message:  "path is not closed",
			Severity: SeverityWarning,
		})
	}
	return errs
}
