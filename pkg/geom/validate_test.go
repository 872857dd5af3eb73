package geom

import (
	"math"
	"strings"
	"testing"
)

func TestValidateCleanPath(t *testing.T) {
	if errs := Validate("square", square()); len(errs) != 0 {
		t.Errorf("expected no findings, got %v", errs)
	}
}

func TestValidateFindings(t *testing.T) {
	tests := []struct {
		name     string
		path     Path
		contains string
		severity Severity
	}{
		{
			name:     "empty",
			path:     Path{},
			contains: "no segments",
			severity: SeverityError,
		},
		{
			name:     "starts with line",
			path:     Path{Segments: []Segment{{Kind: LineTo, To: Vec2{X: 1}}, {Kind: Close}}},
			contains: "want move",
			severity: SeverityError,
		},
		{
			name: "nan endpoint",
			path: Path{Segments: []Segment{
				{Kind: MoveTo},
				{Kind: LineTo, To: Vec2{X: math.NaN()}},
				{Kind: Close},
			}},
			contains: "non-finite",
			severity: SeverityError,
		},
		{
			name: "zero radius arc",
			path: Path{Segments: []Segment{
				{Kind: MoveTo},
				{Kind: ArcTo, To: Vec2{X: 1}, Arc: ArcParams{RX: 0, RY: 1}},
				{Kind: Close},
			}},
			contains: "radii",
			severity: SeverityError,
		},
		{
			name: "open",
			path: Path{Segments: []Segment{
				{Kind: MoveTo},
				{Kind: LineTo, To: Vec2{X: 1}},
			}},
			contains: "not closed",
			severity: SeverityWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.name, tt.path)
			found := false
			for _, e := range errs {
				if strings.Contains(e.Message, tt.contains) && e.Severity == tt.severity {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s containing %q, got %v", tt.severity, tt.contains, errs)
			}
		})
	}
}

func TestErrorsFiltersWarnings(t *testing.T) {
	vs := []ValidationError{
		{Path: "a", Segment: -1, Message: "x", Severity: SeverityWarning},
		{Path: "a", Segment: 2, Message: "y", Severity: SeverityError},
	}
	errs := Errors(vs)
	if len(errs) != 1 || errs[0].Message != "y" {
		t.Errorf("Errors() = %v, want only the error entry", errs)
	}
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{Path: "cut", Segment: 3, Message: "bad", Severity: SeverityError}
	if got := e.Error(); got != "error: cut segment 3: bad" {
		t.Errorf("Error() = %q", got)
	}
	e.Segment = -1
	if got := e.Error(); got != "error: cut: bad" {
		t.Errorf("Error() = %q", got)
	}
}
