package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/keyhole/pkg/export"
	"github.com/chazu/keyhole/pkg/keyhole"
)

// mmPerInch converts (inches n) to millimetres.
const mmPerInch = 25.4

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource rewrites script source before zygomys sees it:
//
//  1. :keyword becomes the string literal "__kw_keyword", so keywords need
//     no global symbol and never clash with user variables.
//
//  2. frame-width becomes frame_width outside strings and comments, since
//     zygomys reads a hyphen inside an identifier as subtraction.
//
//  3. ; line comments become // comments.
//
// String literals are copied through untouched.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		switch {
		case b[i] == '"':
			j := skipQuoted(b, i, '"', true)
			out = append(out, b[i:j]...)
			i = j
			continue

		case b[i] == '`':
			j := skipQuoted(b, i, '`', false)
			out = append(out, b[i:j]...)
			i = j
			continue

		case b[i] == ';':
			out = append(out, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
			continue

		case b[i] == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, b[i], b[i+1])
			i += 2
			continue

		case b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
			continue

		// A hyphen between identifier characters joins words; anywhere
		// else it is a minus sign.
		case b[i] == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++
			continue
		}
		out = append(out, b[i])
		i++
	}
	return string(out)
}

// skipQuoted returns the index just past the literal opening at b[i].
func skipQuoted(b []byte, i int, quote byte, escapes bool) int {
	j := i + 1
	for j < len(b) && b[j] != quote {
		if escapes && b[j] == '\\' && j+1 < len(b) {
			j += 2
			continue
		}
		j++
	}
	if j < len(b) {
		j++
	}
	return j
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpTolerances wraps keyhole.Tolerances so (tolerances ...) can be bound
// to a variable and passed to (keyhole ...).
type sexpTolerances struct {
	tol keyhole.Tolerances
}

func (t *sexpTolerances) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(tolerances :head-clearance %g :shank-clearance %g :nail-to-top %g :doc-margin %g :engrave-bleed %g :extra-frame-size %g)",
		t.tol.HeadClearance, t.tol.ShankClearance, t.tol.NailToTopDistance,
		t.tol.DocMargin, t.tol.EngraveBleed, t.tol.ExtraFrameSize)
}
func (t *sexpTolerances) Type() *zygo.RegisteredType { return nil }

// sexpJob is returned by (keyhole ...).
type sexpJob struct {
	name string
}

func (j *sexpJob) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(keyhole %q)", j.name)
}
func (j *sexpJob) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		switch {
		case ok && i+1 < len(args):
			result.kw[name] = args[i+1]
			i += 2
		case ok:
			// Trailing keyword with no value.
			result.kw[name] = zygo.SexpNull
			i++
		default:
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// unknown returns the first keyword in pa not in allowed.
func (pa kwArgs) unknown(allowed map[string]*float64) (string, bool) {
	for k := range pa.kw {
		if _, ok := allowed[k]; !ok {
			return k, true
		}
	}
	return "", false
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toTolerances extracts tolerances from a sexpTolerances.
func toTolerances(s zygo.Sexp) (keyhole.Tolerances, error) {
	if t, ok := s.(*sexpTolerances); ok {
		return t.tol, nil
	}
	return keyhole.Tolerances{}, fmt.Errorf("expected tolerances, got %T (%s)", s, s.SexpString(nil))
}

// readFloats assigns each keyword of pa named in fields to its target.
// Keywords not in fields are an error when strict is set.
func readFloats(fn string, pa kwArgs, fields map[string]*float64, strict bool) error {
	for name, dst := range fields {
		v, ok := pa.kw[name]
		if !ok {
			continue
		}
		f, err := toFloat64(v)
		if err != nil {
			return fmt.Errorf("%s: %s: %w", fn, name, err)
		}
		*dst = f
	}
	if strict {
		if k, ok := pa.unknown(fields); ok {
			return fmt.Errorf("%s: unknown keyword :%s", fn, k)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the batch builtins into a zygomys environment.
// Each (keyhole ...) call computes its layout immediately and appends a job
// to b, so a bad job fails the script at the line that declared it.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, b *Batch) {

	// -----------------------------------------------------------------------
	// (tolerances :head-clearance 0.5 :shank-clearance 0.1 :nail-to-top 20
	//             :doc-margin 10 :engrave-bleed 0.5 :extra-frame-size 1)
	// Omitted keywords keep their default.
	// -----------------------------------------------------------------------
	env.AddFunction("tolerances", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		tol := keyhole.DefaultTolerances()
		fields := map[string]*float64{
			"head-clearance":   &tol.HeadClearance,
			"shank-clearance":  &tol.ShankClearance,
			"nail-to-top":      &tol.NailToTopDistance,
			"doc-margin":       &tol.DocMargin,
			"engrave-bleed":    &tol.EngraveBleed,
			"extra-frame-size": &tol.ExtraFrameSize,
		}
		if err := readFloats("tolerances", pa, fields, true); err != nil {
			return zygo.SexpNull, err
		}
		if err := tol.Validate(); err != nil {
			return zygo.SexpNull, fmt.Errorf("tolerances: %w", err)
		}
		return &sexpTolerances{tol: tol}, nil
	})

	// -----------------------------------------------------------------------
	// (inches 0.5) => 12.7
	// -----------------------------------------------------------------------
	env.AddFunction("inches", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("inches: expected 1 argument, got %d", len(args))
		}
		f, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inches: %w", err)
		}
		return &zygo.SexpFloat{Val: f * mmPerInch}, nil
	})

	// -----------------------------------------------------------------------
	// (keyhole "hall-mirror" :frame-width 400 :frame-height 600
	//          :head 8 :shank 2 :tolerances tol)
	// The name is optional and defaults to the output file stem.
	// -----------------------------------------------------------------------
	env.AddFunction("keyhole", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		tol := keyhole.DefaultTolerances()
		if v, ok := pa.kw["tolerances"]; ok {
			t, err := toTolerances(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keyhole: tolerances: %w", err)
			}
			tol = t
			delete(pa.kw, "tolerances")
		}

		var d keyhole.Dimensions
		fields := map[string]*float64{
			"frame-width":  &d.FrameWidth,
			"frame-height": &d.FrameHeight,
			"head":         &d.NailHeadDiameter,
			"shank":        &d.NailShankDiameter,
		}
		if err := readFloats("keyhole", pa, fields, true); err != nil {
			return zygo.SexpNull, err
		}

		jobName := ""
		if len(pa.positional) > 0 {
			s, err := toString(pa.positional[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("keyhole: name: %w", err)
			}
			jobName = s
		}

		eng, err := keyhole.New(tol)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("keyhole: %w", err)
		}
		l, err := eng.Compute(d)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("keyhole: %w", err)
		}
		if jobName == "" {
			jobName = export.Stem(d)
		}
		if _, dup := b.Job(jobName); dup {
			return zygo.SexpNull, fmt.Errorf("keyhole: duplicate job %q", jobName)
		}

		b.Jobs = append(b.Jobs, Job{Name: jobName, Layout: l})
		return &sexpJob{name: jobName}, nil
	})
}
