// Package cli implements the keyhole command: flag parsing, job
// assembly and file output.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/chazu/keyhole/pkg/keyhole"
	"github.com/chazu/keyhole/pkg/kernel/sdfx"
	"github.com/chazu/keyhole/pkg/tessellate"
)

// Formats the command can write.
var knownFormats = []string{"svg", "dxf", "png", "stl"}

// Options is the parsed command line.
type Options struct {
	Dimensions keyhole.Dimensions
	Tolerances keyhole.Tolerances
	Preview    tessellate.Options

	Script      string
	OutDir      string
	Formats     []string
	PixelsPerMM float64
	MeshCells   int

	Verify bool
	Print  bool
	DryRun bool
}

// ErrUsage marks errors in the command line itself.
var ErrUsage = errors.New("usage")

// NewFlagSet returns the flag set for name with its usage text.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		_, _ = fmt.Fprintln(out, "Usage:")
		_, _ = fmt.Fprintf(out, "  %s -width W -height H -head D -shank d [options]\n", name)
		_, _ = fmt.Fprintf(out, "  %s -script jobs.keyhole [options]\n\n", name)
		_, _ = fmt.Fprintln(out, "All lengths are in mm. Options:")
		fs.PrintDefaults()
	}
	return fs
}

// ParseArgs parses argv into Options.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	o := Options{
		Tolerances: keyhole.DefaultTolerances(),
		Preview:    tessellate.DefaultOptions(),
	}
	var formats string

	fs.Float64Var(&o.Dimensions.FrameWidth, "width", 0, "frame width")
	fs.Float64Var(&o.Dimensions.FrameHeight, "height", 0, "frame height")
	fs.Float64Var(&o.Dimensions.NailHeadDiameter, "head", 0, "nail head diameter")
	fs.Float64Var(&o.Dimensions.NailShankDiameter, "shank", 0, "nail shank diameter")
	fs.StringVar(&o.Script, "script", "", "batch script describing several slots")

	fs.Float64Var(&o.Tolerances.HeadClearance, "head-clearance", o.Tolerances.HeadClearance, "radial clearance around the nail head")
	fs.Float64Var(&o.Tolerances.ShankClearance, "shank-clearance", o.Tolerances.ShankClearance, "radial clearance around the shank")
	fs.Float64Var(&o.Tolerances.NailToTopDistance, "nail-to-top", o.Tolerances.NailToTopDistance, "distance from the top edge to the hung nail")
	fs.Float64Var(&o.Tolerances.DocMargin, "margin", o.Tolerances.DocMargin, "document margin around the workpiece")
	fs.Float64Var(&o.Tolerances.EngraveBleed, "bleed", o.Tolerances.EngraveBleed, "overlap of the engraving into the cut")
	fs.Float64Var(&o.Tolerances.ExtraFrameSize, "extra", o.Tolerances.ExtraFrameSize, "padding added to the frame size")

	fs.StringVar(&o.OutDir, "out", ".", "output directory")
	fs.StringVar(&formats, "formats", "svg", "comma-separated output formats: "+strings.Join(knownFormats, ","))
	fs.Float64Var(&o.PixelsPerMM, "ppm", 10, "png resolution in pixels per mm")
	fs.Float64Var(&o.Preview.Thickness, "thickness", o.Preview.Thickness, "stl plate thickness")
	fs.Float64Var(&o.Preview.PocketDepth, "pocket", o.Preview.PocketDepth, "stl shelf pocket depth")
	fs.IntVar(&o.MeshCells, "cells", sdfx.DefaultMeshCells, "stl mesh resolution along the longest axis")

	fs.BoolVar(&o.Verify, "verify", false, "check the paths against the kernel regions before writing")
	fs.BoolVar(&o.Print, "print", false, "print the derived geometry")
	fs.BoolVar(&o.DryRun, "n", false, "compute and check only, write no files")

	if err := fs.Parse(argv); err != nil {
		return o, err
	}
	if fs.NArg() > 0 {
		return o, fmt.Errorf("%w: unexpected arguments %v", ErrUsage, fs.Args())
	}

	o.Formats = lo.Uniq(lo.FilterMap(strings.Split(formats, ","), func(f string, _ int) (string, bool) {
		f = strings.ToLower(strings.TrimSpace(f))
		return f, f != ""
	}))
	if bad, ok := lo.Find(o.Formats, func(f string) bool { return !lo.Contains(knownFormats, f) }); ok {
		return o, fmt.Errorf("%w: unknown format %q", ErrUsage, bad)
	}

	dimsSet := o.Dimensions != (keyhole.Dimensions{})
	switch {
	case o.Script != "" && dimsSet:
		return o, fmt.Errorf("%w: -script cannot be combined with dimension flags", ErrUsage)
	case o.Script == "" && !dimsSet:
		return o, fmt.Errorf("%w: give -width, -height, -head and -shank, or -script", ErrUsage)
	}
	return o, nil
}

// wants reports whether format f was requested.
func (o Options) wants(f string) bool {
	return lo.Contains(o.Formats, f)
}

// usageText renders fs's usage to a string.
func usageText(fs *flag.FlagSet) string {
	var b strings.Builder
	fs.SetOutput(&b)
	fs.Usage()
	fs.SetOutput(io.Discard)
	return b.String()
}
