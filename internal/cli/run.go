package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/chazu/keyhole/pkg/engine"
	"github.com/chazu/keyhole/pkg/export"
	"github.com/chazu/keyhole/pkg/keyhole"
	"github.com/chazu/keyhole/pkg/kernel/sdfx"
	"github.com/chazu/keyhole/pkg/tessellate"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// Run executes the command with argv and returns the process exit code.
func Run(argv []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "keyhole: ", 0)

	fs := NewFlagSet("keyhole")
	fs.SetOutput(io.Discard)
	opts, err := ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(stdout, usageText(fs))
			return exitOK
		}
		logger.Print(err)
		fmt.Fprint(stderr, usageText(fs))
		return exitUsage
	}

	jobs, err := loadJobs(opts)
	if err != nil {
		logger.Print(err)
		return exitFail
	}

	code := exitOK
	for _, j := range jobs {
		if err := runJob(opts, j, stdout, logger); err != nil {
			logger.Printf("%s: %v", j.Name, err)
			code = exitFail
		}
	}
	return code
}

// loadJobs returns the single flag-described job or the jobs of the
// batch script.
func loadJobs(o Options) ([]engine.Job, error) {
	if o.Script == "" {
		eng, err := keyhole.New(o.Tolerances)
		if err != nil {
			return nil, err
		}
		l, err := eng.Compute(o.Dimensions)
		if err != nil {
			return nil, err
		}
		return []engine.Job{{Name: export.Stem(o.Dimensions), Layout: l}}, nil
	}

	src, err := os.ReadFile(o.Script)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	b, evalErrs, err := engine.NewEngine().Evaluate(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.Script, err)
	}
	if len(evalErrs) > 0 {
		return nil, fmt.Errorf("%s: %w", o.Script, evalErrs[0])
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("%s: script declares no keyhole jobs", o.Script)
	}
	return b.Jobs, nil
}

// runJob checks, reports and writes one job.
func runJob(o Options, j engine.Job, stdout io.Writer, logger *log.Logger) error {
	l := j.Layout
	if o.Print {
		printDerived(stdout, j)
	}
	if o.Verify {
		if errs := keyhole.Verify(l, sdfx.New()); len(errs) > 0 {
			for _, e := range errs {
				logger.Printf("%s: %v", j.Name, e)
			}
			return fmt.Errorf("verification failed with %d findings", len(errs))
		}
	}
	if o.DryRun {
		return nil
	}

	if err := os.MkdirAll(o.OutDir, 0o755); err != nil {
		return err
	}
	path := func(ext string) string { return filepath.Join(o.OutDir, filepath.Base(j.Name)+"."+ext) }

	for _, f := range o.Formats {
		var err error
		switch f {
		case "svg":
			err = writeSVG(path(f), l)
		case "dxf":
			err = export.WriteDXF(path(f), l)
		case "png":
			err = export.SavePNG(path(f), l, export.PNGOptions{PixelsPerMM: o.PixelsPerMM})
		case "stl":
			err = tessellate.SaveSTL(l, sdfx.NewWithCells(o.MeshCells), o.Preview, path(f))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, path(f))
	}
	return nil
}

func writeSVG(path string, l *keyhole.Layout) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	o := export.DefaultSVGOptions()
	o.Title = export.Stem(l.Dimensions)
	if err := export.WriteSVG(f, l, o); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printDerived(w io.Writer, j engine.Job) {
	d := j.Layout.Derived
	fmt.Fprintf(w, "%s\n", j.Name)
	rows := []struct {
		name string
		v    float64
	}{
		{"frame_width_with_extra", d.FrameWidthWithExtra},
		{"frame_height_with_extra", d.FrameHeightWithExtra},
		{"hole_width", d.HoleWidth},
		{"hole_height", d.HoleHeight},
		{"slot_width", d.SlotWidth},
		{"hole_to_top_distance", d.HoleToTopDistance},
		{"cusp_height_cut", d.CuspHeightCut},
		{"cusp_height_engrave", d.CuspHeightEngrave},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %-24s %.4f\n", r.name, r.v)
	}
}
