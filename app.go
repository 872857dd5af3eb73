package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/chazu/keyhole/pkg/engine"
	"github.com/chazu/keyhole/pkg/export"
	"github.com/chazu/keyhole/pkg/keyhole"
	"github.com/chazu/keyhole/pkg/kernel"
	"github.com/chazu/keyhole/pkg/kernel/sdfx"
	"github.com/chazu/keyhole/pkg/tessellate"
)

// colorPalette assigns distinct colors to preview parts.
var colorPalette = []string{
	"#C8A27A", "#7F8C8D", "#4A90D9", "#E67E22",
}

// FormValues are the four text inputs as typed, in mm.
type FormValues struct {
	FrameWidth        string `json:"frameWidth"`
	FrameHeight       string `json:"frameHeight"`
	NailHeadDiameter  string `json:"nailHeadDiameter"`
	NailShankDiameter string `json:"nailShankDiameter"`
}

// leadingNumber matches the numeric prefix of a field, so "12mm" reads as 12.
var leadingNumber = regexp.MustCompile(`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)`)

// parseLeadingFloat reads the number at the start of text, ignoring
// surrounding whitespace and any trailing unit or junk.
func parseLeadingFloat(text string) (float64, bool) {
	m := leadingNumber.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// parse converts the inputs, naming the first one without a leading number.
func (f FormValues) parse() (keyhole.Dimensions, error) {
	var d keyhole.Dimensions
	fields := []struct {
		label string
		text  string
		dst   *float64
	}{
		{"frame width", f.FrameWidth, &d.FrameWidth},
		{"frame height", f.FrameHeight, &d.FrameHeight},
		{"nail head diameter", f.NailHeadDiameter, &d.NailHeadDiameter},
		{"nail shank diameter", f.NailShankDiameter, &d.NailShankDiameter},
	}
	for _, fl := range fields {
		v, ok := parseLeadingFloat(fl.text)
		if !ok {
			return d, fmt.Errorf("%s: %q is not a number", fl.label, fl.text)
		}
		*fl.dst = v
	}
	return d, nil
}

// PreviewResult is returned to the frontend after every form change.
// When Error is set, SVG and Filename still hold the last valid output.
type PreviewResult struct {
	Generation uint64           `json:"generation"`
	SVG        string           `json:"svg"`
	Filename   string           `json:"filename"`
	Derived    *keyhole.Derived `json:"derived,omitempty"`
	Error      string           `json:"error,omitempty"`
	// Updated is false when the inputs could not be rendered.
	Updated bool `json:"updated"`
	// Stale is set when a newer preview started while this one rendered.
	Stale bool `json:"stale"`
}

// MeshData is the JSON-serializable mesh format sent to the frontend.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	PartName string    `json:"partName"`
	Color    string    `json:"color"`
}

// JobData summarises one job of an evaluated batch script.
type JobData struct {
	Name     string `json:"name"`
	Filename string `json:"filename"`
	SVG      string `json:"svg"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the result of evaluating a batch script.
type EvalResult struct {
	Jobs   []JobData       `json:"jobs"`
	Errors []EvalErrorData `json:"errors"`
}

// rendered is the last valid preview and the generation that produced it.
type rendered struct {
	gen    uint64
	layout *keyhole.Layout
	svg    string
}

// saveDialog asks the user where to write name; "" means cancelled.
type saveDialog func(ctx context.Context, name string) (string, error)

// App is the Wails backend. It exposes methods to the frontend via bindings.
type App struct {
	ctx     context.Context
	keys    *keyhole.Engine
	scripts *engine.Engine
	kernel  kernel.Kernel
	preview tessellate.Options
	save    saveDialog

	mu         sync.Mutex
	generation uint64
	last       *rendered
}

// NewApp creates an App with default tolerances and the sdfx kernel.
func NewApp() *App {
	return &App{
		keys:    keyhole.NewDefault(),
		scripts: engine.NewEngine(),
		kernel:  sdfx.NewWithCells(120),
		preview: tessellate.DefaultOptions(),
		save:    wailsSaveDialog,
	}
}

// startup is called by Wails on app startup. The context is saved
// so we can call Wails runtime methods later.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

func wailsSaveDialog(ctx context.Context, name string) (string, error) {
	return runtime.SaveFileDialog(ctx, runtime.SaveDialogOptions{
		Title:           "Save keyhole",
		DefaultFilename: name,
		Filters: []runtime.FileFilter{
			{DisplayName: "SVG (*.svg)", Pattern: "*.svg"},
		},
	})
}

// Preview re-renders the slot for the current form inputs. Inputs that do
// not parse, or that the engine rejects, leave the last valid output in
// place.
func (a *App) Preview(form FormValues) PreviewResult {
	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	res := PreviewResult{Generation: gen}
	fail := func(err error) PreviewResult {
		res.Error = err.Error()
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.last != nil {
			res.SVG = a.last.svg
			res.Filename = export.Filename(a.last.layout.Dimensions, "svg")
		}
		return res
	}

	d, err := form.parse()
	if err != nil {
		return fail(err)
	}
	l, err := a.keys.Compute(d)
	if err != nil {
		return fail(err)
	}
	svg, err := export.SVG(l)
	if err != nil {
		log.Printf("Preview svg error: %v", err)
		return fail(err)
	}

	res.SVG = string(svg)
	res.Filename = export.Filename(d, "svg")
	res.Derived = &l.Derived
	res.Updated = true

	a.mu.Lock()
	defer a.mu.Unlock()
	res.Stale = gen != a.generation
	// A newer generation that failed leaves this one as the newest valid
	// render; only a newer valid render replaces it.
	if a.last == nil || gen > a.last.gen {
		a.last = &rendered{gen: gen, layout: l, svg: res.SVG}
	}
	return res
}

// Mesh tessellates the last valid preview with the nail in place.
func (a *App) Mesh() ([]MeshData, error) {
	l := a.lastLayout()
	if l == nil {
		return []MeshData{}, nil
	}
	opts := a.preview
	opts.Nail = true
	meshes, err := tessellate.Tessellate(l, a.kernel, opts)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		return nil, err
	}

	out := make([]MeshData, 0, len(meshes))
	for i, m := range meshes {
		out = append(out, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			PartName: m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return out, nil
}

// errNothingToExport is returned by Export before any valid preview.
var errNothingToExport = errors.New("no valid keyhole to export yet")

// Export asks where to save the last valid SVG and writes it there. It
// returns the chosen path, or "" if the dialog was cancelled.
func (a *App) Export() (string, error) {
	a.mu.Lock()
	last := a.last
	a.mu.Unlock()
	if last == nil {
		return "", errNothingToExport
	}

	path, err := a.save(a.ctx, export.Filename(last.layout.Dimensions, "svg"))
	if err != nil || path == "" {
		return "", err
	}
	if err := os.WriteFile(path, []byte(last.svg), 0o644); err != nil {
		log.Printf("Export error: %v", err)
		return "", err
	}
	log.Printf("Exported %s", path)
	return path, nil
}

// Evaluate runs a batch script and returns a preview of every job.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Jobs:   []JobData{},
		Errors: []EvalErrorData{},
	}

	b, evalErrs, err := a.scripts.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, superseded)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	for _, j := range b.Jobs {
		svg, err := export.SVG(j.Layout)
		if err != nil {
			log.Printf("Evaluate svg error: %v", err)
			result.Errors = append(result.Errors, EvalErrorData{Message: j.Name + ": " + err.Error()})
			continue
		}
		result.Jobs = append(result.Jobs, JobData{
			Name:     j.Name,
			Filename: j.Name + ".svg",
			SVG:      string(svg),
		})
	}
	return result
}

func (a *App) lastLayout() *keyhole.Layout {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.last == nil {
		return nil
	}
	return a.last.layout
}
