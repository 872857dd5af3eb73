package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/keyhole/pkg/kernel/sdfx"
)

func refForm() FormValues {
	return FormValues{FrameWidth: "100", FrameHeight: "150", NailHeadDiameter: "8", NailShankDiameter: "2"}
}

// newTestApp returns an App with a coarse kernel and a scripted save dialog.
func newTestApp(savePath string) *App {
	app := NewApp()
	app.kernel = sdfx.NewWithCells(48)
	app.save = func(ctx context.Context, name string) (string, error) {
		return savePath, nil
	}
	return app
}

// TestE2EHallwayExample exercises the batch pipeline: script -> engine ->
// jobs -> SVG, the same path the Evaluate binding takes without the Wails
// runtime.
func TestE2EHallwayExample(t *testing.T) {
	app := NewApp()

	source, err := os.ReadFile("examples/hallway.keyhole")
	if err != nil {
		t.Fatalf("failed to read hallway.keyhole: %v", err)
	}

	result := app.Evaluate(string(source))
	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	want := []string{"mirror", "print-a4", "photo-block", "clock"}
	if len(result.Jobs) != len(want) {
		t.Fatalf("expected %d jobs, got %d", len(want), len(result.Jobs))
	}
	for i, j := range result.Jobs {
		if j.Name != want[i] {
			t.Errorf("job %d: name %q, want %q", i, j.Name, want[i])
		}
		if j.Filename != want[i]+".svg" {
			t.Errorf("job %d: filename %q", i, j.Filename)
		}
		if !strings.Contains(j.SVG, "<svg") {
			t.Errorf("job %q: no svg document", j.Name)
		}
	}
}

// TestE2EPreview ensures valid inputs render a document.
func TestE2EPreview(t *testing.T) {
	app := NewApp()
	res := app.Preview(refForm())

	if res.Error != "" {
		t.Fatalf("unexpected error: %s", res.Error)
	}
	if !res.Updated || res.Stale {
		t.Errorf("updated=%v stale=%v, want updated and current", res.Updated, res.Stale)
	}
	if res.Filename != "frame_100mm_x_150mm_nail_8mm_x_2mm.svg" {
		t.Errorf("filename = %q", res.Filename)
	}
	if res.Derived == nil || res.Derived.HoleToTopDistance != 15.5 {
		t.Errorf("derived = %+v", res.Derived)
	}
	if !strings.Contains(res.SVG, `viewBox="0 0 121 171"`) {
		t.Error("svg missing viewBox")
	}
}

// TestE2EMesh ensures the last preview tessellates into plate and nail.
func TestE2EMesh(t *testing.T) {
	app := newTestApp("")

	meshes, err := app.Mesh()
	if err != nil {
		t.Fatalf("Mesh before preview: %v", err)
	}
	if len(meshes) != 0 {
		t.Fatalf("expected no meshes before a preview, got %d", len(meshes))
	}

	app.Preview(FormValues{FrameWidth: "20", FrameHeight: "20", NailHeadDiameter: "8", NailShankDiameter: "2"})
	meshes, err = app.Mesh()
	if err != nil {
		t.Fatalf("Mesh failed: %v", err)
	}
	if len(meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(meshes))
	}
	for _, m := range meshes {
		if len(m.Vertices) == 0 || len(m.Indices) == 0 {
			t.Errorf("part %q: empty geometry", m.PartName)
		}
		if m.Color == "" {
			t.Errorf("part %q: no color assigned", m.PartName)
		}
	}
	if meshes[0].PartName != "plate" || meshes[1].PartName != "nail" {
		t.Errorf("parts = %q, %q", meshes[0].PartName, meshes[1].PartName)
	}
}

// TestE2EExport writes the last valid preview to the dialog's path.
func TestE2EExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	app := newTestApp(path)

	if _, err := app.Export(); !errors.Is(err, errNothingToExport) {
		t.Fatalf("Export before preview: %v, want errNothingToExport", err)
	}

	app.Preview(refForm())
	got, err := app.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if got != path {
		t.Errorf("Export returned %q, want %q", got, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `width="121mm"`) {
		t.Error("exported file is not the preview document")
	}
}

// TestE2EExportCancelled writes nothing when the dialog is dismissed.
func TestE2EExportCancelled(t *testing.T) {
	app := newTestApp("")
	app.Preview(refForm())

	got, err := app.Export()
	if err != nil || got != "" {
		t.Errorf("Export = %q, %v; want cancelled", got, err)
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp()
	result := app.Evaluate(`(keyhole "test"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Jobs) != 0 {
		t.Errorf("expected 0 jobs on error, got %d", len(result.Jobs))
	}
}
