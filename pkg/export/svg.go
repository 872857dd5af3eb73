package export

import (
	"bytes"
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/chazu/keyhole/pkg/geom"
	"github.com/chazu/keyhole/pkg/keyhole"
)

// SVGOptions control the styling of the SVG document.
type SVGOptions struct {
	// Stroke is the colour laser software reads as "cut".
	Stroke      string
	StrokeWidth float64
	// Fill is the colour laser software reads as "engrave".
	Fill string
	// Precision is the number of decimals kept in path data.
	Precision int
	// Title, when set, is written as the document title.
	Title string
}

// DefaultSVGOptions returns red hairline cuts and black engraving.
func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Stroke:      "#f00",
		StrokeWidth: 0.1,
		Fill:        "#000",
		Precision:   6,
	}
}

// errWriter keeps the first write error so svgo's unchecked writes can
// still be reported.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// WriteSVG writes the document for l to w. The canvas is sized in mm and
// the viewBox is in the same mm units, so one user unit is one millimetre.
// The workpiece outline and the cut are stroked, the shelf is filled.
func WriteSVG(w io.Writer, l *keyhole.Layout, o SVGOptions) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	width, height := num(l.Canvas.Width), num(l.Canvas.Height)
	canvas.Startraw(
		fmt.Sprintf(`width="%smm"`, width),
		fmt.Sprintf(`height="%smm"`, height),
		fmt.Sprintf(`viewBox="0 0 %s %s"`, width, height),
	)
	if o.Title != "" {
		canvas.Title(o.Title)
	}

	stroked := fmt.Sprintf(`stroke="%s" stroke-width="%s" fill="%s" fill-opacity="0"`,
		o.Stroke, geom.FormatNumber(o.StrokeWidth, o.Precision), o.Fill)

	canvas.Gid("outline")
	canvas.Path(outlinePath(l.Outline).Data(o.Precision), stroked)
	canvas.Gend()

	canvas.Gid("shelf")
	canvas.Path(l.Shelf.Data(o.Precision), fmt.Sprintf(`fill="%s"`, o.Fill))
	canvas.Gend()

	canvas.Gid("cut")
	canvas.Path(l.Cut.Data(o.Precision), stroked)
	canvas.Gend()

	canvas.End()
	if ew.err != nil {
		return fmt.Errorf("export: writing svg: %w", ew.err)
	}
	return nil
}

// SVG returns the document for l with default styling.
func SVG(l *keyhole.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, l, DefaultSVGOptions()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// outlinePath traces r clockwise from its top-left corner.
func outlinePath(r geom.Rect) geom.Path {
	var b geom.Builder
	b.MoveTo(geom.Vec2{X: r.X, Y: r.Y})
	b.LineBy(r.Width, 0)
	b.LineBy(0, r.Height)
	b.LineBy(-r.Width, 0)
	b.Close()
	return b.Path()
}
