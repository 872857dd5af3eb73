package export

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/llgcode/draw2d/draw2dimg"

	"github.com/chazu/keyhole/pkg/geom"
	"github.com/chazu/keyhole/pkg/keyhole"
)

// DefaultMaxPixels caps the raster size when PNGOptions.MaxPixels is zero.
// At four bytes per pixel this is a 200 MB image.
const DefaultMaxPixels = 50_000_000

// ErrRasterTooLarge is returned when a preview would exceed its pixel cap.
var ErrRasterTooLarge = errors.New("export: raster too large")

// PNGOptions control the raster preview.
type PNGOptions struct {
	PixelsPerMM float64
	// MaxPixels bounds width*height; zero means DefaultMaxPixels.
	MaxPixels int
}

// DefaultPNGOptions renders at 10 pixels per mm.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{PixelsPerMM: 10, MaxPixels: DefaultMaxPixels}
}

var (
	cutColor     = color.RGBA{R: 0xff, A: 0xff}
	engraveColor = color.RGBA{A: 0xff}
)

// Raster draws l on a white background, styled like the SVG document.
func Raster(l *keyhole.Layout, o PNGOptions) (*image.RGBA, error) {
	ppm := o.PixelsPerMM
	if !(ppm > 0) || math.IsInf(ppm, 0) {
		return nil, fmt.Errorf("export: pixels per mm must be positive, got %g", ppm)
	}
	limit := o.MaxPixels
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	wf := math.Ceil(l.Canvas.Width * ppm)
	hf := math.Ceil(l.Canvas.Height * ppm)
	if wf*hf > float64(limit) {
		return nil, fmt.Errorf("%w: %.0fx%.0f pixels exceeds %d", ErrRasterTooLarge, wf, hf, limit)
	}
	w, h := int(wf), int(hf)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	gc := draw2dimg.NewGraphicContext(img)
	gc.Scale(ppm, ppm)

	trace(gc, l.Shelf)
	gc.SetFillColor(engraveColor)
	gc.Fill()

	// Keep hairlines visible at any resolution.
	gc.SetLineWidth(math.Max(0.1, 1/ppm))
	gc.SetStrokeColor(cutColor)
	for _, p := range []geom.Path{outlinePath(l.Outline), l.Cut} {
		trace(gc, p)
		gc.Stroke()
	}
	return img, nil
}

// WritePNG encodes the raster preview of l to w.
func WritePNG(w io.Writer, l *keyhole.Layout, o PNGOptions) error {
	img, err := Raster(l, o)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encoding png: %w", err)
	}
	return nil
}

// SavePNG writes the raster preview of l to path.
func SavePNG(path string, l *keyhole.Layout, o PNGOptions) error {
	img, err := Raster(l, o)
	if err != nil {
		return err
	}
	if err := draw2dimg.SaveToPngFile(path, img); err != nil {
		return fmt.Errorf("export: writing png: %w", err)
	}
	return nil
}

// trace replaces the context's current path with the flattened p.
func trace(gc *draw2dimg.GraphicContext, p geom.Path) {
	gc.BeginPath()
	p.Walk(func(i int, from, end geom.Vec2, s geom.Segment) {
		switch s.Kind {
		case geom.MoveTo:
			gc.MoveTo(end.X, end.Y)
		case geom.Close:
			gc.Close()
		default:
			for _, pt := range geom.FlattenSegment(from, end, s, geom.DefaultArcStep) {
				gc.LineTo(pt.X, pt.Y)
			}
		}
	})
}
