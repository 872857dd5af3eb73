package export

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/chazu/keyhole/pkg/geom"
	"github.com/chazu/keyhole/pkg/keyhole"
)

// DXF layer names.
const (
	LayerOutline = "OUTLINE"
	LayerCut     = "CUT"
	LayerEngrave = "ENGRAVE"
)

// layerColors follows the SVG document: cut lines red, engraving black.
// The outline is cut out of the stock, so it shares the cut colour.
var layerColors = map[string]color.ColorNumber{
	LayerOutline: color.Red,
	LayerCut:     color.Red,
	LayerEngrave: dxf.DefaultColor,
}

// DXFDrawing builds a drawing for l with each path on its own layer.
// DXF is y-up, so the canvas is flipped about its horizontal centre line;
// the drawing covers the same area as the SVG viewBox.
func DXFDrawing(l *keyhole.Layout) (*drawing.Drawing, error) {
	d := dxf.NewDrawing()
	flip := func(v geom.Vec2) geom.Vec2 { return geom.Vec2{X: v.X, Y: l.Canvas.Height - v.Y} }

	layers := []struct {
		name string
		path geom.Path
	}{
		{LayerOutline, outlinePath(l.Outline)},
		{LayerEngrave, l.Shelf},
		{LayerCut, l.Cut},
	}
	for _, ly := range layers {
		if _, err := d.AddLayer(ly.name, layerColors[ly.name], dxf.DefaultLineType, true); err != nil {
			return nil, fmt.Errorf("export: dxf layer %s: %w", ly.name, err)
		}
		if err := addPath(d, ly.path, flip); err != nil {
			return nil, fmt.Errorf("export: dxf layer %s: %w", ly.name, err)
		}
	}
	return d, nil
}

// WriteDXF writes the DXF drawing for l to path.
func WriteDXF(path string, l *keyhole.Layout) error {
	d, err := DXFDrawing(l)
	if err != nil {
		return err
	}
	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("export: writing dxf: %w", err)
	}
	return nil
}

// addPath draws p on the current layer. Lines become LINE entities and
// arcs become ARC entities; DXF arcs always run counter-clockwise, so
// clockwise arcs are emitted from their end angle.
func addPath(d *drawing.Drawing, p geom.Path, flip func(geom.Vec2) geom.Vec2) error {
	var err error
	p.Walk(func(i int, from, end geom.Vec2, s geom.Segment) {
		if err != nil || s.Kind == geom.MoveTo {
			return
		}
		a, b := flip(from), flip(end)
		if s.Kind == geom.ArcTo {
			c, ok := geom.CenterOf(from, end, s.Arc)
			if ok && math.Abs(c.RX-c.RY) < 1e-9 {
				center := flip(c.Center)
				start, stop := -c.Theta, -c.EndTheta()
				if c.Delta > 0 {
					start, stop = stop, start
				}
				_, err = d.Arc(center.X, center.Y, 0, c.RX, degrees(start), degrees(stop))
				return
			}
		}
		if from == end {
			return
		}
		_, err = d.Line(a.X, a.Y, 0, b.X, b.Y, 0)
	})
	return err
}

// degrees converts radians to degrees in [0, 360).
func degrees(rad float64) float64 {
	deg := math.Mod(rad*180/math.Pi, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
