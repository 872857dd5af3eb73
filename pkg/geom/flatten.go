package geom

import (
	"math"

	"github.com/samber/lo"
)

// DefaultArcStep is the maximum angular step, in radians, used when arcs
// are approximated by polylines.
const DefaultArcStep = math.Pi / 90

// FlattenSegment approximates the segment drawn from `from` to `end` by a
// polyline. The returned points exclude `from` and always finish at `end`.
// MoveTo yields just its target.
func FlattenSegment(from, end Vec2, s Segment, step float64) []Vec2 {
	if s.Kind != ArcTo {
		return []Vec2{end}
	}
	c, ok := CenterOf(from, end, s.Arc)
	if !ok {
		return []Vec2{end}
	}
	if step <= 0 {
		step = DefaultArcStep
	}
	n := int(math.Ceil(math.Abs(c.Delta) / step))
	if n < 1 {
		n = 1
	}
	pts := make([]Vec2, 0, n)
	for i := 1; i < n; i++ {
		pts = append(pts, c.Point(c.Theta+c.Delta*float64(i)/float64(n)))
	}
	return append(pts, end)
}

// Flatten approximates the whole path by a polyline, starting with the
// first MoveTo target.
func (p Path) Flatten(step float64) []Vec2 {
	var out []Vec2
	p.Walk(func(i int, from, end Vec2, s Segment) {
		out = append(out, FlattenSegment(from, end, s, step)...)
	})
	return out
}

// FlattenRange flattens segments first..last inclusive. The starting pen
// position of segment first is included.
func (p Path) FlattenRange(first, last int, step float64) []Vec2 {
	var out []Vec2
	p.Walk(func(i int, from, end Vec2, s Segment) {
		if i < first || i > last {
			return
		}
		if i == first {
			out = append(out, from)
		}
		out = append(out, FlattenSegment(from, end, s, step)...)
	})
	return out
}

// Bounds returns the bounding rectangle of the flattened path.
func (p Path) Bounds(step float64) Rect {
	pts := p.Flatten(step)
	if len(pts) == 0 {
		return Rect{}
	}
	xs := lo.Map(pts, func(v Vec2, _ int) float64 { return v.X })
	ys := lo.Map(pts, func(v Vec2, _ int) float64 { return v.Y })
	minX, maxX := lo.Min(xs), lo.Max(xs)
	minY, maxY := lo.Min(ys), lo.Max(ys)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}
