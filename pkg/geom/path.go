package geom

import "fmt"

// SegmentKind tags the variant held by a Segment.
type SegmentKind int

const (
	MoveTo SegmentKind = iota // start a contour at To
	LineTo                    // straight line to To
	ArcTo                     // elliptical arc to To, shaped by Arc
	Close                     // straight line back to the contour start
)

func (k SegmentKind) String() string {
	switch k {
	case MoveTo:
		return "move"
	case LineTo:
		return "line"
	case ArcTo:
		return "arc"
	case Close:
		return "close"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// ArcParams are the SVG endpoint-parameterised arc flags. Rotation is the
// x-axis rotation of the ellipse in degrees.
type ArcParams struct {
	RX       float64 `json:"rx"`
	RY       float64 `json:"ry"`
	Rotation float64 `json:"rotation"`
	LargeArc bool    `json:"large_arc"`
	Sweep    bool    `json:"sweep"`
}

// Segment is one drawing step. To is an absolute endpoint and is unused
// for Close. Arc is only meaningful for ArcTo.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	To   Vec2        `json:"to"`
	Arc  ArcParams   `json:"arc"`
}

// Path is an ordered list of segments forming one or more contours.
type Path struct {
	Segments []Segment `json:"segments"`
}

// Len returns the number of segments.
func (p Path) Len() int {
	return len(p.Segments)
}

// Start returns the point of the first MoveTo, or false if the path has none.
func (p Path) Start() (Vec2, bool) {
	for _, s := range p.Segments {
		if s.Kind == MoveTo {
			return s.To, true
		}
	}
	return Vec2{}, false
}

// Walk calls fn for every segment with the current point before the
// segment is drawn. For Close the segment's effective endpoint is passed
// as end; for other kinds end equals s.To.
func (p Path) Walk(fn func(i int, from, end Vec2, s Segment)) {
	var cur, start Vec2
	for i, s := range p.Segments {
		end := s.To
		switch s.Kind {
		case MoveTo:
			start = s.To
		case Close:
			end = start
		}
		fn(i, cur, end, s)
		cur = end
	}
}

// End returns the pen position after tracing every segment.
func (p Path) End() Vec2 {
	var end Vec2
	p.Walk(func(_ int, _, e Vec2, _ Segment) { end = e })
	return end
}

// Closed reports whether the path ends with Close and the trace returns to
// its starting point.
func (p Path) Closed() bool {
	n := len(p.Segments)
	if n == 0 || p.Segments[n-1].Kind != Close {
		return false
	}
	start, ok := p.Start()
	return ok && p.End() == start
}

// Vertices returns the explicit segment endpoints in order, including the
// contour start for Close.
func (p Path) Vertices() []Vec2 {
	out := make([]Vec2, 0, len(p.Segments))
	p.Walk(func(_ int, _, end Vec2, _ Segment) {
		out = append(out, end)
	})
	return out
}
