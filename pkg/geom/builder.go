package geom

// Builder accumulates segments, tracking the current point so callers can
// describe a contour in relative steps the way SVG's lowercase commands do.
// The zero value is ready to use.
type Builder struct {
	segs []Segment
	cur  Vec2
}

// Current returns the pen position.
func (b *Builder) Current() Vec2 {
	return b.cur
}

// MoveTo starts a new contour at p.
func (b *Builder) MoveTo(p Vec2) *Builder {
	b.segs = append(b.segs, Segment{Kind: MoveTo, To: p})
	b.cur = p
	return b
}

// LineTo draws a line to p.
func (b *Builder) LineTo(p Vec2) *Builder {
	b.segs = append(b.segs, Segment{Kind: LineTo, To: p})
	b.cur = p
	return b
}

// LineBy draws a line by the offset (dx, dy).
func (b *Builder) LineBy(dx, dy float64) *Builder {
	return b.LineTo(b.cur.Add(Vec2{X: dx, Y: dy}))
}

// ArcTo draws an elliptical arc to p.
func (b *Builder) ArcTo(arc ArcParams, p Vec2) *Builder {
	b.segs = append(b.segs, Segment{Kind: ArcTo, To: p, Arc: arc})
	b.cur = p
	return b
}

// ArcBy draws an elliptical arc by the offset (dx, dy).
func (b *Builder) ArcBy(arc ArcParams, dx, dy float64) *Builder {
	return b.ArcTo(arc, b.cur.Add(Vec2{X: dx, Y: dy}))
}

// CircularArcBy is ArcBy for an unrotated circle of radius r.
func (b *Builder) CircularArcBy(r float64, largeArc, sweep bool, dx, dy float64) *Builder {
	return b.ArcBy(ArcParams{RX: r, RY: r, LargeArc: largeArc, Sweep: sweep}, dx, dy)
}

// Close returns to the start of the current contour.
func (b *Builder) Close() *Builder {
	for i := len(b.segs) - 1; i >= 0; i-- {
		if b.segs[i].Kind == MoveTo {
			b.cur = b.segs[i].To
			break
		}
	}
	b.segs = append(b.segs, Segment{Kind: Close})
	return b
}

// Path returns the accumulated path. The builder keeps no reference to the
// returned slice.
func (b *Builder) Path() Path {
	segs := make([]Segment, len(b.segs))
	copy(segs, b.segs)
	return Path{Segments: segs}
}
