package keyhole

import (
	"fmt"

	"github.com/chazu/keyhole/pkg/geom"
	"github.com/chazu/keyhole/pkg/kernel"
)

// Regions are the signed-distance shapes behind a layout's paths.
type Regions struct {
	// Cut is the through-cut area: insertion hole, slot and slot end.
	Cut kernel.Profile
	// Shelf is the engraved pocket.
	Shelf kernel.Profile
	// Envelope is the hole_width by hole_height stadium that the cut and
	// shelf fill between them.
	Envelope kernel.Profile
	// Outline is the workpiece rectangle.
	Outline kernel.Profile
}

// keyholeProfile is a disc of radius bigR at the hole centre joined by a
// slot of half-width smallR to a disc of radius smallR at the rest centre.
func keyholeProfile(k kernel.Kernel, l *Layout, bigR, smallR float64) kernel.Profile {
	h, s := l.HoleCenter(), l.RestCenter()
	slot := k.Rect(l.CenterX()-smallR, s.Y, 2*smallR, h.Y-s.Y)
	return k.Union(k.Union(k.Circle(h.X, h.Y, bigR), slot), k.Circle(s.X, s.Y, smallR))
}

// BuildRegions constructs the layout's regions with k.
func BuildRegions(l *Layout, k kernel.Kernel) Regions {
	dv := l.Derived
	r := dv.HoleWidth / 2
	s := dv.SlotWidth / 2
	bleed := l.Tolerances.EngraveBleed
	h, rest := l.HoleCenter(), l.RestCenter()

	cut := keyholeProfile(k, l, r, s)
	inset := keyholeProfile(k, l, r-bleed, s-bleed)

	envelope := k.Union(
		k.Union(k.Circle(rest.X, rest.Y, r), k.Circle(h.X, h.Y, r)),
		k.Rect(l.CenterX()-r, rest.Y, 2*r, h.Y-rest.Y),
	)
	upper := k.Rect(l.CenterX()-r, l.Top(), 2*r, h.Y-l.Top())
	shelf := k.Difference(k.Intersection(envelope, upper), inset)

	o := l.Outline
	return Regions{
		Cut:      cut,
		Shelf:    shelf,
		Envelope: envelope,
		Outline:  k.Rect(o.X, o.Y, o.Width, o.Height),
	}
}

// verifyEps is the slack allowed when classifying points against regions.
const verifyEps = 1e-6

// Verify checks a layout's paths against its regions:
//
//   - every cut point lies on the cut boundary;
//   - every shelf point lies within the hole envelope;
//   - the shelf's bleed-reduced interior curve lies within the cut, so the
//     engraving overlaps the cut;
//   - both paths stay inside the workpiece outline.
//
// A nil result means the layout passed.
func Verify(l *Layout, k kernel.Kernel) []geom.ValidationError {
	reg := BuildRegions(l, k)
	var errs []geom.ValidationError

	check := func(name string, pts []geom.Vec2, p kernel.Profile, ok func(d float64) bool, what string) {
		for _, pt := range pts {
			d := p.Distance(pt.X, pt.Y)
			if !ok(d) {
				errs = append(errs, geom.ValidationError{
					Path:     name,
					Segment:  -1,
					Message:  fmt.Sprintf("point %v %s (distance %.6f)", pt, what, d),
					Severity: geom.SeverityError,
				})
				return
			}
		}
	}
	onBoundary := func(d float64) bool { return d >= -verifyEps && d <= verifyEps }
	inside := func(d float64) bool { return d <= verifyEps }

	cutPts := l.Cut.Flatten(geom.DefaultArcStep)
	shelfPts := l.Shelf.Flatten(geom.DefaultArcStep)
	interior := l.Shelf.FlattenRange(ShelfInterior[0], ShelfInterior[1], geom.DefaultArcStep)

	check("cut", cutPts, reg.Cut, onBoundary, "is off the cut boundary")
	check("shelf", shelfPts, reg.Envelope, inside, "lies outside the hole envelope")
	check("shelf", interior, reg.Cut, inside, "of the interior curve lies outside the cut")
	check("cut", cutPts, reg.Outline, inside, "lies outside the workpiece")
	check("shelf", shelfPts, reg.Outline, inside, "lies outside the workpiece")
	return errs
}
