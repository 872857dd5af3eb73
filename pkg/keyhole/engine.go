package keyhole

import (
	"fmt"
	"math"

	"github.com/chazu/keyhole/pkg/geom"
)

// Derived holds every length computed from the inputs, in mm.
type Derived struct {
	FrameWidthWithExtra  float64 `json:"frame_width_with_extra"`
	FrameHeightWithExtra float64 `json:"frame_height_with_extra"`
	HoleWidth            float64 `json:"hole_width"`
	HoleHeight           float64 `json:"hole_height"`
	SlotWidth            float64 `json:"slot_width"`
	// HoleToTopDistance is measured from the workpiece's top edge to the
	// top of the hole envelope.
	HoleToTopDistance float64 `json:"hole_to_top_distance"`
	// Cusp heights are measured from the insertion hole's centre up to
	// the shoulder where the hole arc meets the slot wall.
	CuspHeightCut     float64 `json:"cusp_height_cut"`
	CuspHeightEngrave float64 `json:"cusp_height_engrave"`
}

// Layout is the complete result of one computation. All coordinates are
// relative to the canvas origin at the top-left.
type Layout struct {
	Dimensions Dimensions `json:"dimensions"`
	Tolerances Tolerances `json:"tolerances"`
	Derived    Derived    `json:"derived"`
	Canvas     geom.Rect  `json:"canvas"`
	Outline    geom.Rect  `json:"outline"`
	Shelf      geom.Path  `json:"shelf"`
	Cut        geom.Path  `json:"cut"`
}

// Segment ranges, inclusive, of the interior curve within each path.
var (
	ShelfInterior = [2]int{4, 8}
	CutInterior   = [2]int{1, 5}
)

// CenterX returns the horizontal centre line of the slot.
func (l *Layout) CenterX() float64 {
	return l.Derived.FrameWidthWithExtra/2 + l.Tolerances.DocMargin
}

// Top returns the canvas y of the top of the hole envelope.
func (l *Layout) Top() float64 {
	return l.Derived.HoleToTopDistance + l.Tolerances.DocMargin
}

// RestCenter is where the nail centre sits once the frame is hung: the
// centre of the slot's rounded end.
func (l *Layout) RestCenter() geom.Vec2 {
	return geom.Vec2{X: l.CenterX(), Y: l.Top() + l.Derived.HoleWidth/2}
}

// HoleCenter is the centre of the insertion hole.
func (l *Layout) HoleCenter() geom.Vec2 {
	d := l.Derived
	return geom.Vec2{X: l.CenterX(), Y: l.Top() + d.HoleHeight - d.HoleWidth/2}
}

// Engine computes layouts with a fixed set of tolerances. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	tol Tolerances
}

// New returns an engine using tol.
func New(tol Tolerances) (*Engine, error) {
	if err := tol.Validate(); err != nil {
		return nil, err
	}
	return &Engine{tol: tol}, nil
}

// NewDefault returns an engine using DefaultTolerances.
func NewDefault() *Engine {
	return &Engine{tol: DefaultTolerances()}
}

// Tolerances returns the engine's tolerances.
func (e *Engine) Tolerances() Tolerances {
	return e.tol
}

// Compute derives the slot geometry with DefaultTolerances.
func Compute(d Dimensions) (*Layout, error) {
	return NewDefault().Compute(d)
}

// Compute derives the slot geometry for d.
//
// It fails with ErrInvalidDimension when an input is non-finite or not
// positive, and with ErrDegenerateGeometry when the inputs cannot form a
// slot. On failure no layout is returned.
func (e *Engine) Compute(d Dimensions) (*Layout, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	dv, err := derive(d, e.tol)
	if err != nil {
		return nil, err
	}

	l := &Layout{
		Dimensions: d,
		Tolerances: e.tol,
		Derived:    dv,
		Canvas: geom.Rect{
			Width:  dv.FrameWidthWithExtra + 2*e.tol.DocMargin,
			Height: dv.FrameHeightWithExtra + 2*e.tol.DocMargin,
		},
		Outline: geom.Rect{
			X:      e.tol.DocMargin,
			Y:      e.tol.DocMargin,
			Width:  dv.FrameWidthWithExtra,
			Height: dv.FrameHeightWithExtra,
		},
	}
	l.Cut = cutPath(l)
	l.Shelf = shelfPath(l)

	if errs := geom.Errors(append(geom.Validate("cut", l.Cut), geom.Validate("shelf", l.Shelf)...)); len(errs) > 0 {
		return nil, fmt.Errorf("keyhole: %w: %v", ErrDegenerateGeometry, errs[0])
	}
	return l, nil
}

// derive computes the derived lengths, rejecting inputs for which a cusp
// height would need the square root of a non-positive number.
func derive(d Dimensions, t Tolerances) (Derived, error) {
	var dv Derived
	dv.FrameWidthWithExtra = d.FrameWidth + t.ExtraFrameSize
	dv.FrameHeightWithExtra = d.FrameHeight + t.ExtraFrameSize

	dv.HoleWidth = d.NailHeadDiameter + 2*t.HeadClearance
	dv.HoleHeight = 2 * dv.HoleWidth
	dv.SlotWidth = d.NailShankDiameter + 2*t.ShankClearance

	if d.NailHeadDiameter <= d.NailShankDiameter {
		return dv, degenerate("nail_head_diameter", d.NailHeadDiameter,
			fmt.Sprintf("must exceed nail_shank_diameter %g", d.NailShankDiameter))
	}

	r := dv.HoleWidth / 2
	s := dv.SlotWidth / 2
	b := t.EngraveBleed

	cutRadicand := r*r - s*s
	if cutRadicand <= 0 {
		return dv, degenerate("slot_width", dv.SlotWidth,
			fmt.Sprintf("clearances leave the slot no narrower than hole_width %g", dv.HoleWidth))
	}
	if s-b <= 0 {
		return dv, degenerate("slot_width", dv.SlotWidth,
			fmt.Sprintf("too narrow for engrave_bleed %g", b))
	}
	engraveRadicand := (r-b)*(r-b) - (s-b)*(s-b)
	if engraveRadicand <= 0 {
		return dv, degenerate("hole_width", dv.HoleWidth,
			fmt.Sprintf("engrave_bleed %g leaves no shoulder", b))
	}

	if dv.HoleWidth > dv.FrameWidthWithExtra {
		return dv, degenerate("frame_width", d.FrameWidth,
			fmt.Sprintf("narrower than hole_width %g", dv.HoleWidth))
	}
	if dv.HoleHeight > dv.FrameHeightWithExtra {
		return dv, degenerate("frame_height", d.FrameHeight,
			fmt.Sprintf("shorter than hole_height %g", dv.HoleHeight))
	}

	// Short workpieces centre the hole instead of using the nominal offset.
	dv.HoleToTopDistance = math.Min(
		t.NailToTopDistance-dv.HoleWidth/2,
		(dv.FrameHeightWithExtra-dv.HoleHeight)/2,
	)
	if dv.HoleToTopDistance < 0 {
		return dv, degenerate("nail_head_diameter", d.NailHeadDiameter,
			fmt.Sprintf("hole would rise above the top edge at nail_to_top_distance %g", t.NailToTopDistance))
	}

	dv.CuspHeightCut = math.Sqrt(cutRadicand)
	dv.CuspHeightEngrave = math.Sqrt(engraveRadicand)
	return dv, nil
}

// interiorCurve traces the shoulder, slot and opposite shoulder, starting
// on the side of the insertion hole. bigR is the hole arc radius, smallR
// the slot end radius and cusp the shoulder height for those radii.
func interiorCurve(b *geom.Builder, dv Derived, bigR, smallR, cusp float64) {
	inward := dv.HoleWidth/2 - dv.SlotWidth/2
	wall := dv.HoleHeight - dv.HoleWidth

	b.CircularArcBy(bigR, false, false, -inward, -cusp)
	b.LineBy(0, cusp-wall)
	b.CircularArcBy(smallR, false, false, -2*smallR, 0)
	b.LineBy(0, wall-cusp)
	b.CircularArcBy(bigR, false, false, -inward, cusp)
}

// cutPath is the through-cut outline: insertion hole plus shank slot.
func cutPath(l *Layout) geom.Path {
	dv := l.Derived
	r := dv.HoleWidth / 2
	start := geom.Vec2{X: l.CenterX() + r, Y: l.Top() + dv.HoleHeight - r}

	var b geom.Builder
	b.MoveTo(start)
	interiorCurve(&b, dv, r, dv.SlotWidth/2, dv.CuspHeightCut)
	b.ArcTo(geom.ArcParams{RX: r, RY: r}, start)
	b.Close()
	return b.Path()
}

// shelfPath is the engraved pocket. It follows the hole envelope at the
// mouth and reaches EngraveBleed into the cut everywhere else.
func shelfPath(l *Layout) geom.Path {
	dv := l.Derived
	r := dv.HoleWidth / 2
	bleed := l.Tolerances.EngraveBleed

	var b geom.Builder
	b.MoveTo(geom.Vec2{X: l.CenterX() - r, Y: l.Top() + r})
	b.CircularArcBy(r, false, true, dv.HoleWidth, 0)
	b.LineBy(0, dv.HoleHeight-dv.HoleWidth)
	b.LineBy(-bleed, 0)
	interiorCurve(&b, dv, r-bleed, dv.SlotWidth/2-bleed, dv.CuspHeightEngrave)
	b.LineBy(-bleed, 0)
	b.Close()
	return b.Path()
}
