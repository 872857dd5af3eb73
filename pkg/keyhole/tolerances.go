package keyhole

import "math"

// Tolerances are the process allowances applied to every slot, in mm.
// Clearances are radial: they are added on each side of a diameter.
type Tolerances struct {
	HeadClearance  float64 `json:"head_clearance"`
	ShankClearance float64 `json:"shank_clearance"`
	// NailToTopDistance is the desired distance from the frame's top edge
	// to the nail centre once hung. Short workpieces override it so the
	// hole is centred.
	NailToTopDistance float64 `json:"nail_to_top_distance"`
	DocMargin         float64 `json:"doc_margin"`
	// EngraveBleed is how far the engraved pocket reaches into the cut
	// area, so the two never meet on a zero-width edge.
	EngraveBleed float64 `json:"engrave_bleed"`
	// ExtraFrameSize pads the nominal frame width and height.
	ExtraFrameSize float64 `json:"extra_frame_size"`
}

// Default tolerance values.
const (
	DefaultHeadClearance     = 0.5
	DefaultShankClearance    = 0.1
	DefaultNailToTopDistance = 20.0
	DefaultDocMargin         = 10.0
	DefaultEngraveBleed      = 0.5
	DefaultExtraFrameSize    = 1.0
)

// DefaultTolerances returns the tolerances the slot was tuned with.
func DefaultTolerances() Tolerances {
	return Tolerances{
		HeadClearance:     DefaultHeadClearance,
		ShankClearance:    DefaultShankClearance,
		NailToTopDistance: DefaultNailToTopDistance,
		DocMargin:         DefaultDocMargin,
		EngraveBleed:      DefaultEngraveBleed,
		ExtraFrameSize:    DefaultExtraFrameSize,
	}
}

// Validate reports the first tolerance that is negative or non-finite.
func (t Tolerances) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"head_clearance", t.HeadClearance},
		{"shank_clearance", t.ShankClearance},
		{"nail_to_top_distance", t.NailToTopDistance},
		{"doc_margin", t.DocMargin},
		{"engrave_bleed", t.EngraveBleed},
		{"extra_frame_size", t.ExtraFrameSize},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			return &DimensionError{Field: f.name, Value: f.v, Reason: "must be finite and non-negative", Err: ErrInvalidTolerance}
		}
	}
	return nil
}
