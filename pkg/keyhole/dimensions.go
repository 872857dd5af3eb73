package keyhole

import "math"

// Dimensions are the user inputs, in mm.
type Dimensions struct {
	FrameWidth        float64 `json:"frame_width"`
	FrameHeight       float64 `json:"frame_height"`
	NailHeadDiameter  float64 `json:"nail_head_diameter"`
	NailShankDiameter float64 `json:"nail_shank_diameter"`
}

// Validate reports the first input that is non-finite or not positive.
// It does not check whether the inputs form a usable slot; Compute does.
func (d Dimensions) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"frame_width", d.FrameWidth},
		{"frame_height", d.FrameHeight},
		{"nail_head_diameter", d.NailHeadDiameter},
		{"nail_shank_diameter", d.NailShankDiameter},
	}
	for _, f := range fields {
		switch {
		case math.IsNaN(f.v) || math.IsInf(f.v, 0):
			return invalid(f.name, f.v, "must be finite")
		case f.v <= 0:
			return invalid(f.name, f.v, "must be positive")
		}
	}
	return nil
}
