package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/keyhole/pkg/keyhole"
)

// Filename returns the download name for a slot with dimensions d, e.g.
// "frame_20mm_x_20mm_nail_8mm_x_2mm.svg". Numbers use the shortest
// decimal that round-trips.
func Filename(d keyhole.Dimensions, ext string) string {
	return Stem(d) + "." + strings.TrimPrefix(ext, ".")
}

// Stem is Filename without the extension.
func Stem(d keyhole.Dimensions) string {
	return fmt.Sprintf("frame_%smm_x_%smm_nail_%smm_x_%smm",
		num(d.FrameWidth), num(d.FrameHeight),
		num(d.NailHeadDiameter), num(d.NailShankDiameter))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
