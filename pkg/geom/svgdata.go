package geom

import (
	"strconv"
	"strings"
)

// FormatNumber renders v with at most prec decimals and no trailing zeros.
// Negative zero is printed as "0".
func FormatNumber(v float64, prec int) string {
	s := strconv.FormatFloat(v, 'f', prec, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Data renders the path as SVG path data using absolute commands.
// Identical paths always produce identical strings.
func (p Path) Data(prec int) string {
	var sb strings.Builder
	num := func(v float64) {
		sb.WriteByte(' ')
		sb.WriteString(FormatNumber(v, prec))
	}
	flag := func(b bool) {
		if b {
			sb.WriteString(" 1")
		} else {
			sb.WriteString(" 0")
		}
	}
	for i, s := range p.Segments {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch s.Kind {
		case MoveTo:
			sb.WriteByte('M')
			num(s.To.X)
			num(s.To.Y)
		case LineTo:
			sb.WriteByte('L')
			num(s.To.X)
			num(s.To.Y)
		case ArcTo:
			sb.WriteByte('A')
			num(s.Arc.RX)
			num(s.Arc.RY)
			num(s.Arc.Rotation)
			flag(s.Arc.LargeArc)
			flag(s.Arc.Sweep)
			num(s.To.X)
			num(s.To.Y)
		case Close:
			sb.WriteByte('Z')
		}
	}
	return sb.String()
}
