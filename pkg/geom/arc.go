package geom

import "math"

// ArcCenter is the centre parameterisation of an endpoint arc.
// Angles are in radians in canvas coordinates (y down), so a positive
// Delta turns clockwise on screen.
type ArcCenter struct {
	Center   Vec2
	RX, RY   float64
	Rotation float64 // radians
	Theta    float64 // start angle
	Delta    float64 // signed sweep
}

// Point returns the point of the arc at parameter angle theta.
func (c ArcCenter) Point(theta float64) Vec2 {
	cosPhi, sinPhi := math.Cos(c.Rotation), math.Sin(c.Rotation)
	x := c.RX * math.Cos(theta)
	y := c.RY * math.Sin(theta)
	return Vec2{
		X: c.Center.X + cosPhi*x - sinPhi*y,
		Y: c.Center.Y + sinPhi*x + cosPhi*y,
	}
}

// EndTheta returns the angle at the end of the arc.
func (c ArcCenter) EndTheta() float64 {
	return c.Theta + c.Delta
}

// CenterOf converts an arc from p0 to p1 into centre form following the
// SVG implementation notes: radii too small to span the chord are scaled
// up, and a zero-length chord or zero radius yields ok == false (the arc
// degenerates to a straight line).
func CenterOf(p0, p1 Vec2, a ArcParams) (c ArcCenter, ok bool) {
	rx, ry := math.Abs(a.RX), math.Abs(a.RY)
	if rx == 0 || ry == 0 || p0 == p1 {
		return ArcCenter{}, false
	}
	phi := a.Rotation * math.Pi / 180
	cosPhi, sinPhi := math.Cos(phi), math.Sin(phi)

	dx := (p0.X - p1.X) / 2
	dy := (p0.Y - p1.Y) / 2
	x1 := cosPhi*dx + sinPhi*dy
	y1 := -sinPhi*dx + cosPhi*dy

	lambda := (x1*x1)/(rx*rx) + (y1*y1)/(ry*ry)
	if lambda > 1 {
		s := math.Sqrt(lambda)
		rx *= s
		ry *= s
	}

	num := rx*rx*ry*ry - rx*rx*y1*y1 - ry*ry*x1*x1
	den := rx*rx*y1*y1 + ry*ry*x1*x1
	coef := 0.0
	if num > 0 && den > 0 {
		coef = math.Sqrt(num / den)
	}
	if a.LargeArc == a.Sweep {
		coef = -coef
	}
	cx1 := coef * rx * y1 / ry
	cy1 := coef * -ry * x1 / rx

	center := Vec2{
		X: cosPhi*cx1 - sinPhi*cy1 + (p0.X+p1.X)/2,
		Y: sinPhi*cx1 + cosPhi*cy1 + (p0.Y+p1.Y)/2,
	}

	ux, uy := (x1-cx1)/rx, (y1-cy1)/ry
	vx, vy := (-x1-cx1)/rx, (-y1-cy1)/ry
	theta := vecAngle(1, 0, ux, uy)
	delta := vecAngle(ux, uy, vx, vy)
	if !a.Sweep && delta > 0 {
		delta -= 2 * math.Pi
	} else if a.Sweep && delta < 0 {
		delta += 2 * math.Pi
	}

	return ArcCenter{
		Center:   center,
		RX:       rx,
		RY:       ry,
		Rotation: phi,
		Theta:    theta,
		Delta:    delta,
	}, true
}

func vecAngle(ux, uy, vx, vy float64) float64 {
	return math.Atan2(ux*vy-uy*vx, ux*vx+uy*vy)
}
