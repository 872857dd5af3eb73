// Package geom defines the planar path model used by the keyhole engine.
// A Path is an ordered, immutable sequence of tagged segments (MoveTo,
// LineTo, ArcTo, Close) in millimetre coordinates with the origin at the
// top-left of the canvas and y growing downward, as in SVG.
package geom
