// Package keyhole computes the geometry of a picture-frame keyhole slot.
//
// A keyhole lets a nail head pass through a wide insertion hole and slide
// into a narrower shank slot, where the head rests on an engraved shelf.
// Given the frame and nail dimensions, Compute derives every length of the
// slot and emits two closed paths in canvas coordinates: the engraved
// shelf (a filled pocket) and the through-cut contour. The computation is
// pure; a Layout is never mutated after it is returned.
package keyhole
