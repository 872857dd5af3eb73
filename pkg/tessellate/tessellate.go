// Package tessellate turns a computed keyhole layout into triangle meshes
// of the finished workpiece, using a geometry kernel. One mesh is produced
// per part: the plate, and optionally the nail hanging in its slot.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/keyhole/pkg/keyhole"
	"github.com/chazu/keyhole/pkg/kernel"
)

// Part names set on the produced meshes.
const (
	PartPlate = "plate"
	PartNail  = "nail"
)

// ErrInvalidOptions reports a plate that cannot hold its pocket.
var ErrInvalidOptions = errors.New("tessellate: invalid options")

// Options describe the physical workpiece, in mm.
type Options struct {
	// Thickness of the plate the slot is cut into.
	Thickness float64
	// PocketDepth is how deep the shelf is engraved from the back face.
	PocketDepth float64
	// Nail adds a mesh of the nail resting at the top of the slot.
	Nail bool
}

// DefaultOptions returns a 3 mm plate with a 1.5 mm pocket.
func DefaultOptions() Options {
	return Options{Thickness: 3, PocketDepth: 1.5}
}

func (o Options) validate() error {
	switch {
	case !(o.Thickness > 0) || math.IsInf(o.Thickness, 0):
		return fmt.Errorf("%w: thickness %g must be positive", ErrInvalidOptions, o.Thickness)
	case !(o.PocketDepth > 0):
		return fmt.Errorf("%w: pocket depth %g must be positive", ErrInvalidOptions, o.PocketDepth)
	case o.PocketDepth >= o.Thickness:
		return fmt.Errorf("%w: pocket depth %g must be less than thickness %g", ErrInvalidOptions, o.PocketDepth, o.Thickness)
	}
	return nil
}

// Plate returns the workpiece solid: the outline extruded to the plate
// thickness with the cut removed all the way through and the shelf
// removed to the pocket depth. The back face is at z = Thickness.
func Plate(l *keyhole.Layout, k kernel.Kernel, o Options) (kernel.Solid, error) {
	if err := o.validate(); err != nil {
		return nil, err
	}
	reg := keyhole.BuildRegions(l, k)

	// Tools overshoot the faces they break through.
	over := o.Thickness / 10
	plate := k.Extrude(reg.Outline, 0, o.Thickness)
	plate = k.Cut(plate, k.Extrude(reg.Cut, -over, o.Thickness+over))
	plate = k.Cut(plate, k.Extrude(reg.Shelf, o.Thickness-o.PocketDepth, o.Thickness+over))
	return plate, nil
}

// nail is a shank through the slot end with its head seated on the
// pocket floor.
func nail(l *keyhole.Layout, k kernel.Kernel, o Options) kernel.Solid {
	rest := l.RestCenter()
	floor := o.Thickness - o.PocketDepth
	shank := k.Extrude(k.Circle(rest.X, rest.Y, l.Dimensions.NailShankDiameter/2), -2*o.Thickness, floor)
	head := k.Extrude(k.Circle(rest.X, rest.Y, l.Dimensions.NailHeadDiameter/2), floor, floor+o.PocketDepth/2)
	return k.Join(head, shank)
}

// Tessellate produces one mesh per part of the finished workpiece. The
// kernel's mesh resolution applies to each part.
func Tessellate(l *keyhole.Layout, k kernel.Kernel, o Options) ([]*kernel.Mesh, error) {
	if l == nil {
		return nil, nil
	}
	plate, err := Plate(l, k, o)
	if err != nil {
		return nil, err
	}

	parts := []struct {
		name  string
		solid kernel.Solid
	}{
		{PartPlate, plate},
	}
	if o.Nail {
		parts = append(parts, struct {
			name  string
			solid kernel.Solid
		}{PartNail, nail(l, k, o)})
	}

	var meshes []*kernel.Mesh
	for _, p := range parts {
		m, err := k.ToMesh(p.solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", p.name, err)
		}
		m.Name = p.name
		meshes = append(meshes, m)
	}
	return meshes, nil
}

// SaveSTL writes the plate of l to path.
func SaveSTL(l *keyhole.Layout, k kernel.Kernel, o Options, path string) error {
	plate, err := Plate(l, k, o)
	if err != nil {
		return err
	}
	if err := k.SaveSTL(plate, path); err != nil {
		return fmt.Errorf("tessellate: %w", err)
	}
	return nil
}
