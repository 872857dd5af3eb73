// Package kernel defines the abstract geometry kernel used to reason about
// keyhole regions. Profiles are 2D signed-distance shapes in canvas
// coordinates; solids are extruded profiles used for workpiece previews.
// The sdfx subpackage provides the implementation.
package kernel

// Profile is an opaque handle to a 2D region.
type Profile interface {
	// Distance returns the signed distance from (x, y) to the boundary:
	// negative inside, zero on the boundary, positive outside.
	Distance(x, y float64) float64
	// Bounds returns the axis-aligned bounding box.
	Bounds() (min, max [2]float64)
}

// Solid is an opaque handle to a 3D solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds and combines profiles and solids.
type Kernel interface {
	// Profiles
	Circle(cx, cy, r float64) Profile
	Rect(x, y, w, h float64) Profile // (x, y) is the minimum corner

	// Boolean operations
	Union(a, b Profile) Profile
	Difference(a, b Profile) Profile
	Intersection(a, b Profile) Profile

	// Transforms
	Translate(p Profile, dx, dy float64) Profile

	// Solids
	Extrude(p Profile, z0, z1 float64) Solid
	Cut(a, b Solid) Solid
	Join(a, b Solid) Solid

	// Output
	ToMesh(s Solid) (*Mesh, error)
	SaveSTL(s Solid, path string) error
}
