// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"fmt"
	"os"

	"github.com/chazu/keyhole/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along
// the longest axis of a solid.
const DefaultMeshCells = 200

// sdfxProfile wraps an sdf.SDF2 to implement kernel.Profile.
type sdfxProfile struct {
	s sdf.SDF2
}

// Distance evaluates the signed distance field at (x, y).
func (p *sdfxProfile) Distance(x, y float64) float64 {
	return p.s.Evaluate(v2.Vec{X: x, Y: y})
}

// Bounds returns the axis-aligned bounding box.
func (p *sdfxProfile) Bounds() (min, max [2]float64) {
	bb := p.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel meshing at DefaultMeshCells.
func New() *SdfxKernel {
	return NewWithCells(DefaultMeshCells)
}

// NewWithCells returns a kernel meshing at the given resolution. Values
// below 8 are raised to 8.
func NewWithCells(cells int) *SdfxKernel {
	if cells < 8 {
		cells = 8
	}
	return &SdfxKernel{cells: cells}
}

func unwrap2(p kernel.Profile) sdf.SDF2 {
	return p.(*sdfxProfile).s
}

func wrap2(s sdf.SDF2) kernel.Profile {
	return &sdfxProfile{s: s}
}

func unwrap3(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

func wrap3(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

// Circle creates a disc of radius r centred on (cx, cy).
func (k *SdfxKernel) Circle(cx, cy, r float64) kernel.Profile {
	s, err := sdf.Circle2D(r)
	if err != nil {
		panic(fmt.Sprintf("sdfx.Circle2D: %v", err))
	}
	return wrap2(sdf.Transform2D(s, sdf.Translate2d(v2.Vec{X: cx, Y: cy})))
}

// Rect creates a rectangle with its minimum corner at (x, y).
// sdf.Box2D centres the box at the origin, so we translate by half-dimensions.
func (k *SdfxKernel) Rect(x, y, w, h float64) kernel.Profile {
	s := sdf.Box2D(v2.Vec{X: w, Y: h}, 0)
	m := sdf.Translate2d(v2.Vec{X: x + w/2, Y: y + h/2})
	return wrap2(sdf.Transform2D(s, m))
}

// Union returns the union of two profiles.
func (k *SdfxKernel) Union(a, b kernel.Profile) kernel.Profile {
	return wrap2(sdf.Union2D(unwrap2(a), unwrap2(b)))
}

// Difference returns the difference a - b.
func (k *SdfxKernel) Difference(a, b kernel.Profile) kernel.Profile {
	return wrap2(sdf.Difference2D(unwrap2(a), unwrap2(b)))
}

// Intersection returns the intersection of two profiles.
func (k *SdfxKernel) Intersection(a, b kernel.Profile) kernel.Profile {
	return wrap2(sdf.Intersect2D(unwrap2(a), unwrap2(b)))
}

// Translate moves a profile by (dx, dy).
func (k *SdfxKernel) Translate(p kernel.Profile, dx, dy float64) kernel.Profile {
	return wrap2(sdf.Transform2D(unwrap2(p), sdf.Translate2d(v2.Vec{X: dx, Y: dy})))
}

// Extrude sweeps a profile along Z between z0 and z1.
// sdf.Extrude3D centres the solid on z=0, so we shift it into place.
func (k *SdfxKernel) Extrude(p kernel.Profile, z0, z1 float64) kernel.Solid {
	if z1 < z0 {
		z0, z1 = z1, z0
	}
	s := sdf.Extrude3D(unwrap2(p), z1-z0)
	m := sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: (z0 + z1) / 2})
	return wrap3(sdf.Transform3D(s, m))
}

// Cut returns the solid difference a - b.
func (k *SdfxKernel) Cut(a, b kernel.Solid) kernel.Solid {
	return wrap3(sdf.Difference3D(unwrap3(a), unwrap3(b)))
}

// Join returns the solid union of a and b.
func (k *SdfxKernel) Join(a, b kernel.Solid) kernel.Solid {
	return wrap3(sdf.Union3D(unwrap3(a), unwrap3(b)))
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap3(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}

// SaveSTL renders a solid with marching cubes and writes it to path.
func (k *SdfxKernel) SaveSTL(s kernel.Solid, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("sdfx: replace %s: %w", path, err)
	}
	render.ToSTL(unwrap3(s), path, render.NewMarchingCubesUniform(k.cells))
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("sdfx: stl not written: %w", err)
	}
	return nil
}
