package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestCircleDistance(t *testing.T) {
	k := New()
	c := k.Circle(10, 20, 5)

	tests := []struct {
		name string
		x, y float64
		want float64
	}{
		{"centre", 10, 20, -5},
		{"boundary", 15, 20, 0},
		{"outside", 10, 30, 5},
	}
	const tol = 1e-9
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Distance(tt.x, tt.y); math.Abs(got-tt.want) > tol {
				t.Errorf("Distance(%v, %v) = %f, want %f", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestRectMinCornerOrigin(t *testing.T) {
	k := New()
	r := k.Rect(10, 10, 20, 4)
	min, max := r.Bounds()

	const tol = 1e-9
	expectMin := [2]float64{10, 10}
	expectMax := [2]float64{30, 14}
	for i := 0; i < 2; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
	if d := r.Distance(20, 12); d >= 0 {
		t.Errorf("centre distance = %f, want negative", d)
	}
	if d := r.Distance(20, 16); math.Abs(d-2) > tol {
		t.Errorf("distance below rect = %f, want 2", d)
	}
}

func TestBooleans(t *testing.T) {
	k := New()
	a := k.Circle(0, 0, 5)
	b := k.Circle(6, 0, 5)

	u := k.Union(a, b)
	if u.Distance(-4, 0) >= 0 || u.Distance(10, 0) >= 0 {
		t.Error("union should contain both discs")
	}

	d := k.Difference(a, b)
	if d.Distance(-4, 0) >= 0 {
		t.Error("difference should keep the left part of a")
	}
	if d.Distance(3, 0) <= 0 {
		t.Error("difference should remove the overlap")
	}

	i := k.Intersection(a, b)
	if i.Distance(3, 0) >= 0 {
		t.Error("intersection should contain the overlap")
	}
	if i.Distance(-4, 0) <= 0 {
		t.Error("intersection should exclude points only in a")
	}
}

func TestTranslate(t *testing.T) {
	k := New()
	c := k.Translate(k.Circle(0, 0, 2), 100, 50)
	if d := c.Distance(100, 50); math.Abs(d+2) > 1e-9 {
		t.Errorf("translated centre distance = %f, want -2", d)
	}
}

func TestExtrudeBoundingBox(t *testing.T) {
	k := New()
	s := k.Extrude(k.Rect(0, 0, 40, 20), 0, 3)
	min, max := s.BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{0, 0, 0}
	expectMax := [3]float64{40, 20, 3}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected %f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestExtrudeSwapsReversedRange(t *testing.T) {
	k := New()
	min, max := k.Extrude(k.Circle(0, 0, 1), 5, 2).BoundingBox()
	if math.Abs(min[2]-2) > 0.01 || math.Abs(max[2]-5) > 0.01 {
		t.Errorf("z range = [%f, %f], want [2, 5]", min[2], max[2])
	}
}

func TestCutMesh(t *testing.T) {
	k := NewWithCells(48)
	plate := k.Extrude(k.Rect(0, 0, 30, 30), 0, 4)
	plateMesh, err := k.ToMesh(plate)
	if err != nil {
		t.Fatalf("ToMesh(plate) failed: %v", err)
	}
	if plateMesh.IsEmpty() {
		t.Fatal("plate mesh is empty")
	}

	holed := k.Cut(plate, k.Extrude(k.Circle(15, 15, 6), -1, 5))
	holedMesh, err := k.ToMesh(holed)
	if err != nil {
		t.Fatalf("ToMesh(holed) failed: %v", err)
	}
	if holedMesh.IsEmpty() {
		t.Fatal("holed mesh is empty")
	}
	if len(holedMesh.Vertices) != len(holedMesh.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(holedMesh.Vertices), len(holedMesh.Normals))
	}
	if len(holedMesh.Indices) != holedMesh.TriangleCount()*3 {
		t.Fatalf("indices length %d != triCount*3", len(holedMesh.Indices))
	}

	sd := unwrap3(holed)
	if d := sd.Evaluate(v3.Vec{X: 15, Y: 15, Z: 2}); d <= 0 {
		t.Errorf("distance at hole centre = %f, want outside", d)
	}
	if d := sd.Evaluate(v3.Vec{X: 3, Y: 3, Z: 2}); d >= 0 {
		t.Errorf("distance in plate body = %f, want inside", d)
	}

	// The hole shows up as an inner wall at radius 6 with nothing inside it.
	wall := false
	for i := 0; i+2 < len(holedMesh.Vertices); i += 3 {
		x, y, z := float64(holedMesh.Vertices[i]), float64(holedMesh.Vertices[i+1]), float64(holedMesh.Vertices[i+2])
		r := math.Hypot(x-15, y-15)
		if r < 5.5 {
			t.Fatalf("vertex (%f, %f, %f) lies inside the hole", x, y, z)
		}
		if math.Abs(r-6) < 0.3 && z > 0.5 && z < 3.5 {
			wall = true
		}
	}
	if !wall {
		t.Error("no mesh vertices on the hole wall")
	}
}

func TestJoinBoundingBox(t *testing.T) {
	k := New()
	a := k.Extrude(k.Circle(0, 0, 2), 0, 1)
	b := k.Extrude(k.Circle(0, 0, 0.5), -4, 0)
	min, max := k.Join(a, b).BoundingBox()
	if math.Abs(min[2]+4) > 0.01 || math.Abs(max[2]-1) > 0.01 {
		t.Errorf("z range = [%f, %f], want [-4, 1]", min[2], max[2])
	}
	if math.Abs(min[0]+2) > 0.01 || math.Abs(max[0]-2) > 0.01 {
		t.Errorf("x range = [%f, %f], want [-2, 2]", min[0], max[0])
	}
}

func TestNewWithCellsFloor(t *testing.T) {
	if k := NewWithCells(1); k.cells != 8 {
		t.Errorf("cells = %d, want 8", k.cells)
	}
}

func TestSaveSTL(t *testing.T) {
	k := NewWithCells(16)
	path := filepath.Join(t.TempDir(), "plate.stl")
	if err := k.SaveSTL(k.Extrude(k.Rect(0, 0, 10, 10), 0, 2), path); err != nil {
		t.Fatalf("SaveSTL failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("stl file is empty")
	}
}
