package geom

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl64"
)

// Point is a 3D coordinate.
type Point = v3.Vec

// PointSet is an ordered sequence of points. Order never affects results.
type PointSet []Point

// Bounds returns the axis-aligned bounding box of the set.
// An empty set yields the zero box.
func (ps PointSet) Bounds() sdf.Box3 {
	if len(ps) == 0 {
		return sdf.Box3{}
	}
	min, max := ps[0], ps[0]
	for _, p := range ps[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return sdf.Box3{Min: min, Max: max}
}

// Centroid returns the arithmetic mean of the set.
func (ps PointSet) Centroid() Point {
	var sum Point
	if len(ps) == 0 {
		return sum
	}
	for _, p := range ps {
		sum = sum.Add(p)
	}
	return sum.MulScalar(1 / float64(len(ps)))
}

// Diagonal returns the length of the bounding box diagonal.
func (ps PointSet) Diagonal() float64 {
	return ps.Bounds().Size().Length()
}

// Clone returns a copy that shares no storage with ps.
func (ps PointSet) Clone() PointSet {
	if ps == nil {
		return nil
	}
	out := make(PointSet, len(ps))
	copy(out, ps)
	return out
}

// Component returns the i'th coordinate (0=X, 1=Y, 2=Z).
func Component(p Point, i int) float64 {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// ApproxEqual reports whether a and b differ by at most tol on every axis.
func ApproxEqual(a, b Point, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol &&
		math.Abs(a.Y-b.Y) <= tol &&
		math.Abs(a.Z-b.Z) <= tol
}

// ToMgl converts a point to an mgl64 vector.
func ToMgl(p Point) mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// FromMgl converts an mgl64 vector to a point.
func FromMgl(v mgl64.Vec3) Point {
	return Point{X: v[0], Y: v[1], Z: v[2]}
}
