package geom

import (
	"github.com/deadsy/sdfx/sdf"
)

// Transform places local-frame geometry in the world. Rotation holds XYZ
// Euler angles in radians, applied X first, then Y, then Z. Translation is
// applied after rotation.
type Transform struct {
	Translation Point `json:"translation"`
	Rotation    Point `json:"rotation"`
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	return Transform{}
}

// EulerMatrix returns the rotation matrix for XYZ Euler angles.
func EulerMatrix(e Point) sdf.M44 {
	return sdf.RotateZ(e.Z).Mul(sdf.RotateY(e.Y)).Mul(sdf.RotateX(e.X))
}

// Matrix returns translation ∘ rotation as a 4x4 matrix.
func (t Transform) Matrix() sdf.M44 {
	return sdf.Translate3d(t.Translation).Mul(EulerMatrix(t.Rotation))
}

// Apply maps a local point into the world.
func (t Transform) Apply(p Point) Point {
	return t.Matrix().MulPosition(p)
}

// IsIdentity reports whether t has no translation and no rotation.
func (t Transform) IsIdentity() bool {
	return t == Transform{}
}
