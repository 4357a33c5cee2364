package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Basis is an orthonormal local frame. The columns of M are the frame axes
// expressed in world coordinates.
type Basis struct {
	M mgl64.Mat3
}

// IdentityBasis returns the world frame.
func IdentityBasis() Basis {
	return Basis{M: mgl64.Ident3()}
}

// NewBasis builds a basis from three axis vectors.
func NewBasis(x, y, z Point) Basis {
	return Basis{M: mgl64.Mat3FromCols(ToMgl(x), ToMgl(y), ToMgl(z))}
}

// Axis returns column i of the basis.
func (b Basis) Axis(i int) Point {
	return FromMgl(b.M.Col(i))
}

// ToWorld maps a point expressed in the basis frame to world coordinates.
func (b Basis) ToWorld(p Point) Point {
	return FromMgl(b.M.Mul3x1(ToMgl(p)))
}

// ToLocal maps a world point into the basis frame.
func (b Basis) ToLocal(p Point) Point {
	return FromMgl(b.M.Transpose().Mul3x1(ToMgl(p)))
}

// Det returns the determinant: +1 for a right-handed frame, -1 otherwise.
func (b Basis) Det() float64 {
	return b.M.Det()
}

// Handed returns a right-handed copy of b, flipping the third axis when the
// frame is a reflection.
func (b Basis) Handed() Basis {
	if b.Det() >= 0 {
		return b
	}
	return NewBasis(b.Axis(0), b.Axis(1), b.Axis(2).MulScalar(-1))
}

// IsOrthonormal reports whether the columns are unit length and pairwise
// perpendicular within tol.
func (b Basis) IsOrthonormal(tol float64) bool {
	for i := 0; i < 3; i++ {
		a := b.M.Col(i)
		if math.Abs(a.Len()-1) > tol {
			return false
		}
		for j := i + 1; j < 3; j++ {
			if math.Abs(a.Dot(b.M.Col(j))) > tol {
				return false
			}
		}
	}
	return true
}

// HasAxis reports whether some column of b is parallel to dir, ignoring sign.
func (b Basis) HasAxis(dir Point, tol float64) bool {
	d := ToMgl(dir).Normalize()
	for i := 0; i < 3; i++ {
		if math.Abs(math.Abs(b.M.Col(i).Dot(d))-1) <= tol {
			return true
		}
	}
	return false
}
