package collision

import (
	"math"
	"math/big"

	"github.com/chazu/collider/pkg/geom"
)

// orientErrBound scales the permanent of the orientation determinant into
// a bound on its floating point error. It is several times the worst case
// so the fast path never reports a wrong sign.
const orientErrBound = 1e-14

// orientation returns the sign of ((b-a)×(c-a))·(d-a): +1 when d lies above
// the plane of the counter-clockwise triangle abc, -1 below it and 0 on it.
// Results too close to zero for float64 are recomputed exactly.
func orientation(a, b, c, d geom.Point) int {
	bx, by, bz := b.X-a.X, b.Y-a.Y, b.Z-a.Z
	cx, cy, cz := c.X-a.X, c.Y-a.Y, c.Z-a.Z
	dx, dy, dz := d.X-a.X, d.Y-a.Y, d.Z-a.Z

	det := dx*(by*cz-bz*cy) + dy*(bz*cx-bx*cz) + dz*(bx*cy-by*cx)
	perm := math.Abs(dx)*(math.Abs(by*cz)+math.Abs(bz*cy)) +
		math.Abs(dy)*(math.Abs(bz*cx)+math.Abs(bx*cz)) +
		math.Abs(dz)*(math.Abs(bx*cy)+math.Abs(by*cx))

	bound := orientErrBound * perm
	switch {
	case det > bound:
		return 1
	case det < -bound:
		return -1
	}
	return orientationExact(a, b, c, d)
}

// orientationExact evaluates the orientation determinant in rational
// arithmetic. Coordinates must be finite.
func orientationExact(a, b, c, d geom.Point) int {
	sub := func(p, q float64) *big.Rat {
		x := new(big.Rat).SetFloat64(p)
		return x.Sub(x, new(big.Rat).SetFloat64(q))
	}
	mul := func(x, y *big.Rat) *big.Rat {
		return new(big.Rat).Mul(x, y)
	}

	bx, by, bz := sub(b.X, a.X), sub(b.Y, a.Y), sub(b.Z, a.Z)
	cx, cy, cz := sub(c.X, a.X), sub(c.Y, a.Y), sub(c.Z, a.Z)
	dx, dy, dz := sub(d.X, a.X), sub(d.Y, a.Y), sub(d.Z, a.Z)

	nx := new(big.Rat).Sub(mul(by, cz), mul(bz, cy))
	ny := new(big.Rat).Sub(mul(bz, cx), mul(bx, cz))
	nz := new(big.Rat).Sub(mul(bx, cy), mul(by, cx))

	det := mul(dx, nx)
	det.Add(det, mul(dy, ny))
	det.Add(det, mul(dz, nz))
	return det.Sign()
}

func finite(p geom.Point) bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
