package collision

import (
	"math"
	"testing"

	"github.com/chazu/collider/pkg/geom"
	"github.com/stretchr/testify/require"
)

// axisCross returns six points on the coordinate axes with the given half
// lengths; the set is symmetric about every axis.
func axisCross(x, y, z float64) geom.PointSet {
	return geom.PointSet{
		{X: x}, {X: -x},
		{Y: y}, {Y: -y},
		{Z: z}, {Z: -z},
	}
}

func rotateAll(ps geom.PointSet, euler geom.Point) geom.PointSet {
	tr := geom.Transform{Rotation: euler}
	out := make(geom.PointSet, len(ps))
	for i, p := range ps {
		out[i] = tr.Apply(p)
	}
	return out
}

func TestCovariance(t *testing.T) {
	cov := Covariance(axisCross(3, 1, 2))
	require.InDelta(t, 3.0, cov.At(0, 0), 1e-12)
	require.InDelta(t, 1.0/3, cov.At(1, 1), 1e-12)
	require.InDelta(t, 4.0/3, cov.At(2, 2), 1e-12)
	require.InDelta(t, 0.0, cov.At(0, 1), 1e-12)
}

func TestEstimateAxisOrder(t *testing.T) {
	b, err := Estimate(axisCross(3, 1, 2))
	require.NoError(t, err)
	require.True(t, b.IsOrthonormal(1e-9))

	// Ascending variance: Y (1/3), Z (4/3), X (3).
	require.True(t, b.HasAxis(geom.Point{Y: 1}, 1e-9))
	require.InDelta(t, 1.0, math.Abs(b.Axis(0).Y), 1e-9)
	require.InDelta(t, 1.0, math.Abs(b.Axis(1).Z), 1e-9)
	require.InDelta(t, 1.0, math.Abs(b.Axis(2).X), 1e-9)
}

func TestEstimateSymmetryAxis(t *testing.T) {
	euler := geom.Point{X: 0.3, Y: -0.2, Z: math.Pi / 6}
	ps := rotateAll(axisCross(5, 1, 2.5), euler)
	for i := range ps {
		ps[i] = ps[i].Add(geom.Point{X: 10, Y: -4, Z: 7})
	}

	b, err := Estimate(ps)
	require.NoError(t, err)
	require.True(t, b.IsOrthonormal(1e-9))

	major := geom.Transform{Rotation: euler}.Apply(geom.Point{X: 1})
	require.True(t, b.HasAxis(major, 1e-9), "major axis %v not in basis", major)
	require.InDelta(t, 1.0, math.Abs(b.Axis(2).Dot(major)), 1e-9)
}

func TestEstimateCoplanarIsAccepted(t *testing.T) {
	b, err := Estimate(geom.PointSet{{}, {X: 2}, {Y: 1}, {X: 2, Y: 1}})
	require.NoError(t, err)
	// The plane normal has zero variance and comes first.
	require.InDelta(t, 1.0, math.Abs(b.Axis(0).Z), 1e-9)
}

func TestEstimateErrors(t *testing.T) {
	tests := []struct {
		name    string
		ps      geom.PointSet
		wantErr error
	}{
		{"empty", geom.PointSet{}, ErrEmptyInput},
		{"two points", geom.PointSet{{}, {X: 1}}, ErrDegenerateInput},
		{"coincident", geom.PointSet{{X: 1}, {X: 1}, {X: 1}}, ErrDegenerateInput},
		{"collinear", geom.PointSet{{}, {X: 1, Y: 1, Z: 1}, {X: 2, Y: 2, Z: 2}, {X: -4, Y: -4, Z: -4}}, ErrDegenerateInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Estimate(tt.ps)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}
