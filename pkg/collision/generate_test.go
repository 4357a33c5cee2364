package collision

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/chazu/collider/pkg/geom"
	"github.com/stretchr/testify/require"
)

func TestParseMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    Method
		wantErr bool
	}{
		{"convex", MethodConvex, false},
		{"box", MethodBox, false},
		{" Box ", MethodBox, false},
		{"sphere", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMethod(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidMethod)
				var me *InvalidMethodError
				require.True(t, errors.As(err, &me))
				require.Equal(t, tt.in, me.Method)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateInvalidMethod(t *testing.T) {
	res, err := Generate(geom.PointSet{{}}, Params{Method: "capsule"})
	require.Nil(t, res)
	require.ErrorIs(t, err, ErrInvalidMethod)
}

func TestGenerateEmpty(t *testing.T) {
	for _, m := range []Method{MethodConvex, MethodBox} {
		res, err := Generate(nil, Params{Method: m})
		require.Nil(t, res)
		require.ErrorIs(t, err, ErrEmptyInput)
	}
}

func TestGenerateBoxRoundTrip(t *testing.T) {
	ps := geom.PointSet{{}, {X: 2}, {Y: 2}, {Z: 2}}
	res, err := Generate(ps, Params{Method: MethodBox})
	require.NoError(t, err)
	require.Equal(t, MethodBox, res.Method)
	require.Equal(t, geom.Point{}, res.Min)
	require.Equal(t, geom.Point{X: 2, Y: 2, Z: 2}, res.Max)
	require.Equal(t, geom.Point{X: 1, Y: 1, Z: 1}, res.Transform.Translation)
	require.False(t, res.Transform.IsIdentity())
	require.Equal(t, geom.Point{}, res.Transform.Rotation)
	require.Equal(t, geom.Point{}, res.Mesh.Bounds().Center())
	require.True(t, res.Mesh.IsClosed())
}

func TestGenerateBoxFlatSelection(t *testing.T) {
	ps := geom.PointSet{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}
	res, err := Generate(ps, Params{Method: MethodBox, Oriented: true})
	require.NoError(t, err)
	require.InDelta(t, 0.0, res.Mesh.Bounds().Size().Z, 1e-12)
}

func TestGenerateBoxOffsetRotation(t *testing.T) {
	ps := geom.PointSet{{X: -0.5, Y: -0.5, Z: -0.5}, {X: 0.5, Y: 0.5, Z: 0.5}}
	res, err := Generate(ps, Params{
		Method:   MethodBox,
		Offset:   geom.Point{X: 1},
		Rotation: geom.Point{Z: math.Pi / 4},
	})
	require.NoError(t, err)
	require.True(t, geom.ApproxEqual(geom.Point{X: 1}, res.Transform.Translation, 1e-12))
	require.True(t, geom.ApproxEqual(geom.Point{}, res.Mesh.Bounds().Center(), 1e-12))
	// The rotation is baked: the footprint widens to the diagonal.
	require.InDelta(t, math.Sqrt2, res.Mesh.Bounds().Size().X, 1e-12)
	require.InDelta(t, 1.0, res.Mesh.Bounds().Size().Z, 1e-12)
}

func TestGenerateOrientedBox(t *testing.T) {
	euler := geom.Point{Z: math.Pi / 6, X: 0.2}
	rot := geom.Transform{Rotation: euler}
	center := geom.Point{X: 3, Y: -1, Z: 2}

	corners := BoxMesh(geom.Point{X: -2, Y: -1, Z: -0.5}, geom.Point{X: 2, Y: 1, Z: 0.5}).Vertices
	var ps geom.PointSet
	for _, c := range corners {
		ps = append(ps, rot.Apply(c).Add(center))
	}

	res, err := Generate(ps, Params{Method: MethodBox, Oriented: true})
	require.NoError(t, err)
	require.True(t, res.Basis.IsOrthonormal(1e-9))
	require.InDelta(t, 1.0, res.Basis.Det(), 1e-9)

	size := res.Max.Sub(res.Min)
	dims := []float64{size.X, size.Y, size.Z}
	sort.Float64s(dims)
	require.InDeltaSlice(t, []float64{1, 2, 4}, dims, 1e-9)

	require.True(t, geom.ApproxEqual(center, res.Transform.Translation, 1e-9))
	for _, v := range res.Mesh.Vertices {
		world := res.Transform.Apply(v)
		found := false
		for _, p := range ps {
			if geom.ApproxEqual(world, p, 1e-9) {
				found = true
				break
			}
		}
		require.True(t, found, "box vertex %v does not match an input corner", world)
	}
}

func TestGenerateConvexTetrahedron(t *testing.T) {
	ps := geom.PointSet{{}, {X: 1}, {Y: 1}, {Z: 1}}
	res, err := Generate(ps, Params{Method: MethodConvex, Offset: geom.Point{Z: 5}})
	require.NoError(t, err)
	require.Equal(t, MethodConvex, res.Method)
	require.Equal(t, 4, res.Mesh.VertexCount())
	require.Equal(t, 4, res.Mesh.FaceCount())
	require.True(t, res.Basis.IsOrthonormal(1e-9))
	require.True(t, geom.ApproxEqual(geom.Point{X: 0.5, Y: 0.5, Z: 5.5}, res.Transform.Translation, 1e-12))

	for _, v := range res.Mesh.Vertices {
		world := res.Transform.Apply(v).Sub(geom.Point{Z: 5})
		found := false
		for _, p := range ps {
			if geom.ApproxEqual(world, p, 1e-12) {
				found = true
			}
		}
		require.True(t, found, "hull vertex %v not an input point", world)
	}
}

func TestGenerateConvexDegenerate(t *testing.T) {
	repeated := make(geom.PointSet, 10)
	for i := range repeated {
		repeated[i] = geom.Point{X: 1, Y: 1, Z: 1}
	}
	tests := []struct {
		name string
		ps   geom.PointSet
	}{
		{"single point repeated", repeated},
		{"collinear", geom.PointSet{{}, {X: 1}, {X: 2}, {X: 3}}},
		{"coplanar", geom.PointSet{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Generate(tt.ps, Params{Method: MethodConvex})
			require.Nil(t, res)
			require.ErrorIs(t, err, ErrDegenerateInput)
			require.False(t, errors.Is(err, ErrEmptyInput))
		})
	}
}
