package collision

import (
	"github.com/chazu/collider/pkg/geom"
	"gonum.org/v1/gonum/mat"
)

// Covariance returns the population covariance matrix of ps about its
// centroid.
func Covariance(ps geom.PointSet) *mat.SymDense {
	m := ps.Centroid()
	var c [3][3]float64
	for _, p := range ps {
		d := [3]float64{p.X - m.X, p.Y - m.Y, p.Z - m.Z}
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				c[i][j] += d[i] * d[j]
			}
		}
	}
	n := float64(len(ps))
	cov := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			cov.SetSym(i, j, c[i][j]/n)
		}
	}
	return cov
}

// Estimate returns the principal axes of ps as an orthonormal basis. The
// columns are eigenvectors of the covariance matrix in ascending eigenvalue
// order; their signs are whatever the eigensolver produced.
//
// Sets with fewer than three points, or whose points are coincident or
// collinear within DefaultEpsilon, have no meaningful orientation and are
// rejected with a *DegenerateInputError.
func Estimate(ps geom.PointSet) (geom.Basis, error) {
	if len(ps) == 0 {
		return geom.Basis{}, ErrEmptyInput
	}
	if len(ps) < 3 {
		return geom.Basis{}, degenerate("estimate", "need at least 3 points, got %d", len(ps))
	}

	var es mat.EigenSym
	if ok := es.Factorize(Covariance(ps), true); !ok {
		return geom.Basis{}, degenerate("estimate", "eigen decomposition did not converge")
	}
	vals := es.Values(nil)

	// vals[0] <= vals[1] <= vals[2]; the rank of the covariance is the
	// number of eigenvalues that are not negligible next to the largest.
	if vals[2] <= 0 {
		return geom.Basis{}, degenerate("estimate", "all points coincide")
	}
	if vals[1] <= DefaultEpsilon*DefaultEpsilon*vals[2] {
		return geom.Basis{}, degenerate("estimate", "points are collinear")
	}

	var vecs mat.Dense
	es.VectorsTo(&vecs)
	axis := func(j int) geom.Point {
		return geom.Point{X: vecs.At(0, j), Y: vecs.At(1, j), Z: vecs.At(2, j)}
	}
	return geom.NewBasis(axis(0), axis(1), axis(2)), nil
}
