package spatialmath

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DampedPseudoInverse returns the damped least squares inverse of j, V*diag(s/(s^2+lambda^2))*U^T.
// With lambda zero this is the Moore-Penrose inverse with negligible singular values dropped.
func DampedPseudoInverse(j mat.Matrix, lambda float64) (*mat.Dense, error) {
	rows, cols := j.Dims()
	var svd mat.SVD
	if ok := svd.Factorize(j, mat.SVDThin); !ok {
		return nil, errors.New("svd factorization failed")
	}
	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	tol := 0.
	if len(values) > 0 {
		tol = float64(max(rows, cols)) * values[0] * 1e-15
	}
	l2 := lambda * lambda
	k := len(values)
	scaled := mat.NewDense(cols, k, nil)
	for c := 0; c < k; c++ {
		s := values[c]
		f := 0.
		switch {
		case l2 > 0:
			f = s / (s*s + l2)
		case s > tol:
			f = 1 / s
		}
		for r := 0; r < cols; r++ {
			scaled.Set(r, c, v.At(r, c)*f)
		}
	}
	out := mat.NewDense(cols, rows, nil)
	out.Mul(scaled, u.T())
	return out, nil
}

// NullSpaceProjector returns I - jPinv*j, which maps joint velocities onto the null space of j.
func NullSpaceProjector(j, jPinv mat.Matrix) *mat.Dense {
	_, cols := j.Dims()
	p := mat.NewDense(cols, cols, nil)
	p.Mul(jPinv, j)
	p.Scale(-1, p)
	for i := 0; i < cols; i++ {
		p.Set(i, i, p.At(i, i)+1)
	}
	return p
}

// Rank returns the number of singular values of j above tol.
func Rank(j mat.Matrix, tol float64) int {
	var svd mat.SVD
	if ok := svd.Factorize(j, mat.SVDNone); !ok {
		return 0
	}
	rank := 0
	for _, s := range svd.Values(nil) {
		if s > tol && !math.IsNaN(s) {
			rank++
		}
	}
	return rank
}
