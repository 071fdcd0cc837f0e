package spatialmath

import (
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"
)

func TestDampedPseudoInverse(t *testing.T) {
	j := mat.NewDense(2, 3, []float64{
		1, 0, 2,
		0, 1, 1,
	})

	pinv, err := DampedPseudoInverse(j, 0)
	test.That(t, err, test.ShouldBeNil)
	r, c := pinv.Dims()
	test.That(t, r, test.ShouldEqual, 3)
	test.That(t, c, test.ShouldEqual, 2)

	// full row rank: J*J+ = I
	var prod mat.Dense
	prod.Mul(j, pinv)
	test.That(t, mat.EqualApprox(&prod, mat.NewDiagDense(2, []float64{1, 1}), 1e-12), test.ShouldBeTrue)

	// null space projection annihilates under J
	n := NullSpaceProjector(j, pinv)
	var jn mat.Dense
	jn.Mul(j, n)
	test.That(t, mat.Norm(&jn, 2), test.ShouldBeLessThan, 1e-12)

	t.Run("damping shrinks the inverse", func(t *testing.T) {
		damped, err := DampedPseudoInverse(j, 1)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, mat.Norm(damped, 2), test.ShouldBeLessThan, mat.Norm(pinv, 2))
	})

	t.Run("singular matrix", func(t *testing.T) {
		s := mat.NewDense(2, 2, []float64{1, 1, 1, 1})
		sp, err := DampedPseudoInverse(s, 0)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, sp.At(0, 0), test.ShouldAlmostEqual, 0.25)
		test.That(t, Rank(s, 1e-9), test.ShouldEqual, 1)
		test.That(t, Rank(j, 1e-9), test.ShouldEqual, 2)
	})
}
