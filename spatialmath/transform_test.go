package spatialmath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestDHTransform(t *testing.T) {
	// theta only is a z rotation
	dh := DHTransform(0, 0, 0, math.Pi/2)
	test.That(t, dh.AlmostEqual(RotationZ(math.Pi/2), 1e-12), test.ShouldBeTrue)

	// the full product Rz*Tz*Tx*Rx
	a, alpha, d, theta := 0.3, -math.Pi/2, 0.1, 0.7
	expected := RotationZ(theta).Mul(Translation(0, 0, d)).Mul(Translation(a, 0, 0)).Mul(RotationX(alpha))
	test.That(t, DHTransform(a, alpha, d, theta).AlmostEqual(expected, 1e-12), test.ShouldBeTrue)
	test.That(t, CheckRigid(DHTransform(a, alpha, d, theta)), test.ShouldBeNil)
}

func TestTransformInverse(t *testing.T) {
	tf := Translation(1, 2, 3).Mul(RotationY(0.4)).Mul(RotationX(-1.1))
	test.That(t, tf.Mul(tf.Inverse()).AlmostEqual(IdentityTransform(), 1e-12), test.ShouldBeTrue)
	test.That(t, tf.Inverse().Mul(tf).AlmostEqual(IdentityTransform(), 1e-12), test.ShouldBeTrue)

	p := r3.Vector{X: .5, Y: -1, Z: 2}
	back := tf.Inverse().TransformPoint(tf.TransformPoint(p))
	test.That(t, back.X, test.ShouldAlmostEqual, p.X)
	test.That(t, back.Y, test.ShouldAlmostEqual, p.Y)
	test.That(t, back.Z, test.ShouldAlmostEqual, p.Z)
}

func TestCheckRigid(t *testing.T) {
	test.That(t, CheckRigid(IdentityTransform()), test.ShouldBeNil)

	t.Run("scaled rotation", func(t *testing.T) {
		m := mgl64.Ident4()
		m.Set(0, 0, 2)
		_, err := NewTransformFromMat4(m)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, ErrNonRigidTransform.Error())
	})

	t.Run("bad bottom row", func(t *testing.T) {
		m := mgl64.Ident4()
		m.Set(3, 0, 1)
		_, err := NewTransformFromMat4(m)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("reflection", func(t *testing.T) {
		m := mgl64.Ident4()
		m.Set(2, 2, -1)
		_, err := NewTransformFromMat4(m)
		test.That(t, err, test.ShouldNotBeNil)
	})

	t.Run("slice", func(t *testing.T) {
		tf, err := NewTransformFromSlice([]float64{
			1, 0, 0, 1,
			0, 1, 0, 2,
			0, 0, 1, 3,
			0, 0, 0, 1,
		})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, tf.Point(), test.ShouldResemble, r3.Vector{X: 1, Y: 2, Z: 3})
		test.That(t, tf.RowMajor()[3], test.ShouldEqual, 1.)

		_, err = NewTransformFromSlice([]float64{1, 2, 3})
		test.That(t, err, test.ShouldNotBeNil)
	})
}

func TestRotationColumns(t *testing.T) {
	tf := RotationZ(math.Pi / 2)
	x := tf.RotationColumn(0)
	test.That(t, x.X, test.ShouldAlmostEqual, 0)
	test.That(t, x.Y, test.ShouldAlmostEqual, 1)
	z := tf.RotationColumn(2)
	test.That(t, z.Z, test.ShouldAlmostEqual, 1)

	v := tf.RotateVector(r3.Vector{X: 1})
	test.That(t, v.Y, test.ShouldAlmostEqual, 1)
	test.That(t, tf.RotationOnly().Point(), test.ShouldResemble, r3.Vector{})
}
