package kinematics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/armcore/spatialmath"
)

// numericJacobian differentiates the end effector pose with central differences. The angular part is the
// base-frame angular velocity between the two perturbed orientations.
func numericJacobian(t *testing.T, c *Chain, q []float64) *mat.Dense {
	t.Helper()
	const h = 1e-6
	n := len(q)
	j := mat.NewDense(6, n, nil)
	for i := 0; i < n; i++ {
		plus := append([]float64{}, q...)
		minus := append([]float64{}, q...)
		plus[i] += h
		minus[i] -= h
		tp, err := c.Fkine(plus)
		test.That(t, err, test.ShouldBeNil)
		tm, err := c.Fkine(minus)
		test.That(t, err, test.ShouldBeNil)
		lin := tp.Point().Sub(tm.Point()).Mul(1 / (2 * h))
		ang := spatialmath.QuatToAngVel(tm.Quaternion(), tp.Quaternion(), 2*h)
		j.SetCol(i, []float64{lin.X, lin.Y, lin.Z, ang.X, ang.Y, ang.Z})
	}
	return j
}

func sixAxisChain(t *testing.T) *Chain {
	t.Helper()
	full, err := ParseChainJSONFile("testdata/sia5f.json", "")
	test.That(t, err, test.ShouldBeNil)
	links := full.Links()
	c, err := NewChain("six", full.BaseT0(), spatialmath.Translation(0, 0, 0.148), full.DLSJointSpeedSaturation(),
		links[0], links[1], links[3], links[4], links[5], links[6])
	test.That(t, err, test.ShouldBeNil)
	return c
}

func TestJacobianMatchesFiniteDifferences(t *testing.T) {
	iiwa, err := ParseChainJSONFile("testdata/iiwa7.json", "")
	test.That(t, err, test.ShouldBeNil)
	scara, err := ParseChainJSONFile("testdata/scara_prismatic.json", "")
	test.That(t, err, test.ShouldBeNil)

	for _, tc := range []struct {
		name  string
		chain *Chain
		q     []float64
	}{
		{"7dof", iiwa, []float64{0.1, -0.4, 0.3, 1.2, -0.7, 0.5, 0.2}},
		{"6dof", sixAxisChain(t), []float64{-0.3, 0.6, 0.2, 0.9, -1.1, 0.4}},
		{"prismatic", scara, []float64{0.4, -0.8, 0.12, 0.3}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			analytic, err := tc.chain.Jacobian(tc.q)
			test.That(t, err, test.ShouldBeNil)
			rows, cols := analytic.Dims()
			test.That(t, rows, test.ShouldEqual, 6)
			test.That(t, cols, test.ShouldEqual, tc.chain.NumJoints())
			numeric := numericJacobian(t, tc.chain, tc.q)
			test.That(t, mat.EqualApprox(analytic, numeric, 1e-6), test.ShouldBeTrue)
		})
	}
}

func TestJacobianColumns(t *testing.T) {
	c, err := ParseChainJSONFile("testdata/scara_prismatic.json", "")
	test.That(t, err, test.ShouldBeNil)
	q := []float64{0.4, -0.8, 0.12, 0.3}
	j, err := c.Jacobian(q)
	test.That(t, err, test.ShouldBeNil)
	all, err := c.FkineAll(q, c.NumJoints())
	test.That(t, err, test.ShouldBeNil)

	for i, jt := range c.JointTypes() {
		z := all[i].RotationColumn(2)
		switch jt {
		case PrismaticJoint:
			test.That(t, j.At(3, i), test.ShouldEqual, 0.)
			test.That(t, j.At(4, i), test.ShouldEqual, 0.)
			test.That(t, j.At(5, i), test.ShouldEqual, 0.)
			test.That(t, j.At(0, i), test.ShouldAlmostEqual, z.X)
			test.That(t, j.At(1, i), test.ShouldAlmostEqual, z.Y)
			test.That(t, j.At(2, i), test.ShouldAlmostEqual, z.Z)
		case RevoluteJoint:
			test.That(t, j.At(3, i), test.ShouldAlmostEqual, z.X)
			test.That(t, j.At(4, i), test.ShouldAlmostEqual, z.Y)
			test.That(t, j.At(5, i), test.ShouldAlmostEqual, z.Z)
		}
	}

	pos, err := c.JacobianPosition(q, c.NumJoints()+1, spatialmath.IdentityTransform())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.Equal(pos, j.Slice(0, 3, 0, 4)), test.ShouldBeTrue)
	ori, err := c.JacobianOrientation(q, c.NumJoints()+1, spatialmath.IdentityTransform())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.Equal(ori, j.Slice(3, 6, 0, 4)), test.ShouldBeTrue)

	// a partial jacobian only has columns for the joints before the frame
	partial, err := c.JacobianUpTo(q, 2, spatialmath.IdentityTransform())
	test.That(t, err, test.ShouldBeNil)
	_, cols := partial.Dims()
	test.That(t, cols, test.ShouldEqual, 2)

	allEE, err := c.FkineAll(q, c.NumJoints()+1)
	test.That(t, err, test.ShouldBeNil)
	fromAll, err := c.JacobianFromTransforms(allEE)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.EqualApprox(fromAll, j, 1e-12), test.ShouldBeTrue)

	_, err = c.JacobianFromTransforms(allEE[:1])
	test.That(t, err, test.ShouldNotBeNil)
	_, err = c.Jacobian([]float64{0})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestChangeJacobianFrame(t *testing.T) {
	c, err := NewSimpleChain("planar", planarLinks(t, 1, 1)...)
	test.That(t, err, test.ShouldBeNil)
	j, err := c.Jacobian([]float64{0, 0})
	test.That(t, err, test.ShouldBeNil)

	rot := mgl64.Rotate3DZ(math.Pi / 2)
	rotated, err := ChangeJacobianFrame(j, rot)
	test.That(t, err, test.ShouldBeNil)
	// base frame y velocity of the tip becomes -x in the rotated frame
	test.That(t, j.At(1, 0), test.ShouldAlmostEqual, 2)
	test.That(t, rotated.At(0, 0), test.ShouldAlmostEqual, -2)
	test.That(t, rotated.At(1, 0), test.ShouldAlmostEqual, 0)
	test.That(t, rotated.At(5, 0), test.ShouldAlmostEqual, 1)

	half, err := ChangeJacobianFrame(j.Slice(0, 3, 0, 2), rot)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, mat.EqualApprox(half, rotated.Slice(0, 3, 0, 2), 1e-12), test.ShouldBeTrue)

	_, err = ChangeJacobianFrame(mat.NewDense(4, 2, nil), rot)
	test.That(t, err, test.ShouldNotBeNil)
}
