package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose is a position and an orientation stored as a unit dual quaternion.
type Pose struct {
	dq dualquat.Number
}

// NewZeroPose returns the pose at the origin with no rotation.
func NewZeroPose() Pose {
	return Pose{dualquat.Number{Real: QuatIdentity()}}
}

// NewPose builds a pose from a point and an orientation. The orientation is normalized.
func NewPose(p r3.Vector, q quat.Number) Pose {
	q = QuatNormalize(q)
	t := quat.Number{Imag: p.X, Jmag: p.Y, Kmag: p.Z}
	return Pose{dualquat.Number{Real: q, Dual: quat.Scale(0.5, quat.Mul(t, q))}}
}

// NewPoseFromTransform converts a rigid transform to a pose.
func NewPoseFromTransform(t Transform) Pose {
	return NewPose(t.Point(), t.Quaternion())
}

// Point returns the translation of the pose.
func (p Pose) Point() r3.Vector {
	t := quat.Scale(2, quat.Mul(p.dq.Dual, quat.Conj(p.dq.Real)))
	return QuatVector(t)
}

// Orientation returns the unit quaternion of the pose.
func (p Pose) Orientation() quat.Number {
	return p.dq.Real
}

// DualQuaternion returns the underlying dual quaternion.
func (p Pose) DualQuaternion() dualquat.Number {
	return p.dq
}

// Transform converts the pose to a homogeneous transform.
func (p Pose) Transform() Transform {
	return NewTransformFromQuat(p.dq.Real, p.Point())
}

// Compose returns a followed by b, the pose equivalent of a.Transform().Mul(b.Transform()).
func Compose(a, b Pose) Pose {
	return Pose{dualquat.Mul(a.dq, b.dq)}
}

// PoseInverse returns the inverse of a unit pose.
func PoseInverse(p Pose) Pose {
	return Pose{dualquat.Number{Real: quat.Conj(p.dq.Real), Dual: quat.Conj(p.dq.Dual)}}
}

// PoseAlmostEqual returns whether the two poses have the same point and rotation within eps.
func PoseAlmostEqual(a, b Pose, eps float64) bool {
	d := a.Point().Sub(b.Point())
	return math.Abs(d.X) <= eps && math.Abs(d.Y) <= eps && math.Abs(d.Z) <= eps &&
		QuatAlmostEqual(a.Orientation(), b.Orientation(), eps)
}
