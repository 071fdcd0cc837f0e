package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// Below this the quaternions of a slerp are treated as parallel.
const slerpLinearThreshold = 1e-9

// QuatIdentity returns the identity rotation.
func QuatIdentity() quat.Number {
	return quat.Number{Real: 1}
}

// AngleAxisToQuat returns the unit quaternion rotating by theta radians about axis.
// A zero axis yields the identity rotation.
func AngleAxisToQuat(theta float64, axis r3.Vector) quat.Number {
	n := axis.Norm()
	if n == 0 {
		return QuatIdentity()
	}
	axis = axis.Mul(1 / n)
	s := math.Sin(theta / 2)
	return quat.Number{Real: math.Cos(theta / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// QuatVector returns the vector part of q.
func QuatVector(q quat.Number) r3.Vector {
	return r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// QuatNormalize scales q to unit length. The zero quaternion maps to the identity.
func QuatNormalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return QuatIdentity()
	}
	return quat.Scale(1/n, q)
}

// QuatInverse returns the inverse rotation of the unit quaternion q.
func QuatInverse(q quat.Number) quat.Number {
	return quat.Conj(q)
}

// QuatDot returns the four dimensional dot product of a and b.
func QuatDot(a, b quat.Number) float64 {
	return a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
}

// QuatContinuity returns q or -q, whichever is closest to prev.
func QuatContinuity(q, prev quat.Number) quat.Number {
	if QuatDot(q, prev) < 0 {
		return quat.Scale(-1, q)
	}
	return q
}

// QuatAlmostEqual returns whether a and b represent the same rotation within eps.
func QuatAlmostEqual(a, b quat.Number, eps float64) bool {
	b = QuatContinuity(b, a)
	return math.Abs(a.Real-b.Real) <= eps &&
		math.Abs(a.Imag-b.Imag) <= eps &&
		math.Abs(a.Jmag-b.Jmag) <= eps &&
		math.Abs(a.Kmag-b.Kmag) <= eps
}

// QuatSlerp spherically interpolates from q0 (s=0) to q1 (s=1). If shortest is set q1 is first
// flipped onto the hemisphere of q0.
func QuatSlerp(q0, q1 quat.Number, s float64, shortest bool) quat.Number {
	dot := QuatDot(q0, q1)
	if shortest && dot < 0 {
		q1 = quat.Scale(-1, q1)
		dot = -dot
	}
	if dot > 1-slerpLinearThreshold {
		return QuatNormalize(quat.Add(quat.Scale(1-s, q0), quat.Scale(s, q1)))
	}
	dot = math.Max(-1, math.Min(1, dot))
	theta := math.Acos(dot)
	sinTheta := math.Sin(theta)
	if sinTheta < slerpLinearThreshold {
		// antipodal without shortest path: any great circle works, keep q0
		return q0
	}
	w0 := math.Sin((1-s)*theta) / sinTheta
	w1 := math.Sin(s*theta) / sinTheta
	return quat.Add(quat.Scale(w0, q0), quat.Scale(w1, q1))
}

// RotateByQuat rotates v by the unit quaternion q.
func RotateByQuat(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	return QuatVector(quat.Mul(quat.Mul(q, p), quat.Conj(q)))
}

// QuatFromRotation converts a rotation matrix to a unit quaternion.
func QuatFromRotation(rot mgl64.Mat3) quat.Number {
	m := NewTransform(rot, r3.Vector{}).m
	q := mgl64.Mat4ToQuat(m)
	return QuatNormalize(quat.Number{Real: q.W, Imag: q.X(), Jmag: q.Y(), Kmag: q.Z()})
}

// QuatToRotation converts a quaternion to a rotation matrix.
func QuatToRotation(q quat.Number) mgl64.Mat3 {
	q = QuatNormalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	var rot mgl64.Mat3
	rot.Set(0, 0, 1-2*(y*y+z*z))
	rot.Set(0, 1, 2*(x*y-z*w))
	rot.Set(0, 2, 2*(x*z+y*w))
	rot.Set(1, 0, 2*(x*y+z*w))
	rot.Set(1, 1, 1-2*(x*x+z*z))
	rot.Set(1, 2, 2*(y*z-x*w))
	rot.Set(2, 0, 2*(x*z-y*w))
	rot.Set(2, 1, 2*(y*z+x*w))
	rot.Set(2, 2, 1-2*(x*x+y*y))
	return rot
}

// QuatToR4AA converts a quat to an R4 axis angle in the same way the C++ Eigen library does.
// https://eigen.tuxfamily.org/dox/AngleAxis_8h_source.html
func QuatToR4AA(q quat.Number) R4AA {
	denom := Norm(q)

	angle := 2 * math.Atan2(denom, math.Abs(q.Real))
	if q.Real < 0 {
		angle *= -1
	}

	if denom < 1e-6 {
		return R4AA{angle, 1, 0, 0}
	}
	return R4AA{angle, q.Imag / denom, q.Jmag / denom, q.Kmag / denom}
}

// Norm returns the norm of the quaternion, i.e. the sqrt of the sum of the squares of the imaginary parts.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}
