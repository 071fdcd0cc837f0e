package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// QuatToAngVel returns the constant base-frame angular velocity in rad/s that takes orientation from to
// orientation to in dt seconds.
func QuatToAngVel(from, to quat.Number, dt float64) r3.Vector {
	diff := QuatContinuity(QuatNormalize(quat.Mul(to, QuatInverse(from))), QuatIdentity())
	v := QuatVector(diff)
	s := v.Norm()
	if s < 1e-12 {
		// small angle: log(q) ~ vec(q)
		return v.Mul(2 / dt)
	}
	angle := 2 * math.Atan2(s, diff.Real)
	return v.Mul(angle / s / dt)
}

// QuatDerivativeToAngVel returns the base-frame angular velocity given an orientation q and its time
// derivative dq, w = 2*dq*conj(q).
func QuatDerivativeToAngVel(q, dq quat.Number) r3.Vector {
	return QuatVector(quat.Scale(2, quat.Mul(dq, quat.Conj(q))))
}
