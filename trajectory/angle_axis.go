package trajectory

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/logging"
	"go.viam.com/armcore/spatialmath"
)

func unitAxis(axis r3.Vector, what string, logger logging.Logger) r3.Vector {
	n := axis.Norm()
	if n < degenerateAxisEps {
		logger.Warnf("%s rotation axis is zero, the rotation is the identity", what)
		return r3.Vector{}
	}
	return axis.Mul(1 / n)
}

// AngleAxis rotates about a fixed axis by an angle given by the driving scalar. The axis and the angle are
// resolved against the starting orientation according to the motion mode.
type AngleAxis struct {
	driven
	mode  MotionMode
	angle float64
	axis  r3.Vector
	qInit quat.Number
	// the rotation axis in the starting frame and in the base frame
	localAxis r3.Vector
	baseAxis  r3.Vector
	mask      []bool
}

// NewAngleAxis returns a rotation by angle about axis. For RelTool the axis is in the tool frame, for RelBase
// in the base frame, and for AbsBase angle and axis describe the absolute target orientation. If s can be
// retargeted, its final value is set to the angle to travel.
func NewAngleAxis(
	mode MotionMode, angle float64, axis r3.Vector, s Scalar, mask []bool, logger logging.Logger,
) (*AngleAxis, error) {
	if mode != RelTool && mode != RelBase && mode != AbsBase {
		return nil, newInvalidModeError(mode)
	}
	if s == nil {
		return nil, errors.New("angle axis rotation needs a scalar profile")
	}
	m, err := copyMask(mask, 3)
	if err != nil {
		return nil, err
	}
	axis = unitAxis(axis, "angle axis", loggerOrGlobal(logger))
	aa := &AngleAxis{
		driven:    driven{s: s.Clone()},
		mode:      mode,
		angle:     angle,
		axis:      axis,
		qInit:     spatialmath.QuatIdentity(),
		localAxis: axis,
		baseAxis:  axis,
		mask:      m,
	}
	if fs, ok := aa.s.(finalPositionSetter); ok {
		fs.SetFinalPosition(angle)
	}
	return aa, nil
}

// NewQuinticAngleAxis returns an angle axis rotation driven by a quintic angle profile over [t0, tf].
func NewQuinticAngleAxis(
	mode MotionMode, t0, tf, angle float64, axis r3.Vector, b Boundary, mask []bool, logger logging.Logger,
) (*AngleAxis, error) {
	s, err := NewQuintic(t0, tf, 0, angle, b)
	if err != nil {
		return nil, err
	}
	return NewAngleAxis(mode, angle, axis, s, mask, logger)
}

// Initialize resolves the rotation against the starting orientation.
func (aa *AngleAxis) Initialize(start spatialmath.Transform) error {
	aa.qInit = start.Quaternion()
	rot := start.Rotation()
	switch aa.mode {
	case RelTool:
		aa.localAxis = aa.axis
		aa.baseAxis = spatialmath.RotateVector(rot, aa.axis)
	case RelBase:
		aa.baseAxis = aa.axis
		aa.localAxis = spatialmath.RotateVector(rot.Transpose(), aa.axis)
	case AbsBase:
		target := spatialmath.AngleAxisToQuat(aa.angle, aa.axis)
		rel := spatialmath.QuatToR4AA(quat.Mul(spatialmath.QuatInverse(aa.qInit), target))
		if fs, ok := aa.s.(finalPositionSetter); ok {
			fs.SetFinalPosition(rel.Theta)
		}
		aa.localAxis = rel.Axis()
		aa.baseAxis = spatialmath.RotateVector(rot, aa.localAxis)
	default:
		return newInvalidModeError(aa.mode)
	}
	return nil
}

// Quaternion returns qInit * Q(theta(t), axis).
func (aa *AngleAxis) Quaternion(t float64) quat.Number {
	return quat.Mul(aa.qInit, spatialmath.AngleAxisToQuat(aa.s.Position(t), aa.localAxis))
}

// AngularVelocity returns the base frame angular velocity at t.
func (aa *AngleAxis) AngularVelocity(t float64) r3.Vector {
	return aa.baseAxis.Mul(aa.s.Velocity(t))
}

// AngularAcceleration returns the base frame angular acceleration at t.
func (aa *AngleAxis) AngularAcceleration(t float64) r3.Vector {
	return aa.baseAxis.Mul(aa.s.Acceleration(t))
}

// Mask returns the active orientation coordinates.
func (aa *AngleAxis) Mask() []bool { return append([]bool{}, aa.mask...) }

// ChangeFrame re-expresses the rotation in a new frame.
func (aa *AngleAxis) ChangeFrame(newTCurr spatialmath.Transform) {
	aa.qInit = quat.Mul(newTCurr.Quaternion(), aa.qInit)
	aa.baseAxis = newTCurr.RotateVector(aa.baseAxis)
}

// BaseAxis returns the rotation axis in the base frame.
func (aa *AngleAxis) BaseAxis() r3.Vector { return aa.baseAxis }

// Mode returns how the rotation is interpreted.
func (aa *AngleAxis) Mode() MotionMode { return aa.mode }

// Clone returns an independent copy.
func (aa *AngleAxis) Clone() Quaternion {
	c := *aa
	c.driven = driven{s: aa.s.Clone()}
	c.mask = aa.Mask()
	return &c
}

// ConstantAxis rotates from qi about a fixed axis expressed in the frame of qi. The angular velocity is
// reported in that same frame.
type ConstantAxis struct {
	driven
	qi   quat.Number
	axis r3.Vector
	mask []bool
}

// NewConstantAxis returns the rotation qi * Q(theta(t), axis).
func NewConstantAxis(qi quat.Number, axis r3.Vector, theta Scalar, mask []bool, logger logging.Logger) (*ConstantAxis, error) {
	if theta == nil {
		return nil, errors.New("constant axis rotation needs a scalar profile")
	}
	m, err := copyMask(mask, 3)
	if err != nil {
		return nil, err
	}
	return &ConstantAxis{
		driven: driven{s: theta.Clone()},
		qi:     spatialmath.QuatNormalize(qi),
		axis:   unitAxis(axis, "constant axis", loggerOrGlobal(logger)),
		mask:   m,
	}, nil
}

// Quaternion returns qi * Q(theta(t), axis).
func (ca *ConstantAxis) Quaternion(t float64) quat.Number {
	return quat.Mul(ca.qi, spatialmath.AngleAxisToQuat(ca.s.Position(t), ca.axis))
}

// AngularVelocity returns theta'(t) * axis.
func (ca *ConstantAxis) AngularVelocity(t float64) r3.Vector {
	return ca.axis.Mul(ca.s.Velocity(t))
}

// AngularAcceleration returns theta''(t) * axis.
func (ca *ConstantAxis) AngularAcceleration(t float64) r3.Vector {
	return ca.axis.Mul(ca.s.Acceleration(t))
}

// Mask returns the active orientation coordinates.
func (ca *ConstantAxis) Mask() []bool { return append([]bool{}, ca.mask...) }

// Initialize is a no-op, the initial orientation is absolute.
func (ca *ConstantAxis) Initialize(spatialmath.Transform) error { return nil }

// ChangeFrame re-expresses the initial orientation in a new frame.
func (ca *ConstantAxis) ChangeFrame(newTCurr spatialmath.Transform) {
	ca.qi = quat.Mul(newTCurr.Quaternion(), ca.qi)
}

// Axis returns the unit rotation axis.
func (ca *ConstantAxis) Axis() r3.Vector { return ca.axis }

// Clone returns an independent copy.
func (ca *ConstantAxis) Clone() Quaternion {
	c := *ca
	c.driven = driven{s: ca.s.Clone()}
	c.mask = ca.Mask()
	return &c
}

// rotationAxis returns the third column of rot.
func rotationAxis(rot mgl64.Mat3) r3.Vector {
	z := rot.Col(2)
	return r3.Vector{X: z[0], Y: z[1], Z: z[2]}
}
