package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/logging"
	"go.viam.com/armcore/spatialmath"
)

// CenterOfRotation rotates an orientation about the axis of a circumference, by the same angle the point
// travels along it. Paired with the circumference it keeps a tool pointing at a fixed center of rotation.
type CenterOfRotation struct {
	circ   *Circumference
	qi     quat.Number
	normal r3.Vector
	axis   r3.Vector
	mask   []bool
}

// NewCenterOfRotation returns the orientation trajectory Q(s(t), axis) * qi coupled to circ. When circ
// degenerated to a point the rotation axis falls back to normal, and to no rotation if normal is zero.
func NewCenterOfRotation(
	qi quat.Number, circ *Circumference, normal r3.Vector, mask []bool, logger logging.Logger,
) (*CenterOfRotation, error) {
	if circ == nil {
		return nil, errors.New("center of rotation needs a circumference")
	}
	m, err := copyMask(mask, 3)
	if err != nil {
		return nil, err
	}
	cor := &CenterOfRotation{circ: circ.clone(), qi: spatialmath.QuatNormalize(qi), normal: normal, mask: m}
	if cor.circ.IsAPoint() {
		cor.axis = unitAxis(normal, "center of rotation", loggerOrGlobal(logger))
	} else {
		cor.axis = rotationAxis(cor.circ.Orientation())
	}
	return cor, nil
}

// NewCenterOfRotationCartesian returns the Cartesian trajectory that moves start about the axis through
// center with direction normal while rotating qi by the same angle theta.
func NewCenterOfRotationCartesian(
	center, normal, start r3.Vector, qi quat.Number, theta Scalar, logger logging.Logger,
) (*CartesianIndependent, error) {
	circ, err := NewCircumference(normal, center, start, theta, logger)
	if err != nil {
		return nil, err
	}
	cor, err := NewCenterOfRotation(qi, circ, normal, nil, logger)
	if err != nil {
		return nil, err
	}
	return NewCartesianIndependent(circ, cor)
}

// Quaternion returns Q(s(t), axis) * qi.
func (c *CenterOfRotation) Quaternion(t float64) quat.Number {
	return quat.Mul(spatialmath.AngleAxisToQuat(c.circ.AngularPosition(t), c.axis), c.qi)
}

// AngularVelocity returns s'(t) * axis.
func (c *CenterOfRotation) AngularVelocity(t float64) r3.Vector {
	return c.axis.Mul(c.circ.AngularVelocity(t))
}

// AngularAcceleration returns s''(t) * axis.
func (c *CenterOfRotation) AngularAcceleration(t float64) r3.Vector {
	return c.axis.Mul(c.circ.AngularAcceleration(t))
}

// Mask returns the active orientation coordinates.
func (c *CenterOfRotation) Mask() []bool { return append([]bool{}, c.mask...) }

// Initialize is a no-op, the geometry is absolute.
func (c *CenterOfRotation) Initialize(spatialmath.Transform) error { return nil }

// ChangeFrame re-expresses the initial orientation and the axis in a new frame.
func (c *CenterOfRotation) ChangeFrame(newTCurr spatialmath.Transform) {
	c.circ.ChangeFrame(newTCurr)
	c.qi = quat.Mul(newTCurr.Quaternion(), c.qi)
	c.normal = newTCurr.RotateVector(c.normal)
	c.axis = newTCurr.RotateVector(c.axis)
}

// Axis returns the rotation axis in the base frame.
func (c *CenterOfRotation) Axis() r3.Vector { return c.axis }

// InitialTime returns the start of the driving angle profile.
func (c *CenterOfRotation) InitialTime() float64 { return c.circ.InitialTime() }

// FinalTime returns the end of the driving angle profile.
func (c *CenterOfRotation) FinalTime() float64 { return c.circ.FinalTime() }

// Duration returns the duration of the driving angle profile.
func (c *CenterOfRotation) Duration() float64 { return c.circ.Duration() }

// TimeLeft returns FinalTime() - t.
func (c *CenterOfRotation) TimeLeft(t float64) float64 { return c.circ.TimeLeft(t) }

// IsStarted reports whether the angle profile started.
func (c *CenterOfRotation) IsStarted(t float64) bool { return c.circ.IsStarted(t) }

// IsComplete reports whether the angle profile completed.
func (c *CenterOfRotation) IsComplete(t float64) bool { return c.circ.IsComplete(t) }

// ChangeInitialTime moves the angle profile to start at t0.
func (c *CenterOfRotation) ChangeInitialTime(t0 float64) { c.circ.ChangeInitialTime(t0) }

// Clone returns an independent copy.
func (c *CenterOfRotation) Clone() Quaternion {
	cp := *c
	cp.circ = c.circ.clone()
	cp.mask = c.Mask()
	return &cp
}
