package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/spatialmath"
)

// Slerp interpolates along the shortest great arc from qi to qf. The driving scalar is the interpolation
// parameter, spanning [0, 1].
type Slerp struct {
	driven
	qi, qf quat.Number
	// rate is the base frame angular velocity for a unit rate of the scalar
	rate r3.Vector
	mask []bool
}

// NewSlerp returns a spherical interpolation from qi to qf driven by s. A nil mask activates every
// orientation coordinate.
func NewSlerp(qi, qf quat.Number, s Scalar, mask []bool) (*Slerp, error) {
	if s == nil {
		return nil, errors.New("slerp needs a scalar profile")
	}
	m, err := copyMask(mask, 3)
	if err != nil {
		return nil, err
	}
	sl := &Slerp{driven: driven{s: s.Clone()}, mask: m}
	sl.setEndpoints(qi, qf)
	return sl, nil
}

// NewQuinticSlerp returns a slerp from qi to qf over [t0, tf] that starts and ends at rest.
func NewQuinticSlerp(t0, tf float64, qi, qf quat.Number, mask []bool) (*Slerp, error) {
	s, err := NewRestToRestQuintic(t0, tf, 0, 1)
	if err != nil {
		return nil, err
	}
	return NewSlerp(qi, qf, s, mask)
}

func (sl *Slerp) setEndpoints(qi, qf quat.Number) {
	sl.qi = spatialmath.QuatNormalize(qi)
	sl.qf = spatialmath.QuatNormalize(qf)
	sl.rate = spatialmath.QuatToAngVel(sl.qi, sl.qf, 1)
}

// Quaternion returns the interpolated orientation at t.
func (sl *Slerp) Quaternion(t float64) quat.Number {
	return spatialmath.QuatSlerp(sl.qi, sl.qf, sl.s.Position(t), true)
}

// AngularVelocity returns the base frame angular velocity at t.
func (sl *Slerp) AngularVelocity(t float64) r3.Vector {
	return sl.rate.Mul(sl.s.Velocity(t))
}

// AngularAcceleration returns the base frame angular acceleration at t.
func (sl *Slerp) AngularAcceleration(t float64) r3.Vector {
	return sl.rate.Mul(sl.s.Acceleration(t))
}

// Mask returns the active orientation coordinates.
func (sl *Slerp) Mask() []bool { return append([]bool{}, sl.mask...) }

// Initialize is a no-op, both endpoints are absolute.
func (sl *Slerp) Initialize(spatialmath.Transform) error { return nil }

// ChangeFrame re-expresses both endpoints in a new frame.
func (sl *Slerp) ChangeFrame(newTCurr spatialmath.Transform) {
	r := newTCurr.Quaternion()
	sl.setEndpoints(quat.Mul(r, sl.qi), quat.Mul(r, sl.qf))
}

// Clone returns an independent copy.
func (sl *Slerp) Clone() Quaternion {
	c := *sl
	c.driven = driven{s: sl.s.Clone()}
	c.mask = sl.Mask()
	return &c
}

// ConstantQuaternion holds an orientation forever.
type ConstantQuaternion struct {
	Window
	q         quat.Number
	fromStart bool
	mask      []bool
}

// NewConstantQuaternion returns a trajectory holding q.
func NewConstantQuaternion(q quat.Number) *ConstantQuaternion {
	return &ConstantQuaternion{Window: pointWindow(), q: spatialmath.QuatNormalize(q), mask: fullMask(3)}
}

// NewHoldQuaternion returns a trajectory holding the orientation passed to Initialize.
func NewHoldQuaternion() *ConstantQuaternion {
	return &ConstantQuaternion{Window: pointWindow(), q: spatialmath.QuatIdentity(), fromStart: true, mask: fullMask(3)}
}

// Quaternion returns the held orientation.
func (c *ConstantQuaternion) Quaternion(float64) quat.Number { return c.q }

// AngularVelocity is always zero.
func (c *ConstantQuaternion) AngularVelocity(float64) r3.Vector { return r3.Vector{} }

// AngularAcceleration is always zero.
func (c *ConstantQuaternion) AngularAcceleration(float64) r3.Vector { return r3.Vector{} }

// Mask returns the active orientation coordinates, all of them unless changed with SetMask.
func (c *ConstantQuaternion) Mask() []bool { return append([]bool{}, c.mask...) }

// SetMask changes the active orientation coordinates.
func (c *ConstantQuaternion) SetMask(mask []bool) error {
	m, err := copyMask(mask, 3)
	if err != nil {
		return err
	}
	c.mask = m
	return nil
}

// Initialize captures the starting orientation for a hold trajectory.
func (c *ConstantQuaternion) Initialize(start spatialmath.Transform) error {
	if c.fromStart {
		c.q = start.Quaternion()
	}
	return nil
}

// ChangeFrame re-expresses the orientation in a new frame.
func (c *ConstantQuaternion) ChangeFrame(newTCurr spatialmath.Transform) {
	c.q = quat.Mul(newTCurr.Quaternion(), c.q)
}

// Clone returns an independent copy.
func (c *ConstantQuaternion) Clone() Quaternion {
	cp := *c
	cp.mask = c.Mask()
	return &cp
}
