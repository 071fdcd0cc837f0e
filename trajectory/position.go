package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/armcore/spatialmath"
)

// PositionIndependent drives x, y and z with independent scalar profiles. The profiles are expressed in a frame
// that starts as the base frame and follows ChangeFrame.
type PositionIndependent struct {
	group
	axes  [3]Scalar
	frame spatialmath.Transform
	mask  []bool
}

// NewPositionIndependent returns a position trajectory from three scalar profiles. A nil mask activates every
// coordinate.
func NewPositionIndependent(x, y, z Scalar, mask []bool) (*PositionIndependent, error) {
	if x == nil || y == nil || z == nil {
		return nil, errors.New("independent position needs three scalar profiles")
	}
	m, err := copyMask(mask, 3)
	if err != nil {
		return nil, err
	}
	p := &PositionIndependent{frame: spatialmath.IdentityTransform(), mask: m}
	p.setAxes(x.Clone(), y.Clone(), z.Clone())
	return p, nil
}

func (p *PositionIndependent) setAxes(x, y, z Scalar) {
	p.axes = [3]Scalar{x, y, z}
	p.group = group{x, y, z}
}

func (p *PositionIndependent) sample(f func(Scalar) float64) r3.Vector {
	return r3.Vector{X: f(p.axes[0]), Y: f(p.axes[1]), Z: f(p.axes[2])}
}

// Position returns the point at t.
func (p *PositionIndependent) Position(t float64) r3.Vector {
	return p.frame.TransformPoint(p.sample(func(s Scalar) float64 { return s.Position(t) }))
}

// Velocity returns the velocity at t.
func (p *PositionIndependent) Velocity(t float64) r3.Vector {
	return p.frame.RotateVector(p.sample(func(s Scalar) float64 { return s.Velocity(t) }))
}

// Acceleration returns the acceleration at t.
func (p *PositionIndependent) Acceleration(t float64) r3.Vector {
	return p.frame.RotateVector(p.sample(func(s Scalar) float64 { return s.Acceleration(t) }))
}

// Mask returns the active coordinates.
func (p *PositionIndependent) Mask() []bool { return append([]bool{}, p.mask...) }

// Initialize is a no-op, the profiles are absolute.
func (p *PositionIndependent) Initialize(spatialmath.Transform) error { return nil }

// ChangeFrame re-expresses the trajectory in a new frame.
func (p *PositionIndependent) ChangeFrame(newTCurr spatialmath.Transform) {
	p.frame = newTCurr.Mul(p.frame)
}

// Axis returns the profile driving coordinate i.
func (p *PositionIndependent) Axis(i int) (Scalar, error) {
	if i < 0 || i > 2 {
		return nil, errors.Errorf("axis index %d out of range [0, 2]", i)
	}
	return p.axes[i], nil
}

// Clone returns an independent copy.
func (p *PositionIndependent) Clone() Position {
	c := &PositionIndependent{frame: p.frame, mask: p.Mask()}
	c.setAxes(p.axes[0].Clone(), p.axes[1].Clone(), p.axes[2].Clone())
	return c
}

// ConstantPosition holds a point forever.
type ConstantPosition struct {
	Window
	p         r3.Vector
	fromStart bool
}

// NewConstantPosition returns a trajectory holding p.
func NewConstantPosition(p r3.Vector) *ConstantPosition {
	return &ConstantPosition{Window: pointWindow(), p: p}
}

// NewHoldPosition returns a trajectory holding the position passed to Initialize.
func NewHoldPosition() *ConstantPosition {
	return &ConstantPosition{Window: pointWindow(), fromStart: true}
}

// Position returns the held point.
func (c *ConstantPosition) Position(float64) r3.Vector { return c.p }

// Velocity is always zero.
func (c *ConstantPosition) Velocity(float64) r3.Vector { return r3.Vector{} }

// Acceleration is always zero.
func (c *ConstantPosition) Acceleration(float64) r3.Vector { return r3.Vector{} }

// Mask activates x y and z.
func (c *ConstantPosition) Mask() []bool { return fullMask(3) }

// Initialize captures the starting position for a hold trajectory.
func (c *ConstantPosition) Initialize(start spatialmath.Transform) error {
	if c.fromStart {
		c.p = start.Point()
	}
	return nil
}

// ChangeFrame re-expresses the point in a new frame.
func (c *ConstantPosition) ChangeFrame(newTCurr spatialmath.Transform) {
	c.p = newTCurr.TransformPoint(c.p)
}

// Clone returns an independent copy.
func (c *ConstantPosition) Clone() Position {
	cp := *c
	return &cp
}
