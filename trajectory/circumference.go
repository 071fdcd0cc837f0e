package trajectory

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/armcore/logging"
	"go.viam.com/armcore/spatialmath"
)

const degenerateAxisEps = 10 * 2.220446049250313e-16

func loggerOrGlobal(logger logging.Logger) logging.Logger {
	if logger == nil {
		return logging.Global().Sublogger("trajectory")
	}
	return logger
}

// Circumference moves a point on the circle obtained by rotating a start point about an axis. The driving
// scalar is the angle travelled from the start point, in radians.
type Circumference struct {
	driven
	center r3.Vector
	radius float64
	// columns: unit(start-center), normal x that, normal
	rot     mgl64.Mat3
	isPoint bool
}

// NewCircumference returns the circle through start around the axis with direction normal passing through
// axisPoint. A vanishing normal, or a start point on the axis, degenerates to a stationary point and is
// logged as a warning.
func NewCircumference(normal, axisPoint, start r3.Vector, s Scalar, logger logging.Logger) (*Circumference, error) {
	if s == nil {
		return nil, errors.New("circumference needs a scalar profile")
	}
	logger = loggerOrGlobal(logger)
	c := &Circumference{driven: driven{s: s.Clone()}}

	delta := start.Sub(axisPoint)
	n := normal.Norm()
	if n < degenerateAxisEps {
		logger.Warnw("circumference normal is zero, the trajectory is a point", "normal", normal)
		c.setPoint(start)
		return c, nil
	}
	rHat := normal.Mul(1 / n)
	along := delta.Dot(rHat)
	c.center = axisPoint.Add(rHat.Mul(along))
	c.radius = start.Sub(c.center).Norm()
	if math.Abs(along) >= delta.Norm() || c.radius == 0 {
		logger.Warnw("circumference start point is on the rotation axis, the trajectory is a point",
			"start", start, "axis_point", axisPoint)
		c.setPoint(start)
		return c, nil
	}
	x := start.Sub(c.center).Mul(1 / c.radius)
	y := rHat.Cross(x)
	c.rot = mgl64.Mat3FromCols(
		mgl64.Vec3{x.X, x.Y, x.Z},
		mgl64.Vec3{y.X, y.Y, y.Z},
		mgl64.Vec3{rHat.X, rHat.Y, rHat.Z},
	)
	return c, nil
}

func (c *Circumference) setPoint(p r3.Vector) {
	c.center = p
	c.radius = 0
	c.rot = mgl64.Ident3()
	c.isPoint = true
}

// TwoPointsToCenter returns the center and the swept angle of the arc of the given radius from pi to pf
// about normal. plus selects which of the two centers is returned.
func TwoPointsToCenter(normal, pi, pf r3.Vector, radius float64, plus bool) (r3.Vector, float64, error) {
	chord := pf.Sub(pi)
	half := chord.Norm() / 2
	if half == 0 {
		return r3.Vector{}, 0, errors.New("arc endpoints coincide")
	}
	side := normal.Cross(chord)
	if side.Norm() == 0 {
		return r3.Vector{}, 0, errors.New("arc normal is parallel to the chord")
	}
	if radius < half {
		return r3.Vector{}, 0, errors.Errorf("radius %f is smaller than half the chord %f", radius, half)
	}
	sign := 1.0
	if !plus {
		sign = -1
	}
	mid := pi.Add(pf).Mul(0.5)
	center := mid.Add(side.Normalize().Mul(sign * math.Sqrt(radius*radius-half*half)))
	ci := pi.Sub(center).Normalize()
	cf := pf.Sub(center).Normalize()
	angle := math.Acos(math.Max(-1, math.Min(1, ci.Dot(cf))))
	return center, angle, nil
}

func (c *Circumference) local(v r3.Vector) r3.Vector {
	return spatialmath.RotateVector(c.rot, v)
}

// Position returns center + R*[rho*cos(s), rho*sin(s), 0].
func (c *Circumference) Position(t float64) r3.Vector {
	s := c.s.Position(t)
	return c.center.Add(c.local(r3.Vector{X: c.radius * math.Cos(s), Y: c.radius * math.Sin(s)}))
}

// Velocity returns the tangential velocity at t.
func (c *Circumference) Velocity(t float64) r3.Vector {
	s, ds := c.s.Position(t), c.s.Velocity(t)
	return c.local(r3.Vector{X: -c.radius * math.Sin(s) * ds, Y: c.radius * math.Cos(s) * ds})
}

// Acceleration returns the tangential plus centripetal acceleration at t.
func (c *Circumference) Acceleration(t float64) r3.Vector {
	s, ds, dds := c.s.Position(t), c.s.Velocity(t), c.s.Acceleration(t)
	return c.local(r3.Vector{
		X: -c.radius*math.Cos(s)*ds*ds - c.radius*math.Sin(s)*dds,
		Y: -c.radius*math.Sin(s)*ds*ds + c.radius*math.Cos(s)*dds,
	})
}

// Mask activates x y and z.
func (c *Circumference) Mask() []bool { return fullMask(3) }

// Initialize is a no-op, the circle is absolute.
func (c *Circumference) Initialize(spatialmath.Transform) error { return nil }

// ChangeFrame re-expresses the circle in a new frame.
func (c *Circumference) ChangeFrame(newTCurr spatialmath.Transform) {
	c.center = newTCurr.TransformPoint(c.center)
	if !c.isPoint {
		c.rot = newTCurr.Rotation().Mul3(c.rot)
	}
}

// Center returns the center of the circle.
func (c *Circumference) Center() r3.Vector { return c.center }

// Radius returns the radius of the circle.
func (c *Circumference) Radius() float64 { return c.radius }

// Orientation returns the frame of the circle, its third column being the rotation axis.
func (c *Circumference) Orientation() mgl64.Mat3 { return c.rot }

// IsAPoint reports whether the circle degenerated to a point.
func (c *Circumference) IsAPoint() bool { return c.isPoint }

// AngularPosition returns the angle travelled at t.
func (c *Circumference) AngularPosition(t float64) float64 { return c.s.Position(t) }

// AngularVelocity returns the angular rate at t.
func (c *Circumference) AngularVelocity(t float64) float64 { return c.s.Velocity(t) }

// AngularAcceleration returns the angular acceleration at t.
func (c *Circumference) AngularAcceleration(t float64) float64 { return c.s.Acceleration(t) }

// Clone returns an independent copy.
func (c *Circumference) Clone() Position {
	return c.clone()
}

func (c *Circumference) clone() *Circumference {
	cp := *c
	cp.driven = driven{s: c.s.Clone()}
	return &cp
}
