package trajectory

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

const fdStep = 1e-6

func scalarVelocityFD(s Scalar, t float64) float64 {
	return (s.Position(t+fdStep) - s.Position(t-fdStep)) / (2 * fdStep)
}

func scalarAccelerationFD(s Scalar, t float64) float64 {
	return (s.Velocity(t+fdStep) - s.Velocity(t-fdStep)) / (2 * fdStep)
}

func TestWindow(t *testing.T) {
	w := NewWindow(1, 3)
	test.That(t, w.Duration(), test.ShouldEqual, 2.)
	test.That(t, w.TimeLeft(2.5), test.ShouldEqual, 0.5)
	test.That(t, w.IsStarted(0.9), test.ShouldBeFalse)
	test.That(t, w.IsStarted(1), test.ShouldBeTrue)
	test.That(t, w.IsComplete(3), test.ShouldBeFalse)
	test.That(t, w.IsComplete(3.1), test.ShouldBeTrue)

	w.ChangeInitialTime(10)
	test.That(t, w.InitialTime(), test.ShouldEqual, 10.)
	test.That(t, w.FinalTime(), test.ShouldEqual, 12.)

	p := pointWindow()
	test.That(t, p.IsStarted(-1e300), test.ShouldBeTrue)
	test.That(t, p.IsComplete(-1e300), test.ShouldBeTrue)
	test.That(t, p.Duration(), test.ShouldEqual, 0.)
	p.ChangeInitialTime(5)
	test.That(t, math.IsInf(p.InitialTime(), -1), test.ShouldBeTrue)
}

func TestQuinticRestToRest(t *testing.T) {
	q, err := NewRestToRestQuintic(0, 2, 0, 1)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, q.Position(0), test.ShouldEqual, 0.)
	test.That(t, q.Position(1), test.ShouldAlmostEqual, 0.5)
	test.That(t, q.Position(2), test.ShouldAlmostEqual, 1)
	test.That(t, q.Velocity(0), test.ShouldEqual, 0.)
	test.That(t, q.Velocity(2), test.ShouldAlmostEqual, 0)
	test.That(t, q.Acceleration(0), test.ShouldEqual, 0.)
	test.That(t, q.Acceleration(2), test.ShouldAlmostEqual, 0)
	test.That(t, q.Velocity(1), test.ShouldBeGreaterThan, 0)

	// saturation outside the window
	test.That(t, q.Position(-1), test.ShouldEqual, 0.)
	test.That(t, q.Position(3), test.ShouldEqual, 1.)
	test.That(t, q.Velocity(3), test.ShouldEqual, 0.)
	test.That(t, q.Acceleration(-1), test.ShouldEqual, 0.)

	q.ChangeInitialTime(5)
	test.That(t, q.FinalTime(), test.ShouldEqual, 7.)
	test.That(t, q.Position(6), test.ShouldAlmostEqual, 0.5)
	test.That(t, q.Position(5.5), test.ShouldBeLessThan, 0.5)
}

func TestQuinticBoundary(t *testing.T) {
	b := Boundary{InitialVelocity: 0.3, FinalVelocity: -0.2, InitialAcceleration: 0.1, FinalAcceleration: 0.4}
	q, err := NewQuintic(1, 3, 0.5, 2, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q.Position(1), test.ShouldAlmostEqual, 0.5)
	test.That(t, q.Position(3), test.ShouldAlmostEqual, 2)
	test.That(t, q.Velocity(1), test.ShouldAlmostEqual, 0.3)
	test.That(t, q.Velocity(3), test.ShouldAlmostEqual, -0.2)
	test.That(t, q.Acceleration(1), test.ShouldAlmostEqual, 0.1)
	test.That(t, q.Acceleration(3), test.ShouldAlmostEqual, 0.4)

	for _, tm := range []float64{1.3, 2, 2.7} {
		test.That(t, q.Velocity(tm), test.ShouldAlmostEqual, scalarVelocityFD(q, tm), 1e-6)
		test.That(t, q.Acceleration(tm), test.ShouldAlmostEqual, scalarAccelerationFD(q, tm), 1e-6)
	}

	q.SetFinalPosition(-1)
	test.That(t, q.FinalPosition(), test.ShouldEqual, -1.)
	test.That(t, q.Position(3), test.ShouldAlmostEqual, -1)
	q.SetInitialPosition(4)
	test.That(t, q.Position(1), test.ShouldAlmostEqual, 4)
	q.SetBoundary(Boundary{})
	test.That(t, q.Velocity(1), test.ShouldEqual, 0.)

	_, err = NewQuintic(1, 1, 0, 1, Boundary{})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewQuintic(math.Inf(-1), 1, 0, 1, Boundary{})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestQuinticClone(t *testing.T) {
	q, err := NewRestToRestQuintic(0, 1, 0, 1)
	test.That(t, err, test.ShouldBeNil)
	c := q.Clone()
	q.SetFinalPosition(10)
	q.ChangeInitialTime(3)
	test.That(t, c.Position(1), test.ShouldAlmostEqual, 1)
	test.That(t, c.InitialTime(), test.ShouldEqual, 0.)
}

func TestTrapezoid(t *testing.T) {
	p, err := NewTrapezoid(1, 2, 0, 1, 0.75)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.AccelerationTime(), test.ShouldAlmostEqual, 2./3)
	test.That(t, p.Position(0), test.ShouldEqual, 0.)
	test.That(t, p.Position(2), test.ShouldAlmostEqual, 0.5)
	test.That(t, p.Position(3), test.ShouldAlmostEqual, 1)
	test.That(t, p.Position(4), test.ShouldEqual, 1.)
	test.That(t, p.Velocity(2), test.ShouldAlmostEqual, 0.75)
	test.That(t, p.Velocity(3.5), test.ShouldEqual, 0.)
	test.That(t, p.Acceleration(1.1), test.ShouldAlmostEqual, 0.75/(2./3))
	test.That(t, p.Acceleration(2.9), test.ShouldAlmostEqual, -0.75/(2./3))

	// continuous across the segment boundaries
	tc := 1 + p.AccelerationTime()
	test.That(t, p.Position(tc-1e-9), test.ShouldAlmostEqual, p.Position(tc+1e-9), 1e-6)
	test.That(t, p.Velocity(3-p.AccelerationTime()-1e-9), test.ShouldAlmostEqual, p.Velocity(3-p.AccelerationTime()+1e-9), 1e-6)

	down, err := NewTrapezoid(0, 2, 1, 0, -0.75)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, down.Position(1), test.ShouldAlmostEqual, 0.5)
	test.That(t, down.Position(2), test.ShouldAlmostEqual, 0)

	for _, vc := range []float64{0.5, 0.25, 1.1, -0.75} {
		_, err := NewTrapezoid(0, 2, 0, 1, vc)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, ErrInfeasibleTrapezoid), test.ShouldBeTrue)
	}
	_, err = NewTrapezoid(0, 0, 0, 1, 1)
	test.That(t, errors.Is(err, ErrInfeasibleTrapezoid), test.ShouldBeTrue)
	test.That(t, CheckTrapezoid(2, 0, 1, 1), test.ShouldBeNil)
}

func TestTrapezoidVelocity(t *testing.T) {
	p, err := NewTrapezoidVelocity(1, 2, 2, 0.5, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.AccelerationTime(), test.ShouldEqual, 0.5)
	test.That(t, p.CruiseDuration(), test.ShouldEqual, 2.)
	test.That(t, p.Duration(), test.ShouldEqual, 3.)
	test.That(t, p.FinalTime(), test.ShouldEqual, 4.)
	test.That(t, p.FinalPosition(), test.ShouldAlmostEqual, 3)
	test.That(t, p.Position(4), test.ShouldAlmostEqual, 3)
	test.That(t, p.Position(5), test.ShouldAlmostEqual, 3)
	test.That(t, p.Velocity(2.5), test.ShouldEqual, 1.)
	test.That(t, p.Acceleration(1.2), test.ShouldEqual, 2.)

	rest, err := NewTrapezoidVelocity(0, 1, 0, 2, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rest.Duration(), test.ShouldEqual, 1.)
	test.That(t, rest.Position(0.5), test.ShouldEqual, 2.)

	_, err = NewTrapezoidVelocity(1, -1, 1, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewTrapezoidVelocity(1, 1, 0, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewTrapezoidVelocity(1, 1, -1, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)

	c := p.Clone()
	p.ChangeInitialTime(10)
	test.That(t, c.InitialTime(), test.ShouldEqual, 1.)
}

func TestSine(t *testing.T) {
	s, err := NewSine(0, 1, 2, 1, 0, 0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Position(0.25), test.ShouldAlmostEqual, 2.5)
	test.That(t, s.Velocity(0), test.ShouldAlmostEqual, 4*math.Pi)
	test.That(t, s.Acceleration(0.25), test.ShouldAlmostEqual, -2*4*math.Pi*math.Pi)
	test.That(t, s.Velocity(0.4), test.ShouldAlmostEqual, scalarVelocityFD(s, 0.4), 1e-5)

	test.That(t, s.Position(2), test.ShouldAlmostEqual, s.Position(1))
	test.That(t, s.Position(-1), test.ShouldAlmostEqual, 0.5)
	test.That(t, s.Velocity(2), test.ShouldEqual, 0.)
	test.That(t, s.Acceleration(-1), test.ShouldEqual, 0.)

	_, err = NewSine(0, -1, 1, 1, 0, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConstant(t *testing.T) {
	c := NewConstant(3)
	test.That(t, c.Position(-100), test.ShouldEqual, 3.)
	test.That(t, c.Velocity(0), test.ShouldEqual, 0.)
	test.That(t, c.IsStarted(0), test.ShouldBeTrue)
	test.That(t, c.IsComplete(0), test.ShouldBeTrue)

	cp := c.Clone()
	c.SetFinalPosition(4)
	test.That(t, cp.Position(0), test.ShouldEqual, 3.)
	test.That(t, c.Position(0), test.ShouldEqual, 4.)
}
