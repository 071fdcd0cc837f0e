package trajectory

import (
	"math"

	"github.com/pkg/errors"
)

// ErrInfeasibleTrapezoid is returned when no trapezoidal velocity profile joins the boundary positions in the
// requested time with the requested cruise speed.
var ErrInfeasibleTrapezoid = errors.New("infeasible trapezoidal velocity profile")

// CheckTrapezoid returns an error wrapping ErrInfeasibleTrapezoid unless |pf-pi|/duration < |cruiseSpeed| <=
// 2|pf-pi|/duration and cruiseSpeed has the sign of pf-pi.
func CheckTrapezoid(duration, pi, pf, cruiseSpeed float64) error {
	if !(duration > 0) || !isFinite(duration) {
		return errors.Wrapf(ErrInfeasibleTrapezoid, "duration %f must be positive", duration)
	}
	delta := pf - pi
	avg := math.Abs(delta) / duration
	if avg >= math.Abs(cruiseSpeed) || math.Abs(cruiseSpeed) > 2*avg || delta*cruiseSpeed < 0 {
		return errors.Wrapf(ErrInfeasibleTrapezoid,
			"cruise speed %f must be in (%f, %f] with the sign of the displacement %f", cruiseSpeed, avg, 2*avg, delta)
	}
	return nil
}

// Trapezoid is a constant acceleration, cruise, constant deceleration profile between two positions.
type Trapezoid struct {
	Window
	pi, pf float64
	vc     float64
	// tc is the length of the acceleration and deceleration segments, ddp their acceleration
	tc  float64
	ddp float64
}

// NewTrapezoid returns a trapezoidal profile from pi at t0 to pf at t0+duration cruising at cruiseSpeed.
func NewTrapezoid(t0, duration, pi, pf, cruiseSpeed float64) (*Trapezoid, error) {
	if err := CheckTrapezoid(duration, pi, pf, cruiseSpeed); err != nil {
		return nil, err
	}
	tc := (pi - pf + cruiseSpeed*duration) / cruiseSpeed
	return &Trapezoid{
		Window: NewWindow(t0, t0+duration),
		pi:     pi,
		pf:     pf,
		vc:     cruiseSpeed,
		tc:     tc,
		ddp:    cruiseSpeed / tc,
	}, nil
}

// Position returns the profile value at t.
func (p *Trapezoid) Position(t float64) float64 {
	tau := t - p.t0
	T := p.Duration()
	switch {
	case tau < 0:
		return p.pi
	case tau <= p.tc:
		return p.pi + 0.5*p.ddp*tau*tau
	case tau <= T-p.tc:
		return p.pi + p.ddp*p.tc*(tau-p.tc/2)
	case tau <= T:
		return p.pf - 0.5*p.ddp*(T-tau)*(T-tau)
	default:
		return p.pf
	}
}

// Velocity returns the first derivative at t.
func (p *Trapezoid) Velocity(t float64) float64 {
	tau := t - p.t0
	T := p.Duration()
	switch {
	case tau < 0:
		return 0
	case tau <= p.tc:
		return p.ddp * tau
	case tau <= T-p.tc:
		return p.vc
	case tau <= T:
		return p.ddp * (T - tau)
	default:
		return 0
	}
}

// Acceleration returns the second derivative at t.
func (p *Trapezoid) Acceleration(t float64) float64 {
	tau := t - p.t0
	T := p.Duration()
	switch {
	case tau < 0:
		return 0
	case tau <= p.tc:
		return p.ddp
	case tau <= T-p.tc:
		return 0
	case tau <= T:
		return -p.ddp
	default:
		return 0
	}
}

// CruiseSpeed returns the velocity of the constant speed segment.
func (p *Trapezoid) CruiseSpeed() float64 { return p.vc }

// AccelerationTime returns the length of the acceleration segment.
func (p *Trapezoid) AccelerationTime() float64 { return p.tc }

// Clone returns an independent copy.
func (p *Trapezoid) Clone() Scalar {
	c := *p
	return &c
}

// TrapezoidVelocity is a trapezoidal profile specified by its cruise speed, cruise duration and acceleration.
// The overall duration follows from them.
type TrapezoidVelocity struct {
	Trapezoid
	cruiseDuration float64
}

// NewTrapezoidVelocity returns a profile starting at pi at t0, accelerating to cruiseSpeed, cruising for
// cruiseDuration and decelerating back to rest.
func NewTrapezoidVelocity(cruiseSpeed, cruiseDuration, acceleration, pi, t0 float64) (*TrapezoidVelocity, error) {
	var tc float64
	if acceleration != 0 || cruiseSpeed != 0 {
		tc = cruiseSpeed / acceleration
	}
	if math.IsNaN(tc) || math.IsInf(tc, 0) || tc < 0 || cruiseDuration < 0 || math.IsNaN(cruiseDuration) {
		return nil, errors.Errorf(
			"invalid trapezoidal velocity profile: acceleration time %f and cruise time %f must be finite and non negative",
			tc, cruiseDuration)
	}
	var ddp float64
	if tc > 0 {
		ddp = cruiseSpeed / tc
	}
	duration := 2*tc + cruiseDuration
	return &TrapezoidVelocity{
		Trapezoid: Trapezoid{
			Window: NewWindow(t0, t0+duration),
			pi:     pi,
			pf:     pi + ddp*tc*cruiseDuration + ddp*tc*tc,
			vc:     cruiseSpeed,
			tc:     tc,
			ddp:    ddp,
		},
		cruiseDuration: cruiseDuration,
	}, nil
}

// FinalPosition returns the value reached at the end of the profile.
func (p *TrapezoidVelocity) FinalPosition() float64 { return p.pf }

// CruiseDuration returns the length of the constant speed segment.
func (p *TrapezoidVelocity) CruiseDuration() float64 { return p.cruiseDuration }

// Clone returns an independent copy.
func (p *TrapezoidVelocity) Clone() Scalar {
	c := *p
	return &c
}
