package trajectory

import (
	"math"

	"github.com/pkg/errors"
)

// Sine is the profile A*sin(2*pi*f*(t-t0) + phase) + bias over a finite window.
type Sine struct {
	Window
	amplitude float64
	frequency float64
	phase     float64
	bias      float64
}

// NewSine returns a sinusoidal profile active for duration seconds from t0.
func NewSine(t0, duration, amplitude, frequency, phase, bias float64) (*Sine, error) {
	if !(duration >= 0) || !isFinite(duration) || !isFinite(t0) {
		return nil, errors.Errorf("sine profile needs a finite non negative duration from a finite t0, got %f from %f",
			duration, t0)
	}
	return &Sine{
		Window:    NewWindow(t0, t0+duration),
		amplitude: amplitude,
		frequency: frequency,
		phase:     phase,
		bias:      bias,
	}, nil
}

func (s *Sine) angle(t float64) float64 {
	return 2*math.Pi*s.frequency*(t-s.t0) + s.phase
}

// Position returns the profile value at t, holding the boundary values outside the window.
func (s *Sine) Position(t float64) float64 {
	t, _ = s.clamp(t)
	return s.amplitude*math.Sin(s.angle(t)) + s.bias
}

// Velocity returns the first derivative at t.
func (s *Sine) Velocity(t float64) float64 {
	if _, in := s.clamp(t); !in {
		return 0
	}
	w := 2 * math.Pi * s.frequency
	return s.amplitude * w * math.Cos(s.angle(t))
}

// Acceleration returns the second derivative at t.
func (s *Sine) Acceleration(t float64) float64 {
	if _, in := s.clamp(t); !in {
		return 0
	}
	w := 2 * math.Pi * s.frequency
	return -s.amplitude * w * w * math.Sin(s.angle(t))
}

// Clone returns an independent copy.
func (s *Sine) Clone() Scalar {
	c := *s
	return &c
}

// Constant holds a value forever. Its point window is always started and always complete.
type Constant struct {
	Window
	value float64
}

// NewConstant returns a profile that always evaluates to value.
func NewConstant(value float64) *Constant {
	return &Constant{Window: pointWindow(), value: value}
}

// Position returns the held value.
func (c *Constant) Position(float64) float64 { return c.value }

// Velocity is always zero.
func (c *Constant) Velocity(float64) float64 { return 0 }

// Acceleration is always zero.
func (c *Constant) Acceleration(float64) float64 { return 0 }

// SetFinalPosition changes the held value.
func (c *Constant) SetFinalPosition(v float64) { c.value = v }

// Clone returns an independent copy.
func (c *Constant) Clone() Scalar {
	cp := *c
	return &cp
}
