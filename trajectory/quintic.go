package trajectory

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Quintic is a fifth order polynomial profile matching position, velocity and acceleration at both ends of
// its window.
type Quintic struct {
	Window
	pi, pf float64
	b      Boundary
	// coefficients in increasing powers of t - t0
	coeff [6]float64
}

// NewQuintic returns a quintic profile from pi at t0 to pf at tf with the given boundary velocities and
// accelerations. The window must be finite with tf > t0.
func NewQuintic(t0, tf, pi, pf float64, b Boundary) (*Quintic, error) {
	if !isFinite(t0) || !isFinite(tf) || !(tf > t0) {
		return nil, errors.Errorf("quintic profile needs a finite window with tf > t0, got [%f, %f]", t0, tf)
	}
	q := &Quintic{Window: NewWindow(t0, tf), pi: pi, pf: pf, b: b}
	q.solve()
	return q, nil
}

// NewRestToRestQuintic returns a quintic profile from pi to pf that starts and ends at rest.
func NewRestToRestQuintic(t0, tf, pi, pf float64) (*Quintic, error) {
	return NewQuintic(t0, tf, pi, pf, Boundary{})
}

func (q *Quintic) solve() {
	T := q.Duration()
	t2 := T * T
	t3 := t2 * T
	t4 := t3 * T
	t5 := t4 * T

	q.coeff[0] = q.pi
	q.coeff[1] = q.b.InitialVelocity
	q.coeff[2] = q.b.InitialAcceleration / 2

	aInv := mat.NewDense(3, 3, []float64{
		10 / t3, -4 / t2, 1 / (2 * T),
		-15 / t4, 7 / t3, -1 / t2,
		6 / t5, -3 / t4, 1 / (2 * t3),
	})
	rhs := mat.NewVecDense(3, []float64{
		q.pf - q.pi - q.b.InitialVelocity*T - q.b.InitialAcceleration/2*t2,
		q.b.FinalVelocity - q.b.InitialVelocity - q.b.InitialAcceleration*T,
		q.b.FinalAcceleration - q.b.InitialAcceleration,
	})
	var high mat.VecDense
	high.MulVec(aInv, rhs)
	q.coeff[3] = high.AtVec(0)
	q.coeff[4] = high.AtVec(1)
	q.coeff[5] = high.AtVec(2)
}

// Position returns the profile value at t.
func (q *Quintic) Position(t float64) float64 {
	switch {
	case t < q.t0:
		return q.pi
	case t > q.tf:
		return q.pf
	}
	tau := t - q.t0
	c := q.coeff
	return ((((c[5]*tau+c[4])*tau+c[3])*tau+c[2])*tau+c[1])*tau + c[0]
}

// Velocity returns the first derivative at t.
func (q *Quintic) Velocity(t float64) float64 {
	if t < q.t0 || t > q.tf {
		return 0
	}
	tau := t - q.t0
	c := q.coeff
	return (((5*c[5]*tau+4*c[4])*tau+3*c[3])*tau+2*c[2])*tau + c[1]
}

// Acceleration returns the second derivative at t.
func (q *Quintic) Acceleration(t float64) float64 {
	if t < q.t0 || t > q.tf {
		return 0
	}
	tau := t - q.t0
	c := q.coeff
	return ((20*c[5]*tau+12*c[4])*tau+6*c[3])*tau + 2*c[2]
}

// ChangeInitialTime moves the window to start at t0 and solves the coefficients again.
func (q *Quintic) ChangeInitialTime(t0 float64) {
	q.Window.ChangeInitialTime(t0)
	q.solve()
}

// InitialPosition returns the value at t0.
func (q *Quintic) InitialPosition() float64 { return q.pi }

// FinalPosition returns the value at tf.
func (q *Quintic) FinalPosition() float64 { return q.pf }

// Boundary returns the boundary velocities and accelerations.
func (q *Quintic) Boundary() Boundary { return q.b }

// SetInitialPosition changes the value at t0.
func (q *Quintic) SetInitialPosition(pi float64) {
	q.pi = pi
	q.solve()
}

// SetFinalPosition changes the value at tf.
func (q *Quintic) SetFinalPosition(pf float64) {
	q.pf = pf
	q.solve()
}

// SetBoundary changes the boundary velocities and accelerations.
func (q *Quintic) SetBoundary(b Boundary) {
	q.b = b
	q.solve()
}

// Clone returns an independent copy.
func (q *Quintic) Clone() Scalar {
	c := *q
	return &c
}
