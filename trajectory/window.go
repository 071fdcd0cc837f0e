package trajectory

import (
	"math"

	"go.viam.com/armcore/utils"
)

// Window is the [t0, tf] activity window of a generator. Either bound may be infinite: a window starting at
// -Inf is always started, and a window ending at -Inf is a point window that is always complete.
type Window struct {
	t0 float64
	tf float64
}

// NewWindow returns the window [t0, tf].
func NewWindow(t0, tf float64) Window {
	return Window{t0: t0, tf: tf}
}

func pointWindow() Window {
	return Window{t0: math.Inf(-1), tf: math.Inf(-1)}
}

// InitialTime returns t0.
func (w Window) InitialTime() float64 { return w.t0 }

// FinalTime returns tf.
func (w Window) FinalTime() float64 { return w.tf }

// Duration returns tf - t0.
func (w Window) Duration() float64 { return windowDuration(w.t0, w.tf) }

// TimeLeft returns tf - t.
func (w Window) TimeLeft(t float64) float64 { return w.tf - t }

// IsStarted returns true when t >= t0.
func (w Window) IsStarted(t float64) bool { return t >= w.t0 }

// IsComplete returns true when t > tf.
func (w Window) IsComplete(t float64) bool { return t > w.tf }

// ChangeInitialTime moves the window to start at t0. Windows with an unbounded start are left untouched.
func (w *Window) ChangeInitialTime(t0 float64) {
	if !isFinite(w.t0) {
		return
	}
	d := w.tf - w.t0
	w.t0 = t0
	w.tf = t0 + d
}

// clamp maps t into the window, reporting whether t was inside it.
func (w Window) clamp(t float64) (float64, bool) {
	return utils.Clamp(t, w.t0, w.tf), t >= w.t0 && t <= w.tf
}

func windowDuration(t0, tf float64) float64 {
	if math.IsInf(t0, -1) && math.IsInf(tf, -1) {
		return 0
	}
	return tf - t0
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// driven delegates the time window to the scalar profile that drives a geometric generator.
type driven struct {
	s Scalar
}

func (d driven) InitialTime() float64         { return d.s.InitialTime() }
func (d driven) FinalTime() float64           { return d.s.FinalTime() }
func (d driven) Duration() float64            { return d.s.Duration() }
func (d driven) TimeLeft(t float64) float64   { return d.s.TimeLeft(t) }
func (d driven) IsStarted(t float64) bool     { return d.s.IsStarted(t) }
func (d driven) IsComplete(t float64) bool    { return d.s.IsComplete(t) }
func (d driven) ChangeInitialTime(t0 float64) { d.s.ChangeInitialTime(t0) }

// Scalar returns the profile driving the generator.
func (d driven) Scalar() Scalar { return d.s }

// group computes the window of a set of independently timed children: [min t0, max tf]. It is started when any
// child is started and complete when every child is complete. An empty group has the window [+Inf, -Inf].
type group []Timed

func (g group) InitialTime() float64 {
	t0 := math.Inf(1)
	for _, c := range g {
		t0 = math.Min(t0, c.InitialTime())
	}
	return t0
}

func (g group) FinalTime() float64 {
	tf := math.Inf(-1)
	for _, c := range g {
		tf = math.Max(tf, c.FinalTime())
	}
	return tf
}

func (g group) Duration() float64 {
	if len(g) == 0 {
		return 0
	}
	return windowDuration(g.InitialTime(), g.FinalTime())
}

func (g group) TimeLeft(t float64) float64 { return g.FinalTime() - t }

func (g group) IsStarted(t float64) bool {
	for _, c := range g {
		if c.IsStarted(t) {
			return true
		}
	}
	return false
}

func (g group) IsComplete(t float64) bool {
	for _, c := range g {
		if !c.IsComplete(t) {
			return false
		}
	}
	return true
}

// ChangeInitialTime shifts every child with a finite start by the same amount, so that the earliest finite
// start lands on t0. Offsets between children are preserved.
func (g group) ChangeInitialTime(t0 float64) {
	ref := math.Inf(1)
	for _, c := range g {
		if ct0 := c.InitialTime(); isFinite(ct0) {
			ref = math.Min(ref, ct0)
		}
	}
	if math.IsInf(ref, 1) {
		return
	}
	delta := t0 - ref
	for _, c := range g {
		if ct0 := c.InitialTime(); isFinite(ct0) {
			c.ChangeInitialTime(ct0 + delta)
		}
	}
}
