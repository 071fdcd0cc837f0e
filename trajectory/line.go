package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/armcore/spatialmath"
)

// Line moves a point along the segment from pi to pf. The driving scalar is the travelled distance, so it
// spans [0, |pf-pi|].
type Line struct {
	driven
	mode     MotionMode
	target   r3.Vector
	pi, pf   r3.Vector
	dir      r3.Vector
	mask     []bool
	anchored bool
}

// NewLine returns a line toward target, interpreted according to mode once Initialize is called with the
// starting pose. If s can be retargeted, as a Quintic can, its final value is set to the segment length on
// Initialize. A nil mask activates x y and z.
func NewLine(mode MotionMode, target r3.Vector, s Scalar, mask []bool) (*Line, error) {
	if mode != RelTool && mode != RelBase && mode != AbsBase {
		return nil, newInvalidModeError(mode)
	}
	if s == nil {
		return nil, errors.New("line needs a scalar profile")
	}
	m, err := copyMask(mask, 3)
	if err != nil {
		return nil, err
	}
	return &Line{driven: driven{s: s.Clone()}, mode: mode, target: target, mask: m}, nil
}

// NewQuinticLine returns a line toward target driven by a quintic distance profile over [t0, tf]. The
// boundary velocities and accelerations are along the line direction.
func NewQuinticLine(mode MotionMode, t0, tf float64, target r3.Vector, b Boundary, mask []bool) (*Line, error) {
	s, err := NewQuintic(t0, tf, 0, 0, b)
	if err != nil {
		return nil, err
	}
	return NewLine(mode, target, s, mask)
}

// NewLineSegment returns a line between two absolute points. It does not depend on the starting pose, so
// Initialize leaves it untouched and s is used as given.
func NewLineSegment(pi, pf r3.Vector, s Scalar) (*Line, error) {
	if s == nil {
		return nil, errors.New("line needs a scalar profile")
	}
	l := &Line{driven: driven{s: s.Clone()}, mode: AbsBase, target: pf, mask: fullMask(3), anchored: true}
	l.setEndpoints(pi, pf)
	return l, nil
}

func (l *Line) setEndpoints(pi, pf r3.Vector) {
	l.pi = pi
	l.pf = pf
	delta := pf.Sub(pi)
	if n := delta.Norm(); n > 0 {
		l.dir = delta.Mul(1 / n)
	} else {
		l.dir = r3.Vector{}
	}
}

// Initialize resolves the target against the starting pose.
func (l *Line) Initialize(start spatialmath.Transform) error {
	if l.anchored {
		return nil
	}
	pi := start.Point()
	var pf r3.Vector
	switch l.mode {
	case RelTool:
		pf = start.TransformPoint(l.target)
	case RelBase:
		pf = pi.Add(l.target)
	case AbsBase:
		pf = l.target
	default:
		return newInvalidModeError(l.mode)
	}
	l.setEndpoints(pi, pf)
	if fs, ok := l.s.(finalPositionSetter); ok {
		fs.SetFinalPosition(pf.Sub(pi).Norm())
	}
	return nil
}

// Position returns pi + s(t)*dir.
func (l *Line) Position(t float64) r3.Vector {
	return l.pi.Add(l.dir.Mul(l.s.Position(t)))
}

// Velocity returns s'(t)*dir.
func (l *Line) Velocity(t float64) r3.Vector {
	return l.dir.Mul(l.s.Velocity(t))
}

// Acceleration returns s''(t)*dir.
func (l *Line) Acceleration(t float64) r3.Vector {
	return l.dir.Mul(l.s.Acceleration(t))
}

// Mask returns the active coordinates.
func (l *Line) Mask() []bool { return append([]bool{}, l.mask...) }

// ChangeFrame re-expresses the endpoints in a new frame.
func (l *Line) ChangeFrame(newTCurr spatialmath.Transform) {
	l.setEndpoints(newTCurr.TransformPoint(l.pi), newTCurr.TransformPoint(l.pf))
}

// InitialPoint returns the start of the segment.
func (l *Line) InitialPoint() r3.Vector { return l.pi }

// FinalPoint returns the end of the segment.
func (l *Line) FinalPoint() r3.Vector { return l.pf }

// Direction returns the unit direction of the segment, zero for a degenerate segment.
func (l *Line) Direction() r3.Vector { return l.dir }

// Mode returns how the target is interpreted.
func (l *Line) Mode() MotionMode { return l.mode }

// Clone returns an independent copy.
func (l *Line) Clone() Position {
	c := *l
	c.driven = driven{s: l.s.Clone()}
	c.mask = l.Mask()
	return &c
}
