package trajectory

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// VectorIndependent samples an ordered set of independently timed scalar profiles.
type VectorIndependent struct {
	elems []Scalar
}

// NewVectorIndependent returns a vector owning copies of elems.
func NewVectorIndependent(elems ...Scalar) (*VectorIndependent, error) {
	for i, e := range elems {
		if e == nil {
			return nil, errors.Errorf("vector element %d is nil", i)
		}
	}
	return &VectorIndependent{elems: lo.Map(elems, func(e Scalar, _ int) Scalar { return e.Clone() })}, nil
}

// NewUniformVector returns a vector of n copies of s.
func NewUniformVector(s Scalar, n int) (*VectorIndependent, error) {
	if s == nil {
		return nil, errors.New("vector element is nil")
	}
	v := &VectorIndependent{}
	for i := 0; i < n; i++ {
		v.elems = append(v.elems, s.Clone())
	}
	return v, nil
}

func (v *VectorIndependent) group() group {
	return lo.Map(v.elems, func(e Scalar, _ int) Timed { return e })
}

// InitialTime returns the earliest start, +Inf for an empty vector.
func (v *VectorIndependent) InitialTime() float64 { return v.group().InitialTime() }

// FinalTime returns the latest end, -Inf for an empty vector.
func (v *VectorIndependent) FinalTime() float64 { return v.group().FinalTime() }

// Duration returns FinalTime() - InitialTime(), zero for an empty vector.
func (v *VectorIndependent) Duration() float64 { return v.group().Duration() }

// TimeLeft returns FinalTime() - t.
func (v *VectorIndependent) TimeLeft(t float64) float64 { return v.group().TimeLeft(t) }

// IsStarted reports whether any element started.
func (v *VectorIndependent) IsStarted(t float64) bool { return v.group().IsStarted(t) }

// IsComplete reports whether every element completed.
func (v *VectorIndependent) IsComplete(t float64) bool { return v.group().IsComplete(t) }

// ChangeInitialTime shifts every element so that the earliest one starts at t0, preserving their offsets.
func (v *VectorIndependent) ChangeInitialTime(t0 float64) { v.group().ChangeInitialTime(t0) }

// Size returns the number of elements.
func (v *VectorIndependent) Size() int { return len(v.elems) }

// Element returns element i.
func (v *VectorIndependent) Element(i int) (Scalar, error) {
	if i < 0 || i >= len(v.elems) {
		return nil, errors.Errorf("vector index %d out of range [0, %d)", i, len(v.elems))
	}
	return v.elems[i], nil
}

// Append adds a copy of s at the end.
func (v *VectorIndependent) Append(s Scalar) error {
	if s == nil {
		return errors.New("vector element is nil")
	}
	v.elems = append(v.elems, s.Clone())
	return nil
}

// Pop removes and returns the last element.
func (v *VectorIndependent) Pop() (Scalar, error) {
	if len(v.elems) == 0 {
		return nil, errors.New("cannot pop from an empty vector")
	}
	last := v.elems[len(v.elems)-1]
	v.elems = v.elems[:len(v.elems)-1]
	return last, nil
}

func (v *VectorIndependent) sample(f func(Scalar) float64) []float64 {
	return lo.Map(v.elems, func(e Scalar, _ int) float64 { return f(e) })
}

// Position returns every element value at t.
func (v *VectorIndependent) Position(t float64) []float64 {
	return v.sample(func(s Scalar) float64 { return s.Position(t) })
}

// Velocity returns every element velocity at t.
func (v *VectorIndependent) Velocity(t float64) []float64 {
	return v.sample(func(s Scalar) float64 { return s.Velocity(t) })
}

// Acceleration returns every element acceleration at t.
func (v *VectorIndependent) Acceleration(t float64) []float64 {
	return v.sample(func(s Scalar) float64 { return s.Acceleration(t) })
}

// Clone returns an independent copy.
func (v *VectorIndependent) Clone() Vector {
	return &VectorIndependent{elems: lo.Map(v.elems, func(e Scalar, _ int) Scalar { return e.Clone() })}
}
