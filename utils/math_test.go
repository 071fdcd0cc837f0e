package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestDegToRad(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, DegToRad(-90), test.ShouldAlmostEqual, -math.Pi/2)
}

func TestClamp(t *testing.T) {
	test.That(t, Clamp(5, 0, 1), test.ShouldEqual, 1.)
	test.That(t, Clamp(-5, 0, 1), test.ShouldEqual, 0.)
	test.That(t, Clamp(.5, 0, 1), test.ShouldEqual, .5)
	test.That(t, Clamp(3, math.Inf(-1), math.Inf(-1)), test.ShouldEqual, math.Inf(-1))
}

func TestAddScaled(t *testing.T) {
	a := []float64{1, 2, 3}
	out := AddScaled(a, 2, []float64{1, 1, 1})
	test.That(t, out, test.ShouldResemble, []float64{3, 4, 5})
	test.That(t, a, test.ShouldResemble, []float64{1, 2, 3})
}
