// Package utils contains small numeric helpers shared by the kinematics, control and trajectory packages.
package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// AddScaled returns a + alpha*b as a new slice. The inputs are not modified.
func AddScaled(a []float64, alpha float64, b []float64) []float64 {
	out := make([]float64, len(a))
	copy(out, a)
	floats.AddScaled(out, alpha, b)
	return out
}
