// Package trajectory provides time parameterized references for a CLIK loop: scalar profiles, position,
// orientation, Cartesian, joint space and null space generators. Every generator is active over a time window
// [t0, tf] and saturates outside it, holding the boundary value with zero velocity and acceleration.
//
// Generators are not safe for concurrent use. Composite generators own deep copies of their children.
package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/kinematics"
	"go.viam.com/armcore/spatialmath"
)

// Timed is the time window contract shared by every generator.
type Timed interface {
	InitialTime() float64
	FinalTime() float64
	Duration() float64
	TimeLeft(t float64) float64
	// IsStarted returns true when t >= t0.
	IsStarted(t float64) bool
	// IsComplete returns true when t > tf.
	IsComplete(t float64) bool
	// ChangeInitialTime translates the window so that it starts at t0, preserving its duration.
	ChangeInitialTime(t0 float64)
}

// Scalar is a one dimensional profile.
type Scalar interface {
	Timed
	Position(t float64) float64
	Velocity(t float64) float64
	Acceleration(t float64) float64
	Clone() Scalar
}

// Position is a trajectory of a point in space.
type Position interface {
	Timed
	Position(t float64) r3.Vector
	Velocity(t float64) r3.Vector
	Acceleration(t float64) r3.Vector
	// Mask selects the active x y z coordinates.
	Mask() []bool
	// Initialize resolves relative targets against the starting pose. It must be called once before sampling.
	Initialize(start spatialmath.Transform) error
	// ChangeFrame re-expresses the trajectory in a new frame, newTCurr being the current frame in the new one.
	ChangeFrame(newTCurr spatialmath.Transform)
	Clone() Position
}

// Quaternion is a trajectory of an orientation.
type Quaternion interface {
	Timed
	Quaternion(t float64) quat.Number
	AngularVelocity(t float64) r3.Vector
	AngularAcceleration(t float64) r3.Vector
	// Mask selects the active orientation error coordinates.
	Mask() []bool
	Initialize(start spatialmath.Transform) error
	ChangeFrame(newTCurr spatialmath.Transform)
	Clone() Quaternion
}

// Cartesian is a trajectory of a full pose.
type Cartesian interface {
	Timed
	Position(t float64) r3.Vector
	Quaternion(t float64) quat.Number
	Pose(t float64) spatialmath.Pose
	LinearVelocity(t float64) r3.Vector
	AngularVelocity(t float64) r3.Vector
	// Twist returns the linear velocity followed by the angular velocity.
	Twist(t float64) []float64
	// Mask selects the active position then orientation coordinates.
	Mask() []bool
	Initialize(start spatialmath.Transform) error
	ChangeFrame(newTCurr spatialmath.Transform)
	Clone() Cartesian
}

// Vector is an ordered set of scalar profiles sampled together.
type Vector interface {
	Timed
	Size() int
	Position(t float64) []float64
	Velocity(t float64) []float64
	Acceleration(t float64) []float64
	Clone() Vector
}

// Joints is a joint space trajectory in DH convention.
type Joints interface {
	Timed
	NumJoints() int
	JointPositions(t float64) []float64
	JointVelocities(t float64) []float64
	Mask() []bool
	// Initialize anchors the trajectory at the current joint vector.
	Initialize(qDH []float64) error
	Clone() Joints
}

// NullSpace produces the candidate joint velocity of a secondary objective.
type NullSpace interface {
	Timed
	NumJoints() int
	JointVelocities(t float64, qDH []float64, chain *kinematics.Chain) ([]float64, error)
	Mask() []bool
	Initialize(qDH []float64, chain *kinematics.Chain) error
	Clone() NullSpace
}

// MotionMode tells how the target of a relative trajectory is interpreted.
type MotionMode int

const (
	// RelTool targets are expressed in the tool frame at the starting pose.
	RelTool MotionMode = iota
	// RelBase targets are deltas expressed in the base frame.
	RelBase
	// AbsBase targets are absolute, in the base frame.
	AbsBase
)

func (m MotionMode) String() string {
	switch m {
	case RelTool:
		return "rel_tool"
	case RelBase:
		return "rel_base"
	case AbsBase:
		return "abs_base"
	default:
		return "unknown"
	}
}

// ParseMotionMode converts "rel_tool", "rel_base" or "abs_base" into a MotionMode.
func ParseMotionMode(s string) (MotionMode, error) {
	switch s {
	case "rel_tool":
		return RelTool, nil
	case "rel_base":
		return RelBase, nil
	case "abs_base":
		return AbsBase, nil
	default:
		return 0, errors.Errorf("unknown motion mode %q", s)
	}
}

func newInvalidModeError(m MotionMode) error {
	return errors.Errorf("invalid motion mode %d", int(m))
}

// Boundary holds the boundary velocities and accelerations of a boundary value profile.
type Boundary struct {
	InitialVelocity     float64
	FinalVelocity       float64
	InitialAcceleration float64
	FinalAcceleration   float64
}

// finalPositionSetter is implemented by scalar profiles that can be retargeted once the true displacement is known.
type finalPositionSetter interface {
	SetFinalPosition(pf float64)
}

func fullMask(n int) []bool {
	m := make([]bool, n)
	for i := range m {
		m[i] = true
	}
	return m
}

func copyMask(mask []bool, n int) ([]bool, error) {
	if mask == nil {
		return fullMask(n), nil
	}
	if len(mask) != n {
		return nil, kinematics.NewDimensionMismatchError("mask", n, len(mask))
	}
	return append([]bool{}, mask...), nil
}
