package trajectory

import (
	"github.com/pkg/errors"

	"go.viam.com/armcore/kinematics"
)

// JointsVector adapts a vector of scalar profiles into a joint space trajectory. Every joint is active.
type JointsVector struct {
	Vector
}

// NewJointsVector returns a joint space trajectory owning a copy of v.
func NewJointsVector(v Vector) (*JointsVector, error) {
	if v == nil {
		return nil, errors.New("joint trajectory needs a vector profile")
	}
	return &JointsVector{Vector: v.Clone()}, nil
}

// NumJoints returns the number of joints.
func (j *JointsVector) NumJoints() int { return j.Size() }

// JointPositions returns the DH joint vector at t.
func (j *JointsVector) JointPositions(t float64) []float64 { return j.Position(t) }

// JointVelocities returns the DH joint velocities at t.
func (j *JointsVector) JointVelocities(t float64) []float64 { return j.Velocity(t) }

// Mask activates every joint.
func (j *JointsVector) Mask() []bool { return fullMask(j.Size()) }

// Initialize checks that qDH matches the trajectory size.
func (j *JointsVector) Initialize(qDH []float64) error {
	if len(qDH) != j.Size() {
		return kinematics.NewDimensionMismatchError("q", j.Size(), len(qDH))
	}
	return nil
}

// Clone returns an independent copy.
func (j *JointsVector) Clone() Joints {
	return &JointsVector{Vector: j.Vector.Clone()}
}

// JointsQuintic moves every joint from wherever it is at Initialize to a desired configuration with quintic
// rest to rest profiles sharing the window [t0, tf].
type JointsQuintic struct {
	JointsVector
	desired []float64
}

// NewJointsQuintic returns a joint space trajectory toward desired, in DH convention.
func NewJointsQuintic(desired []float64, t0, tf float64) (*JointsQuintic, error) {
	if len(desired) == 0 {
		return nil, errors.New("joint trajectory needs at least one joint")
	}
	v := &VectorIndependent{}
	for _, qf := range desired {
		q, err := NewRestToRestQuintic(t0, tf, qf, qf)
		if err != nil {
			return nil, err
		}
		v.elems = append(v.elems, q)
	}
	return &JointsQuintic{JointsVector: JointsVector{Vector: v}, desired: append([]float64{}, desired...)}, nil
}

// Initialize sets qDH as the initial configuration of every profile.
func (j *JointsQuintic) Initialize(qDH []float64) error {
	if err := j.JointsVector.Initialize(qDH); err != nil {
		return err
	}
	v := j.Vector.(*VectorIndependent)
	for i, e := range v.elems {
		e.(*Quintic).SetInitialPosition(qDH[i])
	}
	return nil
}

// Desired returns the target configuration.
func (j *JointsQuintic) Desired() []float64 { return append([]float64{}, j.desired...) }

// Clone returns an independent copy.
func (j *JointsQuintic) Clone() Joints {
	return &JointsQuintic{JointsVector: JointsVector{Vector: j.Vector.Clone()}, desired: j.Desired()}
}
