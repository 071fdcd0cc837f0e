package trajectory

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/armcore/kinematics"
)

// ZeroNullSpace is the empty secondary objective. It is always active.
type ZeroNullSpace struct {
	Window
	n int
}

// NewZeroNullSpace returns the zero objective for n joints.
func NewZeroNullSpace(n int) *ZeroNullSpace {
	return &ZeroNullSpace{Window: pointWindow(), n: n}
}

// NumJoints returns the number of joints.
func (z *ZeroNullSpace) NumJoints() int { return z.n }

// JointVelocities returns zeros.
func (z *ZeroNullSpace) JointVelocities(float64, []float64, *kinematics.Chain) ([]float64, error) {
	return make([]float64, z.n), nil
}

// Mask activates every joint.
func (z *ZeroNullSpace) Mask() []bool { return fullMask(z.n) }

// Initialize is a no-op.
func (z *ZeroNullSpace) Initialize([]float64, *kinematics.Chain) error { return nil }

// Clone returns an independent copy.
func (z *ZeroNullSpace) Clone() NullSpace {
	c := *z
	return &c
}

// JointLimitsObjective pulls the joints toward a desired configuration, each weighted and normalized by its
// joint range. It is always active.
type JointLimitsObjective struct {
	Window
	desired []float64
	weights []float64
}

// NewJointLimitsObjective returns the objective for n joints. nil desired or weights default to zeros.
func NewJointLimitsObjective(n int, desired, weights []float64) (*JointLimitsObjective, error) {
	if desired == nil {
		desired = make([]float64, n)
	}
	if weights == nil {
		weights = make([]float64, n)
	}
	if len(desired) != n {
		return nil, kinematics.NewDimensionMismatchError("desired configuration", n, len(desired))
	}
	if len(weights) != n {
		return nil, kinematics.NewDimensionMismatchError("weights", n, len(weights))
	}
	return &JointLimitsObjective{
		Window:  pointWindow(),
		desired: append([]float64{}, desired...),
		weights: append([]float64{}, weights...),
	}, nil
}

// NumJoints returns the number of joints.
func (o *JointLimitsObjective) NumJoints() int { return len(o.desired) }

// JointVelocities returns the gradient of the weighted distance from the desired configuration at qDH.
func (o *JointLimitsObjective) JointVelocities(_ float64, qDH []float64, chain *kinematics.Chain) ([]float64, error) {
	if chain == nil {
		return nil, errors.New("joint limits objective needs a chain")
	}
	return chain.GradTargetConfiguration(qDH, o.desired, o.weights)
}

// Mask activates the joints with a non zero weight.
func (o *JointLimitsObjective) Mask() []bool {
	return lo.Map(o.weights, func(w float64, _ int) bool { return w != 0 })
}

// Initialize checks the objective against the chain.
func (o *JointLimitsObjective) Initialize(qDH []float64, chain *kinematics.Chain) error {
	if chain != nil && chain.NumJoints() != len(o.desired) {
		return kinematics.NewDimensionMismatchError("chain", len(o.desired), chain.NumJoints())
	}
	if len(qDH) != len(o.desired) {
		return kinematics.NewDimensionMismatchError("q", len(o.desired), len(qDH))
	}
	return nil
}

// DesiredConfiguration returns the configuration the objective pulls toward.
func (o *JointLimitsObjective) DesiredConfiguration() []float64 { return append([]float64{}, o.desired...) }

// Weights returns the per joint weights.
func (o *JointLimitsObjective) Weights() []float64 { return append([]float64{}, o.weights...) }

// Clone returns an independent copy.
func (o *JointLimitsObjective) Clone() NullSpace {
	return &JointLimitsObjective{Window: o.Window, desired: o.DesiredConfiguration(), weights: o.Weights()}
}
