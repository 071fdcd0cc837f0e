// Package clik implements closed loop inverse kinematics: a damped least squares resolution of a task space
// error and twist into joint velocities, with an optional secondary objective projected onto the null space
// of the task Jacobian.
//
// The controller holds no per-cycle state. Continuity state, such as the previous end effector quaternion,
// is passed in and handed back by every call.
package clik

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/kinematics"
	"go.viam.com/armcore/logging"
	"go.viam.com/armcore/spatialmath"
	"go.viam.com/armcore/utils"
)

// TaskDimensions is the size of a full position plus orientation task.
const TaskDimensions = 6

// Controller resolves task space motion into joint motion for a chain.
type Controller struct {
	chain  *kinematics.Chain
	logger logging.Logger
}

// NewController returns a CLIK controller for chain.
func NewController(chain *kinematics.Chain, logger logging.Logger) (*Controller, error) {
	if chain == nil {
		return nil, errors.New("clik controller needs a chain")
	}
	if chain.NumJoints() == 0 {
		return nil, errors.Errorf("chain %q has no joints", chain.Name())
	}
	if logger == nil {
		logger = logging.Global().Sublogger("clik")
	}
	return &Controller{chain: chain, logger: logger}, nil
}

// Chain returns the chain the controller works on.
func (c *Controller) Chain() *kinematics.Chain {
	return c.chain
}

// StepInput holds the inputs of the general CLIK primitive. Every vector is in DH convention.
type StepInput struct {
	// Q is the current joint vector.
	Q []float64
	// Error is the task space error, one entry per Jacobian row.
	Error []float64
	// Jacobian is the task Jacobian evaluated at Q, with one column per joint.
	Jacobian mat.Matrix
	// DesiredTwist is the feedforward task velocity. nil means zero.
	DesiredTwist []float64
	// Gain is the proportional gain on Error.
	Gain float64
	// Ts is the sample period in seconds.
	Ts float64
	// NullSpaceGain scales NullSpaceVelocity. Zero disables the secondary objective.
	NullSpaceGain float64
	// NullSpaceVelocity is the candidate joint velocity projected onto the null space of Jacobian.
	NullSpaceVelocity []float64
}

// Result is the output of a CLIK cycle.
type Result struct {
	// Q is the integrated joint vector, Q_k + QDot*Ts.
	Q []float64
	// QDot is the commanded joint velocity.
	QDot []float64
	// Damping is the damping factor used for the pseudo-inverse.
	Damping float64
	// Error is the task error after masking. Only set by Track.
	Error []float64
	// Quaternion is the end effector quaternion resolved for continuity. Only set by Track, feed it back as
	// PreviousQuaternion on the next cycle.
	Quaternion quat.Number
}

// Step runs the general CLIK primitive:
//
//	lambda = |v_d + k*e| / speedSaturation
//	qdot   = J#(lambda) * (v_d + k*e) + k0 * (I - J#(lambda)*J) * q0
//	q      = q_k + qdot*Ts
func (c *Controller) Step(in StepInput) (Result, error) {
	if in.Jacobian == nil {
		return Result{}, errors.New("step needs a jacobian")
	}
	rows, cols := in.Jacobian.Dims()
	if len(in.Q) != cols {
		return Result{}, kinematics.NewDimensionMismatchError("q", cols, len(in.Q))
	}
	if len(in.Error) != rows {
		return Result{}, kinematics.NewDimensionMismatchError("error", rows, len(in.Error))
	}
	if in.DesiredTwist != nil && len(in.DesiredTwist) != rows {
		return Result{}, kinematics.NewDimensionMismatchError("desired twist", rows, len(in.DesiredTwist))
	}
	if in.NullSpaceGain != 0 && len(in.NullSpaceVelocity) != cols {
		return Result{}, kinematics.NewDimensionMismatchError("null space velocity", cols, len(in.NullSpaceVelocity))
	}

	v := make([]float64, rows)
	floats.AddScaled(v, in.Gain, in.Error)
	if in.DesiredTwist != nil {
		floats.Add(v, in.DesiredTwist)
	}
	lambda := floats.Norm(v, 2) / c.chain.DLSJointSpeedSaturation()

	jPinv, err := spatialmath.DampedPseudoInverse(in.Jacobian, lambda)
	if err != nil {
		return Result{}, err
	}
	qDot := mat.NewVecDense(cols, nil)
	qDot.MulVec(jPinv, mat.NewVecDense(rows, v))

	if in.NullSpaceGain != 0 {
		q0 := mat.NewVecDense(cols, append([]float64{}, in.NullSpaceVelocity...))
		var projected mat.VecDense
		projected.MulVec(spatialmath.NullSpaceProjector(in.Jacobian, jPinv), q0)
		qDot.AddScaledVec(qDot, in.NullSpaceGain, &projected)
	}

	qd := append([]float64{}, qDot.RawVector().Data...)
	return Result{
		Q:       utils.AddScaled(in.Q, in.Ts, qd),
		QDot:    qd,
		Damping: lambda,
	}, nil
}

// TrackInput holds the inputs of the quaternion CLIK. Every joint vector is in DH convention.
type TrackInput struct {
	Q                      []float64
	DesiredPosition        r3.Vector
	DesiredQuaternion      quat.Number
	PreviousQuaternion     quat.Number
	DesiredLinearVelocity  r3.Vector
	DesiredAngularVelocity r3.Vector
	// Mask selects the active task rows, position x y z then orientation x y z. nil means all.
	Mask []bool
	Gain float64
	Ts   float64
	// NullSpaceGain enables the secondary objective when non zero. The objective is either
	// NullSpaceVelocity or, when DesiredConfiguration is set, the gradient pulling toward
	// DesiredConfiguration with NullSpaceWeights.
	NullSpaceGain        float64
	NullSpaceVelocity    []float64
	DesiredConfiguration []float64
	NullSpaceWeights     []float64
}

// Track runs one quaternion CLIK cycle against a desired position and orientation. Masked task rows are removed
// from the error, the twist and the Jacobian.
func (c *Controller) Track(in TrackInput) (Result, error) {
	n := c.chain.NumJoints()
	if len(in.Q) != n {
		return Result{}, kinematics.NewDimensionMismatchError("q", n, len(in.Q))
	}
	mask := in.Mask
	if mask == nil {
		mask = FullMask()
	}
	if len(mask) != TaskDimensions {
		return Result{}, kinematics.NewDimensionMismatchError("mask", TaskDimensions, len(mask))
	}

	all, err := c.chain.FkineAll(in.Q, n+1)
	if err != nil {
		return Result{}, err
	}
	j, err := c.chain.JacobianFromTransforms(all)
	if err != nil {
		return Result{}, err
	}
	ee := all[len(all)-1]

	actual := spatialmath.QuatContinuity(ee.Quaternion(), in.PreviousQuaternion)
	pErr := in.DesiredPosition.Sub(ee.Point())
	oErr := OrientationError(in.DesiredQuaternion, actual)
	e := []float64{pErr.X, pErr.Y, pErr.Z, oErr.X, oErr.Y, oErr.Z}
	vd := []float64{
		in.DesiredLinearVelocity.X, in.DesiredLinearVelocity.Y, in.DesiredLinearVelocity.Z,
		in.DesiredAngularVelocity.X, in.DesiredAngularVelocity.Y, in.DesiredAngularVelocity.Z,
	}
	if !lo.Contains(mask, true) {
		c.logger.Warn("task mask disables every task row, only the null space objective is tracked")
	}
	zero := make([]float64, n)
	for i, active := range mask {
		if active {
			continue
		}
		e[i] = 0
		vd[i] = 0
		j.SetRow(i, zero)
	}

	q0 := in.NullSpaceVelocity
	if in.NullSpaceGain != 0 && in.DesiredConfiguration != nil {
		if q0, err = c.chain.GradTargetConfiguration(in.Q, in.DesiredConfiguration, in.NullSpaceWeights); err != nil {
			return Result{}, err
		}
	}

	res, err := c.Step(StepInput{
		Q:                 in.Q,
		Error:             e,
		Jacobian:          j,
		DesiredTwist:      vd,
		Gain:              in.Gain,
		Ts:                in.Ts,
		NullSpaceGain:     in.NullSpaceGain,
		NullSpaceVelocity: q0,
	})
	if err != nil {
		return Result{}, err
	}
	res.Error = e
	res.Quaternion = actual
	return res, nil
}

// TrackPose runs Track with the desired position and orientation taken from target.
func (c *Controller) TrackPose(in TrackInput, target spatialmath.Pose) (Result, error) {
	in.DesiredPosition = target.Point()
	in.DesiredQuaternion = target.Orientation()
	return c.Track(in)
}

// OrientationError returns the vector part of qd * q^-1.
func OrientationError(qd, q quat.Number) r3.Vector {
	return spatialmath.QuatVector(quat.Mul(qd, spatialmath.QuatInverse(q)))
}

// FullMask returns a task mask with every row active.
func FullMask() []bool {
	return []bool{true, true, true, true, true, true}
}

// PositionMask returns a task mask with only the position rows active.
func PositionMask() []bool {
	return []bool{true, true, true, false, false, false}
}
