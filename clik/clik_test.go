package clik

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/kinematics"
	"go.viam.com/armcore/logging"
	"go.viam.com/armcore/spatialmath"
)

func loadIiwa(t *testing.T) *kinematics.Chain {
	t.Helper()
	c, err := kinematics.ParseChainJSONFile("../kinematics/testdata/iiwa7.json", "")
	test.That(t, err, test.ShouldBeNil)
	return c
}

func planarArm(t *testing.T) *kinematics.Chain {
	t.Helper()
	l1, err := kinematics.NewRevoluteLink(1, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	l2, err := kinematics.NewRevoluteLink(1, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	c, err := kinematics.NewSimpleChain("planar", l1, l2)
	test.That(t, err, test.ShouldBeNil)
	return c
}

func TestNewController(t *testing.T) {
	logger := logging.NewTestLogger(t)
	_, err := NewController(nil, logger)
	test.That(t, err, test.ShouldNotBeNil)

	empty, err := kinematics.NewSimpleChain("empty")
	test.That(t, err, test.ShouldBeNil)
	_, err = NewController(empty, logger)
	test.That(t, err, test.ShouldNotBeNil)

	chain := planarArm(t)
	c, err := NewController(chain, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.Chain(), test.ShouldEqual, chain)
}

func TestStepEquilibrium(t *testing.T) {
	chain := loadIiwa(t)
	c, err := NewController(chain, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	q := []float64{0.1, -0.4, 0.3, 1.2, -0.7, 0.5, 0.2}
	j, err := chain.Jacobian(q)
	test.That(t, err, test.ShouldBeNil)

	res, err := c.Step(StepInput{
		Q:            q,
		Error:        make([]float64, 6),
		Jacobian:     j,
		DesiredTwist: make([]float64, 6),
		Gain:         10,
		Ts:           0.001,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Q, test.ShouldResemble, q)
	test.That(t, res.Damping, test.ShouldEqual, 0.)
	test.That(t, floats.Norm(res.QDot, 2), test.ShouldEqual, 0.)
}

func TestStepNullSpace(t *testing.T) {
	chain := loadIiwa(t)
	c, err := NewController(chain, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	q := []float64{0.1, -0.4, 0.3, 1.2, -0.7, 0.5, 0.2}
	j, err := chain.Jacobian(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.Rank(j, 1e-9), test.ShouldEqual, 6)

	for _, q0 := range [][]float64{
		{1, 0, 0, 0, 0, 0, 0},
		{0.3, -1.2, 0.7, 0.1, 2, -0.5, 0.9},
		{-2, 1, 1, -1, 0.5, 0.5, -3},
	} {
		res, err := c.Step(StepInput{
			Q:                 q,
			Error:             make([]float64, 6),
			Jacobian:          j,
			Gain:              1,
			Ts:                0.01,
			NullSpaceGain:     2,
			NullSpaceVelocity: q0,
		})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, floats.Norm(res.QDot, 2), test.ShouldBeGreaterThan, 1e-6)

		var taskVel mat.VecDense
		taskVel.MulVec(j, mat.NewVecDense(len(res.QDot), res.QDot))
		test.That(t, mat.Norm(&taskVel, 2), test.ShouldBeLessThan, 1e-9)
	}
}

func TestStepDimensions(t *testing.T) {
	chain := planarArm(t)
	c, err := NewController(chain, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	j, err := chain.Jacobian([]float64{0, 0})
	test.That(t, err, test.ShouldBeNil)

	_, err = c.Step(StepInput{Q: []float64{0}, Error: make([]float64, 6), Jacobian: j})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "q has dimension 1")
	_, err = c.Step(StepInput{Q: []float64{0, 0}, Error: make([]float64, 3), Jacobian: j})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = c.Step(StepInput{Q: []float64{0, 0}, Error: make([]float64, 6), DesiredTwist: []float64{1}, Jacobian: j})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = c.Step(StepInput{
		Q: []float64{0, 0}, Error: make([]float64, 6), Jacobian: j,
		NullSpaceGain: 1, NullSpaceVelocity: []float64{1, 2, 3},
	})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = c.Step(StepInput{Q: []float64{0, 0}, Error: make([]float64, 6)})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = c.Track(TrackInput{Q: []float64{0, 0, 0}})
	test.That(t, err, test.ShouldNotBeNil)
	_, err = c.Track(TrackInput{Q: []float64{0, 0}, Mask: []bool{true}})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "mask")
}

func TestTrackPlanarConvergence(t *testing.T) {
	chain := planarArm(t)
	c, err := NewController(chain, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	target := r3.Vector{X: 1, Y: 1}
	positionError := func(q []float64) float64 {
		ee, err := chain.Fkine(q)
		test.That(t, err, test.ShouldBeNil)
		return target.Sub(ee.Point()).Norm()
	}

	q := []float64{0, 0}
	prevQuat := spatialmath.QuatIdentity()
	prevErr := positionError(q)
	converged := false
	for i := 0; i < 2000; i++ {
		res, err := c.Track(TrackInput{
			Q:                  q,
			DesiredPosition:    target,
			DesiredQuaternion:  spatialmath.QuatIdentity(),
			PreviousQuaternion: prevQuat,
			Mask:               PositionMask(),
			Gain:               1,
			Ts:                 0.01,
		})
		test.That(t, err, test.ShouldBeNil)
		q, prevQuat = res.Q, res.Quaternion

		e := positionError(q)
		test.That(t, e, test.ShouldBeLessThanOrEqualTo, prevErr+1e-12)
		prevErr = e
		if e < 1e-3 {
			converged = true
			break
		}
	}
	test.That(t, converged, test.ShouldBeTrue)
}

func TestTrackMaskAndContinuity(t *testing.T) {
	chain := loadIiwa(t)
	logger, logs := logging.NewObservedTestLogger(t)
	c, err := NewController(chain, logger)
	test.That(t, err, test.ShouldBeNil)

	q := []float64{0.1, -0.4, 0.3, 1.2, -0.7, 0.5, 0.2}
	ee, err := chain.Fkine(q)
	test.That(t, err, test.ShouldBeNil)
	flipped := quat.Scale(-1, ee.Quaternion())

	res, err := c.TrackPose(TrackInput{
		Q:                  q,
		PreviousQuaternion: flipped,
		Gain:               1,
		Ts:                 0.01,
	}, spatialmath.NewPoseFromTransform(ee))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.QuatDot(res.Quaternion, flipped), test.ShouldBeGreaterThan, 0.99)
	for i := range q {
		test.That(t, res.Q[i], test.ShouldAlmostEqual, q[i], 1e-9)
	}

	// only the error along x is reachable through the mask
	res, err = c.Track(TrackInput{
		Q:                 q,
		DesiredPosition:   ee.Point().Add(r3.Vector{X: 0.1, Y: 0.1, Z: 0.1}),
		DesiredQuaternion: ee.Quaternion(),
		Mask:              []bool{true, false, false, false, false, false},
		Gain:              1,
		Ts:                0.01,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, res.Error[0], test.ShouldAlmostEqual, 0.1)
	test.That(t, res.Error[1:], test.ShouldResemble, []float64{0, 0, 0, 0, 0})

	test.That(t, logs.FilterMessageSnippet("task mask").Len(), test.ShouldEqual, 0)
	res, err = c.Track(TrackInput{
		Q:                 q,
		DesiredPosition:   ee.Point(),
		DesiredQuaternion: ee.Quaternion(),
		Mask:              make([]bool, 6),
		Gain:              1,
		Ts:                0.01,
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, floats.Norm(res.QDot, 2), test.ShouldEqual, 0.)
	test.That(t, logs.FilterMessageSnippet("task mask").Len(), test.ShouldEqual, 1)
}

func TestTrackJointLimitObjective(t *testing.T) {
	chain := loadIiwa(t)
	c, err := NewController(chain, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	q := []float64{0.1, -0.4, 0.3, 1.2, -0.7, 0.5, 0.2}
	ee, err := chain.Fkine(q)
	test.That(t, err, test.ShouldBeNil)

	res, err := c.Track(TrackInput{
		Q:                    q,
		DesiredPosition:      ee.Point(),
		DesiredQuaternion:    ee.Quaternion(),
		PreviousQuaternion:   ee.Quaternion(),
		Gain:                 1,
		Ts:                   0.01,
		NullSpaceGain:        10,
		DesiredConfiguration: make([]float64, 7),
		NullSpaceWeights:     []float64{1, 1, 1, 1, 1, 1, 1},
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, floats.Norm(res.QDot, 2), test.ShouldBeGreaterThan, 1e-9)

	// the secondary objective moves the joints without moving the end effector
	j, err := chain.Jacobian(q)
	test.That(t, err, test.ShouldBeNil)
	var taskVel mat.VecDense
	taskVel.MulVec(j, mat.NewVecDense(7, res.QDot))
	test.That(t, mat.Norm(&taskVel, 2), test.ShouldBeLessThan, 1e-6)

	_, err = c.Track(TrackInput{
		Q:                    q,
		NullSpaceGain:        1,
		DesiredConfiguration: make([]float64, 3),
		NullSpaceWeights:     make([]float64, 7),
	})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestOrientationError(t *testing.T) {
	q := spatialmath.AngleAxisToQuat(0.4, r3.Vector{Z: 1})
	e := OrientationError(q, spatialmath.QuatIdentity())
	test.That(t, e.X, test.ShouldAlmostEqual, 0)
	test.That(t, e.Z, test.ShouldAlmostEqual, math.Sin(0.2))

	e = OrientationError(q, q)
	test.That(t, e.Norm(), test.ShouldAlmostEqual, 0)
}
