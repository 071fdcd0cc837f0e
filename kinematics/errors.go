package kinematics

import (
	"github.com/pkg/errors"
)

// OOBErrString is a string that all out of bounds errors contain, so that they can be told apart from
// other kinematics errors.
const OOBErrString = "joint out of bounds"

// ErrUnknownJointType is returned when a link is neither revolute nor prismatic.
var ErrUnknownJointType = errors.New("unknown joint type")

// NewNonRigidTransformError is used when a chain offset is not a rigid transform.
func NewNonRigidTransformError(which string, err error) error {
	return errors.Wrapf(err, "invalid %s transform", which)
}

// NewInvertedLimitsError is used when a lower limit is greater than the higher one.
func NewInvertedLimitsError(name string, lower, higher float64) error {
	return errors.Errorf("link %q: lower limit %f is greater than higher limit %f", name, lower, higher)
}

// NewNegativeVelocityLimitError is used when a velocity limit is negative.
func NewNegativeVelocityLimitError(name string, limit float64) error {
	return errors.Errorf("link %q: velocity limit %f cannot be negative", name, limit)
}

// NewDimensionMismatchError is used when a vector or matrix does not match the number of joints or task dimensions.
func NewDimensionMismatchError(what string, expected, actual int) error {
	return errors.Errorf("%s has dimension %d, expected %d", what, actual, expected)
}

// NewJointIndexError is used when a joint index is outside the chain.
func NewJointIndexError(index, numJoints int) error {
	return errors.Errorf("joint index %d out of range [0, %d]", index, numJoints)
}

// NewOutOfBoundsError describes a single joint outside its hard limits.
func NewOutOfBoundsError(name string, value float64, lim Limit) error {
	return errors.Errorf("%s: %s value %.5f not in [%.5f, %.5f]", OOBErrString, name, value, lim.Min, lim.Max)
}
