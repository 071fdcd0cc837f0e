package kinematics

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/armcore/spatialmath"
)

// JointType is the kind of joint variable a Link carries.
type JointType int

// The two joint variants of a DH link.
const (
	RevoluteJoint JointType = iota
	PrismaticJoint
)

const defaultLinkName = "unnamed"

func (jt JointType) String() string {
	switch jt {
	case RevoluteJoint:
		return "revolute"
	case PrismaticJoint:
		return "prismatic"
	default:
		return "unknown"
	}
}

// ParseJointType converts "revolute" or "prismatic" into a JointType.
func ParseJointType(s string) (JointType, error) {
	switch s {
	case "revolute", "r":
		return RevoluteJoint, nil
	case "prismatic", "p":
		return PrismaticJoint, nil
	default:
		return 0, errors.Wrapf(ErrUnknownJointType, "%q", s)
	}
}

// Limit represents the limits of motion of a joint.
type Limit struct {
	Min float64
	Max float64
}

// Unbounded returns the limit (-inf, inf).
func Unbounded() Limit {
	return Limit{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Range returns Max - Min.
func (l Limit) Range() float64 {
	return l.Max - l.Min
}

// Link is one Denavit-Hartenberg link. It is a plain value, so copying a Link never shares state.
type Link struct {
	jointType JointType
	a         float64
	alpha     float64
	d         float64
	theta     float64

	robot2DHOffset float64
	robot2DHFlip   bool

	limits            Limit
	velocityLimit     float64
	softVelocityLimit float64
	name              string
}

// LinkOption configures the optional parameters of a Link.
type LinkOption func(*Link)

// WithRobot2DH sets the affine map between the robot joint convention and the DH one.
func WithRobot2DH(offset float64, flip bool) LinkOption {
	return func(l *Link) {
		l.robot2DHOffset = offset
		l.robot2DHFlip = flip
	}
}

// WithLimits sets the hard joint limits, in robot convention.
func WithLimits(lower, higher float64) LinkOption {
	return func(l *Link) {
		l.limits = Limit{Min: lower, Max: higher}
	}
}

// WithVelocityLimit sets the hard velocity limit.
func WithVelocityLimit(v float64) LinkOption {
	return func(l *Link) {
		l.velocityLimit = v
	}
}

// WithSoftVelocityLimit sets the soft velocity limit.
func WithSoftVelocityLimit(v float64) LinkOption {
	return func(l *Link) {
		l.softVelocityLimit = v
	}
}

// WithName sets the joint name.
func WithName(name string) LinkOption {
	return func(l *Link) {
		l.name = name
	}
}

// NewRevoluteLink returns a revolute link, theta is the joint variable.
func NewRevoluteLink(a, alpha, d float64, opts ...LinkOption) (Link, error) {
	return newLink(RevoluteJoint, a, alpha, d, math.NaN(), opts...)
}

// NewPrismaticLink returns a prismatic link, d is the joint variable.
func NewPrismaticLink(a, alpha, theta float64, opts ...LinkOption) (Link, error) {
	return newLink(PrismaticJoint, a, alpha, math.NaN(), theta, opts...)
}

func newLink(jt JointType, a, alpha, d, theta float64, opts ...LinkOption) (Link, error) {
	l := Link{
		jointType:         jt,
		a:                 a,
		alpha:             alpha,
		d:                 d,
		theta:             theta,
		limits:            Unbounded(),
		velocityLimit:     math.Inf(1),
		softVelocityLimit: math.Inf(1),
		name:              defaultLinkName,
	}
	for _, opt := range opts {
		opt(&l)
	}
	if err := l.validate(); err != nil {
		return Link{}, err
	}
	return l, nil
}

func (l *Link) validate() error {
	var err error
	if l.limits.Min > l.limits.Max || math.IsNaN(l.limits.Min) || math.IsNaN(l.limits.Max) {
		err = multierr.Append(err, NewInvertedLimitsError(l.name, l.limits.Min, l.limits.Max))
	}
	if !(l.velocityLimit >= 0) {
		err = multierr.Append(err, NewNegativeVelocityLimitError(l.name, l.velocityLimit))
	}
	if !(l.softVelocityLimit >= 0) {
		err = multierr.Append(err, NewNegativeVelocityLimitError(l.name, l.softVelocityLimit))
	}
	return err
}

// Type returns the joint variant.
func (l Link) Type() JointType {
	return l.jointType
}

// A returns the link length.
func (l Link) A() float64 {
	return l.a
}

// Alpha returns the link twist.
func (l Link) Alpha() float64 {
	return l.alpha
}

// D returns the link offset. It is NaN for prismatic links.
func (l Link) D() float64 {
	return l.d
}

// Theta returns the link angle. It is NaN for revolute links.
func (l Link) Theta() float64 {
	return l.theta
}

// Name returns the joint name.
func (l Link) Name() string {
	return l.name
}

// Robot2DHOffset returns the offset of the robot to DH joint map.
func (l Link) Robot2DHOffset() float64 {
	return l.robot2DHOffset
}

// Robot2DHFlip returns whether the robot to DH joint map flips the sign.
func (l Link) Robot2DHFlip() bool {
	return l.robot2DHFlip
}

// Clone returns a copy of the link.
func (l Link) Clone() Link {
	return l
}

// Transform returns the DH transform of the link with the joint variable set to qDH.
func (l Link) Transform(qDH float64) (spatialmath.Transform, error) {
	switch l.jointType {
	case RevoluteJoint:
		return spatialmath.DHTransform(l.a, l.alpha, l.d, qDH), nil
	case PrismaticJoint:
		return spatialmath.DHTransform(l.a, l.alpha, qDH, l.theta), nil
	default:
		return spatialmath.Transform{}, errors.Wrapf(ErrUnknownJointType, "link %q", l.name)
	}
}

// Robot2DH converts a joint position from robot convention to DH convention.
func (l Link) Robot2DH(qRobot float64) float64 {
	if l.robot2DHFlip {
		return -qRobot + l.robot2DHOffset
	}
	return qRobot + l.robot2DHOffset
}

// DH2Robot converts a joint position from DH convention to robot convention.
func (l Link) DH2Robot(qDH float64) float64 {
	if l.robot2DHFlip {
		return -(qDH - l.robot2DHOffset)
	}
	return qDH - l.robot2DHOffset
}

// Robot2DHVel converts a joint velocity from robot convention to DH convention.
func (l Link) Robot2DHVel(vRobot float64) float64 {
	if l.robot2DHFlip {
		return -vRobot
	}
	return vRobot
}

// DH2RobotVel converts a joint velocity from DH convention to robot convention.
func (l Link) DH2RobotVel(vDH float64) float64 {
	if l.robot2DHFlip {
		return -vDH
	}
	return vDH
}

// Limits returns the hard joint limits in robot convention.
func (l Link) Limits() Limit {
	return l.limits
}

// DHLimits returns the hard joint limits converted to DH convention, ordered so that Min <= Max.
func (l Link) DHLimits() Limit {
	lo, hi := l.Robot2DH(l.limits.Min), l.Robot2DH(l.limits.Max)
	if lo > hi {
		lo, hi = hi, lo
	}
	return Limit{Min: lo, Max: hi}
}

// SetLimits changes the hard joint limits. Inverted limits are rejected and the link is unchanged.
func (l *Link) SetLimits(lower, higher float64) error {
	if lower > higher || math.IsNaN(lower) || math.IsNaN(higher) {
		return NewInvertedLimitsError(l.name, lower, higher)
	}
	l.limits = Limit{Min: lower, Max: higher}
	return nil
}

// VelocityLimit returns the hard velocity limit.
func (l Link) VelocityLimit() float64 {
	return l.velocityLimit
}

// SetVelocityLimit changes the hard velocity limit.
func (l *Link) SetVelocityLimit(v float64) error {
	if !(v >= 0) {
		return NewNegativeVelocityLimitError(l.name, v)
	}
	l.velocityLimit = v
	return nil
}

// SoftVelocityLimit returns the soft velocity limit.
func (l Link) SoftVelocityLimit() float64 {
	return l.softVelocityLimit
}

// SetSoftVelocityLimit changes the soft velocity limit.
func (l *Link) SetSoftVelocityLimit(v float64) error {
	if !(v >= 0) {
		return NewNegativeVelocityLimitError(l.name, v)
	}
	l.softVelocityLimit = v
	return nil
}

// SetName changes the joint name.
func (l *Link) SetName(name string) {
	l.name = name
}

// ExceededHardLimit returns true if qRobot reaches or passes the hard limits.
func (l Link) ExceededHardLimit(qRobot float64) bool {
	return qRobot <= l.limits.Min || qRobot >= l.limits.Max
}

// ExceededDHLimit returns true if qDH is on or outside the hard limits converted to DH convention.
func (l Link) ExceededDHLimit(qDH float64) bool {
	lim := l.DHLimits()
	return qDH <= lim.Min || qDH >= lim.Max
}

// ExceededHardVelocityLimit returns true if the magnitude of vRobot reaches the hard velocity limit.
func (l Link) ExceededHardVelocityLimit(vRobot float64) bool {
	return math.Abs(vRobot) >= l.velocityLimit
}

// ExceededSoftVelocityLimit returns true if the magnitude of vRobot reaches the soft velocity limit.
func (l Link) ExceededSoftVelocityLimit(vRobot float64) bool {
	return math.Abs(vRobot) >= l.softVelocityLimit
}
