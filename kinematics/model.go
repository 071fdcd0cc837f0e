// Package kinematics models serial Denavit-Hartenberg chains: links, forward kinematics, geometric
// Jacobians, joint convention conversions and limit checks.
package kinematics

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/armcore/spatialmath"
)

const (
	// DefaultChainName is the name of a chain built without one.
	DefaultChainName = "Robot_No_Name"
	// DefaultDLSJointSpeedSaturation is the default joint speed used to scale the CLIK damping.
	DefaultDLSJointSpeedSaturation = 2.0
)

// Chain is an ordered list of links between a base offset and a tool offset.
// Read methods may run concurrently, structural setters must not race with them.
type Chain struct {
	mu                      sync.RWMutex
	name                    string
	model                   string
	links                   []Link
	bT0                     spatialmath.Transform
	nTe                     spatialmath.Transform
	dlsJointSpeedSaturation float64
}

// NewChain returns a chain with the given base (b_T_0) and tool (n_T_e) offsets.
func NewChain(name string, bT0, nTe spatialmath.Transform, dlsJointSpeedSaturation float64, links ...Link) (*Chain, error) {
	if name == "" {
		name = DefaultChainName
	}
	var err error
	if rigidErr := spatialmath.CheckRigid(bT0); rigidErr != nil {
		err = multierr.Append(err, NewNonRigidTransformError("b_T_0", rigidErr))
	}
	if rigidErr := spatialmath.CheckRigid(nTe); rigidErr != nil {
		err = multierr.Append(err, NewNonRigidTransformError("n_T_e", rigidErr))
	}
	if !(dlsJointSpeedSaturation > 0) {
		err = multierr.Append(err, errors.Errorf("dls joint speed saturation must be positive, got %f", dlsJointSpeedSaturation))
	}
	for i := range links {
		err = multierr.Append(err, links[i].validate())
	}
	if err != nil {
		return nil, err
	}
	c := &Chain{
		name:                    name,
		bT0:                     bT0,
		nTe:                     nTe,
		dlsJointSpeedSaturation: dlsJointSpeedSaturation,
		links:                   make([]Link, len(links)),
	}
	copy(c.links, links)
	return c, nil
}

// NewSimpleChain returns a chain with identity offsets and the default speed saturation.
func NewSimpleChain(name string, links ...Link) (*Chain, error) {
	return NewChain(name, spatialmath.IdentityTransform(), spatialmath.IdentityTransform(), DefaultDLSJointSpeedSaturation, links...)
}

// Clone returns a deep copy of the chain.
func (c *Chain) Clone() *Chain {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := &Chain{
		name:                    c.name,
		model:                   c.model,
		bT0:                     c.bT0,
		nTe:                     c.nTe,
		dlsJointSpeedSaturation: c.dlsJointSpeedSaturation,
		links:                   make([]Link, len(c.links)),
	}
	copy(out.links, c.links)
	return out
}

// Name returns the chain name.
func (c *Chain) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName changes the chain name.
func (c *Chain) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// Model returns the robot model identifier, empty when not set.
func (c *Chain) Model() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel changes the robot model identifier.
func (c *Chain) SetModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// NumJoints returns the number of links.
func (c *Chain) NumJoints() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.links)
}

// Link returns a copy of link i.
func (c *Chain) Link(i int) (Link, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i < 0 || i >= len(c.links) {
		return Link{}, NewJointIndexError(i, len(c.links)-1)
	}
	return c.links[i], nil
}

// Links returns a copy of every link.
func (c *Chain) Links() []Link {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Link, len(c.links))
	copy(out, c.links)
	return out
}

// AppendLink adds a copy of l at the end of the chain.
func (c *Chain) AppendLink(l Link) error {
	if err := l.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = append(c.links, l)
	return nil
}

// PopLink removes the last link and returns it.
func (c *Chain) PopLink() (Link, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.links) == 0 {
		return Link{}, errors.New("cannot pop a link from an empty chain")
	}
	l := c.links[len(c.links)-1]
	c.links = c.links[:len(c.links)-1]
	return l, nil
}

// SetLinks replaces every link with copies of links.
func (c *Chain) SetLinks(links []Link) error {
	var err error
	for i := range links {
		err = multierr.Append(err, links[i].validate())
	}
	if err != nil {
		return err
	}
	newLinks := make([]Link, len(links))
	copy(newLinks, links)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.links = newLinks
	return nil
}

// SetLink replaces link i.
func (c *Chain) SetLink(i int, l Link) error {
	if err := l.validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.links) {
		return NewJointIndexError(i, len(c.links)-1)
	}
	c.links[i] = l
	return nil
}

// BaseT0 returns the transform of frame 0 with respect to the base.
func (c *Chain) BaseT0() spatialmath.Transform {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bT0
}

// SetBaseT0 changes the base offset. Non rigid transforms are rejected.
func (c *Chain) SetBaseT0(t spatialmath.Transform) error {
	if err := spatialmath.CheckRigid(t); err != nil {
		return NewNonRigidTransformError("b_T_0", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bT0 = t
	return nil
}

// NTe returns the transform of the end effector with respect to the last link frame.
func (c *Chain) NTe() spatialmath.Transform {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.nTe
}

// SetNTe changes the tool offset. Non rigid transforms are rejected.
func (c *Chain) SetNTe(t spatialmath.Transform) error {
	if err := spatialmath.CheckRigid(t); err != nil {
		return NewNonRigidTransformError("n_T_e", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nTe = t
	return nil
}

// DLSJointSpeedSaturation returns the joint speed used to scale the CLIK damping.
func (c *Chain) DLSJointSpeedSaturation() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dlsJointSpeedSaturation
}

// SetDLSJointSpeedSaturation changes the joint speed used to scale the CLIK damping.
func (c *Chain) SetDLSJointSpeedSaturation(v float64) error {
	if !(v > 0) {
		return errors.Errorf("dls joint speed saturation must be positive, got %f", v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dlsJointSpeedSaturation = v
	return nil
}

// JointTypes returns the variant of every link.
func (c *Chain) JointTypes() []JointType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.links, func(l Link, _ int) JointType { return l.jointType })
}

// JointNames returns the name of every link.
func (c *Chain) JointNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.links, func(l Link, _ int) string { return l.name })
}

// JointNamesFromMask joins with "|" the names of the joints whose mask entry is set.
func (c *Chain) JointNamesFromMask(mask []bool) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	selected := lo.Filter(c.links, func(_ Link, i int) bool { return i < len(mask) && mask[i] })
	return strings.Join(lo.Map(selected, func(l Link, _ int) string { return l.name }), "|")
}

func (c *Chain) checkJointVector(what string, q []float64) error {
	if len(q) != len(c.links) {
		return NewDimensionMismatchError(what, len(c.links), len(q))
	}
	return nil
}

func (c *Chain) mapJoints(what string, q []float64, f func(Link, float64) float64) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkJointVector(what, q); err != nil {
		return nil, err
	}
	out := make([]float64, len(q))
	for i, l := range c.links {
		out[i] = f(l, q[i])
	}
	return out, nil
}

// Robot2DH converts a joint position vector from robot convention to DH convention.
func (c *Chain) Robot2DH(qRobot []float64) ([]float64, error) {
	return c.mapJoints("qRobot", qRobot, Link.Robot2DH)
}

// DH2Robot converts a joint position vector from DH convention to robot convention.
func (c *Chain) DH2Robot(qDH []float64) ([]float64, error) {
	return c.mapJoints("qDH", qDH, Link.DH2Robot)
}

// Robot2DHVel converts a joint velocity vector from robot convention to DH convention.
func (c *Chain) Robot2DHVel(vRobot []float64) ([]float64, error) {
	return c.mapJoints("vRobot", vRobot, Link.Robot2DHVel)
}

// DH2RobotVel converts a joint velocity vector from DH convention to robot convention.
func (c *Chain) DH2RobotVel(vDH []float64) ([]float64, error) {
	return c.mapJoints("vDH", vDH, Link.DH2RobotVel)
}

func (c *Chain) checkJoints(what string, q []float64, f func(Link, float64) bool) ([]bool, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkJointVector(what, q); err != nil {
		return nil, false, err
	}
	out := make([]bool, len(q))
	anyExceeded := false
	for i, l := range c.links {
		out[i] = f(l, q[i])
		anyExceeded = anyExceeded || out[i]
	}
	return out, anyExceeded, nil
}

// ExceededHardLimits returns, per joint, whether qRobot reaches the hard limits, and whether any joint does.
func (c *Chain) ExceededHardLimits(qRobot []float64) ([]bool, bool, error) {
	return c.checkJoints("qRobot", qRobot, Link.ExceededHardLimit)
}

// ExceededDHLimits returns, per joint, whether qDH reaches the hard limits expressed in DH convention, and
// whether any joint does.
func (c *Chain) ExceededDHLimits(qDH []float64) ([]bool, bool, error) {
	return c.checkJoints("qDH", qDH, Link.ExceededDHLimit)
}

// ExceededHardVelocityLimits returns, per joint, whether vRobot reaches the hard velocity limits, and whether any joint does.
func (c *Chain) ExceededHardVelocityLimits(vRobot []float64) ([]bool, bool, error) {
	return c.checkJoints("vRobot", vRobot, Link.ExceededHardVelocityLimit)
}

// ExceededSoftVelocityLimits returns, per joint, whether vRobot reaches the soft velocity limits, and whether any joint does.
func (c *Chain) ExceededSoftVelocityLimits(vRobot []float64) ([]bool, bool, error) {
	return c.checkJoints("vRobot", vRobot, Link.ExceededSoftVelocityLimit)
}

// LimitsError returns one out of bounds error per joint of qRobot outside its hard limits, combined with multierr.
func (c *Chain) LimitsError(qRobot []float64) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkJointVector("qRobot", qRobot); err != nil {
		return err
	}
	var err error
	for i, l := range c.links {
		if l.ExceededHardLimit(qRobot[i]) {
			multierr.AppendInto(&err, NewOutOfBoundsError(l.name, qRobot[i], l.limits))
		}
	}
	return err
}

// Limits returns the hard limits of every joint in robot convention.
func (c *Chain) Limits() []Limit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.links, func(l Link, _ int) Limit { return l.limits })
}

// DHLimits returns the hard limits of every joint in DH convention.
func (c *Chain) DHLimits() []Limit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Map(c.links, func(l Link, _ int) Limit { return l.DHLimits() })
}
