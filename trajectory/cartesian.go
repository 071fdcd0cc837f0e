package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/armcore/spatialmath"
)

// CartesianIndependent pairs a position and an orientation trajectory that run on their own windows.
type CartesianIndependent struct {
	group
	pos Position
	rot Quaternion
}

// NewCartesianIndependent returns a Cartesian trajectory owning copies of pos and rot.
func NewCartesianIndependent(pos Position, rot Quaternion) (*CartesianIndependent, error) {
	if pos == nil || rot == nil {
		return nil, errors.New("cartesian trajectory needs a position and an orientation trajectory")
	}
	return newCartesianIndependent(pos.Clone(), rot.Clone()), nil
}

func newCartesianIndependent(pos Position, rot Quaternion) *CartesianIndependent {
	return &CartesianIndependent{group: group{pos, rot}, pos: pos, rot: rot}
}

// Position returns the point at t.
func (c *CartesianIndependent) Position(t float64) r3.Vector { return c.pos.Position(t) }

// Quaternion returns the orientation at t.
func (c *CartesianIndependent) Quaternion(t float64) quat.Number { return c.rot.Quaternion(t) }

// Pose returns the pose at t.
func (c *CartesianIndependent) Pose(t float64) spatialmath.Pose {
	return spatialmath.NewPose(c.pos.Position(t), c.rot.Quaternion(t))
}

// LinearVelocity returns the linear velocity at t.
func (c *CartesianIndependent) LinearVelocity(t float64) r3.Vector { return c.pos.Velocity(t) }

// AngularVelocity returns the angular velocity at t.
func (c *CartesianIndependent) AngularVelocity(t float64) r3.Vector { return c.rot.AngularVelocity(t) }

// LinearAcceleration returns the linear acceleration at t.
func (c *CartesianIndependent) LinearAcceleration(t float64) r3.Vector { return c.pos.Acceleration(t) }

// AngularAcceleration returns the angular acceleration at t.
func (c *CartesianIndependent) AngularAcceleration(t float64) r3.Vector {
	return c.rot.AngularAcceleration(t)
}

// Twist returns linear then angular velocity at t.
func (c *CartesianIndependent) Twist(t float64) []float64 {
	v, w := c.LinearVelocity(t), c.AngularVelocity(t)
	return []float64{v.X, v.Y, v.Z, w.X, w.Y, w.Z}
}

// Mask returns the position mask followed by the orientation mask.
func (c *CartesianIndependent) Mask() []bool {
	return append(c.pos.Mask(), c.rot.Mask()...)
}

// Initialize initializes both trajectories against the starting pose.
func (c *CartesianIndependent) Initialize(start spatialmath.Transform) error {
	if err := c.pos.Initialize(start); err != nil {
		return errors.Wrap(err, "position")
	}
	return errors.Wrap(c.rot.Initialize(start), "orientation")
}

// ChangeFrame re-expresses both trajectories in a new frame.
func (c *CartesianIndependent) ChangeFrame(newTCurr spatialmath.Transform) {
	c.pos.ChangeFrame(newTCurr)
	c.rot.ChangeFrame(newTCurr)
}

// PositionTrajectory returns the position part.
func (c *CartesianIndependent) PositionTrajectory() Position { return c.pos }

// QuaternionTrajectory returns the orientation part.
func (c *CartesianIndependent) QuaternionTrajectory() Quaternion { return c.rot }

// Clone returns an independent copy.
func (c *CartesianIndependent) Clone() Cartesian {
	return newCartesianIndependent(c.pos.Clone(), c.rot.Clone())
}
