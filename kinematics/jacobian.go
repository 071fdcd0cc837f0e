package kinematics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/armcore/spatialmath"
)

// Jacobian returns the 6xN geometric Jacobian of the end effector, expressed in the base frame.
// Rows 0-2 are the linear part and rows 3-5 the angular part.
func (c *Chain) Jacobian(qDH []float64) (*mat.Dense, error) {
	return c.JacobianUpTo(qDH, c.NumJoints()+1, spatialmath.IdentityTransform())
}

// JacobianUpTo returns the geometric Jacobian of frame {f} = frame n * jTf, using the first n joints.
func (c *Chain) JacobianUpTo(qDH []float64, n int, jTf spatialmath.Transform) (*mat.Dense, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all, err := c.fkineAll(qDH, n)
	if err != nil {
		return nil, err
	}
	all[len(all)-1] = all[len(all)-1].Mul(jTf)
	return c.geometricJacobian(all)
}

// JacobianPosition returns the 3xQ linear part of the geometric Jacobian of frame n * jTf.
func (c *Chain) JacobianPosition(qDH []float64, n int, jTf spatialmath.Transform) (*mat.Dense, error) {
	j, err := c.JacobianUpTo(qDH, n, jTf)
	if err != nil {
		return nil, err
	}
	_, cols := j.Dims()
	return mat.DenseCopyOf(j.Slice(0, 3, 0, cols)), nil
}

// JacobianOrientation returns the 3xQ angular part of the geometric Jacobian of frame n * jTf.
func (c *Chain) JacobianOrientation(qDH []float64, n int, jTf spatialmath.Transform) (*mat.Dense, error) {
	j, err := c.JacobianUpTo(qDH, n, jTf)
	if err != nil {
		return nil, err
	}
	_, cols := j.Dims()
	return mat.DenseCopyOf(j.Slice(3, 6, 0, cols)), nil
}

// JacobianFromTransforms returns the geometric Jacobian given [b_T_0, ..., b_T_f] as produced by FkineAll,
// one column per transform but the last.
func (c *Chain) JacobianFromTransforms(all []spatialmath.Transform) (*mat.Dense, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.geometricJacobian(all)
}

func (c *Chain) geometricJacobian(all []spatialmath.Transform) (*mat.Dense, error) {
	numQ := len(all) - 1
	if numQ < 1 {
		return nil, errors.New("jacobian needs at least one joint")
	}
	if numQ > len(c.links) {
		return nil, NewDimensionMismatchError("transforms", len(c.links)+1, len(all))
	}
	pe := all[numQ].Point()
	j := mat.NewDense(6, numQ, nil)
	for i := 0; i < numQ; i++ {
		z := all[i].RotationColumn(2)
		var lin, ang r3.Vector
		switch c.links[i].jointType {
		case PrismaticJoint:
			lin = z
		case RevoluteJoint:
			lin = z.Cross(pe.Sub(all[i].Point()))
			ang = z
		default:
			return nil, errors.Wrapf(ErrUnknownJointType, "link %d (%s)", i, c.links[i].name)
		}
		j.Set(0, i, lin.X)
		j.Set(1, i, lin.Y)
		j.Set(2, i, lin.Z)
		j.Set(3, i, ang.X)
		j.Set(4, i, ang.Y)
		j.Set(5, i, ang.Z)
	}
	return j, nil
}

// ChangeJacobianFrame re-expresses a 3xQ or 6xQ Jacobian computed in frame {b} in frame {u}, given u_R_b.
func ChangeJacobianFrame(j mat.Matrix, uRb mgl64.Mat3) (*mat.Dense, error) {
	rows, cols := j.Dims()
	if rows != 3 && rows != 6 {
		return nil, errors.Errorf("jacobian must have 3 or 6 rows, got %d", rows)
	}
	rot := mat.NewDense(3, 3, nil)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rot.Set(r, c, uRb.At(r, c))
		}
	}
	src := mat.DenseCopyOf(j)
	out := mat.NewDense(rows, cols, nil)
	for block := 0; block < rows; block += 3 {
		dst := out.Slice(block, block+3, 0, cols).(*mat.Dense)
		dst.Mul(rot, src.Slice(block, block+3, 0, cols))
	}
	return out, nil
}

// GradTargetConfiguration returns the gradient of a cost pulling the joints toward qCenter,
// -1/N * w_i * (q_i - c_i) / (max_i - min_i), with DH limits. Joints with an unbounded or empty
// range contribute zero.
func (c *Chain) GradTargetConfiguration(qDH, qCenter, weights []float64) ([]float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.checkJointVector("qDH", qDH); err != nil {
		return nil, err
	}
	if err := c.checkJointVector("qCenter", qCenter); err != nil {
		return nil, err
	}
	if err := c.checkJointVector("weights", weights); err != nil {
		return nil, err
	}
	n := float64(len(c.links))
	out := make([]float64, len(c.links))
	for i, l := range c.links {
		r := l.DHLimits().Range()
		if !(r > 0) || r > maxFiniteRange {
			continue
		}
		out[i] = -1. / n * weights[i] * (qDH[i] - qCenter[i]) / r
	}
	return out, nil
}

const maxFiniteRange = 1e300
