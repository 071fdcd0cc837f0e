package kinematics

import (
	"go.viam.com/armcore/spatialmath"
)

// Fkine returns b_T_e, the end effector pose at qDH.
func (c *Chain) Fkine(qDH []float64) (spatialmath.Transform, error) {
	return c.FkineUpTo(qDH, c.NumJoints()+1)
}

// FkineUpTo returns the pose of frame n, the product of b_T_0 and the first n link transforms.
// When n is NumJoints()+1 the tool offset n_T_e is appended.
func (c *Chain) FkineUpTo(qDH []float64, n int) (spatialmath.Transform, error) {
	all, err := c.FkineAll(qDH, n)
	if err != nil {
		return spatialmath.Transform{}, err
	}
	return all[len(all)-1], nil
}

// FkineWithTool returns FkineUpTo(qDH, n) post multiplied by jTf.
func (c *Chain) FkineWithTool(qDH []float64, n int, jTf spatialmath.Transform) (spatialmath.Transform, error) {
	t, err := c.FkineUpTo(qDH, n)
	if err != nil {
		return spatialmath.Transform{}, err
	}
	return t.Mul(jTf), nil
}

// FkineAll returns [b_T_0, b_T_1, ..., b_T_n]. When n is NumJoints()+1 the result has NumJoints()+1
// elements and the last one is b_T_e.
func (c *Chain) FkineAll(qDH []float64, n int) ([]spatialmath.Transform, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fkineAll(qDH, n)
}

func (c *Chain) fkineAll(qDH []float64, n int) ([]spatialmath.Transform, error) {
	if err := c.checkJointVector("qDH", qDH); err != nil {
		return nil, err
	}
	numJoints := len(c.links)
	if n < 0 || n > numJoints+1 {
		return nil, NewJointIndexError(n, numJoints+1)
	}
	ee := false
	if n == numJoints+1 {
		n--
		ee = true
	}
	out := make([]spatialmath.Transform, 0, n+1)
	out = append(out, c.bT0)
	for i := 0; i < n; i++ {
		a, err := c.links[i].Transform(qDH[i])
		if err != nil {
			return nil, err
		}
		out = append(out, out[i].Mul(a))
	}
	if ee {
		out[n] = out[n].Mul(c.nTe)
	}
	return out, nil
}
