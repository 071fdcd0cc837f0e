// Package spatialmath defines the spatial primitives used by kinematic chains, the CLIK controller and
// trajectory generators: rigid homogeneous transforms, unit quaternions, axis-angles, poses and
// damped pseudo-inverses.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// rigidEpsilon is the tolerance used when validating that a matrix is a rigid transform.
const rigidEpsilon = 1e-6

// ErrNonRigidTransform is returned when a matrix does not represent a rigid transform.
var ErrNonRigidTransform = errors.New("matrix is not a rigid homogeneous transform")

// Transform is a rigid homogeneous transform. The zero value is not valid, use IdentityTransform.
type Transform struct {
	m mgl64.Mat4
}

// IdentityTransform returns the identity transform.
func IdentityTransform() Transform {
	return Transform{mgl64.Ident4()}
}

// NewTransform builds a transform from a rotation matrix and a translation.
func NewTransform(rot mgl64.Mat3, p r3.Vector) Transform {
	m := mgl64.Ident4()
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			m.Set(r, c, rot.At(r, c))
		}
	}
	m.Set(0, 3, p.X)
	m.Set(1, 3, p.Y)
	m.Set(2, 3, p.Z)
	return Transform{m}
}

// NewTransformFromQuat builds a transform from a unit quaternion and a translation.
func NewTransformFromQuat(q quat.Number, p r3.Vector) Transform {
	return NewTransform(QuatToRotation(q), p)
}

// NewTransformFromMat4 validates m and wraps it as a Transform.
func NewTransformFromMat4(m mgl64.Mat4) (Transform, error) {
	t := Transform{m}
	if err := CheckRigid(t); err != nil {
		return Transform{}, err
	}
	return t, nil
}

// NewTransformFromSlice builds a transform from 16 row-major values.
func NewTransformFromSlice(rowMajor []float64) (Transform, error) {
	if len(rowMajor) != 16 {
		return Transform{}, errors.Errorf("transform needs 16 values, got %d", len(rowMajor))
	}
	var m mgl64.Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m.Set(r, c, rowMajor[4*r+c])
		}
	}
	return NewTransformFromMat4(m)
}

// Translation returns a pure translation.
func Translation(x, y, z float64) Transform {
	return Transform{mgl64.Translate3D(x, y, z)}
}

// RotationX returns a pure rotation of theta radians about x.
func RotationX(theta float64) Transform {
	return Transform{mgl64.HomogRotate3DX(theta)}
}

// RotationY returns a pure rotation of theta radians about y.
func RotationY(theta float64) Transform {
	return Transform{mgl64.HomogRotate3DY(theta)}
}

// RotationZ returns a pure rotation of theta radians about z.
func RotationZ(theta float64) Transform {
	return Transform{mgl64.HomogRotate3DZ(theta)}
}

// DHTransform returns the standard Denavit-Hartenberg transform Rz(theta)*Tz(d)*Tx(a)*Rx(alpha).
func DHTransform(a, alpha, d, theta float64) Transform {
	ct, st := math.Cos(theta), math.Sin(theta)
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	m := mgl64.Ident4()
	m.Set(0, 0, ct)
	m.Set(0, 1, -st*ca)
	m.Set(0, 2, st*sa)
	m.Set(0, 3, a*ct)
	m.Set(1, 0, st)
	m.Set(1, 1, ct*ca)
	m.Set(1, 2, -ct*sa)
	m.Set(1, 3, a*st)
	m.Set(2, 0, 0)
	m.Set(2, 1, sa)
	m.Set(2, 2, ca)
	m.Set(2, 3, d)
	return Transform{m}
}

// CheckRigid returns an error if t does not hold an orthonormal right-handed rotation and a [0 0 0 1] bottom row.
func CheckRigid(t Transform) error {
	if !t.IsRigid(rigidEpsilon) {
		return errors.Wrapf(ErrNonRigidTransform, "%v", t)
	}
	return nil
}

// IsRigid returns whether the transform is rigid within eps.
func (t Transform) IsRigid(eps float64) bool {
	for c := 0; c < 3; c++ {
		if math.Abs(t.m.At(3, c)) > eps {
			return false
		}
	}
	if math.Abs(t.m.At(3, 3)-1) > eps {
		return false
	}
	for _, v := range t.m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	rot := t.Rotation()
	rrt := rot.Mul3(rot.Transpose())
	ident := mgl64.Ident3()
	for i := range rrt {
		if math.Abs(rrt[i]-ident[i]) > eps {
			return false
		}
	}
	return math.Abs(rot.Det()-1) <= eps
}

// Mul returns t*other.
func (t Transform) Mul(other Transform) Transform {
	return Transform{t.m.Mul4(other.m)}
}

// Inverse returns the rigid inverse of t.
func (t Transform) Inverse() Transform {
	rt := t.Rotation().Transpose()
	p := t.Point()
	np := rt.Mul3x1(mgl64.Vec3{p.X, p.Y, p.Z})
	return NewTransform(rt, r3.Vector{X: -np[0], Y: -np[1], Z: -np[2]})
}

// Rotation returns the rotation block.
func (t Transform) Rotation() mgl64.Mat3 {
	var rot mgl64.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			rot.Set(r, c, t.m.At(r, c))
		}
	}
	return rot
}

// RotationColumn returns column i of the rotation block, i.e. the i-th axis of the frame.
func (t Transform) RotationColumn(i int) r3.Vector {
	return r3.Vector{X: t.m.At(0, i), Y: t.m.At(1, i), Z: t.m.At(2, i)}
}

// RotationOnly returns t with its translation zeroed.
func (t Transform) RotationOnly() Transform {
	return NewTransform(t.Rotation(), r3.Vector{})
}

// Point returns the translation.
func (t Transform) Point() r3.Vector {
	return r3.Vector{X: t.m.At(0, 3), Y: t.m.At(1, 3), Z: t.m.At(2, 3)}
}

// Quaternion returns the orientation as a unit quaternion.
func (t Transform) Quaternion() quat.Number {
	return QuatFromRotation(t.Rotation())
}

// TransformPoint applies the full transform to p.
func (t Transform) TransformPoint(p r3.Vector) r3.Vector {
	return t.RotateVector(p).Add(t.Point())
}

// RotateVector applies only the rotation to v.
func (t Transform) RotateVector(v r3.Vector) r3.Vector {
	return RotateVector(t.Rotation(), v)
}

// At returns the element at row r and column c.
func (t Transform) At(r, c int) float64 {
	return t.m.At(r, c)
}

// Mat4 returns a copy of the underlying matrix.
func (t Transform) Mat4() mgl64.Mat4 {
	return t.m
}

// RowMajor returns the 16 elements in row-major order.
func (t Transform) RowMajor() []float64 {
	out := make([]float64, 16)
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[4*r+c] = t.m.At(r, c)
		}
	}
	return out
}

// AlmostEqual returns whether every element of t and other is within eps.
func (t Transform) AlmostEqual(other Transform, eps float64) bool {
	for i := range t.m {
		if math.Abs(t.m[i]-other.m[i]) > eps {
			return false
		}
	}
	return true
}

func (t Transform) String() string {
	return fmt.Sprintf("%v", t.RowMajor())
}

// RotateVector multiplies v by the rotation matrix rot.
func RotateVector(rot mgl64.Mat3, v r3.Vector) r3.Vector {
	out := rot.Mul3x1(mgl64.Vec3{v.X, v.Y, v.Z})
	return r3.Vector{X: out[0], Y: out[1], Z: out[2]}
}
