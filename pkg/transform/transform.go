// Package transform provides affine transforms stored as forward/inverse matrix pairs.
package transform

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/glimmer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrSingularMatrix is returned when an explicit inversion is requested for a singular matrix
var ErrSingularMatrix = errors.New("matrix is singular")

// singularThreshold is the determinant magnitude below which a matrix is treated as singular
const singularThreshold = 1e-12

// Transform is a forward matrix together with its inverse.
// Both are always constructed together; a Transform is never updated in place.
type Transform struct {
	forward mgl64.Mat4
	inverse mgl64.Mat4
}

// Identity returns the identity transform
func Identity() Transform {
	return Transform{forward: mgl64.Ident4(), inverse: mgl64.Ident4()}
}

// New builds a transform from an arbitrary matrix, failing if it cannot be inverted
func New(m mgl64.Mat4) (Transform, error) {
	det := m.Det()
	if math.Abs(det) < singularThreshold || math.IsNaN(det) {
		return Transform{}, fmt.Errorf("transform: determinant %g: %w", det, ErrSingularMatrix)
	}
	return Transform{forward: m, inverse: m.Inv()}, nil
}

// FromTRS builds translate * scale * rotate: the rotation is applied first,
// then scale along the parent axes, then translation.
// Scale components must be non-zero.
func FromTRS(translation core.Vec3, rotation mgl64.Quat, scale core.Vec3) Transform {
	rotation = rotation.Normalize()
	t := mgl64.Translate3D(translation.X, translation.Y, translation.Z)
	s := mgl64.Scale3D(scale.X, scale.Y, scale.Z)
	r := rotation.Mat4()

	tInv := mgl64.Translate3D(-translation.X, -translation.Y, -translation.Z)
	sInv := mgl64.Scale3D(1/scale.X, 1/scale.Y, 1/scale.Z)
	rInv := r.Transpose()

	return Transform{
		forward: t.Mul4(s).Mul4(r),
		inverse: rInv.Mul4(sInv).Mul4(tInv),
	}
}

// Translate returns a pure translation
func Translate(offset core.Vec3) Transform {
	return FromTRS(offset, mgl64.QuatIdent(), core.NewVec3(1, 1, 1))
}

// Rotate returns a rotation of angle radians about axis
func Rotate(angle float64, axis core.Vec3) Transform {
	return FromTRS(core.Vec3{}, mgl64.QuatRotate(angle, ToMgl(axis.Normalize())), core.NewVec3(1, 1, 1))
}

// Scale returns a pure (possibly non-uniform) scale
func Scale(factors core.Vec3) Transform {
	return FromTRS(core.Vec3{}, mgl64.QuatIdent(), factors)
}

// LookAt returns the camera-to-world transform of a camera at eye looking at target.
// The camera looks down its local -Z axis with +Y up.
func LookAt(eye, target, up core.Vec3) Transform {
	view := mgl64.LookAtV(ToMgl(eye), ToMgl(target), ToMgl(up))
	return Transform{forward: view.Inv(), inverse: view}
}

// Perspective returns an OpenGL-style perspective projection matrix
func Perspective(fovy, aspect, near, far float64) mgl64.Mat4 {
	return mgl64.Perspective(fovy, aspect, near, far)
}

// Orthographic returns an OpenGL-style orthographic projection matrix
func Orthographic(left, right, bottom, top, near, far float64) mgl64.Mat4 {
	return mgl64.Ortho(left, right, bottom, top, near, far)
}

// Compose returns t * other: other is applied first, then t
func (t Transform) Compose(other Transform) Transform {
	return Transform{
		forward: t.forward.Mul4(other.forward),
		inverse: other.inverse.Mul4(t.inverse),
	}
}

// Inverse returns the inverse transform
func (t Transform) Inverse() Transform {
	return Transform{forward: t.inverse, inverse: t.forward}
}

// Matrix returns the forward matrix
func (t Transform) Matrix() mgl64.Mat4 {
	return t.forward
}

// InverseMatrix returns the inverse matrix
func (t Transform) InverseMatrix() mgl64.Mat4 {
	return t.inverse
}

// NormalMatrix returns the transpose of the inverse's upper 3x3 block
func (t Transform) NormalMatrix() mgl64.Mat3 {
	return NormalMatrix(t.inverse)
}

// Point maps a point (translation applies)
func (t Transform) Point(p core.Vec3) core.Vec3 {
	return MulPoint(t.forward, p)
}

// Direction maps a direction (translation ignored)
func (t Transform) Direction(d core.Vec3) core.Vec3 {
	return MulDirection(t.forward, d)
}

// Normal maps a surface normal with the inverse-transpose. The result is not normalized.
func (t Transform) Normal(n core.Vec3) core.Vec3 {
	return MulMat3(t.NormalMatrix(), n)
}

// ApproxEqual reports whether both matrices match other's within eps
func (t Transform) ApproxEqual(other Transform, eps float64) bool {
	return t.forward.ApproxEqualThreshold(other.forward, eps) &&
		t.inverse.ApproxEqualThreshold(other.inverse, eps)
}

// NormalMatrix returns the transpose of the upper 3x3 block of an inverse matrix
func NormalMatrix(inverse mgl64.Mat4) mgl64.Mat3 {
	return inverse.Mat3().Transpose()
}

// MulPoint applies an affine matrix to a point
func MulPoint(m mgl64.Mat4, p core.Vec3) core.Vec3 {
	return FromMgl(m.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1}).Vec3())
}

// MulDirection applies the linear part of a matrix to a direction
func MulDirection(m mgl64.Mat4, d core.Vec3) core.Vec3 {
	return FromMgl(m.Mul4x1(mgl64.Vec4{d.X, d.Y, d.Z, 0}).Vec3())
}

// MulMat3 applies a 3x3 matrix to a vector
func MulMat3(m mgl64.Mat3, v core.Vec3) core.Vec3 {
	return FromMgl(m.Mul3x1(ToMgl(v)))
}

// ToMgl converts a core vector to an mgl64 vector
func ToMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts an mgl64 vector to a core vector
func FromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
