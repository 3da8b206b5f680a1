package photogrammetry

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// StabilityScale is the magnitude the largest coefficient of P and inv(P) is scaled to,
// keeping the values representable after conversion to single precision.
const StabilityScale = 10.0

// ProjectionMatrices holds the stabilized 4x4 projection matrix and its inverse.
// P and InvP are normalized independently, so P·InvP equals InvPScale times the identity
// rather than the identity itself.
type ProjectionMatrices struct {
	P         Mat4
	InvP      Mat4
	PScale    float64
	InvPScale float64
}

// ProjectionMatrix returns the 3x4 matrix K·[R|T]. Extra extrinsics rows are ignored.
func ProjectionMatrix(intrinsics mat.Matrix, extrinsics mat.Matrix) mat.Matrix {
	extrinsicsVecMat := mat.DenseCopyOf(extrinsics)
	extrinsics = extrinsicsVecMat.Slice(0, 3, 0, 4)
	var projMat mat.Dense
	projMat.Mul(intrinsics, extrinsics)

	return &projMat
}

// homogeneousProjection stacks lastRow below K·[R|T].
func homogeneousProjection(k Mat3, rot Mat3, trans Vec3, lastRow Vec4) *mat.Dense {
	var extrinsics mat.Dense
	extrinsics.Augment(rot.Dense(), trans.Dense())

	var projMat mat.Dense
	projMat.Stack(ProjectionMatrix(k.Dense(), &extrinsics), mat.NewDense(1, 4, lastRow[:]))
	return &projMat
}

// stabilize scales m in place so that its largest absolute coefficient is StabilityScale
// and returns the factor used. A zero matrix yields non-finite values.
func stabilize(m *mat.Dense) float64 {
	scale := StabilityScale / floats.Norm(m.RawMatrix().Data, math.Inf(1))
	m.Scale(scale, m)
	return scale
}

// BuildProjectionMatrices computes the stabilized [K·[R|T]; lastRow] and its inverse.
// The inverse is taken of the scaled P and then scaled on its own. A singular P gives
// an inverse filled with NaN.
func BuildProjectionMatrices(k Mat3, rot Mat3, trans Vec3, lastRow Vec4) ProjectionMatrices {
	projMat := homogeneousProjection(k, rot, trans, lastRow)
	pScale := stabilize(projMat)

	var invProjMat mat.Dense
	if err := invProjMat.Inverse(projMat); err != nil {
		if cond, ok := err.(mat.Condition); ok && math.IsInf(float64(cond), 1) {
			invProjMat.Apply(func(_, _ int, _ float64) float64 { return math.NaN() }, &invProjMat)
		}
	}
	invPScale := stabilize(&invProjMat)

	return ProjectionMatrices{
		P:         mat4FromDense(projMat),
		InvP:      mat4FromDense(&invProjMat),
		PScale:    pScale,
		InvPScale: invPScale,
	}
}
