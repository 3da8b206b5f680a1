package photogrammetry

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Camera is a pinhole camera: intrinsics K, world to camera rotation R and translation T,
// and the fourth row appended below K·[R|T] to form the 4x4 projection matrix.
//
// Camera is a value; its methods derive data and never mutate it. LastRow must be set
// before projection queries give meaningful results.
type Camera struct {
	K       Mat3
	R       Mat3
	T       Vec3
	LastRow Vec4
}

// ProjectionMatrix returns the unscaled 4x4 projection matrix.
func (c Camera) ProjectionMatrix() Mat4 {
	return mat4FromDense(homogeneousProjection(c.K, c.R, c.T, c.LastRow))
}

// ProjectionMatrices returns the stabilized projection matrix and its inverse.
func (c Camera) ProjectionMatrices() ProjectionMatrices {
	return BuildProjectionMatrices(c.K, c.R, c.T, c.LastRow)
}

// Center returns the projection center in world coordinates.
func (c Camera) Center() Vec3 {
	return ProjectionCenter(c.R, c.T)
}

func (c Camera) CenterPoint() r3.Vector {
	return c.Center().Point()
}

// ProjectHomogeneous applies the unscaled projection matrix to (pt, 1).
func (c Camera) ProjectHomogeneous(pt r3.Vector) Vec4 {
	var result mat.VecDense
	result.MulVec(homogeneousProjection(c.K, c.R, c.T, c.LastRow), homogeneousPoint(pt))
	return Vec4{result.AtVec(0), result.AtVec(1), result.AtVec(2), result.AtVec(3)}
}

// DepthAt returns the third component of the projected point divided by the fourth.
// A fourth component of zero gives a non-finite depth; callers must check.
func (c Camera) DepthAt(pt r3.Vector) float32 {
	result := c.ProjectHomogeneous(pt)
	return float32(result[2] / result[3])
}

func (c Camera) Depth(x, y, z float64) float32 {
	return c.DepthAt(r3.Vector{X: x, Y: y, Z: z})
}
