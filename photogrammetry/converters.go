package photogrammetry

import (
	"fmt"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

func FormatMatrixPrint(matrix mat.Matrix) fmt.Formatter {
	return mat.Formatted(matrix, mat.Prefix("    "), mat.Squeeze())
}

// GetCameraWorldsCoordinates returns -Rᵗ·T, the position of the camera in world coordinates.
func GetCameraWorldsCoordinates(rotation mat.Matrix, trans mat.Matrix) mat.Vector {
	var coordinates mat.Dense
	coordinates.Mul(rotation.T(), trans)
	coordinates.Scale(-1, &coordinates)
	return coordinates.ColView(0)
}

// ProjectionCenter returns C = -Rᵗ·T.
func ProjectionCenter(rotation Mat3, trans Vec3) Vec3 {
	c := GetCameraWorldsCoordinates(rotation.Dense(), trans.Dense())
	return Vec3{c.AtVec(0), c.AtVec(1), c.AtVec(2)}
}

func homogeneousPoint(pt r3.Vector) *mat.VecDense {
	return mat.NewVecDense(4, []float64{pt.X, pt.Y, pt.Z, 1})
}
