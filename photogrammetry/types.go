package photogrammetry

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidShape is returned when serialized matrix data does not fit the expected dimensions.
var ErrInvalidShape = errors.New("invalid matrix shape")

// ErrNoIntrinsics is returned when a calibration record carries no usable intrinsic parameters.
var ErrNoIntrinsics = errors.New("camera intrinsic parameters are not available")

type Shape struct {
	Row int
	Col int
}

// MatrixInfo is the serialized form of a matrix. Data is row-major.
type MatrixInfo struct {
	Shape Shape
	Data  []float64
}

type Extrinsics struct {
	Matrix MatrixInfo
}

type Intrinsics struct {
	Height       int
	Width        int
	CameraMatrix MatrixInfo
}

// Mat3 is a 3x3 matrix stored row-major.
type Mat3 [9]float64

// Mat4 is a 4x4 matrix stored row-major.
type Mat4 [16]float64

type Vec3 [3]float64

type Vec4 [4]float64

// Mat3f, Mat4f and Vec3f are the single precision outputs handed to consumers
// such as the patch match kernels. Same row-major layout as their float64 counterparts.
type (
	Mat3f [9]float32
	Mat4f [16]float32
	Vec3f [3]float32
)

func Identity3() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

func (m Mat3) At(i, j int) float64 {
	return m[i*3+j]
}

func (m Mat3) Dense() *mat.Dense {
	return mat.NewDense(3, 3, m[:])
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Mul returns m·o.
func (m Mat3) Mul(o Mat3) Mat3 {
	var out mat.Dense
	out.Mul(m.Dense(), o.Dense())
	return mat3FromDense(&out)
}

// MulVec returns m·v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	var out mat.VecDense
	out.MulVec(m.Dense(), v.Dense())
	return Vec3{out.AtVec(0), out.AtVec(1), out.AtVec(2)}
}

func (m Mat3) Float32() Mat3f {
	var out Mat3f
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// Info serializes m into a MatrixInfo.
func (m Mat3) Info() MatrixInfo {
	return MatrixInfo{Shape: Shape{Row: 3, Col: 3}, Data: append([]float64(nil), m[:]...)}
}

func (m Mat4) At(i, j int) float64 {
	return m[i*4+j]
}

func (m Mat4) Dense() *mat.Dense {
	return mat.NewDense(4, 4, m[:])
}

func (m Mat4) Float32() Mat4f {
	var out Mat4f
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

func (m Mat4) String() string {
	return fmt.Sprintf("%v", FormatMatrixPrint(m.Dense()))
}

func (v Vec3) Dense() *mat.VecDense {
	return mat.NewVecDense(3, v[:])
}

func (v Vec3) Float32() Vec3f {
	return Vec3f{float32(v[0]), float32(v[1]), float32(v[2])}
}

// Point returns v as an r3.Vector.
func (v Vec3) Point() r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

func mat3FromDense(m mat.Matrix) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i*3+j] = m.At(i, j)
		}
	}
	return out
}

func mat4FromDense(m mat.Matrix) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i*4+j] = m.At(i, j)
		}
	}
	return out
}

func (info MatrixInfo) check(minRows, cols int) error {
	if cols <= 0 || info.Shape.Row < minRows || info.Shape.Col != cols {
		return errors.Wrapf(ErrInvalidShape, "want at least %dx%d, got %dx%d",
			minRows, cols, info.Shape.Row, info.Shape.Col)
	}
	if len(info.Data) != info.Shape.Row*info.Shape.Col {
		return errors.Wrapf(ErrInvalidShape, "%dx%d matrix holds %d values",
			info.Shape.Row, info.Shape.Col, len(info.Data))
	}
	return nil
}

// Dense returns the matrix described by info.
func (info MatrixInfo) Dense() (*mat.Dense, error) {
	if err := info.check(1, info.Shape.Col); err != nil {
		return nil, err
	}
	return mat.NewDense(info.Shape.Row, info.Shape.Col, append([]float64(nil), info.Data...)), nil
}

// Mat3FromInfo reads a 3x3 matrix.
func Mat3FromInfo(info MatrixInfo) (Mat3, error) {
	var out Mat3
	if err := info.check(3, 3); err != nil {
		return out, err
	}
	if info.Shape.Row != 3 {
		return out, errors.Wrapf(ErrInvalidShape, "want 3x3, got %dx%d", info.Shape.Row, info.Shape.Col)
	}
	copy(out[:], info.Data)
	return out, nil
}

// RT splits a 3x4 or 4x4 [R|T] extrinsics matrix into its rotation and translation.
// Rows past the third are ignored.
func (e Extrinsics) RT() (Mat3, Vec3, error) {
	var (
		rot   Mat3
		trans Vec3
	)
	if err := e.Matrix.check(3, 4); err != nil {
		return rot, trans, errors.Wrap(err, "extrinsics")
	}
	extrinsicsMat, err := e.Matrix.Dense()
	if err != nil {
		return rot, trans, err
	}
	rot = mat3FromDense(extrinsicsMat.Slice(0, 3, 0, 3))
	for i := 0; i < 3; i++ {
		trans[i] = extrinsicsMat.At(i, 3)
	}
	return rot, trans, nil
}

// CheckValid checks that the intrinsics describe a usable pinhole camera.
func (intr *Intrinsics) CheckValid() error {
	if intr == nil {
		return errors.Wrap(ErrNoIntrinsics, "intrinsics do not exist")
	}
	if intr.Width <= 0 || intr.Height <= 0 {
		return errors.Wrapf(ErrNoIntrinsics, "invalid size (%d, %d)", intr.Width, intr.Height)
	}
	k, err := Mat3FromInfo(intr.CameraMatrix)
	if err != nil {
		return errors.Wrap(err, "camera matrix")
	}
	if k[0] <= 0 {
		return errors.Wrapf(ErrNoIntrinsics, "invalid focal length fx = %v", k[0])
	}
	if k[4] <= 0 {
		return errors.Wrapf(ErrNoIntrinsics, "invalid focal length fy = %v", k[4])
	}
	return nil
}
