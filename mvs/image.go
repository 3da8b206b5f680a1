// Package mvs holds the images of a multi-view stereo reconstruction: a pinhole camera
// together with the pixel buffer it was calibrated for.
package mvs

import (
	"math"

	"github.com/pkg/errors"

	"sphaeroptica.be/mvs/logging"
	"sphaeroptica.be/mvs/photogrammetry"
)

// Image is a camera plus the size and, optionally, the pixels of its image.
//
// Image is not safe for concurrent use while SetK, SetLastRow, SetBitmap, Rescale or
// Downsize may run. Queries alone may run concurrently.
type Image struct {
	path   string
	width  int
	height int
	camera photogrammetry.Camera
	bitmap Bitmap
	logger logging.Logger
}

// Option configures an Image.
type Option func(*Image)

// WithLogger sets the logger an Image reports rescales to.
func WithLogger(logger logging.Logger) Option {
	return func(img *Image) {
		img.logger = logger
	}
}

// NewImage returns an Image without pixels. SetLastRow must be called before projection queries.
func NewImage(path string, width, height int, k, rot photogrammetry.Mat3, trans photogrammetry.Vec3, opts ...Option) *Image {
	img := &Image{
		path:   path,
		width:  width,
		height: height,
		camera: photogrammetry.Camera{K: k, R: rot, T: trans},
		logger: logging.Global(),
	}
	for _, opt := range opts {
		opt(img)
	}
	return img
}

// NewImageFromCalibration builds an Image from a calibration record: a 3x3 camera matrix
// and a 3x4 (or 4x4) [R|T] extrinsics matrix.
func NewImageFromCalibration(
	path string,
	intrinsics photogrammetry.Intrinsics,
	extrinsics photogrammetry.Extrinsics,
	opts ...Option,
) (*Image, error) {
	if err := intrinsics.CheckValid(); err != nil {
		return nil, errors.Wrapf(err, "image %q", path)
	}
	k, err := photogrammetry.Mat3FromInfo(intrinsics.CameraMatrix)
	if err != nil {
		return nil, errors.Wrapf(err, "image %q", path)
	}
	rot, trans, err := extrinsics.RT()
	if err != nil {
		return nil, errors.Wrapf(err, "image %q", path)
	}
	return NewImage(path, intrinsics.Width, intrinsics.Height, k, rot, trans, opts...), nil
}

// SetBitmap attaches pixels to the image. The bitmap must have the image's size;
// anything else is a programming error and panics.
func (img *Image) SetBitmap(bitmap Bitmap) {
	if bitmap.Width() != img.width || bitmap.Height() != img.height {
		panic(errors.Errorf("bitmap dimension and image don't match Bitmap(%d,%d) != Image(%d,%d) for %q",
			bitmap.Width(), bitmap.Height(), img.width, img.height, img.path))
	}
	img.bitmap = bitmap
	img.logger.Debugw("attached bitmap", "path", img.path, "width", img.width, "height", img.height)
}

func (img *Image) SetK(k photogrammetry.Mat3) {
	img.camera.K = k
}

func (img *Image) SetLastRow(lastRow photogrammetry.Vec4) {
	img.camera.LastRow = lastRow
}

func (img *Image) Path() string { return img.path }

func (img *Image) Width() int { return img.width }

func (img *Image) Height() int { return img.height }

// Bitmap returns the attached pixels, or nil.
func (img *Image) Bitmap() Bitmap { return img.bitmap }

// Camera returns a snapshot of the camera parameters.
func (img *Image) Camera() photogrammetry.Camera { return img.camera }

func (img *Image) K() photogrammetry.Mat3 { return img.camera.K }

func (img *Image) R() photogrammetry.Mat3 { return img.camera.R }

func (img *Image) T() photogrammetry.Vec3 { return img.camera.T }

func (img *Image) LastRow() photogrammetry.Vec4 { return img.camera.LastRow }

func (img *Image) Kf() photogrammetry.Mat3f { return img.camera.K.Float32() }

func (img *Image) RTf() (photogrammetry.Mat3f, photogrammetry.Vec3f) {
	return img.camera.R.Float32(), img.camera.T.Float32()
}

func (img *Image) Center() photogrammetry.Vec3f { return img.camera.Center().Float32() }

func (img *Image) CenterDouble() photogrammetry.Vec3 { return img.camera.Center() }

// PinvP returns the stabilized projection matrix and its inverse in single precision.
func (img *Image) PinvP() (photogrammetry.Mat4f, photogrammetry.Mat4f) {
	matrices := img.camera.ProjectionMatrices()
	return matrices.P.Float32(), matrices.InvP.Float32()
}

func (img *Image) PinvPDouble() photogrammetry.ProjectionMatrices {
	return img.camera.ProjectionMatrices()
}

// Depth returns the depth of a world point, see photogrammetry.Camera.DepthAt.
func (img *Image) Depth(x, y, z float64) float32 {
	return img.camera.Depth(x, y, z)
}

func (img *Image) Original() photogrammetry.Projection {
	return img.camera.Original()
}

// Rotate90Multi returns the camera parameters for the image turned cnt times 90° clockwise.
func (img *Image) Rotate90Multi(cnt int) photogrammetry.Projection {
	return img.camera.Rotate90Multi(cnt, img.width, img.height)
}

// Rescale scales both sides of the image by factor.
func (img *Image) Rescale(factor float64) error {
	return img.RescaleXY(factor, factor)
}

// RescaleXY resizes the image to round(width·factorX) x round(height·factorY), resampling
// the bitmap when one is attached. K is scaled by the realized ratios of the rounded sizes.
// If the bitmap fails to resample nothing is changed.
func (img *Image) RescaleXY(factorX, factorY float64) error {
	newWidth := int(math.Round(float64(img.width) * factorX))
	newHeight := int(math.Round(float64(img.height) * factorY))

	if img.bitmap != nil && img.bitmap.Data() != nil {
		if err := img.bitmap.Rescale(newWidth, newHeight); err != nil {
			return errors.Wrapf(err, "rescaling bitmap of %q to (%d, %d)", img.path, newWidth, newHeight)
		}
	}

	scaleX := float64(newWidth) / float64(img.width)
	scaleY := float64(newHeight) / float64(img.height)
	img.camera.K[0] *= scaleX
	img.camera.K[2] *= scaleX
	img.camera.K[4] *= scaleY
	img.camera.K[5] *= scaleY

	img.logger.Debugw("rescaled image", "path", img.path,
		"from", []int{img.width, img.height}, "to", []int{newWidth, newHeight})
	img.width = newWidth
	img.height = newHeight
	return nil
}

// Downsize shrinks the image uniformly so that it fits in maxWidth x maxHeight.
// Images that already fit are left alone.
func (img *Image) Downsize(maxWidth, maxHeight int) error {
	if img.width <= maxWidth && img.height <= maxHeight {
		return nil
	}
	factorX := float64(maxWidth) / float64(img.width)
	factorY := float64(maxHeight) / float64(img.height)
	return img.Rescale(math.Min(factorX, factorY))
}
