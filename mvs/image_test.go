package mvs

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"sphaeroptica.be/mvs/logging"
	"sphaeroptica.be/mvs/photogrammetry"
)

var testK = photogrammetry.Mat3{1000, 0, 640, 0, 1000, 480, 0, 0, 1}

func newTestImage(t *testing.T, width, height int) *Image {
	t.Helper()
	img := NewImage("image.jpg", width, height, testK, photogrammetry.Identity3(), photogrammetry.Vec3{0, 0, 5},
		WithLogger(logging.NewTestLogger(t)))
	img.SetLastRow(photogrammetry.Vec4{0, 0, 0, 1})
	return img
}

// failingBitmap reports pixels but cannot resample them.
type failingBitmap struct {
	width, height int
}

func (b *failingBitmap) Width() int { return b.width }
func (b *failingBitmap) Height() int { return b.height }
func (b *failingBitmap) Data() []byte { return []byte{0} }
func (b *failingBitmap) Rescale(width, height int) error { return errors.New("resampler unavailable") }

func TestNewImage(t *testing.T) {
	img := newTestImage(t, 1280, 960)
	test.That(t, img.Path(), test.ShouldEqual, "image.jpg")
	test.That(t, img.Width(), test.ShouldEqual, 1280)
	test.That(t, img.Height(), test.ShouldEqual, 960)
	test.That(t, img.Bitmap(), test.ShouldBeNil)
	test.That(t, img.K(), test.ShouldResemble, testK)
	test.That(t, img.Kf(), test.ShouldResemble, testK.Float32())
	test.That(t, img.R(), test.ShouldResemble, photogrammetry.Identity3())
	test.That(t, img.T(), test.ShouldResemble, photogrammetry.Vec3{0, 0, 5})
	test.That(t, img.LastRow(), test.ShouldResemble, photogrammetry.Vec4{0, 0, 0, 1})

	rot, trans := img.RTf()
	test.That(t, rot, test.ShouldResemble, photogrammetry.Identity3().Float32())
	test.That(t, trans, test.ShouldResemble, photogrammetry.Vec3f{0, 0, 5})
	test.That(t, img.Center(), test.ShouldResemble, photogrammetry.Vec3f{0, 0, -5})
	test.That(t, img.CenterDouble(), test.ShouldResemble, photogrammetry.Vec3{0, 0, -5})
	test.That(t, img.Depth(0, 0, 1), test.ShouldEqual, float32(6))

	p, invP := img.PinvP()
	matrices := img.PinvPDouble()
	test.That(t, p, test.ShouldResemble, matrices.P.Float32())
	test.That(t, invP, test.ShouldResemble, matrices.InvP.Float32())

	test.That(t, img.Original(), test.ShouldResemble, img.Camera().Original())
	test.That(t, img.Rotate90Multi(1), test.ShouldResemble, img.Camera().Rotate90(1280, 960))
}

func TestSetK(t *testing.T) {
	img := newTestImage(t, 1280, 960)
	snapshot := img.Camera()

	k := photogrammetry.Mat3{500, 0, 320, 0, 500, 240, 0, 0, 1}
	img.SetK(k)
	test.That(t, img.K(), test.ShouldResemble, k)
	test.That(t, snapshot.K, test.ShouldResemble, testK)
}

func TestNewImageFromCalibration(t *testing.T) {
	intrinsics := photogrammetry.Intrinsics{
		Width:        1280,
		Height:       960,
		CameraMatrix: testK.Info(),
	}
	extrinsics := photogrammetry.Extrinsics{Matrix: photogrammetry.MatrixInfo{
		Shape: photogrammetry.Shape{Row: 3, Col: 4},
		Data: []float64{
			1, 0, 0, 1,
			0, 1, 0, 2,
			0, 0, 1, 3,
		},
	}}

	img, err := NewImageFromCalibration("a.jpg", intrinsics, extrinsics)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.K(), test.ShouldResemble, testK)
	test.That(t, img.R(), test.ShouldResemble, photogrammetry.Identity3())
	test.That(t, img.T(), test.ShouldResemble, photogrammetry.Vec3{1, 2, 3})
	test.That(t, img.Width(), test.ShouldEqual, 1280)

	intrinsics.Width = 0
	_, err = NewImageFromCalibration("a.jpg", intrinsics, extrinsics)
	test.That(t, errors.Is(err, photogrammetry.ErrNoIntrinsics), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "a.jpg")

	intrinsics.Width = 1280
	extrinsics.Matrix.Shape.Col = 3
	_, err = NewImageFromCalibration("a.jpg", intrinsics, extrinsics)
	test.That(t, errors.Is(err, photogrammetry.ErrInvalidShape), test.ShouldBeTrue)
}

func TestSetBitmap(t *testing.T) {
	img := newTestImage(t, 40, 30)

	t.Run("matching size", func(t *testing.T) {
		bitmap := NewRasterBitmap(imaging.New(40, 30, color.White))
		img.SetBitmap(bitmap)
		test.That(t, img.Bitmap(), test.ShouldEqual, bitmap)
	})

	t.Run("mismatching size panics", func(t *testing.T) {
		test.That(t, func() { img.SetBitmap(NewRasterBitmap(imaging.New(30, 40, color.White))) }, test.ShouldPanic)
	})
}

func TestRescale(t *testing.T) {
	t.Run("scales K by the realized factors", func(t *testing.T) {
		img := newTestImage(t, 1280, 960)
		test.That(t, img.RescaleXY(0.5, 0.25), test.ShouldBeNil)
		test.That(t, img.Width(), test.ShouldEqual, 640)
		test.That(t, img.Height(), test.ShouldEqual, 240)
		test.That(t, img.K(), test.ShouldResemble, photogrammetry.Mat3{500, 0, 320, 0, 250, 120, 0, 0, 1})
	})

	t.Run("uses rounded sizes", func(t *testing.T) {
		img := newTestImage(t, 3, 3)
		test.That(t, img.Rescale(0.5), test.ShouldBeNil)
		// round(1.5) == 2
		test.That(t, img.Width(), test.ShouldEqual, 2)
		test.That(t, img.K()[0], test.ShouldAlmostEqual, 1000*2./3, 1e-9)
		test.That(t, img.K()[5], test.ShouldAlmostEqual, 480*2./3, 1e-9)
	})

	t.Run("round trip", func(t *testing.T) {
		img := newTestImage(t, 1281, 961)
		test.That(t, img.Rescale(2), test.ShouldBeNil)
		test.That(t, img.Rescale(0.5), test.ShouldBeNil)
		test.That(t, img.Width(), test.ShouldEqual, 1281)
		test.That(t, img.Height(), test.ShouldEqual, 961)
		for i, v := range testK {
			test.That(t, img.K()[i], test.ShouldAlmostEqual, v, 1e-9)
		}
	})

	t.Run("resamples the bitmap", func(t *testing.T) {
		img := newTestImage(t, 40, 30)
		img.SetBitmap(NewGrayBitmap(image.NewGray(image.Rect(0, 0, 40, 30))))
		test.That(t, img.Rescale(0.5), test.ShouldBeNil)
		test.That(t, img.Bitmap().Width(), test.ShouldEqual, 20)
		test.That(t, img.Bitmap().Height(), test.ShouldEqual, 15)
		test.That(t, img.Bitmap().Width(), test.ShouldEqual, img.Width())
		test.That(t, img.Bitmap().Height(), test.ShouldEqual, img.Height())
	})

	t.Run("failed resample leaves the image unchanged", func(t *testing.T) {
		img := newTestImage(t, 40, 30)
		img.SetBitmap(&failingBitmap{40, 30})
		err := img.Rescale(0.5)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "resampler unavailable")
		test.That(t, img.Width(), test.ShouldEqual, 40)
		test.That(t, img.K(), test.ShouldResemble, testK)
	})

	t.Run("logs the rescale", func(t *testing.T) {
		logger, logs := logging.NewObservedTestLogger(t)
		img := NewImage("image.jpg", 40, 30, testK, photogrammetry.Identity3(), photogrammetry.Vec3{}, WithLogger(logger))
		test.That(t, img.Rescale(2), test.ShouldBeNil)
		test.That(t, logs.FilterMessage("rescaled image").Len(), test.ShouldEqual, 1)
	})
}

func TestDownsize(t *testing.T) {
	t.Run("fits already", func(t *testing.T) {
		img := newTestImage(t, 1280, 960)
		test.That(t, img.Downsize(1280, 960), test.ShouldBeNil)
		test.That(t, img.Downsize(2000, 2000), test.ShouldBeNil)
		test.That(t, img.Width(), test.ShouldEqual, 1280)
		test.That(t, img.Height(), test.ShouldEqual, 960)
		test.That(t, img.K(), test.ShouldResemble, testK)
	})

	t.Run("uses the more restrictive axis", func(t *testing.T) {
		img := newTestImage(t, 1280, 960)
		test.That(t, img.Downsize(640, 640), test.ShouldBeNil)
		test.That(t, img.Width(), test.ShouldEqual, 640)
		test.That(t, img.Height(), test.ShouldEqual, 480)
		test.That(t, img.K(), test.ShouldResemble, photogrammetry.Mat3{500, 0, 320, 0, 500, 240, 0, 0, 1})
	})

	t.Run("one axis too large", func(t *testing.T) {
		img := newTestImage(t, 1280, 960)
		test.That(t, img.Downsize(2560, 480), test.ShouldBeNil)
		test.That(t, img.Width(), test.ShouldEqual, 640)
		test.That(t, img.Height(), test.ShouldEqual, 480)
	})
}
