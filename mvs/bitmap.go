package mvs

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// Bitmap is the pixel buffer attached to an Image. Data returns nil when no pixels are held.
type Bitmap interface {
	Width() int
	Height() int
	Data() []byte
	// Rescale resamples the pixels in place to exactly width x height.
	Rescale(width, height int) error
}

// RasterBitmap is a colour Bitmap resampled with a bilinear filter.
type RasterBitmap struct {
	img *image.NRGBA
}

// NewRasterBitmap copies img into a new RasterBitmap.
func NewRasterBitmap(img image.Image) *RasterBitmap {
	if img == nil {
		return &RasterBitmap{}
	}
	return &RasterBitmap{img: imaging.Clone(img)}
}

func (b *RasterBitmap) Width() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dx()
}

func (b *RasterBitmap) Height() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dy()
}

func (b *RasterBitmap) Data() []byte {
	if b.img == nil {
		return nil
	}
	return b.img.Pix
}

func (b *RasterBitmap) Image() *image.NRGBA {
	return b.img
}

func (b *RasterBitmap) Rescale(width, height int) error {
	if b.img == nil {
		return errors.New("no pixels to rescale")
	}
	if width <= 0 || height <= 0 {
		return errors.Errorf("invalid bitmap size (%d, %d)", width, height)
	}
	b.img = imaging.Resize(b.img, width, height, imaging.Linear)
	return nil
}

// GrayBitmap is a single channel Bitmap, the form patch matching reads images in.
type GrayBitmap struct {
	img *image.Gray
}

func NewGrayBitmap(img *image.Gray) *GrayBitmap {
	return &GrayBitmap{img: img}
}

func (b *GrayBitmap) Width() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dx()
}

func (b *GrayBitmap) Height() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dy()
}

func (b *GrayBitmap) Data() []byte {
	if b.img == nil {
		return nil
	}
	return b.img.Pix
}

func (b *GrayBitmap) Image() *image.Gray {
	return b.img
}

func (b *GrayBitmap) Rescale(width, height int) error {
	if b.img == nil {
		return errors.New("no pixels to rescale")
	}
	// resize keeps the aspect ratio when one side is zero; we always want the exact size.
	if width <= 0 || height <= 0 {
		return errors.Errorf("invalid bitmap size (%d, %d)", width, height)
	}
	resized, ok := resize.Resize(uint(width), uint(height), b.img, resize.Bilinear).(*image.Gray)
	if !ok {
		return errors.New("resampling did not produce a gray image")
	}
	b.img = resized
	return nil
}
