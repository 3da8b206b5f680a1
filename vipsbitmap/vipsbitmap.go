// Package vipsbitmap provides an mvs.Bitmap over an encoded JPEG or PNG buffer,
// resampled with libvips.
package vipsbitmap

import (
	"github.com/h2non/bimg"
	"github.com/pkg/errors"
)

const compression = 90

// Bitmap keeps its pixels encoded. Every Rescale decodes, resamples and re-encodes.
type Bitmap struct {
	buffer []byte
	width  int
	height int
}

// New reads the size of an encoded image buffer.
func New(buffer []byte) (*Bitmap, error) {
	size, err := bimg.NewImage(buffer).Size()
	if err != nil {
		return nil, errors.Wrap(err, "reading image size")
	}
	return &Bitmap{buffer: buffer, width: size.Width, height: size.Height}, nil
}

func (b *Bitmap) Width() int { return b.width }

func (b *Bitmap) Height() int { return b.height }

// Data returns the encoded buffer.
func (b *Bitmap) Data() []byte { return b.buffer }

func (b *Bitmap) Rescale(width, height int) error {
	if len(b.buffer) == 0 {
		return errors.New("no pixels to rescale")
	}
	if width <= 0 || height <= 0 {
		return errors.Errorf("invalid bitmap size (%d, %d)", width, height)
	}
	resized, err := bimg.NewImage(b.buffer).Process(bimg.Options{
		Width:        width,
		Height:       height,
		Force:        true,
		Interpolator: bimg.Bilinear,
		Compression:  compression,
	})
	if err != nil {
		return errors.Wrapf(err, "resizing to (%d, %d)", width, height)
	}
	if resized == nil {
		return errors.New("resizing produced no image")
	}
	size, err := bimg.NewImage(resized).Size()
	if err != nil {
		return errors.Wrap(err, "reading resized image size")
	}
	if size.Width != width || size.Height != height {
		return errors.Errorf("resized to (%d, %d), want (%d, %d)", size.Width, size.Height, width, height)
	}
	b.buffer = resized
	b.width = width
	b.height = height
	return nil
}
