// Package decode turns uploaded photo bytes into bitmaps.
//
// Go's image decoders (through disintegration/imaging) handle JPEG, PNG, GIF,
// BMP and TIFF and honor the EXIF orientation phones write. Anything else,
// such as HEIC or WebP straight from a phone, goes through libvips (bimg)
// and is converted to PNG first.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/disintegration/imaging"
	"github.com/h2non/bimg"
)

// ErrDecode is returned when no decoder understands the input.
var ErrDecode = errors.New("image could not be decoded")

// DefaultMaxPixels is the pixel budget of a zero Decoder, about a 50MP
// camera. Headers claiming more are rejected before any bitmap is allocated.
const DefaultMaxPixels = 50_000_000

// Decoder decodes photos. The zero value is ready to use and keeps the
// photo at full resolution.
type Decoder struct {
	// MaxSide, when positive, downsizes photos whose longest side exceeds it.
	// Templates never draw a photo larger than 1920px, so bigger sources only
	// cost memory.
	MaxSide int

	// MaxPixels bounds width*height as declared by the image header.
	// Zero means DefaultMaxPixels, negative disables the check.
	MaxPixels int64
}

// New returns a Decoder that caps photos at maxSide pixels.
func New(maxSide int) *Decoder {
	return &Decoder{MaxSide: maxSide}
}

// Decode decodes data, trying the Go decoders first and libvips second.
func (d *Decoder) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecode)
	}

	// The header is checked before the Go decoders allocate the bitmap.
	var img image.Image
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil {
		if err := d.checkPixels(cfg.Width, cfg.Height); err != nil {
			return nil, err
		}
		img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	}
	if err != nil {
		img, err = d.decodeWithVips(data)
		if err != nil {
			return nil, err
		}
	}

	return d.limit(img), nil
}

// DecodeFile reads and decodes the file at path.
func (d *Decoder) DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, err := d.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return img, nil
}

func (d *Decoder) checkPixels(w, h int) error {
	budget := int64(DefaultMaxPixels)
	if d != nil && d.MaxPixels != 0 {
		budget = d.MaxPixels
	}
	if budget > 0 && int64(w)*int64(h) > budget {
		return fmt.Errorf("%w: %dx%d exceeds the %d pixel limit", ErrDecode, w, h, budget)
	}
	return nil
}

func (d *Decoder) limit(img image.Image) image.Image {
	if d == nil || d.MaxSide <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= d.MaxSide && b.Dy() <= d.MaxSide {
		return img
	}
	return imaging.Fit(img, d.MaxSide, d.MaxSide, imaging.Lanczos)
}

// decodeWithVips lets libvips convert formats Go has no decoder for.
// libvips auto-rotates from EXIF during Process.
func (d *Decoder) decodeWithVips(data []byte) (image.Image, error) {
	typ := bimg.DetermineImageType(data)
	if typ == bimg.UNKNOWN {
		return nil, fmt.Errorf("%w: unrecognized format", ErrDecode)
	}

	src := bimg.NewImage(data)
	size, err := src.Size()
	if err != nil {
		return nil, fmt.Errorf("%w: %s header: %v", ErrDecode, bimg.ImageTypeName(typ), err)
	}
	if err := d.checkPixels(size.Width, size.Height); err != nil {
		return nil, err
	}

	converted, err := src.Process(bimg.Options{
		Type:           bimg.PNG,
		Interpretation: bimg.InterpretationSRGB,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s via libvips: %v", ErrDecode, bimg.ImageTypeName(typ), err)
	}

	img, err := imaging.Decode(bytes.NewReader(converted))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return img, nil
}
