package templates

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/fleveque/ficha-service/internal/model"
)

// Encode serializes a finished surface. quality (1..100) only applies to JPEG.
func Encode(img image.Image, format model.Format, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case model.FormatJPG:
		err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality))
	case model.FormatPNG:
		err = imaging.Encode(&buf, img, imaging.PNG)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
