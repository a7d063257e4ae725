// Package assets loads the optional brand images drawn on the templates.
package assets

import (
	"image"
	"os"

	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/decode"
)

// Assets are the brand decorations. A nil field means the asset is absent
// and every template must simply skip that decoration.
type Assets struct {
	Logo    image.Image
	Contact image.Image
}

// HasLogo reports whether a logo is available.
func (a Assets) HasLogo() bool { return a.Logo != nil }

// HasContact reports whether a contact icon is available.
func (a Assets) HasContact() bool { return a.Contact != nil }

// Paths locates the asset files. Empty paths are skipped silently.
type Paths struct {
	Logo    string
	Contact string
}

// Load reads every configured asset once. Failures are logged and leave the
// asset absent; Load itself never fails.
//
// The contact icon is usually an SVG, which Go can't decode: the decoder
// hands it to libvips for rasterization.
func Load(paths Paths, dec *decode.Decoder, logger *zap.Logger) Assets {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dec == nil {
		dec = &decode.Decoder{}
	}

	return Assets{
		Logo:    loadOne("logo", paths.Logo, dec, logger),
		Contact: loadOne("contact icon", paths.Contact, dec, logger),
	}
}

func loadOne(name, path string, dec *decode.Decoder, logger *zap.Logger) image.Image {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("brand asset unavailable",
			zap.String("asset", name),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}

	img, err := dec.Decode(data)
	if err != nil {
		logger.Warn("brand asset could not be decoded",
			zap.String("asset", name),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil
	}

	b := img.Bounds()
	logger.Info("brand asset loaded",
		zap.String("asset", name),
		zap.Int("width", b.Dx()),
		zap.Int("height", b.Dy()),
	)
	return img
}
