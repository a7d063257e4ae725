package text

import (
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Style is the face a Weight resolves to. Only three cuts are loaded.
type Style int

const (
	StyleRegular Style = iota
	StyleMedium
	StyleBold
)

// StyleFor maps a numeric weight onto the loaded cuts.
func StyleFor(w Weight) Style {
	switch {
	case w >= 700:
		return StyleBold
	case w >= 600:
		return StyleMedium
	default:
		return StyleRegular
	}
}

// FontPaths are optional TTF/OTF files overriding the embedded Go fonts.
type FontPaths struct {
	Regular string
	Medium  string
	Bold    string
}

// FontManager parses each cut once and hands out sized faces. Faces are
// created per call: an opentype face keeps scratch buffers and must not be
// shared between goroutines, the parsed font can be.
type FontManager struct {
	fonts map[Style]*opentype.Font
}

// NewFontManager loads the configured fonts, falling back to the embedded Go
// fonts for any path that is empty or unreadable.
func NewFontManager(paths FontPaths, logger *zap.Logger) (*FontManager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	sources := []struct {
		style    Style
		path     string
		fallback []byte
	}{
		{StyleRegular, paths.Regular, goregular.TTF},
		{StyleMedium, paths.Medium, gomedium.TTF},
		{StyleBold, paths.Bold, gobold.TTF},
	}

	fm := &FontManager{fonts: make(map[Style]*opentype.Font, len(sources))}
	for _, src := range sources {
		data := src.fallback
		if src.path != "" {
			custom, err := os.ReadFile(src.path)
			if err != nil {
				logger.Warn("could not load custom font, using embedded default",
					zap.String("path", src.path),
					zap.Error(err),
				)
			} else {
				data = custom
			}
		}

		parsed, err := opentype.Parse(data)
		if err != nil && src.path != "" {
			logger.Warn("could not parse custom font, using embedded default",
				zap.String("path", src.path),
				zap.Error(err),
			)
			parsed, err = opentype.Parse(src.fallback)
		}
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
		fm.fonts[src.style] = parsed
	}

	return fm, nil
}

// Face returns a new face for spec. Sizes are pixels (72 DPI).
func (fm *FontManager) Face(spec FaceSpec) (font.Face, error) {
	f := fm.fonts[StyleFor(spec.Weight)]
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    spec.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating font face: %w", err)
	}
	return face, nil
}

// Measure implements Measurer. Unhinted advances scale linearly with size,
// which keeps the measurement monotonic.
func (fm *FontManager) Measure(s string, spec FaceSpec) float64 {
	face, err := fm.Face(spec)
	if err != nil {
		return math.Inf(1)
	}
	defer face.Close()

	return float64(font.MeasureString(face, s)) / 64
}
