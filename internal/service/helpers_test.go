package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/decode"
	"github.com/fleveque/ficha-service/internal/templates"
	"github.com/fleveque/ficha-service/internal/text"
)

// createTestPNG generates a small solid-color PNG image in memory.
func createTestPNG(width, height int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err) // only in tests
	}
	return buf.Bytes()
}

func photoInputs(names ...string) []PhotoInput {
	inputs := make([]PhotoInput, len(names))
	for i, n := range names {
		inputs[i] = PhotoInput{Filename: n, Data: createTestPNG(32, 18, color.NRGBA{R: 180, G: 30, B: 60, A: 255})}
	}
	return inputs
}

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	fonts, err := text.NewFontManager(text.FontPaths{}, nil)
	if err != nil {
		t.Fatalf("loading fonts: %v", err)
	}
	return NewRenderer(templates.Env{Fonts: fonts, Brand: templates.DefaultBrand()}, nil)
}

// buildSnapshots groups, decodes and snapshots inputs for template k.
func buildSnapshots(t *testing.T, k templates.Kind, names ...string) []ItemSnapshot {
	t.Helper()
	g, err := GroupInputs(k, photoInputs(names...))
	if err != nil {
		t.Fatalf("grouping: %v", err)
	}
	items, err := BuildItems(t.Context(), g, &decode.Decoder{})
	if err != nil {
		t.Fatalf("building items: %v", err)
	}
	snaps := make([]ItemSnapshot, len(items))
	for i, it := range items {
		snaps[i] = it.Snapshot()
	}
	return snaps
}

func zapNop() *zap.Logger { return zap.NewNop() }
