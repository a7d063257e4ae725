package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: 214, B: 110, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	logoPath := filepath.Join(dir, "logo.png")
	writePNG(t, logoPath, 120, 40)

	a := Load(Paths{Logo: logoPath}, nil, nil)
	if !a.HasLogo() {
		t.Fatal("expected logo to load")
	}
	if a.HasContact() {
		t.Error("contact icon was not configured and should be absent")
	}
	if b := a.Logo.Bounds(); b.Dx() != 120 || b.Dy() != 40 {
		t.Errorf("unexpected logo size %v", b)
	}
}

func TestLoad_FailuresAreNonFatal(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.png")
	if err := os.WriteFile(broken, []byte("nope"), 0o644); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	core, logs := observer.New(zap.WarnLevel)
	a := Load(Paths{
		Logo:    filepath.Join(dir, "missing.png"),
		Contact: broken,
	}, nil, zap.New(core))

	if a.HasLogo() || a.HasContact() {
		t.Error("failed assets should be absent")
	}
	if logs.Len() != 2 {
		t.Errorf("expected 2 warnings, got %d", logs.Len())
	}
}
