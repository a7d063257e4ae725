package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/fleveque/ficha-service/internal/decode"
	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/templates"
	"github.com/fleveque/ficha-service/internal/video"
)

// fakeEncoder records the request instead of running ffmpeg.
type fakeEncoder struct {
	got video.Request
	err error
}

func (f *fakeEncoder) Encode(_ context.Context, req video.Request) ([]byte, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	if req.OnProgress != nil {
		req.OnProgress("frame=   10 fps=30")
	}
	return []byte("mp4"), nil
}

type failingDecoder struct{}

func (failingDecoder) Decode([]byte) (image.Image, error) {
	return nil, errors.New("unsupported codec")
}

func TestBuildItems(t *testing.T) {
	g, err := GroupInputs(templates.Historia, photoInputs("Frente.JPG", "lateral.jpg", "interior.jpg", "extra.jpg"))
	if err != nil {
		t.Fatalf("grouping: %v", err)
	}
	items, err := BuildItems(context.Background(), g, &decode.Decoder{})
	if err != nil {
		t.Fatalf("BuildItems failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	it := items[0]
	if it.Name != "frente" {
		t.Errorf("item should be named after its first photo, got %q", it.Name)
	}
	if len(it.Slots) != 3 || it.Slots[2].Source != "interior.jpg" {
		t.Errorf("unexpected slots %+v", it.Slots)
	}
}

func TestBuildItems_DecodeFailure(t *testing.T) {
	g, _ := GroupInputs(templates.Portada, photoInputs("a.jpg", "b.jpg"))

	items, err := BuildItems(context.Background(), g, failingDecoder{})
	if !errors.Is(err, decode.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
	if items != nil {
		t.Error("a decode failure must not produce partial items")
	}
	if !strings.Contains(err.Error(), "a.jpg") {
		t.Errorf("error should name the file, got %v", err)
	}
}

func TestExportArchive(t *testing.T) {
	exp := NewExporter(newTestRenderer(t), nil)
	snaps := buildSnapshots(t, templates.Portada, "uno.png", "dos.png", "tres.png")

	var buf bytes.Buffer
	pkg := NewZipPackager(&buf)
	n, err := exp.ExportArchive(context.Background(), snaps, model.VehicleData{Model: "Corsa"}, model.DefaultExportSettings(), pkg)
	if err != nil {
		t.Fatalf("ExportArchive failed: %v", err)
	}
	if err := pkg.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 items exported, got %d", n)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("reading archive: %v", err)
	}
	want := []string{"uno_portada.jpg", "dos_portada.jpg", "tres_portada.jpg"}
	if len(zr.File) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], f.Name)
		}
	}
}

func TestExportArchive_PNGSetting(t *testing.T) {
	exp := NewExporter(newTestRenderer(t), nil)
	snaps := buildSnapshots(t, templates.Historia, "a.png", "b.png", "c.png")

	var buf bytes.Buffer
	pkg := NewZipPackager(&buf)
	settings := model.DefaultExportSettings()
	settings.Format = model.FormatPNG
	if _, err := exp.ExportArchive(context.Background(), snaps, model.VehicleData{}, settings, pkg); err != nil {
		t.Fatalf("ExportArchive failed: %v", err)
	}
	if names := pkg.Names(); len(names) != 1 || names[0] != "a_historia.png" {
		t.Errorf("unexpected entries %v", names)
	}
}

func TestExportArchive_DuplicateNames(t *testing.T) {
	exp := NewExporter(newTestRenderer(t), nil)
	snaps := buildSnapshots(t, templates.Portada, "IMG 1.png", "img_1.png", "fotos/img_1.png", "img_1_2.png")

	var buf bytes.Buffer
	pkg := NewZipPackager(&buf)
	if _, err := exp.ExportArchive(context.Background(), snaps, model.VehicleData{}, model.DefaultExportSettings(), pkg); err != nil {
		t.Fatalf("ExportArchive failed: %v", err)
	}

	want := []string{"img_1_portada.jpg", "img_1_2_portada.jpg", "img_1_3_portada.jpg", "img_1_2_2_portada.jpg"}
	names := pkg.Names()
	if len(names) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d: expected %s, got %s", i, want[i], names[i])
		}
	}
}

func TestExportArchive_Empty(t *testing.T) {
	exp := NewExporter(newTestRenderer(t), nil)
	var buf bytes.Buffer
	if _, err := exp.ExportArchive(context.Background(), nil, model.VehicleData{}, model.DefaultExportSettings(), NewZipPackager(&buf)); err == nil {
		t.Error("expected error for an empty batch")
	}
}

func TestExportVideo_ForcesPNG(t *testing.T) {
	exp := NewExporter(newTestRenderer(t), nil)
	snaps := buildSnapshots(t, templates.VideoSlide, "a.png", "b.png")

	settings := model.ExportSettings{Format: model.FormatJPG, Quality: 0.5, VideoDuration: 3, VideoFPS: 24}
	enc := &fakeEncoder{}
	var progress []string

	out, err := exp.ExportVideo(context.Background(), snaps, model.VehicleData{}, settings, enc, func(l string) {
		progress = append(progress, l)
	})
	if err != nil {
		t.Fatalf("ExportVideo failed: %v", err)
	}
	if string(out) != "mp4" {
		t.Errorf("unexpected output %q", out)
	}

	if len(enc.got.Slides) != 2 {
		t.Fatalf("expected 2 slides, got %d", len(enc.got.Slides))
	}
	for i, s := range enc.got.Slides {
		if s.Filename != SlideName(i) {
			t.Errorf("slide %d named %s, want %s", i, s.Filename, SlideName(i))
		}
		if _, err := png.DecodeConfig(bytes.NewReader(s.Data)); err != nil {
			t.Errorf("slide %d is not a png even though the setting is jpg: %v", i, err)
		}
	}
	if enc.got.DurationSec != 3 || enc.got.FPS != 24 {
		t.Errorf("settings not passed through: %+v", enc.got)
	}
	if len(progress) != 1 {
		t.Errorf("expected progress callback to fire once, got %d", len(progress))
	}
}

func TestExportVideo_Errors(t *testing.T) {
	exp := NewExporter(newTestRenderer(t), nil)

	if _, err := exp.ExportVideo(context.Background(), nil, model.VehicleData{}, model.DefaultExportSettings(), &fakeEncoder{}, nil); err == nil || !strings.Contains(err.Error(), "no slides") {
		t.Errorf("expected no slides error, got %v", err)
	}

	portadas := buildSnapshots(t, templates.Portada, "a.png")
	if _, err := exp.ExportVideo(context.Background(), portadas, model.VehicleData{}, model.DefaultExportSettings(), &fakeEncoder{}, nil); err == nil {
		t.Error("expected error for non-video items")
	}

	slides := buildSnapshots(t, templates.VideoSlide, "a.png")
	enc := &fakeEncoder{err: video.ErrEncoderUnavailable}
	if _, err := exp.ExportVideo(context.Background(), slides, model.VehicleData{}, model.DefaultExportSettings(), enc, nil); !errors.Is(err, video.ErrEncoderUnavailable) {
		t.Errorf("expected ErrEncoderUnavailable, got %v", err)
	}
}

func TestSlideName(t *testing.T) {
	if got := SlideName(7); got != "slide_007.png" {
		t.Errorf("got %s", got)
	}
}
