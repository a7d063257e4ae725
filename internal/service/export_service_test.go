package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/storage"
	"github.com/fleveque/ficha-service/internal/templates"
	"github.com/fleveque/ficha-service/internal/video"
)

func setupExportService(t *testing.T, enc video.Encoder) (*ExportService, *storage.FileSystem) {
	t.Helper()

	dir := t.TempDir()
	db, err := storage.NewDatabase(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("creating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	fs, err := storage.NewFileSystem(filepath.Join(dir, "out"))
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}

	svc := NewExportService(
		NewExporter(newTestRenderer(t), nil),
		storage.NewExportRepository(db),
		fs,
		enc,
		zapNop(),
	)
	return svc, fs
}

func TestExportService_Archive(t *testing.T) {
	svc, fs := setupExportService(t, nil)
	ctx := context.Background()

	exp, err := svc.Archive(ctx, ExportRequest{
		Template: templates.Portada,
		Items:    buildSnapshots(t, templates.Portada, "a.png", "b.png"),
		Settings: model.DefaultExportSettings(),
		Unused:   0,
	})
	if err != nil {
		t.Fatalf("Archive failed: %v", err)
	}
	if exp.Status != model.StatusCompleted || exp.ItemCount != 2 || exp.Format != "jpg" {
		t.Errorf("unexpected export record %+v", exp)
	}
	if !fs.Exists(exp.ID, "portadas.zip") {
		t.Fatal("expected archive on disk")
	}

	got, data, err := svc.Open(ctx, exp.ID)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if got.SizeBytes == nil || *got.SizeBytes != int64(len(data)) {
		t.Errorf("recorded size %v does not match %d bytes on disk", got.SizeBytes, len(data))
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("stored archive unreadable: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("expected 2 entries, got %d", len(zr.File))
	}
}

func TestExportService_VideoWithoutEncoder(t *testing.T) {
	svc, _ := setupExportService(t, nil)
	ctx := context.Background()

	_, exportErr := svc.Video(ctx, ExportRequest{
		Template: templates.VideoSlide,
		Items:    buildSnapshots(t, templates.VideoSlide, "a.png"),
		Settings: model.DefaultExportSettings(),
	}, nil)
	if !errors.Is(exportErr, video.ErrEncoderUnavailable) {
		t.Fatalf("expected ErrEncoderUnavailable, got %v", exportErr)
	}

	stats, err := svc.Stats(ctx, 10)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 1 || stats.Failed != 1 {
		t.Errorf("expected one failed export, got %+v", stats)
	}
	if stats.Recent[0].ErrorMessage == nil {
		t.Error("failed export should keep its error message")
	}
	var failed *ExportError
	if !errors.As(exportErr, &failed) || failed.ID != stats.Recent[0].ID {
		t.Errorf("error should name the failed export %s, got %v", stats.Recent[0].ID, exportErr)
	}

	if _, _, err := svc.Open(ctx, stats.Recent[0].ID); !errors.Is(err, ErrExportNotReady) {
		t.Errorf("opening a failed export: expected ErrExportNotReady, got %v", err)
	}
}

func TestExportService_Video(t *testing.T) {
	svc, fs := setupExportService(t, &fakeEncoder{})

	exp, err := svc.Video(context.Background(), ExportRequest{
		Template: templates.VideoSlide,
		Items:    buildSnapshots(t, templates.VideoSlide, "a.png", "b.png"),
		Settings: model.DefaultExportSettings(),
	}, nil)
	if err != nil {
		t.Fatalf("Video failed: %v", err)
	}
	if exp.Kind != model.KindVideo || exp.Filename == nil || *exp.Filename != VideoFilename {
		t.Errorf("unexpected export record %+v", exp)
	}
	data, err := fs.Read(exp.ID, VideoFilename)
	if err != nil || string(data) != "mp4" {
		t.Errorf("expected encoder output on disk, got %q, %v", data, err)
	}
}

func TestExportService_OpenNotFound(t *testing.T) {
	svc, _ := setupExportService(t, nil)
	if _, _, err := svc.Open(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
