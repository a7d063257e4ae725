package storage

import (
	"bytes"
	"testing"
)

func TestFileSystem_WriteAndRead(t *testing.T) {
	tmpDir := t.TempDir()
	fs, err := NewFileSystem(tmpDir)
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}

	// A zip local file header signature is enough for the round trip.
	fakeZip := []byte{'P', 'K', 0x03, 0x04}
	if err := fs.Write("exp-1", "portadas.zip", fakeZip); err != nil {
		t.Fatalf("writing output: %v", err)
	}

	if !fs.Exists("exp-1", "portadas.zip") {
		t.Error("expected output to exist after write")
	}

	data, err := fs.Read("exp-1", "portadas.zip")
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !bytes.Equal(data, fakeZip) {
		t.Errorf("expected %x, got %x", fakeZip, data)
	}

	size, err := fs.Size("exp-1", "portadas.zip")
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != int64(len(fakeZip)) {
		t.Errorf("expected size %d, got %d", len(fakeZip), size)
	}
}

func TestFileSystem_Exists_NotFound(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}

	if fs.Exists("nope", "video.mp4") {
		t.Error("expected non-existent output to return false")
	}
}

func TestFileSystem_Read_NotFound(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}

	if _, err := fs.Read("nope", "video.mp4"); err == nil {
		t.Error("expected error reading non-existent output")
	}
}

func TestFileSystem_RejectsTraversal(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}

	tests := []struct {
		name, id, file string
	}{
		{"parent id", "..", "a.zip"},
		{"slash in file", "exp", "../a.zip"},
		{"empty file", "exp", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := fs.Write(tt.id, tt.file, []byte("x")); err == nil {
				t.Error("expected error for unsafe path")
			}
		})
	}
}

func TestFileSystem_DeleteExport(t *testing.T) {
	fs, err := NewFileSystem(t.TempDir())
	if err != nil {
		t.Fatalf("creating filesystem: %v", err)
	}

	if err := fs.Write("exp-2", "historias.zip", []byte("data")); err != nil {
		t.Fatalf("writing output: %v", err)
	}
	if err := fs.DeleteExport("exp-2"); err != nil {
		t.Fatalf("deleting export: %v", err)
	}
	if fs.Exists("exp-2", "historias.zip") {
		t.Error("expected output to be gone after delete")
	}
}
