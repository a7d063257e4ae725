package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem stores finished exports on disk.
// Outputs live at: {baseDir}/{exportID}/{filename}
type FileSystem struct {
	baseDir string
}

// NewFileSystem creates a new FileSystem storage, ensuring the base directory exists.
func NewFileSystem(baseDir string) (*FileSystem, error) {
	// MkdirAll creates the directory and all parents (like mkdir -p).
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &FileSystem{baseDir: baseDir}, nil
}

// ExportDir returns the directory holding one export's output.
func (fs *FileSystem) ExportDir(exportID string) string {
	return filepath.Join(fs.baseDir, exportID)
}

// OutputPath returns where an export's file is stored.
func (fs *FileSystem) OutputPath(exportID, filename string) string {
	return filepath.Join(fs.ExportDir(exportID), filename)
}

// Create opens a new output file for writing, creating the export
// directory if needed. The caller closes the file.
func (fs *FileSystem) Create(exportID, filename string) (*os.File, error) {
	if err := validName(exportID); err != nil {
		return nil, err
	}
	if err := validName(filename); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(fs.ExportDir(exportID), 0755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	f, err := os.Create(fs.OutputPath(exportID, filename))
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, nil
}

// Write saves a complete output in one call.
func (fs *FileSystem) Write(exportID, filename string, data []byte) error {
	f, err := fs.Create(exportID, filename)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("writing output file: %w", err)
	}
	return f.Close()
}

// Read returns a stored output.
func (fs *FileSystem) Read(exportID, filename string) ([]byte, error) {
	data, err := os.ReadFile(fs.OutputPath(exportID, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("output not found: %s/%s", exportID, filename)
		}
		return nil, fmt.Errorf("reading output file: %w", err)
	}
	return data, nil
}

// Exists checks if an output file exists on disk.
func (fs *FileSystem) Exists(exportID, filename string) bool {
	_, err := os.Stat(fs.OutputPath(exportID, filename))
	return err == nil
}

// Size returns the size in bytes of a stored output.
func (fs *FileSystem) Size(exportID, filename string) (int64, error) {
	info, err := os.Stat(fs.OutputPath(exportID, filename))
	if err != nil {
		return 0, fmt.Errorf("stat output file: %w", err)
	}
	return info.Size(), nil
}

// DeleteExport removes everything stored for an export.
func (fs *FileSystem) DeleteExport(exportID string) error {
	if err := validName(exportID); err != nil {
		return err
	}
	return os.RemoveAll(fs.ExportDir(exportID))
}

// validName rejects path components that could escape the base directory.
func validName(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsAny(s, `/\`) {
		return fmt.Errorf("invalid path component %q", s)
	}
	return nil
}
