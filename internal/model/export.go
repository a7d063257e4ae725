package model

import "time"

// ExportKind distinguishes still-image archives from slideshow videos.
type ExportKind string

const (
	KindArchive ExportKind = "archive"
	KindVideo   ExportKind = "video"
)

// ExportStatus represents the processing state of an export.
type ExportStatus string

const (
	StatusPending   ExportStatus = "pending"
	StatusCompleted ExportStatus = "completed"
	StatusFailed    ExportStatus = "failed"
)

// Export is one row of the export history. Each field has two tags:
//   - `db:"column_name"`: used by sqlx to scan database rows
//   - `json:"field_name"`: used for JSON serialization (API responses)
type Export struct {
	ID           string       `db:"id" json:"id"`
	Template     string       `db:"template" json:"template"`
	Kind         ExportKind   `db:"kind" json:"kind"`
	Format       string       `db:"format" json:"format"`
	ItemCount    int          `db:"item_count" json:"item_count"`
	UnusedCount  int          `db:"unused_count" json:"unused_count"`
	Status       ExportStatus `db:"status" json:"status"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	OutputPath   *string      `db:"output_path" json:"-"`
	Filename     *string      `db:"filename" json:"filename,omitempty"`
	SizeBytes    *int64       `db:"size_bytes" json:"size_bytes,omitempty"`
	DurationMs   *int64       `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// Done reports whether the export reached a terminal state.
func (e *Export) Done() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}
