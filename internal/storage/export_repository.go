package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fleveque/ficha-service/internal/model"
)

// ErrNotFound is returned when an export doesn't exist in the database.
// Callers check with errors.Is(err, ErrNotFound).
var ErrNotFound = errors.New("export not found")

// ExportRepository records every archive and video export.
// Go interfaces are implicit: any struct that has these methods satisfies it.
type ExportRepository interface {
	Create(ctx context.Context, exp *model.Export) error
	Complete(ctx context.Context, id, outputPath, filename string, sizeBytes, durationMs int64) error
	Fail(ctx context.Context, id, errMsg string, durationMs int64) error
	Get(ctx context.Context, id string) (*model.Export, error)
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status model.ExportStatus) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]model.Export, error)
}

// sqliteExportRepository is the SQLite implementation of ExportRepository.
// Only the interface is exported.
type sqliteExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository creates a new SQLite-backed ExportRepository.
func NewExportRepository(db *sqlx.DB) ExportRepository {
	return &sqliteExportRepository{db: db}
}

func (r *sqliteExportRepository) Create(ctx context.Context, exp *model.Export) error {
	if exp.Status == "" {
		exp.Status = model.StatusPending
	}
	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO exports (id, template, kind, format, item_count, unused_count, status)
		VALUES (:id, :template, :kind, :format, :item_count, :unused_count, :status)
	`, exp)
	if err != nil {
		return fmt.Errorf("creating export %s: %w", exp.ID, err)
	}
	return nil
}

func (r *sqliteExportRepository) Complete(ctx context.Context, id, outputPath, filename string, sizeBytes, durationMs int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE exports SET
			status = ?,
			output_path = ?,
			filename = ?,
			size_bytes = ?,
			duration_ms = ?,
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, model.StatusCompleted, outputPath, filename, sizeBytes, durationMs, id)
	if err != nil {
		return fmt.Errorf("completing export %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (r *sqliteExportRepository) Fail(ctx context.Context, id, errMsg string, durationMs int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE exports SET
			status = ?,
			error_message = ?,
			duration_ms = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, model.StatusFailed, errMsg, durationMs, id)
	if err != nil {
		return fmt.Errorf("failing export %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

func (r *sqliteExportRepository) Get(ctx context.Context, id string) (*model.Export, error) {
	var exp model.Export
	// sqlx.GetContext scans the result row directly into the struct using `db:` tags.
	err := r.db.GetContext(ctx, &exp, "SELECT * FROM exports WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting export %s: %w", id, err)
	}
	return &exp, nil
}

func (r *sqliteExportRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM exports")
	return count, err
}

func (r *sqliteExportRepository) CountByStatus(ctx context.Context, status model.ExportStatus) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM exports WHERE status = ?", status)
	return count, err
}

func (r *sqliteExportRepository) ListRecent(ctx context.Context, limit int) ([]model.Export, error) {
	exports := []model.Export{}
	err := r.db.SelectContext(ctx, &exports,
		"SELECT * FROM exports ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent exports: %w", err)
	}
	return exports, nil
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update of export %s: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
