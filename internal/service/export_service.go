package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/storage"
	"github.com/fleveque/ficha-service/internal/templates"
	"github.com/fleveque/ficha-service/internal/video"
)

// VideoFilename is the name of every slideshow export.
const VideoFilename = "slideshow_9x16.mp4"

// ErrExportNotReady is returned by Open for exports that have no output.
var ErrExportNotReady = errors.New("export has no output")

// ExportError is a failed export. The failure is kept in the history under
// ID, so callers can point users at it.
type ExportError struct {
	ID   string
	Kind model.ExportKind
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("%s export: %v", e.Kind, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ExportRequest is one batch to export.
type ExportRequest struct {
	Template templates.Kind
	Items    []ItemSnapshot
	Data     model.VehicleData
	Settings model.ExportSettings
	Unused   int
}

// ExportService runs exports and keeps their history: every run gets a row
// in the exports table and, on success, a file in the output directory.
type ExportService struct {
	exporter *Exporter
	repo     storage.ExportRepository
	fs       *storage.FileSystem
	encoder  video.Encoder // nil disables video export
	logger   *zap.Logger
}

// NewExportService wires the exporter to persistence.
// encoder can be nil; video exports then fail with ErrEncoderUnavailable.
func NewExportService(
	exporter *Exporter,
	repo storage.ExportRepository,
	fs *storage.FileSystem,
	encoder video.Encoder,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		exporter: exporter,
		repo:     repo,
		fs:       fs,
		encoder:  encoder,
		logger:   logger,
	}
}

// Archive renders every item into a zip stored under a new export id.
func (s *ExportService) Archive(ctx context.Context, req ExportRequest) (*model.Export, error) {
	d, ok := templates.Lookup(req.Template)
	if !ok {
		return nil, fmt.Errorf("unknown template %q", req.Template)
	}
	format := ResolveFormat(req.Template, "", req.Settings)

	return s.run(ctx, req, model.KindArchive, string(format), d.ArchiveName, func(exportID string) error {
		f, err := s.fs.Create(exportID, d.ArchiveName)
		if err != nil {
			return err
		}
		pkg := NewZipPackager(f)
		if _, err := s.exporter.ExportArchive(ctx, req.Items, req.Data, req.Settings, pkg); err != nil {
			f.Close()
			return err
		}
		if err := pkg.Close(); err != nil {
			f.Close()
			return fmt.Errorf("finalizing archive: %w", err)
		}
		return f.Close()
	})
}

// Video encodes the items into a slideshow. onProgress receives the
// encoder's progress lines.
func (s *ExportService) Video(ctx context.Context, req ExportRequest, onProgress func(string)) (*model.Export, error) {
	return s.run(ctx, req, model.KindVideo, "mp4", VideoFilename, func(exportID string) error {
		if s.encoder == nil {
			return video.ErrEncoderUnavailable
		}
		out, err := s.exporter.ExportVideo(ctx, req.Items, req.Data, req.Settings, s.encoder, onProgress)
		if err != nil {
			return err
		}
		return s.fs.Write(exportID, VideoFilename, out)
	})
}

// run records the export, executes produce and stores the outcome.
func (s *ExportService) run(ctx context.Context, req ExportRequest, kind model.ExportKind, format, filename string, produce func(exportID string) error) (*model.Export, error) {
	exp := &model.Export{
		ID:          uuid.NewString(),
		Template:    string(req.Template),
		Kind:        kind,
		Format:      format,
		ItemCount:   len(req.Items),
		UnusedCount: req.Unused,
		Status:      model.StatusPending,
	}
	if err := s.repo.Create(ctx, exp); err != nil {
		return nil, fmt.Errorf("recording export: %w", err)
	}

	start := time.Now()
	err := produce(exp.ID)
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		if cleanupErr := s.fs.DeleteExport(exp.ID); cleanupErr != nil {
			s.logger.Warn("removing partial export", zap.String("export", exp.ID), zap.Error(cleanupErr))
		}
		// The request context may be the reason we failed; the history
		// update must still go through.
		if failErr := s.repo.Fail(context.WithoutCancel(ctx), exp.ID, err.Error(), elapsed); failErr != nil {
			s.logger.Error("recording export failure", zap.String("export", exp.ID), zap.Error(failErr))
		}
		s.logger.Warn("export failed",
			zap.String("export", exp.ID),
			zap.String("kind", string(kind)),
			zap.String("template", exp.Template),
			zap.Error(err),
		)
		return nil, &ExportError{ID: exp.ID, Kind: kind, Err: err}
	}

	size, err := s.fs.Size(exp.ID, filename)
	if err != nil {
		return nil, err
	}
	path := s.fs.OutputPath(exp.ID, filename)
	if err := s.repo.Complete(ctx, exp.ID, path, filename, size, elapsed); err != nil {
		return nil, fmt.Errorf("recording export: %w", err)
	}

	s.logger.Info("export completed",
		zap.String("export", exp.ID),
		zap.String("kind", string(kind)),
		zap.String("template", exp.Template),
		zap.Int("items", exp.ItemCount),
		zap.Int64("bytes", size),
		zap.Int64("duration_ms", elapsed),
	)
	return s.repo.Get(ctx, exp.ID)
}

// Open returns a finished export and its stored bytes.
func (s *ExportService) Open(ctx context.Context, id string) (*model.Export, []byte, error) {
	exp, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if exp.Status != model.StatusCompleted || exp.Filename == nil {
		return exp, nil, fmt.Errorf("export %s is %s: %w", id, exp.Status, ErrExportNotReady)
	}
	data, err := s.fs.Read(exp.ID, *exp.Filename)
	if err != nil {
		return exp, nil, err
	}
	return exp, data, nil
}

// Stats summarizes the export history.
type Stats struct {
	Total     int64          `json:"total_exports"`
	Completed int64          `json:"completed"`
	Failed    int64          `json:"failed"`
	Pending   int64          `json:"pending"`
	Recent    []model.Export `json:"recent"`
}

// Stats counts exports by status and lists the latest ones.
func (s *ExportService) Stats(ctx context.Context, recent int) (*Stats, error) {
	var st Stats
	var errs []error
	var err error

	st.Total, err = s.repo.Count(ctx)
	errs = append(errs, err)
	st.Completed, err = s.repo.CountByStatus(ctx, model.StatusCompleted)
	errs = append(errs, err)
	st.Failed, err = s.repo.CountByStatus(ctx, model.StatusFailed)
	errs = append(errs, err)
	st.Pending, err = s.repo.CountByStatus(ctx, model.StatusPending)
	errs = append(errs, err)
	st.Recent, err = s.repo.ListRecent(ctx, recent)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("collecting stats: %w", err)
	}
	return &st, nil
}
