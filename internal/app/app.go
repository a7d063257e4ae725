// Package app builds the object graph shared by the server and the CLI:
// fonts, brand assets, decoder, renderer, export history and the video
// encoder, all configured from a config.Config.
package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/assets"
	"github.com/fleveque/ficha-service/internal/config"
	"github.com/fleveque/ficha-service/internal/decode"
	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/service"
	"github.com/fleveque/ficha-service/internal/storage"
	"github.com/fleveque/ficha-service/internal/templates"
	"github.com/fleveque/ficha-service/internal/text"
	"github.com/fleveque/ficha-service/internal/video"
)

// App holds the long-lived services. Close releases the database.
type App struct {
	Decoder  *decode.Decoder
	Renderer *service.Renderer
	Exporter *service.Exporter
	Exports  *service.ExportService
	Encoder  *video.FFmpegEncoder
	Defaults model.ExportSettings

	db *sqlx.DB
}

// Build wires every service from cfg.
func Build(cfg *config.Config, logger *zap.Logger) (*App, error) {
	defaults, err := ExportDefaults(cfg.Export)
	if err != nil {
		return nil, err
	}

	fonts, err := text.NewFontManager(text.FontPaths{
		Regular: cfg.Fonts.Regular,
		Medium:  cfg.Fonts.Medium,
		Bold:    cfg.Fonts.Bold,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("loading fonts: %w", err)
	}

	dec := decode.New(cfg.Upload.MaxSide)
	dec.MaxPixels = cfg.Upload.MaxPixels
	brandAssets := assets.Load(assets.Paths{
		Logo:    cfg.Brand.LogoPath,
		Contact: cfg.Brand.ContactIconPath,
	}, dec, logger)

	brand := templates.DefaultBrand()
	if cfg.Brand.Address != "" {
		brand.Address = cfg.Brand.Address
	}
	if cfg.Brand.Phone != "" {
		brand.Phone = cfg.Brand.Phone
	}

	renderer := service.NewRenderer(templates.Env{
		Fonts:  fonts,
		Assets: brandAssets,
		Brand:  brand,
	}, logger)
	exporter := service.NewExporter(renderer, logger)

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	fs, err := storage.NewFileSystem(cfg.Storage.OutputDir)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	encoder := video.NewFFmpegEncoder(cfg.Video.FFmpegPath, logger)
	if err := encoder.Available(); err != nil {
		logger.Warn("video export disabled until ffmpeg is installed",
			zap.String("ffmpeg", cfg.Video.FFmpegPath),
			zap.Error(err),
		)
	}

	return &App{
		Decoder:  dec,
		Renderer: renderer,
		Exporter: exporter,
		Exports:  service.NewExportService(exporter, storage.NewExportRepository(db), fs, encoder, logger),
		Encoder:  encoder,
		Defaults: defaults,
		db:       db,
	}, nil
}

// Close releases the database handle.
func (a *App) Close() error {
	return a.db.Close()
}

// ExportDefaults validates the configured export settings.
func ExportDefaults(c config.ExportConfig) (model.ExportSettings, error) {
	s := model.DefaultExportSettings()
	if c.Format != "" {
		f, ok := model.ParseFormat(c.Format)
		if !ok {
			return s, fmt.Errorf("export.format %q: must be png or jpg", c.Format)
		}
		s.Format = f
	}
	if c.Quality != 0 {
		s.Quality = c.Quality
	}
	if c.VideoDuration != 0 {
		s.VideoDuration = video.SafeDuration(c.VideoDuration)
	}
	if c.VideoFPS != 0 {
		s.VideoFPS = float64(video.SafeFPS(c.VideoFPS))
	}
	return s, nil
}
