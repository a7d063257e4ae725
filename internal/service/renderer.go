// Package service contains the core business logic: rendering items through
// the templates, grouping uploads into items and running batch exports.
package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/templates"
)

// RenderOptions controls encoding. Format overrides the settings' format
// when non-empty.
type RenderOptions struct {
	Format   model.Format
	Settings model.ExportSettings
}

// Renderer turns item snapshots into encoded images. It holds no per-item
// state, so one Renderer serves every session.
type Renderer struct {
	env    templates.Env
	logger *zap.Logger
}

// NewRenderer creates a Renderer drawing with env.
func NewRenderer(env templates.Env, logger *zap.Logger) *Renderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renderer{env: env, logger: logger}
}

// ResolveFormat picks the output format: explicit override, then the
// user's setting, then the template's default.
func ResolveFormat(k templates.Kind, override model.Format, settings model.ExportSettings) model.Format {
	if override != "" {
		return override
	}
	if settings.Format != "" {
		return settings.Format
	}
	if d, ok := templates.Lookup(k); ok {
		return d.DefaultFormat
	}
	return model.FormatPNG
}

// Render redraws snap from scratch and encodes it.
func (r *Renderer) Render(snap ItemSnapshot, data model.VehicleData, opts RenderOptions) (*model.RenderResult, error) {
	d, ok := templates.Lookup(snap.Template)
	if !ok {
		return nil, fmt.Errorf("unknown template %q", snap.Template)
	}

	img, err := templates.Render(snap.Template, r.env, templates.Input{
		Photos: snap.Photos,
		Data:   data,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", snap.Template, err)
	}

	format := ResolveFormat(snap.Template, opts.Format, opts.Settings)
	encoded, err := templates.Encode(img, format, opts.Settings.JPEGQuality())
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", snap.Name, err)
	}

	r.logger.Debug("rendered item",
		zap.String("item", snap.ID),
		zap.String("template", string(snap.Template)),
		zap.String("format", string(format)),
		zap.Int("bytes", len(encoded)),
	)

	return &model.RenderResult{
		Data:   encoded,
		Mime:   format.Mime(),
		Format: format,
		Width:  d.Width,
		Height: d.Height,
	}, nil
}
