package service

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/templates"
)

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		name     string
		kind     templates.Kind
		override model.Format
		setting  model.Format
		want     model.Format
	}{
		{"portada default", templates.Portada, "", "", model.FormatJPG},
		{"historia default", templates.Historia, "", "", model.FormatJPG},
		{"video default", templates.VideoSlide, "", "", model.FormatPNG},
		{"setting wins over default", templates.VideoSlide, "", model.FormatJPG, model.FormatJPG},
		{"override wins over setting", templates.Portada, model.FormatPNG, model.FormatJPG, model.FormatPNG},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFormat(tt.kind, tt.override, model.ExportSettings{Format: tt.setting})
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderer_Render(t *testing.T) {
	r := newTestRenderer(t)
	snaps := buildSnapshots(t, templates.Portada, "auto.png")

	res, err := r.Render(snaps[0], model.VehicleData{Model: "Gol Trend"}, RenderOptions{Settings: model.DefaultExportSettings()})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if res.Format != model.FormatJPG || res.Mime != "image/jpeg" {
		t.Errorf("expected jpg output, got %s %s", res.Format, res.Mime)
	}
	if res.Width != 1080 || res.Height != 1080 {
		t.Errorf("expected 1080x1080, got %dx%d", res.Width, res.Height)
	}
	if len(res.Data) == 0 {
		t.Error("expected encoded bytes")
	}

	png1, err := r.Render(snaps[0], model.VehicleData{}, RenderOptions{Format: model.FormatPNG})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(png1.Data))
	if err != nil {
		t.Fatalf("override should produce a png: %v", err)
	}
	if cfg.Width != 1080 || cfg.Height != 1080 {
		t.Errorf("unexpected png size %dx%d", cfg.Width, cfg.Height)
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r := newTestRenderer(t)
	if _, err := r.Render(ItemSnapshot{Template: "banner"}, model.VehicleData{}, RenderOptions{}); err == nil {
		t.Error("expected error for unknown template")
	}
}
