// Package model defines the core data types shared by the renderer, the
// export pipeline and the HTTP layer.
// Struct tags (the `json:"..."` and `db:"..."` annotations) tell
// serialization libraries how to map fields.
package model

import (
	"encoding/base64"
	"math"
	"strings"
)

// VehicleData holds the free-form fields printed on every template.
// Km is a pointer so "not entered" and "zero" can both render as blank.
type VehicleData struct {
	Model   string   `json:"model"`
	Year    string   `json:"year"`
	Km      *float64 `json:"km,omitempty"`
	Version string   `json:"version"`
	Gearbox string   `json:"gearbox"`
	Engine  string   `json:"engine"`
}

// Format is the encoded image format of a rendered item.
// Go doesn't have enums; we use typed string constants.
type Format string

const (
	FormatPNG Format = "png"
	FormatJPG Format = "jpg"
)

// ParseFormat accepts "png", "jpg" and "jpeg" in any case.
func ParseFormat(s string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, true
	case "jpg", "jpeg":
		return FormatJPG, true
	default:
		return "", false
	}
}

// Mime returns the MIME type for the format.
func (f Format) Mime() string {
	if f == FormatJPG {
		return "image/jpeg"
	}
	return "image/png"
}

// Ext is the file extension used in archive entry names.
func (f Format) Ext() string {
	return string(f)
}

// Defaults applied when a setting is missing or out of range.
const (
	DefaultQuality       = 0.92
	DefaultVideoDuration = 2.5
	DefaultVideoFPS      = 30
)

// ExportSettings are the user's encoding preferences. An empty Format means
// "use the template's default".
type ExportSettings struct {
	Format        Format  `json:"format,omitempty"`
	Quality       float64 `json:"quality"`
	VideoDuration float64 `json:"video_duration"`
	VideoFPS      float64 `json:"video_fps"`
}

// DefaultExportSettings returns the settings a fresh session starts with.
func DefaultExportSettings() ExportSettings {
	return ExportSettings{
		Quality:       DefaultQuality,
		VideoDuration: DefaultVideoDuration,
		VideoFPS:      DefaultVideoFPS,
	}
}

// JPEGQuality maps the (0,1] quality setting onto the 1..100 scale the JPEG
// encoder expects. Anything outside (0,1] uses DefaultQuality.
func (s ExportSettings) JPEGQuality() int {
	q := s.Quality
	if math.IsNaN(q) || q <= 0 || q > 1 {
		q = DefaultQuality
	}
	return max(1, min(100, int(math.Round(q*100))))
}

// RenderResult is one freshly encoded item. It is never mutated; each
// render produces a new one that replaces the previous preview.
type RenderResult struct {
	Data   []byte `json:"-"`
	Mime   string `json:"mime"`
	Format Format `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// DataURL encodes the result as a data: URL for inline previews.
func (r *RenderResult) DataURL() string {
	return "data:" + r.Mime + ";base64," + base64.StdEncoding.EncodeToString(r.Data)
}
