package service

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"go.uber.org/zap"

	"github.com/fleveque/ficha-service/internal/decode"
	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/templates"
	"github.com/fleveque/ficha-service/internal/video"
)

// Decoder decodes uploaded photo bytes. *decode.Decoder implements it.
type Decoder interface {
	Decode(data []byte) (image.Image, error)
}

// Packager collects named buffers into one archive.
type Packager interface {
	Add(name string, data []byte) error
	Close() error
}

// ZipPackager writes entries into a zip stream.
type ZipPackager struct {
	zw    *zip.Writer
	names []string
}

// NewZipPackager starts a zip archive on w.
func NewZipPackager(w io.Writer) *ZipPackager {
	return &ZipPackager{zw: zip.NewWriter(w)}
}

// Add appends one entry. Rendered images are already compressed, so
// entries are stored rather than deflated.
func (p *ZipPackager) Add(name string, data []byte) error {
	fw, err := p.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("adding %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	p.names = append(p.names, name)
	return nil
}

// Names lists the entries added so far, in order.
func (p *ZipPackager) Names() []string {
	return p.names
}

// Close finishes the archive's central directory.
func (p *ZipPackager) Close() error {
	return p.zw.Close()
}

// Exporter drives the renderer over whole batches.
type Exporter struct {
	renderer *Renderer
	logger   *zap.Logger
}

// NewExporter creates an Exporter.
func NewExporter(renderer *Renderer, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{renderer: renderer, logger: logger}
}

// Renderer returns the renderer used for previews and exports.
func (e *Exporter) Renderer() *Renderer {
	return e.renderer
}

// BuildItems decodes every grouped photo and builds one item per group.
// The first decode failure aborts the batch.
func BuildItems(ctx context.Context, g Grouping, dec Decoder) ([]*Item, error) {
	items := make([]*Item, 0, len(g.Groups))
	for _, group := range g.Groups {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		slots := make([]Slot, len(group))
		for i, in := range group {
			img, err := dec.Decode(in.Data)
			if err != nil {
				if !errors.Is(err, decode.ErrDecode) {
					err = fmt.Errorf("%w: %v", decode.ErrDecode, err)
				}
				return nil, fmt.Errorf("decoding %s: %w", in.Filename, err)
			}
			slots[i] = Slot{Image: img, Source: in.Filename}
		}

		item, err := NewItem(g.Template, SafeName(group[0].Filename), slots)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// EntryName is the archive entry for an item: <name>_<tag>.<ext>.
func EntryName(snap ItemSnapshot, format model.Format) string {
	return fmt.Sprintf("%s_%s.%s", snap.Name, snap.Template, format.Ext())
}

// uniqueEntryName is EntryName with _2, _3, ... appended to the item name
// when an earlier entry already took the name. Different uploads can
// sanitize to the same item name.
func uniqueEntryName(seen map[string]bool, snap ItemSnapshot, format model.Format) string {
	name := EntryName(snap, format)
	for n := 2; seen[name]; n++ {
		name = fmt.Sprintf("%s_%d_%s.%s", snap.Name, n, snap.Template, format.Ext())
	}
	seen[name] = true
	return name
}

// ExportArchive renders items one at a time, in order, into pkg. Only one
// decoded surface and one encoded buffer are alive at any point. The
// packager is not closed; the caller owns it.
func (e *Exporter) ExportArchive(ctx context.Context, items []ItemSnapshot, data model.VehicleData, settings model.ExportSettings, pkg Packager) (int, error) {
	if len(items) == 0 {
		return 0, errors.New("no items to export")
	}

	seen := make(map[string]bool, len(items))
	for i, snap := range items {
		if err := ctx.Err(); err != nil {
			return i, err
		}

		res, err := e.renderer.Render(snap, data, RenderOptions{Settings: settings})
		if err != nil {
			return i, fmt.Errorf("item %d (%s): %w", i, snap.Name, err)
		}
		if err := pkg.Add(uniqueEntryName(seen, snap, res.Format), res.Data); err != nil {
			return i, err
		}
	}

	e.logger.Info("archive exported",
		zap.String("template", string(items[0].Template)),
		zap.Int("items", len(items)),
	)
	return len(items), nil
}

// SlideName is the file name of the i-th slide handed to the encoder.
func SlideName(i int) string {
	return fmt.Sprintf("slide_%03d.png", i)
}

// ExportVideo renders every VideoSlide item as PNG, whatever the format
// setting, and encodes them once into a slideshow. onLog, when set,
// receives the encoder's progress lines.
func (e *Exporter) ExportVideo(ctx context.Context, items []ItemSnapshot, data model.VehicleData, settings model.ExportSettings, enc video.Encoder, onLog func(string)) ([]byte, error) {
	slides := make([]video.Slide, 0, len(items))
	for i, snap := range items {
		if snap.Template != templates.VideoSlide {
			return nil, fmt.Errorf("item %d is a %s, only %s items can be encoded", i, snap.Template, templates.VideoSlide)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := e.renderer.Render(snap, data, RenderOptions{Format: model.FormatPNG, Settings: settings})
		if err != nil {
			return nil, fmt.Errorf("slide %d (%s): %w", i, snap.Name, err)
		}
		slides = append(slides, video.Slide{Filename: SlideName(i), Data: res.Data})
	}
	if len(slides) == 0 {
		return nil, errors.New("no slides to export")
	}

	out, err := enc.Encode(ctx, video.Request{
		Slides:      slides,
		DurationSec: settings.VideoDuration,
		FPS:         settings.VideoFPS,
		OnLog: func(line string) {
			e.logger.Debug("encoder", zap.String("line", line))
		},
		OnProgress: onLog,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding slideshow: %w", err)
	}

	e.logger.Info("video exported",
		zap.Int("slides", len(slides)),
		zap.Int("bytes", len(out)),
	)
	return out, nil
}
