// Package templates draws the three fixed layouts: the square Portada cover
// card, the vertical three-photo Historia and the vertical VideoSlide.
//
// Every Draw function is pure: the same Env and Input always produce the
// same pixels. Nothing here reads the clock or keeps state between calls.
package templates

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"

	"github.com/fleveque/ficha-service/internal/assets"
	"github.com/fleveque/ficha-service/internal/layout"
	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/text"
)

// Kind tags a template. The set is closed.
type Kind string

const (
	Portada    Kind = "portada"
	Historia   Kind = "historia"
	VideoSlide Kind = "video"
)

// Descriptor holds the compile-time facts about a template.
type Descriptor struct {
	Kind          Kind
	Width         int
	Height        int
	Arity         int
	DefaultFormat model.Format
	ArchiveName   string
}

var descriptors = map[Kind]Descriptor{
	Portada:    {Kind: Portada, Width: 1080, Height: 1080, Arity: 1, DefaultFormat: model.FormatJPG, ArchiveName: "portadas.zip"},
	Historia:   {Kind: Historia, Width: 1080, Height: 1920, Arity: 3, DefaultFormat: model.FormatJPG, ArchiveName: "historias.zip"},
	VideoSlide: {Kind: VideoSlide, Width: 1080, Height: 1920, Arity: 1, DefaultFormat: model.FormatPNG, ArchiveName: "video_frames.zip"},
}

// All lists the templates in display order.
var All = []Kind{Portada, Historia, VideoSlide}

// Lookup returns the descriptor for k.
func Lookup(k Kind) (Descriptor, bool) {
	d, ok := descriptors[k]
	return d, ok
}

// Parse validates a template tag coming from user input.
func Parse(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := descriptors[k]; !ok {
		return "", fmt.Errorf("unknown template %q", s)
	}
	return k, nil
}

// Frame indexes a photo slot. Single-photo templates only use FrameMain.
type Frame int

const (
	FrameMain Frame = iota
	FrameBottomLeft
	FrameBottomRight
)

var frameNames = [...]string{"main", "bottomLeft", "bottomRight"}

func (f Frame) String() string {
	if f < 0 || int(f) >= len(frameNames) {
		return fmt.Sprintf("frame(%d)", int(f))
	}
	return frameNames[f]
}

// ParseFrame accepts the slot names used by the API.
func ParseFrame(s string) (Frame, error) {
	for i, name := range frameNames {
		if name == s {
			return Frame(i), nil
		}
	}
	return 0, fmt.Errorf("unknown frame %q", s)
}

// Photo is a decoded image in a slot plus the user's pan/zoom for it.
// A nil Image leaves the slot showing the background.
type Photo struct {
	Image     image.Image
	Transform layout.Transform
}

// Brand is the dealership contact line printed in footers.
type Brand struct {
	Address string
	Phone   string
}

// DefaultBrand is used when nothing is configured.
func DefaultBrand() Brand {
	return Brand{
		Address: "Colectora Macaya esq. Mejico",
		Phone:   "2494 630646",
	}
}

// Env is everything a render needs that does not change per item.
type Env struct {
	Fonts  *text.FontManager
	Assets assets.Assets
	Brand  Brand
}

// Input is the per-item part of a render.
type Input struct {
	Photos []Photo
	Data   model.VehicleData
}

// photo returns slot f, or an empty photo when the slot is missing.
func (in Input) photo(f Frame) Photo {
	if int(f) < len(in.Photos) {
		p := in.Photos[f]
		if p.Transform.Zoom == 0 {
			p.Transform = layout.Identity()
		}
		return p
	}
	return Photo{Transform: layout.Identity()}
}

// Draw paints template k onto dc, which must be the template's size.
func Draw(dc *gg.Context, k Kind, env Env, in Input) error {
	switch k {
	case Portada:
		DrawPortada(dc, env, in)
	case Historia:
		DrawHistoria(dc, env, in)
	case VideoSlide:
		DrawVideoSlide(dc, env, in)
	default:
		return fmt.Errorf("unknown template %q", k)
	}
	return nil
}

// Render allocates a surface of the template's size and draws into it.
func Render(k Kind, env Env, in Input) (image.Image, error) {
	d, ok := Lookup(k)
	if !ok {
		return nil, fmt.Errorf("unknown template %q", k)
	}
	dc := gg.NewContext(d.Width, d.Height)
	if err := Draw(dc, k, env, in); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}
