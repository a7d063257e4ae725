package text

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Align is the horizontal anchor of a text line.
type Align int

const (
	AlignCenter Align = iota
	AlignLeft
	AlignRight
)

// Baseline is the vertical anchor of a text line.
type Baseline int

const (
	BaselineAlphabetic Baseline = iota
	BaselineMiddle
	BaselineTop
)

// Anchor converts an alignment pair into gg's anchor fractions.
func Anchor(a Align, b Baseline) (ax, ay float64) {
	switch a {
	case AlignLeft:
		ax = 0
	case AlignRight:
		ax = 1
	default:
		ax = 0.5
	}
	switch b {
	case BaselineMiddle:
		ay = 0.5
	case BaselineTop:
		ay = 1
	default:
		ay = 0
	}
	return ax, ay
}

// StrokeFillOptions configures StrokeFill. Use DefaultStrokeFill and
// override what you need.
type StrokeFillOptions struct {
	Fill          color.Color
	Stroke        color.Color
	StrokeWidth   float64
	Align         Align
	Baseline      Baseline
	ShadowColor   color.Color
	ShadowBlur    float64
	ShadowOffsetX float64
	ShadowOffsetY float64
}

// DefaultStrokeFill returns white text with a dark outline and a soft drop
// shadow, legible over any photo.
func DefaultStrokeFill() StrokeFillOptions {
	return StrokeFillOptions{
		Fill:          color.White,
		Stroke:        color.NRGBA{0, 0, 0, 217},
		StrokeWidth:   8,
		Align:         AlignCenter,
		Baseline:      BaselineAlphabetic,
		ShadowColor:   color.NRGBA{0, 0, 0, 89},
		ShadowBlur:    16,
		ShadowOffsetY: 6,
	}
}

// StrokeFill draws s at (x, y) three times: a blurred drop shadow of the
// outline, the outline itself, then the fill on top.
func StrokeFill(dc *gg.Context, face font.Face, s string, x, y float64, opts StrokeFillOptions) {
	ax, ay := Anchor(opts.Align, opts.Baseline)

	outline := outlineMask(dc.Width(), dc.Height(), face, s, x, y, ax, ay, opts.StrokeWidth)

	if visible(opts.ShadowColor) {
		shadow := tint(outline, opts.ShadowColor)
		var layer image.Image = shadow
		if opts.ShadowBlur > 0 {
			// Canvas shadow blur is twice the gaussian sigma.
			layer = imaging.Blur(shadow, opts.ShadowBlur/2)
		}
		dc.DrawImage(layer, int(math.Round(opts.ShadowOffsetX)), int(math.Round(opts.ShadowOffsetY)))
	}

	if visible(opts.Stroke) && opts.StrokeWidth > 0 {
		dc.DrawImage(tint(outline, opts.Stroke), 0, 0)
	}

	dc.Push()
	dc.SetFontFace(face)
	dc.SetColor(opts.Fill)
	dc.DrawStringAnchored(s, x, y, ax, ay)
	dc.Pop()
}

// outlineMask renders the text dilated by half the stroke width: copies of
// the glyphs on two rings around the anchor, plus the glyphs themselves.
func outlineMask(w, h int, face font.Face, s string, x, y, ax, ay, strokeWidth float64) image.Image {
	layer := gg.NewContext(w, h)
	layer.SetFontFace(face)
	layer.SetColor(color.White)

	r := strokeWidth / 2
	if r > 0 {
		steps := max(16, int(math.Ceil(2*math.Pi*r)))
		for _, radius := range []float64{r, r / 2} {
			for i := 0; i < steps; i++ {
				a := 2 * math.Pi * float64(i) / float64(steps)
				layer.DrawStringAnchored(s, x+radius*math.Cos(a), y+radius*math.Sin(a), ax, ay)
			}
		}
	}
	layer.DrawStringAnchored(s, x, y, ax, ay)
	return layer.Image()
}

// tint paints c through the alpha of mask. Painting the outline as one
// layer keeps overlapping copies from stacking up a translucent color.
func tint(mask image.Image, c color.Color) *image.RGBA {
	b := mask.Bounds()
	dst := image.NewRGBA(b)
	draw.DrawMask(dst, b, image.NewUniform(c), image.Point{}, mask, b.Min, draw.Src)
	return dst
}

func visible(c color.Color) bool {
	if c == nil {
		return false
	}
	_, _, _, a := c.RGBA()
	return a > 0
}
