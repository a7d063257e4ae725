// Package canvas provides the drawing helpers the templates share: rounded
// clip regions, gradients, photo placement, blur and luminance sampling.
// It sits on top of fogleman/gg and disintegration/imaging.
package canvas

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/fleveque/ficha-service/internal/layout"
)

// RGBA builds a color from CSS-style rgba() components (0-255, alpha 0-1).
func RGBA(r, g, b uint8, a float64) color.NRGBA {
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(layout.Clamp(a, 0, 1) * 255))}
}

// Hex parses "#rrggbb". Malformed input yields opaque white.
func Hex(s string) color.NRGBA {
	var r, g, b uint8
	if len(s) == 7 && s[0] == '#' {
		if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err == nil {
			return color.NRGBA{R: r, G: g, B: b, A: 255}
		}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}

// Alpha returns c with its alpha multiplied by a.
func Alpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(float64(c.A) * layout.Clamp(a, 0, 1)))
	return c
}

// ClampRadius keeps a corner radius from exceeding half the shortest side,
// which would make the rounded path cross itself.
func ClampRadius(r, w, h float64) float64 {
	return math.Max(0, math.Min(r, math.Min(w/2, h/2)))
}

// RoundRect adds a rounded rectangle to the current path and returns the
// radius actually used. Callers Fill, Stroke or Clip afterwards.
func RoundRect(dc *gg.Context, x, y, w, h, r float64) float64 {
	radius := ClampRadius(r, w, h)
	dc.NewSubPath()
	if radius == 0 {
		dc.DrawRectangle(x, y, w, h)
	} else {
		dc.DrawRoundedRectangle(x, y, w, h, radius)
	}
	dc.ClosePath()
	return radius
}

// FillRect paints a solid rectangle.
func FillRect(dc *gg.Context, x, y, w, h float64, c color.Color) {
	dc.SetColor(c)
	dc.DrawRectangle(x, y, w, h)
	dc.Fill()
}

// HLine strokes a horizontal rule.
func HLine(dc *gg.Context, x1, x2, y, width float64, c color.Color) {
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.DrawLine(x1, y, x2, y)
	dc.Stroke()
}

// VerticalGradient fills rect with a top-to-bottom two stop gradient.
func VerticalGradient(dc *gg.Context, r layout.Rect, top, bottom color.Color) {
	g := gg.NewLinearGradient(r.X, r.Y, r.X, r.Y+r.H)
	g.AddColorStop(0, top)
	g.AddColorStop(1, bottom)
	dc.SetFillStyle(g)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Fill()
}

// ColorStop is one stop of a gradient.
type ColorStop struct {
	Offset float64
	Color  color.Color
}

// Vignette describes a two-circle radial gradient.
type Vignette struct {
	X0, Y0, R0 float64
	X1, Y1, R1 float64
	Stops      []ColorStop
}

// RadialVignette fills rect with the vignette gradient.
func RadialVignette(dc *gg.Context, r layout.Rect, v Vignette) {
	g := gg.NewRadialGradient(v.X0, v.Y0, v.R0, v.X1, v.Y1, v.R1)
	for _, s := range v.Stops {
		g.AddColorStop(s.Offset, s.Color)
	}
	dc.SetFillStyle(g)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Fill()
}

// DrawPlaced draws img at a placement computed by the layout package,
// honoring the context's current clip. opacity < 1 fades the image.
func DrawPlaced(dc *gg.Context, img image.Image, p layout.Placement, opacity float64) {
	if img == nil || p.Scale <= 0 {
		return
	}
	if opacity < 1 {
		img = WithOpacity(img, opacity)
	}
	b := img.Bounds()
	dc.Push()
	dc.Translate(p.X, p.Y)
	dc.Scale(p.Scale, p.Scale)
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.Pop()
}

// DrawCover places img with a cover fit inside region at transform t.
func DrawCover(dc *gg.Context, img image.Image, region layout.Rect, t layout.Transform) {
	if img == nil {
		return
	}
	b := img.Bounds()
	DrawPlaced(dc, img, layout.Cover(b.Dx(), b.Dy(), region, t), 1)
}

// DrawContain places img with a contain fit inside region at transform t.
func DrawContain(dc *gg.Context, img image.Image, region layout.Rect, t layout.Transform) {
	if img == nil {
		return
	}
	b := img.Bounds()
	DrawPlaced(dc, img, layout.Contain(b.Dx(), b.Dy(), region, t), 1)
}

// WithOpacity returns a copy of img with every pixel's alpha scaled by a.
func WithOpacity(img image.Image, a float64) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(layout.Clamp(a, 0, 1) * 255))})
	draw.DrawMask(dst, b, img, b.Min, mask, image.Point{}, draw.Over)
	return dst
}

// blurDownscale trades blur precision for speed: the cover pass is blurred
// at a quarter of its size and scaled back up.
const blurDownscale = 4

// BlurredCover renders img cover-fitted (identity transform) into a w×h
// image and applies a gaussian blur of the given sigma in output pixels.
func BlurredCover(img image.Image, w, h int, sigma float64) image.Image {
	sw := max(1, w/blurDownscale)
	sh := max(1, h/blurDownscale)

	small := gg.NewContext(sw, sh)
	DrawCover(small, img, layout.Rect{W: float64(sw), H: float64(sh)}, layout.Identity())

	blurred := imaging.Blur(small.Image(), sigma/blurDownscale)
	return imaging.Resize(blurred, w, h, imaging.Linear)
}

// FitInside scales (iw, ih) to the largest size within (maxW, maxH) keeping
// the aspect ratio. Used to size logos.
func FitInside(iw, ih int, maxW, maxH float64) (w, h float64) {
	if iw <= 0 {
		iw = 1
	}
	if ih <= 0 {
		ih = 1
	}
	s := math.Min(maxW/float64(iw), maxH/float64(ih))
	return float64(iw) * s, float64(ih) * s
}

// DrawImageRect draws img stretched into the (x, y, w, h) rectangle.
func DrawImageRect(dc *gg.Context, img image.Image, x, y, w, h, opacity float64) {
	if img == nil {
		return
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	if opacity < 1 {
		img = WithOpacity(img, opacity)
	}
	dc.Push()
	dc.Translate(x, y)
	dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.Pop()
}
