// Package layout holds the geometry used to place a photo inside a template
// region: cover/contain fitting with a user pan/zoom on top.
//
// Everything here is pure math on float64. Nothing draws or reads pixels.
package layout

import "math"

// Engine bounds: the placement math never scales from a zoom outside this range.
const (
	EngineZoomMin = 0.6
	EngineZoomMax = 3.0
)

// Edit bounds: interactive wheel zoom stays inside this tighter range.
// Kept separate from the engine bounds on purpose, the engine clamp is a
// safety net for any Transform, the edit range is a UI choice.
const (
	EditZoomMin = 0.7
	EditZoomMax = 2.6
	ZoomStep    = 0.08
)

// Transform is the user-adjustable pan and zoom for one photo slot.
// PanX/PanY are in output pixels (template resolution), not screen pixels.
type Transform struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
}

// Identity is the untouched transform every new photo slot starts with.
func Identity() Transform {
	return Transform{Zoom: 1}
}

// Rect is a target region in output pixels.
type Rect struct {
	X, Y, W, H float64
}

// Placement is where (and how big) an image ends up on the surface.
type Placement struct {
	X, Y, W, H float64
	Scale      float64
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// ClampZoom applies the engine bounds. A zero or NaN zoom means "unset" and
// is read as 1.
func ClampZoom(z float64) float64 {
	if z == 0 || math.IsNaN(z) {
		z = 1
	}
	return Clamp(z, EngineZoomMin, EngineZoomMax)
}

// Cover scales the source so the region is fully covered (overflow is
// cropped by whoever clips the region), then applies pan and zoom.
func Cover(srcW, srcH int, region Rect, t Transform) Placement {
	base := math.Max(region.W/float64(srcW), region.H/float64(srcH))
	return place(srcW, srcH, region, t, base)
}

// Contain scales the source so the whole image is visible inside the region
// at zoom 1, then applies pan and zoom.
func Contain(srcW, srcH int, region Rect, t Transform) Placement {
	base := math.Min(region.W/float64(srcW), region.H/float64(srcH))
	return place(srcW, srcH, region, t, base)
}

func place(srcW, srcH int, region Rect, t Transform, base float64) Placement {
	scale := base * ClampZoom(t.Zoom)
	dw := float64(srcW) * scale
	dh := float64(srcH) * scale
	cx := region.X + region.W/2 + finite(t.PanX)
	cy := region.Y + region.H/2 + finite(t.PanY)
	return Placement{
		X:     cx - dw/2,
		Y:     cy - dh/2,
		W:     dw,
		H:     dh,
		Scale: scale,
	}
}

// DisplayToOutput converts a pointer delta measured on a scaled-down preview
// into output pixels. Without this, pan edits drift relative to the export.
func DisplayToOutput(delta float64, templateWidth int, displayedWidth float64) float64 {
	if displayedWidth <= 0 || math.IsNaN(displayedWidth) {
		return delta
	}
	return delta * float64(templateWidth) / displayedWidth
}

// Pan returns t moved by (dx, dy) output pixels.
func (t Transform) Pan(dx, dy float64) Transform {
	t.PanX += finite(dx)
	t.PanY += finite(dy)
	return t
}

// Wheel returns t zoomed one step for a wheel event: scrolling down (positive
// deltaY) zooms out, up zooms in. The result stays inside the edit bounds.
func (t Transform) Wheel(deltaY float64) Transform {
	if deltaY == 0 || math.IsNaN(deltaY) {
		return t
	}
	step := ZoomStep
	if deltaY > 0 {
		step = -ZoomStep
	}
	z := t.Zoom
	if z == 0 {
		z = 1
	}
	t.Zoom = Clamp(z+step, EditZoomMin, EditZoomMax)
	return t
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
