package canvas

import "image"

// LuminanceFallback is returned whenever pixels can't be sampled.
const LuminanceFallback = 0.4

// luminanceStride samples every 4th pixel of the region, row-major.
const luminanceStride = 4

// AvgLuminance returns the mean relative luminance (0..1) of the pixels in
// rect, sampled at a fixed stride. An empty region, a nil image or a failing
// pixel read yields LuminanceFallback instead of an error.
func AvgLuminance(img image.Image, rect image.Rectangle) (lum float64) {
	if img == nil {
		return LuminanceFallback
	}
	if rect.Dx() < 1 {
		rect.Max.X = rect.Min.X + 1
	}
	if rect.Dy() < 1 {
		rect.Max.Y = rect.Min.Y + 1
	}
	if rect.Min.X < 0 {
		rect.Min.X = 0
	}
	if rect.Min.Y < 0 {
		rect.Min.Y = 0
	}
	r := rect.Intersect(img.Bounds())
	if r.Empty() {
		return LuminanceFallback
	}

	// Some image.Image implementations (lazy decoders, remote tiles) panic
	// on At; treat that like an unreadable surface.
	defer func() {
		if recover() != nil {
			lum = LuminanceFallback
		}
	}()

	w, h := r.Dx(), r.Dy()
	total := w * h
	var sum float64
	var samples int
	for i := 0; i < total; i += luminanceStride {
		x := r.Min.X + i%w
		y := r.Min.Y + i/w
		cr, cg, cb, _ := img.At(x, y).RGBA()
		sum += 0.2126*float64(cr)/0xffff + 0.7152*float64(cg)/0xffff + 0.0722*float64(cb)/0xffff
		samples++
	}
	if samples == 0 {
		return LuminanceFallback
	}
	return sum / float64(samples)
}
