package templates

import (
	"github.com/fogleman/gg"

	"github.com/fleveque/ficha-service/internal/canvas"
	"github.com/fleveque/ficha-service/internal/layout"
	"github.com/fleveque/ficha-service/internal/text"
)

const videoTopHeight = 1180

// DrawVideoSlide paints one slideshow frame: a single photo with a soft
// vignette, the info block and a dark footer carrying logo and contact.
func DrawVideoSlide(dc *gg.Context, env Env, in Input) {
	w, h := float64(dc.Width()), float64(dc.Height())

	fillBackground(dc, white)
	if drawStoryPhoto(dc, in.photo(FrameMain), videoTopHeight, 0.92) {
		canvas.RadialVignette(dc, layout.Rect{W: w, H: videoTopHeight}, canvas.Vignette{
			X0: w / 2, Y0: videoTopHeight * 0.45, R0: 120,
			X1: w / 2, Y1: videoTopHeight * 0.60, R1: 760,
			Stops: []canvas.ColorStop{
				{Offset: 0, Color: canvas.RGBA(0, 0, 0, 0)},
				{Offset: 0.60, Color: canvas.RGBA(0, 0, 0, 0.12)},
				{Offset: 1, Color: canvas.RGBA(0, 0, 0, 0.32)},
			},
		})
	}

	env.drawStoryInfo(dc, in.Data, videoTopHeight)

	footerH := h - videoTopHeight - storyInfoHeight
	footerY := h - footerH
	canvas.FillRect(dc, 0, footerY, w, footerH, canvas.RGBA(0, 0, 0, 0.78))
	canvas.FillRect(dc, 0, footerY, w, 3, accentBar)

	drawLogo(dc, env, w*0.78, footerH*0.48, 0.98, func(float64) float64 {
		return footerY + 16
	})

	env.drawLabel(dc, label{Text: env.Brand.Address, Size: 34, Weight: text.WeightSemibold, Color: white, Alpha: 0.92}, w/2, footerY+footerH-74)
	env.drawLabel(dc, label{Text: env.Brand.Phone, Size: 34, Weight: text.WeightSemibold, Color: white, Alpha: 0.98}, w/2, footerY+footerH-30)
}
