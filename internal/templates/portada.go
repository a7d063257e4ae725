package templates

import (
	"strings"

	"github.com/fogleman/gg"

	"github.com/fleveque/ficha-service/internal/canvas"
	"github.com/fleveque/ficha-service/internal/layout"
	"github.com/fleveque/ficha-service/internal/text"
)

// Portada card and footer geometry, in output pixels.
const (
	portadaCardWidthRatio = 0.78
	portadaCardHeight     = 380
	portadaCardRadius     = 28
	portadaFooterHeight   = 68
	portadaIconSize       = 30
	portadaIconGap        = 10
	portadaSidePad        = 24
)

// DrawPortada paints the square cover: full-bleed photo, vignette, a dark
// glass card with the uppercased copy and an address/phone footer bar.
func DrawPortada(dc *gg.Context, env Env, in Input) {
	w, h := float64(dc.Width()), float64(dc.Height())
	full := layout.Rect{W: w, H: h}

	fillBackground(dc, black)
	if p := in.photo(FrameMain); p.Image != nil {
		canvas.DrawCover(dc, p.Image, full, p.Transform)
	}

	canvas.RadialVignette(dc, full, canvas.Vignette{
		X0: w / 2, Y0: h * 0.42, R0: 120,
		X1: w / 2, Y1: h * 0.55, R1: 740,
		Stops: []canvas.ColorStop{
			{Offset: 0, Color: canvas.RGBA(0, 0, 0, 0.10)},
			{Offset: 0.55, Color: canvas.RGBA(0, 0, 0, 0.32)},
			{Offset: 1, Color: canvas.RGBA(0, 0, 0, 0.55)},
		},
	})

	cardW := w * portadaCardWidthRatio
	cardX := (w - cardW) / 2
	cardTop := h*0.5 - portadaCardHeight/2

	canvas.RoundRect(dc, cardX, cardTop, cardW, portadaCardHeight, portadaCardRadius)
	dc.SetColor(canvas.RGBA(0, 0, 0, 0.56))
	dc.FillPreserve()
	dc.SetColor(canvas.RGBA(255, 255, 255, 0.10))
	dc.SetLineWidth(2)
	dc.Stroke()

	env.drawPortadaCopy(dc, in, cardW, cardTop)

	drawLogo(dc, env, cardW-22*2, 92, 0.96, func(lh float64) float64 {
		return cardTop + portadaCardHeight - lh - 18
	})

	env.drawPortadaFooter(dc, w, h)
}

func (env Env) drawPortadaCopy(dc *gg.Context, in Input, cardW, cardTop float64) {
	d := in.Data
	cx := float64(dc.Width()) / 2

	model := text.OrBlank(text.CleanSpaces(text.Upper(d.Model)))
	version := text.OrBlank(text.CleanSpaces(text.Upper(d.Version)))

	km := text.FormatKmPtr(d.Km)
	if km != "" {
		km += " KM"
	}
	yearKm := text.OrBlank(text.JoinNonEmpty(" · ", strings.TrimSpace(d.Year), km))

	gearbox := text.CleanSpaces(text.Upper(d.Gearbox))
	if gearbox != "" {
		gearbox = "Caja: " + gearbox
	}
	drivetrain := text.OrBlank(text.JoinNonEmpty(" · ", gearbox, text.CleanSpaces(text.Upper(d.Engine))))

	y := cardTop + 84
	env.drawLabel(dc, label{
		Text:   model,
		Size:   env.fit(model, cardW-90, 78, 44, text.WeightBlack),
		Weight: text.WeightBlack,
		Color:  white,
	}, cx, y)
	y += 64

	env.drawLabel(dc, label{Text: yearKm, Size: 40, Weight: text.WeightBold, Color: white, Alpha: 0.95}, cx, y)
	y += 56

	env.drawLabel(dc, label{
		Text:   version,
		Size:   env.fit(version, cardW-90, 36, 28, text.WeightBold),
		Weight: text.WeightBold,
		Color:  white,
		Alpha:  0.92,
	}, cx, y)
	y += 44

	env.drawLabel(dc, label{Text: drivetrain, Size: 34, Weight: text.WeightSemibold, Color: white, Alpha: 0.88}, cx, y)
}

// drawPortadaFooter draws the contact bar. The contact icon sits just left
// of the phone number, so the number is measured first.
func (env Env) drawPortadaFooter(dc *gg.Context, w, h float64) {
	barY := h - portadaFooterHeight
	canvas.FillRect(dc, 0, barY, w, portadaFooterHeight, canvas.RGBA(0, 0, 0, 0.72))
	canvas.FillRect(dc, 0, barY, w, 3, accentBar)

	mid := barY + portadaFooterHeight/2
	env.drawLabel(dc, label{
		Text: env.Brand.Address, Size: 26, Weight: text.WeightSemibold, Color: white,
		Align: text.AlignLeft, Baseline: text.BaselineMiddle,
	}, portadaSidePad, mid)

	phoneX := w - portadaSidePad
	phoneW := env.drawLabel(dc, label{
		Text: env.Brand.Phone, Size: 26, Weight: text.WeightSemibold, Color: white,
		Align: text.AlignRight, Baseline: text.BaselineMiddle,
	}, phoneX, mid)

	if icon := env.Assets.Contact; icon != nil {
		iconX := phoneX - phoneW - portadaIconGap - portadaIconSize
		iconY := barY + (portadaFooterHeight-portadaIconSize)/2
		canvas.DrawImageRect(dc, icon, iconX, iconY, portadaIconSize, portadaIconSize, 1)
	}
}
