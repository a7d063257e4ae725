package templates

import (
	"image/color"
	"strings"

	"github.com/fogleman/gg"

	"github.com/fleveque/ficha-service/internal/canvas"
	"github.com/fleveque/ficha-service/internal/layout"
	"github.com/fleveque/ficha-service/internal/model"
	"github.com/fleveque/ficha-service/internal/text"
)

var (
	white      = color.NRGBA{255, 255, 255, 255}
	black      = color.NRGBA{0, 0, 0, 255}
	accentLine = canvas.RGBA(214, 0, 110, 0.70)
	accentBar  = canvas.RGBA(214, 0, 110, 0.22)
	darken     = canvas.RGBA(0, 0, 0, 0.10)
	infoTop    = canvas.Hex("#f4f4f7")
	infoBottom = canvas.Hex("#f0f0f4")
	inkModel   = canvas.Hex("#111216")
	inkYear    = canvas.Hex("#1b1c22")
	inkBody    = canvas.Hex("#2a2b33")
)

// label is one line of copy.
type label struct {
	Text     string
	Size     float64
	Weight   text.Weight
	Color    color.NRGBA
	Alpha    float64
	Align    text.Align
	Baseline text.Baseline
}

// drawLabel draws l anchored at (x, y) and returns its measured width.
// With no font manager nothing is drawn.
func (env Env) drawLabel(dc *gg.Context, l label, x, y float64) float64 {
	if env.Fonts == nil || l.Text == "" {
		return 0
	}
	face, err := env.Fonts.Face(text.FaceSpec{Family: text.DefaultFamily, Weight: l.Weight, Size: l.Size})
	if err != nil {
		return 0
	}
	defer face.Close()

	alpha := l.Alpha
	if alpha == 0 {
		alpha = 1
	}
	ax, ay := text.Anchor(l.Align, l.Baseline)

	dc.Push()
	dc.SetFontFace(face)
	dc.SetColor(canvas.Alpha(l.Color, alpha))
	dc.DrawStringAnchored(l.Text, x, y, ax, ay)
	w, _ := dc.MeasureString(l.Text)
	dc.Pop()
	return w
}

// fit picks the largest size in [minSize, maxSize] at which s fits width.
func (env Env) fit(s string, width float64, maxSize, minSize int, w text.Weight) float64 {
	if env.Fonts == nil {
		return float64(minSize)
	}
	return float64(text.FitText(env.Fonts, s, width, maxSize, minSize, text.DefaultFamily, w))
}

// storyLines is the copy shared by the two vertical templates: mixed case,
// bullet separator, lowercase "km".
type storyLines struct {
	Model   string
	YearKm  string
	Version string
	Gearbox string
}

func storyCopy(d model.VehicleData) storyLines {
	km := text.FormatKmPtr(d.Km)
	if km != "" {
		km += " km"
	}
	gearbox := text.CleanSpaces(d.Gearbox)
	if gearbox != "" {
		gearbox = "Caja: " + gearbox
	}
	return storyLines{
		Model:   text.OrBlank(text.CleanSpaces(d.Model)),
		YearKm:  text.OrBlank(text.JoinNonEmpty(" • ", strings.TrimSpace(d.Year), km)),
		Version: text.OrBlank(text.CleanSpaces(d.Version)),
		Gearbox: text.OrBlank(gearbox),
	}
}

// storyInfoHeight is the height of the grey info block on vertical templates.
const storyInfoHeight = 520

// drawStoryInfo paints the info block starting at y0: gradient, accent
// rules and the four centered lines.
func (env Env) drawStoryInfo(dc *gg.Context, data model.VehicleData, y0 float64) {
	w := float64(dc.Width())
	canvas.VerticalGradient(dc, layout.Rect{Y: y0, W: w, H: storyInfoHeight}, infoTop, infoBottom)

	const rulePad, ruleInset = 90, 78
	canvas.HLine(dc, rulePad, w-rulePad, y0+ruleInset, 3, accentLine)
	canvas.HLine(dc, rulePad, w-rulePad, y0+storyInfoHeight-ruleInset, 3, accentLine)

	lines := storyCopy(data)
	cx := w / 2
	y := y0 + 185

	env.drawLabel(dc, label{
		Text:   lines.Model,
		Size:   env.fit(lines.Model, w-160, 120, 64, text.WeightBlack),
		Weight: text.WeightBlack,
		Color:  inkModel,
	}, cx, y)
	y += 92

	env.drawLabel(dc, label{Text: lines.YearKm, Size: 68, Weight: text.WeightBold, Color: inkYear, Alpha: 0.90}, cx, y)
	y += 84

	env.drawLabel(dc, label{
		Text:   lines.Version,
		Size:   env.fit(lines.Version, w-200, 64, 40, text.WeightSemibold),
		Weight: text.WeightSemibold,
		Color:  inkBody,
		Alpha:  0.88,
	}, cx, y)
	y += 76

	env.drawLabel(dc, label{Text: lines.Gearbox, Size: 56, Weight: text.WeightSemibold, Color: inkBody, Alpha: 0.80}, cx, y)
}

// drawStoryPhoto fills the top block: blurred cover backdrop, a light
// darkening pass, then the photo contained at the user's transform.
func drawStoryPhoto(dc *gg.Context, p Photo, height, blurAlpha float64) bool {
	if p.Image == nil {
		return false
	}
	w := float64(dc.Width())
	region := layout.Rect{W: w, H: height}

	dc.Push()
	dc.DrawRectangle(0, 0, w, height)
	dc.Clip()

	backdrop := canvas.BlurredCover(p.Image, dc.Width(), int(height), 18)
	canvas.DrawImageRect(dc, backdrop, 0, 0, w, height, blurAlpha)
	canvas.FillRect(dc, 0, 0, w, height, darken)
	canvas.DrawContain(dc, p.Image, region, p.Transform)
	dc.Pop()
	return true
}

// drawLogo centers the logo horizontally in a maxW×maxH box whose top-left
// y is computed by place from the drawn height.
func drawLogo(dc *gg.Context, env Env, maxW, maxH, alpha float64, place func(h float64) float64) {
	logo := env.Assets.Logo
	if logo == nil {
		return
	}
	b := logo.Bounds()
	lw, lh := canvas.FitInside(b.Dx(), b.Dy(), maxW, maxH)
	x := (float64(dc.Width()) - lw) / 2
	canvas.DrawImageRect(dc, logo, x, place(lh), lw, lh, alpha)
}

// fillBackground paints the whole surface in c.
func fillBackground(dc *gg.Context, c color.Color) {
	dc.SetColor(c)
	dc.Clear()
}
