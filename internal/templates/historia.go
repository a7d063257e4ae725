package templates

import (
	"github.com/fogleman/gg"

	"github.com/fleveque/ficha-service/internal/canvas"
	"github.com/fleveque/ficha-service/internal/layout"
)

// Historia geometry, in output pixels.
const (
	historiaTopHeight    = 1050
	historiaTilesHeight  = 250
	historiaFooterHeight = 100
	historiaTilePadX     = 40
	historiaTileGap      = 18
	historiaTileRadius   = 12
)

// HistoriaTiles returns the regions of the two bottom photo tiles for a
// surface of width w. Exposed so callers can hit-test edits.
func HistoriaTiles(w float64) (left, right layout.Rect) {
	tileW := (w - historiaTilePadX*2 - historiaTileGap) / 2
	y := float64(historiaTopHeight + storyInfoHeight)
	left = layout.Rect{X: historiaTilePadX, Y: y, W: tileW, H: historiaTilesHeight}
	right = layout.Rect{X: historiaTilePadX + tileW + historiaTileGap, Y: y, W: tileW, H: historiaTilesHeight}
	return left, right
}

// DrawHistoria paints the three-photo story: main photo on top, the info
// block, two rounded tiles and the logo strip.
func DrawHistoria(dc *gg.Context, env Env, in Input) {
	w, h := float64(dc.Width()), float64(dc.Height())

	fillBackground(dc, white)
	drawStoryPhoto(dc, in.photo(FrameMain), historiaTopHeight, 0.90)
	env.drawStoryInfo(dc, in.Data, historiaTopHeight)

	tilesY := float64(historiaTopHeight + storyInfoHeight)
	canvas.FillRect(dc, 0, tilesY, w, h-tilesY, white)

	left, right := HistoriaTiles(w)
	drawTile(dc, left, in.photo(FrameBottomLeft))
	drawTile(dc, right, in.photo(FrameBottomRight))

	footerY := h - historiaFooterHeight
	drawLogo(dc, env, w*0.78, historiaFooterHeight*0.80, 0.98, func(lh float64) float64 {
		return footerY + (historiaFooterHeight-lh)/2
	})
}

// drawTile clips to a rounded rect, covers it with the photo at its own
// transform and strokes a faint border on top.
func drawTile(dc *gg.Context, r layout.Rect, p Photo) {
	if p.Image != nil {
		dc.Push()
		canvas.RoundRect(dc, r.X, r.Y, r.W, r.H, historiaTileRadius)
		dc.Clip()
		canvas.DrawCover(dc, p.Image, r, p.Transform)
		dc.Pop()
	}

	canvas.RoundRect(dc, r.X+0.5, r.Y+0.5, r.W-1, r.H-1, historiaTileRadius)
	dc.SetColor(darken)
	dc.SetLineWidth(2)
	dc.Stroke()
}
