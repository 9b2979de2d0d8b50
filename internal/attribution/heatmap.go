package attribution

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spacesedan/replybot/internal/models"
)

var (
	coolColor    = colorful.Color{R: 59.0 / 255, G: 76.0 / 255, B: 192.0 / 255}
	neutralColor = colorful.Color{R: 221.0 / 255, G: 221.0 / 255, B: 221.0 / 255}
	warmColor    = colorful.Color{R: 180.0 / 255, G: 4.0 / 255, B: 38.0 / 255}
)

const (
	heatmapTitle  = "Sentiment Analysis"
	colorbarLabel = "Sentiment Impact"
)

// HeatmapRenderer draws a single-row heat strip, one annotated cell per word,
// on a diverging palette centred at zero, with a colour bar underneath.
type HeatmapRenderer struct {
	Padding      int
	CellHeight   int
	MinCellWidth int
	BarHeight    int
	face         font.Face
}

func NewHeatmapRenderer() *HeatmapRenderer {
	return &HeatmapRenderer{
		Padding:      16,
		CellHeight:   40,
		MinCellWidth: 56,
		BarHeight:    12,
		face:         basicfont.Face7x13,
	}
}

func (h *HeatmapRenderer) Render(path string, words []models.WordImportance) (err error) {
	if len(words) == 0 {
		return errors.New("no words to render")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create heatmap directory: %w", err)
		}
	}

	img := h.Image(words)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create heatmap file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode heatmap: %w", err)
	}
	return nil
}

// Image draws the heat strip in memory.
func (h *HeatmapRenderer) Image(words []models.WordImportance) *image.RGBA {
	lineHeight := h.face.Metrics().Height.Ceil()

	widths := make([]int, len(words))
	stripWidth := 0
	for i, w := range words {
		widths[i] = max(h.MinCellWidth, font.MeasureString(h.face, w.Word).Ceil()+h.Padding)
		stripWidth += widths[i]
	}
	barWidth := max(stripWidth, 256)
	contentWidth := max(stripWidth, barWidth)

	titleY := h.Padding
	stripY := titleY + lineHeight + h.Padding/2
	barY := stripY + h.CellHeight + h.Padding
	labelsY := barY + h.BarHeight + 4
	height := labelsY + 2*lineHeight + h.Padding
	width := contentWidth + 2*h.Padding

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	h.text(img, heatmapTitle, (width-font.MeasureString(h.face, heatmapTitle).Ceil())/2, titleY, color.Black)

	vmax := 0.0
	for _, w := range words {
		vmax = math.Max(vmax, math.Abs(w.Contribution))
	}

	x := h.Padding
	for i, w := range words {
		t := 0.0
		if vmax > 0 {
			t = w.Contribution / vmax
		}
		fill := Diverging(t)
		cell := image.Rect(x, stripY, x+widths[i], stripY+h.CellHeight)
		draw.Draw(img, cell, image.NewUniform(fill), image.Point{}, draw.Src)
		// cell separators
		draw.Draw(img, image.Rect(cell.Max.X-1, cell.Min.Y, cell.Max.X, cell.Max.Y), image.White, image.Point{}, draw.Src)

		tw := font.MeasureString(h.face, w.Word).Ceil()
		ty := stripY + (h.CellHeight-lineHeight)/2
		h.text(img, w.Word, x+(widths[i]-tw)/2, ty, textColorFor(fill))
		x += widths[i]
	}

	for bx := 0; bx < barWidth; bx++ {
		t := 2*float64(bx)/float64(max(barWidth-1, 1)) - 1
		col := image.Rect(h.Padding+bx, barY, h.Padding+bx+1, barY+h.BarHeight)
		draw.Draw(img, col, image.NewUniform(Diverging(t)), image.Point{}, draw.Src)
	}

	low, high := fmt.Sprintf("%.2f", -vmax), fmt.Sprintf("+%.2f", vmax)
	h.text(img, low, h.Padding, labelsY, color.Black)
	h.text(img, "0", h.Padding+barWidth/2-font.MeasureString(h.face, "0").Ceil()/2, labelsY, color.Black)
	h.text(img, high, h.Padding+barWidth-font.MeasureString(h.face, high).Ceil(), labelsY, color.Black)
	h.text(img, colorbarLabel, h.Padding+(barWidth-font.MeasureString(h.face, colorbarLabel).Ceil())/2, labelsY+lineHeight, color.Black)

	return img
}

// text draws s with its top-left corner at (x, y).
func (h *HeatmapRenderer) text(dst draw.Image, s string, x, y int, c color.Color) {
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: h.face,
		Dot:  fixed.P(x, y+h.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}

// Diverging maps t in [-1, 1] onto the cool-neutral-warm palette.
func Diverging(t float64) color.Color {
	t = math.Max(-1, math.Min(1, t))
	var c colorful.Color
	if t < 0 {
		c = neutralColor.BlendLab(coolColor, -t)
	} else {
		c = neutralColor.BlendLab(warmColor, t)
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func textColorFor(bg color.Color) color.Color {
	r, g, b, _ := bg.RGBA()
	c := colorful.Color{R: float64(r) / 0xffff, G: float64(g) / 0xffff, B: float64(b) / 0xffff}
	l, _, _ := c.Lab()
	if l < 0.55 {
		return color.White
	}
	return color.Black
}
