package attribution

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/replybot/internal/models"
)

func TestHeatmapRenderer_WritesPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "heatmap_c1_r1.png")
	words := []models.WordImportance{
		{Word: "Luffy", Contribution: 0},
		{Word: "is", Contribution: 0.2},
		{Word: "overpowered", Contribution: -0.05},
	}

	require.NoError(t, NewHeatmapRenderer().Render(path, words))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 256)
	assert.Greater(t, img.Bounds().Dy(), 40)
}

func TestHeatmapRenderer_AllZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zero.png")
	words := []models.WordImportance{{Word: "meh"}, {Word: "ok"}}
	require.NoError(t, NewHeatmapRenderer().Render(path, words))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestHeatmapRenderer_NoWords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	assert.Error(t, NewHeatmapRenderer().Render(path, nil))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestHeatmapRenderer_CellColours(t *testing.T) {
	h := NewHeatmapRenderer()
	words := []models.WordImportance{
		{Word: "good", Contribution: 0.5},
		{Word: "bad", Contribution: -0.5},
	}
	img := h.Image(words)

	lineHeight := h.face.Metrics().Height.Ceil()
	stripY := h.Padding + lineHeight + h.Padding/2
	// top-left pixels of each cell sit clear of the text
	y := stripY + 1
	left := img.RGBAAt(h.Padding+1, y)
	right := img.RGBAAt(h.Padding+h.MinCellWidth+1, y)

	assert.Equal(t, Diverging(1), color.Color(left))
	assert.Equal(t, Diverging(-1), color.Color(right))
}

func TestDiverging(t *testing.T) {
	mid := Diverging(0).(color.RGBA)
	assert.Equal(t, color.RGBA{R: 221, G: 221, B: 221, A: 255}, mid)

	warm := Diverging(1).(color.RGBA)
	assert.Greater(t, warm.R, warm.B)

	cool := Diverging(-1).(color.RGBA)
	assert.Greater(t, cool.B, cool.R)

	assert.Equal(t, Diverging(1), Diverging(5))
}
