package tui

import (
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrymomot/nowplaying/pkg/render"
)

// Thumbnail size in cells. Each cell shows two pixels with an upper half block.
const (
	thumbCols = 16
	thumbRows = 8
)

// thumbnail renders img with nearest-neighbour sampling. Transparent pixels,
// such as rounded corners, show the terminal background.
func thumbnail(img image.Image) string {
	if img == nil || img.Bounds().Empty() {
		return ""
	}
	var sb strings.Builder
	for row := range thumbRows {
		for col := range thumbCols {
			cell := lipgloss.NewStyle().
				Foreground(pixel(img, col, row*2)).
				Background(pixel(img, col, row*2+1))
			sb.WriteString(cell.Render("▀"))
		}
		if row < thumbRows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func pixel(img image.Image, col, y int) lipgloss.TerminalColor {
	b := img.Bounds()
	px := b.Min.X + col*b.Dx()/thumbCols
	py := b.Min.Y + y*b.Dy()/(thumbRows*2)
	c := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
	if c.A < 128 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(render.HexColor(color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}))
}
