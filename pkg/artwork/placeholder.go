package artwork

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
)

var (
	placeholderOnce sync.Once
	placeholderImg  *image.RGBA

	placeholderBack = color.RGBA{R: 0x3a, G: 0x3a, B: 0x3a, A: 0xff}
	placeholderMark = color.RGBA{R: 0x8a, G: 0x8a, B: 0x8a, A: 0xff}
)

// PlaceholderSize is the edge of the placeholder art in pixels.
const PlaceholderSize = 96

// Placeholder returns the shared placeholder art: a dark square with a
// simple note glyph. Callers must not modify the returned image.
func Placeholder() *image.RGBA {
	placeholderOnce.Do(func() {
		img := image.NewRGBA(image.Rect(0, 0, PlaceholderSize, PlaceholderSize))
		draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBack), image.Point{}, draw.Src)

		mark := image.NewUniform(placeholderMark)
		// stem
		draw.Draw(img, image.Rect(54, 22, 60, 66), mark, image.Point{}, draw.Src)
		// flag
		draw.Draw(img, image.Rect(54, 22, 72, 30), mark, image.Point{}, draw.Src)
		// head
		cx, cy, r := 46, 66, 10
		for y := cy - r; y <= cy+r; y++ {
			for x := cx - r; x <= cx+r; x++ {
				if (x-cx)*(x-cx)+(y-cy)*(y-cy) <= r*r {
					img.SetRGBA(x, y, placeholderMark)
				}
			}
		}
		placeholderImg = img
	})
	return placeholderImg
}
