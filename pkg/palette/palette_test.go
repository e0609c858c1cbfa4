package palette_test

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying/pkg/palette"
)

var fallback = color.RGBA{R: 1, G: 2, B: 3, A: 255}

// split paints the left half with left and the right half with right.
func split(w, h int, left, right color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			if x < w/2 {
				img.SetRGBA(x, y, left)
			} else {
				img.SetRGBA(x, y, right)
			}
		}
	}
	return img
}

func TestGenerate(t *testing.T) {
	darkRed := color.RGBA{R: 100, G: 10, B: 10, A: 255}
	blue := color.RGBA{R: 40, G: 40, B: 220, A: 255}

	t.Run("targets are assigned by saturation and lightness", func(t *testing.T) {
		p := palette.Generate(split(40, 20, darkRed, blue), 0)
		require.Len(t, p.Swatches, 2)

		dv, ok := p.Swatch(palette.DarkVibrant)
		require.True(t, ok)
		assert.Equal(t, color.RGBA{R: 99, G: 8, B: 8, A: 255}, dv.Color)

		v, ok := p.Swatch(palette.Vibrant)
		require.True(t, ok)
		assert.Equal(t, color.RGBA{R: 41, G: 41, B: 222, A: 255}, v.Color)

		_, ok = p.Swatch(palette.LightVibrant)
		assert.False(t, ok)
	})

	t.Run("median cut bounds the swatch count", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 64, 64))
		for y := range 64 {
			for x := range 64 {
				img.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
			}
		}
		p := palette.Generate(img, 16)
		assert.NotEmpty(t, p.Swatches)
		assert.LessOrEqual(t, len(p.Swatches), 16)

		dom, ok := p.Dominant()
		require.True(t, ok)
		for _, s := range p.Swatches {
			assert.LessOrEqual(t, s.Population, dom.Population)
		}
	})

	t.Run("transparent, black and white pixels are ignored", func(t *testing.T) {
		img := split(10, 10, color.RGBA{A: 255}, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		img.SetRGBA(0, 0, color.RGBA{R: 200, A: 10})
		p := palette.Generate(img, 16)
		assert.Empty(t, p.Swatches)
	})

	t.Run("nil image", func(t *testing.T) {
		p := palette.Generate(nil, 16)
		assert.Empty(t, p.Swatches)
		_, ok := p.Dominant()
		assert.False(t, ok)
	})
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want color.RGBA
	}{
		{
			name: "dark vibrant wins over vibrant",
			img:  split(40, 20, color.RGBA{R: 100, G: 10, B: 10, A: 255}, color.RGBA{R: 40, G: 40, B: 220, A: 255}),
			want: color.RGBA{R: 99, G: 8, B: 8, A: 255},
		},
		{
			name: "muted when nothing vibrant",
			img:  split(10, 10, color.RGBA{R: 128, G: 128, B: 128, A: 255}, color.RGBA{R: 128, G: 128, B: 128, A: 255}),
			want: color.RGBA{R: 132, G: 132, B: 132, A: 255},
		},
		{
			name: "fallback when nothing qualifies",
			img:  split(10, 10, color.RGBA{A: 255}, color.RGBA{A: 255}),
			want: fallback,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := palette.Select(palette.Generate(tt.img, 16), fallback)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTargetString(t *testing.T) {
	assert.Equal(t, "dark_vibrant", palette.DarkVibrant.String())
	assert.Equal(t, "unknown", palette.Target(99).String())
	assert.Equal(t, []palette.Target{palette.DarkVibrant, palette.Vibrant, palette.DarkMuted, palette.Muted}, palette.Priority)
}
