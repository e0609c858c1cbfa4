package palette_test

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying/pkg/artwork"
	"github.com/dmitrymomot/nowplaying/pkg/palette"
)

func receive(t *testing.T, ex *palette.Extractor) palette.Result {
	t.Helper()
	select {
	case res := <-ex.Results():
		return res
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no palette result")
		return palette.Result{}
	}
}

func TestExtractor(t *testing.T) {
	t.Run("default pipeline selects dark vibrant", func(t *testing.T) {
		ex := palette.NewExtractor(palette.WithFallback(fallback))
		defer ex.Close()

		id := artwork.Identity{Key: "cover", Width: 60, Height: 30}
		img := split(60, 30, color.RGBA{R: 100, G: 10, B: 10, A: 255}, color.RGBA{R: 40, G: 40, B: 220, A: 255})
		require.NoError(t, ex.Submit(palette.Job{Identity: id, Image: img}))

		res := receive(t, ex)
		assert.Equal(t, id, res.Identity)
		assert.Equal(t, color.RGBA{R: 99, G: 8, B: 8, A: 255}, res.Color)
	})

	t.Run("jobs complete in submission order", func(t *testing.T) {
		ex := palette.NewExtractor(palette.WithColorFunc(func(img image.Image) color.RGBA {
			return color.RGBA{R: uint8(img.Bounds().Dx()), A: 255}
		}))
		defer ex.Close()

		for i := 1; i <= 5; i++ {
			img := image.NewRGBA(image.Rect(0, 0, i, 1))
			require.NoError(t, ex.Submit(palette.Job{Identity: artwork.Identity{Key: "k", Width: i, Height: 1}, Image: img}))
		}
		for i := 1; i <= 5; i++ {
			res := receive(t, ex)
			assert.Equal(t, i, res.Identity.Width)
			assert.Equal(t, uint8(i), res.Color.R)
		}
	})

	t.Run("panics fall back to the default color", func(t *testing.T) {
		ex := palette.NewExtractor(
			palette.WithFallback(fallback),
			palette.WithColorFunc(func(image.Image) color.RGBA { panic("decoder exploded") }),
		)
		defer ex.Close()

		require.NoError(t, ex.Submit(palette.Job{Image: image.NewRGBA(image.Rect(0, 0, 2, 2))}))
		assert.Equal(t, fallback, receive(t, ex).Color)
	})

	t.Run("close discards in-flight and queued work", func(t *testing.T) {
		started := make(chan struct{}, 1)
		release := make(chan struct{})
		ex := palette.NewExtractor(palette.WithColorFunc(func(image.Image) color.RGBA {
			started <- struct{}{}
			<-release
			return color.RGBA{A: 255}
		}))

		img := image.NewRGBA(image.Rect(0, 0, 2, 2))
		require.NoError(t, ex.Submit(palette.Job{Image: img}))
		<-started
		require.NoError(t, ex.Submit(palette.Job{Image: img}))
		assert.Equal(t, 1, ex.Pending())

		ex.Close()
		ex.Close()
		close(release)

		assert.Equal(t, 0, ex.Pending())
		assert.ErrorIs(t, ex.Submit(palette.Job{Image: img}), palette.ErrExtractorClosed)
		assert.Never(t, func() bool {
			select {
			case <-ex.Results():
				return true
			default:
				return false
			}
		}, 100*time.Millisecond, 10*time.Millisecond)
	})

	t.Run("rejects jobs without image", func(t *testing.T) {
		ex := palette.NewExtractor()
		defer ex.Close()
		assert.ErrorIs(t, ex.Submit(palette.Job{}), palette.ErrNilImage)
	})
}
