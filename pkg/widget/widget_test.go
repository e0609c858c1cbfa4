package widget_test

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/render"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

type recorder struct{ states []widget.RenderState }

func (r *recorder) Push(_ context.Context, s widget.RenderState) { r.states = append(r.states, s) }

func playingFrame() render.Frame {
	return render.Frame{
		HasSession: true,
		Token:      "t1",
		Title:      "Song",
		Artist:     "Band",
		Status:     media.StatusPlaying,
		Art:        image.NewRGBA(image.Rect(0, 0, 4, 4)),
		Background: color.RGBA{R: 10, A: 255},
	}
}

func TestPresenter(t *testing.T) {
	t.Run("pushes exactly once per call", func(t *testing.T) {
		rec := &recorder{}
		p := widget.NewPresenter(rec)

		controls := widget.Controls{
			PlayPause: widget.Affordance{Visible: true, Enabled: true},
			Next:      widget.Affordance{Visible: true},
		}
		s := p.Present(context.Background(), playingFrame(), controls)

		require.Len(t, rec.states, 1)
		assert.Equal(t, s, rec.states[0])
		assert.Equal(t, uint64(1), s.Seq)
		assert.Equal(t, widget.IconPause, s.PlayIcon)
		assert.False(t, s.Controls.Next.Actionable())

		last, ok := p.Last()
		require.True(t, ok)
		assert.Equal(t, s, last)

		p.Present(context.Background(), playingFrame(), controls)
		assert.Len(t, rec.states, 2)
		assert.Equal(t, uint64(2), rec.states[1].Seq)
	})

	t.Run("no session hides transport buttons", func(t *testing.T) {
		all := widget.Affordance{Visible: true, Enabled: true}
		s := widget.Build(render.Frame{Title: render.NoMediaTitle}, widget.Controls{PlayPause: all, Next: all, Prev: all, Open: all})
		assert.False(t, s.Controls.PlayPause.Visible)
		assert.False(t, s.Controls.Next.Visible)
		assert.False(t, s.Controls.Prev.Visible)
		assert.True(t, s.Controls.Open.Visible)
		assert.Equal(t, widget.IconPlay, s.PlayIcon)
	})

	t.Run("surface func adapter", func(t *testing.T) {
		var got []string
		p := widget.NewPresenter(widget.SurfaceFunc(func(_ context.Context, s widget.RenderState) {
			got = append(got, s.Title)
		}))
		p.Present(context.Background(), playingFrame(), widget.Controls{})
		assert.Equal(t, []string{"Song"}, got)
	})
}

func TestSameContent(t *testing.T) {
	a := widget.Build(playingFrame(), widget.Controls{})
	b := a
	b.Seq = 7
	assert.True(t, a.SameContent(b))

	b.Background = color.RGBA{B: 1, A: 255}
	assert.False(t, a.SameContent(b))

	c := a
	c.Art = image.NewRGBA(image.Rect(0, 0, 4, 4))
	assert.False(t, a.SameContent(c), "art compares by reference")
}

func TestIconFor(t *testing.T) {
	assert.Equal(t, widget.IconPause, widget.IconFor(media.StatusPlaying))
	assert.Equal(t, widget.IconPlay, widget.IconFor(media.StatusPaused))
	assert.Equal(t, "pause", widget.IconPause.String())
}
