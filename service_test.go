package nowplaying_test

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying"
	"github.com/dmitrymomot/nowplaying/pkg/broadcast"
	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/palette"
	"github.com/dmitrymomot/nowplaying/pkg/render"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func solidArt(key string, c color.RGBA) *media.Art {
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := range 48 {
		for x := range 48 {
			img.SetRGBA(x, y, c)
		}
	}
	return &media.Art{Image: img, Key: key}
}

func start(t *testing.T, svc *nowplaying.Service) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errCh:
			assert.NoError(t, err)
		case <-time.After(waitFor):
			t.Error("Run did not return")
		}
	})
	return cancel
}

func TestServiceRun(t *testing.T) {
	src := media.NewMemorySource()
	paused := media.NewMemorySession("music",
		media.WithToken("1"),
		media.WithStatus(media.StatusPaused),
		media.WithTitle("Quiet", "Someone"),
		media.WithAutoApply(),
	)
	playing := media.NewMemorySession("podcast",
		media.WithToken("2"),
		media.WithStatus(media.StatusPlaying),
		media.WithTitle("Loud", "Host"),
		media.WithArt(solidArt("cover-2", color.RGBA{R: 100, G: 10, B: 10, A: 255})),
	)
	src.SetSessionsQuietly(paused, playing)

	hub := broadcast.NewHub()
	defer hub.Close()
	svc := nowplaying.New(src, hub)
	start(t, svc)

	sub := hub.Subscribe(context.Background())
	defer sub.Close()

	t.Run("playing session is shown and gets its palette color", func(t *testing.T) {
		require.Eventually(t, func() bool {
			s, ok := svc.Snapshot()
			return ok && s.Token == "2" && s.Background == color.RGBA{R: 99, G: 8, B: 8, A: 255}
		}, waitFor, tick)

		s, _ := svc.Snapshot()
		assert.Equal(t, "Loud", s.Title)
		assert.False(t, s.ArtPlaceholder)
	})

	t.Run("host listener switches the active session", func(t *testing.T) {
		src.SetSessions(paused)
		require.Eventually(t, func() bool {
			s, ok := svc.Snapshot()
			return ok && s.Token == "1"
		}, waitFor, tick)

		s, _ := svc.Snapshot()
		assert.Equal(t, "Quiet", s.Title)
		assert.True(t, s.ArtPlaceholder)
		assert.Equal(t, palette.DefaultColor, s.Background)
		assert.Zero(t, playing.Subscribers())
	})

	t.Run("commands reach the session and the update comes back", func(t *testing.T) {
		require.NoError(t, svc.Dispatch(context.Background(), command.ActionPlayPause))
		require.Eventually(t, func() bool {
			s, _ := svc.Snapshot()
			return s.Status == media.StatusPlaying
		}, waitFor, tick)
		assert.Equal(t, []media.Operation{media.OpPlay}, paused.Issued())

		last, ok := hub.Last()
		require.True(t, ok)
		assert.Equal(t, media.StatusPlaying, last.Status)
	})
}

func TestServiceRunPermissionDenied(t *testing.T) {
	src := media.NewMemorySource()
	src.DenyPermission(true)

	svc := nowplaying.New(src, nil)
	start(t, svc)

	require.Eventually(t, func() bool {
		s, ok := svc.Snapshot()
		return ok && s.Title == render.NoMediaTitle
	}, waitFor, tick)

	s, _ := svc.Snapshot()
	assert.False(t, s.HasSession)
	assert.False(t, s.Controls.PlayPause.Visible)
	assert.False(t, s.Controls.Next.Visible)
}

func TestServiceRunTeardown(t *testing.T) {
	src := media.NewMemorySource()
	s1 := media.NewMemorySession("music", media.WithStatus(media.StatusPlaying))
	src.SetSessionsQuietly(s1)

	svc := nowplaying.New(src, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool { return s1.Subscribers() == 1 && src.Listeners() == 1 }, waitFor, tick)
	assert.ErrorIs(t, svc.Run(ctx), nowplaying.ErrAlreadyRunning)

	require.NoError(t, svc.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not stop after Close")
	}
	cancel()

	<-svc.Done()
	assert.Zero(t, s1.Subscribers())
	assert.Zero(t, src.Listeners())
}

func TestServicePolling(t *testing.T) {
	src := media.NewMemorySource()
	svc := nowplaying.New(src, nil, nowplaying.WithPollInterval(10*time.Millisecond))
	start(t, svc)

	src.SetSessionsQuietly(media.NewMemorySession("radio", media.WithToken("r"), media.WithTitle("News", "")))
	require.Eventually(t, func() bool {
		s, _ := svc.Snapshot()
		return s.Token == "r"
	}, waitFor, tick)
}
