package media_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying/pkg/media"
)

func TestMemorySource(t *testing.T) {
	t.Run("sessions are returned in host order", func(t *testing.T) {
		src := media.NewMemorySource()
		a := media.NewMemorySession("a", media.WithToken("1"))
		b := media.NewMemorySession("b", media.WithToken("2"))
		src.SetSessions(a, b)

		list, err := src.ActiveSessions(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, media.Token("1"), list[0].Token())
		assert.Equal(t, media.Token("2"), list[1].Token())
	})

	t.Run("permission denied", func(t *testing.T) {
		src := media.NewMemorySource()
		src.DenyPermission(true)

		_, err := src.ActiveSessions(context.Background())
		assert.ErrorIs(t, err, media.ErrPermissionDenied)

		_, err = src.Subscribe(func([]media.Session) {})
		assert.ErrorIs(t, err, media.ErrSubscriptionDenied)
	})

	t.Run("listeners receive the new list until unsubscribed", func(t *testing.T) {
		src := media.NewMemorySource()
		var got [][]media.Session
		unsubscribe, err := src.Subscribe(func(s []media.Session) { got = append(got, s) })
		require.NoError(t, err)

		src.SetSessions(media.NewMemorySession("a"))
		unsubscribe()
		unsubscribe()
		src.SetSessions()

		require.Len(t, got, 1)
		assert.Len(t, got[0], 1)
		assert.Equal(t, 0, src.Listeners())
	})
}

func TestMemorySession(t *testing.T) {
	t.Run("callbacks observe status and metadata", func(t *testing.T) {
		s := media.NewMemorySession("player", media.WithToken("t"))
		var events []media.SessionEvent
		unsubscribe, err := s.Subscribe(func(ev media.SessionEvent) { events = append(events, ev) })
		require.NoError(t, err)

		s.SetStatus(media.StatusPlaying)
		s.SetMetadata(media.Metadata{Title: "x"})
		unsubscribe()
		s.SetStatus(media.StatusPaused)

		require.Len(t, events, 2)
		assert.Equal(t, media.EventStatus, events[0].Kind)
		assert.Equal(t, media.StatusPlaying, events[0].Status)
		assert.Equal(t, media.EventMetadata, events[1].Kind)
		assert.Equal(t, 0, s.Subscribers())
	})

	t.Run("auto apply follows issued operations", func(t *testing.T) {
		s := media.NewMemorySession("player", media.WithAutoApply())
		require.NoError(t, s.Issue(context.Background(), media.OpPlay))
		assert.Equal(t, media.StatusPlaying, s.Status())
		require.NoError(t, s.Issue(context.Background(), media.OpPause))
		assert.Equal(t, media.StatusPaused, s.Status())
		assert.Equal(t, []media.Operation{media.OpPlay, media.OpPause}, s.Issued())
	})

	t.Run("subscription can be denied", func(t *testing.T) {
		s := media.NewMemorySession("player")
		s.DenySubscriptions(true)
		_, err := s.Subscribe(func(media.SessionEvent) {})
		assert.ErrorIs(t, err, media.ErrSubscriptionDenied)
	})
}

func TestActions(t *testing.T) {
	a := media.ParseActions("play_pause", "skip_next", "bogus")
	assert.True(t, a.Has(media.ActionPlayPause))
	assert.True(t, a.Has(media.ActionSkipNext))
	assert.False(t, a.Has(media.ActionSkipPrevious))
	assert.False(t, a.Has(media.ActionsNone))
	assert.Equal(t, "play_pause|skip_next", a.String())
	assert.Equal(t, media.ActionsAll, media.ParseActions("all"))
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, media.StatusPlaying, media.ParseStatus(" Playing "))
	assert.Equal(t, media.StatusPaused, media.ParseStatus("paused"))
	assert.Equal(t, media.StatusUnknown, media.ParseStatus("buffering"))
}
