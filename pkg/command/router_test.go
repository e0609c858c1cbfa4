package command_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/media"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

// fakeSessions serves active and optionally swaps in next on the first refresh.
type fakeSessions struct {
	active    media.Session
	next      media.Session
	refreshes int
}

func (f *fakeSessions) Active() media.Session { return f.active }

func (f *fakeSessions) Refresh(context.Context) (bool, error) {
	f.refreshes++
	if f.next != nil {
		f.active, f.next = f.next, nil
		return true, nil
	}
	return false, nil
}

type mockLauncher struct{ mock.Mock }

func (m *mockLauncher) LaunchOpener(app string) (media.Opener, bool) {
	args := m.Called(app)
	o, _ := args.Get(0).(media.Opener)
	return o, args.Bool(1)
}

type mockNotifications struct{ mock.Mock }

func (m *mockNotifications) LookupOpener(app, title string) (media.Opener, bool) {
	args := m.Called(app, title)
	o, _ := args.Get(0).(media.Opener)
	return o, args.Bool(1)
}

type countingOpener struct{ opened int }

func (o *countingOpener) Open(context.Context) error {
	o.opened++
	return nil
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		in   string
		want command.Action
	}{
		{"PLAY_PAUSE", command.ActionPlayPause},
		{"play-pause", command.ActionPlayPause},
		{"next", command.ActionNext},
		{"PREV", command.ActionPrev},
		{"open_app", command.ActionOpenApp},
		{"com.example.nowplaying.ACTION_PLAY_PAUSE", command.ActionPlayPause},
		{"com.example.nowplaying.ACTION_NEXT", command.ActionNext},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := command.ParseAction(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := command.ParseAction("REWIND")
	assert.ErrorIs(t, err, command.ErrUnknownAction)
	assert.Equal(t, "OPEN_APP", command.ActionOpenApp.String())
	assert.Equal(t, "UNKNOWN", command.Action(42).String())
}

func TestDispatchPlayPause(t *testing.T) {
	ctx := context.Background()

	t.Run("playing issues exactly one pause", func(t *testing.T) {
		s := media.NewMemorySession("player", media.WithStatus(media.StatusPlaying))
		r := command.NewRouter(&fakeSessions{active: s})

		p, err := r.Dispatch(ctx, command.ActionPlayPause)
		require.NoError(t, err)
		assert.True(t, p.Issued())
		assert.Equal(t, media.OpPause, p.Operation)
		assert.Equal(t, []media.Operation{media.OpPause}, s.Issued())
	})

	t.Run("anything else issues play", func(t *testing.T) {
		for _, st := range []media.Status{media.StatusPaused, media.StatusStopped, media.StatusUnknown} {
			s := media.NewMemorySession("player", media.WithStatus(st))
			r := command.NewRouter(&fakeSessions{active: s})
			_, err := r.Dispatch(ctx, command.ActionPlayPause)
			require.NoError(t, err)
			assert.Equal(t, []media.Operation{media.OpPlay}, s.Issued(), st.String())
		}
	})

	t.Run("duplicate deliveries read live state", func(t *testing.T) {
		s := media.NewMemorySession("player", media.WithStatus(media.StatusPaused), media.WithAutoApply())
		r := command.NewRouter(&fakeSessions{active: s})
		_, _ = r.Dispatch(ctx, command.ActionPlayPause)
		_, _ = r.Dispatch(ctx, command.ActionPlayPause)
		assert.Equal(t, []media.Operation{media.OpPlay, media.OpPause}, s.Issued())
	})

	t.Run("host errors degrade to no-op", func(t *testing.T) {
		s := media.NewMemorySession("player")
		s.FailIssue(errors.New("remote exception"))
		r := command.NewRouter(&fakeSessions{active: s})

		p, err := r.Dispatch(ctx, command.ActionPlayPause)
		assert.ErrorIs(t, err, command.ErrIssueFailed)
		assert.False(t, p.Issued())
	})
}

func TestDispatchSkips(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled next issues nothing", func(t *testing.T) {
		s := media.NewMemorySession("player", media.WithActions(media.ActionPlayPause|media.ActionSkipPrevious))
		r := command.NewRouter(&fakeSessions{active: s})

		controls := r.Controls(s)
		assert.Equal(t, widget.Affordance{Visible: true, Enabled: false}, controls.Next)
		assert.Equal(t, widget.Affordance{Visible: true, Enabled: true}, controls.Prev)

		_, err := r.Dispatch(ctx, command.ActionNext)
		assert.ErrorIs(t, err, command.ErrActionDisabled)
		assert.Empty(t, s.Issued())

		p, err := r.Dispatch(ctx, command.ActionPrev)
		require.NoError(t, err)
		assert.Equal(t, media.OpSkipPrevious, p.Operation)
	})

	t.Run("advertised next is issued", func(t *testing.T) {
		s := media.NewMemorySession("player", media.WithActions(media.ActionsAll))
		r := command.NewRouter(&fakeSessions{active: s})
		_, err := r.Dispatch(ctx, command.ActionNext)
		require.NoError(t, err)
		assert.Equal(t, []media.Operation{media.OpSkipNext}, s.Issued())
	})
}

func TestDispatchWithoutSession(t *testing.T) {
	ctx := context.Background()

	t.Run("refreshes once and retries", func(t *testing.T) {
		s := media.NewMemorySession("player", media.WithStatus(media.StatusPlaying))
		sessions := &fakeSessions{next: s}
		r := command.NewRouter(sessions)

		_, err := r.Dispatch(ctx, command.ActionPlayPause)
		require.NoError(t, err)
		assert.Equal(t, 1, sessions.refreshes)
		assert.Equal(t, []media.Operation{media.OpPause}, s.Issued())
	})

	t.Run("silent no-op when still nothing", func(t *testing.T) {
		sessions := &fakeSessions{}
		r := command.NewRouter(sessions)

		p, err := r.Dispatch(ctx, command.ActionNext)
		assert.ErrorIs(t, err, command.ErrNoActiveSession)
		assert.False(t, p.Issued())
		assert.Equal(t, 1, sessions.refreshes)
	})

	t.Run("controls hidden", func(t *testing.T) {
		r := command.NewRouter(&fakeSessions{})
		assert.Equal(t, widget.Controls{}, r.Controls(nil))

		withFallback := command.NewRouter(&fakeSessions{}, command.WithFallbackOpener(&countingOpener{}))
		c := withFallback.Controls(nil)
		assert.False(t, c.PlayPause.Visible)
		assert.True(t, c.Open.Actionable())
	})
}

func TestDispatchOpenApp(t *testing.T) {
	ctx := context.Background()

	t.Run("session handle first", func(t *testing.T) {
		own := &countingOpener{}
		s := media.NewMemorySession("player", media.WithOpenHandle(own))
		notifications := &mockNotifications{}
		r := command.NewRouter(&fakeSessions{active: s}, command.WithNotificationLookup(notifications))

		p, err := r.Dispatch(ctx, command.ActionOpenApp)
		require.NoError(t, err)
		assert.Equal(t, command.OpenedViaSession, p.OpenedVia)
		assert.Equal(t, 1, own.opened)
		notifications.AssertNotCalled(t, "LookupOpener", mock.Anything, mock.Anything)
	})

	t.Run("notification before launcher", func(t *testing.T) {
		viaNotification := &countingOpener{}
		s := media.NewMemorySession("player", media.WithTitle("Song", "Band"))
		notifications := &mockNotifications{}
		notifications.On("LookupOpener", "player", "Song").Return(viaNotification, true).Once()
		launcher := &mockLauncher{}

		r := command.NewRouter(&fakeSessions{active: s},
			command.WithNotificationLookup(notifications), command.WithLauncher(launcher))
		p, err := r.Dispatch(ctx, command.ActionOpenApp)
		require.NoError(t, err)
		assert.Equal(t, command.OpenedViaNotification, p.OpenedVia)
		assert.Equal(t, 1, viaNotification.opened)
		notifications.AssertExpectations(t)
		launcher.AssertNotCalled(t, "LaunchOpener", mock.Anything)
	})

	t.Run("launcher lookups are memoized", func(t *testing.T) {
		launched := &countingOpener{}
		s := media.NewMemorySession("player")
		launcher := &mockLauncher{}
		launcher.On("LaunchOpener", "player").Return(launched, true).Once()

		r := command.NewRouter(&fakeSessions{active: s}, command.WithLauncher(launcher))
		for range 3 {
			p, err := r.Dispatch(ctx, command.ActionOpenApp)
			require.NoError(t, err)
			assert.Equal(t, command.OpenedViaLauncher, p.OpenedVia)
		}
		assert.Equal(t, 3, launched.opened)
		launcher.AssertExpectations(t)

		r.ForgetLauncher("player")
		launcher.On("LaunchOpener", "player").Return(nil, false).Once()
		_, err := r.Dispatch(ctx, command.ActionOpenApp)
		assert.ErrorIs(t, err, command.ErrNothingToOpen)
	})

	t.Run("launcher is asked again after a miss", func(t *testing.T) {
		launched := &countingOpener{}
		s := media.NewMemorySession("player")
		launcher := &mockLauncher{}
		launcher.On("LaunchOpener", "player").Return(nil, false).Once()

		r := command.NewRouter(&fakeSessions{active: s}, command.WithLauncher(launcher))
		_, err := r.Dispatch(ctx, command.ActionOpenApp)
		assert.ErrorIs(t, err, command.ErrNothingToOpen)

		launcher.On("LaunchOpener", "player").Return(launched, true).Once()
		p, err := r.Dispatch(ctx, command.ActionOpenApp)
		require.NoError(t, err)
		assert.Equal(t, command.OpenedViaLauncher, p.OpenedVia)
		assert.Equal(t, 1, launched.opened)
		launcher.AssertExpectations(t)
	})

	t.Run("fallback without session", func(t *testing.T) {
		fallback := &countingOpener{}
		r := command.NewRouter(&fakeSessions{}, command.WithFallbackOpener(fallback))
		p, err := r.Dispatch(ctx, command.ActionOpenApp)
		require.NoError(t, err)
		assert.Equal(t, command.OpenedViaFallback, p.OpenedVia)
		assert.Equal(t, 1, fallback.opened)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		r := command.NewRouter(&fakeSessions{active: media.NewMemorySession("player")})
		_, err := r.Dispatch(ctx, command.ActionOpenApp)
		assert.ErrorIs(t, err, command.ErrNothingToOpen)
	})

	t.Run("open errors are reported", func(t *testing.T) {
		failing := media.OpenerFunc(func(context.Context) error { return errors.New("activity not found") })
		s := media.NewMemorySession("player", media.WithOpenHandle(failing))
		r := command.NewRouter(&fakeSessions{active: s})
		_, err := r.Dispatch(ctx, command.ActionOpenApp)
		assert.ErrorIs(t, err, command.ErrOpenFailed)
	})
}

func TestDispatchUnknown(t *testing.T) {
	r := command.NewRouter(&fakeSessions{})
	_, err := r.Dispatch(context.Background(), command.ActionUnknown)
	assert.ErrorIs(t, err, command.ErrUnknownAction)
}
