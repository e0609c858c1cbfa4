package webui_test

import (
	"bufio"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/nowplaying/pkg/broadcast"
	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/webui"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

type recordingDispatcher struct {
	mu      sync.Mutex
	actions []command.Action
	err     error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, a command.Action) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.actions = append(d.actions, a)
	return nil
}

func (d *recordingDispatcher) got() []command.Action {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]command.Action(nil), d.actions...)
}

func sampleState() widget.RenderState {
	return widget.RenderState{
		Seq:        3,
		HasSession: true,
		App:        "com.example.player",
		Title:      "<b>Song</b>",
		Artist:     "Artist",
		Art:        image.NewRGBA(image.Rect(0, 0, 8, 6)),
		Background: color.RGBA{R: 0x12, G: 0x34, B: 0x56, A: 0xff},
		PlayIcon:   widget.IconPause,
		Controls: widget.Controls{
			PlayPause: widget.Affordance{Visible: true, Enabled: true},
			Next:      widget.Affordance{Visible: true, Enabled: false},
			Prev:      widget.Affordance{Visible: false},
			Open:      widget.Affordance{Visible: true, Enabled: true},
		},
	}
}

func newServer(t *testing.T, d webui.Dispatcher, opts ...webui.Option) (*broadcast.Hub, http.Handler) {
	t.Helper()
	hub := broadcast.NewHub()
	t.Cleanup(func() { _ = hub.Close() })
	return hub, webui.New(hub, d, opts...).Handler()
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestPage(t *testing.T) {
	hub, h := newServer(t, &recordingDispatcher{})
	hub.Push(context.Background(), sampleState())

	rec := do(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, `id="widget"`)
	assert.Contains(t, body, "&lt;b&gt;Song&lt;/b&gt;")
	assert.NotContains(t, body, "<b>Song</b>")
	assert.Contains(t, body, "background-color:#123456")
	assert.Contains(t, body, `@get('/events')`)
	assert.Contains(t, body, `class="next" data-on:click="@post('/actions/next')" disabled`)
	assert.Contains(t, body, `class="prev" data-on:click="@post('/actions/prev')" hidden disabled`)
}

func TestPageWithoutSnapshot(t *testing.T) {
	_, h := newServer(t, &recordingDispatcher{})
	rec := do(h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `id="widget"`)
	assert.NotContains(t, rec.Body.String(), "<img")
}

func TestActions(t *testing.T) {
	t.Run("dispatches parsed actions", func(t *testing.T) {
		d := &recordingDispatcher{}
		_, h := newServer(t, d)

		assert.Equal(t, http.StatusNoContent, do(h, http.MethodPost, "/actions/play_pause").Code)
		assert.Equal(t, http.StatusNoContent, do(h, http.MethodPost, "/actions/NEXT").Code)
		assert.Equal(t, http.StatusNoContent, do(h, http.MethodPost, "/actions/open-app").Code)
		assert.Equal(t, []command.Action{command.ActionPlayPause, command.ActionNext, command.ActionOpenApp}, d.got())
	})

	t.Run("unknown action", func(t *testing.T) {
		d := &recordingDispatcher{}
		_, h := newServer(t, d)
		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/actions/rewind").Code)
		assert.Empty(t, d.got())
	})

	t.Run("dispatcher unavailable", func(t *testing.T) {
		_, h := newServer(t, &recordingDispatcher{err: errors.New("closed")})
		assert.Equal(t, http.StatusServiceUnavailable, do(h, http.MethodPost, "/actions/next").Code)
	})

	t.Run("get is not allowed", func(t *testing.T) {
		_, h := newServer(t, &recordingDispatcher{})
		assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "/actions/next").Code)
	})
}

func TestArt(t *testing.T) {
	hub, h := newServer(t, &recordingDispatcher{})
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/art.png").Code)

	hub.Push(context.Background(), sampleState())
	rec := do(h, http.MethodGet, "/art.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	img, err := png.Decode(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())
}

func TestHealth(t *testing.T) {
	_, h := newServer(t, &recordingDispatcher{})
	rec := do(h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())

	_, h = newServer(t, &recordingDispatcher{}, webui.WithReadinessChecks(
		func(context.Context) error { return nil },
	))
	assert.Equal(t, "READY", do(h, http.MethodGet, "/healthz").Body.String())

	_, h = newServer(t, &recordingDispatcher{}, webui.WithReadinessChecks(
		func(context.Context) error { return errors.New("redis down") },
	))
	rec = do(h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "NOT_READY", rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	_, h := newServer(t, &recordingDispatcher{})
	rec := do(h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	_, h := newServer(t, &recordingDispatcher{})

	rec := do(h, http.MethodGet, "/healthz")
	assert.NotEmpty(t, rec.Header().Get(webui.RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(webui.RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(webui.RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(webui.RequestIDHeader, "bad id!")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id!", rec.Header().Get(webui.RequestIDHeader))
}

func TestRequestIDExtractor(t *testing.T) {
	_, ok := webui.RequestIDExtractor()(context.Background())
	assert.False(t, ok)
}

func TestEventStream(t *testing.T) {
	hub, h := newServer(t, &recordingDispatcher{})
	hub.Push(context.Background(), sampleState())

	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	var sawWidget, sawSignals bool
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() && !(sawWidget && sawSignals) {
		line := scanner.Text()
		if strings.Contains(line, `id="widget"`) {
			sawWidget = true
		}
		if strings.Contains(line, `"background":"#123456"`) {
			sawSignals = true
		}
	}
	assert.True(t, sawWidget)
	assert.True(t, sawSignals)
}

func TestServeAndShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	hub := broadcast.NewHub()
	defer hub.Close()
	srv := webui.New(hub, &recordingDispatcher{}, webui.WithShutdownTimeout(time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestNewFromConfig(t *testing.T) {
	hub := broadcast.NewHub()
	defer hub.Close()
	srv := webui.NewFromConfig(webui.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, hub, &recordingDispatcher{})
	assert.NotNil(t, srv.Handler())
	assert.NoError(t, srv.Shutdown(context.Background()))
}
