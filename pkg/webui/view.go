package webui

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/nowplaying/pkg/render"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

// WidgetID is the id of the element patched by the event stream.
const WidgetID = "widget"

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0/bundles/datastar.js"

const pageStyle = `body{margin:0;font-family:system-ui,sans-serif;color:#fff;background:#111}
#widget{display:flex;align-items:center;gap:16px;height:128px;border-radius:28px;margin:16px;overflow:hidden;transition:background-color .3s}
#widget img{height:128px;width:auto}
#widget .meta{flex:1;min-width:0}
#widget .title{font-size:1.2em;font-weight:600;white-space:nowrap;overflow:hidden;text-overflow:ellipsis}
#widget .artist{opacity:.8}
#widget button{font-size:1.4em;background:none;border:0;color:inherit;cursor:pointer}
#widget button:disabled{opacity:.35;cursor:default}`

type button struct {
	action string
	label  string
	aff    widget.Affordance
}

// Page renders the full document. The widget starts from state and is then
// kept current by the /events stream.
func Page(state widget.RenderState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!doctype html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width,initial-scale=1"><title>Now playing</title>`+
			`<script type="module" src="`+datastarScript+`"></script><style>`+pageStyle+`</style></head>`+
			`<body data-init="@get('/events')">`); err != nil {
			return err
		}
		if err := Widget(state).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

// Widget renders the widget fragment for state.
func Widget(state widget.RenderState) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		fmt.Fprintf(&b, `<div id="%s" data-seq="%d" style="background-color:%s">`,
			WidgetID, state.Seq, render.HexColor(state.Background))

		if state.Art != nil {
			fmt.Fprintf(&b, `<img src="%s" alt="">`, templ.EscapeString(artURL(state)))
		}

		fmt.Fprintf(&b, `<div class="meta"><div class="title">%s</div><div class="artist">%s</div></div>`,
			templ.EscapeString(state.Title), templ.EscapeString(state.Artist))

		playLabel := "&#9654;"
		if state.PlayIcon == widget.IconPause {
			playLabel = "&#10074;&#10074;"
		}
		b.WriteString(`<div class="controls">`)
		for _, btn := range []button{
			{"prev", "&#9198;", state.Controls.Prev},
			{"play_pause", playLabel, state.Controls.PlayPause},
			{"next", "&#9197;", state.Controls.Next},
			{"open_app", "&#8599;", state.Controls.Open},
		} {
			writeButton(&b, btn)
		}
		b.WriteString(`</div></div>`)

		_, err := io.WriteString(w, b.String())
		return err
	})
}

func writeButton(b *strings.Builder, btn button) {
	fmt.Fprintf(b, `<button type="button" class="%s" data-on:click="@post('/actions/%s')"`, btn.action, btn.action)
	if !btn.aff.Visible {
		b.WriteString(` hidden`)
	}
	if !btn.aff.Enabled {
		b.WriteString(` disabled`)
	}
	fmt.Fprintf(b, `>%s</button>`, btn.label)
}

// artURL changes whenever the art does, so browsers never show a stale image.
func artURL(state widget.RenderState) string {
	v := "placeholder"
	if !state.ArtPlaceholder {
		v = state.ArtIdentity.String()
	}
	return "/art.png?v=" + url.QueryEscape(v)
}

// signals mirrors the visible state for custom bindings.
func signals(state widget.RenderState) map[string]any {
	return map[string]any{
		"hasSession": state.HasSession,
		"app":        state.App,
		"title":      state.Title,
		"artist":     state.Artist,
		"status":     state.Status.String(),
		"playing":    state.PlayIcon == widget.IconPause,
		"background": render.HexColor(state.Background),
		"seq":        state.Seq,
	}
}
