package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/nowplaying/pkg/logger"
	"github.com/dmitrymomot/nowplaying/pkg/render"
	"github.com/dmitrymomot/nowplaying/pkg/widget"
)

const (
	DefaultStateKey     = "nowplaying:state"
	DefaultStateChannel = "nowplaying:state:updates"
)

// PublisherOption configures a StatePublisher.
type PublisherOption func(*StatePublisher)

func WithStateKey(key string) PublisherOption {
	return func(p *StatePublisher) {
		if key != "" {
			p.key = key
		}
	}
}

func WithStateChannel(channel string) PublisherOption {
	return func(p *StatePublisher) {
		if channel != "" {
			p.channel = channel
		}
	}
}

// WithStateTTL expires the stored snapshot when the service stops refreshing it.
func WithStateTTL(ttl time.Duration) PublisherOption {
	return func(p *StatePublisher) { p.ttl = ttl }
}

// WithPublisherLogger sets the logger. Defaults to slog.Default().
func WithPublisherLogger(log *slog.Logger) PublisherOption {
	return func(p *StatePublisher) {
		if log != nil {
			p.logger = log
		}
	}
}

// StatePublisher mirrors widget snapshots into Redis.
type StatePublisher struct {
	client  redis.UniversalClient
	key     string
	channel string
	ttl     time.Duration
	logger  *slog.Logger
}

func NewStatePublisher(client redis.UniversalClient, opts ...PublisherOption) *StatePublisher {
	p := &StatePublisher{
		client:  client,
		key:     DefaultStateKey,
		channel: DefaultStateChannel,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("redis.state"))
	return p
}

// Run publishes every snapshot received from updates until ctx is done or
// updates is closed. Failures are logged; the next snapshot retries.
func (p *StatePublisher) Run(ctx context.Context, updates <-chan widget.RenderState) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-updates:
			if !ok {
				return nil
			}
			if err := p.Publish(ctx, state); err != nil {
				p.logger.WarnContext(ctx, "state publish failed", logger.Error(err))
			}
		}
	}
}

// Publish stores state under the key and announces it on the channel.
func (p *StatePublisher) Publish(ctx context.Context, state widget.RenderState) error {
	data, err := json.Marshal(NewStateDocument(state))
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	_, err = p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, p.key, data, p.ttl)
		pipe.Publish(ctx, p.channel, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("publish state: %w", err)
	}
	return nil
}

// StateDocument is the JSON form of a snapshot. Art is not included.
type StateDocument struct {
	Seq        uint64          `json:"seq"`
	HasSession bool            `json:"has_session"`
	Token      string          `json:"token,omitempty"`
	App        string          `json:"app,omitempty"`
	Title      string          `json:"title"`
	Artist     string          `json:"artist"`
	Status     string          `json:"status"`
	Playing    bool            `json:"playing"`
	Background string          `json:"background"`
	Art        string          `json:"art,omitempty"`
	Controls   map[string]bool `json:"controls"`
}

// NewStateDocument converts state. Controls lists the actionable buttons.
func NewStateDocument(state widget.RenderState) StateDocument {
	doc := StateDocument{
		Seq:        state.Seq,
		HasSession: state.HasSession,
		Token:      state.Token.String(),
		App:        state.App,
		Title:      state.Title,
		Artist:     state.Artist,
		Status:     state.Status.String(),
		Playing:    state.PlayIcon == widget.IconPause,
		Background: render.HexColor(state.Background),
		Controls: map[string]bool{
			"play_pause": state.Controls.PlayPause.Actionable(),
			"next":       state.Controls.Next.Actionable(),
			"prev":       state.Controls.Prev.Actionable(),
			"open_app":   state.Controls.Open.Actionable(),
		},
	}
	if !state.ArtPlaceholder && !state.ArtIdentity.IsZero() {
		doc.Art = state.ArtIdentity.String()
	}
	return doc
}
