package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/nowplaying/pkg/command"
	"github.com/dmitrymomot/nowplaying/pkg/logger"
)

// DefaultCommandChannel is used when no channel is configured.
const DefaultCommandChannel = "nowplaying:commands"

// Dispatcher enqueues widget commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, a command.Action) error
}

// ListenerOption configures a CommandListener.
type ListenerOption func(*CommandListener)

// WithChannel sets the pub/sub channel.
func WithChannel(channel string) ListenerOption {
	return func(l *CommandListener) {
		if channel != "" {
			l.channel = channel
		}
	}
}

// WithListenerLogger sets the logger. Defaults to slog.Default().
func WithListenerLogger(log *slog.Logger) ListenerOption {
	return func(l *CommandListener) {
		if log != nil {
			l.logger = log
		}
	}
}

// CommandListener turns pub/sub messages into widget actions.
type CommandListener struct {
	client     redis.UniversalClient
	dispatcher Dispatcher
	channel    string
	logger     *slog.Logger
}

// NewCommandListener creates a listener. Run starts it.
func NewCommandListener(client redis.UniversalClient, d Dispatcher, opts ...ListenerOption) *CommandListener {
	l := &CommandListener{
		client:     client,
		dispatcher: d,
		channel:    DefaultCommandChannel,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = l.logger.With(logger.Component("redis.commands"), slog.String("channel", l.channel))
	return l
}

// Run subscribes and dispatches messages until ctx is done.
func (l *CommandListener) Run(ctx context.Context) error {
	pubsub := l.client.Subscribe(ctx, l.channel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errors.Join(ErrSubscribeFailed, err)
	}
	l.logger.InfoContext(ctx, "listening for commands")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := l.Handle(ctx, msg.Payload); err != nil {
				l.logger.WarnContext(ctx, "command rejected", slog.String("payload", msg.Payload), logger.Error(err))
			}
		}
	}
}

// Handle parses payload and dispatches the action.
func (l *CommandListener) Handle(ctx context.Context, payload string) error {
	a, err := ParseCommand(payload)
	if err != nil {
		return err
	}
	if err := l.dispatcher.Dispatch(ctx, a); err != nil {
		return fmt.Errorf("dispatch %s: %w", a, err)
	}
	l.logger.DebugContext(ctx, "command dispatched", logger.Action(a))
	return nil
}

type commandPayload struct {
	Action string `json:"action"`
}

// ParseCommand accepts a bare action name or a JSON object with an "action" field.
func ParseCommand(payload string) (command.Action, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "{") {
		var p commandPayload
		if err := json.Unmarshal([]byte(payload), &p); err != nil {
			return command.ActionUnknown, errors.Join(command.ErrUnknownAction, err)
		}
		payload = p.Action
	}
	return command.ParseAction(payload)
}
