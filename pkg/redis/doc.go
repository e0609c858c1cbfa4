// Package redis connects the now-playing service to Redis.
//
// It wraps github.com/redis/go-redis/v9 and provides:
//
//   - Connect, which retries the initial ping according to Config, and
//     Healthcheck for readiness probes.
//   - CommandListener, a command channel: it subscribes to a pub/sub channel
//     and dispatches every message as a widget action. Payloads are either a
//     bare action name ("next", "PLAY_PAUSE") or JSON ({"action":"next"}).
//   - StatePublisher, which mirrors widget snapshots into Redis: the latest
//     state is stored under a key and published on a channel, so other
//     processes can render or react to it.
//
// # Usage
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	listener := redis.NewCommandListener(client, service, redis.WithChannel(cfg.CommandChannel))
//	go listener.Run(ctx)
//
//	sub := hub.Subscribe(ctx)
//	publisher := redis.NewStatePublisher(client, redis.WithStateKey(cfg.StateKey))
//	go publisher.Run(ctx, sub.Updates())
//
// # Errors
//
// Connection failures are reported as ErrRedisNotReady joined with the
// driver error. Malformed command payloads are logged and skipped by the
// listener; ParseCommand returns command.ErrUnknownAction for them.
package redis
