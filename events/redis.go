package events

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// streamMaxLen bounds the stream via XADD MAXLEN ~.
const streamMaxLen int64 = 10000

type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TLSEnabled bool

	// Channel receives every event over pub/sub. Stream, when set, also
	// gets a durable copy. At least one must be set.
	Channel string
	Stream  string
}

// Redis publishes events as JSON to a pub/sub channel and optionally
// appends them to a stream.
type Redis struct {
	rdb     *redis.Client
	channel string
	stream  string
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, cfg RedisConfig) (*Redis, error) {
	rdb := redis.NewClient(cfg.options())
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}
	return NewRedisFromClient(rdb, cfg.Channel, cfg.Stream)
}

func (cfg RedisConfig) options() *redis.Options {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLSEnabled {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return opts
}

// NewRedisFromClient wraps an existing client. The publisher owns it from
// then on and closes it in Close.
func NewRedisFromClient(rdb *redis.Client, channel, stream string) (*Redis, error) {
	if channel == "" && stream == "" {
		return nil, fmt.Errorf("redis: channel or stream is required")
	}
	return &Redis{rdb: rdb, channel: channel, stream: stream}, nil
}

func (r *Redis) Publish(ctx context.Context, e Event) error {
	payload, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("redis: encode %s event: %w", e.Type, err)
	}

	if r.channel != "" {
		if err := r.rdb.Publish(ctx, r.channel, string(payload)).Err(); err != nil {
			return fmt.Errorf("redis: publish %s: %w", r.channel, err)
		}
	}
	if r.stream != "" {
		args := &redis.XAddArgs{
			Stream: r.stream,
			MaxLen: streamMaxLen,
			Approx: true,
			Values: []interface{}{
				"type", string(e.Type),
				"payload", string(payload),
			},
		}
		if err := r.rdb.XAdd(ctx, args).Err(); err != nil {
			return fmt.Errorf("redis: stream append %s: %w", r.stream, err)
		}
	}
	return nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
