package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultChannel is the Redis pub/sub channel used for academy changes.
const DefaultChannel = "academy:changes"

// Redis is a Feed backed by Redis pub/sub, shared by every server instance.
type Redis struct {
	client  *redis.Client
	channel string
}

var _ Feed = (*Redis)(nil)

// NewRedis connects to the Redis server at url and verifies it responds.
// PRE: url is a redis:// or rediss:// URL
// POST: Returns a ready feed, or an error if the server is unreachable
func NewRedis(url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client, channel: DefaultChannel}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, channel string) *Redis {
	return &Redis{client: client, channel: channel}
}

// Publish sends e to the channel as JSON.
func (r *Redis) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, body).Err()
}

// Subscribe opens a pub/sub subscription and decodes events onto the returned channel.
func (r *Redis) Subscribe(ctx context.Context) (<-chan Event, func()) {
	out := make(chan Event, subscriberBuffer)
	pubsub := r.client.Subscribe(ctx, r.channel)

	var once sync.Once
	done := make(chan struct{})
	cancel := func() {
		once.Do(func() {
			close(done)
			pubsub.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					slog.Warn("changefeed_decode_failed", "error", err)
					continue
				}
				select {
				case out <- e:
				default:
					slog.Warn("changefeed_dropped", "kind", e.Kind)
				}
			}
		}
	}()
	return out, cancel
}

// Close releases the Redis connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}
