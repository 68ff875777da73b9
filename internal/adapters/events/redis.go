package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"consolidation-route-service/internal/ports"

	redis "github.com/redis/go-redis/v9"
)

const DefaultRedisChannel = "route-plans"

// RedisPublisher publishes route plan events over Redis pub/sub.
type RedisPublisher struct {
	rdb     *redis.Client
	channel string
	timeout time.Duration
}

// NewRedisPublisher connects to redisURL (redis://host:port/db).
func NewRedisPublisher(redisURL, channel string) (*RedisPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis publisher: parse url: %w", err)
	}
	return NewRedisPublisherFromClient(redis.NewClient(opt), channel), nil
}

func NewRedisPublisherFromClient(rdb *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel, timeout: 2 * time.Second}
}

func (p *RedisPublisher) PublishRoutePlanned(ctx context.Context, evt ports.RoutePlannedEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("redis publish: marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, p.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", p.channel, err)
	}
	return nil
}

// Ping verifies the connection.
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}

func (p *RedisPublisher) Close() error { return p.rdb.Close() }
