package feed

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisPublisher struct {
	rdb redis.UniversalClient
}

func NewRedisPublisher(rdb redis.UniversalClient) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishBatch вся пачка уходит одним пайплайном
func (p *RedisPublisher) PublishBatch(ctx context.Context, events []Event) error {
	_, err := p.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, ev := range events {
			pipe.Publish(ctx, ev.Channel, ev.Payload)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("feed: redis publish: %w", err)
	}
	return nil
}
