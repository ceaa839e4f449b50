package events

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/account-security/internal/domain"
)

// DefaultStream is the Redis stream events are appended to.
const DefaultStream = "account-security.events"

// RedisStreamBus appends every event to a Redis stream with XADD.
type RedisStreamBus struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

// NewRedisStreamBus builds a bus. maxLen <= 0 leaves the stream untrimmed.
func NewRedisStreamBus(client redis.Cmdable, stream string, maxLen int64) *RedisStreamBus {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisStreamBus{client: client, stream: stream, maxLen: maxLen}
}

func (b *RedisStreamBus) Publish(ctx context.Context, event domain.Event) error {
	env, err := NewEnvelope(event)
	if err != nil {
		return err
	}
	args := &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{
			"id":           env.ID.String(),
			"name":         env.Name,
			"aggregate_id": env.AggregateID.String(),
			"occurred_at":  env.OccurredAt.Format(time.RFC3339Nano),
			"payload":      string(env.Payload),
		},
	}
	if b.maxLen > 0 {
		args.MaxLen = b.maxLen
		args.Approx = true
	}
	if err := b.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", b.stream, err)
	}
	return nil
}
