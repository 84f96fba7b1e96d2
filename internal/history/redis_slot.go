package history

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisSlot keeps slots as plain redis string keys without expiry.
type RedisSlot struct {
	client *redis.Client
	log    zerolog.Logger
}

func NewRedisSlot(client *redis.Client, logger zerolog.Logger) *RedisSlot {
	logger = logger.With().Str("component", "RedisSlot").Logger()
	return &RedisSlot{client: client, log: logger}
}

func (r *RedisSlot) Read(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSlotEmpty
	}
	return value, err
}

func (r *RedisSlot) Write(ctx context.Context, key, value string) error {
	r.log.Debug().Ctx(ctx).Str("key", key).Str("value", value).Msg("setting slot")
	return r.client.Set(ctx, key, value, 0).Err()
}
