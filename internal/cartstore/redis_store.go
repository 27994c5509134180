package cartstore

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/repairpos/pkg/redis"
)

type redisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartSlotKey(slot string) string
}

// RedisStore keeps the slot in redis without expiry.
type RedisStore struct {
	client redisClient
}

func NewRedisStore(client redisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.client.CartSlotKey(key))
	if err != nil {
		if redis.IsNil(err) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("load cart slot %q: %w", key, err)
	}
	return []byte(raw), nil
}

func (s *RedisStore) Save(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, s.client.CartSlotKey(key), payload, 0); err != nil {
		return fmt.Errorf("save cart slot %q: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.client.CartSlotKey(key)); err != nil {
		return fmt.Errorf("delete cart slot %q: %w", key, err)
	}
	return nil
}
