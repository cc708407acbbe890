package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore wraps a redis client used for state that must outlive the process.
type RedisStore struct {
	Client *redis.Client
	// AppID namespaces keys so several apps can share one Redis.
	AppID string
}

// InitRedis connects to Redis at addr and returns a RedisStore.
func InitRedis(ctx context.Context, addr, appID string) (*RedisStore, error) {
	rs := &RedisStore{
		Client: redis.NewClient(&redis.Options{Addr: addr}),
		AppID:  appID,
	}

	if err := redisotel.InstrumentTracing(rs.Client); err != nil {
		return nil, fmt.Errorf("failed to instrument redis tracing: %w", err)
	}

	if err := rs.Client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	zap.L().Info("Connected to Redis", zap.String("addr", addr))
	return rs, nil
}

func (r *RedisStore) promptedKey() string {
	return fmt.Sprintf("consent:prompted:%s", r.AppID)
}

// Prompted reports whether the tracking prompt was shown by any earlier run.
func (r *RedisStore) Prompted(ctx context.Context) (bool, error) {
	if r == nil || r.Client == nil {
		return false, ErrNilRedisStore
	}
	_, err := r.Client.Get(ctx, r.promptedKey()).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkPrompted records that the tracking prompt has been shown. The flag has
// no expiry.
func (r *RedisStore) MarkPrompted(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return ErrNilRedisStore
	}
	return r.Client.Set(ctx, r.promptedKey(), "1", 0).Err()
}

// Close shuts down the Redis client.
func (r *RedisStore) Close() {
	if r != nil && r.Client != nil {
		if err := r.Client.Close(); err != nil {
			zap.L().Error("redis close", zap.Error(err))
		}
	}
}
