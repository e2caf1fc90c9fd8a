package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carcare/internal/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockPrefix      = "lock:"
	rateLimitPrefix = "rate_limit:"
)

var errNilClient = errors.New("redis client is nil")

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard implements per-booking action locks and per-user rate limits
// shared by every API instance.
type RedisGuard struct {
	client *redis.Client
}

// NewRedisClient builds a client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisGuard(client *redis.Client) *RedisGuard {
	return &RedisGuard{client: client}
}

func (g *RedisGuard) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if g.client == nil {
		return "", false, errNilClient
	}
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, lockPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (g *RedisGuard) ReleaseLock(ctx context.Context, key, token string) error {
	if g.client == nil {
		return errNilClient
	}
	if err := releaseScript.Run(ctx, g.client, []string{lockPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}

// CheckRateLimit counts calls in a fixed window starting at the first call.
func (g *RedisGuard) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if g.client == nil {
		return false, errNilClient
	}
	rk := rateLimitPrefix + key
	count, err := g.client.Incr(ctx, rk).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	if count == 1 {
		if err := g.client.Expire(ctx, rk, window).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return count <= int64(limit), nil
}

// Ping checks the connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close closes the client if set.
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
