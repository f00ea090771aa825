package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenCache keeps token -> user id lookups in Redis with a TTL.
type RedisTokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTokenCache(client *redis.Client, ttl time.Duration) *RedisTokenCache {
	return &RedisTokenCache{client: client, ttl: ttl}
}

// hashToken keeps raw tokens out of Redis keys
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func getTokenKey(token string) string {
	return fmt.Sprintf("auth_token:%s", hashToken(token))
}

func (c *RedisTokenCache) Get(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.client.Get(ctx, getTokenKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to read cached token: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt cached token: %w", err)
	}

	return userID, true, nil
}

func (c *RedisTokenCache) Set(ctx context.Context, key string, userID int64) error {
	if err := c.client.Set(ctx, getTokenKey(key), strconv.FormatInt(userID, 10), c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache token: %w", err)
	}
	return nil
}

func (c *RedisTokenCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, getTokenKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to evict cached token: %w", err)
	}
	return nil
}

// NopCache is used when Redis is disabled.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (int64, bool, error) { return 0, false, nil }
func (NopCache) Set(context.Context, string, int64) error         { return nil }
func (NopCache) Delete(context.Context, string) error             { return nil }
