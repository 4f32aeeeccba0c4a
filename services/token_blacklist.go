package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist stores invalidated tokens in Redis until their natural
// expiry. A nil *TokenBlacklist is valid and means "blacklisting disabled":
// Add becomes an error and Contains always reports false.
type TokenBlacklist struct {
	client *redis.Client
}

func NewTokenBlacklist(redisURL string) (*TokenBlacklist, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TokenBlacklist{client: client}, nil
}

func (b *TokenBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if b == nil {
		return fmt.Errorf("token blacklist not configured")
	}
	if ttl <= 0 {
		return nil // already expired, nothing to block
	}
	return b.client.Set(ctx, blacklistKey(token), "1", ttl).Err()
}

func (b *TokenBlacklist) Contains(ctx context.Context, token string) bool {
	if b == nil {
		return false
	}
	n, err := b.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		// Redis being down must not lock every user out.
		return false
	}
	return n > 0
}

func (b *TokenBlacklist) Close() error {
	if b == nil {
		return nil
	}
	return b.client.Close()
}

func blacklistKey(token string) string {
	return "blacklist:" + token
}
