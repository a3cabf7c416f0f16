package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "authcache:"

// TokenCache is a short-TTL cache of validated tokens, keyed by token digest
// so raw bearer tokens never land in Redis. It is strictly best effort:
// Redis failures degrade to provider round-trips.
type TokenCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenCache constructs a cache. A nil client yields a disabled cache.
func NewTokenCache(client *redis.Client, ttl time.Duration) *TokenCache {
	return &TokenCache{client: client, ttl: ttl}
}

// Get returns the cached user for a token, if present.
func (c *TokenCache) Get(ctx context.Context, token string) (*AuthUser, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, cacheKey(token)).Bytes()
	if err != nil {
		return nil, false
	}
	var user AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, false
	}
	return &user, true
}

// Put stores the user behind a token for the configured TTL.
func (c *TokenCache) Put(ctx context.Context, token string, user *AuthUser) {
	if c == nil || c.client == nil || user == nil {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	c.client.Set(ctx, cacheKey(token), raw, c.ttl)
}

// Purge drops the cache entry for a token. Called on every revocation so a
// revoked token can never authenticate from cache.
func (c *TokenCache) Purge(ctx context.Context, token string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, cacheKey(token))
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
