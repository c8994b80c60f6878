// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// response.go provides a Valkey-backed cache for serialized JSON responses
// of the hot public reads: article detail by slug and the comment thread of
// an article. Writes to an article or its comments invalidate both entries.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	articleKeyPrefix = "article:"
	threadKeyPrefix  = "thread:"

	// DefaultResponseTTL is how long a cached response stays fresh.
	DefaultResponseTTL = 5 * time.Minute
)

// ResponseCache stores serialized JSON payloads in Valkey.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResponseCache creates a response cache backed by the given Valkey client.
func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	if ttl == 0 {
		ttl = DefaultResponseTTL
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// get retrieves a cached payload. Returns nil, false on miss or error —
// a broken cache degrades to a DB read, never to a failed request.
func (c *ResponseCache) get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("response cache get error", "key", key, "error", err)
		return nil, false
	}
	return val, true
}

func (c *ResponseCache) set(ctx context.Context, key string, payload []byte) {
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		slog.Warn("response cache set error", "key", key, "error", err)
	}
}

func (c *ResponseCache) del(ctx context.Context, keys ...string) {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("response cache delete error", "error", err)
	}
}

// GetArticle retrieves the cached article-detail payload for a slug.
func (c *ResponseCache) GetArticle(ctx context.Context, slug string) ([]byte, bool) {
	return c.get(ctx, articleKeyPrefix+slug)
}

// SetArticle stores the article-detail payload for a slug.
func (c *ResponseCache) SetArticle(ctx context.Context, slug string, payload []byte) {
	c.set(ctx, articleKeyPrefix+slug, payload)
}

// GetThread retrieves the cached comment-thread payload for an article slug.
func (c *ResponseCache) GetThread(ctx context.Context, slug string) ([]byte, bool) {
	return c.get(ctx, threadKeyPrefix+slug)
}

// SetThread stores the comment-thread payload for an article slug.
func (c *ResponseCache) SetThread(ctx context.Context, slug string, payload []byte) {
	c.set(ctx, threadKeyPrefix+slug, payload)
}

// InvalidateArticle drops the cached detail and thread for a slug. Called
// on any write touching the article or its comments.
func (c *ResponseCache) InvalidateArticle(ctx context.Context, slug string) {
	c.del(ctx, articleKeyPrefix+slug, threadKeyPrefix+slug)
	slog.Debug("response cache invalidated", "slug", slug)
}
