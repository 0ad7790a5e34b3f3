// Package cache provides the Redis read cache for post views. The cache is
// strictly an optimization: every entry is invalidated on mutation and carries
// a TTL as a backstop, and all cache failures degrade to a store read.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/genesisbarrios/senfiltro/internal/platform/redis"
	"github.com/genesisbarrios/senfiltro/internal/registry/metrics"
	"github.com/genesisbarrios/senfiltro/internal/registry/models"
)

// PostCache caches decoded posts by id. A nil *PostCache is valid and always
// misses, so wiring stays simple when Redis is not configured.
type PostCache struct {
	client  *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New constructs a PostCache. Returns nil if client is nil.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *PostCache {
	if client == nil {
		return nil
	}
	return &PostCache{client: client, ttl: ttl, logger: logger, metrics: m}
}

func postKey(postID uint64) string {
	return fmt.Sprintf("senfiltro:post:%d", postID)
}

// Get returns the cached post, or nil on miss or cache failure.
func (c *PostCache) Get(ctx context.Context, postID uint64) *models.Post {
	if c == nil {
		return nil
	}
	raw, err := c.client.Get(ctx, postKey(postID)).Bytes()
	if err != nil {
		c.metrics.IncCacheMisses()
		return nil
	}
	var post models.Post
	if err := json.Unmarshal(raw, &post); err != nil {
		c.logger.WarnContext(ctx, "dropping undecodable post cache entry",
			"post_id", postID,
			"error", err.Error(),
		)
		c.Invalidate(ctx, postID)
		c.metrics.IncCacheMisses()
		return nil
	}
	c.metrics.IncCacheHits()
	return &post
}

// Set stores the post under its TTL. Failures are logged, not returned.
func (c *PostCache) Set(ctx context.Context, post *models.Post) {
	if c == nil || post == nil {
		return
	}
	raw, err := json.Marshal(post)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, postKey(post.ID), raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "post cache set failed",
			"post_id", post.ID,
			"error", err.Error(),
		)
	}
}

// Invalidate drops the cached entry for a post. Called on every mutation that
// touches the post, including reactions.
func (c *PostCache) Invalidate(ctx context.Context, postID uint64) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, postKey(postID)).Err(); err != nil {
		c.logger.WarnContext(ctx, "post cache invalidation failed",
			"post_id", postID,
			"error", err.Error(),
		)
	}
}
