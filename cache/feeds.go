package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"social/monitoring"
)

const feedKeyPrefix = "feed__"

// FeedsCache holds assembled first feed pages. Only cursor-less pages are
// cached; any cache failure is logged and treated as a miss so the read
// path keeps working with Redis down.
type FeedsCache struct {
	redisClient *redis.Client
	expiration  time.Duration
}

func NewFeedsCache(redisConnection *redis.Client, expiration time.Duration) *FeedsCache {
	return &FeedsCache{
		redisClient: redisConnection,
		expiration:  expiration,
	}
}

// GetFirstPage returns the cached first page for (viewer, limit), or false
// on miss or on any cache error.
func (c *FeedsCache) GetFirstPage(ctx context.Context, viewerID string, limit int) ([]byte, bool) {
	payload, err := c.redisClient.Get(ctx, c.getRedisKey(viewerID, limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Errorf("Error reading feed cache for %s: %v", viewerID, err)
		}
		monitoring.FeedCacheMisses.Inc()
		return nil, false
	}
	monitoring.FeedCacheHits.Inc()
	return payload, true
}

func (c *FeedsCache) SetFirstPage(ctx context.Context, viewerID string, limit int, payload []byte) {
	err := c.redisClient.Set(ctx, c.getRedisKey(viewerID, limit), payload, c.expiration).Err()
	if err != nil {
		log.Errorf("Error writing feed cache for %s: %v", viewerID, err)
	}
}

// InvalidateAll drops every cached feed page. Invalidation is coarse on
// purpose: the write path does not know which viewers follow the author,
// so it wipes the whole prefix rather than serve a stale first page.
func (c *FeedsCache) InvalidateAll(ctx context.Context) {
	iter := c.redisClient.Scan(ctx, 0, feedKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			log.Errorf("Error invalidating feed cache key %s: %v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		log.Errorf("Error scanning feed cache keys: %v", err)
	}
}

func (c *FeedsCache) getRedisKey(viewerID string, limit int) string {
	return fmt.Sprintf("%s%s__%d", feedKeyPrefix, viewerID, limit)
}
