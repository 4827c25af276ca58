package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const presenceKeyPrefix = "presence__"

// PresenceRegistry tracks which users hold an open websocket connection.
// Entries live in Redis with a heartbeat TTL instead of a process-local
// map so that multiple server instances see the same state.
type PresenceRegistry struct {
	redisClient *redis.Client
	expiration  time.Duration
}

func NewPresenceRegistry(redisConnection *redis.Client, expiration time.Duration) *PresenceRegistry {
	return &PresenceRegistry{
		redisClient: redisConnection,
		expiration:  expiration,
	}
}

func (r *PresenceRegistry) SetOnline(ctx context.Context, userID string) {
	err := r.redisClient.Set(ctx, r.getRedisKey(userID), "1", r.expiration).Err()
	if err != nil {
		log.Errorf("Error marking user %s online: %v", userID, err)
	}
}

// Heartbeat extends the presence entry; called from the connection's
// ping loop. An entry that stops receiving heartbeats expires on its own.
func (r *PresenceRegistry) Heartbeat(ctx context.Context, userID string) {
	err := r.redisClient.Expire(ctx, r.getRedisKey(userID), r.expiration).Err()
	if err != nil {
		log.Errorf("Error refreshing presence for user %s: %v", userID, err)
	}
}

func (r *PresenceRegistry) SetOffline(ctx context.Context, userID string) {
	err := r.redisClient.Del(ctx, r.getRedisKey(userID)).Err()
	if err != nil {
		log.Errorf("Error marking user %s offline: %v", userID, err)
	}
}

func (r *PresenceRegistry) IsOnline(ctx context.Context, userID string) bool {
	count, err := r.redisClient.Exists(ctx, r.getRedisKey(userID)).Result()
	if err != nil {
		log.Errorf("Error checking presence for user %s: %v", userID, err)
		return false
	}
	return count > 0
}

func (r *PresenceRegistry) getRedisKey(userID string) string {
	return fmt.Sprintf("%s%s", presenceKeyPrefix, userID)
}
