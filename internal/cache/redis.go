package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/expenseshare/server/internal/config"
	"github.com/expenseshare/server/internal/models"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// entryTTL bounds staleness if an invalidation is missed.
const entryTTL = 5 * time.Minute

// RedisGroupDetails implements GroupDetails on Redis.
type RedisGroupDetails struct {
	client *redis.Client
}

// NewRedisGroupDetails connects a Redis-backed group-detail cache.
func NewRedisGroupDetails(cfg config.RedisConfig) *RedisGroupDetails {
	return &RedisGroupDetails{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

func groupKey(groupID uint64) string {
	return fmt.Sprintf("group-details:%d", groupID)
}

// Get returns the cached graph and whether it was present. Redis failures
// degrade to a miss.
func (r *RedisGroupDetails) Get(ctx context.Context, groupID uint64) (*models.Group, bool) {
	val, errGet := r.client.Get(ctx, groupKey(groupID)).Bytes()
	if errGet != nil {
		if !errors.Is(errGet, redis.Nil) {
			log.WithError(errGet).Warn("group cache get failed")
		}
		return nil, false
	}
	var group models.Group
	if errUnmarshal := json.Unmarshal(val, &group); errUnmarshal != nil {
		log.WithError(errUnmarshal).Warn("group cache decode failed")
		return nil, false
	}
	return &group, true
}

// Set stores the graph for a group with a TTL.
func (r *RedisGroupDetails) Set(ctx context.Context, group *models.Group) {
	val, errMarshal := json.Marshal(group)
	if errMarshal != nil {
		log.WithError(errMarshal).Warn("group cache encode failed")
		return
	}
	if errSet := r.client.Set(ctx, groupKey(group.ID), val, entryTTL).Err(); errSet != nil {
		log.WithError(errSet).Warn("group cache set failed")
	}
}

// Invalidate drops the cached graph for a group.
func (r *RedisGroupDetails) Invalidate(ctx context.Context, groupID uint64) {
	if errDel := r.client.Del(ctx, groupKey(groupID)).Err(); errDel != nil {
		log.WithError(errDel).Warn("group cache invalidate failed")
	}
}
