package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/campuslink/campuslink-be/internal/models"
)

const keyGroupList = "groups:list:"

// GroupCache caches group listings in Redis. The group list is the hottest
// unauthenticated read (clients poll it), and groups are immutable, so cached
// pages only go stale when a new group is created. A nil *GroupCache is a
// valid no-op cache.
type GroupCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewGroupCache returns a new GroupCache.
func NewGroupCache(rdb *redis.Client, ttl time.Duration) *GroupCache {
	return &GroupCache{rdb: rdb, ttl: ttl}
}

// GetList returns the cached page for the offset/limit pair, or nil on miss.
func (c *GroupCache) GetList(ctx context.Context, offset, limit int) ([]models.Group, error) {
	if c == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, listKey(offset, limit)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var list []models.Group
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// SetList stores a page in cache.
func (c *GroupCache) SetList(ctx context.Context, offset, limit int, list []models.Group) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(offset, limit), b, c.ttl).Err()
}

// Invalidate removes all cached pages (called after a group is created).
func (c *GroupCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, keyGroupList+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func listKey(offset, limit int) string {
	return fmt.Sprintf("%s%d:%d", keyGroupList, offset, limit)
}
