package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a CollectionStore with Redis-backed caching for reads. Writes
// go through to the base store and evict the cached snapshot.
type Cache struct {
	base  CollectionStore
	redis *redis.Client
	ttl   time.Duration
}

type cachedCollection struct {
	Revision uint64          `json:"revision"`
	Items    json.RawMessage `json:"items"`
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base CollectionStore, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{base: base, redis: client, ttl: ttl}
}

func (c *Cache) ReadCollection(ctx context.Context, userID, collection string) (json.RawMessage, uint64, error) {
	if items, rev, ok := c.loadFromCache(ctx, userID, collection); ok {
		return items, rev, nil
	}

	items, rev, err := c.base.ReadCollection(ctx, userID, collection)
	if err != nil {
		return nil, 0, err
	}

	c.store(ctx, userID, collection, items, rev)
	return items, rev, nil
}

func (c *Cache) WriteCollection(ctx context.Context, userID, collection string, expectedRevision uint64, items json.RawMessage) error {
	if err := c.base.WriteCollection(ctx, userID, collection, expectedRevision, items); err != nil {
		// A conflict means the cached snapshot is stale. Evict it so the
		// caller's retry re-reads from the base store instead of looping on
		// the same outdated revision until the TTL expires.
		if errors.Is(err, ErrRevisionConflict) {
			c.evict(ctx, userID, collection)
		}
		return err
	}

	c.evict(ctx, userID, collection)
	return nil
}

func (c *Cache) loadFromCache(ctx context.Context, userID, collection string) (json.RawMessage, uint64, bool) {
	if c.redis == nil {
		return nil, 0, false
	}
	data, err := c.redis.Get(ctx, cacheKey(userID, collection)).Bytes()
	if err != nil {
		if err != redis.Nil {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, cacheKey(userID, collection)).Err()
		}
		return nil, 0, false
	}
	var cached cachedCollection
	if err := json.Unmarshal(data, &cached); err != nil || cached.Items == nil {
		_ = c.redis.Del(ctx, cacheKey(userID, collection)).Err()
		return nil, 0, false
	}
	return cached.Items, cached.Revision, true
}

func (c *Cache) store(ctx context.Context, userID, collection string, items json.RawMessage, rev uint64) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(cachedCollection{Revision: rev, Items: items})
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, cacheKey(userID, collection), data, c.ttl).Err()
}

func (c *Cache) evict(ctx context.Context, userID, collection string) {
	if c.redis == nil {
		return
	}
	_, _ = c.redis.Del(ctx, cacheKey(userID, collection)).Result()
}

func cacheKey(userID, collection string) string {
	return collection + ":" + userID
}
