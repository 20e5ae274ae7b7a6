package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mailforge/bulkmail-backend/internal/model"
)

// BulkMailCache is a read-through cache over history lookups. Bulk mail
// records are immutable after creation, so entries never need
// invalidation and expire only to bound memory.
type BulkMailCache struct {
	c   *redis.Client
	ttl time.Duration
}

func NewBulkMailCache(addr, password string, db int, ttl time.Duration) *BulkMailCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &BulkMailCache{c: rdb, ttl: ttl}
}

func (b *BulkMailCache) Close() error { return b.c.Close() }

func key(id string) string { return "bulkmail:" + id }

// Get returns the cached record, or false on a miss. Cache errors are
// logged and treated as misses so the store stays authoritative.
func (b *BulkMailCache) Get(ctx context.Context, id string) (*model.BulkMail, bool) {
	data, err := b.c.Get(ctx, key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Println("[cache] get failed:", err)
		}
		return nil, false
	}

	var m model.BulkMail
	if err := json.Unmarshal(data, &m); err != nil {
		log.Println("[cache] corrupt entry for", id, ":", err)
		return nil, false
	}
	return &m, true
}

// Set stores a record. Failures are logged, never surfaced.
func (b *BulkMailCache) Set(ctx context.Context, m *model.BulkMail) {
	data, err := json.Marshal(m)
	if err != nil {
		log.Println("[cache] marshal failed:", err)
		return
	}
	if err := b.c.Set(ctx, key(m.ID), data, b.ttl).Err(); err != nil {
		log.Println("[cache] set failed:", err)
	}
}
