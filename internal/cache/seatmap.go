// Package cache provides a Redis-backed cache for the public seat map.
// The cache is advisory: the booking engine never consults it, and
// every mutating commit invalidates the affected event so readers see
// fresh state quickly.  A nil Redis client disables the cache and all
// operations degrade to no-ops.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "seatmap:"

// SeatMap caches rendered seat-map payloads per event.
type SeatMap struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSeatMap builds a seat-map cache.  client may be nil, in which
// case every lookup misses and every write is a no-op.
func NewSeatMap(client *redis.Client, ttl time.Duration) *SeatMap {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SeatMap{client: client, ttl: ttl}
}

// Get returns the cached payload for the event and whether it was
// present.
func (c *SeatMap) Get(ctx context.Context, eventID uint64) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	val, err := c.client.Get(ctx, key(eventID)).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set stores the payload for the event with the configured TTL.
// Failures are ignored; the cache is best-effort.
func (c *SeatMap) Set(ctx context.Context, eventID uint64, payload []byte) {
	if c.client == nil {
		return
	}
	_ = c.client.Set(ctx, key(eventID), payload, c.ttl).Err()
}

// Invalidate drops the cached payload for one event.
func (c *SeatMap) Invalidate(ctx context.Context, eventID uint64) {
	if c.client == nil {
		return
	}
	_ = c.client.Del(ctx, key(eventID)).Err()
}

// InvalidateAll drops every cached seat map.  Used after a reclaim
// sweep, which may free seats across many events at once.
func (c *SeatMap) InvalidateAll(ctx context.Context) {
	if c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = c.client.Del(ctx, iter.Val()).Err()
	}
}

func key(eventID uint64) string {
	return fmt.Sprintf("%s%d", keyPrefix, eventID)
}
