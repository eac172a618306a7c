package scheduling

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache keeps recent availability responses in Redis. Keys embed a
// per-business generation counter, so invalidation is a single INCR: old keys
// become unreachable and expire on their own TTL. A stale read is harmless
// because the booking guard re-validates before every commit.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

const DefaultCacheTTL = 2 * time.Minute

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) Get(ctx context.Context, businessID uint, key string) ([]DayAvailability, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.fullKey(ctx, businessID, key)).Bytes()
	if err != nil {
		return nil, false
	}
	var days []DayAvailability
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil, false
	}
	return days, true
}

func (c *Cache) Set(ctx context.Context, businessID uint, key string, days []DayAvailability) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(days)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.fullKey(ctx, businessID, key), raw, c.ttl).Err(); err != nil {
		log.Printf("availability cache set failed: %v", err)
	}
}

// Invalidate bumps the business's generation. Called on booking create and
// cancel, and on every weekly schedule, exception, service or timezone write.
func (c *Cache) Invalidate(ctx context.Context, businessID uint) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, genKey(businessID)).Err(); err != nil {
		log.Printf("availability cache invalidate failed for business %d: %v", businessID, err)
	}
}

func (c *Cache) fullKey(ctx context.Context, businessID uint, key string) string {
	gen, err := c.client.Get(ctx, genKey(businessID)).Int64()
	if err != nil {
		gen = 0
	}
	return fmt.Sprintf("avail:%d:%d:%s", businessID, gen, key)
}

func genKey(businessID uint) string {
	return fmt.Sprintf("avail:gen:%d", businessID)
}
