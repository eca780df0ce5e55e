package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/intu-mobility/service-ride/internal/domain/geo"
)

// Cache is a read-through Redis cache for geocoding results. Entries are
// keyed by normalized query plus a coarse bias cell so nearby sessions share
// hits. Redis failures are logged and treated as misses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

// key rounds the bias to a ~1km cell; query matching is case-insensitive.
func (c *Cache) key(query string, bias geo.Coordinate) string {
	return fmt.Sprintf("geocode:%.2f:%.2f:%s", bias.Lat, bias.Lng, strings.ToLower(strings.TrimSpace(query)))
}

func (c *Cache) Get(ctx context.Context, query string, bias geo.Coordinate) ([]Candidate, bool) {
	raw, err := c.client.Get(ctx, c.key(query, bias)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("geocode cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var candidates []Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, false
	}
	return candidates, true
}

func (c *Cache) Put(ctx context.Context, query string, bias geo.Coordinate, candidates []Candidate) {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(query, bias), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("geocode cache write failed", zap.Error(err))
	}
}
