// Package cache keeps the slow-moving catalog reads (rooms, categories,
// conventions) in Redis in front of the relational store.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"hebergement/internal/availability"
	"hebergement/internal/models"
)

const keyPrefix = "hebergement:catalog:"

// CatalogCache decorates an availability.Store. Reservations are never
// cached; everything else is served from Redis for ttl and dropped by
// Invalidate when rooms or conventions change.
type CatalogCache struct {
	availability.Store

	redis  *redis.Client
	ttl    time.Duration
	logger *zerolog.Logger
}

func NewCatalogCache(store availability.Store, rdb *redis.Client, ttl time.Duration, logger *zerolog.Logger) *CatalogCache {
	l := logger.With().Str("component", "catalog_cache").Logger()
	return &CatalogCache{Store: store, redis: rdb, ttl: ttl, logger: &l}
}

func (c *CatalogCache) ListRooms(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	key := fmt.Sprintf("%srooms:%d:%d", keyPrefix, filter.HotelID, filter.CategoryID)
	var rooms []models.Room
	if c.readCache(ctx, key, &rooms) {
		return rooms, nil
	}

	rooms, err := c.Store.ListRooms(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, rooms)
	return rooms, nil
}

func (c *CatalogCache) GetCategory(ctx context.Context, id int64) (*models.RoomCategory, error) {
	key := fmt.Sprintf("%scategory:%d", keyPrefix, id)
	var cat models.RoomCategory
	if c.readCache(ctx, key, &cat) {
		return &cat, nil
	}

	found, err := c.Store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, found)
	return found, nil
}

// GetActiveConvention caches per client, category and day. A client without
// a convention is cached too, as JSON null.
func (c *CatalogCache) GetActiveConvention(ctx context.Context, clientID, categoryID int64, ref time.Time) (*models.Convention, error) {
	key := fmt.Sprintf("%sconvention:%d:%d:%s", keyPrefix, clientID, categoryID, models.Day(ref).Format(models.DateLayout))
	var conv *models.Convention
	if c.readCache(ctx, key, &conv) {
		return conv, nil
	}

	conv, err := c.Store.GetActiveConvention(ctx, clientID, categoryID, ref)
	if err != nil {
		return nil, err
	}
	c.writeCache(ctx, key, conv)
	return conv, nil
}

// Invalidate drops every cached catalog entry.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c.redis == nil {
		return nil
	}
	var cursor uint64
	removed := 0
	for {
		keys, next, err := c.redis.Scan(ctx, cursor, keyPrefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("scan catalog keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.redis.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete catalog keys: %w", err)
			}
			removed += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Debug().Int("keys", removed).Msg("Catalog cache invalidated")
	return nil
}

func (c *CatalogCache) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.ttl <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *CatalogCache) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.ttl <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
