package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("catalog cache miss")

const catalogKeyPrefix = "catalog:product:"

// CatalogEntry is a product together with its resolved feature groups.
type CatalogEntry struct {
	Product model.Product        `json:"product"`
	Groups  []model.FeatureGroup `json:"groups"`
}

type CatalogCache interface {
	Get(ctx context.Context, productID uint) (*CatalogEntry, error)
	Set(ctx context.Context, entry *CatalogEntry) error
	Invalidate(ctx context.Context, productID uint) error
}

type redisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	return &redisCatalogCache{client: client, ttl: ttl}
}

func catalogKey(productID uint) string {
	return fmt.Sprintf("%s%d", catalogKeyPrefix, productID)
}

func (c *redisCatalogCache) Get(ctx context.Context, productID uint) (*CatalogEntry, error) {
	data, err := c.client.Get(ctx, catalogKey(productID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get catalog entry: %w", err)
	}

	var entry CatalogEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		logger.Warn("Discarding undecodable catalog cache entry", map[string]interface{}{
			"product_id": productID,
			"error":      err.Error(),
		})
		return nil, ErrCacheMiss
	}

	logger.Debug("Catalog cache hit", map[string]interface{}{
		"product_id": productID,
	})
	return &entry, nil
}

func (c *redisCatalogCache) Set(ctx context.Context, entry *CatalogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal catalog entry: %w", err)
	}

	if err := c.client.Set(ctx, catalogKey(entry.Product.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set catalog entry: %w", err)
	}
	return nil
}

func (c *redisCatalogCache) Invalidate(ctx context.Context, productID uint) error {
	if err := c.client.Del(ctx, catalogKey(productID)).Err(); err != nil {
		return fmt.Errorf("redis del catalog entry: %w", err)
	}

	logger.Debug("Catalog cache entry invalidated", map[string]interface{}{
		"product_id": productID,
	})
	return nil
}
