package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/digistall/digistall/internal/core/domain"
)

const (
	listingKey = "marketplace:listing"
	listingTTL = 30 * time.Second
)

// RedisAdapter caches the marketplace listing on the read side. Stock truth
// stays in the locked item rows; the cache only shortens the hot listing
// path and is invalidated on every item mutation.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetListing(ctx context.Context) ([]domain.Item, bool, error) {
	raw, err := r.client.Get(ctx, listingKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var items []domain.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (r *RedisAdapter) SetListing(ctx context.Context, items []domain.Item) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, listingKey, raw, listingTTL).Err()
}

func (r *RedisAdapter) InvalidateListing(ctx context.Context) error {
	return r.client.Del(ctx, listingKey).Err()
}
