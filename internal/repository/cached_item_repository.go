package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	itemDomain "github.com/shareit-app/service-booking/internal/domain/item"
)

const itemCacheKeyPrefix = "booking:item:"

// CachedItemRepository is a read-through Redis cache in front of an ItemRepository.
// Only single-item lookups are cached; owner listings always hit the underlying store.
type CachedItemRepository struct {
	next   itemDomain.ItemRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedItemRepository wraps next with a cache backed by client.
func NewCachedItemRepository(next itemDomain.ItemRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedItemRepository {
	return &CachedItemRepository{next: next, client: client, ttl: ttl, logger: logger}
}

func itemCacheKey(id uuid.UUID) string {
	return itemCacheKeyPrefix + id.String()
}

// FindByID serves from cache when possible. Cache failures degrade to the underlying store.
func (r *CachedItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*itemDomain.Item, error) {
	key := itemCacheKey(id)

	raw, err := r.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var it itemDomain.Item
		if jsonErr := json.Unmarshal(raw, &it); jsonErr == nil {
			return &it, nil
		}
		r.logger.Warn("discarding corrupt cached item", zap.String("item_id", id.String()))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("item cache read failed", zap.String("item_id", id.String()), zap.Error(err))
	}

	it, err := r.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// SetNX so a fill racing with Upsert never replaces the fresher copy Upsert wrote.
	if data, err := json.Marshal(it); err == nil {
		if err := r.client.SetNX(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("item cache write failed", zap.String("item_id", id.String()), zap.Error(err))
		}
	}
	return it, nil
}

// FindByOwnerID always reads the underlying store.
func (r *CachedItemRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]itemDomain.Item, error) {
	return r.next.FindByOwnerID(ctx, ownerID)
}

// Upsert writes through and replaces the cached copy with it. If the cache cannot be
// written the key is evicted instead; an error means a stale copy may remain.
func (r *CachedItemRepository) Upsert(ctx context.Context, it itemDomain.Item) error {
	if err := r.next.Upsert(ctx, it); err != nil {
		return err
	}

	key := itemCacheKey(it.ID)
	data, err := json.Marshal(it)
	if err == nil {
		err = r.client.Set(ctx, key, data, r.ttl).Err()
	}
	if err == nil {
		return nil
	}
	r.logger.Warn("item cache refresh failed, evicting", zap.String("item_id", it.ID.String()), zap.Error(err))
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached item: %w", err)
	}
	return nil
}
