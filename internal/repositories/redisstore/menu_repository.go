package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/mealpoint/possync/internal/models"
)

// MenuRepository caches the whole menu under a single key; the menu is
// small and always read as a unit.
type MenuRepository struct {
	store *Store
}

func NewMenuRepository(store *Store) *MenuRepository {
	return &MenuRepository{store: store}
}

func (r *MenuRepository) SaveAll(ctx context.Context, items []*models.MenuItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal menu: %w", err)
	}
	return r.store.client.Set(ctx, r.store.key("menu"), data, 0).Err()
}

func (r *MenuRepository) GetAll(ctx context.Context) ([]*models.MenuItem, error) {
	data, err := r.store.client.Get(ctx, r.store.key("menu")).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []*models.MenuItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt menu cache: %w", err)
	}
	return items, nil
}
