package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories"
)

type InventoryRepository struct {
	store *Store
}

func NewInventoryRepository(store *Store) *InventoryRepository {
	return &InventoryRepository{store: store}
}

// Ingredient names are matched case-insensitively, so keys are lowercased.
func (r *InventoryRepository) recordKey(name string) string {
	return r.store.key("inventory", strings.ToLower(strings.TrimSpace(name)))
}

func (r *InventoryRepository) Save(ctx context.Context, record *models.InventoryRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal inventory record %s: %w", record.Name, err)
	}
	return r.store.client.Set(ctx, r.recordKey(record.Name), data, 0).Err()
}

func (r *InventoryRepository) Get(ctx context.Context, name string) (*models.InventoryRecord, error) {
	data, err := r.store.client.Get(ctx, r.recordKey(name)).Bytes()
	if err == redis.Nil {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var record models.InventoryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("corrupt inventory record %s: %w", name, err)
	}
	return &record, nil
}

func (r *InventoryRepository) GetAll(ctx context.Context) ([]*models.InventoryRecord, error) {
	keys, err := r.store.client.Keys(ctx, r.store.key("inventory", "*")).Result()
	if err != nil {
		return nil, err
	}
	records := make([]*models.InventoryRecord, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var record models.InventoryRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("corrupt inventory record at %s: %w", key, err)
		}
		records = append(records, &record)
	}
	return records, nil
}
