package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories"
)

type TableRepository struct {
	store *Store
}

func NewTableRepository(store *Store) *TableRepository {
	return &TableRepository{store: store}
}

func (r *TableRepository) Save(ctx context.Context, table *models.Table) error {
	data, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal table %s: %w", table.ID, err)
	}
	return r.store.client.Set(ctx, r.store.key("tables", table.ID), data, 0).Err()
}

func (r *TableRepository) Get(ctx context.Context, id string) (*models.Table, error) {
	data, err := r.store.client.Get(ctx, r.store.key("tables", id)).Bytes()
	if err == redis.Nil {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var table models.Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("corrupt table record %s: %w", id, err)
	}
	return &table, nil
}

func (r *TableRepository) GetAll(ctx context.Context) ([]*models.Table, error) {
	keys, err := r.store.client.Keys(ctx, r.store.key("tables", "*")).Result()
	if err != nil {
		return nil, err
	}
	tables := make([]*models.Table, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var table models.Table
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("corrupt table record at %s: %w", key, err)
		}
		tables = append(tables, &table)
	}
	return tables, nil
}
