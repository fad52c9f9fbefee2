package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories"
)

type OrderRepository struct {
	store *Store
}

func NewOrderRepository(store *Store) *OrderRepository {
	return &OrderRepository{store: store}
}

func (r *OrderRepository) Save(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order %s: %w", order.ID, err)
	}
	return r.store.client.Set(ctx, r.store.key("orders", "pending", order.ID), data, 0).Err()
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	data, err := r.store.client.Get(ctx, r.store.key("orders", "pending", id)).Bytes()
	if err == redis.Nil {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("corrupt order record %s: %w", id, err)
	}
	return &order, nil
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	keys, err := r.store.client.Keys(ctx, r.store.key("orders", "pending", "*")).Result()
	if err != nil {
		return nil, err
	}
	orders := make([]*models.Order, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.client.Get(ctx, key).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		var order models.Order
		if err := json.Unmarshal(data, &order); err != nil {
			return nil, fmt.Errorf("corrupt order record at %s: %w", key, err)
		}
		orders = append(orders, &order)
	}
	return orders, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.store.client.Del(ctx, r.store.key("orders", "pending", id)).Err()
}

// ReplaceID re-keys an order after the remote store assigns its identifier.
func (r *OrderRepository) ReplaceID(ctx context.Context, oldID, newID string) error {
	order, err := r.Get(ctx, oldID)
	if err != nil {
		return err
	}
	order.ID = newID
	if err := r.Save(ctx, order); err != nil {
		return err
	}
	return r.Delete(ctx, oldID)
}
