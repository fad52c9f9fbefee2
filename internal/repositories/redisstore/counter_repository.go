package redisstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/mealpoint/possync/internal/repositories"
)

type CounterRepository struct {
	store *Store
}

func NewCounterRepository(store *Store) *CounterRepository {
	return &CounterRepository{store: store}
}

func (r *CounterRepository) Save(ctx context.Context, counter repositories.Counter) error {
	data, err := json.Marshal(counter)
	if err != nil {
		return fmt.Errorf("failed to marshal counter: %w", err)
	}
	return r.store.client.Set(ctx, r.store.key("counter"), data, 0).Err()
}

// Get returns the zero Counter when none has been stored yet.
func (r *CounterRepository) Get(ctx context.Context) (repositories.Counter, error) {
	var counter repositories.Counter
	data, err := r.store.client.Get(ctx, r.store.key("counter")).Bytes()
	if err == redis.Nil {
		return counter, nil
	}
	if err != nil {
		return counter, err
	}
	if err := json.Unmarshal(data, &counter); err != nil {
		return counter, fmt.Errorf("corrupt counter record: %w", err)
	}
	return counter, nil
}
