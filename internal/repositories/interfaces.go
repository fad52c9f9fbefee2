package repositories

import (
	"context"
	"errors"

	"github.com/mealpoint/possync/internal/models"
)

// ErrNotFound is returned by lookups that miss; callers treat it as an
// ordinary condition, not a failure.
var ErrNotFound = errors.New("not found")

// OrderRepository is the local pending-order queue. Orders stay here until
// payment completes; the offline sync service re-keys entries from local to
// remote IDs after a confirmed remote create.
type OrderRepository interface {
	Save(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, id string) (*models.Order, error)
	GetAll(ctx context.Context) ([]*models.Order, error)
	Delete(ctx context.Context, id string) error
	ReplaceID(ctx context.Context, oldID, newID string) error
}

// InventoryRepository keys ingredients case-insensitively by name.
type InventoryRepository interface {
	Save(ctx context.Context, record *models.InventoryRecord) error
	Get(ctx context.Context, name string) (*models.InventoryRecord, error)
	GetAll(ctx context.Context) ([]*models.InventoryRecord, error)
}

// MenuRepository caches the whole menu as one record.
type MenuRepository interface {
	SaveAll(ctx context.Context, items []*models.MenuItem) error
	GetAll(ctx context.Context) ([]*models.MenuItem, error)
}

type TableRepository interface {
	Save(ctx context.Context, table *models.Table) error
	Get(ctx context.Context, id string) (*models.Table, error)
	GetAll(ctx context.Context) ([]*models.Table, error)
}

// Counter is the locally cached order-number counter with its date stamp.
type Counter struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Value int    `json:"value"`
}

type CounterRepository interface {
	Save(ctx context.Context, counter Counter) error
	Get(ctx context.Context) (Counter, error)
}
