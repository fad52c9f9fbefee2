// Package memory holds in-memory implementations of the repository
// interfaces, used in tests and when running without a redis instance.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*models.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]*models.Order)}
}

func (r *OrderRepository) Save(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *order
	copied.Items = append([]models.OrderLineItem(nil), order.Items...)
	r.orders[order.ID] = &copied
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *order
	copied.Items = append([]models.OrderLineItem(nil), order.Items...)
	return &copied, nil
}

func (r *OrderRepository) GetAll(ctx context.Context) ([]*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	orders := make([]*models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		copied := *order
		copied.Items = append([]models.OrderLineItem(nil), order.Items...)
		orders = append(orders, &copied)
	}
	return orders, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *OrderRepository) ReplaceID(ctx context.Context, oldID, newID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[oldID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.ID = newID
	r.orders[newID] = order
	delete(r.orders, oldID)
	return nil
}

type InventoryRepository struct {
	mu      sync.RWMutex
	records map[string]*models.InventoryRecord
}

func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{records: make(map[string]*models.InventoryRecord)}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (r *InventoryRepository) Save(ctx context.Context, record *models.InventoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records[normalize(record.Name)] = &copied
	return nil
}

func (r *InventoryRepository) Get(ctx context.Context, name string) (*models.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[normalize(name)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *record
	return &copied, nil
}

func (r *InventoryRepository) GetAll(ctx context.Context) ([]*models.InventoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*models.InventoryRecord, 0, len(r.records))
	for _, record := range r.records {
		copied := *record
		records = append(records, &copied)
	}
	return records, nil
}

type MenuRepository struct {
	mu    sync.RWMutex
	items []*models.MenuItem
}

func NewMenuRepository() *MenuRepository {
	return &MenuRepository{}
}

func (r *MenuRepository) SaveAll(ctx context.Context, items []*models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]*models.MenuItem(nil), items...)
	return nil
}

func (r *MenuRepository) GetAll(ctx context.Context) ([]*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*models.MenuItem(nil), r.items...), nil
}

type TableRepository struct {
	mu     sync.RWMutex
	tables map[string]*models.Table
}

func NewTableRepository() *TableRepository {
	return &TableRepository{tables: make(map[string]*models.Table)}
}

func (r *TableRepository) Save(ctx context.Context, table *models.Table) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *table
	r.tables[table.ID] = &copied
	return nil
}

func (r *TableRepository) Get(ctx context.Context, id string) (*models.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table, ok := r.tables[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *table
	return &copied, nil
}

func (r *TableRepository) GetAll(ctx context.Context) ([]*models.Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tables := make([]*models.Table, 0, len(r.tables))
	for _, table := range r.tables {
		copied := *table
		tables = append(tables, &copied)
	}
	return tables, nil
}

type CounterRepository struct {
	mu      sync.RWMutex
	counter repositories.Counter
}

func NewCounterRepository() *CounterRepository {
	return &CounterRepository{}
}

func (r *CounterRepository) Save(ctx context.Context, counter repositories.Counter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counter = counter
	return nil
}

func (r *CounterRepository) Get(ctx context.Context) (repositories.Counter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counter, nil
}
