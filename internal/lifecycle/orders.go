package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/remote"
	"github.com/mealpoint/possync/internal/repositories"
)

// ErrTableOccupied is returned when a dine-in order targets a table that is
// already linked to another active order.
var ErrTableOccupied = errors.New("table already has an active order")

// NumberAllocator hands out the next daily order number for self-service
// orders.
type NumberAllocator interface {
	NextOrderNumber(ctx context.Context) (int, error)
}

// OrderWriter is the slice of the remote client the order-entry flow needs.
type OrderWriter interface {
	CreateOrder(ctx context.Context, req remote.CreateOrderRequest) (string, error)
	UpdateOrder(ctx context.Context, orderID string, req remote.UpdateOrderRequest) error
	OccupyTable(ctx context.Context, tableID, orderID string) error
}

// Entry handles order creation and edits coming from the order screen.
type Entry struct {
	remote    OrderWriter
	orders    repositories.OrderRepository
	tables    repositories.TableRepository
	numbering NumberAllocator
	now       func() time.Time
}

func NewEntry(remoteClient OrderWriter, orders repositories.OrderRepository, tables repositories.TableRepository, numbering NumberAllocator) *Entry {
	return &Entry{
		remote:    remoteClient,
		orders:    orders,
		tables:    tables,
		numbering: numbering,
		now:       time.Now,
	}
}

// NewItem builds a pending line item from a menu item and quantity.
func NewItem(menuItem *models.MenuItem, quantity int, now time.Time) models.OrderLineItem {
	return models.OrderLineItem{
		ID:              menuItem.ID,
		MenuItemID:      menuItem.ID,
		Name:            menuItem.Name,
		Price:           menuItem.Price,
		Quantity:        quantity,
		Vegetarian:      menuItem.Vegetarian,
		Status:          models.ItemStatusPending,
		StatusUpdatedAt: now,
	}
}

// CreateOrder saves a new order locally and attempts the remote create. A
// remote failure is not fatal: the order keeps its local ID and the offline
// sync service pushes it later. Self-service orders get a daily number; a
// dine-in order additionally occupies its table.
func (e *Entry) CreateOrder(ctx context.Context, tableID, customerName string, items []models.OrderLineItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("an order needs at least one item")
	}
	if tableID != "" {
		if err := e.ensureTableVacant(ctx, tableID); err != nil {
			return nil, err
		}
	}
	now := e.now()

	order := &models.Order{
		ID:           models.NewLocalOrderID(),
		TableID:      tableID,
		CustomerName: customerName,
		Status:       models.OrderStatusPending,
		OrderedAt:    now,
		LastSavedAt:  now,
		Items:        items,
	}

	if !order.IsDineIn() {
		number, err := e.numbering.NextOrderNumber(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate order number: %w", err)
		}
		order.OrderNumber = number
	}

	remoteID, err := e.remote.CreateOrder(ctx, remote.CreateOrderRequest{
		OrderNumber:  order.OrderNumber,
		TableID:      order.TableID,
		CustomerName: order.CustomerName,
		OrderedAt:    order.OrderedAt.Format(time.RFC3339),
		Items:        order.Items,
	})
	if err != nil {
		log.Printf("remote create for order %s failed, queued for offline sync: %v", order.ID, err)
	} else {
		order.ID = remoteID
	}

	if err := e.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order locally: %w", err)
	}

	if order.IsDineIn() {
		e.occupyTable(ctx, order.TableID, order.ID)
	}
	return order, nil
}

// AddItems applies an order edit. A new quantity of a dish that is already
// past the pending stage becomes a separate batch with its own sub-ID, so
// the kitchen tracks it independently; a still-pending batch of the same
// menu item just grows. Only the genuinely new items go over the wire.
func (e *Entry) AddItems(ctx context.Context, orderID string, items []models.OrderLineItem) (*models.Order, error) {
	order, err := e.orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", orderID, err)
	}
	if order.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("order %s is already completed", orderID)
	}
	now := e.now()

	var newItems []models.OrderLineItem
	for _, item := range items {
		if merged := mergePending(order, item, now); merged {
			continue
		}
		item.ID = batchID(order, item.MenuItemID)
		item.Status = models.ItemStatusPending
		item.StatusUpdatedAt = now
		order.Items = append(order.Items, item)
		newItems = append(newItems, item)
	}
	order.LastSavedAt = now

	if err := e.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to save order %s locally: %w", orderID, err)
	}

	if len(newItems) > 0 && !models.IsLocalID(order.ID) {
		if err := e.remote.UpdateOrder(ctx, order.ID, remote.UpdateOrderRequest{NewItems: newItems}); err != nil {
			log.Printf("remote update for order %s failed: %v", order.ID, err)
		}
	}
	return order, nil
}

// mergePending folds the added quantity into an existing pending batch of
// the same menu item, reporting whether it did.
func mergePending(order *models.Order, item models.OrderLineItem, now time.Time) bool {
	for i := range order.Items {
		existing := &order.Items[i]
		if existing.MenuItemID == item.MenuItemID && existing.Status == models.ItemStatusPending {
			existing.Quantity += item.Quantity
			existing.StatusUpdatedAt = now
			return true
		}
	}
	return false
}

// batchID derives a distinct sub-ID for a later batch of an already-cooking
// dish: the menu item ID for the first batch, then menuID#2, menuID#3, ...
func batchID(order *models.Order, menuItemID string) string {
	count := 0
	for i := range order.Items {
		if order.Items[i].MenuItemID == menuItemID {
			count++
		}
	}
	if count == 0 {
		return menuItemID
	}
	return fmt.Sprintf("%s#%d", menuItemID, count+1)
}

// ensureTableVacant rejects a second active order on an occupied table. A
// stale occupied flag whose linked order is gone or already completed does
// not block; checkout should have cleared it.
func (e *Entry) ensureTableVacant(ctx context.Context, tableID string) error {
	table, err := e.tables.Get(ctx, tableID)
	if err != nil {
		return nil
	}
	if !table.Occupied || table.CurrentOrderID == "" {
		return nil
	}
	linked, err := e.orders.Get(ctx, table.CurrentOrderID)
	if err != nil || linked.Status == models.OrderStatusCompleted {
		return nil
	}
	return fmt.Errorf("table %s is serving order %s: %w", tableID, linked.ID, ErrTableOccupied)
}

func (e *Entry) occupyTable(ctx context.Context, tableID, orderID string) {
	if err := e.remote.OccupyTable(ctx, tableID, orderID); err != nil {
		log.Printf("remote table occupy for %s failed, local state updated anyway: %v", tableID, err)
	}
	table, err := e.tables.Get(ctx, tableID)
	if err != nil {
		table = &models.Table{ID: tableID}
	}
	table.Occupied = true
	table.CurrentOrderID = orderID
	if err := e.tables.Save(ctx, table); err != nil {
		log.Printf("failed to persist occupied state for table %s: %v", tableID, err)
	}
}
