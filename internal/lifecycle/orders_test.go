package lifecycle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/remote"
	"github.com/mealpoint/possync/internal/repositories/memory"
)

type fakeWriter struct {
	createID  string
	createErr error
	updateErr error

	created  []remote.CreateOrderRequest
	updated  []remote.UpdateOrderRequest
	occupied []string
}

func (f *fakeWriter) CreateOrder(ctx context.Context, req remote.CreateOrderRequest) (string, error) {
	f.created = append(f.created, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.createID, nil
}

func (f *fakeWriter) UpdateOrder(ctx context.Context, orderID string, req remote.UpdateOrderRequest) error {
	f.updated = append(f.updated, req)
	return f.updateErr
}

func (f *fakeWriter) OccupyTable(ctx context.Context, tableID, orderID string) error {
	f.occupied = append(f.occupied, tableID)
	return nil
}

type fixedNumbers struct{ next int }

func (f *fixedNumbers) NextOrderNumber(ctx context.Context) (int, error) {
	f.next++
	return f.next, nil
}

func newTestEntry(t *testing.T) (*Entry, *fakeWriter, *memory.OrderRepository, *memory.TableRepository) {
	t.Helper()
	writer := &fakeWriter{createID: "rmt-1"}
	orders := memory.NewOrderRepository()
	tables := memory.NewTableRepository()
	entry := NewEntry(writer, orders, tables, &fixedNumbers{})
	entry.now = func() time.Time { return time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC) }
	return entry, writer, orders, tables
}

func menuItem(id, name string, price float64) *models.MenuItem {
	return &models.MenuItem{ID: id, Name: name, Price: price, Available: true}
}

func TestCreateSelfServiceOrderGetsNumber(t *testing.T) {
	entry, writer, _, _ := newTestEntry(t)
	ctx := context.Background()

	item := NewItem(menuItem("tea", "Tea", 20), 2, entry.now())
	order, err := entry.CreateOrder(ctx, "", "walk-in", []models.OrderLineItem{item})
	require.NoError(t, err)

	assert.Equal(t, 1, order.OrderNumber)
	assert.Equal(t, "rmt-1", order.ID, "remote create succeeded, remote ID adopted")
	require.Len(t, writer.created, 1)
	assert.Empty(t, writer.occupied)
}

func TestCreateDineInOrderOccupiesTable(t *testing.T) {
	entry, writer, _, tables := newTestEntry(t)
	ctx := context.Background()

	item := NewItem(menuItem("thali", "Thali", 200), 1, entry.now())
	order, err := entry.CreateOrder(ctx, "t7", "", []models.OrderLineItem{item})
	require.NoError(t, err)

	assert.Zero(t, order.OrderNumber, "dine-in orders are not numbered")
	assert.Equal(t, []string{"t7"}, writer.occupied)

	table, err := tables.Get(ctx, "t7")
	require.NoError(t, err)
	assert.True(t, table.Occupied)
	assert.Equal(t, order.ID, table.CurrentOrderID)
}

func TestCreateOrderRejectsOccupiedTable(t *testing.T) {
	entry, writer, _, tables := newTestEntry(t)
	ctx := context.Background()

	first := NewItem(menuItem("thali", "Thali", 200), 1, entry.now())
	order, err := entry.CreateOrder(ctx, "t1", "", []models.OrderLineItem{first})
	require.NoError(t, err)

	writer.createID = "rmt-2"
	second := NewItem(menuItem("tea", "Tea", 20), 1, entry.now())
	_, err = entry.CreateOrder(ctx, "t1", "", []models.OrderLineItem{second})
	require.ErrorIs(t, err, ErrTableOccupied)

	table, err := tables.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, table.CurrentOrderID, "table stays linked to the first order")
	assert.Len(t, writer.created, 1, "rejected order never reaches the remote store")
}

func TestCreateOrderIgnoresStaleOccupiedFlag(t *testing.T) {
	entry, _, orders, tables := newTestEntry(t)
	ctx := context.Background()

	// The previous party's order completed but the vacate write was lost.
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID: "rmt-old", TableID: "t1", Status: models.OrderStatusCompleted,
	}))
	require.NoError(t, tables.Save(ctx, &models.Table{
		ID: "t1", Occupied: true, CurrentOrderID: "rmt-old",
	}))

	item := NewItem(menuItem("thali", "Thali", 200), 1, entry.now())
	order, err := entry.CreateOrder(ctx, "t1", "", []models.OrderLineItem{item})
	require.NoError(t, err)

	table, err := tables.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, table.CurrentOrderID)
}

func TestCreateOrderOfflineKeepsLocalID(t *testing.T) {
	entry, writer, orders, _ := newTestEntry(t)
	writer.createErr = errors.New("backend unreachable")
	ctx := context.Background()

	item := NewItem(menuItem("tea", "Tea", 20), 1, entry.now())
	order, err := entry.CreateOrder(ctx, "", "", []models.OrderLineItem{item})
	require.NoError(t, err, "remote failure is not fatal")
	assert.True(t, models.IsLocalID(order.ID))

	queued, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, queued.ID, "order queued for offline sync")
}

func TestAddItemsMergesPendingBatch(t *testing.T) {
	entry, writer, orders, _ := newTestEntry(t)
	ctx := context.Background()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "rmt-9",
		Status: models.OrderStatusPending,
		Items:  []models.OrderLineItem{{ID: "tea", MenuItemID: "tea", Name: "Tea", Quantity: 1, Status: models.ItemStatusPending}},
	}))

	updated, err := entry.AddItems(ctx, "rmt-9", []models.OrderLineItem{
		{ID: "tea", MenuItemID: "tea", Name: "Tea", Quantity: 2},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1, "pending batch grows in place")
	assert.Equal(t, 3, updated.Items[0].Quantity)
	assert.Empty(t, writer.updated, "no new items means nothing to push")
}

func TestAddItemsCreatesBatchForCookingDish(t *testing.T) {
	entry, writer, orders, _ := newTestEntry(t)
	ctx := context.Background()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "rmt-9",
		Status: models.OrderStatusPending,
		Items:  []models.OrderLineItem{{ID: "dosa", MenuItemID: "dosa", Name: "Masala Dosa", Quantity: 2, Status: models.ItemStatusCooking}},
	}))

	updated, err := entry.AddItems(ctx, "rmt-9", []models.OrderLineItem{
		{MenuItemID: "dosa", Name: "Masala Dosa", Quantity: 1},
	})
	require.NoError(t, err)
	require.Len(t, updated.Items, 2)
	assert.Equal(t, "dosa#2", updated.Items[1].ID, "later batch gets its own sub-ID")
	assert.Equal(t, models.ItemStatusPending, updated.Items[1].Status)
	assert.Equal(t, 3, updated.QuantityByName("Masala Dosa"))

	require.Len(t, writer.updated, 1)
	require.Len(t, writer.updated[0].NewItems, 1, "only the new batch goes over the wire")
	assert.Equal(t, "dosa#2", writer.updated[0].NewItems[0].ID)
}

func TestAddItemsSkipsRemotePushForLocalOrders(t *testing.T) {
	entry, writer, orders, _ := newTestEntry(t)
	ctx := context.Background()
	localID := models.NewLocalOrderID()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     localID,
		Status: models.OrderStatusPending,
		Items:  []models.OrderLineItem{{ID: "tea", MenuItemID: "tea", Name: "Tea", Quantity: 1, Status: models.ItemStatusCooking}},
	}))

	_, err := entry.AddItems(ctx, localID, []models.OrderLineItem{
		{MenuItemID: "tea", Name: "Tea", Quantity: 1},
	})
	require.NoError(t, err)
	assert.Empty(t, writer.updated, "unsynced order waits for offline sync to carry everything")
}
