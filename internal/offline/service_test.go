package offline

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

type fakeCreator struct {
	nextID string
	err    error
	calls  int
	seen   []remote.CreateOrderRequest
}

func (f *fakeCreator) CreateOrder(ctx context.Context, req remote.CreateOrderRequest) (string, error) {
	f.calls++
	f.seen = append(f.seen, req)
	if f.err != nil {
		return "", f.err
	}
	return f.nextID, nil
}

func localOrder(t *testing.T, orders *memory.OrderRepository) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:          models.NewLocalOrderID(),
		Status:      models.OrderStatusPending,
		OrderedAt:   time.Now(),
		LastSavedAt: time.Now(),
		Items:       []models.OrderLineItem{{ID: "tea", MenuItemID: "tea", Name: "Tea", Quantity: 1}},
	}
	require.NoError(t, orders.Save(context.Background(), order))
	return order
}

func TestSyncPushesLocalOrders(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	order := localOrder(t, orders)

	creator := &fakeCreator{nextID: "rmt-1001"}
	service := NewService(creator, orders, memory.NewTableRepository())

	result, err := service.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Zero(t, result.Failed)
	assert.Equal(t, 1, creator.calls)

	// The entry is re-keyed to the remote ID, not duplicated.
	_, err = orders.Get(ctx, order.ID)
	assert.Error(t, err, "local-ID entry must be gone")
	synced, err := orders.Get(ctx, "rmt-1001")
	require.NoError(t, err)
	assert.Equal(t, "rmt-1001", synced.ID)
	assert.Len(t, synced.Items, 1)
}

func TestFailedOrdersStayQueued(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	order := localOrder(t, orders)

	creator := &fakeCreator{err: errors.New("backend unreachable")}
	service := NewService(creator, orders, memory.NewTableRepository())

	// Three consecutive failing attempts: the entry is never dropped and
	// never duplicated.
	for attempt := 0; attempt < 3; attempt++ {
		result, err := service.SyncPendingOrders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		assert.Zero(t, result.Synced)
		require.Len(t, result.Errors, 1)
	}
	assert.Equal(t, 3, creator.calls)

	remaining, err := orders.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, order.ID, remaining[0].ID)

	// Connectivity returns; the order syncs once and is not retried again.
	creator.err = nil
	creator.nextID = "rmt-2002"
	result, err := service.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)

	result, err = service.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced, "already-remote entry counted without a call")
	assert.Equal(t, 4, creator.calls, "no further network call after success")
}

func TestSyncRelinksTableToRemoteID(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	tables := memory.NewTableRepository()

	localID := models.NewLocalOrderID()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:      localID,
		TableID: "t4",
		Status:  models.OrderStatusPending,
		Items:   []models.OrderLineItem{{ID: "tea", MenuItemID: "tea", Quantity: 1}},
	}))
	require.NoError(t, tables.Save(ctx, &models.Table{
		ID: "t4", Occupied: true, CurrentOrderID: localID,
	}))

	creator := &fakeCreator{nextID: "rmt-5005"}
	service := NewService(creator, orders, tables)

	result, err := service.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)

	table, err := tables.Get(ctx, "t4")
	require.NoError(t, err)
	assert.True(t, table.Occupied)
	assert.Equal(t, "rmt-5005", table.CurrentOrderID, "table follows the re-keyed order")
}

func TestRemoteIDsAreNotResent(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "rmt-3003",
		Status: models.OrderStatusPending,
	}))

	creator := &fakeCreator{nextID: "unused"}
	service := NewService(creator, orders, memory.NewTableRepository())

	result, err := service.SyncPendingOrders(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Synced)
	assert.Zero(t, creator.calls, "remote-issued IDs are treated as already synced")
}

func TestSyncCarriesOrderFields(t *testing.T) {
	ctx := context.Background()
	orders := memory.NewOrderRepository()
	orderedAt := time.Date(2026, 8, 26, 9, 15, 0, 0, time.UTC)
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:           models.NewLocalOrderID(),
		OrderNumber:  14,
		CustomerName: "walk-in",
		Status:       models.OrderStatusPending,
		OrderedAt:    orderedAt,
		Items:        []models.OrderLineItem{{ID: "tea", MenuItemID: "tea", Quantity: 2}},
	}))

	creator := &fakeCreator{nextID: "rmt-4004"}
	service := NewService(creator, orders, memory.NewTableRepository())

	_, err := service.SyncPendingOrders(ctx)
	require.NoError(t, err)
	require.Len(t, creator.seen, 1)
	req := creator.seen[0]
	assert.Equal(t, 14, req.OrderNumber)
	assert.Equal(t, "walk-in", req.CustomerName)
	assert.Equal(t, orderedAt.Format(time.RFC3339), req.OrderedAt)
	assert.Len(t, req.Items, 1)
}
