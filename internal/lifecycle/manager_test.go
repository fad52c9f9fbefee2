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

type statusCall struct {
	orderID, itemID, status string
}

type fakeRemote struct {
	statusErr  error
	paymentErr error
	vacateErr  error

	statusCalls []statusCall
	payments    []remote.CompletePaymentRequest
	vacated     []string
}

func (f *fakeRemote) UpdateItemStatus(ctx context.Context, orderID, itemID, status string) error {
	f.statusCalls = append(f.statusCalls, statusCall{orderID, itemID, status})
	return f.statusErr
}

func (f *fakeRemote) CompletePayment(ctx context.Context, orderID string, req remote.CompletePaymentRequest) error {
	f.payments = append(f.payments, req)
	return f.paymentErr
}

func (f *fakeRemote) VacateTable(ctx context.Context, tableID string) error {
	f.vacated = append(f.vacated, tableID)
	return f.vacateErr
}

func newTestManager(t *testing.T) (*Manager, *fakeRemote, *memory.OrderRepository, *memory.TableRepository) {
	t.Helper()
	remoteAPI := &fakeRemote{}
	orders := memory.NewOrderRepository()
	tables := memory.NewTableRepository()
	manager := NewManager(remoteAPI, orders, tables, DefaultTaxRate)
	manager.now = func() time.Time { return time.Date(2026, 8, 26, 20, 0, 0, 0, time.UTC) }
	return manager, remoteAPI, orders, tables
}

func TestCanTransitionIsForwardOnly(t *testing.T) {
	assert.True(t, CanTransition(models.ItemStatusPending, models.ItemStatusCooking))
	assert.True(t, CanTransition(models.ItemStatusCooking, models.ItemStatusReady))
	assert.True(t, CanTransition(models.ItemStatusReady, models.ItemStatusServed))

	assert.False(t, CanTransition(models.ItemStatusCooking, models.ItemStatusPending))
	assert.False(t, CanTransition(models.ItemStatusServed, models.ItemStatusReady))
	assert.False(t, CanTransition(models.ItemStatusPending, models.ItemStatusReady), "no skipping")
	assert.False(t, CanTransition("bogus", models.ItemStatusCooking))
}

func TestAdvanceItemStatus(t *testing.T) {
	manager, remoteAPI, orders, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "o1",
		Status: models.OrderStatusPending,
		Items:  []models.OrderLineItem{{ID: "dosa", Name: "Masala Dosa", Status: models.ItemStatusPending}},
	}))

	require.NoError(t, manager.AdvanceItemStatus(ctx, "o1", "dosa", models.ItemStatusCooking))

	saved, err := orders.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusCooking, saved.Items[0].Status)
	assert.Equal(t, []statusCall{{"o1", "dosa", models.ItemStatusCooking}}, remoteAPI.statusCalls)

	err = manager.AdvanceItemStatus(ctx, "o1", "dosa", models.ItemStatusPending)
	assert.Error(t, err, "regression must be rejected")
}

func TestAdvanceSurvivesRemoteFailure(t *testing.T) {
	manager, remoteAPI, orders, _ := newTestManager(t)
	remoteAPI.statusErr = errors.New("backend unreachable")
	ctx := context.Background()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "o1",
		Status: models.OrderStatusPending,
		Items:  []models.OrderLineItem{{ID: "dosa", Status: models.ItemStatusPending}},
	}))

	require.NoError(t, manager.AdvanceItemStatus(ctx, "o1", "dosa", models.ItemStatusCooking))
	saved, err := orders.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusCooking, saved.Items[0].Status, "local state is the source of truth")
}

func TestServeDishMovesOnlyReadyBatches(t *testing.T) {
	manager, _, orders, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "o1",
		Status: models.OrderStatusPending,
		Items: []models.OrderLineItem{
			{ID: "dosa", Name: "Masala Dosa", Status: models.ItemStatusReady, Quantity: 2},
			{ID: "dosa#2", Name: "Masala Dosa", Status: models.ItemStatusReady, Quantity: 1},
			{ID: "dosa#3", Name: "Masala Dosa", Status: models.ItemStatusCooking, Quantity: 2},
			{ID: "tea", Name: "Tea", Status: models.ItemStatusReady, Quantity: 1},
		},
	}))

	moved, err := manager.ServeDish(ctx, "o1", "Masala Dosa")
	require.NoError(t, err)
	assert.Equal(t, 2, moved, "both ready dosa batches move together")

	saved, err := orders.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusServed, saved.Items[0].Status)
	assert.Equal(t, models.ItemStatusServed, saved.Items[1].Status)
	assert.Equal(t, models.ItemStatusCooking, saved.Items[2].Status, "cooking batch untouched")
	assert.Equal(t, models.ItemStatusReady, saved.Items[3].Status, "other dish untouched")
}

func TestServeDishNothingReady(t *testing.T) {
	manager, remoteAPI, orders, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "o1",
		Status: models.OrderStatusPending,
		Items:  []models.OrderLineItem{{ID: "dosa", Name: "Masala Dosa", Status: models.ItemStatusCooking}},
	}))

	moved, err := manager.ServeDish(ctx, "o1", "Masala Dosa")
	require.NoError(t, err)
	assert.Zero(t, moved)
	assert.Empty(t, remoteAPI.statusCalls)
}

func TestCheckoutCompletesOrder(t *testing.T) {
	manager, remoteAPI, orders, tables := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, tables.Save(ctx, &models.Table{ID: "t4", Name: "Table 4", Occupied: true, CurrentOrderID: "o1"}))
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:      "o1",
		TableID: "t4",
		Status:  models.OrderStatusPending,
		Items:   []models.OrderLineItem{{ID: "thali", Name: "Thali", Price: 200, Quantity: 2, Status: models.ItemStatusServed}},
	}))

	bill, err := manager.Checkout(ctx, "o1", PaymentDetails{
		Method:         models.PaymentMethodCash,
		AmountReceived: 500,
	})
	require.NoError(t, err)
	assert.InDelta(t, 400, bill.Subtotal, 1e-9)
	assert.InDelta(t, 420, bill.FinalAmount, 1e-9)

	require.Len(t, remoteAPI.payments, 1)
	assert.InDelta(t, 80, remoteAPI.payments[0].ChangeReturned, 1e-9)

	_, err = orders.Get(ctx, "o1")
	assert.Error(t, err, "completed order leaves the pending set")

	table, err := tables.Get(ctx, "t4")
	require.NoError(t, err)
	assert.False(t, table.Occupied)
	assert.Empty(t, table.CurrentOrderID)
}

func TestCheckoutVacatesTableDespiteRemoteFailure(t *testing.T) {
	manager, remoteAPI, orders, tables := newTestManager(t)
	remoteAPI.vacateErr = errors.New("backend unreachable")
	ctx := context.Background()
	require.NoError(t, tables.Save(ctx, &models.Table{ID: "t4", Occupied: true, CurrentOrderID: "o1"}))
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:      "o1",
		TableID: "t4",
		Status:  models.OrderStatusPending,
		Items:   []models.OrderLineItem{{ID: "tea", Name: "Tea", Price: 20, Quantity: 1}},
	}))

	_, err := manager.Checkout(ctx, "o1", PaymentDetails{Method: models.PaymentMethodCash, AmountReceived: 100})
	require.NoError(t, err)

	table, err := tables.Get(ctx, "t4")
	require.NoError(t, err)
	assert.False(t, table.Occupied, "local table state flips vacant even when the remote call fails")
}

func TestCheckoutRejectsShortPayment(t *testing.T) {
	manager, remoteAPI, orders, _ := newTestManager(t)
	ctx := context.Background()
	require.NoError(t, orders.Save(ctx, &models.Order{
		ID:     "o1",
		Status: models.OrderStatusPending,
		Items:  []models.OrderLineItem{{ID: "thali", Name: "Thali", Price: 200, Quantity: 1}},
	}))

	_, err := manager.Checkout(ctx, "o1", PaymentDetails{Method: models.PaymentMethodCash, AmountReceived: 100})
	assert.ErrorIs(t, err, ErrInsufficientPayment)
	assert.Empty(t, remoteAPI.payments, "no remote payment call on rejection")

	still, err := orders.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, still.Status, "order stays active")
}
