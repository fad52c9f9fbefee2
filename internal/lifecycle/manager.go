// Package lifecycle owns the per-order, per-line-item status state machine
// and the checkout flow, including the table-occupancy transition. Local
// state is the source of truth for the device; remote writes are attempted
// on every change and self-correct later if they fail.
package lifecycle

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/remote"
	"github.com/mealpoint/possync/internal/repositories"
)

// RemoteAPI is the slice of the remote client the manager needs.
type RemoteAPI interface {
	UpdateItemStatus(ctx context.Context, orderID, itemID, status string) error
	CompletePayment(ctx context.Context, orderID string, req remote.CompletePaymentRequest) error
	VacateTable(ctx context.Context, tableID string) error
}

var statusRank = map[string]int{
	models.ItemStatusPending: 0,
	models.ItemStatusCooking: 1,
	models.ItemStatusReady:   2,
	models.ItemStatusServed:  3,
}

// CanTransition reports whether a line item may move from one status to
// another. Transitions are forward-only; kitchen and billing views never
// regress an item.
func CanTransition(from, to string) bool {
	fromRank, ok := statusRank[from]
	if !ok {
		return false
	}
	toRank, ok := statusRank[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

type Manager struct {
	remote  RemoteAPI
	orders  repositories.OrderRepository
	tables  repositories.TableRepository
	taxRate float64
	now     func() time.Time
}

func NewManager(remoteClient RemoteAPI, orders repositories.OrderRepository, tables repositories.TableRepository, taxRate float64) *Manager {
	if taxRate == 0 {
		taxRate = DefaultTaxRate
	}
	return &Manager{
		remote:  remoteClient,
		orders:  orders,
		tables:  tables,
		taxRate: taxRate,
		now:     time.Now,
	}
}

// AdvanceItemStatus moves one line item a single step forward. The local
// write is authoritative; the remote status update is best-effort.
func (m *Manager) AdvanceItemStatus(ctx context.Context, orderID, itemID, to string) error {
	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("order %s: %w", orderID, err)
	}
	item := order.Item(itemID)
	if item == nil {
		return fmt.Errorf("order %s has no item %s", orderID, itemID)
	}
	if !CanTransition(item.Status, to) {
		return fmt.Errorf("item %s cannot move from %s to %s", itemID, item.Status, to)
	}

	item.Status = to
	item.StatusUpdatedAt = m.now()
	if err := m.orders.Save(ctx, order); err != nil {
		return fmt.Errorf("failed to persist status of item %s: %w", itemID, err)
	}

	if err := m.remote.UpdateItemStatus(ctx, orderID, itemID, to); err != nil {
		log.Printf("remote status update for order %s item %s failed: %v", orderID, itemID, err)
	}
	return nil
}

// ServeDish applies the ready-to-served transition as a batch: every line
// item sharing the dish's display name that is currently ready moves to
// served together. Kitchen staff serve "the dish", not a tracked unit.
// It returns the number of items moved.
func (m *Manager) ServeDish(ctx context.Context, orderID, dishName string) (int, error) {
	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("order %s: %w", orderID, err)
	}

	var servedIDs []string
	for i := range order.Items {
		item := &order.Items[i]
		if item.Name != dishName || item.Status != models.ItemStatusReady {
			continue
		}
		item.Status = models.ItemStatusServed
		item.StatusUpdatedAt = m.now()
		servedIDs = append(servedIDs, item.ID)
	}
	if len(servedIDs) == 0 {
		return 0, nil
	}

	if err := m.orders.Save(ctx, order); err != nil {
		return 0, fmt.Errorf("failed to persist serve of %s: %w", dishName, err)
	}
	for _, itemID := range servedIDs {
		if err := m.remote.UpdateItemStatus(ctx, orderID, itemID, models.ItemStatusServed); err != nil {
			log.Printf("remote status update for order %s item %s failed: %v", orderID, itemID, err)
		}
	}
	return len(servedIDs), nil
}

type PaymentDetails struct {
	Method           string
	AmountReceived   float64
	Discount         Discount
	UPITransactionID string
}

// Checkout completes payment for an order: stamp the final amount, vacate
// the table, and drop the order from the active set. The local table state
// flips to vacant even when the remote vacate call fails; the staff using
// this device just took payment and must never see the table still
// occupied. The remote side self-corrects on the next table-list refresh.
func (m *Manager) Checkout(ctx context.Context, orderID string, payment PaymentDetails) (Bill, error) {
	order, err := m.orders.Get(ctx, orderID)
	if err != nil {
		return Bill{}, fmt.Errorf("order %s: %w", orderID, err)
	}

	bill := CalculateBill(order.Items, m.taxRate, payment.Discount)
	change, err := Change(payment.AmountReceived, bill.FinalAmount)
	if err != nil {
		return bill, err
	}

	order.Status = models.OrderStatusCompleted
	order.PaymentMethod = payment.Method
	order.FinalAmount = bill.FinalAmount

	if err := m.remote.CompletePayment(ctx, orderID, remote.CompletePaymentRequest{
		PaymentMethod:    payment.Method,
		AmountReceived:   payment.AmountReceived,
		ChangeReturned:   change,
		UPITransactionID: payment.UPITransactionID,
	}); err != nil {
		// Payment was taken at the till; the remote record catches up later.
		log.Printf("remote payment completion for order %s failed: %v", orderID, err)
	}

	if order.IsDineIn() {
		m.vacateTable(ctx, order.TableID)
	}

	if err := m.orders.Delete(ctx, orderID); err != nil {
		return bill, fmt.Errorf("failed to remove completed order %s: %w", orderID, err)
	}
	return bill, nil
}

func (m *Manager) vacateTable(ctx context.Context, tableID string) {
	if err := m.remote.VacateTable(ctx, tableID); err != nil {
		log.Printf("remote table vacate for %s failed, local state updated anyway: %v", tableID, err)
	}

	table, err := m.tables.Get(ctx, tableID)
	if err != nil {
		table = &models.Table{ID: tableID}
	}
	table.Occupied = false
	table.CurrentOrderID = ""
	if err := m.tables.Save(ctx, table); err != nil {
		log.Printf("failed to persist vacant state for table %s: %v", tableID, err)
	}
}
