// Package offline pushes orders created during a disconnection to the
// remote store once connectivity returns. Entries are never dropped on
// failure; the queue only shrinks after a confirmed remote success.
package offline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/remote"
	"github.com/mealpoint/possync/internal/repositories"
)

// OrderCreator is the slice of the remote client the service needs.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req remote.CreateOrderRequest) (string, error)
}

type Service struct {
	remote OrderCreator
	orders repositories.OrderRepository
	tables repositories.TableRepository
}

func NewService(remoteClient OrderCreator, orders repositories.OrderRepository, tables repositories.TableRepository) *Service {
	return &Service{remote: remoteClient, orders: orders, tables: tables}
}

type Result struct {
	Synced int
	Failed int
	Errors []error
}

// SyncPendingOrders walks the local pending-order queue and pushes every
// order that still carries a locally minted ID. Orders whose ID already
// looks remote-issued are counted as synced without a network call. Failed
// entries stay queued for the next attempt.
func (s *Service) SyncPendingOrders(ctx context.Context) (Result, error) {
	var result Result

	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to read pending-order queue: %w", err)
	}

	for _, order := range orders {
		if !models.IsLocalID(order.ID) {
			result.Synced++
			continue
		}

		remoteID, err := s.remote.CreateOrder(ctx, buildCreateRequest(order))
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}

		// Remote create confirmed; re-key so this entry is never pushed again.
		if err := s.orders.ReplaceID(ctx, order.ID, remoteID); err != nil {
			log.Printf("order %s synced as %s but local re-key failed, duplicate push possible: %v", order.ID, remoteID, err)
			result.Errors = append(result.Errors, fmt.Errorf("order %s: re-key to %s: %w", order.ID, remoteID, err))
		} else if order.IsDineIn() {
			s.relinkTable(ctx, order.TableID, order.ID, remoteID)
		}
		result.Synced++
	}

	if result.Failed > 0 {
		log.Printf("offline sync: %d order(s) pushed, %d left queued", result.Synced, result.Failed)
	}
	return result, nil
}

// relinkTable swaps the table's stale local order reference for the
// remote-issued ID, so checkout later clears the right linkage.
func (s *Service) relinkTable(ctx context.Context, tableID, oldID, newID string) {
	table, err := s.tables.Get(ctx, tableID)
	if err != nil || table.CurrentOrderID != oldID {
		return
	}
	table.CurrentOrderID = newID
	if err := s.tables.Save(ctx, table); err != nil {
		log.Printf("table %s still references %s, re-link failed: %v", tableID, oldID, err)
	}
}

func buildCreateRequest(order *models.Order) remote.CreateOrderRequest {
	return remote.CreateOrderRequest{
		OrderNumber:  order.OrderNumber,
		TableID:      order.TableID,
		CustomerName: order.CustomerName,
		OrderedAt:    order.OrderedAt.Format(time.RFC3339),
		Items:        order.Items,
	}
}
