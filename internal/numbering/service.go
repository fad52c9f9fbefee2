// Package numbering allocates the daily sequential number for self-service
// orders. The remote store's view of today's completed orders wins; a local
// date-stamped counter keeps numbers flowing through an outage, accepting
// the documented risk of duplicates across devices.
package numbering

import (
	"context"
	"log"
	"time"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories"
)

const dateLayout = "2006-01-02"

// listPageSize bounds each remote list request. An unbounded request would
// trust the backend's default page size, which can under-count today's max.
const listPageSize = 200

// OrderLister is the slice of the remote client the service needs.
type OrderLister interface {
	ListOrders(ctx context.Context, status string, limit, offset int) ([]*models.Order, error)
}

type Service struct {
	remote   OrderLister
	counters repositories.CounterRepository
	orders   repositories.OrderRepository
	now      func() time.Time
}

func NewService(remote OrderLister, counters repositories.CounterRepository, orders repositories.OrderRepository) *Service {
	return &Service{
		remote:   remote,
		counters: counters,
		orders:   orders,
		now:      time.Now,
	}
}

// NextOrderNumber returns max(today's order numbers) + 1, preferring the
// remote store's completed orders and degrading to locally known state.
// Numbers allocated on the fallback path may collide with another device;
// the allocation is logged so the collision is visible, not hidden.
func (s *Service) NextOrderNumber(ctx context.Context) (int, error) {
	now := s.now()
	today := now.Format(dateLayout)

	if next, ok := s.fromRemote(ctx, now); ok {
		s.persistCounter(ctx, today, next)
		return next, nil
	}

	next := s.fromLocal(ctx, now)
	log.Printf("order number %d allocated from local fallback; may collide with other devices", next)
	s.persistCounter(ctx, today, next)
	return next, nil
}

func (s *Service) fromRemote(ctx context.Context, now time.Time) (int, bool) {
	max := 0
	for offset := 0; ; offset += listPageSize {
		orders, err := s.remote.ListOrders(ctx, models.OrderStatusCompleted, listPageSize, offset)
		if err != nil {
			log.Printf("remote order list unavailable for numbering: %v", err)
			return 0, false
		}
		for _, order := range orders {
			if sameDay(order.OrderedAt, now) && order.OrderNumber > max {
				max = order.OrderNumber
			}
		}
		if len(orders) < listPageSize {
			break
		}
	}
	return max + 1, true
}

// fromLocal recomputes today's maximum from the local pending-order cache,
// folding in the stored counter when it carries today's date.
func (s *Service) fromLocal(ctx context.Context, now time.Time) int {
	today := now.Format(dateLayout)
	max := 0

	counter, err := s.counters.Get(ctx)
	if err != nil {
		log.Printf("failed to read order-number counter: %v", err)
	} else if counter.Date == today {
		max = counter.Value
	}

	pending, err := s.orders.GetAll(ctx)
	if err != nil {
		log.Printf("failed to read local pending orders for numbering: %v", err)
	} else {
		for _, order := range pending {
			if sameDay(order.OrderedAt, now) && order.OrderNumber > max {
				max = order.OrderNumber
			}
		}
	}

	return max + 1
}

func (s *Service) persistCounter(ctx context.Context, date string, value int) {
	if err := s.counters.Save(ctx, repositories.Counter{Date: date, Value: value}); err != nil {
		log.Printf("failed to persist order-number counter: %v", err)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
