package deduction

import (
	"context"
	"log"
	"time"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories"
)

// Scan returns the orders whose grace period has elapsed and which still
// have outstanding deductions. It is a pure function of its inputs so the
// eligibility rule can be tested without real clocks or timers.
//
// The grace period is a debounce, not a correctness requirement: staff edit
// orders heavily right after saving, and deducting on every save would
// churn stock. The delta-based engine is correct whenever it runs.
func Scan(orders []*models.Order, now time.Time, gracePeriod time.Duration) []*models.Order {
	var eligible []*models.Order
	for _, order := range orders {
		if order.Status != models.OrderStatusPending {
			continue
		}
		if order.IngredientsDeducted {
			continue
		}
		if now.Sub(order.LastSavedAt) < gracePeriod {
			continue
		}
		eligible = append(eligible, order)
	}
	return eligible
}

// Scheduler periodically scans the local pending orders and runs the
// deduction engine on the eligible ones. Overlapping ticks are safe: the
// engine's delta guard makes reprocessing a no-op.
type Scheduler struct {
	engine      *Engine
	orders      repositories.OrderRepository
	gracePeriod time.Duration
	interval    time.Duration
	now         func() time.Time
}

func NewScheduler(engine *Engine, orders repositories.OrderRepository, gracePeriod, interval time.Duration) *Scheduler {
	return &Scheduler{
		engine:      engine,
		orders:      orders,
		gracePeriod: gracePeriod,
		interval:    interval,
		now:         time.Now,
	}
}

// RunOnce performs a single scan-and-deduct pass, persisting the updated
// deduction bookkeeping for every processed order.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return err
	}

	for _, order := range Scan(orders, s.now(), s.gracePeriod) {
		result := s.engine.Deduct(ctx, order)
		if err := s.orders.Save(ctx, order); err != nil {
			log.Printf("failed to persist deduction bookkeeping for order %s: %v", order.ID, err)
			continue
		}
		if len(result.Failures) > 0 {
			log.Printf("order %s partially deducted: %d item(s) ok, %d ingredient failure(s)",
				order.ID, len(result.DeductedItemIDs), len(result.Failures))
		} else if len(result.DeductedItemIDs) > 0 {
			log.Printf("order %s: deducted ingredients for %d item(s)", order.ID, len(result.DeductedItemIDs))
		}
	}
	return nil
}

// Run ticks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				log.Printf("deduction scan failed: %v", err)
			}
		}
	}
}
