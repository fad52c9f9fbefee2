// Package agent wires the reconciliation components together and runs the
// device's background loop: startup offline sync, menu load, the periodic
// deduction scan, and the push-event pump.
package agent

import (
	"context"
	"log"
	"time"

	"github.com/mealpoint/possync/internal/catalog"
	"github.com/mealpoint/possync/internal/deduction"
	"github.com/mealpoint/possync/internal/lifecycle"
	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/numbering"
	"github.com/mealpoint/possync/internal/offline"
	"github.com/mealpoint/possync/internal/remote"
	"github.com/mealpoint/possync/internal/repositories"
	"github.com/mealpoint/possync/internal/repositories/redisstore"
)

type Agent struct {
	Config    *models.Config
	Remote    *remote.Client
	Catalog   *catalog.Catalog
	Engine    *deduction.Engine
	Scheduler *deduction.Scheduler
	Syncer    *offline.Service
	Numbering *numbering.Service
	Manager   *lifecycle.Manager
	Entry     *lifecycle.Entry
	Events    *models.EventQueue

	Orders    repositories.OrderRepository
	Inventory repositories.InventoryRepository
	Tables    repositories.TableRepository

	store *redisstore.Store
}

// New builds an agent backed by the redis local store.
func New(cfg *models.Config) (*Agent, error) {
	store, err := redisstore.NewStore(cfg.RedisAddr, cfg.RedisPassword, cfg.Namespace)
	if err != nil {
		return nil, err
	}

	orders := redisstore.NewOrderRepository(store)
	inventory := redisstore.NewInventoryRepository(store)
	menus := redisstore.NewMenuRepository(store)
	tables := redisstore.NewTableRepository(store)
	counters := redisstore.NewCounterRepository(store)

	refresher := remote.NewAPIRefresher(cfg.RemoteBaseURL, cfg.RefreshToken, cfg.RequestTimeout)
	client := remote.NewClient(cfg.RemoteBaseURL, cfg.AuthToken, cfg.RequestTimeout, refresher)

	cat := catalog.New(client, menus)
	engine := deduction.NewEngine(cat, inventory)
	scheduler := deduction.NewScheduler(engine, orders, cfg.GracePeriod, cfg.ScanInterval)
	syncer := offline.NewService(client, orders, tables)
	nums := numbering.NewService(client, counters, orders)
	manager := lifecycle.NewManager(client, orders, tables, cfg.TaxRate)
	entry := lifecycle.NewEntry(client, orders, tables, nums)

	return &Agent{
		Config:    cfg,
		Remote:    client,
		Catalog:   cat,
		Engine:    engine,
		Scheduler: scheduler,
		Syncer:    syncer,
		Numbering: nums,
		Manager:   manager,
		Entry:     entry,
		Events:    models.NewEventQueue(),
		Orders:    orders,
		Inventory: inventory,
		Tables:    tables,
		store:     store,
	}, nil
}

func (a *Agent) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// Run drives the background loop until the context is cancelled. All
// timers die with the context, so teardown never leaves a tick acting on
// stale state.
func (a *Agent) Run(ctx context.Context) error {
	if result, err := a.Syncer.SyncPendingOrders(ctx); err != nil {
		log.Printf("startup offline sync failed: %v", err)
	} else if result.Synced > 0 || result.Failed > 0 {
		log.Printf("startup offline sync: %d synced, %d still queued", result.Synced, result.Failed)
	}

	if err := a.Catalog.Load(ctx); err != nil {
		log.Printf("menu catalog unavailable, deduction will skip unknown items: %v", err)
	} else {
		log.Printf("menu catalog loaded: %d items", a.Catalog.Len())
	}

	go a.Scheduler.Run(ctx)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			a.drainEvents(ctx)
		}
	}
}

// Notify queues a push event for the next pump tick. The push transport's
// receive loop calls this; it never blocks.
func (a *Agent) Notify(eventType, refID string) {
	a.Events.Enqueue(&models.Event{Time: time.Now(), Type: eventType, RefID: refID})
}

// drainEvents processes every queued push event that is due. Events are
// triggers, not data: each handler recomputes from local state, so
// duplicates and reordering are harmless.
func (a *Agent) drainEvents(ctx context.Context) {
	for {
		next := a.Events.Peek()
		if next == nil || next.Time.After(time.Now()) {
			return
		}
		a.processEvent(ctx, a.Events.Dequeue())
	}
}

func (a *Agent) processEvent(ctx context.Context, event *models.Event) {
	switch event.Type {
	case models.EventOrderCreated, models.EventOrderUpdated, models.EventOrderStatusChanged:
		// An extra scan is safe: the engine's delta guard makes a repeat a
		// no-op, and it converges partially-deducted orders sooner.
		if err := a.Scheduler.RunOnce(ctx); err != nil {
			log.Printf("deduction scan after %s failed: %v", event.Type, err)
		}
	case models.EventInventoryUpdated:
		// Replenished stock makes previously failed deductions retryable.
		if err := a.Scheduler.RunOnce(ctx); err != nil {
			log.Printf("deduction scan after %s failed: %v", event.Type, err)
		}
	default:
		log.Printf("ignoring unknown push event %q", event.Type)
	}
}
