// Package catalog maps menu item IDs to their recipes. The catalog is
// loaded from the remote menu store and cached locally so deduction keeps
// working through an outage.
package catalog

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/remote"
	"github.com/mealpoint/possync/internal/repositories"
)

// MenuFetcher is the slice of the remote client the catalog needs.
type MenuFetcher interface {
	FetchMenu(ctx context.Context) (*remote.MenuResponse, error)
}

type Catalog struct {
	client MenuFetcher
	cache  repositories.MenuRepository

	mu    sync.RWMutex
	items map[string]*models.MenuItem
}

func New(client MenuFetcher, cache repositories.MenuRepository) *Catalog {
	return &Catalog{
		client: client,
		cache:  cache,
		items:  make(map[string]*models.MenuItem),
	}
}

// Load refreshes the catalog from the remote menu store, falling back to
// the local cache when the remote call fails.
func (c *Catalog) Load(ctx context.Context) error {
	menu, err := c.client.FetchMenu(ctx)
	if err != nil {
		log.Printf("menu fetch failed, falling back to local cache: %v", err)
		cached, cacheErr := c.cache.GetAll(ctx)
		if cacheErr != nil {
			return fmt.Errorf("menu fetch failed and local cache unreadable: %w", cacheErr)
		}
		if len(cached) == 0 {
			return fmt.Errorf("menu fetch failed and no local cache: %w", err)
		}
		c.replace(cached)
		return nil
	}

	var items []*models.MenuItem
	for _, category := range menu.Categories {
		for _, item := range category.Items {
			if item.Category == "" {
				item.Category = category.Name
			}
			items = append(items, item)
		}
	}
	c.replace(items)

	if err := c.cache.SaveAll(ctx, items); err != nil {
		log.Printf("failed to cache menu locally: %v", err)
	}
	return nil
}

// LoadFromCache fills the catalog from the local cache only.
func (c *Catalog) LoadFromCache(ctx context.Context) error {
	cached, err := c.cache.GetAll(ctx)
	if err != nil {
		return err
	}
	c.replace(cached)
	return nil
}

func (c *Catalog) replace(items []*models.MenuItem) {
	byID := make(map[string]*models.MenuItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	c.mu.Lock()
	c.items = byID
	c.mu.Unlock()
}

// Item looks up a menu item by ID. A miss is an ordinary condition: orders
// may reference dishes that are not inventory-managed or no longer exist.
func (c *Catalog) Item(menuItemID string) (*models.MenuItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[menuItemID]
	return item, ok
}

// Len returns the number of catalogued items.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
