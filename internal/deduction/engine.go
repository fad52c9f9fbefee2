// Package deduction turns edited orders into exactly-once ingredient stock
// deductions. The engine only ever deducts the delta between an item's
// current quantity and the quantity already paid for, which makes
// overlapping or repeated invocations converge on the same inventory state.
package deduction

import (
	"context"
	"errors"
	"log"

	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/repositories"
	"github.com/mealpoint/possync/internal/units"
)

// Recipes is the slice of the menu catalog the engine needs.
type Recipes interface {
	Item(menuItemID string) (*models.MenuItem, bool)
}

const (
	ReasonMissingIngredient = "missing_ingredient"
	ReasonInsufficientStock = "insufficient_stock"
	ReasonUnitMismatch      = "unit_mismatch"
	ReasonStoreError        = "store_error"
)

// IngredientFailure records one ingredient whose deduction did not happen.
// Failures are per-ingredient and non-fatal: the rest of the order is still
// processed, and the failed item stays eligible for a later retry.
type IngredientFailure struct {
	ItemID     string
	ItemName   string
	Ingredient string
	Reason     string
	Err        error
}

type Result struct {
	DeductedItemIDs []string
	SkippedItemIDs  []string // items with no recipe in the catalog
	Failures        []IngredientFailure
	FullyDeducted   bool
}

type Engine struct {
	recipes   Recipes
	inventory repositories.InventoryRepository
}

func NewEngine(recipes Recipes, inventory repositories.InventoryRepository) *Engine {
	return &Engine{recipes: recipes, inventory: inventory}
}

// Deduct applies the order's outstanding quantity deltas to the inventory
// and updates the order's deduction bookkeeping in place. The caller is
// responsible for persisting the mutated order.
//
// Calling Deduct twice on an unchanged order is a no-op; calling it after a
// quantity increase deducts only the increase.
func (e *Engine) Deduct(ctx context.Context, order *models.Order) *Result {
	result := &Result{FullyDeducted: true}

	for i := range order.Items {
		item := &order.Items[i]

		menuItem, ok := e.recipes.Item(item.MenuItemID)
		if !ok {
			// Legitimately unmanaged dish; never blocks the rest of the order.
			log.Printf("no recipe for menu item %s (%s), skipping deduction", item.MenuItemID, item.Name)
			result.SkippedItemIDs = append(result.SkippedItemIDs, item.ID)
			continue
		}

		delta := item.Quantity - order.DeductedQuantity(item.ID)
		if delta <= 0 {
			// Already fully deducted; re-record to keep bookkeeping monotonic.
			order.RecordDeduction(item.ID, item.Quantity)
			continue
		}

		if e.deductItem(ctx, order, item, menuItem, delta, result) {
			order.RecordDeduction(item.ID, item.Quantity)
			result.DeductedItemIDs = append(result.DeductedItemIDs, item.ID)
		} else {
			result.FullyDeducted = false
		}
	}

	order.IngredientsDeducted = result.FullyDeducted
	return result
}

// deductItem subtracts delta units worth of every recipe ingredient,
// best-effort per ingredient. It reports whether all ingredients succeeded.
func (e *Engine) deductItem(ctx context.Context, order *models.Order, item *models.OrderLineItem, menuItem *models.MenuItem, delta int, result *Result) bool {
	ok := true
	fail := func(ingredient, reason string, err error) {
		ok = false
		result.Failures = append(result.Failures, IngredientFailure{
			ItemID:     item.ID,
			ItemName:   item.Name,
			Ingredient: ingredient,
			Reason:     reason,
			Err:        err,
		})
	}

	for _, ing := range menuItem.Ingredients {
		neededInBase, err := units.ToBase(ing.Quantity*float64(delta), ing.Unit)
		if err != nil {
			fail(ing.Name, ReasonUnitMismatch, err)
			continue
		}

		record, err := e.inventory.Get(ctx, ing.Name)
		if errors.Is(err, repositories.ErrNotFound) {
			fail(ing.Name, ReasonMissingIngredient, nil)
			continue
		}
		if err != nil {
			fail(ing.Name, ReasonStoreError, err)
			continue
		}

		if !units.SameGroup(ing.Unit, record.Unit) {
			fail(ing.Name, ReasonUnitMismatch, nil)
			continue
		}

		stockInBase, err := units.ToBase(record.CurrentStock, record.Unit)
		if err != nil {
			fail(ing.Name, ReasonUnitMismatch, err)
			continue
		}
		if stockInBase < neededInBase {
			log.Printf("insufficient stock of %s for order %s item %s: have %.2f, need %.2f (base units)",
				ing.Name, order.ID, item.Name, stockInBase, neededInBase)
			fail(ing.Name, ReasonInsufficientStock, nil)
			continue
		}

		newStock, err := units.FromBase(stockInBase-neededInBase, record.Unit)
		if err != nil {
			fail(ing.Name, ReasonUnitMismatch, err)
			continue
		}
		record.CurrentStock = newStock
		if err := e.inventory.Save(ctx, record); err != nil {
			fail(ing.Name, ReasonStoreError, err)
			continue
		}
	}
	return ok
}
