package models

import (
	"strings"
	"time"

	"github.com/lucsky/cuid"
)

// LocalIDPrefix marks order IDs minted on this device before the remote
// store has assigned one. The offline sync service uses it to tell
// unsynced orders apart from already-synced ones.
const LocalIDPrefix = "local_"

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
)

const (
	ItemStatusPending = "pending"
	ItemStatusCooking = "cooking"
	ItemStatusReady   = "ready"
	ItemStatusServed  = "served"
)

const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
)

type Order struct {
	ID           string    `json:"id"`
	OrderNumber  int       `json:"order_number,omitempty"` // self-service orders only
	TableID      string    `json:"table_id,omitempty"`     // dine-in orders only
	CustomerName string    `json:"customer_name,omitempty"`
	Status       string    `json:"status"`
	OrderedAt    time.Time `json:"ordered_at"`
	LastSavedAt  time.Time `json:"last_saved_at"`

	Items []OrderLineItem `json:"items"`

	// Deduction bookkeeping. PreviousDeductedQuantities maps a line-item ID
	// to the quantity already paid for in stock; it only ever grows toward
	// the current quantity, never past it.
	IngredientsDeducted        bool           `json:"ingredients_deducted"`
	DeductedItemIDs            []string       `json:"deducted_item_ids,omitempty"`
	PreviousDeductedQuantities map[string]int `json:"previous_deducted_quantities,omitempty"`

	PaymentMethod string  `json:"payment_method,omitempty"`
	FinalAmount   float64 `json:"final_amount,omitempty"`
}

type OrderLineItem struct {
	ID              string    `json:"id"` // menu item ID, or a batch sub-ID after multiple save cycles
	MenuItemID      string    `json:"menu_item_id"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	Quantity        int       `json:"quantity"`
	Vegetarian      bool      `json:"vegetarian"`
	Status          string    `json:"status"`
	StatusUpdatedAt time.Time `json:"status_updated_at"`
}

// NewLocalOrderID mints an identifier for an order created while offline
// or before the first remote save.
func NewLocalOrderID() string {
	return LocalIDPrefix + cuid.New()
}

// IsLocalID reports whether id was minted on this device and has not yet
// been replaced by a remote-issued identifier.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// IsDineIn reports whether the order is tied to a table.
func (o *Order) IsDineIn() bool {
	return o.TableID != ""
}

// DeductedQuantity returns the quantity already deducted for the given
// line item, zero when the item has never been deducted.
func (o *Order) DeductedQuantity(itemID string) int {
	if o.PreviousDeductedQuantities == nil {
		return 0
	}
	return o.PreviousDeductedQuantities[itemID]
}

// RecordDeduction marks itemID as deducted up to qty. Quantities only move
// forward; recording a smaller value than already stored is ignored.
func (o *Order) RecordDeduction(itemID string, qty int) {
	if o.PreviousDeductedQuantities == nil {
		o.PreviousDeductedQuantities = make(map[string]int)
	}
	if qty < o.PreviousDeductedQuantities[itemID] {
		return
	}
	o.PreviousDeductedQuantities[itemID] = qty
	for _, id := range o.DeductedItemIDs {
		if id == itemID {
			return
		}
	}
	o.DeductedItemIDs = append(o.DeductedItemIDs, itemID)
}

// Item returns the line item with the given ID, or nil.
func (o *Order) Item(itemID string) *OrderLineItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// QuantityByName sums quantities across all batches of the same dish, which
// is the number the customer sees for that item.
func (o *Order) QuantityByName(name string) int {
	total := 0
	for i := range o.Items {
		if o.Items[i].Name == name {
			total += o.Items[i].Quantity
		}
	}
	return total
}
