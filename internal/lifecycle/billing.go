package lifecycle

import (
	"errors"

	"github.com/mealpoint/possync/internal/models"
)

const DefaultTaxRate = 0.05

var ErrInsufficientPayment = errors.New("amount received is less than the final amount")

const (
	DiscountFlat    = "flat"
	DiscountPercent = "percent"
)

// Discount is user-selectable: a flat amount off, or a percentage of the
// subtotal. Either way the applied discount is clamped to be non-negative.
type Discount struct {
	Type  string
	Value float64
}

type Bill struct {
	Subtotal    float64
	Tax         float64
	Discount    float64
	FinalAmount float64
}

// ConsolidatedItem is one dish as the customer sees it: all batches of the
// same display name folded together.
type ConsolidatedItem struct {
	Name     string
	Price    float64
	Quantity int
}

// Consolidate groups line items by display name, preserving first-seen
// order. The sum of batch quantities is the quantity shown to the customer.
func Consolidate(items []models.OrderLineItem) []ConsolidatedItem {
	index := make(map[string]int)
	var consolidated []ConsolidatedItem
	for _, item := range items {
		if i, ok := index[item.Name]; ok {
			consolidated[i].Quantity += item.Quantity
			continue
		}
		index[item.Name] = len(consolidated)
		consolidated = append(consolidated, ConsolidatedItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return consolidated
}

// CalculateBill computes subtotal, tax, discount and the final amount for
// an order's line items.
func CalculateBill(items []models.OrderLineItem, taxRate float64, discount Discount) Bill {
	var bill Bill
	for _, item := range Consolidate(items) {
		bill.Subtotal += item.Price * float64(item.Quantity)
	}
	bill.Tax = bill.Subtotal * taxRate

	switch discount.Type {
	case DiscountPercent:
		bill.Discount = bill.Subtotal * discount.Value / 100
	case DiscountFlat:
		bill.Discount = discount.Value
	}
	if bill.Discount < 0 {
		bill.Discount = 0
	}

	bill.FinalAmount = bill.Subtotal + bill.Tax - bill.Discount
	return bill
}

// Change returns what the customer is owed back. A negative change means
// the payment does not cover the bill and must be rejected by the caller.
func Change(amountReceived, finalAmount float64) (float64, error) {
	change := amountReceived - finalAmount
	if change < 0 {
		return change, ErrInsufficientPayment
	}
	return change, nil
}
