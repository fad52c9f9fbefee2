package remote

import "github.com/mealpoint/possync/internal/models"

type CreateOrderRequest struct {
	OrderNumber  int                    `json:"order_number,omitempty"`
	TableID      string                 `json:"table_id,omitempty"`
	CustomerName string                 `json:"customer_name,omitempty"`
	OrderedAt    string                 `json:"ordered_at"`
	Items        []models.OrderLineItem `json:"items"`
}

type CreateOrderResponse struct {
	ID string `json:"id"`
}

// UpdateOrderRequest carries only the items added since the last save; the
// remote store appends them to the existing order.
type UpdateOrderRequest struct {
	NewItems []models.OrderLineItem `json:"new_items"`
}

type UpdateItemStatusRequest struct {
	Status string `json:"status"`
}

type CompletePaymentRequest struct {
	PaymentMethod    string  `json:"payment_method"`
	AmountReceived   float64 `json:"amount_received"`
	ChangeReturned   float64 `json:"change_returned"`
	UPITransactionID string  `json:"upi_transaction_id,omitempty"`
}

type OccupyTableRequest struct {
	OrderID string `json:"order_id"`
}

type ListOrdersResponse struct {
	Orders []*models.Order `json:"orders"`
}

// MenuResponse groups items by category, each with embedded recipe data.
type MenuResponse struct {
	Categories []MenuCategory `json:"categories"`
}

type MenuCategory struct {
	Name  string             `json:"name"`
	Items []*models.MenuItem `json:"items"`
}
