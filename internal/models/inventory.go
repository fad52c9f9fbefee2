package models

// InventoryRecord tracks one ingredient's stock. CurrentStock and FullStock
// are expressed in Unit; deduction never drives CurrentStock below zero.
type InventoryRecord struct {
	Name         string  `json:"name"` // matched case-insensitively
	Unit         string  `json:"unit"`
	CurrentStock float64 `json:"current_stock"`
	FullStock    float64 `json:"full_stock"`
}

// Table is a physical table. At most one active order may be linked to it.
type Table struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Occupied       bool   `json:"occupied"`
	CurrentOrderID string `json:"current_order_id,omitempty"`
}
