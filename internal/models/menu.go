package models

// Ingredient is one recipe requirement: how much of an inventory item a
// single unit of the dish consumes.
type Ingredient struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Quantity float64 `json:"quantity"` // per one unit sold
}

type MenuItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Category    string       `json:"category"`
	Price       float64      `json:"price"`
	Vegetarian  bool         `json:"vegetarian"`
	Available   bool         `json:"available"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}
