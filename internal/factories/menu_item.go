// Package factories generates demo menu and inventory data so the agent
// can be exercised without a live backend.
package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
	"github.com/mealpoint/possync/internal/models"
	"github.com/mealpoint/possync/internal/units"
)

var fake = faker.New()

// ingredientPool fixes the names and units the generated recipes draw
// from, so generated inventory records always match generated menus.
var ingredientPool = []models.Ingredient{
	{Name: "Chicken", Unit: units.Grams},
	{Name: "Paneer", Unit: units.Grams},
	{Name: "Rice", Unit: units.Grams},
	{Name: "Flour", Unit: units.Kilograms},
	{Name: "Cheese", Unit: units.Grams},
	{Name: "Tomato", Unit: units.Pieces},
	{Name: "Onion", Unit: units.Pieces},
	{Name: "Milk", Unit: units.Milliliters},
	{Name: "Cream", Unit: units.Milliliters},
	{Name: "Oil", Unit: units.Liters},
	{Name: "Butter", Unit: units.Tablespoons},
	{Name: "Sugar", Unit: units.Teaspoons},
}

var dishNames = []string{
	"Margherita Pizza", "Paneer Butter Masala", "Chicken Biryani",
	"Veggie Burger", "Masala Dosa", "Butter Naan", "Tomato Soup",
	"Cheese Sandwich", "Fried Rice", "Cold Coffee", "Mango Lassi",
	"Garlic Bread",
}

type MenuItemFactory struct {
	rng *rand.Rand
}

func NewMenuItemFactory(seed int64) *MenuItemFactory {
	return &MenuItemFactory{rng: rand.New(rand.NewSource(seed))}
}

func (mf *MenuItemFactory) CreateMenuItem() *models.MenuItem {
	name := dishNames[mf.rng.Intn(len(dishNames))]
	return &models.MenuItem{
		ID:          cuid.New(),
		Name:        name,
		Category:    fake.Lorem().Word(),
		Price:       fake.Float64(2, 50, 400),
		Vegetarian:  mf.rng.Intn(2) == 0,
		Available:   true,
		Ingredients: mf.createRecipe(),
	}
}

func (mf *MenuItemFactory) createRecipe() []models.Ingredient {
	count := mf.rng.Intn(3) + 2 // 2 to 4 ingredients
	recipe := make([]models.Ingredient, 0, count)
	seen := make(map[string]bool)
	for len(recipe) < count {
		ing := ingredientPool[mf.rng.Intn(len(ingredientPool))]
		if seen[ing.Name] {
			continue
		}
		seen[ing.Name] = true
		ing.Quantity = quantityFor(ing.Unit)
		recipe = append(recipe, ing)
	}
	return recipe
}

// quantityFor keeps per-unit-sold usage plausible for the unit's scale.
func quantityFor(unit string) float64 {
	switch unit {
	case units.Grams:
		return fake.Float64(0, 20, 250)
	case units.Kilograms:
		return fake.Float64(2, 1, 30) / 100
	case units.Milliliters:
		return fake.Float64(0, 20, 200)
	case units.Liters:
		return fake.Float64(2, 1, 10) / 100
	case units.Pieces:
		return float64(fake.IntBetween(1, 3))
	case units.Cups, units.Tablespoons, units.Teaspoons:
		return float64(fake.IntBetween(1, 4))
	default:
		return 1
	}
}

// CreateInventory builds one well-stocked record per pool ingredient.
func (mf *MenuItemFactory) CreateInventory() []*models.InventoryRecord {
	records := make([]*models.InventoryRecord, 0, len(ingredientPool))
	for _, ing := range ingredientPool {
		full := fullStockFor(ing.Unit)
		records = append(records, &models.InventoryRecord{
			Name:         ing.Name,
			Unit:         ing.Unit,
			CurrentStock: full,
			FullStock:    full,
		})
	}
	return records
}

func fullStockFor(unit string) float64 {
	switch unit {
	case units.Grams, units.Milliliters:
		return float64(fake.IntBetween(5, 20)) * 1000
	case units.Kilograms, units.Liters:
		return float64(fake.IntBetween(5, 20))
	default:
		return float64(fake.IntBetween(50, 200))
	}
}
