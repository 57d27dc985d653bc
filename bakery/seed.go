package bakery

import (
	"context"
	"fmt"
)

// DefaultProducts is the starter catalog offered to a new bakery. Prices are
// left unset; the bakery fills them in.
var DefaultProducts = []Product{
	{Name: "White Bread", DefaultUnit: "kg"},
	{Name: "Sourdough", DefaultUnit: "kg"},
	{Name: "Whole Wheat", DefaultUnit: "kg"},
	{Name: "Baguette", DefaultUnit: "pieces"},
	{Name: "Ciabatta", DefaultUnit: "pieces"},
	{Name: "Brioche", DefaultUnit: "pieces"},
	{Name: "Pizza Dough", DefaultUnit: "kg"},
	{Name: "Focaccia", DefaultUnit: "pieces"},
	{Name: "Croissant", DefaultUnit: "pieces"},
	{Name: "Rolls", DefaultUnit: "pieces"},
}

// SeedDefaultProducts inserts DefaultProducts when the catalog is empty and
// reports how many were added.
func SeedDefaultProducts(ctx context.Context, store ProductStore) (int, error) {
	existing, err := store.ListProducts(ctx)
	if err != nil {
		return 0, fmt.Errorf("load products: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}
	for i, p := range DefaultProducts {
		if _, err := store.CreateProduct(ctx, p); err != nil {
			return i, fmt.Errorf("seed %s: %w", p.Name, err)
		}
	}
	return len(DefaultProducts), nil
}
