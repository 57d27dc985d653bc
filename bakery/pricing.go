package bakery

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// PRICE FALLBACK CHAIN
// =============================================================================

// PriceSource yields a unit price for a delivery line, or false if it has none.
type PriceSource func(line DeliveryLine) (decimal.Decimal, bool)

// PriceResolver tries each source in order; if none answers the price is 0.
// A zero price is never an error: it under-counts and is flagged elsewhere.
type PriceResolver []PriceSource

// NewPriceResolver builds the standard chain:
// price recorded at delivery -> current catalog price -> 0.
func NewPriceResolver(products []Product) PriceResolver {
	return PriceResolver{SnapshotPrice, CatalogPrice(products)}
}

// UnitPrice resolves the unit price for a line.
func (r PriceResolver) UnitPrice(line DeliveryLine) decimal.Decimal {
	for _, src := range r {
		if p, ok := src(line); ok {
			return p
		}
	}
	return decimal.Zero
}

// LineTotal is quantity times the resolved unit price, unrounded.
func (r PriceResolver) LineTotal(line DeliveryLine) decimal.Decimal {
	return line.Quantity.Mul(r.UnitPrice(line))
}

// DeliveryTotal sums every line of d, unrounded.
func (r PriceResolver) DeliveryTotal(d Delivery) decimal.Decimal {
	total := decimal.Zero
	for _, l := range d.Lines {
		total = total.Add(r.LineTotal(l))
	}
	return total
}

// SnapshotPrice uses the price recorded on the delivery line, including an
// explicit zero.
func SnapshotPrice(line DeliveryLine) (decimal.Decimal, bool) {
	if !line.PriceAtDelivery.Valid {
		return decimal.Zero, false
	}
	return line.PriceAtDelivery.Decimal, true
}

// CatalogPrice looks the product up by exact name among priced products.
func CatalogPrice(products []Product) PriceSource {
	prices := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		if p.Price.Valid {
			prices[p.Name] = p.Price.Decimal
		}
	}
	return func(line DeliveryLine) (decimal.Decimal, bool) {
		p, ok := prices[line.Product]
		return p, ok
	}
}
