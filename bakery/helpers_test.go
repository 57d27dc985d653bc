package bakery_test

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/bakery"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var rome = time.FixedZone("CET", 3600)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, rome)
}

func at(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, rome)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func price(s string) decimal.NullDecimal { return decimal.NewNullDecimal(dec(s)) }

func oline(product, qty, unit string) bakery.OrderLine {
	return bakery.OrderLine{Product: product, Quantity: dec(qty), Unit: unit}
}

func dline(product, qty, unit string) bakery.DeliveryLine {
	return bakery.DeliveryLine{Product: product, Quantity: dec(qty), Unit: unit}
}

func pricedLine(product, qty, unit, unitPrice string) bakery.DeliveryLine {
	l := dline(product, qty, unit)
	l.PriceAtDelivery = price(unitPrice)
	return l
}

func order(id string, customer bakery.CustomerID, date time.Time, lines ...bakery.OrderLine) bakery.Order {
	return bakery.Order{
		ID:           id,
		CustomerID:   customer,
		DeliveryDate: date,
		Lines:        lines,
		Status:       bakery.StatusPending,
	}
}

func delivery(id string, customer bakery.CustomerID, date time.Time, lines ...bakery.DeliveryLine) bakery.Delivery {
	return bakery.Delivery{ID: id, CustomerID: customer, Date: date, Lines: lines}
}

func payment(id string, customer bakery.CustomerID, date time.Time, amount string) bakery.Payment {
	return bakery.Payment{ID: id, CustomerID: customer, Date: date, Amount: dec(amount), Method: bakery.MethodCash}
}
