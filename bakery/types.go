// Package bakery implements order fulfilment reconciliation for a bakery:
// matching partial deliveries against orders, daily product roll-ups,
// customer billing, recurring order generation and the order edit window.
//
// Every engine in this package is a pure function over records that were
// already fetched from a Store. Orchestration lives in Service.
package bakery

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/generic"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type CustomerID string

// =============================================================================
// MASTER DATA
// =============================================================================

// CustomProduct is a product visible only to one customer.
type CustomProduct struct {
	Name string
	Unit string
}

type Customer struct {
	ID             CustomerID
	Name           string
	Phone          string
	Address        string
	LinkedUserID   string
	CustomProducts []CustomProduct
	CreatedAt      time.Time
}

// Product is a catalog entry. Orders and deliveries copy its name, unit and
// price, so editing or deleting a product never rewrites history.
type Product struct {
	ID          string
	Name        string
	DefaultUnit string
	Price       decimal.NullDecimal
	CreatedAt   time.Time
}

// =============================================================================
// ORDERS
// =============================================================================

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusDelivered OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered:
		return true
	}
	return false
}

type OrderLine struct {
	Product  string
	Quantity decimal.Decimal
	Unit     string
}

func (l OrderLine) Key() generic.LineKey { return generic.LineKey{Product: l.Product, Unit: l.Unit} }

type Order struct {
	ID           string
	CustomerID   CustomerID
	CustomerName string

	// DeliveryDate is local midnight of the delivery day.
	DeliveryDate time.Time

	Lines  []OrderLine
	Status OrderStatus
	Notes  string

	// RecurringTemplateID is set when the order was generated from a template.
	RecurringTemplateID string

	CreatedAt time.Time
}

// =============================================================================
// DELIVERIES - Append-only facts about what left the bakery
// =============================================================================

type DeliveryLine struct {
	Product  string
	Quantity decimal.Decimal
	Unit     string

	// PriceAtDelivery snapshots the unit price; invalid means not recorded.
	PriceAtDelivery decimal.NullDecimal
}

func (l DeliveryLine) Key() generic.LineKey {
	return generic.LineKey{Product: l.Product, Unit: l.Unit}
}

type Delivery struct {
	ID           string
	CustomerID   CustomerID
	CustomerName string
	Date         time.Time
	Lines        []DeliveryLine
	CreatedAt    time.Time
}

// =============================================================================
// PAYMENTS - Manually recorded, never processed
// =============================================================================

type PaymentMethod string

const (
	MethodCash  PaymentMethod = "cash"
	MethodWire  PaymentMethod = "wire"
	MethodCheck PaymentMethod = "check"
	MethodCard  PaymentMethod = "card"
	MethodOther PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCash, MethodWire, MethodCheck, MethodCard, MethodOther:
		return true
	}
	return false
}

type Payment struct {
	ID           string
	CustomerID   CustomerID
	CustomerName string
	Amount       decimal.Decimal
	Date         time.Time
	Method       PaymentMethod
	Notes        string
	CreatedAt    time.Time
}

// =============================================================================
// RECURRING TEMPLATES
// =============================================================================

// RecurringOrderTemplate is a weekly rule. DaysOfWeek holds time.Weekday
// values (0=Sunday..6=Saturday).
type RecurringOrderTemplate struct {
	ID           string
	CustomerID   CustomerID
	CustomerName string
	DaysOfWeek   []time.Weekday
	Lines        []OrderLine
	Notes        string
	IsActive     bool
	CreatedAt    time.Time
}

// RunsOn reports whether the template is active on the given weekday.
func (t RecurringOrderTemplate) RunsOn(day time.Weekday) bool {
	if !t.IsActive {
		return false
	}
	for _, d := range t.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}
