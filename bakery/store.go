package bakery

import (
	"context"
	"time"
)

// =============================================================================
// STORE - Persistence collaborator
// =============================================================================

// Store persists the bakery's collections. Implementations generate ids
// (UUID strings) and creation times on insert, and report missing ids with
// generic.ErrNotFound.
//
// Range queries treat a zero bound as unbounded and return records ascending
// by their date field.
//
// IMPLEMENTATIONS:
//   - store/memory: In-memory, for tests and demos
//   - store/sqlite: SQLite, for a single bakery
type Store interface {
	CustomerStore
	ProductStore
	OrderStore
	DeliveryStore
	PaymentStore
	TemplateStore
}

type CustomerStore interface {
	CreateCustomer(ctx context.Context, c Customer) (Customer, error)
	UpdateCustomer(ctx context.Context, c Customer) error
	GetCustomer(ctx context.Context, id CustomerID) (Customer, error)

	// ListCustomers returns every customer sorted by name.
	ListCustomers(ctx context.Context) ([]Customer, error)
}

type ProductStore interface {
	// CreateProduct fails with generic.ErrDuplicateName if the name exists,
	// compared case-insensitively.
	CreateProduct(ctx context.Context, p Product) (Product, error)
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error

	// ListProducts returns the catalog sorted by name.
	ListProducts(ctx context.Context) ([]Product, error)
}

type OrderStore interface {
	CreateOrder(ctx context.Context, o Order) (Order, error)
	GetOrder(ctx context.Context, id string) (Order, error)
	UpdateOrder(ctx context.Context, o Order) error
	DeleteOrder(ctx context.Context, id string) error

	// OrdersForDate returns orders whose delivery date falls on day.
	OrdersForDate(ctx context.Context, day time.Time) ([]Order, error)
	OrdersByCustomer(ctx context.Context, id CustomerID) ([]Order, error)
}

type DeliveryStore interface {
	CreateDelivery(ctx context.Context, d Delivery) (Delivery, error)
	DeleteDelivery(ctx context.Context, id string) error

	// DeliveriesInRange returns deliveries dated in [from, to]. An empty
	// customer id matches every customer.
	DeliveriesInRange(ctx context.Context, from, to time.Time, customerID CustomerID) ([]Delivery, error)
}

type PaymentStore interface {
	CreatePayment(ctx context.Context, p Payment) (Payment, error)
	DeletePayment(ctx context.Context, id string) error
	PaymentsInRange(ctx context.Context, from, to time.Time, customerID CustomerID) ([]Payment, error)
}

type TemplateStore interface {
	CreateTemplate(ctx context.Context, t RecurringOrderTemplate) (RecurringOrderTemplate, error)
	UpdateTemplate(ctx context.Context, t RecurringOrderTemplate) error
	GetTemplate(ctx context.Context, id string) (RecurringOrderTemplate, error)
	DeleteTemplate(ctx context.Context, id string) error

	// ListTemplates returns templates for one customer, or all when id is empty.
	ListTemplates(ctx context.Context, customerID CustomerID) ([]RecurringOrderTemplate, error)
}
