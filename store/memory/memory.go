// Package memory provides an in-memory bakery.Store for tests and demos.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Store struct {
	mu         sync.RWMutex
	customers  map[bakery.CustomerID]bakery.Customer
	products   map[string]bakery.Product
	orders     map[string]bakery.Order
	deliveries []bakery.Delivery // sorted by Date
	payments   []bakery.Payment  // sorted by Date
	templates  map[string]bakery.RecurringOrderTemplate

	// Now stamps CreatedAt; tests may replace it.
	Now func() time.Time
}

var _ bakery.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		customers: make(map[bakery.CustomerID]bakery.Customer),
		products:  make(map[string]bakery.Product),
		orders:    make(map[string]bakery.Order),
		templates: make(map[string]bakery.RecurringOrderTemplate),
		Now:       time.Now,
	}
}

func newID() string { return uuid.NewString() }

// inRange treats zero bounds as open.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && t.After(to) {
		return false
	}
	return true
}

// =============================================================================
// CUSTOMERS
// =============================================================================

func (m *Store) CreateCustomer(_ context.Context, c bakery.Customer) (bakery.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c.ID = bakery.CustomerID(newID())
	c.CreatedAt = m.Now()
	c.CustomProducts = append([]bakery.CustomProduct(nil), c.CustomProducts...)
	m.customers[c.ID] = c
	return c, nil
}

func (m *Store) UpdateCustomer(_ context.Context, c bakery.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.customers[c.ID]
	if !ok {
		return generic.ErrNotFound
	}
	c.CreatedAt = old.CreatedAt
	c.CustomProducts = append([]bakery.CustomProduct(nil), c.CustomProducts...)
	m.customers[c.ID] = c
	return nil
}

func (m *Store) GetCustomer(_ context.Context, id bakery.CustomerID) (bakery.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.customers[id]
	if !ok {
		return bakery.Customer{}, generic.ErrNotFound
	}
	return c, nil
}

func (m *Store) ListCustomers(_ context.Context) ([]bakery.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]bakery.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (m *Store) CreateProduct(_ context.Context, p bakery.Product) (bakery.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.products {
		if bakery.SameProductName(existing.Name, p.Name) {
			return bakery.Product{}, generic.ErrDuplicateName
		}
	}
	p.ID = newID()
	p.CreatedAt = m.Now()
	m.products[p.ID] = p
	return p, nil
}

func (m *Store) UpdateProduct(_ context.Context, p bakery.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.products[p.ID]
	if !ok {
		return generic.ErrNotFound
	}
	for id, existing := range m.products {
		if id != p.ID && bakery.SameProductName(existing.Name, p.Name) {
			return generic.ErrDuplicateName
		}
	}
	p.CreatedAt = old.CreatedAt
	m.products[p.ID] = p
	return nil
}

func (m *Store) DeleteProduct(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *Store) ListProducts(_ context.Context) ([]bakery.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]bakery.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out, nil
}

// =============================================================================
// ORDERS
// =============================================================================

func copyOrder(o bakery.Order) bakery.Order {
	o.Lines = append([]bakery.OrderLine(nil), o.Lines...)
	return o
}

func (m *Store) CreateOrder(_ context.Context, o bakery.Order) (bakery.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o = copyOrder(o)
	o.ID = newID()
	o.CreatedAt = m.Now()
	m.orders[o.ID] = o
	return copyOrder(o), nil
}

func (m *Store) GetOrder(_ context.Context, id string) (bakery.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return bakery.Order{}, generic.ErrNotFound
	}
	return copyOrder(o), nil
}

func (m *Store) UpdateOrder(_ context.Context, o bakery.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.orders[o.ID]
	if !ok {
		return generic.ErrNotFound
	}
	o = copyOrder(o)
	o.CreatedAt = old.CreatedAt
	m.orders[o.ID] = o
	return nil
}

func (m *Store) DeleteOrder(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *Store) OrdersForDate(_ context.Context, day time.Time) ([]bakery.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []bakery.Order
	for _, o := range m.orders {
		if generic.SameDay(o.DeliveryDate, day) {
			out = append(out, copyOrder(o))
		}
	}
	sortOrders(out)
	return out, nil
}

func (m *Store) OrdersByCustomer(_ context.Context, id bakery.CustomerID) ([]bakery.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []bakery.Order
	for _, o := range m.orders {
		if o.CustomerID == id {
			out = append(out, copyOrder(o))
		}
	}
	sortOrders(out)
	return out, nil
}

func sortOrders(orders []bakery.Order) {
	sort.Slice(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		if !a.DeliveryDate.Equal(b.DeliveryDate) {
			return a.DeliveryDate.Before(b.DeliveryDate)
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

// =============================================================================
// DELIVERIES & PAYMENTS - Kept sorted by date on insert
// =============================================================================

func (m *Store) CreateDelivery(_ context.Context, d bakery.Delivery) (bakery.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	d.ID = newID()
	d.CreatedAt = m.Now()
	d.Lines = append([]bakery.DeliveryLine(nil), d.Lines...)

	i := sort.Search(len(m.deliveries), func(i int) bool {
		return m.deliveries[i].Date.After(d.Date)
	})
	m.deliveries = append(m.deliveries, bakery.Delivery{})
	copy(m.deliveries[i+1:], m.deliveries[i:])
	m.deliveries[i] = d
	return d, nil
}

func (m *Store) DeleteDelivery(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, d := range m.deliveries {
		if d.ID == id {
			m.deliveries = append(m.deliveries[:i], m.deliveries[i+1:]...)
			return nil
		}
	}
	return generic.ErrNotFound
}

func (m *Store) DeliveriesInRange(_ context.Context, from, to time.Time, customerID bakery.CustomerID) ([]bakery.Delivery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []bakery.Delivery
	for _, d := range m.deliveries {
		if customerID != "" && d.CustomerID != customerID {
			continue
		}
		if inRange(d.Date, from, to) {
			d.Lines = append([]bakery.DeliveryLine(nil), d.Lines...)
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Store) CreatePayment(_ context.Context, p bakery.Payment) (bakery.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = newID()
	p.CreatedAt = m.Now()

	i := sort.Search(len(m.payments), func(i int) bool {
		return m.payments[i].Date.After(p.Date)
	})
	m.payments = append(m.payments, bakery.Payment{})
	copy(m.payments[i+1:], m.payments[i:])
	m.payments[i] = p
	return p, nil
}

func (m *Store) DeletePayment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.payments {
		if p.ID == id {
			m.payments = append(m.payments[:i], m.payments[i+1:]...)
			return nil
		}
	}
	return generic.ErrNotFound
}

func (m *Store) PaymentsInRange(_ context.Context, from, to time.Time, customerID bakery.CustomerID) ([]bakery.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []bakery.Payment
	for _, p := range m.payments {
		if customerID != "" && p.CustomerID != customerID {
			continue
		}
		if inRange(p.Date, from, to) {
			out = append(out, p)
		}
	}
	return out, nil
}

// =============================================================================
// RECURRING TEMPLATES
// =============================================================================

func copyTemplate(t bakery.RecurringOrderTemplate) bakery.RecurringOrderTemplate {
	t.DaysOfWeek = append([]time.Weekday(nil), t.DaysOfWeek...)
	t.Lines = append([]bakery.OrderLine(nil), t.Lines...)
	return t
}

func (m *Store) CreateTemplate(_ context.Context, t bakery.RecurringOrderTemplate) (bakery.RecurringOrderTemplate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t = copyTemplate(t)
	t.ID = newID()
	t.CreatedAt = m.Now()
	m.templates[t.ID] = t
	return copyTemplate(t), nil
}

func (m *Store) UpdateTemplate(_ context.Context, t bakery.RecurringOrderTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.templates[t.ID]
	if !ok {
		return generic.ErrNotFound
	}
	t = copyTemplate(t)
	t.CreatedAt = old.CreatedAt
	m.templates[t.ID] = t
	return nil
}

func (m *Store) GetTemplate(_ context.Context, id string) (bakery.RecurringOrderTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.templates[id]
	if !ok {
		return bakery.RecurringOrderTemplate{}, generic.ErrNotFound
	}
	return copyTemplate(t), nil
}

func (m *Store) DeleteTemplate(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.templates[id]; !ok {
		return generic.ErrNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *Store) ListTemplates(_ context.Context, customerID bakery.CustomerID) ([]bakery.RecurringOrderTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []bakery.RecurringOrderTemplate
	for _, t := range m.templates {
		if customerID == "" || t.CustomerID == customerID {
			out = append(out, copyTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
