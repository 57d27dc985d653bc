/*
Package sqlite provides a SQLite-backed implementation of bakery.Store.

PURPOSE:
  Persists customers, the product catalog, orders, deliveries, payments and
  recurring templates for a single bakery.

SCHEMA:
  Versioned migrations live in migrations/ and are embedded in the binary.
  New() applies them with golang-migrate before returning the store.

ENCODING:
  - Order, delivery and template lines are JSON documents in a TEXT column
  - Quantities, prices and amounts are decimal strings, never REAL
  - Times are UTC with a fixed-width layout, so range filters can compare
    the TEXT columns directly; reads convert back to the store's location

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, which also
  keeps ":memory:" databases alive for the lifetime of the store.

USAGE:
  store, err := sqlite.New("./bakery.db", sqlite.WithLocation(rome))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - bakery/store.go: Interface definition
  - store/memory: In-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout is fixed width so that TEXT comparison orders instants.
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Store implements bakery.Store using SQLite.
type Store struct {
	db  *sql.DB
	mu  sync.RWMutex
	loc *time.Location
	now func() time.Time
}

var _ bakery.Store = (*Store)(nil)

type Option func(*Store)

// WithLocation sets the zone times are returned in. Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.loc = loc }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New opens the database at dbPath and applies pending migrations.
// Use ":memory:" for an in-memory database.
func New(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db, loc: time.Local, now: time.Now}
	for _, opt := range opts {
		opt(store)
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs the embedded migrations. The migrate instance is not closed
// because that would close the shared *sql.DB.
func (s *Store) migrate() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("migration instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// =============================================================================
// CUSTOMERS
// =============================================================================

type customProductDoc struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

func (s *Store) CreateCustomer(ctx context.Context, c bakery.Customer) (bakery.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = bakery.CustomerID(uuid.NewString())
	c.CreatedAt = s.now()
	custom, err := encodeCustomProducts(c.CustomProducts)
	if err != nil {
		return bakery.Customer{}, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, phone, address, linked_user_id, custom_products_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Phone, c.Address, c.LinkedUserID, custom, formatTime(c.CreatedAt),
	)
	if err != nil {
		return bakery.Customer{}, fmt.Errorf("failed to insert customer: %w", err)
	}
	c.CreatedAt = s.readTime(formatTime(c.CreatedAt))
	return c, nil
}

func (s *Store) UpdateCustomer(ctx context.Context, c bakery.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	custom, err := encodeCustomProducts(c.CustomProducts)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers SET name = ?, phone = ?, address = ?, linked_user_id = ?, custom_products_json = ?
		WHERE id = ?`,
		c.Name, c.Phone, c.Address, c.LinkedUserID, custom, c.ID,
	)
	return affectedOne(res, err, "update customer")
}

func (s *Store) GetCustomer(ctx context.Context, id bakery.CustomerID) (bakery.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers, err := s.queryCustomers(ctx, customerSelect+" WHERE id = ?", id)
	if err != nil {
		return bakery.Customer{}, err
	}
	if len(customers) == 0 {
		return bakery.Customer{}, generic.ErrNotFound
	}
	return customers[0], nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]bakery.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCustomers(ctx, customerSelect+" ORDER BY name, id")
}

const customerSelect = `SELECT id, name, phone, address, linked_user_id, custom_products_json, created_at FROM customers`

func (s *Store) queryCustomers(ctx context.Context, query string, args ...any) ([]bakery.Customer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []bakery.Customer
	for rows.Next() {
		var (
			c         bakery.Customer
			custom    string
			createdAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.LinkedUserID, &custom, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		var docs []customProductDoc
		if err := json.Unmarshal([]byte(custom), &docs); err != nil {
			return nil, fmt.Errorf("decode custom products of %s: %w", c.ID, err)
		}
		for _, d := range docs {
			c.CustomProducts = append(c.CustomProducts, bakery.CustomProduct{Name: d.Name, Unit: d.Unit})
		}
		c.CreatedAt = s.readTime(createdAt)
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func encodeCustomProducts(products []bakery.CustomProduct) (string, error) {
	docs := make([]customProductDoc, 0, len(products))
	for _, p := range products {
		docs = append(docs, customProductDoc{Name: p.Name, Unit: p.Unit})
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encode custom products: %w", err)
	}
	return string(b), nil
}

// =============================================================================
// PRODUCTS
// =============================================================================

func (s *Store) CreateProduct(ctx context.Context, p bakery.Product) (bakery.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	created := formatTime(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, default_unit, price, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.DefaultUnit, nullDecimal(p.Price), created,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return bakery.Product{}, generic.ErrDuplicateName
		}
		return bakery.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	p.CreatedAt = s.readTime(created)
	return p, nil
}

func (s *Store) UpdateProduct(ctx context.Context, p bakery.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET name = ?, default_unit = ?, price = ? WHERE id = ?`,
		p.Name, p.DefaultUnit, nullDecimal(p.Price), p.ID,
	)
	if isUniqueConstraintError(err) {
		return generic.ErrDuplicateName
	}
	return affectedOne(res, err, "update product")
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM products WHERE id = ?", id)
	return affectedOne(res, err, "delete product")
}

func (s *Store) ListProducts(ctx context.Context) ([]bakery.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, default_unit, price, created_at FROM products ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []bakery.Product
	for rows.Next() {
		var (
			p         bakery.Product
			price     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.DefaultUnit, &price, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Price = parseNullDecimal(price)
		p.CreatedAt = s.readTime(createdAt)
		products = append(products, p)
	}
	return products, rows.Err()
}

// =============================================================================
// ORDERS
// =============================================================================

type orderLineDoc struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
}

func encodeOrderLines(lines []bakery.OrderLine) (string, error) {
	docs := make([]orderLineDoc, 0, len(lines))
	for _, l := range lines {
		docs = append(docs, orderLineDoc{Product: l.Product, Quantity: l.Quantity, Unit: l.Unit})
	}
	b, err := json.Marshal(docs)
	if err != nil {
		return "", fmt.Errorf("encode order lines: %w", err)
	}
	return string(b), nil
}

func decodeOrderLines(raw string) ([]bakery.OrderLine, error) {
	var docs []orderLineDoc
	if err := json.Unmarshal([]byte(raw), &docs); err != nil {
		return nil, fmt.Errorf("decode order lines: %w", err)
	}
	lines := make([]bakery.OrderLine, 0, len(docs))
	for _, d := range docs {
		lines = append(lines, bakery.OrderLine{Product: d.Product, Quantity: d.Quantity, Unit: d.Unit})
	}
	return lines, nil
}

func (s *Store) CreateOrder(ctx context.Context, o bakery.Order) (bakery.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := encodeOrderLines(o.Lines)
	if err != nil {
		return bakery.Order{}, err
	}
	o.ID = uuid.NewString()
	created := formatTime(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, customer_name, delivery_date, lines_json, status, notes,
		                    recurring_template_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.CustomerID, o.CustomerName, formatTime(o.DeliveryDate), lines, o.Status, o.Notes,
		o.RecurringTemplateID, created,
	)
	if err != nil {
		return bakery.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	o.CreatedAt = s.readTime(created)
	return o, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (bakery.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders, err := s.queryOrders(ctx, orderSelect+" WHERE id = ?", id)
	if err != nil {
		return bakery.Order{}, err
	}
	if len(orders) == 0 {
		return bakery.Order{}, generic.ErrNotFound
	}
	return orders[0], nil
}

func (s *Store) UpdateOrder(ctx context.Context, o bakery.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := encodeOrderLines(o.Lines)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE orders SET customer_id = ?, customer_name = ?, delivery_date = ?, lines_json = ?,
		                  status = ?, notes = ?, recurring_template_id = ?
		WHERE id = ?`,
		o.CustomerID, o.CustomerName, formatTime(o.DeliveryDate), lines, o.Status, o.Notes,
		o.RecurringTemplateID, o.ID,
	)
	return affectedOne(res, err, "update order")
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM orders WHERE id = ?", id)
	return affectedOne(res, err, "delete order")
}

func (s *Store) OrdersForDate(ctx context.Context, day time.Time) ([]bakery.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOrders(ctx,
		orderSelect+" WHERE delivery_date >= ? AND delivery_date <= ? ORDER BY delivery_date, created_at",
		formatTime(generic.StartOfDay(day)), formatTime(generic.EndOfDay(day)),
	)
}

func (s *Store) OrdersByCustomer(ctx context.Context, id bakery.CustomerID) ([]bakery.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryOrders(ctx, orderSelect+" WHERE customer_id = ? ORDER BY delivery_date, created_at", id)
}

const orderSelect = `
	SELECT id, customer_id, customer_name, delivery_date, lines_json, status, notes,
	       recurring_template_id, created_at
	FROM orders`

func (s *Store) queryOrders(ctx context.Context, query string, args ...any) ([]bakery.Order, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []bakery.Order
	for rows.Next() {
		var (
			o                       bakery.Order
			deliveryDate, createdAt string
			lines                   string
		)
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.CustomerName, &deliveryDate, &lines, &o.Status,
			&o.Notes, &o.RecurringTemplateID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		if o.Lines, err = decodeOrderLines(lines); err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		o.DeliveryDate = s.readTime(deliveryDate)
		o.CreatedAt = s.readTime(createdAt)
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// =============================================================================
// DELIVERIES
// =============================================================================

type deliveryLineDoc struct {
	Product         string              `json:"product"`
	Quantity        decimal.Decimal     `json:"quantity"`
	Unit            string              `json:"unit"`
	PriceAtDelivery decimal.NullDecimal `json:"price_at_delivery"`
}

func (s *Store) CreateDelivery(ctx context.Context, d bakery.Delivery) (bakery.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]deliveryLineDoc, 0, len(d.Lines))
	for _, l := range d.Lines {
		docs = append(docs, deliveryLineDoc(l))
	}
	lines, err := json.Marshal(docs)
	if err != nil {
		return bakery.Delivery{}, fmt.Errorf("encode delivery lines: %w", err)
	}

	d.ID = uuid.NewString()
	created := formatTime(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deliveries (id, customer_id, customer_name, date, lines_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.CustomerID, d.CustomerName, formatTime(d.Date), string(lines), created,
	)
	if err != nil {
		return bakery.Delivery{}, fmt.Errorf("failed to insert delivery: %w", err)
	}
	d.CreatedAt = s.readTime(created)
	return d, nil
}

func (s *Store) DeleteDelivery(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM deliveries WHERE id = ?", id)
	return affectedOne(res, err, "delete delivery")
}

func (s *Store) DeliveriesInRange(ctx context.Context, from, to time.Time, customerID bakery.CustomerID) ([]bakery.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := rangeFilter("date", from, to, customerID)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, customer_name, date, lines_json, created_at
		FROM deliveries`+where+` ORDER BY date, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []bakery.Delivery
	for rows.Next() {
		var (
			d               bakery.Delivery
			date, createdAt string
			lines           string
		)
		if err := rows.Scan(&d.ID, &d.CustomerID, &d.CustomerName, &date, &lines, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan delivery: %w", err)
		}
		var docs []deliveryLineDoc
		if err := json.Unmarshal([]byte(lines), &docs); err != nil {
			return nil, fmt.Errorf("delivery %s: decode lines: %w", d.ID, err)
		}
		for _, doc := range docs {
			d.Lines = append(d.Lines, bakery.DeliveryLine(doc))
		}
		d.Date = s.readTime(date)
		d.CreatedAt = s.readTime(createdAt)
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// =============================================================================
// PAYMENTS
// =============================================================================

func (s *Store) CreatePayment(ctx context.Context, p bakery.Payment) (bakery.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = uuid.NewString()
	created := formatTime(s.now())
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, customer_id, customer_name, amount, date, method, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CustomerID, p.CustomerName, p.Amount.String(), formatTime(p.Date), p.Method, p.Notes, created,
	)
	if err != nil {
		return bakery.Payment{}, fmt.Errorf("failed to insert payment: %w", err)
	}
	p.CreatedAt = s.readTime(created)
	return p, nil
}

func (s *Store) DeletePayment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM payments WHERE id = ?", id)
	return affectedOne(res, err, "delete payment")
}

func (s *Store) PaymentsInRange(ctx context.Context, from, to time.Time, customerID bakery.CustomerID) ([]bakery.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	where, args := rangeFilter("date", from, to, customerID)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, customer_name, amount, date, method, notes, created_at
		FROM payments`+where+` ORDER BY date, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []bakery.Payment
	for rows.Next() {
		var (
			p                       bakery.Payment
			amount, date, createdAt string
		)
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.CustomerName, &amount, &date, &p.Method, &p.Notes, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		p.Amount = generic.MustParseDecimal(amount)
		p.Date = s.readTime(date)
		p.CreatedAt = s.readTime(createdAt)
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// =============================================================================
// RECURRING TEMPLATES
// =============================================================================

func (s *Store) CreateTemplate(ctx context.Context, t bakery.RecurringOrderTemplate) (bakery.RecurringOrderTemplate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, lines, err := encodeTemplate(t)
	if err != nil {
		return bakery.RecurringOrderTemplate{}, err
	}
	t.ID = uuid.NewString()
	created := formatTime(s.now())
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recurring_templates (id, customer_id, customer_name, days_json, lines_json, notes, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.CustomerID, t.CustomerName, days, lines, t.Notes, t.IsActive, created,
	)
	if err != nil {
		return bakery.RecurringOrderTemplate{}, fmt.Errorf("failed to insert template: %w", err)
	}
	t.CreatedAt = s.readTime(created)
	return t, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t bakery.RecurringOrderTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, lines, err := encodeTemplate(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE recurring_templates
		SET customer_id = ?, customer_name = ?, days_json = ?, lines_json = ?, notes = ?, is_active = ?
		WHERE id = ?`,
		t.CustomerID, t.CustomerName, days, lines, t.Notes, t.IsActive, t.ID,
	)
	return affectedOne(res, err, "update template")
}

func (s *Store) GetTemplate(ctx context.Context, id string) (bakery.RecurringOrderTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	templates, err := s.queryTemplates(ctx, templateSelect+" WHERE id = ?", id)
	if err != nil {
		return bakery.RecurringOrderTemplate{}, err
	}
	if len(templates) == 0 {
		return bakery.RecurringOrderTemplate{}, generic.ErrNotFound
	}
	return templates[0], nil
}

func (s *Store) DeleteTemplate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM recurring_templates WHERE id = ?", id)
	return affectedOne(res, err, "delete template")
}

func (s *Store) ListTemplates(ctx context.Context, customerID bakery.CustomerID) ([]bakery.RecurringOrderTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if customerID == "" {
		return s.queryTemplates(ctx, templateSelect+" ORDER BY created_at, id")
	}
	return s.queryTemplates(ctx, templateSelect+" WHERE customer_id = ? ORDER BY created_at, id", customerID)
}

const templateSelect = `
	SELECT id, customer_id, customer_name, days_json, lines_json, notes, is_active, created_at
	FROM recurring_templates`

func (s *Store) queryTemplates(ctx context.Context, query string, args ...any) ([]bakery.RecurringOrderTemplate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []bakery.RecurringOrderTemplate
	for rows.Next() {
		var (
			t           bakery.RecurringOrderTemplate
			days, lines string
			createdAt   string
		)
		if err := rows.Scan(&t.ID, &t.CustomerID, &t.CustomerName, &days, &lines, &t.Notes, &t.IsActive, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		var weekdays []int
		if err := json.Unmarshal([]byte(days), &weekdays); err != nil {
			return nil, fmt.Errorf("template %s: decode days: %w", t.ID, err)
		}
		for _, d := range weekdays {
			t.DaysOfWeek = append(t.DaysOfWeek, time.Weekday(d))
		}
		if t.Lines, err = decodeOrderLines(lines); err != nil {
			return nil, fmt.Errorf("template %s: %w", t.ID, err)
		}
		t.CreatedAt = s.readTime(createdAt)
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func encodeTemplate(t bakery.RecurringOrderTemplate) (days, lines string, err error) {
	weekdays := make([]int, 0, len(t.DaysOfWeek))
	for _, d := range t.DaysOfWeek {
		weekdays = append(weekdays, int(d))
	}
	b, err := json.Marshal(weekdays)
	if err != nil {
		return "", "", fmt.Errorf("encode days: %w", err)
	}
	lines, err = encodeOrderLines(t.Lines)
	if err != nil {
		return "", "", err
	}
	return string(b), lines, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"recurring_templates", "payments", "deliveries", "orders", "products", "customers"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func (s *Store) readTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.In(s.loc)
}

// rangeFilter builds a WHERE clause for an optional date window and customer.
func rangeFilter(column string, from, to time.Time, customerID bakery.CustomerID) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if !from.IsZero() {
		clauses = append(clauses, column+" >= ?")
		args = append(args, formatTime(from))
	}
	if !to.IsZero() {
		clauses = append(clauses, column+" <= ?")
		args = append(args, formatTime(to))
	}
	if customerID != "" {
		clauses = append(clauses, "customer_id = ?")
		args = append(args, customerID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	where := " WHERE " + clauses[0]
	for _, c := range clauses[1:] {
		where += " AND " + c
	}
	return where, args
}

func nullDecimal(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

func parseNullDecimal(v sql.NullString) decimal.NullDecimal {
	if !v.Valid {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(v.String)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// affectedOne maps a write that touched no row to generic.ErrNotFound.
func affectedOne(res sql.Result, err error, op string) error {
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	if n == 0 {
		return generic.ErrNotFound
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}
