package bakery

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/bakery-engine/generic"
)

// =============================================================================
// SERVICE - Fetch, compute with the pure engines, write
// =============================================================================

// Service wires a Store to the engines. It owns every mutation path, so the
// modification window and the one-order-per-customer-per-day rule are
// enforced here and nowhere else.
type Service struct {
	Store      Store
	Summarizer Summarizer
	Location   *time.Location
	Now        func() time.Time
	Log        logrus.FieldLogger
}

// NewService returns a Service using local time and the default summarizer.
func NewService(store Store, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Store:      store,
		Summarizer: DefaultSummarizer,
		Location:   time.Local,
		Now:        time.Now,
		Log:        log,
	}
}

func (s *Service) now() time.Time { return s.Now().In(s.Location) }

// Day returns local midnight of t in the service's location.
func (s *Service) Day(t time.Time) time.Time {
	return generic.StartOfDay(t.In(s.Location))
}

// =============================================================================
// ORDERS
// =============================================================================

// PlaceOrder validates and stores a new order. The delivery date must still be
// inside its modification window and the customer must not already have an
// order for that day.
func (s *Service) PlaceOrder(ctx context.Context, in OrderInput) (Order, error) {
	in.DeliveryDate = in.DeliveryDate.In(s.Location)
	o, err := NewOrder(in)
	if err != nil {
		return Order{}, err
	}
	if err := CheckModifiable(o, s.now()); err != nil {
		return Order{}, err
	}
	if err := s.ensureNoOrder(ctx, o.CustomerID, o.DeliveryDate, ""); err != nil {
		return Order{}, err
	}
	created, err := s.Store.CreateOrder(ctx, o)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	s.Log.WithFields(logrus.Fields{
		"order_id":    created.ID,
		"customer_id": created.CustomerID,
		"date":        generic.FormatDate(created.DeliveryDate),
	}).Info("order placed")
	return created, nil
}

// EditOrder opens an edit session on the stored order, lets edit change it
// and commits it under the modification window.
func (s *Service) EditOrder(ctx context.Context, id string, edit func(*EditingOrder)) (Order, error) {
	current, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	session := BeginEdit(current)
	edit(session)
	updated, err := session.Commit(s.now())
	if err != nil {
		return Order{}, err
	}
	if !generic.SameDay(updated.DeliveryDate, current.DeliveryDate) {
		if err := s.ensureNoOrder(ctx, updated.CustomerID, updated.DeliveryDate, updated.ID); err != nil {
			return Order{}, err
		}
	}
	if err := s.Store.UpdateOrder(ctx, updated); err != nil {
		return Order{}, fmt.Errorf("update order: %w", err)
	}
	return updated, nil
}

// CancelOrder deletes an order that is still inside its modification window.
func (s *Service) CancelOrder(ctx context.Context, id string) error {
	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if err := CheckModifiable(o, s.now()); err != nil {
		return err
	}
	if err := s.Store.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	s.Log.WithField("order_id", id).Info("order cancelled")
	return nil
}

// AdvanceOrder moves an order to the next status. Status changes are driver
// actions and are not bound by the modification window.
func (s *Service) AdvanceOrder(ctx context.Context, id string, to OrderStatus) (Order, error) {
	o, err := s.Store.GetOrder(ctx, id)
	if err != nil {
		return Order{}, err
	}
	if err := o.Advance(to); err != nil {
		return Order{}, err
	}
	if err := s.Store.UpdateOrder(ctx, o); err != nil {
		return Order{}, fmt.Errorf("update order: %w", err)
	}
	return o, nil
}

func (s *Service) ensureNoOrder(ctx context.Context, customerID CustomerID, day time.Time, exceptID string) error {
	orders, err := s.Store.OrdersForDate(ctx, day)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}
	for _, o := range orders {
		if o.CustomerID == customerID && o.ID != exceptID {
			return fmt.Errorf("%w: customer %s on %s", generic.ErrDuplicateOrder, customerID, generic.FormatDate(day))
		}
	}
	return nil
}

// DayOrders is the driver's sheet for a day.
type DayOrders struct {
	Date    time.Time
	Orders  []OrderProgress
	Summary []SummaryRow
}

// OrdersForDay loads a day's orders with fulfilment progress and product totals.
func (s *Service) OrdersForDay(ctx context.Context, date time.Time) (DayOrders, error) {
	day := s.Day(date)
	orders, err := s.Store.OrdersForDate(ctx, day)
	if err != nil {
		return DayOrders{}, fmt.Errorf("load orders: %w", err)
	}
	deliveries, err := s.Store.DeliveriesInRange(ctx, day, generic.EndOfDay(day), "")
	if err != nil {
		return DayOrders{}, fmt.Errorf("load deliveries: %w", err)
	}
	return DayOrders{
		Date:    day,
		Orders:  MatchOrders(orders, deliveries),
		Summary: s.Summarizer.Orders(orders),
	}, nil
}

// =============================================================================
// DELIVERIES & REPORTS
// =============================================================================

// RecordDelivery validates and stores a delivery. Lines without a price get
// the current catalog price as their snapshot.
func (s *Service) RecordDelivery(ctx context.Context, d Delivery) (Delivery, error) {
	d, err := NewDelivery(d)
	if err != nil {
		return Delivery{}, err
	}
	products, err := s.Store.ListProducts(ctx)
	if err != nil {
		return Delivery{}, fmt.Errorf("load products: %w", err)
	}
	catalog := CatalogPrice(products)
	for i, l := range d.Lines {
		if l.PriceAtDelivery.Valid {
			continue
		}
		if p, ok := catalog(l); ok {
			d.Lines[i].PriceAtDelivery.Decimal = p
			d.Lines[i].PriceAtDelivery.Valid = true
		}
	}
	created, err := s.Store.CreateDelivery(ctx, d)
	if err != nil {
		return Delivery{}, fmt.Errorf("create delivery: %w", err)
	}
	s.Log.WithFields(logrus.Fields{
		"delivery_id": created.ID,
		"customer_id": created.CustomerID,
		"lines":       len(created.Lines),
	}).Info("delivery recorded")
	return created, nil
}

func (s *Service) RemoveDelivery(ctx context.Context, id string) error {
	return s.Store.DeleteDelivery(ctx, id)
}

// DeliveryReport rolls up deliveries in period, for one customer or all.
func (s *Service) DeliveryReport(ctx context.Context, period generic.Period, customerID CustomerID) (DeliveryReport, error) {
	deliveries, err := s.Store.DeliveriesInRange(ctx, period.Start, period.End, customerID)
	if err != nil {
		return DeliveryReport{}, fmt.Errorf("load deliveries: %w", err)
	}
	label := "All customers"
	if customerID != "" {
		c, err := s.Store.GetCustomer(ctx, customerID)
		if err != nil {
			return DeliveryReport{}, err
		}
		label = c.Name
	}
	return s.Summarizer.DeliveryReport(label, period, customerID, deliveries), nil
}

// DailyStats summarizes the deliveries made on date.
func (s *Service) DailyStats(ctx context.Context, date time.Time) (DailyStats, error) {
	day := s.Day(date)
	deliveries, err := s.Store.DeliveriesInRange(ctx, day, generic.EndOfDay(day), "")
	if err != nil {
		return DailyStats{}, fmt.Errorf("load deliveries: %w", err)
	}
	return s.Summarizer.DailyStats(deliveries), nil
}

// =============================================================================
// BILLING
// =============================================================================

func (s *Service) RecordPayment(ctx context.Context, p Payment) (Payment, error) {
	p, err := NewPayment(p)
	if err != nil {
		return Payment{}, err
	}
	created, err := s.Store.CreatePayment(ctx, p)
	if err != nil {
		return Payment{}, fmt.Errorf("create payment: %w", err)
	}
	s.Log.WithFields(logrus.Fields{
		"payment_id":  created.ID,
		"customer_id": created.CustomerID,
		"amount":      created.Amount.String(),
	}).Info("payment recorded")
	return created, nil
}

func (s *Service) RemovePayment(ctx context.Context, id string) error {
	return s.Store.DeletePayment(ctx, id)
}

// billingInputs loads everything billing needs up to an upper bound.
func (s *Service) billingInputs(ctx context.Context, customerID CustomerID, to time.Time) ([]Delivery, []Payment, PriceResolver, error) {
	deliveries, err := s.Store.DeliveriesInRange(ctx, time.Time{}, to, customerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load deliveries: %w", err)
	}
	payments, err := s.Store.PaymentsInRange(ctx, time.Time{}, to, customerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load payments: %w", err)
	}
	products, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load products: %w", err)
	}
	return deliveries, payments, NewPriceResolver(products), nil
}

// Balance returns the customer's all-time position.
func (s *Service) Balance(ctx context.Context, customerID CustomerID) (AccountBalance, error) {
	if _, err := s.Store.GetCustomer(ctx, customerID); err != nil {
		return AccountBalance{}, err
	}
	deliveries, payments, prices, err := s.billingInputs(ctx, customerID, time.Time{})
	if err != nil {
		return AccountBalance{}, err
	}
	return CustomerBalance(customerID, deliveries, payments, prices), nil
}

// Balances returns every customer's all-time position, sorted by name.
func (s *Service) Balances(ctx context.Context) ([]AccountBalance, error) {
	customers, err := s.Store.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load customers: %w", err)
	}
	deliveries, payments, prices, err := s.billingInputs(ctx, "", time.Time{})
	if err != nil {
		return nil, err
	}
	return Balances(customers, deliveries, payments, prices), nil
}

// Statement builds the customer's statement for period.
func (s *Service) Statement(ctx context.Context, customerID CustomerID, period generic.Period) (Statement, error) {
	customer, err := s.Store.GetCustomer(ctx, customerID)
	if err != nil {
		return Statement{}, err
	}
	deliveries, payments, prices, err := s.billingInputs(ctx, customerID, period.End)
	if err != nil {
		return Statement{}, err
	}
	return BuildStatement(customer, period, deliveries, payments, prices), nil
}

// Ledger returns the customer's running account.
func (s *Service) Ledger(ctx context.Context, customerID CustomerID) ([]LedgerEntry, error) {
	if _, err := s.Store.GetCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	deliveries, payments, prices, err := s.billingInputs(ctx, customerID, time.Time{})
	if err != nil {
		return nil, err
	}
	return AccountLedger(customerID, deliveries, payments, prices), nil
}

// =============================================================================
// RECURRING ORDERS
// =============================================================================

// GenerateRecurring materializes the day's recurring orders. Each candidate is
// re-checked against the store right before insert, so a manual order placed
// since the first read wins. Run it from a single writer.
func (s *Service) GenerateRecurring(ctx context.Context, date time.Time) ([]Order, error) {
	day := s.Day(date)
	templates, err := s.Store.ListTemplates(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	existing, err := s.Store.OrdersForDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}

	var created []Order
	for _, o := range GenerateRecurringOrders(day, templates, existing) {
		if err := s.ensureNoOrder(ctx, o.CustomerID, day, ""); err != nil {
			s.Log.WithFields(logrus.Fields{
				"customer_id": o.CustomerID,
				"template_id": o.RecurringTemplateID,
			}).WithError(err).Warn("skipping recurring order")
			continue
		}
		saved, err := s.Store.CreateOrder(ctx, o)
		if err != nil {
			return created, fmt.Errorf("create recurring order for %s: %w", o.CustomerID, err)
		}
		created = append(created, saved)
	}
	s.Log.WithFields(logrus.Fields{
		"date":    generic.FormatDate(day),
		"created": len(created),
	}).Info("recurring orders generated")
	return created, nil
}

// SaveTemplate validates and creates or updates a recurring template.
func (s *Service) SaveTemplate(ctx context.Context, t RecurringOrderTemplate) (RecurringOrderTemplate, error) {
	t, err := NewTemplate(t)
	if err != nil {
		return RecurringOrderTemplate{}, err
	}
	if t.ID == "" {
		return s.Store.CreateTemplate(ctx, t)
	}
	if err := s.Store.UpdateTemplate(ctx, t); err != nil {
		return RecurringOrderTemplate{}, err
	}
	return t, nil
}

// ToggleTemplate flips a template between active and paused.
func (s *Service) ToggleTemplate(ctx context.Context, id string) (RecurringOrderTemplate, error) {
	t, err := s.Store.GetTemplate(ctx, id)
	if err != nil {
		return RecurringOrderTemplate{}, err
	}
	t.IsActive = !t.IsActive
	if err := s.Store.UpdateTemplate(ctx, t); err != nil {
		return RecurringOrderTemplate{}, err
	}
	return t, nil
}

// =============================================================================
// MASTER DATA
// =============================================================================

func (s *Service) AddCustomer(ctx context.Context, c Customer) (Customer, error) {
	c, err := NewCustomer(c)
	if err != nil {
		return Customer{}, err
	}
	return s.Store.CreateCustomer(ctx, c)
}

func (s *Service) AddProduct(ctx context.Context, p Product) (Product, error) {
	p, err := NewProduct(p)
	if err != nil {
		return Product{}, err
	}
	return s.Store.CreateProduct(ctx, p)
}

// UpdateCustomer replaces a customer's details, keeping its id and creation time.
func (s *Service) UpdateCustomer(ctx context.Context, id CustomerID, c Customer) (Customer, error) {
	current, err := s.Store.GetCustomer(ctx, id)
	if err != nil {
		return Customer{}, err
	}
	c, err = NewCustomer(c)
	if err != nil {
		return Customer{}, err
	}
	c.ID, c.CreatedAt = current.ID, current.CreatedAt
	if err := s.Store.UpdateCustomer(ctx, c); err != nil {
		return Customer{}, err
	}
	return c, nil
}

// UpdateProduct renames or reprices a catalog entry. Deliveries already
// recorded keep their snapshot price.
func (s *Service) UpdateProduct(ctx context.Context, p Product) (Product, error) {
	p, err := NewProduct(p)
	if err != nil {
		return Product{}, err
	}
	if p.ID == "" {
		return Product{}, generic.Invalid("id", "is required")
	}
	if err := s.Store.UpdateProduct(ctx, p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (s *Service) RemoveProduct(ctx context.Context, id string) error {
	return s.Store.DeleteProduct(ctx, id)
}

func (s *Service) RemoveTemplate(ctx context.Context, id string) error {
	if err := s.Store.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.Log.WithField("template_id", id).Info("recurring template removed")
	return nil
}

// CustomerOrders returns a customer's order history, newest delivery first.
func (s *Service) CustomerOrders(ctx context.Context, id CustomerID) ([]Order, error) {
	if _, err := s.Store.GetCustomer(ctx, id); err != nil {
		return nil, err
	}
	orders, err := s.Store.OrdersByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].DeliveryDate.After(orders[j].DeliveryDate)
	})
	return orders, nil
}
