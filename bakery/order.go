package bakery

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/warp/bakery-engine/generic"
)

// =============================================================================
// CONSTRUCTION BOUNDARY - Validation happens here, never inside the engines
// =============================================================================

// OrderInput is what a caller supplies to place an order.
type OrderInput struct {
	CustomerID   CustomerID
	CustomerName string
	DeliveryDate time.Time
	Lines        []OrderLine
	Notes        string
}

// NewOrder validates input and returns a pending order for local midnight of
// the delivery date. The id and creation time are assigned by the store.
func NewOrder(in OrderInput) (Order, error) {
	if in.CustomerID == "" {
		return Order{}, generic.Invalid("customer_id", "is required")
	}
	if in.DeliveryDate.IsZero() {
		return Order{}, generic.Invalid("delivery_date", "is required")
	}
	lines, err := validateOrderLines(in.Lines)
	if err != nil {
		return Order{}, err
	}
	return Order{
		CustomerID:   in.CustomerID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		DeliveryDate: generic.StartOfDay(in.DeliveryDate),
		Lines:        lines,
		Status:       StatusPending,
		Notes:        strings.TrimSpace(in.Notes),
	}, nil
}

func validateOrderLines(lines []OrderLine) ([]OrderLine, error) {
	if len(lines) == 0 {
		return nil, generic.Invalid("lines", "at least one product is required")
	}
	out := make([]OrderLine, 0, len(lines))
	for i, l := range lines {
		l.Product = strings.TrimSpace(l.Product)
		l.Unit = strings.TrimSpace(l.Unit)
		field := fmt.Sprintf("lines[%d]", i)
		switch {
		case l.Product == "":
			return nil, generic.Invalid(field, "product is required")
		case l.Unit == "":
			return nil, generic.Invalid(field, "unit is required")
		case !l.Quantity.IsPositive():
			return nil, generic.Invalid(field, "quantity must be greater than zero, got %s", l.Quantity)
		}
		out = append(out, l)
	}
	return out, nil
}

// Advance moves an order forward: pending -> confirmed -> delivered.
// Skipping confirmation is allowed; going backwards is not.
func (o *Order) Advance(to OrderStatus) error {
	allowed := map[OrderStatus][]OrderStatus{
		StatusPending:   {StatusConfirmed, StatusDelivered},
		StatusConfirmed: {StatusDelivered},
	}
	for _, s := range allowed[o.Status] {
		if s == to {
			o.Status = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", generic.ErrInvalidTransition, o.Status, to)
}

// NewDelivery validates a delivery before it is recorded.
func NewDelivery(d Delivery) (Delivery, error) {
	if d.CustomerID == "" {
		return Delivery{}, generic.Invalid("customer_id", "is required")
	}
	if d.Date.IsZero() {
		return Delivery{}, generic.Invalid("date", "is required")
	}
	if len(d.Lines) == 0 {
		return Delivery{}, generic.Invalid("lines", "at least one product is required")
	}
	lines := make([]DeliveryLine, 0, len(d.Lines))
	for i, l := range d.Lines {
		l.Product = strings.TrimSpace(l.Product)
		l.Unit = strings.TrimSpace(l.Unit)
		field := fmt.Sprintf("lines[%d]", i)
		switch {
		case l.Product == "":
			return Delivery{}, generic.Invalid(field, "product is required")
		case !l.Quantity.IsPositive():
			return Delivery{}, generic.Invalid(field, "quantity must be greater than zero, got %s", l.Quantity)
		case l.PriceAtDelivery.Valid && l.PriceAtDelivery.Decimal.IsNegative():
			return Delivery{}, generic.Invalid(field, "price cannot be negative")
		}
		lines = append(lines, l)
	}
	d.Lines = lines
	return d, nil
}

// NewPayment validates a manually recorded payment. An empty method means cash.
func NewPayment(p Payment) (Payment, error) {
	if p.CustomerID == "" {
		return Payment{}, generic.Invalid("customer_id", "is required")
	}
	if p.Amount.IsNegative() {
		return Payment{}, generic.Invalid("amount", "cannot be negative")
	}
	if p.Date.IsZero() {
		return Payment{}, generic.Invalid("date", "is required")
	}
	if p.Method == "" {
		p.Method = MethodCash
	}
	if !p.Method.Valid() {
		return Payment{}, generic.Invalid("method", "unknown payment method %q", p.Method)
	}
	p.Notes = strings.TrimSpace(p.Notes)
	return p, nil
}

// NewTemplate validates a recurring template and sorts its weekdays.
func NewTemplate(t RecurringOrderTemplate) (RecurringOrderTemplate, error) {
	if t.CustomerID == "" {
		return RecurringOrderTemplate{}, generic.Invalid("customer_id", "is required")
	}
	if len(t.DaysOfWeek) == 0 {
		return RecurringOrderTemplate{}, generic.Invalid("days_of_week", "select at least one day")
	}
	seen := make(map[time.Weekday]bool)
	var days []time.Weekday
	for _, d := range t.DaysOfWeek {
		if d < time.Sunday || d > time.Saturday {
			return RecurringOrderTemplate{}, generic.Invalid("days_of_week", "day %d out of range 0..6", d)
		}
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	lines, err := validateOrderLines(t.Lines)
	if err != nil {
		return RecurringOrderTemplate{}, err
	}
	t.DaysOfWeek = days
	t.Lines = lines
	return t, nil
}

// NewProduct validates a catalog entry.
func NewProduct(p Product) (Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.DefaultUnit = strings.TrimSpace(p.DefaultUnit)
	if p.Name == "" {
		return Product{}, generic.Invalid("name", "is required")
	}
	if p.DefaultUnit == "" {
		p.DefaultUnit = "kg"
	}
	if p.Price.Valid && p.Price.Decimal.IsNegative() {
		return Product{}, generic.Invalid("price", "cannot be negative")
	}
	return p, nil
}

// SameProductName compares catalog names case-insensitively.
func SameProductName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// NewCustomer validates a customer record.
func NewCustomer(c Customer) (Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return Customer{}, generic.Invalid("name", "is required")
	}
	for i, p := range c.CustomProducts {
		if strings.TrimSpace(p.Name) == "" {
			return Customer{}, generic.Invalid(fmt.Sprintf("custom_products[%d]", i), "name is required")
		}
	}
	return c, nil
}
