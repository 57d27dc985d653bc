/*
matching.go - Order fulfilment progress

PURPOSE:
  Answers "how much of this order has been delivered?" for a day's orders.
  Drivers may visit a customer several times a day, so one order line is
  usually satisfied by several small deliveries.

MATCHING RULE:
  A delivery line counts toward an order line when:
    - the delivery belongs to the order's customer
    - the delivery falls on the order's delivery day (order's location)
    - (product, unit) match exactly, case-sensitive

  Deliveries carry no reference to a specific order. When a customer has two
  orders for the same day, the day's deliveries are pooled and credited to
  both. Order creation rejects duplicate customer/date orders, which keeps
  this from happening in practice.

OUTPUT:
  Per line:  Ordered, Delivered, IsComplete (delivered >= ordered),
             Progress (delivered/ordered*100, clamped to [0, 100])
  Per order: IsComplete (all lines), HasPartialDelivery (any delivered > 0),
             Extras (delivered products the order never asked for)

  Over-delivery is not an error: the line is complete and progress stays 100.
*/
package bakery

import (
	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/generic"
)

// LineProgress annotates a single order line.
type LineProgress struct {
	Product    string
	Unit       string
	Ordered    decimal.Decimal
	Delivered  decimal.Decimal
	IsComplete bool
	Progress   decimal.Decimal
}

// ExtraLine is a delivered product that has no matching order line.
type ExtraLine struct {
	Product   string
	Unit      string
	Delivered decimal.Decimal
}

// OrderProgress annotates an order with its fulfilment state.
type OrderProgress struct {
	Order              Order
	Lines              []LineProgress
	Extras             []ExtraLine
	IsComplete         bool
	HasPartialDelivery bool
}

// deliveredTotals is an insertion-ordered (product, unit) -> quantity map.
type deliveredTotals struct {
	keys   []generic.LineKey
	totals map[generic.LineKey]decimal.Decimal
}

func newDeliveredTotals() *deliveredTotals {
	return &deliveredTotals{totals: make(map[generic.LineKey]decimal.Decimal)}
}

func (t *deliveredTotals) add(k generic.LineKey, q decimal.Decimal) {
	cur, ok := t.totals[k]
	if !ok {
		t.keys = append(t.keys, k)
	}
	t.totals[k] = cur.Add(q)
}

// MatchOrders computes progress for each order against the given deliveries.
// The result preserves the order of the input.
func MatchOrders(orders []Order, deliveries []Delivery) []OrderProgress {
	result := make([]OrderProgress, 0, len(orders))
	for _, o := range orders {
		result = append(result, MatchOrder(o, deliveries))
	}
	return result
}

// MatchOrder is MatchOrders for a single order.
func MatchOrder(o Order, deliveries []Delivery) OrderProgress {
	delivered := newDeliveredTotals()
	for _, d := range deliveries {
		if d.CustomerID != o.CustomerID || !generic.SameDay(d.Date, o.DeliveryDate) {
			continue
		}
		for _, l := range d.Lines {
			delivered.add(l.Key(), l.Quantity)
		}
	}

	p := OrderProgress{Order: o, IsComplete: true}
	ordered := make(map[generic.LineKey]bool, len(o.Lines))
	for _, l := range o.Lines {
		k := l.Key()
		ordered[k] = true
		got := delivered.totals[k]
		lp := LineProgress{
			Product:    l.Product,
			Unit:       l.Unit,
			Ordered:    l.Quantity,
			Delivered:  got,
			IsComplete: got.GreaterThanOrEqual(l.Quantity),
			Progress:   generic.Percent(got, l.Quantity),
		}
		if !lp.IsComplete {
			p.IsComplete = false
		}
		if got.IsPositive() {
			p.HasPartialDelivery = true
		}
		p.Lines = append(p.Lines, lp)
	}

	for _, k := range delivered.keys {
		if !ordered[k] {
			p.Extras = append(p.Extras, ExtraLine{Product: k.Product, Unit: k.Unit, Delivered: delivered.totals[k]})
		}
	}
	return p
}
