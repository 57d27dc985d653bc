package bakery

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/generic"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// =============================================================================
// SUMMARY ROWS - Per-product totals across many orders or deliveries
// =============================================================================

// SummaryRow totals one (product, unit) pair. Count is incremented once per
// line occurrence, so an order listing the same product twice counts twice.
type SummaryRow struct {
	Product       string
	Unit          string
	TotalQuantity decimal.Decimal
	Count         int
}

// Summarizer rolls lines up into rows sorted for a locale.
type Summarizer struct {
	Locale language.Tag
}

// DefaultSummarizer sorts product names the way the bakery's staff read them.
var DefaultSummarizer = Summarizer{Locale: language.Italian}

// SummarizeOrders rolls up order lines with DefaultSummarizer.
func SummarizeOrders(orders []Order) []SummaryRow {
	return DefaultSummarizer.Orders(orders)
}

// SummarizeDeliveries rolls up delivery lines with DefaultSummarizer.
func SummarizeDeliveries(deliveries []Delivery) []SummaryRow {
	return DefaultSummarizer.Deliveries(deliveries)
}

func (s Summarizer) Orders(orders []Order) []SummaryRow {
	acc := newRowAccumulator()
	for _, o := range orders {
		for _, l := range o.Lines {
			acc.add(l.Key(), l.Quantity)
		}
	}
	return s.sorted(acc.rows)
}

func (s Summarizer) Deliveries(deliveries []Delivery) []SummaryRow {
	acc := newRowAccumulator()
	for _, d := range deliveries {
		for _, l := range d.Lines {
			acc.add(l.Key(), l.Quantity)
		}
	}
	return s.sorted(acc.rows)
}

// sorted orders rows by product, then unit, using the locale's collation.
// Rows that still compare equal keep their encounter order.
func (s Summarizer) sorted(rows []SummaryRow) []SummaryRow {
	c := collate.New(s.Locale)
	sort.SliceStable(rows, func(i, j int) bool {
		if cmp := c.CompareString(rows[i].Product, rows[j].Product); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(rows[i].Unit, rows[j].Unit) < 0
	})
	return rows
}

type rowAccumulator struct {
	index map[generic.LineKey]int
	rows  []SummaryRow
}

func newRowAccumulator() *rowAccumulator {
	return &rowAccumulator{index: make(map[generic.LineKey]int)}
}

func (a *rowAccumulator) add(k generic.LineKey, q decimal.Decimal) {
	i, ok := a.index[k]
	if !ok {
		i = len(a.rows)
		a.index[k] = i
		a.rows = append(a.rows, SummaryRow{Product: k.Product, Unit: k.Unit})
	}
	a.rows[i].TotalQuantity = a.rows[i].TotalQuantity.Add(q)
	a.rows[i].Count++
}

// TotalQuantity sums every row regardless of unit, as the daily sheets do.
func TotalQuantity(rows []SummaryRow) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.TotalQuantity)
	}
	return total
}

// =============================================================================
// DAILY STATS & DELIVERY REPORT
// =============================================================================

// DailyStats is the dashboard view of one day's deliveries.
type DailyStats struct {
	DeliveryCount int
	CustomerCount int
	TotalQuantity decimal.Decimal
	Products      []SummaryRow
}

func (s Summarizer) DailyStats(deliveries []Delivery) DailyStats {
	customers := make(map[CustomerID]bool)
	for _, d := range deliveries {
		customers[d.CustomerID] = true
	}
	rows := s.Deliveries(deliveries)
	return DailyStats{
		DeliveryCount: len(deliveries),
		CustomerCount: len(customers),
		TotalQuantity: TotalQuantity(rows),
		Products:      rows,
	}
}

// DeliveryReport summarizes deliveries over a period, optionally for one customer.
type DeliveryReport struct {
	Label           string
	Period          generic.Period
	Deliveries      []Delivery
	Summary         []SummaryRow
	TotalQuantity   decimal.Decimal
	TotalDeliveries int
}

// DeliveryReport keeps only deliveries inside period (and for customerID when
// set), newest first, and rolls them up.
func (s Summarizer) DeliveryReport(label string, period generic.Period, customerID CustomerID, deliveries []Delivery) DeliveryReport {
	var selected []Delivery
	for _, d := range deliveries {
		if customerID != "" && d.CustomerID != customerID {
			continue
		}
		if period.Contains(d.Date) {
			selected = append(selected, d)
		}
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].Date.After(selected[j].Date) })
	rows := s.Deliveries(selected)
	return DeliveryReport{
		Label:           label,
		Period:          period,
		Deliveries:      selected,
		Summary:         rows,
		TotalQuantity:   TotalQuantity(rows),
		TotalDeliveries: len(selected),
	}
}
