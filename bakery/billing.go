/*
billing.go - Customer balances and statements

PURPOSE:
  Derives what a customer owes from two append-only ledgers: deliveries
  (debits, priced per line) and payments (credits). There is no stored
  balance field that could drift; every figure is recomputed.

FORMULAS:
  due     = sum over deliveries, over lines, of quantity x unit price
  paid    = sum of payment amounts
  balance = due - paid

  Statement over [start, end]:
    previousBalance = due - paid, restricted to records before start
    periodTotal     = due within [start, end], end inclusive to end of day
    periodPayments  = paid within the same window
    currentBalance  = previousBalance + periodTotal - periodPayments

ROUNDING:
  Sums stay unrounded; only the output fields are rounded to cents, half
  away from zero. This keeps balance(all time) equal to the current balance
  of a statement from Epoch through today.

SEE ALSO:
  - pricing.go: Unit price fallback chain
  - report/: CSV and printable renderings of Statement
*/
package bakery

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/generic"
)

// =============================================================================
// BALANCE
// =============================================================================

type AccountBalance struct {
	CustomerID CustomerID
	TotalDue   decimal.Decimal
	TotalPaid  decimal.Decimal
	Balance    decimal.Decimal
}

// totals are the unrounded running sums behind every billing figure.
type totals struct {
	due  decimal.Decimal
	paid decimal.Decimal
}

func (t totals) balance() decimal.Decimal { return t.due.Sub(t.paid) }

func sumAccount(customerID CustomerID, deliveries []Delivery, payments []Payment, prices PriceResolver, include func(time.Time) bool) totals {
	var t totals
	for _, d := range deliveries {
		if d.CustomerID == customerID && include(d.Date) {
			t.due = t.due.Add(prices.DeliveryTotal(d))
		}
	}
	for _, p := range payments {
		if p.CustomerID == customerID && include(p.Date) {
			t.paid = t.paid.Add(p.Amount)
		}
	}
	return t
}

func always(time.Time) bool { return true }

// CustomerBalance computes the all-time position of one customer.
func CustomerBalance(customerID CustomerID, deliveries []Delivery, payments []Payment, prices PriceResolver) AccountBalance {
	t := sumAccount(customerID, deliveries, payments, prices, always)
	return AccountBalance{
		CustomerID: customerID,
		TotalDue:   generic.RoundMoney(t.due),
		TotalPaid:  generic.RoundMoney(t.paid),
		Balance:    generic.RoundMoney(t.balance()),
	}
}

// Balances computes CustomerBalance for each customer, in input order.
func Balances(customers []Customer, deliveries []Delivery, payments []Payment, prices PriceResolver) []AccountBalance {
	out := make([]AccountBalance, 0, len(customers))
	for _, c := range customers {
		out = append(out, CustomerBalance(c.ID, deliveries, payments, prices))
	}
	return out
}

// =============================================================================
// STATEMENT
// =============================================================================

type StatementLine struct {
	Product   string
	Quantity  decimal.Decimal
	Unit      string
	Price     decimal.Decimal
	LineTotal decimal.Decimal
}

type StatementDelivery struct {
	ID    string
	Date  time.Time
	Lines []StatementLine
	Total decimal.Decimal
}

type Statement struct {
	Customer Customer
	Period   generic.Period

	PreviousBalance decimal.Decimal
	PeriodTotal     decimal.Decimal
	PeriodPayments  decimal.Decimal
	CurrentBalance  decimal.Decimal

	// Itemized records inside the period, ascending by date.
	Deliveries []StatementDelivery
	Payments   []Payment
}

// BuildStatement computes a billing statement for customer over period.
// Records dated after the period are ignored.
func BuildStatement(customer Customer, period generic.Period, deliveries []Delivery, payments []Payment, prices PriceResolver) Statement {
	prev := sumAccount(customer.ID, deliveries, payments, prices, period.IsBefore)
	cur := sumAccount(customer.ID, deliveries, payments, prices, period.Contains)

	st := Statement{
		Customer:        customer,
		Period:          period,
		PreviousBalance: generic.RoundMoney(prev.balance()),
		PeriodTotal:     generic.RoundMoney(cur.due),
		PeriodPayments:  generic.RoundMoney(cur.paid),
		CurrentBalance:  generic.RoundMoney(prev.balance().Add(cur.due).Sub(cur.paid)),
	}

	for _, d := range deliveries {
		if d.CustomerID != customer.ID || !period.Contains(d.Date) {
			continue
		}
		sd := StatementDelivery{ID: d.ID, Date: d.Date}
		total := decimal.Zero
		for _, l := range d.Lines {
			price := prices.UnitPrice(l)
			lineTotal := l.Quantity.Mul(price)
			total = total.Add(lineTotal)
			sd.Lines = append(sd.Lines, StatementLine{
				Product:   l.Product,
				Quantity:  l.Quantity,
				Unit:      l.Unit,
				Price:     generic.RoundMoney(price),
				LineTotal: generic.RoundMoney(lineTotal),
			})
		}
		sd.Total = generic.RoundMoney(total)
		st.Deliveries = append(st.Deliveries, sd)
	}
	for _, p := range payments {
		if p.CustomerID == customer.ID && period.Contains(p.Date) {
			st.Payments = append(st.Payments, p)
		}
	}

	sort.SliceStable(st.Deliveries, func(i, j int) bool { return st.Deliveries[i].Date.Before(st.Deliveries[j].Date) })
	sort.SliceStable(st.Payments, func(i, j int) bool { return st.Payments[i].Date.Before(st.Payments[j].Date) })
	return st
}

// =============================================================================
// ACCOUNT LEDGER - Chronological debits and credits with running balance
// =============================================================================

type EntryKind string

const (
	EntryDelivery EntryKind = "delivery"
	EntryPayment  EntryKind = "payment"
)

type LedgerEntry struct {
	Date      time.Time
	Kind      EntryKind
	Reference string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Balance   decimal.Decimal
}

// AccountLedger lists a customer's deliveries and payments oldest first with
// the balance after each entry. Same-instant deliveries precede payments.
func AccountLedger(customerID CustomerID, deliveries []Delivery, payments []Payment, prices PriceResolver) []LedgerEntry {
	type raw struct {
		entry LedgerEntry
		delta decimal.Decimal
	}
	var items []raw
	for _, d := range deliveries {
		if d.CustomerID != customerID {
			continue
		}
		due := prices.DeliveryTotal(d)
		items = append(items, raw{
			entry: LedgerEntry{Date: d.Date, Kind: EntryDelivery, Reference: d.ID, Debit: generic.RoundMoney(due)},
			delta: due,
		})
	}
	for _, p := range payments {
		if p.CustomerID != customerID {
			continue
		}
		items = append(items, raw{
			entry: LedgerEntry{Date: p.Date, Kind: EntryPayment, Reference: p.ID, Credit: generic.RoundMoney(p.Amount)},
			delta: p.Amount.Neg(),
		})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].entry.Date.Before(items[j].entry.Date) })

	out := make([]LedgerEntry, 0, len(items))
	running := decimal.Zero
	for _, it := range items {
		running = running.Add(it.delta)
		e := it.entry
		e.Balance = generic.RoundMoney(running)
		out = append(out, e)
	}
	return out
}
