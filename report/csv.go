// Package report renders billing statements and product summaries for
// export: CSV for spreadsheets, HTML for printing.
package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
)

// WriteStatementCSV writes one row per delivery line, then one row per
// payment, then the summary block.
func WriteStatementCSV(w io.Writer, st bakery.Statement) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Statement", st.Customer.Name},
		{"Period", st.Period.String()},
		{},
		{"Date", "Type", "Product", "Quantity", "Unit", "Price", "Amount"},
	}
	for _, d := range st.Deliveries {
		for _, l := range d.Lines {
			rows = append(rows, []string{
				generic.FormatDate(d.Date), "delivery", l.Product,
				l.Quantity.String(), l.Unit, l.Price.StringFixed(2), l.LineTotal.StringFixed(2),
			})
		}
	}
	for _, p := range st.Payments {
		rows = append(rows, []string{
			generic.FormatDate(p.Date), "payment", string(p.Method),
			"", "", "", p.Amount.Neg().StringFixed(2),
		})
	}
	rows = append(rows,
		[]string{},
		[]string{"Previous balance", st.PreviousBalance.StringFixed(2)},
		[]string{"Period total", st.PeriodTotal.StringFixed(2)},
		[]string{"Payments", st.PeriodPayments.StringFixed(2)},
		[]string{"Current balance", st.CurrentBalance.StringFixed(2)},
	)

	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write statement csv: %w", err)
	}
	return nil
}

// WriteSummaryCSV writes aggregation rows in the order given.
func WriteSummaryCSV(w io.Writer, rows []bakery.SummaryRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Product", "Unit", "Total", "Count"}); err != nil {
		return fmt.Errorf("write summary csv: %w", err)
	}
	for _, r := range rows {
		rec := []string{r.Product, r.Unit, r.TotalQuantity.String(), fmt.Sprint(r.Count)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write summary csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
