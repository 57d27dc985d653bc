package report_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
	"github.com/warp/bakery-engine/report"
	"golang.org/x/text/language"
)

var cet = time.FixedZone("CET", 3600)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// readCSV tolerates ragged rows; encoding/csv drops the blank separator lines.
func readCSV(t *testing.T, raw string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(raw))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func juneStatement(t *testing.T) bakery.Statement {
	t.Helper()
	june, err := generic.NewPeriod(time.Date(2024, 6, 1, 0, 0, 0, 0, cet), time.Date(2024, 6, 30, 0, 0, 0, 0, cet))
	require.NoError(t, err)
	return bakery.Statement{
		Customer: bakery.Customer{ID: "c-1", Name: "Bar <Roma>", Address: "Via Appia 1"},
		Period:   june,
		Deliveries: []bakery.StatementDelivery{{
			ID:   "d-1",
			Date: time.Date(2024, 6, 4, 7, 0, 0, 0, cet),
			Lines: []bakery.StatementLine{
				{Product: "Sourdough", Quantity: dec("5"), Unit: "kg", Price: dec("4"), LineTotal: dec("20")},
				{Product: "Croissant", Quantity: dec("10"), Unit: "pieces", Price: dec("2"), LineTotal: dec("20")},
			},
			Total: dec("40"),
		}},
		Payments: []bakery.Payment{
			{ID: "p-1", CustomerID: "c-1", Amount: dec("20"), Date: time.Date(2024, 6, 15, 0, 0, 0, 0, cet), Method: bakery.MethodCash},
		},
		PreviousBalance: dec("70"),
		PeriodTotal:     dec("40"),
		PeriodPayments:  dec("20"),
		CurrentBalance:  dec("90"),
	}
}

func TestWriteStatementCSV(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, report.WriteStatementCSV(&buf, juneStatement(t)))

	records := readCSV(t, buf.String())

	// Header block, 2 delivery lines, 1 payment, 4 summary rows.
	require.Len(t, records, 10)
	assert.Equal(t, []string{"Statement", "Bar <Roma>"}, records[0])
	assert.Equal(t, []string{"Period", "[2024-06-01, 2024-06-30]"}, records[1])
	assert.Equal(t, []string{"Date", "Type", "Product", "Quantity", "Unit", "Price", "Amount"}, records[2])
	assert.Equal(t, []string{"2024-06-04", "delivery", "Sourdough", "5", "kg", "4.00", "20.00"}, records[3])
	assert.Equal(t, []string{"2024-06-15", "payment", "cash", "", "", "", "-20.00"}, records[5])
	assert.Equal(t, []string{"Previous balance", "70.00"}, records[6])
	assert.Equal(t, []string{"Current balance", "90.00"}, records[9])
	assert.Contains(t, buf.String(), "\n\n", "blank line separates the blocks")
}

func TestWriteStatementCSV_EmptyPeriod(t *testing.T) {
	st := juneStatement(t)
	st.Deliveries = nil
	st.Payments = nil
	var buf bytes.Buffer

	require.NoError(t, report.WriteStatementCSV(&buf, st))

	assert.Len(t, readCSV(t, buf.String()), 7)
}

func TestWriteSummaryCSV(t *testing.T) {
	rows := []bakery.SummaryRow{
		{Product: "Baguette", Unit: "pezzi", TotalQuantity: dec("1"), Count: 1},
		{Product: "Bread", Unit: "kg", TotalQuantity: dec("5.5"), Count: 2},
	}
	var buf bytes.Buffer

	require.NoError(t, report.WriteSummaryCSV(&buf, rows))

	assert.Equal(t, "Product,Unit,Total,Count\nBaguette,pezzi,1,1\nBread,kg,5.5,2\n", buf.String())
}

func TestRenderStatementHTML(t *testing.T) {
	var buf bytes.Buffer

	err := report.RenderStatementHTML(&buf, juneStatement(t), report.HTMLOptions{
		BakeryName: "Forno Blu",
		Locale:     language.English,
	})

	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "<h1>Forno Blu</h1>")
	assert.Contains(t, html, "Bar &lt;Roma&gt;", "customer name is escaped")
	assert.Contains(t, html, "Period: 2024-06-01 - 2024-06-30")
	assert.Contains(t, html, "Sourdough")
	assert.Contains(t, html, "Generated N/A")
	assert.NotContains(t, html, "No deliveries in this period.")
}

func TestRenderStatementHTML_EmptySections(t *testing.T) {
	st := juneStatement(t)
	st.Deliveries = nil
	st.Payments = nil
	var buf bytes.Buffer

	require.NoError(t, report.RenderStatementHTML(&buf, st, report.HTMLOptions{
		GeneratedAt: time.Date(2024, 7, 1, 9, 0, 0, 0, cet),
	}))

	html := buf.String()
	assert.Contains(t, html, "No deliveries in this period.")
	assert.Contains(t, html, "No payments in this period.")
	assert.Contains(t, html, "Generated 2024-07-01")
	assert.NotContains(t, html, "<h1>")
}
