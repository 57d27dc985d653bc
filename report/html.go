package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// HTMLOptions controls the printable statement.
type HTMLOptions struct {
	// BakeryName heads the document.
	BakeryName string
	// Locale drives number formatting. Defaults to Italian.
	Locale language.Tag
	// Currency is printed before every amount.
	Currency string
	// GeneratedAt is printed in the footer; zero renders as "N/A".
	GeneratedAt time.Time
}

// RenderStatementHTML writes a printable statement. Amounts are formatted for
// opts.Locale; rendering consumes only Statement fields.
func RenderStatementHTML(w io.Writer, st bakery.Statement, opts HTMLOptions) error {
	if opts.Locale == language.Und {
		opts.Locale = language.Italian
	}
	if opts.Currency == "" {
		opts.Currency = "€"
	}
	p := message.NewPrinter(opts.Locale)

	funcs := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return opts.Currency + " " + p.Sprintf("%.2f", d.InexactFloat64())
		},
		"qty":  func(d decimal.Decimal) string { return p.Sprint(d.InexactFloat64()) },
		"date": generic.FormatDate,
		"neg":  func(d decimal.Decimal) decimal.Decimal { return d.Neg() },
	}
	tmpl, err := template.New("statement").Funcs(funcs).Parse(statementTemplate)
	if err != nil {
		return fmt.Errorf("parse statement template: %w", err)
	}

	data := struct {
		Options   HTMLOptions
		Statement bakery.Statement
	}{opts, st}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render statement: %w", err)
	}
	return nil
}

const statementTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Statement - {{.Statement.Customer.Name}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; margin-bottom: 1.5em; }
th, td { border-bottom: 1px solid #ccc; padding: 4px 8px; text-align: left; }
td.num, th.num { text-align: right; }
.summary td { font-weight: bold; }
@media print { body { margin: 0; } }
</style>
</head>
<body>
{{with .Options.BakeryName}}<h1>{{.}}</h1>{{end}}
<h2>Statement for {{.Statement.Customer.Name}}</h2>
{{with .Statement.Customer.Address}}<p>{{.}}</p>{{end}}
<p>Period: {{date .Statement.Period.Start}} - {{date .Statement.Period.End}}</p>

<h3>Deliveries</h3>
{{if .Statement.Deliveries}}
<table>
<tr><th>Date</th><th>Product</th><th class="num">Quantity</th><th>Unit</th><th class="num">Price</th><th class="num">Amount</th></tr>
{{range $d := .Statement.Deliveries}}{{range $d.Lines}}
<tr><td>{{date $d.Date}}</td><td>{{.Product}}</td><td class="num">{{qty .Quantity}}</td><td>{{.Unit}}</td><td class="num">{{money .Price}}</td><td class="num">{{money .LineTotal}}</td></tr>
{{end}}{{end}}
</table>
{{else}}<p>No deliveries in this period.</p>{{end}}

<h3>Payments</h3>
{{if .Statement.Payments}}
<table>
<tr><th>Date</th><th>Method</th><th>Notes</th><th class="num">Amount</th></tr>
{{range .Statement.Payments}}
<tr><td>{{date .Date}}</td><td>{{.Method}}</td><td>{{.Notes}}</td><td class="num">{{money (neg .Amount)}}</td></tr>
{{end}}
</table>
{{else}}<p>No payments in this period.</p>{{end}}

<table class="summary">
<tr><td>Previous balance</td><td class="num">{{money .Statement.PreviousBalance}}</td></tr>
<tr><td>Period total</td><td class="num">{{money .Statement.PeriodTotal}}</td></tr>
<tr><td>Payments</td><td class="num">{{money .Statement.PeriodPayments}}</td></tr>
<tr><td>Current balance</td><td class="num">{{money .Statement.CurrentBalance}}</td></tr>
</table>
<p><small>Generated {{date .Options.GeneratedAt}}</small></p>
</body>
</html>
`
