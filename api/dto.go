/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication and the conversions
  to and from the bakery domain types.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

NUMBERS:
  Responses carry quantities and money as JSON numbers (float64), rounded
  by the engines before conversion. Request quantities and amounts are read
  leniently: a number, a numeric string ("1,5" included) or garbage, which
  reads as 0 and is then rejected by validation where zero is not allowed.

DATES:
  Dates are "YYYY-MM-DD" in the server's configured location.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func money(d decimal.Decimal) float64 { return generic.RoundMoney(d).InexactFloat64() }

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// =============================================================================
// CUSTOMERS & PRODUCTS
// =============================================================================

type CustomProductDTO struct {
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type CustomerDTO struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Phone          string             `json:"phone,omitempty"`
	Address        string             `json:"address,omitempty"`
	LinkedUserID   string             `json:"linked_user_id,omitempty"`
	CustomProducts []CustomProductDTO `json:"custom_products"`
	CreatedAt      string             `json:"created_at,omitempty"`
}

type CreateCustomerRequest struct {
	Name           string             `json:"name"`
	Phone          string             `json:"phone"`
	Address        string             `json:"address"`
	LinkedUserID   string             `json:"linked_user_id"`
	CustomProducts []CustomProductDTO `json:"custom_products"`
}

func (r CreateCustomerRequest) toDomain() bakery.Customer {
	c := bakery.Customer{
		Name:         r.Name,
		Phone:        strings.TrimSpace(r.Phone),
		Address:      strings.TrimSpace(r.Address),
		LinkedUserID: r.LinkedUserID,
	}
	for _, p := range r.CustomProducts {
		c.CustomProducts = append(c.CustomProducts, bakery.CustomProduct{Name: strings.TrimSpace(p.Name), Unit: p.Unit})
	}
	return c
}

func toCustomerDTO(c bakery.Customer) CustomerDTO {
	dto := CustomerDTO{
		ID:             string(c.ID),
		Name:           c.Name,
		Phone:          c.Phone,
		Address:        c.Address,
		LinkedUserID:   c.LinkedUserID,
		CustomProducts: []CustomProductDTO{},
		CreatedAt:      formatTimestamp(c.CreatedAt),
	}
	for _, p := range c.CustomProducts {
		dto.CustomProducts = append(dto.CustomProducts, CustomProductDTO{Name: p.Name, Unit: p.Unit})
	}
	return dto
}

type ProductDTO struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DefaultUnit string   `json:"default_unit"`
	Price       *float64 `json:"price"`
	CreatedAt   string   `json:"created_at,omitempty"`
}

// CreateProductRequest leaves the price unset when it is absent or null.
type CreateProductRequest struct {
	Name        string          `json:"name"`
	DefaultUnit string          `json:"default_unit"`
	Price       json.RawMessage `json:"price"`
}

func (r CreateProductRequest) toDomain() bakery.Product {
	p := bakery.Product{Name: r.Name, DefaultUnit: r.DefaultUnit}
	if raw := strings.TrimSpace(string(r.Price)); raw != "" && raw != "null" {
		p.Price = decimal.NewNullDecimal(generic.LenientDecimal(r.Price))
	}
	return p
}

func toProductDTO(p bakery.Product) ProductDTO {
	dto := ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		DefaultUnit: p.DefaultUnit,
		CreatedAt:   formatTimestamp(p.CreatedAt),
	}
	if p.Price.Valid {
		v := money(p.Price.Decimal)
		dto.Price = &v
	}
	return dto
}

// =============================================================================
// ORDERS
// =============================================================================

type LineRequest struct {
	Product  string          `json:"product"`
	Quantity json.RawMessage `json:"quantity"`
	Unit     string          `json:"unit"`
}

func toOrderLines(in []LineRequest) []bakery.OrderLine {
	lines := make([]bakery.OrderLine, 0, len(in))
	for _, l := range in {
		lines = append(lines, bakery.OrderLine{
			Product:  l.Product,
			Quantity: generic.LenientDecimal(l.Quantity),
			Unit:     l.Unit,
		})
	}
	return lines
}

type OrderLineDTO struct {
	Product  string  `json:"product"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

func toOrderLineDTOs(lines []bakery.OrderLine) []OrderLineDTO {
	out := make([]OrderLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, OrderLineDTO{Product: l.Product, Quantity: l.Quantity.InexactFloat64(), Unit: l.Unit})
	}
	return out
}

type OrderRequest struct {
	CustomerID   string        `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	DeliveryDate string        `json:"delivery_date"`
	Lines        []LineRequest `json:"lines"`
	Notes        string        `json:"notes"`
}

// UpdateOrderRequest changes only the fields that are present.
type UpdateOrderRequest struct {
	DeliveryDate *string       `json:"delivery_date"`
	Lines        []LineRequest `json:"lines"`
	Notes        *string       `json:"notes"`
}

type StatusRequest struct {
	Status string `json:"status"`
}

type OrderDTO struct {
	ID                   string         `json:"id"`
	CustomerID           string         `json:"customer_id"`
	CustomerName         string         `json:"customer_name"`
	DeliveryDate         string         `json:"delivery_date"`
	Lines                []OrderLineDTO `json:"lines"`
	Status               string         `json:"status"`
	Notes                string         `json:"notes,omitempty"`
	RecurringTemplateID  string         `json:"recurring_template_id,omitempty"`
	CreatedAt            string         `json:"created_at,omitempty"`
	CanModify            bool           `json:"can_modify"`
	ModificationDeadline string         `json:"modification_deadline"`
}

func toOrderDTO(o bakery.Order, now time.Time) OrderDTO {
	return OrderDTO{
		ID:                   o.ID,
		CustomerID:           string(o.CustomerID),
		CustomerName:         o.CustomerName,
		DeliveryDate:         generic.FormatDate(o.DeliveryDate),
		Lines:                toOrderLineDTOs(o.Lines),
		Status:               string(o.Status),
		Notes:                o.Notes,
		RecurringTemplateID:  o.RecurringTemplateID,
		CreatedAt:            formatTimestamp(o.CreatedAt),
		CanModify:            bakery.CanModify(o.DeliveryDate, now),
		ModificationDeadline: bakery.ModificationDeadline(o.DeliveryDate).Format(time.RFC3339),
	}
}

type LineProgressDTO struct {
	Product    string  `json:"product"`
	Unit       string  `json:"unit"`
	Ordered    float64 `json:"ordered"`
	Delivered  float64 `json:"delivered"`
	IsComplete bool    `json:"is_complete"`
	Progress   float64 `json:"progress"`
}

type ExtraLineDTO struct {
	Product   string  `json:"product"`
	Unit      string  `json:"unit"`
	Delivered float64 `json:"delivered"`
}

type OrderProgressDTO struct {
	Order              OrderDTO          `json:"order"`
	Lines              []LineProgressDTO `json:"lines"`
	Extras             []ExtraLineDTO    `json:"extras"`
	IsComplete         bool              `json:"is_complete"`
	HasPartialDelivery bool              `json:"has_partial_delivery"`
}

func toOrderProgressDTO(p bakery.OrderProgress, now time.Time) OrderProgressDTO {
	dto := OrderProgressDTO{
		Order:              toOrderDTO(p.Order, now),
		Lines:              []LineProgressDTO{},
		Extras:             []ExtraLineDTO{},
		IsComplete:         p.IsComplete,
		HasPartialDelivery: p.HasPartialDelivery,
	}
	for _, l := range p.Lines {
		dto.Lines = append(dto.Lines, LineProgressDTO{
			Product:    l.Product,
			Unit:       l.Unit,
			Ordered:    l.Ordered.InexactFloat64(),
			Delivered:  l.Delivered.InexactFloat64(),
			IsComplete: l.IsComplete,
			Progress:   l.Progress.Round(1).InexactFloat64(),
		})
	}
	for _, e := range p.Extras {
		dto.Extras = append(dto.Extras, ExtraLineDTO{Product: e.Product, Unit: e.Unit, Delivered: e.Delivered.InexactFloat64()})
	}
	return dto
}

type SummaryRowDTO struct {
	Product       string  `json:"product"`
	Unit          string  `json:"unit"`
	TotalQuantity float64 `json:"total_quantity"`
	Count         int     `json:"count"`
}

func toSummaryDTOs(rows []bakery.SummaryRow) []SummaryRowDTO {
	out := make([]SummaryRowDTO, 0, len(rows))
	for _, r := range rows {
		out = append(out, SummaryRowDTO{
			Product:       r.Product,
			Unit:          r.Unit,
			TotalQuantity: r.TotalQuantity.InexactFloat64(),
			Count:         r.Count,
		})
	}
	return out
}

type DayOrdersDTO struct {
	Date    string             `json:"date"`
	Orders  []OrderProgressDTO `json:"orders"`
	Summary []SummaryRowDTO    `json:"summary"`
}

// =============================================================================
// DELIVERIES
// =============================================================================

type DeliveryLineRequest struct {
	Product  string          `json:"product"`
	Quantity json.RawMessage `json:"quantity"`
	Unit     string          `json:"unit"`
	// Price is optional; when absent the catalog price is snapshotted.
	Price json.RawMessage `json:"price_at_delivery"`
}

type DeliveryRequest struct {
	CustomerID   string                `json:"customer_id"`
	CustomerName string                `json:"customer_name"`
	Date         string                `json:"date"`
	Lines        []DeliveryLineRequest `json:"lines"`
}

type DeliveryLineDTO struct {
	Product         string   `json:"product"`
	Quantity        float64  `json:"quantity"`
	Unit            string   `json:"unit"`
	PriceAtDelivery *float64 `json:"price_at_delivery"`
}

type DeliveryDTO struct {
	ID           string            `json:"id"`
	CustomerID   string            `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	Date         string            `json:"date"`
	Lines        []DeliveryLineDTO `json:"lines"`
	CreatedAt    string            `json:"created_at,omitempty"`
}

func toDeliveryDTO(d bakery.Delivery) DeliveryDTO {
	dto := DeliveryDTO{
		ID:           d.ID,
		CustomerID:   string(d.CustomerID),
		CustomerName: d.CustomerName,
		Date:         generic.FormatDate(d.Date),
		Lines:        []DeliveryLineDTO{},
		CreatedAt:    formatTimestamp(d.CreatedAt),
	}
	for _, l := range d.Lines {
		line := DeliveryLineDTO{Product: l.Product, Quantity: l.Quantity.InexactFloat64(), Unit: l.Unit}
		if l.PriceAtDelivery.Valid {
			v := money(l.PriceAtDelivery.Decimal)
			line.PriceAtDelivery = &v
		}
		dto.Lines = append(dto.Lines, line)
	}
	return dto
}

type DeliveryReportDTO struct {
	Label           string          `json:"label"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	Deliveries      []DeliveryDTO   `json:"deliveries"`
	Summary         []SummaryRowDTO `json:"summary"`
	TotalQuantity   float64         `json:"total_quantity"`
	TotalDeliveries int             `json:"total_deliveries"`
}

func toDeliveryReportDTO(r bakery.DeliveryReport) DeliveryReportDTO {
	dto := DeliveryReportDTO{
		Label:           r.Label,
		From:            generic.FormatDate(r.Period.Start),
		To:              generic.FormatDate(r.Period.End),
		Deliveries:      []DeliveryDTO{},
		Summary:         toSummaryDTOs(r.Summary),
		TotalQuantity:   r.TotalQuantity.InexactFloat64(),
		TotalDeliveries: r.TotalDeliveries,
	}
	for _, d := range r.Deliveries {
		dto.Deliveries = append(dto.Deliveries, toDeliveryDTO(d))
	}
	return dto
}

type DailyStatsDTO struct {
	Date          string          `json:"date"`
	DeliveryCount int             `json:"delivery_count"`
	CustomerCount int             `json:"customer_count"`
	TotalQuantity float64         `json:"total_quantity"`
	Products      []SummaryRowDTO `json:"products"`
}

// =============================================================================
// PAYMENTS & BILLING
// =============================================================================

type PaymentRequest struct {
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Amount       json.RawMessage `json:"amount"`
	Date         string          `json:"date"`
	Method       string          `json:"method"`
	Notes        string          `json:"notes"`
}

type PaymentDTO struct {
	ID           string  `json:"id"`
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"`
	Method       string  `json:"method"`
	Notes        string  `json:"notes,omitempty"`
	CreatedAt    string  `json:"created_at,omitempty"`
}

func toPaymentDTO(p bakery.Payment) PaymentDTO {
	return PaymentDTO{
		ID:           p.ID,
		CustomerID:   string(p.CustomerID),
		CustomerName: p.CustomerName,
		Amount:       money(p.Amount),
		Date:         generic.FormatDate(p.Date),
		Method:       string(p.Method),
		Notes:        p.Notes,
		CreatedAt:    formatTimestamp(p.CreatedAt),
	}
}

type BalanceDTO struct {
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name,omitempty"`
	TotalDue     float64 `json:"total_due"`
	TotalPaid    float64 `json:"total_paid"`
	Balance      float64 `json:"balance"`
}

func toBalanceDTO(b bakery.AccountBalance, name string) BalanceDTO {
	return BalanceDTO{
		CustomerID:   string(b.CustomerID),
		CustomerName: name,
		TotalDue:     money(b.TotalDue),
		TotalPaid:    money(b.TotalPaid),
		Balance:      money(b.Balance),
	}
}

type LedgerEntryDTO struct {
	Date      string  `json:"date"`
	Kind      string  `json:"kind"`
	Reference string  `json:"reference"`
	Debit     float64 `json:"debit"`
	Credit    float64 `json:"credit"`
	Balance   float64 `json:"balance"`
}

type StatementLineDTO struct {
	Product   string  `json:"product"`
	Quantity  float64 `json:"quantity"`
	Unit      string  `json:"unit"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"line_total"`
}

type StatementDeliveryDTO struct {
	ID    string             `json:"id"`
	Date  string             `json:"date"`
	Lines []StatementLineDTO `json:"lines"`
	Total float64            `json:"total"`
}

type StatementDTO struct {
	Customer        CustomerDTO            `json:"customer"`
	From            string                 `json:"from"`
	To              string                 `json:"to"`
	PreviousBalance float64                `json:"previous_balance"`
	PeriodTotal     float64                `json:"period_total"`
	PeriodPayments  float64                `json:"period_payments"`
	CurrentBalance  float64                `json:"current_balance"`
	Deliveries      []StatementDeliveryDTO `json:"deliveries"`
	Payments        []PaymentDTO           `json:"payments"`
}

func toStatementDTO(st bakery.Statement) StatementDTO {
	dto := StatementDTO{
		Customer:        toCustomerDTO(st.Customer),
		From:            generic.FormatDate(st.Period.Start),
		To:              generic.FormatDate(st.Period.End),
		PreviousBalance: money(st.PreviousBalance),
		PeriodTotal:     money(st.PeriodTotal),
		PeriodPayments:  money(st.PeriodPayments),
		CurrentBalance:  money(st.CurrentBalance),
		Deliveries:      []StatementDeliveryDTO{},
		Payments:        []PaymentDTO{},
	}
	for _, d := range st.Deliveries {
		sd := StatementDeliveryDTO{ID: d.ID, Date: generic.FormatDate(d.Date), Total: money(d.Total)}
		for _, l := range d.Lines {
			sd.Lines = append(sd.Lines, StatementLineDTO{
				Product:   l.Product,
				Quantity:  l.Quantity.InexactFloat64(),
				Unit:      l.Unit,
				Price:     money(l.Price),
				LineTotal: money(l.LineTotal),
			})
		}
		dto.Deliveries = append(dto.Deliveries, sd)
	}
	for _, p := range st.Payments {
		dto.Payments = append(dto.Payments, toPaymentDTO(p))
	}
	return dto
}

// =============================================================================
// RECURRING TEMPLATES
// =============================================================================

type TemplateRequest struct {
	CustomerID   string        `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	DaysOfWeek   []int         `json:"days_of_week"`
	Lines        []LineRequest `json:"lines"`
	Notes        string        `json:"notes"`
	IsActive     *bool         `json:"is_active"`
}

func (r TemplateRequest) toDomain() bakery.RecurringOrderTemplate {
	t := bakery.RecurringOrderTemplate{
		CustomerID:   bakery.CustomerID(r.CustomerID),
		CustomerName: r.CustomerName,
		Lines:        toOrderLines(r.Lines),
		Notes:        r.Notes,
		IsActive:     r.IsActive == nil || *r.IsActive,
	}
	for _, d := range r.DaysOfWeek {
		t.DaysOfWeek = append(t.DaysOfWeek, time.Weekday(d))
	}
	return t
}

type TemplateDTO struct {
	ID           string         `json:"id"`
	CustomerID   string         `json:"customer_id"`
	CustomerName string         `json:"customer_name"`
	DaysOfWeek   []int          `json:"days_of_week"`
	Lines        []OrderLineDTO `json:"lines"`
	Notes        string         `json:"notes,omitempty"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    string         `json:"created_at,omitempty"`
}

func toTemplateDTO(t bakery.RecurringOrderTemplate) TemplateDTO {
	dto := TemplateDTO{
		ID:           t.ID,
		CustomerID:   string(t.CustomerID),
		CustomerName: t.CustomerName,
		DaysOfWeek:   []int{},
		Lines:        toOrderLineDTOs(t.Lines),
		Notes:        t.Notes,
		IsActive:     t.IsActive,
		CreatedAt:    formatTimestamp(t.CreatedAt),
	}
	for _, d := range t.DaysOfWeek {
		dto.DaysOfWeek = append(dto.DaysOfWeek, int(d))
	}
	return dto
}

type GenerateResponse struct {
	Date    string     `json:"date"`
	Created int        `json:"created"`
	Orders  []OrderDTO `json:"orders"`
}
