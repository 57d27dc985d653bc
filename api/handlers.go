/*
handlers.go - HTTP API handlers for the bakery engine

PURPOSE:
  Exposes order taking, delivery recording, billing and recurring orders
  over REST. Handlers parse and validate HTTP input, delegate to
  bakery.Service and serialize the result.

ENDPOINTS:
  Master data:
    GET    /api/customers                   List customers
    POST   /api/customers                   Create customer
    GET    /api/customers/{id}              Get customer
    PUT    /api/customers/{id}              Update customer
    GET    /api/customers/{id}/orders       Order history
    GET    /api/products                    List catalog
    POST   /api/products                    Create product
    PUT    /api/products/{id}               Rename or reprice product
    DELETE /api/products/{id}               Remove product
    POST   /api/products/defaults           Seed the starter catalog

  Orders:
    GET    /api/orders?date=                Day sheet with progress + summary
    POST   /api/orders                      Place order
    PUT    /api/orders/{id}                 Edit order (modification window)
    DELETE /api/orders/{id}                 Cancel order (modification window)
    POST   /api/orders/{id}/status          Advance status

  Deliveries:
    GET    /api/deliveries?from=&to=&customer_id=   Delivery report
    POST   /api/deliveries                  Record delivery
    DELETE /api/deliveries/{id}             Remove delivery
    GET    /api/dashboard?date=             Daily stats

  Billing:
    GET    /api/payments?from=&to=&customer_id=
    POST   /api/payments
    DELETE /api/payments/{id}
    GET    /api/balances
    GET    /api/customers/{id}/balance
    GET    /api/customers/{id}/ledger
    GET    /api/customers/{id}/statement?from=&to=&format=json|csv|html

  Recurring:
    GET    /api/recurring?customer_id=
    POST   /api/recurring
    POST   /api/recurring/{id}/toggle
    DELETE /api/recurring/{id}
    POST   /api/recurring/generate?date=

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (window closed, duplicate order or product name)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization. Deploy behind an authenticating proxy.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
	"github.com/warp/bakery-engine/report"
	"golang.org/x/text/language"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service    *bakery.Service
	Log        logrus.FieldLogger
	Locale     language.Tag
	BakeryName string
}

// NewHandler creates a handler around service.
func NewHandler(service *bakery.Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{Service: service, Log: log, Locale: language.Italian}
}

func (h *Handler) loc() *time.Location { return h.Service.Location }

// Health reports liveness.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// CUSTOMER ENDPOINTS
// =============================================================================

// ListCustomers returns all customers sorted by name.
// GET /api/customers
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.Store.ListCustomers(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]CustomerDTO, 0, len(customers))
	for _, c := range customers {
		dtos = append(dtos, toCustomerDTO(c))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateCustomer creates a customer.
// POST /api/customers
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.Service.AddCustomer(r.Context(), req.toDomain())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerDTO(c))
}

// GetCustomer returns one customer.
// GET /api/customers/{id}
func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Service.Store.GetCustomer(r.Context(), customerParam(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// UpdateCustomer replaces a customer's details.
// PUT /api/customers/{id}
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c, err := h.Service.UpdateCustomer(r.Context(), customerParam(r), req.toDomain())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCustomerDTO(c))
}

// ListCustomerOrders returns a customer's orders, newest first.
// GET /api/customers/{id}/orders
func (h *Handler) ListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Service.CustomerOrders(r.Context(), customerParam(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	now := h.Service.Now()
	dtos := make([]OrderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o, now))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// PRODUCT ENDPOINTS
// =============================================================================

// ListProducts returns the catalog.
// GET /api/products
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.Store.ListProducts(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		dtos = append(dtos, toProductDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProduct adds a catalog entry.
// POST /api/products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := h.Service.AddProduct(r.Context(), req.toDomain())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductDTO(p))
}

// UpdateProduct renames or reprices a catalog entry.
// PUT /api/products/{id}
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p := req.toDomain()
	p.ID = chi.URLParam(r, "id")
	p, err := h.Service.UpdateProduct(r.Context(), p)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductDTO(p))
}

// DeleteProduct removes a catalog entry. Recorded deliveries keep their prices.
// DELETE /api/products/{id}
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddDefaultProducts seeds the starter catalog when it is empty.
// POST /api/products/defaults
func (h *Handler) AddDefaultProducts(w http.ResponseWriter, r *http.Request) {
	added, err := bakery.SeedDefaultProducts(r.Context(), h.Service.Store)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"added": added})
}

// =============================================================================
// ORDER ENDPOINTS
// =============================================================================

// ListOrders returns the orders of a day with fulfilment progress.
// GET /api/orders?date=YYYY-MM-DD (defaults to today)
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	date, err := h.queryDate(r, "date", h.Service.Now())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	day, err := h.Service.OrdersForDay(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	now := h.Service.Now()
	resp := DayOrdersDTO{
		Date:    generic.FormatDate(day.Date),
		Orders:  []OrderProgressDTO{},
		Summary: toSummaryDTOs(day.Summary),
	}
	for _, p := range day.Orders {
		resp.Orders = append(resp.Orders, toOrderProgressDTO(p, now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateOrder places an order.
// POST /api/orders
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date, err := h.parseDate("delivery_date", req.DeliveryDate)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	order, err := h.Service.PlaceOrder(r.Context(), bakery.OrderInput{
		CustomerID:   bakery.CustomerID(req.CustomerID),
		CustomerName: req.CustomerName,
		DeliveryDate: date,
		Lines:        toOrderLines(req.Lines),
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderDTO(order, h.Service.Now()))
}

// UpdateOrder edits an order that is still inside its modification window.
// PUT /api/orders/{id}
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	var newDate time.Time
	if req.DeliveryDate != nil {
		d, err := h.parseDate("delivery_date", *req.DeliveryDate)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		newDate = d
	}
	order, err := h.Service.EditOrder(r.Context(), chi.URLParam(r, "id"), func(e *bakery.EditingOrder) {
		if !newDate.IsZero() {
			e.SetDeliveryDate(newDate)
		}
		if req.Lines != nil {
			e.SetLines(toOrderLines(req.Lines))
		}
		if req.Notes != nil {
			e.SetNotes(*req.Notes)
		}
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order, h.Service.Now()))
}

// DeleteOrder cancels an order that is still inside its modification window.
// DELETE /api/orders/{id}
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.CancelOrder(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateOrderStatus advances an order's status.
// POST /api/orders/{id}/status
func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decodeBody(w, r, &req) {
		return
	}
	status := bakery.OrderStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		h.writeDomainError(w, r, generic.Invalid("status", "unknown status %q", req.Status))
		return
	}
	order, err := h.Service.AdvanceOrder(r.Context(), chi.URLParam(r, "id"), status)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderDTO(order, h.Service.Now()))
}

// =============================================================================
// DELIVERY ENDPOINTS
// =============================================================================

// ListDeliveries returns a delivery report for a date range.
// GET /api/deliveries?from=&to=&customer_id= (defaults to the current month)
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	period, err := h.queryPeriod(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	rep, err := h.Service.DeliveryReport(r.Context(), period, bakery.CustomerID(r.URL.Query().Get("customer_id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDeliveryReportDTO(rep))
}

// CreateDelivery records what left the bakery.
// POST /api/deliveries
func (h *Handler) CreateDelivery(w http.ResponseWriter, r *http.Request) {
	var req DeliveryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date := h.Service.Now()
	if req.Date != "" {
		d, err := h.parseTimestamp("date", req.Date)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		date = d
	}
	d := bakery.Delivery{
		CustomerID:   bakery.CustomerID(req.CustomerID),
		CustomerName: req.CustomerName,
		Date:         date,
	}
	for _, l := range req.Lines {
		line := bakery.DeliveryLine{
			Product:  l.Product,
			Quantity: generic.LenientDecimal(l.Quantity),
			Unit:     l.Unit,
		}
		if raw := strings.TrimSpace(string(l.Price)); raw != "" && raw != "null" {
			line.PriceAtDelivery.Decimal = generic.LenientDecimal(l.Price)
			line.PriceAtDelivery.Valid = true
		}
		d.Lines = append(d.Lines, line)
	}
	created, err := h.Service.RecordDelivery(r.Context(), d)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDeliveryDTO(created))
}

// DeleteDelivery removes a delivery recorded by mistake.
// DELETE /api/deliveries/{id}
func (h *Handler) DeleteDelivery(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveDelivery(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Dashboard returns the daily delivery stats.
// GET /api/dashboard?date= (defaults to today)
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	date, err := h.queryDate(r, "date", h.Service.Now())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	stats, err := h.Service.DailyStats(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DailyStatsDTO{
		Date:          generic.FormatDate(h.Service.Day(date)),
		DeliveryCount: stats.DeliveryCount,
		CustomerCount: stats.CustomerCount,
		TotalQuantity: stats.TotalQuantity.InexactFloat64(),
		Products:      toSummaryDTOs(stats.Products),
	})
}

// =============================================================================
// PAYMENT & BILLING ENDPOINTS
// =============================================================================

// ListPayments returns payments in a date range, all time by default.
// GET /api/payments?from=&to=&customer_id=
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var from, to time.Time
	var err error
	if q.Get("from") != "" {
		if from, err = h.parseDate("from", q.Get("from")); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
	}
	if q.Get("to") != "" {
		if to, err = h.parseDate("to", q.Get("to")); err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		to = generic.EndOfDay(to)
	}
	payments, err := h.Service.Store.PaymentsInRange(r.Context(), from, to, bakery.CustomerID(q.Get("customer_id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		dtos = append(dtos, toPaymentDTO(p))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment records a payment received.
// POST /api/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	date := h.Service.Now()
	if req.Date != "" {
		d, err := h.parseTimestamp("date", req.Date)
		if err != nil {
			h.writeDomainError(w, r, err)
			return
		}
		date = d
	}
	p, err := h.Service.RecordPayment(r.Context(), bakery.Payment{
		CustomerID:   bakery.CustomerID(req.CustomerID),
		CustomerName: req.CustomerName,
		Amount:       generic.LenientDecimal(req.Amount),
		Date:         date,
		Method:       bakery.PaymentMethod(strings.ToLower(strings.TrimSpace(req.Method))),
		Notes:        req.Notes,
	})
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPaymentDTO(p))
}

// DeletePayment removes a payment recorded by mistake.
// DELETE /api/payments/{id}
func (h *Handler) DeletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemovePayment(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListBalances returns every customer's balance.
// GET /api/balances
func (h *Handler) ListBalances(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Service.Store.ListCustomers(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	names := make(map[bakery.CustomerID]string, len(customers))
	for _, c := range customers {
		names[c.ID] = c.Name
	}
	balances, err := h.Service.Balances(r.Context())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]BalanceDTO, 0, len(balances))
	for _, b := range balances {
		dtos = append(dtos, toBalanceDTO(b, names[b.CustomerID]))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBalance returns one customer's all-time balance.
// GET /api/customers/{id}/balance
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	b, err := h.Service.Balance(r.Context(), customerParam(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceDTO(b, ""))
}

// GetLedger returns the customer's chronological account.
// GET /api/customers/{id}/ledger
func (h *Handler) GetLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Ledger(r.Context(), customerParam(r))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]LedgerEntryDTO, 0, len(entries))
	for _, e := range entries {
		dtos = append(dtos, LedgerEntryDTO{
			Date:      generic.FormatDate(e.Date),
			Kind:      string(e.Kind),
			Reference: e.Reference,
			Debit:     money(e.Debit),
			Credit:    money(e.Credit),
			Balance:   money(e.Balance),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStatement returns a billing statement as JSON, CSV or printable HTML.
// GET /api/customers/{id}/statement?from=&to=&format= (defaults to the current month, json)
func (h *Handler) GetStatement(w http.ResponseWriter, r *http.Request) {
	period, err := h.queryPeriod(r)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	st, err := h.Service.Statement(r.Context(), customerParam(r), period)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}

	filename := fmt.Sprintf("statement-%s-%s", generic.FormatDate(period.Start), generic.FormatDate(period.End))
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		writeJSON(w, http.StatusOK, toStatementDTO(st))
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename+".csv"))
		if err := report.WriteStatementCSV(w, st); err != nil {
			h.Log.WithError(err).Error("write statement csv")
		}
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := report.RenderStatementHTML(w, st, report.HTMLOptions{
			BakeryName:  h.BakeryName,
			Locale:      h.Locale,
			GeneratedAt: h.Service.Now(),
		})
		if err != nil {
			h.Log.WithError(err).Error("render statement html")
		}
	default:
		h.writeDomainError(w, r, generic.Invalid("format", "unsupported format %q", format))
	}
}

// =============================================================================
// RECURRING ENDPOINTS
// =============================================================================

// ListTemplates returns recurring templates, optionally for one customer.
// GET /api/recurring?customer_id=
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Service.Store.ListTemplates(r.Context(), bakery.CustomerID(r.URL.Query().Get("customer_id")))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	dtos := make([]TemplateDTO, 0, len(templates))
	for _, t := range templates {
		dtos = append(dtos, toTemplateDTO(t))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTemplate stores a weekly recurring order.
// POST /api/recurring
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := h.Service.SaveTemplate(r.Context(), req.toDomain())
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTemplateDTO(t))
}

// ToggleTemplate pauses or resumes a template.
// POST /api/recurring/{id}/toggle
func (h *Handler) ToggleTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.Service.ToggleTemplate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateDTO(t))
}

// DeleteTemplate removes a template. Orders it already generated stay.
// DELETE /api/recurring/{id}
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveTemplate(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GenerateRecurring materializes recurring orders for a date.
// POST /api/recurring/generate?date= (defaults to tomorrow)
func (h *Handler) GenerateRecurring(w http.ResponseWriter, r *http.Request) {
	date, err := h.queryDate(r, "date", h.Service.Now().AddDate(0, 0, 1))
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	orders, err := h.Service.GenerateRecurring(r.Context(), date)
	if err != nil {
		h.writeDomainError(w, r, err)
		return
	}
	now := h.Service.Now()
	resp := GenerateResponse{Date: generic.FormatDate(h.Service.Day(date)), Created: len(orders), Orders: []OrderDTO{}}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderDTO(o, now))
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps service errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, "invalid request", err)
	case generic.IsNotFound(err):
		writeError(w, http.StatusNotFound, "not found", err)
	case generic.IsConflict(err):
		writeError(w, http.StatusConflict, "conflict", err)
	default:
		h.Log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		writeError(w, http.StatusInternalServerError, "internal error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return false
	}
	return true
}

func customerParam(r *http.Request) bakery.CustomerID {
	return bakery.CustomerID(chi.URLParam(r, "id"))
}

func (h *Handler) parseDate(field, value string) (time.Time, error) {
	d, err := generic.ParseDate(strings.TrimSpace(value), h.loc())
	if err != nil {
		return time.Time{}, generic.Invalid(field, "expected YYYY-MM-DD, got %q", value)
	}
	return d, nil
}

// parseTimestamp accepts an RFC 3339 instant or a bare date.
func (h *Handler) parseTimestamp(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(value)); err == nil {
		return t.In(h.loc()), nil
	}
	return h.parseDate(field, value)
}

func (h *Handler) queryDate(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback.In(h.loc()), nil
	}
	return h.parseDate(key, v)
}

// queryPeriod reads from/to, defaulting to the current month.
func (h *Handler) queryPeriod(r *http.Request) (generic.Period, error) {
	month := generic.MonthPeriod(h.Service.Now().In(h.loc()))
	from, err := h.queryDate(r, "from", month.Start)
	if err != nil {
		return generic.Period{}, err
	}
	to, err := h.queryDate(r, "to", month.End)
	if err != nil {
		return generic.Period{}, err
	}
	return generic.NewPeriod(from, to)
}
