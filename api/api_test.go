package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/store/memory"
)

var cet = time.FixedZone("CET", 3600)

type testServer struct {
	t       *testing.T
	service *bakery.Service
	router  http.Handler
}

// setupTestServer freezes the clock on Sunday 2024-06-09 at noon.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	log, _ := test.NewNullLogger()
	service := bakery.NewService(memory.New(), log)
	service.Location = cet
	service.Now = func() time.Time { return time.Date(2024, 6, 9, 12, 0, 0, 0, cet) }
	return &testServer{t: t, service: service, router: NewRouter(NewHandler(service, log), nil)}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) customer(name string) CustomerDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/customers", `{"name":"`+name+`"}`)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[CustomerDTO](s.t, rec)
}

func orderBody(customerID, date string) string {
	return `{"customer_id":"` + customerID + `","customer_name":"Bar Roma","delivery_date":"` + date + `",` +
		`"lines":[{"product":"Sourdough","quantity":"2,5","unit":"kg"},{"product":"Croissant","quantity":12,"unit":"pieces"}]}`
}

func TestHealth(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

// =============================================================================
// ORDERS
// =============================================================================

func TestCreateOrder(t *testing.T) {
	// GIVEN: A customer and a Monday delivery placed on Sunday noon
	// WHEN: The order is posted
	// THEN: It is stored pending and still editable until Sunday 21:00

	s := setupTestServer(t)
	c := s.customer("Bar Roma")

	rec := s.do(http.MethodPost, "/api/orders", orderBody(c.ID, "2024-06-10"))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[OrderDTO](t, rec)
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, "2024-06-10", o.DeliveryDate)
	assert.Equal(t, "pending", o.Status)
	assert.True(t, o.CanModify)
	require.Len(t, o.Lines, 2)
	assert.Equal(t, 2.5, o.Lines[0].Quantity, "comma decimals are accepted")
}

func TestCreateOrder_Errors(t *testing.T) {
	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/orders", orderBody(c.ID, "2024-06-10")).Code)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"duplicate customer and day", orderBody(c.ID, "2024-06-10"), http.StatusConflict},
		{"window closed for today", orderBody(c.ID, "2024-06-09"), http.StatusConflict},
		{"bad date", orderBody(c.ID, "10/06/2024"), http.StatusBadRequest},
		{"no lines", `{"customer_id":"` + c.ID + `","delivery_date":"2024-06-11","lines":[]}`, http.StatusBadRequest},
		{"garbage quantity", `{"customer_id":"` + c.ID + `","delivery_date":"2024-06-11","lines":[{"product":"Rolls","quantity":"lots","unit":"pieces"}]}`, http.StatusBadRequest},
		{"malformed json", `{"customer_id":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/orders", tc.body)

			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decode[ErrorResponse](t, rec).Error)
		})
	}
}

func TestUpdateAndDeleteOrder(t *testing.T) {
	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	o := decode[OrderDTO](t, s.do(http.MethodPost, "/api/orders", orderBody(c.ID, "2024-06-10")))

	rec := s.do(http.MethodPut, "/api/orders/"+o.ID, `{"lines":[{"product":"Baguette","quantity":4,"unit":"pieces"}],"notes":"back door"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[OrderDTO](t, rec)
	require.Len(t, updated.Lines, 1)
	assert.Equal(t, "Baguette", updated.Lines[0].Product)
	assert.Equal(t, "back door", updated.Notes)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/orders/"+o.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/orders/"+o.ID, "").Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	o := decode[OrderDTO](t, s.do(http.MethodPost, "/api/orders", orderBody(c.ID, "2024-06-10")))

	rec := s.do(http.MethodPost, "/api/orders/"+o.ID+"/status", `{"status":"Delivered"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "delivered", decode[OrderDTO](t, rec).Status)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/orders/"+o.ID+"/status", `{"status":"pending"}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/orders/"+o.ID+"/status", `{"status":"baked"}`).Code)
}

func TestListOrders_ShowsProgress(t *testing.T) {
	// GIVEN: A Monday order for 2.5 kg sourdough and 12 croissants
	// WHEN: Half the croissants are delivered on Monday
	// THEN: The day sheet shows partial progress and the product summary

	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/orders", orderBody(c.ID, "2024-06-10")).Code)
	rec := s.do(http.MethodPost, "/api/deliveries", `{"customer_id":"`+c.ID+`","date":"2024-06-10T07:30:00+01:00","lines":[{"product":"Croissant","quantity":6,"unit":"pieces"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/orders?date=2024-06-10", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	day := decode[DayOrdersDTO](t, rec)
	require.Len(t, day.Orders, 1)
	p := day.Orders[0]
	assert.False(t, p.IsComplete)
	assert.True(t, p.HasPartialDelivery)
	require.Len(t, p.Lines, 2)
	assert.Equal(t, 50.0, p.Lines[1].Progress)
	assert.Len(t, day.Summary, 2)
}

// =============================================================================
// BILLING
// =============================================================================

func seedJune(t *testing.T, s *testServer) CustomerDTO {
	t.Helper()
	c := s.customer("Bar Roma")
	rec := s.do(http.MethodPost, "/api/deliveries", `{"customer_id":"`+c.ID+`","date":"2024-06-05",`+
		`"lines":[{"product":"Sourdough","quantity":5,"unit":"kg","price_at_delivery":"4"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/payments", `{"customer_id":"`+c.ID+`","amount":5,"date":"2024-06-06"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return c
}

func TestBalanceAndLedger(t *testing.T) {
	s := setupTestServer(t)
	c := seedJune(t, s)

	rec := s.do(http.MethodGet, "/api/customers/"+c.ID+"/balance", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	b := decode[BalanceDTO](t, rec)
	assert.Equal(t, 20.0, b.TotalDue)
	assert.Equal(t, 5.0, b.TotalPaid)
	assert.Equal(t, 15.0, b.Balance)

	ledger := decode[[]LedgerEntryDTO](t, s.do(http.MethodGet, "/api/customers/"+c.ID+"/ledger", ""))
	require.Len(t, ledger, 2)
	assert.Equal(t, "payment", ledger[1].Kind)
	assert.Equal(t, 15.0, ledger[1].Balance)

	balances := decode[[]BalanceDTO](t, s.do(http.MethodGet, "/api/balances", ""))
	require.Len(t, balances, 1)
	assert.Equal(t, "Bar Roma", balances[0].CustomerName)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/customers/nope/balance", "").Code)
}

func TestGetStatement_Formats(t *testing.T) {
	s := setupTestServer(t)
	c := seedJune(t, s)
	base := "/api/customers/" + c.ID + "/statement?from=2024-06-01&to=2024-06-30"

	rec := s.do(http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decode[StatementDTO](t, rec)
	assert.Equal(t, 0.0, st.PreviousBalance)
	assert.Equal(t, 20.0, st.PeriodTotal)
	assert.Equal(t, 5.0, st.PeriodPayments)
	assert.Equal(t, 15.0, st.CurrentBalance)
	require.Len(t, st.Deliveries, 1)
	assert.Equal(t, 20.0, st.Deliveries[0].Lines[0].LineTotal)

	rec = s.do(http.MethodGet, base+"&format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "statement-2024-06-01-2024-06-30.csv")
	assert.Contains(t, rec.Body.String(), "Current balance,15.00")

	rec = s.do(http.MethodGet, base+"&format=html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Bar Roma")

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, base+"&format=pdf", "").Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/customers/"+c.ID+"/statement?from=2024-06-30&to=2024-06-01", "").Code)
}

// =============================================================================
// RECURRING
// =============================================================================

func mondayTemplate(t *testing.T, s *testServer, customerID string) TemplateDTO {
	t.Helper()
	rec := s.do(http.MethodPost, "/api/recurring", `{"customer_id":"`+customerID+`","customer_name":"Bar Roma","days_of_week":[1],`+
		`"lines":[{"product":"Rolls","quantity":30,"unit":"pieces"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[TemplateDTO](t, rec)
}

func TestGenerateRecurring(t *testing.T) {
	// GIVEN: An active Monday template
	// WHEN: Generation runs twice for Monday
	// THEN: The first run creates one order, the second none

	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	tpl := mondayTemplate(t, s, c.ID)
	assert.True(t, tpl.IsActive)

	first := decode[GenerateResponse](t, s.do(http.MethodPost, "/api/recurring/generate?date=2024-06-10", ""))
	second := decode[GenerateResponse](t, s.do(http.MethodPost, "/api/recurring/generate?date=2024-06-10", ""))

	assert.Equal(t, "2024-06-10", first.Date)
	assert.Equal(t, 1, first.Created)
	require.Len(t, first.Orders, 1)
	assert.Equal(t, tpl.ID, first.Orders[0].RecurringTemplateID)
	assert.Equal(t, 0, second.Created)
	assert.Empty(t, second.Orders)
}

func TestToggleTemplate_PausesGeneration(t *testing.T) {
	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	tpl := mondayTemplate(t, s, c.ID)

	rec := s.do(http.MethodPost, "/api/recurring/"+tpl.ID+"/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[TemplateDTO](t, rec).IsActive)

	resp := decode[GenerateResponse](t, s.do(http.MethodPost, "/api/recurring/generate", ""))
	assert.Equal(t, "2024-06-10", resp.Date, "defaults to tomorrow")
	assert.Equal(t, 0, resp.Created)
}

func TestRecurringScheduler_RunOnce(t *testing.T) {
	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	mondayTemplate(t, s, c.ID)
	log, _ := test.NewNullLogger()
	scheduler := NewRecurringScheduler(s.service, log)

	assert.Equal(t, 1, scheduler.RunOnce(context.Background()))
	assert.Equal(t, 0, scheduler.RunOnce(context.Background()), "one run per target day")

	orders, err := s.service.Store.OrdersForDate(context.Background(), time.Date(2024, 6, 10, 0, 0, 0, 0, cet))
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

// =============================================================================
// CATALOG
// =============================================================================

func TestProducts(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(http.MethodPost, "/api/products", `{"name":"Sourdough","default_unit":"kg","price":"4,50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[ProductDTO](t, rec)
	require.NotNil(t, p.Price)
	assert.Equal(t, 4.5, *p.Price)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/products", `{"name":"sourdough","default_unit":"kg"}`).Code)

	rec = s.do(http.MethodPost, "/api/products/defaults", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[map[string]int](t, rec)["added"], "catalog is not empty")
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	s := setupTestServer(t)
	p := decode[ProductDTO](t, s.do(http.MethodPost, "/api/products", `{"name":"Sourdough","default_unit":"kg","price":4}`))
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/products", `{"name":"Brioche","default_unit":"pieces"}`).Code)

	rec := s.do(http.MethodPut, "/api/products/"+p.ID, `{"name":"Sourdough","default_unit":"kg","price":"4.80"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 4.8, *decode[ProductDTO](t, rec).Price)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPut, "/api/products/"+p.ID, `{"name":"brioche"}`).Code)
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/products/"+p.ID, "").Code)
	assert.Len(t, decode[[]ProductDTO](t, s.do(http.MethodGet, "/api/products", "")), 1)
}

func TestUpdateCustomerAndOrderHistory(t *testing.T) {
	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/orders", orderBody(c.ID, "2024-06-10")).Code)
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/orders", orderBody(c.ID, "2024-06-12")).Code)

	rec := s.do(http.MethodPut, "/api/customers/"+c.ID, `{"name":"  Bar Roma Centro ","address":"Via Appia 1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[CustomerDTO](t, rec)
	assert.Equal(t, c.ID, updated.ID)
	assert.Equal(t, "Bar Roma Centro", updated.Name)

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPut, "/api/customers/"+c.ID, `{"name":" "}`).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/customers/nope", `{"name":"Ghost"}`).Code)

	orders := decode[[]OrderDTO](t, s.do(http.MethodGet, "/api/customers/"+c.ID+"/orders", ""))
	require.Len(t, orders, 2)
	assert.Equal(t, "2024-06-12", orders[0].DeliveryDate, "newest first")
}

func TestDeleteTemplate(t *testing.T) {
	s := setupTestServer(t)
	c := s.customer("Bar Roma")
	tpl := mondayTemplate(t, s, c.ID)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/recurring/"+tpl.ID, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/recurring/"+tpl.ID, "").Code)
	assert.Empty(t, decode[[]TemplateDTO](t, s.do(http.MethodGet, "/api/recurring?customer_id="+c.ID, "")))
}
