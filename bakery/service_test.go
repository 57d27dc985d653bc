package bakery_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bakery-engine/bakery"
	"github.com/warp/bakery-engine/generic"
	"github.com/warp/bakery-engine/store/memory"
)

// =============================================================================
// SERVICE FIXTURE
// =============================================================================

type fixture struct {
	ctx     context.Context
	store   *memory.Store
	service *bakery.Service
	clock   time.Time
	logs    *test.Hook
}

// newFixture starts the clock on Sunday 2024-06-09 at noon.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		store: memory.New(),
		clock: at(2024, 6, 9, 12, 0, 0),
	}
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	f.logs = hook
	f.service = bakery.NewService(f.store, log)
	f.service.Location = rome
	f.service.Now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) customer(t *testing.T, name string) bakery.Customer {
	t.Helper()
	c, err := f.service.AddCustomer(f.ctx, bakery.Customer{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) place(t *testing.T, c bakery.Customer, date time.Time, lines ...bakery.OrderLine) bakery.Order {
	t.Helper()
	o, err := f.service.PlaceOrder(f.ctx, bakery.OrderInput{CustomerID: c.ID, CustomerName: c.Name, DeliveryDate: date, Lines: lines})
	require.NoError(t, err)
	return o
}

// =============================================================================
// ORDERS
// =============================================================================

func TestService_PlaceOrder(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Bar Roma")

	o := f.place(t, c, day(2024, 6, 10), oline("Sourdough", "5", "kg"))

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, bakery.StatusPending, o.Status)
	stored, err := f.store.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, day(2024, 6, 10), stored.DeliveryDate)
	assert.NotEmpty(t, f.logs.AllEntries())
}

func TestService_PlaceOrder_DuplicateCustomerDay(t *testing.T) {
	// GIVEN: A customer with an order for June 10
	// WHEN: A second order for the same day is placed
	// THEN: It is rejected as a conflict, while another day is fine

	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	f.place(t, c, day(2024, 6, 10), oline("Sourdough", "5", "kg"))

	_, err := f.service.PlaceOrder(f.ctx, bakery.OrderInput{
		CustomerID:   c.ID,
		DeliveryDate: at(2024, 6, 10, 8, 0, 0),
		Lines:        []bakery.OrderLine{oline("Rolls", "5", "pieces")},
	})

	assert.ErrorIs(t, err, generic.ErrDuplicateOrder)
	assert.True(t, generic.IsConflict(err))
	f.place(t, c, day(2024, 6, 11), oline("Rolls", "5", "pieces"))
}

func TestService_PlaceOrder_WindowClosed(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	f.clock = at(2024, 6, 9, 21, 0, 0)

	_, err := f.service.PlaceOrder(f.ctx, bakery.OrderInput{
		CustomerID:   c.ID,
		DeliveryDate: day(2024, 6, 10),
		Lines:        []bakery.OrderLine{oline("Rolls", "5", "pieces")},
	})

	assert.ErrorIs(t, err, generic.ErrModificationClosed)
}

func TestService_EditOrder(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	o := f.place(t, c, day(2024, 6, 12), oline("Rolls", "10", "pieces"))

	updated, err := f.service.EditOrder(f.ctx, o.ID, func(e *bakery.EditingOrder) {
		e.SetLines([]bakery.OrderLine{oline("Rolls", "15", "pieces")})
	})

	require.NoError(t, err)
	assert.Equal(t, "15", updated.Lines[0].Quantity.String())
	stored, err := f.store.GetOrder(f.ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "15", stored.Lines[0].Quantity.String())
}

func TestService_EditOrder_MoveOntoExistingDay(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	f.place(t, c, day(2024, 6, 12), oline("Rolls", "10", "pieces"))
	o := f.place(t, c, day(2024, 6, 13), oline("Rolls", "10", "pieces"))

	_, err := f.service.EditOrder(f.ctx, o.ID, func(e *bakery.EditingOrder) {
		e.SetDeliveryDate(day(2024, 6, 12))
	})

	assert.ErrorIs(t, err, generic.ErrDuplicateOrder)
}

func TestService_CancelOrder(t *testing.T) {
	// GIVEN: Two orders, for tomorrow and the day after
	// WHEN: Both are cancelled at 21:30
	// THEN: Tomorrow's is frozen, the other is deleted

	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	tomorrow := f.place(t, c, day(2024, 6, 10), oline("Rolls", "10", "pieces"))
	later := f.place(t, c, day(2024, 6, 11), oline("Rolls", "10", "pieces"))
	f.clock = at(2024, 6, 9, 21, 30, 0)

	assert.ErrorIs(t, f.service.CancelOrder(f.ctx, tomorrow.ID), generic.ErrModificationClosed)
	require.NoError(t, f.service.CancelOrder(f.ctx, later.ID))

	_, err := f.store.GetOrder(f.ctx, later.ID)
	assert.ErrorIs(t, err, generic.ErrNotFound)
	assert.ErrorIs(t, f.service.CancelOrder(f.ctx, "missing"), generic.ErrNotFound)
}

func TestService_AdvanceOrderIgnoresWindow(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	o := f.place(t, c, day(2024, 6, 10), oline("Rolls", "10", "pieces"))
	f.clock = at(2024, 6, 10, 7, 0, 0)

	updated, err := f.service.AdvanceOrder(f.ctx, o.ID, bakery.StatusDelivered)

	require.NoError(t, err)
	assert.Equal(t, bakery.StatusDelivered, updated.Status)
	_, err = f.service.AdvanceOrder(f.ctx, o.ID, bakery.StatusConfirmed)
	assert.ErrorIs(t, err, generic.ErrInvalidTransition)
}

func TestService_OrdersForDay(t *testing.T) {
	f := newFixture(t)
	a := f.customer(t, "Bar Roma")
	b := f.customer(t, "Forno Blu")
	f.place(t, a, day(2024, 6, 10), oline("Sourdough", "5", "kg"))
	f.place(t, b, day(2024, 6, 10), oline("Sourdough", "2", "kg"), oline("Baguette", "4", "pieces"))
	f.place(t, a, day(2024, 6, 11), oline("Sourdough", "9", "kg"))
	_, err := f.service.RecordDelivery(f.ctx, delivery("", a.ID, at(2024, 6, 10, 7, 0, 0), dline("Sourdough", "3", "kg")))
	require.NoError(t, err)

	sheet, err := f.service.OrdersForDay(f.ctx, at(2024, 6, 10, 15, 0, 0))

	require.NoError(t, err)
	require.Len(t, sheet.Orders, 2)
	for _, p := range sheet.Orders {
		if p.Order.CustomerID == a.ID {
			assert.True(t, p.HasPartialDelivery)
			assert.True(t, p.Lines[0].Progress.Equal(dec("60")))
		} else {
			assert.False(t, p.HasPartialDelivery)
		}
	}
	require.Len(t, sheet.Summary, 2)
	assert.Equal(t, "Baguette", sheet.Summary[0].Product)
	assert.Equal(t, "7", sheet.Summary[1].TotalQuantity.String())
}

// =============================================================================
// DELIVERIES & BILLING
// =============================================================================

func TestService_RecordDelivery_SnapshotsCatalogPrice(t *testing.T) {
	// GIVEN: Sourdough priced at 4.00 in the catalog
	// WHEN: A delivery is recorded without a price, then the catalog price changes
	// THEN: The delivery keeps billing at 4.00

	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	p, err := f.service.AddProduct(f.ctx, bakery.Product{Name: "Sourdough", Price: price("4.00")})
	require.NoError(t, err)

	d, err := f.service.RecordDelivery(f.ctx, delivery("", c.ID, day(2024, 6, 9), dline("Sourdough", "2", "kg"), dline("Rolls", "3", "pieces")))
	require.NoError(t, err)
	require.True(t, d.Lines[0].PriceAtDelivery.Valid)
	assert.Equal(t, "4.00", d.Lines[0].PriceAtDelivery.Decimal.StringFixed(2))
	assert.False(t, d.Lines[1].PriceAtDelivery.Valid, "unknown products stay unpriced")

	p.Price = price("9.00")
	require.NoError(t, f.store.UpdateProduct(f.ctx, p))

	b, err := f.service.Balance(f.ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "8.00", b.Balance.StringFixed(2))
}

func TestService_BalanceMatchesStatement(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	for _, d := range []bakery.Delivery{
		delivery("", c.ID, day(2024, 5, 3), pricedLine("Sourdough", "10", "kg", "4.00")),
		delivery("", c.ID, day(2024, 5, 17), pricedLine("Sourdough", "20", "kg", "4.00")),
		delivery("", c.ID, day(2024, 6, 4), pricedLine("Sourdough", "10", "kg", "4.00")),
	} {
		_, err := f.service.RecordDelivery(f.ctx, d)
		require.NoError(t, err)
	}
	for _, p := range []bakery.Payment{
		payment("", c.ID, day(2024, 5, 31), "50.00"),
		payment("", c.ID, day(2024, 6, 5), "20.00"),
	} {
		_, err := f.service.RecordPayment(f.ctx, p)
		require.NoError(t, err)
	}

	b, err := f.service.Balance(f.ctx, c.ID)
	require.NoError(t, err)
	june := generic.MonthPeriod(day(2024, 6, 1))
	st, err := f.service.Statement(f.ctx, c.ID, june)
	require.NoError(t, err)
	all, err := generic.NewPeriod(generic.Epoch.In(rome), f.clock)
	require.NoError(t, err)
	allTime, err := f.service.Statement(f.ctx, c.ID, all)
	require.NoError(t, err)

	assert.Equal(t, "90.00", b.Balance.StringFixed(2))
	assert.Equal(t, "70.00", st.PreviousBalance.StringFixed(2))
	assert.Equal(t, "90.00", st.CurrentBalance.StringFixed(2))
	assert.True(t, b.Balance.Equal(allTime.CurrentBalance))

	ledger, err := f.service.Ledger(f.ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, ledger, 5)
	assert.True(t, ledger[4].Balance.Equal(b.Balance))
}

func TestService_BillingUnknownCustomer(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.Balance(f.ctx, "nobody")
	assert.ErrorIs(t, err, generic.ErrNotFound)

	_, err = f.service.Statement(f.ctx, "nobody", generic.MonthPeriod(f.clock))
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

func TestService_DeliveryReport(t *testing.T) {
	f := newFixture(t)
	a := f.customer(t, "Bar Roma")
	b := f.customer(t, "Forno Blu")
	for _, d := range []bakery.Delivery{
		delivery("", a.ID, day(2024, 6, 3), dline("Rolls", "10", "pieces")),
		delivery("", b.ID, day(2024, 6, 4), dline("Rolls", "5", "pieces")),
		delivery("", a.ID, day(2024, 5, 30), dline("Rolls", "7", "pieces")),
	} {
		_, err := f.service.RecordDelivery(f.ctx, d)
		require.NoError(t, err)
	}
	june := generic.MonthPeriod(day(2024, 6, 1))

	all, err := f.service.DeliveryReport(f.ctx, june, "")
	require.NoError(t, err)
	one, err := f.service.DeliveryReport(f.ctx, june, a.ID)
	require.NoError(t, err)

	assert.Equal(t, "All customers", all.Label)
	assert.Equal(t, 2, all.TotalDeliveries)
	assert.Equal(t, "15", all.TotalQuantity.String())
	assert.Equal(t, "Bar Roma", one.Label)
	assert.Equal(t, 1, one.TotalDeliveries)
}

// =============================================================================
// RECURRING
// =============================================================================

func TestService_GenerateRecurring(t *testing.T) {
	// GIVEN: Two Mon/Wed/Fri templates, one customer already ordered manually
	// WHEN: Generating for Wednesday twice
	// THEN: One order the first time, none the second

	f := newFixture(t)
	a := f.customer(t, "Bar Roma")
	b := f.customer(t, "Forno Blu")
	for _, c := range []bakery.Customer{a, b} {
		tpl := monWedFri("", c.ID)
		_, err := f.service.SaveTemplate(f.ctx, tpl)
		require.NoError(t, err)
	}
	f.place(t, b, wednesday, oline("Baguette", "2", "pieces"))

	first, err := f.service.GenerateRecurring(f.ctx, wednesday)
	require.NoError(t, err)
	second, err := f.service.GenerateRecurring(f.ctx, wednesday)
	require.NoError(t, err)

	require.Len(t, first, 1)
	assert.Equal(t, a.ID, first[0].CustomerID)
	assert.NotEmpty(t, first[0].ID)
	assert.NotEmpty(t, first[0].RecurringTemplateID)
	assert.Empty(t, second)

	orders, err := f.store.OrdersForDate(f.ctx, wednesday)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestService_ToggleTemplate(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Bar Roma")
	tpl, err := f.service.SaveTemplate(f.ctx, monWedFri("", c.ID))
	require.NoError(t, err)

	paused, err := f.service.ToggleTemplate(f.ctx, tpl.ID)
	require.NoError(t, err)
	assert.False(t, paused.IsActive)

	created, err := f.service.GenerateRecurring(f.ctx, wednesday)
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestSeedDefaultProducts(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	added, err := bakery.SeedDefaultProducts(ctx, store)
	require.NoError(t, err)
	again, err := bakery.SeedDefaultProducts(ctx, store)
	require.NoError(t, err)

	assert.Equal(t, len(bakery.DefaultProducts), added)
	assert.Equal(t, 0, again)
	products, err := store.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(bakery.DefaultProducts))
}
