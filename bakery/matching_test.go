package bakery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/bakery-engine/bakery"
)

func TestMatchOrder_PartialDelivery(t *testing.T) {
	// GIVEN: An order for 5 kg Sourdough on June 10
	// WHEN: 3 kg are delivered the same day
	// THEN: The line is 60% complete and the order is partially delivered

	o := order("o-1", "c-1", day(2024, 6, 10), oline("Sourdough", "5", "kg"))
	deliveries := []bakery.Delivery{
		delivery("d-1", "c-1", at(2024, 6, 10, 7, 30, 0), dline("Sourdough", "3", "kg")),
	}

	p := bakery.MatchOrder(o, deliveries)

	require.Len(t, p.Lines, 1)
	line := p.Lines[0]
	assert.Equal(t, "3", line.Delivered.String())
	assert.Equal(t, "5", line.Ordered.String())
	assert.False(t, line.IsComplete)
	assert.True(t, line.Progress.Equal(dec("60")), "progress should be 60, got %s", line.Progress)
	assert.True(t, p.HasPartialDelivery)
	assert.False(t, p.IsComplete)
}

func TestMatchOrder_SecondDeliveryCompletes(t *testing.T) {
	// GIVEN: The partially delivered order above
	// WHEN: A second delivery brings the remaining 2 kg
	// THEN: The line is complete at 100%

	o := order("o-1", "c-1", day(2024, 6, 10), oline("Sourdough", "5", "kg"))
	deliveries := []bakery.Delivery{
		delivery("d-1", "c-1", at(2024, 6, 10, 7, 30, 0), dline("Sourdough", "3", "kg")),
		delivery("d-2", "c-1", at(2024, 6, 10, 11, 0, 0), dline("Sourdough", "2", "kg")),
	}

	p := bakery.MatchOrder(o, deliveries)

	require.Len(t, p.Lines, 1)
	assert.Equal(t, "5", p.Lines[0].Delivered.String())
	assert.True(t, p.Lines[0].IsComplete)
	assert.True(t, p.Lines[0].Progress.Equal(dec("100")))
	assert.True(t, p.IsComplete)
}

func TestMatchOrder_ProgressClampedWhenOverDelivered(t *testing.T) {
	// GIVEN: 2 pieces ordered, 5 delivered
	// THEN: Progress stays at 100 and the line is complete

	o := order("o-1", "c-1", day(2024, 6, 10), oline("Baguette", "2", "pieces"))
	deliveries := []bakery.Delivery{
		delivery("d-1", "c-1", day(2024, 6, 10), dline("Baguette", "5", "pieces")),
	}

	p := bakery.MatchOrder(o, deliveries)

	assert.True(t, p.Lines[0].Progress.Equal(dec("100")))
	assert.True(t, p.Lines[0].IsComplete)
}

func TestMatchOrder_IgnoresOtherCustomersAndDays(t *testing.T) {
	o := order("o-1", "c-1", day(2024, 6, 10), oline("Sourdough", "5", "kg"))
	deliveries := []bakery.Delivery{
		delivery("d-1", "c-2", day(2024, 6, 10), dline("Sourdough", "5", "kg")),
		delivery("d-2", "c-1", day(2024, 6, 11), dline("Sourdough", "5", "kg")),
		delivery("d-3", "c-1", at(2024, 6, 9, 23, 59, 59), dline("Sourdough", "5", "kg")),
	}

	p := bakery.MatchOrder(o, deliveries)

	assert.True(t, p.Lines[0].Delivered.IsZero())
	assert.False(t, p.HasPartialDelivery)
	assert.Empty(t, p.Extras)
}

func TestMatchOrder_UnitIsPartOfTheKey(t *testing.T) {
	// GIVEN: Sourdough ordered in kg but delivered in pieces
	// THEN: Nothing counts towards the kg line, and the pieces show as an extra

	o := order("o-1", "c-1", day(2024, 6, 10), oline("Sourdough", "5", "kg"))
	deliveries := []bakery.Delivery{
		delivery("d-1", "c-1", day(2024, 6, 10),
			dline("Sourdough", "4", "pieces"),
			dline("Croissant", "6", "pieces"),
		),
	}

	p := bakery.MatchOrder(o, deliveries)

	assert.True(t, p.Lines[0].Delivered.IsZero())
	require.Len(t, p.Extras, 2)
	assert.Equal(t, "Sourdough", p.Extras[0].Product)
	assert.Equal(t, "pieces", p.Extras[0].Unit)
	assert.Equal(t, "Croissant", p.Extras[1].Product)
	assert.Equal(t, "6", p.Extras[1].Delivered.String())
}

func TestMatchOrders_ProgressBoundsAndMonotonicity(t *testing.T) {
	// GIVEN: A multi-line order and deliveries arriving one at a time
	// THEN: Every line stays within [0, 100] and never loses progress

	o := order("o-1", "c-1", day(2024, 6, 10),
		oline("Sourdough", "5", "kg"),
		oline("Baguette", "3", "pieces"),
		oline("Focaccia", "0.5", "kg"),
	)
	arrivals := []bakery.Delivery{
		delivery("d-1", "c-1", at(2024, 6, 10, 6, 0, 0), dline("Sourdough", "1.5", "kg")),
		delivery("d-2", "c-1", at(2024, 6, 10, 7, 0, 0), dline("Baguette", "1", "pieces"), dline("Focaccia", "2", "kg")),
		delivery("d-3", "c-1", at(2024, 6, 10, 8, 0, 0), dline("Sourdough", "4", "kg")),
		delivery("d-4", "c-1", at(2024, 6, 10, 9, 0, 0), dline("Baguette", "2", "pieces")),
	}

	var previous []bakery.LineProgress
	for i := 0; i <= len(arrivals); i++ {
		progress := bakery.MatchOrders([]bakery.Order{o}, arrivals[:i])
		require.Len(t, progress, 1)

		for j, l := range progress[0].Lines {
			assert.False(t, l.Progress.IsNegative(), "progress below 0")
			assert.True(t, l.Progress.LessThanOrEqual(dec("100")), "progress above 100")
			if l.Delivered.GreaterThanOrEqual(l.Ordered) {
				assert.True(t, l.Progress.Equal(dec("100")), "complete line must be at 100")
			}
			if previous != nil {
				assert.True(t, l.Delivered.GreaterThanOrEqual(previous[j].Delivered), "delivered decreased")
				assert.True(t, l.Progress.GreaterThanOrEqual(previous[j].Progress), "progress decreased")
			}
		}
		previous = progress[0].Lines
	}
	assert.True(t, bakery.MatchOrder(o, arrivals).IsComplete)
}

func TestMatchOrders_PreservesInputOrder(t *testing.T) {
	orders := []bakery.Order{
		order("o-b", "c-2", day(2024, 6, 10), oline("Rolls", "10", "pieces")),
		order("o-a", "c-1", day(2024, 6, 10), oline("Rolls", "10", "pieces")),
	}

	progress := bakery.MatchOrders(orders, nil)

	require.Len(t, progress, 2)
	assert.Equal(t, "o-b", progress[0].Order.ID)
	assert.Equal(t, "o-a", progress[1].Order.ID)
}
