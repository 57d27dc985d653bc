package bakery

import (
	"time"

	"github.com/warp/bakery-engine/generic"
)

// =============================================================================
// RECURRING ORDER GENERATOR
// =============================================================================

// GenerateRecurringOrders expands active templates scheduled for date's
// weekday into pending orders. A customer that already has an order on date
// is skipped, and so is a customer already served earlier in the same run,
// which makes repeated runs produce nothing new.
//
// Returned orders have no id or creation time; the store assigns both.
func GenerateRecurringOrders(date time.Time, templates []RecurringOrderTemplate, existing []Order) []Order {
	day := generic.StartOfDay(date)
	served := make(map[CustomerID]bool)
	for _, o := range existing {
		if generic.SameDay(o.DeliveryDate, day) {
			served[o.CustomerID] = true
		}
	}

	var created []Order
	for _, t := range templates {
		if !t.RunsOn(day.Weekday()) || served[t.CustomerID] {
			continue
		}
		served[t.CustomerID] = true
		created = append(created, Order{
			CustomerID:          t.CustomerID,
			CustomerName:        t.CustomerName,
			DeliveryDate:        day,
			Lines:               append([]OrderLine(nil), t.Lines...),
			Status:              StatusPending,
			Notes:               t.Notes,
			RecurringTemplateID: t.ID,
		})
	}
	return created
}

// WeeklyPlan counts active templates per weekday, Sunday first.
func WeeklyPlan(templates []RecurringOrderTemplate) [7]int {
	var plan [7]int
	for d := time.Sunday; d <= time.Saturday; d++ {
		for _, t := range templates {
			if t.RunsOn(d) {
				plan[d]++
			}
		}
	}
	return plan
}
