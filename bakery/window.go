package bakery

import (
	"time"

	"github.com/warp/bakery-engine/generic"
)

// =============================================================================
// MODIFICATION WINDOW
// =============================================================================

// CutoffHour is the local hour on the eve of delivery after which an order is frozen.
const CutoffHour = 21

// ModificationDeadline returns 21:00 local time on the day before deliveryDate.
// This is the only place the deadline is computed.
func ModificationDeadline(deliveryDate time.Time) time.Time {
	eve := generic.StartOfDay(deliveryDate).AddDate(0, 0, -1)
	return time.Date(eve.Year(), eve.Month(), eve.Day(), CutoffHour, 0, 0, 0, eve.Location())
}

// CanModify reports whether an order for deliveryDate may still be edited or
// deleted at now. Orders for today or the past are never modifiable.
func CanModify(deliveryDate, now time.Time) bool {
	return now.Before(ModificationDeadline(deliveryDate))
}

// CheckModifiable returns a ModificationClosedError once the deadline has passed.
func CheckModifiable(o Order, now time.Time) error {
	if CanModify(o.DeliveryDate, now) {
		return nil
	}
	return &generic.ModificationClosedError{OrderID: o.ID, Deadline: ModificationDeadline(o.DeliveryDate)}
}
