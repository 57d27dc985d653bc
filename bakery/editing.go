package bakery

import (
	"strings"
	"time"

	"github.com/warp/bakery-engine/generic"
)

// EditingOrder is the explicit context for an order being edited. It holds a
// working copy; nothing touches the original until Commit succeeds.
type EditingOrder struct {
	original     Order
	deliveryDate time.Time
	lines        []OrderLine
	notes        string
}

// BeginEdit opens an edit session on a copy of o.
func BeginEdit(o Order) *EditingOrder {
	lines := make([]OrderLine, len(o.Lines))
	copy(lines, o.Lines)
	return &EditingOrder{
		original:     o,
		deliveryDate: o.DeliveryDate,
		lines:        lines,
		notes:        o.Notes,
	}
}

func (e *EditingOrder) Original() Order { return e.original }

func (e *EditingOrder) SetDeliveryDate(d time.Time) { e.deliveryDate = generic.StartOfDay(d) }

func (e *EditingOrder) SetLines(lines []OrderLine) {
	e.lines = append([]OrderLine(nil), lines...)
}

func (e *EditingOrder) SetNotes(notes string) { e.notes = strings.TrimSpace(notes) }

// Commit validates the edit against the modification window at now. Both the
// current and the requested delivery dates must still be open.
func (e *EditingOrder) Commit(now time.Time) (Order, error) {
	if err := CheckModifiable(e.original, now); err != nil {
		return Order{}, err
	}
	updated := e.original
	updated.DeliveryDate = e.deliveryDate
	if err := CheckModifiable(updated, now); err != nil {
		return Order{}, err
	}
	lines, err := validateOrderLines(e.lines)
	if err != nil {
		return Order{}, err
	}
	updated.Lines = lines
	updated.Notes = e.notes
	return updated, nil
}
