package generic

import "time"

// =============================================================================
// PERIOD - Inclusive date window for statements and reports
// =============================================================================

// Period is a window of whole days. Start is local midnight of the first day,
// End the last instant of the final day, so a period given as
// [2024-06-01, 2024-06-30] includes everything recorded on June 30.
//
// Examples:
//   - Calendar month: MonthPeriod(anyDayInJune)
//   - All time up to today: Period{Start: Epoch, End: EndOfDay(now)}
type Period struct {
	Start time.Time
	End   time.Time
}

// NewPeriod builds an inclusive period from two days.
func NewPeriod(start, end time.Time) (Period, error) {
	p := Period{Start: StartOfDay(start), End: EndOfDay(end)}
	if p.End.Before(p.Start) {
		return Period{}, ErrInvalidPeriod
	}
	return p, nil
}

// MonthPeriod returns the calendar month containing t.
func MonthPeriod(t time.Time) Period {
	return Period{Start: StartOfMonth(t), End: EndOfMonth(t)}
}

// Contains returns true if t is within [Start, End].
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && !t.After(p.End)
}

// IsBefore returns true if t is strictly before the period starts.
func (p Period) IsBefore(t time.Time) bool {
	return t.Before(p.Start)
}

func (p Period) String() string {
	return "[" + FormatDate(p.Start) + ", " + FormatDate(p.End) + "]"
}
