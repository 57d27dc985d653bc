/*
errors.go - Centralized error types

PURPOSE:
  All error types in one place for consistency and discoverability.
  The reconciliation engines never return errors; these are raised at the
  boundaries: order construction, the modification window, and the stores.

ERROR CATEGORIES:
  1. Input validation - rejected before reaching any engine
  2. Policy - modification window closed, invalid status transition
  3. Store - missing records, duplicate customer/date orders

USAGE:
    if errors.Is(err, generic.ErrModificationClosed) {
        // 409 for the caller
    }

SEE ALSO:
  - bakery/order.go: Raises ValidationError
  - bakery/window.go: Raises ModificationClosedError
*/
package generic

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNotFound is returned by stores when a record id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is the root of every validation failure.
	ErrInvalidInput = errors.New("invalid input")

	// ErrModificationClosed is returned when an order is past its edit deadline.
	ErrModificationClosed = errors.New("order can no longer be modified")

	// ErrDuplicateOrder is returned when a customer already has an order for a date.
	ErrDuplicateOrder = errors.New("order already exists for customer and date")

	// ErrInvalidPeriod is returned when a period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidTransition is returned for a disallowed order status change.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicateName is returned when a product name is already in the catalog.
	ErrDuplicateName = errors.New("duplicate name")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// ValidationError describes which field failed and why.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// Invalid is shorthand for a field-level ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ModificationClosedError reports the deadline that has passed.
type ModificationClosedError struct {
	OrderID  string
	Deadline time.Time
}

func (e *ModificationClosedError) Error() string {
	return fmt.Sprintf("order %s can no longer be modified (deadline %s)",
		e.OrderID, e.Deadline.Format("2006-01-02 15:04"))
}

func (e *ModificationClosedError) Unwrap() error {
	return ErrModificationClosed
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsConflict returns true if the request clashes with existing state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrModificationClosed) ||
		errors.Is(err, ErrDuplicateOrder) ||
		errors.Is(err, ErrDuplicateName) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
