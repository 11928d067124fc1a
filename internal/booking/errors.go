// Package booking implements the seat reservation and confirmation
// core: locking seats for a hold window, reclaiming lapsed holds,
// pricing an order at hold time and finalising it into a booked, paid
// state.  The package owns no transport or storage concerns; it talks
// to a transactional Store and returns domain errors that callers map
// to their own surfaces.
package booking

import "errors"

// Domain errors represent rejected business operations.  They are
// distinct from infrastructure failures (connection loss, lock-wait
// timeouts), which propagate as-is and may be retried by the caller.
// Handlers should translate domain errors into conflict-class
// responses.
var (
	// ErrEmptySelection is returned when Reserve is called with no
	// seat ids.
	ErrEmptySelection = errors.New("no seats selected")

	// ErrCrossEventSelection is returned when a requested seat does
	// not exist or does not belong to the specified event.
	ErrCrossEventSelection = errors.New("seat does not belong to event")

	// ErrSeatUnavailable is returned when, after lapsed holds have
	// been reclaimed, at least one requested seat is still locked or
	// already booked.  The whole reservation is rejected; no partial
	// holds are created.
	ErrSeatUnavailable = errors.New("seat no longer available")

	// ErrNotOwner is returned when Confirm is called by a user who
	// does not own the order.
	ErrNotOwner = errors.New("order belongs to another user")

	// ErrOrderExpired is returned when the order's hold window has
	// passed.
	ErrOrderExpired = errors.New("order has expired")

	// ErrNotConfirmable is returned when the order is not pending
	// (already confirmed, cancelled or marked expired).
	ErrNotConfirmable = errors.New("order is not in a confirmable state")

	// ErrOrderNotFound is returned when the referenced order does not
	// exist.
	ErrOrderNotFound = errors.New("order not found")
)

// IsDomainError reports whether err is one of the business rejections
// above, as opposed to an infrastructure failure.
func IsDomainError(err error) bool {
	for _, target := range []error{
		ErrEmptySelection,
		ErrCrossEventSelection,
		ErrSeatUnavailable,
		ErrNotOwner,
		ErrOrderExpired,
		ErrNotConfirmable,
		ErrOrderNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
