package booking

import (
	"context"
	"time"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

// Store is the transactional persistence collaborator of the engine.
// Implementations must provide at least read-committed isolation and
// honour the row locks taken by Tx.SeatsForUpdate until the enclosing
// transaction ends.
type Store interface {
	// WithTx runs fn inside a single transaction.  A non-nil error
	// from fn rolls the transaction back and is returned unchanged;
	// otherwise the transaction commits.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// GetOrder loads an order with its items.  Returns
	// ErrOrderNotFound when no such order exists.
	GetOrder(ctx context.Context, orderID uint64) (*model.Order, error)
}

// Tx is the set of operations available inside a Store transaction.
// Seat mutations must only be issued for seats whose row locks the
// transaction already holds.
type Tx interface {
	// SeatsForUpdate loads the given seats under exclusive row locks,
	// acquired in ascending id order so concurrent callers over
	// overlapping sets cannot deadlock.  Unknown ids are silently
	// absent from the result; callers detect them by length.
	SeatsForUpdate(ctx context.Context, seatIDs []uint64) ([]model.Seat, error)

	// ReleaseSeats transitions seats back to available, clearing
	// holder and expiry.
	ReleaseSeats(ctx context.Context, seatIDs []uint64) error

	// LockSeats transitions seats to locked for the given user until
	// the given instant.
	LockSeats(ctx context.Context, seatIDs []uint64, userID uint64, until time.Time) error

	// BookSeats transitions seats from locked to booked, clearing
	// holder and expiry.
	BookSeats(ctx context.Context, seatIDs []uint64) error

	// SectionPrices returns the current per-seat price of each given
	// section, keyed by section id.
	SectionPrices(ctx context.Context, sectionIDs []uint64) (map[uint64]int64, error)

	// PendingOrders returns the user's pending orders for the event,
	// items included.  Expiry filtering is left to the caller so the
	// engine's clock stays authoritative.
	PendingOrders(ctx context.Context, userID, eventID uint64) ([]model.Order, error)

	// CreateOrder inserts the order and its items, populating the
	// generated ids on the passed value.
	CreateOrder(ctx context.Context, order *model.Order) error

	// ConfirmOrder flips the order to confirmed, stamps confirmed_at
	// and clears the expiry, but only if it is still pending.  The
	// boolean reports whether a row was actually updated.
	ConfirmOrder(ctx context.Context, orderID uint64, at time.Time) (bool, error)

	// CreatePayment inserts a payment row, populating the generated
	// id on the passed value.
	CreatePayment(ctx context.Context, payment *model.Payment) error

	// ReleaseExpiredSeats bulk-transitions every locked seat whose
	// hold lapsed before now back to available and reports how many
	// rows changed.
	ReleaseExpiredSeats(ctx context.Context, now time.Time) (int64, error)
}

// Notifier receives confirmation events after the confirming
// transaction has committed.  Delivery is best-effort; implementations
// must not fail the caller.
type Notifier interface {
	OrderConfirmed(ctx context.Context, order *model.Order, payment *model.Payment)
}
