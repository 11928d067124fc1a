package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

// Service is the reservation and confirmation engine.  All mutating
// operations run inside a single Store transaction; domain rejections
// roll the transaction back so no partial seat or order state ever
// persists.
type Service struct {
	store      Store
	clock      Clock
	tokens     TokenSource
	notifier   Notifier
	holdTTL    time.Duration
	taxRateBps int64
}

// Option customises a Service at construction time.
type Option func(*Service)

// WithHoldTTL overrides how long a seat hold lasts.
func WithHoldTTL(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// WithTaxRateBps overrides the tax rate in basis points.
func WithTaxRateBps(bps int64) Option {
	return func(s *Service) {
		if bps >= 0 {
			s.taxRateBps = bps
		}
	}
}

// WithNotifier sets the post-commit confirmation notifier.  Without
// one, confirmations complete silently.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// NewService builds an engine over the given store.  The clock and
// token source are injectable for tests; pass SystemClock() and
// CryptoTokenSource() in production.
func NewService(store Store, clk Clock, tokens TokenSource, opts ...Option) *Service {
	svc := &Service{
		store:      store,
		clock:      clk,
		tokens:     tokens,
		holdTTL:    DefaultHoldMinutes * time.Minute,
		taxRateBps: DefaultTaxRateBps,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Reserve locks the requested seats for the user and creates a pending
// order priced at hold time.  The whole operation is one transaction:
// seats are locked in ascending id order, lapsed holds on the requested
// seats are reclaimed inline, and availability is rechecked under the
// locks before anything is written.  Retrying the identical request
// while the first hold is still active returns the existing order
// unchanged.
func (s *Service) Reserve(ctx context.Context, userID, eventID uint64, seatIDs []uint64) (*model.Order, error) {
	ids := canonicalIDs(seatIDs)
	if len(ids) == 0 {
		return nil, ErrEmptySelection
	}

	now := s.clock.Now()
	var result *model.Order

	err := s.store.WithTx(ctx, func(tx Tx) error {
		seats, err := tx.SeatsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		if len(seats) != len(ids) {
			// Unknown ids are treated the same as seats from another
			// event: the selection as a whole is invalid.
			return ErrCrossEventSelection
		}
		for i := range seats {
			if seats[i].EventID != eventID {
				return ErrCrossEventSelection
			}
		}

		// Idempotency: an active pending order for the exact same
		// seat set is returned as-is, with no re-pricing and no new
		// rows.
		existing, err := s.findExistingOrder(ctx, tx, userID, eventID, ids, now)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		// Reclaim lapsed holds among the requested seats under the
		// locks we already hold.
		var lapsed []uint64
		for i := range seats {
			if seats[i].LockExpired(now) {
				lapsed = append(lapsed, seats[i].ID)
			}
		}
		if len(lapsed) > 0 {
			if err := tx.ReleaseSeats(ctx, lapsed); err != nil {
				return err
			}
		}

		for i := range seats {
			if !seats[i].AvailableAt(now) {
				return ErrSeatUnavailable
			}
		}

		prices, err := s.seatPrices(ctx, tx, seats)
		if err != nil {
			return err
		}
		var subtotal int64
		for i := range seats {
			subtotal += prices[seats[i].ID]
		}
		tax := CalculateTax(subtotal, s.taxRateBps)

		until := now.Add(s.holdTTL)
		if err := tx.LockSeats(ctx, ids, userID, until); err != nil {
			return err
		}

		order := &model.Order{
			UserID:          userID,
			EventID:         eventID,
			Status:          model.OrderPending,
			SubtotalInPaisa: subtotal,
			TaxInPaisa:      tax,
			TotalInPaisa:    subtotal + tax,
			ExpiresAt:       &until,
		}
		for i := range seats {
			order.Items = append(order.Items, model.OrderItem{
				SeatID:       seats[i].ID,
				PriceInPaisa: prices[seats[i].ID],
			})
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Confirm finalises a pending order: the order flips to confirmed, its
// seats go from locked to booked, and a completed payment for the order
// total is recorded against a generated transaction reference.  The
// gateway is simulated and always succeeds.  After the transaction has
// committed the notifier is told; notification failures never undo a
// confirmation.
func (s *Service) Confirm(ctx context.Context, userID, orderID uint64, method model.PaymentMethod) (*model.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOwner
	}
	now := s.clock.Now()
	if order.Expired(now) {
		return nil, ErrOrderExpired
	}
	if order.Status != model.OrderPending {
		return nil, ErrNotConfirmable
	}

	var payment *model.Payment
	err = s.store.WithTx(ctx, func(tx Tx) error {
		ok, err := tx.ConfirmOrder(ctx, orderID, now)
		if err != nil {
			return err
		}
		if !ok {
			// Lost a race with another confirmation of the same order.
			return ErrNotConfirmable
		}
		// The item set was fixed at hold time and ownership was
		// established by the hold, so the seats are booked without
		// re-validation.
		if err := tx.BookSeats(ctx, order.SeatIDs()); err != nil {
			return err
		}
		ref, err := s.tokens.PaymentRef()
		if err != nil {
			return fmt.Errorf("generate payment ref: %w", err)
		}
		paidAt := now
		payment = &model.Payment{
			OrderID:       order.ID,
			AmountInPaisa: order.TotalInPaisa,
			Method:        method,
			Status:        model.PaymentCompleted,
			TransactionID: &ref,
			PaidAt:        &paidAt,
		}
		return tx.CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderConfirmed
	order.ConfirmedAt = &now
	order.ExpiresAt = nil

	if s.notifier != nil {
		s.notifier.OrderConfirmed(ctx, order, payment)
	}
	return order, nil
}

// ReclaimExpired sweeps every locked seat whose hold has lapsed back to
// the available pool and returns how many were released.  Orders are
// deliberately untouched: a swept pending order simply fails with
// ErrOrderExpired if its owner later tries to confirm it.
func (s *Service) ReclaimExpired(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	var released int64
	err := s.store.WithTx(ctx, func(tx Tx) error {
		var err error
		released, err = tx.ReleaseExpiredSeats(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// findExistingOrder looks for a pending, unexpired order of the user
// for the event whose item set matches the canonicalized requested set
// exactly.  Subset or superset matches never count.
func (s *Service) findExistingOrder(ctx context.Context, tx Tx, userID, eventID uint64, ids []uint64, now time.Time) (*model.Order, error) {
	orders, err := tx.PendingOrders(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		o := orders[i]
		if o.ExpiresAt == nil || !o.ExpiresAt.After(now) {
			continue
		}
		if sameIDSet(canonicalIDs(o.SeatIDs()), ids) {
			return &o, nil
		}
	}
	return nil, nil
}

// seatPrices resolves the current section price of each seat, keyed by
// seat id.
func (s *Service) seatPrices(ctx context.Context, tx Tx, seats []model.Seat) (map[uint64]int64, error) {
	sectionIDs := make([]uint64, 0, len(seats))
	seen := make(map[uint64]struct{}, len(seats))
	for i := range seats {
		if _, ok := seen[seats[i].SectionID]; !ok {
			seen[seats[i].SectionID] = struct{}{}
			sectionIDs = append(sectionIDs, seats[i].SectionID)
		}
	}
	sectionPrices, err := tx.SectionPrices(ctx, sectionIDs)
	if err != nil {
		return nil, err
	}
	prices := make(map[uint64]int64, len(seats))
	for i := range seats {
		price, ok := sectionPrices[seats[i].SectionID]
		if !ok {
			return nil, fmt.Errorf("no price for section %d", seats[i].SectionID)
		}
		prices[seats[i].ID] = price
	}
	return prices, nil
}

// canonicalIDs sorts ascending and drops zeros and duplicates.  The
// result doubles as the deterministic lock acquisition order and the
// idempotency comparison key.
func canonicalIDs(ids []uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// sameIDSet compares two canonicalized id slices for exact equality.
func sameIDSet(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
