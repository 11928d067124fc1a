// Package repository implements persistence for the booking core on
// MySQL using database/sql.  All timestamps are stored and compared in
// UTC.  Methods suffixed Tx operate within a caller-supplied
// transaction; the caller commits or rolls back.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tixcore/event-ticket-booking/internal/booking"
	"github.com/tixcore/event-ticket-booking/internal/model"
)

// Store bundles the per-table repositories behind the booking.Store
// interface.  Row locks taken via SeatsForUpdate are held until the
// surrounding transaction commits or rolls back, which is what the
// engine's lock-then-recheck pattern relies on.
type Store struct {
	db       *sql.DB
	seats    *SeatRepo
	sections *SectionRepo
	orders   *OrderRepo
	payments *PaymentRepo
}

// NewStore builds a Store over an open database handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:       db,
		seats:    NewSeatRepo(db),
		sections: NewSectionRepo(db),
		orders:   NewOrderRepo(db),
		payments: NewPaymentRepo(db),
	}
}

// DB exposes the underlying handle for read-only collaborators such as
// the seat map query.
func (s *Store) DB() *sql.DB { return s.db }

// Seats exposes the seat repository for read-only collaborators.
func (s *Store) Seats() *SeatRepo { return s.seats }

// Orders exposes the order repository for read-only collaborators.
func (s *Store) Orders() *OrderRepo { return s.orders }

// WithTx runs fn inside a single database transaction.  The
// transaction is rolled back when fn returns an error or panics and
// committed otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&storeTx{store: s, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// GetOrder loads an order with its items outside any transaction.
func (s *Store) GetOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrOrderNotFound
	}
	return order, err
}

// storeTx adapts a *sql.Tx to the booking.Tx operation set by
// delegating to the repositories' Tx methods.
type storeTx struct {
	store *Store
	tx    *sql.Tx
}

var _ booking.Tx = (*storeTx)(nil)

func (t *storeTx) SeatsForUpdate(ctx context.Context, seatIDs []uint64) ([]model.Seat, error) {
	return t.store.seats.SeatsForUpdateTx(ctx, t.tx, seatIDs)
}

func (t *storeTx) ReleaseSeats(ctx context.Context, seatIDs []uint64) error {
	return t.store.seats.ReleaseTx(ctx, t.tx, seatIDs)
}

func (t *storeTx) LockSeats(ctx context.Context, seatIDs []uint64, userID uint64, until time.Time) error {
	return t.store.seats.LockTx(ctx, t.tx, seatIDs, userID, until)
}

func (t *storeTx) BookSeats(ctx context.Context, seatIDs []uint64) error {
	return t.store.seats.BookTx(ctx, t.tx, seatIDs)
}

func (t *storeTx) SectionPrices(ctx context.Context, sectionIDs []uint64) (map[uint64]int64, error) {
	return t.store.sections.PricesTx(ctx, t.tx, sectionIDs)
}

func (t *storeTx) PendingOrders(ctx context.Context, userID, eventID uint64) ([]model.Order, error) {
	return t.store.orders.PendingByUserAndEventTx(ctx, t.tx, userID, eventID)
}

func (t *storeTx) CreateOrder(ctx context.Context, order *model.Order) error {
	return t.store.orders.CreateTx(ctx, t.tx, order)
}

func (t *storeTx) ConfirmOrder(ctx context.Context, orderID uint64, at time.Time) (bool, error) {
	return t.store.orders.ConfirmTx(ctx, t.tx, orderID, at)
}

func (t *storeTx) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return t.store.payments.CreateTx(ctx, t.tx, payment)
}

func (t *storeTx) ReleaseExpiredSeats(ctx context.Context, now time.Time) (int64, error) {
	return t.store.seats.ReleaseExpiredTx(ctx, t.tx, now)
}
