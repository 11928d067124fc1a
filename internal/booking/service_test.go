package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

const (
	eventID      = uint64(1)
	otherEventID = uint64(2)
	sectionID    = uint64(10)
)

var testNow = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

// fixture returns a store seeded with three 25000-paisa seats for the
// main event and one seat belonging to a different event.
func fixture() *fakeStore {
	sections := []model.Section{
		{ID: sectionID, EventID: eventID, Name: "Gold", PriceInPaisa: 25000},
		{ID: 20, EventID: otherEventID, Name: "Silver", PriceInPaisa: 10000},
	}
	seats := []model.Seat{
		{ID: 1, EventID: eventID, SectionID: sectionID, Row: "A", Number: 1, Status: model.SeatAvailable},
		{ID: 2, EventID: eventID, SectionID: sectionID, Row: "A", Number: 2, Status: model.SeatAvailable},
		{ID: 3, EventID: eventID, SectionID: sectionID, Row: "A", Number: 3, Status: model.SeatAvailable},
		{ID: 99, EventID: otherEventID, SectionID: 20, Row: "B", Number: 1, Status: model.SeatAvailable},
	}
	return newFakeStore(sections, seats)
}

func newTestService(st *fakeStore, opts ...Option) *Service {
	base := []Option{WithHoldTTL(2 * time.Minute)}
	return NewService(st, FixedClock(testNow), staticTokens{ref: "TXN_FIXEDREF0001"}, append(base, opts...)...)
}

func TestReserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("locks seats and prices the order at hold time", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		order, err := svc.Reserve(ctx, 7, eventID, []uint64{3, 1, 2})
		require.NoError(t, err)

		assert.Equal(t, model.OrderPending, order.Status)
		assert.Equal(t, int64(75000), order.SubtotalInPaisa)
		assert.Equal(t, int64(13500), order.TaxInPaisa)
		assert.Equal(t, int64(88500), order.TotalInPaisa)
		require.NotNil(t, order.ExpiresAt)
		assert.Equal(t, testNow.Add(2*time.Minute), *order.ExpiresAt)

		require.Len(t, order.Items, 3)
		assert.Equal(t, []uint64{1, 2, 3}, order.SeatIDs())
		for _, it := range order.Items {
			assert.Equal(t, int64(25000), it.PriceInPaisa)
		}

		for _, id := range []uint64{1, 2, 3} {
			seat := st.seat(id)
			assert.Equal(t, model.SeatLocked, seat.Status)
			require.NotNil(t, seat.LockedBy)
			assert.Equal(t, uint64(7), *seat.LockedBy)
			require.NotNil(t, seat.LockedUntil)
			assert.Equal(t, testNow.Add(2*time.Minute), *seat.LockedUntil)
		}
	})

	t.Run("rejects an empty selection", func(t *testing.T) {
		svc := newTestService(fixture())
		_, err := svc.Reserve(ctx, 7, eventID, nil)
		assert.ErrorIs(t, err, ErrEmptySelection)

		_, err = svc.Reserve(ctx, 7, eventID, []uint64{0, 0})
		assert.ErrorIs(t, err, ErrEmptySelection)
	})

	t.Run("rejects seats from another event without mutating anything", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		_, err := svc.Reserve(ctx, 7, eventID, []uint64{1, 99})
		assert.ErrorIs(t, err, ErrCrossEventSelection)
		assert.Equal(t, model.SeatAvailable, st.seat(1).Status)
		assert.Equal(t, model.SeatAvailable, st.seat(99).Status)
		assert.Zero(t, st.orderCount())
	})

	t.Run("rejects unknown seat ids", func(t *testing.T) {
		svc := newTestService(fixture())
		_, err := svc.Reserve(ctx, 7, eventID, []uint64{1, 12345})
		assert.ErrorIs(t, err, ErrCrossEventSelection)
	})

	t.Run("rejects a seat held by someone else", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		_, err := svc.Reserve(ctx, 7, eventID, []uint64{1, 2})
		require.NoError(t, err)

		_, err = svc.Reserve(ctx, 8, eventID, []uint64{2, 3})
		assert.ErrorIs(t, err, ErrSeatUnavailable)
		// Seat 3 was free but must not end up held: the rejection
		// rolls the whole attempt back.
		assert.Equal(t, model.SeatAvailable, st.seat(3).Status)
	})

	t.Run("rejects a booked seat", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		order, err := svc.Reserve(ctx, 7, eventID, []uint64{1})
		require.NoError(t, err)
		_, err = svc.Confirm(ctx, 7, order.ID, model.MethodUpi)
		require.NoError(t, err)

		_, err = svc.Reserve(ctx, 8, eventID, []uint64{1})
		assert.ErrorIs(t, err, ErrSeatUnavailable)
	})

	t.Run("reclaims a lapsed hold for a new requester", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		holder := uint64(1)
		past := testNow.Add(-time.Minute)
		st.seats[1].Status = model.SeatLocked
		st.seats[1].LockedBy = &holder
		st.seats[1].LockedUntil = &past

		order, err := svc.Reserve(ctx, 2, eventID, []uint64{1})
		require.NoError(t, err)
		assert.Equal(t, model.OrderPending, order.Status)

		seat := st.seat(1)
		assert.Equal(t, model.SeatLocked, seat.Status)
		require.NotNil(t, seat.LockedBy)
		assert.Equal(t, uint64(2), *seat.LockedBy)
	})

	t.Run("rolls back an inline reclaim when the attempt fails", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		holder := uint64(1)
		past := testNow.Add(-time.Minute)
		st.seats[1].Status = model.SeatLocked
		st.seats[1].LockedBy = &holder
		st.seats[1].LockedUntil = &past
		st.seats[2].Status = model.SeatBooked

		_, err := svc.Reserve(ctx, 2, eventID, []uint64{1, 2})
		assert.ErrorIs(t, err, ErrSeatUnavailable)

		// The lapsed lock on seat 1 is back exactly as it was.
		seat := st.seat(1)
		assert.Equal(t, model.SeatLocked, seat.Status)
		require.NotNil(t, seat.LockedBy)
		assert.Equal(t, holder, *seat.LockedBy)
	})

	t.Run("returns the existing order for an identical retry", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		first, err := svc.Reserve(ctx, 7, eventID, []uint64{1, 2})
		require.NoError(t, err)
		second, err := svc.Reserve(ctx, 7, eventID, []uint64{2, 1, 2})
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, st.orderCount())
	})

	t.Run("a different seat set is a new attempt, not a match", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		_, err := svc.Reserve(ctx, 7, eventID, []uint64{1, 2})
		require.NoError(t, err)

		// Overlapping but different set: seat 1 is already held by
		// the same user, so the new attempt is correctly rejected.
		_, err = svc.Reserve(ctx, 7, eventID, []uint64{1, 3})
		assert.ErrorIs(t, err, ErrSeatUnavailable)
	})
}

func TestReserveConcurrent(t *testing.T) {
	t.Parallel()

	st := fixture()
	svc := newTestService(st)

	const attempts = 24
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(context.Background(), uint64(100+i), eventID, []uint64{2})
		}(i)
	}
	wg.Wait()

	var ok, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, ErrSeatUnavailable):
			unavailable++
		}
	}
	assert.Equal(t, 1, ok, "exactly one reservation must win the seat")
	assert.Equal(t, attempts-1, unavailable)
	assert.Equal(t, 1, st.orderCount())
}

func TestConfirm(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("books the seats and records a completed payment", func(t *testing.T) {
		st := fixture()
		notifier := &fakeNotifier{}
		svc := newTestService(st, WithNotifier(notifier))

		order, err := svc.Reserve(ctx, 7, eventID, []uint64{1, 2, 3})
		require.NoError(t, err)

		confirmed, err := svc.Confirm(ctx, 7, order.ID, model.MethodCreditCard)
		require.NoError(t, err)

		assert.Equal(t, model.OrderConfirmed, confirmed.Status)
		assert.Nil(t, confirmed.ExpiresAt)
		require.NotNil(t, confirmed.ConfirmedAt)
		assert.Equal(t, testNow, *confirmed.ConfirmedAt)

		for _, id := range []uint64{1, 2, 3} {
			seat := st.seat(id)
			assert.Equal(t, model.SeatBooked, seat.Status)
			assert.Nil(t, seat.LockedBy)
			assert.Nil(t, seat.LockedUntil)
		}

		payments := st.paymentsFor(order.ID)
		require.Len(t, payments, 1)
		assert.Equal(t, int64(88500), payments[0].AmountInPaisa)
		assert.Equal(t, model.PaymentCompleted, payments[0].Status)
		assert.Equal(t, model.MethodCreditCard, payments[0].Method)
		require.NotNil(t, payments[0].TransactionID)
		assert.Equal(t, "TXN_FIXEDREF0001", *payments[0].TransactionID)
		require.NotNil(t, payments[0].PaidAt)
		assert.Equal(t, testNow, *payments[0].PaidAt)

		assert.Equal(t, []uint64{order.ID}, notifier.calls())
	})

	t.Run("keeps the price snapshotted at hold time", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)

		order, err := svc.Reserve(ctx, 7, eventID, []uint64{1})
		require.NoError(t, err)

		// Catalog price changes between hold and confirmation must
		// not leak into the order.
		st.sections[sectionID].PriceInPaisa = 99999

		confirmed, err := svc.Confirm(ctx, 7, order.ID, model.MethodUpi)
		require.NoError(t, err)
		assert.Equal(t, int64(25000), confirmed.SubtotalInPaisa)

		payments := st.paymentsFor(order.ID)
		require.Len(t, payments, 1)
		assert.Equal(t, confirmed.TotalInPaisa, payments[0].AmountInPaisa)
	})

	t.Run("rejects a confirm by a different user", func(t *testing.T) {
		svc := newTestService(fixture())
		order, err := svc.Reserve(ctx, 7, eventID, []uint64{1})
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, 8, order.ID, model.MethodUpi)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("rejects an expired order", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)
		order, err := svc.Reserve(ctx, 7, eventID, []uint64{1})
		require.NoError(t, err)

		late := NewService(st, FixedClock(testNow.Add(3*time.Minute)), staticTokens{ref: "TXN_FIXEDREF0001"})
		_, err = late.Confirm(ctx, 7, order.ID, model.MethodUpi)
		assert.ErrorIs(t, err, ErrOrderExpired)
	})

	t.Run("rejects a second confirmation", func(t *testing.T) {
		st := fixture()
		svc := newTestService(st)
		order, err := svc.Reserve(ctx, 7, eventID, []uint64{1})
		require.NoError(t, err)

		_, err = svc.Confirm(ctx, 7, order.ID, model.MethodUpi)
		require.NoError(t, err)
		_, err = svc.Confirm(ctx, 7, order.ID, model.MethodUpi)
		assert.ErrorIs(t, err, ErrNotConfirmable)

		require.Len(t, st.paymentsFor(order.ID), 1)
	})

	t.Run("rejects an unknown order", func(t *testing.T) {
		svc := newTestService(fixture())
		_, err := svc.Confirm(ctx, 7, 12345, model.MethodUpi)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}

func TestReclaimExpired(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := fixture()
	svc := newTestService(st)

	holder := uint64(5)
	past := testNow.Add(-time.Second)
	future := testNow.Add(time.Minute)
	for _, id := range []uint64{1, 2} {
		st.seats[id].Status = model.SeatLocked
		st.seats[id].LockedBy = &holder
		st.seats[id].LockedUntil = &past
	}
	st.seats[3].Status = model.SeatLocked
	st.seats[3].LockedBy = &holder
	st.seats[3].LockedUntil = &future

	released, err := svc.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)

	for _, id := range []uint64{1, 2} {
		seat := st.seat(id)
		assert.Equal(t, model.SeatAvailable, seat.Status)
		assert.Nil(t, seat.LockedBy)
		assert.Nil(t, seat.LockedUntil)
	}
	// The unexpired hold is untouched.
	assert.Equal(t, model.SeatLocked, st.seat(3).Status)

	// Nothing left to sweep on the second pass.
	released, err = svc.ReclaimExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, released)
}
