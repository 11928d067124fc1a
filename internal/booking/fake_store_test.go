package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

// fakeStore is an in-memory Store used by the engine tests.  A single
// mutex serialises transactions, mimicking the row-lock blocking of a
// real database, and a snapshot taken at transaction start is restored
// on error so rollback semantics hold.
type fakeStore struct {
	mu       sync.Mutex
	seats    map[uint64]*model.Seat
	sections map[uint64]*model.Section
	orders   map[uint64]*model.Order
	payments []*model.Payment

	nextOrderID   uint64
	nextItemID    uint64
	nextPaymentID uint64
}

func newFakeStore(sections []model.Section, seats []model.Seat) *fakeStore {
	st := &fakeStore{
		seats:    make(map[uint64]*model.Seat),
		sections: make(map[uint64]*model.Section),
		orders:   make(map[uint64]*model.Order),
	}
	for i := range sections {
		sec := sections[i]
		st.sections[sec.ID] = &sec
	}
	for i := range seats {
		seat := seats[i]
		st.seats[seat.ID] = &seat
	}
	return st
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&fakeTx{store: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *fakeStore) GetOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

// seat returns the live seat row for assertions.
func (s *fakeStore) seat(id uint64) model.Seat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.seats[id]
}

func (s *fakeStore) paymentsFor(orderID uint64) []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Payment
	for _, p := range s.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out
}

func (s *fakeStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

type fakeSnapshot struct {
	seats    map[uint64]*model.Seat
	orders   map[uint64]*model.Order
	payments []*model.Payment

	nextOrderID   uint64
	nextItemID    uint64
	nextPaymentID uint64
}

func (s *fakeStore) snapshot() fakeSnapshot {
	snap := fakeSnapshot{
		seats:         make(map[uint64]*model.Seat, len(s.seats)),
		orders:        make(map[uint64]*model.Order, len(s.orders)),
		payments:      make([]*model.Payment, 0, len(s.payments)),
		nextOrderID:   s.nextOrderID,
		nextItemID:    s.nextItemID,
		nextPaymentID: s.nextPaymentID,
	}
	for id, seat := range s.seats {
		c := *seat
		snap.seats[id] = &c
	}
	for id, o := range s.orders {
		snap.orders[id] = cloneOrder(o)
	}
	for _, p := range s.payments {
		c := *p
		snap.payments = append(snap.payments, &c)
	}
	return snap
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.seats = snap.seats
	s.orders = snap.orders
	s.payments = snap.payments
	s.nextOrderID = snap.nextOrderID
	s.nextItemID = snap.nextItemID
	s.nextPaymentID = snap.nextPaymentID
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	if o.ExpiresAt != nil {
		t := *o.ExpiresAt
		c.ExpiresAt = &t
	}
	if o.ConfirmedAt != nil {
		t := *o.ConfirmedAt
		c.ConfirmedAt = &t
	}
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

// fakeTx operates on the store state while the store mutex is held.
type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) SeatsForUpdate(ctx context.Context, seatIDs []uint64) ([]model.Seat, error) {
	out := make([]model.Seat, 0, len(seatIDs))
	for _, id := range seatIDs {
		if seat, ok := t.store.seats[id]; ok {
			out = append(out, *seat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *fakeTx) ReleaseSeats(ctx context.Context, seatIDs []uint64) error {
	for _, id := range seatIDs {
		seat := t.store.seats[id]
		seat.Status = model.SeatAvailable
		seat.LockedBy = nil
		seat.LockedUntil = nil
	}
	return nil
}

func (t *fakeTx) LockSeats(ctx context.Context, seatIDs []uint64, userID uint64, until time.Time) error {
	for _, id := range seatIDs {
		seat := t.store.seats[id]
		uid := userID
		end := until
		seat.Status = model.SeatLocked
		seat.LockedBy = &uid
		seat.LockedUntil = &end
	}
	return nil
}

func (t *fakeTx) BookSeats(ctx context.Context, seatIDs []uint64) error {
	for _, id := range seatIDs {
		seat := t.store.seats[id]
		seat.Status = model.SeatBooked
		seat.LockedBy = nil
		seat.LockedUntil = nil
	}
	return nil
}

func (t *fakeTx) SectionPrices(ctx context.Context, sectionIDs []uint64) (map[uint64]int64, error) {
	out := make(map[uint64]int64, len(sectionIDs))
	for _, id := range sectionIDs {
		if sec, ok := t.store.sections[id]; ok {
			out[id] = sec.PriceInPaisa
		}
	}
	return out, nil
}

func (t *fakeTx) PendingOrders(ctx context.Context, userID, eventID uint64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range t.store.orders {
		if o.UserID == userID && o.EventID == eventID && o.Status == model.OrderPending {
			out = append(out, *cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *fakeTx) CreateOrder(ctx context.Context, order *model.Order) error {
	t.store.nextOrderID++
	order.ID = t.store.nextOrderID
	for i := range order.Items {
		t.store.nextItemID++
		order.Items[i].ID = t.store.nextItemID
		order.Items[i].OrderID = order.ID
	}
	t.store.orders[order.ID] = cloneOrder(order)
	return nil
}

func (t *fakeTx) ConfirmOrder(ctx context.Context, orderID uint64, at time.Time) (bool, error) {
	o, ok := t.store.orders[orderID]
	if !ok || o.Status != model.OrderPending {
		return false, nil
	}
	stamp := at
	o.Status = model.OrderConfirmed
	o.ConfirmedAt = &stamp
	o.ExpiresAt = nil
	return true, nil
}

func (t *fakeTx) CreatePayment(ctx context.Context, payment *model.Payment) error {
	t.store.nextPaymentID++
	payment.ID = t.store.nextPaymentID
	c := *payment
	t.store.payments = append(t.store.payments, &c)
	return nil
}

func (t *fakeTx) ReleaseExpiredSeats(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, seat := range t.store.seats {
		if seat.LockExpired(now) {
			seat.Status = model.SeatAvailable
			seat.LockedBy = nil
			seat.LockedUntil = nil
			n++
		}
	}
	return n, nil
}

// fakeNotifier records confirmation notifications.
type fakeNotifier struct {
	mu     sync.Mutex
	orders []uint64
}

func (n *fakeNotifier) OrderConfirmed(ctx context.Context, order *model.Order, payment *model.Payment) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.ID)
}

func (n *fakeNotifier) calls() []uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]uint64(nil), n.orders...)
}

// staticTokens returns the same payment reference every time.
type staticTokens struct{ ref string }

func (s staticTokens) PaymentRef() (string, error) { return s.ref, nil }
