package model

import "time"

// OrderStatus enumerates the lifecycle states of an order.
type OrderStatus string

const (
    OrderPending   OrderStatus = "pending"
    OrderConfirmed OrderStatus = "confirmed"
    OrderCancelled OrderStatus = "cancelled"
    OrderExpired   OrderStatus = "expired"
)

// Order records a user's attempt to buy a set of seats for an event.
// It is created pending with a hold expiry; confirmation finalises it
// and clears the expiry.  Amounts are integer minor currency units.
//
// Fields:
//  ID             – primary key identifier.
//  UserID         – user who placed the order.
//  EventID        – event the seats belong to.
//  Status         – state of the order (pending, confirmed, cancelled, expired).
//  SubtotalInPaisa – sum of the line prices, snapshotted at hold time.
//  TaxInPaisa     – tax on the subtotal, computed once at hold time.
//  TotalInPaisa   – subtotal plus tax.
//  ExpiresAt      – end of the hold window; nil once finalised.
//  ConfirmedAt    – when the order was confirmed, if it was.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
//  Items          – one line per seat, fixed at hold time.
type Order struct {
    ID              uint64      // orders.id
    UserID          uint64      // orders.user_id
    EventID         uint64      // orders.event_id
    Status          OrderStatus // orders.status
    SubtotalInPaisa int64       // orders.subtotal_in_paisa
    TaxInPaisa      int64       // orders.tax_in_paisa
    TotalInPaisa    int64       // orders.total_in_paisa
    ExpiresAt       *time.Time  // orders.expires_at (nullable)
    ConfirmedAt     *time.Time  // orders.confirmed_at (nullable)
    CreatedAt       time.Time   // orders.created_at
    UpdatedAt       time.Time   // orders.updated_at
    Items           []OrderItem // orders -> order_items
}

// OrderItem links an order to a single seat at the price the seat was
// held at.  The price is never re-derived after hold time.
//
// Fields:
//  ID           – primary key identifier.
//  OrderID      – order this line belongs to.
//  SeatID       – seat bought by this line.
//  PriceInPaisa – per-seat price snapshotted at hold time.
//  CreatedAt    – creation timestamp.
type OrderItem struct {
    ID           uint64    // order_items.id
    OrderID      uint64    // order_items.order_id
    SeatID       uint64    // order_items.seat_id
    PriceInPaisa int64     // order_items.price_in_paisa
    CreatedAt    time.Time // order_items.created_at
}

// SeatIDs returns the seat ids referenced by the order's items in line
// order.
func (o *Order) SeatIDs() []uint64 {
    ids := make([]uint64, 0, len(o.Items))
    for _, it := range o.Items {
        ids = append(ids, it.SeatID)
    }
    return ids
}

// Expired reports whether the order is pending and its hold window has
// passed at the given instant.
func (o *Order) Expired(now time.Time) bool {
    return o.Status == OrderPending && o.ExpiresAt != nil && o.ExpiresAt.Before(now)
}
