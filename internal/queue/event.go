// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderConfirmedEvent is published after an order has been confirmed
// and paid.  It carries enough information for downstream consumers to
// log, notify, or feed analytics without querying the primary database.
type OrderConfirmedEvent struct {
	OrderID         uint64   `json:"order_id"`
	UserID          uint64   `json:"user_id"`
	EventID         uint64   `json:"event_id"`
	SeatIDs         []uint64 `json:"seat_ids"`
	SubtotalInPaisa int64    `json:"subtotal_in_paisa"`
	TaxInPaisa      int64    `json:"tax_in_paisa"`
	TotalInPaisa    int64    `json:"total_in_paisa"`
	PaymentMethod   string   `json:"payment_method"`
	PaymentRef      string   `json:"payment_ref"`
	ConfirmedAt     string   `json:"confirmed_at"`
}
