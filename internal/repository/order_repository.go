package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

// OrderRepo provides CRUD operations for orders and their items.  An
// order groups the seats a user is buying for one event; each item
// carries the per-seat price snapshotted at hold time.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderColumns = `id, user_id, event_id, status, subtotal_in_paisa, tax_in_paisa, total_in_paisa, expires_at, confirmed_at, created_at, updated_at`

// CreateTx inserts an order and its items within the given
// transaction, populating the generated order id on the passed value.
// Items are written in a single bulk statement.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, order *model.Order) error {
	const q = `INSERT INTO orders (user_id, event_id, status, subtotal_in_paisa, tax_in_paisa, total_in_paisa, expires_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	var expires interface{}
	if order.ExpiresAt != nil {
		expires = order.ExpiresAt.UTC()
	}
	res, err := tx.ExecContext(ctx, q, order.UserID, order.EventID, order.Status,
		order.SubtotalInPaisa, order.TaxInPaisa, order.TotalInPaisa, expires)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	order.ID = uint64(id)

	if len(order.Items) == 0 {
		return nil
	}
	query := `INSERT INTO order_items (order_id, seat_id, price_in_paisa) VALUES `
	args := make([]interface{}, 0, len(order.Items)*3)
	for i := range order.Items {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		order.Items[i].OrderID = order.ID
		args = append(args, order.ID, order.Items[i].SeatID, order.Items[i].PriceInPaisa)
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return err
}

// GetByID returns an order with its items.  sql.ErrNoRows is returned
// when the order does not exist.
func (r *OrderRepo) GetByID(ctx context.Context, orderID uint64) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	order, err := scanOrder(r.db.QueryRowContext(ctx, q, orderID))
	if err != nil {
		return nil, err
	}
	items, err := r.itemsByOrderIDs(ctx, r.db, []uint64{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

// PendingByUserAndEventTx returns the user's pending orders for the
// event, items included, within the given transaction.  Expiry is not
// filtered here; the engine applies its own clock.
func (r *OrderRepo) PendingByUserAndEventTx(ctx context.Context, tx *sql.Tx, userID, eventID uint64) ([]model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? AND event_id = ? AND status = 'pending' ORDER BY id`
	rows, err := tx.QueryContext(ctx, q, userID, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var orders []model.Order
	var ids []uint64
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}
	items, err := r.itemsByOrderIDs(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// ConfirmTx flips a pending order to confirmed, stamping confirmed_at
// and clearing the expiry.  The status guard in the WHERE clause makes
// concurrent double-confirms lose cleanly: the second update matches
// no row and the boolean comes back false.
func (r *OrderRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, orderID uint64, at time.Time) (bool, error) {
	const q = `UPDATE orders SET status = 'confirmed', confirmed_at = ?, expires_at = NULL WHERE id = ? AND status = 'pending'`
	res, err := tx.ExecContext(ctx, q, at.UTC(), orderID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// OrderDetail is an order with its items and latest payment as shown
// to the owning user.
type OrderDetail struct {
	ID              uint64            `json:"id"`
	EventID         uint64            `json:"event_id"`
	Status          string            `json:"status"`
	SubtotalInPaisa int64             `json:"subtotal_in_paisa"`
	TaxInPaisa      int64             `json:"tax_in_paisa"`
	TotalInPaisa    int64             `json:"total_in_paisa"`
	ExpiresAt       *string           `json:"expires_at,omitempty"`
	ConfirmedAt     *string           `json:"confirmed_at,omitempty"`
	Items           []OrderDetailItem `json:"items"`
	Payment         *PaymentDetail    `json:"payment,omitempty"`
}

// OrderDetailItem is one seat line of an OrderDetail.
type OrderDetailItem struct {
	SeatID       uint64 `json:"seat_id"`
	Row          string `json:"row"`
	Number       uint32 `json:"number"`
	SectionName  string `json:"section_name"`
	PriceInPaisa int64  `json:"price_in_paisa"`
}

// ListByUser returns all of the user's orders, newest first, with seat
// details and the latest payment per order.
func (r *OrderRepo) ListByUser(ctx context.Context, userID uint64) ([]OrderDetail, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]OrderDetail, 0)
	index := make(map[uint64]int)
	var ids []uint64
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		index[order.ID] = len(details)
		details = append(details, orderToDetail(order))
		ids = append(ids, order.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	if err := r.fillItems(ctx, details, index, ids); err != nil {
		return nil, err
	}
	if err := r.fillPayments(ctx, details, index, ids); err != nil {
		return nil, err
	}
	return details, nil
}

// GetDetailForUser returns a single order for the given user with seat
// details and the latest payment.  sql.ErrNoRows is returned when the
// order does not exist; ErrForbidden when it belongs to someone else.
func (r *OrderRepo) GetDetailForUser(ctx context.Context, orderID, userID uint64) (*OrderDetail, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = ?`
	order, err := scanOrder(r.db.QueryRowContext(ctx, q, orderID))
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrForbidden
	}
	details := []OrderDetail{orderToDetail(order)}
	index := map[uint64]int{order.ID: 0}
	ids := []uint64{order.ID}
	if err := r.fillItems(ctx, details, index, ids); err != nil {
		return nil, err
	}
	if err := r.fillPayments(ctx, details, index, ids); err != nil {
		return nil, err
	}
	return &details[0], nil
}

func orderToDetail(order *model.Order) OrderDetail {
	d := OrderDetail{
		ID:              order.ID,
		EventID:         order.EventID,
		Status:          string(order.Status),
		SubtotalInPaisa: order.SubtotalInPaisa,
		TaxInPaisa:      order.TaxInPaisa,
		TotalInPaisa:    order.TotalInPaisa,
		Items:           []OrderDetailItem{},
	}
	if order.ExpiresAt != nil {
		iso := order.ExpiresAt.UTC().Format(time.RFC3339)
		d.ExpiresAt = &iso
	}
	if order.ConfirmedAt != nil {
		iso := order.ConfirmedAt.UTC().Format(time.RFC3339)
		d.ConfirmedAt = &iso
	}
	return d
}

// fillItems populates seat lines for the given orders in one query.
func (r *OrderRepo) fillItems(ctx context.Context, details []OrderDetail, index map[uint64]int, ids []uint64) error {
	placeholders, args := idList(ids)
	query := `SELECT oi.order_id, oi.seat_id, s.row_label, s.seat_number, sec.name, oi.price_in_paisa
	          FROM order_items oi
	          JOIN seats s ON s.id = oi.seat_id
	          JOIN sections sec ON sec.id = s.section_id
	          WHERE oi.order_id IN (` + placeholders + `)
	          ORDER BY oi.order_id, oi.seat_id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID uint64
		var item OrderDetailItem
		if err := rows.Scan(&orderID, &item.SeatID, &item.Row, &item.Number, &item.SectionName, &item.PriceInPaisa); err != nil {
			return err
		}
		if idx, ok := index[orderID]; ok {
			details[idx].Items = append(details[idx].Items, item)
		}
	}
	return rows.Err()
}

// fillPayments attaches the latest payment of each order.
func (r *OrderRepo) fillPayments(ctx context.Context, details []OrderDetail, index map[uint64]int, ids []uint64) error {
	placeholders, args := idList(ids)
	query := `SELECT order_id, amount_in_paisa, method, status, transaction_id, paid_at
	          FROM payments
	          WHERE order_id IN (` + placeholders + `)
	          ORDER BY order_id, id`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var orderID uint64
		var p PaymentDetail
		var txnID sql.NullString
		var paidAt sql.NullTime
		if err := rows.Scan(&orderID, &p.AmountInPaisa, &p.Method, &p.Status, &txnID, &paidAt); err != nil {
			return err
		}
		if txnID.Valid {
			ref := txnID.String
			p.TransactionID = &ref
		}
		if paidAt.Valid {
			iso := paidAt.Time.UTC().Format(time.RFC3339)
			p.PaidAt = &iso
		}
		if idx, ok := index[orderID]; ok {
			// Later rows overwrite earlier ones; the last payment is
			// the payment of record.
			p2 := p
			details[idx].Payment = &p2
		}
	}
	return rows.Err()
}

// itemsByOrderIDs loads order items for the given orders keyed by
// order id.  Works on either the pool or a transaction via the querier.
func (r *OrderRepo) itemsByOrderIDs(ctx context.Context, q querier, ids []uint64) (map[uint64][]model.OrderItem, error) {
	placeholders, args := idList(ids)
	query := `SELECT id, order_id, seat_id, price_in_paisa, created_at FROM order_items WHERE order_id IN (` + placeholders + `) ORDER BY order_id, seat_id`
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[uint64][]model.OrderItem, len(ids))
	for rows.Next() {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.SeatID, &item.PriceInPaisa, &item.CreatedAt); err != nil {
			return nil, err
		}
		out[item.OrderID] = append(out[item.OrderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanOrder reads one order row from an orderColumns select.
func scanOrder(row rowScanner) (*model.Order, error) {
	var order model.Order
	var expiresAt, confirmedAt sql.NullTime
	if err := row.Scan(
		&order.ID, &order.UserID, &order.EventID, &order.Status,
		&order.SubtotalInPaisa, &order.TaxInPaisa, &order.TotalInPaisa,
		&expiresAt, &confirmedAt, &order.CreatedAt, &order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if expiresAt.Valid {
		t := expiresAt.Time.UTC()
		order.ExpiresAt = &t
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time.UTC()
		order.ConfirmedAt = &t
	}
	return &order, nil
}
