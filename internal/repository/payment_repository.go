package repository

import (
	"context"
	"database/sql"

	"github.com/tixcore/event-ticket-booking/internal/model"
)

// PaymentRepo provides access to the payments table.  Payments are
// only ever created by the confirmation flow; retries append rows and
// the latest row is the payment of record.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// CreateTx inserts a payment within the given transaction, populating
// the generated id on the passed value.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, payment *model.Payment) error {
	const q = `INSERT INTO payments (order_id, amount_in_paisa, method, status, transaction_id, paid_at) VALUES (?, ?, ?, ?, ?, ?)`
	var txnID interface{}
	if payment.TransactionID != nil {
		txnID = *payment.TransactionID
	}
	var paidAt interface{}
	if payment.PaidAt != nil {
		paidAt = payment.PaidAt.UTC()
	}
	res, err := tx.ExecContext(ctx, q, payment.OrderID, payment.AmountInPaisa, payment.Method, payment.Status, txnID, paidAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

// PaymentDetail is the payment shape embedded in order responses.
type PaymentDetail struct {
	AmountInPaisa int64   `json:"amount_in_paisa"`
	Method        string  `json:"method"`
	Status        string  `json:"status"`
	TransactionID *string `json:"transaction_id,omitempty"`
	PaidAt        *string `json:"paid_at,omitempty"`
}
