package model

import "time"

// PaymentStatus enumerates payment outcomes.
type PaymentStatus string

const (
    PaymentPending   PaymentStatus = "pending"
    PaymentCompleted PaymentStatus = "completed"
    PaymentFailed    PaymentStatus = "failed"
)

// PaymentMethod enumerates the accepted payment instruments.
type PaymentMethod string

const (
    MethodUpi        PaymentMethod = "upi"
    MethodCreditCard PaymentMethod = "credit_card"
    MethodDebitCard  PaymentMethod = "debit_card"
    MethodNetBanking PaymentMethod = "net_banking"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
    switch m {
    case MethodUpi, MethodCreditCard, MethodDebitCard, MethodNetBanking:
        return true
    }
    return false
}

// Payment records a (simulated) gateway charge for an order.  An order
// may accumulate several payment rows across retries; the latest one is
// the payment of record.
//
// Fields:
//  ID            – primary key identifier.
//  OrderID       – order this payment belongs to.
//  AmountInPaisa – charged amount in minor currency units.
//  Method        – payment instrument used.
//  Status        – outcome of the charge (pending, completed, failed).
//  TransactionID – opaque gateway reference, if assigned.
//  PaidAt        – when the charge completed, if it did.
//  CreatedAt     – creation timestamp.
type Payment struct {
    ID            uint64        // payments.id
    OrderID       uint64        // payments.order_id
    AmountInPaisa int64         // payments.amount_in_paisa
    Method        PaymentMethod // payments.method
    Status        PaymentStatus // payments.status
    TransactionID *string       // payments.transaction_id (nullable)
    PaidAt        *time.Time    // payments.paid_at (nullable)
    CreatedAt     time.Time     // payments.created_at
}
