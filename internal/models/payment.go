package models

import "time"

const (
	MethodCash = "cash"
	MethodBank = "bank"
	MethodUPI  = "upi"
	MethodCard = "card"
	MethodLink = "link"
)

const (
	TxnPending  = "pending"
	TxnCaptured = "captured"
	TxnFailed   = "failed"
	TxnRefunded = "refunded"
)

type Payment struct {
	ID            int64     `json:"id" db:"id"`
	BookingID     int64     `json:"booking_id" db:"booking_id"`
	Amount        float64   `json:"amount" db:"amount"`
	Method        string    `json:"method" db:"method"`
	Status        string    `json:"status" db:"status"`
	TransactionID *string   `json:"transaction_id,omitempty" db:"transaction_id"`
	Notes         string    `json:"notes" db:"notes"`
	PaidAt        time.Time `json:"paid_at" db:"paid_at"`
	CreatedBy     *string   `json:"created_by,omitempty" db:"created_by"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type PaymentFilter struct {
	BookingID *int64
	Status    string
	// AgentID limits the list to payments on bookings the agent owns.
	AgentID string
}

func ValidMethod(m string) bool {
	switch m {
	case MethodCash, MethodBank, MethodUPI, MethodCard, MethodLink:
		return true
	}
	return false
}

func ValidTxnStatus(s string) bool {
	switch s {
	case TxnPending, TxnCaptured, TxnFailed, TxnRefunded:
		return true
	}
	return false
}
