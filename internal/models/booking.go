package models

import "time"

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
)

const (
	PaymentUnpaid   = "unpaid"
	PaymentPartial  = "partial"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

type Booking struct {
	ID             int64     `json:"id" db:"id"`
	ItineraryID    *int64    `json:"itinerary_id,omitempty" db:"itinerary_id"`
	LeadID         *int64    `json:"lead_id,omitempty" db:"lead_id"`
	CustomerName   string    `json:"customer_name" db:"customer_name"`
	CustomerEmail  string    `json:"customer_email" db:"customer_email"`
	CustomerPhone  string    `json:"customer_phone" db:"customer_phone"`
	Amount         float64   `json:"amount" db:"amount"`
	Currency       string    `json:"currency" db:"currency"`
	Status         string    `json:"status" db:"status"`
	PaymentStatus  string    `json:"payment_status" db:"payment_status"`
	PaymentLinkID  string    `json:"payment_link_id" db:"payment_link_id"`
	PaymentLinkURL string    `json:"payment_link_url" db:"payment_link_url"`
	EmailSent      bool      `json:"email_sent" db:"email_sent"`
	AgentID        *string   `json:"agent_id,omitempty" db:"agent_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type BookingFilter struct {
	Status        string
	PaymentStatus string
	AgentID       string
}

func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func ValidPaymentStatus(s string) bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}
