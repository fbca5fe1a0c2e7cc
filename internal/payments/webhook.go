package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// SignatureHeader carries the webhook body signature.
const SignatureHeader = "X-Razorpay-Signature"

const (
	EventLinkPaid        = "payment_link.paid"
	EventPaymentCaptured = "payment.captured"
	EventPaymentFailed   = "payment.failed"
)

var ErrSignature = errors.New("invalid webhook signature")

// VerifySignature checks the hex HMAC-SHA256 of body under secret.
func VerifySignature(body []byte, signature, secret string) error {
	if secret == "" || signature == "" {
		return ErrSignature
	}
	want, err := hex.DecodeString(signature)
	if err != nil {
		return ErrSignature
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), want) {
		return ErrSignature
	}
	return nil
}

// Sign returns the signature VerifySignature accepts.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type PaymentEntity struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Method   string `json:"method"`
	Email    string `json:"email"`
	Notes    any    `json:"notes"`
	// Set for payments made through a payment link.
	PaymentLinkID string `json:"payment_link_id"`
	CreatedAt     int64  `json:"created_at"`
}

// AmountMajor is the amount in the major currency unit.
func (p *PaymentEntity) AmountMajor() float64 {
	return float64(p.Amount) / 100
}

// Event is a webhook delivery.
type Event struct {
	Event   string `json:"event"`
	Payload struct {
		PaymentLink *struct {
			Entity Link `json:"entity"`
		} `json:"payment_link,omitempty"`
		Payment *struct {
			Entity PaymentEntity `json:"entity"`
		} `json:"payment,omitempty"`
	} `json:"payload"`
	CreatedAt int64 `json:"created_at"`
}

// LinkID returns the payment link the event refers to, if any.
func (e *Event) LinkID() string {
	if e.Payload.PaymentLink != nil && e.Payload.PaymentLink.Entity.ID != "" {
		return e.Payload.PaymentLink.Entity.ID
	}
	if e.Payload.Payment != nil {
		return e.Payload.Payment.Entity.PaymentLinkID
	}
	return ""
}

// Payment returns the payment entity, or nil.
func (e *Event) Payment() *PaymentEntity {
	if e.Payload.Payment == nil {
		return nil
	}
	return &e.Payload.Payment.Entity
}

func ParseEvent(body []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return nil, fmt.Errorf("decode webhook: %w", err)
	}
	if ev.Event == "" {
		return nil, fmt.Errorf("decode webhook: missing event name")
	}
	return &ev, nil
}
