package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/database"
	"travel-backoffice/internal/models"
	"travel-backoffice/internal/payments"
)

// ErrIgnored is returned for webhook events that carry nothing to record.
var ErrIgnored = errors.New("event ignored")

// Reconcile recomputes a booking's payment status from its payments. A
// fully paid pending booking becomes confirmed.
func (s *Service) Reconcile(ctx context.Context, bookingID int64) (*models.Billing, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	list, err := s.store.ListPayments(ctx, models.PaymentFilter{BookingID: &bookingID})
	if err != nil {
		return nil, err
	}
	billing := models.Summarize(b, list)

	status := b.Status
	if billing.PaymentStatus == models.PaymentPaid && status == models.BookingPending {
		status = models.BookingConfirmed
	}
	// refunded is set by hand and survives recomputation
	if b.PaymentStatus == models.PaymentRefunded {
		billing.PaymentStatus = models.PaymentRefunded
	}
	if billing.PaymentStatus != b.PaymentStatus || status != b.Status {
		if err := s.store.SetBookingPaymentStatus(ctx, b.ID, billing.PaymentStatus, status); err != nil {
			return nil, err
		}
		s.logger.WithFields(logrus.Fields{
			"booking_id":     b.ID,
			"payment_status": billing.PaymentStatus,
			"status":         status,
		}).Info("Booking payment status updated")
	}
	return &billing, nil
}

// RecordPayment stores a manual payment and reconciles its booking.
func (s *Service) RecordPayment(ctx context.Context, p *models.Payment) (*models.Billing, error) {
	if p.Status == "" {
		p.Status = models.TxnCaptured
	}
	switch {
	case p.BookingID == 0:
		return nil, fmt.Errorf("%w: booking_id is required", ErrInvalid)
	case p.Amount <= 0:
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalid)
	case !models.ValidMethod(p.Method):
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrInvalid, p.Method)
	case !models.ValidTxnStatus(p.Status):
		return nil, fmt.Errorf("%w: unknown payment status %q", ErrInvalid, p.Status)
	}
	if _, err := s.store.GetBooking(ctx, p.BookingID); err != nil {
		return nil, err
	}

	created, err := s.store.CreatePayment(ctx, p)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("record payment: %w", database.ErrConflict)
	}
	return s.Reconcile(ctx, p.BookingID)
}

// HandlePaymentEvent records a provider payment for the booking owning the
// payment link. Redelivered events are absorbed by the unique transaction id.
func (s *Service) HandlePaymentEvent(ctx context.Context, ev *payments.Event) (*models.Billing, error) {
	entry := s.logger.WithField("event", ev.Event)

	switch ev.Event {
	case payments.EventLinkPaid, payments.EventPaymentCaptured:
	case payments.EventPaymentFailed:
		if p := ev.Payment(); p != nil {
			entry.WithFields(logrus.Fields{"payment_id": p.ID, "link_id": ev.LinkID()}).Warn("Payment failed")
		}
		return nil, ErrIgnored
	default:
		return nil, ErrIgnored
	}

	linkID := ev.LinkID()
	pay := ev.Payment()
	if linkID == "" || pay == nil || pay.ID == "" {
		entry.Debug("Event has no payment link payment")
		return nil, ErrIgnored
	}

	b, err := s.store.GetBookingByPaymentLink(ctx, linkID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			entry.WithField("link_id", linkID).Warn("No booking for payment link")
			return nil, ErrIgnored
		}
		return nil, err
	}

	paidAt := time.Now().UTC()
	if pay.CreatedAt > 0 {
		paidAt = time.Unix(pay.CreatedAt, 0).UTC()
	}
	txn := pay.ID
	created, err := s.store.CreatePayment(ctx, &models.Payment{
		BookingID:     b.ID,
		Amount:        pay.AmountMajor(),
		Method:        models.MethodLink,
		Status:        models.TxnCaptured,
		TransactionID: &txn,
		Notes:         "payment link " + linkID,
		PaidAt:        paidAt,
	})
	if err != nil {
		return nil, err
	}
	entry.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"payment_id": pay.ID,
		"duplicate":  !created,
	}).Info("Payment link payment recorded")

	return s.Reconcile(ctx, b.ID)
}
