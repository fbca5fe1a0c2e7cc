package database

import (
	"context"

	"travel-backoffice/internal/models"
)

const bookingColumns = `id, itinerary_id, lead_id, customer_name, customer_email, customer_phone, amount, currency,
	status, payment_status, payment_link_id, payment_link_url, email_sent, agent_id, created_at, updated_at`

func (s *service) ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	var w where
	w.oneOf("status", f.Status)
	w.oneOf("payment_status", f.PaymentStatus)
	w.eqString("agent_id", f.AgentID)

	bookings := []models.Booking{}
	query := `SELECT ` + bookingColumns + ` FROM bookings` + w.String() + ` ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &bookings, query, w.args...); err != nil {
		return nil, wrap("list bookings", err)
	}
	return bookings, nil
}

func (s *service) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id); err != nil {
		return nil, wrap("get booking", err)
	}
	return &b, nil
}

func (s *service) GetBookingByPaymentLink(ctx context.Context, linkID string) (*models.Booking, error) {
	var b models.Booking
	err := s.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE payment_link_id = $1 AND payment_link_id <> ''`, linkID)
	if err != nil {
		return nil, wrap("get booking by payment link", err)
	}
	return &b, nil
}

func (s *service) CreateBooking(ctx context.Context, b *models.Booking) error {
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentUnpaid
	}
	query := `
		INSERT INTO bookings (itinerary_id, lead_id, customer_name, customer_email, customer_phone, amount, currency,
			status, payment_status, payment_link_id, payment_link_url, email_sent, agent_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		b.ItineraryID, b.LeadID, b.CustomerName, b.CustomerEmail, b.CustomerPhone, b.Amount, b.Currency,
		b.Status, b.PaymentStatus, b.PaymentLinkID, b.PaymentLinkURL, b.EmailSent, b.AgentID,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return wrap("create booking", err)
}

// UpdateBooking rewrites the editable fields. Payment link details are
// owned by the checkout flow and kept as stored.
func (s *service) UpdateBooking(ctx context.Context, b *models.Booking) error {
	query := `
		UPDATE bookings
		SET itinerary_id = $2, lead_id = $3, customer_name = $4, customer_email = $5, customer_phone = $6,
		    amount = $7, currency = $8, status = $9, payment_status = $10, agent_id = $11, updated_at = now()
		WHERE id = $1
		RETURNING payment_link_id, payment_link_url, email_sent, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		b.ID, b.ItineraryID, b.LeadID, b.CustomerName, b.CustomerEmail, b.CustomerPhone,
		b.Amount, b.Currency, b.Status, b.PaymentStatus, b.AgentID,
	).Scan(&b.PaymentLinkID, &b.PaymentLinkURL, &b.EmailSent, &b.CreatedAt, &b.UpdatedAt)
	return wrap("update booking", err)
}

func (s *service) DeleteBooking(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	return affected("delete booking", res, err)
}

func (s *service) SetBookingPaymentStatus(ctx context.Context, id int64, paymentStatus, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET payment_status = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, paymentStatus, status)
	return affected("set booking payment status", res, err)
}

func (s *service) MarkBookingEmailSent(ctx context.Context, id int64, sent bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET email_sent = $2, updated_at = now() WHERE id = $1`, id, sent)
	return affected("mark booking email", res, err)
}
