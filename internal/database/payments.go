package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"travel-backoffice/internal/models"
)

const paymentColumns = `id, booking_id, amount, method, status, transaction_id, notes, paid_at, created_by, created_at`

func (s *service) ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, error) {
	var w where
	if f.BookingID != nil {
		w.eq("booking_id", *f.BookingID)
	}
	w.oneOf("status", f.Status)
	if f.AgentID != "" {
		w.add("booking_id IN (SELECT id FROM bookings WHERE agent_id = $%d)", f.AgentID)
	}

	payments := []models.Payment{}
	query := `SELECT ` + paymentColumns + ` FROM payments` + w.String() + ` ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &payments, query, w.args...); err != nil {
		return nil, wrap("list payments", err)
	}
	return payments, nil
}

func (s *service) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		return nil, wrap("get payment", err)
	}
	return &p, nil
}

func (s *service) CreatePayment(ctx context.Context, p *models.Payment) (bool, error) {
	if p.Status == "" {
		p.Status = models.TxnCaptured
	}
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}
	query := `
		INSERT INTO payments (booking_id, amount, method, status, transaction_id, notes, paid_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING id, created_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		p.BookingID, p.Amount, p.Method, p.Status, p.TransactionID, p.Notes, p.PaidAt, p.CreatedBy,
	).Scan(&p.ID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrap("create payment", err)
	}
	return true, nil
}

func (s *service) UpdatePayment(ctx context.Context, p *models.Payment) error {
	query := `
		UPDATE payments
		SET amount = $2, method = $3, status = $4, transaction_id = $5, notes = $6, paid_at = $7
		WHERE id = $1
		RETURNING booking_id, created_by, created_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		p.ID, p.Amount, p.Method, p.Status, p.TransactionID, p.Notes, p.PaidAt,
	).Scan(&p.BookingID, &p.CreatedBy, &p.CreatedAt)
	return wrap("update payment", err)
}

func (s *service) DeletePayment(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return affected("delete payment", res, err)
}
