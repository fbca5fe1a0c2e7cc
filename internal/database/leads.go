package database

import (
	"context"

	"travel-backoffice/internal/models"
)

const leadColumns = `id, name, email, phone, destination, travel_date, nights, adults, children, assigned_to, status, source, notes, created_by, created_at, updated_at`

func (s *service) ListLeads(ctx context.Context, f models.LeadFilter) ([]models.Lead, error) {
	var w where
	w.oneOf("status", f.Status)
	w.eqString("assigned_to", f.AssignedTo)
	w.destination("destination", f.Destination)

	leads := []models.Lead{}
	query := `SELECT ` + leadColumns + ` FROM leads` + w.String() + ` ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &leads, query, w.args...); err != nil {
		return nil, wrap("list leads", err)
	}
	return leads, nil
}

func (s *service) GetLead(ctx context.Context, id int64) (*models.Lead, error) {
	var l models.Lead
	if err := s.db.GetContext(ctx, &l, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id); err != nil {
		return nil, wrap("get lead", err)
	}
	return &l, nil
}

func (s *service) CreateLead(ctx context.Context, l *models.Lead) error {
	if l.Status == "" {
		l.Status = models.DefaultLeadStatus
	}
	query := `
		INSERT INTO leads (name, email, phone, destination, travel_date, nights, adults, children, assigned_to, status, source, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		l.Name, l.Email, l.Phone, l.Destination, l.TravelDate, l.Nights, l.Adults, l.Children,
		l.AssignedTo, l.Status, l.Source, l.Notes, l.CreatedBy,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return wrap("create lead", err)
}

func (s *service) UpdateLead(ctx context.Context, l *models.Lead) error {
	if l.Status == "" {
		l.Status = models.DefaultLeadStatus
	}
	query := `
		UPDATE leads
		SET name = $2, email = $3, phone = $4, destination = $5, travel_date = $6, nights = $7,
		    adults = $8, children = $9, assigned_to = $10, status = $11, source = $12, notes = $13,
		    updated_at = now()
		WHERE id = $1
		RETURNING created_by, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		l.ID, l.Name, l.Email, l.Phone, l.Destination, l.TravelDate, l.Nights,
		l.Adults, l.Children, l.AssignedTo, l.Status, l.Source, l.Notes,
	).Scan(&l.CreatedBy, &l.CreatedAt, &l.UpdatedAt)
	return wrap("update lead", err)
}

func (s *service) DeleteLead(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	return affected("delete lead", res, err)
}
