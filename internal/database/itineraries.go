package database

import (
	"context"

	"travel-backoffice/internal/models"
)

const itineraryColumns = `id, name, destination, theme, plan_type, duration_days, price_per_adult, price_per_child,
	gst_percent, total_price, hotels, vehicles, days, inclusions, exclusions, lead_id, status, pdf_url,
	created_by, created_at, updated_at`

func (s *service) ListItineraries(ctx context.Context, f models.ItineraryFilter) ([]models.Itinerary, error) {
	var w where
	w.destination("destination", f.Destination)
	w.eqString("plan_type", f.PlanType)
	w.oneOf("status", f.Status)
	if f.LeadID != nil {
		w.eq("lead_id", *f.LeadID)
	}

	items := []models.Itinerary{}
	query := `SELECT ` + itineraryColumns + ` FROM itineraries` + w.String() + ` ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &items, query, w.args...); err != nil {
		return nil, wrap("list itineraries", err)
	}
	return items, nil
}

func (s *service) GetItinerary(ctx context.Context, id int64) (*models.Itinerary, error) {
	var it models.Itinerary
	if err := s.db.GetContext(ctx, &it, `SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1`, id); err != nil {
		return nil, wrap("get itinerary", err)
	}
	return &it, nil
}

func (s *service) CreateItinerary(ctx context.Context, it *models.Itinerary) error {
	it.Normalize()
	query := `
		INSERT INTO itineraries (name, destination, theme, plan_type, duration_days, price_per_adult, price_per_child,
			gst_percent, total_price, hotels, vehicles, days, inclusions, exclusions, lead_id, status, pdf_url, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		it.Name, it.Destination, it.Theme, it.PlanType, it.DurationDays, it.PricePerAdult, it.PricePerChild,
		it.GSTPercent, it.TotalPrice, it.Hotels, it.Vehicles, it.Days, it.Inclusions, it.Exclusions,
		it.LeadID, it.Status, it.PDFURL, it.CreatedBy,
	).Scan(&it.ID, &it.CreatedAt, &it.UpdatedAt)
	return wrap("create itinerary", err)
}

func (s *service) UpdateItinerary(ctx context.Context, it *models.Itinerary) error {
	it.Normalize()
	query := `
		UPDATE itineraries
		SET name = $2, destination = $3, theme = $4, plan_type = $5, duration_days = $6, price_per_adult = $7,
		    price_per_child = $8, gst_percent = $9, total_price = $10, hotels = $11, vehicles = $12, days = $13,
		    inclusions = $14, exclusions = $15, lead_id = $16, status = $17, updated_at = now()
		WHERE id = $1
		RETURNING pdf_url, created_by, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		it.ID, it.Name, it.Destination, it.Theme, it.PlanType, it.DurationDays, it.PricePerAdult,
		it.PricePerChild, it.GSTPercent, it.TotalPrice, it.Hotels, it.Vehicles, it.Days,
		it.Inclusions, it.Exclusions, it.LeadID, it.Status,
	).Scan(&it.PDFURL, &it.CreatedBy, &it.CreatedAt, &it.UpdatedAt)
	return wrap("update itinerary", err)
}

func (s *service) DeleteItinerary(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM itineraries WHERE id = $1`, id)
	return affected("delete itinerary", res, err)
}

func (s *service) SetItineraryPDF(ctx context.Context, id int64, url string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE itineraries SET pdf_url = $2, updated_at = now() WHERE id = $1`, id, url)
	return affected("set itinerary pdf", res, err)
}

func (s *service) AssignItinerary(ctx context.Context, id int64, leadID *int64, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE itineraries SET lead_id = COALESCE($2, lead_id), status = $3, updated_at = now() WHERE id = $1`,
		id, leadID, status)
	return affected("assign itinerary", res, err)
}
