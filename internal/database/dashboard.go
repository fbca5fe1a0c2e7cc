package database

import (
	"context"

	"travel-backoffice/internal/models"
)

// DashboardStats aggregates leads, bookings and collected revenue. A
// non-empty employeeID restricts every figure to that employee's leads and
// bookings.
func (s *service) DashboardStats(ctx context.Context, employeeID string) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{LeadsByStatus: map[string]int{}}

	var leadScope, bookingScope, paymentScope string
	var args []any
	if employeeID != "" {
		args = append(args, employeeID)
		leadScope = ` WHERE assigned_to = $1`
		bookingScope = ` WHERE agent_id = $1`
		paymentScope = ` AND b.agent_id = $1`
	}

	var counts []struct {
		Status string `db:"status"`
		Count  int    `db:"count"`
	}
	if err := s.db.SelectContext(ctx, &counts,
		`SELECT status, count(*) AS count FROM leads`+leadScope+` GROUP BY status`, args...); err != nil {
		return nil, wrap("count leads", err)
	}
	for _, c := range counts {
		stats.LeadsByStatus[c.Status] = c.Count
		stats.TotalLeads += c.Count
	}

	err := s.db.QueryRowxContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE status = 'pending') FROM bookings`+bookingScope, args...,
	).Scan(&stats.TotalBookings, &stats.PendingBookings)
	if err != nil {
		return nil, wrap("count bookings", err)
	}

	err = s.db.GetContext(ctx, &stats.RevenueCollected, `
		SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN bookings b ON b.id = p.booking_id
		WHERE p.status = 'captured'`+paymentScope, args...)
	if err != nil {
		return nil, wrap("sum revenue", err)
	}

	stats.RecentLeads = []models.Lead{}
	if err := s.db.SelectContext(ctx, &stats.RecentLeads,
		`SELECT `+leadColumns+` FROM leads`+leadScope+` ORDER BY created_at DESC LIMIT 5`, args...); err != nil {
		return nil, wrap("recent leads", err)
	}

	return stats, nil
}
