package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"travel-backoffice/internal/models"
)

const sessionColumns = `id, employee_id, started_at, last_seen_at, ended_at, user_agent, ip`

func (s *service) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sess.StartedAt.IsZero() {
		sess.StartedAt = now
	}
	if sess.LastSeenAt.IsZero() {
		sess.LastSeenAt = sess.StartedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employee_sessions (id, employee_id, started_at, last_seen_at, user_agent, ip)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sess.ID, sess.EmployeeID, sess.StartedAt, sess.LastSeenAt, sess.UserAgent, sess.IP)
	return wrap("create session", err)
}

func (s *service) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var sess models.Session
	err := s.db.GetContext(ctx, &sess, `SELECT `+sessionColumns+` FROM employee_sessions WHERE id = $1`, id)
	if err != nil {
		return nil, wrap("get session", err)
	}
	return &sess, nil
}

// TouchSession records a heartbeat. Ended sessions are not revived.
func (s *service) TouchSession(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE employee_sessions SET last_seen_at = $2 WHERE id = $1 AND ended_at IS NULL`, id, at)
	return affected("touch session", res, err)
}

func (s *service) EndSession(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE employee_sessions SET ended_at = $2 WHERE id = $1 AND ended_at IS NULL`, id, at)
	return affected("end session", res, err)
}

// EndEmployeeSessions closes every open session of the employee.
func (s *service) EndEmployeeSessions(ctx context.Context, employeeID string, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE employee_sessions SET ended_at = $2 WHERE employee_id = $1 AND ended_at IS NULL`, employeeID, at)
	if err != nil {
		return 0, wrap("end employee sessions", err)
	}
	return res.RowsAffected()
}

func (s *service) ListActiveSessions(ctx context.Context, since time.Time) ([]models.ActiveEmployee, error) {
	query := `
		SELECT s.id AS session_id, s.employee_id, e.name, e.email, e.role, e.destination, s.started_at, s.last_seen_at
		FROM employee_sessions s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.ended_at IS NULL AND s.last_seen_at >= $1
		ORDER BY s.last_seen_at DESC
	`
	active := []models.ActiveEmployee{}
	if err := s.db.SelectContext(ctx, &active, query, since); err != nil {
		return nil, wrap("list active sessions", err)
	}
	return active, nil
}

// ExpireIdleSessions closes open sessions last seen before the cutoff. The
// end time is the last heartbeat, not the sweep time.
func (s *service) ExpireIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE employee_sessions SET ended_at = last_seen_at WHERE ended_at IS NULL AND last_seen_at < $1`, before)
	if err != nil {
		return 0, wrap("expire idle sessions", err)
	}
	return res.RowsAffected()
}
