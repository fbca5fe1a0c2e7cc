package database

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"travel-backoffice/internal/models"
)

const employeeColumns = `id, name, email, phone, destination, role, status, password_hash, first_login, created_at, updated_at`

func (s *service) ListEmployees(ctx context.Context, f models.EmployeeFilter) ([]models.Employee, error) {
	var w where
	w.oneOf("status", f.Status)
	w.oneOf("role", f.Role)
	w.destination("destination", f.Destination)

	employees := []models.Employee{}
	query := `SELECT ` + employeeColumns + ` FROM employees` + w.String() + ` ORDER BY created_at DESC`
	if err := s.db.SelectContext(ctx, &employees, query, w.args...); err != nil {
		return nil, wrap("list employees", err)
	}
	return employees, nil
}

func (s *service) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var e models.Employee
	err := s.db.GetContext(ctx, &e, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id)
	if err != nil {
		return nil, wrap("get employee", err)
	}
	return &e, nil
}

func (s *service) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	var e models.Employee
	err := s.db.GetContext(ctx, &e, `SELECT `+employeeColumns+` FROM employees WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
	if err != nil {
		return nil, wrap("get employee by email", err)
	}
	return &e, nil
}

func (s *service) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))

	query := `
		INSERT INTO employees (id, name, email, phone, destination, role, status, password_hash, first_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		e.ID, e.Name, e.Email, e.Phone, e.Destination, e.Role, e.Status, e.PasswordHash, e.FirstLogin,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	return wrap("create employee", err)
}

// UpdateEmployee rewrites the profile fields. Password and first-login
// state change only through UpdateEmployeePassword.
func (s *service) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	if _, err := uuid.Parse(e.ID); err != nil {
		return ErrNotFound
	}
	e.Email = strings.ToLower(strings.TrimSpace(e.Email))

	query := `
		UPDATE employees
		SET name = $2, email = $3, phone = $4, destination = $5, role = $6, status = $7, updated_at = now()
		WHERE id = $1
		RETURNING first_login, created_at, updated_at
	`
	err := s.db.QueryRowxContext(ctx, query,
		e.ID, e.Name, e.Email, e.Phone, e.Destination, e.Role, e.Status,
	).Scan(&e.FirstLogin, &e.CreatedAt, &e.UpdatedAt)
	return wrap("update employee", err)
}

func (s *service) UpdateEmployeePassword(ctx context.Context, id, hash string, firstLogin bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE employees SET password_hash = $2, first_login = $3, updated_at = now() WHERE id = $1`,
		id, hash, firstLogin)
	return affected("update employee password", res, err)
}

func (s *service) DeleteEmployee(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = $1`, id)
	return affected("delete employee", res, err)
}

func (s *service) CountEmployees(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT count(*) FROM employees`); err != nil {
		return 0, wrap("count employees", err)
	}
	return n, nil
}
