package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/database"
	"travel-backoffice/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInactive           = errors.New("employee account is inactive")
	ErrSessionEnded       = errors.New("session has ended")
	ErrInvalidEmployee    = errors.New("name, valid email and role are required")
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidEmail validates email format
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Store is the persistence the auth service needs.
type Store interface {
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployeePassword(ctx context.Context, id, hash string, firstLogin bool) error
	CountEmployees(ctx context.Context) (int, error)
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	EndSession(ctx context.Context, id string, at time.Time) error
}

// ClientInfo is recorded on the session created at login.
type ClientInfo struct {
	UserAgent string
	IP        string
}

type LoginResult struct {
	Employee   *models.Employee `json:"user"`
	Token      string           `json:"token"`
	ExpiresAt  time.Time        `json:"expires_at"`
	FirstLogin bool             `json:"first_login"`
}

// Service implements login(email, password) -> {user, token} on top of
// employee rows and session rows.
type Service struct {
	store  Store
	tokens *TokenManager
	logger *logrus.Logger
	now    func() time.Time
}

func NewService(store Store, tokens *TokenManager, logger *logrus.Logger) *Service {
	return &Service{store: store, tokens: tokens, logger: logger, now: time.Now}
}

func (s *Service) Login(ctx context.Context, email, password string, info ClientInfo) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	entry := s.logger.WithFields(logrus.Fields{"email": email, "ip": info.IP, "action": "login"})

	emp, err := s.store.GetEmployeeByEmail(ctx, email)
	if errors.Is(err, database.ErrNotFound) {
		CheckPassword(dummyHash(), password)
		entry.Warn("Login failed: unknown email")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(emp.PasswordHash, password) {
		entry.Warn("Login failed: wrong password")
		return nil, ErrInvalidCredentials
	}
	if emp.Status != models.StatusActive {
		entry.Warn("Login refused: inactive employee")
		return nil, ErrInactive
	}

	sess := &models.Session{
		ID:         uuid.NewString(),
		EmployeeID: emp.ID,
		StartedAt:  s.now().UTC(),
		UserAgent:  info.UserAgent,
		IP:         info.IP,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, expires, err := s.tokens.Issue(emp.ID, emp.Email, emp.Role, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	entry.WithField("employee_id", emp.ID).Info("Login succeeded")
	return &LoginResult{Employee: emp, Token: token, ExpiresAt: expires, FirstLogin: emp.FirstLogin}, nil
}

// Signup creates an employee who must change the password on first login.
func (s *Service) Signup(ctx context.Context, emp *models.Employee, password string) error {
	emp.Email = strings.ToLower(strings.TrimSpace(emp.Email))
	emp.Name = strings.TrimSpace(emp.Name)
	if emp.Role == "" {
		emp.Role = models.RoleAgent
	}
	if emp.Status == "" {
		emp.Status = models.StatusActive
	}
	if emp.Name == "" || !ValidEmail(emp.Email) || !models.ValidRole(emp.Role) || !models.ValidStatus(emp.Status) {
		return ErrInvalidEmployee
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	emp.PasswordHash = hash
	emp.FirstLogin = true

	if err := s.store.CreateEmployee(ctx, emp); err != nil {
		return err
	}
	s.logger.WithFields(logrus.Fields{"employee_id": emp.ID, "role": emp.Role}).Info("Employee signed up")
	return nil
}

// Logout ends the session. Ending an already ended session is not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	err := s.store.EndSession(ctx, sessionID, s.now().UTC())
	if errors.Is(err, database.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) ChangePassword(ctx context.Context, employeeID, current, next string) error {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	if !CheckPassword(emp.PasswordHash, current) {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.store.UpdateEmployeePassword(ctx, employeeID, hash, false)
}

// Authenticate validates a bearer token and requires its session to be open
// and its employee to be active. The returned claims carry the stored role,
// not the one signed into the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	sess, err := s.store.GetSession(ctx, claims.SessionID())
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSessionEnded
	}
	if err != nil {
		return nil, err
	}
	if sess.Ended() || sess.EmployeeID != claims.EmployeeID {
		return nil, ErrSessionEnded
	}

	emp, err := s.store.GetEmployee(ctx, claims.EmployeeID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrSessionEnded
	}
	if err != nil {
		return nil, err
	}
	if emp.Status != models.StatusActive {
		return nil, ErrInactive
	}
	claims.Role = emp.Role
	return claims, nil
}

// EnsureAdmin seeds the first administrator when no employee exists yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	if email == "" || password == "" {
		return false, nil
	}
	n, err := s.store.CountEmployees(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	admin := &models.Employee{Name: "Administrator", Email: email, Role: models.RoleAdmin, Status: models.StatusActive}
	if err := s.Signup(ctx, admin, password); err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return true, nil
}

// ParseToken validates the token signature and expiry only.
func (s *Service) ParseToken(token string) (*Claims, error) {
	return s.tokens.Parse(token)
}
