package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	// PostgreSQL driver
	_ "github.com/jackc/pgx/v5/stdlib"

	"travel-backoffice/internal/config"
	"travel-backoffice/internal/models"
)

// Service represents a service that interacts with a database.
type Service interface {
	// Health returns a map of health status information.
	// The keys and values in the map are service-specific.
	Health() map[string]string

	// Close terminates the database connection.
	// It returns an error if the connection cannot be closed.
	Close() error

	EmployeeStore
	SessionStore
	LeadStore
	ItineraryStore
	BookingStore
	PaymentStore
	CatalogStore

	DashboardStats(ctx context.Context, employeeID string) (*models.DashboardStats, error)
}

type EmployeeStore interface {
	ListEmployees(ctx context.Context, f models.EmployeeFilter) ([]models.Employee, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error)
	CreateEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployee(ctx context.Context, e *models.Employee) error
	UpdateEmployeePassword(ctx context.Context, id, hash string, firstLogin bool) error
	DeleteEmployee(ctx context.Context, id string) error
	CountEmployees(ctx context.Context) (int, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	TouchSession(ctx context.Context, id string, at time.Time) error
	EndSession(ctx context.Context, id string, at time.Time) error
	EndEmployeeSessions(ctx context.Context, employeeID string, at time.Time) (int64, error)
	ListActiveSessions(ctx context.Context, since time.Time) ([]models.ActiveEmployee, error)
	ExpireIdleSessions(ctx context.Context, before time.Time) (int64, error)
}

type LeadStore interface {
	ListLeads(ctx context.Context, f models.LeadFilter) ([]models.Lead, error)
	GetLead(ctx context.Context, id int64) (*models.Lead, error)
	CreateLead(ctx context.Context, l *models.Lead) error
	UpdateLead(ctx context.Context, l *models.Lead) error
	DeleteLead(ctx context.Context, id int64) error
}

type ItineraryStore interface {
	ListItineraries(ctx context.Context, f models.ItineraryFilter) ([]models.Itinerary, error)
	GetItinerary(ctx context.Context, id int64) (*models.Itinerary, error)
	CreateItinerary(ctx context.Context, it *models.Itinerary) error
	UpdateItinerary(ctx context.Context, it *models.Itinerary) error
	DeleteItinerary(ctx context.Context, id int64) error
	SetItineraryPDF(ctx context.Context, id int64, url string) error
	AssignItinerary(ctx context.Context, id int64, leadID *int64, status string) error
}

type BookingStore interface {
	ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByPaymentLink(ctx context.Context, linkID string) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, b *models.Booking) error
	DeleteBooking(ctx context.Context, id int64) error
	SetBookingPaymentStatus(ctx context.Context, id int64, paymentStatus, status string) error
	MarkBookingEmailSent(ctx context.Context, id int64, sent bool) error
}

type PaymentStore interface {
	ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, error)
	GetPayment(ctx context.Context, id int64) (*models.Payment, error)
	// CreatePayment reports created=false when a payment with the same
	// transaction id already exists.
	CreatePayment(ctx context.Context, p *models.Payment) (bool, error)
	UpdatePayment(ctx context.Context, p *models.Payment) error
	DeletePayment(ctx context.Context, id int64) error
}

type CatalogStore interface {
	ListRecords(ctx context.Context, t *Table, filters map[string]string) ([]models.Record, error)
	GetRecord(ctx context.Context, t *Table, id int64) (models.Record, error)
	CreateRecord(ctx context.Context, t *Table, rec models.Record, createdBy string) (models.Record, error)
	UpdateRecord(ctx context.Context, t *Table, id int64, rec models.Record) (models.Record, error)
	DeleteRecord(ctx context.Context, t *Table, id int64) error
}

type service struct {
	db     *sqlx.DB
	name   string
	logger *logrus.Logger
}

// New opens the connection pool. The caller owns the returned Service and
// must Close it.
func New(cfg *config.DatabaseConfig, logger *logrus.Logger) (Service, error) {
	db, err := sqlx.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := Migrate(db.DB); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Database migrations applied")
	}

	return &service{db: db, name: cfg.Database, logger: logger}, nil
}

// Health checks the health of the database connection by pinging the database.
// It returns a map with keys indicating various health statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	err := s.db.PingContext(ctx)
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		s.logger.WithError(err).Error("Database health check failed")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	if dbStats.MaxIdleClosed > int64(dbStats.OpenConnections)/2 {
		stats["message"] = "Many idle connections are being closed, consider revising the connection pool settings."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	s.logger.WithField("database", s.name).Info("Disconnected from database")
	return s.db.Close()
}
