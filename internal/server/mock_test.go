package server

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"travel-backoffice/internal/database"
	"travel-backoffice/internal/mailer"
	"travel-backoffice/internal/models"
	"travel-backoffice/internal/payments"
)

// MockDatabase is a mock implementation of the database.Service interface
type MockDatabase struct {
	mock.Mock
}

func (m *MockDatabase) Health() map[string]string {
	args := m.Called()
	return args.Get(0).(map[string]string)
}

func (m *MockDatabase) Close() error {
	return nil
}

func (m *MockDatabase) ListEmployees(ctx context.Context, f models.EmployeeFilter) ([]models.Employee, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Employee), args.Error(1)
}

func (m *MockDatabase) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	args := m.Called(id)
	e, _ := args.Get(0).(*models.Employee)
	return e, args.Error(1)
}

func (m *MockDatabase) GetEmployeeByEmail(ctx context.Context, email string) (*models.Employee, error) {
	args := m.Called(email)
	e, _ := args.Get(0).(*models.Employee)
	return e, args.Error(1)
}

func (m *MockDatabase) CreateEmployee(ctx context.Context, e *models.Employee) error {
	return m.Called(e).Error(0)
}

func (m *MockDatabase) UpdateEmployee(ctx context.Context, e *models.Employee) error {
	return m.Called(e).Error(0)
}

func (m *MockDatabase) UpdateEmployeePassword(ctx context.Context, id, hash string, firstLogin bool) error {
	return m.Called(id, hash, firstLogin).Error(0)
}

func (m *MockDatabase) DeleteEmployee(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func (m *MockDatabase) CountEmployees(ctx context.Context) (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockDatabase) CreateSession(ctx context.Context, s *models.Session) error {
	return m.Called(s).Error(0)
}

func (m *MockDatabase) GetSession(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(id)
	s, _ := args.Get(0).(*models.Session)
	return s, args.Error(1)
}

func (m *MockDatabase) TouchSession(ctx context.Context, id string, at time.Time) error {
	return m.Called(id, at).Error(0)
}

func (m *MockDatabase) EndSession(ctx context.Context, id string, at time.Time) error {
	return m.Called(id, at).Error(0)
}

func (m *MockDatabase) EndEmployeeSessions(ctx context.Context, employeeID string, at time.Time) (int64, error) {
	args := m.Called(employeeID, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDatabase) ListActiveSessions(ctx context.Context, since time.Time) ([]models.ActiveEmployee, error) {
	args := m.Called(since)
	return args.Get(0).([]models.ActiveEmployee), args.Error(1)
}

func (m *MockDatabase) ExpireIdleSessions(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDatabase) ListLeads(ctx context.Context, f models.LeadFilter) ([]models.Lead, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Lead), args.Error(1)
}

func (m *MockDatabase) GetLead(ctx context.Context, id int64) (*models.Lead, error) {
	args := m.Called(id)
	l, _ := args.Get(0).(*models.Lead)
	return l, args.Error(1)
}

func (m *MockDatabase) CreateLead(ctx context.Context, l *models.Lead) error {
	return m.Called(l).Error(0)
}

func (m *MockDatabase) UpdateLead(ctx context.Context, l *models.Lead) error {
	return m.Called(l).Error(0)
}

func (m *MockDatabase) DeleteLead(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockDatabase) ListItineraries(ctx context.Context, f models.ItineraryFilter) ([]models.Itinerary, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Itinerary), args.Error(1)
}

func (m *MockDatabase) GetItinerary(ctx context.Context, id int64) (*models.Itinerary, error) {
	args := m.Called(id)
	it, _ := args.Get(0).(*models.Itinerary)
	return it, args.Error(1)
}

func (m *MockDatabase) CreateItinerary(ctx context.Context, it *models.Itinerary) error {
	return m.Called(it).Error(0)
}

func (m *MockDatabase) UpdateItinerary(ctx context.Context, it *models.Itinerary) error {
	return m.Called(it).Error(0)
}

func (m *MockDatabase) DeleteItinerary(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockDatabase) SetItineraryPDF(ctx context.Context, id int64, url string) error {
	return m.Called(id, url).Error(0)
}

func (m *MockDatabase) AssignItinerary(ctx context.Context, id int64, leadID *int64, status string) error {
	return m.Called(id, leadID, status).Error(0)
}

func (m *MockDatabase) ListBookings(ctx context.Context, f models.BookingFilter) ([]models.Booking, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockDatabase) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(id)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockDatabase) GetBookingByPaymentLink(ctx context.Context, linkID string) (*models.Booking, error) {
	args := m.Called(linkID)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockDatabase) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(b).Error(0)
}

func (m *MockDatabase) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(b).Error(0)
}

func (m *MockDatabase) DeleteBooking(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockDatabase) SetBookingPaymentStatus(ctx context.Context, id int64, paymentStatus, status string) error {
	return m.Called(id, paymentStatus, status).Error(0)
}

func (m *MockDatabase) MarkBookingEmailSent(ctx context.Context, id int64, sent bool) error {
	return m.Called(id, sent).Error(0)
}

func (m *MockDatabase) ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, error) {
	args := m.Called(f)
	return args.Get(0).([]models.Payment), args.Error(1)
}

func (m *MockDatabase) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	args := m.Called(id)
	p, _ := args.Get(0).(*models.Payment)
	return p, args.Error(1)
}

func (m *MockDatabase) CreatePayment(ctx context.Context, p *models.Payment) (bool, error) {
	args := m.Called(p)
	return args.Bool(0), args.Error(1)
}

func (m *MockDatabase) UpdatePayment(ctx context.Context, p *models.Payment) error {
	return m.Called(p).Error(0)
}

func (m *MockDatabase) DeletePayment(ctx context.Context, id int64) error {
	return m.Called(id).Error(0)
}

func (m *MockDatabase) ListRecords(ctx context.Context, t *database.Table, filters map[string]string) ([]models.Record, error) {
	args := m.Called(t.Name, filters)
	return args.Get(0).([]models.Record), args.Error(1)
}

func (m *MockDatabase) GetRecord(ctx context.Context, t *database.Table, id int64) (models.Record, error) {
	args := m.Called(t.Name, id)
	rec, _ := args.Get(0).(models.Record)
	return rec, args.Error(1)
}

func (m *MockDatabase) CreateRecord(ctx context.Context, t *database.Table, rec models.Record, createdBy string) (models.Record, error) {
	args := m.Called(t.Name, rec, createdBy)
	out, _ := args.Get(0).(models.Record)
	return out, args.Error(1)
}

func (m *MockDatabase) UpdateRecord(ctx context.Context, t *database.Table, id int64, rec models.Record) (models.Record, error) {
	args := m.Called(t.Name, id, rec)
	out, _ := args.Get(0).(models.Record)
	return out, args.Error(1)
}

func (m *MockDatabase) DeleteRecord(ctx context.Context, t *database.Table, id int64) error {
	return m.Called(t.Name, id).Error(0)
}

func (m *MockDatabase) DashboardStats(ctx context.Context, employeeID string) (*models.DashboardStats, error) {
	args := m.Called(employeeID)
	s, _ := args.Get(0).(*models.DashboardStats)
	return s, args.Error(1)
}

// fakeLinks and fakeMail stand in for the payment and mail providers.
type fakeLinks struct {
	created   []string
	cancelled []string
	err       error
}

func (f *fakeLinks) CreateLink(ctx context.Context, req payments.LinkRequest) (*payments.Link, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req.ReferenceID)
	return &payments.Link{ID: "plink_1", ShortURL: "https://rzp.io/i/abc", Status: "created"}, nil
}

func (f *fakeLinks) CancelLink(ctx context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}

type fakeMail struct {
	sent []mailer.Message
	err  error
}

func (f *fakeMail) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg_1", nil
}

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	f.keys = append(f.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	return nil
}

type fakePDF struct{}

func (fakePDF) RenderPDF(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4"), nil
}
