package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"travel-backoffice/internal/auth"
	"travel-backoffice/internal/checkout"
	"travel-backoffice/internal/config"
	"travel-backoffice/internal/database"
	"travel-backoffice/internal/logger"
	"travel-backoffice/internal/models"
	"travel-backoffice/internal/payments"
)

const (
	testSecret    = "0123456789abcdef0123456789abcdef"
	webhookSecret = "whsec_test"
	adminID       = "6f1c1f52-9a3b-4a38-9d4c-6c2f0e1a7b10"
	agentID       = "5b0f9c8e-1d2a-4c1b-9f55-0c1f3e2a9d01"
	otherAgentID  = "0d7e2c71-3f0b-4d5e-8a61-2b9c4e7f1a22"
)

type testEnv struct {
	db      *MockDatabase
	links   *fakeLinks
	mail    *fakeMail
	uploads *fakeUploader
	tokens  *auth.TokenManager
	handler http.Handler
}

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, AllowOrigin: "*"},
		Security: config.SecurityConfig{JWTSecret: testSecret, TokenTTL: time.Hour, TokenIssuer: "travel-backoffice"},
		Payments: config.PaymentsConfig{Currency: "INR", WebhookSecret: webhookSecret},
		Mail:     config.MailConfig{Agency: "Travel Desk"},
		Storage:  config.StorageConfig{MaxUploadMB: 1},
		Sessions: config.SessionsConfig{ActiveWindow: 2 * time.Minute, IdleTimeout: 10 * time.Minute},
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := testConfig()
	log := logger.Discard()
	env := &testEnv{
		db:      new(MockDatabase),
		links:   &fakeLinks{},
		mail:    &fakeMail{},
		uploads: &fakeUploader{},
		tokens:  auth.NewTokenManager(testSecret, time.Hour, "travel-backoffice"),
	}
	s := &Server{
		cfg:      cfg,
		db:       env.db,
		auth:     auth.NewService(env.db, env.tokens, log),
		checkout: checkout.NewService(env.db, env.links, env.mail, cfg.Mail.Agency, cfg.Payments.Currency, log),
		storage:  env.uploads,
		pdf:      fakePDF{},
		limiter:  newRateLimiter(100, 100),
		logger:   log,
	}
	env.handler = s.RegisterRoutes()
	return env
}

// login issues a token on an open session of an active employee.
func (e *testEnv) login(t *testing.T, employeeID, role string) string {
	t.Helper()
	sess := uuid.NewString()
	token, _, err := e.tokens.Issue(employeeID, "someone@example.com", role, sess)
	require.NoError(t, err)
	e.db.On("GetSession", sess).Return(&models.Session{ID: sess, EmployeeID: employeeID}, nil)
	e.db.On("GetEmployee", employeeID).Return(&models.Employee{
		ID: employeeID, Name: "Asha", Email: "someone@example.com", Role: role, Status: models.StatusActive,
	}, nil)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestHealthHandler(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("Health").Return(map[string]string{"status": "up", "message": "It's healthy"}).Once()

	rr := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var stats map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, "up", stats["status"])

	env.db.On("Health").Return(map[string]string{"status": "down"})
	rr = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t)
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)

	emp := &models.Employee{ID: agentID, Name: "Asha", Email: "asha@example.com", Role: models.RoleAgent, Status: models.StatusActive, PasswordHash: hash, FirstLogin: true}
	env.db.On("GetEmployeeByEmail", "asha@example.com").Return(emp, nil)
	env.db.On("CreateSession", mock.AnythingOfType("*models.Session")).Return(nil)

	rr := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "asha@example.com", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var res struct {
		User       map[string]interface{} `json:"user"`
		Token      string                 `json:"token"`
		FirstLogin bool                   `json:"first_login"`
	}
	body := decode(t, rr, &res)
	assert.True(t, body.Success)
	assert.NotEmpty(t, res.Token)
	assert.True(t, res.FirstLogin)
	assert.Equal(t, "Asha", res.User["name"])
	assert.NotContains(t, rr.Body.String(), hash)

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{Email: "asha@example.com", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, decode(t, rr, nil).Success)

	rr = env.do(t, http.MethodPost, "/api/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/leads", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/leads", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	ended := time.Now()
	token, _, err := env.tokens.Issue(agentID, "a@example.com", models.RoleAgent, "sess-ended")
	require.NoError(t, err)
	env.db.On("GetSession", "sess-ended").Return(&models.Session{ID: "sess-ended", EmployeeID: agentID, EndedAt: &ended}, nil)
	rr = env.do(t, http.MethodGet, "/api/leads", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env.db.AssertNotCalled(t, "ListLeads", mock.Anything)
}

func TestEmployeesAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/employees", env.login(t, agentID, models.RoleAgent), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	env.db.On("ListEmployees", models.EmployeeFilter{Role: "agent", Destination: "North Goa"}).
		Return([]models.Employee{{ID: agentID, Name: "Asha"}}, nil)
	rr = env.do(t, http.MethodGet, "/api/employees?role=agent&destination=North+Goa", env.login(t, adminID, models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var list []models.Employee
	decode(t, rr, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].Name)
}

func TestStoredRoleAndStatusWin(t *testing.T) {
	env := newTestEnv(t)
	token, _, err := env.tokens.Issue(adminID, "admin@example.com", models.RoleAdmin, "sess-admin")
	require.NoError(t, err)
	env.db.On("GetSession", "sess-admin").Return(&models.Session{ID: "sess-admin", EmployeeID: adminID}, nil)

	// demoted to agent after the token was issued
	env.db.On("GetEmployee", adminID).Return(&models.Employee{ID: adminID, Role: models.RoleAgent, Status: models.StatusActive}, nil).Once()
	rr := env.do(t, http.MethodGet, "/api/employees", token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	env.db.On("GetEmployee", adminID).Return(&models.Employee{ID: adminID, Role: models.RoleAdmin, Status: models.StatusInactive}, nil)
	rr = env.do(t, http.MethodGet, "/api/leads", token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	env.db.AssertNotCalled(t, "ListEmployees", mock.Anything)
	env.db.AssertNotCalled(t, "ListLeads", mock.Anything)
}

func TestDeactivateEmployeeEndsSessions(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("UpdateEmployee", mock.MatchedBy(func(e *models.Employee) bool {
		return e.ID == agentID && e.Status == models.StatusInactive
	})).Return(nil)
	env.db.On("EndEmployeeSessions", agentID, mock.AnythingOfType("time.Time")).Return(int64(2), nil)

	rr := env.do(t, http.MethodPut, "/api/employees/"+agentID, env.login(t, adminID, models.RoleAdmin), map[string]string{
		"name": "Asha", "email": "asha@example.com", "role": "agent", "status": "inactive",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env.db.AssertCalled(t, "EndEmployeeSessions", agentID, mock.AnythingOfType("time.Time"))
}

func TestSignupHandler(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, adminID, models.RoleAdmin)
	env.db.On("CreateEmployee", mock.MatchedBy(func(e *models.Employee) bool {
		return e.Email == "ravi@example.com" && e.FirstLogin && auth.CheckPassword(e.PasswordHash, "welcome-123")
	})).Return(nil)

	rr := env.do(t, http.MethodPost, "/api/auth/signup", admin, map[string]string{
		"name": "Ravi", "email": "Ravi@Example.com", "role": "agent", "password": "welcome-123",
	})
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/auth/signup", admin, map[string]string{
		"name": "Ravi", "email": "ravi@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	env.db.On("CreateEmployee", mock.Anything).Return(fmt.Errorf("create employee: %w", database.ErrConflict))
	rr = env.do(t, http.MethodPost, "/api/auth/signup", admin, map[string]string{
		"name": "Dup", "email": "dup@example.com", "password": "welcome-123",
	})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestDeleteOwnEmployeeRefused(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodDelete, "/api/employees/"+adminID, env.login(t, adminID, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	env.db.AssertNotCalled(t, "DeleteEmployee", mock.Anything)
}

func TestListLeadsScopedToAgent(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("ListLeads", models.LeadFilter{Status: "new", AssignedTo: agentID}).Return([]models.Lead{}, nil)

	rr := env.do(t, http.MethodGet, "/api/leads?status=new&assigned_to="+otherAgentID, env.login(t, agentID, models.RoleAgent), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	env.db.AssertExpectations(t)
}

func TestGetLeadOfOtherAgent(t *testing.T) {
	env := newTestEnv(t)
	other := otherAgentID
	env.db.On("GetLead", int64(4)).Return(&models.Lead{ID: 4, Name: "Ravi", AssignedTo: &other}, nil)

	rr := env.do(t, http.MethodGet, "/api/leads/4", env.login(t, agentID, models.RoleAgent), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/leads/4", env.login(t, adminID, models.RoleManager), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/leads/abc", env.login(t, adminID, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateLeadHandler(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("CreateLead", mock.MatchedBy(func(l *models.Lead) bool {
		return l.Name == "Ravi" && l.TravelDate != nil && l.TravelDate.Format("2006-01-02") == "2024-12-20" &&
			l.AssignedTo != nil && *l.AssignedTo == agentID && *l.CreatedBy == agentID
	})).Return(nil)

	token := env.login(t, agentID, models.RoleAgent)
	rr := env.do(t, http.MethodPost, "/api/leads", token, `{"name":"Ravi","travel_date":"2024-12-20","assigned_to":"`+otherAgentID+`"}`)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodPost, "/api/leads", token, `{"name":"Ravi","travel_date":"20/12/2024"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/leads", token, `{"name":"  "}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	env.db.AssertNumberOfCalls(t, "CreateLead", 1)
}

func TestCreateFixedItineraryNeedsDays(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, adminID, models.RoleAdmin)

	rr := env.do(t, http.MethodPost, "/api/itineraries", token, `{"name":"Goa","plan_type":"fixed","days":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	env.db.On("CreateItinerary", mock.AnythingOfType("*models.Itinerary")).Return(nil)
	rr = env.do(t, http.MethodPost, "/api/itineraries", token, `{"name":"Goa","plan_type":"fixed","days":[{"day":1,"title":"Arrival"}]}`)
	assert.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func TestCatalogCreate(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("CreateRecord", "hotels", models.Record{"name": "Taj", "star_category": json.Number("5")}, adminID).
		Return(models.Record{"id": int64(1), "name": "Taj"}, nil)

	rr := env.do(t, http.MethodPost, "/api/hotels", env.login(t, adminID, models.RoleAdmin), `{"name":"Taj","star_category":5}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var rec map[string]interface{}
	decode(t, rr, &rec)
	assert.Equal(t, "Taj", rec["name"])
}

func TestCatalogErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, adminID, models.RoleAdmin)

	env.db.On("CreateRecord", "meal_plans", mock.Anything, adminID).Return(nil, fmt.Errorf("%w: password", database.ErrColumn))
	rr := env.do(t, http.MethodPost, "/api/meal-plans", token, `{"password":"x"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	env.db.On("GetRecord", "suppliers", int64(9)).Return(nil, fmt.Errorf("get suppliers: %w", database.ErrNotFound))
	rr = env.do(t, http.MethodGet, "/api/suppliers/9", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	env.db.On("DeleteRecord", "destinations", int64(2)).Return(fmt.Errorf("delete destinations: %w", database.ErrReference))
	rr = env.do(t, http.MethodDelete, "/api/destinations/2", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	env.db.On("ListRecords", "query_statuses", map[string]string{"status": "active"}).Return([]models.Record{}, nil)
	rr = env.do(t, http.MethodGet, "/api/query-statuses?status=active", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func expectAssign(env *testEnv) {
	env.db.On("GetItinerary", int64(7)).Return(&models.Itinerary{ID: 7, Name: "Goa Getaway", TotalPrice: 45000}, nil)
	env.db.On("CreateBooking", mock.AnythingOfType("*models.Booking")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.Booking).ID = 21
	}).Return(nil)
	env.db.On("AssignItinerary", int64(7), (*int64)(nil), models.ItineraryAssigned).Return(nil)
}

func TestAssignItineraryHandler(t *testing.T) {
	env := newTestEnv(t)
	expectAssign(env)
	env.db.On("MarkBookingEmailSent", int64(21), true).Return(nil)

	rr := env.do(t, http.MethodPost, "/api/itineraries/7/assign", env.login(t, agentID, models.RoleAgent),
		map[string]string{"customer_name": "Ravi", "customer_email": "ravi@example.com"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var res checkout.Result
	body := decode(t, rr, &res)
	assert.Equal(t, "Booking created and payment link sent", body.Message)
	assert.True(t, res.EmailSent)
	assert.Equal(t, "plink_1", res.Booking.PaymentLinkID)
	assert.Equal(t, agentID, *res.Booking.AgentID)
	require.Len(t, env.mail.sent, 1)
	assert.Equal(t, []string{"ravi@example.com"}, env.mail.sent[0].To)
}

func TestAssignItineraryEmailFailure(t *testing.T) {
	env := newTestEnv(t)
	expectAssign(env)
	env.mail.err = errors.New("mail API: HTTP 500")

	rr := env.do(t, http.MethodPost, "/api/itineraries/7/assign", env.login(t, agentID, models.RoleAgent),
		map[string]string{"customer_email": "ravi@example.com"})
	require.Equal(t, http.StatusCreated, rr.Code)

	var res checkout.Result
	body := decode(t, rr, &res)
	assert.Equal(t, "Booking created with warnings", body.Message)
	assert.False(t, res.EmailSent)
	assert.NotEmpty(t, res.Warnings)
	env.db.AssertNotCalled(t, "MarkBookingEmailSent", mock.Anything, mock.Anything)
}

func TestAssignItineraryProviderDown(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("GetItinerary", int64(7)).Return(&models.Itinerary{ID: 7, Name: "Goa", TotalPrice: 100}, nil)
	env.links.err = &payments.APIError{Status: 500, Description: "upstream"}

	rr := env.do(t, http.MethodPost, "/api/itineraries/7/assign", env.login(t, agentID, models.RoleAgent),
		map[string]string{"customer_email": "ravi@example.com"})
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	env.db.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestItineraryPDFHandler(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("GetItinerary", int64(7)).Return(&models.Itinerary{ID: 7, Name: "Goa Getaway"}, nil)
	env.db.On("SetItineraryPDF", int64(7), mock.MatchedBy(func(u string) bool {
		return strings.HasPrefix(u, "https://cdn.example.com/quotes/")
	})).Return(nil)

	rr := env.do(t, http.MethodPost, "/api/itineraries/7/pdf", env.login(t, agentID, models.RoleAgent), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Len(t, env.uploads.keys, 1)
	assert.True(t, strings.HasSuffix(env.uploads.keys[0], "-itinerary-7.pdf"))
}

func TestBookingBillingHandler(t *testing.T) {
	env := newTestEnv(t)
	id := int64(21)
	agent := agentID
	env.db.On("GetBooking", id).Return(&models.Booking{ID: id, Amount: 1000, AgentID: &agent}, nil)
	env.db.On("ListPayments", models.PaymentFilter{BookingID: &id}).Return([]models.Payment{
		{BookingID: id, Amount: 300, Status: models.TxnCaptured},
		{BookingID: id, Amount: 500, Status: models.TxnPending},
	}, nil)

	rr := env.do(t, http.MethodGet, "/api/bookings/21/billing", env.login(t, agentID, models.RoleAgent), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var billing models.Billing
	decode(t, rr, &billing)
	assert.Equal(t, 300.0, billing.TotalPaid)
	assert.Equal(t, 700.0, billing.Balance)
	assert.Equal(t, models.PaymentPartial, billing.PaymentStatus)
	assert.Len(t, billing.Payments, 2)
}

func TestCreatePaymentHandler(t *testing.T) {
	env := newTestEnv(t)
	id := int64(21)
	env.db.On("GetBooking", id).Return(&models.Booking{ID: id, Amount: 1000, Status: models.BookingPending, PaymentStatus: models.PaymentUnpaid}, nil)
	env.db.On("CreatePayment", mock.MatchedBy(func(p *models.Payment) bool {
		return p.TransactionID == nil && *p.CreatedBy == adminID
	})).Return(true, nil)
	env.db.On("ListPayments", mock.Anything).Return([]models.Payment{{BookingID: id, Amount: 1000, Status: models.TxnCaptured}}, nil)
	env.db.On("SetBookingPaymentStatus", id, models.PaymentPaid, models.BookingConfirmed).Return(nil)

	rr := env.do(t, http.MethodPost, "/api/payments", env.login(t, adminID, models.RoleAdmin),
		`{"booking_id":21,"amount":1000,"method":"bank","transaction_id":""}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	env.db.AssertExpectations(t)

	rr = env.do(t, http.MethodPost, "/api/payments", env.login(t, adminID, models.RoleAdmin),
		`{"booking_id":21,"amount":10,"method":"barter"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestPaymentsScopedToAgent(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, agentID, models.RoleAgent)
	other := otherAgentID
	env.db.On("GetBooking", int64(99)).Return(&models.Booking{ID: 99, Amount: 5000, AgentID: &other}, nil)
	env.db.On("GetPayment", int64(1)).Return(&models.Payment{ID: 1, BookingID: 99, Amount: 5000, Method: models.MethodCash, Status: models.TxnCaptured}, nil)

	env.db.On("ListPayments", models.PaymentFilter{AgentID: agentID}).Return([]models.Payment{}, nil)
	rr := env.do(t, http.MethodGet, "/api/payments", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/api/payments/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/payments", token, `{"booking_id":99,"amount":5000,"method":"cash"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/payments/1", token, `{"booking_id":99,"amount":1,"method":"cash","status":"captured"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/payments/1", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	env.db.AssertNotCalled(t, "CreatePayment", mock.Anything)
	env.db.AssertNotCalled(t, "UpdatePayment", mock.Anything)
	env.db.AssertNotCalled(t, "DeletePayment", mock.Anything)
	env.db.AssertNotCalled(t, "SetBookingPaymentStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentWebhook(t *testing.T) {
	env := newTestEnv(t)
	body := []byte(`{"event":"payment_link.paid","payload":{"payment_link":{"entity":{"id":"plink_1"}},"payment":{"entity":{"id":"pay_9","amount":100000,"status":"captured"}}}}`)

	post := func(sig string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payments", bytes.NewReader(body))
		req.Header.Set(payments.SignatureHeader, sig)
		rr := httptest.NewRecorder()
		env.handler.ServeHTTP(rr, req)
		return rr
	}

	assert.Equal(t, http.StatusUnauthorized, post("deadbeef").Code)
	env.db.AssertNotCalled(t, "GetBookingByPaymentLink", mock.Anything)

	id := int64(21)
	env.db.On("GetBookingByPaymentLink", "plink_1").Return(&models.Booking{ID: id}, nil)
	env.db.On("CreatePayment", mock.AnythingOfType("*models.Payment")).Return(true, nil)
	env.db.On("GetBooking", id).Return(&models.Booking{ID: id, Amount: 1000, Status: models.BookingPending, PaymentStatus: models.PaymentUnpaid}, nil)
	env.db.On("ListPayments", mock.Anything).Return([]models.Payment{{BookingID: id, Amount: 1000, Status: models.TxnCaptured}}, nil)
	env.db.On("SetBookingPaymentStatus", id, models.PaymentPaid, models.BookingConfirmed).Return(nil)

	rr := post(payments.Sign(body, webhookSecret))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	env.db.AssertExpectations(t)
}

func TestPaymentWebhookIgnoredEvent(t *testing.T) {
	env := newTestEnv(t)
	body := []byte(`{"event":"refund.created","payload":{}}`)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/payments", bytes.NewReader(body))
	req.Header.Set(payments.SignatureHeader, payments.Sign(body, webhookSecret))
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Event ignored", decode(t, rr, nil).Message)
}

func TestEndSessionBeacon(t *testing.T) {
	env := newTestEnv(t)
	token, _, err := env.tokens.Issue(agentID, "a@example.com", models.RoleAgent, "sess-1")
	require.NoError(t, err)
	env.db.On("EndSession", "sess-1", mock.Anything).Return(nil)

	form := url.Values{"token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/api/sessions/end", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/sessions/end", "", map[string]string{"token": token})
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/sessions/end", "", map[string]string{"token": "bogus"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	env.db.AssertNumberOfCalls(t, "EndSession", 2)
}

func TestHeartbeatHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, agentID, models.RoleAgent)

	env.db.On("TouchSession", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()
	rr := env.do(t, http.MethodPost, "/api/sessions/heartbeat", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	env.db.On("TouchSession", mock.Anything, mock.Anything).Return(database.ErrNotFound)
	rr = env.do(t, http.MethodPost, "/api/sessions/heartbeat", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestActiveSessionsAdminOnly(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodGet, "/api/sessions/active", env.login(t, agentID, models.RoleAgent), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	env.db.On("ListActiveSessions", mock.MatchedBy(func(since time.Time) bool {
		return time.Since(since) > time.Minute && time.Since(since) < 3*time.Minute
	})).Return([]models.ActiveEmployee{{EmployeeID: agentID, Name: "Asha"}}, nil)
	rr = env.do(t, http.MethodGet, "/api/sessions/active", env.login(t, adminID, models.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestDashboardScopedToAgent(t *testing.T) {
	env := newTestEnv(t)
	env.db.On("DashboardStats", agentID).Return(&models.DashboardStats{TotalLeads: 3, LeadsByStatus: map[string]int{"new": 3}}, nil)
	env.db.On("ListActiveSessions", mock.Anything).Return([]models.ActiveEmployee{
		{SessionID: "a", EmployeeID: agentID},
		{SessionID: "b", EmployeeID: agentID},
		{SessionID: "c", EmployeeID: adminID},
	}, nil)

	rr := env.do(t, http.MethodGet, "/api/dashboard", env.login(t, agentID, models.RoleAgent), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var stats models.DashboardStats
	decode(t, rr, &stats)
	assert.Equal(t, 3, stats.TotalLeads)
	assert.Equal(t, 2, stats.ActiveEmployees)
}

func multipartUpload(t *testing.T, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("folder", "Hotel Photos"))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, adminID, models.RoleAdmin)

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)
	body, contentType := multipartUpload(t, "Pool View.png", png)
	req := httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.Len(t, env.uploads.keys, 1)
	assert.True(t, strings.HasPrefix(env.uploads.keys[0], "uploads/hotel-photos/"))
	assert.True(t, strings.HasSuffix(env.uploads.keys[0], "-pool-view.png"))

	body, contentType = multipartUpload(t, "notes.txt", []byte("plain text notes"))
	req = httptest.NewRequest(http.MethodPost, "/api/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodOptions, "/api/leads", "", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestRateLimitMiddleware(t *testing.T) {
	// 1 request per second with a burst of 3
	limiter := newRateLimiter(1, 3)

	// Create a simple handler that returns 200 OK
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// Create a test server
	ts := httptest.NewServer(limiter.Middleware(handler))
	defer ts.Close()

	client := &http.Client{}

	doRequest := func() *http.Response {
		req, err := http.NewRequest("GET", ts.URL, nil)
		require.NoError(t, err)

		resp, err := client.Do(req)
		require.NoError(t, err)
		return resp
	}

	// Make 3 allowed requests
	for i := 0; i < 3; i++ {
		resp := doRequest()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status 200 OK on request %d", i+1)
		resp.Body.Close()
	}

	// The 4th request should be rate-limited
	resp := doRequest()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "Expected status 429 Too Many Requests on 4th request")
	resp.Body.Close()

	// Wait for 1 second to allow the limiter to refill
	time.Sleep(1 * time.Second)

	// After waiting, we should be able to make another request
	resp = doRequest()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "Expected status 200 OK after waiting")
	resp.Body.Close()
}
