package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/database"
	"travel-backoffice/internal/mailer"
	"travel-backoffice/internal/models"
	"travel-backoffice/internal/payments"
)

var (
	// ErrInvalid marks a request the flow refuses before calling any provider.
	ErrInvalid  = errors.New("invalid checkout request")
	ErrDelivery = errors.New("email delivery failed")
)

// Store is the persistence the checkout flow needs.
type Store interface {
	GetItinerary(ctx context.Context, id int64) (*models.Itinerary, error)
	AssignItinerary(ctx context.Context, id int64, leadID *int64, status string) error
	GetLead(ctx context.Context, id int64) (*models.Lead, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByPaymentLink(ctx context.Context, linkID string) (*models.Booking, error)
	CreateBooking(ctx context.Context, b *models.Booking) error
	SetBookingPaymentStatus(ctx context.Context, id int64, paymentStatus, status string) error
	MarkBookingEmailSent(ctx context.Context, id int64, sent bool) error
	ListPayments(ctx context.Context, f models.PaymentFilter) ([]models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) (bool, error)
}

type AssignRequest struct {
	ItineraryID   int64   `json:"-"`
	LeadID        *int64  `json:"lead_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	CustomerPhone string  `json:"customer_phone"`
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	AgentID       string  `json:"-"`
}

type Result struct {
	Booking     *models.Booking `json:"booking"`
	PaymentLink *payments.Link  `json:"payment_link"`
	EmailSent   bool            `json:"email_sent"`
	Warnings    []string        `json:"warnings,omitempty"`
}

type Service struct {
	store    Store
	links    payments.LinkCreator
	mail     mailer.Sender
	agency   string
	currency string
	logger   *logrus.Logger
}

func NewService(store Store, links payments.LinkCreator, mail mailer.Sender, agency, currency string, logger *logrus.Logger) *Service {
	return &Service{store: store, links: links, mail: mail, agency: agency, currency: currency, logger: logger}
}

// Assign runs itinerary -> payment link -> booking -> email. A failed email
// keeps the booking and is reported as a warning.
func (s *Service) Assign(ctx context.Context, req AssignRequest) (*Result, error) {
	entry := s.logger.WithFields(logrus.Fields{"itinerary_id": req.ItineraryID, "agent_id": req.AgentID})

	it, err := s.store.GetItinerary(ctx, req.ItineraryID)
	if err != nil {
		return nil, err
	}
	if it.Status == models.ItineraryCancelled {
		return nil, fmt.Errorf("%w: itinerary is cancelled", ErrInvalid)
	}

	if req.LeadID != nil {
		lead, err := s.store.GetLead(ctx, *req.LeadID)
		if err != nil {
			return nil, err
		}
		req.CustomerName = firstNonEmpty(req.CustomerName, lead.Name)
		req.CustomerEmail = firstNonEmpty(req.CustomerEmail, lead.Email)
		req.CustomerPhone = firstNonEmpty(req.CustomerPhone, lead.Phone)
	}
	if req.Amount == 0 {
		req.Amount = it.TotalPrice
	}
	if req.Currency == "" {
		req.Currency = s.currency
	}
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	switch {
	case req.Amount <= 0:
		return nil, fmt.Errorf("%w: amount must be greater than zero", ErrInvalid)
	case req.CustomerEmail == "":
		return nil, fmt.Errorf("%w: customer email is required", ErrInvalid)
	}

	notes := map[string]string{"itinerary_id": strconv.FormatInt(it.ID, 10)}
	if req.LeadID != nil {
		notes["lead_id"] = strconv.FormatInt(*req.LeadID, 10)
	}
	link, err := s.links.CreateLink(ctx, payments.LinkRequest{
		Amount:      req.Amount,
		Currency:    req.Currency,
		ReferenceID: fmt.Sprintf("itinerary-%d-%d", it.ID, time.Now().Unix()),
		Description: it.Name,
		Customer: payments.Customer{
			Name:    req.CustomerName,
			Email:   req.CustomerEmail,
			Contact: req.CustomerPhone,
		},
		Notes: notes,
	})
	if err != nil {
		entry.WithError(err).Error("Payment link creation failed")
		return nil, fmt.Errorf("create payment link: %w", err)
	}

	itID := it.ID
	booking := &models.Booking{
		ItineraryID:    &itID,
		LeadID:         req.LeadID,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		CustomerPhone:  req.CustomerPhone,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Status:         models.BookingPending,
		PaymentStatus:  models.PaymentUnpaid,
		PaymentLinkID:  link.ID,
		PaymentLinkURL: link.ShortURL,
	}
	if req.AgentID != "" {
		agent := req.AgentID
		booking.AgentID = &agent
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		entry.WithError(err).WithField("link_id", link.ID).Error("Booking insert failed, cancelling payment link")
		if cerr := s.links.CancelLink(ctx, link.ID); cerr != nil {
			entry.WithError(cerr).WithField("link_id", link.ID).Error("Payment link cancel failed")
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	res := &Result{Booking: booking, PaymentLink: link}

	if err := s.store.AssignItinerary(ctx, it.ID, req.LeadID, models.ItineraryAssigned); err != nil {
		entry.WithError(err).Warn("Itinerary status not updated")
		res.Warnings = append(res.Warnings, "booking created but the itinerary could not be marked as assigned")
	}

	if err := s.sendBookingEmail(ctx, booking, it); err != nil {
		entry.WithError(err).WithField("booking_id", booking.ID).Warn("Booking email failed")
		res.Warnings = append(res.Warnings, "booking created but the email could not be sent: "+err.Error())
	} else {
		res.EmailSent = true
		booking.EmailSent = true
	}

	entry.WithFields(logrus.Fields{
		"booking_id": booking.ID,
		"link_id":    link.ID,
		"email_sent": res.EmailSent,
	}).Info("Itinerary assigned")
	return res, nil
}

// ResendEmail sends the payment-link email for an existing booking again.
func (s *Service) ResendEmail(ctx context.Context, bookingID int64) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PaymentLinkURL == "" {
		return nil, fmt.Errorf("%w: booking has no payment link", ErrInvalid)
	}
	if b.CustomerEmail == "" {
		return nil, fmt.Errorf("%w: booking has no customer email", ErrInvalid)
	}

	var it *models.Itinerary
	if b.ItineraryID != nil {
		it, err = s.store.GetItinerary(ctx, *b.ItineraryID)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
	}
	if err := s.sendBookingEmail(ctx, b, it); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	b.EmailSent = true
	return b, nil
}

func (s *Service) sendBookingEmail(ctx context.Context, b *models.Booking, it *models.Itinerary) error {
	data := mailer.BookingData{
		Agency:       s.agency,
		CustomerName: firstNonEmpty(b.CustomerName, "there"),
		PackageName:  "your trip",
		Amount:       b.Amount,
		Currency:     b.Currency,
		PaymentURL:   b.PaymentLinkURL,
		BookingID:    b.ID,
	}
	if it != nil {
		data.PackageName = it.Name
		data.Destination = it.Destination
		data.DurationDays = it.DurationDays
	}
	if b.AgentID != nil {
		if agent, err := s.store.GetEmployee(ctx, *b.AgentID); err == nil {
			data.AgentName = agent.Name
			data.AgentEmail = agent.Email
		}
	}

	msg, err := mailer.BookingEmail(data)
	if err != nil {
		return err
	}
	msg.To = []string{b.CustomerEmail}
	if _, err := s.mail.Send(ctx, msg); err != nil {
		return err
	}
	// the customer has the email; a failed flag update is only logged
	if err := s.store.MarkBookingEmailSent(ctx, b.ID, true); err != nil {
		s.logger.WithError(err).WithField("booking_id", b.ID).Error("Booking email sent but email_sent not saved")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
