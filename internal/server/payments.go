package server

import (
	"errors"
	"io"
	"net/http"

	"travel-backoffice/internal/checkout"
	"travel-backoffice/internal/models"
	"travel-backoffice/internal/payments"
)

func (s *Server) listPaymentsHandler(w http.ResponseWriter, r *http.Request) {
	bookingID, err := queryInt64(r, "booking_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid booking_id")
		return
	}
	f := models.PaymentFilter{
		BookingID: bookingID,
		Status:    r.URL.Query().Get("status"),
	}
	if !isStaffManager(r) {
		f.AgentID = claimsFrom(r.Context()).EmployeeID
	}
	list, err := s.db.ListPayments(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", list)
}

func (s *Server) getPaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.db.GetPayment(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.checkBooking(w, r, p.BookingID) {
		return
	}
	respondJSON(w, http.StatusOK, "", p)
}

type paymentResponse struct {
	Payment *models.Payment `json:"payment"`
	Billing *models.Billing `json:"billing,omitempty"`
}

func (s *Server) createPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var p models.Payment
	if !decodeJSON(w, r, &p) {
		return
	}
	creator := claimsFrom(r.Context()).EmployeeID
	p.CreatedBy = &creator
	if p.TransactionID != nil && *p.TransactionID == "" {
		p.TransactionID = nil
	}
	if p.BookingID != 0 && !s.checkBooking(w, r, p.BookingID) {
		return
	}

	billing, err := s.checkout.RecordPayment(r.Context(), &p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Payment recorded", paymentResponse{Payment: &p, Billing: billing})
}

func (s *Server) updatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	current, err := s.db.GetPayment(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.checkBooking(w, r, current.BookingID) {
		return
	}
	var p models.Payment
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = id
	if p.BookingID == 0 {
		p.BookingID = current.BookingID
	}
	if p.BookingID != current.BookingID && !s.checkBooking(w, r, p.BookingID) {
		return
	}
	if p.Amount <= 0 || !models.ValidMethod(p.Method) || !models.ValidTxnStatus(p.Status) {
		respondError(w, http.StatusUnprocessableEntity, "a positive amount, valid method and valid status are required")
		return
	}
	if p.TransactionID != nil && *p.TransactionID == "" {
		p.TransactionID = nil
	}
	if err := s.db.UpdatePayment(r.Context(), &p); err != nil {
		s.fail(w, r, err)
		return
	}
	// a payment moved to another booking changes both balances
	if p.BookingID != current.BookingID {
		if _, err := s.checkout.Reconcile(r.Context(), current.BookingID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	billing, err := s.checkout.Reconcile(r.Context(), p.BookingID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Payment updated", paymentResponse{Payment: &p, Billing: billing})
}

func (s *Server) deletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	p, err := s.db.GetPayment(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !s.checkBooking(w, r, p.BookingID) {
		return
	}
	if err := s.db.DeletePayment(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	billing, err := s.checkout.Reconcile(r.Context(), p.BookingID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Payment deleted", billing)
}

// paymentWebhookHandler receives provider events. Events that do not map to
// a booking are acknowledged so the provider stops retrying them.
func (s *Server) paymentWebhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := payments.VerifySignature(body, r.Header.Get(payments.SignatureHeader), s.cfg.Payments.WebhookSecret); err != nil {
		s.logger.WithField("ip", clientIP(r)).Warn("Webhook signature rejected")
		respondError(w, http.StatusUnauthorized, err.Error())
		return
	}
	ev, err := payments.ParseEvent(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	billing, err := s.checkout.HandlePaymentEvent(r.Context(), ev)
	if errors.Is(err, checkout.ErrIgnored) {
		respondJSON(w, http.StatusOK, "Event ignored", nil)
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Payment recorded", billing)
}
