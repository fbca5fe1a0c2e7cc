package server

import (
	"net/http"

	"travel-backoffice/internal/models"
)

func (s *Server) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.BookingFilter{
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		AgentID:       q.Get("agent_id"),
	}
	if !isStaffManager(r) {
		f.AgentID = claimsFrom(r.Context()).EmployeeID
	}
	list, err := s.db.ListBookings(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", list)
}

// loadBooking fetches a booking the caller may see. Agents only see their own.
func (s *Server) loadBooking(w http.ResponseWriter, r *http.Request) (*models.Booking, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	b, err := s.db.GetBooking(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if !canSeeBooking(r, b) {
		respondError(w, http.StatusNotFound, "Not found")
		return nil, false
	}
	return b, true
}

// canSeeBooking reports whether the caller may read or change b. Agents only
// see bookings they own.
func canSeeBooking(r *http.Request, b *models.Booking) bool {
	return isStaffManager(r) || (b.AgentID != nil && *b.AgentID == claimsFrom(r.Context()).EmployeeID)
}

// checkBooking looks up a booking by id and applies canSeeBooking. Managers
// skip the lookup.
func (s *Server) checkBooking(w http.ResponseWriter, r *http.Request, id int64) bool {
	if isStaffManager(r) {
		return true
	}
	b, err := s.db.GetBooking(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return false
	}
	if !canSeeBooking(r, b) {
		respondError(w, http.StatusNotFound, "Not found")
		return false
	}
	return true
}

func validBooking(b *models.Booking) bool {
	return b.CustomerName != "" && b.Amount >= 0 &&
		models.ValidBookingStatus(b.Status) && models.ValidPaymentStatus(b.PaymentStatus)
}

func (s *Server) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBooking(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, "", b)
}

func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var b models.Booking
	if !decodeJSON(w, r, &b) {
		return
	}
	if b.Status == "" {
		b.Status = models.BookingPending
	}
	if b.PaymentStatus == "" {
		b.PaymentStatus = models.PaymentUnpaid
	}
	if b.Currency == "" {
		b.Currency = s.cfg.Payments.Currency
	}
	if !validBooking(&b) {
		respondError(w, http.StatusUnprocessableEntity, "customer_name, a non-negative amount and valid statuses are required")
		return
	}
	if !isStaffManager(r) || b.AgentID == nil {
		self := claimsFrom(r.Context()).EmployeeID
		b.AgentID = &self
	}
	b.PaymentLinkID, b.PaymentLinkURL, b.EmailSent = "", "", false

	if err := s.db.CreateBooking(r.Context(), &b); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Booking created", b)
}

func (s *Server) updateBookingHandler(w http.ResponseWriter, r *http.Request) {
	current, ok := s.loadBooking(w, r)
	if !ok {
		return
	}
	var b models.Booking
	if !decodeJSON(w, r, &b) {
		return
	}
	b.ID = current.ID
	if b.Currency == "" {
		b.Currency = current.Currency
	}
	if !validBooking(&b) {
		respondError(w, http.StatusUnprocessableEntity, "customer_name, a non-negative amount and valid statuses are required")
		return
	}
	if !isStaffManager(r) || b.AgentID == nil {
		b.AgentID = current.AgentID
	}

	if err := s.db.UpdateBooking(r.Context(), &b); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Booking updated", b)
}

func (s *Server) deleteBookingHandler(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBooking(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteBooking(r.Context(), b.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Booking deleted", nil)
}

func (s *Server) bookingBillingHandler(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBooking(w, r)
	if !ok {
		return
	}
	list, err := s.db.ListPayments(r.Context(), models.PaymentFilter{BookingID: &b.ID})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", models.Summarize(b, list))
}

func (s *Server) resendEmailHandler(w http.ResponseWriter, r *http.Request) {
	b, ok := s.loadBooking(w, r)
	if !ok {
		return
	}
	updated, err := s.checkout.ResendEmail(r.Context(), b.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Email sent", updated)
}
