package server

import (
	"fmt"
	"net/http"

	"travel-backoffice/internal/checkout"
	"travel-backoffice/internal/models"
	"travel-backoffice/internal/quote"
	"travel-backoffice/internal/storage"
)

func (s *Server) listItinerariesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	leadID, err := queryInt64(r, "lead_id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid lead_id")
		return
	}
	list, err := s.db.ListItineraries(r.Context(), models.ItineraryFilter{
		Destination: q.Get("destination"),
		PlanType:    q.Get("plan_type"),
		Status:      q.Get("status"),
		LeadID:      leadID,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", list)
}

func (s *Server) getItineraryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	it, err := s.db.GetItinerary(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", it)
}

func (s *Server) createItineraryHandler(w http.ResponseWriter, r *http.Request) {
	var it models.Itinerary
	if !decodeJSON(w, r, &it) {
		return
	}
	it.Normalize()
	if err := it.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	creator := claimsFrom(r.Context()).EmployeeID
	it.CreatedBy = &creator
	it.PDFURL = ""

	if err := s.db.CreateItinerary(r.Context(), &it); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Itinerary created", it)
}

func (s *Server) updateItineraryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var it models.Itinerary
	if !decodeJSON(w, r, &it) {
		return
	}
	it.ID = id
	it.Normalize()
	if err := it.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.db.UpdateItinerary(r.Context(), &it); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Itinerary updated", it)
}

func (s *Server) deleteItineraryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteItinerary(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Itinerary deleted", nil)
}

func (s *Server) assignItineraryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req checkout.AssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ItineraryID = id
	req.AgentID = claimsFrom(r.Context()).EmployeeID

	res, err := s.checkout.Assign(r.Context(), req)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	msg := "Booking created and payment link sent"
	if len(res.Warnings) > 0 {
		msg = "Booking created with warnings"
	}
	respondJSON(w, http.StatusCreated, msg, res)
}

func (s *Server) itineraryPDFHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if s.storage == nil || s.pdf == nil {
		s.fail(w, r, storage.ErrDisabled)
		return
	}
	it, err := s.db.GetItinerary(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	html, err := quote.RenderHTML(s.cfg.Mail.Agency, it)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pdf, err := s.pdf.RenderPDF(r.Context(), html)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	key := storage.ObjectKey("quotes", fmt.Sprintf("itinerary-%d.pdf", it.ID))
	url, err := s.storage.Put(r.Context(), key, "application/pdf", pdf)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.db.SetItineraryPDF(r.Context(), it.ID, url); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Quote generated", map[string]string{"pdf_url": url})
}
