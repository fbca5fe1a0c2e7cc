package server

import (
	"net/http"
	"strings"
	"time"

	"travel-backoffice/internal/models"
)

// leadRequest accepts travel_date as a plain date or RFC 3339.
type leadRequest struct {
	models.Lead
	TravelDate string `json:"travel_date"`
}

func (req *leadRequest) lead() (*models.Lead, bool) {
	l := req.Lead
	l.TravelDate = nil
	if raw := strings.TrimSpace(req.TravelDate); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			if t, err = time.Parse(time.RFC3339, raw); err != nil {
				return nil, false
			}
		}
		l.TravelDate = &t
	}
	return &l, true
}

func (s *Server) listLeadsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := models.LeadFilter{
		Status:      q.Get("status"),
		AssignedTo:  q.Get("assigned_to"),
		Destination: q.Get("destination"),
	}
	if !isStaffManager(r) {
		f.AssignedTo = claimsFrom(r.Context()).EmployeeID
	}

	list, err := s.db.ListLeads(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", list)
}

// loadLead fetches a lead the caller may see. Agents only see their own.
func (s *Server) loadLead(w http.ResponseWriter, r *http.Request) (*models.Lead, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return nil, false
	}
	l, err := s.db.GetLead(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if !isStaffManager(r) && (l.AssignedTo == nil || *l.AssignedTo != claimsFrom(r.Context()).EmployeeID) {
		respondError(w, http.StatusNotFound, "Not found")
		return nil, false
	}
	return l, true
}

func (s *Server) getLeadHandler(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loadLead(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, "", l)
}

func (s *Server) createLeadHandler(w http.ResponseWriter, r *http.Request) {
	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l, ok := req.lead()
	if !ok {
		respondError(w, http.StatusBadRequest, "travel_date must be YYYY-MM-DD")
		return
	}
	if strings.TrimSpace(l.Name) == "" {
		s.fail(w, r, models.ErrName)
		return
	}

	claims := claimsFrom(r.Context())
	creator := claims.EmployeeID
	l.CreatedBy = &creator
	if !isStaffManager(r) || l.AssignedTo == nil || *l.AssignedTo == "" {
		self := claims.EmployeeID
		l.AssignedTo = &self
	}

	if err := s.db.CreateLead(r.Context(), l); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Lead created", l)
}

func (s *Server) updateLeadHandler(w http.ResponseWriter, r *http.Request) {
	current, ok := s.loadLead(w, r)
	if !ok {
		return
	}
	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	l, ok := req.lead()
	if !ok {
		respondError(w, http.StatusBadRequest, "travel_date must be YYYY-MM-DD")
		return
	}
	if strings.TrimSpace(l.Name) == "" {
		s.fail(w, r, models.ErrName)
		return
	}
	l.ID = current.ID
	if !isStaffManager(r) {
		l.AssignedTo = current.AssignedTo
	} else if l.AssignedTo != nil && *l.AssignedTo == "" {
		l.AssignedTo = nil
	}

	if err := s.db.UpdateLead(r.Context(), l); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Lead updated", l)
}

func (s *Server) deleteLeadHandler(w http.ResponseWriter, r *http.Request) {
	l, ok := s.loadLead(w, r)
	if !ok {
		return
	}
	if err := s.db.DeleteLead(r.Context(), l.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Lead deleted", nil)
}
