package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"travel-backoffice/internal/auth"
	"travel-backoffice/internal/models"
)

func (s *Server) listEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	list, err := s.db.ListEmployees(r.Context(), models.EmployeeFilter{
		Status:      q.Get("status"),
		Role:        q.Get("role"),
		Destination: q.Get("destination"),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", list)
}

func (s *Server) getEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	emp, err := s.db.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", emp)
}

// createEmployeeHandler is the admin form; it shares signup's rules.
func (s *Server) createEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	s.signupHandler(w, r)
}

func (s *Server) updateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	emp := req.Employee
	emp.ID = chi.URLParam(r, "id")
	if emp.Name == "" || !auth.ValidEmail(emp.Email) || !models.ValidRole(emp.Role) || !models.ValidStatus(emp.Status) {
		s.fail(w, r, auth.ErrInvalidEmployee)
		return
	}
	if emp.ID == claimsFrom(r.Context()).EmployeeID && (emp.Role != models.RoleAdmin || emp.Status != models.StatusActive) {
		respondError(w, http.StatusUnprocessableEntity, "You cannot demote or deactivate your own account")
		return
	}

	if err := s.db.UpdateEmployee(r.Context(), &emp); err != nil {
		s.fail(w, r, err)
		return
	}
	if emp.Status == models.StatusInactive {
		n, err := s.db.EndEmployeeSessions(r.Context(), emp.ID, time.Now().UTC())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.logger.WithFields(logrus.Fields{"employee_id": emp.ID, "sessions": n}).Info("Ended sessions of deactivated employee")
	}

	// An admin reset makes the employee choose a new password at next login.
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if err := s.db.UpdateEmployeePassword(r.Context(), emp.ID, hash, true); err != nil {
			s.fail(w, r, err)
			return
		}
		emp.FirstLogin = true
	}
	respondJSON(w, http.StatusOK, "Employee updated", emp)
}

func (s *Server) deleteEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == claimsFrom(r.Context()).EmployeeID {
		respondError(w, http.StatusUnprocessableEntity, "You cannot delete your own account")
		return
	}
	if err := s.db.DeleteEmployee(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Employee deleted", nil)
}
