package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"travel-backoffice/internal/auth"
	"travel-backoffice/internal/database"
	"travel-backoffice/internal/models"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	res, err := s.auth.Login(r.Context(), req.Email, req.Password, auth.ClientInfo{
		UserAgent: r.UserAgent(),
		IP:        clientIP(r),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Login successful", res)
}

type employeeRequest struct {
	models.Employee
	Password string `json:"password"`
}

func (s *Server) signupHandler(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	emp := req.Employee
	if err := s.auth.Signup(r.Context(), &emp, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, "Employee created", emp)
}

func (s *Server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), claimsFrom(r.Context()).SessionID()); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Logged out", nil)
}

func (s *Server) meHandler(w http.ResponseWriter, r *http.Request) {
	emp, err := s.db.GetEmployee(r.Context(), claimsFrom(r.Context()).EmployeeID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", emp)
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (s *Server) changePasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	err := s.auth.ChangePassword(r.Context(), claimsFrom(r.Context()).EmployeeID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "Password updated", nil)
}

func (s *Server) heartbeatHandler(w http.ResponseWriter, r *http.Request) {
	err := s.db.TouchSession(r.Context(), claimsFrom(r.Context()).SessionID(), time.Now().UTC())
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusUnauthorized, "Session has ended")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", map[string]interface{}{
		"active_window_seconds": int(s.cfg.Sessions.ActiveWindow.Seconds()),
	})
}

// endSessionHandler serves the page-unload beacon, which cannot set
// headers, so the token may also arrive as a form field or JSON body.
func (s *Server) endSessionHandler(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var body struct {
				Token string `json:"token"`
			}
			if !decodeJSON(w, r, &body) {
				return
			}
			token = body.Token
		} else {
			token = r.FormValue("token")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "Authorization token required")
		return
	}

	claims, err := s.auth.ParseToken(token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid or expired session")
		return
	}
	if err := s.auth.Logout(r.Context(), claims.SessionID()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) activeSessionsHandler(w http.ResponseWriter, r *http.Request) {
	since := time.Now().UTC().Add(-s.cfg.Sessions.ActiveWindow)
	active, err := s.db.ListActiveSessions(r.Context(), since)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, "", active)
}
