package server

import (
	"net/http"
	"time"
)

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	scope := ""
	if !isStaffManager(r) {
		scope = claimsFrom(r.Context()).EmployeeID
	}
	stats, err := s.db.DashboardStats(r.Context(), scope)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	active, err := s.db.ListActiveSessions(r.Context(), time.Now().UTC().Add(-s.cfg.Sessions.ActiveWindow))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	seen := map[string]bool{}
	for _, a := range active {
		seen[a.EmployeeID] = true
	}
	stats.ActiveEmployees = len(seen)
	respondJSON(w, http.StatusOK, "", stats)
}
