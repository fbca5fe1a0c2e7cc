package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"travel-backoffice/internal/database"
	"travel-backoffice/internal/models"
)

func (s *Server) listRecordsHandler(t *database.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters := map[string]string{}
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				filters[k] = v[0]
			}
		}
		list, err := s.db.ListRecords(r.Context(), t, filters)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, "", list)
	}
}

func (s *Server) getRecordHandler(t *database.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		rec, err := s.db.GetRecord(r.Context(), t, id)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, "", rec)
	}
}

// decodeRecord keeps numbers as json.Number so numeric columns are not
// rounded through float64.
func decodeRecord(w http.ResponseWriter, r *http.Request) (models.Record, bool) {
	var raw json.RawMessage
	if !decodeJSON(w, r, &raw) {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	rec := models.Record{}
	if err := dec.Decode(&rec); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return nil, false
	}
	return rec, true
}

func (s *Server) createRecordHandler(t *database.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		created, err := s.db.CreateRecord(r.Context(), t, rec, claimsFrom(r.Context()).EmployeeID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusCreated, "Created", created)
	}
}

func (s *Server) updateRecordHandler(t *database.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		rec, ok := decodeRecord(w, r)
		if !ok {
			return
		}
		updated, err := s.db.UpdateRecord(r.Context(), t, id, rec)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, "Updated", updated)
	}
}

func (s *Server) deleteRecordHandler(t *database.Table) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		if err := s.db.DeleteRecord(r.Context(), t, id); err != nil {
			s.fail(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, "Deleted", nil)
	}
}
