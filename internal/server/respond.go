package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"travel-backoffice/internal/auth"
	"travel-backoffice/internal/checkout"
	"travel-backoffice/internal/database"
	"travel-backoffice/internal/models"
	"travel-backoffice/internal/payments"
	"travel-backoffice/internal/storage"
)

const maxBodyBytes = 1 << 20

// apiResponse is the envelope of every /api answer.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: status < 400, Message: message, Data: data})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, message, nil)
}

// fail maps domain errors onto HTTP statuses. Unexpected errors are logged
// and answered without detail.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *payments.APIError
	switch {
	case errors.Is(err, database.ErrNotFound):
		respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, database.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, database.ErrReference),
		errors.Is(err, database.ErrCheck),
		errors.Is(err, database.ErrColumn),
		errors.Is(err, checkout.ErrInvalid),
		errors.Is(err, auth.ErrInvalidEmployee),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, models.ErrName),
		errors.Is(err, models.ErrPlanType),
		errors.Is(err, models.ErrFixedDays):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrInactive):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrDisabled):
		respondError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, checkout.ErrDelivery):
		s.logger.WithError(err).Warn("Email delivery failed")
		respondError(w, http.StatusBadGateway, err.Error())
	case errors.As(err, &apiErr):
		s.logger.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("Payment provider error")
		respondError(w, http.StatusBadGateway, "Payment provider error: "+apiErr.Description)
	default:
		s.logger.WithError(err).WithFields(map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Error("Request error")
		respondError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func queryInt64(r *http.Request, key string) (*int64, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
