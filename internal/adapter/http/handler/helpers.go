package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/middleware"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError maps err to a status. Storage failure details stay in
// the log.
func writeDomainError(w http.ResponseWriter, r *http.Request, message string, err error) {
	status := mapDomainError(err)
	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg(message)
		writeError(w, status, message, "")
		return
	}
	writeError(w, status, message, err.Error())
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotOwned):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrHasHistory),
		errors.Is(err, domain.ErrEditWindowExpired),
		errors.Is(err, domain.ErrDeleteWindowExpired):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSameAccount),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrStorageFailure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes a bounded request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}

// ownerID returns the acting owner. The owner middleware guarantees it on
// every API route.
func ownerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	owner, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing owner", "")
		return "", false
	}
	return owner, true
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseBoolQuery treats "1", "true" and friends as true.
func parseBoolQuery(r *http.Request, key string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(key))
	return b
}

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	t, err := dto.ParseDate(val)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseDecimalQuery(r *http.Request, key string) (*decimal.Decimal, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", domain.ErrValidation, key, val)
	}
	return &d, nil
}
