package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"carcare/internal/domain"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, envelope{Success: true, Data: data})
}

func writeOK(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, envelope{Success: true})
}

func writeFailure(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, envelope{Success: false, Error: message})
}

// writeError maps err onto a status code and a message safe to show a user.
func writeError(w http.ResponseWriter, err error) {
	writeFailure(w, statusFor(err), publicMessage(err))
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindPrecondition:
		if errors.Is(err, domain.ErrRateLimited) {
			return http.StatusTooManyRequests
		}
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

var publicErrors = []error{
	domain.ErrBlocked,
	domain.ErrUnverified,
	domain.ErrWindowExpired,
	domain.ErrNotOwner,
	domain.ErrForbidden,
	domain.ErrRateLimited,
	domain.ErrIllegalTransition,
	domain.ErrConcurrentModification,
	domain.ErrActionInFlight,
	domain.ErrNotFound,
}

func publicMessage(err error) string {
	if domain.KindOf(err) == domain.KindValidation {
		return err.Error()
	}
	for _, target := range publicErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return "internal server error"
}
