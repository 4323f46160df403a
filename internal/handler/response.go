package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rokerz/rokerz-server/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API
// endpoints: a machine-readable type plus the human-readable message
// the frontend displays.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
// Headers must be set before the first body write.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to its HTTP response.
//
// Every domain failure — missing field, duplicate email or username,
// unknown email, wrong password — maps to 400 with the service's
// message. That flat mapping is the API's published contract.
//
// Anything else is a 500 with a generic body; the raw error is logged
// server-side, never echoed to the client.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		errorType := "internal_error"
		switch {
		case errors.Is(err, apperror.ErrValidation):
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrConflict):
			errorType = "conflict"
		case errors.Is(err, apperror.ErrNotFound):
			errorType = "not_found"
		case errors.Is(err, apperror.ErrInvalidCredentials):
			errorType = "invalid_credentials"
		}

		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
		})
		return
	}

	slog.Error("unexpected error", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}
