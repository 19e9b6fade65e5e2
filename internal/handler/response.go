package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so success bodies
// and error bodies each have exactly one shape:
//
//	{"error": "not_found", "message": "character not found with id 42"}

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/marvel-catalog/internal/apperror"
)

// Machine-readable reason strings carried in every error body.
const (
	reasonNotFound            = "not_found"
	reasonValidation          = "validation_error"
	reasonDuplicate           = "duplicate_favorite"
	reasonUpstreamUnavailable = "upstream_unavailable"
	reasonUpstreamError       = "upstream_error"
	reasonInternal            = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is used for greetings and confirmations.
type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// headers are already on the wire
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// classify maps an error chain to its HTTP status and reason string.
//
// ERROR MAPPING:
//
//	ErrValidation          → 400 validation_error
//	ErrDuplicate           → 400 duplicate_favorite
//	ErrNotFound            → 404 not_found
//	ErrUpstreamUnavailable → 503 upstream_unavailable
//	ErrUpstreamProtocol    → 500 upstream_error
//	anything else          → 500 internal_error
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apperror.ErrValidation):
		return http.StatusBadRequest, reasonValidation
	case errors.Is(err, apperror.ErrDuplicate):
		return http.StatusBadRequest, reasonDuplicate
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound, reasonNotFound
	case errors.Is(err, apperror.ErrUpstreamUnavailable):
		return http.StatusServiceUnavailable, reasonUpstreamUnavailable
	case errors.Is(err, apperror.ErrUpstreamProtocol):
		return http.StatusInternalServerError, reasonUpstreamError
	default:
		return http.StatusInternalServerError, reasonInternal
	}
}

// writeError sends the mapped status for err.
func writeError(w http.ResponseWriter, err error) {
	status, reason := classify(err)
	writeErrorStatus(w, status, reason, err)
}

// writeErrorStatus sends err under an explicit status, keeping its reason.
// Messages of unclassified errors are never exposed; they may carry SQL or
// file paths.
func writeErrorStatus(w http.ResponseWriter, status int, reason string, err error) {
	message := "An internal error occurred"
	var appErr *apperror.AppError
	if reason != reasonInternal && errors.As(err, &appErr) {
		message = appErr.Message
	}

	writeJSON(w, status, ErrorResponse{
		Error:   reason,
		Message: message,
	})
}
