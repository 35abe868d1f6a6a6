package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haukened/waitlist/internal/app"
	"github.com/haukened/waitlist/internal/domain"
)

// Response messages shared by the JSON and HTML surfaces.
const (
	msgAdded          = "Added to waitlist"
	msgValidation     = "Validation failed"
	msgSignupFailed   = "Failed to signup for waitlist."
	msgNotFound       = "Resource not found"
	msgInternal       = "Internal Server Error"
	msgInvalidID      = "Invalid id"
	msgInvalidBody    = "Invalid request body"
	msgTooLarge       = "Request body too large"
	msgMethod         = "Method not allowed"
	msgInvalidEmail   = "Not a valid email"
	msgUnsupportedCT  = "Unsupported content type"
	msgServiceUnready = "Service unavailable"
)

// fieldError describes one failed input field.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// apiResponse is the envelope for waitlist mutations and all API errors.
type apiResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	ID      string       `json:"id,omitempty"`
	Errors  []fieldError `json:"errors,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a failed apiResponse with the given status code.
func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, apiResponse{Success: false, Message: msg})
}

// serviceErrorStatus maps domain/store/service errors to a status code, a
// client-facing message, and per-field errors where applicable.
func serviceErrorStatus(err error) (int, string, []fieldError) {
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return http.StatusUnprocessableEntity, msgValidation, []fieldError{{Field: "email", Message: msgInvalidEmail}}
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, msgInvalidID, nil
	case errors.Is(err, app.ErrAlreadyJoined):
		return http.StatusConflict, msgSignupFailed, nil
	case errors.Is(err, app.ErrNotFound):
		return http.StatusNotFound, msgNotFound, nil
	default:
		return http.StatusInternalServerError, msgInternal, nil
	}
}

// mapServiceError logs and writes the JSON response for a service error.
func mapServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	code, msg, fields := serviceErrorStatus(err)
	logServiceError(ctx, code, err)
	writeJSON(w, code, apiResponse{Success: false, Message: msg, Errors: fields})
}

func logServiceError(ctx context.Context, code int, err error) {
	cid, _ := GetCorrelationID(ctx)
	switch {
	case code >= http.StatusInternalServerError:
		// raw error text may contain ids or addresses
		slog.Error("service error", "domain", "http", "cid", cid, "code", "unhandled", "status", code)
	case code == http.StatusNotFound:
		slog.Info("service error", "domain", "http", "cid", cid, "code", "not_found")
	default:
		slog.Warn("service error", "domain", "http", "cid", cid, "status", code, "kind", errorKind(err))
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidEmail):
		return "invalid_email"
	case errors.Is(err, domain.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, app.ErrAlreadyJoined):
		return "duplicate"
	default:
		return "other"
	}
}
