package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"business-dashboard/internal/app"
	"business-dashboard/internal/core"
	"business-dashboard/internal/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// serviceError maps an ApplicationService error to the envelope message, code
// and HTTP status.
func serviceError(err error) (string, string, int) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, core.ErrUnknownWindow):
		return err.Error(), "BAD_REQUEST", http.StatusBadRequest
	case errors.Is(err, app.ErrNoDataset):
		return err.Error(), "NOT_FOUND", http.StatusNotFound
	case errors.Is(err, app.ErrExportDisabled):
		return err.Error(), "NOT_IMPLEMENTED", http.StatusNotImplemented
	default:
		return "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError
	}
}

// writeServiceError maps an ApplicationService error onto the JSON envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	msg, code, status := serviceError(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
	}
	writeError(w, r, msg, code, status)
}
