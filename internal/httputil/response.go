package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/redmonkez12/learnhub-api/internal/apperror"
	"github.com/redmonkez12/learnhub-api/internal/logging"
)

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// MessageResponse is the acknowledgement body used by write endpoints without a payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondJSON sends a JSON response with the given status code.
// Logs encoding errors to avoid silent failures.
func RespondJSON(w http.ResponseWriter, r *http.Request, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// RespondErrorWithCode sends a JSON error response with a machine-readable error code.
func RespondErrorWithCode(w http.ResponseWriter, r *http.Request, message, code string, statusCode int) {
	RespondJSON(w, r, ErrorResponse{Error: message, Code: code}, statusCode)
}

// RespondAppError converts err to a response at the request boundary.
// Internal errors are logged with their cause and answered with a generic body.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.GetLoggerFromContext(r.Context())

	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind == apperror.KindInternal {
		logger.Error("request failed", "error", err.Error())
		message, code := "internal server error", CodeInternalError
		if ok && appErr.Code != "" {
			message, code = appErr.Message, appErr.Code
		}
		RespondErrorWithCode(w, r, message, code, http.StatusInternalServerError)
		return
	}

	logger.Warn("request rejected", "kind", appErr.Kind.String(), "code", appErr.Code, "error", appErr.Message)
	RespondErrorWithCode(w, r, appErr.Message, appErr.Code, StatusFor(appErr.Kind))
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation, apperror.KindConflict:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
