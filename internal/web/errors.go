package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error and calls s.fail(w, r, err)
//  2. statusFor picks the HTTP status from the error's identity
//  3. core.MapError turns it into a user-friendly message
//  4. The technical error is logged with the request id for correlation
//  5. The client receives {success:false, error, message, action, code}

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/VendorHub/internal/core"
	"github.com/JonMunkholm/VendorHub/internal/logging"
	"github.com/JonMunkholm/VendorHub/internal/spreadsheet"
)

// MsgInternal replaces the message of every 5xx response.
const MsgInternal = "Internal server error"

var (
	errRateLimited = errors.New("rate limit exceeded")
	errBadJSON     = &core.InputError{Message: "request body must be valid JSON"}
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// fail responds with the status statusFor assigns to err.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, core.ErrTooManyImports) {
		w.Header().Set("Retry-After", "30")
	}
	respondError(w, r, err, statusFor(err))
}

// respondError logs the technical error server-side and writes the mapped
// user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= 500 {
		logger.Error("request error", attrs...)
	} else {
		logger.Info("request rejected", attrs...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	if statusCode >= 500 {
		resp.Error = MsgInternal
	}

	var inputErr *core.InputError
	var tierErr *core.TierChangeError
	switch {
	case errors.As(err, &tierErr):
		resp.Details = tierErr.Errors
	case errors.As(err, &inputErr) && inputErr.Field != "":
		resp.Details = map[string]string{inputErr.Field: inputErr.Message}
	}

	writeStatusJSON(w, statusCode, resp)
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	var inputErr *core.InputError
	var tierErr *core.TierChangeError

	switch {
	case errors.Is(err, core.ErrVendorNotFound), errors.Is(err, core.ErrRequestNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNotRequestOwner):
		return http.StatusForbidden
	case errors.Is(err, core.ErrPendingRequestExists), errors.Is(err, core.ErrInvalidTransition),
		errors.As(err, &tierErr):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyImports), errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrUnsupportedFile):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &inputErr),
		errors.Is(err, core.ErrSameTier),
		errors.Is(err, core.ErrInvalidTier),
		errors.Is(err, core.ErrNoFile),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, spreadsheet.ErrInvalidWorkbook),
		errors.Is(err, spreadsheet.ErrHeaderNotFound),
		errors.Is(err, spreadsheet.ErrNoDataRows),
		errors.Is(err, spreadsheet.ErrTooManyRows):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeStatusJSON encodes v as JSON with the given status.
// Encoding errors are logged since headers are already sent.
func writeStatusJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
