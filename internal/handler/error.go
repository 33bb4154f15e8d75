package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// ErrorResponse writes a JSON error response to the client.
// It maps domain error codes to HTTP status codes and attaches the details
// a client needs to act on business outcomes (quota usage, inactive reason,
// failed notification ids, invalid fields).
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	op := domain.ErrorOp(err)

	status := ErrorCodeToHTTPStatus(code)

	logError(logger, r, err, code, op, status)

	body := JSONError{}
	body.Error.Code = code
	body.Error.Message = message

	var (
		qe *domain.QuotaExceededError
		se *domain.SubscriptionInactiveError
		me *domain.MarkReadError
		ve *domain.ValidationError
	)
	switch {
	case errors.As(err, &qe):
		usage := newUsageResponse(qe.Usage)
		body.Error.Usage = &usage
	case errors.As(err, &se):
		body.Error.Reason = string(se.Reason)
	case errors.As(err, &me):
		body.Error.Failed = me.Failed
	case errors.As(err, &ve):
		body.Error.Message = "Validation failed"
		body.Error.Fields = ve.Fields
	}

	writeJSON(w, status, body)
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized // 401
	case domain.EPAYMENT, domain.EQUOTA:
		return http.StatusPaymentRequired // 402
	case domain.EFORBIDDEN, domain.EINACTIVE:
		return http.StatusForbidden // 403
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT:
		return http.StatusConflict // 409
	case domain.ETOOLARGE:
		return http.StatusRequestEntityTooLarge // 413
	case domain.ERATELIMIT:
		return http.StatusTooManyRequests // 429
	case domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	case domain.ENOTIMPL:
		return http.StatusNotImplemented // 501
	default:
		return http.StatusInternalServerError // 500
	}
}

// NotFoundResponse is a convenience wrapper for 404 errors.
func NotFoundResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	err := domain.Errorf(domain.ENOTFOUND, "", "The requested resource was not found")
	ErrorResponse(w, r, logger, err)
}

// BadRequestResponse reports a malformed request body or parameter.
func BadRequestResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string) {
	ErrorResponse(w, r, logger, domain.Invalid("", message))
}

// InternalErrorResponse logs the error and returns a generic 500 response.
// The underlying error details are hidden from the user.
func InternalErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	wrappedErr := domain.Internal(err, "", "An unexpected error occurred")
	ErrorResponse(w, r, logger, wrappedErr)
}

// logError logs the error with appropriate level based on status code.
func logError(logger *slog.Logger, r *http.Request, err error, code, op string, status int) {
	attrs := []any{
		"error", err.Error(),
		"code", code,
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
	}

	if op != "" {
		attrs = append(attrs, "op", op)
	}

	// 5xx are server-side problems, 4xx are expected client outcomes.
	if status >= 500 {
		logger.Error("server error", attrs...)
		if hub := sentry.GetHubFromContext(r.Context()); hub != nil {
			hub.CaptureException(err)
		}
	} else if status >= 400 {
		logger.Info("client error", attrs...)
	}
}

// JSONError is the body of every API error.
type JSONError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
		Usage   *UsageResponse    `json:"usage,omitempty"`
		Reason  string            `json:"reason,omitempty"`
		Failed  []uuid.UUID       `json:"failed,omitempty"`
	} `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
