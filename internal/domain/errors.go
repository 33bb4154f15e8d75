package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Application error codes
const (
	EINVALID      = "invalid"               // Invalid input or validation failure
	EUNAUTHORIZED = "unauthorized"          // Authentication required
	EFORBIDDEN    = "forbidden"             // Permission denied
	ENOTFOUND     = "not_found"             // Resource not found
	ECONFLICT     = "conflict"              // Resource conflict (e.g., duplicate)
	ETOOLARGE     = "too_large"             // Request entity too large
	ERATELIMIT    = "rate_limit"            // Rate limit exceeded
	EINTERNAL     = "internal"              // Internal server error
	ENOTIMPL      = "not_impl"              // Not implemented
	EPAYMENT      = "payment"               // Payment required
	EQUOTA        = "quota_exceeded"        // Plan quota used up
	EINACTIVE     = "subscription_inactive" // Gated action while not active
)

// Error represents an application error with structured information.
type Error struct {
	Code    string // Machine-readable error code
	Op      string // Operation that failed (e.g., "quota.submit_contact")
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf creates a new Error with the given code, operation, and formatted message.
func Errorf(code, op, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, code, op, message string) *Error {
	return &Error{
		Code:    code,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// ErrorCode returns the code of the root error, or EINTERNAL if none.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return EQUOTA
	}
	var se *SubscriptionInactiveError
	if errors.As(err, &se) {
		return EINACTIVE
	}
	var me *MarkReadError
	if errors.As(err, &me) {
		return EINVALID
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return EINVALID
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns the human-readable message of the error.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe.Message()
	}
	var se *SubscriptionInactiveError
	if errors.As(err, &se) {
		return se.Message()
	}
	var me *MarkReadError
	if errors.As(err, &me) {
		return "Some notifications could not be marked as read."
	}
	var e *Error
	if errors.As(err, &e) {
		// For internal errors, return generic message
		if e.Code == EINTERNAL {
			return "An internal error occurred. Please try again later."
		}
		return e.Message
	}
	return "An internal error occurred. Please try again later."
}

// ErrorOp returns the operation of the root error, if any.
func ErrorOp(err error) string {
	if err == nil {
		return ""
	}
	var qe *QuotaExceededError
	if errors.As(err, &qe) {
		return qe.Op
	}
	var se *SubscriptionInactiveError
	if errors.As(err, &se) {
		return se.Op
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}

// Convenience constructors for common error types

// NotFound creates a not found error.
func NotFound(op, resource, id string) *Error {
	return &Error{
		Code:    ENOTFOUND,
		Op:      op,
		Message: fmt.Sprintf("%s with ID %q not found", resource, id),
	}
}

// Invalid creates a validation error.
func Invalid(op, message string) *Error {
	return &Error{
		Code:    EINVALID,
		Op:      op,
		Message: message,
	}
}

// Forbidden creates a permission error.
func Forbidden(op, message string) *Error {
	return &Error{
		Code:    EFORBIDDEN,
		Op:      op,
		Message: message,
	}
}

// Conflict creates a conflict error.
func Conflict(op, message string) *Error {
	return &Error{
		Code:    ECONFLICT,
		Op:      op,
		Message: message,
	}
}

// Internal creates an internal error, wrapping the underlying error.
// Store failures travel through here unmodified in Err.
func Internal(err error, op, message string) *Error {
	return &Error{
		Code:    EINTERNAL,
		Op:      op,
		Message: message,
		Err:     err,
	}
}

// =============================================================================
// Business outcome errors
// =============================================================================

// QuotaExceededError is returned when a plan limit blocks a contact or photo.
// It carries the usage numbers so callers can render an upgrade prompt.
type QuotaExceededError struct {
	Op       string
	Resource QuotaResource
	Usage    QuotaSnapshot
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s: %s quota exceeded (%d/%d)", e.Op, e.Resource, e.Usage.Used, e.Usage.Limit)
}

// Message returns the user-facing text.
func (e *QuotaExceededError) Message() string {
	switch e.Resource {
	case QuotaResourcePhotos:
		return fmt.Sprintf("Portfolio limit reached (%d of %d photos). Upgrade your plan to add more.", e.Usage.Used, e.Usage.Limit)
	default:
		return fmt.Sprintf("Monthly contact limit reached (%d of %d). Upgrade your plan to receive more contacts.", e.Usage.Used, e.Usage.Limit)
	}
}

// QuotaExceeded creates a QuotaExceededError.
func QuotaExceeded(op string, resource QuotaResource, usage QuotaSnapshot) *QuotaExceededError {
	return &QuotaExceededError{Op: op, Resource: resource, Usage: usage}
}

// SubscriptionInactiveError is returned when a gated action is attempted by a
// professional whose subscription is not active.
type SubscriptionInactiveError struct {
	Op     string
	Reason InactiveReason
}

func (e *SubscriptionInactiveError) Error() string {
	return fmt.Sprintf("%s: subscription inactive (%s)", e.Op, e.Reason)
}

// Message returns the user-facing text.
func (e *SubscriptionInactiveError) Message() string {
	switch e.Reason {
	case InactiveReasonPending:
		return "Your subscription is awaiting payment."
	case InactiveReasonAdminDeactivated:
		return "Your account was deactivated. Please contact support."
	default:
		return "Your subscription has expired. Renew it to continue."
	}
}

// SubscriptionInactive creates a SubscriptionInactiveError.
func SubscriptionInactive(op string, reason InactiveReason) *SubscriptionInactiveError {
	return &SubscriptionInactiveError{Op: op, Reason: reason}
}

// MarkReadError lists the notifications a bulk mark-read could not apply.
// When it is returned nothing was written.
type MarkReadError struct {
	Op     string
	Failed []uuid.UUID
}

func (e *MarkReadError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, id := range e.Failed {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s: %d notification(s) not found: %s", e.Op, len(e.Failed), strings.Join(ids, ", "))
}

// ValidationError represents field-level validation errors.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: validation failed", e.Op)
}

// NewValidationError creates a new validation error with the first field error.
func NewValidationError(op, field, message string) *ValidationError {
	return &ValidationError{
		Op: op,
		Fields: map[string]string{
			field: message,
		},
	}
}

// AddFieldError adds a field error to an existing validation error.
// If err is not a ValidationError, returns a new one.
func AddFieldError(err error, field, message string) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return NewValidationError("", field, message)
}
