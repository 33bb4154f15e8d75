package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EPAYMENT, http.StatusPaymentRequired},
		{domain.EQUOTA, http.StatusPaymentRequired},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.EINACTIVE, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.ETOOLARGE, http.StatusRequestEntityTooLarge},
		{domain.ERATELIMIT, http.StatusTooManyRequests},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{domain.ENOTIMPL, http.StatusNotImplemented},
		{"unknown", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCodeToHTTPStatus(tt.code))
		})
	}
}

func TestErrorResponse(t *testing.T) {
	failedID := uuid.New()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		check      func(t *testing.T, body JSONError)
	}{
		{
			name: "quota exceeded carries usage",
			err: domain.QuotaExceeded("quota.submit_contact", domain.QuotaResourceContacts, domain.QuotaSnapshot{
				Resource:     domain.QuotaResourceContacts,
				Used:         10,
				Limit:        10,
				LimitReached: true,
			}),
			wantStatus: http.StatusPaymentRequired,
			wantCode:   domain.EQUOTA,
			check: func(t *testing.T, body JSONError) {
				require.NotNil(t, body.Error.Usage)
				assert.Equal(t, int64(10), body.Error.Usage.Used)
				require.NotNil(t, body.Error.Usage.Limit)
				assert.Equal(t, int64(10), *body.Error.Usage.Limit)
				require.NotNil(t, body.Error.Usage.Remaining)
				assert.Equal(t, int64(0), *body.Error.Usage.Remaining)
				assert.True(t, body.Error.Usage.LimitReached)
				assert.Contains(t, body.Error.Message, "10 of 10")
			},
		},
		{
			name:       "inactive subscription carries reason",
			err:        domain.SubscriptionInactive("quota.submit_contact", domain.InactiveReasonExpired),
			wantStatus: http.StatusForbidden,
			wantCode:   domain.EINACTIVE,
			check: func(t *testing.T, body JSONError) {
				assert.Equal(t, "expired", body.Error.Reason)
				assert.Nil(t, body.Error.Usage)
			},
		},
		{
			name:       "mark read lists failed ids",
			err:        &domain.MarkReadError{Op: "notification.mark_all_read", Failed: []uuid.UUID{failedID}},
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.EINVALID,
			check: func(t *testing.T, body JSONError) {
				assert.Equal(t, []uuid.UUID{failedID}, body.Error.Failed)
			},
		},
		{
			name:       "validation error lists fields",
			err:        domain.NewValidationError("professional.register", "email", "A valid email is required"),
			wantStatus: http.StatusBadRequest,
			wantCode:   domain.EINVALID,
			check: func(t *testing.T, body JSONError) {
				assert.Equal(t, "Validation failed", body.Error.Message)
				assert.Equal(t, map[string]string{"email": "A valid email is required"}, body.Error.Fields)
			},
		},
		{
			name:       "unknown error is hidden",
			err:        errors.New("pq: relation \"professionals\" does not exist"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   domain.EINTERNAL,
			check: func(t *testing.T, body JSONError) {
				assert.NotContains(t, body.Error.Message, "professionals")
			},
		},
		{
			name:       "not found",
			err:        domain.NotFound("professional.get", "professional", "123"),
			wantStatus: http.StatusNotFound,
			wantCode:   domain.ENOTFOUND,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/professionals/x/contacts", nil)

			ErrorResponse(rec, req, testLogger(), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body JSONError
			decode(t, rec, &body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			if tt.check != nil {
				tt.check(t, body)
			}
		})
	}
}

func TestErrorResponse_DoesNotExposeOperationName(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/professionals", nil)

	ErrorResponse(rec, req, testLogger(), domain.NewValidationError("professional.register", "email", "Email is required"))

	assert.False(t, strings.Contains(rec.Body.String(), "professional.register"), rec.Body.String())
}
