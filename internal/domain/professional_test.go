package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProfessional_IsActive(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	future := now.Add(24 * time.Hour)
	past := now.Add(-time.Second)

	tests := []struct {
		name       string
		status     ProfessionalStatus
		reason     StatusReason
		expiresAt  *time.Time
		wantActive bool
		wantReason InactiveReason
	}{
		{"active with future expiry", StatusActive, StatusReasonNone, &future, true, ""},
		{"active expiring exactly now", StatusActive, StatusReasonNone, &now, true, ""},
		{"stored active but expired", StatusActive, StatusReasonNone, &past, false, InactiveReasonExpired},
		{"active without expiry", StatusActive, StatusReasonNone, nil, false, InactiveReasonExpired},
		{"pending", StatusPending, StatusReasonNone, nil, false, InactiveReasonPending},
		{"pending with future expiry", StatusPending, StatusReasonNone, &future, false, InactiveReasonPending},
		{"inactive after payment failure", StatusInactive, StatusReasonPaymentFailed, &future, false, InactiveReasonExpired},
		{"inactive after cancel", StatusInactive, StatusReasonCanceled, &past, false, InactiveReasonExpired},
		{"deactivated by admin", StatusInactive, StatusReasonAdmin, &future, false, InactiveReasonAdminDeactivated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Professional{Status: tt.status, StatusReason: tt.reason, SubscriptionExpiresAt: tt.expiresAt}

			assert.Equal(t, tt.wantActive, p.IsActive(now))
			assert.Equal(t, tt.wantReason, p.InactiveReason(now))

			err := p.RequireActive("test.op", now)
			if tt.wantActive {
				assert.NoError(t, err)
			} else {
				var se *SubscriptionInactiveError
				if assert.ErrorAs(t, err, &se) {
					assert.Equal(t, tt.wantReason, se.Reason)
				}
			}
		})
	}
}

func TestProfessionalStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPending.IsValid())
	assert.True(t, StatusActive.IsValid())
	assert.True(t, StatusInactive.IsValid())
	assert.False(t, ProfessionalStatus("trialing").IsValid())
}
