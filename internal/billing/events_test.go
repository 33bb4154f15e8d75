package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DukeRupert/vitrine/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func newEvent(t *testing.T, id, eventType string, created int64, object interface{}) stripe.Event {
	t.Helper()
	raw, err := json.Marshal(object)
	require.NoError(t, err)
	return stripe.Event{
		ID:      id,
		Type:    stripe.EventType(eventType),
		Created: created,
		Data:    &stripe.EventData{Raw: raw},
	}
}

func TestTranslateEvent_InvoicePaymentSucceeded(t *testing.T) {
	professionalID := uuid.New()
	planID := uuid.New()
	periodEnd := time.Date(2026, 11, 17, 0, 0, 0, 0, time.UTC)

	invoice := map[string]interface{}{
		"id":       "in_123",
		"object":   "invoice",
		"customer": "cus_abc",
		"subscription_details": map[string]interface{}{
			"metadata": map[string]string{
				MetadataProfessionalID: professionalID.String(),
				MetadataPlanID:         planID.String(),
			},
		},
		"lines": map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{
					"id":     "il_1",
					"object": "line_item",
					"price":  map[string]interface{}{"id": "price_pro", "object": "price"},
					"period": map[string]interface{}{"start": periodEnd.AddDate(0, -1, 0).Unix(), "end": periodEnd.Unix()},
				},
			},
		},
	}
	event := newEvent(t, "evt_1", EventInvoicePaymentSucceeded, 1760000000, invoice)

	pe, ok, err := TranslateEvent(event)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, domain.PaymentEventConfirmed, pe.Type)
	assert.Equal(t, "evt_1", pe.TransactionID)
	assert.Equal(t, "cus_abc", pe.ExternalCustomerRef)
	require.NotNil(t, pe.ProfessionalID)
	assert.Equal(t, professionalID, *pe.ProfessionalID)
	require.NotNil(t, pe.PlanID)
	assert.Equal(t, planID, *pe.PlanID)
	assert.Equal(t, "price_pro", pe.PriceID)
	assert.True(t, periodEnd.Equal(pe.PeriodEnd))
	assert.True(t, time.Unix(1760000000, 0).Equal(pe.OccurredAt))
	assert.NotEmpty(t, pe.Payload)
	assert.NoError(t, pe.Validate("test"))
}

func TestTranslateEvent_InvoicePaymentFailed(t *testing.T) {
	invoice := map[string]interface{}{
		"id":       "in_456",
		"object":   "invoice",
		"customer": "cus_abc",
	}
	event := newEvent(t, "evt_2", EventInvoicePaymentFailed, 1760000100, invoice)

	pe, ok, err := TranslateEvent(event)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, domain.PaymentEventFailed, pe.Type)
	assert.Equal(t, "cus_abc", pe.ExternalCustomerRef)
	assert.Nil(t, pe.ProfessionalID)
	assert.NoError(t, pe.Validate("test"))
}

func TestTranslateEvent_SubscriptionDeleted(t *testing.T) {
	professionalID := uuid.New()
	sub := map[string]interface{}{
		"id":       "sub_1",
		"object":   "subscription",
		"customer": "cus_abc",
		"metadata": map[string]string{MetadataProfessionalID: professionalID.String()},
	}
	event := newEvent(t, "evt_3", EventCustomerSubscriptionDeleted, 1760000200, sub)

	pe, ok, err := TranslateEvent(event)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, domain.PaymentEventCanceled, pe.Type)
	require.NotNil(t, pe.ProfessionalID)
	assert.Equal(t, professionalID, *pe.ProfessionalID)
}

func TestTranslateEvent_IgnoresOtherTypes(t *testing.T) {
	event := newEvent(t, "evt_4", "customer.created", 1760000300, map[string]string{"id": "cus_x"})

	_, ok, err := TranslateEvent(event)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTranslateEvent_InvalidMetadata(t *testing.T) {
	invoice := map[string]interface{}{
		"id":       "in_789",
		"object":   "invoice",
		"customer": "cus_abc",
		"metadata": map[string]string{MetadataProfessionalID: "not-a-uuid"},
	}
	event := newEvent(t, "evt_5", EventInvoicePaymentSucceeded, 1760000400, invoice)

	_, ok, err := TranslateEvent(event)
	assert.True(t, ok)
	assert.Error(t, err)
}
