package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DukeRupert/vitrine/internal/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

// paidInvoiceEvent builds an invoice.payment_succeeded event for the
// professional's subscription to plan.
func paidInvoiceEvent(t *testing.T, id string, professionalID, planID uuid.UUID, periodEnd time.Time) stripe.Event {
	t.Helper()
	invoice := map[string]interface{}{
		"id":       "in_" + id,
		"object":   "invoice",
		"customer": "cus_test",
		"subscription_details": map[string]interface{}{
			"metadata": map[string]string{
				billing.MetadataProfessionalID: professionalID.String(),
				billing.MetadataPlanID:         planID.String(),
			},
		},
		"lines": map[string]interface{}{
			"object": "list",
			"data": []map[string]interface{}{
				{
					"id":     "il_" + id,
					"object": "line_item",
					"price":  map[string]interface{}{"id": "price_basico", "object": "price"},
					"period": map[string]interface{}{"start": time.Now().Unix(), "end": periodEnd.Unix()},
				},
			},
		},
	}
	raw, err := json.Marshal(invoice)
	require.NoError(t, err)
	return stripe.Event{
		ID:      id,
		Type:    stripe.EventType(billing.EventInvoicePaymentSucceeded),
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
}

func (ts *testServer) deliver(event stripe.Event) *httptest.ResponseRecorder {
	ts.t.Helper()
	ts.billing.event = event
	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(`{"id":"`+event.ID+`"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=test")
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_PaymentActivatesProfessional(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.pendingProfessional(ts.basic)
	periodEnd := time.Now().AddDate(0, 1, 0).Truncate(time.Second)

	event := paidInvoiceEvent(t, "evt_paid", pro.ID, ts.basic.ID, periodEnd)
	rec := ts.deliver(event)
	require.Equal(t, http.StatusOK, rec.Code)

	record, ok := ts.store.PaymentEventRecord("evt_paid")
	require.True(t, ok)
	assert.Equal(t, "applied", record.Outcome)

	rec = ts.do("GET", "/professionals/"+pro.ID.String(), nil)
	var profile ProfessionalResponse
	decode(t, rec, &profile)
	assert.True(t, profile.Active)
	require.NotNil(t, profile.SubscriptionExpiresAt)
	assert.True(t, periodEnd.Equal(*profile.SubscriptionExpiresAt))

	// Redelivery is acknowledged and changes nothing.
	rec = ts.deliver(event)
	require.Equal(t, http.StatusOK, rec.Code)
	record, _ = ts.store.PaymentEventRecord("evt_paid")
	assert.Equal(t, "applied", record.Outcome)

	rec = ts.do("POST", "/professionals/"+pro.ID.String()+"/contacts", contactBody())
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestWebhook_Responses(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(ts *testServer) stripe.Event
		wantStatus int
	}{
		{
			name: "bad signature",
			setup: func(ts *testServer) stripe.Event {
				ts.billing.verifyErr = errors.New("signature mismatch")
				return stripe.Event{ID: "evt_bad"}
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "unhandled event type",
			setup: func(ts *testServer) stripe.Event {
				return stripe.Event{ID: "evt_other", Type: "customer.created", Data: &stripe.EventData{Raw: []byte(`{}`)}}
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unreadable payload",
			setup: func(ts *testServer) stripe.Event {
				return stripe.Event{
					ID:   "evt_broken",
					Type: stripe.EventType(billing.EventInvoicePaymentSucceeded),
					Data: &stripe.EventData{Raw: []byte(`{"lines": 7}`)},
				}
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unknown professional",
			setup: func(ts *testServer) stripe.Event {
				return paidInvoiceEvent(ts.t, "evt_nobody", uuid.New(), ts.basic.ID, time.Now().AddDate(0, 1, 0))
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "store unavailable",
			setup: func(ts *testServer) stripe.Event {
				pro := ts.pendingProfessional(ts.basic)
				ts.store.FailOn("InsertPaymentEvent", errStoreDown)
				return paidInvoiceEvent(ts.t, "evt_retry", pro.ID, ts.basic.ID, time.Now().AddDate(0, 1, 0))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			event := tt.setup(ts)

			rec := ts.deliver(event)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestWebhook_BillingNotConfigured(t *testing.T) {
	mux := http.NewServeMux()
	NewWebhookHandler(nil, nil, testLogger()).RegisterRoutes(mux)

	req := httptest.NewRequest("POST", "/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
