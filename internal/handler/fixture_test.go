package handler

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DukeRupert/vitrine/internal/billing"
	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/DukeRupert/vitrine/internal/repository/repotest"
	"github.com/DukeRupert/vitrine/internal/service"
	"github.com/DukeRupert/vitrine/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeBilling returns a prepared event from VerifyWebhookSignature.
type fakeBilling struct {
	event     stripe.Event
	verifyErr error
}

func (b *fakeBilling) CreateCustomer(email, name string, professionalID uuid.UUID) (string, error) {
	return "cus_" + professionalID.String()[:8], nil
}

func (b *fakeBilling) CreateCheckoutSession(params billing.CheckoutParams) (string, error) {
	return "https://checkout.stripe.test/" + params.PriceID, nil
}

func (b *fakeBilling) CreatePortalSession(customerID, returnURL string) (string, error) {
	return "https://billing.stripe.test/" + customerID, nil
}

func (b *fakeBilling) VerifyWebhookSignature(payload []byte, signature string) (stripe.Event, error) {
	if b.verifyErr != nil {
		return stripe.Event{}, b.verifyErr
	}
	return b.event, nil
}

// testServer wires every handler over an in-memory store.
type testServer struct {
	t        *testing.T
	store    *repotest.Store
	billing  *fakeBilling
	mux      *http.ServeMux
	basic    repository.Plan
	premium  repository.Plan
	category repository.Category
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := repotest.New()
	ts := &testServer{t: t, store: store, billing: &fakeBilling{}}

	ts.basic = store.AddPlan(repository.Plan{
		Name:          "Básico",
		Slug:          "basico",
		MaxContacts:   sql.NullInt32{Int32: 10, Valid: true},
		MaxPhotos:     sql.NullInt32{Int32: 5, Valid: true},
		MonthlyPrice:  decimal.RequireFromString("29.90"),
		StripePriceID: sql.NullString{String: "price_basico", Valid: true},
	})
	ts.premium = store.AddPlan(repository.Plan{
		Name:          "Premium",
		Slug:          "premium",
		MonthlyPrice:  decimal.RequireFromString("99.90"),
		IsFeatured:    true,
		StripePriceID: sql.NullString{String: "price_premium", Valid: true},
	})
	ts.category = store.AddCategory(repository.Category{Name: "Eletricista", Slug: "eletricista"})

	files, err := storage.NewLocalStorage(storage.LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files",
	}, testLogger())
	require.NoError(t, err)

	logger := testLogger()
	plans := service.NewPlanService(store, nil, 0, logger)
	professionals := service.NewProfessionalService(store, plans, logger)
	quota := service.NewQuotaService(store, plans, time.UTC, logger)
	portfolio := service.NewPortfolioService(store, plans, files, service.NewImagingProcessor(), logger)
	reviews := service.NewReviewService(store, logger)
	ranking := service.NewRankingService(store, logger)
	notifications := service.NewNotificationService(store, 30*24*time.Hour, 50, logger)
	subscriptions := service.NewSubscriptionService(store, plans, ts.billing, "https://vitrine.test", logger)

	passthrough := func(next http.Handler) http.Handler { return next }

	ts.mux = http.NewServeMux()
	NewCatalogHandler(plans, professionals, ranking, logger).RegisterRoutes(ts.mux)
	NewProfessionalHandler(professionals, quota, ranking, subscriptions, logger).RegisterRoutes(ts.mux)
	NewEngagementHandler(quota, reviews, logger).RegisterRoutes(ts.mux, passthrough)
	NewNotificationHandler(notifications, logger).RegisterRoutes(ts.mux)
	NewPortfolioHandler(portfolio, logger).RegisterRoutes(ts.mux)
	NewAdminHandler(subscriptions, professionals, reviews, logger).RegisterRoutes(ts.mux, passthrough)
	NewWebhookHandler(ts.billing, subscriptions, logger).RegisterRoutes(ts.mux)

	return ts
}

// activeProfessional seeds a professional paid for the next month.
func (ts *testServer) activeProfessional(plan repository.Plan, name string) repository.Professional {
	now := time.Now()
	return ts.store.AddProfessional(repository.Professional{
		Name:                  name,
		Email:                 uuid.NewString() + "@example.com",
		CategoryID:            ts.category.ID,
		PlanID:                plan.ID,
		Status:                "active",
		SubscriptionExpiresAt: sql.NullTime{Time: now.AddDate(0, 1, 0), Valid: true},
		SubscriptionEventAt:   sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
		Rating:                decimal.Zero,
	})
}

func (ts *testServer) pendingProfessional(plan repository.Plan) repository.Professional {
	return ts.store.AddProfessional(repository.Professional{
		Name:       "Bruno Lima",
		Email:      uuid.NewString() + "@example.com",
		CategoryID: ts.category.ID,
		PlanID:     plan.ID,
		Status:     "pending",
		Rating:     decimal.Zero,
	})
}

func (ts *testServer) addContacts(professionalID uuid.UUID, n int) {
	for i := 0; i < n; i++ {
		ts.store.AddContactEvent(repository.ContactEvent{
			ProfessionalID: professionalID,
			CustomerName:   "Cliente",
			ContactMethod:  "whatsapp",
			CreatedAt:      time.Now(),
		})
	}
}

// do sends a request with an optional JSON body.
func (ts *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	ts.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.mux.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the response body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

var errStoreDown = errors.New("connection refused")
