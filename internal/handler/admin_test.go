package handler

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DukeRupert/vitrine/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmin_Deactivate(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")
	path := "/admin/professionals/" + pro.ID.String() + "/deactivate"

	rec := ts.do("POST", path, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	rec = ts.do("POST", path, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, "deactivating twice is a no-op")

	rec = ts.do("GET", "/professionals/"+pro.ID.String(), nil)
	var resp ProfessionalResponse
	decode(t, rec, &resp)
	assert.False(t, resp.Active)
	assert.Equal(t, "admin_deactivated", resp.InactiveReason)

	rec = ts.do("POST", "/professionals/"+pro.ID.String()+"/contacts", contactBody())
	require.Equal(t, http.StatusForbidden, rec.Code)
	var body JSONError
	decode(t, rec, &body)
	assert.Equal(t, "admin_deactivated", body.Error.Reason)

	rec = ts.do("GET", "/professionals/"+pro.ID.String()+"/subscription", nil)
	var history struct {
		History []HistoryResponse `json:"history"`
	}
	decode(t, rec, &history)
	require.Len(t, history.History, 1)
	assert.Equal(t, "admin", history.History[0].Source)

	rec = ts.do("POST", "/admin/professionals/"+uuid.NewString()+"/deactivate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_CreateCategory(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("POST", "/admin/categories", map[string]string{"name": "Encanador Hidráulico"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created CategoryResponse
	decode(t, rec, &created)
	assert.Equal(t, "Encanador Hidráulico", created.Name)
	assert.Equal(t, "encanador-hidraulico", created.Slug)

	rec = ts.do("POST", "/admin/categories", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmin_VerifyReview(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")
	review := ts.store.AddReviewEvent(repository.ReviewEvent{
		ProfessionalID: pro.ID,
		CustomerName:   "Davi",
		Rating:         5,
	})

	rec := ts.do("POST", "/admin/reviews/"+review.ID.String()+"/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ReviewResponse
	decode(t, rec, &resp)
	assert.True(t, resp.IsVerified)

	rec = ts.do("POST", "/admin/reviews/"+uuid.NewString()+"/verify", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdmin_ExpireLapsed(t *testing.T) {
	ts := newTestServer(t)
	ts.activeProfessional(ts.basic, "Ana Souza")
	lapsed := ts.store.AddProfessional(repository.Professional{
		Name:                  "Bruno Lima",
		Email:                 uuid.NewString() + "@example.com",
		CategoryID:            ts.category.ID,
		PlanID:                ts.basic.ID,
		Status:                "active",
		SubscriptionExpiresAt: sql.NullTime{Time: time.Now().Add(-time.Hour), Valid: true},
		Rating:                decimal.Zero,
	})

	rec := ts.do("POST", "/admin/subscriptions/expire", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]int64
	decode(t, rec, &resp)
	assert.Equal(t, int64(1), resp["expired"])

	rec = ts.do("GET", "/professionals/"+lapsed.ID.String(), nil)
	var profile ProfessionalResponse
	decode(t, rec, &profile)
	assert.Equal(t, "expired", profile.InactiveReason)
}

func TestAdmin_RequiresAdmin(t *testing.T) {
	logger := testLogger()
	deny := func(http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
	}

	ts := newTestServer(t)
	mux := http.NewServeMux()
	NewAdminHandler(nil, nil, nil, logger).RegisterRoutes(mux, deny)

	for _, path := range []string{
		"/admin/professionals/" + uuid.NewString() + "/deactivate",
		"/admin/categories",
		"/admin/reviews/" + uuid.NewString() + "/verify",
		"/admin/subscriptions/expire",
	} {
		ts.mux = mux
		rec := ts.do("POST", path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
