package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterProfessional(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do("POST", "/professionals", map[string]interface{}{
		"name":        "  Ana Souza ",
		"email":       "Ana@Example.com",
		"city":        "Campinas",
		"category_id": ts.category.ID,
		"plan_id":     ts.basic.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp ProfessionalResponse
	decode(t, rec, &resp)
	assert.NotEqual(t, uuid.Nil, resp.ID)
	assert.Equal(t, "Ana Souza", resp.Name)
	assert.Equal(t, "ana@example.com", resp.Email)
	assert.False(t, resp.Active)
	assert.Equal(t, "pending", resp.InactiveReason)
	assert.Nil(t, resp.SubscriptionExpiresAt)
	assert.Equal(t, "0.00", resp.Rating)
}

func TestRegisterProfessional_Invalid(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{
			name:      "missing name",
			body:      map[string]interface{}{"email": "ana@example.com", "category_id": ts.category.ID, "plan_id": ts.basic.ID},
			wantField: "name",
		},
		{
			name:      "bad email",
			body:      map[string]interface{}{"name": "Ana", "email": "ana", "category_id": ts.category.ID, "plan_id": ts.basic.ID},
			wantField: "email",
		},
		{
			name:      "unknown plan",
			body:      map[string]interface{}{"name": "Ana", "email": "ana@example.com", "category_id": ts.category.ID, "plan_id": uuid.New()},
			wantField: "plan_id",
		},
		{
			name:      "unknown category",
			body:      map[string]interface{}{"name": "Ana", "email": "ana@example.com", "category_id": uuid.New(), "plan_id": ts.basic.ID},
			wantField: "category_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do("POST", "/professionals", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body JSONError
			decode(t, rec, &body)
			assert.Contains(t, body.Error.Fields, tt.wantField)
		})
	}
}

func TestGetProfessional(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")

	rec := ts.do("GET", "/professionals/"+pro.ID.String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp ProfessionalResponse
	decode(t, rec, &resp)
	assert.Equal(t, pro.ID, resp.ID)
	assert.True(t, resp.Active)
	assert.Empty(t, resp.InactiveReason)
	require.NotNil(t, resp.SubscriptionExpiresAt)

	rec = ts.do("GET", "/professionals/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateProfile_MergesPresentFields(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")

	rec := ts.do("PATCH", "/professionals/"+pro.ID.String(), map[string]string{
		"city":        "Campinas",
		"description": "Instalações residenciais",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ProfessionalResponse
	decode(t, rec, &resp)
	assert.Equal(t, "Ana Souza", resp.Name)
	assert.Equal(t, "Campinas", resp.City)
	assert.Equal(t, "Instalações residenciais", resp.Description)
}

func TestUsage(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")
	ts.addContacts(pro.ID, 8)

	rec := ts.do("GET", "/professionals/"+pro.ID.String()+"/usage", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]UsageResponse
	decode(t, rec, &resp)

	contacts := resp["contacts"]
	assert.Equal(t, int64(8), contacts.Used)
	require.NotNil(t, contacts.Remaining)
	assert.Equal(t, int64(2), *contacts.Remaining)
	assert.True(t, contacts.ApproachingLimit)
	assert.False(t, contacts.LimitReached)

	photos := resp["photos"]
	assert.Equal(t, int64(0), photos.Used)
	require.NotNil(t, photos.Limit)
	assert.Equal(t, int64(5), *photos.Limit)
}

func TestRankingPosition(t *testing.T) {
	ts := newTestServer(t)
	ts.rated(ts.basic, "Ana Souza", "Campinas", "4.80", 12)
	bruno := ts.rated(ts.basic, "Bruno Lima", "Santos", "4.20", 30)
	pending := ts.pendingProfessional(ts.basic)

	tests := []struct {
		name         string
		id           uuid.UUID
		wantPosition int
		wantListed   bool
	}{
		{"ranked second", bruno.ID, 2, true},
		{"pending is not listed", pending.ID, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do("GET", "/professionals/"+tt.id.String()+"/ranking", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

			var resp struct {
				Position int    `json:"position"`
				Category string `json:"category"`
				Listed   bool   `json:"listed"`
			}
			decode(t, rec, &resp)
			assert.Equal(t, tt.wantPosition, resp.Position)
			assert.Equal(t, tt.wantListed, resp.Listed)
			assert.Equal(t, "Eletricista", resp.Category)
		})
	}
}

func TestCheckout(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.pendingProfessional(ts.basic)
	path := "/professionals/" + pro.ID.String() + "/checkout"

	rec := ts.do("POST", path, map[string]interface{}{"plan_id": ts.premium.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]string
	decode(t, rec, &resp)
	assert.Equal(t, "https://checkout.stripe.test/price_premium", resp["checkout_url"])

	rec = ts.do("POST", path, map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body JSONError
	decode(t, rec, &body)
	assert.Contains(t, body.Error.Fields, "plan_id")

	rec = ts.do("POST", path, map[string]interface{}{"plan_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubscriptionHistory_Empty(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.pendingProfessional(ts.basic)

	rec := ts.do("GET", "/professionals/"+pro.ID.String()+"/subscription", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		History []HistoryResponse `json:"history"`
	}
	decode(t, rec, &resp)
	assert.Empty(t, resp.History)
}

// Owner routes rely on the upstream gateway for authentication, so the
// service itself answers them without credentials.
func TestOwnerRoutes_NoInProcessAuth(t *testing.T) {
	ts := newTestServer(t)
	pro := ts.activeProfessional(ts.basic, "Ana Souza")

	tests := []struct {
		method string
		path   string
		body   interface{}
	}{
		{"PATCH", "/professionals/" + pro.ID.String(), map[string]string{"city": "Santos"}},
		{"GET", "/professionals/" + pro.ID.String() + "/usage", nil},
		{"GET", "/professionals/" + pro.ID.String() + "/subscription", nil},
		{"GET", "/professionals/" + pro.ID.String() + "/notifications", nil},
		{"POST", "/professionals/" + pro.ID.String() + "/notifications/read-all", nil},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := ts.do(tt.method, tt.path, tt.body)
			assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
			assert.Less(t, rec.Code, 300, rec.Body.String())
		})
	}
}
