package middleware

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBasicAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		mw         *BasicAuthMiddleware
		setAuth    func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "valid credentials",
			mw:         NewMetricsAuthMiddleware("admin", "secret123"),
			setAuth:    func(r *http.Request) { r.SetBasicAuth("admin", "secret123") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "no credentials",
			mw:         NewMetricsAuthMiddleware("admin", "secret123"),
			setAuth:    func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong username",
			mw:         NewMetricsAuthMiddleware("admin", "secret123"),
			setAuth:    func(r *http.Request) { r.SetBasicAuth("root", "secret123") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong password",
			mw:         NewAdminAuthMiddleware("admin", "secret123"),
			setAuth:    func(r *http.Request) { r.SetBasicAuth("admin", "wrong") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			mw:         NewAdminAuthMiddleware("admin", "secret123"),
			setAuth:    func(r *http.Request) { r.Header.Set("Authorization", "Basic !!!notbase64") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "header injection",
			mw:   NewAdminAuthMiddleware("admin", "secret123"),
			setAuth: func(r *http.Request) {
				malicious := base64.StdEncoding.EncodeToString([]byte("admin:secret123\r\nX-Injected: header"))
				r.Header.Set("Authorization", "Basic "+malicious)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "metrics open without credentials",
			mw:         NewMetricsAuthMiddleware("", ""),
			setAuth:    func(r *http.Request) {},
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin closed without credentials",
			mw:         NewAdminAuthMiddleware("", ""),
			setAuth:    func(r *http.Request) { r.SetBasicAuth("", "") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			wrapped := tt.mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/admin/categories", nil)
			tt.setAuth(req)
			rec := httptest.NewRecorder()
			wrapped.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantStatus == http.StatusOK, called)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.True(t, strings.HasPrefix(rec.Header().Get("WWW-Authenticate"), "Basic realm="))
			}
		})
	}
}

func TestStack_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Stack(mark("outer"), mark("inner"))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}

func TestBasicAuthMiddleware_BcryptPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	mw := NewAdminAuthMiddleware("admin", string(hash))
	wrapped := mw.Handler(okHandler())

	tests := []struct {
		password string
		want     int
	}{
		{"secret123", http.StatusOK},
		{"wrong", http.StatusUnauthorized},
		{string(hash), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/admin/subscriptions/expire", nil)
		req.SetBasicAuth("admin", tt.password)
		rec := httptest.NewRecorder()
		wrapped.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, tt.password)
	}
}
