package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuthMiddleware protects operator endpoints (admin, metrics) with
// HTTP basic authentication.
type BasicAuthMiddleware struct {
	realm    string
	username string
	password string
	enabled  bool
	// open lets requests through when no credentials are configured.
	open bool
}

// The configured password may be a bcrypt hash ("$2a$...", "$2b$...") so
// the plain text never has to live in the environment.

// NewMetricsAuthMiddleware creates basic auth for the metrics endpoint.
// If both username and password are empty, authentication is disabled.
func NewMetricsAuthMiddleware(username, password string) *BasicAuthMiddleware {
	return newBasicAuth("metrics", username, password, true)
}

// NewAdminAuthMiddleware creates basic auth for admin endpoints. Without
// configured credentials every request is rejected.
func NewAdminAuthMiddleware(username, password string) *BasicAuthMiddleware {
	return newBasicAuth("admin", username, password, false)
}

func newBasicAuth(realm, username, password string, open bool) *BasicAuthMiddleware {
	return &BasicAuthMiddleware{
		realm:    realm,
		username: username,
		password: password,
		enabled:  username != "" || password != "",
		open:     open,
	}
}

// Handler returns middleware that requires basic authentication.
func (m *BasicAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled {
			if m.open {
				next.ServeHTTP(w, r)
			} else {
				m.unauthorized(w)
			}
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok {
			m.unauthorized(w)
			return
		}

		// Constant-time comparison to prevent timing attacks
		userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(m.username)) == 1
		passMatch := m.passwordMatches(pass)

		if !userMatch || !passMatch {
			m.unauthorized(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *BasicAuthMiddleware) passwordMatches(pass string) bool {
	if isBcryptHash(m.password) {
		return bcrypt.CompareHashAndPassword([]byte(m.password), []byte(pass)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(m.password)) == 1
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}

// unauthorized sends a 401 response with WWW-Authenticate header.
func (m *BasicAuthMiddleware) unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", fmt.Sprintf("Basic realm=%q", m.realm))
	http.Error(w, "Unauthorized", http.StatusUnauthorized)
}

// Stack composes middleware so the first argument is the outermost.
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}
