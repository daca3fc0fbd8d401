package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// BearerToken rejects requests whose Authorization header does not carry the
// token. An empty token leaves the wrapped handler open.
func BearerToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if !strings.HasPrefix(authz, "Bearer ") {
				WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}
			given := strings.TrimPrefix(authz, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MetricsAuth gates the metrics endpoint. Unlike BearerToken it fails closed:
// with no token configured every request is refused.
func MetricsAuth(token string) func(http.Handler) http.Handler {
	if token == "" {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				WriteError(w, r, http.StatusForbidden, "forbidden", nil)
			})
		}
	}
	return BearerToken(token)
}
