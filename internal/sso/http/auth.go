package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/ssobridge/pkg/httpx"
)

// adminAuth guards the configuration endpoints with a static bearer token.
// An empty configured token disables the admin surface entirely rather than
// leaving it open.
func adminAuth(token string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				httpx.WriteJSON(w, http.StatusForbidden, ErrorResponse{
					Error:   "forbidden",
					Message: "admin API is not enabled",
				})
				return
			}

			presented := extractBearerToken(r)
			if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="admin"`)
				httpx.WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
					Error:   "unauthorized",
					Message: "missing or invalid admin token",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
		return parts[1]
	}
	return ""
}
