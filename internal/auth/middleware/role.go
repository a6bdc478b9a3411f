package middleware

import (
	"net/http"
	"slices"

	"github.com/credit-it/backend/internal/auth"
	"github.com/credit-it/backend/internal/models"
)

// RoleMiddleware validates the JWT access token and admits the request only
// when the session role is one of allowedRoles. A session with a different
// role gets 403; a missing or invalid session gets 401. The check is a pure
// function of the presented token.
func RoleMiddleware(tokenGenerator *auth.TokenGenerator, allowedRoles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				respondUnauthorized(w, "authentication required")
				return
			}

			accountID, role, err := tokenGenerator.ValidateAccessToken(token)
			if err != nil {
				respondUnauthorized(w, "invalid or expired token")
				return
			}

			if !slices.Contains(allowedRoles, models.Role(role)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":"insufficient permissions"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), accountID, role)))
		})
	}
}
