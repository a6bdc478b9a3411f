// Package middleware implements the route guard layer: request authentication
// and role-based access checks backed by the access token.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/credit-it/backend/internal/auth"
)

type contextKey string

const (
	accountIDKey contextKey = "accountID"
	roleKey      contextKey = "role"
)

// AuthMiddleware validates the JWT access token and injects the account identity
// into the request context. Unauthenticated requests are rejected with 401.
func AuthMiddleware(tokenGenerator *auth.TokenGenerator) func(http.Handler) http.Handler {
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

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), accountID, role)))
		})
	}
}

// extractToken pulls the access token from the Authorization header or the
// access_token cookie, preferring the header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
			return parts[1]
		}
	}

	cookie, err := r.Cookie("access_token")
	if err == nil {
		return cookie.Value
	}

	return ""
}

// withIdentity stores the authenticated account identity in the context
func withIdentity(ctx context.Context, accountID, role int) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	return context.WithValue(ctx, roleKey, role)
}

// GetAccountID retrieves the account ID from context
func GetAccountID(ctx context.Context) (int, bool) {
	accountID, ok := ctx.Value(accountIDKey).(int)
	return accountID, ok
}

// GetRole retrieves the account role from context
func GetRole(ctx context.Context) (int, bool) {
	role, ok := ctx.Value(roleKey).(int)
	return role, ok
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
