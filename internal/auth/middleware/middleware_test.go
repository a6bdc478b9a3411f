package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credit-it/backend/internal/auth"
	"github.com/credit-it/backend/internal/models"
)

func newTokenGenerator() *auth.TokenGenerator {
	return auth.NewTokenGenerator("test-secret", 1*time.Hour, 7*24*time.Hour)
}

// okHandler records whether the guarded handler was reached and what identity
// the guard injected into the context.
func okHandler(t *testing.T, called *bool, wantAccountID, wantRole int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true

		accountID, ok := GetAccountID(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantAccountID, accountID)

		role, ok := GetRole(r.Context())
		require.True(t, ok)
		assert.Equal(t, wantRole, role)

		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	tg := newTokenGenerator()

	t.Run("valid bearer token admits request", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(7, int(models.RoleStudent))
		require.NoError(t, err)

		called := false
		handler := AuthMiddleware(tg)(okHandler(t, &called, 7, int(models.RoleStudent)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid cookie token admits request", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(9, int(models.RoleFaculty))
		require.NoError(t, err)

		called := false
		handler := AuthMiddleware(tg)(okHandler(t, &called, 9, int(models.RoleFaculty)))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: accessToken})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.True(t, called)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token rejected with 401", func(t *testing.T) {
		called := false
		handler := AuthMiddleware(tg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token rejected with 401", func(t *testing.T) {
		called := false
		handler := AuthMiddleware(tg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token rejected with 401", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(7, int(models.RoleStudent))
		require.NoError(t, err)

		called := false
		handler := AuthMiddleware(tg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+refreshToken)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRoleMiddleware(t *testing.T) {
	tg := newTokenGenerator()

	tests := []struct {
		name         string
		tokenRole    models.Role
		allowedRoles []models.Role
		wantStatus   int
		wantCalled   bool
	}{
		{
			name:         "matching role admitted",
			tokenRole:    models.RoleFaculty,
			allowedRoles: []models.Role{models.RoleFaculty},
			wantStatus:   http.StatusOK,
			wantCalled:   true,
		},
		{
			name:         "student rejected from faculty route",
			tokenRole:    models.RoleStudent,
			allowedRoles: []models.Role{models.RoleFaculty},
			wantStatus:   http.StatusForbidden,
			wantCalled:   false,
		},
		{
			name:         "faculty rejected from student route",
			tokenRole:    models.RoleFaculty,
			allowedRoles: []models.Role{models.RoleStudent},
			wantStatus:   http.StatusForbidden,
			wantCalled:   false,
		},
		{
			name:         "role in multi-role allow list admitted",
			tokenRole:    models.RoleStudent,
			allowedRoles: []models.Role{models.RoleStudent, models.RoleFaculty},
			wantStatus:   http.StatusOK,
			wantCalled:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accessToken, _, err := tg.GenerateTokens(5, int(tt.tokenRole))
			require.NoError(t, err)

			called := false
			handler := RoleMiddleware(tg, tt.allowedRoles...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", "Bearer "+accessToken)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	t.Run("missing token rejected with 401 not 403", func(t *testing.T) {
		called := false
		handler := RoleMiddleware(tg, models.RoleFaculty)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token rejected with 401 not 403", func(t *testing.T) {
		called := false
		handler := RoleMiddleware(tg, models.RoleFaculty)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer broken")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		provided   string
		wantStatus int
		wantCalled bool
	}{
		{
			name:       "matching key admitted",
			configured: "secret-key",
			provided:   "secret-key",
			wantStatus: http.StatusOK,
			wantCalled: true,
		},
		{
			name:       "wrong key rejected",
			configured: "secret-key",
			provided:   "other-key",
			wantStatus: http.StatusUnauthorized,
			wantCalled: false,
		},
		{
			name:       "missing key rejected",
			configured: "secret-key",
			provided:   "",
			wantStatus: http.StatusUnauthorized,
			wantCalled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := APIKeyMiddleware(tt.configured)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.provided != "" {
				req.Header.Set("X-API-Key", tt.provided)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCalled, called)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
