package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/credit-it/backend/internal/auth"
	authMiddleware "github.com/credit-it/backend/internal/auth/middleware"
	"github.com/credit-it/backend/internal/models"
)

// mockAuthService is a mock implementation of AuthService
type mockAuthService struct {
	mu           sync.Mutex
	account      *models.Account
	accessToken  string
	refreshToken string
	err          error
	githubCodes  []string
	logoutTokens []string
}

func (m *mockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.Account, string, string, error) {
	if m.err != nil {
		return nil, "", "", m.err
	}
	return m.account, m.accessToken, m.refreshToken, nil
}

func (m *mockAuthService) GitHubLogin(ctx context.Context, code string) (*models.Account, string, string, error) {
	m.mu.Lock()
	m.githubCodes = append(m.githubCodes, code)
	m.mu.Unlock()
	if m.err != nil {
		return nil, "", "", m.err
	}
	return m.account, m.accessToken, m.refreshToken, nil
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	if m.err != nil {
		return "", "", m.err
	}
	return m.accessToken, m.refreshToken, nil
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	m.mu.Lock()
	m.logoutTokens = append(m.logoutTokens, refreshToken)
	m.mu.Unlock()
	return m.err
}

func (m *mockAuthService) CurrentUser(ctx context.Context, accountID int) (*models.SessionUser, error) {
	if m.err != nil {
		return nil, m.err
	}
	return models.SessionUserFrom(m.account), nil
}

// setupAuthRouter builds a router with auth routes and a real token guard
func setupAuthRouter(svc AuthService) (chi.Router, *auth.TokenGenerator) {
	logger := zap.NewNop()
	tg := auth.NewTokenGenerator("test-secret", 1*time.Hour, 7*24*time.Hour)

	handler := NewAuthHandler(svc, logger)
	r := chi.NewRouter()
	handler.RegisterRoutes(r, authMiddleware.AuthMiddleware(tg))

	return r, tg
}

func cookieValue(rec *httptest.ResponseRecorder, name string) string {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success sets token cookies and returns session user", func(t *testing.T) {
		svc := &mockAuthService{
			account: &models.Account{
				ID:          1,
				AccountID:   "2021-00123",
				DisplayName: "Juan Dela Cruz",
				Role:        models.RoleStudent,
			},
			accessToken:  "access-token",
			refreshToken: "refresh-token",
		}
		r, _ := setupAuthRouter(svc)

		body, _ := json.Marshal(models.LoginRequest{AccountID: "2021-00123", Password: "Password123!"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "access-token", cookieValue(rec, "access_token"))
		assert.Equal(t, "refresh-token", cookieValue(rec, "refresh_token"))

		var resp struct {
			User models.SessionUser `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "2021-00123", resp.User.AccountID)
		assert.Equal(t, "Student", resp.User.Role)
	})

	t.Run("invalid credentials return 401", func(t *testing.T) {
		svc := &mockAuthService{err: errors.New("invalid credentials")}
		r, _ := setupAuthRouter(svc)

		body, _ := json.Marshal(models.LoginRequest{AccountID: "2021-00123", Password: "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, cookieValue(rec, "access_token"))
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		r, _ := setupAuthRouter(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not-json")))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthHandler_GitHubLogin(t *testing.T) {
	t.Run("delegates the authorization code exactly once", func(t *testing.T) {
		svc := &mockAuthService{
			account: &models.Account{
				ID:          1,
				AccountID:   "2021-00123",
				DisplayName: "Juan Dela Cruz",
				Role:        models.RoleStudent,
			},
			accessToken:  "access-token",
			refreshToken: "refresh-token",
		}
		r, _ := setupAuthRouter(svc)

		body, _ := json.Marshal(models.GitHubLoginRequest{Code: "abc123"})
		req := httptest.NewRequest(http.MethodPost, "/auth/github", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, svc.githubCodes, 1)
		assert.Equal(t, "abc123", svc.githubCodes[0])
		assert.Equal(t, "access-token", cookieValue(rec, "access_token"))

		var resp struct {
			User models.SessionUser `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "Student", resp.User.Role)
	})

	t.Run("consumed code returns 401 without cookies", func(t *testing.T) {
		svc := &mockAuthService{err: errors.New("invalid or expired authorization code")}
		r, _ := setupAuthRouter(svc)

		body, _ := json.Marshal(models.GitHubLoginRequest{Code: "used-code"})
		req := httptest.NewRequest(http.MethodPost, "/auth/github", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, cookieValue(rec, "access_token"))
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("token from body", func(t *testing.T) {
		svc := &mockAuthService{accessToken: "new-access", refreshToken: "new-refresh"}
		r, _ := setupAuthRouter(svc)

		body, _ := json.Marshal(RefreshRequest{RefreshToken: "old-refresh"})
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new-access", cookieValue(rec, "access_token"))
		assert.Equal(t, "new-refresh", cookieValue(rec, "refresh_token"))
	})

	t.Run("token from cookie", func(t *testing.T) {
		svc := &mockAuthService{accessToken: "new-access", refreshToken: "new-refresh"}
		r, _ := setupAuthRouter(svc)

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "old-refresh"})
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "new-refresh", cookieValue(rec, "refresh_token"))
	})

	t.Run("missing token returns 400", func(t *testing.T) {
		r, _ := setupAuthRouter(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid token returns 401", func(t *testing.T) {
		svc := &mockAuthService{err: errors.New("invalid or expired refresh token")}
		r, _ := setupAuthRouter(svc)

		body, _ := json.Marshal(RefreshRequest{RefreshToken: "stale"})
		req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("deletes the session and clears cookies", func(t *testing.T) {
		svc := &mockAuthService{}
		r, tg := setupAuthRouter(svc)

		accessToken, _, err := tg.GenerateTokens(1, int(models.RoleStudent))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "stored-refresh"})
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, svc.logoutTokens, 1)
		assert.Equal(t, "stored-refresh", svc.logoutTokens[0])

		// Both cookies are expired on logout
		for _, cookie := range rec.Result().Cookies() {
			assert.Less(t, cookie.MaxAge, 0)
			assert.Empty(t, cookie.Value)
		}
	})

	t.Run("requires authentication", func(t *testing.T) {
		r, _ := setupAuthRouter(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("returns the session user", func(t *testing.T) {
		svc := &mockAuthService{
			account: &models.Account{
				ID:          1,
				AccountID:   "2021-00123",
				DisplayName: "Juan Dela Cruz",
				Role:        models.RoleFaculty,
			},
		}
		r, tg := setupAuthRouter(svc)

		accessToken, _, err := tg.GenerateTokens(1, int(models.RoleFaculty))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var user models.SessionUser
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
		assert.Equal(t, "2021-00123", user.AccountID)
		assert.Equal(t, "Faculty", user.Role)
	})

	t.Run("requires authentication", func(t *testing.T) {
		r, _ := setupAuthRouter(&mockAuthService{})

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()

		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
