package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authMiddleware "github.com/credit-it/backend/internal/auth/middleware"
	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for authentication business logic.
type AuthService interface {
	// Method Login performs a credential validation and returns the account with a token pair.
	//
	// "req" parameter contains the account id and password.
	//
	// If the credentials are invalid, the error will be returned together with nil account and empty tokens.
	Login(ctx context.Context, req *models.LoginRequest) (*models.Account, string, string, error)
	// Method GitHubLogin exchanges a GitHub authorization code for a session.
	//
	// "code" parameter is the one-time authorization code from the OAuth callback.
	//
	// The exchange runs at most once per code; a repeated submission observes the
	// first outcome. If the code is invalid, consumed, or unlinked, the error will
	// be returned together with nil account and empty tokens.
	GitHubLogin(ctx context.Context, code string) (*models.Account, string, string, error)
	// Method Refresh validates and rotates a refresh token.
	//
	// "refreshToken" parameter identifies the session being refreshed.
	//
	// If the refresh token is invalid or expired, the error will be returned together with empty tokens.
	Refresh(ctx context.Context, refreshToken string) (string, string, error)
	// Method Logout deletes the stored refresh token. Logout is idempotent.
	Logout(ctx context.Context, refreshToken string) error
	// Method CurrentUser returns the session payload for an authenticated account.
	CurrentUser(ctx context.Context, accountID int) (*models.SessionUser, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: BaseHandler{Logger: logger},
		authService: authService,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api/v1
func (h *AuthHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/github", h.GitHubLogin)
		r.Post("/refresh", h.Refresh)
		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.Me)
		})
	})
}

// Login handles POST /auth/login
// @Summary Login with credentials
// @Description Authenticate an account with account id and password. Returns the session user and sets access and refresh tokens as HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]any "Login successful"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, accessToken, refreshToken, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to login account", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    models.SessionUserFrom(account),
	})
}

// GitHubLogin handles POST /auth/github
// @Summary Login with a GitHub authorization code
// @Description Exchange a one-time GitHub OAuth authorization code for a session. The exchange happens at most once per code. Returns the session user and sets token cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.GitHubLoginRequest true "Authorization code"
// @Success 200 {object} map[string]any "Login successful"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid or consumed authorization code"
// @Router /auth/github [post]
func (h *AuthHandler) GitHubLogin(w http.ResponseWriter, r *http.Request) {
	var req models.GitHubLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, accessToken, refreshToken, err := h.authService.GitHubLogin(r.Context(), req.Code)
	if err != nil {
		h.Logger.Error("failed to login with github", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, refreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    models.SessionUserFrom(account),
	})
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh handles POST /auth/refresh
// @Summary Refresh access token
// @Description Refresh access and refresh tokens using a valid refresh token. Token can be provided in request body or as a cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Refresh token request (optional if using cookie)"
// @Success 200 {object} map[string]string "Tokens refreshed successfully"
// @Failure 400 {object} map[string]string "Refresh token required"
// @Failure 401 {object} map[string]string "Invalid or expired refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken, ok := h.refreshTokenFrom(r)
	if !ok {
		h.RespondError(w, http.StatusBadRequest, "refresh token required")
		return
	}

	accessToken, newRefreshToken, err := h.authService.Refresh(r.Context(), refreshToken)
	if err != nil {
		h.Logger.Error("failed to refresh tokens", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.setTokenCookies(w, accessToken, newRefreshToken)

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "tokens refreshed successfully"})
}

// Logout handles POST /auth/logout
// @Summary Logout
// @Description Delete the stored refresh token and clear session cookies.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Logout successful"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if refreshToken, ok := h.refreshTokenFrom(r); ok {
		if err := h.authService.Logout(r.Context(), refreshToken); err != nil {
			h.Logger.Error("failed to logout", zap.Error(err))
			h.RespondError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	h.clearTokenCookies(w)
	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// Me handles GET /auth/me
// @Summary Current session user
// @Description Return the authenticated account behind the presented access token.
// @Tags auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.SessionUser "Session user"
// @Failure 401 {object} map[string]string "Not authenticated"
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	accountID, ok := authMiddleware.GetAccountID(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.authService.CurrentUser(r.Context(), accountID)
	if err != nil {
		h.Logger.Error("failed to get current user", zap.Error(err))
		h.RespondError(w, http.StatusUnauthorized, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// refreshTokenFrom pulls the refresh token from the request body or cookie
func (h *AuthHandler) refreshTokenFrom(r *http.Request) (string, bool) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken, true
	}

	cookie, err := r.Cookie("refresh_token")
	if err != nil {
		return "", false
	}
	return cookie.Value, true
}

// setTokenCookies sets access and refresh tokens as HTTP-only cookies
func (h *AuthHandler) setTokenCookies(w http.ResponseWriter, accessToken, refreshToken string) {
	// Access token cookie (1 hour)
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		MaxAge:   3600, // 1 hour
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})

	// Refresh token cookie (7 days)
	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   604800, // 7 days
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearTokenCookies expires both token cookies
func (h *AuthHandler) clearTokenCookies(w http.ResponseWriter) {
	for _, name := range []string{"access_token", "refresh_token"} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteLaxMode,
		})
	}
}
