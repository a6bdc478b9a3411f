package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"go.uber.org/zap"
)

// TokenCleaner is the interface that wraps expired token deletion.
type TokenCleaner interface {
	// DeleteExpiredTokens deletes all tokens created before expiryTime and returns the count.
	DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error)
}

// TokenCleaningHandler removes expired refresh tokens on demand
type TokenCleaningHandler struct {
	BaseHandler
	tokenRepo          TokenCleaner
	refreshTokenExpiry time.Duration
}

// NewTokenCleaningHandler creates a new token cleaning handler
func NewTokenCleaningHandler(tokenRepo TokenCleaner, refreshTokenExpiry time.Duration, logger *zap.Logger) *TokenCleaningHandler {
	return &TokenCleaningHandler{
		BaseHandler:        BaseHandler{Logger: logger},
		tokenRepo:          tokenRepo,
		refreshTokenExpiry: refreshTokenExpiry,
	}
}

// RegisterRoutes registers the token cleaning route behind the API key guard
// Note: This assumes the router is already scoped to /api/v1
func (h *TokenCleaningHandler) RegisterRoutes(r chi.Router, apiKeyGuard func(http.Handler) http.Handler) {
	r.Route("/tokens", func(r chi.Router) {
		r.Use(apiKeyGuard)
		r.Get("/clean", h.Clean)
	})
}

// Clean handles GET /tokens/clean
// @Summary Delete expired refresh tokens
// @Description Remove all refresh tokens older than the refresh token lifetime. Requires the X-API-Key header.
// @Tags tokens
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]int "Tokens deleted"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /tokens/clean [get]
func (h *TokenCleaningHandler) Clean(w http.ResponseWriter, r *http.Request) {
	expiryTime := time.Now().Add(-h.refreshTokenExpiry)

	deleted, err := h.tokenRepo.DeleteExpiredTokens(r.Context(), expiryTime)
	if err != nil {
		h.Logger.Error("failed to delete expired tokens", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.Logger.Info("expired tokens cleaned", zap.Int("deleted", deleted))
	h.RespondJSON(w, http.StatusOK, map[string]int{"tokensDeleted": deleted})
}
