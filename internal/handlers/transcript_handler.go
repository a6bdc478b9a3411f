package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// TranscriptService is the interface that wraps methods for transcript storage.
type TranscriptService interface {
	// SaveEntries validates and stores transcript entries for an account.
	SaveEntries(ctx context.Context, req *models.SaveEntriesRequest) ([]models.TranscriptEntry, error)
	// List returns all transcript entries for an account.
	List(ctx context.Context, accountID string) ([]models.TranscriptEntry, error)
	// Delete removes all transcript entries for an account and returns the count.
	Delete(ctx context.Context, accountID string) (int, error)
	// Statistics summarizes an account's transcript entries.
	Statistics(ctx context.Context, accountID string) (*models.TranscriptStatistics, error)
}

// TranscriptHandler handles transcript entry HTTP requests
type TranscriptHandler struct {
	BaseHandler
	transcriptService TranscriptService
	accounts          AccountDirectory
}

// NewTranscriptHandler creates a new transcript handler
func NewTranscriptHandler(transcriptService TranscriptService, accounts AccountDirectory, logger *zap.Logger) *TranscriptHandler {
	return &TranscriptHandler{
		BaseHandler:       BaseHandler{Logger: logger},
		transcriptService: transcriptService,
		accounts:          accounts,
	}
}

// RegisterRoutes registers all transcript handler routes
// Note: This assumes the router is already scoped to /api/v1.
// All transcript routes are session-bound: the account is resolved from the
// caller's token, never from the request.
func (h *TranscriptHandler) RegisterRoutes(r chi.Router, guard func(http.Handler) http.Handler) {
	r.Route("/transcripts", func(r chi.Router) {
		r.Use(guard)
		r.Post("/", h.SaveEntries)
		r.Get("/", h.List)
		r.Get("/statistics", h.Statistics)
		r.Delete("/", h.Delete)
	})
}

// SaveEntries handles POST /transcripts
// @Summary Upload transcript entries
// @Description Validate and store the subject rows from the authenticated transferee's Transcript of Records.
// @Tags transcripts
// @Accept json
// @Produce json
// @Param request body models.SaveEntriesRequest true "Transcript entries"
// @Security ApiKeyAuth
// @Success 201 {array} models.TranscriptEntry "Saved entries"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown session account"
// @Router /transcripts [post]
func (h *TranscriptHandler) SaveEntries(w http.ResponseWriter, r *http.Request) {
	account, err := sessionAccount(r, h.accounts)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "account not found")
		return
	}

	var req models.SaveEntriesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.AccountID = account.AccountID

	entries, err := h.transcriptService.SaveEntries(r.Context(), &req)
	if err != nil {
		h.Logger.Error("failed to save transcript entries", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, entries)
}

// List handles GET /transcripts
// @Summary List transcript entries
// @Description Return all transcript entries for the authenticated account.
// @Tags transcripts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.TranscriptEntry "Transcript entries"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown session account"
// @Router /transcripts [get]
func (h *TranscriptHandler) List(w http.ResponseWriter, r *http.Request) {
	account, err := sessionAccount(r, h.accounts)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "account not found")
		return
	}

	entries, err := h.transcriptService.List(r.Context(), account.AccountID)
	if err != nil {
		h.Logger.Error("failed to list transcript entries", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, entries)
}

// Statistics handles GET /transcripts/statistics
// @Summary Transcript statistics
// @Description Summarize the authenticated account's transcript entries: totals, passed and failed subjects and units, average grade.
// @Tags transcripts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} models.TranscriptStatistics "Statistics"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown session account"
// @Router /transcripts/statistics [get]
func (h *TranscriptHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	account, err := sessionAccount(r, h.accounts)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "account not found")
		return
	}

	stats, err := h.transcriptService.Statistics(r.Context(), account.AccountID)
	if err != nil {
		h.Logger.Error("failed to compute transcript statistics", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, stats)
}

// Delete handles DELETE /transcripts
// @Summary Delete transcript entries
// @Description Remove all transcript entries for the authenticated account.
// @Tags transcripts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]int "Entries deleted"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown session account"
// @Router /transcripts [delete]
func (h *TranscriptHandler) Delete(w http.ResponseWriter, r *http.Request) {
	account, err := sessionAccount(r, h.accounts)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "account not found")
		return
	}

	deleted, err := h.transcriptService.Delete(r.Context(), account.AccountID)
	if err != nil {
		h.Logger.Error("failed to delete transcript entries", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]int{"entriesDeleted": deleted})
}
