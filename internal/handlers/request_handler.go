package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// RequestService is the interface that wraps methods for the document request workflow.
type RequestService interface {
	// Create opens a new document request for the account.
	Create(ctx context.Context, accountID string) (*models.DocumentRequest, error)
	// List returns all document requests for faculty review.
	List(ctx context.Context) ([]models.DocumentRequest, error)
	// UpdateStatus sets the workflow status of the account's request.
	UpdateStatus(ctx context.Context, accountID string, status models.RequestStatus) error
	// Accept moves the request to the pending review stage.
	Accept(ctx context.Context, accountID string) error
	// Finalize marks the request as finalized.
	Finalize(ctx context.Context, accountID string) error
	// Deny removes the request and all transcript data for the applicant.
	Deny(ctx context.Context, accountID string) (map[string]int, error)
	// Cancel removes the account's own request but keeps the transcript entries.
	Cancel(ctx context.Context, accountID string) (int, error)
	// Progress returns the account's recent workflow records.
	Progress(ctx context.Context, accountID string) ([]models.RequestProgress, error)
}

// RequestHandler handles document request HTTP requests
type RequestHandler struct {
	BaseHandler
	requestService RequestService
	accounts       AccountDirectory
}

// NewRequestHandler creates a new document request handler
func NewRequestHandler(requestService RequestService, accounts AccountDirectory, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		requestService: requestService,
		accounts:       accounts,
	}
}

// RegisterRoutes registers all request handler routes
// Note: This assumes the router is already scoped to /api/v1.
// Student routes are session-bound; only faculty routes take an explicit
// account parameter.
func (h *RequestHandler) RegisterRoutes(r chi.Router, guard, facultyGuard func(http.Handler) http.Handler) {
	r.Route("/requests", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(guard)
			r.Post("/", h.Create)
			r.Get("/progress", h.Progress)
			r.Delete("/cancel", h.Cancel)
		})
		r.Group(func(r chi.Router) {
			r.Use(facultyGuard)
			r.Get("/", h.List)
			r.Post("/status", h.UpdateStatus)
			r.Post("/{accountID}/accept", h.Accept)
			r.Post("/{accountID}/finalize", h.Finalize)
			r.Delete("/{accountID}", h.Deny)
		})
	})
}

// Create handles POST /requests
// @Summary Create a document request
// @Description Open a new Transcript of Records request for the authenticated account. Requires an uploaded transcript and no other live request.
// @Tags requests
// @Produce json
// @Security ApiKeyAuth
// @Success 201 {object} models.DocumentRequest "Request created"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown session account"
// @Router /requests [post]
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	account, err := sessionAccount(r, h.accounts)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "account not found")
		return
	}

	request, err := h.requestService.Create(r.Context(), account.AccountID)
	if err != nil {
		h.Logger.Error("failed to create document request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusCreated, request)
}

// List handles GET /requests
// @Summary List all document requests
// @Description Return every document request, newest first. Faculty only.
// @Tags requests
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.DocumentRequest "Document requests"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /requests [get]
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.requestService.List(r.Context())
	if err != nil {
		h.Logger.Error("failed to list document requests", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, requests)
}

// UpdateStatus handles POST /requests/status
// @Summary Update request status
// @Description Set the workflow status of an account's request. Faculty only.
// @Tags requests
// @Accept json
// @Produce json
// @Param request body models.UpdateStatusRequest true "Status update"
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Status updated"
// @Failure 400 {object} map[string]string "Validation error"
// @Router /requests/status [post]
func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.requestService.UpdateStatus(r.Context(), req.AccountID, req.Status); err != nil {
		h.Logger.Error("failed to update request status", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "status updated"})
}

// Accept handles POST /requests/{accountID}/accept
// @Summary Accept a document request
// @Description Move the account's request to the pending review stage. Faculty only.
// @Tags requests
// @Produce json
// @Param accountID path string true "Account ID"
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Request accepted"
// @Failure 400 {object} map[string]string "Request not found"
// @Router /requests/{accountID}/accept [post]
func (h *RequestHandler) Accept(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	if err := h.requestService.Accept(r.Context(), accountID); err != nil {
		h.Logger.Error("failed to accept document request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "request accepted"})
}

// Finalize handles POST /requests/{accountID}/finalize
// @Summary Finalize a document request
// @Description Mark the account's request as finalized. Faculty only.
// @Tags requests
// @Produce json
// @Param accountID path string true "Account ID"
// @Security ApiKeyAuth
// @Success 200 {object} map[string]string "Request finalized"
// @Failure 400 {object} map[string]string "Request not found"
// @Router /requests/{accountID}/finalize [post]
func (h *RequestHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	if err := h.requestService.Finalize(r.Context(), accountID); err != nil {
		h.Logger.Error("failed to finalize document request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]string{"message": "request finalized"})
}

// Deny handles DELETE /requests/{accountID}
// @Summary Deny a document request
// @Description Remove the account's request together with all its transcript entries. Faculty only.
// @Tags requests
// @Produce json
// @Param accountID path string true "Account ID"
// @Security ApiKeyAuth
// @Success 200 {object} map[string]int "Deletion counts"
// @Failure 400 {object} map[string]string "Validation error"
// @Router /requests/{accountID} [delete]
func (h *RequestHandler) Deny(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountID")

	counts, err := h.requestService.Deny(r.Context(), accountID)
	if err != nil {
		h.Logger.Error("failed to deny document request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, counts)
}

// Cancel handles DELETE /requests/cancel
// @Summary Cancel own document request
// @Description Remove the authenticated account's request but keep the uploaded transcript entries.
// @Tags requests
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]int "Requests deleted"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown session account"
// @Router /requests/cancel [delete]
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	account, err := sessionAccount(r, h.accounts)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "account not found")
		return
	}

	deleted, err := h.requestService.Cancel(r.Context(), account.AccountID)
	if err != nil {
		h.Logger.Error("failed to cancel document request", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, map[string]int{"requestsDeleted": deleted})
}

// Progress handles GET /requests/progress
// @Summary Request progress
// @Description Return the authenticated account's recent workflow records.
// @Tags requests
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {array} models.RequestProgress "Progress records"
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 401 {object} map[string]string "Unknown session account"
// @Router /requests/progress [get]
func (h *RequestHandler) Progress(w http.ResponseWriter, r *http.Request) {
	account, err := sessionAccount(r, h.accounts)
	if err != nil {
		h.RespondError(w, http.StatusUnauthorized, "account not found")
		return
	}

	progress, err := h.requestService.Progress(r.Context(), account.AccountID)
	if err != nil {
		h.Logger.Error("failed to get request progress", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, progress)
}
