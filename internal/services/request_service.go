package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// RequestRepository is the interface that wraps methods for DocumentRequest table data access
type RequestRepository interface {
	// Create inserts a new document request.
	Create(ctx context.Context, request *models.DocumentRequest) error
	// ExistsByAccountID checks if the account already has a live request.
	ExistsByAccountID(ctx context.Context, accountID string) (bool, error)
	// GetAll retrieves all document requests, newest first.
	GetAll(ctx context.Context) ([]models.DocumentRequest, error)
	// GetByAccountID retrieves up to limit requests for an account, newest first.
	GetByAccountID(ctx context.Context, accountID string, limit int) ([]models.DocumentRequest, error)
	// UpdateStatus sets the status of the account's request.
	UpdateStatus(ctx context.Context, accountID string, status models.RequestStatus) error
	// DeleteByAccountID removes the account's request and returns the rows deleted.
	DeleteByAccountID(ctx context.Context, accountID string) (int, error)
}

// TranscriptStore is the subset of transcript data access the workflow needs
type TranscriptStore interface {
	// ExistsByAccountID checks if the account has uploaded transcript entries.
	ExistsByAccountID(ctx context.Context, accountID string) (bool, error)
	// DeleteByAccountID removes all transcript entries for an account and returns the rows deleted.
	DeleteByAccountID(ctx context.Context, accountID string) (int, error)
}

// ApplicantLookup resolves the display name for a request applicant
type ApplicantLookup interface {
	// GetByAccountID retrieves an account by its login name.
	GetByAccountID(ctx context.Context, accountID string) (*models.Account, error)
}

// progressLimit caps how many workflow records the progress view returns
const progressLimit = 5

// requestService implements the document request workflow
type requestService struct {
	requestRepo    RequestRepository
	transcriptRepo TranscriptStore
	accounts       ApplicantLookup
	logger         *zap.Logger
}

// NewRequestService creates a new document request service
func NewRequestService(
	requestRepo RequestRepository,
	transcriptRepo TranscriptStore,
	accounts ApplicantLookup,
	logger *zap.Logger,
) *requestService {
	return &requestService{
		requestRepo:    requestRepo,
		transcriptRepo: transcriptRepo,
		accounts:       accounts,
		logger:         logger,
	}
}

// Create opens a new document request for the account. The account must have
// uploaded transcript entries first, and may hold only one live request.
func (s *requestService) Create(ctx context.Context, accountID string) (*models.DocumentRequest, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}

	hasTranscript, err := s.transcriptRepo.ExistsByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !hasTranscript {
		return nil, fmt.Errorf("please upload your transcript of records first")
	}

	exists, err := s.requestRepo.ExistsByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("you already have a pending request, please wait for it to be processed")
	}

	applicantName := accountID
	if account, err := s.accounts.GetByAccountID(ctx, accountID); err == nil && account.DisplayName != "" {
		applicantName = account.DisplayName
	}

	request := &models.DocumentRequest{
		AccountID:     accountID,
		ApplicantName: applicantName,
		Status:        models.StatusReceived,
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info("document request created", zap.String("accountId", accountID))
	return request, nil
}

// List returns all document requests for faculty review, newest first
func (s *requestService) List(ctx context.Context) ([]models.DocumentRequest, error) {
	return s.requestRepo.GetAll(ctx)
}

// UpdateStatus sets the workflow status of the account's request
func (s *requestService) UpdateStatus(ctx context.Context, accountID string, status models.RequestStatus) error {
	if strings.TrimSpace(accountID) == "" {
		return fmt.Errorf("account id is required")
	}
	if !models.ValidStatus(status) {
		return fmt.Errorf("invalid status %q", status)
	}
	return s.requestRepo.UpdateStatus(ctx, accountID, status)
}

// Accept moves the request to the pending review stage
func (s *requestService) Accept(ctx context.Context, accountID string) error {
	return s.UpdateStatus(ctx, accountID, models.StatusPending)
}

// Finalize marks the request as finalized
func (s *requestService) Finalize(ctx context.Context, accountID string) error {
	return s.UpdateStatus(ctx, accountID, models.StatusFinalized)
}

// Deny removes the request and all transcript data for the applicant.
// Returns the per-table deletion counts.
func (s *requestService) Deny(ctx context.Context, accountID string) (map[string]int, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("account id is required")
	}

	requestsDeleted, err := s.requestRepo.DeleteByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entriesDeleted, err := s.transcriptRepo.DeleteByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("document request denied",
		zap.String("accountId", accountID),
		zap.Int("requestsDeleted", requestsDeleted),
		zap.Int("entriesDeleted", entriesDeleted),
	)

	return map[string]int{
		"requestsDeleted": requestsDeleted,
		"entriesDeleted":  entriesDeleted,
	}, nil
}

// Cancel removes the account's own request but keeps the transcript entries,
// so the applicant can re-request without uploading again.
func (s *requestService) Cancel(ctx context.Context, accountID string) (int, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, fmt.Errorf("account id is required")
	}
	return s.requestRepo.DeleteByAccountID(ctx, accountID)
}

// Progress returns the account's recent workflow records
func (s *requestService) Progress(ctx context.Context, accountID string) ([]models.RequestProgress, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("account id is required")
	}

	requests, err := s.requestRepo.GetByAccountID(ctx, accountID, progressLimit)
	if err != nil {
		return nil, err
	}

	progress := make([]models.RequestProgress, 0, len(requests))
	for _, req := range requests {
		progress = append(progress, models.RequestProgress{
			ID:          req.ID,
			AccountID:   req.AccountID,
			Status:      req.Status,
			RequestedAt: req.RequestedAt,
			Type:        "request",
		})
	}

	return progress, nil
}
