package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// requestRepository implements RequestRepository
type requestRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRequestRepository creates a new document request repository
func NewRequestRepository(db *sql.DB, logger *zap.Logger) *requestRepository {
	return &requestRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new document request
func (r *requestRepository) Create(ctx context.Context, request *models.DocumentRequest) error {
	query := `
		INSERT INTO document_requests (account_id, applicant_name, status)
		VALUES (?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, request.AccountID, request.ApplicantName, request.Status)
	if err != nil {
		r.logger.Error("failed to create document request", zap.Error(err))
		return fmt.Errorf("failed to create document request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	request.ID = int(id)
	return nil
}

// ExistsByAccountID checks if the account already has a live request
func (r *requestRepository) ExistsByAccountID(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM document_requests WHERE account_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check request existence", zap.Error(err), zap.String("accountId", accountID))
		return false, fmt.Errorf("failed to check request existence: %w", err)
	}

	return exists, nil
}

// GetAll retrieves all document requests, newest first
func (r *requestRepository) GetAll(ctx context.Context) ([]models.DocumentRequest, error) {
	query := `
		SELECT id, account_id, applicant_name, status, requested_at
		FROM document_requests
		ORDER BY requested_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to get document requests", zap.Error(err))
		return nil, fmt.Errorf("failed to get document requests: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// GetByAccountID retrieves up to limit requests for an account, newest first
func (r *requestRepository) GetByAccountID(ctx context.Context, accountID string, limit int) ([]models.DocumentRequest, error) {
	query := `
		SELECT id, account_id, applicant_name, status, requested_at
		FROM document_requests
		WHERE account_id = ?
		ORDER BY requested_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		r.logger.Error("failed to get document requests by account", zap.Error(err), zap.String("accountId", accountID))
		return nil, fmt.Errorf("failed to get document requests by account: %w", err)
	}
	defer rows.Close()

	return scanRequests(rows)
}

// UpdateStatus sets the status of the account's request
func (r *requestRepository) UpdateStatus(ctx context.Context, accountID string, status models.RequestStatus) error {
	query := `
		UPDATE document_requests
		SET status = ?
		WHERE account_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, status, accountID)
	if err != nil {
		r.logger.Error("failed to update request status", zap.Error(err), zap.String("accountId", accountID))
		return fmt.Errorf("failed to update request status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("request not found")
	}

	return nil
}

// DeleteByAccountID removes the account's request. Returns the number of rows deleted.
func (r *requestRepository) DeleteByAccountID(ctx context.Context, accountID string) (int, error) {
	query := `DELETE FROM document_requests WHERE account_id = ?`

	result, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		r.logger.Error("failed to delete document request", zap.Error(err), zap.String("accountId", accountID))
		return 0, fmt.Errorf("failed to delete document request: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// scanRequests reads document request rows
func scanRequests(rows *sql.Rows) ([]models.DocumentRequest, error) {
	requests := make([]models.DocumentRequest, 0)
	for rows.Next() {
		var req models.DocumentRequest
		if err := rows.Scan(&req.ID, &req.AccountID, &req.ApplicantName, &req.Status, &req.RequestedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate document requests: %w", err)
	}

	return requests, nil
}
