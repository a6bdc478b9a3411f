package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/credit-it/backend/internal/models"
)

// tokenRepository implements TokenRepository
type tokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new refresh token repository
func NewTokenRepository(db *sql.DB) *tokenRepository {
	return &tokenRepository{
		db: db,
	}
}

// Create inserts a new refresh token into the database
func (r *tokenRepository) Create(ctx context.Context, token *models.AccountToken) error {
	query := `
		INSERT INTO account_tokens (account_id, token)
		VALUES (?, ?)
	`

	if _, err := r.db.ExecContext(ctx, query, token.AccountID, token.Token); err != nil {
		return fmt.Errorf("failed to create account token: %w", err)
	}

	return nil
}

// GetByToken retrieves a refresh token row by token string
func (r *tokenRepository) GetByToken(ctx context.Context, token string) (*models.AccountToken, error) {
	query := `
		SELECT id, account_id, token
		FROM account_tokens
		WHERE token = ?
		LIMIT 1
	`

	accountToken := &models.AccountToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&accountToken.ID,
		&accountToken.AccountID,
		&accountToken.Token,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("token not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account token by token: %w", err)
	}

	return accountToken, nil
}

// UpdateToken replaces an existing token string with a new one (rotation)
func (r *tokenRepository) UpdateToken(ctx context.Context, oldToken, newToken string, accountID int) error {
	query := `
		UPDATE account_tokens
		SET token = ?
		WHERE token = ? AND account_id = ?
	`

	result, err := r.db.ExecContext(ctx, query, newToken, oldToken, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("token not found or account mismatch")
	}

	return nil
}

// DeleteByToken deletes a token row by token string
func (r *tokenRepository) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM account_tokens WHERE token = ?`

	if _, err := r.db.ExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("failed to delete account token: %w", err)
	}

	return nil
}

// DeleteExpiredTokens deletes all tokens with created_at older than or equal to expiryTime
func (r *tokenRepository) DeleteExpiredTokens(ctx context.Context, expiryTime time.Time) (int, error) {
	query := `DELETE FROM account_tokens WHERE created_at <= ?`

	result, err := r.db.ExecContext(ctx, query, expiryTime)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}
