package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// accountRepository implements AccountRepository
type accountRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, logger *zap.Logger) *accountRepository {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new account into the database
func (r *accountRepository) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (account_id, display_name, password_hash, role, github_login)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, account.AccountID, account.DisplayName, account.PasswordHash, account.Role, account.GitHubLogin)
	if err != nil {
		r.logger.Error("failed to create account", zap.Error(err))
		return fmt.Errorf("failed to create account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		r.logger.Error("failed to get last insert id", zap.Error(err))
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	account.ID = int(id)
	return nil
}

// GetByAccountID retrieves an account by its login name
func (r *accountRepository) GetByAccountID(ctx context.Context, accountID string) (*models.Account, error) {
	query := `
		SELECT id, account_id, display_name, password_hash, role, github_login
		FROM accounts
		WHERE account_id = ?
		LIMIT 1
	`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(
		&account.ID,
		&account.AccountID,
		&account.DisplayName,
		&account.PasswordHash,
		&account.Role,
		&account.GitHubLogin,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account not found")
	}
	if err != nil {
		r.logger.Error("failed to get account by account id", zap.Error(err), zap.String("accountId", accountID))
		return nil, fmt.Errorf("failed to get account by account id: %w", err)
	}

	return account, nil
}

// GetByID retrieves an account by its primary key
func (r *accountRepository) GetByID(ctx context.Context, id int) (*models.Account, error) {
	query := `
		SELECT account_id, display_name, password_hash, role, github_login
		FROM accounts
		WHERE id = ?
		LIMIT 1
	`

	account := &models.Account{ID: id}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&account.AccountID,
		&account.DisplayName,
		&account.PasswordHash,
		&account.Role,
		&account.GitHubLogin,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account not found")
	}
	if err != nil {
		r.logger.Error("failed to get account by id", zap.Error(err), zap.Int("id", id))
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	return account, nil
}

// GetByGitHubLogin retrieves an account linked to the given GitHub login
func (r *accountRepository) GetByGitHubLogin(ctx context.Context, login string) (*models.Account, error) {
	query := `
		SELECT id, account_id, display_name, password_hash, role, github_login
		FROM accounts
		WHERE github_login = ?
		LIMIT 1
	`

	account := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, login).Scan(
		&account.ID,
		&account.AccountID,
		&account.DisplayName,
		&account.PasswordHash,
		&account.Role,
		&account.GitHubLogin,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("account not found")
	}
	if err != nil {
		r.logger.Error("failed to get account by github login", zap.Error(err), zap.String("githubLogin", login))
		return nil, fmt.Errorf("failed to get account by github login: %w", err)
	}

	return account, nil
}

// ExistsByAccountID checks if an account exists with the given login name
func (r *accountRepository) ExistsByAccountID(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM accounts WHERE account_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check account existence", zap.Error(err), zap.String("accountId", accountID))
		return false, fmt.Errorf("failed to check account existence: %w", err)
	}

	return exists, nil
}
