package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credit-it/backend/internal/models"
)

// setupTokenTestRepository creates a token repository with a mock database
func setupTokenTestRepository(t *testing.T) (*tokenRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewTokenRepository(db)

	cleanup := func() {
		db.Close()
	}

	return repo, mock, cleanup
}

func TestTokenRepository_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO account_tokens`).
			WithArgs(1, "refresh-token").
			WillReturnResult(sqlmock.NewResult(1, 1))

		err := repo.Create(context.Background(), &models.AccountToken{AccountID: 1, Token: "refresh-token"})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`INSERT INTO account_tokens`).
			WithArgs(1, "refresh-token").
			WillReturnError(errors.New("database error"))

		err := repo.Create(context.Background(), &models.AccountToken{AccountID: 1, Token: "refresh-token"})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_GetByToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		rows := sqlmock.NewRows([]string{"id", "account_id", "token"}).
			AddRow(1, 2, "refresh-token")
		mock.ExpectQuery(`SELECT id, account_id, token`).
			WithArgs("refresh-token").
			WillReturnRows(rows)

		token, err := repo.GetByToken(context.Background(), "refresh-token")

		require.NoError(t, err)
		assert.Equal(t, 1, token.ID)
		assert.Equal(t, 2, token.AccountID)
		assert.Equal(t, "refresh-token", token.Token)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("token not found", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT id, account_id, token`).
			WithArgs("missing-token").
			WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "token"}))

		token, err := repo.GetByToken(context.Background(), "missing-token")

		assert.Error(t, err)
		assert.Nil(t, token)
		assert.Contains(t, err.Error(), "token not found")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_UpdateToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE account_tokens`).
			WithArgs("new-token", "old-token", 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateToken(context.Background(), "old-token", "new-token", 1)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows updated", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`UPDATE account_tokens`).
			WithArgs("new-token", "old-token", 1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateToken(context.Background(), "old-token", "new-token", 1)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "token not found or account mismatch")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_DeleteByToken(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM account_tokens`).
			WithArgs("refresh-token").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteByToken(context.Background(), "refresh-token")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing token is not an error", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		mock.ExpectExec(`DELETE FROM account_tokens`).
			WithArgs("missing-token").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteByToken(context.Background(), "missing-token")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_DeleteExpiredTokens(t *testing.T) {
	t.Run("returns deleted count", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		expiry := time.Now().Add(-7 * 24 * time.Hour)
		mock.ExpectExec(`DELETE FROM account_tokens WHERE created_at`).
			WithArgs(expiry).
			WillReturnResult(sqlmock.NewResult(0, 3))

		deleted, err := repo.DeleteExpiredTokens(context.Background(), expiry)

		require.NoError(t, err)
		assert.Equal(t, 3, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		repo, mock, cleanup := setupTokenTestRepository(t)
		defer cleanup()

		expiry := time.Now()
		mock.ExpectExec(`DELETE FROM account_tokens WHERE created_at`).
			WithArgs(expiry).
			WillReturnError(errors.New("database error"))

		deleted, err := repo.DeleteExpiredTokens(context.Background(), expiry)

		assert.Error(t, err)
		assert.Zero(t, deleted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
