package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// transcriptRepository implements TranscriptRepository
type transcriptRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTranscriptRepository creates a new transcript entry repository
func NewTranscriptRepository(db *sql.DB, logger *zap.Logger) *transcriptRepository {
	return &transcriptRepository{
		db:     db,
		logger: logger,
	}
}

// CreateBatch inserts transcript entries in a single transaction.
// All entries are inserted or none.
func (r *transcriptRepository) CreateBatch(ctx context.Context, entries []models.TranscriptEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
		INSERT INTO transcript_entries
			(account_id, student_name, school_name, subject_code, subject_description, semester, school_year, units, final_grade, remarks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i := range entries {
		e := &entries[i]
		result, err := tx.ExecContext(ctx, query,
			e.AccountID, e.StudentName, e.SchoolName, e.SubjectCode, e.Description,
			e.Semester, e.SchoolYear, e.Units, e.FinalGrade, e.Remarks)
		if err != nil {
			tx.Rollback()
			r.logger.Error("failed to insert transcript entry", zap.Error(err), zap.String("subjectCode", e.SubjectCode))
			return fmt.Errorf("failed to insert transcript entry: %w", err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		e.ID = int(id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetByAccountID retrieves all transcript entries for an account ordered by subject code
func (r *transcriptRepository) GetByAccountID(ctx context.Context, accountID string) ([]models.TranscriptEntry, error) {
	query := `
		SELECT id, account_id, student_name, school_name, subject_code, subject_description, semester, school_year, units, final_grade, remarks, created_at
		FROM transcript_entries
		WHERE account_id = ?
		ORDER BY subject_code
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		r.logger.Error("failed to get transcript entries", zap.Error(err), zap.String("accountId", accountID))
		return nil, fmt.Errorf("failed to get transcript entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.TranscriptEntry, 0)
	for rows.Next() {
		var e models.TranscriptEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.StudentName, &e.SchoolName, &e.SubjectCode, &e.Description,
			&e.Semester, &e.SchoolYear, &e.Units, &e.FinalGrade, &e.Remarks, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transcript entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transcript entries: %w", err)
	}

	return entries, nil
}

// DeleteByAccountID removes all transcript entries for an account.
// Returns the number of rows deleted.
func (r *transcriptRepository) DeleteByAccountID(ctx context.Context, accountID string) (int, error) {
	query := `DELETE FROM transcript_entries WHERE account_id = ?`

	result, err := r.db.ExecContext(ctx, query, accountID)
	if err != nil {
		r.logger.Error("failed to delete transcript entries", zap.Error(err), zap.String("accountId", accountID))
		return 0, fmt.Errorf("failed to delete transcript entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// ExistsByAccountID checks if the account has any transcript entries
func (r *transcriptRepository) ExistsByAccountID(ctx context.Context, accountID string) (bool, error) {
	query := `SELECT EXISTS(SELECT * FROM transcript_entries WHERE account_id = ?)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, accountID).Scan(&exists)
	if err != nil {
		r.logger.Error("failed to check transcript existence", zap.Error(err), zap.String("accountId", accountID))
		return false, fmt.Errorf("failed to check transcript existence: %w", err)
	}

	return exists, nil
}
