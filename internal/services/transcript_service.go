package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
)

// TranscriptRepository is the interface that wraps methods for TranscriptEntry table data access
type TranscriptRepository interface {
	// CreateBatch inserts transcript entries in a single transaction.
	CreateBatch(ctx context.Context, entries []models.TranscriptEntry) error
	// GetByAccountID retrieves all transcript entries for an account.
	GetByAccountID(ctx context.Context, accountID string) ([]models.TranscriptEntry, error)
	// DeleteByAccountID removes all transcript entries for an account and returns the rows deleted.
	DeleteByAccountID(ctx context.Context, accountID string) (int, error)
	// ExistsByAccountID checks if the account has any transcript entries.
	ExistsByAccountID(ctx context.Context, accountID string) (bool, error)
}

// schoolYearRegex validates academic years like "2023-2024"
var schoolYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

// transcriptService implements transcript entry storage and statistics
type transcriptService struct {
	repo   TranscriptRepository
	logger *zap.Logger
}

// NewTranscriptService creates a new transcript service
func NewTranscriptService(repo TranscriptRepository, logger *zap.Logger) *transcriptService {
	return &transcriptService{
		repo:   repo,
		logger: logger,
	}
}

// SaveEntries validates and stores transcript entries for an account.
// Account, student, and school fields on each entry are filled from the request.
func (s *transcriptService) SaveEntries(ctx context.Context, req *models.SaveEntriesRequest) ([]models.TranscriptEntry, error) {
	accountID := strings.TrimSpace(req.AccountID)
	if accountID == "" {
		return nil, fmt.Errorf("account id is required")
	}
	if len(req.Entries) == 0 {
		return nil, fmt.Errorf("no transcript entries provided")
	}

	studentName := strings.TrimSpace(req.StudentName)
	if studentName == "" {
		studentName = "Unknown"
	}
	schoolName := strings.TrimSpace(req.SchoolName)
	if schoolName == "" {
		schoolName = "Unknown"
	}

	entries := make([]models.TranscriptEntry, len(req.Entries))
	for i, entry := range req.Entries {
		if err := validateEntry(&entry); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}

		entry.AccountID = accountID
		entry.StudentName = studentName
		entry.SchoolName = schoolName
		entries[i] = entry
	}

	if err := s.repo.CreateBatch(ctx, entries); err != nil {
		return nil, err
	}

	s.logger.Info("transcript entries saved",
		zap.String("accountId", accountID),
		zap.Int("count", len(entries)),
	)
	return entries, nil
}

// validateEntry checks one subject row
func validateEntry(e *models.TranscriptEntry) error {
	if strings.TrimSpace(e.SubjectCode) == "" {
		return fmt.Errorf("subject code is required")
	}
	if !models.ValidSemester(e.Semester) {
		return fmt.Errorf("invalid semester %q", e.Semester)
	}
	if !schoolYearRegex.MatchString(e.SchoolYear) {
		return fmt.Errorf("invalid school year %q, expected YYYY-YYYY", e.SchoolYear)
	}
	if e.Units <= 0 {
		return fmt.Errorf("units must be positive")
	}
	if e.FinalGrade < 1.0 || e.FinalGrade > 5.0 {
		return fmt.Errorf("final grade must be between 1.0 and 5.0")
	}
	return nil
}

// List returns all transcript entries for an account
func (s *transcriptService) List(ctx context.Context, accountID string) ([]models.TranscriptEntry, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("account id is required")
	}
	return s.repo.GetByAccountID(ctx, accountID)
}

// Delete removes all transcript entries for an account and returns the count
func (s *transcriptService) Delete(ctx context.Context, accountID string) (int, error) {
	if strings.TrimSpace(accountID) == "" {
		return 0, fmt.Errorf("account id is required")
	}
	return s.repo.DeleteByAccountID(ctx, accountID)
}

// Statistics summarizes an account's transcript entries.
// A grade of 1.0 through 2.9 counts as passing.
func (s *transcriptService) Statistics(ctx context.Context, accountID string) (*models.TranscriptStatistics, error) {
	entries, err := s.List(ctx, accountID)
	if err != nil {
		return nil, err
	}

	stats := &models.TranscriptStatistics{}
	var gradeSum float64
	for i := range entries {
		e := &entries[i]
		stats.TotalSubjects++
		stats.TotalUnits += e.Units
		gradeSum += e.FinalGrade
		if e.IsPassing() {
			stats.PassedSubjects++
			stats.PassedUnits += e.Units
		} else {
			stats.FailedSubjects++
			stats.FailedUnits += e.Units
		}
	}

	if stats.TotalSubjects > 0 {
		stats.AverageGrade = gradeSum / float64(stats.TotalSubjects)
	}

	return stats, nil
}
