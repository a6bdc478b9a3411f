package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/credit-it/backend/internal/auth"
	"github.com/credit-it/backend/internal/github"
	"github.com/credit-it/backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AccountRepository is the interface that wraps methods for Account table data access
type AccountRepository interface {
	// Method GetByAccountID retrieves an account by its login name.
	//
	// "accountID" parameter is the login name to look up.
	//
	// If no account with such login name exists, the error will be returned together with "nil" value.
	GetByAccountID(ctx context.Context, accountID string) (*models.Account, error)
	// Method GetByID retrieves an account by its primary key.
	//
	// "id" parameter is the primary key to look up.
	//
	// If no account with such ID exists, the error will be returned together with "nil" value.
	GetByID(ctx context.Context, id int) (*models.Account, error)
	// Method GetByGitHubLogin retrieves the account linked to a GitHub login.
	//
	// "login" parameter is the GitHub login to look up.
	//
	// If no account is linked to the login, the error will be returned together with "nil" value.
	GetByGitHubLogin(ctx context.Context, login string) (*models.Account, error)
}

// TokenRepository is the interface that wraps methods for AccountToken table data access
type TokenRepository interface {
	// Method Create inserts a new refresh token into the database.
	//
	// "token" parameter is the token row to persist.
	//
	// If some error occurs during creation, the error will be returned.
	Create(ctx context.Context, token *models.AccountToken) error
	// Method GetByToken retrieves a refresh token row by token string.
	//
	// "token" parameter is the token string to look up.
	//
	// If no such token exists, the error will be returned together with "nil" value.
	GetByToken(ctx context.Context, token string) (*models.AccountToken, error)
	// Method UpdateToken replaces an old token string with a new one for the account.
	//
	// "oldToken" parameter is the token being rotated out.
	// "newToken" parameter is the replacement token.
	// "accountID" parameter scopes the rotation to the owning account.
	//
	// If the old token does not exist for the account, the error will be returned.
	UpdateToken(ctx context.Context, oldToken, newToken string, accountID int) error
	// Method DeleteByToken deletes a refresh token row by token string.
	//
	// "token" parameter is the token string to delete.
	//
	// Deleting a token that does not exist is not an error.
	DeleteByToken(ctx context.Context, token string) error
}

// GitHubExchanger is the interface that wraps the one-time GitHub code exchange
type GitHubExchanger interface {
	// ExchangeCode exchanges an authorization code for the GitHub user behind it.
	// The code is consumed upstream on the first exchange; callers must never
	// exchange the same code twice.
	ExchangeCode(ctx context.Context, code string) (*github.UserInfo, error)
}

// exchangeLatchTTL bounds how long a consumed authorization code is remembered
const exchangeLatchTTL = 10 * time.Minute

// authService implements AuthService
type authService struct {
	accountRepo AccountRepository
	tokenRepo   TokenRepository
	github      GitHubExchanger
	tokenGen    *auth.TokenGenerator
	latch       *exchangeLatch
	logger      *zap.Logger
}

// NewAuthService creates a new auth service. github may be nil when OAuth
// login is not configured.
func NewAuthService(
	accountRepo AccountRepository,
	tokenRepo TokenRepository,
	githubClient GitHubExchanger,
	tokenGen *auth.TokenGenerator,
	logger *zap.Logger,
) *authService {
	return &authService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		github:      githubClient,
		tokenGen:    tokenGen,
		latch:       newExchangeLatch(exchangeLatchTTL),
		logger:      logger,
	}
}

// Login authenticates an account with credentials. Invalid credentials never
// create a session; a successful login persists exactly one refresh token.
func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.Account, string, string, error) {
	req.AccountID = strings.TrimSpace(req.AccountID)
	if req.AccountID == "" {
		return nil, "", "", fmt.Errorf("account id cannot be empty")
	}

	if req.Password == "" {
		return nil, "", "", fmt.Errorf("password cannot be empty")
	}

	account, err := s.accountRepo.GetByAccountID(ctx, req.AccountID)
	if err != nil {
		return nil, "", "", err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, "", "", fmt.Errorf("invalid credentials")
	}

	accessToken, refreshToken, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, "", "", err
	}

	return account, accessToken, refreshToken, nil
}

// GitHubLogin exchanges an authorization code for a session. The exchange
// happens exactly once per code: a repeated or concurrent submission of the
// same code observes the first exchange's outcome instead of exchanging again
// (the code is consumed by GitHub on the first exchange, so a second upstream
// call could only fail). A failed exchange is terminal for that code.
func (s *authService) GitHubLogin(ctx context.Context, code string) (*models.Account, string, string, error) {
	if s.github == nil {
		return nil, "", "", fmt.Errorf("github login is not configured")
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, "", "", fmt.Errorf("authorization code cannot be empty")
	}

	ex, owned := s.latch.begin(code)
	if !owned {
		// Another submission of this code already ran (or is running) the
		// exchange; wait for its outcome instead of exchanging again.
		select {
		case <-ex.done:
		case <-ctx.Done():
			return nil, "", "", ctx.Err()
		}

		result, err := s.latch.outcome(ex)
		if err != nil {
			return nil, "", "", err
		}
		return s.resolveResult(ctx, result)
	}

	result, err := s.exchange(ctx, code)
	if err != nil {
		s.latch.fail(ex, err)
		return nil, "", "", err
	}

	s.latch.complete(ex, result)
	return s.resolveResult(ctx, result)
}

// exchange performs the single upstream exchange and issues a session
func (s *authService) exchange(ctx context.Context, code string) (*loginResult, error) {
	info, err := s.github.ExchangeCode(ctx, code)
	if err != nil {
		s.logger.Warn("github code exchange failed", zap.Error(err))
		return nil, fmt.Errorf("invalid or expired authorization code")
	}

	account, err := s.accountRepo.GetByGitHubLogin(ctx, info.Login)
	if err != nil {
		s.logger.Warn("github login not linked to an account", zap.String("githubLogin", info.Login))
		return nil, fmt.Errorf("no account linked to this github login")
	}

	accessToken, refreshToken, err := s.issueSession(ctx, account)
	if err != nil {
		return nil, err
	}

	return &loginResult{
		accountID:    account.ID,
		accessToken:  accessToken,
		refreshToken: refreshToken,
	}, nil
}

// resolveResult loads the account behind a finished exchange
func (s *authService) resolveResult(ctx context.Context, result *loginResult) (*models.Account, string, string, error) {
	account, err := s.accountRepo.GetByID(ctx, result.accountID)
	if err != nil {
		return nil, "", "", err
	}
	return account, result.accessToken, result.refreshToken, nil
}

// Refresh validates and rotates a refresh token.
//
// The existence check and the token validation are independent, so they run
// in parallel the same way registration credential checks do.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	errorChan := make(chan error, 2)
	tokenChan := make(chan *models.AccountToken, 1) // Buffered to prevent goroutine leak

	// Check the token exists in the database and return it
	go func() {
		accountToken, err := s.tokenRepo.GetByToken(ctx, refreshToken)
		if err != nil {
			errorChan <- fmt.Errorf("failed to get refresh token: %w", err)
			tokenChan <- nil
			return
		}
		tokenChan <- accountToken
		errorChan <- nil
	}()

	// Validate the refresh token signature and expiry
	go func() {
		if err := s.tokenGen.ValidateRefreshToken(refreshToken); err != nil {
			errorChan <- fmt.Errorf("invalid or expired refresh token")
			// Remove the dead token if it is still stored
			s.tokenRepo.DeleteByToken(ctx, refreshToken)
			return
		}
		errorChan <- nil
	}()

	for range 2 {
		if err := <-errorChan; err != nil {
			return "", "", err
		}
	}
	accountToken := <-tokenChan
	if accountToken == nil {
		return "", "", fmt.Errorf("failed to refresh token")
	}

	// The role claim comes from the account row, never from the old token
	account, err := s.accountRepo.GetByID(ctx, accountToken.AccountID)
	if err != nil {
		return "", "", err
	}

	accessToken, newRefreshToken, err := s.tokenGen.GenerateTokens(accountToken.AccountID, int(account.Role))
	if err != nil {
		return "", "", err
	}

	// Rotation: the stored row is updated in place, so the old token cannot be replayed
	if err := s.tokenRepo.UpdateToken(ctx, refreshToken, newRefreshToken, accountToken.AccountID); err != nil {
		return "", "", err
	}

	return accessToken, newRefreshToken, nil
}

// Logout deletes the stored refresh token, ending the session. A missing
// token is not an error: logout is idempotent.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil
	}
	return s.tokenRepo.DeleteByToken(ctx, refreshToken)
}

// CurrentUser returns the session payload for an authenticated account
func (s *authService) CurrentUser(ctx context.Context, accountID int) (*models.SessionUser, error) {
	account, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return models.SessionUserFrom(account), nil
}

// issueSession generates a token pair and persists the refresh token
func (s *authService) issueSession(ctx context.Context, account *models.Account) (string, string, error) {
	accessToken, refreshToken, err := s.tokenGen.GenerateTokens(account.ID, int(account.Role))
	if err != nil {
		return "", "", fmt.Errorf("failed to generate tokens: %w", err)
	}

	accountToken := &models.AccountToken{
		AccountID: account.ID,
		Token:     refreshToken,
	}
	if err := s.tokenRepo.Create(ctx, accountToken); err != nil {
		return "", "", fmt.Errorf("failed to save refresh token: %w", err)
	}

	return accessToken, refreshToken, nil
}
