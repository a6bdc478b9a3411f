package handlers

import (
	"context"
	"fmt"
	"net/http"

	authMiddleware "github.com/credit-it/backend/internal/auth/middleware"
	"github.com/credit-it/backend/internal/models"
)

// AccountDirectory resolves the numeric id carried by a session token to
// its account record.
type AccountDirectory interface {
	// GetByID retrieves an account by its primary key.
	GetByID(ctx context.Context, id int) (*models.Account, error)
}

// sessionAccount resolves the caller's own account from the identity the
// auth guard injected. Session-bound routes use this instead of a
// client-supplied account parameter, so a token can only ever act on the
// account it was issued for.
func sessionAccount(r *http.Request, accounts AccountDirectory) (*models.Account, error) {
	id, ok := authMiddleware.GetAccountID(r.Context())
	if !ok {
		return nil, fmt.Errorf("no authenticated account")
	}
	return accounts.GetByID(r.Context(), id)
}
