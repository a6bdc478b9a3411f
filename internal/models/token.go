package models

import "time"

// AccountToken represents a persisted refresh token row.
// At most one live row exists per client session; rotation replaces the
// token string in place and logout deletes the row.
type AccountToken struct {
	ID        int       `json:"id"`
	AccountID int       `json:"accountId"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}
