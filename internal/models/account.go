package models

type Role int

// Account role constants
const (
	RoleStudent Role = 1
	RoleFaculty Role = 2
)

// String returns the wire name of the role as issued to clients
func (r Role) String() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleFaculty:
		return "Faculty"
	default:
		return "Unknown"
	}
}

// ParseRole maps a wire role name back to a Role. Returns false for unknown names.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "Student":
		return RoleStudent, true
	case "Faculty":
		return RoleFaculty, true
	default:
		return 0, false
	}
}

// Account represents a Cred-It account
type Account struct {
	ID           int    `json:"id"`
	AccountID    string `json:"accountId"`
	DisplayName  string `json:"displayName"`
	PasswordHash string `json:"-"` // Never serialize password hash
	Role         Role   `json:"role"`
	GitHubLogin  string `json:"-"` // Linked GitHub login, empty when not linked
}

// LoginRequest represents a credential login request
type LoginRequest struct {
	AccountID string `json:"accountId"`
	Password  string `json:"password"`
}

// GitHubLoginRequest carries the authorization code from the OAuth callback
type GitHubLoginRequest struct {
	Code string `json:"code"`
}

// SessionUser is the user payload returned on successful authentication.
// The client routes by Role ("Student" -> /HomePage, "Faculty" -> faculty pages).
type SessionUser struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
}

// SessionUserFrom builds the wire payload for an account
func SessionUserFrom(a *Account) *SessionUser {
	return &SessionUser{
		AccountID:   a.AccountID,
		DisplayName: a.DisplayName,
		Role:        a.Role.String(),
	}
}
