package domain

import "time"

type User struct {
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

// UserContext is the authenticated caller's identity, attached to every
// search request. Roles keep database order.
type UserContext struct {
	UserID     string   `json:"user_id"`
	Email      string   `json:"email"`
	Department string   `json:"department"`
	Roles      []string `json:"roles"`
}

func (u UserContext) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (u UserContext) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// AuditEntry records one search for compliance. DocIDs is the deduplicated
// set of source documents surfaced to the user.
type AuditEntry struct {
	UserID    string
	QueryText string
	DocIDs    []string
	Timestamp time.Time
	Allowed   bool
}
