// Package models defines the records persisted by the account store.
package models

import "time"

// Account is the stored user identity.
//
// Secret holds the argon2id hash of the account password when the value
// comes from storage, and the plaintext candidate when it comes from a
// caller. It is blanked on every value handed back to callers.
type Account struct {
	ID            int64      `db:"id" json:"id"`
	Login         string     `db:"login" json:"login"`
	Secret        string     `db:"secret_hash" json:"password,omitempty"`
	Email         string     `db:"email" json:"email"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	DeactivatedAt *time.Time `db:"deactivated_at" json:"deactivatedAt"`
	Enabled       bool       `db:"enabled" json:"enabled"`
}

// Public returns a copy fit for callers: secret blanked and timestamps in
// the process-local zone. Storage stays UTC.
func (a Account) Public() Account {
	a.Secret = ""
	a.CreatedAt = a.CreatedAt.Local()
	if a.DeactivatedAt != nil {
		t := a.DeactivatedAt.Local()
		a.DeactivatedAt = &t
	}
	return a
}

// Disable marks the account as soft-deleted at now.
func (a *Account) Disable(now time.Time) {
	t := now.UTC()
	a.Enabled = false
	a.DeactivatedAt = &t
}

// Page is one page of accounts plus the number of accounts in the store.
type Page struct {
	Items      []Account `json:"items"`
	TotalCount int64     `json:"totalCount"`
}
