// Package accounts is the account store: keyed storage for account records
// with lookups by id and login, paging, and row-level writes.
package accounts

import (
	"context"
	"math"
	"time"

	"github.com/dmitrijs2005/accounts/internal/server/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Repository is implemented by PostgresRepository. Lookups report absence
// with common.ErrorNotFound; failed writes return *common.PersistenceError.
type Repository interface {
	// GetByID returns the full stored record, secret hash included. The
	// value is detached: changing it does not change storage.
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	// GetByLogin returns the public projection of the account.
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	// GetByLoginWithSecret returns the full record for credential checks.
	GetByLoginWithSecret(ctx context.Context, login string) (*models.Account, error)
	ListPage(ctx context.Context, pageNumber, pageSize int) (*models.Page, error)
	// ListStale returns enabled accounts created at or before cutoff. Inside
	// a transaction the rows stay locked until commit.
	ListStale(ctx context.Context, cutoff time.Time) ([]models.Account, error)

	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) (*models.Account, error)
	Delete(ctx context.Context, account *models.Account) (*models.Account, error)
}

// ClampPage normalises paging input: pages start at 1, sizes fall back to
// DefaultPageSize and are capped at MaxPageSize.
func ClampPage(pageNumber, pageSize int) (int, int) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageNumber, pageSize
}

// PageOffset returns the number of rows before a clamped page. It reports
// false when the offset does not fit in an int; no rows live that far.
func PageOffset(pageNumber, pageSize int) (int, bool) {
	if pageNumber-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (pageNumber - 1) * pageSize, true
}
