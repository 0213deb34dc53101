// Package services contains the account business logic. This file
// implements AccountService, which owns the account lifecycle: creation with
// login uniqueness, updates that preserve the secret and creation time,
// soft-delete, hard-delete and retrieval.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/cryptox"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
)

// AccountService manages accounts. Absent records are reported with
// common.ErrorNotFound, taken logins with common.ErrorConflict, bad input with
// *common.ValidationError and failed writes with *common.PersistenceError.
type AccountService struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

// NewAccountService constructs an AccountService on top of db.
func NewAccountService(db *sqlx.DB, m repomanager.RepositoryManager) *AccountService {
	return &AccountService{db: db, repomanager: m, now: time.Now}
}

// Create stores a new, enabled account. A login that is already taken, by an
// enabled or a disabled account, yields common.ErrorConflict.
func (s *AccountService) Create(ctx context.Context, candidate *models.Account) (*models.Account, error) {
	if err := validateAccount(candidate, true); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	if _, err := repo.GetByLogin(ctx, candidate.Login); err == nil {
		return nil, common.ErrorConflict
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up login: %w", err)
	}

	hash, err := cryptox.HashSecret(candidate.Secret)
	if err != nil {
		return nil, fmt.Errorf("error hashing secret: %w", err)
	}

	account := &models.Account{
		Login:     candidate.Login,
		Secret:    hash,
		Email:     candidate.Email,
		CreatedAt: s.now().UTC(),
		Enabled:   true,
	}

	created, err := repo.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	public := created.Public()
	return &public, nil
}

// GetByID returns the public view of the account.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	public := account.Public()
	return &public, nil
}

// ListPage returns one page of accounts, enabled or not.
func (s *AccountService) ListPage(ctx context.Context, pageNumber, pageSize int) (*models.Page, error) {
	return s.repomanager.Accounts(s.db).ListPage(ctx, pageNumber, pageSize)
}

// Update replaces the stored account with candidate. An empty secret keeps
// the stored one; the creation time is always the stored one. Enabling an
// account clears its deactivation time, disabling it stamps one if none is
// known.
func (s *AccountService) Update(ctx context.Context, candidate *models.Account) (*models.Account, error) {
	if err := validateAccount(candidate, false); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)

	existing, err := repo.GetByID(ctx, candidate.ID)
	if err != nil {
		return nil, err
	}

	updated := *candidate
	if updated.Secret == "" {
		updated.Secret = existing.Secret
	} else {
		if updated.Secret, err = cryptox.HashSecret(updated.Secret); err != nil {
			return nil, fmt.Errorf("error hashing secret: %w", err)
		}
	}
	updated.CreatedAt = existing.CreatedAt

	switch {
	case updated.Enabled:
		updated.DeactivatedAt = nil
	case updated.DeactivatedAt == nil && existing.DeactivatedAt != nil:
		updated.DeactivatedAt = existing.DeactivatedAt
	case updated.DeactivatedAt == nil:
		updated.Disable(s.now())
	}

	result, err := repo.Update(ctx, &updated)
	if err != nil {
		return nil, fmt.Errorf("error updating account: %w", err)
	}
	return result, nil
}

// SoftDelete disables the account. The record and its login claim remain.
func (s *AccountService) SoftDelete(ctx context.Context, id int64) (*models.Account, error) {
	existing, err := s.repomanager.Accounts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// blank so Update carries the stored hash forward
	existing.Secret = ""
	existing.Disable(s.now())

	return s.Update(ctx, existing)
}

// HardDelete removes the account for good; its login becomes free.
func (s *AccountService) HardDelete(ctx context.Context, id int64) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	existing, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := repo.Delete(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("error deleting account: %w", err)
	}
	return deleted, nil
}

func validateAccount(a *models.Account, create bool) error {
	if a == nil {
		return &common.ValidationError{Err: errors.New("account is required")}
	}

	secretRules := []validation.Rule{validation.Length(0, 256)}
	if create {
		secretRules = append(secretRules, validation.Required)
	}

	fields := []*validation.FieldRules{
		validation.Field(&a.Login, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&a.Secret, secretRules...),
	}
	if !create {
		fields = append(fields, validation.Field(&a.ID, validation.Required))
	}

	err := validation.ValidateStruct(a, fields...)
	if err == nil {
		return nil
	}

	ve := &common.ValidationError{Fields: map[string]string{}, Err: err}
	var errs validation.Errors
	if errors.As(err, &errs) {
		for field, fieldErr := range errs {
			ve.Fields[field] = fieldErr.Error()
		}
	}
	return ve
}
