package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/cryptox"
	"github.com/dmitrijs2005/accounts/internal/server/auth"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
)

// AuthService checks credentials and issues access tokens. It never creates
// accounts.
type AuthService struct {
	db            *sqlx.DB
	repomanager   repomanager.RepositoryManager
	jwtSecret     []byte
	tokenValidity time.Duration
}

// NewAuthService constructs an AuthService signing tokens with cfg.SecretKey.
func NewAuthService(db *sqlx.DB, m repomanager.RepositoryManager, cfg *config.Config) *AuthService {
	return &AuthService{
		db:            db,
		repomanager:   m,
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: common.TokenValidityDuration,
	}
}

// FindByCredentials returns the stored account whose login and secret both
// match, or common.ErrorNotFound. Unknown logins cost as much as wrong
// secrets.
func (s *AuthService) FindByCredentials(ctx context.Context, login, secret string) (*models.Account, error) {
	account, err := s.repomanager.Accounts(s.db).GetByLoginWithSecret(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.VerifyDummy(secret)
		}
		return nil, err
	}

	ok, err := cryptox.VerifySecret(secret, account.Secret)
	if err != nil {
		return nil, fmt.Errorf("error verifying secret for account %d: %w", account.ID, err)
	}
	if !ok {
		return nil, common.ErrorNotFound
	}
	return account, nil
}

// Authenticate returns the public view of the account matching login and
// secret. Mismatches yield common.ErrorUnauthorized and disabled accounts
// common.ErrorAccountDisabled.
func (s *AuthService) Authenticate(ctx context.Context, login, secret string) (*models.Account, error) {
	account, err := s.FindByCredentials(ctx, login, secret)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}

	if !account.Enabled {
		return nil, common.ErrorAccountDisabled
	}

	public := account.Public()
	return &public, nil
}

// IssueToken signs a token asserting account.ID, valid for 24 hours.
func (s *AuthService) IssueToken(account *models.Account) (string, error) {
	token, err := auth.GenerateToken(account.ID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Login authenticates and issues a token in one step.
func (s *AuthService) Login(ctx context.Context, login, secret string) (string, *models.Account, error) {
	account, err := s.Authenticate(ctx, login, secret)
	if err != nil {
		return "", nil, err
	}

	token, err := s.IssueToken(account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// ValidateToken returns the account id asserted by a token issued by this
// service.
func (s *AuthService) ValidateToken(token string) (int64, error) {
	return auth.GetAccountIDFromToken(token, s.jwtSecret)
}
