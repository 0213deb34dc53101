package httpserver

import (
	"context"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

type fakeAccounts struct {
	create     func(ctx context.Context, a *models.Account) (*models.Account, error)
	getByID    func(ctx context.Context, id int64) (*models.Account, error)
	listPage   func(ctx context.Context, n, size int) (*models.Page, error)
	update     func(ctx context.Context, a *models.Account) (*models.Account, error)
	softDelete func(ctx context.Context, id int64) (*models.Account, error)
	hardDelete func(ctx context.Context, id int64) (*models.Account, error)
}

func (f *fakeAccounts) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	return f.create(ctx, a)
}

func (f *fakeAccounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return f.getByID(ctx, id)
}

func (f *fakeAccounts) ListPage(ctx context.Context, n, size int) (*models.Page, error) {
	return f.listPage(ctx, n, size)
}

func (f *fakeAccounts) Update(ctx context.Context, a *models.Account) (*models.Account, error) {
	return f.update(ctx, a)
}

func (f *fakeAccounts) SoftDelete(ctx context.Context, id int64) (*models.Account, error) {
	return f.softDelete(ctx, id)
}

func (f *fakeAccounts) HardDelete(ctx context.Context, id int64) (*models.Account, error) {
	return f.hardDelete(ctx, id)
}

const validToken = "good-token"

// fakeAuth accepts alice/s1 and validToken (account 1).
type fakeAuth struct{}

func (fakeAuth) Login(_ context.Context, login, secret string) (string, *models.Account, error) {
	if login == "alice" && secret == "s1" {
		return validToken, &models.Account{ID: 1, Login: "alice", Enabled: true}, nil
	}
	if login == "carol" {
		return "", nil, common.ErrorAccountDisabled
	}
	return "", nil, common.ErrorUnauthorized
}

func (fakeAuth) ValidateToken(token string) (int64, error) {
	switch token {
	case validToken:
		return 1, nil
	case "expired":
		return 0, common.ErrTokenExpired
	default:
		return 0, common.ErrInvalidToken
	}
}

func newTestServer(accounts *fakeAccounts) *HTTPServer {
	if accounts == nil {
		accounts = &fakeAccounts{}
	}
	return NewHTTPServer("127.0.0.1:0", logging.Nop{}, accounts, fakeAuth{}, 0)
}
