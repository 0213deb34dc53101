package admin

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/client"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

var errSweepNeedsDatabase = errors.New("sweep needs direct database access, run it without --server")

// remoteAccounts drives the account lifecycle through the server HTTP API.
type remoteAccounts struct {
	c client.Client
}

func (r *remoteAccounts) Create(ctx context.Context, candidate *models.Account) (*models.Account, error) {
	return r.c.Create(ctx, candidate)
}

func (r *remoteAccounts) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.c.Get(ctx, id)
}

func (r *remoteAccounts) ListPage(ctx context.Context, pageNumber, pageSize int) (*models.Page, error) {
	return r.c.List(ctx, pageNumber, pageSize)
}

func (r *remoteAccounts) Update(ctx context.Context, candidate *models.Account) (*models.Account, error) {
	return r.c.Update(ctx, candidate)
}

func (r *remoteAccounts) SoftDelete(ctx context.Context, id int64) (*models.Account, error) {
	return r.c.Disable(ctx, id)
}

func (r *remoteAccounts) HardDelete(ctx context.Context, id int64) (*models.Account, error) {
	return r.c.Delete(ctx, id)
}

// remoteSweeper stands in for the sweeper when the tool talks to a server;
// the API has no sweep endpoint.
type remoteSweeper struct{}

func (remoteSweeper) SweepOnce(context.Context) (int, error) {
	return 0, errSweepNeedsDatabase
}

// OpenRemote logs in to the server at baseURL and returns services backed by
// its HTTP API.
func OpenRemote(ctx context.Context, baseURL, login string, password []byte) (*Services, func() error, error) {
	c := client.NewHTTPClient(baseURL, nil)
	if err := c.Login(ctx, login, string(password)); err != nil {
		return nil, nil, fmt.Errorf("login to %s failed: %w", baseURL, err)
	}

	return &Services{
		Accounts: &remoteAccounts{c: c},
		Sweeper:  remoteSweeper{},
	}, func() error { return nil }, nil
}
