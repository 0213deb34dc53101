package admin

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accounts/internal/server/services"
)

// AccountService is the part of the account lifecycle the tool drives.
type AccountService interface {
	Create(ctx context.Context, candidate *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	ListPage(ctx context.Context, pageNumber, pageSize int) (*models.Page, error)
	Update(ctx context.Context, candidate *models.Account) (*models.Account, error)
	SoftDelete(ctx context.Context, id int64) (*models.Account, error)
	HardDelete(ctx context.Context, id int64) (*models.Account, error)
}

// Sweeper runs a single inactivity sweep.
type Sweeper interface {
	SweepOnce(ctx context.Context) (int, error)
}

type Services struct {
	Accounts AccountService
	Sweeper  Sweeper
}

// Opener connects the services to storage and returns a function releasing
// them.
type Opener func(ctx context.Context, cfg *config.Config) (*Services, func() error, error)

// OpenServices connects to cfg.DatabaseDSN and applies pending migrations.
func OpenServices(ctx context.Context, cfg *config.Config) (*Services, func() error, error) {
	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	return &Services{
		Accounts: services.NewAccountService(db, rm),
		Sweeper:  services.NewSweeper(db, rm, cfg, logging.Nop{}),
	}, db.Close, nil
}
