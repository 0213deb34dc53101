package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/config"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/repomanager"
)

// Sweeper periodically disables enabled accounts created more than
// threshold ago. Each cycle is a single transaction.
type Sweeper struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	interval    time.Duration
	threshold   time.Duration
	now         func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSweeper constructs a Sweeper using cfg.SweepInterval and
// cfg.InactivityThreshold.
func NewSweeper(db *sqlx.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *Sweeper {
	return &Sweeper{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "sweeper"),
		interval:    cfg.SweepInterval,
		threshold:   cfg.InactivityThreshold,
		now:         time.Now,
	}
}

// SweepOnce runs one cycle and returns how many accounts it disabled. On
// error nothing is committed.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.threshold)

	var disabled int
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		stale, err := repo.ListStale(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("error listing stale accounts: %w", err)
		}

		for i := range stale {
			account := stale[i]
			account.Disable(now)
			if _, err := repo.Update(ctx, &account); err != nil {
				return fmt.Errorf("error disabling account %d: %w", account.ID, err)
			}
		}

		disabled = len(stale)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return disabled, nil
}

// Run sweeps immediately and then once per interval until ctx is done.
// Cancellation is observed between cycles; a running batch is finished.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "Starting sweeper", "interval", s.interval.String(), "threshold", s.threshold.String())

	for {
		s.cycle(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping sweeper...")
			return
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) cycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	n, err := s.SweepOnce(context.WithoutCancel(ctx))
	if err != nil {
		s.logger.Error(ctx, "sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info(ctx, "disabled stale accounts", "count", n)
	}
}

// Start runs the sweeper in its own goroutine. Calling Start on a running
// sweeper does nothing.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done

	go func() {
		defer close(done)
		s.Run(ctx)
	}()
}

// Stop cancels a started sweeper and waits for it to return.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
