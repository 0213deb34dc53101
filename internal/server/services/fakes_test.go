package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/dmitrijs2005/accounts/internal/server/repositories/accounts"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// fakeAccountsRepo is an in-memory accounts.Repository with error injection.
type fakeAccountsRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Account

	getErr       error
	listStaleErr error
	createErr    error
	updateErr    error
	deleteErr    error

	updateCalls int
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{rows: map[int64]models.Account{}}
}

// seed stores a without going through the service and returns its id.
func (f *fakeAccountsRepo) seed(a models.Account) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a.ID = f.nextID
	f.rows[a.ID] = a
	return a.ID
}

func (f *fakeAccountsRepo) stored(id int64) (models.Account, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.rows[id]
	return a, ok
}

func (f *fakeAccountsRepo) GetByID(_ context.Context, id int64) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (f *fakeAccountsRepo) findLogin(login string) (models.Account, bool) {
	for _, a := range f.rows {
		if a.Login == login {
			return a, true
		}
	}
	return models.Account{}, false
}

func (f *fakeAccountsRepo) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	a, err := f.GetByLoginWithSecret(ctx, login)
	if err != nil {
		return nil, err
	}
	public := a.Public()
	return &public, nil
}

func (f *fakeAccountsRepo) GetByLoginWithSecret(_ context.Context, login string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.findLogin(login)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (f *fakeAccountsRepo) sortedIDs() []int64 {
	ids := make([]int64, 0, len(f.rows))
	for id := range f.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeAccountsRepo) ListPage(_ context.Context, pageNumber, pageSize int) (*models.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pageNumber, pageSize = accounts.ClampPage(pageNumber, pageSize)

	ids := f.sortedIDs()
	items := []models.Account{}
	offset, ok := accounts.PageOffset(pageNumber, pageSize)
	if !ok {
		return &models.Page{Items: items, TotalCount: int64(len(ids))}, nil
	}
	for i := offset; i < len(ids) && len(items) < pageSize; i++ {
		items = append(items, f.rows[ids[i]].Public())
	}
	return &models.Page{Items: items, TotalCount: int64(len(ids))}, nil
}

func (f *fakeAccountsRepo) ListStale(_ context.Context, cutoff time.Time) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listStaleErr != nil {
		return nil, f.listStaleErr
	}
	var out []models.Account
	for _, id := range f.sortedIDs() {
		a := f.rows[id]
		if a.Enabled && !a.CreatedAt.After(cutoff) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAccountsRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, common.NewPersistenceError("insert account", f.createErr)
	}
	if _, taken := f.findLogin(a.Login); taken {
		return nil, common.NewPersistenceError("insert account", common.ErrorConflict)
	}
	f.nextID++
	a.ID = f.nextID
	f.rows[a.ID] = *a
	return a, nil
}

func (f *fakeAccountsRepo) Update(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if f.updateErr != nil {
		return nil, common.NewPersistenceError("update account", f.updateErr)
	}
	if _, ok := f.rows[a.ID]; !ok {
		return nil, common.NewPersistenceError("update account", common.ErrNoRowsAffected)
	}
	f.rows[a.ID] = *a
	public := a.Public()
	return &public, nil
}

func (f *fakeAccountsRepo) Delete(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, common.NewPersistenceError("delete account", f.deleteErr)
	}
	if _, ok := f.rows[a.ID]; !ok {
		return nil, common.NewPersistenceError("delete account", common.ErrNoRowsAffected)
	}
	delete(f.rows, a.ID)
	public := a.Public()
	return &public, nil
}

type fakeRepoManager struct {
	accounts *fakeAccountsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository     { return m.accounts }

func newSQLMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func clock(t time.Time) func() time.Time { return func() time.Time { return t } }
