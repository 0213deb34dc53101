package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/logging"
	"github.com/dmitrijs2005/accounts/internal/server/httpserver"
	"github.com/dmitrijs2005/accounts/internal/server/models"
)

// memAccounts is a minimal account store behind the real HTTP handlers.
type memAccounts struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.Account
}

func (m *memAccounts) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Login == a.Login {
			return nil, common.ErrorConflict
		}
	}
	if a.Email == "" {
		return nil, &common.ValidationError{Fields: map[string]string{"email": "cannot be blank"}}
	}
	m.nextID++
	out := models.Account{ID: m.nextID, Login: a.Login, Email: a.Email, Enabled: true, CreatedAt: time.Now().UTC()}
	m.rows[out.ID] = out
	return &out, nil
}

func (m *memAccounts) GetByID(_ context.Context, id int64) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (m *memAccounts) ListPage(_ context.Context, n, size int) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := []models.Account{}
	for id := int64(1); id <= m.nextID; id++ {
		if a, ok := m.rows[id]; ok {
			items = append(items, a)
		}
	}
	return &models.Page{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *memAccounts) Update(_ context.Context, a *models.Account) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[a.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	out := *a
	out.Secret = ""
	m.rows[a.ID] = out
	return &out, nil
}

func (m *memAccounts) SoftDelete(ctx context.Context, id int64) (*models.Account, error) {
	a, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Disable(time.Now())
	return m.Update(ctx, a)
}

func (m *memAccounts) HardDelete(ctx context.Context, id int64) (*models.Account, error) {
	a, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	delete(m.rows, id)
	m.mu.Unlock()
	return a, nil
}

type stubAuth struct{}

func (stubAuth) Login(_ context.Context, login, secret string) (string, *models.Account, error) {
	if login == "admin" && secret == "pw" {
		return "tok", &models.Account{ID: 1}, nil
	}
	return "", nil, common.ErrorUnauthorized
}

func (stubAuth) ValidateToken(token string) (int64, error) {
	if token == "tok" {
		return 1, nil
	}
	return 0, common.ErrInvalidToken
}

func newTestClient(t *testing.T) *HTTPClient {
	t.Helper()
	srv := httpserver.NewHTTPServer("", logging.Nop{}, &memAccounts{rows: map[int64]models.Account{}}, stubAuth{}, 0)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return NewHTTPClient(ts.URL, ts.Client())
}

func TestHTTPClient_Login(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Ping(ctx))

	_, err := c.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	err = c.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	require.NoError(t, c.Login(ctx, "admin", "pw"))

	c.accessToken = "forged"
	_, err = c.Get(ctx, 1)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestHTTPClient_AccountRoundTrip(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	require.NoError(t, c.Login(ctx, "admin", "pw"))

	created, err := c.Create(ctx, &models.Account{Login: "alice", Secret: "s1", Email: "a@x.io"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	_, err = c.Create(ctx, &models.Account{Login: "alice", Secret: "s2", Email: "b@x.io"})
	assert.ErrorIs(t, err, common.ErrorConflict)

	_, err = c.Create(ctx, &models.Account{Login: "bob", Secret: "s2"})
	var bad *BadRequestError
	require.ErrorAs(t, err, &bad)
	assert.Contains(t, bad.Fields, "email")

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Login)

	page, err := c.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)

	got.Email = "new@x.io"
	updated, err := c.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, "new@x.io", updated.Email)

	disabled, err := c.Disable(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)
	assert.NotNil(t, disabled.DeactivatedAt)

	_, err = c.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = c.Get(ctx, created.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestHTTPClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, nil)
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)

	ts.Close()
	assert.ErrorIs(t, c.Ping(context.Background()), ErrUnavailable)
}
