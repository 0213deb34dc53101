package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accounts/internal/common"
	"github.com/dmitrijs2005/accounts/internal/dbx"
	"github.com/dmitrijs2005/accounts/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// SQLSTATE unique_violation
const uniqueViolation = "23505"

const selectColumns = `SELECT id, login, secret_hash, email, created_at, deactivated_at, enabled
		 FROM accounts`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*models.Account, error) {
	account := &models.Account{}
	if err := sqlx.GetContext(ctx, r.db, account, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return account, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.get(ctx, selectColumns+`
		 WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	account, err := r.GetByLoginWithSecret(ctx, login)
	if err != nil {
		return nil, err
	}
	public := account.Public()
	return &public, nil
}

func (r *PostgresRepository) GetByLoginWithSecret(ctx context.Context, login string) (*models.Account, error) {
	return r.get(ctx, selectColumns+`
		 WHERE login = $1`, login)
}

func (r *PostgresRepository) ListPage(ctx context.Context, pageNumber, pageSize int) (*models.Page, error) {
	pageNumber, pageSize = ClampPage(pageNumber, pageSize)

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM accounts`); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	offset, ok := PageOffset(pageNumber, pageSize)
	if !ok {
		return &models.Page{Items: []models.Account{}, TotalCount: total}, nil
	}

	var rows []models.Account
	err := sqlx.SelectContext(ctx, r.db, &rows, selectColumns+`
		 ORDER BY id
		 LIMIT $1 OFFSET $2`, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	items := make([]models.Account, 0, len(rows))
	for _, a := range rows {
		items = append(items, a.Public())
	}

	return &models.Page{Items: items, TotalCount: total}, nil
}

func (r *PostgresRepository) ListStale(ctx context.Context, cutoff time.Time) ([]models.Account, error) {
	var rows []models.Account
	err := sqlx.SelectContext(ctx, r.db, &rows, selectColumns+`
		 WHERE enabled AND created_at <= $1
		 ORDER BY id
		 FOR UPDATE`, cutoff.UTC())
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rows, nil
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (login, secret_hash, email, created_at, deactivated_at, enabled)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`

	err := r.db.QueryRowxContext(ctx, query,
		account.Login, account.Secret, account.Email,
		account.CreatedAt.UTC(), utcOrNil(account.DeactivatedAt), account.Enabled,
	).Scan(&account.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewPersistenceError("insert account", common.ErrNoRowsAffected)
		}
		return nil, common.NewPersistenceError("insert account", classify(err))
	}

	return account, nil
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`UPDATE accounts
		 SET login = $2, secret_hash = $3, email = $4, created_at = $5, deactivated_at = $6, enabled = $7
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		account.ID, account.Login, account.Secret, account.Email,
		account.CreatedAt.UTC(), utcOrNil(account.DeactivatedAt), account.Enabled,
	)
	if err := checkAffected(res, err); err != nil {
		return nil, common.NewPersistenceError("update account", err)
	}

	public := account.Public()
	return &public, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, account *models.Account) (*models.Account, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, account.ID)
	if err := checkAffected(res, err); err != nil {
		return nil, common.NewPersistenceError("delete account", err)
	}

	public := account.Public()
	return &public, nil
}

func checkAffected(res sql.Result, err error) error {
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNoRowsAffected
	}
	return nil
}

// classify wraps a driver error; a unique violation also matches
// common.ErrorConflict.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("db error: %w: %w", common.ErrorConflict, err)
	}
	return fmt.Errorf("db error: %w", err)
}

func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
