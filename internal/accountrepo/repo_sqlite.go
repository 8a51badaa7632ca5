// Package accountrepo manages repository layer of accounts.
package accountrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/dbpkg"
	"github.com/bankofkat/ledger/pkg/errorspkg"
)

const createdAtLayout = "2006-01-02 15:04:05"

// Repo facilitates account repository layer logic.
type Repo struct {
	db dbpkg.SQLInterface
}

// NewRepo returns account Repo.
func NewRepo(db dbpkg.SQLInterface) *Repo {
	return &Repo{db: db}
}

const createQuery = `
INSERT INTO
    accounts (owner, type_id, balance, maturity)
VALUES
    (?, ?, ?, ?)
RETURNING id, created_at
`

// Create persists a new account of the given type and then returns it.
func (r *Repo) Create(ctx context.Context, owner string, accountType domain.AccountType, balance string, maturity *time.Time) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	var maturityStr sql.NullString
	if maturity != nil {
		maturityStr = sql.NullString{String: maturity.Format(domain.DateLayout), Valid: true}
	}

	row := r.db.QueryRowContext(ctx, createQuery, owner, accountType.ID, balance, maturityStr)

	a := domain.Account{
		Owner:    owner,
		Type:     accountType,
		Balance:  balance,
		Maturity: maturity,
	}

	var createdAt string

	if err := row.Scan(&a.ID, &createdAt); err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %v, %v)", owner, accountType.ID)

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return a, domain.ErrAccountTypeNotFound
		}

		return a, errorspkg.ErrInternal
	}

	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		l.Error().Err(err).Send()
		return a, errorspkg.ErrInternal
	}

	a.CreatedAt = t

	return a, nil
}

const getQuery = `
SELECT
    a.id, a.owner, a.balance, a.maturity, a.created_at,
    t.id, t.name, t.category, t.min_deposit, t.min_balance, t.maintenance_fee, t.overdraft_fee, t.apy, t.maturity_days
FROM accounts a
JOIN account_types t ON t.id = a.type_id
WHERE a.id = ?
`

// Get returns the account with the given id, including its product rules.
func (r *Repo) Get(ctx context.Context, id int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	a, err := scanAccount(r.db.QueryRowContext(ctx, getQuery, id))
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return a, domain.ErrAccountNotFound
		}

		return a, errorspkg.ErrInternal
	}

	return a, nil
}

const listQuery = `
SELECT
    a.id, a.owner, a.balance, a.maturity, a.created_at,
    t.id, t.name, t.category, t.min_deposit, t.min_balance, t.maintenance_fee, t.overdraft_fee, t.apy, t.maturity_days
FROM accounts a
JOIN account_types t ON t.id = a.type_id
WHERE a.owner = ?
ORDER BY a.id
LIMIT ? OFFSET ?
`

// List returns the specified number of accounts for the given owner.
func (r *Repo) List(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, owner, limit, offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Account{}

	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const listIDsQuery = `
SELECT id FROM accounts ORDER BY id
`

// ListIDs returns the ids of every account. The periodic sweeps iterate on it.
func (r *Repo) ListIDs(ctx context.Context) ([]int32, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listIDsQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	ids := []int32{}

	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return ids, nil
}

const setBalanceQuery = `
UPDATE accounts
SET balance = ?
WHERE id = ?
`

// SetBalance overwrites the account's balance. It must only be called inside
// an atomic unit that has already read the current balance.
func (r *Repo) SetBalance(ctx context.Context, id int32, balance string) error {
	l := zerolog.Ctx(ctx)

	res, err := r.db.ExecContext(ctx, setBalanceQuery, balance, id)
	if err != nil {
		l.Error().Err(err).Send()
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

const deleteQuery = `
DELETE FROM accounts
WHERE id = ?
`

// Delete removes the account with the given id. Only the lifecycle engine's
// compensating rollback uses it.
func (r *Repo) Delete(ctx context.Context, id int32) error {
	_, err := r.db.ExecContext(ctx, deleteQuery, id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (domain.Account, error) {
	var (
		a         domain.Account
		maturity  sql.NullString
		createdAt string
	)

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Balance,
		&maturity,
		&createdAt,
		&a.Type.ID,
		&a.Type.Name,
		&a.Type.Category,
		&a.Type.MinDeposit,
		&a.Type.MinBalance,
		&a.Type.MaintenanceFee,
		&a.Type.OverdraftFee,
		&a.Type.APY,
		&a.Type.MaturityDays,
	)
	if err != nil {
		return a, err
	}

	if maturity.Valid {
		m, err := time.Parse(domain.DateLayout, maturity.String)
		if err != nil {
			return a, err
		}

		a.Maturity = &m
	}

	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		return a, err
	}

	a.CreatedAt = t

	return a, nil
}
