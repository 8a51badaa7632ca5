// Package accounttyperepo manages repository layer of the account type catalog.
package accounttyperepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/dbpkg"
	"github.com/bankofkat/ledger/pkg/errorspkg"
)

// Repo facilitates account type repository layer logic.
type Repo struct {
	db dbpkg.SQLInterface
}

// NewRepo returns account type Repo.
func NewRepo(db dbpkg.SQLInterface) *Repo {
	return &Repo{db: db}
}

const createQuery = `
INSERT INTO
    account_types (name, category, min_deposit, min_balance, maintenance_fee, overdraft_fee, apy, maturity_days)
VALUES
    (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id, name, category, min_deposit, min_balance, maintenance_fee, overdraft_fee, apy, maturity_days
`

// Create adds a product to the catalog and then returns it.
func (r *Repo) Create(ctx context.Context, arg domain.AccountType) (domain.AccountType, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Name,
		arg.Category,
		arg.MinDeposit,
		arg.MinBalance,
		arg.MaintenanceFee,
		arg.OverdraftFee,
		arg.APY,
		arg.MaturityDays,
	)

	var t domain.AccountType

	if err := scanType(row, &t); err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)

		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return t, domain.ErrAccountTypeExists
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getQuery = `
SELECT
    id, name, category, min_deposit, min_balance, maintenance_fee, overdraft_fee, apy, maturity_days
FROM account_types
WHERE id = ?
`

// Get returns the account type with the given id.
func (r *Repo) Get(ctx context.Context, id int32) (domain.AccountType, error) {
	l := zerolog.Ctx(ctx)

	var t domain.AccountType

	err := scanType(r.db.QueryRowContext(ctx, getQuery, id), &t)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrAccountTypeNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const getByNameQuery = `
SELECT
    id, name, category, min_deposit, min_balance, maintenance_fee, overdraft_fee, apy, maturity_days
FROM account_types
WHERE name = ?
`

// GetByName returns the account type with the given unique name.
func (r *Repo) GetByName(ctx context.Context, name string) (domain.AccountType, error) {
	l := zerolog.Ctx(ctx)

	var t domain.AccountType

	err := scanType(r.db.QueryRowContext(ctx, getByNameQuery, name), &t)
	if err != nil {
		l.Error().Err(err).Send()

		if err == sql.ErrNoRows {
			return t, domain.ErrAccountTypeNotFound
		}

		return t, errorspkg.ErrInternal
	}

	return t, nil
}

const listQuery = `
SELECT
    id, name, category, min_deposit, min_balance, maintenance_fee, overdraft_fee, apy, maturity_days
FROM account_types
ORDER BY id
`

// List returns the whole product catalog.
func (r *Repo) List(ctx context.Context) ([]domain.AccountType, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.AccountType{}

	for rows.Next() {
		var t domain.AccountType
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.Category,
			&t.MinDeposit,
			&t.MinBalance,
			&t.MaintenanceFee,
			&t.OverdraftFee,
			&t.APY,
			&t.MaturityDays,
		); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanType(row scanner, t *domain.AccountType) error {
	return row.Scan(
		&t.ID,
		&t.Name,
		&t.Category,
		&t.MinDeposit,
		&t.MinBalance,
		&t.MaintenanceFee,
		&t.OverdraftFee,
		&t.APY,
		&t.MaturityDays,
	)
}
