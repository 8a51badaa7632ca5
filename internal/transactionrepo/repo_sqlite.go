// Package transactionrepo manages repository layer of the append-only
// transaction ledger.
package transactionrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/dbpkg"
	"github.com/bankofkat/ledger/pkg/errorspkg"
	"github.com/bankofkat/ledger/pkg/moneypkg"
)

const createdAtLayout = "2006-01-02 15:04:05"

// Repo facilitates transaction ledger repository layer logic.
type Repo struct {
	db dbpkg.SQLInterface
}

// NewRepo returns transaction Repo.
func NewRepo(db dbpkg.SQLInterface) *Repo {
	return &Repo{db: db}
}

const createQuery = `
INSERT INTO
    transactions (description, date, source_id, dest_id, amount)
VALUES
    (?, ?, ?, ?, ?)
RETURNING id, created_at
`

// Create appends a ledger row and then returns it. It must run inside the same
// atomic unit as the balance change it records.
func (r *Repo) Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.Description,
		arg.Date.Format(domain.DateLayout),
		nullableID(arg.SourceID),
		nullableID(arg.DestID),
		arg.Amount,
	)

	tx := domain.Transaction{
		Description: arg.Description,
		Date:        dateOnly(arg.Date),
		SourceID:    arg.SourceID,
		DestID:      arg.DestID,
		Amount:      arg.Amount,
	}

	var createdAt string

	if err := row.Scan(&tx.ID, &createdAt); err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", arg)
		return tx, errorspkg.ErrInternal
	}

	t, err := time.Parse(createdAtLayout, createdAt)
	if err != nil {
		l.Error().Err(err).Send()
		return tx, errorspkg.ErrInternal
	}

	tx.CreatedAt = t

	return tx, nil
}

const listByAccountQuery = `
SELECT
    id, description, date, source_id, dest_id, amount, created_at
FROM transactions
WHERE
    (source_id = ?1 OR dest_id = ?1)
    AND (?2 IS NULL OR date >= ?2)
    AND (?3 IS NULL OR date <= ?3)
ORDER BY date DESC, id DESC
LIMIT ?4 OFFSET ?5
`

// ListByAccount returns the account's ledger rows in reverse chronological
// order, optionally bounded by a date range.
func (r *Repo) ListByAccount(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listByAccountQuery,
		arg.AccountID,
		nullableDate(arg.From),
		nullableDate(arg.To),
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, tx)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const netQuery = `
SELECT amount, dest_id IS NOT NULL AND dest_id = ?1
FROM transactions
WHERE source_id = ?1 OR dest_id = ?1
`

// Net returns the sum of every ledger amount crediting the account minus every
// amount debiting it. Summation happens in exact decimal arithmetic.
func (r *Repo) Net(ctx context.Context, accountID int32) (string, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, netQuery, accountID)
	if err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}
	defer rows.Close()

	net := decimal.Zero

	for rows.Next() {
		var (
			amount   string
			isCredit bool
		)

		if err := rows.Scan(&amount, &isCredit); err != nil {
			l.Error().Err(err).Send()
			return "", errorspkg.ErrInternal
		}

		d, err := moneypkg.Parse(amount)
		if err != nil {
			l.Error().Err(err).Send()
			return "", errorspkg.ErrInternal
		}

		if isCredit {
			net = net.Add(d)
		} else {
			net = net.Sub(d)
		}
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return "", errorspkg.ErrInternal
	}

	return moneypkg.String(net), nil
}

func nullableID(id *int32) sql.NullInt32 {
	if id == nil {
		return sql.NullInt32{}
	}

	return sql.NullInt32{Int32: *id, Valid: true}
}

func nullableDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: t.Format(domain.DateLayout), Valid: true}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (domain.Transaction, error) {
	var (
		tx        domain.Transaction
		date      string
		source    sql.NullInt32
		dest      sql.NullInt32
		createdAt string
	)

	err := row.Scan(&tx.ID, &tx.Description, &date, &source, &dest, &tx.Amount, &createdAt)
	if err != nil {
		return tx, err
	}

	if tx.Date, err = time.Parse(domain.DateLayout, date); err != nil {
		return tx, err
	}

	if tx.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return tx, err
	}

	if source.Valid {
		tx.SourceID = &source.Int32
	}

	if dest.Valid {
		tx.DestID = &dest.Int32
	}

	return tx, nil
}
