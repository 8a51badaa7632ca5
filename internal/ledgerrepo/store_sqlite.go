// Package ledgerrepo provides the atomic unit spanning accounts and the
// transaction ledger.
//
// Every balance-affecting operation in the application runs inside
// Store.Atomic so that its balance mutations and matching ledger rows commit
// or roll back together. With the SQLite backend the unit is an IMMEDIATE
// transaction in WAL mode: readers proceed concurrently, writers serialize,
// and lock conflicts surface as domain.ErrContention with no changes applied.
package ledgerrepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bankofkat/ledger/internal/accountrepo"
	"github.com/bankofkat/ledger/internal/accounttyperepo"
	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/internal/transactionrepo"
	"github.com/bankofkat/ledger/pkg/dbpkg"
)

// Queries bundles tx-bound repositories handed to an atomic unit.
type Queries struct {
	Accounts     *accountrepo.Repo
	AccountTypes *accounttyperepo.Repo
	Transactions *transactionrepo.Repo
}

// NewQueries returns Queries bound to the given db handle.
func NewQueries(db dbpkg.SQLInterface) Queries {
	return Queries{
		Accounts:     accountrepo.NewRepo(db),
		AccountTypes: accounttyperepo.NewRepo(db),
		Transactions: transactionrepo.NewRepo(db),
	}
}

// Store executes atomic units against the database.
type Store struct {
	conn *sql.DB
}

// NewStore returns a ledger Store.
func NewStore(conn *sql.DB) *Store {
	return &Store{conn: conn}
}

// Queries returns repositories bound to the bare connection, outside any
// transaction. Read-only callers use them directly.
func (s *Store) Queries() Queries {
	return NewQueries(s.conn)
}

// Atomic runs fn within a database transaction. If fn returns an error the
// transaction rolls back and no balance change or ledger row survives.
// Lock conflicts are reported as domain.ErrContention.
func (s *Store) Atomic(ctx context.Context, fn func(q Queries) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return mapContention(err)
	}

	if err := fn(NewQueries(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			l.Error().Err(rbErr).Send()
			return fmt.Errorf("tx err: %v, rb err: %v", err, rbErr)
		}

		return mapContention(err)
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return mapContention(err)
	}

	return nil
}

func mapContention(err error) error {
	if dbpkg.IsContention(err) {
		return domain.ErrContention
	}

	return err
}
