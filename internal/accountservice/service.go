// Package accountservice manages business logic layer of accounts, including
// the account opening lifecycle.
package accountservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/internal/ledgerrepo"
	"github.com/bankofkat/ledger/pkg/moneypkg"
)

// promotionalSavingsCredit is granted to every newly opened savings account.
// Temporary business rule, not derived from the product catalog.
const promotionalSavingsCredit = "50.00"

// Store provides the data access needed by the account service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accountservice
type Store interface {
	Atomic(ctx context.Context, fn func(q ledgerrepo.Queries) error) error
	Queries() ledgerrepo.Queries
}

// Transferer funds newly opened accounts from an existing account.
type Transferer interface {
	Transfer(ctx context.Context, fromID, toID int32, amount string) (domain.TransferTxResult, error)
}

// Service facilitates account service layer logic.
type Service struct {
	store    Store
	transfer Transferer
	now      func() time.Time
}

// New returns account service struct to manage account business logic.
func New(store Store, transfer Transferer) *Service {
	return &Service{
		store:    store,
		transfer: transfer,
		now:      time.Now,
	}
}

// Open creates an account of the given type for owner, optionally funding it
// with an initial deposit transferred from sourceAccountID.
//
// Creation and the funding transfer are two separate atomic units. When the
// funding transfer fails the freshly created account is deleted again and the
// transfer's failure is returned unchanged.
func (s *Service) Open(ctx context.Context, owner string, typeID int32, initialDeposit string, sourceAccountID int32) (domain.Account, error) {
	l := zerolog.Ctx(ctx)

	deposit, err := moneypkg.Parse(initialDeposit)
	if err != nil {
		l.Info().Err(err).Send()
		return domain.Account{}, domain.ErrInvalidAmount
	}

	var account domain.Account

	err = s.store.Atomic(ctx, func(q ledgerrepo.Queries) error {
		accountType, err := q.AccountTypes.Get(ctx, typeID)
		if err != nil {
			return err
		}

		minDeposit, err := moneypkg.Parse(accountType.MinDeposit)
		if err != nil {
			return err
		}

		if deposit.LessThan(minDeposit) {
			return domain.ErrDepositTooSmall
		}

		balance := moneypkg.String(moneypkg.Zero)

		var maturity *time.Time

		switch accountType.Category {
		case domain.CategoryCertificateOfDeposit:
			m := dateOnly(s.now()).AddDate(0, 0, int(accountType.MaturityDays))
			maturity = &m
		case domain.CategorySavings:
			balance = promotionalSavingsCredit
		}

		account, err = q.Accounts.Create(ctx, owner, accountType, balance, maturity)

		return err
	})
	if err != nil {
		return domain.Account{}, err
	}

	if !deposit.IsPositive() {
		return account, nil
	}

	if _, err := s.transfer.Transfer(ctx, sourceAccountID, account.ID, initialDeposit); err != nil {
		if delErr := s.store.Queries().Accounts.Delete(ctx, account.ID); delErr != nil {
			l.Error().Err(delErr).Msgf("rollback of account %v failed", account.ID)
		}

		return domain.Account{}, err
	}

	return s.store.Queries().Accounts.Get(ctx, account.ID)
}

// Get returns the account with the given id.
func (s *Service) Get(ctx context.Context, id int32) (domain.Account, error) {
	return s.store.Queries().Accounts.Get(ctx, id)
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Account, error) {
	limit := pageSize
	offset := (pageID - 1) * pageSize

	return s.store.Queries().Accounts.List(ctx, owner, limit, offset)
}

// ListTransactions returns the account's ledger in reverse chronological order.
func (s *Service) ListTransactions(ctx context.Context, arg domain.ListTransactionsParams) ([]domain.Transaction, error) {
	q := s.store.Queries()

	if _, err := q.Accounts.Get(ctx, arg.AccountID); err != nil {
		return nil, err
	}

	return q.Transactions.ListByAccount(ctx, arg)
}

// ListTypes returns the product catalog.
func (s *Service) ListTypes(ctx context.Context) ([]domain.AccountType, error) {
	return s.store.Queries().AccountTypes.List(ctx)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
