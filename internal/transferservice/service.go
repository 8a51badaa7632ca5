// Package transferservice manages business logic layer of transfers.
package transferservice

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/internal/ledgerrepo"
	"github.com/bankofkat/ledger/pkg/moneypkg"
)

// DescriptionTransfer is the ledger description of a successful transfer.
const DescriptionTransfer = "Electronic Funds Transfer"

// Store provides the atomic data access needed by the transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Store interface {
	Atomic(ctx context.Context, fn func(q ledgerrepo.Queries) error) error
}

// Service facilitates transfer service layer logic.
type Service struct {
	store Store
	now   func() time.Time
}

// New returns transfer service struct to manage transfer business logic.
func New(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
	}
}

// Transfer validates and executes a funds movement between two accounts.
//
// Validation short-circuits on the first failing check: non-positive amount,
// same account, insufficient funds, minimum balance, maturity. The
// insufficient funds path is not a no-op: it commits an overdraft fee debit
// against the source account before the transfer is rejected.
func (s *Service) Transfer(ctx context.Context, fromID, toID int32, amount string) (domain.TransferTxResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferTxResult

	amountDec, err := moneypkg.Parse(amount)
	if err != nil {
		l.Info().Err(err).Send()
		return result, domain.ErrInvalidAmount
	}

	if amountDec.LessThanOrEqual(decimal.Zero) {
		return result, domain.ErrNonPositiveAmount
	}

	if fromID == toID {
		return result, domain.ErrSameAccount
	}

	today := dateOnly(s.now())

	var insufficient bool

	err = s.store.Atomic(ctx, func(q ledgerrepo.Queries) error {
		from, err := q.Accounts.Get(ctx, fromID)
		if err != nil {
			return err
		}

		to, err := q.Accounts.Get(ctx, toID)
		if err != nil {
			return err
		}

		fromBalance, err := moneypkg.Parse(from.Balance)
		if err != nil {
			return err
		}

		if fromBalance.LessThan(amountDec) {
			// Committing the fee while rejecting the transfer is intentional:
			// the overdraft fee is charged for the attempt.
			insufficient = true
			return chargeOverdraft(ctx, q, from, to, fromBalance, today)
		}

		minBalance, err := moneypkg.Parse(from.Type.MinBalance)
		if err != nil {
			return err
		}

		if fromBalance.Sub(amountDec).LessThan(minBalance) {
			return domain.ErrBelowMinimumBalance
		}

		if from.Type.Category == domain.CategoryCertificateOfDeposit &&
			from.Maturity != nil && today.Before(*from.Maturity) {
			return domain.ErrMaturityNotReached
		}

		toBalance, err := moneypkg.Parse(to.Balance)
		if err != nil {
			return err
		}

		from.Balance = moneypkg.String(fromBalance.Sub(amountDec))
		to.Balance = moneypkg.String(toBalance.Add(amountDec))

		// To avoid deadlocks execute statements in consistent id order.
		first, second := from, to
		if second.ID < first.ID {
			first, second = second, first
		}

		if err := q.Accounts.SetBalance(ctx, first.ID, first.Balance); err != nil {
			return err
		}

		if err := q.Accounts.SetBalance(ctx, second.ID, second.Balance); err != nil {
			return err
		}

		tx, err := q.Transactions.Create(ctx, domain.CreateTransactionParams{
			Description: DescriptionTransfer,
			Date:        today,
			SourceID:    &from.ID,
			DestID:      &to.ID,
			Amount:      moneypkg.String(amountDec),
		})
		if err != nil {
			return err
		}

		result = domain.TransferTxResult{
			Transaction: tx,
			FromAccount: from,
			ToAccount:   to,
		}

		return nil
	})

	if err != nil {
		l.Info().Err(err).Send()
		return domain.TransferTxResult{}, err
	}

	if insufficient {
		return domain.TransferTxResult{}, domain.ErrInsufficientFunds
	}

	return result, nil
}

// chargeOverdraft debits the source's overdraft fee and appends the matching
// ledger row. A zero fee posts nothing: ledger amounts are strictly positive.
func chargeOverdraft(ctx context.Context, q ledgerrepo.Queries, from, to domain.Account, fromBalance decimal.Decimal, today time.Time) error {
	fee, err := moneypkg.Parse(from.Type.OverdraftFee)
	if err != nil {
		return err
	}

	if !fee.IsPositive() {
		return nil
	}

	if err := q.Accounts.SetBalance(ctx, from.ID, moneypkg.String(fromBalance.Sub(fee))); err != nil {
		return err
	}

	_, err = q.Transactions.Create(ctx, domain.CreateTransactionParams{
		Description: fmt.Sprintf("Overdraft Fee (attempted deposit to account no. %s)", to.Number()),
		Date:        today,
		SourceID:    &from.ID,
		Amount:      moneypkg.String(fee),
	})

	return err
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
