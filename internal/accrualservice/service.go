// Package accrualservice manages the periodic interest and maintenance fee
// sweeps across all accounts.
package accrualservice

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/internal/ledgerrepo"
	"github.com/bankofkat/ledger/pkg/moneypkg"
)

// Ledger descriptions of accrual postings.
const (
	DescriptionInterest       = "Interest Paid"
	DescriptionMaintenanceFee = "Maintenance Fee"
)

// Store provides the data access needed by the accrual service layer.
type Store interface {
	Atomic(ctx context.Context, fn func(q ledgerrepo.Queries) error) error
	Queries() ledgerrepo.Queries
}

// Service facilitates the monthly accrual sweeps. The scheduler is expected
// to invoke each sweep exactly once per period; the sweeps themselves are not
// idempotent within a period.
type Service struct {
	store   Store
	workers int
	now     func() time.Time
}

// New returns accrual service struct. workers bounds how many accounts are
// processed concurrently.
func New(store Store, workers int) *Service {
	if workers < 1 {
		workers = 1
	}

	return &Service{
		store:   store,
		workers: workers,
		now:     time.Now,
	}
}

// PayMonthlyInterest credits one month of interest to every account whose
// computed interest is not zero.
func (s *Service) PayMonthlyInterest(ctx context.Context) error {
	return s.sweep(ctx, "interest", s.payInterest)
}

// ChargeMonthlyFees debits the product maintenance fee from every account
// whose product carries one.
func (s *Service) ChargeMonthlyFees(ctx context.Context) error {
	return s.sweep(ctx, "fees", s.chargeFee)
}

// sweep runs step for every account across a bounded worker pool. Contention
// is retried per account with exponential backoff; any other per-account
// failure is logged and skipped so it never stalls the rest of the sweep.
func (s *Service) sweep(ctx context.Context, name string, step func(ctx context.Context, id int32) error) error {
	l := zerolog.Ctx(ctx)

	ids, err := s.store.Queries().Accounts.ListIDs(ctx)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, id := range ids {
		id := id

		g.Go(func() error {
			op := func() error {
				err := step(ctx, id)

				if err != nil && !errors.Is(err, domain.ErrContention) {
					return backoff.Permanent(err)
				}

				return err
			}

			if err := backoff.Retry(op, backoff.WithContext(newBackOff(), ctx)); err != nil {
				l.Error().Err(err).Str("sweep", name).Int32("account_id", id).Msg("sweep step failed")
			}

			return nil
		})
	}

	return g.Wait()
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0 // contention is transient; retry until it clears

	return b
}

func (s *Service) payInterest(ctx context.Context, id int32) error {
	return s.store.Atomic(ctx, func(q ledgerrepo.Queries) error {
		a, err := q.Accounts.Get(ctx, id)
		if err != nil {
			return err
		}

		balance, err := moneypkg.Parse(a.Balance)
		if err != nil {
			return err
		}

		interest := moneypkg.MonthlyInterest(balance, a.Type.APY)
		if !interest.IsPositive() {
			return nil
		}

		if err := q.Accounts.SetBalance(ctx, id, moneypkg.String(balance.Add(interest))); err != nil {
			return err
		}

		_, err = q.Transactions.Create(ctx, domain.CreateTransactionParams{
			Description: DescriptionInterest,
			Date:        dateOnly(s.now()),
			DestID:      &a.ID,
			Amount:      moneypkg.String(interest),
		})

		return err
	})
}

func (s *Service) chargeFee(ctx context.Context, id int32) error {
	return s.store.Atomic(ctx, func(q ledgerrepo.Queries) error {
		a, err := q.Accounts.Get(ctx, id)
		if err != nil {
			return err
		}

		fee, err := moneypkg.Parse(a.Type.MaintenanceFee)
		if err != nil {
			return err
		}

		if !fee.IsPositive() {
			return nil
		}

		balance, err := moneypkg.Parse(a.Balance)
		if err != nil {
			return err
		}

		if err := q.Accounts.SetBalance(ctx, id, moneypkg.String(balance.Sub(fee))); err != nil {
			return err
		}

		_, err = q.Transactions.Create(ctx, domain.CreateTransactionParams{
			Description: DescriptionMaintenanceFee,
			Date:        dateOnly(s.now()),
			SourceID:    &a.ID,
			Amount:      moneypkg.String(fee),
		})

		return err
	})
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
