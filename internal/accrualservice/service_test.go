package accrualservice

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/internal/ledgerrepo"
	"github.com/bankofkat/ledger/pkg/dbpkg"
	"github.com/bankofkat/ledger/pkg/randompkg"
)

type fixture struct {
	store   *ledgerrepo.Store
	service *Service
}

func setup(t *testing.T) fixture {
	t.Helper()

	store := ledgerrepo.NewStore(dbpkg.SetupTest(t))

	return fixture{store: store, service: New(store, 4)}
}

func (f fixture) createAccount(t *testing.T, balance, maintenanceFee string, apy float64) domain.Account {
	t.Helper()

	accountType, err := f.store.Queries().AccountTypes.Create(context.Background(), domain.AccountType{
		Name:           "test-" + randompkg.String(10),
		Category:       domain.CategorySavings,
		MinDeposit:     "0.00",
		MinBalance:     "0.00",
		MaintenanceFee: maintenanceFee,
		OverdraftFee:   "0.00",
		APY:            apy,
	})
	require.NoError(t, err)

	account, err := f.store.Queries().Accounts.Create(context.Background(),
		randompkg.Owner(), accountType, balance, nil)
	require.NoError(t, err)

	return account
}

func (f fixture) getBalance(t *testing.T, id int32) string {
	t.Helper()

	account, err := f.store.Queries().Accounts.Get(context.Background(), id)
	require.NoError(t, err)

	return account.Balance
}

func (f fixture) listTransactions(t *testing.T, id int32) []domain.Transaction {
	t.Helper()

	transactions, err := f.store.Queries().Transactions.ListByAccount(context.Background(),
		domain.ListTransactionsParams{AccountID: id, Limit: 100})
	require.NoError(t, err)

	return transactions
}

func TestPayMonthlyInterest(t *testing.T) {
	f := setup(t)

	testCases := []struct {
		name         string
		balance      string
		apy          float64
		wantBalance  string
		wantInterest string // empty means no posting
	}{
		{name: "WholeInterest", balance: "1000.00", apy: 12, wantBalance: "1010.00", wantInterest: "10.00"},
		{name: "RoundedInterest", balance: "1234.56", apy: 4.8, wantBalance: "1239.50", wantInterest: "4.94"},
		{name: "RoundsToZero", balance: "0.50", apy: 12, wantBalance: "0.50"},
		{name: "ZeroAPY", balance: "1000.00", apy: 0, wantBalance: "1000.00"},
		{name: "ZeroBalance", balance: "0.00", apy: 12, wantBalance: "0.00"},
	}

	accounts := make([]domain.Account, len(testCases))
	for i, tc := range testCases {
		accounts[i] = f.createAccount(t, tc.balance, "0.00", tc.apy)
	}

	err := f.service.PayMonthlyInterest(context.Background())
	require.NoError(t, err)

	for i, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.wantBalance, f.getBalance(t, accounts[i].ID))

			transactions := f.listTransactions(t, accounts[i].ID)
			if tc.wantInterest == "" {
				require.Empty(t, transactions)
				return
			}

			require.Len(t, transactions, 1)
			require.Equal(t, DescriptionInterest, transactions[0].Description)
			require.Equal(t, tc.wantInterest, transactions[0].Amount)
			require.Nil(t, transactions[0].SourceID)
			require.Equal(t, accounts[i].ID, *transactions[0].DestID)
		})
	}
}

func TestChargeMonthlyFees(t *testing.T) {
	f := setup(t)

	charged := f.createAccount(t, "100.00", "10.00", 0)
	free := f.createAccount(t, "100.00", "0.00", 0)

	err := f.service.ChargeMonthlyFees(context.Background())
	require.NoError(t, err)

	require.Equal(t, "90.00", f.getBalance(t, charged.ID))
	require.Equal(t, "100.00", f.getBalance(t, free.ID))

	transactions := f.listTransactions(t, charged.ID)
	require.Len(t, transactions, 1)
	require.Equal(t, DescriptionMaintenanceFee, transactions[0].Description)
	require.Equal(t, "10.00", transactions[0].Amount)
	require.Equal(t, charged.ID, *transactions[0].SourceID)
	require.Nil(t, transactions[0].DestID)

	require.Empty(t, f.listTransactions(t, free.ID))

	t.Run("FeeCanOverdraw", func(t *testing.T) {
		poor := f.createAccount(t, "5.00", "10.00", 0)

		err := f.service.ChargeMonthlyFees(context.Background())
		require.NoError(t, err)

		require.Equal(t, "-5.00", f.getBalance(t, poor.ID))
	})
}

// TestSweepCoversAllAccounts checks that a sweep larger than the worker pool
// still reaches every account exactly once.
func TestSweepCoversAllAccounts(t *testing.T) {
	f := setup(t)

	const n = 20

	accounts := make([]domain.Account, n)
	for i := range accounts {
		accounts[i] = f.createAccount(t, fmt.Sprintf("%d.00", (i+1)*100), "0.00", 12)
	}

	err := f.service.PayMonthlyInterest(context.Background())
	require.NoError(t, err)

	for i, account := range accounts {
		want := fmt.Sprintf("%d.00", (i+1)*101)
		require.Equal(t, want, f.getBalance(t, account.ID))
		require.Len(t, f.listTransactions(t, account.ID), 1)
	}
}
