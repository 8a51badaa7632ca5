package accounttyperepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/dbpkg"
	"github.com/bankofkat/ledger/pkg/randompkg"
)

func setupRepo(t *testing.T) *Repo {
	t.Helper()
	return NewRepo(dbpkg.SetupTest(t))
}

func randomType(category domain.Category) domain.AccountType {
	return domain.AccountType{
		Name:           "test-" + randompkg.String(10),
		Category:       category,
		MinDeposit:     randompkg.AmountBetween(10, 100),
		MinBalance:     randompkg.AmountBetween(0, 10),
		MaintenanceFee: randompkg.AmountBetween(0, 10),
		OverdraftFee:   randompkg.AmountBetween(20, 40),
		APY:            randompkg.FloatBetween(0, 5),
	}
}

func TestCreate(t *testing.T) {
	testRepo := setupRepo(t)
	arg := randomType(domain.CategoryChecking)

	created, err := testRepo.Create(context.Background(), arg)
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	require.Equal(t, arg.Name, created.Name)
	require.Equal(t, arg.Category, created.Category)
	require.Equal(t, arg.MinDeposit, created.MinDeposit)
	require.Equal(t, arg.MinBalance, created.MinBalance)
	require.Equal(t, arg.MaintenanceFee, created.MaintenanceFee)
	require.Equal(t, arg.OverdraftFee, created.OverdraftFee)
	require.Equal(t, arg.APY, created.APY)

	t.Run("DuplicateName", func(t *testing.T) {
		_, err := testRepo.Create(context.Background(), arg)
		require.ErrorIs(t, err, domain.ErrAccountTypeExists)
	})
}

func TestGet(t *testing.T) {
	testRepo := setupRepo(t)

	created, err := testRepo.Create(context.Background(), randomType(domain.CategoryCertificateOfDeposit))
	require.NoError(t, err)

	got, err := testRepo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)

	t.Run("NotFound", func(t *testing.T) {
		_, err := testRepo.Get(context.Background(), 404_404)
		require.ErrorIs(t, err, domain.ErrAccountTypeNotFound)
	})
}

func TestGetByName(t *testing.T) {
	testRepo := setupRepo(t)

	created, err := testRepo.Create(context.Background(), randomType(domain.CategorySavings))
	require.NoError(t, err)

	got, err := testRepo.GetByName(context.Background(), created.Name)
	require.NoError(t, err)
	require.Equal(t, created, got)

	t.Run("NotFound", func(t *testing.T) {
		_, err := testRepo.GetByName(context.Background(), "no-such-product")
		require.ErrorIs(t, err, domain.ErrAccountTypeNotFound)
	})
}

func TestList(t *testing.T) {
	testRepo := setupRepo(t)

	// The seed migration installs the default catalog.
	seeded, err := testRepo.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, seeded)

	created, err := testRepo.Create(context.Background(), randomType(domain.CategoryMoneyMarket))
	require.NoError(t, err)

	all, err := testRepo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, len(seeded)+1)
	require.Equal(t, created, all[len(all)-1])
}
