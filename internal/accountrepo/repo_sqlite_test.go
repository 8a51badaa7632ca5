package accountrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bankofkat/ledger/internal/accounttyperepo"
	"github.com/bankofkat/ledger/internal/domain"
	"github.com/bankofkat/ledger/pkg/dbpkg"
	"github.com/bankofkat/ledger/pkg/randompkg"
)

func setupRepos(t *testing.T) (*Repo, *accounttyperepo.Repo) {
	t.Helper()
	db := dbpkg.SetupTest(t)
	return NewRepo(db), accounttyperepo.NewRepo(db)
}

func createRandomType(t *testing.T, typeRepo *accounttyperepo.Repo) domain.AccountType {
	t.Helper()

	accountType, err := typeRepo.Create(context.Background(), domain.AccountType{
		Name:           "test-" + randompkg.String(10),
		Category:       domain.CategoryChecking,
		MinDeposit:     randompkg.AmountBetween(10, 100),
		MinBalance:     "0.00",
		MaintenanceFee: "0.00",
		OverdraftFee:   randompkg.AmountBetween(20, 40),
		APY:            randompkg.FloatBetween(0, 5),
	})
	require.NoError(t, err)

	return accountType
}

func createRandomAccount(t *testing.T, testRepo *Repo, accountType domain.AccountType) domain.Account {
	t.Helper()

	account, err := testRepo.Create(context.Background(), randompkg.Owner(), accountType,
		randompkg.AmountBetween(100, 1000), nil)
	require.NoError(t, err)

	return account
}

func TestCreate(t *testing.T) {
	testRepo, typeRepo := setupRepos(t)
	accountType := createRandomType(t, typeRepo)

	owner := randompkg.Owner()
	maturity := time.Date(2027, time.March, 15, 0, 0, 0, 0, time.UTC)

	account, err := testRepo.Create(context.Background(), owner, accountType, "1000.00", &maturity)
	require.NoError(t, err)
	require.NotZero(t, account.ID)
	require.Equal(t, owner, account.Owner)
	require.Equal(t, accountType, account.Type)
	require.Equal(t, "1000.00", account.Balance)
	require.NotNil(t, account.Maturity)
	require.True(t, maturity.Equal(*account.Maturity))
	require.WithinDuration(t, time.Now().UTC(), account.CreatedAt, 5*time.Second)

	t.Run("UnknownType", func(t *testing.T) {
		_, err := testRepo.Create(context.Background(), owner, domain.AccountType{ID: 404_404}, "0.00", nil)
		require.ErrorIs(t, err, domain.ErrAccountTypeNotFound)
	})
}

func TestGet(t *testing.T) {
	testRepo, typeRepo := setupRepos(t)
	created := createRandomAccount(t, testRepo, createRandomType(t, typeRepo))

	got, err := testRepo.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, created.Owner, got.Owner)
	require.Equal(t, created.Type, got.Type)
	require.Equal(t, created.Balance, got.Balance)
	require.Nil(t, got.Maturity)

	t.Run("NotFound", func(t *testing.T) {
		_, err := testRepo.Get(context.Background(), 404_404)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestList(t *testing.T) {
	testRepo, typeRepo := setupRepos(t)
	accountType := createRandomType(t, typeRepo)

	owner := randompkg.Owner()
	for i := 0; i < 5; i++ {
		_, err := testRepo.Create(context.Background(), owner, accountType,
			randompkg.AmountBetween(100, 1000), nil)
		require.NoError(t, err)
	}
	createRandomAccount(t, testRepo, accountType) // different owner

	accounts, err := testRepo.List(context.Background(), owner, 3, 0)
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	for _, account := range accounts {
		require.Equal(t, owner, account.Owner)
	}

	rest, err := testRepo.List(context.Background(), owner, 3, 3)
	require.NoError(t, err)
	require.Len(t, rest, 2)
}

func TestListIDs(t *testing.T) {
	testRepo, typeRepo := setupRepos(t)
	accountType := createRandomType(t, typeRepo)

	want := make([]int32, 0, 3)
	for i := 0; i < 3; i++ {
		want = append(want, createRandomAccount(t, testRepo, accountType).ID)
	}

	ids, err := testRepo.ListIDs(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, ids)
}

func TestSetBalance(t *testing.T) {
	testRepo, typeRepo := setupRepos(t)
	account := createRandomAccount(t, testRepo, createRandomType(t, typeRepo))

	err := testRepo.SetBalance(context.Background(), account.ID, "123.45")
	require.NoError(t, err)

	got, err := testRepo.Get(context.Background(), account.ID)
	require.NoError(t, err)
	require.Equal(t, "123.45", got.Balance)

	t.Run("NotFound", func(t *testing.T) {
		err := testRepo.SetBalance(context.Background(), 404_404, "0.00")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestDelete(t *testing.T) {
	testRepo, typeRepo := setupRepos(t)
	account := createRandomAccount(t, testRepo, createRandomType(t, typeRepo))

	err := testRepo.Delete(context.Background(), account.ID)
	require.NoError(t, err)

	_, err = testRepo.Get(context.Background(), account.ID)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}
