package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (f *fakeAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccountRepo) GetByUserID(_ context.Context, userID uuid.UUID) ([]domain.Account, error) {
	var out []domain.Account
	for _, a := range f.accounts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeAccountRepo) GetAll(_ context.Context) ([]domain.Account, error) {
	out := make([]domain.Account, 0, len(f.accounts))
	for _, a := range f.accounts {
		out = append(out, *a)
	}
	return out, nil
}

func (f *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	cp := *account
	f.accounts[account.ID] = &cp
	return nil
}

func (f *fakeAccountRepo) Update(_ context.Context, account *domain.Account) error {
	a, ok := f.accounts[account.ID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.UserID = account.UserID
	a.Currency = account.Currency
	return nil
}

func (f *fakeAccountRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.accounts[id]; !ok {
		return domain.ErrAccountNotFound
	}
	delete(f.accounts, id)
	return nil
}

func (f *fakeAccountRepo) CloseAccount(_ context.Context, id uuid.UUID, closedAt time.Time) error {
	a, ok := f.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.IsActive = false
	a.ClosedAt = &closedAt
	return nil
}

func (f *fakeAccountRepo) SetBalance(_ context.Context, id uuid.UUID, newBalance decimal.Decimal) error {
	a, ok := f.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance = newBalance
	a.Version++
	return nil
}

func (f *fakeAccountRepo) ExistsByUserID(_ context.Context, userID uuid.UUID) (bool, error) {
	for _, a := range f.accounts {
		if a.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserChecker struct {
	known map[uuid.UUID]bool
}

func (f *fakeUserChecker) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	return f.known[id], nil
}

func seedAccount(repo *fakeAccountRepo, userID uuid.UUID, balance string, active bool) *domain.Account {
	a := &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.RequireFromString(balance),
		Currency: domain.CurrencyRUB,
		Version:  1,
		IsActive: active,
		OpenedAt: time.Now().UTC(),
	}
	repo.accounts[a.ID] = a
	return a
}

func TestCreateAccount(t *testing.T) {
	userID := uuid.New()
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, &fakeUserChecker{known: map[uuid.UUID]bool{userID: true}})
	ctx := context.Background()

	t.Run("opens fresh zero-balance account", func(t *testing.T) {
		account, err := svc.CreateAccount(ctx, userID, domain.CurrencyUSD)
		require.NoError(t, err)
		assert.True(t, account.Balance.IsZero())
		assert.True(t, account.IsActive)
		assert.Equal(t, domain.CurrencyUSD, account.Currency)
		assert.Equal(t, userID, account.UserID)
	})

	t.Run("rejects unknown currency", func(t *testing.T) {
		_, err := svc.CreateAccount(ctx, userID, domain.Currency("XYZ"))
		require.ErrorIs(t, err, domain.ErrInvalidCurrency)
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		_, err := svc.CreateAccount(ctx, uuid.New(), domain.CurrencyRUB)
		require.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestCloseAccount(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("closes zero-balance active account", func(t *testing.T) {
		repo := newFakeAccountRepo()
		svc := NewAccountService(repo, &fakeUserChecker{})
		acct := seedAccount(repo, userID, "0", true)

		require.NoError(t, svc.CloseAccount(ctx, acct.ID))
		assert.False(t, repo.accounts[acct.ID].IsActive)
		assert.NotNil(t, repo.accounts[acct.ID].ClosedAt)
	})

	t.Run("refuses non-zero balance", func(t *testing.T) {
		repo := newFakeAccountRepo()
		svc := NewAccountService(repo, &fakeUserChecker{})
		acct := seedAccount(repo, userID, "10.50", true)

		err := svc.CloseAccount(ctx, acct.ID)
		require.ErrorIs(t, err, domain.ErrNonZeroBalance)
		assert.True(t, repo.accounts[acct.ID].IsActive)
	})

	t.Run("refuses already closed account", func(t *testing.T) {
		repo := newFakeAccountRepo()
		svc := NewAccountService(repo, &fakeUserChecker{})
		acct := seedAccount(repo, userID, "0", false)

		err := svc.CloseAccount(ctx, acct.ID)
		require.ErrorIs(t, err, domain.ErrAccountInactive)
	})

	t.Run("unknown account", func(t *testing.T) {
		svc := NewAccountService(newFakeAccountRepo(), &fakeUserChecker{})
		err := svc.CloseAccount(ctx, uuid.New())
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}

func TestDeleteAccount(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("deletes zero-balance account", func(t *testing.T) {
		repo := newFakeAccountRepo()
		svc := NewAccountService(repo, &fakeUserChecker{})
		acct := seedAccount(repo, userID, "0", true)

		require.NoError(t, svc.DeleteAccount(ctx, acct.ID))
		assert.NotContains(t, repo.accounts, acct.ID)
	})

	t.Run("refuses non-zero balance", func(t *testing.T) {
		repo := newFakeAccountRepo()
		svc := NewAccountService(repo, &fakeUserChecker{})
		acct := seedAccount(repo, userID, "0.01", true)

		err := svc.DeleteAccount(ctx, acct.ID)
		require.ErrorIs(t, err, domain.ErrNonZeroBalance)
		assert.Contains(t, repo.accounts, acct.ID)
	})
}

func TestSetBalance(t *testing.T) {
	userID := uuid.New()
	ctx := context.Background()

	t.Run("overwrites balance on active account", func(t *testing.T) {
		repo := newFakeAccountRepo()
		svc := NewAccountService(repo, &fakeUserChecker{})
		acct := seedAccount(repo, userID, "10", true)

		require.NoError(t, svc.SetBalance(ctx, acct.ID, decimal.RequireFromString("123.45")))
		assert.True(t, repo.accounts[acct.ID].Balance.Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("refuses inactive account", func(t *testing.T) {
		repo := newFakeAccountRepo()
		svc := NewAccountService(repo, &fakeUserChecker{})
		acct := seedAccount(repo, userID, "10", false)

		err := svc.SetBalance(ctx, acct.ID, decimal.RequireFromString("0"))
		require.ErrorIs(t, err, domain.ErrAccountInactive)
	})
}

func TestListAccountsByUser(t *testing.T) {
	userID := uuid.New()
	repo := newFakeAccountRepo()
	svc := NewAccountService(repo, &fakeUserChecker{known: map[uuid.UUID]bool{userID: true}})
	ctx := context.Background()

	seedAccount(repo, userID, "0", true)
	seedAccount(repo, userID, "5", true)
	seedAccount(repo, uuid.New(), "0", true)

	accounts, err := svc.ListAccountsByUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	_, err = svc.ListAccountsByUser(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}
