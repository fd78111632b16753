package transfer

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func activeAccount(userID uuid.UUID, currency domain.Currency, balance string) *domain.Account {
	return &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		Currency: currency,
		Balance:  decimal.RequireFromString(balance),
		IsActive: true,
	}
}

func TestValidateTransfer(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()

	sameAccount := activeAccount(userA, domain.CurrencyRUB, "100")
	inactiveSame := activeAccount(userA, domain.CurrencyRUB, "100")
	inactiveSame.IsActive = false

	tests := []struct {
		name    string
		amount  string
		from    *domain.Account
		to      *domain.Account
		wantErr error
	}{
		{
			name:   "valid transfer between different owners",
			amount: "50",
			from:   activeAccount(userA, domain.CurrencyRUB, "100"),
			to:     activeAccount(userB, domain.CurrencyRUB, "0"),
		},
		{
			name:    "amount zero",
			amount:  "0",
			from:    activeAccount(userA, domain.CurrencyRUB, "100"),
			to:      activeAccount(userB, domain.CurrencyRUB, "0"),
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "amount negative",
			amount:  "-10",
			from:    activeAccount(userA, domain.CurrencyRUB, "100"),
			to:      activeAccount(userB, domain.CurrencyRUB, "0"),
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "same account",
			amount:  "10",
			from:    sameAccount,
			to:      sameAccount,
			wantErr: domain.ErrSelfTransfer,
		},
		{
			name:   "exact balance is allowed",
			amount: "100",
			from:   activeAccount(userA, domain.CurrencyRUB, "100"),
			to:     activeAccount(userB, domain.CurrencyRUB, "0"),
		},
		{
			name:    "insufficient funds",
			amount:  "100.01",
			from:    activeAccount(userA, domain.CurrencyRUB, "100"),
			to:      activeAccount(userB, domain.CurrencyRUB, "0"),
			wantErr: domain.ErrInsufficientFunds,
		},
		{
			name:   "source inactive",
			amount: "10",
			from: func() *domain.Account {
				a := activeAccount(userA, domain.CurrencyRUB, "100")
				a.IsActive = false
				return a
			}(),
			to:      activeAccount(userB, domain.CurrencyRUB, "0"),
			wantErr: domain.ErrAccountInactive,
		},
		{
			name:   "destination inactive",
			amount: "10",
			from:   activeAccount(userA, domain.CurrencyRUB, "100"),
			to: func() *domain.Account {
				a := activeAccount(userB, domain.CurrencyRUB, "0")
				a.IsActive = false
				return a
			}(),
			wantErr: domain.ErrAccountInactive,
		},
		{
			// Inactive must win over balance: a broke and closed source
			// reports closed, not insufficient funds.
			name:   "source inactive and broke reports inactive",
			amount: "10",
			from: func() *domain.Account {
				a := activeAccount(userA, domain.CurrencyRUB, "0")
				a.IsActive = false
				return a
			}(),
			to:      activeAccount(userB, domain.CurrencyRUB, "0"),
			wantErr: domain.ErrAccountInactive,
		},
		{
			// Self-transfer wins over the inactive check.
			name:    "self transfer on inactive account reports self transfer",
			amount:  "10",
			from:    inactiveSame,
			to:      inactiveSame,
			wantErr: domain.ErrSelfTransfer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateTransfer(decimal.RequireFromString(tc.amount), tc.from, tc.to)

			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCommissionFor(t *testing.T) {
	svc := &Service{commissionPct: decimal.NewFromFloat(0.02)}
	userA := uuid.New()
	userB := uuid.New()

	tests := []struct {
		name       string
		amount     string
		fromUserID uuid.UUID
		toUserID   uuid.UUID
		want       string
	}{
		{name: "same owner is free", amount: "100", fromUserID: userA, toUserID: userA, want: "0"},
		{name: "different owners pay 2 percent", amount: "100", fromUserID: userA, toUserID: userB, want: "2"},
		{name: "rounds to 2 decimal places", amount: "33.33", fromUserID: userA, toUserID: userB, want: "0.67"},
		{name: "small amount rounds down to zero", amount: "0.10", fromUserID: userA, toUserID: userB, want: "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := svc.commissionFor(decimal.RequireFromString(tc.amount), tc.fromUserID, tc.toUserID)
			require.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s, want %s", got, tc.want)
		})
	}
}

type stubAccountRepo struct {
	accounts map[uuid.UUID]*domain.Account
}

func (s *stubAccountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *stubAccountRepo) GetForUpdate(_ context.Context, _ *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	return s.GetByID(context.Background(), id)
}

func (s *stubAccountRepo) UpdateBalance(_ context.Context, _ *sql.Tx, _ uuid.UUID, _ decimal.Decimal, _ int64) error {
	return nil
}

func TestCalculateCommission(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	from := activeAccount(userA, domain.CurrencyRUB, "100")
	to := activeAccount(userB, domain.CurrencyRUB, "0")
	same := activeAccount(userA, domain.CurrencyEUR, "0")

	repo := &stubAccountRepo{accounts: map[uuid.UUID]*domain.Account{
		from.ID: from,
		to.ID:   to,
		same.ID: same,
	}}
	svc := &Service{accounts: repo, commissionPct: decimal.NewFromFloat(0.02)}

	t.Run("different owners", func(t *testing.T) {
		got, err := svc.CalculateCommission(context.Background(), decimal.RequireFromString("250"), from.ID, to.ID)
		require.NoError(t, err)
		require.True(t, got.Equal(decimal.RequireFromString("5")), "got %s", got)
	})

	t.Run("same owner", func(t *testing.T) {
		got, err := svc.CalculateCommission(context.Background(), decimal.RequireFromString("250"), from.ID, same.ID)
		require.NoError(t, err)
		require.True(t, got.IsZero(), "got %s", got)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := svc.CalculateCommission(context.Background(), decimal.Zero, from.ID, to.ID)
		require.ErrorIs(t, err, domain.ErrInvalidAmount)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := svc.CalculateCommission(context.Background(), decimal.RequireFromString("10"), uuid.New(), to.ID)
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
	})
}
