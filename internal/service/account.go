package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/minibank/minibank/internal/logging"
	"github.com/shopspring/decimal"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	GetAll(ctx context.Context) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	CloseAccount(ctx context.Context, id uuid.UUID, closedAt time.Time) error
	SetBalance(ctx context.Context, id uuid.UUID, newBalance decimal.Decimal) error
}

type userChecker interface {
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

type AccountService struct {
	accounts accountRepo
	users    userChecker
}

func NewAccountService(accounts accountRepo, users userChecker) *AccountService {
	return &AccountService{accounts: accounts, users: users}
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListAccountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("ListAccountsByUser: %w", err)
	}

	accounts, err := s.accounts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("ListAccountsByUser: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) ListAllAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAllAccounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount opens a fresh account for the user: zero balance, active,
// opened now. Caller-supplied balance or flags are never copied in.
func (s *AccountService) CreateAccount(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if !currency.IsValid() {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrInvalidCurrency)
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	account := &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.Zero,
		Currency: currency,
		Version:  1,
		IsActive: true,
		OpenedAt: time.Now().UTC(),
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"user_id", userID,
		"currency", currency,
	)

	return account, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, id, userID uuid.UUID, currency domain.Currency) error {
	if !currency.IsValid() {
		return fmt.Errorf("UpdateAccount: %w", domain.ErrInvalidCurrency)
	}

	if err := s.requireUser(ctx, userID); err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}

	account := &domain.Account{ID: id, UserID: userID, Currency: currency}
	if err := s.accounts.Update(ctx, account); err != nil {
		return fmt.Errorf("UpdateAccount: %w", err)
	}
	return nil
}

func (s *AccountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}

	if !account.Balance.IsZero() {
		return fmt.Errorf("DeleteAccount: account %s: %w", id, domain.ErrNonZeroBalance)
	}

	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteAccount: %w", err)
	}
	return nil
}

func (s *AccountService) CloseAccount(ctx context.Context, id uuid.UUID) error {
	log := logging.FromContext(ctx)

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("CloseAccount: %w", err)
	}

	if !account.Balance.IsZero() {
		return fmt.Errorf("CloseAccount: account %s: %w", id, domain.ErrNonZeroBalance)
	}
	if !account.IsActive {
		return fmt.Errorf("CloseAccount: account %s: %w", id, domain.ErrAccountInactive)
	}

	if err := s.accounts.CloseAccount(ctx, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("CloseAccount: %w", err)
	}

	log.Info("account closed", "account_id", id)
	return nil
}

// SetBalance overwrites an account balance, bypassing transfer validation
// and commission. Administrative escape hatch only.
func (s *AccountService) SetBalance(ctx context.Context, id uuid.UUID, newBalance decimal.Decimal) error {
	log := logging.FromContext(ctx)

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("SetBalance: %w", err)
	}

	if !account.IsActive {
		return fmt.Errorf("SetBalance: account %s: %w", id, domain.ErrAccountInactive)
	}

	if err := s.accounts.SetBalance(ctx, id, newBalance); err != nil {
		return fmt.Errorf("SetBalance: %w", err)
	}

	log.Info("account balance overwritten", "account_id", id, "balance", newBalance)
	return nil
}

func (s *AccountService) requireUser(ctx context.Context, userID uuid.UUID) error {
	exists, err := s.users.ExistsByID(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user %s: %w", userID, domain.ErrUserNotFound)
	}
	return nil
}
