package transfer

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/shopspring/decimal"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance decimal.Decimal, newVersion int64) error
}

type historyRepo interface {
	Create(ctx context.Context, tx *sql.Tx, record *domain.TransferRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error)
	GetAll(ctx context.Context) ([]domain.TransferRecord, error)
	GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.TransferRecord, error)
}

type converter interface {
	Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) (decimal.Decimal, error)
}

type Service struct {
	accounts      accountRepo
	history       historyRepo
	converter     converter
	db            *sql.DB
	commissionPct decimal.Decimal
}

func NewService(accounts accountRepo, history historyRepo, conv converter, db *sql.DB, commissionPct float64) *Service {
	return &Service{
		accounts:      accounts,
		history:       history,
		converter:     conv,
		db:            db,
		commissionPct: decimal.NewFromFloat(commissionPct),
	}
}

// commissionFor charges a fixed percentage, rounded to 2 decimal places,
// on transfers between accounts of different owners. Transfers between
// accounts of the same owner are free.
func (s *Service) commissionFor(amount decimal.Decimal, fromUserID, toUserID uuid.UUID) decimal.Decimal {
	if fromUserID == toUserID {
		return decimal.Zero
	}
	return amount.Mul(s.commissionPct).Round(2)
}

// CalculateCommission quotes the commission for a prospective transfer
// without moving any money.
func (s *Service) CalculateCommission(ctx context.Context, amount decimal.Decimal, fromID, toID uuid.UUID) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("CalculateCommission: %w", domain.ErrInvalidAmount)
	}

	fromAccount, err := s.accounts.GetByID(ctx, fromID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("CalculateCommission: %w", err)
	}
	toAccount, err := s.accounts.GetByID(ctx, toID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("CalculateCommission: %w", err)
	}

	return s.commissionFor(amount, fromAccount.UserID, toAccount.UserID), nil
}

func (s *Service) GetTransfer(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	rec, err := s.history.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetTransfer: %w", err)
	}
	return rec, nil
}

func (s *Service) ListTransfers(ctx context.Context) ([]domain.TransferRecord, error) {
	records, err := s.history.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransfers: %w", err)
	}
	return records, nil
}

func (s *Service) ListTransfersByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.TransferRecord, error) {
	records, err := s.history.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("ListTransfersByAccount: %w", err)
	}
	return records, nil
}
