package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/minibank/minibank/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "minibank_transfers_total",
	Help: "Completed and failed money transfers",
}, []string{"status"})

// Transfer moves amount from one account to another. The gross amount is
// debited from the source; the destination is credited with the amount
// net of commission, converted into its currency. One history record is
// written per completed transfer; all writes commit atomically.
func (s *Service) Transfer(ctx context.Context, amount decimal.Decimal, fromID, toID uuid.UUID) (*domain.TransferRecord, error) {
	rec, err := s.transfer(ctx, amount, fromID, toID)
	if err != nil {
		transfersTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	transfersTotal.WithLabelValues("completed").Inc()
	return rec, nil
}

func (s *Service) transfer(ctx context.Context, amount decimal.Decimal, fromID, toID uuid.UUID) (*domain.TransferRecord, error) {
	log := logging.FromContext(ctx)

	if !amount.IsPositive() {
		return nil, fmt.Errorf("Transfer: %w", domain.ErrInvalidAmount)
	}

	fromAccount, err := s.accounts.GetByID(ctx, fromID)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}
	toAccount, err := s.accounts.GetByID(ctx, toID)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	if err := validateTransfer(amount, fromAccount, toAccount); err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	commission := s.commissionFor(amount, fromAccount.UserID, toAccount.UserID)

	netAmount, err := s.converter.Convert(ctx, amount.Sub(commission), fromAccount.Currency, toAccount.Currency)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	rec, err := s.executeTransfer(ctx, amount, netAmount, fromAccount.Currency, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("Transfer: %w", err)
	}

	log.Info("transfer completed",
		"transfer_id", rec.ID,
		"from_account", fromID,
		"to_account", toID,
		"gross_amount", amount,
		"commission", commission,
		"net_amount", netAmount,
		"source_currency", fromAccount.Currency,
		"dest_currency", toAccount.Currency,
	)

	return rec, nil
}

func (s *Service) executeTransfer(
	ctx context.Context,
	grossAmount, netAmount decimal.Decimal,
	sourceCurrency domain.Currency,
	fromID, toID uuid.UUID,
) (*domain.TransferRecord, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}

	from, to := locked[fromID], locked[toID]

	// Re-check against the locked rows; a concurrent transfer or close may
	// have changed them since the unlocked reads.
	if err := validateTransfer(grossAmount, from, to); err != nil {
		return nil, fmt.Errorf("executeTransfer: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, fromID, from.Balance.Sub(grossAmount), from.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: debit source: %w", err)
	}
	if err := s.accounts.UpdateBalance(ctx, tx, toID, to.Balance.Add(netAmount), to.Version+1); err != nil {
		return nil, fmt.Errorf("executeTransfer: credit destination: %w", err)
	}

	rec := &domain.TransferRecord{
		ID:            uuid.New(),
		Amount:        grossAmount,
		Currency:      sourceCurrency,
		FromAccountID: fromID,
		ToAccountID:   toID,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.history.Create(ctx, tx, rec); err != nil {
		return nil, fmt.Errorf("executeTransfer: record history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("executeTransfer: commit: %w", err)
	}

	return rec, nil
}

// lockAccountsInOrder acquires row locks in deterministic id order so two
// concurrent transfers between the same accounts cannot deadlock.
func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, ids ...uuid.UUID) (map[uuid.UUID]*domain.Account, error) {
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].String() < sorted[j].String()
	})

	result := make(map[uuid.UUID]*domain.Account, len(ids))
	for _, id := range sorted {
		acct, err := accounts.GetForUpdate(ctx, tx, id)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[id] = acct
	}
	return result, nil
}
