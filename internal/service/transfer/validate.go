package transfer

import (
	"fmt"

	"github.com/minibank/minibank/internal/domain"
	"github.com/shopspring/decimal"
)

// validateTransfer enforces the transfer preconditions in a fixed order.
// The inactive-account check runs before the balance check so that a
// closed account never surfaces as insufficient funds. The balance check
// is against the gross requested amount, before commission.
func validateTransfer(amount decimal.Decimal, from, to *domain.Account) error {
	if !amount.IsPositive() {
		return fmt.Errorf("validateTransfer: %w", domain.ErrInvalidAmount)
	}

	if from.ID == to.ID {
		return fmt.Errorf("validateTransfer: %w", domain.ErrSelfTransfer)
	}

	if !from.IsActive {
		return fmt.Errorf("validateTransfer: source %s: %w", from.ID, domain.ErrAccountInactive)
	}
	if !to.IsActive {
		return fmt.Errorf("validateTransfer: destination %s: %w", to.ID, domain.ErrAccountInactive)
	}

	if from.Balance.LessThan(amount) {
		return fmt.Errorf("validateTransfer: source %s: %w", from.ID, domain.ErrInsufficientFunds)
	}

	return nil
}
