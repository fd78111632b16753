package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferRecord is the immutable history unit written once per completed
// transfer. Amount is the gross amount requested by the sender, in the
// source account's currency, before commission deduction.
type TransferRecord struct {
	ID            uuid.UUID
	Amount        decimal.Decimal
	Currency      Currency
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	CreatedAt     time.Time
}
