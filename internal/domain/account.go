package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// BaseCurrency is the domestic currency; its exchange rate is implicitly 1.0.
const BaseCurrency = CurrencyRUB

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyRUB, CurrencyUSD, CurrencyEUR:
		return true
	}
	return false
}

// Account balance is always denominated in the account's own currency.
type Account struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Balance  decimal.Decimal
	Currency Currency
	Version  int64
	IsActive bool
	OpenedAt time.Time
	ClosedAt *time.Time
}
