package currency

import (
	"context"
	"fmt"

	"github.com/minibank/minibank/internal/domain"
	"github.com/shopspring/decimal"
)

type rateSource interface {
	GetRate(ctx context.Context, currency domain.Currency) (decimal.Decimal, error)
}

// Converter converts amounts between currencies through rates quoted
// against the base currency. It applies no rounding; callers decide how
// the result is rounded, if at all.
type Converter struct {
	rates rateSource
}

func NewConverter(rates rateSource) *Converter {
	return &Converter{rates: rates}
}

func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to domain.Currency) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("Convert: %w", domain.ErrInvalidAmount)
	}

	if from == to {
		return amount, nil
	}

	fromRate, err := c.rates.GetRate(ctx, from)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Convert: rate %s: %w", from, err)
	}

	toRate, err := c.rates.GetRate(ctx, to)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Convert: rate %s: %w", to, err)
	}

	return amount.Mul(fromRate).Div(toRate), nil
}
