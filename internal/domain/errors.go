package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAccountNotFound   = errors.New("account not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrSelfTransfer      = errors.New("cannot transfer to the same account")
	ErrAccountInactive   = errors.New("account is inactive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidCurrency   = errors.New("invalid currency")
	ErrRateUnavailable   = errors.New("exchange rate unavailable")
	ErrNonZeroBalance    = errors.New("account balance is not zero")
	ErrUserHasAccounts   = errors.New("user has linked bank accounts")
	ErrEmptyField        = errors.New("required field is empty")
	ErrLoginTaken        = errors.New("login already taken")
	ErrVersionConflict   = errors.New("optimistic lock conflict")
)
