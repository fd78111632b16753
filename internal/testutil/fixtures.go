package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/shopspring/decimal"
)

func SeedTestUser(t *testing.T, db *sql.DB, login, email string) *domain.User {
	t.Helper()

	u := &domain.User{
		ID:        uuid.New(),
		Login:     login,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO users (id, login, email, created_at) VALUES ($1, $2, $3, $4)`,
		u.ID, u.Login, u.Email, u.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed test user %s: %v", login, err)
	}
	return u
}

func SeedTestAccount(t *testing.T, db *sql.DB, userID uuid.UUID, currency string, balance string) *domain.Account {
	t.Helper()

	a := &domain.Account{
		ID:       uuid.New(),
		UserID:   userID,
		Balance:  decimal.RequireFromString(balance),
		Currency: domain.Currency(currency),
		Version:  1,
		IsActive: true,
		OpenedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, user_id, balance, currency, version, is_active, opened_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.UserID, a.Balance, a.Currency, a.Version, a.IsActive, a.OpenedAt,
	)
	if err != nil {
		t.Fatalf("seed test account %s/%s: %v", userID, currency, err)
	}
	return a
}

func CloseTestAccount(t *testing.T, db *sql.DB, accountID uuid.UUID) {
	t.Helper()

	_, err := db.Exec(
		`UPDATE accounts SET is_active = false, closed_at = $1 WHERE id = $2`,
		time.Now().UTC(), accountID,
	)
	if err != nil {
		t.Fatalf("close test account %s: %v", accountID, err)
	}
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance)
	if err != nil {
		t.Fatalf("get account balance %s: %v", accountID, err)
	}
	return balance
}

func CountTransferRecords(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transfer_history WHERE from_account_id = $1 OR to_account_id = $1`,
		accountID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transfer records for account %s: %v", accountID, err)
	}
	return count
}

// RequireBalance fails the test unless the stored balance equals want.
func RequireBalance(t *testing.T, db *sql.DB, accountID uuid.UUID, want string) {
	t.Helper()

	got := GetAccountBalance(t, db, accountID)
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Fatalf("account %s: balance = %s, want %s", accountID, got, want)
	}
}
