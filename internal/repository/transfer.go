package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
)

const transferColumns = `id, amount, currency, from_account_id, to_account_id, created_at`

// TransferRepository persists transfer history units. Records are written
// once, inside the transfer's transaction, and never updated or deleted.
type TransferRepository struct {
	db *sql.DB
}

func NewTransferRepository(db *sql.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Create(ctx context.Context, tx *sql.Tx, record *domain.TransferRecord) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transfer_history (id, amount, currency, from_account_id, to_account_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		record.ID, record.Amount, record.Currency,
		record.FromAccountID, record.ToAccountID, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransferRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transferColumns+` FROM transfer_history WHERE id = $1`, id,
	)
	rec, err := scanTransfer(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return rec, nil
}

func (r *TransferRepository) GetAll(ctx context.Context) ([]domain.TransferRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfer_history ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("GetAll: %w", err)
	}
	defer rows.Close()

	return collectTransfers(rows, "GetAll")
}

func (r *TransferRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) ([]domain.TransferRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transferColumns+` FROM transfer_history
		WHERE from_account_id = $1 OR to_account_id = $1 ORDER BY created_at DESC`,
		accountID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByAccountID: %w", err)
	}
	defer rows.Close()

	return collectTransfers(rows, "GetByAccountID")
}

func collectTransfers(rows *sql.Rows, op string) ([]domain.TransferRecord, error) {
	var records []domain.TransferRecord
	for rows.Next() {
		rec, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, err)
	}
	return records, nil
}

func scanTransfer(s scanner) (*domain.TransferRecord, error) {
	var rec domain.TransferRecord
	err := s.Scan(
		&rec.ID, &rec.Amount, &rec.Currency,
		&rec.FromAccountID, &rec.ToAccountID, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
