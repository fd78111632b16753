package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/minibank/minibank/internal/domain"
	"github.com/minibank/minibank/internal/logging"
	"github.com/shopspring/decimal"
)

type transferService interface {
	Transfer(ctx context.Context, amount decimal.Decimal, fromID, toID uuid.UUID) (*domain.TransferRecord, error)
	CalculateCommission(ctx context.Context, amount decimal.Decimal, fromID, toID uuid.UUID) (decimal.Decimal, error)
	GetTransfer(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error)
	ListTransfers(ctx context.Context) ([]domain.TransferRecord, error)
	ListTransfersByAccount(ctx context.Context, accountID uuid.UUID) ([]domain.TransferRecord, error)
}

type TransferHandler struct {
	transfers transferService
}

func NewTransferHandler(transfers transferService) *TransferHandler {
	return &TransferHandler{transfers: transfers}
}

type transferRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	FromAccountID string          `json:"from_account_id"`
	ToAccountID   string          `json:"to_account_id"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if !r.Amount.IsPositive() {
		errs = append(errs, FieldError{Field: "amount", Message: "must be greater than 0"})
	}
	if r.FromAccountID == "" {
		errs = append(errs, FieldError{Field: "from_account_id", Message: "required"})
	} else if _, err := uuid.Parse(r.FromAccountID); err != nil {
		errs = append(errs, FieldError{Field: "from_account_id", Message: "must be a uuid"})
	}
	if r.ToAccountID == "" {
		errs = append(errs, FieldError{Field: "to_account_id", Message: "required"})
	} else if _, err := uuid.Parse(r.ToAccountID); err != nil {
		errs = append(errs, FieldError{Field: "to_account_id", Message: "must be a uuid"})
	}
	return errs
}

type transferDTO struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	FromAccountID uuid.UUID       `json:"from_account_id"`
	ToAccountID   uuid.UUID       `json:"to_account_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toTransferDTO(rec *domain.TransferRecord) transferDTO {
	return transferDTO{
		ID:            rec.ID,
		Amount:        rec.Amount,
		Currency:      string(rec.Currency),
		FromAccountID: rec.FromAccountID,
		ToAccountID:   rec.ToAccountID,
		CreatedAt:     rec.CreatedAt,
	}
}

func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	fromID, _ := uuid.Parse(req.FromAccountID)
	toID, _ := uuid.Parse(req.ToAccountID)

	rec, err := h.transfers.Transfer(r.Context(), req.Amount, fromID, toID)
	if err != nil {
		logging.FromContext(r.Context()).Error("transfer failed", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransferDTO(rec))
}

type commissionDTO struct {
	Commission decimal.Decimal `json:"commission"`
}

func (h *TransferHandler) CommissionQuote(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	fromID, _ := uuid.Parse(req.FromAccountID)
	toID, _ := uuid.Parse(req.ToAccountID)

	commission, err := h.transfers.CalculateCommission(r.Context(), req.Amount, fromID, toID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, commissionDTO{Commission: commission})
}

func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	rec, err := h.transfers.GetTransfer(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toTransferDTO(rec))
}

func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.transfers.ListTransfers(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list transfers", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transferDTO, len(records))
	for i := range records {
		dtos[i] = toTransferDTO(&records[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

// ListByAccount returns the statement for one account, both incoming and
// outgoing records.
func (h *TransferHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	records, err := h.transfers.ListTransfersByAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transferDTO, len(records))
	for i := range records {
		dtos[i] = toTransferDTO(&records[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}
