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

type accountService interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	ListAccountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)
	ListAllAccounts(ctx context.Context) ([]domain.Account, error)
	CreateAccount(ctx context.Context, userID uuid.UUID, currency domain.Currency) (*domain.Account, error)
	UpdateAccount(ctx context.Context, id, userID uuid.UUID, currency domain.Currency) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	CloseAccount(ctx context.Context, id uuid.UUID) error
	SetBalance(ctx context.Context, id uuid.UUID, newBalance decimal.Decimal) error
}

type AccountHandler struct {
	accounts accountService
}

func NewAccountHandler(accounts accountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

type accountRequest struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
}

func (r accountRequest) Validate() []FieldError {
	var errs []FieldError
	if r.UserID == "" {
		errs = append(errs, FieldError{Field: "user_id", Message: "required"})
	} else if _, err := uuid.Parse(r.UserID); err != nil {
		errs = append(errs, FieldError{Field: "user_id", Message: "must be a uuid"})
	}
	if r.Currency == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "required"})
	} else if !domain.Currency(r.Currency).IsValid() {
		errs = append(errs, FieldError{Field: "currency", Message: "must be RUB, USD, or EUR"})
	}
	return errs
}

type accountDTO struct {
	ID       uuid.UUID       `json:"id"`
	UserID   uuid.UUID       `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Currency string          `json:"currency"`
	IsActive bool            `json:"is_active"`
	OpenedAt time.Time       `json:"opened_at"`
	ClosedAt *time.Time      `json:"closed_at,omitempty"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		ID:       a.ID,
		UserID:   a.UserID,
		Balance:  a.Balance,
		Currency: string(a.Currency),
		IsActive: a.IsActive,
		OpenedAt: a.OpenedAt,
		ClosedAt: a.ClosedAt,
	}
}

func idFromPath(r *http.Request) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	account, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAllAccounts(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTOs(accounts))
}

func (h *AccountHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	accounts, err := h.accounts.ListAccountsByUser(r.Context(), userID)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTOs(accounts))
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	userID, _ := uuid.Parse(req.UserID)
	account, err := h.accounts.CreateAccount(r.Context(), userID, domain.Currency(req.Currency))
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req accountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	userID, _ := uuid.Parse(req.UserID)
	if err := h.accounts.UpdateAccount(r.Context(), id, userID, domain.Currency(req.Currency)); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.accounts.DeleteAccount(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

func (h *AccountHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if err := h.accounts.CloseAccount(r.Context(), id); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

type setBalanceRequest struct {
	Balance decimal.Decimal `json:"balance"`
}

func (h *AccountHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	id, appErr := idFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req setBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if err := h.accounts.SetBalance(r.Context(), id, req.Balance); err != nil {
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, nil)
}

func toAccountDTOs(accounts []domain.Account) []accountDTO {
	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	return dtos
}
