package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CreateAccount(ctx context.Context, input usecase.CreateAccountInput) (*domain.Account, error)
	GetAccount(ctx context.Context, ownerID, id string) (*domain.Account, error)
	ListAccounts(ctx context.Context, ownerID string, activeOnly bool) ([]*domain.Account, error)
	UpdateAccount(ctx context.Context, input usecase.UpdateAccountInput) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, ownerID, id string) (*domain.Account, error)
	ReactivateAccount(ctx context.Context, ownerID, id string) (*domain.Account, error)
	DeleteAccount(ctx context.Context, ownerID, id string) error
	GetAccountStats(ctx context.Context, ownerID, id string) (*usecase.AccountStats, error)
	ListAuditLogs(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Create creates a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.CreateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accountUC.CreateAccount(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, "failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// List lists the owner's accounts; ?active=true hides deactivated ones.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), owner, parseBoolQuery(r, "active"))
	if err != nil {
		writeDomainError(w, r, "failed to list accounts", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// Update changes account attributes. The balance is never touched.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accountUC.UpdateAccount(r.Context(), req.ToUseCaseInput(owner, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to update account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Deactivate hides an account from new movements.
func (h *AccountHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.accountUC.DeactivateAccount, "failed to deactivate account")
}

// Reactivate reopens a deactivated account.
func (h *AccountHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.accountUC.ReactivateAccount, "failed to reactivate account")
}

func (h *AccountHandler) toggle(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, string) (*domain.Account, error), message string) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	account, err := fn(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, message, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// Delete removes an account that has no movement history.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	if err := h.accountUC.DeleteAccount(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, r, "failed to delete account", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Stats summarizes the account's non-deleted movements.
func (h *AccountHandler) Stats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	stats, err := h.accountUC.GetAccountStats(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to get account stats", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountStatsFromDomain(stats))
}

// AuditLogs lists the owner's audit trail. Filters: resource_type,
// resource_id, action, from, to (a bare date covers the whole day), limit,
// offset.
func (h *AccountHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := domain.AuditFilter{
		OwnerID:      owner,
		Action:       domain.AuditAction(q.Get("action")),
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Limit:        parseIntQuery(r, "limit", 0),
		Offset:       parseIntQuery(r, "offset", 0),
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}
	filter.StartDate = from
	filter.EndDate = to
	if to != nil && len(q.Get("to")) == len(time.DateOnly) {
		end := to.Add(24*time.Hour - time.Nanosecond)
		filter.EndDate = &end
	}

	logs, err := h.accountUC.ListAuditLogs(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, "failed to list audit logs", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
