package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// LedgerService defines the ledger operations needed by the movement and
// transfer handlers.
type LedgerService interface {
	RecordCredit(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error)
	RecordDebit(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error)
	RecordTransfer(ctx context.Context, input usecase.RecordTransferInput) (*usecase.TransferResult, error)
	EditMovement(ctx context.Context, input usecase.EditMovementInput) (*domain.Movement, error)
	DeleteMovement(ctx context.Context, input usecase.DeleteMovementInput) (*domain.Movement, error)
	GetMovement(ctx context.Context, ownerID, id string, includeDeleted bool) (*domain.Movement, error)
}

// MovementQueryService lists movements.
type MovementQueryService interface {
	QueryMovements(ctx context.Context, q usecase.MovementQuery) (*usecase.MovementQueryResult, error)
}

// MovementHandler handles movement-related HTTP requests.
type MovementHandler struct {
	ledgerUC LedgerService
	queryUC  MovementQueryService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(ledgerUC LedgerService, queryUC MovementQueryService) *MovementHandler {
	return &MovementHandler{ledgerUC: ledgerUC, queryUC: queryUC}
}

// Credit records income on an account.
func (h *MovementHandler) Credit(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.ledgerUC.RecordCredit, "failed to record credit")
}

// Debit records an expense on an account.
func (h *MovementHandler) Debit(w http.ResponseWriter, r *http.Request) {
	h.record(w, r, h.ledgerUC.RecordDebit, "failed to record debit")
}

func (h *MovementHandler) record(w http.ResponseWriter, r *http.Request, fn func(context.Context, usecase.RecordMovementInput) (*domain.Movement, error), message string) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.RecordMovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	movement, err := fn(r.Context(), req.ToUseCaseInput(owner))
	if err != nil {
		writeDomainError(w, r, message, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement, nil))
}

// Get retrieves a movement; ?include_deleted=true also returns tombstones.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	movement, err := h.ledgerUC.GetMovement(r.Context(), owner, chi.URLParam(r, "id"), parseBoolQuery(r, "include_deleted"))
	if err != nil {
		writeDomainError(w, r, "failed to get movement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement, nil))
}

// Edit replaces the fields of a movement within the edit window.
func (h *MovementHandler) Edit(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.EditMovementRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	movement, err := h.ledgerUC.EditMovement(r.Context(), req.ToUseCaseInput(owner, chi.URLParam(r, "id")))
	if err != nil {
		writeDomainError(w, r, "failed to edit movement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement, nil))
}

// Delete tombstones a movement within the delete window. The reason comes
// from the body or, failing that, the ?reason= query parameter.
func (h *MovementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req dto.DeleteMovementRequest
	if r.ContentLength != 0 {
		if !decodeJSON(w, r, &req) {
			return
		}
	}
	if req.Reason == "" {
		req.Reason = r.URL.Query().Get("reason")
	}

	movement, err := h.ledgerUC.DeleteMovement(r.Context(), usecase.DeleteMovementInput{
		OwnerID:    owner,
		MovementID: chi.URLParam(r, "id"),
		Reason:     req.Reason,
	})
	if err != nil {
		writeDomainError(w, r, "failed to delete movement", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement, nil))
}

// List filters, sorts and pages the owner's movements.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	q, err := parseMovementQuery(r)
	if err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	}
	q.OwnerID = owner

	result, err := h.queryUC.QueryMovements(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, "failed to list movements", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementPageFromDomain(result))
}

func parseMovementQuery(r *http.Request) (usecase.MovementQuery, error) {
	values := r.URL.Query()

	filter := domain.MovementFilter{
		Search:         values.Get("search"),
		AccountID:      values.Get("account_id"),
		Category:       values.Get("category"),
		RecurringOnly:  parseBoolQuery(r, "recurring"),
		HasReceiptOnly: parseBoolQuery(r, "has_receipt"),
	}

	var err error
	if kind := values.Get("kind"); kind != "" {
		if filter.Kind, err = domain.ParseMovementKind(kind); err != nil {
			return usecase.MovementQuery{}, err
		}
	}
	if filter.FromDate, err = parseDateQuery(r, "from"); err != nil {
		return usecase.MovementQuery{}, err
	}
	if filter.ToDate, err = parseDateQuery(r, "to"); err != nil {
		return usecase.MovementQuery{}, err
	}
	if filter.MinAmount, err = parseDecimalQuery(r, "min_amount"); err != nil {
		return usecase.MovementQuery{}, err
	}
	if filter.MaxAmount, err = parseDecimalQuery(r, "max_amount"); err != nil {
		return usecase.MovementQuery{}, err
	}

	sort := domain.DefaultMovementSort
	if field := values.Get("sort"); field != "" {
		if sort.Field, err = domain.ParseSortField(field); err != nil {
			return usecase.MovementQuery{}, err
		}
	}
	switch order := strings.ToLower(values.Get("order")); order {
	case "":
	case "asc":
		sort.Descending = false
	case "desc":
		sort.Descending = true
	default:
		return usecase.MovementQuery{}, fmt.Errorf("%w: unknown order %q", domain.ErrValidation, order)
	}

	return usecase.MovementQuery{
		Filter:   filter,
		Sort:     sort,
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "page_size", 0),
	}, nil
}
