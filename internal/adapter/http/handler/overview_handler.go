package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// OverviewService builds owner-wide read models.
type OverviewService interface {
	GetDashboard(ctx context.Context, ownerID string, from, to time.Time) (*usecase.Dashboard, error)
	GetCategories(ctx context.Context, ownerID string) (*usecase.CategoryCatalogue, error)
}

// ReconciliationService checks balances against the movement log.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
	ReconcileOwner(ctx context.Context, ownerID string) (*usecase.ReconciliationReport, error)
	RepairAccount(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
}

// OverviewHandler serves the dashboard, categories and reconciliation.
type OverviewHandler struct {
	overviewUC OverviewService
	reconUC    ReconciliationService
}

// NewOverviewHandler creates a new OverviewHandler.
func NewOverviewHandler(overviewUC OverviewService, reconUC ReconciliationService) *OverviewHandler {
	return &OverviewHandler{overviewUC: overviewUC, reconUC: reconUC}
}

// Dashboard returns totals for ?from=&to=, this month by default.
func (h *OverviewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var from, to time.Time
	if t, err := parseDateQuery(r, "from"); err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	} else if t != nil {
		from = *t
	}
	if t, err := parseDateQuery(r, "to"); err != nil {
		writeDomainError(w, r, "invalid query", err)
		return
	} else if t != nil {
		to = *t
	}

	dashboard, err := h.overviewUC.GetDashboard(r.Context(), owner, from, to)
	if err != nil {
		writeDomainError(w, r, "failed to build dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.DashboardFromDomain(dashboard))
}

// Categories returns the suggested categories and those in use.
func (h *OverviewHandler) Categories(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	catalogue, err := h.overviewUC.GetCategories(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, "failed to list categories", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.CategoriesFromDomain(catalogue))
}

// ReconcileAccount compares one account's balance with its history.
func (h *OverviewHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	result, err := h.reconUC.ReconcileAccount(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to reconcile account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(result))
}

// RepairAccount rewrites a drifted balance to the recomputed value.
func (h *OverviewHandler) RepairAccount(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	result, err := h.reconUC.RepairAccount(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, "failed to repair account", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromDomain(result))
}

// ReconcileOwner reports on every account of the owner.
func (h *OverviewHandler) ReconcileOwner(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	report, err := h.reconUC.ReconcileOwner(r.Context(), owner)
	if err != nil {
		writeDomainError(w, r, "failed to reconcile", err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromDomain(report))
}
