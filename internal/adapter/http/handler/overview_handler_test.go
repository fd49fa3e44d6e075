package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

type overviewServiceStub struct {
	dashboardFn  func(ctx context.Context, ownerID string, from, to time.Time) (*usecase.Dashboard, error)
	categoriesFn func(ctx context.Context, ownerID string) (*usecase.CategoryCatalogue, error)
}

func (s *overviewServiceStub) GetDashboard(ctx context.Context, ownerID string, from, to time.Time) (*usecase.Dashboard, error) {
	return s.dashboardFn(ctx, ownerID, from, to)
}

func (s *overviewServiceStub) GetCategories(ctx context.Context, ownerID string) (*usecase.CategoryCatalogue, error) {
	return s.categoriesFn(ctx, ownerID)
}

type reconciliationServiceStub struct {
	accountFn func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
	ownerFn   func(ctx context.Context, ownerID string) (*usecase.ReconciliationReport, error)
	repairFn  func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error)
}

func (s *reconciliationServiceStub) ReconcileAccount(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
	return s.accountFn(ctx, ownerID, accountID)
}

func (s *reconciliationServiceStub) ReconcileOwner(ctx context.Context, ownerID string) (*usecase.ReconciliationReport, error) {
	return s.ownerFn(ctx, ownerID)
}

func (s *reconciliationServiceStub) RepairAccount(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
	return s.repairFn(ctx, ownerID, accountID)
}

func TestOverviewHandler_DashboardDefaultsPeriod(t *testing.T) {
	var gotFrom, gotTo time.Time
	handler := NewOverviewHandler(&overviewServiceStub{
		dashboardFn: func(ctx context.Context, ownerID string, from, to time.Time) (*usecase.Dashboard, error) {
			gotFrom, gotTo = from, to
			return &usecase.Dashboard{
				From:           fixedTime,
				To:             fixedTime,
				TotalIncome:    decimal.NewFromInt(200),
				TotalExpenses:  decimal.NewFromInt(50),
				Net:            decimal.NewFromInt(150),
				TotalBalance:   decimal.NewFromInt(400),
				ActiveAccounts: 2,
				MovementCount:  3,
				Recent:         []*domain.Movement{testMovement(domain.Credit{})},
			}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Dashboard(rec, newRequest(t, http.MethodGet, "/api/v1/dashboard", nil, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !gotFrom.IsZero() || !gotTo.IsZero() {
		t.Fatalf("expected zero period to defer to the use case, got %v..%v", gotFrom, gotTo)
	}

	var resp dto.DashboardResponse
	decodeBody(t, rec, &resp)
	if resp.Net != "150.00" || resp.TotalBalance != "400.00" || len(resp.Recent) != 1 {
		t.Fatalf("unexpected dashboard %+v", resp)
	}
}

func TestOverviewHandler_DashboardBadDate(t *testing.T) {
	handler := NewOverviewHandler(&overviewServiceStub{}, nil)

	rec := httptest.NewRecorder()
	handler.Dashboard(rec, newRequest(t, http.MethodGet, "/api/v1/dashboard?from=soon", nil, nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestOverviewHandler_Categories(t *testing.T) {
	handler := NewOverviewHandler(&overviewServiceStub{
		categoriesFn: func(ctx context.Context, ownerID string) (*usecase.CategoryCatalogue, error) {
			return &usecase.CategoryCatalogue{
				Income:  []string{"Salary"},
				Expense: []string{"Groceries"},
				Used:    []string{"Groceries"},
			}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Categories(rec, newRequest(t, http.MethodGet, "/api/v1/categories", nil, nil))

	var resp dto.CategoriesResponse
	decodeBody(t, rec, &resp)
	if len(resp.Income) != 1 || resp.Used[0] != "Groceries" {
		t.Fatalf("unexpected catalogue %+v", resp)
	}
}

func TestOverviewHandler_Reconciliation(t *testing.T) {
	drifted := &usecase.ReconciliationResult{
		AccountID:         "acc-1",
		RecordedBalance:   decimal.NewFromInt(260),
		CalculatedBalance: decimal.NewFromInt(250),
		Difference:        decimal.NewFromInt(10),
	}
	var repaired string

	handler := NewOverviewHandler(nil, &reconciliationServiceStub{
		accountFn: func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
			return drifted, nil
		},
		repairFn: func(ctx context.Context, ownerID, accountID string) (*usecase.ReconciliationResult, error) {
			repaired = accountID
			return &usecase.ReconciliationResult{AccountID: accountID, IsReconciled: true}, nil
		},
		ownerFn: func(ctx context.Context, ownerID string) (*usecase.ReconciliationReport, error) {
			return nil, domain.StorageError(errors.New("down"))
		},
	})

	params := map[string]string{"id": "acc-1"}

	rec := httptest.NewRecorder()
	handler.ReconcileAccount(rec, newRequest(t, http.MethodGet, "/api/v1/accounts/acc-1/reconciliation", nil, params))
	var result dto.ReconciliationResponse
	decodeBody(t, rec, &result)
	if result.IsReconciled || result.Difference != "10.00" {
		t.Fatalf("unexpected result %+v", result)
	}

	rec = httptest.NewRecorder()
	handler.RepairAccount(rec, newRequest(t, http.MethodPost, "/api/v1/accounts/acc-1/reconciliation/repair", nil, params))
	if rec.Code != http.StatusOK || repaired != "acc-1" {
		t.Fatalf("repair: status %d, account %q", rec.Code, repaired)
	}

	rec = httptest.NewRecorder()
	handler.ReconcileOwner(rec, newRequest(t, http.MethodGet, "/api/v1/reconciliation", nil, nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
