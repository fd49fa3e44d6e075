package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

type ledgerServiceStub struct {
	creditFn   func(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error)
	debitFn    func(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error)
	transferFn func(ctx context.Context, input usecase.RecordTransferInput) (*usecase.TransferResult, error)
	editFn     func(ctx context.Context, input usecase.EditMovementInput) (*domain.Movement, error)
	deleteFn   func(ctx context.Context, input usecase.DeleteMovementInput) (*domain.Movement, error)
	getFn      func(ctx context.Context, ownerID, id string, includeDeleted bool) (*domain.Movement, error)
}

func (s *ledgerServiceStub) RecordCredit(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error) {
	return s.creditFn(ctx, input)
}

func (s *ledgerServiceStub) RecordDebit(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error) {
	return s.debitFn(ctx, input)
}

func (s *ledgerServiceStub) RecordTransfer(ctx context.Context, input usecase.RecordTransferInput) (*usecase.TransferResult, error) {
	return s.transferFn(ctx, input)
}

func (s *ledgerServiceStub) EditMovement(ctx context.Context, input usecase.EditMovementInput) (*domain.Movement, error) {
	return s.editFn(ctx, input)
}

func (s *ledgerServiceStub) DeleteMovement(ctx context.Context, input usecase.DeleteMovementInput) (*domain.Movement, error) {
	return s.deleteFn(ctx, input)
}

func (s *ledgerServiceStub) GetMovement(ctx context.Context, ownerID, id string, includeDeleted bool) (*domain.Movement, error) {
	return s.getFn(ctx, ownerID, id, includeDeleted)
}

type queryServiceStub struct {
	queryFn func(ctx context.Context, q usecase.MovementQuery) (*usecase.MovementQueryResult, error)
}

func (s *queryServiceStub) QueryMovements(ctx context.Context, q usecase.MovementQuery) (*usecase.MovementQueryResult, error) {
	return s.queryFn(ctx, q)
}

func TestMovementHandler_Credit(t *testing.T) {
	var captured usecase.RecordMovementInput
	handler := NewMovementHandler(&ledgerServiceStub{
		creditFn: func(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error) {
			captured = input
			return testMovement(domain.Credit{}), nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Credit(rec, newRequest(t, http.MethodPost, "/api/v1/movements/credit",
		`{"account_id":"acc-1","amount":"200.00","description":"Salary","occurred_at":"2024-06-01"}`, nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.OwnerID != "owner-1" || captured.AccountID != "acc-1" || !captured.Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.MovementResponse
	decodeBody(t, rec, &resp)
	if resp.Kind != "credit" || resp.Amount != "200.00" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestMovementHandler_DebitInsufficientFunds(t *testing.T) {
	handler := NewMovementHandler(&ledgerServiceStub{
		debitFn: func(ctx context.Context, input usecase.RecordMovementInput) (*domain.Movement, error) {
			return nil, fmt.Errorf("%w: balance 250.00", domain.ErrInsufficientFunds)
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Debit(rec, newRequest(t, http.MethodPost, "/api/v1/movements/debit", `{"account_id":"acc-1","amount":"250.01"}`, nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestMovementHandler_GetIncludeDeleted(t *testing.T) {
	var include bool
	handler := NewMovementHandler(&ledgerServiceStub{
		getFn: func(ctx context.Context, ownerID, id string, includeDeleted bool) (*domain.Movement, error) {
			include = includeDeleted
			m := testMovement(domain.Debit{})
			m.Deleted = &domain.Deletion{At: fixedTime, By: ownerID, Reason: "duplicate"}
			return m, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Get(rec, newRequest(t, http.MethodGet, "/api/v1/movements/mov-1?include_deleted=true", nil, map[string]string{"id": "mov-1"}))

	if !include {
		t.Fatal("expected include_deleted to be forwarded")
	}

	var resp dto.MovementResponse
	decodeBody(t, rec, &resp)
	if resp.Deleted == nil || resp.Deleted.Reason != "duplicate" {
		t.Fatalf("expected tombstone, got %+v", resp.Deleted)
	}
}

func TestMovementHandler_EditWindowExpired(t *testing.T) {
	var captured usecase.EditMovementInput
	handler := NewMovementHandler(&ledgerServiceStub{
		editFn: func(ctx context.Context, input usecase.EditMovementInput) (*domain.Movement, error) {
			captured = input
			return nil, domain.ErrEditWindowExpired
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.Edit(rec, newRequest(t, http.MethodPut, "/api/v1/movements/mov-1",
		`{"account_id":"acc-1","amount":"150.00","reason":"typo"}`, map[string]string{"id": "mov-1"}))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if captured.MovementID != "mov-1" || captured.Reason != "typo" {
		t.Fatalf("unexpected input %+v", captured)
	}
}

func TestMovementHandler_DeleteReasonSources(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   any
		want   string
	}{
		{name: "body", target: "/api/v1/movements/mov-1", body: `{"reason":"duplicate"}`, want: "duplicate"},
		{name: "query", target: "/api/v1/movements/mov-1?reason=refund", want: "refund"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured usecase.DeleteMovementInput
			handler := NewMovementHandler(&ledgerServiceStub{
				deleteFn: func(ctx context.Context, input usecase.DeleteMovementInput) (*domain.Movement, error) {
					captured = input
					m := testMovement(domain.Debit{})
					m.Deleted = &domain.Deletion{At: fixedTime, By: input.OwnerID, Reason: input.Reason}
					return m, nil
				},
			}, nil)

			rec := httptest.NewRecorder()
			handler.Delete(rec, newRequest(t, http.MethodDelete, tt.target, tt.body, map[string]string{"id": "mov-1"}))

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if captured.Reason != tt.want || captured.MovementID != "mov-1" {
				t.Fatalf("unexpected input %+v", captured)
			}
		})
	}
}

func TestMovementHandler_ListParsesQuery(t *testing.T) {
	var captured usecase.MovementQuery
	handler := NewMovementHandler(nil, &queryServiceStub{
		queryFn: func(ctx context.Context, q usecase.MovementQuery) (*usecase.MovementQueryResult, error) {
			captured = q
			return &usecase.MovementQueryResult{
				Page: domain.Page{
					Items:      []*domain.Movement{testMovement(domain.Credit{})},
					Number:     2,
					Size:       10,
					TotalCount: 11,
					TotalPages: 2,
				},
				Summary:      domain.Summary{CreditTotal: decimal.NewFromInt(200), CreditCount: 1},
				AccountNames: map[string]string{"acc-1": "Checking"},
			}, nil
		},
	})

	target := "/api/v1/movements?search=salary&kind=credit&account_id=acc-1&from=2024-06-01&to=2024-06-30" +
		"&min_amount=10&recurring=true&sort=amount&order=asc&page=2&page_size=10"

	rec := httptest.NewRecorder()
	handler.List(rec, newRequest(t, http.MethodGet, target, nil, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	f := captured.Filter
	if captured.OwnerID != "owner-1" || f.Search != "salary" || f.Kind != domain.KindCredit || f.AccountID != "acc-1" {
		t.Fatalf("unexpected filter %+v", f)
	}
	if f.FromDate == nil || f.ToDate == nil || f.MinAmount == nil || f.MaxAmount != nil || !f.RecurringOnly {
		t.Fatalf("unexpected optional filters %+v", f)
	}
	if captured.Sort.Field != domain.SortByAmount || captured.Sort.Descending {
		t.Fatalf("unexpected sort %+v", captured.Sort)
	}
	if captured.Page != 2 || captured.PageSize != 10 {
		t.Fatalf("unexpected paging %d/%d", captured.Page, captured.PageSize)
	}

	var resp dto.MovementPageResponse
	decodeBody(t, rec, &resp)
	if resp.TotalCount != 11 || len(resp.Items) != 1 || resp.Items[0].AccountName != "Checking" {
		t.Fatalf("unexpected page %+v", resp)
	}
	if resp.Summary.CreditTotal != "200.00" {
		t.Fatalf("unexpected summary %+v", resp.Summary)
	}
}

func TestMovementHandler_ListDefaultsToNewestFirst(t *testing.T) {
	var captured usecase.MovementQuery
	handler := NewMovementHandler(nil, &queryServiceStub{
		queryFn: func(ctx context.Context, q usecase.MovementQuery) (*usecase.MovementQueryResult, error) {
			captured = q
			return &usecase.MovementQueryResult{}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.List(rec, newRequest(t, http.MethodGet, "/api/v1/movements", nil, nil))

	if captured.Sort != domain.DefaultMovementSort {
		t.Fatalf("expected default sort, got %+v", captured.Sort)
	}
}

func TestMovementHandler_ListRejectsBadQuery(t *testing.T) {
	tests := []string{
		"/api/v1/movements?kind=refund",
		"/api/v1/movements?sort=mood",
		"/api/v1/movements?order=sideways",
		"/api/v1/movements?from=June",
		"/api/v1/movements?max_amount=lots",
	}

	for _, target := range tests {
		t.Run(target, func(t *testing.T) {
			handler := NewMovementHandler(nil, &queryServiceStub{
				queryFn: func(ctx context.Context, q usecase.MovementQuery) (*usecase.MovementQueryResult, error) {
					return nil, errors.New("must not be called")
				},
			})

			rec := httptest.NewRecorder()
			handler.List(rec, newRequest(t, http.MethodGet, target, nil, nil))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}
