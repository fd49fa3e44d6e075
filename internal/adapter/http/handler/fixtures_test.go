package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/middleware"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
)

var fixedTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// newRequest builds a request acting as owner-1 with optional chi URL params.
func newRequest(t *testing.T, method, target string, body any, params map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			if err := json.NewEncoder(&buf).Encode(b); err != nil {
				t.Fatalf("encode body: %v", err)
			}
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	ctx := middleware.WithOwner(req.Context(), "owner-1")

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}

	return req.WithContext(ctx)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func testAccount() *domain.Account {
	return &domain.Account{
		ID:             "acc-1",
		OwnerID:        "owner-1",
		Name:           "Checking",
		Type:           domain.AccountTypeChecking,
		Currency:       "USD",
		InitialBalance: decimal.NewFromInt(100),
		CurrentBalance: decimal.NewFromInt(250),
		Active:         true,
		CreatedAt:      fixedTime,
		UpdatedAt:      fixedTime,
	}
}

func testMovement(detail domain.MovementDetail) *domain.Movement {
	return &domain.Movement{
		ID:          "mov-1",
		OwnerID:     "owner-1",
		AccountID:   "acc-1",
		Description: "Salary",
		Amount:      decimal.NewFromInt(200),
		Detail:      detail,
		OccurredAt:  fixedTime,
		CreatedAt:   fixedTime,
	}
}
