package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/dto"
	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/handler"
	apimiddleware "github.com/MODEBARE/BudgetManagementSystem/internal/adapter/http/middleware"
	"github.com/MODEBARE/BudgetManagementSystem/internal/adapter/repository/memory"
	"github.com/MODEBARE/BudgetManagementSystem/internal/domain"
	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /health to return 200, got %d", rec.Code)
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_APIRequiresOwner(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without owner header, got %d", rec.Code)
	}
}

func TestNewRouter_IdempotencyMiddlewareInvokesStore(t *testing.T) {
	store := &stubIdempotencyStore{}
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = store
	}))

	body := `{"name":"Main","type":"checking","currency":"USD","initial_balance":"0"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apimiddleware.OwnerHeader, "owner-1")
	req.Header.Set(apimiddleware.IdempotencyKeyHeader, "key-123")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if !store.checkCalled {
		t.Fatalf("expected idempotency store to be used")
	}
	if !strings.HasPrefix(store.lastKey, "owner-1:") {
		t.Fatalf("expected owner scoped key, got %q", store.lastKey)
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.HTTPMetrics = apimiddleware.NewHTTPMetrics(reg)
		cfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`) {
		t.Fatalf("expected /health to be counted, got:\n%s", rec.Body.String())
	}
}

func TestNewRouter_CORSPreflight(t *testing.T) {
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.CORSAllowedOrigins = []string{"https://budget.example.com"}
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/accounts/", nil)
	req.Header.Set("Origin", "https://budget.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://budget.example.com" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{id}",
		"PATCH /api/v1/accounts/{id}",
		"DELETE /api/v1/accounts/{id}",
		"GET /api/v1/accounts/{id}/stats",
		"POST /api/v1/accounts/{id}/reconciliation/repair",
		"GET /api/v1/movements/",
		"POST /api/v1/movements/credit",
		"POST /api/v1/movements/debit",
		"PUT /api/v1/movements/{id}",
		"DELETE /api/v1/movements/{id}",
		"POST /api/v1/transfers/",
		"POST /api/v1/transfers/preview",
		"POST /api/v1/transfers/confirm",
		"GET /api/v1/dashboard",
		"GET /api/v1/categories",
		"GET /api/v1/reconciliation",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

// TestNewRouter_LedgerRoundTrip drives the checking/savings scenario
// through HTTP against the in-memory store.
func TestNewRouter_LedgerRoundTrip(t *testing.T) {
	router := NewRouter(newRouterConfig())

	checking := call[dto.AccountResponse](t, router, http.MethodPost, "/api/v1/accounts/",
		`{"name":"Checking","type":"checking","currency":"USD","initial_balance":"100.00"}`, http.StatusCreated)
	savings := call[dto.AccountResponse](t, router, http.MethodPost, "/api/v1/accounts/",
		`{"name":"Savings","type":"savings","currency":"USD","initial_balance":"0"}`, http.StatusCreated)

	call[dto.MovementResponse](t, router, http.MethodPost, "/api/v1/movements/credit",
		`{"account_id":"`+checking.ID+`","amount":"200.00","description":"Salary"}`, http.StatusCreated)
	debit := call[dto.MovementResponse](t, router, http.MethodPost, "/api/v1/movements/debit",
		`{"account_id":"`+checking.ID+`","amount":"50.00","description":"Groceries"}`, http.StatusCreated)

	call[dto.TransferResponse](t, router, http.MethodPost, "/api/v1/transfers/",
		`{"source_account_id":"`+checking.ID+`","destination_account_id":"`+savings.ID+`","amount":"100.00","fee":"2.00","description":"Save"}`,
		http.StatusCreated)

	got := call[dto.AccountResponse](t, router, http.MethodGet, "/api/v1/accounts/"+checking.ID, "", http.StatusOK)
	if got.CurrentBalance != "148.00" {
		t.Fatalf("checking balance = %s, want 148.00", got.CurrentBalance)
	}
	got = call[dto.AccountResponse](t, router, http.MethodGet, "/api/v1/accounts/"+savings.ID, "", http.StatusOK)
	if got.CurrentBalance != "100.00" {
		t.Fatalf("savings balance = %s, want 100.00", got.CurrentBalance)
	}

	call[dto.MovementResponse](t, router, http.MethodDelete, "/api/v1/movements/"+debit.ID,
		`{"reason":"duplicate"}`, http.StatusOK)

	page := call[dto.MovementPageResponse](t, router, http.MethodGet, "/api/v1/movements/?account_id="+checking.ID, "", http.StatusOK)
	if page.TotalCount != 2 {
		t.Fatalf("expected credit and outgoing leg, got %d movements", page.TotalCount)
	}

	report := call[dto.ReconciliationReportResponse](t, router, http.MethodGet, "/api/v1/reconciliation", "", http.StatusOK)
	if report.TotalAccounts != 2 || len(report.Discrepancies) != 0 {
		t.Fatalf("unexpected reconciliation report %+v", report)
	}

	trail := call[[]dto.AuditLogResponse](t, router, http.MethodGet,
		"/api/v1/audit?resource_type=movement&resource_id="+debit.ID, "", http.StatusOK)
	if len(trail) != 2 || trail[0].Action != string(domain.AuditActionMovementDelete) || trail[0].Reason != "duplicate" {
		t.Fatalf("unexpected debit trail %+v", trail)
	}

	call[dto.ErrorResponse](t, router, http.MethodDelete, "/api/v1/accounts/"+checking.ID, "", http.StatusConflict)
}

func call[T any](t *testing.T, h http.Handler, method, target, body string, wantStatus int) T {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(apimiddleware.OwnerHeader, "owner-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d: %s", method, target, wantStatus, rec.Code, rec.Body.String())
	}

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("%s %s: decode: %v", method, target, err)
	}
	return out
}

func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore()
	txm := memory.NewTxManager(store)
	accounts := memory.NewAccountRepository(store)
	movements := memory.NewMovementRepository(store)
	audit := memory.NewAuditRepository(store)
	outbox := memory.NewOutboxRepository(store)
	ids := memory.NewSequenceGenerator("id-")
	clock := usecase.SystemClock{}

	ledgerUC := usecase.NewLedgerUseCase(usecase.LedgerConfig{
		TxManager:    txm,
		AccountRepo:  accounts,
		MovementRepo: movements,
		AuditRepo:    audit,
		OutboxRepo:   outbox,
		IDGen:        ids,
	})
	accountUC := usecase.NewAccountUseCase(usecase.AccountConfig{
		TxManager:    txm,
		AccountRepo:  accounts,
		MovementRepo: movements,
		AuditRepo:    audit,
		OutboxRepo:   outbox,
		IDGen:        ids,
	})
	queryUC := usecase.NewQueryUseCase(accounts, movements, clock, 20, 100)
	reconUC := usecase.NewReconciliationUseCase(txm, accounts, movements, audit, ids, clock, nil)
	transferUC := usecase.NewTransferUseCase(ledgerUC, accounts, memory.NewCache(time.Now), clock, time.Minute)

	cfg := RouterConfig{
		HealthHandler:   handler.NewHealthHandler(nil),
		AccountHandler:  handler.NewAccountHandler(accountUC),
		MovementHandler: handler.NewMovementHandler(ledgerUC, queryUC),
		TransferHandler: handler.NewTransferHandler(ledgerUC, transferUC),
		OverviewHandler: handler.NewOverviewHandler(queryUC, reconUC),
		Logger:          zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

type stubIdempotencyStore struct {
	checkCalled bool
	lastKey     string
}

func (s *stubIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.checkCalled = true
	s.lastKey = key
	return false, nil, nil
}

func (s *stubIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	return nil
}

func (s *stubIdempotencyStore) Release(ctx context.Context, key string) error {
	return nil
}
