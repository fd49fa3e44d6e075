package middleware

import (
	"context"
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MODEBARE/BudgetManagementSystem/internal/usecase"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// OwnerContextKey is the context key for the acting owner id
	OwnerContextKey ContextKey = "owner"

	// OwnerHeader carries the owner id. Identity is asserted by the
	// fronting gateway; this service does not authenticate.
	OwnerHeader = "X-Owner-ID"
)

// OwnerMiddleware requires an owner id on every request and propagates
// it, together with the chi request id, through the request context.
func OwnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := strings.TrimSpace(r.Header.Get(OwnerHeader))
		if ownerID == "" {
			http.Error(w, "missing "+OwnerHeader+" header", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), OwnerContextKey, ownerID)
		if reqID := chimw.GetReqID(ctx); reqID != "" {
			ctx = usecase.WithRequestID(ctx, reqID)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerFromContext retrieves the owner id from context
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(OwnerContextKey).(string)
	return ownerID, ok && ownerID != ""
}

// WithOwner returns a context carrying ownerID.
func WithOwner(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, OwnerContextKey, ownerID)
}
