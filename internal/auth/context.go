package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/ignite/sender-hub/internal/domain"
)

// Header names populated by the upstream gateway authorizer. The service
// never authenticates callers itself; it trusts these after the gateway has.
const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderTier     = "X-Tenant-Tier"
	HeaderEmail    = "X-User-Email"
)

// UserContext is the tenant/user identity resolved for a single request.
// It is parsed once at the boundary and passed explicitly into every
// operation; nothing in this service reads identity from globals.
type UserContext struct {
	TenantID string
	Tier     domain.Tier
	Email    string
}

// FromRequest parses the authorizer headers into a UserContext.
// A missing tenant ID means the caller is not authenticated.
func FromRequest(r *http.Request) (UserContext, error) {
	tenant := strings.TrimSpace(r.Header.Get(HeaderTenantID))
	if tenant == "" {
		return UserContext{}, domain.ErrUnauthorized
	}
	return UserContext{
		TenantID: tenant,
		Tier:     domain.Tier(strings.ToLower(strings.TrimSpace(r.Header.Get(HeaderTier)))),
		Email:    strings.TrimSpace(r.Header.Get(HeaderEmail)),
	}, nil
}

type contextKey struct{}

// WithContext stores uc in ctx.
func WithContext(ctx context.Context, uc UserContext) context.Context {
	return context.WithValue(ctx, contextKey{}, uc)
}

// FromContext retrieves the UserContext stored by the middleware.
func FromContext(ctx context.Context) (UserContext, bool) {
	uc, ok := ctx.Value(contextKey{}).(UserContext)
	return uc, ok
}

// Middleware parses the tenant context and rejects requests without one.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uc, err := FromRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), uc)))
	})
}
