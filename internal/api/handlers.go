// Package api is the HTTP boundary: thin handlers that parse the request,
// call one service operation, and translate its result or error. No business
// rules live here.
package api

import (
	"net/http"

	"github.com/ignite/sender-hub/internal/auth"
	"github.com/ignite/sender-hub/internal/domainverify"
	"github.com/ignite/sender-hub/internal/pkg/httputil"
	"github.com/ignite/sender-hub/internal/poller"
	"github.com/ignite/sender-hub/internal/registry"
)

// Handlers holds the services the HTTP layer dispatches into.
type Handlers struct {
	registry *registry.Registry
	poller   *poller.Poller
	domains  *domainverify.Manager
	// callbackToken authenticates the scheduler's poll callbacks.
	callbackToken string
}

// NewHandlers creates the handler set.
func NewHandlers(reg *registry.Registry, p *poller.Poller, dm *domainverify.Manager, callbackToken string) *Handlers {
	return &Handlers{
		registry:      reg,
		poller:        p,
		domains:       dm,
		callbackToken: callbackToken,
	}
}

// HealthCheck reports service liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{"status": "healthy", "service": "sender-hub"})
}

// userContext pulls the authenticated tenant from the request context. The
// auth middleware guarantees it is present on /api routes.
func userContext(w http.ResponseWriter, r *http.Request) (auth.UserContext, bool) {
	uc, ok := auth.FromContext(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return auth.UserContext{}, false
	}
	return uc, true
}
