package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/sender-hub/internal/pkg/httputil"
)

type initiateDomainRequest struct {
	Domain string `json:"domain"`
}

// InitiateDomain handles POST /api/senders/domain.
func (h *Handlers) InitiateDomain(w http.ResponseWriter, r *http.Request) {
	uc, ok := userContext(w, r)
	if !ok {
		return
	}
	var req initiateDomainRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	status, err := h.domains.Initiate(r.Context(), uc, req.Domain)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, status)
}

// GetDomainStatus handles GET /api/senders/domain/{domain}. Every call
// re-queries the provider; this endpoint is the only thing that advances a
// domain verification.
func (h *Handlers) GetDomainStatus(w http.ResponseWriter, r *http.Request) {
	uc, ok := userContext(w, r)
	if !ok {
		return
	}
	status, err := h.domains.GetStatus(r.Context(), uc, chi.URLParam(r, "domain"))
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, status)
}
