package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/sender-hub/internal/pkg/httputil"
	"github.com/ignite/sender-hub/internal/registry"
	"github.com/ignite/sender-hub/internal/schedule"
)

// CreateSender handles POST /api/senders.
func (h *Handlers) CreateSender(w http.ResponseWriter, r *http.Request) {
	uc, ok := userContext(w, r)
	if !ok {
		return
	}
	var in registry.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	res, err := h.registry.Create(r.Context(), uc, in)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.Created(w, res)
}

// ListSenders handles GET /api/senders.
func (h *Handlers) ListSenders(w http.ResponseWriter, r *http.Request) {
	uc, ok := userContext(w, r)
	if !ok {
		return
	}
	res, err := h.registry.List(r.Context(), uc)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, res)
}

// UpdateSender handles PUT /api/senders/{id}.
func (h *Handlers) UpdateSender(w http.ResponseWriter, r *http.Request) {
	uc, ok := userContext(w, r)
	if !ok {
		return
	}
	var in registry.UpdateInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	sender, err := h.registry.Update(r.Context(), uc, chi.URLParam(r, "id"), in)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, sender)
}

// DeleteSender handles DELETE /api/senders/{id}.
func (h *Handlers) DeleteSender(w http.ResponseWriter, r *http.Request) {
	uc, ok := userContext(w, r)
	if !ok {
		return
	}
	if err := h.registry.Delete(r.Context(), uc, chi.URLParam(r, "id")); err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.NoContent(w)
}

// RefreshSenderStatus handles PUT /api/senders/{id}/status: an on-demand
// verification check. StartTime stays zero so the poller skips the timeout
// logic and never schedules.
func (h *Handlers) RefreshSenderStatus(w http.ResponseWriter, r *http.Request) {
	uc, ok := userContext(w, r)
	if !ok {
		return
	}
	task := schedule.PollTask{TenantID: uc.TenantID, SenderID: chi.URLParam(r, "id")}
	sender, err := h.poller.Poll(r.Context(), task)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	httputil.OK(w, sender)
}
