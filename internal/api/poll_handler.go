package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/ignite/sender-hub/internal/pkg/httputil"
	"github.com/ignite/sender-hub/internal/schedule"
)

// HeaderCallbackToken carries the shared secret EventBridge Scheduler
// presents when invoking the poll callback.
const HeaderCallbackToken = "X-Callback-Token"

// HandleScheduledPoll handles POST /internal/poll, the scheduler's callback.
// The body is the PollTask the previous invocation handed to the scheduler.
// A missing sender is a benign race with delete, reported as success so the
// scheduler never retries a dead chain.
func (h *Handlers) HandleScheduledPoll(w http.ResponseWriter, r *http.Request) {
	if h.callbackToken == "" ||
		subtle.ConstantTimeCompare([]byte(r.Header.Get(HeaderCallbackToken)), []byte(h.callbackToken)) != 1 {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var task schedule.PollTask
	if !httputil.Decode(w, r, &task) {
		return
	}
	if task.TenantID == "" || task.SenderID == "" {
		httputil.BadRequest(w, "tenant_id and sender_id are required")
		return
	}

	sender, err := h.poller.Poll(r.Context(), task)
	if err != nil {
		httputil.FromError(w, err)
		return
	}
	if sender == nil {
		httputil.OK(w, map[string]string{"result": "skipped"})
		return
	}
	httputil.OK(w, map[string]string{"result": "polled", "status": string(sender.Status)})
}
