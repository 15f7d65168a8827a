// Package schedule creates one-shot future invocations of the status poller.
//
// The multi-hour verification flow has no long-lived process. Each poll is an
// independent invocation that decides whether to schedule its successor; the
// PollTask payload is the entire state carried across the gap.
package schedule

import (
	"context"
	"time"
)

// PollTask is the durable continuation handed to the scheduler. StartTime is
// the original creation time of the verification attempt and is carried
// forward unchanged across reschedules, anchoring the timeout budget. A zero
// StartTime marks an on-demand invocation, which skips the timeout check.
type PollTask struct {
	TenantID  string    `json:"tenant_id"`
	SenderID  string    `json:"sender_id"`
	StartTime time.Time `json:"start_time,omitzero"`
}

// Scheduled reports whether the task came from the scheduler (as opposed to
// an on-demand status check).
func (t PollTask) Scheduled() bool { return !t.StartTime.IsZero() }

// Client creates one-shot, self-deleting future invocations. There is no
// cancel or read-back: a schedule that fires for a deleted sender is a benign
// no-op on the poller side.
type Client interface {
	SchedulePoll(ctx context.Context, task PollTask, delay time.Duration) error
}
