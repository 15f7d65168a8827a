package schedule

import (
	"context"
	"time"

	"github.com/ignite/sender-hub/internal/pkg/logger"
)

// NoopClient is used when no scheduler is configured (local development).
// Polls are never continued automatically; clients can still trigger them
// through the status refresh endpoint.
type NoopClient struct{}

func (NoopClient) SchedulePoll(_ context.Context, task PollTask, delay time.Duration) error {
	logger.Warn("Scheduler not configured, skipping poll continuation",
		"tenant_id", task.TenantID,
		"sender_id", task.SenderID,
		"delay", delay.String())
	return nil
}
