// Package poller drives a sender's verification status toward a terminal
// state, one invocation at a time.
//
// There is no long-lived worker: each poll loads the sender, mirrors the
// provider's current state, and either stops (terminal, timed out, or
// deleted) or schedules its own successor. The PollTask payload is the only
// state carried between invocations.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/sender-hub/internal/domain"
	"github.com/ignite/sender-hub/internal/pkg/logger"
	"github.com/ignite/sender-hub/internal/schedule"
	"github.com/ignite/sender-hub/internal/store"
	"github.com/ignite/sender-hub/internal/verification"
)

const timedOutReason = "verification window expired"

// Poller checks a pending sender against the provider and persists any
// status transition.
type Poller struct {
	store     store.SenderStore
	provider  verification.Provider
	scheduler schedule.Client
	timeout   time.Duration
	interval  time.Duration
	now       func() time.Time
}

// New creates a Poller. timeout bounds how long a scheduled chain keeps a
// sender pending; interval is the delay before the next poll.
func New(s store.SenderStore, p verification.Provider, sc schedule.Client, timeout, interval time.Duration) *Poller {
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &Poller{
		store:     s,
		provider:  p,
		scheduler: sc,
		timeout:   timeout,
		interval:  interval,
		now:       time.Now,
	}
}

// Poll runs one verification check. Scheduled invocations (non-zero
// StartTime) additionally enforce the timeout and keep the chain alive by
// scheduling a successor while the sender stays pending; on-demand
// invocations do neither.
//
// A sender deleted mid-chain stops the chain silently on the scheduled path
// and returns domain.ErrNotFound on the on-demand path.
func (p *Poller) Poll(ctx context.Context, task schedule.PollTask) (*domain.Sender, error) {
	sender, err := p.store.Get(ctx, task.TenantID, task.SenderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) && task.Scheduled() {
			logger.Debug("Poll target gone, stopping chain",
				"tenant_id", task.TenantID, "sender_id", task.SenderID)
			return nil, nil
		}
		return nil, fmt.Errorf("loading sender %s: %w", task.SenderID, err)
	}

	// Terminal states are absorbing: no provider call, no reschedule.
	if sender.Status.Terminal() {
		return sender, nil
	}

	mapped := sender.Status
	info, err := p.provider.GetIdentityStatus(ctx, sender.IdentityRef)
	if err != nil {
		// Transient provider failure: leave the status unchanged and let the
		// chain (or the client) retry.
		logger.Warn("Provider status check failed",
			"tenant_id", task.TenantID, "sender_id", task.SenderID, "error", err.Error())
	} else {
		switch info.Status {
		case verification.StatusSuccess:
			mapped = domain.StatusVerified
		case verification.StatusFailed:
			mapped = domain.StatusFailed
		case verification.StatusPending:
			mapped = domain.StatusPending
		}
		// not_found and unknown carry no mapping; status stays as stored.
	}

	if mapped != sender.Status {
		var verifiedAt *time.Time
		var reason string
		if mapped == domain.StatusVerified {
			t := p.now().UTC()
			verifiedAt = &t
		}
		if mapped == domain.StatusFailed {
			reason = "provider reported verification failure"
		}
		if err := p.store.UpdateStatus(ctx, task.TenantID, task.SenderID, mapped, verifiedAt, reason); err != nil {
			if errors.Is(err, domain.ErrNotFound) && task.Scheduled() {
				return nil, nil
			}
			return nil, fmt.Errorf("persisting status %s: %w", mapped, err)
		}
		sender.Status = mapped
		sender.VerifiedAt = verifiedAt
		sender.FailureReason = reason
		logger.Info("Sender verification status changed",
			"tenant_id", task.TenantID, "sender_id", task.SenderID, "status", string(mapped))
	}

	if !task.Scheduled() || sender.Status != domain.StatusPending {
		return sender, nil
	}

	if p.now().Sub(task.StartTime) >= p.timeout {
		return p.abandon(ctx, task, sender)
	}

	// Still pending and inside the window: hand the unchanged task to the
	// next invocation.
	if err := p.scheduler.SchedulePoll(ctx, task, p.interval); err != nil {
		logger.Warn("Failed to schedule next poll",
			"tenant_id", task.TenantID, "sender_id", task.SenderID, "error", err.Error())
	}
	return sender, nil
}

// abandon finalizes a pending sender whose verification window has expired.
// The write is conditional on the record still existing, so a concurrent
// delete ends the chain instead of resurrecting the sender.
func (p *Poller) abandon(ctx context.Context, task schedule.PollTask, sender *domain.Sender) (*domain.Sender, error) {
	if err := p.store.UpdateStatus(ctx, task.TenantID, task.SenderID, domain.StatusTimedOut, nil, timedOutReason); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("persisting timeout: %w", err)
	}
	sender.Status = domain.StatusTimedOut
	sender.FailureReason = timedOutReason

	if sender.IdentityRef != "" {
		if err := p.provider.DeleteIdentity(ctx, sender.IdentityRef); err != nil {
			logger.Warn("Failed to clean up abandoned identity",
				"tenant_id", task.TenantID, "sender_id", task.SenderID, "error", err.Error())
		}
	}
	if sender.IsDefault {
		// The tenant keeps a timed-out default until they delete it; flag it
		// so support can spot tenants stuck in this state.
		logger.Warn("Default sender timed out without reassignment",
			"tenant_id", task.TenantID, "sender_id", task.SenderID)
	}
	logger.Info("Sender verification abandoned",
		"tenant_id", task.TenantID,
		"sender_id", task.SenderID,
		"elapsed", p.now().Sub(task.StartTime).String())
	return sender, nil
}
