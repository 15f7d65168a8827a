package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ignite/sender-hub/internal/domain"
	"github.com/ignite/sender-hub/internal/pkg/distlock"
	"github.com/ignite/sender-hub/internal/pkg/logger"
	"github.com/ignite/sender-hub/internal/store"
)

// DefaultAllocator maintains the one-default-sender-per-tenant invariant.
//
// The store has no multi-item transaction, so unset-others-then-set-one is a
// sequence of per-item writes. A best-effort Redis tenant lock narrows the
// window in which two concurrent default changes interleave; without it the
// writes still converge, but a tenant can transiently observe zero or two
// defaults.
type DefaultAllocator struct {
	store  store.SenderStore
	locker *distlock.TenantLocker
}

// NewDefaultAllocator creates an allocator. locker may be nil.
func NewDefaultAllocator(s store.SenderStore, locker *distlock.TenantLocker) *DefaultAllocator {
	return &DefaultAllocator{store: s, locker: locker}
}

// MakeDefault clears the default flag on every other sender of the tenant.
// The caller is responsible for setting the flag on the target afterwards,
// as part of whatever write it was already making.
func (a *DefaultAllocator) MakeDefault(ctx context.Context, tenantID, senderID string) error {
	return a.locker.WithTenantLock(ctx, tenantID, func(ctx context.Context) error {
		senders, err := a.store.ListByTenant(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("listing senders for default change: %w", err)
		}
		for _, s := range senders {
			if s.ID == senderID || !s.IsDefault {
				continue
			}
			if err := a.store.SetDefault(ctx, tenantID, s.ID, false); err != nil {
				// A concurrent delete already removed it; the flag is gone
				// either way.
				if errors.Is(err, domain.ErrNotFound) {
					continue
				}
				return fmt.Errorf("unsetting default on sender %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

// ReassignAfterRemoval picks a new default after the default sender was
// deleted: the first verified sender, or failing that the first remaining
// sender in index order. With no senders left the tenant simply has no
// default.
func (a *DefaultAllocator) ReassignAfterRemoval(ctx context.Context, tenantID, removedID string) error {
	return a.locker.WithTenantLock(ctx, tenantID, func(ctx context.Context) error {
		senders, err := a.store.ListByTenant(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("listing senders for default reassignment: %w", err)
		}

		remaining := make([]domain.Sender, 0, len(senders))
		for _, s := range senders {
			if s.ID != removedID {
				remaining = append(remaining, s)
			}
		}
		if len(remaining) == 0 {
			return nil
		}

		next := remaining[0]
		for _, s := range remaining {
			if s.Status == domain.StatusVerified {
				next = s
				break
			}
		}

		if err := a.store.SetDefault(ctx, tenantID, next.ID, true); err != nil {
			return fmt.Errorf("promoting sender %s to default: %w", next.ID, err)
		}
		logger.Info("Reassigned default sender",
			"tenant_id", tenantID,
			"sender_id", next.ID,
			"status", string(next.Status))
		return nil
	})
}
