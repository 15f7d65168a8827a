// Package store persists sender and domain-verification records.
//
// Two implementations exist: DynamoDB (production) and an in-memory map
// (tests and -dev mode). Both honor the same conditional-write semantics:
// Create fails with domain.ErrConflict when the item exists, and every
// mutation of an existing item fails with domain.ErrNotFound when it does
// not. Those conditions are the only cross-invocation safety net the service
// has (there is no long-lived process), so implementations must not weaken
// them.
package store

import (
	"context"
	"time"

	"github.com/ignite/sender-hub/internal/domain"
)

// SenderStore persists sender records, keyed by (tenant, sender id).
// ListByTenant returns senders in index order (ascending sender id); the
// default-sender reassignment fallback depends on that ordering being stable.
type SenderStore interface {
	// Create persists a new sender. Returns domain.ErrConflict if a sender
	// with the same id already exists for the tenant.
	Create(ctx context.Context, s *domain.Sender) error

	// Get loads one sender. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, tenantID, senderID string) (*domain.Sender, error)

	// ListByTenant returns all of a tenant's senders in index order.
	ListByTenant(ctx context.Context, tenantID string) ([]domain.Sender, error)

	// Update replaces the whole record, conditioned on it still existing.
	Update(ctx context.Context, s *domain.Sender) error

	// UpdateStatus transitions verification status, conditioned on the record
	// still existing. verifiedAt is stamped only on the transition into
	// verified; failureReason only on failed/timed-out.
	UpdateStatus(ctx context.Context, tenantID, senderID string, status domain.VerificationStatus, verifiedAt *time.Time, failureReason string) error

	// SetDefault flips the is_default flag, conditioned on existence.
	SetDefault(ctx context.Context, tenantID, senderID string, isDefault bool) error

	// Delete removes the record, conditioned on existence.
	Delete(ctx context.Context, tenantID, senderID string) error

	// RecordSend atomically increments emails_sent and stamps last_sent_at.
	RecordSend(ctx context.Context, tenantID, senderID string, at time.Time) error
}

// DomainStore persists domain verification records, unique per
// (tenant, domain). Records are never deleted by this service.
type DomainStore interface {
	// Create persists a new record. Returns domain.ErrConflict if the domain
	// is already registered for the tenant.
	Create(ctx context.Context, rec *domain.DomainVerification) error

	// Get loads one record. Returns domain.ErrNotFound if absent.
	Get(ctx context.Context, tenantID, domainName string) (*domain.DomainVerification, error)

	// Update replaces the record, conditioned on it still existing.
	Update(ctx context.Context, rec *domain.DomainVerification) error
}
