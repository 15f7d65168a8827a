// Package registry implements the sender lifecycle: create, list, update,
// delete, plus default-sender allocation and tier enforcement.
package registry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/sender-hub/internal/auth"
	"github.com/ignite/sender-hub/internal/domain"
	"github.com/ignite/sender-hub/internal/pkg/logger"
	"github.com/ignite/sender-hub/internal/schedule"
	"github.com/ignite/sender-hub/internal/store"
	"github.com/ignite/sender-hub/internal/verification"
)

// Registry manages a tenant's senders.
type Registry struct {
	store     store.SenderStore
	provider  verification.Provider
	scheduler schedule.Client
	alloc     *DefaultAllocator
	pollDelay time.Duration
	now       func() time.Time
}

// New creates a Registry. pollDelay is the lead time for the first scheduled
// status poll of a new mailbox sender.
func New(s store.SenderStore, p verification.Provider, sc schedule.Client, alloc *DefaultAllocator, pollDelay time.Duration) *Registry {
	if pollDelay <= 0 {
		pollDelay = time.Minute
	}
	return &Registry{
		store:     s,
		provider:  p,
		scheduler: sc,
		alloc:     alloc,
		pollDelay: pollDelay,
		now:       time.Now,
	}
}

// CreateInput is a request to register a new sender.
type CreateInput struct {
	Email string                  `json:"email"`
	Name  string                  `json:"name,omitempty"`
	Type  domain.VerificationType `json:"verification_type"`
}

// CreateResult is a newly registered sender. DNSRecords is populated only
// for domain-type senders.
type CreateResult struct {
	Sender     *domain.Sender     `json:"sender"`
	DNSRecords []domain.DNSRecord `json:"dns_records,omitempty"`
}

// ListResult is a tenant's senders plus the limits its tier imposes.
type ListResult struct {
	Senders []domain.Sender   `json:"senders"`
	Limits  domain.TierLimits `json:"limits"`
}

// UpdateInput carries the mutable sender fields. Nil means unchanged.
type UpdateInput struct {
	Name      *string `json:"name,omitempty"`
	IsDefault *bool   `json:"is_default,omitempty"`
}

// Create registers a new sender for the tenant. Validation, tier, quota and
// uniqueness gates run in that order. The first sender of a tenant becomes
// the default. Mailbox senders are persisted first and verified
// asynchronously; domain senders require the provider identity up front so
// the DNS records can be returned, and nothing is persisted if that fails.
func (r *Registry) Create(ctx context.Context, uc auth.UserContext, in CreateInput) (*CreateResult, error) {
	email := strings.TrimSpace(in.Email)
	if !domain.ValidEmail(email) {
		return nil, domain.Validationf("invalid email address")
	}
	if !in.Type.Valid() {
		return nil, domain.Validationf("verification_type must be %q or %q", domain.VerificationMailbox, domain.VerificationDomain)
	}

	senders, err := r.store.ListByTenant(ctx, uc.TenantID)
	if err != nil {
		return nil, fmt.Errorf("loading tenant senders: %w", err)
	}
	limits := domain.LimitsForTier(uc.Tier, len(senders))

	if in.Type == domain.VerificationDomain && !limits.CanUseDNS {
		return nil, fmt.Errorf("domain verification requires the creator tier or higher: %w", domain.ErrTierRestricted)
	}
	if len(senders) >= limits.MaxSenders {
		return nil, domain.Validationf("sender limit reached: the %s tier allows %d sender(s)", limits.Tier, limits.MaxSenders)
	}
	for _, s := range senders {
		if strings.EqualFold(s.Email, email) {
			return nil, fmt.Errorf("sender already registered: %w", domain.ErrConflict)
		}
	}

	now := r.now().UTC()
	sender := &domain.Sender{
		TenantID:  uc.TenantID,
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(in.Name),
		Type:      in.Type,
		Status:    domain.StatusPending,
		IsDefault: len(senders) == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var records []domain.DNSRecord
	switch in.Type {
	case domain.VerificationDomain:
		sender.Domain = domain.EmailDomain(email)
		identity, err := r.provider.CreateIdentity(ctx, sender.Domain)
		if err != nil {
			return nil, fmt.Errorf("creating domain identity %s: %w", sender.Domain, domain.ErrUpstream)
		}
		sender.IdentityRef = identity.Ref
		records = verification.DKIMRecords(sender.Domain, identity.DKIMTokens)
	case domain.VerificationMailbox:
		sender.IdentityRef = email
	}

	if err := r.store.Create(ctx, sender); err != nil {
		return nil, fmt.Errorf("persisting sender: %w", err)
	}

	// Verification mail and the first poll are fire-and-forget: a failure
	// here leaves a pending sender the client can refresh manually.
	if in.Type == domain.VerificationMailbox {
		if _, err := r.provider.CreateIdentity(ctx, email); err != nil {
			logger.Warn("Failed to create mailbox identity",
				"tenant_id", uc.TenantID, "sender_id", sender.ID, "error", err.Error())
		}
		if err := r.provider.SendVerificationEmail(ctx, email); err != nil {
			logger.Warn("Failed to send verification email",
				"tenant_id", uc.TenantID, "sender_id", sender.ID, "error", err.Error())
		}
		task := schedule.PollTask{TenantID: uc.TenantID, SenderID: sender.ID, StartTime: now}
		if err := r.scheduler.SchedulePoll(ctx, task, r.pollDelay); err != nil {
			logger.Warn("Failed to schedule verification poll",
				"tenant_id", uc.TenantID, "sender_id", sender.ID, "error", err.Error())
		}
	}

	logger.Info("Sender created",
		"tenant_id", uc.TenantID,
		"sender_id", sender.ID,
		"type", string(sender.Type),
		"is_default", fmt.Sprintf("%t", sender.IsDefault))
	return &CreateResult{Sender: sender, DNSRecords: records}, nil
}

// List returns the tenant's senders with its tier limits.
func (r *Registry) List(ctx context.Context, uc auth.UserContext) (*ListResult, error) {
	senders, err := r.store.ListByTenant(ctx, uc.TenantID)
	if err != nil {
		return nil, fmt.Errorf("loading tenant senders: %w", err)
	}
	return &ListResult{
		Senders: senders,
		Limits:  domain.LimitsForTier(uc.Tier, len(senders)),
	}, nil
}

// Update changes a sender's name and/or default flag. Promoting a sender to
// default demotes every other sender first.
func (r *Registry) Update(ctx context.Context, uc auth.UserContext, senderID string, in UpdateInput) (*domain.Sender, error) {
	if in.Name == nil && in.IsDefault == nil {
		return nil, domain.Validationf("no fields to update")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Validationf("name cannot be empty")
	}

	sender, err := r.store.Get(ctx, uc.TenantID, senderID)
	if err != nil {
		return nil, fmt.Errorf("loading sender %s: %w", senderID, err)
	}

	if in.IsDefault != nil && *in.IsDefault && !sender.IsDefault {
		if err := r.alloc.MakeDefault(ctx, uc.TenantID, senderID); err != nil {
			return nil, err
		}
	}

	if in.Name != nil {
		sender.Name = strings.TrimSpace(*in.Name)
	}
	if in.IsDefault != nil {
		sender.IsDefault = *in.IsDefault
	}
	sender.UpdatedAt = r.now().UTC()

	if err := r.store.Update(ctx, sender); err != nil {
		return nil, fmt.Errorf("updating sender %s: %w", senderID, err)
	}
	return sender, nil
}

// Delete removes a sender. Provider-side cleanup is best-effort; when the
// default sender goes away another one is promoted before the record is
// removed.
func (r *Registry) Delete(ctx context.Context, uc auth.UserContext, senderID string) error {
	sender, err := r.store.Get(ctx, uc.TenantID, senderID)
	if err != nil {
		return fmt.Errorf("loading sender %s: %w", senderID, err)
	}

	if sender.IdentityRef != "" {
		if err := r.provider.DeleteIdentity(ctx, sender.IdentityRef); err != nil {
			logger.Warn("Failed to delete provider identity",
				"tenant_id", uc.TenantID, "sender_id", senderID, "error", err.Error())
		}
	}

	if sender.IsDefault {
		if err := r.alloc.ReassignAfterRemoval(ctx, uc.TenantID, senderID); err != nil {
			logger.Warn("Failed to reassign default sender",
				"tenant_id", uc.TenantID, "sender_id", senderID, "error", err.Error())
		}
	}

	if err := r.store.Delete(ctx, uc.TenantID, senderID); err != nil {
		return fmt.Errorf("deleting sender %s: %w", senderID, err)
	}
	logger.Info("Sender deleted", "tenant_id", uc.TenantID, "sender_id", senderID)
	return nil
}

// RecordSend bumps the sender's usage counters after an outbound send.
func (r *Registry) RecordSend(ctx context.Context, tenantID, senderID string) error {
	if err := r.store.RecordSend(ctx, tenantID, senderID, r.now().UTC()); err != nil {
		return fmt.Errorf("recording send for sender %s: %w", senderID, err)
	}
	return nil
}
