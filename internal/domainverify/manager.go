// Package domainverify manages DNS-based domain verification. Unlike mailbox
// senders there is no scheduled polling: DNS propagation takes anywhere from
// minutes to days, so status only advances when a client asks for it.
package domainverify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ignite/sender-hub/internal/auth"
	"github.com/ignite/sender-hub/internal/dns"
	"github.com/ignite/sender-hub/internal/domain"
	"github.com/ignite/sender-hub/internal/pkg/logger"
	"github.com/ignite/sender-hub/internal/store"
	"github.com/ignite/sender-hub/internal/verification"
)

// Manager runs the domain verification lifecycle.
type Manager struct {
	domains     store.DomainStore
	provider    verification.Provider
	provisioner dns.Provisioner
	now         func() time.Time
}

// New creates a Manager. provisioner may be nil; DKIM records are then only
// returned to the tenant, never written to Route53.
func New(domains store.DomainStore, provider verification.Provider, provisioner dns.Provisioner) *Manager {
	return &Manager{
		domains:     domains,
		provider:    provider,
		provisioner: provisioner,
		now:         time.Now,
	}
}

// Status is a domain verification record enriched for presentation.
type Status struct {
	Domain          string                    `json:"domain"`
	Status          domain.VerificationStatus `json:"verification_status"`
	DNSRecords      []domain.DNSRecord        `json:"dns_records"`
	VerifiedAt      *time.Time                `json:"verified_at,omitempty"`
	Instructions    []string                  `json:"instructions"`
	Troubleshooting string                    `json:"troubleshooting,omitempty"`
}

// Initiate registers a domain for verification. The provider identity is
// created synchronously so the DKIM records can be handed back; nothing is
// persisted if that fails.
func (m *Manager) Initiate(ctx context.Context, uc auth.UserContext, domainName string) (*Status, error) {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	if !domain.ValidDomainName(domainName) {
		return nil, domain.Validationf("invalid domain name: must be a bare domain without scheme, path, or port")
	}
	if !domain.LimitsForTier(uc.Tier, 0).CanUseDNS {
		return nil, fmt.Errorf("domain verification requires the creator tier or higher: %w", domain.ErrTierRestricted)
	}

	if _, err := m.domains.Get(ctx, uc.TenantID, domainName); err == nil {
		return nil, fmt.Errorf("domain %s already registered: %w", domainName, domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("checking existing domain: %w", err)
	}

	identity, err := m.provider.CreateIdentity(ctx, domainName)
	if err != nil {
		return nil, fmt.Errorf("creating domain identity %s: %w", domainName, domain.ErrUpstream)
	}
	records := verification.DKIMRecords(domainName, identity.DKIMTokens)

	now := m.now().UTC()
	rec := &domain.DomainVerification{
		TenantID:    uc.TenantID,
		Domain:      domainName,
		Status:      domain.StatusPending,
		DNSRecords:  records,
		IdentityRef: identity.Ref,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.domains.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("persisting domain verification: %w", err)
	}

	// Zone auto-provisioning is a convenience, never a gate.
	if m.provisioner != nil {
		if err := m.provisioner.UpsertRecords(ctx, records); err != nil {
			logger.Warn("Failed to auto-provision DKIM records",
				"tenant_id", uc.TenantID, "domain", domainName, "error", err.Error())
		}
	}

	logger.Info("Domain verification initiated",
		"tenant_id", uc.TenantID, "domain", domainName, "dkim_records", fmt.Sprintf("%d", len(records)))
	return m.present(rec), nil
}

// GetStatus re-queries the provider on every call and persists any change.
// There is no cache: the client's poll is the only thing advancing a domain
// toward verified.
func (m *Manager) GetStatus(ctx context.Context, uc auth.UserContext, domainName string) (*Status, error) {
	domainName = strings.ToLower(strings.TrimSpace(domainName))
	rec, err := m.domains.Get(ctx, uc.TenantID, domainName)
	if err != nil {
		return nil, fmt.Errorf("loading domain %s: %w", domainName, err)
	}

	info, err := m.provider.GetIdentityStatus(ctx, rec.IdentityRef)
	if err != nil {
		return nil, fmt.Errorf("querying identity %s: %w", rec.IdentityRef, domain.ErrUpstream)
	}

	mapped := domain.StatusPending
	switch {
	case info.VerifiedForSending:
		mapped = domain.StatusVerified
	case strings.EqualFold(info.DKIMStatus, "FAILED") || info.Status == verification.StatusFailed:
		mapped = domain.StatusFailed
	}

	if mapped != rec.Status {
		rec.Status = mapped
		rec.UpdatedAt = m.now().UTC()
		if mapped == domain.StatusVerified && rec.VerifiedAt == nil {
			t := m.now().UTC()
			rec.VerifiedAt = &t
		}
		if err := m.domains.Update(ctx, rec); err != nil {
			return nil, fmt.Errorf("persisting domain status: %w", err)
		}
		logger.Info("Domain verification status changed",
			"tenant_id", uc.TenantID, "domain", domainName, "status", string(mapped))
	}

	return m.present(rec), nil
}

func (m *Manager) present(rec *domain.DomainVerification) *Status {
	return &Status{
		Domain:          rec.Domain,
		Status:          rec.Status,
		DNSRecords:      rec.DNSRecords,
		VerifiedAt:      rec.VerifiedAt,
		Instructions:    setupInstructions(rec),
		Troubleshooting: troubleshooting(rec.Status),
	}
}

func setupInstructions(rec *domain.DomainVerification) []string {
	return []string{
		fmt.Sprintf("Sign in to the DNS provider that manages %s.", rec.Domain),
		fmt.Sprintf("Add the %d CNAME record(s) below exactly as shown.", len(rec.DNSRecords)),
		"Wait for DNS propagation. Most providers publish within minutes, some take up to 48 hours.",
		"Check status again; verification completes automatically once the records are visible.",
	}
}

func troubleshooting(status domain.VerificationStatus) string {
	switch status {
	case domain.StatusVerified:
		return ""
	case domain.StatusFailed:
		return "Verification failed. Check that every CNAME record matches exactly, with no extra characters or trailing dots added by your DNS provider, then remove and re-add any incorrect records."
	default:
		return "Still pending. DNS changes can take up to 48 hours to propagate; if records were added recently, check again later. Use a DNS lookup tool to confirm the CNAME records are publicly visible."
	}
}
