package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ignite/sender-hub/internal/domain"
)

// MemoryStore is an in-memory SenderStore + DomainStore with the same
// conditional-write semantics as the DynamoDB implementation. Used by tests
// and -dev mode.
type MemoryStore struct {
	mu      sync.RWMutex
	senders map[string]map[string]domain.Sender            // tenant -> sender id -> record
	domains map[string]map[string]domain.DomainVerification // tenant -> domain -> record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		senders: make(map[string]map[string]domain.Sender),
		domains: make(map[string]map[string]domain.DomainVerification),
	}
}

func (m *MemoryStore) Create(ctx context.Context, s *domain.Sender) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tenant := m.senders[s.TenantID]
	if tenant == nil {
		tenant = make(map[string]domain.Sender)
		m.senders[s.TenantID] = tenant
	}
	if _, exists := tenant[s.ID]; exists {
		return fmt.Errorf("sender %s: %w", s.ID, domain.ErrConflict)
	}
	tenant[s.ID] = *s
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, tenantID, senderID string) (*domain.Sender, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.senders[tenantID][senderID]
	if !ok {
		return nil, fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
	}
	out := s
	return &out, nil
}

func (m *MemoryStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.Sender, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Sender, 0, len(m.senders[tenantID]))
	for _, s := range m.senders[tenantID] {
		out = append(out, s)
	}
	// Match DynamoDB's SK ordering (ascending sender id).
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryStore) Update(ctx context.Context, s *domain.Sender) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.senders[s.TenantID][s.ID]; !exists {
		return fmt.Errorf("sender %s: %w", s.ID, domain.ErrNotFound)
	}
	m.senders[s.TenantID][s.ID] = *s
	return nil
}

func (m *MemoryStore) UpdateStatus(ctx context.Context, tenantID, senderID string, status domain.VerificationStatus, verifiedAt *time.Time, failureReason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.senders[tenantID][senderID]
	if !exists {
		return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	if verifiedAt != nil {
		s.VerifiedAt = verifiedAt
	}
	if failureReason != "" {
		s.FailureReason = failureReason
	}
	m.senders[tenantID][senderID] = s
	return nil
}

func (m *MemoryStore) SetDefault(ctx context.Context, tenantID, senderID string, isDefault bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.senders[tenantID][senderID]
	if !exists {
		return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
	}
	s.IsDefault = isDefault
	s.UpdatedAt = time.Now().UTC()
	m.senders[tenantID][senderID] = s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, tenantID, senderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.senders[tenantID][senderID]; !exists {
		return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
	}
	delete(m.senders[tenantID], senderID)
	return nil
}

func (m *MemoryStore) RecordSend(ctx context.Context, tenantID, senderID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, exists := m.senders[tenantID][senderID]
	if !exists {
		return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
	}
	s.EmailsSent++
	t := at.UTC()
	s.LastSentAt = &t
	m.senders[tenantID][senderID] = s
	return nil
}

// Domains returns the DomainStore view of this store.
func (m *MemoryStore) Domains() DomainStore { return memoryDomainStore{m} }

type memoryDomainStore struct{ m *MemoryStore }

func (d memoryDomainStore) Create(ctx context.Context, rec *domain.DomainVerification) error {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()

	tenant := d.m.domains[rec.TenantID]
	if tenant == nil {
		tenant = make(map[string]domain.DomainVerification)
		d.m.domains[rec.TenantID] = tenant
	}
	if _, exists := tenant[rec.Domain]; exists {
		return fmt.Errorf("domain %s: %w", rec.Domain, domain.ErrConflict)
	}
	tenant[rec.Domain] = *rec
	return nil
}

func (d memoryDomainStore) Get(ctx context.Context, tenantID, domainName string) (*domain.DomainVerification, error) {
	d.m.mu.RLock()
	defer d.m.mu.RUnlock()

	rec, ok := d.m.domains[tenantID][domainName]
	if !ok {
		return nil, fmt.Errorf("domain %s: %w", domainName, domain.ErrNotFound)
	}
	out := rec
	return &out, nil
}

func (d memoryDomainStore) Update(ctx context.Context, rec *domain.DomainVerification) error {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()

	if _, exists := d.m.domains[rec.TenantID][rec.Domain]; !exists {
		return fmt.Errorf("domain %s: %w", rec.Domain, domain.ErrNotFound)
	}
	d.m.domains[rec.TenantID][rec.Domain] = *rec
	return nil
}
