package store

import (
	"context"
	"testing"
	"time"

	"github.com/ignite/sender-hub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSender(tenant, id, email string) *domain.Sender {
	now := time.Now().UTC()
	return &domain.Sender{
		TenantID:  tenant,
		ID:        id,
		Email:     email,
		Type:      domain.VerificationMailbox,
		Status:    domain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestMemoryCreateConflict(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, newSender("t1", "s1", "a@x.com")))
	err := m.Create(ctx, newSender("t1", "s1", "a@x.com"))
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Same id under another tenant is fine.
	require.NoError(t, m.Create(ctx, newSender("t2", "s1", "a@x.com")))
}

func TestMemoryGetNotFound(t *testing.T) {
	m := NewMemoryStore()
	_, err := m.Get(context.Background(), "t1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemoryListOrder(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, newSender("t1", "c", "c@x.com")))
	require.NoError(t, m.Create(ctx, newSender("t1", "a", "a@x.com")))
	require.NoError(t, m.Create(ctx, newSender("t1", "b", "b@x.com")))

	got, err := m.ListByTenant(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)

	empty, err := m.ListByTenant(ctx, "t-none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryConditionalMutations(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	s := newSender("t1", "s1", "a@x.com")
	require.NoError(t, m.Create(ctx, s))

	// Update of a missing record fails cleanly.
	ghost := newSender("t1", "ghost", "g@x.com")
	assert.ErrorIs(t, m.Update(ctx, ghost), domain.ErrNotFound)
	assert.ErrorIs(t, m.UpdateStatus(ctx, "t1", "ghost", domain.StatusVerified, nil, ""), domain.ErrNotFound)
	assert.ErrorIs(t, m.SetDefault(ctx, "t1", "ghost", true), domain.ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "t1", "ghost"), domain.ErrNotFound)

	now := time.Now().UTC()
	require.NoError(t, m.UpdateStatus(ctx, "t1", "s1", domain.StatusVerified, &now, ""))
	got, err := m.Get(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, got.Status)
	require.NotNil(t, got.VerifiedAt)
	assert.Equal(t, now, *got.VerifiedAt)

	require.NoError(t, m.SetDefault(ctx, "t1", "s1", true))
	got, _ = m.Get(ctx, "t1", "s1")
	assert.True(t, got.IsDefault)

	require.NoError(t, m.Delete(ctx, "t1", "s1"))
	assert.ErrorIs(t, m.Delete(ctx, "t1", "s1"), domain.ErrNotFound)
}

func TestMemoryRecordSend(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, m.Create(ctx, newSender("t1", "s1", "a@x.com")))
	at := time.Now()
	require.NoError(t, m.RecordSend(ctx, "t1", "s1", at))
	require.NoError(t, m.RecordSend(ctx, "t1", "s1", at.Add(time.Minute)))

	got, err := m.Get(ctx, "t1", "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.EmailsSent)
	require.NotNil(t, got.LastSentAt)
	assert.Equal(t, at.Add(time.Minute).UTC(), *got.LastSentAt)

	assert.ErrorIs(t, m.RecordSend(ctx, "t1", "ghost", at), domain.ErrNotFound)
}

func TestMemoryDomainStore(t *testing.T) {
	m := NewMemoryStore()
	ds := m.Domains()
	ctx := context.Background()

	rec := &domain.DomainVerification{
		TenantID: "t1",
		Domain:   "example.com",
		Status:   domain.StatusPending,
		DNSRecords: []domain.DNSRecord{
			{Name: "tok._domainkey.example.com", Type: "CNAME", Value: "tok.dkim.amazonses.com"},
		},
	}
	require.NoError(t, ds.Create(ctx, rec))
	assert.ErrorIs(t, ds.Create(ctx, rec), domain.ErrConflict)

	got, err := ds.Get(ctx, "t1", "example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Len(t, got.DNSRecords, 1)

	got.Status = domain.StatusVerified
	require.NoError(t, ds.Update(ctx, got))
	again, _ := ds.Get(ctx, "t1", "example.com")
	assert.Equal(t, domain.StatusVerified, again.Status)

	_, err = ds.Get(ctx, "t1", "other.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, ds.Update(ctx, &domain.DomainVerification{TenantID: "t1", Domain: "other.com"}), domain.ErrNotFound)
}
