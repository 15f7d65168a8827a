package domainverify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/sender-hub/internal/auth"
	"github.com/ignite/sender-hub/internal/domain"
	"github.com/ignite/sender-hub/internal/store"
	"github.com/ignite/sender-hub/internal/verification"
)

type fakeProvider struct {
	createErr  error
	dkimTokens []string
	info       verification.IdentityInfo
	infoErr    error
	infoCalls  int
}

func (f *fakeProvider) CreateIdentity(_ context.Context, identity string) (*verification.Identity, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &verification.Identity{Ref: identity, DKIMTokens: f.dkimTokens}, nil
}

func (f *fakeProvider) GetIdentityStatus(_ context.Context, _ string) (*verification.IdentityInfo, error) {
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	info := f.info
	return &info, nil
}

func (f *fakeProvider) DeleteIdentity(_ context.Context, _ string) error        { return nil }
func (f *fakeProvider) SendVerificationEmail(_ context.Context, _ string) error { return nil }

type fakeProvisioner struct {
	err     error
	upserts int
}

func (f *fakeProvisioner) UpsertRecords(_ context.Context, _ []domain.DNSRecord) error {
	f.upserts++
	return f.err
}

func newTestManager() (*Manager, *fakeProvider) {
	p := &fakeProvider{dkimTokens: []string{"tok1", "tok2"}}
	return New(store.NewMemoryStore().Domains(), p, nil), p
}

func creatorCtx() auth.UserContext {
	return auth.UserContext{TenantID: "t1", Tier: domain.TierCreator}
}

func TestInitiate(t *testing.T) {
	m, _ := newTestManager()

	st, err := m.Initiate(context.Background(), creatorCtx(), "Mail.Example.COM")
	require.NoError(t, err)

	assert.Equal(t, "mail.example.com", st.Domain)
	assert.Equal(t, domain.StatusPending, st.Status)
	require.Len(t, st.DNSRecords, 2)
	assert.Equal(t, "tok1._domainkey.mail.example.com", st.DNSRecords[0].Name)
	assert.Equal(t, "tok1.dkim.amazonses.com", st.DNSRecords[0].Value)
	assert.NotEmpty(t, st.Instructions)
	assert.NotEmpty(t, st.Troubleshooting)
}

func TestInitiateDomainSyntax(t *testing.T) {
	m, _ := newTestManager()

	invalid := []string{
		"https://example.com",
		"example.com/path",
		"example.com:8080",
		"example.com?q=1",
		"exam ple.com",
		"",
	}
	for _, d := range invalid {
		_, err := m.Initiate(context.Background(), creatorCtx(), d)
		assert.Truef(t, domain.IsValidation(err), "expected validation error for %q", d)
	}

	valid := []string{"example.com", "mail.sub.example.com", "intranet"}
	for _, d := range valid {
		m, _ := newTestManager()
		_, err := m.Initiate(context.Background(), creatorCtx(), d)
		assert.NoErrorf(t, err, "expected %q to be accepted", d)
	}
}

func TestInitiateTierGate(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Initiate(context.Background(), auth.UserContext{TenantID: "t1", Tier: domain.TierFree}, "example.com")
	assert.ErrorIs(t, err, domain.ErrTierRestricted)
}

func TestInitiateDuplicateConflict(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Initiate(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)
	_, err = m.Initiate(context.Background(), creatorCtx(), "example.com")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInitiateProviderFailureAborts(t *testing.T) {
	p := &fakeProvider{createErr: errors.New("ses unavailable")}
	domains := store.NewMemoryStore().Domains()
	m := New(domains, p, nil)

	_, err := m.Initiate(context.Background(), creatorCtx(), "example.com")
	assert.ErrorIs(t, err, domain.ErrUpstream)

	_, err = domains.Get(context.Background(), "t1", "example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound, "nothing persisted on provider failure")
}

func TestInitiateProvisionerFailureNonFatal(t *testing.T) {
	p := &fakeProvider{dkimTokens: []string{"tok1"}}
	prov := &fakeProvisioner{err: errors.New("zone not found")}
	m := New(store.NewMemoryStore().Domains(), p, prov)

	_, err := m.Initiate(context.Background(), creatorCtx(), "example.com")
	assert.NoError(t, err)
	assert.Equal(t, 1, prov.upserts)
}

func TestGetStatusMissing(t *testing.T) {
	m, _ := newTestManager()
	_, err := m.GetStatus(context.Background(), creatorCtx(), "example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		info verification.IdentityInfo
		want domain.VerificationStatus
	}{
		{"verified for sending", verification.IdentityInfo{VerifiedForSending: true, DKIMStatus: "SUCCESS"}, domain.StatusVerified},
		{"dkim failed", verification.IdentityInfo{DKIMStatus: "FAILED"}, domain.StatusFailed},
		{"provider failed", verification.IdentityInfo{Status: verification.StatusFailed}, domain.StatusFailed},
		{"still propagating", verification.IdentityInfo{DKIMStatus: "PENDING"}, domain.StatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, p := newTestManager()
			_, err := m.Initiate(context.Background(), creatorCtx(), "example.com")
			require.NoError(t, err)

			p.info = tt.info
			st, err := m.GetStatus(context.Background(), creatorCtx(), "example.com")
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Status)
			if tt.want == domain.StatusVerified {
				assert.NotNil(t, st.VerifiedAt)
				assert.Empty(t, st.Troubleshooting)
			} else {
				assert.NotEmpty(t, st.Troubleshooting)
			}
		})
	}
}

func TestGetStatusAlwaysQueriesProvider(t *testing.T) {
	m, p := newTestManager()
	_, err := m.Initiate(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)

	p.info = verification.IdentityInfo{VerifiedForSending: true}
	_, err = m.GetStatus(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)

	// Even verified domains are re-queried; the provider stays authoritative.
	st, err := m.GetStatus(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, st.Status)
	assert.Equal(t, 2, p.infoCalls)
}

func TestGetStatusVerifiedAtSetOnce(t *testing.T) {
	m, p := newTestManager()
	_, err := m.Initiate(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)

	p.info = verification.IdentityInfo{VerifiedForSending: true}
	first, err := m.GetStatus(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)
	require.NotNil(t, first.VerifiedAt)

	second, err := m.GetStatus(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)
	require.NotNil(t, second.VerifiedAt)
	assert.True(t, first.VerifiedAt.Equal(*second.VerifiedAt), "verified_at is stamped once")
}

func TestGetStatusUpstreamError(t *testing.T) {
	m, p := newTestManager()
	_, err := m.Initiate(context.Background(), creatorCtx(), "example.com")
	require.NoError(t, err)

	p.infoErr = errors.New("throttled")
	_, err = m.GetStatus(context.Background(), creatorCtx(), "example.com")
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
