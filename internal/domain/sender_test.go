package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidDomainName(t *testing.T) {
	valid := []string{
		"example.com",
		"mail.example.co.uk",
		"intranet",
		"xn--bcher-kva.example",
		"a-b.example.org",
	}
	for _, d := range valid {
		assert.True(t, ValidDomainName(d), "expected %q to be valid", d)
	}

	invalid := []string{
		"",
		"https://example.com",
		"example.com/path",
		"example.com:8080",
		"example.com?x=1",
		"user@example.com",
		"exam ple.com",
		"-leading.example.com",
		"trailing-.example.com",
		"a..b",
	}
	for _, d := range invalid {
		assert.False(t, ValidDomainName(d), "expected %q to be invalid", d)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@x.com"))
	assert.True(t, ValidEmail("first.last+tag@sub.example.org"))
	assert.False(t, ValidEmail(""))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("a@"))
	assert.False(t, ValidEmail("@x.com"))
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "x.com", EmailDomain("a@x.com"))
	assert.Equal(t, "x.com", EmailDomain("a@X.COM"))
	assert.Equal(t, "", EmailDomain("no-at-sign"))
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusVerified.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusTimedOut.Terminal())
}

func TestLimitsForTier(t *testing.T) {
	free := LimitsForTier(TierFree, 0)
	assert.Equal(t, 1, free.MaxSenders)
	assert.False(t, free.CanUseDNS)
	assert.True(t, free.CanUseMailbox)

	creator := LimitsForTier(TierCreator, 1)
	assert.Equal(t, 2, creator.MaxSenders)
	assert.True(t, creator.CanUseDNS)
	assert.Equal(t, 1, creator.CurrentCount)

	pro := LimitsForTier(TierPro, 3)
	assert.Equal(t, 5, pro.MaxSenders)
	assert.True(t, pro.CanUseDNS)

	unknown := LimitsForTier(Tier("enterprise"), 0)
	assert.Equal(t, TierFree, unknown.Tier)
	assert.Equal(t, 1, unknown.MaxSenders)
	assert.False(t, unknown.CanUseDNS)
}
