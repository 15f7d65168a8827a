// Package verification abstracts the external email-verification provider.
// The provider owns the authoritative verification state of an identity;
// this service only mirrors it.
package verification

import "context"

// Status is the provider's view of an identity's verification state.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusPending  Status = "pending"
	StatusNotFound Status = "not_found"
	StatusUnknown  Status = "unknown"
)

// Identity is a newly created provider identity.
type Identity struct {
	// Ref is the provider-side reference (the identity name).
	Ref string
	// DKIMTokens are the selectors the tenant must publish as CNAMEs.
	// Empty for mailbox identities.
	DKIMTokens []string
}

// IdentityInfo is the provider's current state for an identity.
type IdentityInfo struct {
	Status             Status
	VerifiedForSending bool
	DKIMStatus         string
	IdentityType       string
}

// Provider is the external email-verification service.
type Provider interface {
	// CreateIdentity registers the identity (address or domain) with the
	// provider and returns its reference plus any DKIM tokens.
	CreateIdentity(ctx context.Context, identity string) (*Identity, error)

	// GetIdentityStatus queries the provider. A missing identity is reported
	// as StatusNotFound with a nil error; only transport/API failures error.
	GetIdentityStatus(ctx context.Context, identity string) (*IdentityInfo, error)

	// DeleteIdentity removes the identity. Deleting an identity that is
	// already gone is not an error.
	DeleteIdentity(ctx context.Context, identity string) error

	// SendVerificationEmail asks the provider to (re)send the verification
	// mail for a mailbox identity.
	SendVerificationEmail(ctx context.Context, email string) error
}
