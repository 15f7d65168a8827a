package domain

// Tier is a subscription level bounding sender count and verification capability.
type Tier string

const (
	TierFree    Tier = "free"
	TierCreator Tier = "creator"
	TierPro     Tier = "pro"
)

// TierLimits is derived per request from the tenant's tier and current usage.
// It is never stored.
type TierLimits struct {
	Tier          Tier `json:"tier"`
	MaxSenders    int  `json:"max_senders"`
	CurrentCount  int  `json:"current_count"`
	CanUseDNS     bool `json:"can_use_dns"`
	CanUseMailbox bool `json:"can_use_mailbox"`
}

// LimitsForTier computes the sender limits for a tier. An unknown tier gets
// the free tier's limits.
func LimitsForTier(tier Tier, currentCount int) TierLimits {
	l := TierLimits{Tier: tier, CurrentCount: currentCount, CanUseMailbox: true}
	switch tier {
	case TierCreator:
		l.MaxSenders = 2
		l.CanUseDNS = true
	case TierPro:
		l.MaxSenders = 5
		l.CanUseDNS = true
	default:
		l.Tier = TierFree
		l.MaxSenders = 1
	}
	return l
}
