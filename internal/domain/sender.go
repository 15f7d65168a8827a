package domain

import (
	"regexp"
	"strings"
	"time"
)

// VerificationType distinguishes single-mailbox senders from whole-domain senders.
type VerificationType string

const (
	VerificationMailbox VerificationType = "mailbox"
	VerificationDomain  VerificationType = "domain"
)

// Valid reports whether t is a known verification type.
func (t VerificationType) Valid() bool {
	return t == VerificationMailbox || t == VerificationDomain
}

// VerificationStatus is the lifecycle state of a sender identity.
type VerificationStatus string

const (
	StatusPending  VerificationStatus = "pending"
	StatusVerified VerificationStatus = "verified"
	StatusFailed   VerificationStatus = "failed"
	StatusTimedOut VerificationStatus = "verification_timed_out"
)

// Terminal reports whether the status is absorbing. A terminal sender is
// never re-queried against the provider and never rescheduled.
func (s VerificationStatus) Terminal() bool {
	return s == StatusVerified || s == StatusFailed || s == StatusTimedOut
}

// Sender is a tenant-owned outbound email identity.
type Sender struct {
	TenantID      string             `json:"tenant_id" dynamodbav:"TenantID"`
	ID            string             `json:"id" dynamodbav:"ID"`
	Email         string             `json:"email" dynamodbav:"Email"`
	Name          string             `json:"name,omitempty" dynamodbav:"Name,omitempty"`
	Type          VerificationType   `json:"verification_type" dynamodbav:"Type"`
	Status        VerificationStatus `json:"verification_status" dynamodbav:"Status"`
	IsDefault     bool               `json:"is_default" dynamodbav:"IsDefault"`
	Domain        string             `json:"domain,omitempty" dynamodbav:"Domain,omitempty"`
	IdentityRef   string             `json:"-" dynamodbav:"IdentityRef,omitempty"`
	FailureReason string             `json:"failure_reason,omitempty" dynamodbav:"FailureReason,omitempty"`
	EmailsSent    int64              `json:"emails_sent" dynamodbav:"EmailsSent"`
	CreatedAt     time.Time          `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt     time.Time          `json:"updated_at" dynamodbav:"UpdatedAt"`
	VerifiedAt    *time.Time         `json:"verified_at,omitempty" dynamodbav:"VerifiedAt,omitempty"`
	LastSentAt    *time.Time         `json:"last_sent_at,omitempty" dynamodbav:"LastSentAt,omitempty"`
}

// DNSRecord is a single DNS entry the tenant must publish for domain verification.
type DNSRecord struct {
	Name        string `json:"name" dynamodbav:"Name"`
	Type        string `json:"type" dynamodbav:"Type"`
	Value       string `json:"value" dynamodbav:"Value"`
	Description string `json:"description,omitempty" dynamodbav:"Description,omitempty"`
}

// DomainVerification tracks a domain-level identity through DNS verification.
// Unique per (tenant, domain); never deleted by this service.
type DomainVerification struct {
	TenantID    string             `json:"tenant_id" dynamodbav:"TenantID"`
	Domain      string             `json:"domain" dynamodbav:"Domain"`
	Status      VerificationStatus `json:"verification_status" dynamodbav:"Status"`
	DNSRecords  []DNSRecord        `json:"dns_records" dynamodbav:"DNSRecords"`
	IdentityRef string             `json:"-" dynamodbav:"IdentityRef,omitempty"`
	CreatedAt   time.Time          `json:"created_at" dynamodbav:"CreatedAt"`
	UpdatedAt   time.Time          `json:"updated_at" dynamodbav:"UpdatedAt"`
	VerifiedAt  *time.Time         `json:"verified_at,omitempty" dynamodbav:"VerifiedAt,omitempty"`
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$`)

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	if len(s) == 0 || len(s) > 254 {
		return false
	}
	return emailPattern.MatchString(s)
}

// ValidDomainName accepts bare domain names only: no scheme, path, port, or
// query string. Single-label values are allowed (internal zones use them).
func ValidDomainName(s string) bool {
	if s == "" || len(s) > 253 {
		return false
	}
	if strings.Contains(s, "://") || strings.ContainsAny(s, "/:?#@ ") {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			ok := r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !ok {
				return false
			}
		}
	}
	return true
}

// EmailDomain returns the part after the rightmost "@", lowercased.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}
