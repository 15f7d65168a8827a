package verification

import (
	"fmt"

	"github.com/ignite/sender-hub/internal/domain"
)

// DKIMRecords derives the CNAME set a tenant must publish for a domain
// identity, one record per DKIM token.
func DKIMRecords(domainName string, tokens []string) []domain.DNSRecord {
	records := make([]domain.DNSRecord, 0, len(tokens))
	for _, token := range tokens {
		records = append(records, domain.DNSRecord{
			Name:        fmt.Sprintf("%s._domainkey.%s", token, domainName),
			Type:        "CNAME",
			Value:       fmt.Sprintf("%s.dkim.amazonses.com", token),
			Description: "DKIM signing record",
		})
	}
	return records
}
