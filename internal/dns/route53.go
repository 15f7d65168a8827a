// Package dns auto-provisions DKIM CNAME records into Route53 for tenants
// whose zone is hosted in this account. It is an optional convenience: the
// canonical flow is the tenant publishing the records themselves.
package dns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"

	"github.com/ignite/sender-hub/internal/domain"
)

// Provisioner writes verification DNS records into a hosted zone.
type Provisioner interface {
	UpsertRecords(ctx context.Context, records []domain.DNSRecord) error
}

// Route53Provisioner upserts records into a single configured hosted zone.
type Route53Provisioner struct {
	client       *route53.Client
	hostedZoneID string
}

// NewRoute53Provisioner creates a provisioner for the given hosted zone.
func NewRoute53Provisioner(ctx context.Context, hostedZoneID, region string) (*Route53Provisioner, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}
	return &Route53Provisioner{
		client:       route53.NewFromConfig(awsCfg),
		hostedZoneID: hostedZoneID,
	}, nil
}

// UpsertRecords writes all records in one change batch. UPSERT makes retries
// of a partially applied batch safe.
func (p *Route53Provisioner) UpsertRecords(ctx context.Context, records []domain.DNSRecord) error {
	if len(records) == 0 {
		return nil
	}

	changes := make([]r53types.Change, 0, len(records))
	for _, rec := range records {
		changes = append(changes, r53types.Change{
			Action: r53types.ChangeActionUpsert,
			ResourceRecordSet: &r53types.ResourceRecordSet{
				Name: aws.String(rec.Name),
				Type: r53types.RRType(rec.Type),
				TTL:  aws.Int64(300),
				ResourceRecords: []r53types.ResourceRecord{
					{Value: aws.String(rec.Value)},
				},
			},
		})
	}

	_, err := p.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(p.hostedZoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: changes,
			Comment: aws.String("sender-hub DKIM verification records"),
		},
	})
	if err != nil {
		return fmt.Errorf("upserting verification records: %w", err)
	}
	return nil
}
