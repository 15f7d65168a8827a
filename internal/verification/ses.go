package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/ignite/sender-hub/internal/config"
	"github.com/ignite/sender-hub/internal/pkg/logger"
)

// SESProvider implements Provider against AWS SES v2. Email identities get
// SES's built-in verification mail on creation; domain identities surface
// DKIM tokens for the tenant to publish.
type SESProvider struct {
	client   *sesv2.Client
	template string
}

// NewSESProvider creates an SES-backed provider. Static credentials are used
// when configured; otherwise the default chain (IAM role on ECS) applies.
func NewSESProvider(ctx context.Context, cfg appconfig.SESConfig) (*SESProvider, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESProvider{
		client:   sesv2.NewFromConfig(awsCfg),
		template: cfg.VerificationTemplate,
	}, nil
}

// CreateIdentity registers an email address or domain with SES.
func (p *SESProvider) CreateIdentity(ctx context.Context, identity string) (*Identity, error) {
	out, err := p.client.CreateEmailIdentity(ctx, &sesv2.CreateEmailIdentityInput{
		EmailIdentity: aws.String(identity),
	})
	if err != nil {
		return nil, fmt.Errorf("creating SES identity %s: %w", identity, err)
	}

	id := &Identity{Ref: identity}
	if out.DkimAttributes != nil {
		id.DKIMTokens = out.DkimAttributes.Tokens
	}
	return id, nil
}

// GetIdentityStatus queries SES for the identity's verification state.
func (p *SESProvider) GetIdentityStatus(ctx context.Context, identity string) (*IdentityInfo, error) {
	out, err := p.client.GetEmailIdentity(ctx, &sesv2.GetEmailIdentityInput{
		EmailIdentity: aws.String(identity),
	})
	if err != nil {
		var nf *types.NotFoundException
		if errors.As(err, &nf) {
			return &IdentityInfo{Status: StatusNotFound}, nil
		}
		return nil, fmt.Errorf("getting SES identity %s: %w", identity, err)
	}

	info := &IdentityInfo{
		Status:             mapVerificationStatus(out.VerificationStatus),
		VerifiedForSending: out.VerifiedForSendingStatus,
		IdentityType:       string(out.IdentityType),
	}
	if out.DkimAttributes != nil {
		info.DKIMStatus = string(out.DkimAttributes.Status)
	}
	return info, nil
}

func mapVerificationStatus(s types.VerificationStatus) Status {
	switch s {
	case types.VerificationStatusSuccess:
		return StatusSuccess
	case types.VerificationStatusFailed:
		return StatusFailed
	case types.VerificationStatusPending,
		types.VerificationStatusTemporaryFailure,
		types.VerificationStatusNotStarted:
		return StatusPending
	default:
		return StatusUnknown
	}
}

// DeleteIdentity removes the identity from SES. An already-deleted identity
// is treated as success: cleanup runs from multiple entry points and must be
// idempotent.
func (p *SESProvider) DeleteIdentity(ctx context.Context, identity string) error {
	_, err := p.client.DeleteEmailIdentity(ctx, &sesv2.DeleteEmailIdentityInput{
		EmailIdentity: aws.String(identity),
	})
	if err != nil {
		var nf *types.NotFoundException
		if errors.As(err, &nf) {
			return nil
		}
		return fmt.Errorf("deleting SES identity %s: %w", identity, err)
	}
	return nil
}

// SendVerificationEmail sends the custom verification template when one is
// configured. Without a template this is a no-op: SES already mailed its
// built-in verification link when the identity was created.
func (p *SESProvider) SendVerificationEmail(ctx context.Context, email string) error {
	if p.template == "" {
		logger.Debug("no custom verification template configured, relying on SES built-in mail", "email", email)
		return nil
	}

	_, err := p.client.SendCustomVerificationEmail(ctx, &sesv2.SendCustomVerificationEmailInput{
		EmailAddress: aws.String(email),
		TemplateName: aws.String(p.template),
	})
	if err != nil {
		return fmt.Errorf("sending verification email to %s: %w", logger.RedactEmail(email), err)
	}
	return nil
}
