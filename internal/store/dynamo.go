package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	appconfig "github.com/ignite/sender-hub/internal/config"
	"github.com/ignite/sender-hub/internal/domain"
)

// DynamoStore implements SenderStore and DomainStore on a single DynamoDB
// table. Senders live under PK TENANT#<tenant> / SK SENDER#<id>; domain
// verification records under the same PK with SK DOMAIN#<domain>. Per-tenant
// listing is a Query on the partition key with an SK prefix, so index order
// is ascending sender id.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoStore creates a DynamoDB-backed store.
func NewDynamoStore(ctx context.Context, cfg appconfig.StorageConfig) (*DynamoStore, error) {
	var awsCfg aws.Config
	var err error

	if profile := cfg.GetAWSProfile(); profile != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.AWSRegion),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &DynamoStore{
		client:    dynamodb.NewFromConfig(awsCfg),
		tableName: cfg.DynamoDBTable,
	}, nil
}

func tenantPK(tenantID string) string  { return "TENANT#" + tenantID }
func senderSK(senderID string) string  { return "SENDER#" + senderID }
func domainSK(domainName string) string { return "DOMAIN#" + domainName }

type senderItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.Sender
}

type domainItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	domain.DomainVerification
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// Create persists a new sender, conditioned on the key not existing.
func (s *DynamoStore) Create(ctx context.Context, sender *domain.Sender) error {
	item := senderItem{PK: tenantPK(sender.TenantID), SK: senderSK(sender.ID), Sender: *sender}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling sender: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("sender %s: %w", sender.ID, domain.ErrConflict)
		}
		return fmt.Errorf("putting sender to DynamoDB: %w", err)
	}
	return nil
}

// Get loads one sender.
func (s *DynamoStore) Get(ctx context.Context, tenantID, senderID string) (*domain.Sender, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: senderSK(senderID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting sender from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
	}

	var item senderItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling sender: %w", err)
	}
	return &item.Sender, nil
}

// ListByTenant returns all of a tenant's senders in index (SK) order.
func (s *DynamoStore) ListByTenant(ctx context.Context, tenantID string) ([]domain.Sender, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			":prefix": &types.AttributeValueMemberS{Value: "SENDER#"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("querying senders from DynamoDB: %w", err)
	}

	senders := make([]domain.Sender, 0, len(result.Items))
	for _, raw := range result.Items {
		var item senderItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}
		senders = append(senders, item.Sender)
	}
	return senders, nil
}

// Update replaces the whole record, conditioned on it still existing.
func (s *DynamoStore) Update(ctx context.Context, sender *domain.Sender) error {
	item := senderItem{PK: tenantPK(sender.TenantID), SK: senderSK(sender.ID), Sender: *sender}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling sender: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("sender %s: %w", sender.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("updating sender in DynamoDB: %w", err)
	}
	return nil
}

// UpdateStatus transitions the verification status, conditioned on the record
// still existing so a concurrently-deleted sender silently stops its chain.
func (s *DynamoStore) UpdateStatus(ctx context.Context, tenantID, senderID string, status domain.VerificationStatus, verifiedAt *time.Time, failureReason string) error {
	expr := "SET #status = :status, UpdatedAt = :updated"
	values := map[string]types.AttributeValue{
		":status":  &types.AttributeValueMemberS{Value: string(status)},
		":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}
	if verifiedAt != nil {
		expr += ", VerifiedAt = :verified"
		values[":verified"] = &types.AttributeValueMemberS{Value: verifiedAt.UTC().Format(time.RFC3339Nano)}
	}
	if failureReason != "" {
		expr += ", FailureReason = :reason"
		values[":reason"] = &types.AttributeValueMemberS{Value: failureReason}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: senderSK(senderID)},
		},
		UpdateExpression:          aws.String(expr),
		ConditionExpression:       aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ExpressionAttributeNames:  map[string]string{"#status": "Status"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
		}
		return fmt.Errorf("updating sender status in DynamoDB: %w", err)
	}
	return nil
}

// SetDefault flips the is_default flag, conditioned on existence.
func (s *DynamoStore) SetDefault(ctx context.Context, tenantID, senderID string, isDefault bool) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: senderSK(senderID)},
		},
		UpdateExpression:    aws.String("SET IsDefault = :d, UpdatedAt = :updated"),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d":       &types.AttributeValueMemberBOOL{Value: isDefault},
			":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
		}
		return fmt.Errorf("setting default flag in DynamoDB: %w", err)
	}
	return nil
}

// Delete removes the record, conditioned on existence so concurrent deletes
// surface as NotFound instead of silently succeeding twice.
func (s *DynamoStore) Delete(ctx context.Context, tenantID, senderID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: senderSK(senderID)},
		},
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
		}
		return fmt.Errorf("deleting sender from DynamoDB: %w", err)
	}
	return nil
}

// RecordSend atomically increments emails_sent and stamps last_sent_at.
func (s *DynamoStore) RecordSend(ctx context.Context, tenantID, senderID string, at time.Time) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: senderSK(senderID)},
		},
		UpdateExpression:    aws.String("ADD EmailsSent :one SET LastSentAt = :at"),
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: strconv.Itoa(1)},
			":at":  &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("sender %s: %w", senderID, domain.ErrNotFound)
		}
		return fmt.Errorf("recording send in DynamoDB: %w", err)
	}
	return nil
}

// CreateDomain persists a new domain verification record.
func (s *DynamoStore) CreateDomain(ctx context.Context, rec *domain.DomainVerification) error {
	item := domainItem{PK: tenantPK(rec.TenantID), SK: domainSK(rec.Domain), DomainVerification: *rec}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling domain record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("domain %s: %w", rec.Domain, domain.ErrConflict)
		}
		return fmt.Errorf("putting domain record to DynamoDB: %w", err)
	}
	return nil
}

// GetDomain loads one domain verification record.
func (s *DynamoStore) GetDomain(ctx context.Context, tenantID, domainName string) (*domain.DomainVerification, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: tenantPK(tenantID)},
			"SK": &types.AttributeValueMemberS{Value: domainSK(domainName)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting domain record from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, fmt.Errorf("domain %s: %w", domainName, domain.ErrNotFound)
	}

	var item domainItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshaling domain record: %w", err)
	}
	return &item.DomainVerification, nil
}

// UpdateDomain replaces the record, conditioned on it still existing.
func (s *DynamoStore) UpdateDomain(ctx context.Context, rec *domain.DomainVerification) error {
	item := domainItem{PK: tenantPK(rec.TenantID), SK: domainSK(rec.Domain), DomainVerification: *rec}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshaling domain record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK) AND attribute_exists(SK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("domain %s: %w", rec.Domain, domain.ErrNotFound)
		}
		return fmt.Errorf("updating domain record in DynamoDB: %w", err)
	}
	return nil
}

// Domains returns the DomainStore view of this store.
func (s *DynamoStore) Domains() DomainStore { return dynamoDomainStore{s} }

// dynamoDomainStore adapts DynamoStore's domain methods to the DomainStore
// interface without colliding with the SenderStore method names.
type dynamoDomainStore struct{ s *DynamoStore }

func (d dynamoDomainStore) Create(ctx context.Context, rec *domain.DomainVerification) error {
	return d.s.CreateDomain(ctx, rec)
}

func (d dynamoDomainStore) Get(ctx context.Context, tenantID, domainName string) (*domain.DomainVerification, error) {
	return d.s.GetDomain(ctx, tenantID, domainName)
}

func (d dynamoDomainStore) Update(ctx context.Context, rec *domain.DomainVerification) error {
	return d.s.UpdateDomain(ctx, rec)
}
