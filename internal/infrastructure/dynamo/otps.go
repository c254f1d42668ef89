package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-auth-nosql/internal/domain"
)

// OTPRepo manages pending verification codes.
// PK: email. The table carries a TTL on expires_at, but DynamoDB sweeps
// expired items lazily, so Find re-checks expiry before returning a record.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
	ttl       time.Duration
}

func NewOTPRepo(client *dynamodb.Client, tableName string, ttl time.Duration) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName, ttl: ttl}
}

// Issue replaces any pending code for the email with a fresh one.
// Delete-then-put keeps replace semantics explicit; with email as the
// partition key, exactly one record survives concurrent issuance either way.
func (r *OTPRepo) Issue(ctx context.Context, email, code string) error {
	if err := r.Consume(ctx, email); err != nil {
		return err
	}
	now := time.Now().UTC()
	o := &domain.OTP{
		Email:     email,
		Code:      code,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(r.ttl).Unix(),
	}
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Find returns the live code for the email, or domain.ErrNotFound when the
// record is absent or already past its expiry.
func (r *OTPRepo) Find(ctx context.Context, email string) (*domain.OTP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("otp not found: %w", domain.ErrNotFound)
	}
	var o domain.OTP
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	if o.ExpiresAt < time.Now().Unix() {
		return nil, fmt.Errorf("otp expired: %w", domain.ErrNotFound)
	}
	return &o, nil
}

// Consume deletes the pending code for the email. Deleting a missing record
// is not an error.
func (r *OTPRepo) Consume(ctx context.Context, email string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	return err
}
