package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/entrepreneur-award/award-api/internal/domain"
)

// OTPRepo stores at most one OTP per user; user_id is the whole key.
type OTPRepo struct {
	client    API
	tableName string
}

func NewOTPRepo(client API, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Replace overwrites whatever code the user had.
func (r *OTPRepo) Replace(ctx context.Context, o *domain.OTP) error {
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

func (r *OTPRepo) GetByUser(ctx context.Context, userID string) (*domain.OTP, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldUserID, userID),
		ConsistentRead: aws.Bool(true),
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
	return &o, nil
}

func (r *OTPRepo) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	return err
}

// DeleteIssued deletes the user's OTP only while it is still otpID, so a
// code issued in the meantime survives.
func (r *OTPRepo) DeleteIssued(ctx context.Context, userID, otpID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		ConditionExpression:       aws.String("#o = :o"),
		ExpressionAttributeNames:  map[string]string{"#o": fieldOTPID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":o": &types.AttributeValueMemberS{Value: otpID}},
	})
	if isConditionFailed(err) {
		return nil
	}
	return err
}

// RecordFailure atomically bumps the attempt counter of otpID and returns the
// new count. A replaced or deleted OTP reports 0.
func (r *OTPRepo) RecordFailure(ctx context.Context, userID, otpID string) (int, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldUserID, userID),
		UpdateExpression:    aws.String("ADD #a :one"),
		ConditionExpression: aws.String("#o = :o"),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldAttempts,
			"#o": fieldOTPID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":o":   &types.AttributeValueMemberS{Value: otpID},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if isConditionFailed(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var n int
	if err := attributevalue.Unmarshal(out.Attributes[fieldAttempts], &n); err != nil {
		return 0, fmt.Errorf("unmarshal attempts: %w", err)
	}
	return n, nil
}
