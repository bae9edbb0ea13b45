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

// NominationRepo keys nominations by (nominator_id, nominee_email), which
// makes a second nomination of the same email by the same user a conflict.
type NominationRepo struct {
	client    API
	tableName string
}

func NewNominationRepo(client API, tableName string) *NominationRepo {
	return &NominationRepo{client: client, tableName: tableName}
}

func (r *NominationRepo) Create(ctx context.Context, n *domain.Nomination) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal nomination: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#n)"),
		ExpressionAttributeNames: map[string]string{"#n": fieldNominatorID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("already nominated this email: %w", domain.ErrConflict)
	}
	return err
}

func (r *NominationRepo) ListByNominator(ctx context.Context, nominatorID string) ([]domain.Nomination, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": fieldNominatorID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: nominatorID}},
	})
}

func (r *NominationRepo) ListByNomineeEmail(ctx context.Context, email string) ([]domain.Nomination, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexNomineeEmail),
		KeyConditionExpression:    aws.String("#k = :v"),
		ExpressionAttributeNames:  map[string]string{"#k": fieldNomineeEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
	})
}

// MarkSubmitted only touches Pending nominations; anything else is left alone.
func (r *NominationRepo) MarkSubmitted(ctx context.Context, nominatorID, nomineeEmail, nomineeUserID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 compositeKey(fieldNominatorID, nominatorID, fieldNomineeEmail, nomineeEmail),
		UpdateExpression:    aws.String("SET #s = :submitted, #u = :uid"),
		ConditionExpression: aws.String("#s = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
			"#u": fieldNomineeUserID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":submitted": &types.AttributeValueMemberS{Value: string(domain.NominationSubmitted)},
			":pending":   &types.AttributeValueMemberS{Value: string(domain.NominationPending)},
			":uid":       &types.AttributeValueMemberS{Value: nomineeUserID},
		},
	})
	if isConditionFailed(err) {
		return nil
	}
	return err
}

func (r *NominationRepo) query(ctx context.Context, in *dynamodb.QueryInput) ([]domain.Nomination, error) {
	p := dynamodb.NewQueryPaginator(r.client, in)
	noms := []domain.Nomination{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Nomination
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		noms = append(noms, batch...)
	}
	return noms, nil
}
