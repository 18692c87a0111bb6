package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/maxschool-bot/internal/domain"
)

// GuardianRepo manages guardian rows linked to directory records.
// PK: guardian_id, GSI: record_id-index.
type GuardianRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewGuardianRepo(client *dynamodb.Client, tableName string) *GuardianRepo {
	return &GuardianRepo{client: client, tableName: tableName}
}

func (r *GuardianRepo) Put(ctx context.Context, g *domain.Guardian) error {
	item, err := attributevalue.MarshalMap(g)
	if err != nil {
		return fmt.Errorf("marshal guardian: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *GuardianRepo) ListByRecord(ctx context.Context, recordID string) ([]domain.Guardian, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("record_id-index"),
		KeyConditionExpression: aws.String("record_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: recordID},
		},
	})
	if err != nil {
		return nil, err
	}
	var guardians []domain.Guardian
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &guardians); err != nil {
		return nil, err
	}
	return guardians, nil
}

// DeleteByRecord removes every guardian linked to recordID. Used by the
// cascade when a directory record is deleted.
func (r *GuardianRepo) DeleteByRecord(ctx context.Context, recordID string) error {
	guardians, err := r.ListByRecord(ctx, recordID)
	if err != nil {
		return err
	}
	for _, g := range guardians {
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("guardian_id", g.GuardianID),
		}); err != nil {
			return err
		}
	}
	return nil
}
