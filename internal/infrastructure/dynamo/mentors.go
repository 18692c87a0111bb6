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

// MentorRepo manages mentor rows linked to directory records.
// PK: mentor_id, GSI: record_id-index.
type MentorRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMentorRepo(client *dynamodb.Client, tableName string) *MentorRepo {
	return &MentorRepo{client: client, tableName: tableName}
}

func (r *MentorRepo) Put(ctx context.Context, m *domain.Mentor) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal mentor: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *MentorRepo) ListByRecord(ctx context.Context, recordID string) ([]domain.Mentor, error) {
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
	var mentors []domain.Mentor
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &mentors); err != nil {
		return nil, err
	}
	return mentors, nil
}

// DeleteByRecord removes every mentor link for recordID. Used by the cascade
// when a directory record is deleted.
func (r *MentorRepo) DeleteByRecord(ctx context.Context, recordID string) error {
	mentors, err := r.ListByRecord(ctx, recordID)
	if err != nil {
		return err
	}
	for _, m := range mentors {
		if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(r.tableName),
			Key:       strKey("mentor_id", m.MentorID),
		}); err != nil {
			return err
		}
	}
	return nil
}
