package dynamo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/maxschool-bot/internal/domain"
	"github.com/maxschool-bot/internal/pkg/phone"
)

// DirectoryRepo provides typed DynamoDB operations for the directory records
// table. Phones are digit-normalized before every read and write so
// "+7 (999) 123-45-67" and "79991234567" address the same item.
type DirectoryRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDirectoryRepo(client *dynamodb.Client, tableName string) *DirectoryRepo {
	return &DirectoryRepo{client: client, tableName: tableName}
}

func (r *DirectoryRepo) Put(ctx context.Context, rec *domain.DirectoryRecord) error {
	if rec.Phone != nil {
		n := phone.Normalize(*rec.Phone)
		rec.Phone = &n
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal directory record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *DirectoryRepo) Get(ctx context.Context, recordID string) (*domain.DirectoryRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("record_id", recordID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("directory record not found: %w", domain.ErrNotFound)
	}
	var rec domain.DirectoryRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DirectoryRepo) GetByPhone(ctx context.Context, rawPhone string) (*domain.DirectoryRecord, error) {
	return r.queryGSI(ctx, "phone-index", "phone", phone.Normalize(rawPhone))
}

func (r *DirectoryRepo) GetByPlatformID(ctx context.Context, platformID string) (*domain.DirectoryRecord, error) {
	return r.queryGSI(ctx, "platform_id-index", "platform_id", platformID)
}

func (r *DirectoryRepo) GetBySchoolID(ctx context.Context, schoolID string) (*domain.DirectoryRecord, error) {
	return r.queryGSI(ctx, "school_id-index", "school_id", schoolID)
}

func (r *DirectoryRepo) Update(ctx context.Context, recordID string, updates map[string]interface{}) error {
	if v, ok := updates["phone"].(string); ok {
		updates["phone"] = phone.Normalize(v)
	}
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("record_id", recordID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// BindPlatformID durably associates a platform ID with the record. The write
// is idempotent: rebinding the same pair succeeds, while a record already
// bound to a different platform ID fails the condition check. This is the
// store-level backstop for races the per-user session lock cannot see.
func (r *DirectoryRepo) BindPlatformID(ctx context.Context, recordID, platformID string) (*domain.DirectoryRecord, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              strKey("record_id", recordID),
		UpdateExpression: aws.String("SET platform_id = :pid, updated_at = :now"),
		ConditionExpression: aws.String(
			"attribute_exists(record_id) AND (attribute_not_exists(platform_id) OR platform_id = :pid)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: platformID},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("record %s already bound to another platform id: %w", recordID, domain.ErrConflict)
		}
		return nil, err
	}
	var rec domain.DirectoryRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DirectoryRepo) Delete(ctx context.Context, recordID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("record_id", recordID),
	})
	return err
}

// ScanPage returns a page of directory records, optionally filtered by role
// and group. cursor is a base64-encoded record_id used as ExclusiveStartKey.
// Returns the items, a next cursor (empty when no more pages), and any error.
func (r *DirectoryRepo) ScanPage(ctx context.Context, limit int32, cursor, role, group string) ([]domain.DirectoryRecord, string, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	}

	filter := ""
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	if role != "" {
		filter = "#r = :role"
		names["#r"] = "role"
		values[":role"] = &types.AttributeValueMemberS{Value: role}
	}
	if group != "" {
		if filter != "" {
			filter += " AND "
		}
		filter += "group_name = :group"
		values[":group"] = &types.AttributeValueMemberS{Value: group}
	}
	if filter != "" {
		input.FilterExpression = aws.String(filter)
		input.ExpressionAttributeValues = values
		if len(names) > 0 {
			input.ExpressionAttributeNames = names
		}
	}

	if cursor != "" {
		recordID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("record_id", recordID)
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var recs []domain.DirectoryRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &recs); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["record_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return recs, nextCursor, nil
}

func encodeCursor(recordID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(recordID))
}

func decodeCursor(cursor string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *DirectoryRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.DirectoryRecord, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("directory record not found: %w", domain.ErrNotFound)
	}
	var rec domain.DirectoryRecord
	if err := attributevalue.UnmarshalMap(out.Items[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
