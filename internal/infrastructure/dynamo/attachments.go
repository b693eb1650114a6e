package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/leanderkretschmer/lotify/internal/domain"
)

// AttachmentRepo provides typed DynamoDB operations for the attachments table.
type AttachmentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewAttachmentRepo(client *dynamodb.Client, tableName string) *AttachmentRepo {
	return &AttachmentRepo{client: client, tableName: tableName}
}

func (r *AttachmentRepo) Put(ctx context.Context, a *domain.AttachmentMeta) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal attachment: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByDevice queries the device_id GSI for all attachment records owned by
// one device.
func (r *AttachmentRepo) ListByDevice(ctx context.Context, deviceID string) ([]domain.AttachmentMeta, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("device_id-index"),
		KeyConditionExpression: aws.String("device_id = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: deviceID},
		},
	}
	// Usage accounting must sum every record, so all pages are followed.
	items, err := queryPages(func(startKey map[string]types.AttributeValue) (*dynamodb.QueryOutput, error) {
		in.ExclusiveStartKey = startKey
		return r.client.Query(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	var attachments []domain.AttachmentMeta
	if err := attributevalue.UnmarshalListOfMaps(items, &attachments); err != nil {
		return nil, err
	}
	return attachments, nil
}
