package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/leanderkretschmer/lotify/internal/domain"
)

// MessageRepo provides typed DynamoDB operations for the messages table.
// Message ids are ULIDs, so the device_id-message_id GSI yields messages in
// insertion order without a separate sort attribute.
type MessageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMessageRepo(client *dynamodb.Client, tableName string) *MessageRepo {
	return &MessageRepo{client: client, tableName: tableName}
}

func (r *MessageRepo) Put(ctx context.Context, m *domain.Message) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByDevice returns all messages for a device, delivered or not, oldest
// first.
func (r *MessageRepo) ListByDevice(ctx context.Context, deviceID string) ([]domain.Message, error) {
	return r.queryByDevice(ctx, deviceID, false)
}

// ListUndelivered returns the device's undelivered messages, oldest first.
func (r *MessageRepo) ListUndelivered(ctx context.Context, deviceID string) ([]domain.Message, error) {
	return r.queryByDevice(ctx, deviceID, true)
}

func (r *MessageRepo) queryByDevice(ctx context.Context, deviceID string, undeliveredOnly bool) ([]domain.Message, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("device_id-message_id-index"),
		KeyConditionExpression: aws.String("device_id = :d"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d": &types.AttributeValueMemberS{Value: deviceID},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if undeliveredOnly {
		in.FilterExpression = aws.String("delivered = :f")
		in.ExpressionAttributeValues[":f"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	// Message rows are never deleted, so a long-lived device accumulates more
	// than one page of history. Every page must be followed or the filtered
	// tail goes unseen.
	items, err := queryPages(func(startKey map[string]types.AttributeValue) (*dynamodb.QueryOutput, error) {
		in.ExclusiveStartKey = startKey
		return r.client.Query(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	var messages []domain.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkDelivered transitions a message to delivered. The update is a single
// row-level write, so it is atomic with respect to concurrent appends, and
// re-marking an already delivered message is a no-op.
func (r *MessageRepo) MarkDelivered(ctx context.Context, messageID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldDelivered: true})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("message_id", messageID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(message_id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("message not found: %w", domain.ErrNotFound)
	}
	return err
}
