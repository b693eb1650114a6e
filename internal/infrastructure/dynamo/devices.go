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

// DeviceRepo provides typed DynamoDB operations for the devices table.
// The public key is the partition key, so registration races are settled by
// the store itself via a conditional put.
type DeviceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeviceRepo(client *dynamodb.Client, tableName string) *DeviceRepo {
	return &DeviceRepo{client: client, tableName: tableName}
}

// PutNew persists a device only if its public key is not yet taken.
// Returns domain.ErrConflict when another device holds the key.
func (r *DeviceRepo) PutNew(ctx context.Context, d *domain.Device) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return fmt.Errorf("marshal device: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(public_key)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("public key already registered: %w", domain.ErrConflict)
	}
	return err
}

func (r *DeviceRepo) GetByPublicKey(ctx context.Context, publicKey string) (*domain.Device, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("public_key", publicKey),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("device not found: %w", domain.ErrNotFound)
	}
	var d domain.Device
	if err := attributevalue.UnmarshalMap(out.Item, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepo) GetByAPIKey(ctx context.Context, apiKey string) (*domain.Device, error) {
	return r.queryOne(ctx, "api_key-index", "api_key", apiKey)
}

func (r *DeviceRepo) GetByID(ctx context.Context, deviceID string) (*domain.Device, error) {
	return r.queryOne(ctx, "device_id-index", "device_id", deviceID)
}

func (r *DeviceRepo) queryOne(ctx context.Context, index, attr, value string) (*domain.Device, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = :v", attr)),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("device not found: %w", domain.ErrNotFound)
	}
	var d domain.Device
	if err := attributevalue.UnmarshalMap(out.Items[0], &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SetActive flips the active flag. The condition guards against upserting a
// phantom row for a public key that was never registered.
func (r *DeviceRepo) SetActive(ctx context.Context, publicKey string, active bool) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldActive: active})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("public_key", publicKey),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ConditionExpression:       aws.String("attribute_exists(public_key)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("device not found: %w", domain.ErrNotFound)
	}
	return err
}

// List scans all devices. The device population of a relay is small; the
// admin listing is the only caller.
func (r *DeviceRepo) List(ctx context.Context) ([]domain.Device, error) {
	in := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	}
	items, err := scanPages(func(startKey map[string]types.AttributeValue) (*dynamodb.ScanOutput, error) {
		in.ExclusiveStartKey = startKey
		return r.client.Scan(ctx, in)
	})
	if err != nil {
		return nil, err
	}
	var devices []domain.Device
	if err := attributevalue.UnmarshalListOfMaps(items, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}
