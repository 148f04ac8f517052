/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
)

// Attribute names the client owns. Bins with these names are not stored.
const (
	PartitionKey = "PK"
	SortKey      = "SK"
	TTLAttribute = "ttl"
)

// API is the subset of the DynamoDB client used by Client
type API interface {
	GetItem(ctx context.Context, params *sdk.GetItemInput, optFns ...func(*sdk.Options)) (*sdk.GetItemOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	BatchGetItem(ctx context.Context, params *sdk.BatchGetItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error)
	BatchWriteItem(ctx context.Context, params *sdk.BatchWriteItemInput, optFns ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
}

// Client implements datastore.Client on DynamoDB. Each namespace is a table
// (optionally prefixed); the set is the partition key and the id the sort key.
type Client struct {
	api          API
	tablePrefix  string
	maxRetries   int
	retryBackoff time.Duration
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTablePrefix prepends prefix to every namespace to form the table name
func WithTablePrefix(prefix string) Option {
	return func(c *Client) {
		c.tablePrefix = prefix
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBatchRetries sets how often unprocessed batch keys are retried
func WithBatchRetries(retries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = retries
		c.retryBackoff = backoff
	}
}

// WithClock replaces the clock used for TTL
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewDynamoDBClient initializes a DynamoDB SDK client. Static credentials are
// used when an access key is given, the default chain otherwise. A non-empty
// endpoint overrides the service endpoint (DynamoDB Local).
func NewDynamoDBClient(ctx context.Context, awsAccessKey, awsSecretKey, awsRegion, endpoint string) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(awsRegion),
	}
	if awsAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(cfg, func(o *sdk.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

// New wraps api in a Client
func New(api API, opts ...Option) *Client {
	c := &Client{
		api:          api,
		maxRetries:   3,
		retryBackoff: 100 * time.Millisecond,
		now:          time.Now,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get retrieves a record by key
func (c *Client) Get(ctx context.Context, key storagemodels.Key) (storagemodels.Record, error) {
	out, err := c.api.GetItem(ctx, &sdk.GetItemInput{
		TableName:      aws.String(c.tableName(key.Namespace)),
		Key:            itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("GetItem error: %w", err)
	}
	if out.Item == nil || c.expired(out.Item) {
		return nil, errors.NewNotFoundError(recordType(key), key.ID.String())
	}

	rec, err := fromItem(out.Item)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal item %s: %w", key, err)
	}
	return rec, nil
}

// Exists reports whether a live record is stored at key
func (c *Client) Exists(ctx context.Context, key storagemodels.Key) (bool, error) {
	out, err := c.api.GetItem(ctx, &sdk.GetItemInput{
		TableName:                aws.String(c.tableName(key.Namespace)),
		Key:                      itemKey(key),
		ConsistentRead:           aws.Bool(true),
		ProjectionExpression:     aws.String("#pk, #ttl"),
		ExpressionAttributeNames: map[string]string{"#pk": PartitionKey, "#ttl": TTLAttribute},
	})
	if err != nil {
		return false, fmt.Errorf("GetItem error: %w", err)
	}
	return out.Item != nil && !c.expired(out.Item), nil
}

// Put writes rec under key. Update and UpdateOnly merge bins with UpdateItem;
// Replace and CreateOnly write the whole item with PutItem. A nil bin value
// removes the bin.
func (c *Client) Put(ctx context.Context, key storagemodels.Key, rec storagemodels.Record, meta *storagemodels.RecordMeta, policy *storagemodels.WritePolicy) error {
	action := storagemodels.ActionOf(policy)

	var err error
	switch action {
	case storagemodels.Replace, storagemodels.CreateOnly:
		err = c.putItem(ctx, key, rec, meta, action)
	default:
		err = c.updateItem(ctx, key, rec, meta, action)
	}
	if err == nil {
		c.logger.Debug("record written",
			zap.Stringer("key", key),
			zap.Stringer("policy", action),
			zap.Int("bins", len(rec)))
	}
	return err
}

func (c *Client) putItem(ctx context.Context, key storagemodels.Key, rec storagemodels.Record, meta *storagemodels.RecordMeta, action storagemodels.RecordExistsAction) error {
	item, err := toItem(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", key, err)
	}
	for k, v := range itemKey(key) {
		item[k] = v
	}
	if ttl, ok := c.expiry(meta); ok {
		item[TTLAttribute] = ttl
	}

	input := &sdk.PutItemInput{
		TableName: aws.String(c.tableName(key.Namespace)),
		Item:      item,
	}
	if action == storagemodels.CreateOnly {
		input.ConditionExpression = aws.String("attribute_not_exists(#pk)")
		input.ExpressionAttributeNames = map[string]string{"#pk": PartitionKey}
	}

	if _, err := c.api.PutItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return errors.NewAlreadyExistsError(recordType(key), key.ID.String())
		}
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

func (c *Client) updateItem(ctx context.Context, key storagemodels.Key, rec storagemodels.Record, meta *storagemodels.RecordMeta, action storagemodels.RecordExistsAction) error {
	updates := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		if reservedAttribute(k) {
			continue
		}
		updates[k] = v
	}
	if ttl, ok := c.expiry(meta); ok {
		updates[TTLAttribute] = ttl
	}

	expr, err := buildUpdateExpression(updates)
	if err != nil {
		return fmt.Errorf("failed to build update expression for %s: %w", key, err)
	}

	input := &sdk.UpdateItemInput{
		TableName:                 aws.String(c.tableName(key.Namespace)),
		Key:                       itemKey(key),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
	}
	if expr.update != "" {
		input.UpdateExpression = aws.String(expr.update)
	}
	if action == storagemodels.UpdateOnly {
		if input.ExpressionAttributeNames == nil {
			input.ExpressionAttributeNames = make(map[string]string, 1)
		}
		input.ExpressionAttributeNames["#pk"] = PartitionKey
		input.ConditionExpression = aws.String("attribute_exists(#pk)")
	}

	if _, err := c.api.UpdateItem(ctx, input); err != nil {
		if isConditionFailed(err) {
			return errors.NewNotFoundError(recordType(key), key.ID.String())
		}
		return fmt.Errorf("UpdateItem failed: %w", err)
	}
	return nil
}

// Remove deletes a record by key
func (c *Client) Remove(ctx context.Context, key storagemodels.Key) error {
	_, err := c.api.DeleteItem(ctx, &sdk.DeleteItemInput{
		TableName:                aws.String(c.tableName(key.Namespace)),
		Key:                      itemKey(key),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": PartitionKey},
	})
	if err != nil {
		if isConditionFailed(err) {
			return errors.NewNotFoundError(recordType(key), key.ID.String())
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

func (c *Client) tableName(namespace string) string {
	return c.tablePrefix + namespace
}

// expiry returns the TTL attribute for meta, in epoch seconds.
func (c *Client) expiry(meta *storagemodels.RecordMeta) (types.AttributeValue, bool) {
	if meta == nil || meta.TTL <= 0 {
		return nil, false
	}
	at := c.now().Add(meta.TTL).Unix()
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(at, 10)}, true
}

// expired reports whether item carries a TTL in the past. DynamoDB deletes
// expired items lazily, so reads filter them.
func (c *Client) expired(item map[string]types.AttributeValue) bool {
	n, ok := item[TTLAttribute].(*types.AttributeValueMemberN)
	if !ok {
		return false
	}
	at, err := strconv.ParseInt(n.Value, 10, 64)
	if err != nil {
		return false
	}
	return at <= c.now().Unix()
}

// itemKey builds the primary key of key. Int and string ids with the same
// text share a sort key.
func itemKey(key storagemodels.Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		PartitionKey: &types.AttributeValueMemberS{Value: key.Set},
		SortKey:      &types.AttributeValueMemberS{Value: key.ID.String()},
	}
}

func reservedAttribute(name string) bool {
	return name == PartitionKey || name == SortKey || name == TTLAttribute
}

func isConditionFailed(err error) bool {
	var cfe *types.ConditionalCheckFailedException
	return stderrors.As(err, &cfe)
}

func recordType(key storagemodels.Key) string {
	return key.Namespace + "." + key.Set
}
