/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/recordstore/storagemodels"
)

// Scan streams the records of a set by paging a Query on its partition.
// Filters run server side; MaxRecords is enforced here.
func (c *Client) Scan(ctx context.Context, namespace, set string, opts *storagemodels.QueryOptions) <-chan storagemodels.ScanEvent {
	options := opts.StreamConfig()
	resultCh := make(chan storagemodels.ScanEvent, options.BufferSize)

	go c.streamWorker(ctx, namespace, set, opts, options, resultCh)

	return resultCh
}

// streamWorker handles the actual streaming logic
func (c *Client) streamWorker(
	ctx context.Context,
	namespace, set string,
	opts *storagemodels.QueryOptions,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.ScanEvent,
) {
	defer close(resultCh)

	tracker := storagemodels.NewProgressTracker(options.ProgressHandler)
	send := func(ev storagemodels.ScanEvent) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- ev:
			return true
		}
	}
	fail := func(err error) {
		send(storagemodels.ScanEvent{Err: err, Meta: tracker.Meta()})
	}

	input, err := c.scanInput(namespace, set, opts, options.PageSize)
	if err != nil {
		fail(err)
		return
	}

	delivered := 0
	for {
		if ctx.Err() != nil {
			return
		}

		out, err := c.queryWithRetry(ctx, input, options)
		if err != nil {
			if ctx.Err() == nil {
				fail(err)
			}
			return
		}
		tracker.Page()

		for _, item := range out.Items {
			if opts.Limited(delivered) {
				break
			}
			if c.expired(item) {
				continue
			}
			rec, err := fromItem(item)
			if err != nil {
				fail(fmt.Errorf("failed to unmarshal item: %w", err))
				return
			}
			if !send(storagemodels.ScanEvent{Record: rec, Meta: tracker.Item()}) {
				return
			}
			delivered++
		}

		// Report progress after each page
		tracker.Report(false)

		if len(out.LastEvaluatedKey) == 0 || opts.Limited(delivered) {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	c.logger.Debug("scan complete",
		zap.String("namespace", namespace),
		zap.String("set", set),
		zap.Int("records", delivered))
	tracker.Report(true)
}

func (c *Client) scanInput(namespace, set string, opts *storagemodels.QueryOptions, pageSize int32) (*sdk.QueryInput, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var filters []storagemodels.Filter
	var bins []string
	if opts != nil {
		filters, bins = opts.Filters, opts.Bins
	}

	expr, err := buildFilterExpression(filters)
	if err != nil {
		return nil, err
	}
	pk := expr.name(PartitionKey)
	pkValue, err := expr.value(set)
	if err != nil {
		return nil, err
	}
	projection := buildProjection(expr, bins)

	input := &sdk.QueryInput{
		TableName:                 aws.String(c.tableName(namespace)),
		KeyConditionExpression:    aws.String(pk + " = " + pkValue),
		ExpressionAttributeNames:  expr.names,
		ExpressionAttributeValues: expr.values,
		Limit:                     aws.Int32(pageSize),
	}
	if expr.filter != "" {
		input.FilterExpression = aws.String(expr.filter)
	}
	if projection != "" {
		input.ProjectionExpression = aws.String(projection)
	}
	return input, nil
}

// queryWithRetry executes a query with configurable retry logic
func (c *Client) queryWithRetry(
	ctx context.Context,
	input *sdk.QueryInput,
	options storagemodels.StreamOptions,
) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		out, err := c.api.Query(ctx, input)
		if err == nil {
			return out, nil
		}

		lastErr = err

		if !isRetryableError(err) {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		// Don't sleep after last attempt
		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			c.logger.Warn("retrying query page", zap.Int("attempt", attempt+1), zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var throughput *types.ProvisionedThroughputExceededException
	var limit *types.RequestLimitExceeded
	var internal *types.InternalServerError
	if stderrors.As(err, &throughput) || stderrors.As(err, &limit) || stderrors.As(err, &internal) {
		return true
	}

	// Check for AWS SDK retryable errors
	var retryable interface{ RetryableError() bool }
	if stderrors.As(err, &retryable) {
		return retryable.RetryableError()
	}
	return false
}
