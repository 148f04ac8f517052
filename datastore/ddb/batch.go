/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/suparena/recordstore/storagemodels"
)

// DynamoDB request limits
const (
	maxBatchGet   = 100
	maxBatchWrite = 25
)

// BatchRead reads every key, reporting a status per key in input order.
// Keys still unprocessed after the retries get StatusError.
func (c *Client) BatchRead(ctx context.Context, keys []storagemodels.Key) ([]storagemodels.BatchRecord, error) {
	unique := dedupe(keys)
	found := make(map[storagemodels.Key]storagemodels.Record, len(unique))
	failed := make(map[storagemodels.Key]error)

	for _, chunk := range chunkKeys(unique, maxBatchGet) {
		if err := c.batchGet(ctx, chunk, found, failed); err != nil {
			return nil, err
		}
	}

	results := make([]storagemodels.BatchRecord, len(keys))
	for i, key := range keys {
		result := storagemodels.BatchRecord{Key: key, Status: storagemodels.StatusNotFound}
		if err, ok := failed[key]; ok {
			result.Status = storagemodels.StatusError
			result.Err = err
		} else if rec, ok := found[key]; ok {
			result.Status = storagemodels.StatusOK
			result.Record = rec.Clone()
		}
		results[i] = result
	}
	return results, nil
}

func (c *Client) batchGet(ctx context.Context, keys []storagemodels.Key, found map[storagemodels.Key]storagemodels.Record, failed map[storagemodels.Key]error) error {
	lookup := make(map[string]storagemodels.Key, len(keys))
	request := make(map[string]types.KeysAndAttributes)
	for _, key := range keys {
		table := c.tableName(key.Namespace)
		lookup[table+"\x00"+key.Set+"\x00"+key.ID.String()] = key
		ka := request[table]
		ka.Keys = append(ka.Keys, itemKey(key))
		ka.ConsistentRead = aws.Bool(true)
		request[table] = ka
	}

	for attempt := 0; len(request) > 0; attempt++ {
		out, err := c.api.BatchGetItem(ctx, &sdk.BatchGetItemInput{RequestItems: request})
		if err != nil {
			return fmt.Errorf("BatchGetItem failed: %w", err)
		}

		for table, items := range out.Responses {
			for _, item := range items {
				key, ok := lookup[table+"\x00"+attrString(item[PartitionKey])+"\x00"+attrString(item[SortKey])]
				if !ok || c.expired(item) {
					continue
				}
				rec, err := fromItem(item)
				if err != nil {
					failed[key] = err
					continue
				}
				found[key] = rec
			}
		}

		request = out.UnprocessedKeys
		if len(request) == 0 {
			break
		}
		if attempt >= c.maxRetries {
			for table, ka := range request {
				for _, k := range ka.Keys {
					if key, ok := lookup[table+"\x00"+attrString(k[PartitionKey])+"\x00"+attrString(k[SortKey])]; ok {
						failed[key] = fmt.Errorf("key unprocessed after %d retries", c.maxRetries)
					}
				}
			}
			c.logger.Warn("batch read left unprocessed keys", zap.Int("tables", len(request)))
			return nil
		}
		if err := c.sleep(ctx, attempt); err != nil {
			return err
		}
	}
	return nil
}

// BatchRemove deletes every key. Absent keys are ignored.
func (c *Client) BatchRemove(ctx context.Context, keys []storagemodels.Key) error {
	for _, chunk := range chunkKeys(dedupe(keys), maxBatchWrite) {
		request := make(map[string][]types.WriteRequest)
		for _, key := range chunk {
			table := c.tableName(key.Namespace)
			request[table] = append(request[table], types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: itemKey(key)},
			})
		}

		for attempt := 0; ; attempt++ {
			out, err := c.api.BatchWriteItem(ctx, &sdk.BatchWriteItemInput{RequestItems: request})
			if err != nil {
				return fmt.Errorf("BatchWriteItem failed: %w", err)
			}
			request = out.UnprocessedItems
			if len(request) == 0 {
				break
			}
			if attempt >= c.maxRetries {
				return fmt.Errorf("batch remove left unprocessed items after %d retries", c.maxRetries)
			}
			if err := c.sleep(ctx, attempt); err != nil {
				return err
			}
		}
	}
	c.logger.Debug("records removed", zap.Int("keys", len(keys)))
	return nil
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(attempt+1) * c.retryBackoff):
		return nil
	}
}

func dedupe(keys []storagemodels.Key) []storagemodels.Key {
	seen := make(map[storagemodels.Key]bool, len(keys))
	out := make([]storagemodels.Key, 0, len(keys))
	for _, key := range keys {
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}

func chunkKeys(keys []storagemodels.Key, size int) [][]storagemodels.Key {
	var chunks [][]storagemodels.Key
	for len(keys) > size {
		chunks = append(chunks, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		chunks = append(chunks, keys)
	}
	return chunks
}

func attrString(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
