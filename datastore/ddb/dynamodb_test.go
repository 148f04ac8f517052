/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
)

var _ datastore.Client = (*Client)(nil)

// fakeAPI scripts DynamoDB responses and records the requests it receives
type fakeAPI struct {
	mu sync.Mutex

	getItem        func(*sdk.GetItemInput) (*sdk.GetItemOutput, error)
	putItem        func(*sdk.PutItemInput) (*sdk.PutItemOutput, error)
	updateItem     func(*sdk.UpdateItemInput) (*sdk.UpdateItemOutput, error)
	deleteItem     func(*sdk.DeleteItemInput) (*sdk.DeleteItemOutput, error)
	batchGetItem   func(*sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error)
	batchWriteItem func(*sdk.BatchWriteItemInput) (*sdk.BatchWriteItemOutput, error)
	query          func(*sdk.QueryInput) (*sdk.QueryOutput, error)

	calls map[string]int
}

func (f *fakeAPI) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[op]++
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeAPI) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.record("GetItem")
	return f.getItem(in)
}

func (f *fakeAPI) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.record("PutItem")
	return f.putItem(in)
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.record("UpdateItem")
	return f.updateItem(in)
}

func (f *fakeAPI) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.record("DeleteItem")
	return f.deleteItem(in)
}

func (f *fakeAPI) BatchGetItem(_ context.Context, in *sdk.BatchGetItemInput, _ ...func(*sdk.Options)) (*sdk.BatchGetItemOutput, error) {
	f.record("BatchGetItem")
	return f.batchGetItem(in)
}

func (f *fakeAPI) BatchWriteItem(_ context.Context, in *sdk.BatchWriteItemInput, _ ...func(*sdk.Options)) (*sdk.BatchWriteItemOutput, error) {
	f.record("BatchWriteItem")
	return f.batchWriteItem(in)
}

func (f *fakeAPI) Query(_ context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.record("Query")
	return f.query(in)
}

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, api *fakeAPI) *Client {
	return New(api,
		WithTablePrefix("app_"),
		WithLogger(zaptest.NewLogger(t)),
		WithBatchRetries(1, time.Millisecond),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func userKey(id string) storagemodels.Key {
	return storagemodels.NewKey("test", "users", storagemodels.StringID(id))
}

func s(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func n(v int64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)}
}

func storedUser(id, name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		PartitionKey: s("users"),
		SortKey:      s(id),
		"id":         s(id),
		"nm":         s(name),
		"age":        n(5),
	}
}

func conditionFailed() error {
	return &types.ConditionalCheckFailedException{Message: aws.String("The conditional request failed")}
}

func TestClientGet(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		api := &fakeAPI{getItem: func(in *sdk.GetItemInput) (*sdk.GetItemOutput, error) {
			assert.Equal(t, "app_test", aws.ToString(in.TableName))
			assert.Equal(t, s("users"), in.Key[PartitionKey])
			assert.Equal(t, s("u1"), in.Key[SortKey])
			item := storedUser("u1", "Alice")
			item[TTLAttribute] = n(fixedNow.Add(time.Hour).Unix())
			return &sdk.GetItemOutput{Item: item}, nil
		}}

		rec, err := newTestClient(t, api).Get(ctx, userKey("u1"))
		require.NoError(t, err)
		assert.Equal(t, storagemodels.Record{"id": "u1", "nm": "Alice", "age": int64(5)}, rec)
	})

	t.Run("Missing", func(t *testing.T) {
		api := &fakeAPI{getItem: func(*sdk.GetItemInput) (*sdk.GetItemOutput, error) {
			return &sdk.GetItemOutput{}, nil
		}}

		_, err := newTestClient(t, api).Get(ctx, userKey("u1"))
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("Expired", func(t *testing.T) {
		api := &fakeAPI{getItem: func(*sdk.GetItemInput) (*sdk.GetItemOutput, error) {
			item := storedUser("u1", "Alice")
			item[TTLAttribute] = n(fixedNow.Add(-time.Second).Unix())
			return &sdk.GetItemOutput{Item: item}, nil
		}}

		client := newTestClient(t, api)
		_, err := client.Get(ctx, userKey("u1"))
		assert.True(t, errors.IsNotFound(err))

		ok, err := client.Exists(ctx, userKey("u1"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Exists", func(t *testing.T) {
		api := &fakeAPI{getItem: func(in *sdk.GetItemInput) (*sdk.GetItemOutput, error) {
			assert.Equal(t, "#pk, #ttl", aws.ToString(in.ProjectionExpression))
			return &sdk.GetItemOutput{Item: map[string]types.AttributeValue{PartitionKey: s("users")}}, nil
		}}

		ok, err := newTestClient(t, api).Exists(ctx, userKey("u1"))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestClientPut(t *testing.T) {
	ctx := context.Background()

	t.Run("UpdateMergesAndRemovesNilBins", func(t *testing.T) {
		var got *sdk.UpdateItemInput
		api := &fakeAPI{updateItem: func(in *sdk.UpdateItemInput) (*sdk.UpdateItemOutput, error) {
			got = in
			return &sdk.UpdateItemOutput{}, nil
		}}

		rec := storagemodels.Record{"id": "u1", "nm": "Alice", "age": nil}
		require.NoError(t, newTestClient(t, api).Put(ctx, userKey("u1"), rec, nil, nil))

		require.NotNil(t, got)
		assert.Equal(t, "SET #f1 = :v0, #f2 = :v1 REMOVE #f0", aws.ToString(got.UpdateExpression))
		assert.Equal(t, map[string]string{"#f0": "age", "#f1": "id", "#f2": "nm"}, got.ExpressionAttributeNames)
		assert.Nil(t, got.ConditionExpression)
	})

	t.Run("UpdateOnlyMissing", func(t *testing.T) {
		api := &fakeAPI{updateItem: func(in *sdk.UpdateItemInput) (*sdk.UpdateItemOutput, error) {
			assert.Equal(t, "attribute_exists(#pk)", aws.ToString(in.ConditionExpression))
			assert.Equal(t, PartitionKey, in.ExpressionAttributeNames["#pk"])
			return nil, conditionFailed()
		}}

		err := newTestClient(t, api).Put(ctx, userKey("u1"), storagemodels.Record{"age": 5}, nil,
			&storagemodels.WritePolicy{Exists: storagemodels.UpdateOnly})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("UpdateWithTTL", func(t *testing.T) {
		var got *sdk.UpdateItemInput
		api := &fakeAPI{updateItem: func(in *sdk.UpdateItemInput) (*sdk.UpdateItemOutput, error) {
			got = in
			return &sdk.UpdateItemOutput{}, nil
		}}

		err := newTestClient(t, api).Put(ctx, userKey("u1"), storagemodels.Record{"nm": "A"},
			&storagemodels.RecordMeta{TTL: time.Hour}, nil)
		require.NoError(t, err)
		assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", aws.ToString(got.UpdateExpression))
		assert.Equal(t, TTLAttribute, got.ExpressionAttributeNames["#f1"])
		assert.Equal(t, n(fixedNow.Add(time.Hour).Unix()), got.ExpressionAttributeValues[":v1"])
	})

	t.Run("CreateOnlyConflict", func(t *testing.T) {
		var got *sdk.PutItemInput
		api := &fakeAPI{putItem: func(in *sdk.PutItemInput) (*sdk.PutItemOutput, error) {
			got = in
			return nil, conditionFailed()
		}}

		err := newTestClient(t, api).Put(ctx, userKey("u1"), storagemodels.Record{"id": "u1", "nm": nil}, nil,
			&storagemodels.WritePolicy{Exists: storagemodels.CreateOnly})
		assert.True(t, errors.IsAlreadyExists(err))

		require.NotNil(t, got)
		assert.Equal(t, "attribute_not_exists(#pk)", aws.ToString(got.ConditionExpression))
		assert.Equal(t, map[string]types.AttributeValue{
			PartitionKey: s("users"),
			SortKey:      s("u1"),
			"id":         s("u1"),
		}, got.Item)
	})

	t.Run("Replace", func(t *testing.T) {
		api := &fakeAPI{putItem: func(in *sdk.PutItemInput) (*sdk.PutItemOutput, error) {
			assert.Nil(t, in.ConditionExpression)
			assert.Equal(t, n(42), in.Item["age"])
			return &sdk.PutItemOutput{}, nil
		}}

		err := newTestClient(t, api).Put(ctx, userKey("u1"), storagemodels.Record{"age": 42}, nil,
			&storagemodels.WritePolicy{Exists: storagemodels.Replace})
		require.NoError(t, err)
		assert.Equal(t, 1, api.count("PutItem"))
	})
}

func TestClientRemove(t *testing.T) {
	ctx := context.Background()

	api := &fakeAPI{deleteItem: func(in *sdk.DeleteItemInput) (*sdk.DeleteItemOutput, error) {
		if aws.ToString(in.ConditionExpression) != "attribute_exists(#pk)" {
			t.Errorf("unexpected condition %q", aws.ToString(in.ConditionExpression))
		}
		return nil, conditionFailed()
	}}

	err := newTestClient(t, api).Remove(ctx, userKey("ghost"))
	assert.True(t, errors.IsNotFound(err))
}

func TestClientBatchRead(t *testing.T) {
	ctx := context.Background()

	t.Run("RetriesUnprocessedKeys", func(t *testing.T) {
		api := &fakeAPI{}
		api.batchGetItem = func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
			req := in.RequestItems["app_test"]
			if api.count("BatchGetItem") == 1 {
				assert.Len(t, req.Keys, 3, "duplicate keys are requested once")
				return &sdk.BatchGetItemOutput{
					Responses: map[string][]map[string]types.AttributeValue{
						"app_test": {storedUser("a", "A")},
					},
					UnprocessedKeys: map[string]types.KeysAndAttributes{
						"app_test": {Keys: []map[string]types.AttributeValue{itemKey(userKey("b"))}},
					},
				}, nil
			}
			return &sdk.BatchGetItemOutput{
				Responses: map[string][]map[string]types.AttributeValue{
					"app_test": {storedUser("b", "B")},
				},
			}, nil
		}

		keys := []storagemodels.Key{userKey("a"), userKey("b"), userKey("c"), userKey("a")}
		results, err := newTestClient(t, api).BatchRead(ctx, keys)
		require.NoError(t, err)
		require.Len(t, results, 4)

		assert.Equal(t, storagemodels.StatusOK, results[0].Status)
		assert.Equal(t, "A", results[0].Record["nm"])
		assert.Equal(t, storagemodels.StatusOK, results[1].Status)
		assert.Equal(t, storagemodels.StatusNotFound, results[2].Status)
		assert.Equal(t, storagemodels.StatusOK, results[3].Status)
		assert.Equal(t, 2, api.count("BatchGetItem"))
	})

	t.Run("GivesUpAfterRetries", func(t *testing.T) {
		api := &fakeAPI{batchGetItem: func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
			return &sdk.BatchGetItemOutput{UnprocessedKeys: in.RequestItems}, nil
		}}

		results, err := newTestClient(t, api).BatchRead(ctx, []storagemodels.Key{userKey("a")})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, storagemodels.StatusError, results[0].Status)
		assert.Error(t, results[0].Err)
		assert.Equal(t, 2, api.count("BatchGetItem"))
	})

	t.Run("ChunksLargeRequests", func(t *testing.T) {
		api := &fakeAPI{batchGetItem: func(in *sdk.BatchGetItemInput) (*sdk.BatchGetItemOutput, error) {
			assert.LessOrEqual(t, len(in.RequestItems["app_test"].Keys), maxBatchGet)
			return &sdk.BatchGetItemOutput{}, nil
		}}

		keys := make([]storagemodels.Key, 150)
		for i := range keys {
			keys[i] = storagemodels.NewKey("test", "users", storagemodels.IntID(int64(i+1)))
		}
		results, err := newTestClient(t, api).BatchRead(ctx, keys)
		require.NoError(t, err)
		assert.Len(t, results, 150)
		assert.Equal(t, 2, api.count("BatchGetItem"))
	})
}

func TestClientBatchRemove(t *testing.T) {
	ctx := context.Background()

	var sizes []int
	api := &fakeAPI{batchWriteItem: func(in *sdk.BatchWriteItemInput) (*sdk.BatchWriteItemOutput, error) {
		sizes = append(sizes, len(in.RequestItems["app_test"]))
		return &sdk.BatchWriteItemOutput{}, nil
	}}

	keys := make([]storagemodels.Key, 30)
	for i := range keys {
		keys[i] = storagemodels.NewKey("test", "users", storagemodels.IntID(int64(i+1)))
	}
	require.NoError(t, newTestClient(t, api).BatchRemove(ctx, keys))
	assert.Equal(t, []int{25, 5}, sizes)
}
