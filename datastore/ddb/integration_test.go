//go:build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
)

// setupLiveClient connects to the table named by AWS_DDB_TABLE. The table
// needs a string hash key "PK" and a string range key "SK".
func setupLiveClient(t *testing.T) (*Client, string) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, proceeding with environment variables")
	}

	table := os.Getenv("AWS_DDB_TABLE")
	if table == "" {
		t.Skip("AWS_DDB_TABLE not set, skipping integration test")
	}

	api, err := NewDynamoDBClient(context.Background(),
		os.Getenv("AWS_ACCESS_KEY"),
		os.Getenv("AWS_SECRET_KEY"),
		os.Getenv("AWS_REGION"),
		os.Getenv("RECORDSTORE_DDB_ENDPOINT"),
	)
	require.NoError(t, err)

	return New(api, WithLogger(zaptest.NewLogger(t))), table
}

func TestIntegrationRecordLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	client, table := setupLiveClient(t)
	set := fmt.Sprintf("it-%d", time.Now().UnixNano())
	key := storagemodels.NewKey(table, set, storagemodels.StringID("u1"))

	require.NoError(t, client.Put(ctx, key, storagemodels.Record{"id": "u1", "nm": "Alice", "age": int64(0)}, nil,
		&storagemodels.WritePolicy{Exists: storagemodels.CreateOnly}))
	t.Cleanup(func() { _ = client.Remove(context.Background(), key) })

	err := client.Put(ctx, key, storagemodels.Record{"id": "u1"}, nil,
		&storagemodels.WritePolicy{Exists: storagemodels.CreateOnly})
	assert.True(t, errors.IsAlreadyExists(err))

	require.NoError(t, client.Put(ctx, key, storagemodels.Record{"age": int64(5)}, nil,
		&storagemodels.WritePolicy{Exists: storagemodels.UpdateOnly}))

	rec, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, storagemodels.Record{"id": "u1", "nm": "Alice", "age": int64(5)}, rec)

	var count int
	for ev := range client.Scan(ctx, table, set, storagemodels.NewQuery().Where("age", storagemodels.OpGreaterThan, 1)) {
		require.NoError(t, ev.Err)
		count++
	}
	assert.Equal(t, 1, count)

	require.NoError(t, client.Remove(ctx, key))
	assert.True(t, errors.IsNotFound(client.Remove(ctx, key)))
}
