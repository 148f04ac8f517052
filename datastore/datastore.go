/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

//go:generate mockgen -package datastore -source datastore.go -destination datastore_mock.go

import (
	"context"

	"github.com/suparena/recordstore/storagemodels"
)

// Client is the contract the repository needs from a key-value store. All
// calls block until the store answers or ctx is done. Implementations must be
// safe for concurrent use.
type Client interface {
	// Get returns the record at key, or a NotFoundError.
	Get(ctx context.Context, key storagemodels.Key) (storagemodels.Record, error)

	// Put writes rec at key according to policy; a nil policy means Update.
	Put(ctx context.Context, key storagemodels.Key, rec storagemodels.Record, meta *storagemodels.RecordMeta, policy *storagemodels.WritePolicy) error

	// Remove deletes the record at key, or returns a NotFoundError.
	Remove(ctx context.Context, key storagemodels.Key) error

	Exists(ctx context.Context, key storagemodels.Key) (bool, error)

	// BatchRead returns one result per key, in key order.
	BatchRead(ctx context.Context, keys []storagemodels.Key) ([]storagemodels.BatchRecord, error)

	// BatchRemove deletes every key; absent keys are ignored.
	BatchRemove(ctx context.Context, keys []storagemodels.Key) error

	// Scan streams the records of a set. The channel is closed at the end of
	// the scan; an event carrying Err is always the last one.
	Scan(ctx context.Context, namespace, set string, opts *storagemodels.QueryOptions) <-chan storagemodels.ScanEvent
}
