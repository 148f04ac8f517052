/*
Package datastore defines the store client contract used by RecordStore's repositories.

The main interface is Client, which addresses records by (namespace, set, id):

	type Client interface {
	    Get(ctx context.Context, key storagemodels.Key) (storagemodels.Record, error)
	    Put(ctx context.Context, key storagemodels.Key, rec storagemodels.Record, meta *storagemodels.RecordMeta, policy *storagemodels.WritePolicy) error
	    Remove(ctx context.Context, key storagemodels.Key) error
	    Exists(ctx context.Context, key storagemodels.Key) (bool, error)
	    BatchRead(ctx context.Context, keys []storagemodels.Key) ([]storagemodels.BatchRecord, error)
	    BatchRemove(ctx context.Context, keys []storagemodels.Key) error
	    Scan(ctx context.Context, namespace, set string, opts *storagemodels.QueryOptions) <-chan storagemodels.ScanEvent
	}

Implementations:
  - ddb: DynamoDB client using a single table per namespace
  - sqlite: SQLite client storing bins as JSON
  - mock: In-memory client for testing

MockClient, generated by mockgen, is available for expectation-based tests.
*/
package datastore
