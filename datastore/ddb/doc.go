/*
Package ddb provides a DynamoDB implementation of the datastore.Client interface.

Records are laid out in a single-table design per namespace:
  - Table: the namespace, with an optional prefix (WithTablePrefix)
  - Partition key "PK": the set name
  - Sort key "SK": the record id as text
  - Every bin is stored as a top-level attribute
  - "ttl": expiry in epoch seconds when RecordMeta.TTL is set

Write policies map onto conditional writes:

	Update      UpdateItem
	UpdateOnly  UpdateItem with attribute_exists(PK)
	Replace     PutItem
	CreateOnly  PutItem with attribute_not_exists(PK)

Scans page a Query over the set's partition with retry and progress
reporting:

	events := client.Scan(ctx, "app", "users",
	    storagemodels.NewQuery().
	        WhereBeginsWith("nm", "A").
	        WithStreamOptions(storagemodels.WithPageSize(25)),
	)

Integer and string ids with the same text share a sort key.
*/
package ddb
