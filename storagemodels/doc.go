/*
Package storagemodels defines the data structures shared by the repository and
every store client.

Key Types:

ID and Key:
A record is addressed by namespace, set and id. Ids are strings or integers:

	key := NewKey("test", "users", StringID("u1"))
	key := NewKey("test", "orders", IntID(42))

Record:
The flat bin map exchanged with the store. Records produced by the entity
contract always carry the "id" bin.

WritePolicy:
Selects create/update semantics for a Put (Update, UpdateOnly, Replace, CreateOnly).

QueryOptions:
Filters, bin selection and limits for a scan:

	opts := NewQuery().
	    Where("age", OpGreaterOrEqual, 18).
	    WhereBeginsWith("nm", "A").
	    Select("nm", "age").
	    Limit(100).
	    WithStreamOptions(WithPageSize(25))

ScanEvent:
Records are delivered on a channel; closing the channel ends the scan and an
event carrying Err terminates it:

	for ev := range client.Scan(ctx, "test", "users", opts) {
	    if ev.Err != nil {
	        return ev.Err
	    }
	    handle(ev.Record)
	}

These types provide a consistent interface across different storage implementations.
*/
package storagemodels
