/*
Package recordstore maps Go entity types onto records of a key-value store
addressed by (namespace, set, id).

Each entity type registers its attributes once: the source field name used by
callers, the bin name stored on disk, whether the value is required and an
optional default (a constant or a producer evaluated on each save). A
Repository then reads and writes entities of that type through any
datastore.Client:

	users := recordstore.NewRepository[*User](client, "app", "users")

	u, err := users.GetOrCreate(ctx, storagemodels.StringID("u1"), entity.Attributes{"name": "Alice"})
	err = users.Update(ctx, u.EntityID(), entity.Attributes{"age": 30})
	adults, err := users.GetAll(ctx, storagemodels.NewQuery().Where("age", storagemodels.OpGreaterThan, 18))

Store implementations live under datastore/: DynamoDB (ddb), SQLite (sqlite)
and an in-memory store for tests (mock). The config package selects and opens
one of them from recordstore.yaml and the environment.

A Catalog holds one repository per entity type when an application works with
several.
*/
package recordstore
