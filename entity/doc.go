/*
Package entity implements the bidirectional mapping between entities and records.

An entity embeds Base for its identifier and registers its attributes with the
registry package. ToRecord and FromRecord then convert between the entity and
the flat bin map stored under its key:

	u := &User{Base: entity.NewBase(storagemodels.StringID("u1")), Name: ptr("Alice")}
	rec, err := entity.ToRecord(u)   // {"id": "u1", "nm": "Alice", "age": 0}

	back, err := entity.FromRecord(rec, NewUser)

Defaults and required checks run on every serialization. Reconstruction assigns
raw stored values only and leaves absent bins untouched.
*/
package entity
