/*
Package registry manages attribute descriptors and entity factories for RecordStore.

The registry system enables:
  - An explicit, type-keyed catalog of mapped attributes built at init time
  - Default values as constants or producers
  - Required-field declarations checked on every serialization
  - Factories that let generic code construct concrete entities

Attribute Registry:
Declares how each attribute of an entity type maps to a bin:

	registry.MustRegister[*User](
	    registry.Attribute[*User]{
	        Source:   "name",
	        Stored:   "nm",
	        Required: true,
	        Get: func(u *User) (any, bool) { return u.Name, u.Name != "" },
	        Set: func(u *User, v any) (err error) { u.Name, err = entity.AsString(v); return },
	    },
	    registry.Attribute[*User]{
	        Source:  "age",
	        Default: registry.Constant(0),
	        Get: func(u *User) (any, bool) { return deref(u.Age) },
	        Set: func(u *User, v any) error { ... },
	    },
	)

Registering a source name again replaces its descriptor; two sources sharing a
stored name is a configuration error.

Factory Registry:
Associates an entity type with its constructor:

	registry.RegisterFactory[*User](func(id storagemodels.ID) *User {
	    return &User{Base: entity.NewBase(id)}
	})

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
