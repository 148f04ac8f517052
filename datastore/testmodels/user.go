// Package testmodels holds entity types shared by the package tests.
package testmodels

import (
	"github.com/suparena/recordstore/entity"
	"github.com/suparena/recordstore/registry"
	"github.com/suparena/recordstore/storagemodels"
)

// User maps "name" to the "nm" bin (required) and "age" to "age" (default 0).
type User struct {
	entity.Base
	Name *string
	Age  *int64
}

// NewUser returns a user carrying only its id.
func NewUser(id storagemodels.ID) *User {
	return &User{Base: entity.NewBase(id)}
}

func init() {
	registry.RegisterFactory[*User](NewUser)

	registry.MustRegister(
		registry.Attribute[*User]{
			Source:   "name",
			Stored:   "nm",
			Required: true,
			Get:      func(u *User) (any, bool) { return deref(u.Name) },
			Set:      setString(func(u *User) **string { return &u.Name }),
		},
		registry.Attribute[*User]{
			Source:  "age",
			Default: registry.Constant(int64(0)),
			Get:     func(u *User) (any, bool) { return deref(u.Age) },
			Set:     setInt(func(u *User) **int64 { return &u.Age }),
		},
	)
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}

// Int64 returns a pointer to n.
func Int64(n int64) *int64 {
	return &n
}

func deref[V any](p *V) (any, bool) {
	if p == nil {
		return nil, false
	}
	return *p, true
}

func setString[T any](field func(T) **string) func(T, any) error {
	return func(e T, v any) error {
		if v == nil {
			*field(e) = nil
			return nil
		}
		s, err := entity.AsString(v)
		if err != nil {
			return err
		}
		*field(e) = &s
		return nil
	}
}

func setInt[T any](field func(T) **int64) func(T, any) error {
	return func(e T, v any) error {
		if v == nil {
			*field(e) = nil
			return nil
		}
		n, err := entity.AsInt64(v)
		if err != nil {
			return err
		}
		*field(e) = &n
		return nil
	}
}
