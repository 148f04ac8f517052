/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
)

// Default is the default of an attribute: nothing, a constant, or a producer
// invoked on each resolution.
type Default struct {
	kind     defaultKind
	value    any
	producer func() any
}

type defaultKind int

const (
	noDefault defaultKind = iota
	constantDefault
	producerDefault
)

// Constant returns a default that always resolves to v. A nil v still counts
// as a configured default.
func Constant(v any) Default {
	return Default{kind: constantDefault, value: v}
}

// Producer returns a default whose value is computed by fn on every resolution.
func Producer(fn func() any) Default {
	if fn == nil {
		return Default{}
	}
	return Default{kind: producerDefault, producer: fn}
}

// IsSet reports whether a default is configured.
func (d Default) IsSet() bool {
	return d.kind != noDefault
}

// Resolve returns the default value, invoking the producer once.
func (d Default) Resolve() any {
	switch d.kind {
	case constantDefault:
		return d.value
	case producerDefault:
		return d.producer()
	}
	return nil
}

// Attribute describes one mapped field of entity type T.
type Attribute[T any] struct {
	// Source is the in-memory attribute name, unique within T.
	Source string
	// Stored is the bin name; empty means Source.
	Stored string
	// Required makes serialization fail when the value is unset after defaults.
	Required bool
	// Default fills the value when it is unset at serialization time.
	Default Default
	// Get reads the attribute; false means unset.
	Get func(T) (any, bool)
	// Set assigns a raw stored value to the attribute.
	Set func(T, any) error
}

// StoredName returns the bin the attribute is written to.
func (a Attribute[T]) StoredName() string {
	if a.Stored != "" {
		return a.Stored
	}
	return a.Source
}

func (a Attribute[T]) validate() error {
	if a.Source == "" {
		return errors.NewValidationError("", "attribute source name is required")
	}
	if a.StoredName() == storagemodels.IDBin {
		return errors.NewValidationError(a.Source, fmt.Sprintf("stored name %q is reserved", storagemodels.IDBin))
	}
	if a.Get == nil || a.Set == nil {
		return errors.NewValidationError(a.Source, "attribute needs both Get and Set accessors")
	}
	return nil
}

var (
	attributeRegistry = make(map[reflect.Type]any)
	mu                sync.RWMutex
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register appends attributes to T's descriptor list in declaration order.
// Registering a Source that is already present replaces its descriptor in
// place. A stored name shared by two sources is rejected and the registry is
// left unchanged.
func Register[T any](attrs ...Attribute[T]) error {
	t := typeOf[T]()

	mu.Lock()
	defer mu.Unlock()

	var current []Attribute[T]
	if existing, ok := attributeRegistry[t]; ok {
		current = existing.([]Attribute[T])
	}
	next := make([]Attribute[T], len(current), len(current)+len(attrs))
	copy(next, current)

	for _, attr := range attrs {
		if err := attr.validate(); err != nil {
			return fmt.Errorf("register %v: %w", t, err)
		}

		replaced := false
		for i := range next {
			if next[i].Source == attr.Source {
				next[i] = attr
				replaced = true
				break
			}
		}
		if !replaced {
			next = append(next, attr)
		}

		if err := checkStoredNames(next); err != nil {
			return fmt.Errorf("register %v: %w", t, err)
		}
	}

	attributeRegistry[t] = next
	return nil
}

// MustRegister is like Register but panics on a configuration error. It is
// meant for init functions.
func MustRegister[T any](attrs ...Attribute[T]) {
	if err := Register(attrs...); err != nil {
		panic(err)
	}
}

// Lookup returns a copy of T's attributes, or nil if none are registered.
func Lookup[T any]() []Attribute[T] {
	mu.RLock()
	defer mu.RUnlock()

	existing, ok := attributeRegistry[typeOf[T]()]
	if !ok {
		return nil
	}
	attrs := existing.([]Attribute[T])
	out := make([]Attribute[T], len(attrs))
	copy(out, attrs)
	return out
}

// Unregister drops every attribute registered for T.
func Unregister[T any]() {
	mu.Lock()
	defer mu.Unlock()
	delete(attributeRegistry, typeOf[T]())
}

func checkStoredNames[T any](attrs []Attribute[T]) error {
	seen := make(map[string]string, len(attrs))
	for _, a := range attrs {
		stored := a.StoredName()
		if other, ok := seen[stored]; ok {
			return errors.NewValidationError(a.Source,
				fmt.Sprintf("stored name %q already used by %q", stored, other))
		}
		seen[stored] = a.Source
	}
	return nil
}
