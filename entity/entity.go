/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"fmt"

	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/registry"
	"github.com/suparena/recordstore/storagemodels"
)

// Entity is implemented by every mapped type. Implementations are normally
// pointers to structs embedding Base.
type Entity interface {
	EntityID() storagemodels.ID
}

// Base carries the identifier of an entity. Embed it to satisfy Entity.
type Base struct {
	ID storagemodels.ID
}

// NewBase returns a Base for id.
func NewBase(id storagemodels.ID) Base {
	return Base{ID: id}
}

// EntityID returns the entity identifier.
func (b *Base) EntityID() storagemodels.ID {
	return b.ID
}

// Attributes is partial entity data keyed by in-memory attribute name.
type Attributes map[string]any

// ToRecord serializes e using the attributes registered for T. Unset values
// take their default when one is configured; a required attribute that is
// still unset fails with MissingRequiredFieldError. Unset optional attributes
// are written as nil so the record always holds one bin per attribute.
func ToRecord[T Entity](e T) (storagemodels.Record, error) {
	attrs := registry.Lookup[T]()
	rec := make(storagemodels.Record, len(attrs)+1)
	rec[storagemodels.IDBin] = e.EntityID().Value()

	for _, attr := range attrs {
		value, ok := attr.Get(e)
		if !ok && attr.Default.IsSet() {
			value = attr.Default.Resolve()
			ok = value != nil
		}
		if attr.Required && (!ok || value == nil) {
			return nil, errors.NewMissingRequiredFieldError(attr.Source)
		}
		if !ok {
			value = nil
		}
		rec[attr.StoredName()] = value
	}
	return rec, nil
}

// FromRecord reconstructs an entity from rec. Only bins present in rec are
// assigned; absent bins leave the value the factory produced. No defaults or
// required checks apply here.
func FromRecord[T Entity](rec storagemodels.Record, factory func(storagemodels.ID) T) (T, error) {
	var zero T
	if factory == nil {
		return zero, fmt.Errorf("instantiate: %w", errors.ErrNotImplemented)
	}

	raw := rec[storagemodels.IDBin]
	id, ok := storagemodels.ParseID(raw)
	if !ok {
		return zero, errors.NewMissingIDError(raw)
	}

	e := factory(id)
	for _, attr := range registry.Lookup[T]() {
		value, present := rec[attr.StoredName()]
		if !present {
			continue
		}
		if err := attr.Set(e, value); err != nil {
			return zero, errors.NewValidationError(attr.Source, err.Error())
		}
	}
	return e, nil
}

// ApplyAttributes assigns partial data to e by attribute name. Names that are
// not registered for T are skipped.
func ApplyAttributes[T Entity](e T, data Attributes) error {
	if len(data) == 0 {
		return nil
	}
	for _, attr := range registry.Lookup[T]() {
		value, ok := data[attr.Source]
		if !ok {
			continue
		}
		if err := attr.Set(e, value); err != nil {
			return errors.NewValidationError(attr.Source, err.Error())
		}
	}
	return nil
}

// ApplyDefaults assigns the resolved default to every unset attribute of e
// that has one.
func ApplyDefaults[T Entity](e T) error {
	for _, attr := range registry.Lookup[T]() {
		if !attr.Default.IsSet() {
			continue
		}
		if _, ok := attr.Get(e); ok {
			continue
		}
		value := attr.Default.Resolve()
		if value == nil {
			continue
		}
		if err := attr.Set(e, value); err != nil {
			return errors.NewValidationError(attr.Source, err.Error())
		}
	}
	return nil
}

// StoredFields maps partial data onto bins, keeping only attributes registered
// for T. The result is empty when nothing is recognized.
func StoredFields[T Entity](data Attributes) storagemodels.Record {
	rec := make(storagemodels.Record, len(data))
	for _, attr := range registry.Lookup[T]() {
		if value, ok := data[attr.Source]; ok {
			rec[attr.StoredName()] = value
		}
	}
	return rec
}
