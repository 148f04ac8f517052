/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
)

type widget struct {
	id    storagemodels.ID
	name  string
	color string
}

func nameAttr(stored string) Attribute[*widget] {
	return Attribute[*widget]{
		Source: "name",
		Stored: stored,
		Get:    func(w *widget) (any, bool) { return w.name, w.name != "" },
		Set: func(w *widget, v any) error {
			w.name, _ = v.(string)
			return nil
		},
	}
}

func colorAttr(stored string) Attribute[*widget] {
	return Attribute[*widget]{
		Source:  "color",
		Stored:  stored,
		Default: Constant("red"),
		Get:     func(w *widget) (any, bool) { return w.color, w.color != "" },
		Set: func(w *widget, v any) error {
			w.color, _ = v.(string)
			return nil
		},
	}
}

func TestDefault(t *testing.T) {
	t.Run("Unset", func(t *testing.T) {
		var d Default
		assert.False(t, d.IsSet())
		assert.Nil(t, d.Resolve())
		assert.False(t, Producer(nil).IsSet())
	})

	t.Run("Constant", func(t *testing.T) {
		d := Constant(0)
		assert.True(t, d.IsSet())
		assert.Equal(t, 0, d.Resolve())
		assert.True(t, Constant(nil).IsSet())
	})

	t.Run("ProducerInvokedPerResolve", func(t *testing.T) {
		calls := 0
		d := Producer(func() any {
			calls++
			return calls
		})
		assert.True(t, d.IsSet())
		assert.Equal(t, 1, d.Resolve())
		assert.Equal(t, 2, d.Resolve())
	})
}

func TestRegister(t *testing.T) {
	t.Cleanup(Unregister[*widget])

	t.Run("DeclarationOrder", func(t *testing.T) {
		Unregister[*widget]()
		require.NoError(t, Register(nameAttr("nm"), colorAttr("")))

		attrs := Lookup[*widget]()
		require.Len(t, attrs, 2)
		assert.Equal(t, "nm", attrs[0].StoredName())
		assert.Equal(t, "color", attrs[1].StoredName())
	})

	t.Run("ReRegistrationOverwrites", func(t *testing.T) {
		Unregister[*widget]()
		require.NoError(t, Register(nameAttr("nm"), colorAttr("")))
		require.NoError(t, Register(nameAttr("title")))

		attrs := Lookup[*widget]()
		require.Len(t, attrs, 2)
		assert.Equal(t, "name", attrs[0].Source)
		assert.Equal(t, "title", attrs[0].StoredName())
	})

	t.Run("StoredNameCollision", func(t *testing.T) {
		Unregister[*widget]()
		require.NoError(t, Register(nameAttr("nm")))

		err := Register(colorAttr("nm"))
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
		assert.Len(t, Lookup[*widget](), 1, "registry must be left unchanged")
	})

	t.Run("ReservedIDBin", func(t *testing.T) {
		Unregister[*widget]()
		err := Register(nameAttr("id"))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("MissingAccessors", func(t *testing.T) {
		Unregister[*widget]()
		err := Register(Attribute[*widget]{Source: "name"})
		assert.True(t, errors.IsValidationError(err))

		assert.Panics(t, func() {
			MustRegister(Attribute[*widget]{})
		})
	})

	t.Run("LookupReturnsCopy", func(t *testing.T) {
		Unregister[*widget]()
		require.NoError(t, Register(nameAttr("nm")))

		attrs := Lookup[*widget]()
		attrs[0].Stored = "changed"
		assert.Equal(t, "nm", Lookup[*widget]()[0].StoredName())
	})

	t.Run("UnknownType", func(t *testing.T) {
		assert.Empty(t, Lookup[*struct{ X int }]())
	})
}

func TestFactoryRegistry(t *testing.T) {
	t.Cleanup(UnregisterFactory[*widget])

	_, ok := GetFactory[*widget]()
	assert.False(t, ok)

	RegisterFactory[*widget](func(id storagemodels.ID) *widget {
		return &widget{id: id}
	})

	fn, ok := GetFactory[*widget]()
	require.True(t, ok)
	assert.Equal(t, storagemodels.StringID("w1"), fn(storagemodels.StringID("w1")).id)

	assert.Panics(t, func() {
		RegisterFactory[*widget](func(id storagemodels.ID) *widget { return nil })
	})
}
