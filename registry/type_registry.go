package registry

import (
	"fmt"
	"reflect"

	"github.com/suparena/recordstore/storagemodels"
)

// Factory constructs a fresh entity of type T carrying only the given id.
type Factory[T any] func(id storagemodels.ID) T

// factoryRegistry holds the mapping from an entity type to its factory.
var factoryRegistry = make(map[reflect.Type]any)

// RegisterFactory registers the factory used for T when a repository is built
// without an explicit one.
// If a factory is already registered for T, it panics to prevent accidental overrides.
func RegisterFactory[T any](fn Factory[T]) {
	t := typeOf[T]()

	mu.Lock()
	defer mu.Unlock()
	if _, exists := factoryRegistry[t]; exists {
		panic(fmt.Sprintf("type registry: factory for %v already registered", t))
	}
	factoryRegistry[t] = fn
}

// GetFactory returns the registered factory for T.
func GetFactory[T any]() (Factory[T], bool) {
	mu.RLock()
	defer mu.RUnlock()

	fn, ok := factoryRegistry[typeOf[T]()]
	if !ok {
		return nil, false
	}
	return fn.(Factory[T]), true
}

// UnregisterFactory removes T's factory.
func UnregisterFactory[T any]() {
	mu.Lock()
	defer mu.Unlock()
	delete(factoryRegistry, typeOf[T]())
}
