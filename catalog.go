/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/suparena/recordstore/entity"
)

// TypedRepositories holds the repositories of one entity type T, keyed by
// "namespace.set".
type TypedRepositories[T entity.Entity] struct {
	mu    sync.RWMutex
	repos map[string]*Repository[T]
}

// NewTypedRepositories creates a new TypedRepositories for type T
func NewTypedRepositories[T entity.Entity]() *TypedRepositories[T] {
	return &TypedRepositories[T]{
		repos: make(map[string]*Repository[T]),
	}
}

func repositoryKey(namespace, set string) string {
	return namespace + "." + set
}

// Register adds a repository under its namespace and set
func (tr *TypedRepositories[T]) Register(repo *Repository[T]) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	key := repositoryKey(repo.Namespace(), repo.Set())
	if _, exists := tr.repos[key]; exists {
		return fmt.Errorf("repository %q already registered", key)
	}

	tr.repos[key] = repo
	return nil
}

// Get retrieves the repository for namespace and set
func (tr *TypedRepositories[T]) Get(namespace, set string) (*Repository[T], error) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	key := repositoryKey(namespace, set)
	repo, exists := tr.repos[key]
	if !exists {
		return nil, fmt.Errorf("repository %q not found", key)
	}

	return repo, nil
}

// Remove deletes the repository for namespace and set
func (tr *TypedRepositories[T]) Remove(namespace, set string) error {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	key := repositoryKey(namespace, set)
	if _, exists := tr.repos[key]; !exists {
		return fmt.Errorf("repository %q not found", key)
	}

	delete(tr.repos, key)
	return nil
}

// List returns all registered "namespace.set" keys, sorted
func (tr *TypedRepositories[T]) List() []string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	keys := make([]string, 0, len(tr.repos))
	for k := range tr.repos {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Catalog manages TypedRepositories instances for different entity types
type Catalog struct {
	mu    sync.Mutex
	types map[reflect.Type]any
}

// NewCatalog creates a new Catalog
func NewCatalog() *Catalog {
	return &Catalog{
		types: make(map[reflect.Type]any),
	}
}

// Repositories returns the TypedRepositories for T, creating it if necessary
func Repositories[T entity.Entity](c *Catalog) *TypedRepositories[T] {
	c.mu.Lock()
	defer c.mu.Unlock()

	typ := reflect.TypeOf((*T)(nil)).Elem()

	if repos, exists := c.types[typ]; exists {
		return repos.(*TypedRepositories[T])
	}

	repos := NewTypedRepositories[T]()
	c.types[typ] = repos
	return repos
}

// RegisterRepository is a convenience function to register a repository for type T
func RegisterRepository[T entity.Entity](c *Catalog, repo *Repository[T]) error {
	return Repositories[T](c).Register(repo)
}

// GetRepository is a convenience function to get a repository for type T
func GetRepository[T entity.Entity](c *Catalog, namespace, set string) (*Repository[T], error) {
	return Repositories[T](c).Get(namespace, set)
}

// RemoveRepository is a convenience function to remove a repository for type T
func RemoveRepository[T entity.Entity](c *Catalog, namespace, set string) error {
	return Repositories[T](c).Remove(namespace, set)
}

// ListRepositories is a convenience function to list all repositories for type T
func ListRepositories[T entity.Entity](c *Catalog) []string {
	return Repositories[T](c).List()
}
