/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package recordstore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/suparena/recordstore/datastore"
	"github.com/suparena/recordstore/entity"
	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/registry"
	"github.com/suparena/recordstore/storagemodels"
)

// Repository persists entities of type T in one (namespace, set) of a store.
// It holds no state besides its configuration; every call is independent and
// no locking is done, so concurrent GetOrCreate calls for one id may both create.
type Repository[T entity.Entity] struct {
	client    datastore.Client
	namespace string
	set       string
	factory   func(storagemodels.ID) T
	meta      *storagemodels.RecordMeta
	logger    *zap.Logger
}

// Option configures a Repository
type Option[T entity.Entity] func(*Repository[T])

// WithFactory sets the constructor used to build entities. Without it the
// factory registered for T is used.
func WithFactory[T entity.Entity](fn registry.Factory[T]) Option[T] {
	return func(r *Repository[T]) {
		r.factory = fn
	}
}

// WithLogger sets the logger
func WithLogger[T entity.Entity](logger *zap.Logger) Option[T] {
	return func(r *Repository[T]) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRecordMeta sets the metadata (such as TTL) written with every Save
func WithRecordMeta[T entity.Entity](meta storagemodels.RecordMeta) Option[T] {
	return func(r *Repository[T]) {
		r.meta = &meta
	}
}

// NewRepository creates a Repository for T addressing namespace and set through client.
func NewRepository[T entity.Entity](client datastore.Client, namespace, set string, opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		client:    client,
		namespace: namespace,
		set:       set,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(zap.String("namespace", namespace), zap.String("set", set))
	return r
}

// Client returns the underlying store client
func (r *Repository[T]) Client() datastore.Client {
	return r.client
}

// Namespace returns the namespace records are stored in
func (r *Repository[T]) Namespace() string {
	return r.namespace
}

// Set returns the set records are stored in
func (r *Repository[T]) Set() string {
	return r.set
}

// Key builds the key of id in this repository's namespace and set
func (r *Repository[T]) Key(id storagemodels.ID) storagemodels.Key {
	return storagemodels.NewKey(r.namespace, r.set, id)
}

// Get fetches the entity stored under id. The boolean is false when no
// record exists.
func (r *Repository[T]) Get(ctx context.Context, id storagemodels.ID) (T, bool, error) {
	var zero T
	key := r.Key(id)

	rec, err := r.client.Get(ctx, key)
	if err != nil {
		if errors.IsNotFound(err) {
			r.logger.Debug("record not found", zap.Stringer("key", key))
			return zero, false, nil
		}
		return zero, false, fmt.Errorf("get %s: %w", key, err)
	}

	e, err := r.instantiate(withID(rec, id))
	if err != nil {
		return zero, false, fmt.Errorf("get %s: %w", key, err)
	}
	return e, true, nil
}

// Exists reports whether a record is stored under id
func (r *Repository[T]) Exists(ctx context.Context, id storagemodels.ID) (bool, error) {
	key := r.Key(id)
	ok, err := r.client.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return ok, nil
}

// Save serializes e and upserts it. Required-field errors are returned before
// any store call.
func (r *Repository[T]) Save(ctx context.Context, e T) error {
	id := e.EntityID()
	if id.IsZero() {
		return fmt.Errorf("save: %w", errors.NewMissingIDError(id.Value()))
	}
	key := r.Key(id)

	rec, err := entity.ToRecord(e)
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}

	if err := r.client.Put(ctx, key, rec, r.meta, &storagemodels.WritePolicy{Exists: storagemodels.Update}); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	r.logger.Debug("record saved", zap.Stringer("key", key), zap.Int("bins", len(rec)))
	return nil
}

// GetOrCreate returns the stored entity for id unchanged. When none exists it
// builds one from attrs, fills unset attributes with their defaults and saves
// it exactly once.
func (r *Repository[T]) GetOrCreate(ctx context.Context, id storagemodels.ID, attrs entity.Attributes) (T, error) {
	var zero T

	existing, found, err := r.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if found {
		return existing, nil
	}

	factory, err := r.resolveFactory()
	if err != nil {
		return zero, err
	}
	e := factory(id)
	if err := entity.ApplyAttributes(e, attrs); err != nil {
		return zero, fmt.Errorf("create %s: %w", r.Key(id), err)
	}
	if err := entity.ApplyDefaults(e); err != nil {
		return zero, fmt.Errorf("create %s: %w", r.Key(id), err)
	}
	if err := r.Save(ctx, e); err != nil {
		return zero, err
	}
	r.logger.Debug("record created", zap.Stringer("key", r.Key(id)))
	return e, nil
}

// Update writes only the bins mapped from the recognized attributes in attrs.
// Unknown attribute names are skipped; when nothing is recognized no store
// call is made. The record must already exist.
func (r *Repository[T]) Update(ctx context.Context, id storagemodels.ID, attrs entity.Attributes) error {
	key := r.Key(id)

	fields := entity.StoredFields[T](attrs)
	if len(fields) == 0 {
		r.logger.Debug("update skipped, no mapped attributes", zap.Stringer("key", key))
		return nil
	}

	if err := r.client.Put(ctx, key, fields, nil, &storagemodels.WritePolicy{Exists: storagemodels.UpdateOnly}); err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	return nil
}

// Delete removes the record stored under id. Deleting an absent record is a no-op.
func (r *Repository[T]) Delete(ctx context.Context, id storagemodels.ID) error {
	key := r.Key(id)

	ok, err := r.client.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	if !ok {
		return nil
	}

	if err := r.client.Remove(ctx, key); err != nil && !errors.IsNotFound(err) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// GetMany fetches the entities stored under ids. Ids that are not found, or
// whose read failed, are left out of the result.
func (r *Repository[T]) GetMany(ctx context.Context, ids []storagemodels.ID) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	results, err := r.client.BatchRead(ctx, r.keys(ids))
	if err != nil {
		return nil, fmt.Errorf("batch read %s.%s: %w", r.namespace, r.set, err)
	}

	entities := make([]T, 0, len(results))
	for _, result := range results {
		switch {
		case result.Status == storagemodels.StatusOK && result.Record != nil:
		case result.Status == storagemodels.StatusError:
			r.logger.Warn("batch read entry failed", zap.Stringer("key", result.Key), zap.Error(result.Err))
			continue
		default:
			continue
		}

		e, err := r.instantiate(withID(result.Record, result.Key.ID))
		if err != nil {
			return nil, fmt.Errorf("batch read %s: %w", result.Key, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// DeleteMany removes the records stored under ids
func (r *Repository[T]) DeleteMany(ctx context.Context, ids []storagemodels.ID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.client.BatchRemove(ctx, r.keys(ids)); err != nil {
		return fmt.Errorf("batch remove %s.%s: %w", r.namespace, r.set, err)
	}
	return nil
}

// GetAll scans the set and returns every matching entity in store order. If
// the scan fails, the partial result is discarded.
func (r *Repository[T]) GetAll(ctx context.Context, opts *storagemodels.QueryOptions) ([]T, error) {
	var entities []T
	err := r.Each(ctx, opts, func(e T) error {
		entities = append(entities, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// Each scans the set and calls fn for every matching entity. It stops at the
// first error from the scan, from reconstruction or from fn.
func (r *Repository[T]) Each(ctx context.Context, opts *storagemodels.QueryOptions, fn func(T) error) error {
	scanCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	count := 0
	for ev := range r.client.Scan(scanCtx, r.namespace, r.set, opts) {
		if ev.Err != nil {
			return errors.NewStreamError(r.namespace, r.set, ev.Err)
		}

		e, err := r.instantiate(ev.Record)
		if err != nil {
			return fmt.Errorf("scan %s.%s: %w", r.namespace, r.set, err)
		}
		if err := fn(e); err != nil {
			return err
		}
		count++
	}

	if err := scanCtx.Err(); err != nil {
		return fmt.Errorf("scan %s.%s: %w", r.namespace, r.set, err)
	}
	r.logger.Debug("scan complete", zap.Int("records", count))
	return nil
}

func (r *Repository[T]) resolveFactory() (func(storagemodels.ID) T, error) {
	if r.factory != nil {
		return r.factory, nil
	}
	if fn, ok := registry.GetFactory[T](); ok {
		return fn, nil
	}
	return nil, fmt.Errorf("instantiate %T: %w", *new(T), errors.ErrNotImplemented)
}

func (r *Repository[T]) instantiate(rec storagemodels.Record) (T, error) {
	factory, err := r.resolveFactory()
	if err != nil {
		var zero T
		return zero, err
	}
	return entity.FromRecord(rec, factory)
}

func (r *Repository[T]) keys(ids []storagemodels.ID) []storagemodels.Key {
	keys := make([]storagemodels.Key, len(ids))
	for i, id := range ids {
		keys[i] = r.Key(id)
	}
	return keys
}

// withID fills the id bin from the key when the store does not return it.
func withID(rec storagemodels.Record, id storagemodels.ID) storagemodels.Record {
	if rec.Has(storagemodels.IDBin) {
		return rec
	}
	out := rec.Clone()
	if out == nil {
		out = make(storagemodels.Record, 1)
	}
	out[storagemodels.IDBin] = id.Value()
	return out
}
