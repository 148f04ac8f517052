/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory implementation of datastore.Client for testing
package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/suparena/recordstore/errors"
	"github.com/suparena/recordstore/storagemodels"
)

type entry struct {
	bins    storagemodels.Record
	expires time.Time
}

// Client is an in-memory implementation of datastore.Client for testing
type Client struct {
	mu        sync.RWMutex
	data      map[storagemodels.Key]entry
	now       func() time.Time
	getError  error
	putError  error
	scanError error
	batchFail map[storagemodels.Key]error
	puts      int
	removes   int
}

// New creates a new in-memory Client
func New() *Client {
	return &Client{
		data:      make(map[storagemodels.Key]entry),
		now:       time.Now,
		batchFail: make(map[storagemodels.Key]error),
	}
}

// WithGetError makes Get operations return an error
func (m *Client) WithGetError(err error) *Client {
	m.getError = err
	return m
}

// WithPutError makes Put operations return an error
func (m *Client) WithPutError(err error) *Client {
	m.putError = err
	return m
}

// WithScanError makes Scan emit the records it has and then an error event
func (m *Client) WithScanError(err error) *Client {
	m.scanError = err
	return m
}

// WithBatchError makes BatchRead report an error status for key
func (m *Client) WithBatchError(key storagemodels.Key, err error) *Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batchFail[key] = err
	return m
}

// WithClock replaces the clock used for TTL expiry
func (m *Client) WithClock(now func() time.Time) *Client {
	m.now = now
	return m
}

// Get retrieves a record by key
func (m *Client) Get(ctx context.Context, key storagemodels.Key) (storagemodels.Record, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.lookup(key)
	if !ok {
		return nil, errors.NewNotFoundError(setName(key), key.ID.String())
	}
	return e.bins.Clone(), nil
}

// Put stores a record following the write policy
func (m *Client) Put(ctx context.Context, key storagemodels.Key, rec storagemodels.Record, meta *storagemodels.RecordMeta, policy *storagemodels.WritePolicy) error {
	if m.putError != nil {
		return m.putError
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.lookup(key)
	next := entry{bins: make(storagemodels.Record, len(rec))}

	switch storagemodels.ActionOf(policy) {
	case storagemodels.UpdateOnly:
		if !exists {
			return errors.NewNotFoundError(setName(key), key.ID.String())
		}
		next.bins = current.bins.Clone()
		next.expires = current.expires
	case storagemodels.CreateOnly:
		if exists {
			return errors.NewAlreadyExistsError(setName(key), key.ID.String())
		}
	case storagemodels.Update:
		if exists {
			next.bins = current.bins.Clone()
			next.expires = current.expires
		}
	}

	for k, v := range rec {
		next.bins[k] = v
	}
	if meta != nil && meta.TTL > 0 {
		next.expires = m.now().Add(meta.TTL)
	}

	m.data[key] = next
	m.puts++
	return nil
}

// Remove deletes a record by key
func (m *Client) Remove(ctx context.Context, key storagemodels.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(key); !ok {
		return errors.NewNotFoundError(setName(key), key.ID.String())
	}
	delete(m.data, key)
	m.removes++
	return nil
}

// Exists reports whether a live record is stored at key
func (m *Client) Exists(ctx context.Context, key storagemodels.Key) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.lookup(key)
	return ok, nil
}

// BatchRead reads every key, reporting a status per key
func (m *Client) BatchRead(ctx context.Context, keys []storagemodels.Key) ([]storagemodels.BatchRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	results := make([]storagemodels.BatchRecord, 0, len(keys))
	for _, key := range keys {
		result := storagemodels.BatchRecord{Key: key}
		if err, failed := m.batchFail[key]; failed {
			result.Status = storagemodels.StatusError
			result.Err = err
		} else if e, ok := m.lookup(key); ok {
			result.Status = storagemodels.StatusOK
			result.Record = e.bins.Clone()
		} else {
			result.Status = storagemodels.StatusNotFound
		}
		results = append(results, result)
	}
	return results, nil
}

// BatchRemove deletes every key, ignoring absent ones
func (m *Client) BatchRemove(ctx context.Context, keys []storagemodels.Key) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			delete(m.data, key)
			m.removes++
		}
	}
	return nil
}

// Scan streams the records of a set in id order
func (m *Client) Scan(ctx context.Context, namespace, set string, opts *storagemodels.QueryOptions) <-chan storagemodels.ScanEvent {
	config := opts.StreamConfig()
	resultChan := make(chan storagemodels.ScanEvent, config.BufferSize)

	// Snapshot so consumers may call back into the client
	m.mu.RLock()
	var records []storagemodels.Record
	for key, e := range m.data {
		if key.Namespace != namespace || key.Set != set || m.expired(e) {
			continue
		}
		records = append(records, e.bins.Clone())
	}
	scanErr := m.scanError
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return sortKey(records[i]) < sortKey(records[j])
	})

	go func() {
		defer close(resultChan)

		tracker := storagemodels.NewProgressTracker(config.ProgressHandler)
		send := func(ev storagemodels.ScanEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case resultChan <- ev:
				return true
			}
		}

		if err := opts.Validate(); err != nil {
			send(storagemodels.ScanEvent{Err: err, Meta: tracker.Meta()})
			return
		}

		tracker.Page()
		delivered := 0
		for _, rec := range records {
			if opts.Limited(delivered) {
				break
			}
			if !opts.Matches(rec) {
				continue
			}
			if !send(storagemodels.ScanEvent{Record: opts.Project(rec), Meta: tracker.Item()}) {
				return
			}
			delivered++
		}

		if scanErr != nil {
			send(storagemodels.ScanEvent{Err: scanErr, Meta: tracker.Meta()})
			return
		}
		tracker.Report(true)
	}()

	return resultChan
}

// Helper methods for testing

// SetRecord directly stores a record, bypassing write policies (for testing)
func (m *Client) SetRecord(key storagemodels.Key, rec storagemodels.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{bins: rec.Clone()}
}

// Record returns a copy of the stored record, if any (for testing)
func (m *Client) Record(key storagemodels.Key) (storagemodels.Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.lookup(key)
	return e.bins.Clone(), ok
}

// PutCount returns the number of successful Put calls
func (m *Client) PutCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.puts
}

// RemoveCount returns the number of removed records
func (m *Client) RemoveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.removes
}

// Count returns the number of stored records
func (m *Client) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data and resets the counters
func (m *Client) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[storagemodels.Key]entry)
	m.puts = 0
	m.removes = 0
}

func (m *Client) lookup(key storagemodels.Key) (entry, bool) {
	e, ok := m.data[key]
	if !ok || m.expired(e) {
		return entry{}, false
	}
	return e, true
}

func (m *Client) expired(e entry) bool {
	return !e.expires.IsZero() && !m.now().Before(e.expires)
}

func setName(key storagemodels.Key) string {
	return key.Namespace + "." + key.Set
}

func sortKey(rec storagemodels.Record) string {
	if id, ok := storagemodels.ParseID(rec[storagemodels.IDBin]); ok {
		return id.String()
	}
	return ""
}
