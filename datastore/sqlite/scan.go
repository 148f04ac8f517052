/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sqlite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/suparena/recordstore/storagemodels"
)

type row struct {
	kind int
	key  string
	bins string
}

// Scan streams the records of a set in id order. Pages are read with keyset
// pagination and fully buffered before delivery, so consumers may call back
// into the client while iterating.
func (c *Client) Scan(ctx context.Context, namespace, set string, opts *storagemodels.QueryOptions) <-chan storagemodels.ScanEvent {
	options := opts.StreamConfig()
	resultCh := make(chan storagemodels.ScanEvent, options.BufferSize)

	go func() {
		defer close(resultCh)

		tracker := storagemodels.NewProgressTracker(options.ProgressHandler)
		send := func(ev storagemodels.ScanEvent) bool {
			select {
			case <-ctx.Done():
				return false
			case resultCh <- ev:
				return true
			}
		}
		fail := func(err error) {
			send(storagemodels.ScanEvent{Err: err, Meta: tracker.Meta()})
		}

		if err := opts.Validate(); err != nil {
			fail(err)
			return
		}

		afterKind, afterKey := -1, ""
		delivered := 0
		for {
			if ctx.Err() != nil {
				return
			}

			page, err := c.pageWithRetry(ctx, namespace, set, afterKind, afterKey, options)
			if err != nil {
				if ctx.Err() == nil {
					fail(err)
				}
				return
			}
			tracker.Page()

			for _, r := range page {
				if opts.Limited(delivered) {
					break
				}
				rec, err := decodeBins(r.bins)
				if err != nil {
					fail(fmt.Errorf("failed to unmarshal record %s.%s: %w", namespace, set, err))
					return
				}
				if !opts.Matches(rec) {
					continue
				}
				if !send(storagemodels.ScanEvent{Record: opts.Project(rec), Meta: tracker.Item()}) {
					return
				}
				delivered++
			}
			tracker.Report(false)

			if len(page) < int(options.PageSize) || opts.Limited(delivered) {
				break
			}
			last := page[len(page)-1]
			afterKind, afterKey = last.kind, last.key
		}

		c.logger.Debug("scan complete",
			zap.String("namespace", namespace),
			zap.String("set", set),
			zap.Int("records", delivered))
		tracker.Report(true)
	}()

	return resultCh
}

func (c *Client) pageWithRetry(ctx context.Context, namespace, set string, afterKind int, afterKey string, options storagemodels.StreamOptions) ([]row, error) {
	var lastErr error
	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		page, err := c.page(ctx, namespace, set, afterKind, afterKey, options.PageSize)
		if err == nil {
			return page, nil
		}
		lastErr = err
		if !isBusy(err) {
			return nil, err
		}

		if attempt < options.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt+1) * options.RetryBackoff):
			}
		}
	}
	return nil, fmt.Errorf("scan page failed after %d retries: %w", options.MaxRetries, lastErr)
}

func (c *Client) page(ctx context.Context, namespace, set string, afterKind int, afterKey string, limit int32) ([]row, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id_kind, id_key, bins FROM records
		WHERE namespace = ? AND set_name = ?
		  AND (id_kind > ? OR (id_kind = ? AND id_key > ?))
		  AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY id_kind, id_key
		LIMIT ?
	`, namespace, set, afterKind, afterKind, afterKey, c.nowMillis(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var page []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.kind, &r.key, &r.bins); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		page = append(page, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return page, nil
}

// decodeBins unmarshals stored bins. Numbers come back as int64 when
// integral, float64 otherwise.
func decodeBins(data string) (storagemodels.Record, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()

	var rec storagemodels.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	for name, value := range rec {
		rec[name] = normalize(value)
	}
	return rec, nil
}

func normalize(v any) any {
	switch tv := v.(type) {
	case json.Number:
		if n, err := tv.Int64(); err == nil {
			return n
		}
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return tv.String()
	case map[string]any:
		for k, e := range tv {
			tv[k] = normalize(e)
		}
		return tv
	case []any:
		for i, e := range tv {
			tv[i] = normalize(e)
		}
		return tv
	}
	return v
}
