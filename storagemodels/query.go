/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Operator is a filter comparison.
type Operator string

const (
	OpEqual          Operator = "="
	OpNotEqual       Operator = "<>"
	OpLessThan       Operator = "<"
	OpLessOrEqual    Operator = "<="
	OpGreaterThan    Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpBeginsWith     Operator = "begins_with"
	OpBetween        Operator = "BETWEEN"
)

// Filter is a predicate on a single bin. Upper is only used by OpBetween.
// A filter never matches a record that lacks the bin.
type Filter struct {
	Field string
	Op    Operator
	Value any
	Upper any
}

// Match evaluates the filter against a record.
func (f Filter) Match(rec Record) bool {
	v, ok := rec[f.Field]
	if !ok || v == nil {
		return false
	}

	switch f.Op {
	case OpEqual:
		return equalValues(v, f.Value)
	case OpNotEqual:
		return !equalValues(v, f.Value)
	case OpBeginsWith:
		s, ok1 := v.(string)
		p, ok2 := f.Value.(string)
		return ok1 && ok2 && strings.HasPrefix(s, p)
	case OpBetween:
		lo, ok1 := compareValues(v, f.Value)
		hi, ok2 := compareValues(v, f.Upper)
		return ok1 && ok2 && lo >= 0 && hi <= 0
	}

	c, ok := compareValues(v, f.Value)
	if !ok {
		return false
	}
	switch f.Op {
	case OpLessThan:
		return c < 0
	case OpLessOrEqual:
		return c <= 0
	case OpGreaterThan:
		return c > 0
	case OpGreaterOrEqual:
		return c >= 0
	}
	return false
}

func (f Filter) validate() error {
	if f.Field == "" {
		return fmt.Errorf("filter field is required")
	}
	switch f.Op {
	case OpEqual, OpNotEqual, OpLessThan, OpLessOrEqual, OpGreaterThan, OpGreaterOrEqual:
	case OpBeginsWith:
		if _, ok := f.Value.(string); !ok {
			return fmt.Errorf("begins_with on %q needs a string prefix", f.Field)
		}
	case OpBetween:
		if f.Upper == nil {
			return fmt.Errorf("BETWEEN on %q needs an upper bound", f.Field)
		}
	default:
		return fmt.Errorf("unsupported operator %q on %q", f.Op, f.Field)
	}
	if f.Value == nil {
		return fmt.Errorf("filter on %q needs a value", f.Field)
	}
	return nil
}

// QueryOptions narrows a scan. The zero value (or nil) scans the whole set.
type QueryOptions struct {
	// Filters are ANDed together.
	Filters []Filter
	// Bins limits the returned bins; the id bin is always returned.
	Bins []string
	// MaxRecords stops the scan after that many matches; zero means no limit.
	MaxRecords int
	// Stream tunes delivery; see DefaultStreamOptions.
	Stream StreamOptions
}

// NewQuery returns query options with default stream settings.
func NewQuery() *QueryOptions {
	return &QueryOptions{Stream: DefaultStreamOptions()}
}

// Where adds a filter
func (q *QueryOptions) Where(field string, op Operator, value any) *QueryOptions {
	q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	return q
}

// WhereEqual adds an equality filter
func (q *QueryOptions) WhereEqual(field string, value any) *QueryOptions {
	return q.Where(field, OpEqual, value)
}

// WhereBeginsWith adds a string prefix filter
func (q *QueryOptions) WhereBeginsWith(field, prefix string) *QueryOptions {
	return q.Where(field, OpBeginsWith, prefix)
}

// WhereBetween adds an inclusive range filter
func (q *QueryOptions) WhereBetween(field string, lower, upper any) *QueryOptions {
	q.Filters = append(q.Filters, Filter{Field: field, Op: OpBetween, Value: lower, Upper: upper})
	return q
}

// Select restricts the returned bins
func (q *QueryOptions) Select(bins ...string) *QueryOptions {
	q.Bins = append(q.Bins, bins...)
	return q
}

// Limit caps the number of returned records
func (q *QueryOptions) Limit(n int) *QueryOptions {
	q.MaxRecords = n
	return q
}

// WithStreamOptions applies stream options on top of the current settings
func (q *QueryOptions) WithStreamOptions(opts ...StreamOption) *QueryOptions {
	if q.Stream.BufferSize == 0 && q.Stream.PageSize == 0 {
		handler := q.Stream.ProgressHandler
		q.Stream = DefaultStreamOptions()
		q.Stream.ProgressHandler = handler
	}
	for _, opt := range opts {
		opt(&q.Stream)
	}
	return q
}

// Validate checks every filter.
func (q *QueryOptions) Validate() error {
	if q == nil {
		return nil
	}
	if q.MaxRecords < 0 {
		return fmt.Errorf("max records must not be negative, got %d", q.MaxRecords)
	}
	for _, f := range q.Filters {
		if err := f.validate(); err != nil {
			return err
		}
	}
	return nil
}

// Matches reports whether rec passes all filters. A nil receiver matches everything.
func (q *QueryOptions) Matches(rec Record) bool {
	if q == nil {
		return true
	}
	for _, f := range q.Filters {
		if !f.Match(rec) {
			return false
		}
	}
	return true
}

// Project applies the bin selection to rec, keeping the id bin.
func (q *QueryOptions) Project(rec Record) Record {
	if q == nil || len(q.Bins) == 0 {
		return rec
	}
	out := make(Record, len(q.Bins)+1)
	if v, ok := rec[IDBin]; ok {
		out[IDBin] = v
	}
	for _, b := range q.Bins {
		if v, ok := rec[b]; ok {
			out[b] = v
		}
	}
	return out
}

// Limited reports whether count has reached MaxRecords.
func (q *QueryOptions) Limited(count int) bool {
	return q != nil && q.MaxRecords > 0 && count >= q.MaxRecords
}

// StreamConfig returns the stream options with defaults filled in.
func (q *QueryOptions) StreamConfig() StreamOptions {
	defaults := DefaultStreamOptions()
	if q == nil {
		return defaults
	}
	opts := q.Stream
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaults.BufferSize
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaults.PageSize
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryBackoff <= 0 {
		opts.RetryBackoff = defaults.RetryBackoff
	}
	return opts
}

func equalValues(a, b any) bool {
	if c, ok := compareValues(a, b); ok {
		return c == 0
	}
	return reflect.DeepEqual(a, b)
}

// compareValues orders numbers numerically and strings lexically. Other
// combinations are not comparable.
func compareValues(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, ok1 := a.(string)
	sb, ok2 := b.(string)
	if ok1 && ok2 {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
