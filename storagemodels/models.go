/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// IDBin is the bin every record carries alongside its mapped fields.
const IDBin = "id"

// ID identifies a record within a set. It is either a string or an integer,
// supplied by the caller and never generated by the mapping layer.
type ID struct {
	str   string
	num   int64
	isInt bool
}

// StringID returns a string identifier.
func StringID(s string) ID {
	return ID{str: s}
}

// IntID returns an integer identifier.
func IntID(n int64) ID {
	return ID{num: n, isInt: true}
}

// IsInt reports whether the identifier is an integer.
func (id ID) IsInt() bool {
	return id.isInt
}

// IsZero reports whether the identifier is the empty string or zero.
// Such identifiers are treated as absent when reading records back.
func (id ID) IsZero() bool {
	if id.isInt {
		return id.num == 0
	}
	return id.str == ""
}

// Value returns the native value written into the id bin (string or int64).
func (id ID) Value() any {
	if id.isInt {
		return id.num
	}
	return id.str
}

// String renders the identifier. Integer and string identifiers with the same
// text render identically; use IsInt to tell them apart.
func (id ID) String() string {
	if id.isInt {
		return strconv.FormatInt(id.num, 10)
	}
	return id.str
}

// ParseID converts a raw id bin value into an ID. Stores that decode numbers as
// float64 or json.Number are accepted as long as the value is integral.
// Empty strings and zero are reported as absent.
func ParseID(v any) (ID, bool) {
	var id ID
	switch tv := v.(type) {
	case ID:
		id = tv
	case string:
		id = StringID(tv)
	case int:
		id = IntID(int64(tv))
	case int8:
		id = IntID(int64(tv))
	case int16:
		id = IntID(int64(tv))
	case int32:
		id = IntID(int64(tv))
	case int64:
		id = IntID(tv)
	case uint:
		if uint64(tv) > math.MaxInt64 {
			return ID{}, false
		}
		id = IntID(int64(tv))
	case uint8:
		id = IntID(int64(tv))
	case uint16:
		id = IntID(int64(tv))
	case uint32:
		id = IntID(int64(tv))
	case uint64:
		if tv > math.MaxInt64 {
			return ID{}, false
		}
		id = IntID(int64(tv))
	case float64:
		if tv != math.Trunc(tv) || math.Abs(tv) > math.MaxInt64 {
			return ID{}, false
		}
		id = IntID(int64(tv))
	case json.Number:
		n, err := tv.Int64()
		if err != nil {
			return ID{}, false
		}
		id = IntID(n)
	default:
		return ID{}, false
	}
	if id.IsZero() {
		return ID{}, false
	}
	return id, true
}

// Key addresses exactly one record: namespace and set are fixed per
// repository, the id varies per operation.
type Key struct {
	Namespace string
	Set       string
	ID        ID
}

// NewKey builds a Key.
func NewKey(namespace, set string, id ID) Key {
	return Key{Namespace: namespace, Set: set, ID: id}
}

func (k Key) String() string {
	return fmt.Sprintf("%s.%s.%s", k.Namespace, k.Set, k.ID)
}

// Record is the flat field map exchanged with the store.
type Record map[string]any

// Has reports whether the bin is present, even when its value is nil.
func (r Record) Has(bin string) bool {
	_, ok := r[bin]
	return ok
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// RecordExistsAction selects how a write treats an existing record.
type RecordExistsAction int

const (
	// Update creates the record or merges the given bins into it.
	Update RecordExistsAction = iota
	// UpdateOnly merges the given bins and fails if the record does not exist.
	UpdateOnly
	// Replace creates the record or overwrites all of its bins.
	Replace
	// CreateOnly fails if the record already exists.
	CreateOnly
)

func (a RecordExistsAction) String() string {
	switch a {
	case Update:
		return "update"
	case UpdateOnly:
		return "update_only"
	case Replace:
		return "replace"
	case CreateOnly:
		return "create_only"
	default:
		return fmt.Sprintf("RecordExistsAction(%d)", int(a))
	}
}

// WritePolicy configures a single Put.
type WritePolicy struct {
	Exists RecordExistsAction
}

// ActionOf returns the action of p, defaulting to Update for a nil policy.
func ActionOf(p *WritePolicy) RecordExistsAction {
	if p == nil {
		return Update
	}
	return p.Exists
}

// RecordMeta carries per-record metadata for a Put.
type RecordMeta struct {
	// TTL is the record lifetime; zero means it never expires.
	TTL time.Duration
}

// BatchStatus is the outcome of one key in a batch read.
type BatchStatus int

const (
	StatusOK BatchStatus = iota
	StatusNotFound
	StatusError
)

func (s BatchStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// BatchRecord is a per-key batch read result. Record is set only for StatusOK.
type BatchRecord struct {
	Key    Key
	Status BatchStatus
	Record Record
	Err    error
}
