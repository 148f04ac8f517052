/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package entity

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/go-openapi/strfmt"
)

// The As helpers convert raw bin values for use in Attribute.Set. Stores
// differ in how they decode numbers (int64, float64, json.Number), so the
// numeric helpers accept all of them.

// AsString converts a stored value to a string.
func AsString(v any) (string, error) {
	switch tv := v.(type) {
	case string:
		return tv, nil
	case []byte:
		return string(tv), nil
	case fmt.Stringer:
		return tv.String(), nil
	}
	return "", fmt.Errorf("cannot convert %T to string", v)
}

// AsInt64 converts a stored integral value to int64.
func AsInt64(v any) (int64, error) {
	switch tv := v.(type) {
	case int:
		return int64(tv), nil
	case int8:
		return int64(tv), nil
	case int16:
		return int64(tv), nil
	case int32:
		return int64(tv), nil
	case int64:
		return tv, nil
	case uint8:
		return int64(tv), nil
	case uint16:
		return int64(tv), nil
	case uint32:
		return int64(tv), nil
	case uint64:
		if tv > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", tv)
		}
		return int64(tv), nil
	case float32:
		return floatToInt(float64(tv))
	case float64:
		return floatToInt(tv)
	case json.Number:
		return tv.Int64()
	case string:
		return strconv.ParseInt(tv, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to int64", v)
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("value %v is not an integer", f)
	}
	return int64(f), nil
}

// AsFloat64 converts a stored numeric value to float64.
func AsFloat64(v any) (float64, error) {
	switch tv := v.(type) {
	case float64:
		return tv, nil
	case float32:
		return float64(tv), nil
	case json.Number:
		return tv.Float64()
	case string:
		return strconv.ParseFloat(tv, 64)
	}
	n, err := AsInt64(v)
	if err != nil {
		return 0, fmt.Errorf("cannot convert %T to float64", v)
	}
	return float64(n), nil
}

// AsBool converts a stored value to a bool. Stores without a boolean type
// hold it as 0/1.
func AsBool(v any) (bool, error) {
	if b, ok := v.(bool); ok {
		return b, nil
	}
	if s, ok := v.(string); ok {
		return strconv.ParseBool(s)
	}
	n, err := AsInt64(v)
	if err != nil {
		return false, fmt.Errorf("cannot convert %T to bool", v)
	}
	return n != 0, nil
}

// AsDateTime converts a stored value to a strfmt.DateTime. Strings are parsed
// with strfmt's accepted layouts, numbers are read as Unix milliseconds.
func AsDateTime(v any) (strfmt.DateTime, error) {
	switch tv := v.(type) {
	case strfmt.DateTime:
		return tv, nil
	case time.Time:
		return strfmt.DateTime(tv), nil
	case string:
		return strfmt.ParseDateTime(tv)
	}
	ms, err := AsInt64(v)
	if err != nil {
		return strfmt.DateTime{}, fmt.Errorf("cannot convert %T to date-time", v)
	}
	return strfmt.DateTime(time.UnixMilli(ms).UTC()), nil
}

// AsStringSlice converts a stored list to []string.
func AsStringSlice(v any) ([]string, error) {
	switch tv := v.(type) {
	case []string:
		return tv, nil
	case []any:
		out := make([]string, 0, len(tv))
		for i, item := range tv {
			s, err := AsString(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot convert %T to []string", v)
}
