/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recordstore/storagemodels"
)

// toItem marshals the bins of rec. Nil bins and client-owned attribute names
// are skipped.
func toItem(rec storagemodels.Record) (map[string]types.AttributeValue, error) {
	item := make(map[string]types.AttributeValue, len(rec)+3)
	for name, value := range rec {
		if value == nil || reservedAttribute(name) {
			continue
		}
		av, err := marshalValue(value)
		if err != nil {
			return nil, fmt.Errorf("bin %q: %w", name, err)
		}
		item[name] = av
	}
	return item, nil
}

// fromItem unmarshals an item into bins, dropping the key and TTL attributes.
// Numbers come back as int64 when integral, float64 otherwise.
func fromItem(item map[string]types.AttributeValue) (storagemodels.Record, error) {
	decoder := attributevalue.NewDecoder(func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})

	rec := make(storagemodels.Record, len(item))
	for name, av := range item {
		if reservedAttribute(name) {
			continue
		}
		var value any
		if err := decoder.Decode(av, &value); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", name, err)
		}
		rec[name] = normalize(value)
	}
	return rec, nil
}

func marshalValue(v any) (types.AttributeValue, error) {
	if av, ok := v.(types.AttributeValue); ok {
		return av, nil
	}
	return attributevalue.Marshal(v)
}

func normalize(v any) any {
	switch tv := v.(type) {
	case attributevalue.Number:
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
