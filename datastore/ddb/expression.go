/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/recordstore/storagemodels"
)

type expression struct {
	update string
	filter string
	names  map[string]string
	values map[string]types.AttributeValue
}

func newExpression() *expression {
	return &expression{
		names:  make(map[string]string),
		values: make(map[string]types.AttributeValue),
	}
}

func (e *expression) name(field string) string {
	placeholder := fmt.Sprintf("#f%d", len(e.names))
	e.names[placeholder] = field
	return placeholder
}

func (e *expression) value(v any) (string, error) {
	av, err := marshalValue(v)
	if err != nil {
		return "", err
	}
	placeholder := fmt.Sprintf(":v%d", len(e.values))
	e.values[placeholder] = av
	return placeholder, nil
}

// compact drops empty placeholder maps, which DynamoDB rejects.
func (e *expression) compact() *expression {
	if len(e.names) == 0 {
		e.names = nil
	}
	if len(e.values) == 0 {
		e.values = nil
	}
	return e
}

// buildUpdateExpression transforms a map of field->value into a
// "SET #f0 = :v0 ... REMOVE #f1" expression. Fields are visited in sorted
// order so the expression is deterministic; nil values are removed.
func buildUpdateExpression(updates map[string]any) (*expression, error) {
	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	expr := newExpression()
	var setClauses, removeClauses []string
	for _, field := range fields {
		val := updates[field]
		placeholderName := expr.name(field)
		if val == nil {
			removeClauses = append(removeClauses, placeholderName)
			continue
		}
		placeholderValue, err := expr.value(val)
		if err != nil {
			return nil, fmt.Errorf("unhandled update value for field '%s': %w", field, err)
		}
		setClauses = append(setClauses, placeholderName+" = "+placeholderValue)
	}

	var parts []string
	if len(setClauses) > 0 {
		parts = append(parts, "SET "+strings.Join(setClauses, ", "))
	}
	if len(removeClauses) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(removeClauses, ", "))
	}
	expr.update = strings.Join(parts, " ")
	return expr.compact(), nil
}

// buildFilterExpression ANDs the filters into a FilterExpression. A filter
// never matches an item missing the attribute, so "<>" is guarded with
// attribute_exists.
func buildFilterExpression(filters []storagemodels.Filter) (*expression, error) {
	expr := newExpression()
	clauses := make([]string, 0, len(filters))

	for _, f := range filters {
		field := expr.name(f.Field)
		val, err := expr.value(f.Value)
		if err != nil {
			return nil, fmt.Errorf("filter on %q: %w", f.Field, err)
		}

		var clause string
		switch f.Op {
		case storagemodels.OpBeginsWith:
			clause = fmt.Sprintf("begins_with(%s, %s)", field, val)
		case storagemodels.OpBetween:
			upper, err := expr.value(f.Upper)
			if err != nil {
				return nil, fmt.Errorf("filter on %q: %w", f.Field, err)
			}
			clause = fmt.Sprintf("%s BETWEEN %s AND %s", field, val, upper)
		case storagemodels.OpNotEqual:
			clause = fmt.Sprintf("(attribute_exists(%s) AND %s <> %s)", field, field, val)
		case storagemodels.OpEqual, storagemodels.OpLessThan, storagemodels.OpLessOrEqual,
			storagemodels.OpGreaterThan, storagemodels.OpGreaterOrEqual:
			clause = fmt.Sprintf("%s %s %s", field, f.Op, val)
		default:
			return nil, fmt.Errorf("unsupported operator %q on %q", f.Op, f.Field)
		}
		clauses = append(clauses, clause)
	}

	expr.filter = strings.Join(clauses, " AND ")
	return expr, nil
}

// buildProjection adds a ProjectionExpression for bins to expr. The id and
// TTL attributes are always projected.
func buildProjection(expr *expression, bins []string) string {
	if len(bins) == 0 {
		return ""
	}
	seen := map[string]bool{storagemodels.IDBin: true, TTLAttribute: true}
	parts := []string{expr.name(storagemodels.IDBin), expr.name(TTLAttribute)}
	for _, bin := range bins {
		if seen[bin] {
			continue
		}
		seen[bin] = true
		parts = append(parts, expr.name(bin))
	}
	return strings.Join(parts, ", ")
}
