// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package recordjson converts between record.Record and plain JSON-shaped
// Go values (map[string]any). record.Value is a closed sum type with no
// native JSON marshaling of its own, so every boundary that speaks JSON
// (the HTTP API, the message bus) shares this conversion instead of
// reimplementing it.
package recordjson

import (
	"fmt"
	"time"

	"github.com/sudaredd/data-platform-core/internal/record"
)

// ToJSON projects a record.Record into a plain map[string]any so it
// marshals as ordinary JSON. record.Value variants with no natural JSON
// representation (decimal, date, instant) become strings.
func ToJSON(rec record.Record) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = valueToJSON(v)
	}
	return out
}

func valueToJSON(v record.Value) any {
	switch v.Kind {
	case record.KindNull:
		return nil
	case record.KindString:
		return v.Str
	case record.KindInt32:
		return v.I32
	case record.KindInt64:
		return v.I64
	case record.KindDecimal:
		if v.Dec == nil {
			return nil
		}
		return v.Dec.String()
	case record.KindFloat64:
		return v.F64
	case record.KindDate:
		return v.Date.String()
	case record.KindInstant:
		return v.Instant.Format(time.RFC3339)
	case record.KindRecord:
		nested := make(map[string]any, len(v.Rec))
		for k, fv := range v.Rec {
			nested[k] = valueToJSON(fv)
		}
		return nested
	default:
		return nil
	}
}

// FromJSON converts a decoded JSON object (map[string]any, as
// goccy/go-json produces for a request body) into a record.Record.
// Numbers decode as float64; callers that need int32/int64/decimal
// precision must convert explicitly after the fact.
func FromJSON(m map[string]any) record.Record {
	out := make(record.Record, len(m))
	for k, v := range m {
		out[k] = jsonToValue(v)
	}
	return out
}

func jsonToValue(v any) record.Value {
	switch tv := v.(type) {
	case nil:
		return record.Null
	case string:
		return record.String(tv)
	case float64:
		return record.Float64(tv)
	case bool:
		if tv {
			return record.String("true")
		}
		return record.String("false")
	case map[string]any:
		return record.Nested(FromJSON(tv))
	default:
		return record.String(fmt.Sprintf("%v", tv))
	}
}

// Date parses a "YYYY-MM-DD" or RFC3339 string into a record.Date Value,
// for criteria fields the query engine expects as dates rather than strings.
func Date(s string) (record.Value, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return record.DateValue(record.DateFromTime(t, time.UTC)), nil
		}
	}
	return record.Value{}, fmt.Errorf("not a parseable date: %q", s)
}
