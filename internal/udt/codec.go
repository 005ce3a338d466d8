// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package udt implements the bidirectional mapping between generic record
// maps and driver-native UDT values, including nested UDTs and type
// coercion (spec §4.3). The driver's native UDT representation is
// map[string]any: gocql marshals a Go map[string]any into a UDT column
// when the column's declared type is a user-defined type, and unmarshals a
// UDT column back into map[string]any on read — see
// other_examples/607c764c_axonops-cqlai-node for the formatUDTMap
// convention this codec's two directions mirror.
package udt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/store"
	"gopkg.in/inf.v0"
)

// Codec converts between record.Record and the driver's native UDT
// representation (map[string]any), recursively for nested UDTs.
type Codec struct {
	session store.Session
	cache   *metadataCache
}

// NewCodec builds a Codec backed by session, caching keyspace metadata for
// metadataTTL (zero uses a 5 minute default).
func NewCodec(session store.Session, metadataTTL time.Duration) *Codec {
	return &Codec{session: session, cache: newMetadataCache(metadataTTL)}
}

// TypeNamer resolves the declared CQL UDT type name for a nested field.
// TenantConfig.TypeNameFor implements this; tests can supply a literal map.
type TypeNamer interface {
	TypeNameFor(field string) string
}

// RecordToUDT converts rec into the driver-native map[string]any for the
// UDT named typeName in keyspace, recursing into nested records (spec
// §4.3 "record -> udt"). Fails with ErrMetadataMissing if the UDT is not
// declared in the keyspace.
func (c *Codec) RecordToUDT(ctx context.Context, keyspace, typeName string, rec record.Record, names TypeNamer) (map[string]any, error) {
	md, err := c.cache.get(ctx, c.session, keyspace)
	if err != nil {
		return nil, fmt.Errorf("udt: fetch keyspace metadata: %w", err)
	}
	if _, ok := md.UserTypes[typeName]; !ok {
		return nil, fmt.Errorf("%w: keyspace=%s type=%s", ErrMetadataMissing, keyspace, typeName)
	}

	out := make(map[string]any, len(rec))
	for field, v := range rec {
		converted, skip, err := c.coerceOut(ctx, keyspace, field, v, names)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
		}
		out[field] = converted
	}
	return out, nil
}

// coerceOut applies the record->udt coercion table in spec §4.3.
func (c *Codec) coerceOut(ctx context.Context, keyspace, field string, v record.Value, names TypeNamer) (any, bool, error) {
	switch v.Kind {
	case record.KindNull:
		return nil, true, nil // null fields are left unset; driver writes null
	case record.KindDecimal:
		return v.Dec, false, nil
	case record.KindFloat64, record.KindInt32, record.KindInt64:
		dec, _ := v.AsDecimal()
		return dec, false, nil
	case record.KindInstant:
		return v.Instant, false, nil
	case record.KindString:
		if strings.Contains(strings.ToLower(field), "time") {
			if t, err := time.Parse(time.RFC3339, v.Str); err == nil {
				return t, false, nil
			}
			logging.Warn().Str("field", field).Str("value", v.Str).Msg("udt: field name hints a timestamp but value did not parse as RFC3339, storing as string")
		}
		return v.Str, false, nil
	case record.KindRecord:
		typeName := field
		if names != nil {
			typeName = names.TypeNameFor(field)
		}
		nested, err := c.RecordToUDT(ctx, keyspace, typeName, v.Rec, names)
		if err != nil {
			return nil, false, err
		}
		return nested, false, nil
	default:
		logging.Warn().Str("field", field).Str("kind", v.Kind.String()).Msg("udt: unsupported value kind, field left unset")
		return nil, true, nil
	}
}

// UDTToRecord converts the driver-native UDT value raw (as returned by
// MapScan for a UDT column, i.e. map[string]any) back into a record.Record,
// iterating in the UDT's declared field order so the result's FieldOrder
// is deterministic downstream (spec §4.3 "udt -> record").
func (c *Codec) UDTToRecord(ctx context.Context, keyspace, typeName string, raw map[string]any) (record.Value, error) {
	md, err := c.cache.get(ctx, c.session, keyspace)
	if err != nil {
		return record.Value{}, fmt.Errorf("udt: fetch keyspace metadata: %w", err)
	}
	udtMeta, ok := md.UserTypes[typeName]
	if !ok {
		return record.Value{}, fmt.Errorf("%w: keyspace=%s type=%s", ErrMetadataMissing, keyspace, typeName)
	}

	rec := make(record.Record, len(udtMeta.FieldNames))
	for _, field := range udtMeta.FieldNames {
		fv, present := raw[field]
		if !present || fv == nil {
			rec[field] = record.Null
			continue
		}
		v, err := c.coerceIn(ctx, keyspace, field, fv)
		if err != nil {
			return record.Value{}, err
		}
		rec[field] = v
	}
	return record.NestedOrdered(rec, append([]string(nil), udtMeta.FieldNames...)), nil
}

// coerceIn converts one driver-boxed field value into a record.Value,
// recursing when the field is itself a nested UDT (map[string]any).
func (c *Codec) coerceIn(ctx context.Context, keyspace, field string, raw any) (record.Value, error) {
	switch tv := raw.(type) {
	case nil:
		return record.Null, nil
	case string:
		return record.String(tv), nil
	case int32:
		return record.Int32(tv), nil
	case int:
		return record.Int32(int32(tv)), nil
	case int64:
		return record.Int64(tv), nil
	case float64:
		return record.Float64(tv), nil
	case float32:
		return record.Float64(float64(tv)), nil
	case time.Time:
		return record.Instant(tv), nil
	case *inf.Dec:
		return record.Decimal(tv), nil
	case map[string]any:
		// The field's declared type name is, by convention, the field
		// name itself (spec §4.3/§9 open question: this under-supports
		// UDTs whose field-name != type-name). UDTToRecord takes no
		// TypeNamer, so on this read path the convention always applies
		// to nested UDTs; only RecordToUDT accepts per-field overrides.
		return c.UDTToRecord(ctx, keyspace, field, tv)
	default:
		return record.Value{}, fmt.Errorf("udt: field %q has unsupported driver value type %T", field, raw)
	}
}
