// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"time"

	"github.com/sudaredd/data-platform-core/internal/record"
	"gopkg.in/inf.v0"
)

// BindValue converts a record.Value into the native Go type the driver
// binds positionally for a CQL scalar column. Date values bind as
// midnight-UTC time.Time (CQL `date`/`timestamp` columns both accept
// time.Time; the driver distinguishes by the column's declared CQL type).
// KindRecord has no scalar binding — UDT columns are built by UdtCodec and
// bound separately as map[string]any.
func BindValue(v record.Value) any {
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
		return v.Dec
	case record.KindFloat64:
		return v.F64
	case record.KindDate:
		return v.Date.Time()
	case record.KindInstant:
		return v.Instant
	default:
		return nil
	}
}

// ValueFromDriver converts a driver-scanned column value (as MapScan
// produces: string, int32, int64, *inf.Dec, float64, time.Time, or nil)
// back into a record.Value for QueryEngine's row-mapping step (spec
// §4.6.1). UDT columns do not go through this path — QueryEngine
// recognises them by config.udt_columns and routes them through UdtCodec
// instead, since a UDT column scans as map[string]any.
func ValueFromDriver(raw any) record.Value {
	switch v := raw.(type) {
	case nil:
		return record.Null
	case string:
		return record.String(v)
	case int32:
		return record.Int32(v)
	case int:
		return record.Int32(int32(v))
	case int64:
		return record.Int64(v)
	case float64:
		return record.Float64(v)
	case float32:
		return record.Float64(float64(v))
	case *inf.Dec:
		return record.Decimal(v)
	case time.Time:
		return record.Instant(v)
	default:
		return record.Null
	}
}
