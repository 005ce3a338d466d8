// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package record defines the closed set of value variants a Record column
// may hold, and the Record map type itself. Ingest and query both speak
// this vocabulary; nothing downstream does a raw interface{} type switch —
// every consumer matches on Kind.
package record

import (
	"fmt"
	"sort"
	"time"

	"gopkg.in/inf.v0"
)

// Kind discriminates the admissible Value variants (spec §3). It is a
// closed sum type: adding a variant means adding a case everywhere Kind is
// switched on, by design — see §9's "re-architect as closed sum type".
type Kind uint8

const (
	// KindNull represents an explicit null / absent value.
	KindNull Kind = iota
	KindString
	KindInt32
	KindInt64
	KindDecimal
	KindFloat64
	KindDate
	KindInstant
	KindRecord
)

// String returns a lowercase name for the Kind, used in log fields and
// error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindDecimal:
		return "decimal"
	case KindFloat64:
		return "float64"
	case KindDate:
		return "date"
	case KindInstant:
		return "instant"
	case KindRecord:
		return "record"
	default:
		return "unknown"
	}
}

// Date is a calendar date with no time component (spec §3).
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateFromTime projects a time.Time onto its calendar date in the given
// location.
func DateFromTime(t time.Time, loc *time.Location) Date {
	t = t.In(loc)
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Time returns the date as midnight UTC, useful for range comparisons.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is strictly earlier than o.
func (d Date) Before(o Date) bool { return d.Time().Before(o.Time()) }

// After reports whether d is strictly later than o.
func (d Date) After(o Date) bool { return d.Time().After(o.Time()) }

// Equal reports structural equality.
func (d Date) Equal(o Date) bool { return d == o }

// Value is a tagged union over the admissible column value variants.
// Exactly one field is meaningful for a given Kind; callers MUST switch on
// Kind rather than probe fields directly.
type Value struct {
	Kind    Kind
	Str     string
	I32     int32
	I64     int64
	Dec     *inf.Dec
	F64     float64
	Date    Date
	Instant time.Time
	Rec     Record

	// FieldOrder records the declared UDT field order for a KindRecord
	// value produced by udt->record conversion (spec §4.3: "Preserves
	// insertion order equal to declared UDT field order, so downstream
	// serialisation is deterministic"). Go's map type has no iteration
	// order of its own, so this slice is the mechanism by which that
	// order survives past the codec; nil for records built by ingest
	// callers, where no declared order exists yet.
	FieldOrder []string
}

// Null is the canonical null Value.
var Null = Value{Kind: KindNull}

// IsNull reports whether v is the null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }

func String(s string) Value { return Value{Kind: KindString, Str: s} }
func Int32(i int32) Value   { return Value{Kind: KindInt32, I32: i} }
func Int64(i int64) Value   { return Value{Kind: KindInt64, I64: i} }
func Decimal(d *inf.Dec) Value {
	return Value{Kind: KindDecimal, Dec: d}
}
func Float64(f float64) Value    { return Value{Kind: KindFloat64, F64: f} }
func DateValue(d Date) Value     { return Value{Kind: KindDate, Date: d} }
func Instant(t time.Time) Value  { return Value{Kind: KindInstant, Instant: t} }
func Nested(r Record) Value { return Value{Kind: KindRecord, Rec: r} }

// NestedOrdered builds a KindRecord Value carrying its declared UDT field
// order, as produced by the udt->record codec direction.
func NestedOrdered(r Record, order []string) Value {
	return Value{Kind: KindRecord, Rec: r, FieldOrder: order}
}

// OrderedKeys returns the nested record's keys in FieldOrder when set,
// falling back to a sorted order for determinism when it is not (e.g. for
// records built directly by ingest callers rather than read back from the
// store).
func (v Value) OrderedKeys() []string {
	if len(v.FieldOrder) > 0 {
		return v.FieldOrder
	}
	keys := make([]string, 0, len(v.Rec))
	for k := range v.Rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecimalScale is the fixed scale used when promoting a float64 to decimal
// (spec §4.3: "double ... promoted to decimal"). inf.Dec has no
// float-constructor, so floats are rounded to this many fractional digits.
const DecimalScale inf.Scale = 6

// AsDecimal coerces a numeric Value (float64/int32/int64/decimal) to an
// *inf.Dec, promoting per spec §4.3's record→udt coercion table. Returns
// false for non-numeric kinds.
func (v Value) AsDecimal() (*inf.Dec, bool) {
	switch v.Kind {
	case KindDecimal:
		return v.Dec, true
	case KindFloat64:
		return decimalFromFloat(v.F64, DecimalScale), true
	case KindInt32:
		return inf.NewDec(int64(v.I32), 0), true
	case KindInt64:
		return inf.NewDec(v.I64, 0), true
	default:
		return nil, false
	}
}

// decimalFromFloat converts a float64 to an *inf.Dec at the given scale by
// shifting and rounding to the nearest integer, since inf.Dec has no direct
// float-constructor.
func decimalFromFloat(f float64, scale inf.Scale) *inf.Dec {
	shifted := f
	for i := inf.Scale(0); i < scale; i++ {
		shifted *= 10
	}
	rounding := 0.5
	if shifted < 0 {
		rounding = -0.5
	}
	unscaled := int64(shifted + rounding)
	return inf.NewDec(unscaled, scale)
}

// Equal reports structural equality between two Values. Decimal equality
// compares numeric value via inf.Dec.Cmp, not representation. Record
// equality recurses.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return v.Str == o.Str
	case KindInt32:
		return v.I32 == o.I32
	case KindInt64:
		return v.I64 == o.I64
	case KindDecimal:
		if v.Dec == nil || o.Dec == nil {
			return v.Dec == o.Dec
		}
		return v.Dec.Cmp(o.Dec) == 0
	case KindFloat64:
		return v.F64 == o.F64
	case KindDate:
		return v.Date.Equal(o.Date)
	case KindInstant:
		return v.Instant.Equal(o.Instant)
	case KindRecord:
		return v.Rec.Equal(o.Rec)
	default:
		return false
	}
}

// ScalarKey renders a Value usable as a grouping key component: stable,
// collision-resistant text for the variant's logical value. Used by
// PartitionKey, never persisted.
func (v Value) ScalarKey() string {
	switch v.Kind {
	case KindNull:
		return "\x00null"
	case KindString:
		return "s:" + v.Str
	case KindInt32:
		return fmt.Sprintf("i32:%d", v.I32)
	case KindInt64:
		return fmt.Sprintf("i64:%d", v.I64)
	case KindDecimal:
		if v.Dec == nil {
			return "dec:<nil>"
		}
		return "dec:" + v.Dec.String()
	case KindFloat64:
		return fmt.Sprintf("f64:%v", v.F64)
	case KindDate:
		return "date:" + v.Date.String()
	case KindInstant:
		return "instant:" + v.Instant.UTC().Format(time.RFC3339Nano)
	case KindRecord:
		return "record:<unsupported-key>"
	default:
		return "unknown"
	}
}

// Record is a column-name → Value mapping, the unit of ingest input and
// query output (spec §3).
type Record map[string]Value

// Equal reports deep structural equality between two Records.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// Clone returns a shallow copy of the Record's top-level keys (nested
// Records inside Values are not deep-copied; Value variants other than
// KindRecord are immutable by convention).
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
