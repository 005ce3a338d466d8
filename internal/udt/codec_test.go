// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package udt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/inf.v0"

	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/store/storetest"
)

// fieldTypeNames is a literal TypeNamer for tests that do not need
// tenant.Config's override hook.
type fieldTypeNames map[string]string

func (m fieldTypeNames) TypeNameFor(field string) string {
	if name, ok := m[field]; ok {
		return name
	}
	return field
}

func TestRecordToUDTMissingTypeFails(t *testing.T) {
	fake := storetest.New()
	codec := NewCodec(fake, time.Minute)

	_, err := codec.RecordToUDT(context.Background(), "marketdata", "quote", record.Record{}, nil)
	require.ErrorIs(t, err, ErrMetadataMissing)
}

func TestRecordToUDTScalarCoercion(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"open", "high", "volume", "as_of"})
	codec := NewCodec(fake, time.Minute)

	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := record.Record{
		"open":   record.Float64(101.5),
		"high":   record.Decimal(inf.NewDec(10250, 2)),
		"volume": record.Int64(48213),
		"as_of":  record.Instant(now),
	}

	out, err := codec.RecordToUDT(context.Background(), "marketdata", "quote", rec, nil)
	require.NoError(t, err)

	openDec, ok := out["open"].(*inf.Dec)
	require.True(t, ok)
	assert.Equal(t, 0, openDec.Cmp(inf.NewDec(101500000, record.DecimalScale)))

	highDec, ok := out["high"].(*inf.Dec)
	require.True(t, ok)
	assert.Equal(t, 0, highDec.Cmp(inf.NewDec(10250, 2)))

	volDec, ok := out["volume"].(*inf.Dec)
	require.True(t, ok)
	assert.Equal(t, 0, volDec.Cmp(inf.NewDec(48213, 0)))

	assert.Equal(t, now, out["as_of"])
}

func TestRecordToUDTNullFieldIsSkipped(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"open", "note"})
	codec := NewCodec(fake, time.Minute)

	rec := record.Record{"open": record.Float64(1.0), "note": record.Null}
	out, err := codec.RecordToUDT(context.Background(), "marketdata", "quote", rec, nil)
	require.NoError(t, err)
	_, present := out["note"]
	assert.False(t, present)
}

func TestRecordToUDTTimeHeuristicParsesISO8601(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"trade_time"})
	codec := NewCodec(fake, time.Minute)

	rec := record.Record{"trade_time": record.String("2024-03-01T09:30:00Z")}
	out, err := codec.RecordToUDT(context.Background(), "marketdata", "quote", rec, nil)
	require.NoError(t, err)

	ts, ok := out["trade_time"].(time.Time)
	require.True(t, ok)
	assert.True(t, ts.Equal(time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)))
}

func TestRecordToUDTTimeHeuristicFallsBackToString(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"trade_time"})
	codec := NewCodec(fake, time.Minute)

	rec := record.Record{"trade_time": record.String("not-a-timestamp")}
	out, err := codec.RecordToUDT(context.Background(), "marketdata", "quote", rec, nil)
	require.NoError(t, err)
	assert.Equal(t, "not-a-timestamp", out["trade_time"])
}

func TestRecordToUDTNestedUsesTypeNamer(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"venue_info"})
	fake.RegisterUDT("marketdata", "venue", []string{"mic", "country"})
	codec := NewCodec(fake, time.Minute)

	rec := record.Record{
		"venue_info": record.Nested(record.Record{
			"mic":     record.String("XNYS"),
			"country": record.String("US"),
		}),
	}
	names := fieldTypeNames{"venue_info": "venue"}

	out, err := codec.RecordToUDT(context.Background(), "marketdata", "quote", rec, names)
	require.NoError(t, err)

	nested, ok := out["venue_info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "XNYS", nested["mic"])
}

func TestUDTToRecordPreservesDeclaredFieldOrder(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"high", "open", "volume"})
	codec := NewCodec(fake, time.Minute)

	raw := map[string]any{
		"open":   101.5,
		"high":   inf.NewDec(10250, 2),
		"volume": int64(48213),
	}

	v, err := codec.UDTToRecord(context.Background(), "marketdata", "quote", raw)
	require.NoError(t, err)
	assert.Equal(t, record.KindRecord, v.Kind)
	assert.Equal(t, []string{"high", "open", "volume"}, v.OrderedKeys())
	assert.Equal(t, 101.5, v.Rec["open"].F64)
}

func TestUDTToRecordMissingFieldBecomesNull(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"open", "note"})
	codec := NewCodec(fake, time.Minute)

	v, err := codec.UDTToRecord(context.Background(), "marketdata", "quote", map[string]any{"open": 1.0})
	require.NoError(t, err)
	assert.True(t, v.Rec["note"].IsNull())
}

func TestUDTToRecordRecursesIntoNestedUDT(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"venue_info"})
	fake.RegisterUDT("marketdata", "venue_info", []string{"mic", "country"})
	codec := NewCodec(fake, time.Minute)

	raw := map[string]any{
		"venue_info": map[string]any{"mic": "XNYS", "country": "US"},
	}
	v, err := codec.UDTToRecord(context.Background(), "marketdata", "quote", raw)
	require.NoError(t, err)

	nested := v.Rec["venue_info"]
	assert.Equal(t, record.KindRecord, nested.Kind)
	assert.Equal(t, "XNYS", nested.Rec["mic"].Str)
}

func TestRoundTripRecordToUDTAndBack(t *testing.T) {
	fake := storetest.New()
	fake.RegisterUDT("marketdata", "quote", []string{"open", "volume"})
	codec := NewCodec(fake, time.Minute)

	rec := record.Record{
		"open":   record.Decimal(inf.NewDec(1015, 1)),
		"volume": record.Int64(100),
	}
	out, err := codec.RecordToUDT(context.Background(), "marketdata", "quote", rec, nil)
	require.NoError(t, err)

	back, err := codec.UDTToRecord(context.Background(), "marketdata", "quote", out)
	require.NoError(t, err)

	assert.True(t, rec["open"].Equal(back.Rec["open"]))

	wantVolume, ok := rec["volume"].AsDecimal()
	require.True(t, ok)
	gotVolume, ok := back.Rec["volume"].AsDecimal()
	require.True(t, ok)
	assert.Equal(t, 0, wantVolume.Cmp(gotVolume))
}
