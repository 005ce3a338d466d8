// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package recordjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudaredd/data-platform-core/internal/record"
)

func TestFromJSONAndToJSONRoundTripScalars(t *testing.T) {
	in := map[string]any{
		"name":   "AAPL",
		"price":  123.45,
		"active": true,
		"note":   nil,
	}
	rec := FromJSON(in)
	assert.Equal(t, record.String("AAPL"), rec["name"])
	assert.Equal(t, record.Float64(123.45), rec["price"])
	assert.Equal(t, record.String("true"), rec["active"])
	assert.True(t, rec["note"].IsNull())

	out := ToJSON(rec)
	assert.Equal(t, "AAPL", out["name"])
	assert.Equal(t, 123.45, out["price"])
}

func TestFromJSONNestedObjectBecomesRecordValue(t *testing.T) {
	in := map[string]any{
		"meta": map[string]any{"source": "feed-a"},
	}
	rec := FromJSON(in)
	require.Equal(t, record.KindRecord, rec["meta"].Kind)
	assert.Equal(t, record.String("feed-a"), rec["meta"].Rec["source"])
}

func TestDateParsesCalendarAndRFC3339(t *testing.T) {
	v, err := Date("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, record.KindDate, v.Kind)

	v, err = Date("2024-03-15T10:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, record.KindDate, v.Kind)

	_, err = Date("not-a-date")
	assert.Error(t, err)
}
