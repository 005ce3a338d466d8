// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package bucket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/tenant"
)

func bucketedConfig() *tenant.Config {
	return tenant.NewConfig("ks", "tbl", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", nil)
}

func TestCalculateFromCalendarDate(t *testing.T) {
	c := NewCalculator(time.UTC)
	rec := record.Record{"period_date": record.DateValue(record.Date{Year: 2023, Month: 12, Day: 10})}
	year, ok, err := c.Calculate(bucketedConfig(), rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2023, year)
}

func TestCalculateNoneWhenBucketColumnAbsent(t *testing.T) {
	c := NewCalculator(time.UTC)
	cfg := tenant.NewConfig("ks", "tbl", []string{"tenant_id"}, "", nil)
	_, ok, err := c.Calculate(cfg, record.Record{"date": record.DateValue(record.Date{Year: 2023, Month: 1, Day: 1})})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCalculateNoneWhenNoDateFieldPresent(t *testing.T) {
	c := NewCalculator(time.UTC)
	rec := record.Record{"period_year": record.Int32(2024)}
	_, ok, err := c.Calculate(bucketedConfig(), rec)
	require.NoError(t, err)
	assert.False(t, ok, "caller-supplied bucket with no recognised date field must not error")
}

func TestCalculateFromISOString(t *testing.T) {
	c := NewCalculator(time.UTC)
	rec := record.Record{"report_date": record.String("2024-01-10")}
	year, ok, err := c.Calculate(bucketedConfig(), rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2024, year)
}

func TestCalculateFieldPriorityOrder(t *testing.T) {
	c := NewCalculator(time.UTC)
	rec := record.Record{
		"date":      record.DateValue(record.Date{Year: 2020, Month: 1, Day: 1}),
		"timestamp": record.DateValue(record.Date{Year: 2099, Month: 1, Day: 1}),
	}
	year, ok, err := c.Calculate(bucketedConfig(), rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2020, year, "date must win over timestamp per field search order")
}

func TestCalculateUnsupportedTypeErrors(t *testing.T) {
	c := NewCalculator(time.UTC)
	rec := record.Record{"period_date": record.Float64(7)}
	_, _, err := c.Calculate(bucketedConfig(), rec)
	require.Error(t, err)
}

func TestYearRangeSingleDay(t *testing.T) {
	d := record.Date{Year: 2024, Month: 6, Day: 15}
	years, err := YearRange(d, d)
	require.NoError(t, err)
	assert.Equal(t, []int{2024}, years)
}

func TestYearRangeCrossesYearBoundary(t *testing.T) {
	years, err := YearRange(record.Date{Year: 2023, Month: 12, Day: 31}, record.Date{Year: 2024, Month: 1, Day: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{2023, 2024}, years)
}

func TestYearRangeInvalidOrder(t *testing.T) {
	_, err := YearRange(record.Date{Year: 2024}, record.Date{Year: 2023})
	require.Error(t, err)
}
