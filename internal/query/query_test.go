// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package query

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudaredd/data-platform-core/internal/bucket"
	"github.com/sudaredd/data-platform-core/internal/ingest"
	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/statement"
	"github.com/sudaredd/data-platform-core/internal/store/storetest"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/udt"
)

// seed builds a fake store, registry, ingest+query engine pair sharing the
// same config, and ingests recs into it (when recs is non-empty). cfg is
// registered under DAILY/NUMERIC, the query engine's defaults.
func seed(t *testing.T, cfg *tenant.Config, recs []record.Record) (*Engine, *storetest.Fake) {
	t.Helper()
	fake := storetest.New()
	fake.RegisterUDT(cfg.Keyspace, "data", []string{"value"})

	registry := tenant.New(nil)
	require.NoError(t, registry.Register(tenant.Key{TenantID: "IBM", Periodicity: tenant.PeriodicityDaily, DataType: tenant.DataTypeNumeric}, cfg))

	statements := statement.NewCache(16)
	codec := udt.NewCodec(fake, time.Minute)
	buckets := bucket.NewCalculator(time.UTC)

	ingestEngine := ingest.NewEngine(registry, fake, statements, codec, buckets, 4)
	if len(recs) > 0 {
		require.NoError(t, ingestEngine.IngestBatch(context.Background(), ingest.Request{
			TenantID: "IBM", Periodicity: tenant.PeriodicityDaily, Data: recs,
		}))
	}

	queryEngine := NewEngine(registry, fake, statements, codec, 4)
	return queryEngine, fake
}

func rec(instrument string, date record.Date, value float64) record.Record {
	return record.Record{
		"tenant_id":     record.String("IBM"),
		"instrument_id": record.String(instrument),
		"period_date":   record.DateValue(date),
		"data":          record.Nested(record.Record{"value": record.Float64(value)}),
	}
}

func TestRetrieveSingleSelectWithoutBucketColumn(t *testing.T) {
	cfg := tenant.NewConfig("marketdata", "daily_price_noyear", []string{"tenant_id", "instrument_id"}, "", []string{"data"})
	engine, _ := seed(t, cfg, []record.Record{rec("IBM_STOCK", record.Date{Year: 2024, Month: 3, Day: 1}, 101.5)})

	rows, err := engine.Retrieve(context.Background(), Request{
		TenantID: "IBM",
		Criteria: record.Record{
			"instrument_id": record.String("IBM_STOCK"),
			"start_date":    record.DateValue(record.Date{Year: 2024, Month: 1, Day: 1}),
			"end_date":      record.DateValue(record.Date{Year: 2024, Month: 12, Day: 31}),
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "IBM_STOCK", rows[0]["instrument_id"].Str)

	dataVal := rows[0]["data"]
	assert.Equal(t, record.KindRecord, dataVal.Kind)
}

func TestRetrieveScatterGatherAcrossYears(t *testing.T) {
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", []string{"data"})
	engine, _ := seed(t, cfg, []record.Record{
		rec("IBM_STOCK", record.Date{Year: 2023, Month: 6, Day: 1}, 90.0),
		rec("IBM_STOCK", record.Date{Year: 2024, Month: 3, Day: 1}, 101.5),
	})

	rows, err := engine.Retrieve(context.Background(), Request{
		TenantID: "IBM",
		Criteria: record.Record{
			"instrument_id": record.String("IBM_STOCK"),
			"start_date":    record.DateValue(record.Date{Year: 2023, Month: 1, Day: 1}),
			"end_date":      record.DateValue(record.Date{Year: 2024, Month: 12, Day: 31}),
		},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestRetrieveMissingStartDateFails(t *testing.T) {
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", []string{"data"})
	engine, _ := seed(t, cfg, nil)

	_, err := engine.Retrieve(context.Background(), Request{
		TenantID: "IBM",
		Criteria: record.Record{"end_date": record.DateValue(record.Date{Year: 2024, Month: 12, Day: 31})},
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRetrieveStartAfterEndFails(t *testing.T) {
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", []string{"data"})
	engine, _ := seed(t, cfg, nil)

	_, err := engine.Retrieve(context.Background(), Request{
		TenantID: "IBM",
		Criteria: record.Record{
			"start_date": record.DateValue(record.Date{Year: 2025, Month: 1, Day: 1}),
			"end_date":   record.DateValue(record.Date{Year: 2024, Month: 1, Day: 1}),
		},
	})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRetrieveConfigNotFoundForUnknownTenant(t *testing.T) {
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", []string{"data"})
	engine, _ := seed(t, cfg, nil)

	_, err := engine.Retrieve(context.Background(), Request{
		TenantID: "UNREGISTERED",
		Criteria: record.Record{
			"start_date": record.DateValue(record.Date{Year: 2024, Month: 1, Day: 1}),
			"end_date":   record.DateValue(record.Date{Year: 2024, Month: 12, Day: 31}),
		},
	})
	require.ErrorIs(t, err, tenant.ErrConfigNotFound)
}

func TestRetrieveScatterGatherFailsWholeRetrieveListingEveryFailedYear(t *testing.T) {
	cfg := tenant.NewConfig("marketdata", "daily_price", []string{"tenant_id", "instrument_id", "period_year"}, "period_year", []string{"data"})
	engine, fake := seed(t, cfg, []record.Record{
		rec("IBM_STOCK", record.Date{Year: 2023, Month: 6, Day: 1}, 90.0),
		rec("IBM_STOCK", record.Date{Year: 2024, Month: 3, Day: 1}, 101.5),
	})
	fake.FailTable("daily_price", errors.New("simulated read failure"))

	_, err := engine.Retrieve(context.Background(), Request{
		TenantID: "IBM",
		Criteria: record.Record{
			"instrument_id": record.String("IBM_STOCK"),
			"start_date":    record.DateValue(record.Date{Year: 2023, Month: 1, Day: 1}),
			"end_date":      record.DateValue(record.Date{Year: 2024, Month: 12, Day: 31}),
		},
	})
	require.Error(t, err)
	var sgf *ScatterGatherFailure
	require.ErrorAs(t, err, &sgf)
	require.ErrorIs(t, err, ErrScatterGatherFailure)
	assert.Len(t, sgf.Failures, 2)
}
