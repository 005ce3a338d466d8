// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package query implements QueryEngine (spec §4.6): parses a date-range
// criteria map, resolves the tenant's config, and either issues a single
// SELECT or, when the config has a bucket column, decomposes the range
// into year buckets and scatter-gathers concurrent SELECTs, merging rows
// without loss.
package query

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sudaredd/data-platform-core/internal/bucket"
	"github.com/sudaredd/data-platform-core/internal/concurrency"
	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/metrics"
	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/statement"
	"github.com/sudaredd/data-platform-core/internal/store"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/udt"
)

// Request is QueryEngine's public input (spec §4.6). Periodicity and
// DataType default to DAILY/NUMERIC when left empty; when set, they select
// the registry entry used for the lookup.
type Request struct {
	TenantID    string
	Periodicity tenant.Periodicity
	DataType    tenant.DataType
	Criteria    record.Record
}

// Engine is QueryEngine.
type Engine struct {
	registry   *tenant.Registry
	session    store.Session
	statements *statement.Cache
	codec      *udt.Codec
	width      int
}

// NewEngine builds an Engine. width <= 0 defaults to hardware threads x2,
// the same family used by IngestEngine's fan-out (spec §5).
func NewEngine(registry *tenant.Registry, session store.Session, statements *statement.Cache, codec *udt.Codec, width int) *Engine {
	if width <= 0 {
		width = concurrency.DefaultWidth(runtime.NumCPU())
	}
	return &Engine{registry: registry, session: session, statements: statements, codec: codec, width: width}
}

const clusteringDateColumn = "period_date"

// Retrieve runs the pipeline in spec §4.6: parse the date range, resolve
// config, and either a single SELECT or a scatter-gather across bucket
// years, returning the merged, UDT-decoded rows.
func (e *Engine) Retrieve(ctx context.Context, req Request) ([]record.Record, error) {
	start := time.Now()
	periodicity := req.Periodicity
	if periodicity == "" {
		periodicity = tenant.PeriodicityDaily
	}
	dataType := req.DataType
	if dataType == "" {
		dataType = tenant.DataTypeNumeric
	}

	startDate, endDate, err := extractRange(req.Criteria)
	if err != nil {
		metrics.QueryErrors.WithLabelValues(req.TenantID, "invalid_request").Inc()
		return nil, err
	}

	key := tenant.Key{TenantID: req.TenantID, Periodicity: periodicity, DataType: dataType}
	cfg, err := e.registry.Lookup(key)
	if err != nil {
		metrics.QueryErrors.WithLabelValues(req.TenantID, "config_not_found").Inc()
		return nil, err
	}

	criteria := req.Criteria.Clone()
	criteria["tenant_id"] = record.String(req.TenantID)

	defer func() {
		metrics.QueryDuration.WithLabelValues(req.TenantID, string(periodicity), string(dataType)).Observe(time.Since(start).Seconds())
	}()

	if cfg.BucketColumn == "" {
		metrics.QueryScatterGatherSelects.Observe(1)
		return e.selectOne(ctx, cfg, criteria, startDate, endDate)
	}

	return e.scatterGather(ctx, cfg, criteria, startDate, endDate)
}

func (e *Engine) scatterGather(ctx context.Context, cfg *tenant.Config, criteria record.Record, start, end record.Date) ([]record.Record, error) {
	years, err := bucket.YearRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	metrics.QueryScatterGatherSelects.Observe(float64(len(years)))

	results := concurrency.FanOutMap(ctx, years, e.width, func(ctx context.Context, year int) ([]record.Record, error) {
		bucketed := criteria.Clone()
		bucketed[cfg.BucketColumn] = record.Int32(int32(year))
		return e.selectOne(ctx, cfg, bucketed, start, end)
	})

	var rows []record.Record
	var failures []FailedBucket
	for _, r := range results {
		if r.Err != nil {
			failures = append(failures, FailedBucket{Year: r.Item, Err: r.Err})
			logging.Ctx(ctx).Error().Int("year", r.Item).Err(r.Err).Msg("query: bucket select failed")
			continue
		}
		rows = append(rows, r.Value...)
	}

	if len(failures) > 0 {
		metrics.QueryErrors.WithLabelValues(criteria["tenant_id"].Str, "scatter_gather_failure").Inc()
		return nil, &ScatterGatherFailure{Failures: failures}
	}
	return rows, nil
}

// selectOne issues the single SELECT shape in spec §4.6.1 and maps its
// rows back into records.
func (e *Engine) selectOne(ctx context.Context, cfg *tenant.Config, criteria record.Record, start, end record.Date) ([]record.Record, error) {
	var equalityColumns []string
	var equalityValues []any
	for _, col := range cfg.PartitionKeys {
		v, ok := criteria[col]
		if !ok || v.IsNull() {
			continue
		}
		equalityColumns = append(equalityColumns, col)
		equalityValues = append(equalityValues, store.BindValue(v))
	}

	cql := e.statements.SelectStatement(cfg.Keyspace, cfg.Table, equalityColumns, clusteringDateColumn)
	values := append(equalityValues, store.BindValue(record.DateValue(start)), store.BindValue(record.DateValue(end)))

	iter := e.session.Query(cql, values...).Iter(ctx)

	var rows []record.Record
	raw := make(map[string]any)
	for iter.MapScan(raw) {
		mapped, err := e.mapRow(ctx, cfg, raw)
		if err != nil {
			_ = iter.Close()
			return nil, fmt.Errorf("%w: %v", store.ErrStoreError, err)
		}
		rows = append(rows, mapped)
		raw = make(map[string]any)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStoreError, err)
	}
	return rows, nil
}

func (e *Engine) mapRow(ctx context.Context, cfg *tenant.Config, raw map[string]any) (record.Record, error) {
	out := make(record.Record, len(raw))
	for col, v := range raw {
		if v != nil && cfg.IsUDTColumn(col) {
			if nested, ok := v.(map[string]any); ok {
				val, err := e.codec.UDTToRecord(ctx, cfg.Keyspace, cfg.TypeNameFor(col), nested)
				if err != nil {
					return nil, err
				}
				out[col] = val
				continue
			}
		}
		out[col] = store.ValueFromDriver(v)
	}
	return out, nil
}

// extractRange pulls start_date/end_date out of criteria, per spec §4.6
// step 1: InvalidRequest if either is missing, unparseable, or
// start_date > end_date.
func extractRange(criteria record.Record) (record.Date, record.Date, error) {
	start, err := extractDate(criteria, "start_date")
	if err != nil {
		return record.Date{}, record.Date{}, err
	}
	end, err := extractDate(criteria, "end_date")
	if err != nil {
		return record.Date{}, record.Date{}, err
	}
	if start.After(end) {
		return record.Date{}, record.Date{}, fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidRequest, start, end)
	}
	return start, end, nil
}

func extractDate(criteria record.Record, field string) (record.Date, error) {
	v, ok := criteria[field]
	if !ok || v.IsNull() {
		return record.Date{}, fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	switch v.Kind {
	case record.KindDate:
		return v.Date, nil
	case record.KindInstant:
		return record.DateFromTime(v.Instant, time.UTC), nil
	case record.KindString:
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, v.Str); err == nil {
				return record.DateFromTime(t, time.UTC), nil
			}
		}
		return record.Date{}, fmt.Errorf("%w: %s is not a parseable date: %q", ErrInvalidRequest, field, v.Str)
	default:
		return record.Date{}, fmt.Errorf("%w: %s has unsupported type %s", ErrInvalidRequest, field, v.Kind)
	}
}
