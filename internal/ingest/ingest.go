// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ingest implements IngestEngine (spec §4.5): validates a batch,
// enriches each record with a derived bucket value and codec-converted UDT
// columns, groups by partition key, and commits one logged batch per
// partition concurrently, bounded by a semaphore.
package ingest

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/sudaredd/data-platform-core/internal/bucket"
	"github.com/sudaredd/data-platform-core/internal/concurrency"
	"github.com/sudaredd/data-platform-core/internal/logging"
	"github.com/sudaredd/data-platform-core/internal/metrics"
	"github.com/sudaredd/data-platform-core/internal/partitionkey"
	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/statement"
	"github.com/sudaredd/data-platform-core/internal/store"
	"github.com/sudaredd/data-platform-core/internal/tenant"
	"github.com/sudaredd/data-platform-core/internal/udt"
)

// Request is IngestEngine's public input (spec §4.5). DataType is
// normally left empty and inferred from the first record's exemplar; a
// caller that already knows the data family (e.g. the HTTP boundary after
// its own validation) MAY set it explicitly to skip inference.
type Request struct {
	TenantID    string
	Periodicity tenant.Periodicity
	DataType    tenant.DataType
	Data        []record.Record
}

func (r Request) validate() error {
	if strings.TrimSpace(r.TenantID) == "" {
		return fmt.Errorf("%w: tenant_id is empty", ErrInvalidRequest)
	}
	if strings.TrimSpace(string(r.Periodicity)) == "" {
		return fmt.Errorf("%w: periodicity is empty", ErrInvalidRequest)
	}
	if len(r.Data) == 0 {
		return fmt.Errorf("%w: data must be non-empty", ErrInvalidRequest)
	}
	return nil
}

// Engine is IngestEngine.
type Engine struct {
	registry   *tenant.Registry
	session    store.Session
	statements *statement.Cache
	codec      *udt.Codec
	buckets    *bucket.Calculator
	width      int
}

// NewEngine builds an Engine. width <= 0 defaults to hardware threads x2
// (spec §4.5).
func NewEngine(registry *tenant.Registry, session store.Session, statements *statement.Cache, codec *udt.Codec, buckets *bucket.Calculator, width int) *Engine {
	if width <= 0 {
		width = concurrency.DefaultWidth(runtime.NumCPU())
	}
	return &Engine{registry: registry, session: session, statements: statements, codec: codec, buckets: buckets, width: width}
}

// IngestOne is the thin single-row wrapper spec §4.5 describes: "a
// one-element batch" awaited to completion.
func (e *Engine) IngestOne(ctx context.Context, tenantID string, periodicity tenant.Periodicity, rec record.Record) error {
	return e.IngestBatch(ctx, Request{TenantID: tenantID, Periodicity: periodicity, Data: []record.Record{rec}})
}

// IngestBatch runs the full pipeline in spec §4.5: infer data-type,
// resolve config, enrich, group by partition, execute one logged batch per
// group concurrently, and aggregate any failures.
func (e *Engine) IngestBatch(ctx context.Context, req Request) error {
	start := time.Now()
	if err := req.validate(); err != nil {
		metrics.IngestBatchErrors.WithLabelValues(req.TenantID, "invalid_request").Inc()
		return err
	}

	dataType := req.DataType
	if dataType == "" {
		dataType = inferDataType(req.Data[0])
	}

	key := tenant.Key{TenantID: req.TenantID, Periodicity: req.Periodicity, DataType: dataType}
	cfg, err := e.registry.Lookup(key)
	if err != nil {
		metrics.IngestBatchErrors.WithLabelValues(req.TenantID, "config_not_found").Inc()
		return err
	}

	defer func() {
		metrics.IngestBatchDuration.WithLabelValues(req.TenantID, string(req.Periodicity), string(dataType)).Observe(time.Since(start).Seconds())
	}()

	groups := make(map[string]*partitionGroup)
	for i, rec := range req.Data {
		enriched, err := e.enrich(ctx, cfg, rec)
		if err != nil {
			metrics.IngestBatchErrors.WithLabelValues(req.TenantID, "invalid_request").Inc()
			return fmt.Errorf("%w: record %d: %v", ErrInvalidRequest, i, err)
		}

		pk, err := partitionkey.From(cfg.PartitionKeys, enriched.rec)
		if err != nil {
			metrics.IngestBatchErrors.WithLabelValues(req.TenantID, "invalid_request").Inc()
			return fmt.Errorf("%w: record %d: %v", ErrInvalidRequest, i, err)
		}

		g, ok := groups[pk.GroupKey()]
		if !ok {
			g = &partitionGroup{key: pk}
			groups[pk.GroupKey()] = g
		}
		g.records = append(g.records, enriched)
	}

	items := make([]*partitionGroup, 0, len(groups))
	for _, g := range groups {
		items = append(items, g)
	}

	results := concurrency.FanOut(ctx, items, e.width, func(ctx context.Context, g *partitionGroup) error {
		return e.executePartitionBatch(ctx, cfg, g)
	})

	failed := concurrency.Failed(results)
	if len(failed) == 0 {
		return nil
	}

	metrics.IngestBatchErrors.WithLabelValues(req.TenantID, "partial_batch_failure").Inc()
	pf := &PartialBatchFailure{Failures: make([]FailedPartition, len(failed))}
	for i, f := range failed {
		pf.Failures[i] = FailedPartition{Key: f.Item.key, Err: f.Err}
		logging.Ctx(ctx).Error().Str("tenant_id", req.TenantID).Str("partition", f.Item.key.String()).Err(f.Err).Msg("ingest: partition batch failed")
	}
	return pf
}

// partitionGroup accumulates the enriched records that share one
// PartitionKey, to be committed as a single logged batch.
type partitionGroup struct {
	key     partitionkey.PartitionKey
	records []enrichedRecord
}

// enrichedRecord is a record after bucket derivation and UDT conversion.
// rec holds every scalar/date/instant field plus the bucket column; udt
// holds the driver-native map[string]any for each UDT column present,
// since record.Value has no variant that can carry an arbitrary driver
// value (spec §9's closed sum type).
type enrichedRecord struct {
	rec record.Record
	udt map[string]any
}

func (e *Engine) enrich(ctx context.Context, cfg *tenant.Config, rec record.Record) (enrichedRecord, error) {
	out := rec.Clone()

	if bucketVal, ok, err := e.buckets.Calculate(cfg, out); err != nil {
		return enrichedRecord{}, err
	} else if ok {
		out[cfg.BucketColumn] = record.Int32(int32(bucketVal))
	}

	udtValues := make(map[string]any, len(cfg.UDTColumns))
	for col := range cfg.UDTColumns {
		v, present := out[col]
		if !present || v.Kind != record.KindRecord {
			continue
		}
		converted, err := e.codec.RecordToUDT(ctx, cfg.Keyspace, cfg.TypeNameFor(col), v.Rec, cfg)
		if err != nil {
			return enrichedRecord{}, err
		}
		udtValues[col] = converted
	}

	return enrichedRecord{rec: out, udt: udtValues}, nil
}

func (e *Engine) executePartitionBatch(ctx context.Context, cfg *tenant.Config, g *partitionGroup) error {
	batch := e.session.NewLoggedBatch()
	for _, er := range g.records {
		columns := sortedColumns(er.rec)
		values := make([]any, len(columns))
		for i, col := range columns {
			if uv, ok := er.udt[col]; ok {
				values[i] = uv
				continue
			}
			values[i] = store.BindValue(er.rec[col])
		}
		cql := e.statements.InsertStatement(cfg.Keyspace, cfg.Table, columns)
		batch.Query(cql, values...)
	}
	metrics.IngestPartitionBatches.Inc()
	return e.session.ExecuteBatch(ctx, batch)
}

func sortedColumns(rec record.Record) []string {
	cols := make([]string, 0, len(rec))
	for c := range rec {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// inferDataType classifies a record by the exemplar value at
// rec["data"]["value"] (spec §4.5 step 1): numbers route to NUMERIC,
// strings to STRING, anything else defaults to NUMERIC. It is used only
// when Request.DataType is empty; the whole batch then routes by its first
// record, even when that record is unrepresentative of the rest (spec §9).
func inferDataType(rec record.Record) tenant.DataType {
	dataField, ok := rec["data"]
	if !ok || dataField.Kind != record.KindRecord {
		return tenant.DataTypeNumeric
	}
	value, ok := dataField.Rec["value"]
	if !ok {
		return tenant.DataTypeNumeric
	}
	switch value.Kind {
	case record.KindString:
		return tenant.DataTypeString
	default:
		return tenant.DataTypeNumeric
	}
}
