// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bucket derives bucket column values from record fields and
// computes bucket ranges for queries (spec §4.2). The bucket algorithm is
// a plug-point: today only year-from-date is implemented, expressed as a
// BucketFunc strategy so a future algorithm can be swapped in without
// touching Calculator's record-field-resolution logic.
package bucket

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sudaredd/data-platform-core/internal/record"
	"github.com/sudaredd/data-platform-core/internal/tenant"
)

// ErrBucketType is returned when a recognised date field is present but its
// value variant cannot be interpreted as a date (spec §7 BucketTypeError).
var ErrBucketType = errors.New("bucket: unsupported value type for date field")

// ErrInvalidRange is returned by YearRange when start > end (spec §4.2).
var ErrInvalidRange = errors.New("bucket: invalid range, start must be <= end")

// dateFieldNames are searched in order; the first key present in the
// record wins (spec §4.2).
var dateFieldNames = []string{"period_date", "date", "timestamp", "report_date", "event_date"}

// BucketFunc derives a bucket value from a resolved calendar date. The
// only implementation shipped today is YearOf.
type BucketFunc func(d record.Date) int

// YearOf is the only bucket algorithm implemented today: the calendar
// year of the resolved date, in [0, 9999].
func YearOf(d record.Date) int { return d.Year }

// Calculator derives bucket values from records and computes bucket
// ranges for the scatter-gather read path.
type Calculator struct {
	// Location is the system default zone instants and epoch millis are
	// interpreted in (spec §4.2).
	Location *time.Location
	// Func is the bucket-derivation strategy. Defaults to YearOf.
	Func BucketFunc
}

// NewCalculator builds a Calculator using the given default zone, falling
// back to UTC and YearOf when unset.
func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{Location: loc, Func: YearOf}
}

// Calculate derives the bucket value from rec per cfg, returning (value,
// true) or (0, false) iff cfg.BucketColumn is absent OR no recognised date
// field is present in rec. Silent false on a missing date field is
// intentional: some tenants supply the bucket value directly (spec §4.2
// rationale; see scenario 3 in spec §8).
func (c *Calculator) Calculate(cfg *tenant.Config, rec record.Record) (int, bool, error) {
	if cfg.BucketColumn == "" {
		return 0, false, nil
	}

	for _, field := range dateFieldNames {
		v, ok := rec[field]
		if !ok || v.IsNull() {
			continue
		}
		d, err := c.resolveDate(v)
		if err != nil {
			return 0, false, err
		}
		return c.Func(d), true, nil
	}
	return 0, false, nil
}

// resolveDate extracts a calendar date from a Value per the extraction
// rules in spec §4.2: date → itself; instant → date in Location; int64 or
// int32 → epoch milliseconds, dated in Location; string → parsed as an
// epoch-millis integer or an ISO-8601 date/datetime; anything else fails
// with ErrBucketType.
func (c *Calculator) resolveDate(v record.Value) (record.Date, error) {
	switch v.Kind {
	case record.KindDate:
		return v.Date, nil
	case record.KindInstant:
		return record.DateFromTime(v.Instant, c.Location), nil
	case record.KindInt64:
		return record.DateFromTime(time.UnixMilli(v.I64), c.Location), nil
	case record.KindInt32:
		return record.DateFromTime(time.UnixMilli(int64(v.I32)), c.Location), nil
	case record.KindString:
		return parseDateString(v.Str, c.Location)
	default:
		return record.Date{}, fmt.Errorf("%w: %s", ErrBucketType, v.Kind)
	}
}

func parseDateString(s string, loc *time.Location) (record.Date, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil && len(s) >= 10 {
		// A bare numeric string is treated as epoch milliseconds, matching
		// the "epoch milliseconds" variant's handling.
		return record.DateFromTime(time.UnixMilli(ms), loc), nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return record.DateFromTime(t, loc), nil
		}
	}
	return record.Date{}, fmt.Errorf("%w: cannot parse %q as a date", ErrBucketType, s)
}

// YearRange returns [start.Year ... end.Year] inclusive (spec §4.2).
func YearRange(start, end record.Date) ([]int, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start=%s end=%s", ErrInvalidRange, start, end)
	}
	years := make([]int, 0, end.Year-start.Year+1)
	for y := start.Year; y <= end.Year; y++ {
		years = append(years, y)
	}
	return years, nil
}
