// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sudaredd/data-platform-core/internal/partitionkey"
)

// ErrInvalidRequest is returned when the ingest request itself, or a
// record within it, is malformed (spec §7 InvalidRequest).
var ErrInvalidRequest = errors.New("ingest: invalid request")

// ErrPartialBatchFailure is the sentinel PartialBatchFailure wraps, so
// callers can match with errors.Is without depending on the struct type
// (spec §7 PartialBatchFailure).
var ErrPartialBatchFailure = errors.New("ingest: one or more partition batches failed")

// FailedPartition names one partition-key group whose logged batch did not
// commit, and the driver error that caused it.
type FailedPartition struct {
	Key partitionkey.PartitionKey
	Err error
}

// PartialBatchFailure is returned when IngestBatch commits some partition
// groups but not others. Succeeded groups are NOT rolled back — the store
// has no cross-partition rollback primitive (spec §4.5 step 6).
type PartialBatchFailure struct {
	Failures []FailedPartition
}

func (e *PartialBatchFailure) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Key, f.Err)
	}
	return fmt.Sprintf("%s: %s", ErrPartialBatchFailure, strings.Join(parts, "; "))
}

func (e *PartialBatchFailure) Unwrap() error { return ErrPartialBatchFailure }
