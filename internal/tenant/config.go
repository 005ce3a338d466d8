// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tenant holds the immutable description of a tenant's physical
// table shape (TenantConfig) and the concurrent registry that routes
// (tenant, periodicity, dataType) triples to one (spec §4.1).
package tenant

import (
	"fmt"
	"strings"
)

// Periodicity is the caller-declared cadence used for polymorphic routing
// (spec GLOSSARY). Kept as a string type rather than an enum: new
// periodicities are a config-only concern, never a code change.
type Periodicity string

// DataType is the caller-declared record family used for polymorphic
// routing alongside Periodicity.
type DataType string

const (
	PeriodicityDaily   Periodicity = "DAILY"
	PeriodicityMonthly Periodicity = "MONTHLY"

	DataTypeNumeric DataType = "NUMERIC"
	DataTypeString  DataType = "STRING"
)

// Config is the immutable description of a tenant's physical table shape
// (spec §3 "TenantConfig"). Constructed once by the configuration loader
// and registered; never mutated after registration.
type Config struct {
	Keyspace string
	Table    string

	// PartitionKeys is the ordered, unique sequence of column names that
	// make up the physical partition key. Length MUST be >= 1.
	PartitionKeys []string

	// BucketColumn, if non-empty, names the partition-key column whose
	// value is derived by BucketCalculator rather than supplied verbatim
	// by the caller. When present it MUST be a member of PartitionKeys
	// (enforced by Registry.Register, not here — see spec §9).
	BucketColumn string

	// UDTColumns is the set of column names whose values are driver-native
	// UDTs rather than scalars.
	UDTColumns map[string]struct{}

	// TypeNameOverrides maps a nested-UDT field name to its declared CQL
	// type name, for the rare case where they differ (spec §9 open
	// question). Absent entries fall back to the "field name == type
	// name" convention.
	TypeNameOverrides map[string]string
}

// NewConfig builds a Config, normalizing the UDT column set.
func NewConfig(keyspace, table string, partitionKeys []string, bucketColumn string, udtColumns []string) *Config {
	udtSet := make(map[string]struct{}, len(udtColumns))
	for _, c := range udtColumns {
		udtSet[c] = struct{}{}
	}
	return &Config{
		Keyspace:      keyspace,
		Table:         table,
		PartitionKeys: append([]string(nil), partitionKeys...),
		BucketColumn:  bucketColumn,
		UDTColumns:    udtSet,
	}
}

// IsUDTColumn reports whether column is declared as a UDT column.
func (c *Config) IsUDTColumn(column string) bool {
	_, ok := c.UDTColumns[column]
	return ok
}

// TypeNameFor returns the CQL UDT type name to use for a nested field,
// honoring TypeNameOverrides and falling back to the field-name convention
// documented in spec §4.3/§9.
func (c *Config) TypeNameFor(field string) string {
	if c.TypeNameOverrides != nil {
		if name, ok := c.TypeNameOverrides[field]; ok {
			return name
		}
	}
	return field
}

// Validate checks the structural invariants spec.md assumes but never
// enforces at the source level: partition keys are non-empty and unique,
// and a declared bucket column is a member of the partition key (spec §9:
// "The target MUST validate at register time and fail fast.").
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Keyspace) == "" {
		return fmt.Errorf("%w: keyspace is empty", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Table) == "" {
		return fmt.Errorf("%w: table is empty", ErrInvalidConfig)
	}
	if len(c.PartitionKeys) == 0 {
		return fmt.Errorf("%w: partition_keys must have at least one column", ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(c.PartitionKeys))
	for _, k := range c.PartitionKeys {
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: duplicate partition key column %q", ErrInvalidConfig, k)
		}
		seen[k] = struct{}{}
	}
	if c.BucketColumn != "" {
		if _, ok := seen[c.BucketColumn]; !ok {
			return fmt.Errorf("%w: bucket_column %q must be a member of partition_keys", ErrInvalidConfig, c.BucketColumn)
		}
	}
	return nil
}
