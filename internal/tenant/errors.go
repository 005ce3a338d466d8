// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package tenant

import "errors"

// ErrConfigNotFound is returned by Registry.Lookup when no config is
// registered for the requested (tenant, periodicity, dataType) triple.
// Registry.Lookup wraps it with a message listing the known keys.
var ErrConfigNotFound = errors.New("tenant: no config registered for key")

// ErrInvalidConfig is returned by Config.Validate / Registry.Register when
// the config violates an invariant (spec §9: bucket_column must be a
// partition key; non-empty keyspace/table/partition_keys).
var ErrInvalidConfig = errors.New("tenant: invalid config")
