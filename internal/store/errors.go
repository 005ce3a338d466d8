// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import "errors"

// ErrStoreError wraps any driver-reported failure on prepare or execute
// (spec §7 StoreError). gocqlstore wraps raw driver errors with it; callers
// match on it via errors.Is rather than inspecting driver-specific types.
var ErrStoreError = errors.New("store: driver operation failed")
