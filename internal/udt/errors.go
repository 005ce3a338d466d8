// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package udt

import "errors"

// ErrMetadataMissing is returned when the referenced keyspace/UDT type is
// absent from the store's schema metadata (spec §4.3, §7 UdtMetadataMissing).
var ErrMetadataMissing = errors.New("udt: type metadata not found in keyspace")
