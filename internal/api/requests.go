// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

// ingestRequestBody is the JSON body for POST /api/ingest/{tenant} and
// POST /api/ingest/batch (spec §4.5 Request). Periodicity/DataType are
// optional: an empty periodicity defaults to DAILY, and an empty data type
// is left to the ingest engine's exemplar inference.
type ingestRequestBody struct {
	TenantID    string                   `json:"tenant_id,omitempty"`
	Periodicity string                   `json:"periodicity,omitempty" validate:"omitempty,oneof=DAILY MONTHLY"`
	DataType    string                   `json:"data_type,omitempty" validate:"omitempty,oneof=NUMERIC STRING"`
	Data        []map[string]interface{} `json:"data" validate:"required,min=1,dive,required"`
}

// queryRequestBody is the JSON body for POST /api/query/{tenant}[/{periodicity}]
// (spec §4.6 Request).
type queryRequestBody struct {
	DataType string                 `json:"data_type,omitempty" validate:"omitempty,oneof=NUMERIC STRING"`
	Criteria map[string]interface{} `json:"criteria" validate:"required"`
}

// registerConfigBody is the JSON body for POST /api/admin/registry
// (spec §4.1 registry operations).
type registerConfigBody struct {
	TenantID          string            `json:"tenant_id" validate:"required"`
	Periodicity       string            `json:"periodicity" validate:"required,oneof=DAILY MONTHLY"`
	DataType          string            `json:"data_type" validate:"required,oneof=NUMERIC STRING"`
	Keyspace          string            `json:"keyspace" validate:"required"`
	Table             string            `json:"table" validate:"required"`
	PartitionKeys     []string          `json:"partition_keys" validate:"required,min=1"`
	BucketColumn      string            `json:"bucket_column,omitempty"`
	UDTColumns        []string          `json:"udt_columns,omitempty"`
	TypeNameOverrides map[string]string `json:"type_name_overrides,omitempty"`
}
