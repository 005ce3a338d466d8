// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package bus

import "testing"

func TestIngestMessageValidateAcceptsWellFormedMessage(t *testing.T) {
	msg := IngestMessage{
		TenantID:    "acme",
		Periodicity: "DAILY",
		Data:        []map[string]interface{}{{"symbol": "AAPL"}},
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestIngestMessageValidateRejectsMissingTenant(t *testing.T) {
	msg := IngestMessage{
		Periodicity: "DAILY",
		Data:        []map[string]interface{}{{"symbol": "AAPL"}},
	}
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for missing tenant_id")
	}
}

func TestIngestMessageValidateRejectsEmptyData(t *testing.T) {
	msg := IngestMessage{TenantID: "acme", Periodicity: "DAILY"}
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty data")
	}
}
