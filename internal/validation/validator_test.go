// data-platform-core - Dynamic multi-tenant data access engine for wide-column stores
// SPDX-License-Identifier: AGPL-3.0-or-later

package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	TenantID string `validate:"required"`
	Limit    int    `validate:"min=1,max=1000"`
}

func TestValidateStructPassesValidInput(t *testing.T) {
	req := sampleRequest{TenantID: "IBM", Limit: 50}
	assert.Nil(t, ValidateStruct(&req))
}

func TestValidateStructReportsMissingRequiredField(t *testing.T) {
	req := sampleRequest{Limit: 50}
	err := ValidateStruct(&req)
	require.NotNil(t, err)
	require.Len(t, err.Fields, 1)
	assert.Equal(t, "TenantID", err.Fields[0].Field)
}

func TestValidateStructReportsOutOfRangeLimit(t *testing.T) {
	req := sampleRequest{TenantID: "IBM", Limit: 5000}
	err := ValidateStruct(&req)
	require.NotNil(t, err)
	assert.Equal(t, "max", err.Fields[0].Tag)
}
