package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApprovalLevel_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ApprovalLevel
		wantErr string
	}{
		{name: "first", input: `1`, want: LevelFirst},
		{name: "second", input: `2`, want: LevelSecond},
		{name: "null keeps zero", input: `null`, want: 0},
		{name: "zero", input: `0`, wantErr: "invalid approval level 0"},
		{name: "three", input: `3`, wantErr: "invalid approval level 3"},
		{name: "negative", input: `-1`, wantErr: "invalid approval level -1"},
		{name: "string", input: `"1"`, wantErr: "invalid approval level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l ApprovalLevel
			err := json.Unmarshal([]byte(tt.input), &l)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, l)
		})
	}
}

func TestPurchaseRequest_UnmarshalRejectsUnknownEnums(t *testing.T) {
	var req PurchaseRequest
	err := json.Unmarshal([]byte(`{"id":"x","status":"ARCHIVED"}`), &req)
	assert.ErrorContains(t, err, `invalid status "ARCHIVED"`)

	err = json.Unmarshal([]byte(`{"id":"x","currency":"EUR"}`), &req)
	assert.ErrorContains(t, err, `invalid currency "EUR"`)

	err = json.Unmarshal([]byte(`{"id":"x","current_approval_level":5}`), &req)
	assert.ErrorContains(t, err, "invalid approval level 5")
}

func TestPurchaseRequest_UnmarshalNullEnumsStayEmpty(t *testing.T) {
	var req PurchaseRequest
	err := json.Unmarshal([]byte(`{"id":"x","status":null,"currency":null,"urgency":null,"current_approval_level":null}`), &req)
	require.NoError(t, err)

	assert.Empty(t, req.Status)
	assert.Empty(t, req.Currency)
	assert.Empty(t, req.Urgency)
	assert.Zero(t, req.CurrentApprovalLevel)
}

func TestPurchaseRequest_CloneIsDeep(t *testing.T) {
	req := PurchaseRequest{
		ID:     "#PED-2026-0001",
		Quotes: []Quote{{ID: "COT-001", Supplier: "Papelaria Central"}},
	}
	out := req.Clone()
	out.Quotes[0].Selected = true

	assert.False(t, req.Quotes[0].Selected)
	assert.NotNil(t, out.Approvals)
}
