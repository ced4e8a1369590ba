package repository

import (
	"context"
	"testing"
	"time"

	"procurement/internal/model"
	"procurement/internal/workflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequests(t *testing.T) []model.PurchaseRequest {
	t.Helper()
	s := workflow.NewStore(workflow.WithClock(func() time.Time {
		return time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)
	}))
	draft := workflow.Draft{
		Description:     "Laptops",
		Justification:   "New hires",
		Urgency:         model.UrgencyHigh,
		CostCenter:      "ti",
		Requester:       "Carlos Silva",
		DefaultCurrency: model.CurrencyUSD,
		Quotes: []workflow.QuoteDraft{
			{Supplier: "Acme", Amount: decimal.RequireFromString("1999.90"), Currency: model.CurrencyUSD, DeliveryTerm: "15 days"},
			{Supplier: "Initech", Amount: decimal.NewFromInt(9800), Currency: model.CurrencyBRL, DeliveryTerm: "7 days", Notes: "includes setup"},
		},
	}

	approved, err := s.Submit(draft)
	require.NoError(t, err)
	_, err = s.SelectQuote(approved.ID, approved.Quotes[1].ID)
	require.NoError(t, err)
	_, err = s.Approve(approved.ID, workflow.Actor{ID: "gerente1@empresa.com", Name: "Roberto Silva"}, "ok")
	require.NoError(t, err)
	_, err = s.Approve(approved.ID, workflow.Actor{ID: "gerente2@empresa.com", Name: "Mariana Costa"}, "")
	require.NoError(t, err)

	rejected, err := s.Submit(draft)
	require.NoError(t, err)
	_, err = s.Reject(rejected.ID, workflow.Actor{ID: "gerente3@empresa.com", Name: "Paulo"}, "over budget")
	require.NoError(t, err)

	_, err = s.Submit(draft)
	require.NoError(t, err)

	return s.Snapshot()
}

func TestEncodeDecode_RoundTripIsIdempotent(t *testing.T) {
	requests := sampleRequests(t)

	first, err := EncodePurchaseRequests(requests)
	require.NoError(t, err)

	decoded, err := DecodePurchaseRequests(first)
	require.NoError(t, err)

	second, err := EncodePurchaseRequests(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(second))
	assert.Equal(t, string(first), string(second))

	require.Len(t, decoded, len(requests))
	for i := range requests {
		want, got := requests[i], decoded[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.CurrentApprovalLevel, got.CurrentApprovalLevel)
		assert.Equal(t, want.AmountDecided, got.AmountDecided)
		assert.Equal(t, want.Amount.Valid, got.Amount.Valid)
		assert.True(t, want.Amount.Decimal.Equal(got.Amount.Decimal))
		assert.True(t, want.Date.Equal(got.Date))
		assert.Equal(t, want.Approvals, got.Approvals)
		assert.Len(t, got.Quotes, len(want.Quotes))
		assert.Equal(t, want.Version, got.Version)
	}
}

func TestDecode_RejectsUnknownEnums(t *testing.T) {
	_, err := DecodePurchaseRequests([]byte(`[{"id":"#PED-2026-0001","status":"DONE"}]`))
	assert.ErrorContains(t, err, "invalid status")

	_, err = DecodePurchaseRequests([]byte(`[{"id":"#PED-2026-0001","status":"PENDING","currency":"EUR"}]`))
	assert.ErrorContains(t, err, "invalid currency")
}

func TestDecode_NormalizesMissingCollections(t *testing.T) {
	got, err := DecodePurchaseRequests([]byte(`[{"id":"#PED-2026-0001","status":"PENDING","amount":null}]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Quotes)
	assert.NotNil(t, got[0].Approvals)
	assert.False(t, got[0].Amount.Valid)

	got, err = DecodePurchaseRequests([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPurchaseRequestRepository_LoadSave(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseRequestRepository(NewGormKVStore(newTestDB(t)))

	empty, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	requests := sampleRequests(t)
	require.NoError(t, repo.SaveAll(ctx, requests))

	loaded, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, requests[0].ID, loaded[0].ID)
	assert.Equal(t, model.StatusPending, loaded[0].Status)
	assert.Equal(t, model.StatusRejected, loaded[1].Status)
	assert.Equal(t, model.StatusApproved, loaded[2].Status)
	require.NotNil(t, loaded[2].ApprovalDate)

	require.NoError(t, repo.SaveAll(ctx, loaded[:1]))
	loaded, err = repo.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestDecode_FillsLegacyDefaults(t *testing.T) {
	raw := []byte(`[
		{"id":"#PED-2023-0101","status":"PENDING","amount":"120.5","quotes":[]},
		{"id":"#PED-2023-0102","status":"REJECTED","current_approval_level":1,"amount_decided":false,"currency":"USD",
		 "approvals":[{"approver_id":"gerente1@empresa.com","level":1}],"rejection_note":"no budget"},
		{"id":"#PED-2023-0103","current_approval_level":null,"currency":null}
	]`)

	got, err := DecodePurchaseRequests(raw)
	require.NoError(t, err)
	require.Len(t, got, 3)

	legacy := got[0]
	assert.Equal(t, model.LevelFirst, legacy.CurrentApprovalLevel)
	assert.True(t, legacy.AmountDecided)
	assert.Equal(t, model.CurrencyBRL, legacy.Currency)

	rejected := got[1]
	assert.False(t, rejected.AmountDecided)
	assert.Equal(t, model.CurrencyUSD, rejected.Currency)
	require.Len(t, rejected.Approvals, 1)
	assert.Equal(t, model.DecisionRejected, rejected.Approvals[0].Decision)

	bare := got[2]
	assert.Equal(t, model.StatusPending, bare.Status)
	assert.Equal(t, model.LevelFirst, bare.CurrentApprovalLevel)
	assert.Equal(t, model.CurrencyBRL, bare.Currency)

	// A defaulted record goes through the workflow like a current one.
	s := workflow.NewStore()
	s.Init(got)
	assert.Len(t, s.ListByApprovalLevel(model.LevelFirst), 2)
	approved, err := s.Approve(legacy.ID, workflow.Actor{ID: "gerente1@empresa.com", Name: "Roberto Silva"}, "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyApproved, approved.Status)
}

func TestDecode_RejectsInvalidLevel(t *testing.T) {
	_, err := DecodePurchaseRequests([]byte(`[{"id":"#PED-2026-0001","status":"PENDING","current_approval_level":3}]`))
	assert.ErrorContains(t, err, "invalid approval level")
}

func TestPurchaseRequestRepository_Exists(t *testing.T) {
	ctx := context.Background()
	repo := NewPurchaseRequestRepository(NewGormKVStore(newTestDB(t)))

	exists, err := repo.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, repo.SaveAll(ctx, nil))
	exists, err = repo.Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)
}
