package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"procurement/internal/model"
)

// PurchaseRequestsKey is the key the whole request collection is stored under.
const PurchaseRequestsKey = "purchase_requests"

// PurchaseRequestRepository loads and saves the full request collection.
type PurchaseRequestRepository interface {
	LoadAll(ctx context.Context) ([]model.PurchaseRequest, error)
	SaveAll(ctx context.Context, requests []model.PurchaseRequest) error
	// Exists reports whether the collection was ever saved.
	Exists(ctx context.Context) (bool, error)
}

type purchaseRequestRepository struct {
	kv KVStore
}

func NewPurchaseRequestRepository(kv KVStore) PurchaseRequestRepository {
	return &purchaseRequestRepository{kv: kv}
}

func (r *purchaseRequestRepository) LoadAll(ctx context.Context) ([]model.PurchaseRequest, error) {
	raw, err := r.kv.Get(ctx, PurchaseRequestsKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return []model.PurchaseRequest{}, nil
		}
		return nil, fmt.Errorf("failed to read purchase requests: %w", err)
	}
	return DecodePurchaseRequests(raw)
}

func (r *purchaseRequestRepository) Exists(ctx context.Context) (bool, error) {
	if _, err := r.kv.Get(ctx, PurchaseRequestsKey); err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read purchase requests: %w", err)
	}
	return true, nil
}

func (r *purchaseRequestRepository) SaveAll(ctx context.Context, requests []model.PurchaseRequest) error {
	raw, err := EncodePurchaseRequests(requests)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, PurchaseRequestsKey, raw); err != nil {
		return fmt.Errorf("failed to write purchase requests: %w", err)
	}
	return nil
}

// EncodePurchaseRequests serializes the collection as a JSON array.
func EncodePurchaseRequests(requests []model.PurchaseRequest) ([]byte, error) {
	if requests == nil {
		requests = []model.PurchaseRequest{}
	}
	raw, err := json.Marshal(requests)
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase requests: %w", err)
	}
	return raw, nil
}

// storedRequest tells a missing amount_decided apart from false.
type storedRequest struct {
	model.PurchaseRequest
	AmountDecided *bool `json:"amount_decided"`
}

// DecodePurchaseRequests parses a JSON array written by EncodePurchaseRequests.
// Records saved before some fields existed get the same defaults the portal
// always applied: level 1, amount decided, BRL.
func DecodePurchaseRequests(raw []byte) ([]model.PurchaseRequest, error) {
	var stored []storedRequest
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode purchase requests: %w", err)
	}

	requests := make([]model.PurchaseRequest, 0, len(stored))
	for _, st := range stored {
		req := st.PurchaseRequest
		req.AmountDecided = st.AmountDecided == nil || *st.AmountDecided
		if req.CurrentApprovalLevel == 0 {
			req.CurrentApprovalLevel = model.LevelFirst
		}
		if req.Currency == "" {
			req.Currency = model.CurrencyBRL
		}
		if req.Status == "" {
			req.Status = model.StatusPending
		}
		if req.Quotes == nil {
			req.Quotes = []model.Quote{}
		}
		if req.Approvals == nil {
			req.Approvals = []model.Approval{}
		}
		for i := range req.Approvals {
			if req.Approvals[i].Decision == "" {
				req.Approvals[i].Decision = legacyDecision(req, i)
			}
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// legacyDecision infers the decision of a record stored without one: only the
// last record of a rejected request can be the rejection.
func legacyDecision(req model.PurchaseRequest, i int) model.Decision {
	if req.Status == model.StatusRejected && i == len(req.Approvals)-1 {
		return model.DecisionRejected
	}
	return model.DecisionApproved
}
