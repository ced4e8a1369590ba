package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"procurement/internal/currency"
	"procurement/internal/model"
	"procurement/internal/notify"
	"procurement/internal/repository"
	"procurement/internal/workflow"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type QuoteDTO struct {
	Supplier     string           `json:"supplier" binding:"required"`
	Amount       *decimal.Decimal `json:"amount" binding:"required"`
	Currency     model.Currency   `json:"currency" binding:"required"`
	DeliveryTerm string           `json:"delivery_term" binding:"required"`
	Notes        string           `json:"notes"`
}

type SubmitPurchaseRequestDTO struct {
	Description   string         `json:"description" binding:"required"`
	Justification string         `json:"justification" binding:"required"`
	Urgency       model.Urgency  `json:"urgency" binding:"required"`
	CostCenter    string         `json:"cost_center" binding:"required,oneof=marketing ti rh financeiro operacoes"`
	Currency      model.Currency `json:"currency"` // default currency until a quote is selected
	Quotes        []QuoteDTO     `json:"quotes" binding:"required,dive"`
}

type DecisionDTO struct {
	Note string `json:"note"`
}

type PurchaseRequestFilter struct {
	Status    model.Status
	Level     model.ApprovalLevel
	Requester string
	Page      int
	Limit     int
}

// Identity is the authenticated user acting on the portal.
type Identity struct {
	ID   string
	Name string
}

type PurchaseRequestResponse struct {
	model.PurchaseRequest
	FormattedAmount string `json:"formatted_amount"`
}

// --- Interface ---

type PurchaseService interface {
	Load(ctx context.Context) error
	SeedDemoRequests(ctx context.Context) error
	Submit(ctx context.Context, requester Identity, req SubmitPurchaseRequestDTO) (PurchaseRequestResponse, error)
	SelectQuote(ctx context.Context, actor Identity, requestID, quoteID string) (PurchaseRequestResponse, error)
	Approve(ctx context.Context, actor Identity, requestID, note string) (PurchaseRequestResponse, error)
	Reject(ctx context.Context, actor Identity, requestID, note string) (PurchaseRequestResponse, error)
	Get(ctx context.Context, requestID string) (PurchaseRequestResponse, error)
	List(ctx context.Context, filter PurchaseRequestFilter) ([]PurchaseRequestResponse, int64, error)
}

type purchaseService struct {
	mu              sync.Mutex // spans mutate + flush
	store           *workflow.Store
	repo            repository.PurchaseRequestRepository
	audit           repository.AuditRepository
	publisher       notify.Publisher
	logger          zerolog.Logger
	defaultCurrency model.Currency
}

func NewPurchaseService(
	store *workflow.Store,
	repo repository.PurchaseRequestRepository,
	audit repository.AuditRepository,
	publisher notify.Publisher,
	logger zerolog.Logger,
	defaultCurrency model.Currency,
) PurchaseService {
	if publisher == nil {
		publisher = notify.NewNoop()
	}
	return &purchaseService{
		store:           store,
		repo:            repo,
		audit:           audit,
		publisher:       publisher,
		logger:          logger.With().Str("component", "purchase_service").Logger(),
		defaultCurrency: defaultCurrency,
	}
}

// --- Implementation ---

// Load initializes the store from the persisted collection.
func (s *purchaseService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	requests, err := s.repo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load purchase requests: %w", err)
	}
	s.store.Init(requests)
	s.logger.Info().Int("count", len(requests)).Msg("purchase requests loaded")
	return nil
}

// SeedDemoRequests stores the sample requests when nothing was ever persisted.
// An existing collection, even an empty one, is left alone.
func (s *purchaseService) SeedDemoRequests(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.repo.Exists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check purchase requests: %w", err)
	}
	if exists {
		return nil
	}

	before := s.store.Snapshot()
	seed := demoRequests()
	s.store.Init(seed)
	if err := s.repo.SaveAll(ctx, s.store.Snapshot()); err != nil {
		s.store.Init(before)
		return fmt.Errorf("failed to persist demo purchase requests: %w", err)
	}
	s.logger.Info().Int("count", len(seed)).Msg("demo purchase requests seeded")
	return nil
}

func (s *purchaseService) Submit(ctx context.Context, requester Identity, req SubmitPurchaseRequestDTO) (PurchaseRequestResponse, error) {
	draft := workflow.Draft{
		Description:     req.Description,
		Justification:   req.Justification,
		Urgency:         req.Urgency,
		CostCenter:      req.CostCenter,
		Requester:       requester.Name,
		DefaultCurrency: req.Currency,
		Quotes:          make([]workflow.QuoteDraft, 0, len(req.Quotes)),
	}
	if draft.DefaultCurrency == "" {
		draft.DefaultCurrency = s.defaultCurrency
	}
	for i, q := range req.Quotes {
		if q.Amount == nil {
			return PurchaseRequestResponse{}, fmt.Errorf("%w: quote %d has no amount", workflow.ErrInvalidDraft, i+1)
		}
		draft.Quotes = append(draft.Quotes, workflow.QuoteDraft{
			Supplier:     q.Supplier,
			Amount:       *q.Amount,
			Currency:     q.Currency,
			DeliveryTerm: q.DeliveryTerm,
			Notes:        q.Notes,
		})
	}

	pr, err := s.mutate(ctx, func() (model.PurchaseRequest, error) {
		return s.store.Submit(draft)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("requester", requester.ID).Msg("submit rejected")
		return PurchaseRequestResponse{}, err
	}

	s.record(ctx, requester, model.ActionCreatePurchaseRequest, notify.EventSubmitted, pr, map[string]interface{}{
		"quotes":      len(pr.Quotes),
		"cost_center": pr.CostCenter,
		"urgency":     pr.Urgency,
	})
	return toPurchaseResponse(pr), nil
}

func (s *purchaseService) SelectQuote(ctx context.Context, actor Identity, requestID, quoteID string) (PurchaseRequestResponse, error) {
	pr, err := s.mutate(ctx, func() (model.PurchaseRequest, error) {
		return s.store.SelectQuote(requestID, quoteID)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Str("quote_id", quoteID).Msg("quote selection rejected")
		return PurchaseRequestResponse{}, err
	}

	s.record(ctx, actor, model.ActionSelectQuote, notify.EventQuoteSelected, pr, map[string]interface{}{
		"quote_id": quoteID,
		"amount":   pr.Amount.Decimal.String(),
		"currency": pr.Currency,
	})
	return toPurchaseResponse(pr), nil
}

func (s *purchaseService) Approve(ctx context.Context, actor Identity, requestID, note string) (PurchaseRequestResponse, error) {
	pr, err := s.mutate(ctx, func() (model.PurchaseRequest, error) {
		return s.store.Approve(requestID, workflow.Actor{ID: actor.ID, Name: actor.Name}, note)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Str("approver", actor.ID).Msg("approval rejected")
		return PurchaseRequestResponse{}, err
	}

	last := pr.Approvals[len(pr.Approvals)-1]
	s.record(ctx, actor, model.ActionApprovePurchaseRequest, notify.EventApproved, pr, map[string]interface{}{
		"level":  last.Level,
		"status": pr.Status,
		"note":   note,
	})
	return toPurchaseResponse(pr), nil
}

func (s *purchaseService) Reject(ctx context.Context, actor Identity, requestID, note string) (PurchaseRequestResponse, error) {
	pr, err := s.mutate(ctx, func() (model.PurchaseRequest, error) {
		return s.store.Reject(requestID, workflow.Actor{ID: actor.ID, Name: actor.Name}, note)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("request_id", requestID).Str("approver", actor.ID).Msg("rejection rejected")
		return PurchaseRequestResponse{}, err
	}

	s.record(ctx, actor, model.ActionRejectPurchaseRequest, notify.EventRejected, pr, map[string]interface{}{
		"level":  pr.CurrentApprovalLevel,
		"reason": note,
	})
	return toPurchaseResponse(pr), nil
}

func (s *purchaseService) Get(ctx context.Context, requestID string) (PurchaseRequestResponse, error) {
	pr, err := s.store.FindByID(requestID)
	if err != nil {
		return PurchaseRequestResponse{}, err
	}
	return toPurchaseResponse(pr), nil
}

func (s *purchaseService) List(ctx context.Context, filter PurchaseRequestFilter) ([]PurchaseRequestResponse, int64, error) {
	requests := s.store.List()
	if filter.Status != "" {
		requests = workflow.FilterByStatus(requests, filter.Status)
	}
	if filter.Level != 0 {
		requests = workflow.FilterByApprovalLevel(requests, filter.Level)
	}
	if filter.Requester != "" {
		requests = workflow.FilterByRequester(requests, filter.Requester)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	total := int64(len(requests))
	start := (filter.Page - 1) * filter.Limit
	if start > len(requests) {
		start = len(requests)
	}
	end := start + filter.Limit
	if end > len(requests) {
		end = len(requests)
	}

	result := make([]PurchaseRequestResponse, 0, end-start)
	for _, pr := range requests[start:end] {
		result = append(result, toPurchaseResponse(pr))
	}
	return result, total, nil
}

// mutate runs fn and flushes the collection. If the flush fails the store is
// restored to its previous state, so callers never observe a half-applied change.
func (s *purchaseService) mutate(ctx context.Context, fn func() (model.PurchaseRequest, error)) (model.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.store.Snapshot()
	pr, err := fn()
	if err != nil {
		return model.PurchaseRequest{}, err
	}

	if err := s.repo.SaveAll(ctx, s.store.Snapshot()); err != nil {
		s.store.Init(before)
		s.logger.Error().Err(err).Str("request_id", pr.ID).Msg("flush failed, change rolled back")
		return model.PurchaseRequest{}, fmt.Errorf("failed to persist purchase requests: %w", err)
	}
	return pr, nil
}

// record writes the audit entry and publishes the change event. Failures are logged only.
func (s *purchaseService) record(ctx context.Context, actor Identity, action, eventType string, pr model.PurchaseRequest, details map[string]interface{}) {
	s.logger.Info().
		Str("action", action).
		Str("request_id", pr.ID).
		Str("actor", actor.ID).
		Str("status", string(pr.Status)).
		Int("level", int(pr.CurrentApprovalLevel)).
		Msg("purchase request updated")

	if s.audit != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.Error().Err(err).Str("request_id", pr.ID).Msg("failed to encode audit details")
			raw = []byte("{}")
		}
		entry := model.AuditLog{
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			Action:     action,
			EntityID:   pr.ID,
			EntityName: pr.Description,
			Details:    string(raw),
		}
		if err := s.audit.Log(ctx, &entry); err != nil {
			s.logger.Error().Err(err).Str("request_id", pr.ID).Msg("failed to write audit log")
		}
	}

	evt := notify.Event{
		Type:      eventType,
		RequestID: pr.ID,
		Status:    pr.Status,
		Level:     pr.CurrentApprovalLevel,
		ActorID:   actor.ID,
		At:        time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Error().Err(err).Str("request_id", pr.ID).Msg("failed to publish event")
	}
}

// --- Helpers ---

func toPurchaseResponse(pr model.PurchaseRequest) PurchaseRequestResponse {
	return PurchaseRequestResponse{
		PurchaseRequest: pr,
		FormattedAmount: currency.Format(pr.Amount, pr.Currency),
	}
}
