// Package workflow implements the dual-approval state machine for purchase
// requests. It holds no I/O: persistence, identity and display concerns are
// handled by the caller through Init and Snapshot.
package workflow

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"procurement/internal/model"

	"github.com/shopspring/decimal"
)

const idPrefix = "#PED-"

// QuoteDraft is a supplier offer as submitted by the requester.
type QuoteDraft struct {
	Supplier     string
	Amount       decimal.Decimal
	Currency     model.Currency
	DeliveryTerm string
	Notes        string
}

// Draft carries everything needed to open a new purchase request.
type Draft struct {
	Description     string
	Justification   string
	Urgency         model.Urgency
	CostCenter      string
	Requester       string
	DefaultCurrency model.Currency
	Quotes          []QuoteDraft
}

// Actor identifies the manager acting on a request.
type Actor struct {
	ID   string
	Name string
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for ids and dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns the collection of purchase requests. Every operation runs as a
// critical section; results are deep copies the store never touches again.
type Store struct {
	mu       sync.RWMutex
	requests []model.PurchaseRequest
	now      func() time.Time
}

func NewStore(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init replaces the collection with a copy of previously persisted state.
func (s *Store) Init(requests []model.PurchaseRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = cloneAll(requests)
}

// Snapshot returns a copy of the whole collection in store order, ready to be flushed.
func (s *Store) Snapshot() []model.PurchaseRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.requests)
}

// Submit opens a new request in PENDING at level 1 with no amount decided.
func (s *Store) Submit(d Draft) (model.PurchaseRequest, error) {
	if err := validateDraft(d); err != nil {
		return model.PurchaseRequest{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := s.nextNumber(now.Year())
	num := fmt.Sprintf("%04d", n)

	quotes := make([]model.Quote, len(d.Quotes))
	for i, q := range d.Quotes {
		quotes[i] = model.Quote{
			ID:           fmt.Sprintf("COT-%s-%d", num, i+1),
			Supplier:     q.Supplier,
			Amount:       q.Amount,
			Currency:     q.Currency,
			DeliveryTerm: q.DeliveryTerm,
			Notes:        q.Notes,
			Selected:     false,
		}
	}

	req := model.PurchaseRequest{
		ID:                   fmt.Sprintf("%s%d-%s", idPrefix, now.Year(), num),
		Date:                 dayOf(now),
		Description:          d.Description,
		Justification:        d.Justification,
		Urgency:              d.Urgency,
		CostCenter:           d.CostCenter,
		Requester:            d.Requester,
		Amount:               decimal.NullDecimal{},
		Currency:             d.DefaultCurrency,
		Status:               model.StatusPending,
		CurrentApprovalLevel: model.LevelFirst,
		AmountDecided:        false,
		Quotes:               quotes,
		Approvals:            []model.Approval{},
		Version:              1,
	}

	s.requests = append([]model.PurchaseRequest{req}, s.requests...)
	return req.Clone(), nil
}

// SelectQuote marks exactly one quote as chosen and copies its price onto the request.
func (s *Store) SelectQuote(requestID, quoteID string) (model.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(requestID)
	if idx < 0 {
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
	}
	req := s.requests[idx].Clone()

	if req.Status.Terminal() {
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s is %s", ErrInvalidState, requestID, req.Status)
	}

	chosen := -1
	for i, q := range req.Quotes {
		if q.ID == quoteID {
			chosen = i
			break
		}
	}
	if chosen < 0 {
		return model.PurchaseRequest{}, fmt.Errorf("%w: quote %s in request %s", ErrNotFound, quoteID, requestID)
	}

	for i := range req.Quotes {
		req.Quotes[i].Selected = i == chosen
	}
	q := req.Quotes[chosen]
	req.Amount = decimal.NewNullDecimal(q.Amount)
	req.Currency = q.Currency
	req.AmountDecided = true
	req.Version++

	s.requests[idx] = req
	return req.Clone(), nil
}

// Approve records an approval at the current level and advances the request.
func (s *Store) Approve(requestID string, approver Actor, note string) (model.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(requestID)
	if idx < 0 {
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
	}
	req := s.requests[idx].Clone()

	if !req.AmountDecided {
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s", ErrAmountNotDecided, requestID)
	}

	level := req.CurrentApprovalLevel
	if req.HasRecord(approver.ID, level) {
		return model.PurchaseRequest{}, fmt.Errorf("%w: %s at level %d", ErrDuplicateApproval, approver.ID, level)
	}
	if req.Status.Terminal() {
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s is %s", ErrAlreadyFinalized, requestID, req.Status)
	}

	today := dayOf(s.now())
	switch level {
	case model.LevelFirst:
		req.Status = model.StatusPartiallyApproved
		req.CurrentApprovalLevel = model.LevelSecond
	case model.LevelSecond:
		req.Status = model.StatusApproved
		req.ApprovalDate = &today
	default:
		return model.PurchaseRequest{}, fmt.Errorf("%w: %d", ErrInvalidApprovalLevel, level)
	}

	req.Approvals = append(req.Approvals, model.Approval{
		ApproverID:   approver.ID,
		ApproverName: approver.Name,
		Date:         today,
		Note:         note,
		Level:        level,
		Decision:     model.DecisionApproved,
	})
	req.Version++

	s.requests[idx] = req
	return req.Clone(), nil
}

// Reject closes the request at any non-terminal stage. A note is mandatory.
func (s *Store) Reject(requestID string, approver Actor, note string) (model.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(requestID)
	if idx < 0 {
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
	}
	if strings.TrimSpace(note) == "" {
		return model.PurchaseRequest{}, ErrMissingJustification
	}
	req := s.requests[idx].Clone()

	switch req.Status {
	case model.StatusApproved, model.StatusRejected:
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s is %s", ErrAlreadyFinalized, requestID, req.Status)
	case model.StatusPending, model.StatusPartiallyApproved:
	}

	req.Approvals = append(req.Approvals, model.Approval{
		ApproverID:   approver.ID,
		ApproverName: approver.Name,
		Date:         dayOf(s.now()),
		Note:         note,
		Level:        req.CurrentApprovalLevel,
		Decision:     model.DecisionRejected,
	})
	req.Status = model.StatusRejected
	req.RejectionNote = note
	req.Version++

	s.requests[idx] = req
	return req.Clone(), nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.requests {
		if s.requests[i].ID == id {
			return i
		}
	}
	return -1
}

// nextNumber returns one past the highest request number used in year.
func (s *Store) nextNumber(year int) int {
	prefix := idPrefix + strconv.Itoa(year) + "-"
	highest := 0
	for _, r := range s.requests {
		if !strings.HasPrefix(r.ID, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(r.ID, prefix))
		if err == nil && n > highest {
			highest = n
		}
	}
	return highest + 1
}

func validateDraft(d Draft) error {
	if len(d.Quotes) == 0 {
		return fmt.Errorf("%w: at least one quote is required", ErrInvalidDraft)
	}
	if !d.Urgency.Valid() {
		return fmt.Errorf("%w: urgency %q", ErrInvalidDraft, d.Urgency)
	}
	if !d.DefaultCurrency.Valid() {
		return fmt.Errorf("%w: currency %q", ErrInvalidDraft, d.DefaultCurrency)
	}
	for i, q := range d.Quotes {
		if q.Amount.IsNegative() {
			return fmt.Errorf("%w: quote %d has a negative amount", ErrInvalidDraft, i+1)
		}
		if !q.Currency.Valid() {
			return fmt.Errorf("%w: quote %d currency %q", ErrInvalidDraft, i+1, q.Currency)
		}
	}
	return nil
}

// dayOf truncates t to its calendar day, expressed in UTC.
func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func cloneAll(in []model.PurchaseRequest) []model.PurchaseRequest {
	out := make([]model.PurchaseRequest, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}
