package model

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of a purchase request.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusPartiallyApproved Status = "PARTIALLY_APPROVED"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartiallyApproved, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected:
		return true
	case StatusPending, StatusPartiallyApproved:
		return false
	}
	return false
}

func (s *Status) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(s), func() bool { return s.Valid() }, "status")
}

// Urgency enum
type Urgency string

const (
	UrgencyNormal Urgency = "NORMAL"
	UrgencyHigh   Urgency = "HIGH"
)

func (u Urgency) Valid() bool {
	switch u {
	case UrgencyNormal, UrgencyHigh:
		return true
	}
	return false
}

func (u *Urgency) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(u), func() bool { return u.Valid() }, "urgency")
}

// Currency is one of the two currencies quotes can be priced in.
type Currency string

const (
	CurrencyBRL Currency = "BRL"
	CurrencyUSD Currency = "USD"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyBRL, CurrencyUSD:
		return true
	}
	return false
}

func (c *Currency) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(c), func() bool { return c.Valid() }, "currency")
}

// ApprovalLevel is the stage of the dual approval: 1 (initial) or 2 (final).
type ApprovalLevel int

const (
	LevelFirst  ApprovalLevel = 1
	LevelSecond ApprovalLevel = 2
)

func (l ApprovalLevel) Valid() bool {
	return l == LevelFirst || l == LevelSecond
}

// UnmarshalJSON accepts 1 or 2. null leaves the level unset.
func (l *ApprovalLevel) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid approval level: %w", err)
	}
	if !ApprovalLevel(n).Valid() {
		return fmt.Errorf("invalid approval level %d", n)
	}
	*l = ApprovalLevel(n)
	return nil
}

// Decision records whether an approval entry approved or rejected the request
type Decision string

const (
	DecisionApproved Decision = "APPROVED"
	DecisionRejected Decision = "REJECTED"
)

func (d Decision) Valid() bool {
	switch d {
	case DecisionApproved, DecisionRejected:
		return true
	}
	return false
}

func (d *Decision) UnmarshalJSON(data []byte) error {
	return unmarshalEnum(data, (*string)(d), func() bool { return d.Valid() }, "decision")
}

// Quote is one supplier's priced offer attached to a purchase request
type Quote struct {
	ID           string          `json:"id"`
	Supplier     string          `json:"supplier"`
	Amount       decimal.Decimal `json:"amount"`
	Currency     Currency        `json:"currency"`
	DeliveryTerm string          `json:"delivery_term"`
	Notes        string          `json:"notes,omitempty"`
	Selected     bool            `json:"selected"`
}

// Approval is an immutable entry in a request's approval history.
// Rejections are recorded in the same sequence with DecisionRejected.
type Approval struct {
	ApproverID   string        `json:"approver_id"`
	ApproverName string        `json:"approver_name"`
	Date         time.Time     `json:"date"`
	Note         string        `json:"note,omitempty"`
	Level        ApprovalLevel `json:"level"`
	Decision     Decision      `json:"decision"`
}

// PurchaseRequest is the aggregate root of the approval workflow.
// It owns its quotes and approvals; mutate it only through the workflow store.
type PurchaseRequest struct {
	ID                   string              `json:"id"`
	Date                 time.Time           `json:"date"`
	Description          string              `json:"description"`
	Justification        string              `json:"justification"`
	Urgency              Urgency             `json:"urgency"`
	CostCenter           string              `json:"cost_center"`
	Requester            string              `json:"requester"`
	Amount               decimal.NullDecimal `json:"amount"`
	Currency             Currency            `json:"currency"`
	Status               Status              `json:"status"`
	CurrentApprovalLevel ApprovalLevel       `json:"current_approval_level"`
	AmountDecided        bool                `json:"amount_decided"`
	ApprovalDate         *time.Time          `json:"approval_date,omitempty"`
	RejectionNote        string              `json:"rejection_note,omitempty"`
	Quotes               []Quote             `json:"quotes"`
	Approvals            []Approval          `json:"approvals"`
	Version              int                 `json:"version"`
}

// Clone returns a deep copy that shares no slices or pointers with r.
func (r PurchaseRequest) Clone() PurchaseRequest {
	out := r
	out.Quotes = make([]Quote, len(r.Quotes))
	copy(out.Quotes, r.Quotes)
	out.Approvals = make([]Approval, len(r.Approvals))
	copy(out.Approvals, r.Approvals)
	if r.ApprovalDate != nil {
		d := *r.ApprovalDate
		out.ApprovalDate = &d
	}
	return out
}

// SelectedQuote returns the selected quote, if any.
func (r PurchaseRequest) SelectedQuote() (Quote, bool) {
	for _, q := range r.Quotes {
		if q.Selected {
			return q, true
		}
	}
	return Quote{}, false
}

// HasRecord reports whether approverID already has an entry at level.
func (r PurchaseRequest) HasRecord(approverID string, level ApprovalLevel) bool {
	for _, a := range r.Approvals {
		if a.ApproverID == approverID && a.Level == level {
			return true
		}
	}
	return false
}

func unmarshalEnum(data []byte, dst *string, valid func() bool, name string) error {
	if string(data) == "null" {
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	*dst = raw
	if !valid() {
		return fmt.Errorf("invalid %s %q", name, raw)
	}
	return nil
}
