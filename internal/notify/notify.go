// Package notify publishes purchase-request change events to interested parties.
package notify

import (
	"context"
	"errors"
	"time"

	"procurement/internal/model"
)

// Event types
const (
	EventSubmitted     = "purchase_request.submitted"
	EventQuoteSelected = "purchase_request.quote_selected"
	EventApproved      = "purchase_request.approved"
	EventRejected      = "purchase_request.rejected"
)

// Event describes a workflow transition that already happened.
type Event struct {
	Type      string              `json:"type"`
	RequestID string              `json:"request_id"`
	Status    model.Status        `json:"status"`
	Level     model.ApprovalLevel `json:"level"`
	ActorID   string              `json:"actor_id"`
	At        time.Time           `json:"at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

type noop struct{}

// NewNoop returns a Publisher that drops every event.
func NewNoop() Publisher { return noop{} }

func (noop) Publish(context.Context, Event) error { return nil }

type multi []Publisher

// NewMulti fans an event out to every publisher and joins their errors.
func NewMulti(publishers ...Publisher) Publisher {
	return multi(publishers)
}

func (m multi) Publish(ctx context.Context, evt Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
