package workflow

import (
	"fmt"

	"procurement/internal/model"
)

// FindByID returns a copy of the request with the given id.
func (s *Store) FindByID(id string) (model.PurchaseRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return model.PurchaseRequest{}, fmt.Errorf("%w: request %s", ErrNotFound, id)
	}
	return s.requests[idx].Clone(), nil
}

func (s *Store) List() []model.PurchaseRequest {
	return s.Snapshot()
}

func (s *Store) ListByStatus(status model.Status) []model.PurchaseRequest {
	return FilterByStatus(s.Snapshot(), status)
}

func (s *Store) ListByApprovalLevel(level model.ApprovalLevel) []model.PurchaseRequest {
	return FilterByApprovalLevel(s.Snapshot(), level)
}

func (s *Store) ListByRequester(name string) []model.PurchaseRequest {
	return FilterByRequester(s.Snapshot(), name)
}

// FilterByStatus keeps requests in the given status, preserving order.
func FilterByStatus(in []model.PurchaseRequest, status model.Status) []model.PurchaseRequest {
	return filter(in, func(r model.PurchaseRequest) bool { return r.Status == status })
}

// FilterByApprovalLevel keeps requests waiting at level. Rejected requests are excluded.
func FilterByApprovalLevel(in []model.PurchaseRequest, level model.ApprovalLevel) []model.PurchaseRequest {
	return filter(in, func(r model.PurchaseRequest) bool {
		return r.CurrentApprovalLevel == level && r.Status != model.StatusRejected
	})
}

func FilterByRequester(in []model.PurchaseRequest, name string) []model.PurchaseRequest {
	return filter(in, func(r model.PurchaseRequest) bool { return r.Requester == name })
}

func filter(in []model.PurchaseRequest, keep func(model.PurchaseRequest) bool) []model.PurchaseRequest {
	out := make([]model.PurchaseRequest, 0, len(in))
	for _, r := range in {
		if keep(r) {
			out = append(out, r.Clone())
		}
	}
	return out
}
