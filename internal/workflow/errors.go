package workflow

import "errors"

var (
	// ErrNotFound is returned for an unknown request or quote id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDraft is returned when a submission has no quotes or carries invalid values.
	ErrInvalidDraft = errors.New("invalid draft")
	// ErrAmountNotDecided is returned when approving a request with no quote selected.
	ErrAmountNotDecided = errors.New("cannot approve a request with no quote selected")
	// ErrDuplicateApproval is returned when an approver acts twice at the same level.
	ErrDuplicateApproval = errors.New("approver already approved at this level")
	// ErrMissingJustification is returned when a rejection has no note.
	ErrMissingJustification = errors.New("rejection requires a justification")
	// ErrInvalidApprovalLevel is returned when a request sits at a level other than 1 or 2.
	ErrInvalidApprovalLevel = errors.New("invalid approval level")
	// ErrInvalidState is returned when changing the quote of a finalized request.
	ErrInvalidState = errors.New("quote selection is closed for this request")
	// ErrAlreadyFinalized is returned when approving or rejecting a finalized request.
	ErrAlreadyFinalized = errors.New("request is already finalized")
)
