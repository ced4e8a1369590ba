package handler

import (
	"errors"
	"net/http"

	"procurement/internal/workflow"
	"procurement/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusFor maps workflow errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrInvalidDraft),
		errors.Is(err, workflow.ErrMissingJustification):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrAmountNotDecided),
		errors.Is(err, workflow.ErrDuplicateApproval),
		errors.Is(err, workflow.ErrInvalidState),
		errors.Is(err, workflow.ErrAlreadyFinalized),
		errors.Is(err, workflow.ErrInvalidApprovalLevel):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	code := statusFor(err)
	response.Abort(c, code, err.Error())
}
