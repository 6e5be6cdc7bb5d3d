package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "fleetdesk/backend/pkg/errors"
	"fleetdesk/backend/pkg/response"
)

// writeServiceError maps the shared error kinds to the response envelope.
// Anything else is an infrastructure failure: it is attached to the gin
// context for the request logger and answered with a bare 500.
func writeServiceError(c *gin.Context, err error) {
	var ve *pkgerrors.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, ve.Message, ve.Field)
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, response.CodeValidation, err.Error())
	case errors.Is(err, pkgerrors.ErrDuplicateSubmission):
		response.Conflict(c, response.CodeDuplicateSubmission, err.Error())
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.NotFound(c, response.CodeNotFound, err.Error())
	case errors.Is(err, pkgerrors.ErrInvalidState):
		response.Conflict(c, response.CodeInvalidState, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeConflict, err.Error())
	case errors.Is(err, pkgerrors.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
