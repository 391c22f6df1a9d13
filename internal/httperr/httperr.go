// Package httperr maps domain errors onto the JSON response envelope.
package httperr

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agro-ad/backend/internal/errs"
	"github.com/agro-ad/backend/internal/schedule"
	"github.com/agro-ad/backend/pkg/response"
)

// Write sends the response matching err: 400 validation, 409 scheduling conflict,
// 404 not found, otherwise 500 with the error logged under action.
func Write(c *gin.Context, logger *zap.Logger, action string, err error) {
	var verr *errs.ValidationError
	if errors.As(err, &verr) {
		response.InvalidField(c, verr.Field, verr.Message)
		return
	}
	if conflict, ok := schedule.AsConflict(err); ok {
		response.ConflictWithData(c, "scheduling conflict: "+conflict.Error(), conflict.Payload())
		return
	}
	if errors.Is(err, errs.ErrNotFound) {
		response.NotFound(c, err.Error())
		return
	}
	logger.Error(action+" failed", zap.Error(err))
	response.Internal(c, "failed to "+action)
}
