package handler

import (
	"net/http"

	"paycompliance/internal/apperror"
	"paycompliance/internal/contextutil"
	"paycompliance/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes err using the coded error envelope. Anything that is
// not an AppError is reported as INTERNAL_ERROR without leaking its text.
func respondError(c *gin.Context, err error) {
	appErr := apperror.As(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		contextutil.GetLogger(c.Request.Context(), zap.L()).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(appErr.HTTPStatus, response.CodedError(appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details))
}

// bindJSON binds the request body and answers 400 on failure.
func bindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, apperror.MapValidationError(err))
		return false
	}
	return true
}
