package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"adaptive-voice/internal/api/errors"
)

// ErrorHandler recovers panics into consistent JSON error responses.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		requestID := c.GetString("request_id")

		var apiErr *errors.APIError

		switch err := recovered.(type) {
		case *errors.APIError:
			apiErr = err
			apiErr.RequestID = requestID
		case error:
			logger.Error("internal server error",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
			apiErr = &errors.APIError{
				Kind:      errors.KindInternal,
				Message:   "Internal server error",
				RequestID: requestID,
			}
		default:
			logger.Error("unknown panic",
				zap.Any("recovered", recovered),
				zap.String("request_id", requestID),
			)
			apiErr = &errors.APIError{
				Kind:      errors.KindInternal,
				Message:   "Internal server error",
				RequestID: requestID,
			}
		}

		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
	})
}

// HandleError writes an error response for a handler. Domain errors map to
// their API representation; anything unexpected panics into ErrorHandler.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	apiErr := errors.FromDomain(err)
	if apiErr.Kind == errors.KindInternal {
		panic(err)
	}

	apiErr.RequestID = c.GetString("request_id")
	c.Header("Content-Type", "application/json")
	c.AbortWithStatusJSON(apiErr.HTTPStatus(), apiErr)
}
