package middleware

import (
	"errors"
	"net/http"

	"go-jobsearch-backend/internal/delivery/http/response"
	"go-jobsearch-backend/pkg/apperror"
	"go-jobsearch-backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Retryable {
				c.Header("Retry-After", "5")
			}
			var details any
			if len(appErr.Violations) > 0 {
				details = appErr.Violations
			}
			response.Error(c, appErr.Code, appErr.Message, details)
			return
		}

		// Never expose internal error details to clients; log server-side.
		if logger.Log != nil {
			logger.Log.Error("unhandled request error", "error", err)
		}
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
