package middleware

import (
	"errors"
	"net/http"

	"island-timeline/internal/transport/httpdto"
	timeline_errors "island-timeline/pkg/errors"
	"island-timeline/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if l != nil {
			l.ErrorCtx(c.Request.Context(), "request error: %s", err.Error())
		}

		status, code := c.Writer.Status(), "INTERNAL_ERROR"
		switch {
		case errors.Is(err, timeline_errors.ErrRateLimited):
			status, code = http.StatusTooManyRequests, "RATE_LIMITED"
		case errors.Is(err, timeline_errors.ErrInvalidInput):
			status, code = http.StatusBadRequest, "INVALID_REQUEST"
		case errors.Is(err, timeline_errors.ErrServiceUnavailable):
			status, code = http.StatusServiceUnavailable, "UNHEALTHY"
		case errors.Is(err, timeline_errors.ErrTransient):
			status, code = http.StatusServiceUnavailable, "UNAVAILABLE"
		case errors.Is(err, timeline_errors.ErrNotFound):
			status, code = http.StatusNotFound, "NOT_FOUND"
		case status < http.StatusBadRequest:
			status = http.StatusInternalServerError
		}
		c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
	}
}
