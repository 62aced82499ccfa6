package middleware

import (
	"time"

	"island-timeline/pkg/logger"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		log := l
		if log == nil {
			log = logger.GetGlobalLogger()
		}
		log.InfoCtx(c.Request.Context(), "%s %s %d %s", method, path, c.Writer.Status(), time.Since(start).String())
	}
}
