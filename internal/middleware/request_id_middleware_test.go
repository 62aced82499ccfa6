package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"island-timeline/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequestIDMiddlewareTagsContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())

	var requestID, userID interface{}
	engine.GET("/api/v1/users/:user_id/timelines", func(c *gin.Context) {
		requestID = c.Request.Context().Value(logger.RequestIdKey)
		userID = c.Request.Context().Value(logger.UserIdKey)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/u-9/timelines", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
	assert.Equal(t, "upstream-id", requestID)
	assert.Equal(t, "u-9", userID)
}

func TestRequestIDMiddlewareMintsID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestIDMiddleware())
	engine.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Len(t, rec.Header().Get(RequestIDHeader), 32)
}
