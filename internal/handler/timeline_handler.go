package handler

import (
	"errors"
	"net/http"
	"strconv"

	"island-timeline/internal/services"
	"island-timeline/internal/transport/httpdto"
	timeline_errors "island-timeline/pkg/errors"

	"github.com/gin-gonic/gin"
)

type TimelineHandler struct {
	service *services.TimelineService
}

func NewTimelineHandler(service *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{service: service}
}

// List serves GET /api/v1/users/:user_id/timelines
// ?page_size=N&timestamp_before=T | &timestamp_after=T
func (h *TimelineHandler) List(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid user_id", "INVALID_REQUEST"))
		return
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid page_size", "INVALID_REQUEST"))
		return
	}

	before, err := parseOptionalInt64(c.Query("timestamp_before"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid timestamp_before", "INVALID_REQUEST"))
		return
	}
	after, err := parseOptionalInt64(c.Query("timestamp_after"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid timestamp_after", "INVALID_REQUEST"))
		return
	}

	page, err := h.service.RetrieveMultipleTimelines(c.Request.Context(), userID, pageSize, before, after)
	if err != nil {
		if errors.Is(err, timeline_errors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), "INVALID_REQUEST"))
			return
		}
		_ = c.Error(err)
		c.Status(http.StatusServiceUnavailable)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.FromTimelinePage(page)))
}

func parseOptionalInt64(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
