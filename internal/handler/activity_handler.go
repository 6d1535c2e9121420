package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/service"
	"github.com/salingbantu/impact-engine/pkg/response"
	"github.com/salingbantu/impact-engine/pkg/validator"
)

type ActivityHandler struct {
	activityService service.ActivityService
	rateLimiter     service.RateLimiter
}

func NewActivityHandler(activityService service.ActivityService, rateLimiter service.RateLimiter) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		rateLimiter:     rateLimiter,
	}
}

func (h *ActivityHandler) RecordActivity(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.activityService.RecordActivity(c.Request.Context(), userID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": res})
}

func (h *ActivityHandler) ListActivities(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, offset := parsePagination(c)

	activities, err := h.activityService.ListActivities(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": activities})
}

func (h *ActivityHandler) GetPointsBreakdown(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	breakdown, err := h.activityService.GetPointsBreakdown(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": breakdown})
}

// GetRateLimitStatus reports the caller's window for one operation without
// consuming an attempt.
func (h *ActivityHandler) GetRateLimitStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	operation := c.Param("operation")
	switch operation {
	case service.OpRecordActivity, service.OpRequestConfirmation, service.OpRedeem:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown operation"})
		return
	}

	status, err := h.rateLimiter.Check(c.Request.Context(), operation, userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": status})
}

func parsePagination(c *gin.Context) (limit, offset int) {
	limit = 20
	offset = 0
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
