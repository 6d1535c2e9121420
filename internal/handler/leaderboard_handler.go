package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/salingbantu/impact-engine/internal/service"
	"github.com/salingbantu/impact-engine/pkg/response"
)

type LeaderboardHandler struct {
	leaderboardService service.LeaderboardService
}

func NewLeaderboardHandler(leaderboardService service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{
		leaderboardService: leaderboardService,
	}
}

func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	window := c.DefaultQuery("window", "all_time")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	res, err := h.leaderboardService.GetLeaderboard(c.Request.Context(), userID, window, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

// GetTrustLevel resolves an arbitrary score to its trust level without
// touching any user's stats. Useful for client-side previews.
func (h *LeaderboardHandler) GetTrustLevel(c *gin.Context) {
	score, err := strconv.Atoi(c.Query("score"))
	if err != nil || score < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be a non-negative integer"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": service.TrustStatusFor(score)})
}

func (h *LeaderboardHandler) GetTrustStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.leaderboardService.GetTrustStatus(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
