package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/salingbantu/impact-engine/internal/service"
	"github.com/salingbantu/impact-engine/pkg/response"
)

type AchievementHandler struct {
	achievementService service.AchievementService
}

func NewAchievementHandler(achievementService service.AchievementService) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
	}
}

// ListAchievements returns the full catalog with the caller's progress and
// unlock state per achievement.
func (h *AchievementHandler) ListAchievements(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.achievementService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}
