package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/salingbantu/impact-engine/internal/dto"
	"github.com/salingbantu/impact-engine/internal/service"
	"github.com/salingbantu/impact-engine/pkg/response"
	"github.com/salingbantu/impact-engine/pkg/validator"
)

type RedemptionHandler struct {
	redemptionService service.RedemptionService
	rewardSearch      service.RewardSearch
}

func NewRedemptionHandler(redemptionService service.RedemptionService, rewardSearch service.RewardSearch) *RedemptionHandler {
	return &RedemptionHandler{
		redemptionService: redemptionService,
		rewardSearch:      rewardSearch,
	}
}

func (h *RedemptionHandler) ListRewards(c *gin.Context) {
	rewards, err := h.redemptionService.ListRewards(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rewards})
}

func (h *RedemptionHandler) SearchRewards(c *gin.Context) {
	if h.rewardSearch == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "search is not configured"})
		return
	}

	query := c.Query("q")
	category := c.Query("category")
	maxCost, _ := strconv.Atoi(c.DefaultQuery("max_cost", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	docs, err := h.rewardSearch.Search(c.Request.Context(), query, category, maxCost, limit)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": docs})
}

func (h *RedemptionHandler) Redeem(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reward id"})
		return
	}

	var req dto.RedeemRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}
	}

	res, err := h.redemptionService.Redeem(c.Request.Context(), userID, rewardID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *RedemptionHandler) ListTransactions(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	limit, offset := parsePagination(c)

	txns, err := h.redemptionService.ListTransactions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": txns})
}
