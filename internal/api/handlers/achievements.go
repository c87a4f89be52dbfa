package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardvault/backend/internal/services"
)

type AchievementHandler struct {
	achievements *services.AchievementService
}

func NewAchievementHandler(achievements *services.AchievementService) *AchievementHandler {
	return &AchievementHandler{achievements: achievements}
}

func (h *AchievementHandler) ListDefinitions(c *gin.Context) {
	achievements, err := h.achievements.ListDefinitions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, achievements)
}

func (h *AchievementHandler) ListEarned(c *gin.Context) {
	grants, err := h.achievements.ListGrants(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, grants)
}

func (h *AchievementHandler) GetPoints(c *gin.Context) {
	points, err := h.achievements.TotalPoints(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_points": points})
}

// Award grants an achievement directly. Unlike the evaluator path, a
// duplicate grant surfaces as a conflict here.
func (h *AchievementHandler) Award(c *gin.Context) {
	achievementID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid achievement id"})
		return
	}
	grant, err := h.achievements.Award(c.Request.Context(), currentUser(c), uint(achievementID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, grant)
}
