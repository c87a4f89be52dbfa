package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cardvault/backend/internal/models"
	"github.com/cardvault/backend/internal/services"
)

type CollectionHandler struct {
	db           *gorm.DB
	collection   *services.CollectionService
	valuation    *services.ValuationService
	achievements *services.AchievementService
	wishlist     *services.WishlistService
}

func NewCollectionHandler(db *gorm.DB, collection *services.CollectionService, valuation *services.ValuationService, achievements *services.AchievementService, wishlist *services.WishlistService) *CollectionHandler {
	return &CollectionHandler{
		db:           db,
		collection:   collection,
		valuation:    valuation,
		achievements: achievements,
		wishlist:     wishlist,
	}
}

func (h *CollectionHandler) GetCollection(c *gin.Context) {
	holdings, err := h.collection.GetCollection(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

func (h *CollectionHandler) GetHolding(c *gin.Context) {
	holdingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	holding, err := h.collection.GetHolding(c.Request.Context(), holdingID, currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holding)
}

func (h *CollectionHandler) AddToCollection(c *gin.Context) {
	var req models.AddToCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUser(c)
	var holding *models.Holding
	err := h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		holding, err = h.collection.WithTx(tx).AddToCollection(c.Request.Context(), userID, req)
		if err != nil {
			return err
		}
		return h.evaluateAchievements(c, tx, userID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, holding)
}

func (h *CollectionHandler) UpdateHolding(c *gin.Context) {
	holdingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req models.UpdateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUser(c)
	var holding *models.Holding
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		holding, err = h.collection.WithTx(tx).UpdateHolding(c.Request.Context(), holdingID, userID, req)
		if err != nil {
			return err
		}
		return h.evaluateAchievements(c, tx, userID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holding)
}

func (h *CollectionHandler) SetQuantity(c *gin.Context) {
	holdingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Quantity int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := currentUser(c)
	var holding *models.Holding
	err = h.db.Transaction(func(tx *gorm.DB) error {
		var err error
		holding, err = h.collection.WithTx(tx).SetQuantity(c.Request.Context(), holdingID, userID, req.Quantity)
		if err != nil {
			return err
		}
		return h.evaluateAchievements(c, tx, userID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holding)
}

func (h *CollectionHandler) RemoveHolding(c *gin.Context) {
	holdingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	userID := currentUser(c)
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := h.collection.WithTx(tx).RemoveHolding(c.Request.Context(), holdingID, userID); err != nil {
			return err
		}
		return h.evaluateAchievements(c, tx, userID)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// GetSummary returns the dashboard aggregates for the current user.
func (h *CollectionHandler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUser(c)

	uniqueCards, err := h.valuation.UniqueCardCount(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	totalCards, err := h.valuation.TotalCardQuantity(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	totalValue, err := h.valuation.TotalCollectionValue(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	achievementCount, err := h.achievements.GrantCount(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	totalPoints, err := h.achievements.TotalPoints(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	wishlistCount, err := h.wishlist.Count(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.CollectionSummary{
		UniqueCards:      uniqueCards,
		TotalCards:       totalCards,
		TotalValue:       totalValue,
		AchievementCount: achievementCount,
		TotalPoints:      totalPoints,
		WishlistCount:    wishlistCount,
	})
}

func (h *CollectionHandler) GetTopValueHoldings(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	holdings, err := h.valuation.TopValueHoldings(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

func (h *CollectionHandler) GetByRarity(c *gin.Context) {
	holdings, err := h.collection.GetByRarity(c.Request.Context(), currentUser(c), c.Param("rarity"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

func (h *CollectionHandler) GetBySet(c *gin.Context) {
	holdings, err := h.collection.GetBySet(c.Request.Context(), currentUser(c), c.Param("setName"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, holdings)
}

// evaluateAchievements recomputes aggregates inside the mutation's
// transaction and feeds them to the evaluator, so ledger change and any
// resulting grants commit together.
func (h *CollectionHandler) evaluateAchievements(c *gin.Context, tx *gorm.DB, userID uuid.UUID) error {
	ctx := c.Request.Context()
	valuation := h.valuation.WithTx(tx)

	totalCards, err := valuation.TotalCardQuantity(ctx, userID)
	if err != nil {
		return err
	}
	totalValue, err := valuation.TotalCollectionValue(ctx, userID)
	if err != nil {
		return err
	}
	return h.achievements.WithTx(tx).CheckAndAward(ctx, userID, totalCards, totalValue)
}
