package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cardvault/backend/internal/services"
)

type CardHandler struct {
	catalog services.CardCatalog
}

func NewCardHandler(catalog services.CardCatalog) *CardHandler {
	return &CardHandler{catalog: catalog}
}

// SearchCards proxies a browse query to the external catalog.
func (h *CardHandler) SearchCards(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 250 {
		pageSize = 20
	}

	result, err := h.catalog.SearchCards(c.Request.Context(), c.Query("q"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *CardHandler) GetCard(c *gin.Context) {
	card, err := h.catalog.ResolveCard(c.Request.Context(), c.Param("apiId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}
