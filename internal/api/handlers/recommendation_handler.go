package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/petzzshop/ops-backend/internal/service"
)

// RecommendationHandler serves order recommendation and strategy queries.
type RecommendationHandler struct {
	service *service.RecommendationService
}

func NewRecommendationHandler(service *service.RecommendationService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// GetOrderRecommendations handles GET /purchasing/order-recommendations.
func (h *RecommendationHandler) GetOrderRecommendations(c *gin.Context) {
	filter, err := parseSignalFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.service.GetOrderRecommendations(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GenerateStrategy handles GET /purchasing/strategy/generate.
func (h *RecommendationHandler) GenerateStrategy(c *gin.Context) {
	filter, err := parseSignalFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	templateID := strings.TrimSpace(c.Query("template"))
	if templateID == "" {
		templateID = strings.TrimSpace(c.Query("template_id"))
	}

	resp, err := h.service.GenerateStrategy(c.Request.Context(), templateID, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetTemplates handles GET /purchasing/strategy/templates.
func (h *RecommendationHandler) GetTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"templates": h.service.Templates()})
}
