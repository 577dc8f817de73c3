package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/petzzshop/ops-backend/internal/domain"
	"github.com/petzzshop/ops-backend/internal/service"
)

// DecisionHandler serves the purchasing decision-engine queries.
type DecisionHandler struct {
	service *service.DecisionService
}

func NewDecisionHandler(service *service.DecisionService) *DecisionHandler {
	return &DecisionHandler{service: service}
}

// GetDecisions handles GET /purchasing/decision-engine.
func (h *DecisionHandler) GetDecisions(c *gin.Context) {
	filter, err := parseDecisionFilter(c)
	if err != nil {
		writeError(c, err)
		return
	}

	resp, err := h.service.GetDecisions(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetFilterOptions handles GET /purchasing/filters.
func (h *DecisionHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.service.GetFilterOptions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, options)
}

func parseDecisionFilter(c *gin.Context) (domain.DecisionFilter, error) {
	signalFilter, err := parseSignalFilter(c)
	if err != nil {
		return domain.DecisionFilter{}, err
	}

	filter := domain.DecisionFilter{
		SignalFilter: signalFilter,
		Action:       strings.TrimSpace(c.Query("action")),
	}

	if raw := strings.TrimSpace(c.Query("min_score")); raw != "" {
		score, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.DecisionFilter{}, domain.NewValidationError("min_score", "not a number: %q", raw)
		}
		filter.MinScore = &score
	}

	return filter, nil
}

func parseSignalFilter(c *gin.Context) (domain.SignalFilter, error) {
	filter := domain.SignalFilter{
		Supplier:    strings.TrimSpace(c.Query("supplier")),
		Category:    strings.TrimSpace(c.Query("category")),
		Brand:       strings.TrimSpace(c.Query("brand")),
		StockStatus: strings.TrimSpace(c.Query("stock_status")),
	}

	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return domain.SignalFilter{}, domain.NewValidationError("limit", "not an integer: %q", raw)
		}
		filter.Limit = limit
	}

	return filter, nil
}

// writeError maps the domain error taxonomy onto HTTP status categories.
func writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.IsSignalUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
