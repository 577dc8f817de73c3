package api

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/petzzshop/ops-backend/internal/api/handlers"
	"github.com/petzzshop/ops-backend/internal/api/middleware"
	"github.com/petzzshop/ops-backend/internal/service"
)

type Services struct {
	DecisionService       *service.DecisionService
	RecommendationService *service.RecommendationService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		purchasingGroup := apiGroup.Group("/purchasing")

		if services.DecisionService != nil {
			decisionHandler := handlers.NewDecisionHandler(services.DecisionService)
			purchasingGroup.GET("/decision-engine", decisionHandler.GetDecisions)
			purchasingGroup.GET("/filters", decisionHandler.GetFilterOptions)
		}

		if services.RecommendationService != nil {
			recHandler := handlers.NewRecommendationHandler(services.RecommendationService)
			purchasingGroup.GET("/order-recommendations", recHandler.GetOrderRecommendations)

			strategyGroup := purchasingGroup.Group("/strategy")
			{
				strategyGroup.GET("/generate", recHandler.GenerateStrategy)
				strategyGroup.GET("/templates", recHandler.GetTemplates)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
