package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"couple-plans-backend-go/internal/core"
	"couple-plans-backend-go/internal/middleware"
	"couple-plans-backend-go/internal/realtime"
)

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is applied in main.go before this is called.
func SetupRoutes(
	router *gin.Engine,
	logger *zap.Logger,
	authMW *middleware.AuthMiddleware,
	planService core.PlanService,
	locationService core.LocationService,
	sessionService core.SessionService,
	hub *realtime.Hub,
	appVersion string,
) {
	// --- Initialize Handlers ---
	authHandler := NewAuthHandler(sessionService, logger)
	planHandler := NewPlanHandler(planService, logger)
	locationHandler := NewLocationHandler(locationService, logger)
	streamHandler := NewStreamHandler(hub, logger)

	apiV1 := router.Group("/api/v1")
	{
		// Login is the only public endpoint; it issues the token the others require.
		apiV1.POST("/auth/login", authHandler.Login)
		apiV1.POST("/auth/logout", authMW.VerifyToken(), authHandler.Logout)
		apiV1.GET("/session", authMW.VerifyToken(), authHandler.GetSession)

		plansRouteGroup := apiV1.Group("/plans", authMW.VerifyToken())
		{
			plansRouteGroup.GET("", planHandler.ListPlans)
			plansRouteGroup.POST("", planHandler.CreatePlan)
			plansRouteGroup.GET("/export", planHandler.ExportPlans)
			plansRouteGroup.POST("/import", planHandler.ImportPlans)
			plansRouteGroup.POST("/reorder", planHandler.ReorderPlans)
			plansRouteGroup.GET("/:planId", planHandler.GetPlan)
			plansRouteGroup.PUT("/:planId", planHandler.UpdatePlan)
			plansRouteGroup.DELETE("/:planId", planHandler.DeletePlan)
			plansRouteGroup.POST("/:planId/favorite", planHandler.ToggleFavorite)
		}

		locationsRouteGroup := apiV1.Group("/locations", authMW.VerifyToken())
		{
			locationsRouteGroup.GET("", locationHandler.ListLocations)
			locationsRouteGroup.POST("", locationHandler.AddLocation)
		}

		// EventSource cannot send headers; VerifyToken also reads ?access_token=.
		apiV1.GET("/stream", authMW.VerifyToken(), streamHandler.Stream)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{Status: "UP", Version: appVersion})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("API routes configured successfully under /api/v1, /health and /metrics.")
}
