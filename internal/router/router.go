package router

import (
	"github.com/gin-gonic/gin"

	"gstrates/internal/domain"
	"gstrates/internal/handler"
	"gstrates/internal/middleware"
	"gstrates/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	tokenSvc service.TokenService,
	rateH *handler.RateHandler,
	docH *handler.DocumentHandler,
	healthH *handler.HealthHandler,
	metricsH *handler.MetricsHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/metrics", metricsH.Serve)

	v1 := r.Group("/api/v1")

	// Public catalogue routes
	v1.POST("/calc", rateH.Calculate)
	v1.GET("/calculate/:product", rateH.Lookup)
	v1.GET("/search", rateH.Search)
	v1.GET("/rates", rateH.ListRates)
	v1.GET("/rates/export", rateH.Export)
	v1.GET("/rates/:code", rateH.GetByCode)
	v1.GET("/history", rateH.ListHistory)
	v1.GET("/calculations", rateH.ListCalculations)
	v1.GET("/stats", rateH.Stats)

	// Admin routes - document ingestion
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenSvc))
	admin.Use(middleware.RequireRole(domain.RoleAdmin))
	admin.POST("/documents", docH.Upload)

	return r
}
