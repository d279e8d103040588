package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/fx_rates_ingestor/internal/core/ports/services"
	"github.com/SscSPs/fx_rates_ingestor/internal/middleware"
	"github.com/SscSPs/fx_rates_ingestor/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	triggerLimiter *limiter.Limiter,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	registerHomeRoutes(r)

	setupAPIV1Routes(r, cfg, services, triggerLimiter)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	triggerLimiter *limiter.Limiter,
) {
	v1 := r.Group("/api/v1")
	if triggerLimiter != nil {
		v1.Use(middleware.RateLimit(triggerLimiter))
	}

	registerIngestionRoutes(v1, cfg.ArchiveDir, services.Ingestion)
}
