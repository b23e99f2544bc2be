// Package http is the REST delivery surface of the catalog and the
// comparison engine.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/internal/interfaces/http/handlers"
	"github.com/turtacn/ExoMetrics/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the route tree.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	PlanetHandler  *handlers.PlanetHandler
	CompareHandler *handlers.CompareHandler
	CatalogHandler *handlers.CatalogHandler
	HealthHandler  *handlers.HealthHandler

	Logger  logging.Logger
	Metrics *prometheus.AppMetrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	CORS           middleware.CORSConfig
	Logging        middleware.LoggingConfig
	// RateLimiter guards /api/v1 when set.
	RateLimiter middleware.RateLimiter
	RateLimit   middleware.RateLimitConfig
}

// NewRouter builds the engine. Middleware order is request ID, recovery,
// metrics, logging then CORS, so panics and preflights are both logged
// with their request ID.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(cfg.Logger),
		middleware.Metrics(cfg.Metrics),
		middleware.RequestLogging(cfg.Logger, cfg.Logging),
		middleware.CORS(cfg.CORS),
	)

	if h := cfg.HealthHandler; h != nil {
		r.GET("/healthz", h.Liveness)
		r.GET("/readyz", h.Readiness)
		r.GET("/health/detailed", h.Detailed)
	}
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	api := r.Group("/api/v1")
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter, cfg.RateLimit))
	}
	registerPlanetRoutes(api, cfg.PlanetHandler)
	registerCompareRoutes(api, cfg.CompareHandler)
	registerCatalogRoutes(api, cfg.CatalogHandler)
	return r
}

func registerPlanetRoutes(r *gin.RouterGroup, h *handlers.PlanetHandler) {
	if h == nil {
		return
	}
	planets := r.Group("/planets")
	planets.GET("", h.List)
	planets.GET("/names", h.Names)
	planets.GET("/suggest", h.Suggest)
	planets.GET("/export", h.Export)
	planets.GET("/exports", h.RecentExports)
	planets.GET("/:name", h.Get)
	planets.GET("/:name/compare", h.Compare)
	planets.GET("/:name/survivability", h.Survivability)
}

func registerCompareRoutes(r *gin.RouterGroup, h *handlers.CompareHandler) {
	if h == nil {
		return
	}
	r.POST("/compare", h.Compare)
	r.POST("/survivability", h.Survivability)
	r.GET("/habitability/distribution", h.HabitabilityDistribution)

	charts := r.Group("/charts")
	charts.POST("/comparison", h.ComparisonCharts)
	charts.POST("/pivot", h.Pivot)
	charts.POST("/distribution", h.Distribution)
}

func registerCatalogRoutes(r *gin.RouterGroup, h *handlers.CatalogHandler) {
	if h == nil {
		return
	}
	r.POST("/catalog/refresh", h.Refresh)
}

//Personal.AI order the ending
