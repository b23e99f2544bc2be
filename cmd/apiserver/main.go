// API server entry point for ExoMetrics: serves the planet catalog and the
// comparison engine over HTTP, and gRPC health when a gRPC port is set.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/app"
	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/ExoMetrics/internal/interfaces/grpc"
	httpserver "github.com/turtacn/ExoMetrics/internal/interfaces/http"
	"github.com/turtacn/ExoMetrics/internal/interfaces/http/handlers"
	"github.com/turtacn/ExoMetrics/internal/interfaces/http/middleware"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

const healthInterval = 15 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults to EXOMETRICS_* environment)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("apiserver")
	logger.Info("Starting ExoMetrics API server",
		logging.String("version", version),
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.Server.GRPCPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.AutoMigrate {
		if err := app.Migrate(cfg.Database, logger); err != nil {
			return err
		}
	}

	infra, err := app.Open(ctx, cfg, logger, "apiserver")
	if err != nil {
		return err
	}
	defer infra.Close()

	svcs, err := infra.NewServices(ctx)
	if err != nil {
		return err
	}
	if _, err := app.SeedIfEmpty(ctx, svcs.Catalog, cfg.Catalog.SeedFile, logger); err != nil {
		logger.Warn("Catalog seeding failed", logging.Err(err))
	}

	if configPath != "" {
		watchConfig(configPath, logger)
	}

	limitCfg := middleware.DefaultRateLimitConfig()
	limiter := middleware.NewTokenBucketLimiter(limitCfg.RequestsPerSecond, limitCfg.BurstSize, limitCfg.CleanupInterval)
	defer limiter.Stop()

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.Server.CORSOrigins
	}

	checks := infra.HealthChecks()
	checkers := make([]handlers.HealthChecker, 0, len(checks))
	for _, p := range checks {
		checkers = append(checkers, handlers.CheckFunc{Component: p.Component, Fn: p.Check})
	}

	routerCfg := httpserver.RouterConfig{
		PlanetHandler:  handlers.NewPlanetHandler(svcs.Catalog, svcs.Comparison, logger.Named("planets")),
		CompareHandler: handlers.NewCompareHandler(svcs.Comparison),
		CatalogHandler: handlers.NewCatalogHandler(svcs.Catalog, infra.Publisher(), kafka.TopicCatalogRefresh, logger.Named("catalog")),
		HealthHandler:  handlers.NewHealthHandler(version, infra.Metrics, checkers...),
		Logger:         logger,
		Metrics:        infra.Metrics,
		CORS:           cors,
		Logging:        middleware.DefaultLoggingConfig(),
		RateLimiter:    limiter,
		RateLimit:      limitCfg,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = infra.Collector.Handler()
	}

	httpSrv := httpserver.NewServer(cfg.Server, httpserver.NewRouter(routerCfg), logger.Named("http"))

	errCh := make(chan error, 2)
	go func() {
		if err := httpSrv.Start(); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var grpcSrv *grpcserver.Server
	if cfg.Server.GRPCPort > 0 {
		grpcSrv, err = grpcserver.NewServer(cfg.Server,
			grpcserver.WithLogger(logger.Named("grpc")),
			grpcserver.WithMetrics(infra.Metrics),
			grpcserver.WithReflection(cfg.Server.Mode != gin.ReleaseMode),
			grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout),
		)
		if err != nil {
			return err
		}
		grpcChecks := make([]grpcserver.HealthCheck, 0, len(checks))
		for _, p := range checks {
			grpcChecks = append(grpcChecks, grpcserver.HealthCheck{Component: p.Component, Check: p.Check})
		}
		go grpcSrv.WatchHealth(ctx, healthInterval, grpcChecks...)
		go func() {
			if err := grpcSrv.Start(); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errCh:
		logger.Error("Server failed", logging.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if serr := httpSrv.Stop(shutdownCtx); serr != nil {
		logger.Error("HTTP server shutdown failed", logging.Err(serr))
	}
	if grpcSrv != nil {
		if serr := grpcSrv.Stop(shutdownCtx); serr != nil {
			logger.Error("gRPC server shutdown failed", logging.Err(serr))
		}
	}
	logger.Info("Servers stopped")
	return err
}

// watchConfig reports edits to the config file. Listeners and clients are
// bound at start, so changes apply on the next restart.
func watchConfig(path string, logger logging.Logger) {
	err := config.Watch(path,
		func(cfg *config.Config) {
			logger.Info("Configuration file changed; restart to apply",
				logging.String("path", path),
				logging.String("log_level", cfg.Log.Level))
		},
		func(err error) {
			logger.Warn("Ignoring invalid configuration revision", logging.Err(err))
		})
	if err != nil {
		logger.Warn("Config watch disabled", logging.Err(err))
	}
}

//Personal.AI order the ending
