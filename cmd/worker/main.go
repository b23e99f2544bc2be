// Background worker for ExoMetrics. It consumes catalog.refresh requests
// from Kafka and refreshes the catalog from the exoplanet archive on a
// schedule. Liveness, readiness and metrics are served on the health port.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/ExoMetrics/internal/app"
	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	httpserver "github.com/turtacn/ExoMetrics/internal/interfaces/http"
	"github.com/turtacn/ExoMetrics/internal/interfaces/http/handlers"
	"github.com/turtacn/ExoMetrics/internal/interfaces/worker"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (defaults to EXOMETRICS_* environment)")
	noSchedule := flag.Bool("no-schedule", false, "only serve refresh requests, skip the periodic refresh")
	flag.Parse()

	if err := run(*configPath, !*noSchedule); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, schedule bool) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("worker")
	logger.Info("Starting ExoMetrics worker",
		logging.String("version", version),
		logging.Bool("kafka", cfg.Kafka.Enabled),
		logging.Bool("schedule", schedule))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := app.Open(ctx, cfg, logger, "worker")
	if err != nil {
		return err
	}
	defer infra.Close()

	svcs, err := infra.NewServices(ctx)
	if err != nil {
		return err
	}

	if cfg.Kafka.Enabled {
		if infra.Producer == nil {
			return fmt.Errorf("kafka enabled but producer unavailable")
		}
		ensureTopics(ctx, cfg.Kafka.Brokers, logger)

		ccfg := kafka.ConsumerConfigFrom(cfg.Kafka, cfg.Worker.HandlerTimeout, kafka.TopicCatalogRefresh)
		ccfg.Metrics = infra.Metrics
		consumer, err := kafka.NewConsumer(ccfg, infra.Producer, logger.Named("consumer"))
		if err != nil {
			return err
		}
		defer func() {
			if err := consumer.Close(); err != nil {
				logger.Warn("Consumer close failed", logging.Err(err))
			}
		}()

		h := worker.NewRefreshHandler(svcs.Catalog, logger)
		if err := consumer.Subscribe(kafka.TopicCatalogRefresh, h.Handle); err != nil {
			return err
		}
		if err := consumer.Start(ctx); err != nil {
			return err
		}
		logger.Info("Consuming refresh requests", logging.String("topic", kafka.TopicCatalogRefresh))
	}

	scheduleDone := make(chan struct{})
	if schedule {
		s := worker.NewScheduler(svcs.Catalog, cfg.Archive.RefreshInterval, logger)
		go func() {
			s.Run(ctx)
			close(scheduleDone)
		}()
	} else {
		close(scheduleDone)
	}

	checks := infra.HealthChecks()
	checkers := make([]handlers.HealthChecker, 0, len(checks))
	for _, p := range checks {
		checkers = append(checkers, handlers.CheckFunc{Component: p.Component, Fn: p.Check})
	}
	routerCfg := httpserver.RouterConfig{
		HealthHandler: handlers.NewHealthHandler(version, infra.Metrics, checkers...),
		Logger:        logger,
		Metrics:       infra.Metrics,
	}
	if cfg.Metrics.Enabled {
		routerCfg.MetricsHandler = infra.Collector.Handler()
	}
	healthSrv := httpserver.NewServer(config.ServerConfig{
		Port:            cfg.Worker.HealthPort,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(routerCfg), logger.Named("health"))

	errCh := make(chan error, 1)
	go func() {
		if err := healthSrv.Start(); err != nil {
			errCh <- fmt.Errorf("health server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err = <-errCh:
		logger.Error("Worker failed", logging.Err(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if serr := healthSrv.Stop(shutdownCtx); serr != nil {
		logger.Error("Health server shutdown failed", logging.Err(serr))
	}
	select {
	case <-scheduleDone:
	case <-shutdownCtx.Done():
		logger.Warn("Scheduled refresh still running at shutdown")
	}
	logger.Info("Worker stopped")
	return err
}

// ensureTopics creates missing catalog topics. Clusters that auto-create
// topics or forbid admin calls work without it, so failures only warn.
func ensureTopics(ctx context.Context, brokers []string, logger logging.Logger) {
	tm, err := kafka.NewTopicManager(brokers, logger.Named("topics"))
	if err != nil {
		logger.Warn("Topic manager unavailable", logging.Err(err))
		return
	}
	defer tm.Close()
	if err := tm.EnsureDefaultTopics(ctx); err != nil {
		logger.Warn("Could not ensure catalog topics", logging.Err(err))
	}
}

//Personal.AI order the ending
