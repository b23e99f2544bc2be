// Package app opens the infrastructure named by a Config and assembles the
// catalog and comparison services on top of it. The apiserver, the worker
// and exoctl share it.
package app

import (
	"context"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/archive"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/postgres"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/search/opensearch"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/storage/minio"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

const refreshLockTTL = 10 * time.Minute

// Infrastructure holds the clients opened for one process. Postgres is
// required; every other client is nil when disabled or unreachable, and
// the features behind it degrade.
type Infrastructure struct {
	Config    *config.Config
	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector

	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Search   *opensearch.Client
	Storage  *minio.Client
	Producer *kafka.Producer
	Archive  *archive.Client
}

// Open connects to every configured backend. source names the process in
// published events, e.g. "apiserver".
func Open(ctx context.Context, cfg *config.Config, logger logging.Logger, source string) (*Infrastructure, error) {
	infra := &Infrastructure{Config: cfg, Logger: logger}

	if err := infra.openMetrics(); err != nil {
		return nil, err
	}

	pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	infra.Pool = pool

	if rc, err := redis.NewClient(cfg.Redis, logger); err != nil {
		logger.Warn("Redis unavailable, caching and refresh locks disabled", logging.Err(err))
	} else {
		infra.Redis = rc
	}

	if cfg.OpenSearch.Enabled {
		if sc, err := opensearch.NewClient(ctx, cfg.OpenSearch, logger); err != nil {
			logger.Warn("OpenSearch unavailable, falling back to database search", logging.Err(err))
		} else {
			infra.Search = sc
		}
	}

	if cfg.MinIO.Enabled {
		mc, err := minio.NewClient(ctx, cfg.MinIO, logger)
		if err == nil {
			err = mc.EnsureBucket(ctx)
		}
		if err != nil {
			logger.Warn("MinIO unavailable, archived exports disabled", logging.Err(err))
		} else {
			infra.Storage = mc
		}
	}

	if cfg.Kafka.Enabled {
		p, err := kafka.NewProducer(kafka.ProducerConfigFrom(cfg.Kafka, source), logger, infra.Metrics)
		if err != nil {
			infra.Close()
			return nil, err
		}
		infra.Producer = p
	}

	infra.Archive = archive.NewClient(cfg.Archive, logger, infra.Metrics)

	logger.Info("Infrastructure initialized",
		logging.Bool("redis", infra.Redis != nil),
		logging.Bool("opensearch", infra.Search != nil),
		logging.Bool("minio", infra.Storage != nil),
		logging.Bool("kafka", infra.Producer != nil))
	return infra, nil
}

func (i *Infrastructure) openMetrics() error {
	if !i.Config.Metrics.Enabled {
		i.Collector = prometheus.NewNoopCollector()
		i.Metrics = prometheus.NewAppMetrics(i.Collector)
		return nil
	}
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            i.Config.Metrics.Namespace,
		Subsystem:            i.Config.Metrics.Subsystem,
		EnableProcessMetrics: i.Config.Metrics.EnableProcessMetrics,
		EnableGoMetrics:      i.Config.Metrics.EnableGoMetrics,
	}, i.Logger)
	if err != nil {
		return err
	}
	i.Collector = c
	i.Metrics = prometheus.NewAppMetrics(c)
	return nil
}

// Close releases every open client. It is safe on a partly opened value.
func (i *Infrastructure) Close() {
	if i.Producer != nil {
		st := i.Producer.Stats()
		i.Logger.Info("Closing kafka producer",
			logging.Int64("published", st.Published),
			logging.Int64("failed", st.Failed))
		if err := i.Producer.Close(); err != nil {
			i.Logger.Warn("Kafka producer close failed", logging.Err(err))
		}
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.Pool != nil {
		postgres.Close(i.Pool)
	}
}

// HealthCheck is a named readiness check.
type HealthCheck struct {
	Component string
	Check     func(ctx context.Context) error
}

// HealthChecks lists a check for every open backend.
func (i *Infrastructure) HealthChecks() []HealthCheck {
	checks := []HealthCheck{{Component: "postgres", Check: func(ctx context.Context) error {
		return postgres.HealthCheck(ctx, i.Pool, i.Logger)
	}}}
	if i.Redis != nil {
		checks = append(checks, HealthCheck{Component: "redis", Check: i.Redis.Ping})
	}
	if i.Search != nil {
		checks = append(checks, HealthCheck{Component: "opensearch", Check: i.Search.Ping})
	}
	if i.Storage != nil {
		checks = append(checks, HealthCheck{Component: "minio", Check: i.Storage.Ping})
	}
	return checks
}

// Services are the application services built on an Infrastructure.
type Services struct {
	Catalog    catalog.Service
	Comparison comparison.Service
}

// NewServices assembles the catalog and comparison services.
func (i *Infrastructure) NewServices(ctx context.Context) (*Services, error) {
	deps := catalog.Deps{
		Repo:        repositories.NewPlanetRepository(i.Pool, i.Logger, i.Metrics),
		Exports:     repositories.NewExportRepository(i.Pool),
		Archive:     i.Archive,
		Metrics:     i.Metrics,
		Logger:      i.Logger,
		PlanetTopic: kafka.TopicPlanetUpdated,
	}
	var compareCache redis.Cache
	if i.Redis != nil {
		ttl := redis.WithDefaultTTL(i.Config.Catalog.CacheTTL)
		deps.Cache = redis.NewRedisCache(i.Redis, "planet", i.Logger, ttl, redis.WithMetrics(i.Metrics))
		deps.NewLocker = func(name string) catalog.Locker {
			return redis.NewMutex(i.Redis, name, refreshLockTTL)
		}
		compareCache = redis.NewRedisCache(i.Redis, "compare", i.Logger, ttl, redis.WithMetrics(i.Metrics))
	}
	if i.Search != nil {
		indexer := opensearch.NewIndexer(i.Search, opensearch.IndexerConfig{}, i.Logger)
		if err := indexer.EnsureIndex(ctx); err != nil {
			i.Logger.Warn("Search index unavailable", logging.Err(err))
		} else {
			deps.Indexer = indexer
			deps.Searcher = opensearch.NewSearcher(i.Search, opensearch.SearcherConfig{
				DefaultPageSize: i.Config.Catalog.DefaultPageSize,
				MaxPageSize:     i.Config.Catalog.MaxPageSize,
			}, i.Logger)
		}
	}
	if i.Storage != nil {
		deps.Store = i.Storage
	}
	if i.Producer != nil {
		deps.Publisher = i.Producer
	}

	opts := catalog.OptionsFromConfig(i.Config.Catalog, i.Config.Archive)
	opts.PublishConcurrency = i.Config.Worker.Concurrency
	cat, err := catalog.NewService(deps, opts)
	if err != nil {
		return nil, err
	}
	cmp, err := comparison.NewService(comparison.Deps{
		Catalog:  cat,
		Repo:     deps.Repo,
		Cache:    compareCache,
		CacheTTL: i.Config.Catalog.CacheTTL,
		Metrics:  i.Metrics,
		Logger:   i.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Services{Catalog: cat, Comparison: cmp}, nil
}

// Publisher returns the event producer, or nil when Kafka is disabled.
func (i *Infrastructure) Publisher() catalog.EventPublisher {
	if i.Producer == nil {
		return nil
	}
	return i.Producer
}

// SeedIfEmpty loads the seed file into an empty catalog. It reports how
// many planets were seeded; a populated catalog or an empty path seeds
// nothing.
func SeedIfEmpty(ctx context.Context, svc catalog.Service, path string, logger logging.Logger) (int, error) {
	if path == "" {
		return 0, nil
	}
	page, err := svc.List(ctx, planet.Query{Page: 1, Limit: 1})
	if err != nil {
		return 0, err
	}
	if page.Total > 0 {
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, errors.ErrCodeSeedInvalid, "cannot open seed file")
	}
	defer f.Close()

	n, err := svc.Seed(ctx, f)
	if err != nil {
		return 0, err
	}
	logger.Info("Seeded empty catalog", logging.String("file", path), logging.Int("planets", n))
	return n, nil
}

// Migrate applies pending migrations from the configured path.
func Migrate(cfg config.DatabaseConfig, logger logging.Logger) error {
	m, err := postgres.NewMigrator(cfg, cfg.MigrationPath, logger)
	if err != nil {
		return err
	}
	return m.Up()
}

//Personal.AI order the ending
