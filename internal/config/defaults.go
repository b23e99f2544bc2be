package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultGRPCPort        = 9090
	DefaultServerMode      = "release"
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBName          = "exometrics"
	DefaultDBMaxConns      = 10
	DefaultDBMigrationPath = "file://migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "exometrics:"
	DefaultRedisTTL       = 15 * time.Minute

	DefaultKafkaBroker  = "localhost:9092"
	DefaultKafkaGroupID = "exometrics-worker"

	DefaultOpenSearchIndexPrefix = "exometrics"

	DefaultMinIOEndpoint      = "localhost:9000"
	DefaultMinIOBucket        = "exometrics-exports"
	DefaultMinIOPresignExpiry = time.Hour

	DefaultArchiveBaseURL         = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"
	DefaultArchiveTable           = "pscomppars"
	DefaultArchiveTimeout         = 20 * time.Second
	DefaultArchiveRefreshInterval = 24 * time.Hour
	DefaultArchiveMaxRows         = 5000

	DefaultCatalogPageSize    = 100
	DefaultCatalogMaxPageSize = 500
	DefaultCatalogCacheTTL    = 10 * time.Minute

	DefaultWorkerConcurrency    = 4
	DefaultWorkerHealthPort     = 8081
	DefaultWorkerHandlerTimeout = 5 * time.Minute

	DefaultMetricsNamespace = "exometrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// ApplyDefaults fills every zero-value field in cfg. Explicit values win.
// It must run after unmarshalling and before Validate.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.GRPCPort == 0 {
		cfg.Server.GRPCPort = DefaultGRPCPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = DefaultDBMaxConns
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultDBMigrationPath
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = time.Hour
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	// DB 0 is both the default and a valid explicit value.

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = DefaultKafkaGroupID
	}
	if cfg.Kafka.AutoOffsetReset == "" {
		cfg.Kafka.AutoOffsetReset = "earliest"
	}
	if cfg.Kafka.MaxRetries == 0 {
		cfg.Kafka.MaxRetries = 3
	}

	// ── OpenSearch ────────────────────────────────────────────────────────────
	if cfg.OpenSearch.IndexPrefix == "" {
		cfg.OpenSearch.IndexPrefix = DefaultOpenSearchIndexPrefix
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.PresignExpiry == 0 {
		cfg.MinIO.PresignExpiry = DefaultMinIOPresignExpiry
	}

	// ── Archive ───────────────────────────────────────────────────────────────
	if cfg.Archive.BaseURL == "" {
		cfg.Archive.BaseURL = DefaultArchiveBaseURL
	}
	if cfg.Archive.Table == "" {
		cfg.Archive.Table = DefaultArchiveTable
	}
	if cfg.Archive.Timeout == 0 {
		cfg.Archive.Timeout = DefaultArchiveTimeout
	}
	if cfg.Archive.RefreshInterval == 0 {
		cfg.Archive.RefreshInterval = DefaultArchiveRefreshInterval
	}
	if cfg.Archive.MaxRows == 0 {
		cfg.Archive.MaxRows = DefaultArchiveMaxRows
	}

	// ── Catalog ───────────────────────────────────────────────────────────────
	if cfg.Catalog.DefaultPageSize == 0 {
		cfg.Catalog.DefaultPageSize = DefaultCatalogPageSize
	}
	if cfg.Catalog.MaxPageSize == 0 {
		cfg.Catalog.MaxPageSize = DefaultCatalogMaxPageSize
	}
	if cfg.Catalog.CacheTTL == 0 {
		cfg.Catalog.CacheTTL = DefaultCatalogCacheTTL
	}

	// ── Worker ────────────────────────────────────────────────────────────────
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = DefaultWorkerConcurrency
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}
	if cfg.Worker.HandlerTimeout == 0 {
		cfg.Worker.HandlerTimeout = DefaultWorkerHandlerTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// Default returns a Config populated entirely from defaults. The offline CLI
// uses it when no config file is supplied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

//Personal.AI order the ending
