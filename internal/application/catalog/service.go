// Package catalog is the application service over the planet catalog:
// listing and lookup, CSV export, seeding and the archive refresh.
package catalog

import (
	"context"
	"io"
	"time"

	"github.com/turtacn/ExoMetrics/internal/config"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/database/redis"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/search/opensearch"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/storage/minio"
	"github.com/turtacn/ExoMetrics/pkg/errors"
	"github.com/turtacn/ExoMetrics/pkg/types/common"
)

const (
	DefaultPageSize        = 100
	MaxPageSize            = 500
	DefaultRefreshInterval = 24 * time.Hour
	defaultCacheTTL        = 10 * time.Minute
	refreshLockName        = "catalog-refresh"
)

// Service defines the catalog operations used by the HTTP API, the CLI
// and the worker.
type Service interface {
	List(ctx context.Context, q planet.Query) (*Page, error)
	Names(ctx context.Context) ([]string, error)
	Get(ctx context.Context, name string) (*planet.Planet, error)
	Suggest(ctx context.Context, prefix string, size int) ([]string, error)
	Export(ctx context.Context, q planet.Query) (*ExportResult, error)
	RecentExports(ctx context.Context, limit int) ([]*planet.Export, error)
	Refresh(ctx context.Context, force bool) (*RefreshResult, error)
	Seed(ctx context.Context, r io.Reader) (int, error)
}

// Page is one page of a catalog listing.
type Page struct {
	Planets    []*planet.Planet `json:"planets"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// ExportResult describes an archived CSV export.
type ExportResult struct {
	Export *planet.Export `json:"export"`
	URL    string         `json:"url"`
}

// RefreshResult reports what a refresh did. Skipped results carry the
// reason.
type RefreshResult struct {
	Skipped    bool      `json:"skipped"`
	Reason     string    `json:"reason,omitempty"`
	Fetched    int       `json:"fetched"`
	Upserted   int       `json:"upserted"`
	Indexed    int       `json:"indexed"`
	Published  int       `json:"published"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Archive fetches planets from the upstream archive.
type Archive interface {
	FetchAll(ctx context.Context) ([]*planet.Planet, error)
	FetchOne(ctx context.Context, name string) (*planet.Planet, error)
}

type Searcher interface {
	Search(ctx context.Context, q opensearch.SearchQuery) (*opensearch.SearchResult, error)
	Suggest(ctx context.Context, prefix string, size int) ([]string, error)
}

type Indexer interface {
	IndexPlanets(ctx context.Context, planets []*planet.Planet) (*opensearch.BulkResult, error)
}

type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event common.DomainEvent) error
}

type ExportStore interface {
	PutExport(ctx context.Context, key string, r io.Reader, size int64) (*minio.Upload, error)
	PresignExport(ctx context.Context, key string) (string, error)
	DeleteExport(ctx context.Context, key string) error
}

// Locker guards the refresh across processes.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// Deps are the collaborators of the service. Repo and Logger are required;
// every other dependency is optional and its feature degrades without it.
type Deps struct {
	Repo      planet.Repository
	Exports   planet.ExportRepository
	Cache     redis.Cache
	Archive   Archive
	Searcher  Searcher
	Indexer   Indexer
	Publisher EventPublisher
	Store     ExportStore
	NewLocker func(name string) Locker
	Metrics   *prometheus.AppMetrics
	Logger    logging.Logger
	// PlanetTopic receives a planet.updated event per refreshed planet.
	PlanetTopic string
	Now         func() time.Time
}

// Options are the catalog tunables.
type Options struct {
	DefaultPageSize int
	MaxPageSize     int
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	// PublishConcurrency bounds the planet.updated publishes in flight
	// during a refresh.
	PublishConcurrency int
}

// OptionsFromConfig reads the catalog and archive sections.
func OptionsFromConfig(cat config.CatalogConfig, arc config.ArchiveConfig) Options {
	return Options{
		DefaultPageSize: cat.DefaultPageSize,
		MaxPageSize:     cat.MaxPageSize,
		CacheTTL:        cat.CacheTTL,
		RefreshInterval: arc.RefreshInterval,
	}
}

func (o *Options) applyDefaults() {
	if o.DefaultPageSize <= 0 {
		o.DefaultPageSize = DefaultPageSize
	}
	if o.MaxPageSize <= 0 {
		o.MaxPageSize = MaxPageSize
	}
	if o.DefaultPageSize > o.MaxPageSize {
		o.DefaultPageSize = o.MaxPageSize
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = defaultCacheTTL
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = DefaultRefreshInterval
	}
	if o.PublishConcurrency <= 0 {
		o.PublishConcurrency = defaultPublishConcurrency
	}
}

type serviceImpl struct {
	Deps
	opts Options
}

// NewService creates the catalog service.
func NewService(deps Deps, opts Options) (Service, error) {
	if deps.Repo == nil {
		return nil, errors.New(errors.ErrCodeValidation, "catalog repository is required")
	}
	if deps.Logger == nil {
		return nil, errors.New(errors.ErrCodeValidation, "logger is required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	deps.Logger = deps.Logger.Named("catalog")
	opts.applyDefaults()
	return &serviceImpl{Deps: deps, opts: opts}, nil
}

//Personal.AI order the ending
