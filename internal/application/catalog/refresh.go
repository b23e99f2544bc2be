package catalog

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

const defaultPublishConcurrency = 8

// Refresh reloads the catalog from the archive when its newest entry is
// older than the refresh interval, or unconditionally when force is set.
// Only one refresh runs at a time across processes sharing the lock.
func (s *serviceImpl) Refresh(ctx context.Context, force bool) (*RefreshResult, error) {
	start := s.Now()
	if s.Archive == nil {
		return nil, errors.Unavailable("archive is not configured")
	}

	latest, err := s.Repo.LatestUpdate(ctx)
	if err != nil {
		return nil, err
	}
	if !force && !latest.IsZero() && start.Sub(latest) < s.opts.RefreshInterval {
		prometheus.RecordRefresh(s.Metrics, "fresh", 0, 0)
		return &RefreshResult{Skipped: true, Reason: "catalog is fresh", LastUpdate: latest}, nil
	}

	if s.NewLocker != nil {
		lock := s.NewLocker(refreshLockName)
		ok, err := lock.TryLock(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			prometheus.RecordRefresh(s.Metrics, "locked", 0, 0)
			return &RefreshResult{Skipped: true, Reason: "refresh already in progress", LastUpdate: latest}, nil
		}
		defer func() {
			if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil {
				s.Logger.Warn("Failed to release refresh lock", logging.Err(err))
			}
		}()
	}

	planets, err := s.Archive.FetchAll(ctx)
	if err != nil {
		prometheus.RecordRefresh(s.Metrics, "failed", 0, time.Since(start))
		prometheus.RecordError(s.Metrics, "archive", string(errors.GetCode(err)))
		return nil, err
	}

	res, err := s.store(ctx, planets)
	if err != nil {
		prometheus.RecordRefresh(s.Metrics, "failed", len(planets), time.Since(start))
		prometheus.RecordError(s.Metrics, "catalog", string(errors.GetCode(err)))
		return nil, err
	}
	res.Fetched = len(planets)

	s.Logger.Info("Catalog refreshed",
		logging.Bool("force", force),
		logging.Int("fetched", res.Fetched),
		logging.Int("upserted", res.Upserted),
		logging.Int("indexed", res.Indexed),
		logging.Int("published", res.Published))
	prometheus.RecordRefresh(s.Metrics, "refreshed", res.Upserted, time.Since(start))
	return res, nil
}

// store assesses and upserts planets, then re-indexes them and publishes
// their update events. Index and event failures are logged; the catalog
// itself is already consistent.
func (s *serviceImpl) store(ctx context.Context, planets []*planet.Planet) (*RefreshResult, error) {
	now := s.Now().UTC()
	for _, p := range planets {
		p.Assess()
		p.UpdatedAt = now
	}

	n, err := s.Repo.Upsert(ctx, planets)
	if err != nil {
		return nil, err
	}
	res := &RefreshResult{Upserted: n, LastUpdate: now}

	if s.Cache != nil {
		if _, err := s.Cache.DeleteByPrefix(ctx, "planet:"); err != nil {
			s.Logger.Warn("Failed to invalidate planet cache", logging.Err(err))
		}
	}

	var g errgroup.Group
	if s.Indexer != nil {
		g.Go(func() error {
			br, err := s.Indexer.IndexPlanets(ctx, planets)
			if br != nil {
				res.Indexed = br.Succeeded
			}
			if err != nil {
				s.Logger.Warn("Search indexing failed", logging.Err(err))
			}
			return nil
		})
	}
	if s.Publisher != nil && s.PlanetTopic != "" {
		g.Go(func() error {
			res.Published = s.publish(ctx, planets)
			return nil
		})
	}
	_ = g.Wait()
	return res, nil
}

func (s *serviceImpl) publish(ctx context.Context, planets []*planet.Planet) int {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.PublishConcurrency)
	results := make([]bool, len(planets))
	for i, p := range planets {
		i, p := i, p
		g.Go(func() error {
			if err := s.Publisher.PublishEvent(gctx, s.PlanetTopic, planet.NewPlanetUpdatedEvent(p)); err != nil {
				s.Logger.Warn("Failed to publish planet update", logging.String("name", p.Name), logging.Err(err))
				return nil
			}
			results[i] = true
			return nil
		})
	}
	_ = g.Wait()

	published := 0
	for _, ok := range results {
		if ok {
			published++
		}
	}
	return published
}

type seedFile struct {
	Planets []planet.Planet `yaml:"planets"`
}

// Seed loads a YAML catalog of the form {planets: [...]}, assesses every
// planet and stores it like a refresh. It returns the number upserted.
func (s *serviceImpl) Seed(ctx context.Context, r io.Reader) (int, error) {
	var f seedFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return 0, errors.Wrap(err, errors.ErrCodeSeedInvalid, "failed to parse seed file")
	}
	if len(f.Planets) == 0 {
		return 0, errors.New(errors.ErrCodeSeedInvalid, "seed file holds no planets")
	}

	planets := make([]*planet.Planet, 0, len(f.Planets))
	for i := range f.Planets {
		entry := f.Planets[i]
		p, err := planet.NewPlanet(entry.Name)
		if err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeSeedInvalid, "invalid seed entry")
		}
		entry.ID, entry.Name, entry.CreatedAt = p.ID, p.Name, p.CreatedAt
		if err := entry.Validate(); err != nil {
			return 0, errors.Wrap(err, errors.ErrCodeSeedInvalid, "invalid seed entry "+entry.Name)
		}
		planets = append(planets, &entry)
	}

	res, err := s.store(ctx, planets)
	if err != nil {
		return 0, err
	}
	prometheus.RecordCatalogSize(s.Metrics, "seed", res.Upserted)
	s.Logger.Info("Catalog seeded", logging.Int("planets", res.Upserted))
	return res.Upserted, nil
}

//Personal.AI order the ending
