package catalog

import (
	"context"
	"strings"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/search/opensearch"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

func (s *serviceImpl) normalizePaging(q planet.Query) planet.Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = s.opts.DefaultPageSize
	}
	if q.Limit > s.opts.MaxPageSize {
		q.Limit = s.opts.MaxPageSize
	}
	return q
}

func newPage(planets []*planet.Planet, total int64, q planet.Query) *Page {
	if planets == nil {
		planets = []*planet.Planet{}
	}
	pages := 0
	if q.Limit > 0 {
		pages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
	}
	return &Page{Planets: planets, Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages}
}

// List pages through the catalog. Text searches go to the search index
// when one is configured and fall back to the repository otherwise.
func (s *serviceImpl) List(ctx context.Context, q planet.Query) (*Page, error) {
	q = s.normalizePaging(q)
	q.Search = strings.TrimSpace(q.Search)

	if q.Search != "" && s.Searcher != nil && len(q.Names) == 0 {
		page, err := s.searchList(ctx, q)
		if err == nil {
			return page, nil
		}
		s.Logger.Warn("Search index unavailable, falling back to repository", logging.Err(err))
	}

	planets, total, err := s.Repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	return newPage(planets, total, q), nil
}

func (s *serviceImpl) searchList(ctx context.Context, q planet.Query) (*Page, error) {
	sq := opensearch.SearchQuery{
		Text:     q.Search,
		StarType: q.StarType,
		From:     q.Offset(),
		Size:     q.Limit,
	}
	if q.MinScore != nil {
		sq.MinScore = *q.MinScore
	}
	if q.MaxDistance != nil {
		sq.MaxDistancePc = *q.MaxDistance
	}
	res, err := s.Searcher.Search(ctx, sq)
	if err != nil {
		return nil, err
	}
	if len(res.Hits) == 0 {
		return newPage(nil, res.Total, q), nil
	}

	names := make([]string, len(res.Hits))
	for i, h := range res.Hits {
		names[i] = h.Document.Name
	}
	found, _, err := s.Repo.List(ctx, planet.Query{Names: names})
	if err != nil {
		return nil, err
	}

	// Keep the relevance order of the index.
	byKey := make(map[string]*planet.Planet, len(found))
	for _, p := range found {
		byKey[planet.NormalizeName(p.Name)] = p
	}
	ordered := make([]*planet.Planet, 0, len(names))
	for _, n := range names {
		if p, ok := byKey[planet.NormalizeName(n)]; ok {
			ordered = append(ordered, p)
		}
	}
	return newPage(ordered, res.Total, q), nil
}

func (s *serviceImpl) Names(ctx context.Context) ([]string, error) {
	names, err := s.Repo.Names(ctx)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func planetCacheKey(name string) string {
	return "planet:" + planet.NormalizeName(name)
}

// Get looks a planet up regardless of case and Unicode form. A planet the
// catalog lacks is fetched from the archive when one is configured.
func (s *serviceImpl) Get(ctx context.Context, name string) (*planet.Planet, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.ErrCodePlanetNameInvalid, "planet name is required")
	}
	if s.Cache == nil {
		return s.load(ctx, name)
	}

	var p planet.Planet
	err := s.Cache.GetOrSet(ctx, planetCacheKey(name), &p, s.opts.CacheTTL, func(ctx context.Context) (any, error) {
		return s.load(ctx, name)
	})
	switch {
	case err == nil:
		return &p, nil
	case errors.IsCode(err, errors.ErrCodeCacheError), errors.IsCode(err, errors.ErrCodeSerialization):
		s.Logger.Warn("Planet cache unavailable", logging.String("name", name), logging.Err(err))
		return s.load(ctx, name)
	default:
		return nil, err
	}
}

func (s *serviceImpl) load(ctx context.Context, name string) (*planet.Planet, error) {
	p, err := s.Repo.GetByName(ctx, name)
	if err == nil || s.Archive == nil || !errors.IsCode(err, errors.ErrCodePlanetNotFound) {
		return p, err
	}

	p, err = s.Archive.FetchOne(ctx, name)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeArchiveUnavailable) {
			s.Logger.Warn("Archive lookup failed", logging.String("name", name), logging.Err(err))
			return nil, errors.New(errors.ErrCodePlanetNotFound, "planet not found").WithDetail(name)
		}
		return nil, err
	}
	p.Assess()
	if _, err := s.Repo.Upsert(ctx, []*planet.Planet{p}); err != nil {
		return nil, err
	}
	s.Logger.Info("Planet fetched from archive", logging.String("name", p.Name))
	return p, nil
}

// Suggest completes names from the search index, or from a prefix match
// over the catalog names without one.
func (s *serviceImpl) Suggest(ctx context.Context, prefix string, size int) ([]string, error) {
	if size <= 0 {
		size = 10
	}
	if s.Searcher != nil {
		out, err := s.Searcher.Suggest(ctx, prefix, size)
		if err == nil {
			return out, nil
		}
		s.Logger.Warn("Suggest failed, falling back to repository", logging.Err(err))
	}

	key := planet.NormalizeName(prefix)
	out := []string{}
	if key == "" {
		return out, nil
	}
	names, err := s.Repo.Names(ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range names {
		if strings.HasPrefix(planet.NormalizeName(n), key) {
			out = append(out, n)
			if len(out) == size {
				break
			}
		}
	}
	return out, nil
}

//Personal.AI order the ending
