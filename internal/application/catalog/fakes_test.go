package catalog

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/search/opensearch"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/storage/minio"
	"github.com/turtacn/ExoMetrics/pkg/errors"
	"github.com/turtacn/ExoMetrics/pkg/types/common"
)

// memRepo is an in-memory planet.Repository.
type memRepo struct {
	mu       sync.Mutex
	planets  map[string]*planet.Planet
	gets     int
	upserted int
	err      error
}

func newMemRepo(planets ...*planet.Planet) *memRepo {
	r := &memRepo{planets: map[string]*planet.Planet{}}
	for _, p := range planets {
		r.planets[planet.NormalizeName(p.Name)] = p
	}
	return r
}

func (r *memRepo) sorted() []*planet.Planet {
	out := make([]*planet.Planet, 0, len(r.planets))
	for _, p := range r.planets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *memRepo) List(_ context.Context, q planet.Query) ([]*planet.Planet, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, 0, r.err
	}
	want := map[string]bool{}
	for _, n := range q.Names {
		want[planet.NormalizeName(n)] = true
	}
	var match []*planet.Planet
	for _, p := range r.sorted() {
		if len(want) > 0 && !want[planet.NormalizeName(p.Name)] {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q.Search)) {
			continue
		}
		if q.MinScore != nil && p.Habitability.Score < *q.MinScore {
			continue
		}
		match = append(match, p)
	}
	total := int64(len(match))
	if q.Limit > 0 {
		from := min(q.Offset(), len(match))
		match = match[from:min(from+q.Limit, len(match))]
	}
	return match, total, nil
}

func (r *memRepo) Names(context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.sorted() {
		out = append(out, p.Name)
	}
	return out, nil
}

func (r *memRepo) GetByName(_ context.Context, name string) (*planet.Planet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	p, ok := r.planets[planet.NormalizeName(name)]
	if !ok {
		return nil, errors.New(errors.ErrCodePlanetNotFound, "planet not found")
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) Upsert(_ context.Context, planets []*planet.Planet) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	for _, p := range planets {
		r.planets[planet.NormalizeName(p.Name)] = p
	}
	r.upserted += len(planets)
	return len(planets), nil
}

func (r *memRepo) LatestUpdate(context.Context) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest time.Time
	for _, p := range r.planets {
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}
	return latest, nil
}

func (r *memRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.planets)), nil
}

type memExports struct {
	saved []*planet.Export
}

func (m *memExports) Save(_ context.Context, e *planet.Export) error {
	m.saved = append(m.saved, e)
	return nil
}

func (m *memExports) Recent(_ context.Context, limit int) ([]*planet.Export, error) {
	return m.saved[:min(limit, len(m.saved))], nil
}

type MockArchive struct{ mock.Mock }

func (m *MockArchive) FetchAll(ctx context.Context) ([]*planet.Planet, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]*planet.Planet)
	return ps, args.Error(1)
}

func (m *MockArchive) FetchOne(ctx context.Context, name string) (*planet.Planet, error) {
	args := m.Called(ctx, name)
	p, _ := args.Get(0).(*planet.Planet)
	return p, args.Error(1)
}

type MockSearcher struct{ mock.Mock }

func (m *MockSearcher) Search(ctx context.Context, q opensearch.SearchQuery) (*opensearch.SearchResult, error) {
	args := m.Called(ctx, q)
	r, _ := args.Get(0).(*opensearch.SearchResult)
	return r, args.Error(1)
}

func (m *MockSearcher) Suggest(ctx context.Context, prefix string, size int) ([]string, error) {
	args := m.Called(ctx, prefix, size)
	r, _ := args.Get(0).([]string)
	return r, args.Error(1)
}

type recordingIndexer struct {
	mu      sync.Mutex
	indexed []*planet.Planet
}

func (i *recordingIndexer) IndexPlanets(_ context.Context, planets []*planet.Planet) (*opensearch.BulkResult, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.indexed = append(i.indexed, planets...)
	return &opensearch.BulkResult{Succeeded: len(planets)}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []common.DomainEvent
	topics []string
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic string, e common.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	p.topics = append(p.topics, topic)
	return nil
}

type MockStore struct{ mock.Mock }

func (m *MockStore) PutExport(ctx context.Context, key string, r io.Reader, size int64) (*minio.Upload, error) {
	body, _ := io.ReadAll(r)
	args := m.Called(ctx, key, string(body), size)
	u, _ := args.Get(0).(*minio.Upload)
	return u, args.Error(1)
}

func (m *MockStore) PresignExport(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockStore) DeleteExport(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type fakeLocker struct {
	held     bool
	released bool
}

func (l *fakeLocker) TryLock(context.Context) (bool, error) { return !l.held, nil }

func (l *fakeLocker) Unlock(context.Context) error {
	l.released = true
	return nil
}

//Personal.AI order the ending
